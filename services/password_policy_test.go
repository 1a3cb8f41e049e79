package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPasswordPolicyViolation(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     string
	}{
		{"Valid complex password", "StrongPassword123!", ""},
		{"Too short", "Short1!", MsgPasswordTooShort},
		{"Multibyte characters count once", "Äöü1!Äöü1!x", MsgPasswordTooShort},
		{"Missing uppercase", "lowercase123!", MsgPasswordComplexity},
		{"Missing lowercase", "UPPERCASE123!", MsgPasswordComplexity},
		{"Missing number", "NoNumbersHere!", MsgPasswordComplexity},
		{"Missing special", "NoSpecialChar123", MsgPasswordComplexity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PasswordPolicyViolation(tt.password))
		})
	}
}
