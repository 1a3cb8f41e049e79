package services

import (
	"unicode"
	"unicode/utf8"
)

// MinPasswordLength is the shortest accepted admin password
const MinPasswordLength = 12

// Password policy message keys
const (
	MsgPasswordTooShort   = "validation.password_too_short"
	MsgPasswordComplexity = "validation.password_complexity"
)

// PasswordPolicyViolation returns the message key of the first rule the password
// breaks, or "" when it is acceptable. Passwords need upper and lower case letters,
// a digit and a symbol.
func PasswordPolicyViolation(password string) string {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return MsgPasswordTooShort
	}

	var hasUpper, hasLower, hasNumber, hasSpecial bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}
	if !hasUpper || !hasLower || !hasNumber || !hasSpecial {
		return MsgPasswordComplexity
	}
	return ""
}
