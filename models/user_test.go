package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUserLoginBookkeeping(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("Counts below the limit", func(t *testing.T) {
		u := &User{FailedLoginAttempts: 1}
		assert.Equal(t, map[string]interface{}{"failed_login_attempts": 2}, u.FailedLoginUpdates(5, time.Minute, now))
	})

	t.Run("Locks on the last attempt", func(t *testing.T) {
		u := &User{FailedLoginAttempts: 4}
		updates := u.FailedLoginUpdates(5, 15*time.Minute, now)
		assert.Equal(t, 0, updates["failed_login_attempts"])
		assert.Equal(t, now.Add(15*time.Minute), updates["lockout_until"])

		until := now.Add(15 * time.Minute)
		u.LockoutUntil = &until
		assert.True(t, u.IsLocked(now))
		assert.False(t, u.IsLocked(until.Add(time.Second)))
	})

	t.Run("Success clears the lockout", func(t *testing.T) {
		u := &User{}
		updates := u.SuccessfulLoginUpdates(now)
		assert.Nil(t, updates["lockout_until"])
		assert.Equal(t, now, updates["last_login_at"])
	})
}

func TestNormalizeEmailAndRoles(t *testing.T) {
	assert.Equal(t, "hr@example.com", NormalizeEmail("  HR@Example.com "))
	assert.True(t, IsValidRole(RoleAdmin))
	assert.True(t, IsValidRole(RoleSender))
	assert.False(t, IsValidRole("employee"))
}
