package services

import (
	"errors"
	"testing"
	"time"

	"checklist_app_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashing(t *testing.T) {
	password := "SecretPass123!"

	hash, err := HashPassword(password)
	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, password, hash)

	assert.True(t, VerifyPassword(hash, password))
	assert.False(t, VerifyPassword(hash, "WrongPass"))
}

func TestCreateUser(t *testing.T) {
	db := setupTestDB(t)

	user, err := CreateUser(db, "Admin", " Admin@Example.com ", "Sup3r-Secret!", models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", user.Email)
	assert.True(t, VerifyPassword(user.Password, "Sup3r-Secret!"))

	_, err = CreateUser(db, "", "nope", "short", "root")
	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, MsgRequired, vErr.Fields["name"])
	assert.Equal(t, MsgInvalidEmail, vErr.Fields["email"])
	assert.Equal(t, MsgPasswordTooShort, vErr.Fields["password"])
	assert.Equal(t, "validation.invalid_role", vErr.Fields["role"])
}

func TestAuthenticate(t *testing.T) {
	db := setupTestDB(t)
	_, err := CreateUser(db, "Sender", "sender@example.com", "Correct-Horse-9", models.RoleSender)
	require.NoError(t, err)

	t.Run("Valid credentials", func(t *testing.T) {
		user, err := Authenticate(db, "SENDER@example.com", "Correct-Horse-9")
		require.NoError(t, err)
		assert.NotNil(t, user.LastLoginAt)
	})

	t.Run("Unknown user", func(t *testing.T) {
		_, err := Authenticate(db, "ghost@example.com", "whatever")
		assert.True(t, errors.Is(err, ErrInvalidCredentials))
	})

	t.Run("Lockout after repeated failures", func(t *testing.T) {
		for i := 0; i < MaxFailedLogins; i++ {
			_, err := Authenticate(db, "sender@example.com", "wrong")
			assert.True(t, errors.Is(err, ErrInvalidCredentials))
		}

		_, err := Authenticate(db, "sender@example.com", "Correct-Horse-9")
		assert.True(t, errors.Is(err, ErrAccountLocked))

		db.Model(&models.User{}).Where("email = ?", "sender@example.com").
			Update("lockout_until", time.Now().Add(-time.Minute))
		_, err = Authenticate(db, "sender@example.com", "Correct-Horse-9")
		assert.NoError(t, err)
	})

	t.Run("Inactive user", func(t *testing.T) {
		db.Model(&models.User{}).Where("email = ?", "sender@example.com").Update("is_active", false)
		_, err := Authenticate(db, "sender@example.com", "Correct-Horse-9")
		assert.True(t, errors.Is(err, ErrAccountInactive))
	})
}

func TestSessionLifecycle(t *testing.T) {
	db := setupTestDB(t)
	user, err := CreateUser(db, "Admin", "admin@example.com", "Sup3r-Secret!", models.RoleAdmin)
	require.NoError(t, err)

	session, err := CreateSession(db, user.ID, "127.0.0.1", "TestAgent")
	require.NoError(t, err)
	assert.Len(t, session.Token, SessionTokenLength*2)
	assert.WithinDuration(t, time.Now().Add(DefaultSessionDuration), session.ExpiresAt, 10*time.Second)

	valid, err := ValidateSession(db, session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.ID, valid.ID)
	assert.Equal(t, "admin@example.com", valid.User.Email)

	_, err = ValidateSession(db, "invalid-token")
	assert.True(t, errors.Is(err, ErrSessionNotFound))

	require.NoError(t, DeleteSession(db, session.Token))
	_, err = ValidateSession(db, session.Token)
	assert.True(t, errors.Is(err, ErrSessionNotFound))
}

func TestSessionExpiry(t *testing.T) {
	db := setupTestDB(t)

	db.Create(&models.Session{
		ID:        "sess-expired",
		UserID:    "user-exp",
		Token:     "expired-token",
		ExpiresAt: time.Now().Add(-1 * time.Hour),
	})

	sess, err := ValidateSession(db, "expired-token")
	assert.True(t, errors.Is(err, ErrSessionExpired))
	assert.Nil(t, sess)

	var count int64
	db.Model(&models.Session{}).Where("token = ?", "expired-token").Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestCleanupExpiredSessions(t *testing.T) {
	db := setupTestDB(t)

	db.Create(&models.Session{ID: "sess-valid", Token: "valid", ExpiresAt: time.Now().Add(1 * time.Hour)})
	db.Create(&models.Session{ID: "sess-expired-1", Token: "exp1", ExpiresAt: time.Now().Add(-1 * time.Hour)})
	db.Create(&models.Session{ID: "sess-expired-2", Token: "exp2", ExpiresAt: time.Now().Add(-2 * time.Hour)})

	removed, err := CleanupExpiredSessions(db)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	var remaining []models.Session
	db.Find(&remaining)
	require.Len(t, remaining, 1)
	assert.Equal(t, "sess-valid", remaining[0].ID)
}

func TestDeleteAllUserSessions(t *testing.T) {
	db := setupTestDB(t)

	db.Create(&models.Session{ID: "s1", UserID: "target-user", Token: "t1", ExpiresAt: time.Now().Add(time.Hour)})
	db.Create(&models.Session{ID: "s2", UserID: "target-user", Token: "t2", ExpiresAt: time.Now().Add(time.Hour)})
	db.Create(&models.Session{ID: "s3", UserID: "other-user", Token: "t3", ExpiresAt: time.Now().Add(time.Hour)})

	require.NoError(t, DeleteAllUserSessions(db, "target-user"))

	var count int64
	db.Model(&models.Session{}).Where("user_id = ?", "target-user").Count(&count)
	assert.Equal(t, int64(0), count)
	db.Model(&models.Session{}).Where("user_id = ?", "other-user").Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestLockoutRevokesSessions(t *testing.T) {
	db := setupTestDB(t)
	user, err := CreateUser(db, "Sender", "sender@example.com", "Correct-Horse-9", models.RoleSender)
	require.NoError(t, err)
	_, err = CreateSession(db, user.ID, "127.0.0.1", "TestAgent")
	require.NoError(t, err)

	for i := 0; i < MaxFailedLogins-1; i++ {
		_, _ = Authenticate(db, "sender@example.com", "wrong")
	}
	var count int64
	db.Model(&models.Session{}).Where("user_id = ?", user.ID).Count(&count)
	assert.Equal(t, int64(1), count, "sessions survive until the lockout")

	_, _ = Authenticate(db, "sender@example.com", "wrong")
	db.Model(&models.Session{}).Where("user_id = ?", user.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}
