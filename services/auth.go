package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"checklist_app_go/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	BcryptCost = 10
	// SessionTokenLength is in bytes; tokens are hex encoded
	SessionTokenLength     = 32
	DefaultSessionDuration = 7 * 24 * time.Hour

	MaxFailedLogins = 5
	LockoutDuration = 15 * time.Minute
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountLocked      = errors.New("account is locked")
	ErrAccountInactive    = errors.New("account is deactivated")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
)

// timingHash is compared against when the email is unknown so both paths cost one bcrypt check
var timingHash = func() string {
	hash, err := bcrypt.GenerateFromPassword([]byte("checklist-timing-equalizer"), BcryptCost)
	if err != nil {
		panic(err)
	}
	return string(hash)
}()

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func VerifyPassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}

// Authenticate checks email and password and maintains the lockout counter.
// The account that reaches MaxFailedLogins loses its open sessions.
func Authenticate(db *gorm.DB, email, password string) (*models.User, error) {
	email = models.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	var user models.User
	err := db.Where("email = ?", email).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		VerifyPassword(timingHash, password)
		return nil, ErrInvalidCredentials
	case err != nil:
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	now := time.Now()
	if user.IsLocked(now) {
		return nil, ErrAccountLocked
	}

	if !VerifyPassword(user.Password, password) {
		updates := user.FailedLoginUpdates(MaxFailedLogins, LockoutDuration, now)
		if err := db.Model(&user).Updates(updates).Error; err != nil {
			log.Printf("[ERROR] Failed to record login failure for %s: %v", user.ID, err)
		}
		if _, locked := updates["lockout_until"]; locked {
			log.Printf("[SECURITY] Account %s locked for %s", user.Email, LockoutDuration)
			if err := DeleteAllUserSessions(db, user.ID); err != nil {
				log.Printf("[ERROR] %v", err)
			}
		}
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	if err := db.Model(&user).Updates(user.SuccessfulLoginUpdates(now)).Error; err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}
	user.LastLoginAt = &now
	return &user, nil
}

func newSessionToken() (string, error) {
	buf := make([]byte, SessionTokenLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// CreateSession opens a session for userID valid for DefaultSessionDuration
func CreateSession(db *gorm.DB, userID, ipAddress, userAgent string) (*models.Session, error) {
	token, err := newSessionToken()
	if err != nil {
		return nil, err
	}

	session := &models.Session{
		UserID:    userID,
		Token:     token,
		ExpiresAt: time.Now().Add(DefaultSessionDuration),
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
	if err := db.Create(session).Error; err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// ValidateSession loads the session for token with its user. Expired sessions are deleted on sight.
func ValidateSession(db *gorm.DB, token string) (*models.Session, error) {
	var session models.Session
	err := db.Preload("User").Where("token = ?", token).First(&session).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ErrSessionNotFound
	case err != nil:
		return nil, fmt.Errorf("failed to validate session: %w", err)
	}

	if session.IsExpired() {
		db.Delete(&session)
		return nil, ErrSessionExpired
	}
	return &session, nil
}

func DeleteSession(db *gorm.DB, token string) error {
	if err := db.Where("token = ?", token).Delete(&models.Session{}).Error; err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// CleanupExpiredSessions is run by the scheduler
func CleanupExpiredSessions(db *gorm.DB) (int64, error) {
	result := db.Where("expires_at < ?", time.Now()).Delete(&models.Session{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to cleanup expired sessions: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		log.Printf("[INFO] Cleaned up %d expired sessions", result.RowsAffected)
	}
	return result.RowsAffected, nil
}

func DeleteAllUserSessions(db *gorm.DB, userID string) error {
	result := db.Where("user_id = ?", userID).Delete(&models.Session{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete sessions of user %s: %w", userID, result.Error)
	}
	if result.RowsAffected > 0 {
		log.Printf("[INFO] Revoked %d sessions of user %s", result.RowsAffected, userID)
	}
	return nil
}

// CreateUser validates the input, hashes the password and stores the account
func CreateUser(db *gorm.DB, name, email, password, role string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = models.NormalizeEmail(email)

	v := &ValidationError{}
	if name == "" {
		v.Add("name", MsgRequired)
	}
	if !IsValidEmail(email) {
		v.Add("email", MsgInvalidEmail)
	}
	if msg := PasswordPolicyViolation(password); msg != "" {
		v.Add("password", msg)
	}
	if !models.IsValidRole(role) {
		v.Add("role", "validation.invalid_role")
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &models.User{Name: name, Email: email, Password: hash, Role: role, IsActive: true}
	if err := db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}
