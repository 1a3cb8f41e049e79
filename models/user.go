package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User roles
const (
	RoleAdmin  = "admin"  // Manages checklists, templates and mail settings
	RoleSender = "sender" // Sends links and reads submissions
)

// User is a back-office account. Employees filling checklists have no account.
type User struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name        string     `gorm:"not null" json:"name"`
	Email       string     `gorm:"uniqueIndex;not null" json:"email"`
	Password    string     `gorm:"not null" json:"-"`
	Role        string     `gorm:"not null;default:sender" json:"role"`
	IsActive    bool       `gorm:"not null;default:true" json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at"`

	FailedLoginAttempts int        `gorm:"not null;default:0" json:"-"`
	LockoutUntil        *time.Time `json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	u.Email = NormalizeEmail(u.Email)
	return nil
}

func (User) TableName() string {
	return "users"
}

// NormalizeEmail is the form emails are stored and looked up in
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsLocked reports whether the account is inside a lockout window at now
func (u *User) IsLocked(now time.Time) bool {
	return u.LockoutUntil != nil && now.Before(*u.LockoutUntil)
}

// FailedLoginUpdates returns the columns to write after a wrong password.
// Reaching maxAttempts resets the counter and locks the account until now+lockout.
func (u *User) FailedLoginUpdates(maxAttempts int, lockout time.Duration, now time.Time) map[string]interface{} {
	attempts := u.FailedLoginAttempts + 1
	if attempts < maxAttempts {
		return map[string]interface{}{"failed_login_attempts": attempts}
	}
	return map[string]interface{}{
		"failed_login_attempts": 0,
		"lockout_until":         now.Add(lockout),
	}
}

// SuccessfulLoginUpdates clears the lockout state and stamps the login time
func (u *User) SuccessfulLoginUpdates(now time.Time) map[string]interface{} {
	return map[string]interface{}{
		"failed_login_attempts": 0,
		"lockout_until":         nil,
		"last_login_at":         now,
	}
}

func IsValidRole(role string) bool {
	return role == RoleAdmin || role == RoleSender
}
