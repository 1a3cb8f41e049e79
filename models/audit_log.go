package models

import (
	"encoding/json"
	"errors"
	"reflect"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditAction represents the type of operation performed
type AuditAction string

const (
	AuditActionCreate       AuditAction = "CREATE"
	AuditActionUpdate       AuditAction = "UPDATE"
	AuditActionDelete       AuditAction = "DELETE"
	AuditActionExport       AuditAction = "EXPORT"        // Submissions exported
	AuditActionSendLink     AuditAction = "SEND_LINK"     // Invitation link emailed
	AuditActionResendNotify AuditAction = "RESEND_NOTIFY" // Submission notification re-sent
	AuditActionLogin        AuditAction = "LOGIN"
	AuditActionLogout       AuditAction = "LOGOUT"
	AuditActionSecurity     AuditAction = "SECURITY" // Failed logins, captcha rejections
)

// ErrAuditLogImmutable is returned when an audit entry would be changed or removed
var ErrAuditLogImmutable = errors.New("audit log entries are immutable")

// AuditLog is an append-only record of an admin action or security event.
// Actor fields are copied so entries stay readable after users are removed.
type AuditLog struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index:idx_audit_created_at" json:"created_at"`

	UserID   *string `gorm:"type:uuid;index:idx_audit_user" json:"user_id,omitempty"`
	UserName string  `gorm:"not null" json:"user_name"`
	UserRole string  `gorm:"not null" json:"user_role"`

	// Resource ids are uuids except for the mail settings row
	ResourceType string `gorm:"not null;index:idx_audit_resource" json:"resource_type"`
	ResourceID   string `gorm:"type:varchar(64);not null;index:idx_audit_resource" json:"resource_id"`
	ResourceName string `json:"resource_name,omitempty"`

	Action      AuditAction `gorm:"not null;index:idx_audit_action" json:"action"`
	Description string      `gorm:"type:text" json:"description,omitempty"`

	OldValues string `gorm:"type:text" json:"old_values,omitempty"` // JSON snapshot before the change
	NewValues string `gorm:"type:text" json:"new_values,omitempty"` // JSON snapshot after the change

	IPAddress string `json:"ip_address,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`

	// Diff is computed on load from the two snapshots
	Diff []AuditChange `gorm:"-" json:"changes,omitempty"`
}

// AuditChange is one top-level field that differs between the snapshots
type AuditChange struct {
	Field string      `json:"field"`
	Old   interface{} `json:"old"`
	New   interface{} `json:"new"`
}

func decodeSnapshot(raw string) map[string]interface{} {
	values := map[string]interface{}{}
	if raw != "" {
		_ = json.Unmarshal([]byte(raw), &values)
	}
	return values
}

// Changes compares the old and new snapshots field by field, sorted by field name.
// Entries without an old snapshot (creates) report no changes.
func (a *AuditLog) Changes() []AuditChange {
	if a.OldValues == "" || a.NewValues == "" {
		return nil
	}
	before, after := decodeSnapshot(a.OldValues), decodeSnapshot(a.NewValues)

	var changes []AuditChange
	seen := make(map[string]bool, len(before))
	for field, old := range before {
		seen[field] = true
		if !reflect.DeepEqual(old, after[field]) {
			changes = append(changes, AuditChange{Field: field, Old: old, New: after[field]})
		}
	}
	for field, value := range after {
		if !seen[field] {
			changes = append(changes, AuditChange{Field: field, New: value})
		}
	}

	sort.Slice(changes, func(i, j int) bool { return changes[i].Field < changes[j].Field })
	return changes
}

// BeforeCreate hook to generate UUID
func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

// AfterFind fills Diff for API responses
func (a *AuditLog) AfterFind(tx *gorm.DB) error {
	a.Diff = a.Changes()
	return nil
}

func (a *AuditLog) BeforeUpdate(tx *gorm.DB) error {
	return ErrAuditLogImmutable
}

func (a *AuditLog) BeforeDelete(tx *gorm.DB) error {
	return ErrAuditLogImmutable
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
