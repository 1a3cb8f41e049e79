package models

import (
	"regexp"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SubmissionUniqueIndex guards one submission per (checklist, employee id)
const SubmissionUniqueIndex = "idx_submission_checklist_employee"

var employeeIDPattern = regexp.MustCompile(`^[A-Za-z0-9-]+$`)

// Submission is one filled-out checklist. Rows are hard-deleted so that a deleted
// submission frees its (checklist, employee id) slot.
type Submission struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ChecklistID string     `gorm:"type:uuid;not null;uniqueIndex:idx_submission_checklist_employee" json:"checklist_id"`
	Checklist   *Checklist `gorm:"foreignKey:ChecklistID" json:"checklist,omitempty"`

	Name       string         `gorm:"not null" json:"name"`
	EmployeeID string         `gorm:"not null;uniqueIndex:idx_submission_checklist_employee" json:"mitarbeiter_id"`
	Email      string         `gorm:"not null" json:"email"`
	Data       SubmissionData `gorm:"type:text" json:"data"`

	SubmittedAt    time.Time `gorm:"not null;index" json:"submitted_at"`
	GeneratedEmail string    `gorm:"type:text" json:"generated_email,omitempty"` // Target email HTML as sent
	NotifyError    string    `gorm:"type:text" json:"notify_error,omitempty"`    // Last delivery failure, operator-facing

	IPAddress string `json:"ip_address,omitempty"`
	UserAgent string `gorm:"type:text" json:"user_agent,omitempty"`
}

// BeforeCreate hook to generate UUID and stamp the submission time
func (s *Submission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.SubmittedAt.IsZero() {
		s.SubmittedAt = time.Now()
	}
	return nil
}

// TableName specifies the table name for Submission model
func (Submission) TableName() string {
	return "submissions"
}

// IsValidEmployeeID checks the employee id charset
func IsValidEmployeeID(id string) bool {
	return employeeIDPattern.MatchString(id)
}
