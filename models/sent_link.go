package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SentLink records an invitation email that the mail transport accepted
type SentLink struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	ChecklistID    string  `gorm:"type:uuid;not null;index" json:"checklist_id"`
	RecipientName  string  `gorm:"not null" json:"recipient_name"`
	RecipientEmail string  `gorm:"not null" json:"recipient_email"`
	PersonName     string  `json:"person_name,omitempty"`
	EmployeeID     string  `gorm:"not null;index" json:"mitarbeiter_id"`
	URL            string  `gorm:"type:text" json:"url"`
	SentByID       *string `gorm:"type:uuid" json:"sent_by_id,omitempty"`
}

// BeforeCreate hook to generate UUID
func (l *SentLink) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for SentLink model
func (SentLink) TableName() string {
	return "sent_links"
}
