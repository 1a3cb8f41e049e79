package models

import (
	"time"
)

// Mail transports
const (
	MailTransportResend = "resend"
	MailTransportSMTP   = "smtp"
	MailTransportLog    = "log"
)

// MailSettingsID is the primary key of the single settings row
const MailSettingsID = 1

// MailSettings is the persisted mailer configuration edited by administrators.
// Empty fields fall back to the environment configuration.
type MailSettings struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UpdatedAt time.Time `json:"updated_at"`

	Transport string `gorm:"type:varchar(16)" json:"transport"`
	FromEmail string `json:"from_email"`
	FromName  string `json:"from_name"`

	SMTPHost     string `json:"smtp_host"`
	SMTPPort     int    `json:"smtp_port"`
	SMTPUsername string `json:"smtp_username"`
	SMTPPassword string `json:"-"`
	SMTPInsecure bool   `json:"smtp_insecure"` // Skip TLS certificate verification
}

// TableName specifies the table name for MailSettings model
func (MailSettings) TableName() string {
	return "mail_settings"
}

// IsValidMailTransport checks if the transport is known
func IsValidMailTransport(transport string) bool {
	switch transport {
	case MailTransportResend, MailTransportSMTP, MailTransportLog:
		return true
	}
	return false
}
