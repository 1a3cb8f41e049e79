package services

import (
	"encoding/json"
	"log"
	"time"

	"checklist_app_go/models"

	"gorm.io/gorm"
)

// Audited resource types
const (
	AuditResourceChecklist    = "Checklist"
	AuditResourceGroup        = "ChecklistGroup"
	AuditResourceItem         = "GroupItem"
	AuditResourceSubmission   = "Submission"
	AuditResourceSentLink     = "SentLink"
	AuditResourceMailSettings = "MailSettings"
	AuditResourceSession      = "Session"
	AuditResourceSecurity     = "SECURITY_EVENT"
)

const (
	defaultAuditPageSize = 50
	maxAuditPageSize     = 200
)

// AuditContext identifies who triggered an audited operation and from where
type AuditContext struct {
	UserID    string
	UserName  string
	UserRole  string
	IPAddress string
	UserAgent string
}

// AuditEvent describes one audited operation. Old and new values are stored as JSON snapshots.
type AuditEvent struct {
	Action       models.AuditAction
	ResourceType string
	ResourceID   string
	ResourceName string
	Description  string
	OldValues    interface{}
	NewValues    interface{}
}

func (e AuditEvent) entry(actor AuditContext) *models.AuditLog {
	entry := &models.AuditLog{
		UserName:     actor.UserName,
		UserRole:     actor.UserRole,
		ResourceType: e.ResourceType,
		ResourceID:   e.ResourceID,
		ResourceName: e.ResourceName,
		Action:       e.Action,
		Description:  e.Description,
		OldValues:    snapshot(e.OldValues),
		NewValues:    snapshot(e.NewValues),
		IPAddress:    actor.IPAddress,
		UserAgent:    actor.UserAgent,
	}
	if actor.UserID != "" {
		id := actor.UserID
		entry.UserID = &id
	}
	return entry
}

// snapshot renders v as JSON, empty for nil or unencodable values
func snapshot(v interface{}) string {
	if v == nil {
		return ""
	}
	raw, err := json.Marshal(v)
	if err != nil {
		log.Printf("[AUDIT] Failed to encode snapshot: %v", err)
		return ""
	}
	return string(raw)
}

// LogAuditEvent writes the entry in the background so the request is not held up
func LogAuditEvent(db *gorm.DB, actor AuditContext, event AuditEvent) {
	go func() {
		if err := RecordAuditEvent(db, actor, event); err != nil {
			log.Printf("[AUDIT] Failed to create audit log: %v", err)
		}
	}()
}

// RecordAuditEvent writes the entry in the caller's goroutine
func RecordAuditEvent(db *gorm.DB, actor AuditContext, event AuditEvent) error {
	return db.Create(event.entry(actor)).Error
}

// LogSecurityEvent writes eventType to the process log and, asynchronously, to the audit table
func LogSecurityEvent(db *gorm.DB, eventType, userID, details string) {
	log.Printf("[SECURITY] %s | User: %s | Details: %s", eventType, userID, details)
	LogAuditEvent(db, AuditContext{UserID: userID}, AuditEvent{
		Action:       models.AuditActionSecurity,
		ResourceType: AuditResourceSecurity,
		ResourceID:   eventType,
		Description:  details,
	})
}

// GetResourceAuditHistory returns every entry of one resource, newest first
func GetResourceAuditHistory(db *gorm.DB, resourceType, resourceID string) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	err := db.Where("resource_type = ? AND resource_id = ?", resourceType, resourceID).
		Order("created_at DESC").
		Find(&logs).Error
	return logs, err
}

// AuditLogQuery filters and pages the audit log. Zero values do not filter.
type AuditLogQuery struct {
	UserID       string
	ResourceType string
	Action       string
	From         time.Time
	To           time.Time
	Search       string

	Page     int
	PageSize int
}

// AuditLogPage is one page of ListAuditLogs
type AuditLogPage struct {
	Logs     []models.AuditLog `json:"logs"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

func (q *AuditLogQuery) normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 || q.PageSize > maxAuditPageSize {
		q.PageSize = defaultAuditPageSize
	}
}

func (q AuditLogQuery) filters(tx *gorm.DB) *gorm.DB {
	if q.UserID != "" {
		tx = tx.Where("user_id = ?", q.UserID)
	}
	if q.ResourceType != "" {
		tx = tx.Where("resource_type = ?", q.ResourceType)
	}
	if q.Action != "" {
		tx = tx.Where("action = ?", q.Action)
	}
	if !q.From.IsZero() {
		tx = tx.Where("created_at >= ?", q.From)
	}
	if !q.To.IsZero() {
		tx = tx.Where("created_at <= ?", q.To)
	}
	if q.Search != "" {
		like := "%" + q.Search + "%"
		tx = tx.Where("resource_name LIKE ? OR description LIKE ? OR user_name LIKE ?", like, like, like)
	}
	return tx
}

// ListAuditLogs returns the requested page, newest first, with the total match count
func ListAuditLogs(db *gorm.DB, q AuditLogQuery) (AuditLogPage, error) {
	q.normalize()
	page := AuditLogPage{Page: q.Page, PageSize: q.PageSize, Logs: []models.AuditLog{}}

	if err := db.Model(&models.AuditLog{}).Scopes(q.filters).Count(&page.Total).Error; err != nil {
		return page, err
	}
	err := db.Scopes(q.filters).
		Order("created_at DESC").
		Offset((q.Page - 1) * q.PageSize).
		Limit(q.PageSize).
		Find(&page.Logs).Error
	return page, err
}
