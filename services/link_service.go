package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"checklist_app_go/models"
	"checklist_app_go/services/i18n"

	"gorm.io/gorm"
)

// LinkRequest describes one invitation to fill out a checklist
type LinkRequest struct {
	RecipientName  string  `json:"recipient_name" form:"recipient_name"`
	RecipientEmail string  `json:"recipient_email" form:"recipient_email"`
	EmployeeID     string  `json:"mitarbeiter_id" form:"mitarbeiter_id"`
	PersonName     string  `json:"person_name" form:"person_name"` // Person the checklist is for, defaults to the recipient
	Intro          string  `json:"intro" form:"intro"`
	SentByID       *string `json:"-" form:"-"`
}

// DisplayName is the name prefilled in the form
func (r LinkRequest) DisplayName() string {
	if name := strings.TrimSpace(r.PersonName); name != "" {
		return name
	}
	return strings.TrimSpace(r.RecipientName)
}

// LinkService validates, builds and sends checklist invitation links
type LinkService struct {
	DB      *gorm.DB
	Mailer  Mailer
	BaseURL string
	Lang    string
}

func NewLinkService(db *gorm.DB, mailer Mailer, baseURL, lang string) *LinkService {
	return &LinkService{DB: db, Mailer: mailer, BaseURL: baseURL, Lang: lang}
}

// SendChecklistLink emails a prefilled form link to the recipient.
// The duplicate check is not atomic with a later submit; the unique index on submissions
// stays the authority, so a concurrent submit can at worst cause one extra invitation.
// A SentLink is only recorded when the mailer accepted the message.
func (s *LinkService) SendChecklistLink(ctx context.Context, checklist *models.Checklist, req LinkRequest) (*models.SentLink, error) {
	req.RecipientName = strings.TrimSpace(req.RecipientName)
	req.RecipientEmail = strings.TrimSpace(req.RecipientEmail)
	req.EmployeeID = strings.TrimSpace(req.EmployeeID)
	req.PersonName = strings.TrimSpace(req.PersonName)

	v := &ValidationError{}
	validatePerson(v, "recipient_name", req.RecipientName, "recipient_email", req.RecipientEmail, req.EmployeeID)
	if err := ValidateChecklistForSend(checklist); err != nil {
		for field, msg := range err.(*ValidationError).Fields {
			v.Add(field, msg)
		}
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	submissions := &SubmissionService{DB: s.DB}
	exists, err := submissions.HasSubmission(checklist.ID, req.EmployeeID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateSubmission
	}

	link := BuildChecklistLink(s.BaseURL, checklist.ID, req.DisplayName(), req.EmployeeID, req.RecipientEmail)
	body := RenderTemplate(ResolveTemplate(checklist, TemplateLink), LinkPlaceholders(checklist, req, link))

	subject := i18n.Translate(s.Lang, "email.subject.link", map[string]interface{}{
		"title": headerSafe(checklist.Title),
	})
	email := &Email{
		To:       []string{req.RecipientEmail},
		ReplyTo:  checklist.ReplyEmail,
		Subject:  subject,
		HTMLBody: body,
	}
	if err := s.Mailer.Send(ctx, email); err != nil {
		return nil, &EmailDeliveryError{To: req.RecipientEmail, Err: err}
	}

	sent := &models.SentLink{
		ChecklistID:    checklist.ID,
		RecipientName:  req.RecipientName,
		RecipientEmail: req.RecipientEmail,
		PersonName:     req.PersonName,
		EmployeeID:     req.EmployeeID,
		URL:            link,
		SentByID:       req.SentByID,
	}
	if err := s.DB.Create(sent).Error; err != nil {
		return nil, fmt.Errorf("link sent but not recorded: %w", err)
	}
	return sent, nil
}

// ListSentLinks returns the invitations sent for a checklist, newest first
func (s *LinkService) ListSentLinks(checklistID string) ([]models.SentLink, error) {
	var links []models.SentLink
	err := s.DB.Where("checklist_id = ?", checklistID).Order("created_at DESC").Find(&links).Error
	return links, err
}

// BuildChecklistLink builds the absolute, prefilled form URL. The parameters are not signed.
func BuildChecklistLink(baseURL, checklistID, name, employeeID, email string) string {
	q := url.Values{}
	q.Set("name", name)
	q.Set("mitarbeiter_id", employeeID)
	q.Set("email", email)
	return strings.TrimRight(baseURL, "/") + "/checklists/" + url.PathEscape(checklistID) + "/fill?" + q.Encode()
}
