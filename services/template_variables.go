package services

import (
	"strings"

	"checklist_app_go/models"

	"github.com/a-h/templ"
	"github.com/microcosm-cc/bluemonday"
)

// Placeholder keys stored in admin-authored templates. Renaming any of them breaks saved templates.
const (
	PlaceholderName           = "name"
	PlaceholderEmployeeID     = "mitarbeiter_id"
	PlaceholderEmail          = "email"
	PlaceholderChecklistTitle = "stückliste"
	PlaceholderSelection      = "auswahl"
	PlaceholderReplyEmail     = "rueckfragen_email"
	PlaceholderDate           = "datum"

	PlaceholderRecipientName       = "recipient_name"
	PlaceholderRecipientNameLegacy = "empfaenger_name"
	PlaceholderPersonName          = "person_name"
	PlaceholderIntro               = "intro"
	PlaceholderLink                = "link"
)

// TemplateKind identifies one of the three checklist templates
type TemplateKind string

const (
	TemplateSubmission   TemplateKind = "submission"
	TemplateConfirmation TemplateKind = "confirmation"
	TemplateLink         TemplateKind = "link"
)

// Variable represents a single template placeholder
type Variable struct {
	Key      string `json:"key"`       // e.g., "mitarbeiter_id"
	LabelKey string `json:"label_key"` // i18n key
	Example  string `json:"example"`
}

// GetVariableDictionary returns the placeholders available to each template kind
func GetVariableDictionary() map[TemplateKind][]Variable {
	submission := []Variable{
		{Key: PlaceholderName, LabelKey: "placeholder.name", Example: "Alice Muster"},
		{Key: PlaceholderEmployeeID, LabelKey: "placeholder.mitarbeiter_id", Example: "EMP-1"},
		{Key: PlaceholderEmail, LabelKey: "placeholder.email", Example: "alice@example.com"},
		{Key: PlaceholderChecklistTitle, LabelKey: "placeholder.stueckliste", Example: "IT-Ausstattung"},
		{Key: PlaceholderSelection, LabelKey: "placeholder.auswahl", Example: "<h3>Hardware</h3><ul><li><strong>Laptop</strong>: MacBook</li></ul>"},
		{Key: PlaceholderReplyEmail, LabelKey: "placeholder.rueckfragen_email", Example: "it@example.com"},
		{Key: PlaceholderDate, LabelKey: "placeholder.datum", Example: "17.10.2026 09:30"},
	}

	link := []Variable{
		{Key: PlaceholderRecipientName, LabelKey: "placeholder.recipient_name", Example: "Bob Leiter"},
		{Key: PlaceholderRecipientNameLegacy, LabelKey: "placeholder.recipient_name", Example: "Bob Leiter"},
		{Key: PlaceholderPersonName, LabelKey: "placeholder.person_name", Example: "Alice Muster"},
		{Key: PlaceholderEmployeeID, LabelKey: "placeholder.mitarbeiter_id", Example: "EMP-1"},
		{Key: PlaceholderIntro, LabelKey: "placeholder.intro", Example: "Willkommen im Team!"},
		{Key: PlaceholderLink, LabelKey: "placeholder.link", Example: "https://checklists.example.com/checklists/123/fill"},
		{Key: PlaceholderChecklistTitle, LabelKey: "placeholder.stueckliste", Example: "IT-Ausstattung"},
	}

	return map[TemplateKind][]Variable{
		TemplateSubmission:   submission,
		TemplateConfirmation: submission,
		TemplateLink:         link,
	}
}

// SubmissionPlaceholders builds the values for the submission and confirmation templates.
// Everything is escaped except auswahl, which is already-safe HTML.
func SubmissionPlaceholders(checklist *models.Checklist, submission *models.Submission) map[string]string {
	replyEmail := checklist.ReplyEmail
	if replyEmail == "" {
		replyEmail = checklist.TargetEmail
	}

	return map[string]string{
		PlaceholderName:           templ.EscapeString(submission.Name),
		PlaceholderEmployeeID:     templ.EscapeString(submission.EmployeeID),
		PlaceholderEmail:          templ.EscapeString(submission.Email),
		PlaceholderChecklistTitle: templ.EscapeString(checklist.Title),
		PlaceholderSelection:      FormatSubmissionForEmail(submission.Data),
		PlaceholderReplyEmail:     templ.EscapeString(replyEmail),
		PlaceholderDate:           submission.SubmittedAt.Format("02.01.2006 15:04"),
	}
}

// LinkPlaceholders builds the values for the link invitation template.
// The intro is admin-entered rich text and is sanitized rather than escaped.
func LinkPlaceholders(checklist *models.Checklist, req LinkRequest, link string) map[string]string {
	recipient := templ.EscapeString(strings.TrimSpace(req.RecipientName))

	return map[string]string{
		PlaceholderRecipientName:       recipient,
		PlaceholderRecipientNameLegacy: recipient,
		PlaceholderPersonName:          templ.EscapeString(req.DisplayName()),
		PlaceholderEmployeeID:          templ.EscapeString(strings.TrimSpace(req.EmployeeID)),
		PlaceholderIntro:               SanitizeIntro(req.Intro),
		PlaceholderLink:                templ.EscapeString(link),
		PlaceholderChecklistTitle:      templ.EscapeString(checklist.Title),
	}
}

// SanitizeIntro strips unsafe markup from the intro text and keeps its line breaks
func SanitizeIntro(intro string) string {
	intro = strings.TrimSpace(intro)
	if intro == "" {
		return ""
	}
	p := bluemonday.UGCPolicy()
	intro = p.Sanitize(strings.ReplaceAll(intro, "\r\n", "\n"))
	return strings.ReplaceAll(intro, "\n", "<br>")
}

// Built-in templates used when a checklist has no custom template
const (
	DefaultSubmissionTemplate = `<p>Neue Eingabe zur Checkliste <strong>{{stückliste}}</strong></p>
<p>Name: {{name}}<br>
Mitarbeiter-ID: {{mitarbeiter_id}}<br>
E-Mail: {{email}}<br>
Eingegangen am: {{datum}}</p>
{{auswahl}}`

	DefaultConfirmationTemplate = `<p>Hallo {{name}},</p>
<p>vielen Dank für Ihre Angaben zur Checkliste <strong>{{stückliste}}</strong>. Wir haben folgende Auswahl erhalten:</p>
{{auswahl}}
<p>Bei Rückfragen wenden Sie sich bitte an {{rueckfragen_email}}.</p>`

	DefaultLinkTemplate = `<p>Hallo {{recipient_name}},</p>
<p>{{intro}}</p>
<p>bitte füllen Sie die Checkliste <strong>{{stückliste}}</strong> für {{person_name}} (Mitarbeiter-ID {{mitarbeiter_id}}) aus:</p>
<p><a href="{{link}}">{{link}}</a></p>`
)

// ResolveTemplate returns the checklist's custom template of the given kind, or the built-in default
func ResolveTemplate(checklist *models.Checklist, kind TemplateKind) string {
	var custom string
	switch kind {
	case TemplateSubmission:
		custom = checklist.SubmissionTemplate
	case TemplateConfirmation:
		custom = checklist.ConfirmationTemplate
	case TemplateLink:
		custom = checklist.LinkTemplate
	}
	if strings.TrimSpace(custom) != "" {
		return custom
	}

	switch kind {
	case TemplateConfirmation:
		return DefaultConfirmationTemplate
	case TemplateLink:
		return DefaultLinkTemplate
	default:
		return DefaultSubmissionTemplate
	}
}
