package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"checklist_app_go/models"
	"checklist_app_go/services/i18n"
)

// NotificationDispatcher sends the target and confirmation emails for a submission
type NotificationDispatcher struct {
	Mailer Mailer
	Lang   string
}

func NewNotificationDispatcher(mailer Mailer, lang string) *NotificationDispatcher {
	return &NotificationDispatcher{Mailer: mailer, Lang: lang}
}

// Notify renders both templates and sends them. Both sends are always attempted.
// The rendered target HTML is returned even when delivery failed; failures come back as
// joined *EmailDeliveryError values.
func (d *NotificationDispatcher) Notify(ctx context.Context, checklist *models.Checklist, submission *models.Submission) (string, error) {
	placeholders := SubmissionPlaceholders(checklist, submission)
	targetHTML := RenderTemplate(ResolveTemplate(checklist, TemplateSubmission), placeholders)
	confirmationHTML := RenderTemplate(ResolveTemplate(checklist, TemplateConfirmation), placeholders)

	subjectArgs := map[string]interface{}{
		"title": headerSafe(checklist.Title),
		"name":  headerSafe(submission.Name),
	}

	var errs []error

	if err := ValidateChecklistForSend(checklist); err != nil {
		errs = append(errs, &EmailDeliveryError{To: checklist.TargetEmail, Err: err})
	} else if err := d.send(ctx, &Email{
		To:       []string{checklist.TargetEmail},
		ReplyTo:  submission.Email,
		Subject:  i18n.Translate(d.Lang, "email.subject.submission", subjectArgs),
		HTMLBody: targetHTML,
	}); err != nil {
		errs = append(errs, err)
	}

	replyTo := checklist.ReplyEmail
	if replyTo == "" {
		replyTo = checklist.TargetEmail
	}
	if err := d.send(ctx, &Email{
		To:       []string{submission.Email},
		ReplyTo:  replyTo,
		Subject:  i18n.Translate(d.Lang, "email.subject.confirmation", subjectArgs),
		HTMLBody: confirmationHTML,
	}); err != nil {
		errs = append(errs, err)
	}

	return targetHTML, errors.Join(errs...)
}

func (d *NotificationDispatcher) send(ctx context.Context, email *Email) error {
	if err := d.Mailer.Send(ctx, email); err != nil {
		to := strings.Join(email.To, ", ")
		log.Printf("[ERROR] Email delivery to %s failed: %v", to, err)
		return &EmailDeliveryError{To: to, Err: err}
	}
	return nil
}

// headerSafe strips line breaks so user input cannot inject headers into the subject
func headerSafe(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
