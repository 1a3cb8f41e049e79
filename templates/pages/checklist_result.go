package pages

import (
	"context"
	"io"

	"checklist_app_go/models"
	"checklist_app_go/services/i18n"
	"checklist_app_go/templates/partials"

	"github.com/a-h/templ"
)

// SubmissionSuccess confirms a stored submission. deliveryFailed switches to the
// message that the confirmation email could not be sent.
func SubmissionSuccess(checklist *models.Checklist, submission *models.Submission, deliveryFailed bool) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		message := i18n.T(ctx, "form.success.message", map[string]interface{}{"email": submission.Email})
		if deliveryFailed {
			message = i18n.T(ctx, "form.success.delivery_pending")
		}
		return Layout(pageTitle(ctx, checklist.Title), messageBody(checklist.Title, i18n.T(ctx, "form.success.title"), message)).Render(ctx, w)
	})
}

// AlreadySubmitted tells the visitor that the employee id has been used for this checklist
func AlreadySubmitted(checklist *models.Checklist, employeeID string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		replyTo := checklist.ReplyEmail
		if replyTo == "" {
			replyTo = checklist.TargetEmail
		}
		message := i18n.T(ctx, "form.already_submitted.message", map[string]interface{}{
			"mitarbeiter_id": employeeID,
			"reply_email":    replyTo,
		})
		return Layout(pageTitle(ctx, checklist.Title), messageBody(checklist.Title, i18n.T(ctx, "form.already_submitted.title"), message)).Render(ctx, w)
	})
}

func messageBody(checklistTitle, heading, message string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := partials.NewHTMLWriter(w)
		hw.Raw(`<p class="hint">`)
		hw.Text(checklistTitle)
		hw.Raw(`</p><h1>`)
		hw.Text(heading)
		hw.Raw(`</h1><p>`)
		hw.Text(message)
		hw.Raw(`</p>`)
		return hw.Err()
	})
}
