package pages

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"checklist_app_go/models"
	"checklist_app_go/services/i18n"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type formValues url.Values

func (f formValues) FormValue(key string) string { return url.Values(f).Get(key) }

func (f formValues) FormValues(key string) []string { return f[key] }

func testChecklist() *models.Checklist {
	return &models.Checklist{
		ID:          "cl-1",
		Title:       "IT <Ausstattung>",
		TargetEmail: "it@example.com",
		Groups: []models.ChecklistGroup{{
			Title: "Hardware",
			Items: []models.GroupItem{
				{ID: "laptop", Label: "Laptop", Type: models.ItemTypeRadio, Options: []models.ItemOption{
					{Label: "MacBook", Active: true},
					{Label: "ThinkPad"},
				}},
				{ID: "extras", Label: "Extras", Type: models.ItemTypeCheckbox, Options: []models.ItemOption{
					{Label: "Maus"},
					{Label: "Headset", Active: true},
				}},
				{ID: "notes", Label: "Notizen", Type: models.ItemTypeText},
			},
		}},
	}
}

func renderString(t *testing.T, render func(ctx context.Context, sb *strings.Builder) error) string {
	t.Helper()
	require.NoError(t, i18n.Load())
	var sb strings.Builder
	require.NoError(t, render(context.Background(), &sb))
	return sb.String()
}

func TestChecklistForm_FirstView(t *testing.T) {
	html := renderString(t, func(ctx context.Context, sb *strings.Builder) error {
		return ChecklistForm(ChecklistFormData{
			Checklist:  testChecklist(),
			Name:       `Alice "A"`,
			EmployeeID: "EMP-1",
			CSRFToken:  "tok",
		}).Render(ctx, sb)
	})

	assert.Contains(t, html, "<h1>IT &lt;Ausstattung&gt;</h1>")
	assert.Contains(t, html, `value="Alice &#34;A&#34;"`)
	assert.Contains(t, html, `name="_csrf" value="tok"`)
	assert.Contains(t, html, `name="item_laptop" value="MacBook" checked>`)
	assert.Contains(t, html, `name="item_laptop" value="ThinkPad">`)
	assert.Contains(t, html, `name="item_extras" value="Headset" checked>`)
	assert.Contains(t, html, `<textarea id="item_notes" name="item_notes"`)
	assert.NotContains(t, html, "cf-turnstile")
}

func TestChecklistForm_RepostKeepsValues(t *testing.T) {
	posted := formValues{
		"item_laptop": {"ThinkPad"},
		"item_extras": {"Maus"},
		"item_notes":  {"<b>hi</b>"},
	}

	html := renderString(t, func(ctx context.Context, sb *strings.Builder) error {
		return ChecklistForm(ChecklistFormData{
			Checklist:        testChecklist(),
			Posted:           posted,
			Errors:           map[string]string{"email": "validation.invalid_email"},
			FormError:        "Fehler",
			TurnstileSiteKey: "site-key",
		}).Render(ctx, sb)
	})

	assert.Contains(t, html, `name="item_laptop" value="ThinkPad" checked>`)
	assert.Contains(t, html, `name="item_laptop" value="MacBook">`)
	assert.Contains(t, html, `name="item_extras" value="Maus" checked>`)
	assert.Contains(t, html, `name="item_extras" value="Headset">`)
	assert.Contains(t, html, "&lt;b&gt;hi&lt;/b&gt;</textarea>")
	assert.Contains(t, html, `<p class="field-error">Bitte geben Sie eine gültige E-Mail-Adresse ein.</p>`)
	assert.Contains(t, html, `role="alert">Fehler</div>`)
	assert.Contains(t, html, `data-sitekey="site-key"`)
}

func TestAlreadySubmitted(t *testing.T) {
	checklist := testChecklist()
	checklist.ReplyEmail = "hr@example.com"

	html := renderString(t, func(ctx context.Context, sb *strings.Builder) error {
		return AlreadySubmitted(checklist, "EMP-1").Render(ctx, sb)
	})

	assert.Contains(t, html, "Bereits ausgefüllt")
	assert.Contains(t, html, "EMP-1")
	assert.Contains(t, html, "hr@example.com")
}

func TestSubmissionSuccess(t *testing.T) {
	submission := &models.Submission{Email: "alice@example.com"}

	ok := renderString(t, func(ctx context.Context, sb *strings.Builder) error {
		return SubmissionSuccess(testChecklist(), submission, false).Render(ctx, sb)
	})
	assert.Contains(t, ok, "alice@example.com")

	failed := renderString(t, func(ctx context.Context, sb *strings.Builder) error {
		return SubmissionSuccess(testChecklist(), submission, true).Render(ctx, sb)
	})
	assert.Contains(t, failed, "konnte jedoch nicht versendet werden")
	assert.NotContains(t, failed, "alice@example.com")
}

func TestLogin(t *testing.T) {
	html := renderString(t, func(ctx context.Context, sb *strings.Builder) error {
		return Login("tok", "a@b.c", "E-Mail oder Passwort ist falsch.").Render(ctx, sb)
	})

	assert.Contains(t, html, `<html lang="de">`)
	assert.Contains(t, html, `name="_csrf" value="tok"`)
	assert.Contains(t, html, `value="a@b.c"`)
	assert.Contains(t, html, "E-Mail oder Passwort ist falsch.")
}
