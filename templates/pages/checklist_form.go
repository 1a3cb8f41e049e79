package pages

import (
	"context"
	"io"

	"checklist_app_go/middleware"
	"checklist_app_go/models"
	"checklist_app_go/services"
	"checklist_app_go/services/i18n"
	"checklist_app_go/templates/partials"

	"github.com/a-h/templ"
)

const turnstileScript = middleware.TurnstileOrigin + "/turnstile/v0/api.js"

// ChecklistFormData is the view model of the public form
type ChecklistFormData struct {
	Checklist  *models.Checklist
	Name       string
	EmployeeID string
	Email      string
	// Posted values when the form is shown again after a failed submit, nil on first view
	Posted           services.FieldReader
	Errors           map[string]string // field -> message key
	FormError        string            // already translated
	CSRFToken        string
	TurnstileSiteKey string
}

// itemValues returns the values to preselect for an item
func (d ChecklistFormData) itemValues(item *models.GroupItem) []string {
	if d.Posted != nil {
		if item.Type == models.ItemTypeCheckbox {
			return d.Posted.FormValues(item.FieldKey())
		}
		if v := d.Posted.FormValue(item.FieldKey()); v != "" {
			return []string{v}
		}
		return nil
	}

	var values []string
	for _, opt := range item.Options {
		if opt.Active {
			values = append(values, opt.Label)
			if item.Type == models.ItemTypeRadio {
				break
			}
		}
	}
	return values
}

// ChecklistForm renders the public checklist form
func ChecklistForm(data ChecklistFormData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return Layout(pageTitle(ctx, data.Checklist.Title), checklistFormBody(data)).Render(ctx, w)
	})
}

func checklistFormBody(data ChecklistFormData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := partials.NewHTMLWriter(w)
		checklist := data.Checklist

		hw.Raw(`<h1>`)
		hw.Text(checklist.Title)
		hw.Raw(`</h1>`)
		hw.Component(ctx, partials.Alert(data.FormError))
		hw.Raw(`<p class="hint">`)
		hw.Text(i18n.T(ctx, "form.required_hint"))
		hw.Raw(`</p>`)

		hw.Raw(`<form method="post" action="/checklists/`, partials.Attr(checklist.ID), `/fill">`)
		hw.Raw(`<input type="hidden" name="_csrf" value="`, partials.Attr(data.CSRFToken), `">`)

		hw.Raw(`<fieldset><legend>`)
		hw.Text(i18n.T(ctx, "form.person_section"))
		hw.Raw(`</legend>`)
		personField(ctx, hw, data, "name", "text", i18n.T(ctx, "form.name"), data.Name)
		personField(ctx, hw, data, "mitarbeiter_id", "text", i18n.T(ctx, "form.mitarbeiter_id"), data.EmployeeID)
		personField(ctx, hw, data, "email", "email", i18n.T(ctx, "form.email"), data.Email)
		hw.Raw(`</fieldset>`)

		for gi := range checklist.Groups {
			group := &checklist.Groups[gi]
			hw.Raw(`<fieldset><legend>`)
			hw.Text(group.Title)
			hw.Raw(`</legend>`)
			if group.Description != "" {
				hw.Raw(`<p class="hint">`, partials.Multiline(group.Description), `</p>`)
			}
			for ii := range group.Items {
				itemField(hw, &group.Items[ii], data.itemValues(&group.Items[ii]))
			}
			hw.Raw(`</fieldset>`)
		}

		if data.TurnstileSiteKey != "" {
			hw.Raw(`<div class="cf-turnstile" data-sitekey="`, partials.Attr(data.TurnstileSiteKey), `"></div>`)
			hw.Raw(`<script src="`, turnstileScript, `" async defer nonce="`, partials.Attr(middleware.GetNonce(ctx)), `"></script>`)
		}

		hw.Raw(`<p><button type="submit">`)
		hw.Text(i18n.T(ctx, "form.submit"))
		hw.Raw(`</button></p></form>`)
		return hw.Err()
	})
}

func personField(ctx context.Context, hw *partials.HTMLWriter, data ChecklistFormData, name, inputType, label, value string) {
	hw.Raw(`<label class="field" for="`, name, `">`)
	hw.Text(label)
	hw.Raw(` *</label><input type="`, inputType, `" id="`, name, `" name="`, name, `" value="`, partials.Attr(value), `" required>`)
	hw.Raw(partials.FieldError(ctx, data.Errors, name))
}

func itemField(hw *partials.HTMLWriter, item *models.GroupItem, selected []string) {
	key := partials.Attr(item.FieldKey())

	switch item.Type {
	case models.ItemTypeText:
		value := ""
		if len(selected) > 0 {
			value = selected[0]
		}
		hw.Raw(`<label class="field" for="`, key, `">`)
		hw.Text(item.Label)
		hw.Raw(`</label><textarea id="`, key, `" name="`, key, `" rows="2">`)
		hw.Text(value)
		hw.Raw(`</textarea>`)

	case models.ItemTypeRadio, models.ItemTypeCheckbox:
		hw.Raw(`<label class="field">`)
		hw.Text(item.Label)
		hw.Raw(`</label>`)
		for _, opt := range item.Options {
			hw.Raw(`<label class="option"><input type="`, string(item.Type), `" name="`, key, `" value="`, partials.Attr(opt.Label), `"`)
			hw.Raw(partials.Checked(contains(selected, opt.Label)), `> `)
			hw.Text(opt.Label)
			hw.Raw(`</label>`)
		}
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
