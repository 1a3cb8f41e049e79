package pages

import (
	"context"
	"io"

	"checklist_app_go/services/i18n"
	"checklist_app_go/templates/partials"

	"github.com/a-h/templ"
)

// Login renders the admin login form. errorMessage is already translated.
func Login(csrfToken, email, errorMessage string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			hw := partials.NewHTMLWriter(w)
			hw.Raw(`<h1>`)
			hw.Text(i18n.T(ctx, "auth.login.title"))
			hw.Raw(`</h1>`)
			hw.Component(ctx, partials.Alert(errorMessage))
			hw.Raw(`<form method="post" action="/login">`)
			hw.Raw(`<input type="hidden" name="_csrf" value="`, partials.Attr(csrfToken), `">`)
			hw.Raw(`<label class="field" for="email">`)
			hw.Text(i18n.T(ctx, "auth.login.email"))
			hw.Raw(`</label><input type="email" id="email" name="email" value="`, partials.Attr(email), `" autocomplete="username" required>`)
			hw.Raw(`<label class="field" for="password">`)
			hw.Text(i18n.T(ctx, "auth.login.password"))
			hw.Raw(`</label><input type="password" id="password" name="password" autocomplete="current-password" required>`)
			hw.Raw(`<p><button type="submit">`)
			hw.Text(i18n.T(ctx, "auth.login.submit"))
			hw.Raw(`</button></p></form>`)
			return hw.Err()
		})
		return Layout(pageTitle(ctx, i18n.T(ctx, "auth.login.title")), body).Render(ctx, w)
	})
}
