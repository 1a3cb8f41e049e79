package pages

import (
	"context"
	"io"

	"checklist_app_go/middleware"
	"checklist_app_go/services/i18n"
	"checklist_app_go/templates/partials"

	"github.com/a-h/templ"
)

const baseStyles = `body{font-family:Arial,Helvetica,sans-serif;background:#f5f6f8;color:#1f2933;margin:0}
main{max-width:760px;margin:2rem auto;background:#fff;border-radius:8px;padding:2rem;box-shadow:0 1px 3px rgba(0,0,0,.08)}
h1{font-size:1.5rem;margin-top:0}fieldset{border:1px solid #e4e7eb;border-radius:6px;margin:1.5rem 0;padding:1rem 1.25rem}
legend{font-weight:600;padding:0 .25rem}label.field{display:block;margin:.75rem 0 .25rem;font-weight:600}
input[type=text],input[type=email],input[type=password],textarea{width:100%;box-sizing:border-box;padding:.5rem;border:1px solid #cbd2d9;border-radius:4px}
.option{display:block;margin:.25rem 0}.field-error{color:#b91c1c;margin:.25rem 0 0;font-size:.9rem}
.alert{padding:.75rem 1rem;border-radius:6px;margin-bottom:1rem}.alert-error{background:#fee2e2;color:#991b1b}
.hint{color:#616e7c;font-size:.9rem}button{background:#1d4ed8;color:#fff;border:0;border-radius:4px;padding:.6rem 1.4rem;font-size:1rem;cursor:pointer}`

// Layout wraps a page body into the HTML document
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := partials.NewHTMLWriter(w)
		hw.Raw(`<!DOCTYPE html><html lang="`, partials.Attr(i18n.GetLocale(ctx)), `"><head><meta charset="utf-8">`)
		hw.Raw(`<meta name="viewport" content="width=device-width, initial-scale=1"><title>`)
		hw.Text(title)
		hw.Raw(`</title><style nonce="`, partials.Attr(middleware.GetNonce(ctx)), `">`, baseStyles, `</style></head><body><main>`)
		hw.Component(ctx, body)
		hw.Raw(`</main></body></html>`)
		return hw.Err()
	})
}

// pageTitle appends the application name
func pageTitle(ctx context.Context, title string) string {
	return title + " | " + i18n.T(ctx, "app.name")
}
