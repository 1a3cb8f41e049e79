package partials

import (
	"context"
	"io"
	"strings"
	"time"

	"checklist_app_go/services/i18n"

	"github.com/a-h/templ"
)

// HTMLWriter writes markup and keeps the first write error
type HTMLWriter struct {
	w   io.Writer
	err error
}

func NewHTMLWriter(w io.Writer) *HTMLWriter {
	return &HTMLWriter{w: w}
}

// Raw writes trusted markup as is
func (hw *HTMLWriter) Raw(parts ...string) {
	for _, s := range parts {
		if hw.err != nil {
			return
		}
		_, hw.err = io.WriteString(hw.w, s)
	}
}

// Text writes escaped text
func (hw *HTMLWriter) Text(s string) {
	hw.Raw(templ.EscapeString(s))
}

// Component renders a nested component into the same writer
func (hw *HTMLWriter) Component(ctx context.Context, c templ.Component) {
	if hw.err != nil {
		return
	}
	hw.err = c.Render(ctx, hw.w)
}

func (hw *HTMLWriter) Err() error {
	return hw.err
}

// Attr escapes a value for use inside a double-quoted attribute
func Attr(s string) string {
	return templ.EscapeString(s)
}

// Checked returns the checked attribute when on is true
func Checked(on bool) string {
	if on {
		return " checked"
	}
	return ""
}

// FormatDateTime formats t the way German users read it
func FormatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02.01.2006 15:04")
}

// Multiline escapes s and keeps its line breaks
func Multiline(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	for i, line := range lines {
		lines[i] = templ.EscapeString(line)
	}
	return strings.Join(lines, "<br>")
}

// FieldError renders the translated message for a failed field, if any
func FieldError(ctx context.Context, errs map[string]string, field string) string {
	key, ok := errs[field]
	if !ok {
		return ""
	}
	return `<p class="field-error">` + templ.EscapeString(i18n.T(ctx, key)) + `</p>`
}

// Alert renders a dismissable error banner
func Alert(message string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if message == "" {
			return nil
		}
		hw := NewHTMLWriter(w)
		hw.Raw(`<div class="alert alert-error" role="alert">`)
		hw.Text(message)
		hw.Raw(`</div>`)
		return hw.Err()
	})
}
