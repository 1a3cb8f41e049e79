package services

import (
	"context"
	"io"
	"regexp"
	"strings"

	"checklist_app_go/models"

	"github.com/a-h/templ"
)

// placeholderRegex matches literal {{key}} tokens. Keys may contain unicode letters ({{stückliste}});
// spaced forms such as {{ key }} are not placeholders.
var placeholderRegex = regexp.MustCompile(`\{\{([\p{L}\p{N}_.]+)\}\}`)

// RenderTemplate replaces {{key}} placeholders with the supplied values.
// Placeholders without a supplied key are left in the output unchanged.
// Values are inserted as-is, callers escape them beforehand.
func RenderTemplate(content string, placeholders map[string]string) string {
	return placeholderRegex.ReplaceAllStringFunc(content, func(match string) string {
		key := placeholderRegex.FindStringSubmatch(match)[1]

		value, ok := placeholders[key]
		if !ok {
			return match
		}
		return value
	})
}

// UnresolvedPlaceholders lists the placeholder keys in content that are not supplied
func UnresolvedPlaceholders(content string, placeholders map[string]string) []string {
	var missing []string
	for _, m := range placeholderRegex.FindAllStringSubmatch(content, -1) {
		if _, ok := placeholders[m[1]]; !ok && !containsString(missing, m[1]) {
			missing = append(missing, m[1])
		}
	}
	return missing
}

// FormatSubmissionForEmail renders the collected data as an HTML fragment:
// one heading and list per group, checkbox selections as nested lists.
// Labels and values are escaped exactly once.
func FormatSubmissionForEmail(data models.SubmissionData) string {
	var sb strings.Builder
	if err := submissionFragment(data).Render(context.Background(), &sb); err != nil {
		// Rendering to a strings.Builder cannot fail
		return ""
	}
	return sb.String()
}

func submissionFragment(data models.SubmissionData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		for _, group := range data {
			if _, err := io.WriteString(w, "<h3>"+templ.EscapeString(group.Title)+"</h3>\n<ul>\n"); err != nil {
				return err
			}
			for _, item := range group.Items {
				if _, err := io.WriteString(w, itemLine(item)); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, "</ul>\n"); err != nil {
				return err
			}
		}
		return nil
	})
}

func itemLine(item models.ItemEntry) string {
	label := "<strong>" + templ.EscapeString(item.Label) + "</strong>"

	if item.Value.IsList() {
		var sb strings.Builder
		sb.WriteString("<li>" + label + ":\n<ul>\n")
		for _, v := range item.Value.List {
			sb.WriteString("<li>" + escapeMultiline(v) + "</li>\n")
		}
		sb.WriteString("</ul>\n</li>\n")
		return sb.String()
	}

	return "<li>" + label + ": " + escapeMultiline(item.Value.Text) + "</li>\n"
}

// escapeMultiline escapes s and turns line breaks into <br>
func escapeMultiline(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = templ.EscapeString(line)
	}
	return strings.Join(lines, "<br>")
}
