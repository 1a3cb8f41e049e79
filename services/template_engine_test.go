package services

import (
	"strings"
	"testing"

	"checklist_app_go/models"

	"github.com/stretchr/testify/assert"
)

func TestRenderTemplate(t *testing.T) {
	tests := []struct {
		name         string
		content      string
		placeholders map[string]string
		expected     string
	}{
		{
			name:         "All placeholders supplied",
			content:      "Hello {{name}}, list: {{auswahl}}",
			placeholders: map[string]string{"name": "Ann", "auswahl": "<ul></ul>"},
			expected:     "Hello Ann, list: <ul></ul>",
		},
		{
			name:         "Unresolved placeholder passes through",
			content:      "Hi {{unknown}}",
			placeholders: map[string]string{},
			expected:     "Hi {{unknown}}",
		},
		{
			name:         "Unicode key",
			content:      "Checkliste: {{stückliste}}",
			placeholders: map[string]string{"stückliste": "IT-Ausstattung"},
			expected:     "Checkliste: IT-Ausstattung",
		},
		{
			name:         "Spaced token is literal text",
			content:      "{{ name }}|{{name}}",
			placeholders: map[string]string{"name": "Ann"},
			expected:     "{{ name }}|Ann",
		},
		{
			name:         "Repeated placeholder",
			content:      "{{link}} {{link}}",
			placeholders: map[string]string{"link": "x"},
			expected:     "x x",
		},
		{
			name:         "Supplied empty value replaces token",
			content:      "[{{intro}}]",
			placeholders: map[string]string{"intro": ""},
			expected:     "[]",
		},
		{
			name:         "Malformed tag",
			content:      "Hello {{name",
			placeholders: map[string]string{"name": "Ann"},
			expected:     "Hello {{name",
		},
		{
			name:         "Values are not rescanned",
			content:      "{{a}}",
			placeholders: map[string]string{"a": "{{b}}", "b": "nope"},
			expected:     "{{b}}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RenderTemplate(tt.content, tt.placeholders))
		})
	}
}

func TestUnresolvedPlaceholders(t *testing.T) {
	missing := UnresolvedPlaceholders("{{name}} {{foo}} {{bar}} {{foo}}", map[string]string{"name": "x"})
	assert.Equal(t, []string{"foo", "bar"}, missing)
}

func hardwareData(value string) models.SubmissionData {
	var data models.SubmissionData
	data.Set("Hardware", "Laptop", models.ItemValue{Type: models.ItemTypeRadio, Text: value})
	return data
}

func TestFormatSubmissionForEmail_Structure(t *testing.T) {
	var data models.SubmissionData
	data.Set("Hardware", "Laptop", models.ItemValue{Type: models.ItemTypeRadio, Text: "MacBook"})
	data.Set("Hardware", "Gear", models.ItemValue{Type: models.ItemTypeCheckbox, List: []string{"Mouse", "Headset"}})

	html := FormatSubmissionForEmail(data)

	expected := "<h3>Hardware</h3>\n<ul>\n" +
		"<li><strong>Laptop</strong>: MacBook</li>\n" +
		"<li><strong>Gear</strong>:\n<ul>\n<li>Mouse</li>\n<li>Headset</li>\n</ul>\n</li>\n" +
		"</ul>\n"
	assert.Equal(t, expected, html)
}

func TestFormatSubmissionForEmail_EscapesUserInput(t *testing.T) {
	payloads := []string{
		`<script>alert("x")</script>`,
		`<img src=x onerror=alert(1)>`,
		`<a href="javascript:alert(1)">click</a>`,
		`"quoted" & <tag>`,
	}

	for _, payload := range payloads {
		var data models.SubmissionData
		data.Set("<h1>Group</h1>", `<b onmouseover="x">Label</b>`, models.ItemValue{Type: models.ItemTypeText, Text: payload})
		data.Set("<h1>Group</h1>", "List", models.ItemValue{Type: models.ItemTypeCheckbox, List: []string{payload}})

		html := FormatSubmissionForEmail(data)

		assert.NotContains(t, html, "<script")
		assert.NotContains(t, html, "<img")
		assert.NotContains(t, html, "<a ")
		assert.NotContains(t, html, "<b ")
		assert.NotContains(t, html, "<h1>")
		assert.NotContains(t, html, `"`, "quotes must be escaped")
		// Executable substrings may only survive inside escaped text
		for _, bad := range []string{"onerror=", "javascript:"} {
			if idx := strings.Index(html, bad); idx >= 0 {
				assert.Contains(t, html[:idx], "&lt;", "unescaped %s", bad)
			}
		}
	}
}

func TestFormatSubmissionForEmail_NoDoubleEscaping(t *testing.T) {
	html := FormatSubmissionForEmail(hardwareData("&lt;b&gt;"))
	assert.Contains(t, html, "&amp;lt;b&amp;gt;")
	assert.NotContains(t, html, "&amp;amp;")
}

func TestFormatSubmissionForEmail_NewlinesBecomeBreaks(t *testing.T) {
	var data models.SubmissionData
	data.Set("Notes", "Comment", models.ItemValue{Type: models.ItemTypeText, Text: "line one\r\n<line two>\nline three"})

	html := FormatSubmissionForEmail(data)
	assert.Contains(t, html, "line one<br>&lt;line two&gt;<br>line three")
}

func TestFormatSubmissionForEmail_Empty(t *testing.T) {
	assert.Equal(t, "", FormatSubmissionForEmail(nil))
}

func TestRenderTemplate_MaliciousSelection(t *testing.T) {
	checklist := &models.Checklist{Title: "IT Equipment", TargetEmail: "it@example.com"}
	submission := &models.Submission{Name: "Alice", EmployeeID: "EMP-1", Data: hardwareData("<img onerror=alert(1)>")}

	html := RenderTemplate("{{stückliste}}: {{auswahl}}", SubmissionPlaceholders(checklist, submission))

	assert.True(t, strings.HasPrefix(html, "IT Equipment: <h3>Hardware</h3>"))
	assert.Contains(t, html, "&lt;img onerror=alert(1)&gt;")
	assert.NotContains(t, html, "<img")
}
