package services

import (
	"context"
	"fmt"
	"os"
	"time"

	"checklist_app_go/models"

	"github.com/a-h/templ"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// pdfTimeout bounds a single headless Chrome render
const pdfTimeout = 30 * time.Second

// PDFOptions contains options for PDF generation
type PDFOptions struct {
	PageSize  string // A4, letter
	Landscape bool
	MarginMM  float64
}

// DefaultPDFOptions returns A4 portrait with 20mm margins
func DefaultPDFOptions() PDFOptions {
	return PDFOptions{PageSize: "A4", MarginMM: 20}
}

// paperSize returns width and height in inches
func (o PDFOptions) paperSize() (float64, float64) {
	w, h := 8.27, 11.69
	if o.PageSize == "letter" {
		w, h = 8.5, 11.0
	}
	if o.Landscape {
		return h, w
	}
	return w, h
}

// GeneratePDF renders HTML content to PDF using headless Chrome.
// CHROME_PATH selects a custom executable (headless-shell in Docker).
func GeneratePDF(ctx context.Context, htmlContent string, options PDFOptions) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.DisableGPU,
	)
	if chromePath := os.Getenv("CHROME_PATH"); chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
	}

	ctx, cancel := context.WithTimeout(ctx, pdfTimeout)
	defer cancel()

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	width, height := options.paperSize()
	margin := options.MarginMM / 25.4

	var pdfBuf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPaperWidth(width).
				WithPaperHeight(height).
				WithMarginTop(margin).
				WithMarginBottom(margin).
				WithMarginLeft(margin).
				WithMarginRight(margin).
				WithPrintBackground(true).
				Do(ctx)
			if err != nil {
				return err
			}
			pdfBuf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return pdfBuf, nil
}

// WrapHTMLForPDF wraps an email body in a printable document. The title is escaped,
// the body is trusted rendered HTML.
func WrapHTMLForPDF(title, body string) string {
	return `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>` + templ.EscapeString(title) + `</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; font-size: 11pt; line-height: 1.45; color: #111; }
h1 { font-size: 16pt; margin-bottom: 12pt; }
h3 { font-size: 12pt; margin: 14pt 0 4pt; border-bottom: 1px solid #ccc; }
ul { margin: 0 0 8pt 16pt; padding: 0; }
li { margin-bottom: 3pt; }
</style>
</head>
<body>
<h1>` + templ.EscapeString(title) + `</h1>
` + body + `
</body>
</html>`
}

// SubmissionEmailHTML returns the target email as sent, rendering it again when it was never stored
func SubmissionEmailHTML(checklist *models.Checklist, submission *models.Submission) string {
	if submission.GeneratedEmail != "" {
		return submission.GeneratedEmail
	}
	return RenderTemplate(ResolveTemplate(checklist, TemplateSubmission), SubmissionPlaceholders(checklist, submission))
}

// GenerateSubmissionPDF prints the submission's target email
func GenerateSubmissionPDF(ctx context.Context, checklist *models.Checklist, submission *models.Submission) ([]byte, error) {
	title := fmt.Sprintf("%s – %s (%s)", checklist.Title, submission.Name, submission.EmployeeID)
	return GeneratePDF(ctx, WrapHTMLForPDF(title, SubmissionEmailHTML(checklist, submission)), DefaultPDFOptions())
}
