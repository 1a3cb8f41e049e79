package handlers

import (
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"checklist_app_go/db"
	"checklist_app_go/middleware"
	"checklist_app_go/models"
	"checklist_app_go/services"

	"github.com/labstack/echo/v4"
)

const exportLinkExpiry = 15 * time.Minute

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// attachmentName builds a download file name from a title
func attachmentName(title, ext string) string {
	name := unsafeFileChars.ReplaceAllString(title, "_")
	if name == "" || name == "_" {
		name = "checklist"
	}
	return name + ext
}

// loadSubmission finds the submission of the :id route param together with its checklist
func loadSubmission(c echo.Context) (*models.Checklist, *models.Submission, error) {
	submission, err := services.NewSubmissionService(db.DB, nil).Find(c.Param("id"))
	if err != nil {
		return nil, nil, err
	}
	checklist, err := services.NewChecklistService(db.DB).Find(submission.ChecklistID)
	if err != nil {
		return nil, nil, err
	}
	return checklist, submission, nil
}

// ListSubmissionsHandler returns the submissions of a checklist, newest first
func ListSubmissionsHandler(c echo.Context) error {
	checklist, err := services.NewChecklistService(db.DB).Find(c.Param("id"))
	if err != nil {
		return apiError(c, err)
	}
	submissions, err := services.NewSubmissionService(db.DB, nil).List(checklist.ID)
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusOK, submissions)
}

// GetSubmissionHandler returns a single submission
func GetSubmissionHandler(c echo.Context) error {
	submission, err := services.NewSubmissionService(db.DB, nil).Find(c.Param("id"))
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusOK, submission)
}

// SubmissionEmailHandler shows the target email exactly as it was sent
func SubmissionEmailHandler(c echo.Context) error {
	checklist, submission, err := loadSubmission(c)
	if err != nil {
		return apiError(c, err)
	}
	return c.HTML(http.StatusOK, services.SubmissionEmailHTML(checklist, submission))
}

// SubmissionPDFHandler renders the sent target email as PDF and keeps a copy in storage
func SubmissionPDFHandler(c echo.Context) error {
	ctx := c.Request().Context()
	checklist, submission, err := loadSubmission(c)
	if err != nil {
		return apiError(c, err)
	}

	pdf, err := services.GenerateSubmissionPDF(ctx, checklist, submission)
	if err != nil {
		return apiError(c, err)
	}

	if services.Storage != nil {
		if _, err := services.PutBytes(ctx, services.Storage, services.GenerateSubmissionPDFKey(checklist.ID, submission.ID), pdf); err != nil {
			c.Logger().Warnf("Failed to store PDF of submission %s: %v", submission.ID, err)
		}
	}

	filename := attachmentName(checklist.Title+"_"+submission.EmployeeID, ".pdf")
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Blob(http.StatusOK, services.ContentTypePDF, pdf)
}

// ResendSubmissionHandler sends both notification emails of a submission again
func ResendSubmissionHandler(c echo.Context) error {
	checklist, submission, err := loadSubmission(c)
	if err != nil {
		return apiError(c, err)
	}

	mailer, err := newRequestMailer(c)
	if err != nil {
		return apiError(c, err)
	}
	defer services.CloseMailer(mailer)

	svc := services.NewSubmissionService(db.DB, services.NewNotificationDispatcher(mailer, middleware.GetLocale(c)))
	submission, err = svc.ResendNotification(c.Request().Context(), checklist, submission.ID)

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), services.AuditEvent{
		Action:       models.AuditActionResendNotify,
		ResourceType: services.AuditResourceSubmission,
		ResourceID:   c.Param("id"),
		ResourceName: checklist.Title,
		Description:  resendDescription(err),
	})

	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusOK, submission)
}

func resendDescription(err error) string {
	if err != nil {
		return "Notification re-sent, delivery failed"
	}
	return "Notification re-sent"
}

// DeleteSubmissionHandler removes a submission so the employee can submit again
func DeleteSubmissionHandler(c echo.Context) error {
	svc := services.NewSubmissionService(db.DB, nil)
	submission, err := svc.Find(c.Param("id"))
	if err != nil {
		return apiError(c, err)
	}
	if err := svc.Delete(submission.ID); err != nil {
		return apiError(c, err)
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), services.AuditEvent{
		Action:       models.AuditActionDelete,
		ResourceType: services.AuditResourceSubmission,
		ResourceID:   submission.ID,
		ResourceName: submission.Name + " (" + submission.EmployeeID + ")",
		Description:  "Submission deleted",
		OldValues:    submission,
	})

	return c.NoContent(http.StatusNoContent)
}

// ExportSubmissionsHandler stores an XLSX export of all submissions. Remote storage answers
// with a redirect to a short-lived signed URL, local storage streams the file.
func ExportSubmissionsHandler(c echo.Context) error {
	ctx := c.Request().Context()
	checklist, err := services.NewChecklistService(db.DB).Find(c.Param("id"))
	if err != nil {
		return apiError(c, err)
	}
	submissions, err := services.NewSubmissionService(db.DB, nil).List(checklist.ID)
	if err != nil {
		return apiError(c, err)
	}

	stored, err := services.StoreSubmissionsExport(ctx, services.Storage, checklist, submissions)
	if err != nil {
		return apiError(c, err)
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), services.AuditEvent{
		Action:       models.AuditActionExport,
		ResourceType: services.AuditResourceChecklist,
		ResourceID:   checklist.ID,
		ResourceName: checklist.Title,
		Description:  fmt.Sprintf("Exported %d submissions", len(submissions)),
	})

	if services.Storage.IsRemote() {
		url, err := services.Storage.GetSignedURL(ctx, stored.Key, exportLinkExpiry)
		if err != nil {
			return apiError(c, err)
		}
		return c.Redirect(http.StatusFound, url)
	}

	reader, contentType, err := services.Storage.Get(ctx, stored.Key)
	if err != nil {
		return apiError(c, err)
	}
	defer reader.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, attachmentName(checklist.Title, ".xlsx")))
	c.Response().Header().Set(echo.HeaderContentType, contentType)
	c.Response().WriteHeader(http.StatusOK)
	_, err = io.Copy(c.Response().Writer, reader)
	return err
}
