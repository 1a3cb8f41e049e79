package handlers

import (
	"net/http"

	"checklist_app_go/db"
	"checklist_app_go/middleware"
	"checklist_app_go/models"
	"checklist_app_go/services"

	"github.com/labstack/echo/v4"
)

// SendChecklistLinkHandler emails a prefilled form link for one employee
func SendChecklistLinkHandler(c echo.Context) error {
	checklist, err := services.NewChecklistService(db.DB).Find(c.Param("id"))
	if err != nil {
		return apiError(c, err)
	}

	var req services.LinkRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c)
	}
	if user := middleware.GetCurrentUser(c); user != nil {
		req.SentByID = &user.ID
	}

	mailer, err := newRequestMailer(c)
	if err != nil {
		return apiError(c, err)
	}
	defer services.CloseMailer(mailer)

	cfg := getConfig(c)
	sent, err := services.NewLinkService(db.DB, mailer, cfg.AppURL, middleware.GetLocale(c)).SendChecklistLink(c.Request().Context(), checklist, req)
	if err != nil {
		return apiError(c, err)
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), services.AuditEvent{
		Action:       models.AuditActionSendLink,
		ResourceType: services.AuditResourceSentLink,
		ResourceID:   sent.ID,
		ResourceName: checklist.Title,
		Description:  "Link sent to " + sent.RecipientEmail + " for employee " + sent.EmployeeID,
	})

	return c.JSON(http.StatusCreated, sent)
}

// ListSentLinksHandler returns the invitations sent for a checklist
func ListSentLinksHandler(c echo.Context) error {
	links, err := services.NewLinkService(db.DB, nil, "", "").ListSentLinks(c.Param("id"))
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusOK, links)
}
