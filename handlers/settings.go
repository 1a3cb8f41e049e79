package handlers

import (
	"net/http"

	"checklist_app_go/db"
	"checklist_app_go/middleware"
	"checklist_app_go/models"
	"checklist_app_go/services"

	"github.com/labstack/echo/v4"
)

// mailSettingsResponse hides the stored SMTP password and only tells whether one is set
type mailSettingsResponse struct {
	*models.MailSettings
	SMTPPasswordSet bool `json:"smtp_password_set"`
}

// mailSettingsRequest accepts the password on input, which the model never serializes
type mailSettingsRequest struct {
	Transport    string `json:"transport" form:"transport"`
	FromEmail    string `json:"from_email" form:"from_email"`
	FromName     string `json:"from_name" form:"from_name"`
	SMTPHost     string `json:"smtp_host" form:"smtp_host"`
	SMTPPort     int    `json:"smtp_port" form:"smtp_port"`
	SMTPUsername string `json:"smtp_username" form:"smtp_username"`
	SMTPPassword string `json:"smtp_password" form:"smtp_password"`
	SMTPInsecure bool   `json:"smtp_insecure" form:"smtp_insecure"`
}

// GetMailSettingsHandler returns the mail transport settings
func GetMailSettingsHandler(c echo.Context) error {
	settings, err := services.NewMailSettingsService(db.DB).Get()
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusOK, mailSettingsResponse{settings, settings.SMTPPassword != ""})
}

// UpdateMailSettingsHandler stores the mail transport settings. An empty password keeps the current one.
func UpdateMailSettingsHandler(c echo.Context) error {
	var req mailSettingsRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c)
	}

	settings, err := services.NewMailSettingsService(db.DB).Update(&models.MailSettings{
		Transport:    req.Transport,
		FromEmail:    req.FromEmail,
		FromName:     req.FromName,
		SMTPHost:     req.SMTPHost,
		SMTPPort:     req.SMTPPort,
		SMTPUsername: req.SMTPUsername,
		SMTPPassword: req.SMTPPassword,
		SMTPInsecure: req.SMTPInsecure,
	})
	if err != nil {
		return apiError(c, err)
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), services.AuditEvent{
		Action:       models.AuditActionUpdate,
		ResourceType: services.AuditResourceMailSettings,
		ResourceID:   "1",
		ResourceName: settings.Transport,
		Description:  "Mail settings updated",
		NewValues:    settings,
	})

	return c.JSON(http.StatusOK, mailSettingsResponse{settings, settings.SMTPPassword != ""})
}

// GetPlaceholdersHandler returns the placeholders each template kind understands
func GetPlaceholdersHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, services.GetVariableDictionary())
}
