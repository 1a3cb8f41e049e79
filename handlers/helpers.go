package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"checklist_app_go/config"
	"checklist_app_go/db"
	"checklist_app_go/services"
	"checklist_app_go/services/i18n"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// formReader exposes the posted body of an echo request to the collector.
// echo's FormValue and FormParams merge the query string in; answers come from the body only.
type formReader struct {
	c echo.Context
}

func (r formReader) postForm() url.Values {
	// FormParams parses urlencoded and multipart bodies, which fills PostForm
	if _, err := r.c.FormParams(); err != nil {
		return nil
	}
	return r.c.Request().PostForm
}

func (r formReader) FormValue(key string) string {
	return r.postForm().Get(key)
}

func (r formReader) FormValues(key string) []string {
	return r.postForm()[key]
}

// newRequestMailer builds the mailer for the current request from the mail settings row.
// Tests replace it with a stub.
var newRequestMailer = func(c echo.Context) (services.Mailer, error) {
	mc, err := services.NewMailSettingsService(db.DB).MailerConfig(getConfig(c))
	if err != nil {
		return nil, err
	}
	return services.NewMailer(mc)
}

func getConfig(c echo.Context) *config.Config {
	if cfg, ok := c.Get("config").(*config.Config); ok {
		return cfg
	}
	return &config.Config{}
}

// render writes a templ component as an HTML response
func render(c echo.Context, status int, component templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(status)
	return component.Render(c.Request().Context(), c.Response().Writer)
}

// translateFields turns validation message keys into messages of the request language
func translateFields(ctx context.Context, fields map[string]string) map[string]string {
	out := make(map[string]string, len(fields))
	for field, key := range fields {
		out[field] = i18n.T(ctx, key)
	}
	return out
}

func isNotFound(err error) bool {
	return errors.Is(err, services.ErrChecklistNotFound) ||
		errors.Is(err, services.ErrSubmissionNotFound) ||
		errors.Is(err, services.ErrGroupNotFound) ||
		errors.Is(err, services.ErrItemNotFound)
}

// apiError maps service errors to JSON responses. Delivery and internal errors are
// logged with their cause and answered with a generic message.
func apiError(c echo.Context, err error) error {
	ctx := c.Request().Context()

	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":  i18n.T(ctx, "error.invalid_request"),
			"fields": translateFields(ctx, validationErr.Fields),
		})
	case errors.Is(err, services.ErrDuplicateSubmission):
		return c.JSON(http.StatusConflict, map[string]string{"error": i18n.T(ctx, "error.duplicate_submission")})
	case isNotFound(err):
		return c.JSON(http.StatusNotFound, map[string]string{"error": i18n.T(ctx, "error.not_found")})
	case errors.Is(err, services.ErrUnsupportedItemType):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": i18n.T(ctx, "error.unsupported_item")})
	case errors.Is(err, services.ErrDeliveryFailed):
		c.Logger().Errorf("Failed to handle %s %s: %v", c.Request().Method, c.Path(), err)
		return c.JSON(http.StatusBadGateway, map[string]string{"error": i18n.T(ctx, "error.delivery_failed")})
	default:
		c.Logger().Errorf("Failed to handle %s %s: %v", c.Request().Method, c.Path(), err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": i18n.T(ctx, "error.internal")})
	}
}

// badRequest answers a malformed request body
func badRequest(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": i18n.T(c.Request().Context(), "error.invalid_request")})
}
