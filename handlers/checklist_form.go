package handlers

import (
	"errors"
	"net/http"
	"strings"

	"checklist_app_go/db"
	"checklist_app_go/middleware"
	"checklist_app_go/models"
	"checklist_app_go/services"
	"checklist_app_go/services/i18n"
	"checklist_app_go/templates/pages"

	"github.com/labstack/echo/v4"
)

// TurnstileField is the form field the Turnstile widget posts its token in
const TurnstileField = "cf-turnstile-response"

// loadPublicChecklist finds the checklist of the :id route param, or answers 404
func loadPublicChecklist(c echo.Context) (*models.Checklist, error) {
	ctx := c.Request().Context()
	checklist, err := services.NewChecklistService(db.DB).Find(c.Param("id"))
	if errors.Is(err, services.ErrChecklistNotFound) {
		return nil, echo.NewHTTPError(http.StatusNotFound, i18n.T(ctx, "error.not_found"))
	}
	if err != nil {
		c.Logger().Errorf("Failed to load checklist %s: %v", c.Param("id"), err)
		return nil, echo.NewHTTPError(http.StatusInternalServerError, i18n.T(ctx, "error.internal"))
	}
	return checklist, nil
}

// ChecklistFormHandler renders the public form, prefilled from the link's query parameters.
// An employee id that already submitted gets the already-submitted page instead.
func ChecklistFormHandler(c echo.Context) error {
	checklist, err := loadPublicChecklist(c)
	if err != nil {
		return err
	}

	data := pages.ChecklistFormData{
		Checklist:        checklist,
		Name:             strings.TrimSpace(c.QueryParam("name")),
		EmployeeID:       strings.TrimSpace(c.QueryParam("mitarbeiter_id")),
		Email:            strings.TrimSpace(c.QueryParam("email")),
		CSRFToken:        middleware.GetCSRFToken(c),
		TurnstileSiteKey: getConfig(c).TurnstileSiteKey,
	}

	if data.EmployeeID != "" {
		exists, err := services.NewSubmissionService(db.DB, nil).HasSubmission(checklist.ID, data.EmployeeID)
		if err != nil {
			c.Logger().Errorf("Failed to check for an existing submission: %v", err)
			return echo.NewHTTPError(http.StatusInternalServerError, i18n.T(c.Request().Context(), "error.internal"))
		}
		if exists {
			return render(c, http.StatusOK, pages.AlreadySubmitted(checklist, data.EmployeeID))
		}
	}

	return render(c, http.StatusOK, pages.ChecklistForm(data))
}

// SubmitChecklistHandler stores a public submission and sends both notification emails.
// The submission is kept even when delivery fails; the failure is logged for operators
// and the visitor is told that the confirmation could not be sent.
func SubmitChecklistHandler(c echo.Context) error {
	ctx := c.Request().Context()
	cfg := getConfig(c)

	checklist, err := loadPublicChecklist(c)
	if err != nil {
		return err
	}

	data := pages.ChecklistFormData{
		Checklist:        checklist,
		Name:             strings.TrimSpace(c.FormValue("name")),
		EmployeeID:       strings.TrimSpace(c.FormValue("mitarbeiter_id")),
		Email:            strings.TrimSpace(c.FormValue("email")),
		Posted:           formReader{c},
		CSRFToken:        middleware.GetCSRFToken(c),
		TurnstileSiteKey: cfg.TurnstileSiteKey,
	}

	if cfg.TurnstileSecretKey != "" {
		verifier := services.NewCaptchaVerifier(cfg.TurnstileSecretKey, cfg.AppURL)
		if err := verifier.Verify(ctx, c.FormValue(TurnstileField), c.RealIP()); err != nil {
			c.Logger().Warnf("Turnstile verification failed: %v", err)
			services.Monitor.TrackCaptchaFailure(c.RealIP())
			data.FormError = i18n.T(ctx, "error.captcha")
			return render(c, http.StatusBadRequest, pages.ChecklistForm(data))
		}
	}

	// A broken transport must not cost the visitor their answers: the submission is
	// stored and the failure ends up in NotifyError like any other delivery error.
	mailer, err := newRequestMailer(c)
	if err != nil {
		c.Logger().Errorf("Mail transport not usable, storing submission without notification: %v", err)
		mailer = services.UnavailableMailer{Err: err}
	}
	defer services.CloseMailer(mailer)

	dispatcher := services.NewNotificationDispatcher(mailer, middleware.GetLocale(c))
	submission, err := services.NewSubmissionService(db.DB, dispatcher).Submit(ctx, checklist, services.SubmitRequest{
		Name:       data.Name,
		EmployeeID: data.EmployeeID,
		Email:      data.Email,
		IPAddress:  c.RealIP(),
		UserAgent:  c.Request().UserAgent(),
	}, formReader{c})

	var validationErr *services.ValidationError
	switch {
	case err == nil:
		return render(c, http.StatusOK, pages.SubmissionSuccess(checklist, submission, false))

	case submission != nil && errors.Is(err, services.ErrDeliveryFailed):
		c.Logger().Errorf("Submission %s stored, notification failed: %v", submission.ID, err)
		return render(c, http.StatusBadGateway, pages.SubmissionSuccess(checklist, submission, true))

	case errors.As(err, &validationErr):
		data.Errors = validationErr.Fields
		data.FormError = i18n.T(ctx, "error.invalid_request")
		return render(c, http.StatusBadRequest, pages.ChecklistForm(data))

	case errors.Is(err, services.ErrDuplicateSubmission):
		return render(c, http.StatusConflict, pages.AlreadySubmitted(checklist, data.EmployeeID))

	case errors.Is(err, services.ErrUnsupportedItemType):
		c.Logger().Errorf("Checklist %s has a broken schema: %v", checklist.ID, err)
		data.FormError = i18n.T(ctx, "error.unsupported_item")
		return render(c, http.StatusInternalServerError, pages.ChecklistForm(data))

	default:
		c.Logger().Errorf("Failed to submit checklist %s: %v", checklist.ID, err)
		data.FormError = i18n.T(ctx, "error.internal")
		return render(c, http.StatusInternalServerError, pages.ChecklistForm(data))
	}
}
