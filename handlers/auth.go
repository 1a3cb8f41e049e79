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

// LoginHandler renders the login page
func LoginHandler(c echo.Context) error {
	if middleware.GetCurrentUser(c) != nil {
		return c.Redirect(http.StatusSeeOther, "/")
	}
	return render(c, http.StatusOK, pages.Login(middleware.GetCSRFToken(c), "", ""))
}

// LoginPostHandler handles the login form. JSON clients get the user, browsers a redirect.
func LoginPostHandler(c echo.Context) error {
	ctx := c.Request().Context()
	email := strings.TrimSpace(c.FormValue("email"))
	password := c.FormValue("password")

	fail := func(status int, key string) error {
		if wantsJSON(c) {
			return c.JSON(status, map[string]string{"error": i18n.T(ctx, key)})
		}
		return render(c, status, pages.Login(middleware.GetCSRFToken(c), email, i18n.T(ctx, key)))
	}

	if email == "" || password == "" {
		return fail(http.StatusBadRequest, "auth.login.invalid")
	}

	user, err := services.Authenticate(db.DB, email, password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAccountLocked):
			services.LogSecurityEvent(db.DB, "LOGIN_LOCKED", "", "Locked account login attempt: "+email+" from "+c.RealIP())
			return fail(http.StatusTooManyRequests, "auth.login.locked")
		case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrAccountInactive):
			services.Monitor.TrackFailedLogin(c.RealIP())
			services.LogSecurityEvent(db.DB, "LOGIN_FAILED", "", "Failed login for "+email+" from "+c.RealIP())
			return fail(http.StatusUnauthorized, "auth.login.invalid")
		default:
			c.Logger().Errorf("Failed to authenticate: %v", err)
			return fail(http.StatusInternalServerError, "error.internal")
		}
	}

	session, err := services.CreateSession(db.DB, user.ID, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		c.Logger().Errorf("Failed to create session: %v", err)
		return fail(http.StatusInternalServerError, "error.internal")
	}
	middleware.SetSessionCookie(c, session)

	services.LogAuditEvent(db.DB, services.AuditContext{
		UserID:    user.ID,
		UserName:  user.Name,
		UserRole:  user.Role,
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}, services.AuditEvent{
		Action:       models.AuditActionLogin,
		ResourceType: services.AuditResourceSession,
		ResourceID:   session.ID,
		ResourceName: user.Email,
		Description:  "User logged in",
	})

	if wantsJSON(c) {
		return c.JSON(http.StatusOK, user)
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

// LogoutHandler deletes the session and clears the cookie
func LogoutHandler(c echo.Context) error {
	if user := middleware.GetCurrentUser(c); user != nil {
		services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), services.AuditEvent{
			Action:       models.AuditActionLogout,
			ResourceType: services.AuditResourceSession,
			ResourceName: user.Email,
			Description:  "User logged out",
		})
	}

	if cookie, err := c.Cookie(middleware.SessionCookieName); err == nil {
		if err := services.DeleteSession(db.DB, cookie.Value); err != nil {
			c.Logger().Warnf("Failed to delete session: %v", err)
		}
	}
	middleware.ClearSessionCookie(c)

	if wantsJSON(c) {
		return c.NoContent(http.StatusNoContent)
	}
	return c.Redirect(http.StatusSeeOther, "/login")
}

// GetCurrentUserHandler returns the current user info as JSON
func GetCurrentUserHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, i18n.T(c.Request().Context(), "error.unauthorized"))
	}
	// API clients echo this token back in X-CSRF-Token on writes
	if token := middleware.GetCSRFToken(c); token != "" {
		c.Response().Header().Set(echo.HeaderXCSRFToken, token)
	}
	return c.JSON(http.StatusOK, user)
}

// wantsJSON reports whether the caller asked for a JSON answer
func wantsJSON(c echo.Context) bool {
	return strings.HasPrefix(c.Request().URL.Path, "/api/") ||
		strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}
