package middleware

import (
	"net/http"
	"strings"

	"checklist_app_go/config"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

// CSRFContextKey is where echo's CSRF middleware stores the token
const CSRFContextKey = "csrf"

// CSRF returns echo's double-submit cookie protection. Forms send the token as
// "_csrf", the admin API as the X-CSRF-Token header.
func CSRF(cfg *config.Config) echo.MiddlewareFunc {
	return echomiddleware.CSRFWithConfig(echomiddleware.CSRFConfig{
		TokenLookup:    "header:X-CSRF-Token,form:_csrf",
		ContextKey:     CSRFContextKey,
		CookieName:     "_csrf",
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSecure:   cfg.IsProduction(),
		CookieSameSite: http.SameSiteLaxMode,
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Request().URL.Path, "/health")
		},
	})
}

// GetCSRFToken retrieves the CSRF token from the Echo context.
// This token should be included in forms and AJAX requests.
func GetCSRFToken(c echo.Context) string {
	if token, ok := c.Get(CSRFContextKey).(string); ok {
		return token
	}
	return ""
}
