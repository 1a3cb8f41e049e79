package middleware

import (
	"checklist_app_go/services"

	"github.com/labstack/echo/v4"
)

const ContextKeyAuditContext = "audit_context"

// requestActor describes the caller of c; anonymous callers only carry IP and user agent
func requestActor(c echo.Context) services.AuditContext {
	actor := services.AuditContext{
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}
	if user := GetCurrentUser(c); user != nil {
		actor.UserID = user.ID
		actor.UserName = user.Name
		actor.UserRole = user.Role
	}
	return actor
}

// AuditContext resolves the actor once per request. It must run after RequireAuth.
func AuditContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(ContextKeyAuditContext, requestActor(c))
			return next(c)
		}
	}
}

// GetAuditContext returns the actor stored by AuditContext, or resolves it on the spot
// for routes without the middleware (login, public form)
func GetAuditContext(c echo.Context) services.AuditContext {
	if actor, ok := c.Get(ContextKeyAuditContext).(services.AuditContext); ok {
		return actor
	}
	return requestActor(c)
}
