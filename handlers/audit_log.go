package handlers

import (
	"net/http"
	"strconv"
	"time"

	"checklist_app_go/db"
	"checklist_app_go/services"

	"github.com/labstack/echo/v4"
)

// queryDate parses a YYYY-MM-DD query parameter; invalid values are ignored
func queryDate(c echo.Context, name string) time.Time {
	t, err := time.Parse("2006-01-02", c.QueryParam(name))
	if err != nil {
		return time.Time{}
	}
	return t
}

// GetAuditLogsHandler returns filtered and paginated audit logs
func GetAuditLogsHandler(c echo.Context) error {
	q := services.AuditLogQuery{
		UserID:       c.QueryParam("user_id"),
		ResourceType: c.QueryParam("resource_type"),
		Action:       c.QueryParam("action"),
		Search:       c.QueryParam("search"),
		From:         queryDate(c, "date_from"),
	}
	q.Page, _ = strconv.Atoi(c.QueryParam("page"))
	q.PageSize, _ = strconv.Atoi(c.QueryParam("page_size"))
	if to := queryDate(c, "date_to"); !to.IsZero() {
		q.To = to.Add(24*time.Hour - time.Second)
	}

	page, err := services.ListAuditLogs(db.DB, q)
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

// GetResourceHistoryHandler returns the audit history of one resource
func GetResourceHistoryHandler(c echo.Context) error {
	logs, err := services.GetResourceAuditHistory(db.DB, c.Param("type"), c.Param("id"))
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusOK, logs)
}

// GetSecurityAlertsHandler returns the alerts raised by the security monitor
func GetSecurityAlertsHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, services.Monitor.GetRecentAlerts())
}

// HealthHandler reports whether the database answers
func HealthHandler(c echo.Context) error {
	sqlDB, err := db.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request().Context())
	}
	if err != nil {
		c.Logger().Errorf("Health check failed: %v", err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
