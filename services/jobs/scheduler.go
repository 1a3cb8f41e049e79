package jobs

import (
	"fmt"
	"log"
	"time"

	"checklist_app_go/services"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// Schedules
const (
	SessionCleanupSpec = "0 3 * * *" // nightly
	MonitorCleanupSpec = "@hourly"
)

// StartScheduler registers the maintenance jobs and starts the cron runner.
// The caller stops it on shutdown.
func StartScheduler(database *gorm.DB, monitor *services.SecurityEventMonitor, loc *time.Location) (*cron.Cron, error) {
	if loc == nil {
		loc = time.Local
	}
	c := cron.New(cron.WithLocation(loc))

	if _, err := c.AddFunc(SessionCleanupSpec, func() { CleanupSessions(database) }); err != nil {
		return nil, fmt.Errorf("failed to schedule session cleanup: %w", err)
	}
	if monitor != nil {
		if _, err := c.AddFunc(MonitorCleanupSpec, monitor.Cleanup); err != nil {
			return nil, fmt.Errorf("failed to schedule monitor cleanup: %w", err)
		}
	}

	c.Start()
	log.Println("[CRON] Scheduler started")
	return c, nil
}

// CleanupSessions deletes expired login sessions
func CleanupSessions(database *gorm.DB) {
	removed, err := services.CleanupExpiredSessions(database)
	if err != nil {
		log.Printf("[CRON] Session cleanup failed: %v", err)
		return
	}
	log.Printf("[CRON] Session cleanup removed %d sessions", removed)
}
