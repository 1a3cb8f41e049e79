package jobs

import (
	"fmt"
	"testing"
	"time"

	"checklist_app_go/models"
	"checklist_app_go/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Session{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func TestStartScheduler(t *testing.T) {
	db := setupTestDB(t)

	c, err := StartScheduler(db, services.NewSecurityEventMonitor(), time.UTC)
	require.NoError(t, err)
	defer c.Stop()
	assert.Len(t, c.Entries(), 2)

	withoutMonitor, err := StartScheduler(db, nil, nil)
	require.NoError(t, err)
	defer withoutMonitor.Stop()
	assert.Len(t, withoutMonitor.Entries(), 1)
}

func TestCleanupSessions(t *testing.T) {
	db := setupTestDB(t)
	db.Create(&models.Session{ID: "live", Token: "a", ExpiresAt: time.Now().Add(time.Hour)})
	db.Create(&models.Session{ID: "dead", Token: "b", ExpiresAt: time.Now().Add(-time.Hour)})

	CleanupSessions(db)

	var ids []string
	db.Model(&models.Session{}).Pluck("id", &ids)
	assert.Equal(t, []string{"live"}, ids)
}
