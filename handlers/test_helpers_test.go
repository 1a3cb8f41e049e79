package handlers

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"

	"checklist_app_go/config"
	"checklist_app_go/db"
	"checklist_app_go/models"
	"checklist_app_go/services"
	"checklist_app_go/services/i18n"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	if err := i18n.Load(); err != nil {
		log.Fatalf("failed to load translations: %v", err)
	}
	os.Exit(m.Run())
}

func setupTestDB(t *testing.T) *gorm.DB {
	// Unique shared memory name isolates tests while async audit writes see the same database
	dsn := "file:mem_" + uuid.New().String() + "?mode=memory&cache=shared"
	testDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := testDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, testDB.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Checklist{},
		&models.ChecklistGroup{},
		&models.GroupItem{},
		&models.Submission{},
		&models.SentLink{},
		&models.MailSettings{},
		&models.AuditLog{},
	))

	services.Storage = services.NewLocalStorage(t.TempDir())
	services.InitSecurityMonitor()

	// Set global DB
	db.DB = testDB
	return testDB
}

func setupEcho(method, path string, body io.Reader) (*echo.Echo, echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, body)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	c.Set("config", &config.Config{
		Environment: "test",
		AppURL:      "https://checklists.example.com",
	})

	return e, c, rec
}

// setupForm builds a form POST context
func setupForm(method, path string, form url.Values) (echo.Context, *httptest.ResponseRecorder) {
	_, c, rec := setupEcho(method, path, strings.NewReader(form.Encode()))
	c.Request().Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return c, rec
}

// setupJSON builds an API request context with a JSON body
func setupJSON(method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	_, c, rec := setupEcho(method, path, strings.NewReader(body))
	c.Request().Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return c, rec
}

// recordingMailer keeps every email it was asked to send and fails for listed recipients
type recordingMailer struct {
	mu     sync.Mutex
	sent   []*services.Email
	failTo map[string]bool
}

func (m *recordingMailer) Send(ctx context.Context, email *services.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, to := range email.To {
		if m.failTo[to] {
			return errors.New("smtp: 550 mailbox unavailable at mx.internal.example")
		}
	}
	m.sent = append(m.sent, email)
	return nil
}

func (m *recordingMailer) recipients() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, e := range m.sent {
		out = append(out, e.To...)
	}
	return out
}

// useMailer swaps the request mailer for the duration of the test
func useMailer(t *testing.T, mailer services.Mailer) {
	previous := newRequestMailer
	newRequestMailer = func(c echo.Context) (services.Mailer, error) {
		return mailer, nil
	}
	t.Cleanup(func() { newRequestMailer = previous })
}

// seedChecklist creates a checklist with one radio, one checkbox and one text item
func seedChecklist(t *testing.T, database *gorm.DB) *models.Checklist {
	checklist := &models.Checklist{
		Title:       "IT-Ausstattung",
		TargetEmail: "it@example.com",
		ReplyEmail:  "hr@example.com",
		Groups: []models.ChecklistGroup{{
			Title:     "Hardware",
			SortOrder: 1,
			Items: []models.GroupItem{
				{Label: "Laptop", Type: models.ItemTypeRadio, SortOrder: 1, Options: []models.ItemOption{{Label: "MacBook"}, {Label: "ThinkPad"}}},
				{Label: "Zubehör", Type: models.ItemTypeCheckbox, SortOrder: 2, Options: []models.ItemOption{{Label: "Maus"}, {Label: "Headset"}}},
				{Label: "Notizen", Type: models.ItemTypeText, SortOrder: 3},
			},
		}},
	}
	require.NoError(t, services.NewChecklistService(database).Create(checklist))

	loaded, err := services.NewChecklistService(database).Find(checklist.ID)
	require.NoError(t, err)
	return loaded
}

func seedUser(t *testing.T, database *gorm.DB, email, role string) *models.User {
	user, err := services.CreateUser(database, "Test "+role, email, "Sup3r-Secret!", role)
	require.NoError(t, err)
	return user
}
