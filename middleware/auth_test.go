package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"checklist_app_go/config"
	"checklist_app_go/db"
	"checklist_app_go/models"
	"checklist_app_go/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	dsn := "file:" + uuid.New().String() + "?mode=memory&cache=shared"
	testDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := testDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, testDB.AutoMigrate(&models.User{}, &models.Session{}))

	// Set the global DB variable used by middleware
	db.DB = testDB
	return testDB
}

func createTestUser(t *testing.T, testDB *gorm.DB, email, role string) *models.User {
	user := &models.User{
		Name:     "Test User",
		Email:    email,
		Password: "not-a-real-hash",
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, testDB.Create(user).Error)
	return user
}

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "success")
}

func TestRequireAuth(t *testing.T) {
	testDB := setupTestDB(t)
	e := echo.New()

	user := createTestUser(t, testDB, "test@example.com", models.RoleAdmin)
	session, err := services.CreateSession(testDB, user.ID, "127.0.0.1", "test-agent")
	require.NoError(t, err)

	t.Run("ValidSession", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: session.Token})
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := RequireAuth()(okHandler)(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, user.ID, GetCurrentUser(c).ID)
		assert.Equal(t, session.ID, GetCurrentSession(c).ID)
	})

	t.Run("NoCookieRedirectsPages", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := RequireAuth()(okHandler)(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
	})

	t.Run("NoCookieUnauthorizedForAPI", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/checklists", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := RequireAuth()(okHandler)(c)
		require.Error(t, err)
		assert.Equal(t, http.StatusUnauthorized, err.(*echo.HTTPError).Code)
	})

	t.Run("UnknownToken", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/checklists", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "bogus"})
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := RequireAuth()(okHandler)(c)
		require.Error(t, err)
		assert.Equal(t, http.StatusUnauthorized, err.(*echo.HTTPError).Code)

		// The stale cookie is cleared
		cookies := rec.Result().Cookies()
		require.NotEmpty(t, cookies)
		assert.Equal(t, SessionCookieName, cookies[0].Name)
		assert.True(t, cookies[0].MaxAge < 0)
	})

	t.Run("InactiveUser", func(t *testing.T) {
		inactive := createTestUser(t, testDB, "inactive@example.com", models.RoleSender)
		require.NoError(t, testDB.Model(inactive).Update("is_active", false).Error)
		inactiveSession, err := services.CreateSession(testDB, inactive.ID, "127.0.0.1", "test-agent")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/checklists", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: inactiveSession.Token})
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err = RequireAuth()(okHandler)(c)
		require.Error(t, err)
		assert.Equal(t, http.StatusUnauthorized, err.(*echo.HTTPError).Code)
	})
}

func TestRequireRole(t *testing.T) {
	e := echo.New()

	t.Run("Allowed", func(t *testing.T) {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/settings/mail", nil), httptest.NewRecorder())
		c.Set(ContextKeyUser, &models.User{ID: "u1", Role: models.RoleAdmin})

		assert.NoError(t, RequireRole(models.RoleAdmin)(okHandler)(c))
	})

	t.Run("Forbidden", func(t *testing.T) {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/settings/mail", nil), httptest.NewRecorder())
		c.Set(ContextKeyUser, &models.User{ID: "u2", Role: models.RoleSender})

		err := RequireRole(models.RoleAdmin)(okHandler)(c)
		require.Error(t, err)
		assert.Equal(t, http.StatusForbidden, err.(*echo.HTTPError).Code)
	})

	t.Run("NoUser", func(t *testing.T) {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/settings/mail", nil), httptest.NewRecorder())

		err := RequireRole(models.RoleAdmin)(okHandler)(c)
		require.Error(t, err)
		assert.Equal(t, http.StatusUnauthorized, err.(*echo.HTTPError).Code)
	})
}

func TestSessionCookie(t *testing.T) {
	e := echo.New()

	t.Run("SecureInProduction", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodPost, "/login", nil), rec)
		c.Set(ContextKeyConfig, &config.Config{Environment: "production"})

		SetSessionCookie(c, &models.Session{Token: "tok"})

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "tok", cookies[0].Value)
		assert.True(t, cookies[0].Secure)
		assert.True(t, cookies[0].HttpOnly)
	})

	t.Run("NotSecureInDevelopment", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodPost, "/login", nil), rec)
		c.Set(ContextKeyConfig, &config.Config{Environment: "development"})

		SetSessionCookie(c, &models.Session{Token: "tok"})

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.False(t, cookies[0].Secure)
		assert.Equal(t, int(services.DefaultSessionDuration.Seconds()), cookies[0].MaxAge)
	})

	t.Run("ExpiresWithSession", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodPost, "/login", nil), rec)

		SetSessionCookie(c, &models.Session{Token: "tok", ExpiresAt: time.Now().Add(time.Hour)})

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.InDelta(t, 3600, cookies[0].MaxAge, 5)
	})
}

func TestConfigContext(t *testing.T) {
	e := echo.New()
	cfg := &config.Config{Environment: "test"}
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	err := ConfigContext(cfg)(func(c echo.Context) error {
		assert.Same(t, cfg, c.Get("config"))
		return nil
	})(c)
	assert.NoError(t, err)
}
