package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"checklist_app_go/config"
	"checklist_app_go/db"
	"checklist_app_go/handlers"
	"checklist_app_go/middleware"
	"checklist_app_go/models"
	"checklist_app_go/services"
	"checklist_app_go/services/i18n"
	"checklist_app_go/services/jobs"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

func main() {
	// `server genkey` prints a fresh DATA_ENCRYPTION_KEY and exits
	if len(os.Args) > 1 && os.Args[1] == "genkey" {
		key, err := services.GenerateEncryptionKey()
		if err != nil {
			log.Fatalf("Failed to generate key: %v", err)
		}
		fmt.Println(key)
		return
	}

	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := i18n.Load(); err != nil {
		log.Fatalf("Failed to load translations: %v", err)
	}
	i18n.SetDefaultLang(cfg.DefaultLang)
	for _, lang := range i18n.SupportedLanguages {
		if missing := i18n.MissingKeys(lang); len(missing) > 0 {
			log.Printf("[WARNING] Locale %s lacks %d keys: %v", lang, len(missing), missing)
		}
	}

	// Initialize database
	if err := db.Initialize(db.Options{
		Path:        cfg.DBPath,
		TursoURL:    cfg.TursoDatabaseURL,
		TursoToken:  cfg.TursoAuthToken,
		Environment: cfg.Environment,
	}); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Checklist{},
		&models.ChecklistGroup{},
		&models.GroupItem{},
		&models.Submission{},
		&models.SentLink{},
		&models.MailSettings{},
		&models.AuditLog{},
	); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	services.InitializeStorage(cfg)
	monitor := services.InitSecurityMonitor()

	scheduler, err := jobs.StartScheduler(db.DB, monitor, time.Local)
	if err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	stopCleanup := make(chan struct{})
	for _, limiter := range []*middleware.RateLimiter{
		middleware.LoginRateLimiter,
		middleware.PublicFormRateLimiter,
		middleware.APIRateLimiter,
	} {
		limiter.StartCleanup(5*time.Minute, stopCleanup)
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(echomiddleware.RequestLogger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowedOrigins,
	}))
	e.Use(middleware.ConfigContext(cfg))
	e.Use(middleware.Locale())
	e.Use(middleware.CSPNonce())
	e.Use(middleware.CSRF(cfg))

	registerRoutes(e)

	// Start server
	go func() {
		log.Printf("[INFO] Server starting on port %s", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("[INFO] Shutting down")
	close(stopCleanup)
	<-scheduler.Stop().Done()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Printf("[ERROR] Server shutdown: %v", err)
	}
}

func registerRoutes(e *echo.Echo) {
	// Public routes (no authentication required)
	e.GET("/health", handlers.HealthHandler)
	e.GET("/login", handlers.LoginHandler)
	e.POST("/login", handlers.LoginPostHandler, middleware.LoginRateLimiter.Middleware())
	e.GET("/checklists/:id/fill", handlers.ChecklistFormHandler)
	e.POST("/checklists/:id/fill", handlers.SubmitChecklistHandler, middleware.PublicFormRateLimiter.Middleware())

	// Session routes
	session := e.Group("")
	session.Use(middleware.RequireAuth())
	{
		session.GET("/", func(c echo.Context) error {
			return c.Redirect(http.StatusSeeOther, "/api/checklists")
		})
		session.POST("/logout", handlers.LogoutHandler)
	}

	// API routes (authentication required, all roles)
	api := e.Group("/api")
	api.Use(middleware.RequireAuth())
	api.Use(middleware.AuditContext())
	api.Use(middleware.APIRateLimiter.Middleware())
	{
		api.GET("/me", handlers.GetCurrentUserHandler)

		api.GET("/checklists", handlers.ListChecklistsHandler)
		api.GET("/checklists/:id", handlers.GetChecklistHandler)

		// Senders invite employees and follow up on submissions
		api.GET("/checklists/:id/links", handlers.ListSentLinksHandler)
		api.POST("/checklists/:id/links", handlers.SendChecklistLinkHandler)
		api.GET("/checklists/:id/submissions", handlers.ListSubmissionsHandler)
		api.GET("/checklists/:id/submissions/export", handlers.ExportSubmissionsHandler)
		api.GET("/submissions/:id", handlers.GetSubmissionHandler)
		api.GET("/submissions/:id/email", handlers.SubmissionEmailHandler)
		api.GET("/submissions/:id/pdf", handlers.SubmissionPDFHandler)
		api.POST("/submissions/:id/resend", handlers.ResendSubmissionHandler)

		api.GET("/placeholders", handlers.GetPlaceholdersHandler)
	}

	// Admin-only routes
	admin := api.Group("")
	admin.Use(middleware.RequireRole(models.RoleAdmin))
	{
		admin.POST("/checklists", handlers.CreateChecklistHandler)
		admin.PUT("/checklists/:id", handlers.UpdateChecklistHandler)
		admin.DELETE("/checklists/:id", handlers.DeleteChecklistHandler)

		admin.POST("/checklists/:id/groups", handlers.CreateGroupHandler)
		admin.PUT("/groups/:id", handlers.UpdateGroupHandler)
		admin.DELETE("/groups/:id", handlers.DeleteGroupHandler)

		admin.POST("/groups/:id/items", handlers.CreateItemHandler)
		admin.PUT("/items/:id", handlers.UpdateItemHandler)
		admin.DELETE("/items/:id", handlers.DeleteItemHandler)

		admin.DELETE("/submissions/:id", handlers.DeleteSubmissionHandler)

		admin.GET("/settings/mail", handlers.GetMailSettingsHandler)
		admin.PUT("/settings/mail", handlers.UpdateMailSettingsHandler)

		admin.GET("/audit-logs", handlers.GetAuditLogsHandler)
		admin.GET("/audit-logs/:type/:id", handlers.GetResourceHistoryHandler)
		admin.GET("/security/alerts", handlers.GetSecurityAlertsHandler)
	}
}
