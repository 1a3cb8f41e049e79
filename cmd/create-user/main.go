package main

import (
	"bufio"
	"errors"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"syscall"

	"checklist_app_go/config"
	"checklist_app_go/db"
	"checklist_app_go/models"
	"checklist_app_go/services"
	"checklist_app_go/services/i18n"

	"golang.org/x/term"
)

func main() {
	// Load configuration
	cfg := config.Load()

	if err := i18n.Load(); err != nil {
		log.Fatalf("Failed to load translations: %v", err)
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
	if err := db.AutoMigrate(&models.User{}, &models.Session{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	reader := bufio.NewReader(os.Stdin)

	// Get user details
	fmt.Println("=== Create New User ===")
	fmt.Println()

	fmt.Print("Name: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)

	fmt.Print("Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)

	fmt.Printf("Role (%s/%s) [%s]: ", models.RoleAdmin, models.RoleSender, models.RoleAdmin)
	role, _ := reader.ReadString('\n')
	role = strings.TrimSpace(role)
	if role == "" {
		role = models.RoleAdmin
	}

	// Get password securely
	fmt.Print("Password: ")
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		log.Fatalf("Failed to read password: %v", err)
	}
	fmt.Println() // New line after password input

	// Check if user already exists
	var existingUser models.User
	if err := db.DB.Where("email = ?", strings.ToLower(email)).First(&existingUser).Error; err == nil {
		log.Fatalf("User with email %s already exists", email)
	}

	user, err := services.CreateUser(db.DB, name, email, string(passwordBytes), role)
	if err != nil {
		var validationErr *services.ValidationError
		if errors.As(err, &validationErr) {
			fields := make([]string, 0, len(validationErr.Fields))
			for field := range validationErr.Fields {
				fields = append(fields, field)
			}
			sort.Strings(fields)
			for _, field := range fields {
				fmt.Printf("  %s: %s\n", field, i18n.Translate(cfg.DefaultLang, validationErr.Fields[field]))
			}
			os.Exit(1)
		}
		log.Fatalf("Failed to create user: %v", err)
	}

	fmt.Println()
	fmt.Println("✓ User created successfully!")
	fmt.Printf("  ID: %s\n", user.ID)
	fmt.Printf("  Name: %s\n", user.Name)
	fmt.Printf("  Email: %s\n", user.Email)
	fmt.Printf("  Role: %s\n", user.Role)
	fmt.Println()
	fmt.Printf("The user can now log in at %s/login\n", strings.TrimRight(cfg.AppURL, "/"))
}
