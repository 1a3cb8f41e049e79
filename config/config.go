package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment names
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// EncryptionKeyBytes is the decoded size of DATA_ENCRYPTION_KEY (AES-256)
const EncryptionKeyBytes = 32

type Config struct {
	ServerPort  string
	DBPath      string
	Environment string
	UploadDir   string
	// Email defaults, overridden per request by the mail settings row
	MailTransport string // resend, smtp or log
	ResendAPIKey  string
	EmailFrom     string
	EmailFromName string
	EmailTestMode bool // When true, emails are logged to console instead of sent
	SMTPHost      string
	SMTPPort      int
	SMTPUsername  string
	SMTPPassword  string
	// Other
	AllowedOrigins    []string
	AppURL            string // Base of the links sent to employees
	DefaultLang       string
	DataEncryptionKey string // Seals the SMTP password in the settings row
	TursoDatabaseURL  string
	TursoAuthToken    string
	// Cloudflare Turnstile
	TurnstileSiteKey   string
	TurnstileSecretKey string
	// Cloudflare R2 Storage
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicURL       string
}

func Load() *Config {
	// Load .env file (ignore error if not present - use system env vars)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	return &Config{
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		DBPath:             getEnv("DB_PATH", "db/app.db"),
		Environment:        getEnv("ENVIRONMENT", EnvDevelopment),
		UploadDir:          getEnv("UPLOAD_DIR", "static/uploads"),
		MailTransport:      getEnv("MAIL_TRANSPORT", "resend"),
		ResendAPIKey:       os.Getenv("RESEND_API_KEY"),
		EmailFrom:          getEnv("EMAIL_FROM", "noreply@checklists.local"),
		EmailFromName:      getEnv("EMAIL_FROM_NAME", "Checklisten"),
		EmailTestMode:      getEnvBool("EMAIL_TEST_MODE", true), // Default true for safety
		SMTPHost:           getEnv("SMTP_HOST", ""),
		SMTPPort:           getEnvInt("SMTP_PORT", 587),
		SMTPUsername:       getEnv("SMTP_USERNAME", ""),
		SMTPPassword:       os.Getenv("SMTP_PASSWORD"),
		AllowedOrigins:     splitList(getEnv("ALLOWED_ORIGINS", "*")),
		AppURL:             strings.TrimRight(getEnv("APP_URL", "http://localhost:8080"), "/"),
		DefaultLang:        getEnv("DEFAULT_LANG", "de"),
		DataEncryptionKey:  os.Getenv("DATA_ENCRYPTION_KEY"),
		TursoDatabaseURL:   getEnv("TURSO_DATABASE_URL", ""),
		TursoAuthToken:     os.Getenv("TURSO_AUTH_TOKEN"),
		TurnstileSiteKey:   getEnv("TURNSTILE_SITE_KEY", ""),
		TurnstileSecretKey: os.Getenv("TURNSTILE_SECRET_KEY"),
		R2AccountID:        getEnv("R2_ACCOUNT_ID", ""),
		R2AccessKeyID:      getEnv("R2_ACCESS_KEY_ID", ""),
		R2SecretAccessKey:  os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:       getEnv("R2_BUCKET_NAME", ""),
		R2PublicURL:        getEnv("R2_PUBLIC_URL", ""),
	}
}

// IsProduction reports whether the app runs with production settings
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// HasR2 reports whether all R2 credentials are present
func (c *Config) HasR2() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" && c.R2BucketName != ""
}

// Validate checks settings that would otherwise fail at request time.
// Problems that are acceptable in development are only logged there.
func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.AppURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("APP_URL must be an absolute URL, got %q", c.AppURL))
	} else if c.IsProduction() && u.Scheme != "https" {
		errs = append(errs, fmt.Errorf("APP_URL must use https in production"))
	}

	switch c.MailTransport {
	case "resend", "smtp", "log":
	default:
		errs = append(errs, fmt.Errorf("MAIL_TRANSPORT must be resend, smtp or log, got %q", c.MailTransport))
	}

	if (c.TurnstileSiteKey == "") != (c.TurnstileSecretKey == "") {
		errs = append(errs, errors.New("TURNSTILE_SITE_KEY and TURNSTILE_SECRET_KEY must be set together"))
	}

	if err := validateEncryptionKey(c.DataEncryptionKey); err != nil {
		if c.IsProduction() {
			errs = append(errs, err)
		} else {
			log.Printf("[WARNING] %v. SMTP passwords are stored unencrypted.", err)
		}
	}

	return errors.Join(errs...)
}

func validateEncryptionKey(key string) error {
	if key == "" {
		return errors.New("DATA_ENCRYPTION_KEY is not set")
	}
	decoded, err := base64.StdEncoding.DecodeString(key)
	if err != nil {
		return fmt.Errorf("DATA_ENCRYPTION_KEY is not valid base64: %w", err)
	}
	if len(decoded) != EncryptionKeyBytes {
		return fmt.Errorf("DATA_ENCRYPTION_KEY must decode to %d bytes, got %d", EncryptionKeyBytes, len(decoded))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		if defaultValue != "" {
			log.Printf("Using default value for %s: %s", key, defaultValue)
		}
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	// Accept common boolean representations
	switch strings.ToLower(value) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return defaultValue
	}
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("[WARNING] Invalid integer for %s: %q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

// splitList splits a comma separated value and drops blank entries
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
