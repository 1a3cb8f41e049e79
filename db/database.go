package db

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"time"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is the process wide connection set up by Initialize
var DB *gorm.DB

var errNotInitialized = errors.New("database not initialized")

// Options selects the database backend. A non-empty TursoURL takes precedence over Path.
type Options struct {
	Path        string
	TursoURL    string
	TursoToken  string
	Environment string
}

func (o Options) gormConfig() *gorm.Config {
	level := logger.Info
	if o.Environment == "production" {
		level = logger.Warn
	}
	return &gorm.Config{Logger: logger.Default.LogMode(level)}
}

// localDSN enables WAL and a busy timeout on the local sqlite file
func localDSN(path string) string {
	q := url.Values{}
	q.Set("_journal_mode", "WAL")
	q.Set("_busy_timeout", "5000")
	return path + "?" + q.Encode()
}

// tursoDSN appends the auth token to the database URL
func tursoDSN(rawURL, token string) string {
	if token == "" {
		return rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	q.Set("authToken", token)
	u.RawQuery = q.Encode()
	return u.String()
}

// Open connects to the backend described by opts without touching DB
func Open(opts Options) (*gorm.DB, error) {
	if opts.TursoURL != "" {
		conn, err := gorm.Open(sqlite.New(sqlite.Config{
			DriverName: "libsql",
			DSN:        tursoDSN(opts.TursoURL, opts.TursoToken),
		}), opts.gormConfig())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to turso database: %w", err)
		}
		log.Println("Database connection established (Turso/libsql)")
		return conn, nil
	}

	if opts.Path == "" {
		return nil, errors.New("database path is empty")
	}
	conn, err := gorm.Open(sqlite.Open(localDSN(opts.Path)), opts.gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// sqlite allows a single writer; a small pool avoids SQLITE_BUSY under load
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(4)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	log.Printf("Database connection established (%s, WAL mode)", opts.Path)
	return conn, nil
}

// Initialize opens the database and stores the connection in DB
func Initialize(opts Options) error {
	conn, err := Open(opts)
	if err != nil {
		return err
	}
	DB = conn
	return nil
}

// AutoMigrate runs database migrations for the provided models
func AutoMigrate(models ...interface{}) error {
	if DB == nil {
		return errNotInitialized
	}
	if err := DB.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Println("Database migrations completed")
	return nil
}

func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.Close()
}
