package services

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net/smtp"
	"strings"
	"sync"
	"time"

	"checklist_app_go/models"

	"github.com/knadh/smtppool"
	"github.com/resend/resend-go/v2"
)

// Email represents an email message
type Email struct {
	From     string // Overrides the mailer's default sender when set
	To       []string
	ReplyTo  string
	Subject  string
	HTMLBody string
	TextBody string
}

// Mailer delivers a single email and returns the transport error, if any
type Mailer interface {
	Send(ctx context.Context, email *Email) error
}

// MailerConfig is the resolved mail transport configuration for one request
type MailerConfig struct {
	Transport    string
	FromEmail    string
	FromName     string
	ResendAPIKey string
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPInsecure bool
	TestMode     bool // Log instead of sending, regardless of transport
}

// FromAddress formats the default sender as "Name <address>"
func (c MailerConfig) FromAddress() string {
	if c.FromName == "" {
		return c.FromEmail
	}
	return fmt.Sprintf("%s <%s>", c.FromName, c.FromEmail)
}

// NewMailer builds the mailer for the configured transport
func NewMailer(cfg MailerConfig) (Mailer, error) {
	if cfg.TestMode {
		return &LogMailer{From: cfg.FromAddress()}, nil
	}

	switch cfg.Transport {
	case models.MailTransportLog:
		return &LogMailer{From: cfg.FromAddress()}, nil
	case models.MailTransportResend, "":
		if cfg.ResendAPIKey == "" {
			return nil, fmt.Errorf("RESEND_API_KEY not configured")
		}
		return &ResendMailer{client: resend.NewClient(cfg.ResendAPIKey), from: cfg.FromAddress()}, nil
	case models.MailTransportSMTP:
		return NewSMTPMailer(cfg)
	default:
		return nil, fmt.Errorf("unknown mail transport %q", cfg.Transport)
	}
}

// UnavailableMailer stands in for a transport that could not be built.
// Every Send fails with Err, so callers record a delivery failure instead of aborting.
type UnavailableMailer struct {
	Err error
}

func (m UnavailableMailer) Send(ctx context.Context, email *Email) error {
	return fmt.Errorf("mail transport not usable: %w", m.Err)
}

// CloseMailer releases transport resources held by the mailer
func CloseMailer(m Mailer) {
	if closer, ok := m.(interface{ Close() }); ok {
		closer.Close()
	}
}

func validateEmail(email *Email) error {
	if len(email.To) == 0 {
		return fmt.Errorf("email has no recipients")
	}
	if email.HTMLBody == "" && email.TextBody == "" {
		return fmt.Errorf("email must have either HTMLBody or TextBody")
	}
	return nil
}

// ResendMailer sends through the Resend API
type ResendMailer struct {
	client *resend.Client
	from   string
}

func (m *ResendMailer) Send(ctx context.Context, email *Email) error {
	if err := validateEmail(email); err != nil {
		return err
	}

	from := m.from
	if email.From != "" {
		from = email.From
	}

	params := &resend.SendEmailRequest{
		From:    from,
		To:      email.To,
		Subject: email.Subject,
		ReplyTo: email.ReplyTo,
		Html:    email.HTMLBody,
		Text:    email.TextBody,
	}

	sent, err := m.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to send email via Resend: %w", err)
	}

	log.Printf("[INFO] Email sent via Resend (ID: %s) to: %v", sent.Id, email.To)
	return nil
}

// SMTPMailer sends through a pooled SMTP connection
type SMTPMailer struct {
	pool *smtppool.Pool
	from string
	once sync.Once
}

// NewSMTPMailer opens a small connection pool to the configured server
func NewSMTPMailer(cfg MailerConfig) (*SMTPMailer, error) {
	if cfg.SMTPHost == "" {
		return nil, fmt.Errorf("SMTP host not configured")
	}
	port := cfg.SMTPPort
	if port == 0 {
		port = 587
	}

	var auth smtp.Auth
	if cfg.SMTPUsername != "" || cfg.SMTPPassword != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPHost)
	}

	pool, err := smtppool.New(smtppool.Opt{
		Host:            cfg.SMTPHost,
		Port:            port,
		MaxConns:        2,
		IdleTimeout:     15 * time.Second,
		PoolWaitTimeout: 10 * time.Second,
		TLSConfig: &tls.Config{
			InsecureSkipVerify: cfg.SMTPInsecure,
			ServerName:         cfg.SMTPHost,
		},
		Auth: auth,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up SMTP pool for %s: %w", cfg.SMTPHost, err)
	}

	return &SMTPMailer{pool: pool, from: cfg.FromAddress()}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, email *Email) error {
	if err := validateEmail(email); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	from := m.from
	if email.From != "" {
		from = email.From
	}

	msg := smtppool.Email{
		From:    from,
		To:      email.To,
		Subject: email.Subject,
		HTML:    []byte(email.HTMLBody),
		Text:    []byte(email.TextBody),
	}
	if email.ReplyTo != "" {
		msg.ReplyTo = []string{email.ReplyTo}
	}

	if err := m.pool.Send(msg); err != nil {
		return fmt.Errorf("failed to send email via SMTP: %w", err)
	}

	log.Printf("[INFO] Email sent via SMTP to: %v", email.To)
	return nil
}

// Close shuts down the connection pool
func (m *SMTPMailer) Close() {
	m.once.Do(m.pool.Close)
}

// LogMailer prints emails to the console instead of sending them
type LogMailer struct {
	From string
}

func (m *LogMailer) Send(ctx context.Context, email *Email) error {
	if err := validateEmail(email); err != nil {
		return err
	}
	logEmailToConsole(m.From, email)
	log.Printf("✅ Email logged successfully (development mode - not actually sent)")
	return nil
}

// logEmailToConsole logs email details to console in development mode
func logEmailToConsole(from string, email *Email) {
	if email.From != "" {
		from = email.From
	}
	separator := strings.Repeat("=", 80)
	log.Printf("\n%s\n📧 EMAIL (Development Mode - Not Actually Sent)\n%s", separator, separator)
	log.Printf("From: %s", from)
	log.Printf("To: %v", email.To)
	if email.ReplyTo != "" {
		log.Printf("Reply-To: %s", email.ReplyTo)
	}
	log.Printf("Subject: %s", email.Subject)
	if email.TextBody != "" {
		log.Printf("\n--- TEXT BODY ---\n%s", email.TextBody)
	}
	log.Printf("\n--- HTML BODY (first 500 chars) ---\n%s...", truncate(email.HTMLBody, 500))
	log.Printf("%s\n", separator)
}

// truncate truncates a string to a maximum length
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}
