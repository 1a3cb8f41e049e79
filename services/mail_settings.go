package services

import (
	"errors"
	"fmt"
	"strings"

	"checklist_app_go/config"
	"checklist_app_go/models"

	"gorm.io/gorm"
)

type MailSettingsService struct {
	DB *gorm.DB
}

func NewMailSettingsService(db *gorm.DB) *MailSettingsService {
	return &MailSettingsService{DB: db}
}

// Get returns the settings row, or an empty row when none was saved yet
func (s *MailSettingsService) Get() (*models.MailSettings, error) {
	var settings models.MailSettings
	err := s.DB.First(&settings, models.MailSettingsID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.MailSettings{ID: models.MailSettingsID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// Update validates and stores the settings row. An empty SMTP password keeps the stored one,
// a new one is sealed with SealSecret.
func (s *MailSettingsService) Update(input *models.MailSettings) (*models.MailSettings, error) {
	v := &ValidationError{}
	input.Transport = strings.TrimSpace(input.Transport)
	if input.Transport != "" && !models.IsValidMailTransport(input.Transport) {
		v.Add("transport", "validation.invalid_transport")
	}
	input.FromEmail = strings.TrimSpace(input.FromEmail)
	if input.FromEmail != "" && !IsValidEmail(input.FromEmail) {
		v.Add("from_email", MsgInvalidEmail)
	}
	if input.Transport == models.MailTransportSMTP && strings.TrimSpace(input.SMTPHost) == "" {
		v.Add("smtp_host", MsgRequired)
	}
	if input.SMTPPort < 0 || input.SMTPPort > 65535 {
		v.Add("smtp_port", "validation.invalid_port")
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	current, err := s.Get()
	if err != nil {
		return nil, err
	}

	input.ID = models.MailSettingsID
	if input.SMTPPassword == "" {
		input.SMTPPassword = current.SMTPPassword
	} else if input.SMTPPassword, err = SealSecret(input.SMTPPassword); err != nil {
		return nil, err
	}

	if err := s.DB.Save(input).Error; err != nil {
		return nil, err
	}
	return input, nil
}

// MailerConfig resolves the configuration for the current request from the settings row and env defaults
func (s *MailSettingsService) MailerConfig(cfg *config.Config) (MailerConfig, error) {
	settings, err := s.Get()
	if err != nil {
		return MailerConfig{}, err
	}
	if settings.SMTPPassword, err = OpenSecret(settings.SMTPPassword); err != nil {
		return MailerConfig{}, fmt.Errorf("failed to decrypt SMTP password: %w", err)
	}
	return BuildMailerConfig(cfg, settings), nil
}

// BuildMailerConfig merges the settings row over the environment configuration
func BuildMailerConfig(cfg *config.Config, settings *models.MailSettings) MailerConfig {
	mc := MailerConfig{
		Transport:    cfg.MailTransport,
		FromEmail:    cfg.EmailFrom,
		FromName:     cfg.EmailFromName,
		ResendAPIKey: cfg.ResendAPIKey,
		SMTPHost:     cfg.SMTPHost,
		SMTPPort:     cfg.SMTPPort,
		SMTPUsername: cfg.SMTPUsername,
		SMTPPassword: cfg.SMTPPassword,
		TestMode:     cfg.EmailTestMode,
	}
	if settings == nil {
		return mc
	}

	if settings.Transport != "" {
		mc.Transport = settings.Transport
	}
	if settings.FromEmail != "" {
		mc.FromEmail = settings.FromEmail
	}
	if settings.FromName != "" {
		mc.FromName = settings.FromName
	}
	if settings.SMTPHost != "" {
		mc.SMTPHost = settings.SMTPHost
		mc.SMTPUsername = settings.SMTPUsername
		mc.SMTPPassword = settings.SMTPPassword
	}
	if settings.SMTPPort != 0 {
		mc.SMTPPort = settings.SMTPPort
	}
	mc.SMTPInsecure = settings.SMTPInsecure
	return mc
}
