package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"autoreply/internal/validation"
)

// Notification channel selectors.
const (
	ChannelNone  = "none"
	ChannelSlack = "slack"
	ChannelEmail = "email"
	ChannelBoth  = "both"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string // "development", "production", etc.

	// Server
	ServerAddr string

	// Storage
	DatabaseURL string
	RedisURL    string // optional, enables the in-flight guard

	// Review platform
	APIBase       string
	BusinessToken string
	HTTPTimeout   time.Duration

	// Classification
	Timezone      string
	Location      *time.Location
	AllowedStars  []int
	TemplatesPath string

	// Approval
	ApprovalMode    bool
	ApprovalChannel string // "none", "slack" or "email"
	ApprovalWebhook string
	ApprovalEmailTo string

	// Alerts
	AlertChannel      string // "none", "slack", "email" or "both"
	AlertSlackWebhook string
	AlertEmailTo      string

	// SMTP
	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPTLS  bool

	// Background work
	NotifyConcurrency        int
	ApprovalReminderInterval time.Duration // 0 disables the reminder job
	ApprovalReminderAge      time.Duration
}

// Load reads configuration from the environment, after applying an optional
// .env file, with sensible defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:               getEnv("ENV", "development"),
		ServerAddr:        getEnv("SERVER_ADDR", ":8000"),
		DatabaseURL:       getEnv("DATABASE_URL", "postgres://localhost:5432/autoreply?sslmode=disable"),
		RedisURL:          getEnv("REDIS_URL", ""),
		APIBase:           strings.TrimRight(getEnv("TP_API_BASE", "https://api.trustpilot.com"), "/"),
		BusinessToken:     getEnv("TP_BUSINESS_TOKEN", ""),
		Timezone:          getEnv("APP_TIMEZONE", "Europe/Rome"),
		TemplatesPath:     getEnv("TEMPLATES_PATH", "templates.json"),
		ApprovalMode:      getEnvBool("APP_APPROVAL_MODE", true),
		ApprovalChannel:   strings.ToLower(getEnv("APP_APPROVAL_CHANNEL", ChannelNone)),
		ApprovalWebhook:   getEnv("APP_APPROVAL_WEBHOOK", ""),
		ApprovalEmailTo:   getEnv("APP_APPROVAL_EMAIL_TO", ""),
		AlertChannel:      strings.ToLower(getEnv("ALERT_CHANNEL", ChannelNone)),
		AlertSlackWebhook: getEnv("ALERT_SLACK_WEBHOOK", ""),
		AlertEmailTo:      getEnv("ALERT_EMAIL_TO", ""),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPUser:          getEnv("SMTP_USER", ""),
		SMTPPass:          getEnv("SMTP_PASS", ""),
		SMTPTLS:           getEnvBool("SMTP_TLS", true),
	}

	var err error
	if cfg.SMTPPort, err = getEnvInt("SMTP_PORT", 587); err != nil {
		return nil, err
	}
	if cfg.NotifyConcurrency, err = getEnvInt("NOTIFY_CONCURRENCY", 16); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getEnvDuration("HTTP_TIMEOUT", 20*time.Second); err != nil {
		return nil, err
	}
	if cfg.ApprovalReminderInterval, err = getEnvDuration("APPROVAL_REMINDER_INTERVAL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.ApprovalReminderAge, err = getEnvDuration("APPROVAL_REMINDER_AGE", 24*time.Hour); err != nil {
		return nil, err
	}

	if cfg.Location, err = time.LoadLocation(cfg.Timezone); err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE %q: %w", cfg.Timezone, err)
	}

	if cfg.AllowedStars, err = ParseAllowedStars(getEnv("ALLOWED_STARS", "")); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks channel selectors and configured endpoints.
func (c *Config) validate() error {
	switch c.ApprovalChannel {
	case ChannelNone, ChannelSlack, ChannelEmail:
	default:
		return fmt.Errorf("invalid APP_APPROVAL_CHANNEL %q: must be none, slack or email", c.ApprovalChannel)
	}
	switch c.AlertChannel {
	case ChannelNone, ChannelSlack, ChannelEmail, ChannelBoth:
	default:
		return fmt.Errorf("invalid ALERT_CHANNEL %q: must be none, slack, email or both", c.AlertChannel)
	}

	endpoints := []struct{ key, value string }{
		{"TP_API_BASE", c.APIBase},
		{"APP_APPROVAL_WEBHOOK", c.ApprovalWebhook},
		{"ALERT_SLACK_WEBHOOK", c.AlertSlackWebhook},
	}
	for _, e := range endpoints {
		if e.value == "" {
			continue
		}
		if ok, msg := validation.ValidateURL(e.value); !ok {
			return fmt.Errorf("invalid %s: %s", e.key, msg)
		}
	}
	return nil
}

// ParseAllowedStars parses a comma-separated list of star ratings.
// An empty value means every rating from 1 to 5 is allowed.
func ParseAllowedStars(raw string) ([]int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []int{1, 2, 3, 4, 5}, nil
	}

	seen := make(map[int]bool)
	var stars []int
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid ALLOWED_STARS entry %q: %w", part, err)
		}
		if n < 1 || n > 5 {
			return nil, fmt.Errorf("invalid ALLOWED_STARS entry %d: must be between 1 and 5", n)
		}
		if !seen[n] {
			seen[n] = true
			stars = append(stars, n)
		}
	}
	if len(stars) == 0 {
		return nil, fmt.Errorf("ALLOWED_STARS %q contains no ratings", raw)
	}
	sort.Ints(stars)
	return stars, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return strings.EqualFold(value, "true")
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return d, nil
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// AlertsToSlack reports whether alerts go to the Slack webhook.
func (c *Config) AlertsToSlack() bool {
	return (c.AlertChannel == ChannelSlack || c.AlertChannel == ChannelBoth) && c.AlertSlackWebhook != ""
}

// AlertsToEmail reports whether alerts go out by email.
func (c *Config) AlertsToEmail() bool {
	return (c.AlertChannel == ChannelEmail || c.AlertChannel == ChannelBoth) &&
		c.AlertEmailTo != "" && c.IsEmailEnabled()
}

// ApprovalsToSlack reports whether approval requests go to the Slack webhook.
func (c *Config) ApprovalsToSlack() bool {
	return c.ApprovalChannel == ChannelSlack && c.ApprovalWebhook != ""
}

// ApprovalsToEmail reports whether approval requests go out by email.
func (c *Config) ApprovalsToEmail() bool {
	return c.ApprovalChannel == ChannelEmail && c.ApprovalEmailTo != "" && c.IsEmailEnabled()
}

// IsEmailEnabled returns true if SMTP is configured well enough to send mail.
func (c *Config) IsEmailEnabled() bool {
	return c.SMTPHost != "" && c.SMTPUser != "" && c.SMTPPass != ""
}
