// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
	GetDatabaseMaxConns() int32
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
	GetRateLimitRPS() float64
	GetRateLimitBurst() int
}

// SchedulerConfig provides settings for the asynq reminder queue.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// EmailConfig provides SMTP settings for reminder emails.
type EmailConfig interface {
	IsEmailEnabled() bool
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromName() string
	GetEmailFromAddress() string
	GetAppBaseURL() string
}

// FollowUpConfig provides the follow-up scheduling policy.
type FollowUpConfig interface {
	GetLocation() *time.Location
	GetFirstSlotHour() int
	GetSuccessorDelayDays() int
	GetExhaustedPolicy() string
	GetReminderLead() time.Duration
}

// NotificationConfig provides settings for follow-up reminders.
type NotificationConfig interface {
	GetReminderLead() time.Duration
	GetLocation() *time.Location
	GetAppBaseURL() string
}

// LeadConfig provides lead lifecycle settings.
type LeadConfig interface {
	GetColdOnExhausted() bool
	GetPhoneRegion() string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env              string
	HTTPAddr         string
	DatabaseURL      string
	DatabaseMaxConns int32
	MigrationsOnBoot bool
	JWTAccessSecret  string
	CORSAllowAll     bool
	CORSOrigins      []string
	CORSAllowCreds   bool
	RateLimitRPS     float64
	RateLimitBurst   int
	AppBaseURL       string

	RedisURL         string
	RedisTLSInsecure bool
	AsynqQueueName   string
	AsynqConcurrency int

	SMTPHost         string
	SMTPPort         int
	SMTPUsername     string
	SMTPPassword     string
	EmailFromName    string
	EmailFromAddress string

	Location           *time.Location
	FirstSlotHour      int
	SuccessorDelayDays int
	ExhaustedPolicy    string
	ReminderLead       time.Duration

	ColdOnExhausted bool
	PhoneRegion     string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string     { return c.DatabaseURL }
func (c *Config) GetDatabaseMaxConns() int32 { return c.DatabaseMaxConns }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }
func (c *Config) GetRateLimitRPS() float64 { return c.RateLimitRPS }
func (c *Config) GetRateLimitBurst() int   { return c.RateLimitBurst }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }
func (c *Config) IsSchedulerEnabled() bool  { return c.RedisURL != "" }

// EmailConfig implementation
func (c *Config) IsEmailEnabled() bool        { return c.SMTPHost != "" }
func (c *Config) GetSMTPHost() string         { return c.SMTPHost }
func (c *Config) GetSMTPPort() int            { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string     { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string     { return c.SMTPPassword }
func (c *Config) GetEmailFromName() string    { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string { return c.EmailFromAddress }
func (c *Config) GetAppBaseURL() string       { return c.AppBaseURL }

// FollowUpConfig implementation
func (c *Config) GetLocation() *time.Location    { return c.Location }
func (c *Config) GetFirstSlotHour() int          { return c.FirstSlotHour }
func (c *Config) GetSuccessorDelayDays() int     { return c.SuccessorDelayDays }
func (c *Config) GetExhaustedPolicy() string     { return c.ExhaustedPolicy }
func (c *Config) GetReminderLead() time.Duration { return c.ReminderLead }

// LeadConfig implementation
func (c *Config) GetColdOnExhausted() bool { return c.ColdOnExhausted }
func (c *Config) GetPhoneRegion() string   { return c.PhoneRegion }

// Load reads configuration from environment variables (and .env when present).
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	location, err := time.LoadLocation(getEnv("APP_TIMEZONE", "Asia/Jakarta"))
	if err != nil {
		return nil, fmt.Errorf("APP_TIMEZONE: %w", err)
	}

	cfg := &Config{
		Env:                getEnv("APP_ENV", "development"),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		DatabaseMaxConns:   int32(mustInt(getEnv("DATABASE_MAX_CONNS", "20"))),
		MigrationsOnBoot:   strings.EqualFold(getEnv("MIGRATIONS_ON_BOOT", "true"), "true"),
		JWTAccessSecret:    getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:       corsAllowAll,
		CORSOrigins:        corsOrigins,
		CORSAllowCreds:     strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		RateLimitRPS:       mustFloat(getEnv("RATE_LIMIT_RPS", "20")),
		RateLimitBurst:     mustInt(getEnv("RATE_LIMIT_BURST", "40")),
		AppBaseURL:         getEnv("APP_BASE_URL", "http://localhost:4200"),
		RedisURL:           getEnv("REDIS_URL", ""),
		RedisTLSInsecure:   strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:     getEnv("ASYNQ_QUEUE", "followups"),
		AsynqConcurrency:   mustInt(getEnv("ASYNQ_CONCURRENCY", "10")),
		SMTPHost:           getEnv("SMTP_HOST", ""),
		SMTPPort:           mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:       getEnv("SMTP_USERNAME", ""),
		SMTPPassword:       getEnv("SMTP_PASSWORD", ""),
		EmailFromName:      getEnv("EMAIL_FROM_NAME", "CRM Karpet"),
		EmailFromAddress:   getEnv("EMAIL_FROM_ADDRESS", ""),
		Location:           location,
		FirstSlotHour:      mustInt(getEnv("FOLLOWUP_FIRST_SLOT_HOUR", "9")),
		SuccessorDelayDays: mustInt(getEnv("FOLLOWUP_SUCCESSOR_DELAY_DAYS", "3")),
		ExhaustedPolicy:    strings.ToLower(getEnv("FOLLOWUP_EXHAUSTED_POLICY", "stop")),
		ReminderLead:       mustDuration(getEnv("FOLLOWUP_REMINDER_LEAD", "30m")),
		ColdOnExhausted:    strings.EqualFold(getEnv("LEAD_COLD_ON_EXHAUSTED", "false"), "true"),
		PhoneRegion:        getEnv("PHONE_REGION", "ID"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.JWTAccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if c.CORSAllowAll && c.CORSAllowCreds {
		return fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if c.DatabaseMaxConns < 1 {
		return fmt.Errorf("DATABASE_MAX_CONNS must be positive")
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	if c.FirstSlotHour < 0 || c.FirstSlotHour > 23 {
		return fmt.Errorf("FOLLOWUP_FIRST_SLOT_HOUR must be between 0 and 23")
	}
	if c.SuccessorDelayDays < 0 {
		return fmt.Errorf("FOLLOWUP_SUCCESSOR_DELAY_DAYS cannot be negative")
	}
	switch c.ExhaustedPolicy {
	case "stop", "continue":
	default:
		return fmt.Errorf("FOLLOWUP_EXHAUSTED_POLICY must be stop or continue")
	}
	if c.SMTPHost != "" && c.EmailFromAddress == "" {
		return fmt.Errorf("EMAIL_FROM_ADDRESS is required when SMTP_HOST is set")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func mustFloat(value string) float64 {
	result, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
