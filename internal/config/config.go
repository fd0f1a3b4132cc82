package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds application configuration.
type Config struct {
	// Server
	ServerAddr  string
	ServerPort  int
	Environment string

	// Database
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Auth (token validation only; issuance lives in the identity service)
	JWTSecret string
	JWTIssuer string

	// Cron endpoints
	CronSecret string

	// Retention defaults, used when the plan leaves a window unset
	DefaultArchiveRetentionDays int
	DefaultTrashRetentionDays   int
	NotifyWindow                time.Duration

	// Optional in-process reaper schedule (cron expression); empty means
	// the cron HTTP endpoints are the only trigger
	ReaperSchedule string

	// Checker fan-out
	CheckTimeout time.Duration

	// Blob storage (filesystem backend)
	StorageDir string

	// SMTP (optional; expiry warnings are logged when unset)
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string

	// HTTP hardening
	RateLimit       RateLimitConfig
	SecurityHeaders SecurityHeadersConfig
	MaxRequestBody  int64
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	Enabled         bool
	ClosureRequests int
	ClosureWindow   time.Duration
}

// SecurityHeadersConfig holds security header configuration.
type SecurityHeadersConfig struct {
	Enabled            bool
	HSTSMaxAge         int
	FrameOptions       string
	ContentTypeOptions string
	ReferrerPolicy     string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		ServerAddr:  getEnv("SERVER_ADDR", "0.0.0.0"),
		ServerPort:  getEnvInt("SERVER_PORT", 8080),
		Environment: getEnv("ENVIRONMENT", "development"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnvInt("DB_PORT", 5432),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "loomwork"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTIssuer: getEnv("JWT_ISSUER", "loomwork"),

		CronSecret: getEnv("CRON_SECRET", ""),

		DefaultArchiveRetentionDays: getEnvInt("DEFAULT_ARCHIVE_RETENTION_DAYS", 90),
		DefaultTrashRetentionDays:   getEnvInt("DEFAULT_TRASH_RETENTION_DAYS", 30),
		NotifyWindow:                getEnvDuration("ARCHIVE_NOTIFY_WINDOW", 7*24*time.Hour),

		ReaperSchedule: getEnv("REAPER_SCHEDULE", ""),

		CheckTimeout: getEnvDuration("CHECK_TIMEOUT", 10*time.Second),

		StorageDir: getEnv("STORAGE_DIR", "data/blobs"),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", ""),
		SMTPFromName: getEnv("SMTP_FROM_NAME", "Loomwork"),

		RateLimit: RateLimitConfig{
			Enabled:         getEnvBool("RATE_LIMIT_ENABLED", true),
			ClosureRequests: getEnvInt("RATE_LIMIT_CLOSURE_REQUESTS", 10),
			ClosureWindow:   getEnvDuration("RATE_LIMIT_CLOSURE_WINDOW", time.Minute),
		},
		SecurityHeaders: SecurityHeadersConfig{
			Enabled:            getEnvBool("SECURITY_HEADERS_ENABLED", true),
			HSTSMaxAge:         getEnvInt("HSTS_MAX_AGE", 31536000),
			FrameOptions:       getEnv("FRAME_OPTIONS", "DENY"),
			ContentTypeOptions: getEnv("CONTENT_TYPE_OPTIONS", "nosniff"),
			ReferrerPolicy:     getEnv("REFERRER_POLICY", "strict-origin-when-cross-origin"),
		},
		MaxRequestBody: int64(getEnvInt("MAX_REQUEST_BODY_BYTES", 1<<20)),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

// IsProduction returns true when running in the production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// HasSMTP returns true if SMTP delivery is configured.
func (c *Config) HasSMTP() bool {
	return c.SMTPHost != "" && c.SMTPFrom != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
