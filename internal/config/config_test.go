package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.ServerAddr)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "development", cfg.Environment)
	assert.False(t, cfg.IsProduction())

	assert.Equal(t, 90, cfg.DefaultArchiveRetentionDays)
	assert.Equal(t, 30, cfg.DefaultTrashRetentionDays)
	assert.Equal(t, 7*24*time.Hour, cfg.NotifyWindow)
	assert.Equal(t, 10*time.Second, cfg.CheckTimeout)
	assert.Empty(t, cfg.ReaperSchedule)

	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 10, cfg.RateLimit.ClosureRequests)
	assert.Equal(t, time.Minute, cfg.RateLimit.ClosureWindow)

	assert.False(t, cfg.HasSMTP())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("DEFAULT_ARCHIVE_RETENTION_DAYS", "180")
	t.Setenv("ARCHIVE_NOTIFY_WINDOW", "72h")
	t.Setenv("REAPER_SCHEDULE", "0 3 * * *")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_FROM", "noreply@example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 180, cfg.DefaultArchiveRetentionDays)
	assert.Equal(t, 72*time.Hour, cfg.NotifyWindow)
	assert.Equal(t, "0 3 * * *", cfg.ReaperSchedule)
	assert.True(t, cfg.HasSMTP())
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("SERVER_PORT", "not-a-number")
	t.Setenv("CHECK_TIMEOUT", "soon")
	t.Setenv("RATE_LIMIT_ENABLED", "sometimes")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, 10*time.Second, cfg.CheckTimeout)
	assert.True(t, cfg.RateLimit.Enabled)
}
