package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAppConfig_Defaults(t *testing.T) {
	cfg := NewAppConfig(context.Background())

	assert.Equal(t, 5, cfg.MaxTurns)
	assert.Equal(t, 4096, cfg.MaxOutputTokens)
	assert.Equal(t, 500, cfg.TierLengthThreshold)
	assert.Equal(t, 2, cfg.TierTurnThreshold)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:3001"}, cfg.AllowedOrigins)
	assert.False(t, cfg.UsePostgres())
}

func TestNewAppConfig_FromEnv(t *testing.T) {
	t.Setenv("MAX_TURNS", "3")
	t.Setenv("DATABASE_URL", "postgres://localhost/sazed")
	t.Setenv("RUNTIME_PATH", "/srv/sazed")

	cfg := NewAppConfig(context.Background())

	assert.Equal(t, 3, cfg.MaxTurns)
	assert.True(t, cfg.UsePostgres())
	assert.Equal(t, "/srv/sazed/SYSTEM.md", cfg.GetSystemPath())
}

func TestNewGatewayConfig_Timeout(t *testing.T) {
	assert.Equal(t, 30*time.Second, NewGatewayConfig(context.Background()).ToolTimeout)

	t.Setenv("TOOL_TIMEOUT", "5s")
	assert.Equal(t, 5*time.Second, NewGatewayConfig(context.Background()).ToolTimeout)
}

func TestTelegramConfig_Enabled(t *testing.T) {
	assert.False(t, TelegramConfig{}.Enabled())
	assert.True(t, TelegramConfig{Token: "t"}.Enabled())
}

func TestLoadEnvFile(t *testing.T) {
	ctx := context.Background()
	require.NoError(t, LoadEnvFile(ctx, filepath.Join(t.TempDir(), "missing.env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SAZED_TEST_VALUE=from-file\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("SAZED_TEST_VALUE") })

	require.NoError(t, LoadEnvFile(ctx, path))
	assert.Equal(t, "from-file", os.Getenv("SAZED_TEST_VALUE"))
}

func TestNewDistillConfig_Defaults(t *testing.T) {
	cfg := NewDistillConfig(context.Background())

	assert.True(t, cfg.SummaryEnabled)
	assert.Zero(t, cfg.MaxTranscriptTokens)
	assert.False(t, cfg.AutoDistill)
	assert.Equal(t, 30*time.Minute, cfg.Interval)
	assert.Equal(t, 720*time.Hour, cfg.ArchiveMinAge)

	t.Setenv("DISTILL_MAX_TRANSCRIPT_TOKENS", "8000")
	assert.Equal(t, 8000, NewDistillConfig(context.Background()).MaxTranscriptTokens)
}
