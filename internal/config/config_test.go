package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "catalog", cfg.Service)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 10*time.Second, cfg.Catalog.LoadTimeout)
	assert.Empty(t, cfg.Catalog.File)
	assert.Empty(t, cfg.Catalog.DatabaseURL)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, 0, cfg.RateLimitPerMinute)
	assert.Empty(t, cfg.Telemetry.Endpoint)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SERVER_SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("CATALOG_FILE", "/data/catalog.json")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("METRICS_TOKEN", "secret")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "120")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4317")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "/data/catalog.json", cfg.Catalog.File)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, "secret", cfg.Metrics.Token)
	assert.Equal(t, 120, cfg.RateLimitPerMinute)
	assert.Equal(t, "collector:4317", cfg.Telemetry.Endpoint)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_Rejects(t *testing.T) {
	t.Run("both sources", func(t *testing.T) {
		t.Setenv("CATALOG_FILE", "catalog.json")
		t.Setenv("CATALOG_DATABASE_URL", "postgres://localhost/catalog")

		_, err := Load()
		assert.True(t, errors.Is(err, ErrConflictingSources))
	})

	t.Run("negative rate limit", func(t *testing.T) {
		t.Setenv("RATE_LIMIT_PER_MINUTE", "-1")

		_, err := Load()
		assert.True(t, errors.Is(err, ErrNegativeRateLimit))
	})

	t.Run("malformed duration", func(t *testing.T) {
		t.Setenv("CATALOG_LOAD_TIMEOUT", "soon")

		_, err := Load()
		assert.Error(t, err)
	})
}
