package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Service  string `env:"SERVICE_NAME" envDefault:"catalog"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	Server    ServerConfig    `envPrefix:"SERVER_"`
	Catalog   CatalogConfig   `envPrefix:"CATALOG_"`
	Metrics   MetricsConfig   `envPrefix:"METRICS_"`
	Telemetry TelemetryConfig `envPrefix:"OTEL_"`

	RateLimitPerMinute int `env:"RATE_LIMIT_PER_MINUTE" envDefault:"0"`
}

type ServerConfig struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// CatalogConfig selects where the catalog is loaded from. With neither File
// nor DatabaseURL set the bundled catalog is used.
type CatalogConfig struct {
	File        string        `env:"FILE"`
	DatabaseURL string        `env:"DATABASE_URL"`
	LoadTimeout time.Duration `env:"LOAD_TIMEOUT" envDefault:"10s"`
}

type MetricsConfig struct {
	Enabled bool   `env:"ENABLED" envDefault:"true"`
	Token   string `env:"TOKEN"`
}

type TelemetryConfig struct {
	Endpoint    string `env:"EXPORTER_OTLP_ENDPOINT"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"catalog"`
}

var (
	ErrConflictingSources = errors.New("CATALOG_FILE and CATALOG_DATABASE_URL are mutually exclusive")
	ErrNegativeRateLimit  = errors.New("RATE_LIMIT_PER_MINUTE must be >= 0")
)

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Catalog.File != "" && c.Catalog.DatabaseURL != "" {
		return ErrConflictingSources
	}
	if c.RateLimitPerMinute < 0 {
		return ErrNegativeRateLimit
	}
	return nil
}
