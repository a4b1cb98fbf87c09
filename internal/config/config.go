package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the assistant service.
// Environment variables are automatically parsed from the HARUPLAN_ prefix.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Database Configuration
	DBDriver    string `envconfig:"DB_DRIVER" default:"sqlite"`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"./data/haruplan.db"`
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`

	// Auth Configuration
	JWTSecret string        `envconfig:"JWT_SECRET" default:""`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"24h"`

	// Interpreter Configuration
	Language    string `envconfig:"LANGUAGE" default:"ko"`
	TimeZone    string `envconfig:"TIME_ZONE" default:"Asia/Seoul"`
	WeekStart   string `envconfig:"WEEK_START" default:"monday"`
	MaxInputLen int    `envconfig:"MAX_INPUT_LEN" default:"1000"`

	// Notifications
	WebhookURL string `envconfig:"WEBHOOK_URL" default:""`

	// Metrics
	MetricsEnabled bool `envconfig:"METRICS_ENABLED" default:"true"`
}

// ResolveDefaults validates driver and interpreter settings and fills
// derived values.
func (c *Config) ResolveDefaults() error {
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}
	if c.DBDriver == "postgres" && c.PostgresDSN == "" {
		return fmt.Errorf("POSTGRES_DSN is required when DB_DRIVER=postgres")
	}

	switch c.Language {
	case "", "ko", "en":
	default:
		return fmt.Errorf("unsupported LANGUAGE: %s", c.Language)
	}

	switch c.WeekStart {
	case "monday", "sunday":
	default:
		return fmt.Errorf("unsupported WEEK_START: %s", c.WeekStart)
	}

	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		return fmt.Errorf("invalid TIME_ZONE %q: %w", c.TimeZone, err)
	}

	if c.JWTSecret == "" {
		if c.Environment == EnvProduction {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		c.JWTSecret = "haruplan-dev-secret"
	}
	return nil
}

// New creates a new Config by parsing environment variables.
// Environment variables are prefixed with HARUPLAN_,
// e.g. HARUPLAN_HTTP_PORT, HARUPLAN_DB_DRIVER.
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("HARUPLAN", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Int("port", cfg.HTTPPort).
		Str("db_driver", cfg.DBDriver).
		Str("language", cfg.Language).
		Str("time_zone", cfg.TimeZone).
		Str("week_start", cfg.WeekStart).
		Bool("webhook_configured", cfg.WebhookURL != "").
		Bool("metrics_enabled", cfg.MetricsEnabled).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing.
func NewForTesting() *Config {
	return &Config{
		Environment:    EnvTesting,
		HTTPPort:       8080,
		DBDriver:       "sqlite",
		SQLitePath:     ":memory:",
		JWTSecret:      "test-secret",
		JWTTTL:         time.Hour,
		Language:       "ko",
		TimeZone:       "Asia/Seoul",
		WeekStart:      "monday",
		MaxInputLen:    1000,
		MetricsEnabled: false,
	}
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool {
	return c.Environment == EnvTesting
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// Location returns the configured time zone. ResolveDefaults has already
// validated it, so failures fall back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// WeekStartDay maps the configured week start to a time.Weekday.
func (c *Config) WeekStartDay() time.Weekday {
	if c.WeekStart == "sunday" {
		return time.Sunday
	}
	return time.Monday
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
