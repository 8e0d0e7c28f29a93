package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/romarioraffington/prepped-client-sub000/pkg/config"
	"github.com/romarioraffington/prepped-client-sub000/pkg/database"
)

// Config holds all configuration for the wishlist service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"WISHLIST_HTTP_PORT" envDefault:"8004"`

	// PostgreSQL
	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"prepped"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:"prepped_secret"`
	PostgresDB       string `env:"POSTGRES_DB" envDefault:"prepped"`
	PostgresSSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`

	// Redis
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Wishlist summary cache TTL in minutes.
	SummaryCacheTTL int `env:"SUMMARY_CACHE_TTL_MINUTES" envDefault:"15"`

	// Quick-save target TTL in hours. Zero keeps targets until cleared.
	QuickSaveTargetTTL int `env:"QUICK_SAVE_TARGET_TTL_HOURS" envDefault:"0"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// CIDRs allowed to reach the pprof debug endpoints.
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.1/32" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load wishlist config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.SummaryCacheTTL < 0 {
		return fmt.Errorf("invalid summary cache TTL: %d", c.SummaryCacheTTL)
	}
	if c.QuickSaveTargetTTL < 0 {
		return fmt.Errorf("invalid quick-save target TTL: %d", c.QuickSaveTargetTTL)
	}
	return nil
}

// Postgres returns the pool configuration for the service database.
func (c *Config) Postgres() database.PostgresConfig {
	pg := database.DefaultPostgresConfig()
	pg.Host = c.PostgresHost
	pg.Port = c.PostgresPort
	pg.User = c.PostgresUser
	pg.Password = c.PostgresPassword
	pg.DBName = c.PostgresDB
	pg.SSLMode = c.PostgresSSLMode
	return pg
}

// Redis returns the connection configuration for the cache store.
func (c *Config) Redis() database.RedisConfig {
	return database.RedisConfig{
		Host:     c.RedisHost,
		Port:     c.RedisPort,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}

// SummaryTTL returns the summary cache TTL as a duration.
func (c *Config) SummaryTTL() time.Duration {
	return time.Duration(c.SummaryCacheTTL) * time.Minute
}

// TargetTTL returns the quick-save target TTL as a duration.
func (c *Config) TargetTTL() time.Duration {
	return time.Duration(c.QuickSaveTargetTTL) * time.Hour
}
