package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds runtime configuration loaded from environment variables and an
// optional .env file.
type Config struct {
	AppPort  string `mapstructure:"APP_PORT"`
	AppEnv   string `mapstructure:"APP_ENV"` // development | production
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// DBDriver is sqlite, postgres or memory.
	DBDriver    string `mapstructure:"DB_DRIVER"`
	DatabaseDSN string `mapstructure:"DATABASE_DSN"`

	// Empty URLs disable the Redis cache and the RabbitMQ publisher.
	RedisURL    string        `mapstructure:"REDIS_URL"`
	CacheTTL    time.Duration `mapstructure:"CACHE_TTL"`
	RabbitMQURL string        `mapstructure:"RABBITMQ_URL"`

	SessionExpiration time.Duration `mapstructure:"SESSION_EXPIRATION"`
	SeedSampleData    bool          `mapstructure:"SEED_SAMPLE_DATA"`
}

// Load reads the configuration. Environment variables override the .env file.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read .env: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetDefaults registers the default of every key so AutomaticEnv can find it.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "inventario.db")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("CACHE_TTL", "5m")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("SESSION_EXPIRATION", "24h")
	v.SetDefault("SEED_SAMPLE_DATA", false)
}

// Validate rejects settings the application cannot start with.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "sqlite", "postgres", "memory":
	default:
		return fmt.Errorf("invalid DB_DRIVER %q: want sqlite, postgres or memory", c.DBDriver)
	}
	if c.DBDriver != "memory" && c.DatabaseDSN == "" {
		return fmt.Errorf("DATABASE_DSN is required for DB_DRIVER %s", c.DBDriver)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive, got %s", c.CacheTTL)
	}
	return nil
}

// IsDevelopment reports whether the app runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}
