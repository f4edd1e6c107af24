// Package config loads the company service settings from a YAML file with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. COMPANIES_HTTP_PORT.
// The bare name (HTTP_PORT) is accepted as a fallback.
const EnvPrefix = "COMPANIES"

// DefaultPath is the config file used when none is given.
const DefaultPath = "internal/company/config/config.yaml"

// Config struct for YAML configuration
type Config struct {
	GRPCPort int `yaml:"GRPC_PORT" envconfig:"GRPC_PORT"`
	HTTPPort int `yaml:"HTTP_PORT" envconfig:"HTTP_PORT"`

	DBDriver     string `yaml:"DB_DRIVER" envconfig:"DB_DRIVER"`
	DBHost       string `yaml:"DB_HOST" envconfig:"DB_HOST"`
	DBPort       int    `yaml:"DB_PORT" envconfig:"DB_PORT"`
	DBUser       string `yaml:"DB_USER" envconfig:"DB_USER"`
	DBPassword   string `yaml:"DB_PASSWORD" envconfig:"DB_PASSWORD"`
	DBName       string `yaml:"DB_NAME" envconfig:"DB_NAME"`
	DBSSLMode    string `yaml:"DB_SSLMODE" envconfig:"DB_SSLMODE"`
	SQLitePath   string `yaml:"SQLITE_PATH" envconfig:"SQLITE_PATH"`
	DBMaxRetries uint64 `yaml:"DB_MAX_RETRIES" envconfig:"DB_MAX_RETRIES"`

	KafkaBrokers []string `yaml:"KAFKA_BROKERS" envconfig:"KAFKA_BROKERS"`
	Topic        string   `yaml:"TOPIC" envconfig:"TOPIC"`

	JWTSecret string `yaml:"JWT_SECRET" envconfig:"JWT_SECRET"`

	RedisAddr     string        `yaml:"REDIS_ADDR" envconfig:"REDIS_ADDR"`
	RedisPassword string        `yaml:"REDIS_PASSWORD" envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `yaml:"REDIS_DB" envconfig:"REDIS_DB"`
	CacheTTL      time.Duration `yaml:"CACHE_TTL" envconfig:"CACHE_TTL"`

	RateLimit       int           `yaml:"RATE_LIMIT" envconfig:"RATE_LIMIT"`
	LogLevel        string        `yaml:"LOG_LEVEL" envconfig:"LOG_LEVEL"`
	Development     bool          `yaml:"DEVELOPMENT" envconfig:"DEVELOPMENT"`
	ShutdownTimeout time.Duration `yaml:"SHUTDOWN_TIMEOUT" envconfig:"SHUTDOWN_TIMEOUT"`
}

// Default returns the settings used for anything the file and environment
// leave unset.
func Default() *Config {
	return &Config{
		GRPCPort:        50051,
		HTTPPort:        8080,
		DBDriver:        "postgres",
		DBHost:          "localhost",
		DBPort:          5432,
		DBSSLMode:       "disable",
		SQLitePath:      "companies.db",
		DBMaxRetries:    5,
		Topic:           "companies",
		CacheTTL:        time.Minute,
		LogLevel:        "info",
		ShutdownTimeout: 5 * time.Second,
	}
}

// Load reads path over the defaults, then applies environment overrides. A
// missing file is not an error; the service can be configured from the
// environment alone.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		file, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(file, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.GRPCPort < 0 || c.HTTPPort < 0 {
		return errors.New("ports must not be negative")
	}
	if c.RateLimit < 0 {
		return errors.New("RATE_LIMIT must not be negative")
	}
	if c.CacheTTL <= 0 {
		return errors.New("CACHE_TTL must be positive")
	}
	return nil
}
