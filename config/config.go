package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config represents the full application configuration surface.
type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Alerts  AlertConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// StorageConfig holds database options.
type StorageConfig struct {
	DBPath string
}

// AlertConfig holds low-stock monitoring options.
type AlertConfig struct {
	LowStockThreshold decimal.Decimal
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	threshold, err := decimal.NewFromString(getenvWithDefault("LOW_STOCK_THRESHOLD", "50"))
	if err != nil {
		return nil, fmt.Errorf("LOW_STOCK_THRESHOLD is not a number: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Storage: StorageConfig{
			DBPath: getenvWithDefault("DB_PATH", "fertistock.db"),
		},
		Alerts: AlertConfig{
			LowStockThreshold: threshold,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.Storage.DBPath == "" {
		return errors.New("DB_PATH must be provided")
	}

	if c.Alerts.LowStockThreshold.IsNegative() {
		return errors.New("LOW_STOCK_THRESHOLD must not be negative")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
