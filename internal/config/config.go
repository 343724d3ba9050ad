// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported store drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DefaultSheetName is the Balanz "Resultados del período" data sheet.
const DefaultSheetName = "resultados_por_lotes_finales"

// Config holds application configuration
type Config struct {
	Database DatabaseConfig
	Quotes   QuotesConfig
	Rates    RatesConfig

	SheetName string
	LogLevel  string
	LogPretty bool
}

// DatabaseConfig describes where snapshots are persisted.
type DatabaseConfig struct {
	Driver     string // postgres or sqlite
	Host       string
	Port       int
	Name       string
	User       string
	Password   string
	SSLMode    string
	SQLitePath string
}

// QuotesConfig controls the market quote lookups.
type QuotesConfig struct {
	Suffix  string        // Local market ticker suffix, ".BA" for BYMA
	Delay   time.Duration // Mandatory pause between consecutive lookups
	Timeout time.Duration // Per-lookup timeout
}

// RatesConfig controls the dollar rates aggregator call.
type RatesConfig struct {
	URL     string
	Timeout time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Database: DatabaseConfig{
			Driver:     strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
			Host:       getEnv("DB_HOST", ""),
			Port:       getEnvAsInt("DB_PORT", 5432),
			Name:       getEnv("DB_NAME", "postgres"),
			User:       getEnv("DB_USER", ""),
			Password:   getEnv("DB_PASSWORD", ""),
			SSLMode:    getEnv("DB_SSLMODE", "require"),
			SQLitePath: getEnv("SQLITE_PATH", "data/cedears.db"),
		},
		Quotes: QuotesConfig{
			Suffix:  getEnv("QUOTE_SUFFIX", ".BA"),
			Delay:   getEnvAsDuration("QUOTE_DELAY", 800*time.Millisecond),
			Timeout: getEnvAsDuration("QUOTE_TIMEOUT", 15*time.Second),
		},
		Rates: RatesConfig{
			URL:     getEnv("RATES_URL", "https://dolarapi.com/v1/dolares"),
			Timeout: getEnvAsDuration("RATES_TIMEOUT", 10*time.Second),
		},
		SheetName: getEnv("SHEET_NAME", DefaultSheetName),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogPretty: getEnvAsBool("LOG_PRETTY", true),
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres:
		var missing []string
		if c.Database.Host == "" {
			missing = append(missing, "DB_HOST")
		}
		if c.Database.Name == "" {
			missing = append(missing, "DB_NAME")
		}
		if c.Database.User == "" {
			missing = append(missing, "DB_USER")
		}
		if c.Database.Password == "" {
			missing = append(missing, "DB_PASSWORD")
		}
		if len(missing) > 0 {
			return fmt.Errorf("missing database settings: %s", strings.Join(missing, ", "))
		}
	case DriverSQLite:
		if c.Database.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (expected %s or %s)", c.Database.Driver, DriverPostgres, DriverSQLite)
	}

	if c.Quotes.Delay < 0 {
		return fmt.Errorf("QUOTE_DELAY must not be negative")
	}
	if c.SheetName == "" {
		return fmt.Errorf("SHEET_NAME must not be empty")
	}
	return nil
}

// DSN returns the connection string for the configured driver.
func (d DatabaseConfig) DSN() (string, error) {
	if d.Driver == DriverSQLite {
		if strings.HasPrefix(d.SQLitePath, "file:") {
			return d.SQLitePath, nil
		}
		abs, err := filepath.Abs(d.SQLitePath)
		if err != nil {
			return "", fmt.Errorf("failed to resolve sqlite path: %w", err)
		}
		return abs, nil
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": []string{d.SSLMode}}.Encode(),
	}
	return u.String(), nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("800ms") or plain milliseconds ("800").
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(value); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultValue
}
