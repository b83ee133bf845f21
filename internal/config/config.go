// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/aristath/propensity/internal/modules/dataset"
)

// Config holds application configuration
type Config struct {
	DataDir               string // Base directory for the databases (always absolute)
	DatasetSource         string // Local path or s3://bucket/key of the security dataset
	LogLevel              string
	Port                  int
	DevMode               bool
	DatasetReloadSchedule string
	BacktestCacheTTL      time.Duration
	MinFiscalYear         int
	BacktestTopN          int
	HoldingYears          int
	S3                    dataset.S3Config
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("PROPENSITY_DATA_DIR", "./data")

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:               absDataDir,
		DatasetSource:         getEnv("DATASET_SOURCE", filepath.Join(absDataDir, "stock_dataset.xlsx")),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		Port:                  getEnvAsInt("PORT", 8001),
		DevMode:               getEnvAsBool("DEV_MODE", false),
		DatasetReloadSchedule: getEnv("DATASET_RELOAD_SCHEDULE", "@hourly"),
		BacktestCacheTTL:      getEnvAsDuration("BACKTEST_CACHE_TTL", time.Hour),
		MinFiscalYear:         getEnvAsInt("MIN_FISCAL_YEAR", dataset.DefaultMinFiscalYear),
		BacktestTopN:          getEnvAsInt("BACKTEST_TOP_N", 10),
		HoldingYears:          getEnvAsInt("HOLDING_YEARS", 6),
		S3: dataset.S3Config{
			Region:          getEnv("S3_REGION", ""),
			Endpoint:        getEnv("S3_ENDPOINT", ""),
			AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if c.DatasetSource == "" {
		return fmt.Errorf("DATASET_SOURCE is required")
	}
	if c.BacktestTopN <= 0 {
		return fmt.Errorf("BACKTEST_TOP_N must be positive, got %d", c.BacktestTopN)
	}
	if c.HoldingYears <= 0 {
		return fmt.Errorf("HOLDING_YEARS must be positive, got %d", c.HoldingYears)
	}
	if c.BacktestCacheTTL <= 0 {
		return fmt.Errorf("BACKTEST_CACHE_TTL must be positive, got %s", c.BacktestCacheTTL)
	}
	if c.DatasetReloadSchedule != "" {
		parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
		if _, err := parser.Parse(c.DatasetReloadSchedule); err != nil {
			return fmt.Errorf("invalid DATASET_RELOAD_SCHEDULE %q: %w", c.DatasetReloadSchedule, err)
		}
	}
	if strings.HasPrefix(c.DatasetSource, "s3://") && (c.S3.AccessKeyID == "") != (c.S3.SecretAccessKey == "") {
		return fmt.Errorf("S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY must be set together")
	}
	return nil
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

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
