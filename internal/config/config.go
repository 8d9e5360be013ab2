package config

import (
	"os"
	"strconv"

	"outcomelab/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Data     DataConfig
	Models   ModelConfig
	Report   ReportConfig
	Database DatabaseConfig
}

// DataConfig holds dataset loading settings
type DataConfig struct {
	File    string `validate:"required"`
	Outcome string `validate:"required"`
	Impute  string // "mean", "median", or "mode"
}

// ModelConfig holds model-fitting settings
type ModelConfig struct {
	Seed        int64
	ForestTrees int
	TreeDepth   int
	LassoLambda float64
	HoldoutFrac float64
}

// ReportConfig holds report rendering settings
type ReportConfig struct {
	OutputDir string
	HTML      bool
}

// DatabaseConfig holds optional run-archive settings
type DatabaseConfig struct {
	URL string // empty disables archival
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Data: DataConfig{
			File:    os.Getenv("DATA_FILE"),
			Outcome: os.Getenv("OUTCOME_COLUMN"),
			Impute:  getEnvOrDefault("IMPUTE_METHOD", "median"),
		},
		Models: ModelConfig{
			Seed:        getEnvInt64OrDefault("SEED", 42),
			ForestTrees: getEnvIntOrDefault("FOREST_TREES", 200),
			TreeDepth:   getEnvIntOrDefault("TREE_DEPTH", 6),
			LassoLambda: getEnvFloatOrDefault("LASSO_LAMBDA", 0.05),
			HoldoutFrac: getEnvFloatOrDefault("HOLDOUT_FRACTION", 0.25),
		},
		Report: ReportConfig{
			OutputDir: getEnvOrDefault("OUTPUT_DIR", "./report"),
			HTML:      getEnvBoolOrDefault("REPORT_HTML", true),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.Data.File == "" {
		return errors.ConfigInvalid("DATA_FILE is required")
	}
	if config.Data.Outcome == "" {
		return errors.ConfigInvalid("OUTCOME_COLUMN is required")
	}
	switch config.Data.Impute {
	case "mean", "median", "mode":
	default:
		return errors.ConfigInvalid("IMPUTE_METHOD must be mean, median, or mode")
	}
	if config.Models.HoldoutFrac <= 0 || config.Models.HoldoutFrac >= 1 {
		return errors.ConfigInvalid("HOLDOUT_FRACTION must be in (0, 1)")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
