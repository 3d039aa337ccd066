// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/mfontana/overlay/internal/modules/settings"
)

// Config holds application configuration
type Config struct {
	DataDir               string // Base directory for all databases (always absolute)
	LogLevel              string
	Port                  int
	DevMode               bool
	SnapshotRetentionDays int // Snapshots older than this are pruned by the retention job

	// Portfolio defaults, overridable per request and via the settings database
	DefaultAUM        float64
	DefaultVolTarget  float64
	DefaultFXContract string // "DOL" (full-size) or "WDO" (mini)
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Determine data directory with fallback logic:
	// OVERLAY_DATA_DIR if set, otherwise ./data, always resolved to an
	// absolute path and created if missing.
	dataDir := getEnv("OVERLAY_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "data"
	}

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:               absDataDir,
		Port:                  getEnvAsInt("OVERLAY_PORT", 8060),
		DevMode:               getEnvAsBool("DEV_MODE", false),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		SnapshotRetentionDays: getEnvAsInt("SNAPSHOT_RETENTION_DAYS", 365),
		DefaultAUM:            getEnvAsFloat("DEFAULT_AUM", 100_000_000),
		DefaultVolTarget:      getEnvAsFloat("DEFAULT_VOL_TARGET", 0.10),
		DefaultFXContract:     getEnv("DEFAULT_FX_CONTRACT", "WDO"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// UpdateFromSettings updates configuration from the settings database.
// Settings DB values take precedence over environment variables; empty
// settings keep the env var value as fallback.
func (c *Config) UpdateFromSettings(settingsRepo *settings.Repository) error {
	aum, err := settingsRepo.GetFloat("default_aum")
	if err != nil {
		return fmt.Errorf("failed to get default_aum from settings: %w", err)
	}
	if aum != nil && *aum > 0 {
		c.DefaultAUM = *aum
	}

	volTarget, err := settingsRepo.GetFloat("default_vol_target")
	if err != nil {
		return fmt.Errorf("failed to get default_vol_target from settings: %w", err)
	}
	if volTarget != nil && *volTarget > 0 {
		c.DefaultVolTarget = *volTarget
	}

	fxContract, err := settingsRepo.Get("default_fx_contract")
	if err != nil {
		return fmt.Errorf("failed to get default_fx_contract from settings: %w", err)
	}
	if fxContract != nil && *fxContract != "" {
		c.DefaultFXContract = *fxContract
	}

	return nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.DefaultFXContract != "DOL" && c.DefaultFXContract != "WDO" {
		return fmt.Errorf("invalid DEFAULT_FX_CONTRACT %q: must be DOL or WDO", c.DefaultFXContract)
	}
	if c.SnapshotRetentionDays <= 0 {
		return fmt.Errorf("SNAPSHOT_RETENTION_DAYS must be positive, got %d", c.SnapshotRetentionDays)
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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
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
