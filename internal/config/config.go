// Package config provides centralized application configuration.
// Defaults live here; environment variables (optionally from a .env file
// loaded at startup) override them.
package config

import (
	"os"
	"strconv"
)

// RefreshRates are the accepted metric refresh periods in milliseconds.
var RefreshRates = []int{100, 250, 500, 1000}

// DefaultRefreshMS is the default metric refresh period.
const DefaultRefreshMS = 250

// AppConfig holds the complete application configuration.
type AppConfig struct {
	// RefreshMS is the metric refresh period in milliseconds; one of
	// RefreshRates.
	RefreshMS int
	// MasterVolume is the initial master volume (0.0 to 1.0).
	MasterVolume float64
	// PacksDir overrides the sound-pack search order when non-empty.
	PacksDir string
	// LogLevel is a charmbracelet/log level name ("debug", "info", ...).
	LogLevel string
}

// Default returns the built-in configuration.
func Default() AppConfig {
	return AppConfig{
		RefreshMS:    DefaultRefreshMS,
		MasterVolume: 1.0,
		PacksDir:     "",
		LogLevel:     "info",
	}
}

// Load returns the configuration with environment variable overrides.
func Load() AppConfig {
	cfg := Default()

	if ms := getEnvInt("CHARM_REFRESH_MS", 0); ms > 0 {
		cfg.RefreshMS = NormalizeRefreshMS(ms)
	}
	if v := getEnvFloat("CHARM_VOLUME", -1); v >= 0 && v <= 1 {
		cfg.MasterVolume = v
	}
	if dir := os.Getenv("CHARM_PACKS_DIR"); dir != "" {
		cfg.PacksDir = dir
	}
	if level := os.Getenv("CHARM_LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}

	return cfg
}

// ValidRefreshMS reports whether ms is an accepted refresh period.
func ValidRefreshMS(ms int) bool {
	for _, r := range RefreshRates {
		if ms == r {
			return true
		}
	}
	return false
}

// NormalizeRefreshMS maps any value onto an accepted refresh period,
// falling back to the default.
func NormalizeRefreshMS(ms int) int {
	if ValidRefreshMS(ms) {
		return ms
	}
	return DefaultRefreshMS
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
