package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// H3 supports resolutions 0 through 15.
const maxH3Level = 15

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Default aggregation parameters; requests may override them within
	// the same validity constraints.
	MinLevel      int
	MaxLevel      int
	MinPointCount int

	// MaxRequestPoints caps the number of point features accepted in a
	// single aggregation request.
	MaxRequestPoints int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	minLevel, err := parseInt("H3_MIN_LEVEL", 5)
	if err != nil {
		return nil, err
	}
	maxLevel, err := parseInt("H3_MAX_LEVEL", 9)
	if err != nil {
		return nil, err
	}
	minCount, err := parseInt("MIN_POINT_COUNT", 100)
	if err != nil {
		return nil, err
	}
	maxRequestPoints, err := parseInt("MAX_REQUEST_POINTS", 500000)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:         envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:         envOrDefault("LOG_LEVEL", "info"),
		LogFormat:        envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:  shutdownTimeout,
		MinLevel:         minLevel,
		MaxLevel:         maxLevel,
		MinPointCount:    minCount,
		MaxRequestPoints: maxRequestPoints,
	}

	if cfg.MinLevel < 0 || cfg.MaxLevel > maxH3Level {
		return nil, fmt.Errorf("H3 levels must be within [0, %d], got [%d, %d]", maxH3Level, cfg.MinLevel, cfg.MaxLevel)
	}
	if cfg.MinLevel >= cfg.MaxLevel {
		return nil, fmt.Errorf("H3_MIN_LEVEL (%d) must be less than H3_MAX_LEVEL (%d)", cfg.MinLevel, cfg.MaxLevel)
	}
	if cfg.MinPointCount < 0 {
		return nil, errors.New("MIN_POINT_COUNT must not be negative")
	}
	if cfg.MaxRequestPoints <= 0 {
		return nil, errors.New("MAX_REQUEST_POINTS must be positive")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func parseDuration(key string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}
