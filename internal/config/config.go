// Package config loads service settings from environment variables.
// File paths and per-run options belong to command-line flags; the
// environment carries the settings that outlive a single invocation.
package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	LogLevel        string
	LogFormat       string
	HTTPAddr        string
	ShutdownTimeout time.Duration

	// ScoreWorkers bounds the concurrent scoring goroutines.
	ScoreWorkers int

	// TIGGE archive access (cmd/fetch only; key and email may stay empty
	// for the scoring and validation commands).
	TiggeURL          string
	TiggeKey          string
	TiggeEmail        string
	TiggeTimeout      time.Duration
	TiggePollInterval time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	tiggeTimeout, err := parseDuration("TIGGE_TIMEOUT", "60s")
	if err != nil {
		return nil, err
	}

	pollInterval, err := parseDuration("TIGGE_POLL_INTERVAL", "30s")
	if err != nil {
		return nil, err
	}

	workers, err := parseScoreWorkers()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		ShutdownTimeout: shutdownTimeout,
		ScoreWorkers:    workers,

		TiggeURL:          envOrDefault("TIGGE_API_URL", "https://api.ecmwf.int/v1"),
		TiggeKey:          os.Getenv("TIGGE_API_KEY"),
		TiggeEmail:        os.Getenv("TIGGE_API_EMAIL"),
		TiggeTimeout:      tiggeTimeout,
		TiggePollInterval: pollInterval,
	}

	if cfg.TiggeURL == "" {
		return nil, errors.New("TIGGE_API_URL must not be empty")
	}

	return cfg, nil
}

// RequireArchiveCredentials checks the settings only cmd/fetch needs.
func (c *Config) RequireArchiveCredentials() error {
	if c.TiggeKey == "" {
		return errors.New("TIGGE_API_KEY is required")
	}
	if c.TiggeEmail == "" {
		return errors.New("TIGGE_API_EMAIL is required")
	}
	return nil
}

func parseScoreWorkers() (int, error) {
	s := envOrDefault("SCORE_WORKERS", "4")
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, errors.New("invalid SCORE_WORKERS: must be a positive integer")
	}
	if n > 256 {
		return 0, errors.New("invalid SCORE_WORKERS: unreasonably large")
	}
	return n, nil
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, errors.New("invalid " + key + ": must be a positive duration")
	}
	return d, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
