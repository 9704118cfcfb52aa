// Package observability provides the structured logger and Prometheus
// metrics shared across commands.
package observability

import (
	"log/slog"
	"os"

	"github.com/couchcryptid/storm-forecast-skill/internal/config"
)

// NewLogger builds the process logger from config: JSON or text handler
// on stderr, leveled per LOG_LEVEL. Unknown values fall back to the
// defaults (json, info) rather than failing startup.
func NewLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}
