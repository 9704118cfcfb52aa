// Command fetch retrieves TIGGE ensemble forecasts for every storm in
// the manifest. It runs as a long-lived batch with a diagnostics HTTP
// server alongside, since archive queue waits are measured in hours.
//
// Archive credentials come from the environment (TIGGE_API_KEY,
// TIGGE_API_EMAIL); see internal/config.
//
// Usage:
//
//	go run ./cmd/fetch -manifest configs/storms.yaml -out-dir tigge_data
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/storm-forecast-skill/internal/adapter/diag"
	"github.com/couchcryptid/storm-forecast-skill/internal/adapter/tigge"
	"github.com/couchcryptid/storm-forecast-skill/internal/config"
	"github.com/couchcryptid/storm-forecast-skill/internal/manifest"
	"github.com/couchcryptid/storm-forecast-skill/internal/observability"
)

func main() {
	manifestPath := flag.String("manifest", "configs/storms.yaml", "storm manifest YAML")
	outDir := flag.String("out-dir", "tigge_data", "directory for retrieved GRIB files")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	if err := cfg.RequireArchiveCredentials(); err != nil {
		logger.Error("missing archive credentials", "error", err)
		os.Exit(1)
	}

	m, err := manifest.Load(*manifestPath)
	if err != nil {
		logger.Error("failed to load manifest", "error", err)
		os.Exit(1)
	}

	client := tigge.NewClient(cfg.TiggeURL, cfg.TiggeKey, cfg.TiggeEmail,
		cfg.TiggeTimeout, cfg.TiggePollInterval, metrics, logger)

	srv := diag.NewServer(cfg.HTTPAddr, client, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("diagnostics server error", "error", err)
		}
	}()

	metrics.FetchRunning.Set(1)
	logger.Info("fetch starting",
		"storms", len(m.Storms),
		"origins", len(m.Dataset.Origins),
		"out_dir", *outDir)

	summary := client.RunBatch(ctx, m, *outDir)
	metrics.FetchRunning.Set(0)

	logger.Info("fetch complete",
		"completed", summary.Completed,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"bytes", summary.Bytes)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("diagnostics server shutdown error", "error", err)
	}
	logger.Info("shutdown complete")

	if summary.Completed == 0 && summary.Skipped == 0 && summary.Failed > 0 {
		os.Exit(1)
	}
}
