// Command score computes the Bias-Coherence Index for every matched
// forecast instance and writes the scored dataset.
//
// Usage:
//
//	go run ./cmd/score \
//	  -matched data/matched.csv \
//	  -ensemble data/ensemble.csv \
//	  -out results/bci_scored.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/storm-forecast-skill/internal/adapter/csvfile"
	"github.com/couchcryptid/storm-forecast-skill/internal/config"
	"github.com/couchcryptid/storm-forecast-skill/internal/domain"
	"github.com/couchcryptid/storm-forecast-skill/internal/observability"
	"github.com/couchcryptid/storm-forecast-skill/internal/pipeline"
	"github.com/couchcryptid/storm-forecast-skill/internal/report"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	matched := flag.String("matched", "", "matched observation/forecast CSV")
	ensemble := flag.String("ensemble", "", "ensemble member CSV")
	out := flag.String("out", "", "output path for the scored CSV")
	flag.Parse()

	if *matched == "" || *ensemble == "" || *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -matched, -ensemble, -out")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	records, err := csvfile.LoadMatched(*matched)
	if err != nil {
		return err
	}
	rows, err := csvfile.LoadEnsemble(*ensemble)
	if err != nil {
		return err
	}
	members := domain.BuildMemberTable(rows)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scorer := pipeline.NewScorer(cfg.ScoreWorkers, logger, metrics)
	result, err := scorer.Run(ctx, records, members)
	if err != nil {
		return fmt.Errorf("score: %w", err)
	}

	if err := csvfile.WriteScored(*out, result.Records); err != nil {
		return err
	}

	report.WriteScoringSummary(os.Stdout, result.Records)
	fmt.Printf("✓ Saved: %s\n", *out)
	return nil
}
