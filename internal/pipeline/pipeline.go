// Package pipeline orchestrates the match-filter-score stage: it joins
// matched forecast records with their ensemble member sets, drops
// instances below the member minimum, and scores the rest.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/storm-forecast-skill/internal/domain"
	"github.com/couchcryptid/storm-forecast-skill/internal/observability"
)

// Scorer runs the scoring stage over an in-memory dataset. The stage
// does no I/O: commands load the inputs and persist the result.
type Scorer struct {
	workers int
	logger  *slog.Logger
	metrics *observability.Metrics
	clock   clockwork.Clock
}

// NewScorer creates a Scorer that scores at most workers instances
// concurrently.
func NewScorer(workers int, logger *slog.Logger, metrics *observability.Metrics) *Scorer {
	if workers < 1 {
		workers = 1
	}
	return &Scorer{
		workers: workers,
		logger:  logger,
		metrics: metrics,
		clock:   clockwork.NewRealClock(),
	}
}

// SetClock swaps the time source. Pass nil to reset to real time.
func (s *Scorer) SetClock(c clockwork.Clock) {
	if c == nil {
		s.clock = clockwork.NewRealClock()
		return
	}
	s.clock = c
}

// Result summarizes one scoring run. Records preserve the input order
// of the matched dataset.
type Result struct {
	Records           []domain.ScoredRecord
	SkippedNoMembers  int
	SkippedFewMembers int
	Elapsed           time.Duration
}

// Run scores every qualifying instance in the matched dataset.
//
// Instances are independent, so scoring fans out across the worker
// limit; each worker writes only its own slot of a pre-sized results
// slice, and the skipped slots are compacted afterwards. The output is
// therefore deterministic and ordered regardless of worker count.
func (s *Scorer) Run(ctx context.Context, matched []domain.MatchedRecord, members domain.MemberTable) (Result, error) {
	start := s.clock.Now()
	s.logger.Info("scoring started", "instances", len(matched), "workers", s.workers)

	scored := make([]*domain.ScoredRecord, len(matched))
	var skippedNone, skippedFew atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, rec := range matched {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			ms := members[rec.Key()]
			switch {
			case len(ms) == 0:
				skippedNone.Add(1)
				s.metrics.InstancesSkipped.WithLabelValues("no_members").Inc()
				s.logger.Debug("skipping instance without ensemble rows",
					"storm", rec.Storm, "valid_time", rec.ValidTime)
				return nil
			case len(ms) < domain.MinMembers:
				skippedFew.Add(1)
				s.metrics.InstancesSkipped.WithLabelValues("few_members").Inc()
				s.logger.Debug("skipping instance below member minimum",
					"storm", rec.Storm, "valid_time", rec.ValidTime, "members", len(ms))
				return nil
			}

			sc, err := domain.ScoreEnsembleWithAggregates(ms, rec.ObsTemperature, rec.ModelStd, rec.MeanError)
			if err != nil {
				return fmt.Errorf("score %s at %s: %w", rec.Storm, rec.ValidTime.Format(time.RFC3339), err)
			}

			scored[i] = &domain.ScoredRecord{
				MatchedRecord: rec,
				Phi:           sc.Phi,
				Rho:           sc.Rho,
				BCI:           sc.BCI,
				MemberCount:   len(ms),
			}
			s.metrics.InstancesScored.Inc()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	records := make([]domain.ScoredRecord, 0, len(matched))
	for _, r := range scored {
		if r != nil {
			records = append(records, *r)
		}
	}

	result := Result{
		Records:           records,
		SkippedNoMembers:  int(skippedNone.Load()),
		SkippedFewMembers: int(skippedFew.Load()),
		Elapsed:           s.clock.Since(start),
	}

	s.metrics.ScoringDuration.Observe(result.Elapsed.Seconds())
	s.logger.Info("scoring complete",
		"scored", len(result.Records),
		"skipped_no_members", result.SkippedNoMembers,
		"skipped_few_members", result.SkippedFewMembers,
		"elapsed", result.Elapsed)

	return result, nil
}
