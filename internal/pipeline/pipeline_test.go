package pipeline_test

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/storm-forecast-skill/internal/domain"
	"github.com/couchcryptid/storm-forecast-skill/internal/observability"
	"github.com/couchcryptid/storm-forecast-skill/internal/pipeline"
)

var baseTime = time.Date(2022, 2, 18, 0, 0, 0, 0, time.UTC)

func matchedAt(storm string, hour int) domain.MatchedRecord {
	return domain.MatchedRecord{
		Storm:          storm,
		ValidTime:      baseTime.Add(time.Duration(hour) * time.Hour),
		ObsTemperature: 281.0 + float64(hour)*0.1,
		ModelMean:      281.5 + float64(hour)*0.1,
		ModelStd:       0.8,
		MeanError:      0.5,
	}
}

func addMembers(table domain.MemberTable, rec domain.MatchedRecord, temps ...float64) {
	for _, temp := range temps {
		table.Add(rec.Storm, rec.ValidTime, temp)
	}
}

func TestScorerRun(t *testing.T) {
	full := matchedAt("Eunice", 0)
	short := matchedAt("Eunice", 6)
	orphan := matchedAt("Eunice", 12)
	exact := matchedAt("Franklin", 0)

	table := domain.MemberTable{}
	addMembers(table, full, 281.2, 280.9, 281.5, 282.0, 281.1)
	addMembers(table, short, 281.0, 281.3, 281.6)
	addMembers(table, exact, 280.8, 281.4, 281.9, 282.2)

	s := pipeline.NewScorer(2, slog.Default(), observability.NewMetricsForTesting())
	s.SetClock(clockwork.NewFakeClock())

	result, err := s.Run(context.Background(), []domain.MatchedRecord{full, short, orphan, exact}, table)
	require.NoError(t, err)

	t.Run("keeps only instances meeting the member minimum", func(t *testing.T) {
		require.Len(t, result.Records, 2)
		assert.Equal(t, 1, result.SkippedFewMembers)
		assert.Equal(t, 1, result.SkippedNoMembers)
	})

	t.Run("preserves matched input order", func(t *testing.T) {
		assert.Equal(t, full.Key(), result.Records[0].Key())
		assert.Equal(t, exact.Key(), result.Records[1].Key())
	})

	t.Run("scores use the matched aggregates", func(t *testing.T) {
		want, err := domain.ScoreEnsembleWithAggregates(
			table[full.Key()], full.ObsTemperature, full.ModelStd, full.MeanError)
		require.NoError(t, err)

		got := result.Records[0]
		assert.Equal(t, want.Phi, got.Phi)
		assert.Equal(t, want.Rho, got.Rho)
		assert.Equal(t, want.BCI, got.BCI)
		assert.Equal(t, 5, got.MemberCount)
		assert.Equal(t, full, got.MatchedRecord)
	})

	t.Run("scores stay inside the index bounds", func(t *testing.T) {
		for _, rec := range result.Records {
			assert.GreaterOrEqual(t, rec.BCI, 0.3)
			assert.LessOrEqual(t, rec.BCI, 1.0)
		}
	})
}

func TestScorerRunDeterministicAcrossWorkerCounts(t *testing.T) {
	storms := []string{"Eunice", "Franklin", "Babet", "Isha"}
	var matched []domain.MatchedRecord
	table := domain.MemberTable{}

	for i := range 100 {
		rec := matchedAt(storms[i%len(storms)], i*6)
		rec.ObsTemperature += float64(i % 7)
		matched = append(matched, rec)
		addMembers(table, rec,
			rec.ObsTemperature-1.2,
			rec.ObsTemperature-0.3,
			rec.ObsTemperature+0.4,
			rec.ObsTemperature+0.9,
			rec.ObsTemperature+1.6,
		)
	}

	run := func(workers int) []domain.ScoredRecord {
		s := pipeline.NewScorer(workers, slog.Default(), observability.NewMetricsForTesting())
		result, err := s.Run(context.Background(), matched, table)
		require.NoError(t, err)
		return result.Records
	}

	serial := run(1)
	require.Len(t, serial, len(matched))

	for _, workers := range []int{2, 8, 32} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			if diff := cmp.Diff(serial, run(workers)); diff != "" {
				t.Errorf("records differ from serial run (-serial +parallel):\n%s", diff)
			}
		})
	}
}

func TestScorerRunEmptyDataset(t *testing.T) {
	s := pipeline.NewScorer(4, slog.Default(), observability.NewMetricsForTesting())

	result, err := s.Run(context.Background(), nil, domain.MemberTable{})
	require.NoError(t, err)
	assert.Empty(t, result.Records)
	assert.Zero(t, result.SkippedNoMembers)
	assert.Zero(t, result.SkippedFewMembers)
}

func TestScorerRunCancelledContext(t *testing.T) {
	rec := matchedAt("Eunice", 0)
	table := domain.MemberTable{}
	addMembers(table, rec, 281.2, 280.9, 281.5, 282.0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := pipeline.NewScorer(4, slog.Default(), observability.NewMetricsForTesting())
	_, err := s.Run(ctx, []domain.MatchedRecord{rec}, table)
	assert.ErrorIs(t, err, context.Canceled)
}
