// Package validate tests whether the Bias-Coherence Index explains
// forecast error, and whether it adds information beyond raw ensemble
// spread. It produces a diagnostics report over a complete scored
// dataset; it never mutates one.
package validate

import (
	"fmt"
	"time"

	"github.com/couchcryptid/storm-forecast-skill/internal/domain"
	"github.com/couchcryptid/storm-forecast-skill/internal/stats"
)

// Report holds every validation diagnostic for one scored dataset.
type Report struct {
	N      int
	Storms int
	Start  time.Time
	End    time.Time

	// SpreadError and BCIError correlate each candidate predictor with
	// realized forecast error. PartialBCI is the decisive diagnostic:
	// BCI against error with spread's contribution removed from both.
	SpreadError stats.CorrelationResult
	BCIError    stats.CorrelationResult
	PartialBCI  stats.CorrelationResult

	ByStorm []StormSummary
}

// Correlate measures the linear association between two diagnostic
// series.
func Correlate(x, y []float64) (stats.CorrelationResult, error) {
	return stats.Pearson(x, y)
}

// PartialCorrelate measures the association between x and y after
// removing the first-order influence of control from both. The result
// is invariant under adding any linear function of control to either
// input. Controlling a series for itself leaves no variance, so
// PartialCorrelate(x, x, x) degrades to r=0, p=1.
func PartialCorrelate(x, y, control []float64) (stats.CorrelationResult, error) {
	xr, err := stats.Residualize(x, control)
	if err != nil {
		return stats.CorrelationResult{}, fmt.Errorf("residualize x: %w", err)
	}
	yr, err := stats.Residualize(y, control)
	if err != nil {
		return stats.CorrelationResult{}, fmt.Errorf("residualize y: %w", err)
	}
	return stats.Pearson(xr, yr)
}

// Significance returns the reporting verdict for a p-value. The bands
// are the conventional 0.001 / 0.01 / 0.05 thresholds; the label is
// display text, never an input to computation.
func Significance(p float64) string {
	switch {
	case p < 0.001:
		return "*** HIGHLY SIGNIFICANT (p < 0.001)"
	case p < 0.01:
		return "** VERY SIGNIFICANT (p < 0.01)"
	case p < 0.05:
		return "* SIGNIFICANT (p < 0.05)"
	default:
		return "NOT SIGNIFICANT"
	}
}

// Run computes the full validation report for a scored dataset.
func Run(records []domain.ScoredRecord) (Report, error) {
	if len(records) == 0 {
		return Report{}, fmt.Errorf("validate: empty scored dataset")
	}

	spreads := make([]float64, len(records))
	errors := make([]float64, len(records))
	bcis := make([]float64, len(records))
	storms := make(map[string]struct{}, 16)
	start, end := records[0].ValidTime, records[0].ValidTime

	for i, r := range records {
		spreads[i] = r.ModelStd
		errors[i] = r.MeanError
		bcis[i] = r.BCI
		storms[r.Storm] = struct{}{}
		if r.ValidTime.Before(start) {
			start = r.ValidTime
		}
		if r.ValidTime.After(end) {
			end = r.ValidTime
		}
	}

	spreadError, err := Correlate(spreads, errors)
	if err != nil {
		return Report{}, fmt.Errorf("correlate spread with error: %w", err)
	}
	bciError, err := Correlate(bcis, errors)
	if err != nil {
		return Report{}, fmt.Errorf("correlate BCI with error: %w", err)
	}
	partial, err := PartialCorrelate(bcis, errors, spreads)
	if err != nil {
		return Report{}, fmt.Errorf("partial correlation controlling for spread: %w", err)
	}

	return Report{
		N:           len(records),
		Storms:      len(storms),
		Start:       start,
		End:         end,
		SpreadError: spreadError,
		BCIError:    bciError,
		PartialBCI:  partial,
		ByStorm:     SummarizeByStorm(records),
	}, nil
}
