// Package baseline compares the Bias-Coherence Index against ensemble
// spread as a predictor of high-error forecasts. It labels the worst
// quartile of errors, trains a logistic-regression classifier per
// candidate feature set, and ranks the classifiers by AUC-ROC.
//
// Training is deterministic: the optimizer starts from zero weights and
// uses no randomness, so identical input data reproduces identical
// results bit for bit.
package baseline

import (
	"fmt"

	"github.com/couchcryptid/storm-forecast-skill/internal/domain"
	"github.com/couchcryptid/storm-forecast-skill/internal/stats"
)

// Model labels, in evaluation order.
const (
	ModelSpreadOnly = "Spread only"
	ModelBCIOnly    = "BCI only"
	ModelEqual      = "Spread + BCI (equal)"
	ModelLearned    = "Spread + BCI (learned)"
)

// highErrorQuantile defines a high-error event as one whose error
// exceeds this quantile of the dataset's error distribution.
const highErrorQuantile = 0.75

// ClassifierResult is one evaluated model.
type ClassifierResult struct {
	Model        string
	AUC          float64
	Coefficients []float64 // fitted feature weights, in feature order
	Intercept    float64
}

// Comparison holds the full baseline comparison for one scored dataset.
type Comparison struct {
	Threshold      float64 // error value separating high-error events
	HighErrorCount int
	Total          int
	Results        []ClassifierResult
}

// Compare labels high-error events and evaluates the four candidate
// feature sets against them: spread alone, BCI alone, both features
// standardized to equal footing, and both features raw with learned
// weights.
func Compare(records []domain.ScoredRecord) (Comparison, error) {
	if len(records) == 0 {
		return Comparison{}, fmt.Errorf("baseline: empty scored dataset")
	}

	n := len(records)
	spreads := make([]float64, n)
	bcis := make([]float64, n)
	meanErrors := make([]float64, n)
	for i, r := range records {
		spreads[i] = r.ModelStd
		bcis[i] = r.BCI
		meanErrors[i] = r.MeanError
	}

	threshold, err := stats.Quantile(meanErrors, highErrorQuantile)
	if err != nil {
		return Comparison{}, fmt.Errorf("baseline: error threshold: %w", err)
	}

	labels := make([]bool, n)
	highCount := 0
	for i, e := range meanErrors {
		if e > threshold {
			labels[i] = true
			highCount++
		}
	}
	if highCount == 0 || highCount == n {
		return Comparison{}, fmt.Errorf(
			"baseline: degenerate labels: %d of %d records above threshold %g", highCount, n, threshold)
	}

	featureSets := []struct {
		model string
		cols  [][]float64
	}{
		{ModelSpreadOnly, [][]float64{spreads}},
		{ModelBCIOnly, [][]float64{bcis}},
		{ModelEqual, [][]float64{stats.Standardize(spreads), stats.Standardize(bcis)}},
		{ModelLearned, [][]float64{spreads, bcis}},
	}

	results := make([]ClassifierResult, 0, len(featureSets))
	for _, fs := range featureSets {
		clf, err := fitLogistic(fs.cols, labels)
		if err != nil {
			return Comparison{}, fmt.Errorf("baseline: fit %q: %w", fs.model, err)
		}
		auc, err := AUC(clf.probabilities(fs.cols), labels)
		if err != nil {
			return Comparison{}, fmt.Errorf("baseline: AUC for %q: %w", fs.model, err)
		}
		results = append(results, ClassifierResult{
			Model:        fs.model,
			AUC:          auc,
			Coefficients: clf.weights,
			Intercept:    clf.intercept,
		})
	}

	return Comparison{
		Threshold:      threshold,
		HighErrorCount: highCount,
		Total:          n,
		Results:        results,
	}, nil
}
