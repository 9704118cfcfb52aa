package baseline

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

// AUC computes the area under the ROC curve of scores against binary
// labels, where true marks the positive class. Tied scores collapse
// into a single cutoff, so ties integrate as midranks. Both classes
// must be present; a single-class label set has no ranking to measure.
func AUC(scores []float64, labels []bool) (float64, error) {
	if len(scores) != len(labels) {
		return 0, fmt.Errorf("auc: %d scores against %d labels", len(scores), len(labels))
	}
	positives := 0
	for _, l := range labels {
		if l {
			positives++
		}
	}
	if positives == 0 || positives == len(labels) {
		return 0, fmt.Errorf("auc: need both classes, got %d positives of %d", positives, len(labels))
	}

	y := slices.Clone(scores)
	classes := slices.Clone(labels)
	stat.SortWeightedLabeled(y, classes, nil)

	tpr, fpr, _ := stat.ROC(nil, y, classes, nil)

	// The curve arrives end-to-end in one direction; orient it by
	// ascending false-positive rate before integrating.
	if len(fpr) > 1 && fpr[0] > fpr[len(fpr)-1] {
		slices.Reverse(fpr)
		slices.Reverse(tpr)
	}
	return integrate.Trapezoidal(fpr, tpr), nil
}
