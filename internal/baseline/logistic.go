package baseline

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"
)

// l2Penalty is the ridge strength on the feature weights. The
// intercept is never penalized. Matching the reference estimator's
// default keeps fitted coefficients comparable across toolchains, and
// the penalty keeps the objective strictly convex even on perfectly
// separable data.
const l2Penalty = 1.0

// logisticModel is a fitted binary logistic regression.
type logisticModel struct {
	weights   []float64
	intercept float64
}

// fitLogistic trains by penalized maximum likelihood: it minimizes the
// negative log-likelihood plus 0.5*l2Penalty*|w|^2 with L-BFGS from a
// zero start. cols holds one slice per feature, all of equal length.
func fitLogistic(cols [][]float64, labels []bool) (logisticModel, error) {
	if len(cols) == 0 {
		return logisticModel{}, fmt.Errorf("no features")
	}
	n := len(cols[0])
	if n != len(labels) {
		return logisticModel{}, fmt.Errorf("feature length %d does not match %d labels", n, len(labels))
	}
	k := len(cols)

	y := make([]float64, n)
	for i, high := range labels {
		if high {
			y[i] = 1
		}
	}

	// Parameter vector: k feature weights followed by the intercept.
	logit := func(params []float64, i int) float64 {
		z := params[k]
		for j := range k {
			z += params[j] * cols[j][i]
		}
		return z
	}

	problem := optimize.Problem{
		Func: func(params []float64) float64 {
			var nll float64
			for i := range n {
				z := logit(params, i)
				nll += log1pexp(z) - y[i]*z
			}
			var ridge float64
			for j := range k {
				ridge += params[j] * params[j]
			}
			return nll + 0.5*l2Penalty*ridge
		},
		Grad: func(grad, params []float64) {
			for j := range grad {
				grad[j] = 0
			}
			for i := range n {
				resid := sigmoid(logit(params, i)) - y[i]
				for j := range k {
					grad[j] += resid * cols[j][i]
				}
				grad[k] += resid
			}
			for j := range k {
				grad[j] += l2Penalty * params[j]
			}
		},
	}

	initial := make([]float64, k+1)
	result, err := optimize.Minimize(problem, initial, nil, &optimize.LBFGS{})
	if err != nil {
		return logisticModel{}, fmt.Errorf("minimize: %w", err)
	}
	if err := result.Status.Err(); err != nil {
		return logisticModel{}, fmt.Errorf("minimize status: %w", err)
	}

	return logisticModel{
		weights:   result.X[:k],
		intercept: result.X[k],
	}, nil
}

// probabilities returns the fitted probability of the positive class
// for every observation.
func (m logisticModel) probabilities(cols [][]float64) []float64 {
	n := len(cols[0])
	probs := make([]float64, n)
	for i := range n {
		z := m.intercept
		for j, w := range m.weights {
			z += w * cols[j][i]
		}
		probs[i] = sigmoid(z)
	}
	return probs
}

// log1pexp computes log(1+exp(z)) without overflow for large z.
func log1pexp(z float64) float64 {
	if z > 0 {
		return z + math.Log1p(math.Exp(-z))
	}
	return math.Log1p(math.Exp(z))
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
