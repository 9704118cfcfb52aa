// Package stats provides the small set of statistics primitives the
// scoring and validation engines share: summary moments, Pearson
// correlation with a two-sided significance test, least-squares
// residualization, quantiles, and z-score standardization.
//
// Everything here is a pure function over float64 slices. Inputs are
// never mutated; functions that need sorted data sort a copy.
package stats

import (
	"fmt"
	"math"
	"slices"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// CorrelationResult holds a Pearson correlation coefficient together
// with its two-sided p-value and the sample size it was computed from.
type CorrelationResult struct {
	R float64
	P float64
	N int
}

// Mean returns the arithmetic mean of xs.
func Mean(xs []float64) (float64, error) {
	if len(xs) == 0 {
		return 0, fmt.Errorf("mean of empty sample")
	}
	return stat.Mean(xs, nil), nil
}

// StdDev returns the sample (n-1) standard deviation of xs. A single
// observation has no dispersion, so n < 2 yields 0.
func StdDev(xs []float64) (float64, error) {
	if len(xs) == 0 {
		return 0, fmt.Errorf("standard deviation of empty sample")
	}
	if len(xs) < 2 {
		return 0, nil
	}
	return stat.StdDev(xs, nil), nil
}

// PopStdDev returns the population (n) standard deviation of xs.
func PopStdDev(xs []float64) (float64, error) {
	if len(xs) == 0 {
		return 0, fmt.Errorf("standard deviation of empty sample")
	}
	return stat.PopStdDev(xs, nil), nil
}

// Pearson computes the Pearson correlation between x and y and the
// two-sided p-value of the null hypothesis r == 0, from the Student's t
// distribution with n-2 degrees of freedom.
//
// If either input has zero variance the coefficient is undefined; the
// result degrades to R=0, P=1 rather than returning NaN. A perfect
// |r| == 1 reports P=0.
func Pearson(x, y []float64) (CorrelationResult, error) {
	if len(x) != len(y) {
		return CorrelationResult{}, fmt.Errorf("correlate: length mismatch %d vs %d", len(x), len(y))
	}
	n := len(x)
	if n < 3 {
		return CorrelationResult{}, fmt.Errorf("correlate: need at least 3 samples, got %d", n)
	}
	if stat.PopVariance(x, nil) == 0 || stat.PopVariance(y, nil) == 0 {
		return CorrelationResult{R: 0, P: 1, N: n}, nil
	}

	r := stat.Correlation(x, y, nil)
	// Guard against r drifting just past +/-1 in floating point.
	r = math.Max(-1, math.Min(1, r))
	if math.Abs(r) == 1 {
		return CorrelationResult{R: r, P: 0, N: n}, nil
	}

	dof := float64(n - 2)
	t := r * math.Sqrt(dof/(1-r*r))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: dof}
	p := 2 * dist.CDF(-math.Abs(t))
	return CorrelationResult{R: r, P: p, N: n}, nil
}

// Residualize removes the first-order least-squares fit of x on control
// and returns the residuals. A constant control carries no information,
// so the fallback is simply centering x on its mean.
func Residualize(x, control []float64) ([]float64, error) {
	if len(x) != len(control) {
		return nil, fmt.Errorf("residualize: length mismatch %d vs %d", len(x), len(control))
	}
	if len(x) < 2 {
		return nil, fmt.Errorf("residualize: need at least 2 samples, got %d", len(x))
	}

	resid := make([]float64, len(x))
	if stat.PopVariance(control, nil) == 0 {
		m := stat.Mean(x, nil)
		for i, v := range x {
			resid[i] = v - m
		}
		return resid, nil
	}

	alpha, beta := stat.LinearRegression(control, x, nil, false)
	for i, v := range x {
		resid[i] = v - (alpha + beta*control[i])
	}
	return resid, nil
}

// Quantile returns the p-th quantile of xs using linear interpolation
// between order statistics: the value at fractional rank p*(n-1) of the
// sorted sample.
func Quantile(xs []float64, p float64) (float64, error) {
	if len(xs) == 0 {
		return 0, fmt.Errorf("quantile of empty sample")
	}
	if p < 0 || p > 1 {
		return 0, fmt.Errorf("quantile fraction %v outside [0, 1]", p)
	}

	sorted := slices.Clone(xs)
	sort.Float64s(sorted)

	h := p * float64(len(sorted)-1)
	lo := int(h)
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1], nil
	}
	frac := h - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo]), nil
}

// Standardize returns xs as z-scores against its own mean and
// population standard deviation. A zero-variance input standardizes to
// all zeros.
func Standardize(xs []float64) []float64 {
	out := make([]float64, len(xs))
	if len(xs) == 0 {
		return out
	}
	m := stat.Mean(xs, nil)
	s := stat.PopStdDev(xs, nil)
	if s == 0 {
		return out
	}
	for i, v := range xs {
		out[i] = (v - m) / s
	}
	return out
}
