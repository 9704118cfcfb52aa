package domain

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"
)

const (
	// componentFloor is the lower clip for both phi and rho. Keeping the
	// components off zero keeps the geometric mean from collapsing on a
	// single bad component.
	componentFloor = 0.3

	// nearZeroBias is the mean-bias magnitude below which the ensemble is
	// treated as unbiased and the coefficient of variation is undefined.
	nearZeroBias = 0.01

	// nearZeroError is the mean-error magnitude below which any spread is
	// acceptable: a forecast this close to the observation gets full
	// spread-reliability credit.
	nearZeroError = 0.1

	// neutralConsistency is the magnitude-consistency fallback for a
	// near-unbiased ensemble, a deliberately middling value rather than a
	// reward or a penalty.
	neutralConsistency = 0.8
)

// ErrNoMembers reports a scoring call with an empty member set.
var ErrNoMembers = errors.New("no ensemble members")

// Score holds the components of the Bias-Coherence Index for one
// forecast instance. All three values lie in [0.3, 1.0].
type Score struct {
	Phi float64 // bias-coherence component
	Rho float64 // spread-reliability component
	BCI float64 // geometric mean of Phi and Rho
}

// ScoreEnsemble scores a member set against its verifying observation,
// deriving spread and mean error from the members themselves: spread is
// the population standard deviation, error the absolute distance of the
// ensemble mean from the observation.
func ScoreEnsemble(members []float64, observation float64) (Score, error) {
	if len(members) == 0 {
		return Score{}, ErrNoMembers
	}
	spread := stat.PopStdDev(members, nil)
	meanError := math.Abs(stat.Mean(members, nil) - observation)
	return ScoreEnsembleWithAggregates(members, observation, spread, meanError)
}

// ScoreEnsembleWithAggregates scores a member set using externally
// supplied spread and mean-error aggregates. The pipeline uses this
// path so the scores stay consistent with the aggregates already in the
// matched dataset.
func ScoreEnsembleWithAggregates(members []float64, observation, spread, meanError float64) (Score, error) {
	if len(members) == 0 {
		return Score{}, ErrNoMembers
	}

	phi := biasCoherence(members, observation)
	rho := spreadReliability(spread, meanError)
	return Score{
		Phi: phi,
		Rho: rho,
		BCI: math.Sqrt(phi * rho),
	}, nil
}

// biasCoherence measures how consistently the ensemble errs to one side
// of the observation. It averages two signals: directional agreement,
// the share of members on the majority side of the observation (members
// exactly on the observation count toward neither side), and magnitude
// consistency, 1/(1+cv) of the member biases. A near-unbiased ensemble
// has no meaningful cv and falls back to neutralConsistency.
func biasCoherence(members []float64, observation float64) float64 {
	biases := make([]float64, len(members))
	var nPos, nNeg int
	for i, m := range members {
		b := m - observation
		biases[i] = b
		switch {
		case b > 0:
			nPos++
		case b < 0:
			nNeg++
		}
	}

	agreement := float64(max(nPos, nNeg)) / float64(len(members))

	consistency := neutralConsistency
	if biasMean := math.Abs(stat.Mean(biases, nil)); biasMean > nearZeroBias {
		cv := stat.PopStdDev(biases, nil) / biasMean
		consistency = 1 / (1 + cv)
	}

	return clip(0.5*agreement+0.5*consistency, componentFloor, 1)
}

// spreadReliability rewards ensembles whose spread is commensurate with
// their realized error. Underdispersion (spread below error) scales the
// component down; overdispersion is capped at full credit because a
// wide ensemble that still contains the truth is not penalized.
func spreadReliability(spread, meanError float64) float64 {
	ratio := 1.0
	if meanError > nearZeroError {
		ratio = math.Min(spread/meanError, 1)
	}
	return clip(ratio, componentFloor, 1)
}

func clip(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
