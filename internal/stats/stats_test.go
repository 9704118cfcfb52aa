package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoments(t *testing.T) {
	xs := []float64{2, 4, 4, 4, 5, 5, 7, 9}

	t.Run("mean", func(t *testing.T) {
		m, err := Mean(xs)
		require.NoError(t, err)
		assert.Equal(t, 5.0, m)
	})

	t.Run("population std", func(t *testing.T) {
		s, err := PopStdDev(xs)
		require.NoError(t, err)
		assert.InDelta(t, 2.0, s, 1e-12)
	})

	t.Run("sample std exceeds population std", func(t *testing.T) {
		s, err := StdDev(xs)
		require.NoError(t, err)
		assert.InDelta(t, 2.13809, s, 1e-5)
	})

	t.Run("single sample has zero sample std", func(t *testing.T) {
		s, err := StdDev([]float64{3.5})
		require.NoError(t, err)
		assert.Equal(t, 0.0, s)
	})

	t.Run("empty input errors", func(t *testing.T) {
		_, err := Mean(nil)
		assert.Error(t, err)
		_, err = StdDev(nil)
		assert.Error(t, err)
		_, err = PopStdDev(nil)
		assert.Error(t, err)
	})
}

func TestPearson(t *testing.T) {
	t.Run("known coefficient and p-value", func(t *testing.T) {
		x := []float64{1, 2, 3, 4, 5}
		y := []float64{2, 1, 4, 3, 7}

		res, err := Pearson(x, y)
		require.NoError(t, err)
		assert.InDelta(t, 0.8241634, res.R, 1e-6)
		assert.InDelta(t, 0.0863, res.P, 1e-3)
		assert.Equal(t, 5, res.N)
	})

	t.Run("perfect correlation is certain", func(t *testing.T) {
		res, err := Pearson([]float64{1, 2, 3}, []float64{2, 4, 6})
		require.NoError(t, err)
		assert.InDelta(t, 1.0, res.R, 1e-12)
		assert.Less(t, res.P, 1e-7)
	})

	t.Run("perfect anticorrelation", func(t *testing.T) {
		res, err := Pearson([]float64{1, 2, 3}, []float64{6, 4, 2})
		require.NoError(t, err)
		assert.InDelta(t, -1.0, res.R, 1e-12)
		assert.Less(t, res.P, 1e-7)
	})

	t.Run("zero variance degrades to r=0 p=1", func(t *testing.T) {
		res, err := Pearson([]float64{1, 1, 1, 1}, []float64{1, 2, 3, 4})
		require.NoError(t, err)
		assert.Equal(t, 0.0, res.R)
		assert.Equal(t, 1.0, res.P)
	})

	t.Run("too few samples", func(t *testing.T) {
		_, err := Pearson([]float64{1, 2}, []float64{3, 4})
		assert.ErrorContains(t, err, "at least 3 samples")
	})

	t.Run("length mismatch", func(t *testing.T) {
		_, err := Pearson([]float64{1, 2, 3}, []float64{1, 2})
		assert.ErrorContains(t, err, "length mismatch")
	})
}

func TestResidualize(t *testing.T) {
	t.Run("removes a perfect linear fit", func(t *testing.T) {
		x := []float64{3, 5, 7, 9}
		control := []float64{1, 2, 3, 4}

		resid, err := Residualize(x, control)
		require.NoError(t, err)
		for _, r := range resid {
			assert.InDelta(t, 0.0, r, 1e-12)
		}
	})

	t.Run("constant control centers on the mean", func(t *testing.T) {
		resid, err := Residualize([]float64{1, 2, 3, 6}, []float64{5, 5, 5, 5})
		require.NoError(t, err)
		assert.InDeltaSlice(t, []float64{-2, -1, 0, 3}, resid, 1e-12)
	})

	t.Run("length mismatch", func(t *testing.T) {
		_, err := Residualize([]float64{1, 2, 3}, []float64{1, 2})
		assert.ErrorContains(t, err, "length mismatch")
	})
}

func TestQuantile(t *testing.T) {
	t.Run("interpolates between order statistics", func(t *testing.T) {
		q, err := Quantile([]float64{1, 2, 3, 4}, 0.75)
		require.NoError(t, err)
		assert.InDelta(t, 3.25, q, 1e-12)
	})

	t.Run("does not require sorted input", func(t *testing.T) {
		xs := []float64{3, 1, 4, 2}
		q, err := Quantile(xs, 0.75)
		require.NoError(t, err)
		assert.InDelta(t, 3.25, q, 1e-12)
		assert.Equal(t, []float64{3, 1, 4, 2}, xs, "input must not be reordered")
	})

	t.Run("endpoints", func(t *testing.T) {
		q, err := Quantile([]float64{1, 2, 3, 4}, 0)
		require.NoError(t, err)
		assert.Equal(t, 1.0, q)

		q, err = Quantile([]float64{1, 2, 3, 4}, 1)
		require.NoError(t, err)
		assert.Equal(t, 4.0, q)
	})

	t.Run("median of even sample", func(t *testing.T) {
		q, err := Quantile([]float64{1, 2, 3, 4}, 0.5)
		require.NoError(t, err)
		assert.InDelta(t, 2.5, q, 1e-12)
	})

	t.Run("single element", func(t *testing.T) {
		q, err := Quantile([]float64{7}, 0.9)
		require.NoError(t, err)
		assert.Equal(t, 7.0, q)
	})

	t.Run("fraction out of range", func(t *testing.T) {
		_, err := Quantile([]float64{1, 2}, 1.5)
		assert.ErrorContains(t, err, "outside [0, 1]")
	})

	t.Run("empty sample", func(t *testing.T) {
		_, err := Quantile(nil, 0.5)
		assert.Error(t, err)
	})
}

func TestStandardize(t *testing.T) {
	t.Run("z-scores against population std", func(t *testing.T) {
		z := Standardize([]float64{1, 2, 3, 4})
		want := []float64{-1.3416407865, -0.4472135955, 0.4472135955, 1.3416407865}
		assert.InDeltaSlice(t, want, z, 1e-9)
	})

	t.Run("constant input standardizes to zeros", func(t *testing.T) {
		z := Standardize([]float64{5, 5, 5})
		assert.Equal(t, []float64{0, 0, 0}, z)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, Standardize(nil))
	})
}
