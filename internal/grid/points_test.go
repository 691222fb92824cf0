package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProbabilityPoints(t *testing.T) {
	t.Run("valid points are converted to arc-milliseconds", func(t *testing.T) {
		points, err := NewProbabilityPoints(
			[]float64{10, 10.5},
			[]float64{-60, -60.5},
			[]float64{0.2, 0.8})

		require.NoError(t, err)
		assert.Equal(t, 2, points.Len())
		assert.Equal(t, []int64{36_000_000, 37_800_000}, points.Latitudes())
		assert.Equal(t, []int64{-216_000_000, -217_800_000}, points.Longitudes())
		assert.Equal(t, []float64{0.2, 0.8}, points.Probabilities())
	})

	t.Run("mismatched coordinate lengths", func(t *testing.T) {
		_, err := NewProbabilityPoints([]float64{1}, []float64{1, 2}, []float64{0.5})
		require.EqualError(t, err,
			"grid: number of latitude values does not match number of longitude values: 1 != 2")
	})

	t.Run("mismatched probability length", func(t *testing.T) {
		_, err := NewProbabilityPoints([]float64{1, 2}, []float64{1, 2}, []float64{0.5})
		require.EqualError(t, err,
			"grid: number of points does not match number of probability values: 2 != 1")
	})

	t.Run("probabilities outside the unit interval", func(t *testing.T) {
		_, err := NewProbabilityPoints(
			[]float64{1, 2, 3},
			[]float64{1, 2, 3},
			[]float64{0.5, 1.5, -0.1})

		require.ErrorContains(t, err, "2 / 3 points are associated with a probability outside [0, 1]")
	})

	t.Run("has positive", func(t *testing.T) {
		all, err := NewProbabilityPoints([]float64{1, 2}, []float64{1, 2}, []float64{0, 0.1})
		require.NoError(t, err)
		assert.True(t, all.HasPositive())

		none, err := NewProbabilityPoints([]float64{1, 2}, []float64{1, 2}, []float64{0, 0})
		require.NoError(t, err)
		assert.False(t, none.HasPositive())
	})
}
