package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThomasRoosli/Weather4UN-global-impact-estimates/internal/geo"
)

func TestFromProbabilityPoints(t *testing.T) {
	t.Run("two diagonal points span a full rectangle", func(t *testing.T) {
		points, err := NewProbabilityPoints(
			[]float64{10, 10 + 1.0/24},
			[]float64{-60, -60 + 1.0/24},
			[]float64{0.8, 0.8})
		require.NoError(t, err)

		g, err := FromProbabilityPoints(points, 150_000)

		require.NoError(t, err)
		assert.Equal(t, 2, g.Rows())
		assert.Equal(t, 2, g.Cols())
		// The off-diagonal cells had no input point and stay zero.
		assert.Equal(t, [][]float64{{0.8, 0}, {0, 0.8}}, g.Values())
		assert.Equal(t, geo.ArcPoint{Lat: 150_000, Lon: 150_000}, g.Resolution())
		assert.Equal(t, geo.ArcPoint{Lat: 36_000_000, Lon: -216_000_000}, g.Start())
	})

	t.Run("unsorted input lands on the sorted lattice", func(t *testing.T) {
		points, err := NewProbabilityPoints(
			[]float64{2, 1, 2, 1},
			[]float64{5, 5, 4, 4},
			[]float64{0.4, 0.1, 0.3, 0.2})
		require.NoError(t, err)

		g, err := FromProbabilityPoints(points, 150_000)

		require.NoError(t, err)
		assert.Equal(t, [][]float64{{0.2, 0.1}, {0.3, 0.4}}, g.Values())
	})

	t.Run("single distinct value per axis uses the default resolution", func(t *testing.T) {
		points, err := NewProbabilityPoints([]float64{3}, []float64{3}, []float64{1})
		require.NoError(t, err)

		g, err := FromProbabilityPoints(points, 150_000)

		require.NoError(t, err)
		assert.Equal(t, geo.ArcPoint{Lat: 150_000, Lon: 150_000}, g.Resolution())
	})

	t.Run("no points", func(t *testing.T) {
		_, err := FromProbabilityPoints(ProbabilityPoints{}, 150_000)
		require.EqualError(t, err, "grid: cannot rasterize zero points")
	})

	t.Run("gapped latitude axis is rejected", func(t *testing.T) {
		points, err := NewProbabilityPoints(
			[]float64{0, 1, 5},
			[]float64{0, 0, 0},
			[]float64{0.5, 0.5, 0.5})
		require.NoError(t, err)

		_, err = FromProbabilityPoints(points, 150_000)

		require.ErrorContains(t, err, "latitude values are not evenly spaced")
	})

	t.Run("gapped longitude axis is rejected", func(t *testing.T) {
		points, err := NewProbabilityPoints(
			[]float64{0, 0, 0},
			[]float64{10, 10.5, 12},
			[]float64{0.5, 0.5, 0.5})
		require.NoError(t, err)

		_, err = FromProbabilityPoints(points, 150_000)

		require.ErrorContains(t, err, "longitude values are not evenly spaced")
	})
}

func TestEnsureMinimumSize(t *testing.T) {
	t.Run("small grid is padded to the minimum", func(t *testing.T) {
		g, err := New([][]float64{{0.8, 0}, {0, 0.8}},
			geo.ArcPoint{Lat: 0, Lon: 0},
			geo.ArcPoint{Lat: 150_000, Lon: 150_000})
		require.NoError(t, err)

		padded := EnsureMinimumSize(g, 10)

		assert.Equal(t, 10, padded.Rows())
		assert.Equal(t, 10, padded.Cols())
		assert.Equal(t, geo.ArcPoint{Lat: -4 * 150_000, Lon: -4 * 150_000}, padded.Start())
		assert.Equal(t, 2, padded.CountNonZero())
		assert.Equal(t, 0.8, padded.Values()[4][4])
		assert.Equal(t, 0.8, padded.Values()[5][5])
		assert.True(t, padded.HasZeroBorder())
	})

	t.Run("odd deficit rounds the border up", func(t *testing.T) {
		g, err := New([][]float64{{1, 1, 1}},
			geo.ArcPoint{Lat: 0, Lon: 0},
			geo.ArcPoint{Lat: 150_000, Lon: 150_000})
		require.NoError(t, err)

		padded := EnsureMinimumSize(g, 10)

		// Deficit 9, so 5 cells per side.
		assert.Equal(t, 11, padded.Rows())
		assert.Equal(t, 13, padded.Cols())
	})

	t.Run("large grid is unchanged", func(t *testing.T) {
		values := make([][]float64, 10)
		for r := range values {
			values[r] = make([]float64, 10)
		}
		g, err := New(values, geo.ArcPoint{}, geo.ArcPoint{Lat: 150_000, Lon: 150_000})
		require.NoError(t, err)

		padded := EnsureMinimumSize(g, 10)

		assert.Equal(t, g.Start(), padded.Start())
		assert.Equal(t, 10, padded.Rows())
	})
}
