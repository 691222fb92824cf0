package warnregion

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThomasRoosli/Weather4UN-global-impact-estimates/internal/geo"
	"github.com/ThomasRoosli/Weather4UN-global-impact-estimates/internal/grid"
	"github.com/ThomasRoosli/Weather4UN-global-impact-estimates/internal/observability"
)

// stubSmoother records the call and returns canned values.
type stubSmoother struct {
	params SmoothParams
	values [][]float64
	err    error
	called bool
}

func (s *stubSmoother) Smooth(values [][]float64, _ []geo.ArcPoint, params SmoothParams) ([][]float64, error) {
	s.called = true
	s.params = params
	if s.err != nil {
		return nil, s.err
	}
	if s.values != nil {
		return s.values, nil
	}
	return ThresholdSmoother{}.Smooth(values, nil, params)
}

func testSettings() Settings {
	return Settings{
		ProbabilityThreshold:  0.05,
		DefaultGridResolution: 150_000,
		MinimumGridSize:       10,
		Erosion:               0,
		Dilation:              4,
		MedianFiltering:       4,
		GraduallyDecreased:    true,
		SmallRegionsThreshold: 50,
	}
}

func newTestPipeline(smoother Smoother, settings Settings) (*Pipeline, *observability.Metrics) {
	metrics := observability.NewMetricsForTesting()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewPipeline(smoother, settings, logger, metrics), metrics
}

func mustPoints(t *testing.T, latitudes, longitudes, probabilities []float64) grid.ProbabilityPoints {
	t.Helper()
	points, err := grid.NewProbabilityPoints(latitudes, longitudes, probabilities)
	require.NoError(t, err)
	return points
}

func TestCreateWarningRegion(t *testing.T) {
	t.Run("no positive probability yields no region", func(t *testing.T) {
		smoother := &stubSmoother{}
		pipeline, metrics := newTestPipeline(smoother, testSettings())
		points := mustPoints(t, []float64{10, 11}, []float64{-60, -61}, []float64{0, 0})

		region, err := pipeline.CreateWarningRegion(points)

		require.NoError(t, err)
		assert.Empty(t, region)
		assert.False(t, smoother.called)
		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.EmptyWarningRegions))
	})

	t.Run("diagonal probability cells produce a region covering them", func(t *testing.T) {
		pipeline, _ := newTestPipeline(ThresholdSmoother{}, testSettings())
		points := mustPoints(t,
			[]float64{10, 10 + 1.0/24},
			[]float64{-60, -60 + 1.0/24},
			[]float64{0.8, 0.8})

		region, err := pipeline.CreateWarningRegion(points)

		require.NoError(t, err)
		require.NotEmpty(t, region)
		assert.True(t, planar.MultiPolygonContains(region, orb.Point{-60, 10}))
		assert.True(t, planar.MultiPolygonContains(region, orb.Point{-60 + 1.0/24, 10 + 1.0/24}))
	})

	t.Run("probabilities below the threshold yield no region", func(t *testing.T) {
		pipeline, metrics := newTestPipeline(ThresholdSmoother{}, testSettings())
		points := mustPoints(t, []float64{10, 11}, []float64{-60, -61}, []float64{0.01, 0.03})

		region, err := pipeline.CreateWarningRegion(points)

		require.NoError(t, err)
		assert.Empty(t, region)
		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.EmptyWarningRegions))
	})

	t.Run("smoothing parameters are passed through", func(t *testing.T) {
		smoother := &stubSmoother{}
		pipeline, _ := newTestPipeline(smoother, testSettings())
		points := mustPoints(t, []float64{10}, []float64{-60}, []float64{0.8})

		_, err := pipeline.CreateWarningRegion(points)

		require.NoError(t, err)
		require.True(t, smoother.called)
		assert.Equal(t, [2]float64{0, 0.05}, smoother.params.Levels)
		assert.Equal(t, []MorphOp{
			{Kind: Erosion, Size: 0},
			{Kind: Dilation, Size: 4},
			{Kind: MedianFilter, Size: 4},
		}, smoother.params.Operations)
		assert.True(t, smoother.params.GradualDecrease)
		assert.Equal(t, 50, smoother.params.SmallRegionThreshold)
	})

	t.Run("smoother error is wrapped", func(t *testing.T) {
		smoother := &stubSmoother{err: errors.New("collaborator down")}
		pipeline, _ := newTestPipeline(smoother, testSettings())
		points := mustPoints(t, []float64{10}, []float64{-60}, []float64{0.8})

		_, err := pipeline.CreateWarningRegion(points)

		require.ErrorContains(t, err, "warnregion: smooth grid: collaborator down")
	})

	t.Run("non-binary smoother output is rejected", func(t *testing.T) {
		values := make([][]float64, 10)
		for r := range values {
			values[r] = make([]float64, 10)
		}
		values[4][4] = 0.7
		smoother := &stubSmoother{values: values}
		pipeline, _ := newTestPipeline(smoother, testSettings())
		points := mustPoints(t, []float64{10}, []float64{-60}, []float64{0.8})

		_, err := pipeline.CreateWarningRegion(points)

		require.ErrorContains(t, err, "warnregion: smoothed grid is not binary at (4, 4): 0.7")
	})

	t.Run("smoother output with wrong shape is rejected", func(t *testing.T) {
		smoother := &stubSmoother{values: [][]float64{{1}}}
		pipeline, _ := newTestPipeline(smoother, testSettings())
		points := mustPoints(t, []float64{10}, []float64{-60}, []float64{0.8})

		_, err := pipeline.CreateWarningRegion(points)

		require.ErrorContains(t, err, "warnregion: smoothed grid shape")
	})
}

func TestThresholdSmoother(t *testing.T) {
	params := SmoothParams{Levels: [2]float64{0, 0.05}}

	values, err := ThresholdSmoother{}.Smooth([][]float64{
		{0, 0.04, 0.05},
		{0.8, 0.049, 1},
	}, nil, params)

	require.NoError(t, err)
	assert.Equal(t, [][]float64{
		{0, 0, 1},
		{1, 0, 1},
	}, values)
}
