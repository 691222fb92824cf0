package warnregion

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/paulmach/orb"

	"github.com/ThomasRoosli/Weather4UN-global-impact-estimates/internal/grid"
	"github.com/ThomasRoosli/Weather4UN-global-impact-estimates/internal/observability"
)

// Settings carries the warning-region parameters.
type Settings struct {
	// ProbabilityThreshold is the minimum probability of impact for a cell
	// to be considered part of the warning region.
	ProbabilityThreshold float64
	// DefaultGridResolution (arc-ms) is used when a grid axis has a single
	// sample and its spacing cannot be inferred.
	DefaultGridResolution int64
	// MinimumGridSize is the smallest allowed grid dimension before
	// smoothing; smaller grids get a zero border.
	MinimumGridSize int

	// Morphological smoothing parameters, passed to the collaborator
	// exactly as configured.
	Erosion               int
	Dilation              int
	MedianFiltering       int
	GraduallyDecreased    bool
	SmallRegionsThreshold int
}

// Pipeline derives the warning-region geometry from probability points:
// rasterize, pad to the minimum size, smooth (external collaborator),
// extract polygons.
type Pipeline struct {
	smoother Smoother
	settings Settings
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewPipeline wires a warning-region pipeline.
func NewPipeline(smoother Smoother, settings Settings, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		smoother: smoother,
		settings: settings,
		logger:   logger,
		metrics:  metrics,
	}
}

// CreateWarningRegion computes the warning-region polygons for the given
// probability points. An empty result is a valid outcome meaning "no
// warning region", produced when no probability exceeds zero or when
// smoothing removes every cell.
func (p *Pipeline) CreateWarningRegion(points grid.ProbabilityPoints) (orb.MultiPolygon, error) {
	if !points.HasPositive() {
		p.logger.Info("no point has a probability greater than 0", "points", points.Len())
		p.metrics.EmptyWarningRegions.Inc()
		return nil, nil
	}

	probabilityGrid, err := grid.FromProbabilityPoints(points, p.settings.DefaultGridResolution)
	if err != nil {
		return nil, err
	}
	probabilityGrid = grid.EnsureMinimumSize(probabilityGrid, p.settings.MinimumGridSize)
	p.metrics.GridCells.Observe(float64(probabilityGrid.Rows() * probabilityGrid.Cols()))

	warnGrid, err := p.smooth(probabilityGrid)
	if err != nil {
		return nil, err
	}

	if warnGrid.CountNonZero() == 0 {
		p.logger.Info("grid only contains values with 0 probability",
			"rows", warnGrid.Rows(), "cols", warnGrid.Cols())
		p.metrics.EmptyWarningRegions.Inc()
		return nil, nil
	}

	region, err := Extract(warnGrid)
	if err != nil {
		p.metrics.ExtractionErrors.Inc()
		return nil, err
	}
	p.metrics.WarningPolygons.Observe(float64(len(region)))
	if len(region) == 0 {
		p.metrics.EmptyWarningRegions.Inc()
	}
	return region, nil
}

// smooth invokes the external smoothing collaborator with the configured
// warn parameters and validates its contract: same shape, only 0/1 values.
func (p *Pipeline) smooth(g grid.Grid) (grid.Grid, error) {
	params := SmoothParams{
		Levels: [2]float64{0, p.settings.ProbabilityThreshold},
		Operations: []MorphOp{
			{Kind: Erosion, Size: p.settings.Erosion},
			{Kind: Dilation, Size: p.settings.Dilation},
			{Kind: MedianFilter, Size: p.settings.MedianFiltering},
		},
		GradualDecrease:      p.settings.GraduallyDecreased,
		SmallRegionThreshold: p.settings.SmallRegionsThreshold,
	}

	start := time.Now()
	values, err := p.smoother.Smooth(g.Values(), g.Coordinates(), params)
	if err != nil {
		return grid.Grid{}, fmt.Errorf("warnregion: smooth grid: %w", err)
	}
	p.metrics.SmoothingDuration.Observe(time.Since(start).Seconds())

	for r, row := range values {
		for c, v := range row {
			if v != 0 && v != 1 {
				return grid.Grid{}, fmt.Errorf("warnregion: smoothed grid is not binary at (%d, %d): %v", r, c, v)
			}
		}
	}

	warnGrid, err := g.WithValues(values)
	if err != nil {
		return grid.Grid{}, fmt.Errorf("warnregion: smoothed grid shape: %w", err)
	}
	return warnGrid, nil
}
