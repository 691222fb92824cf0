package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// estimation pipeline.
type Metrics struct {
	EstimationsTotal   prometheus.Counter
	EstimationDuration prometheus.Histogram
	CountriesResolved  *prometheus.CounterVec // label: tier={landfall,band_fall,closest_point,init_time}

	// Warning-region pipeline metrics.
	GridCells           prometheus.Histogram
	WarningPolygons     prometheus.Histogram
	EmptyWarningRegions prometheus.Counter
	ExtractionErrors    prometheus.Counter
	SmoothingDuration   prometheus.Histogram
}

// NewMetrics creates and registers all estimation metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.EstimationsTotal,
		m.EstimationDuration,
		m.CountriesResolved,
		m.GridCells,
		m.WarningPolygons,
		m.EmptyWarningRegions,
		m.ExtractionErrors,
		m.SmoothingDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		EstimationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "w4un_impact",
			Name:      "estimations_total",
			Help:      "Total lead-time estimations performed.",
		}),
		EstimationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "w4un_impact",
			Name:      "estimation_duration_seconds",
			Help:      "Duration of a complete per-forecast lead-time estimation.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		CountriesResolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "w4un_impact",
			Name:      "countries_resolved_total",
			Help:      "Countries resolved to lead times, by resolution tier.",
		}, []string{"tier"}),
		GridCells: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "w4un_impact",
			Name:      "probability_grid_cells",
			Help:      "Cell count of rasterized probability grids.",
			Buckets:   []float64{100, 500, 1000, 5000, 10000, 50000, 100000},
		}),
		WarningPolygons: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "w4un_impact",
			Name:      "warning_region_polygons",
			Help:      "Number of polygons per extracted warning region.",
			Buckets:   []float64{0, 1, 2, 3, 5, 10, 20},
		}),
		EmptyWarningRegions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "w4un_impact",
			Name:      "empty_warning_regions_total",
			Help:      "Warning-region computations that produced an empty region.",
		}),
		ExtractionErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "w4un_impact",
			Name:      "extraction_errors_total",
			Help:      "Polygon extraction failures.",
		}),
		SmoothingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "w4un_impact",
			Name:      "smoothing_duration_seconds",
			Help:      "Duration of the external raster smoothing call.",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
	}
}
