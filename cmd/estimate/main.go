// Command estimate computes per-country lead times and the warning-region
// polygon for one storm forecast.
//
// Usage:
//
//	estimate \
//	  -countries countries.geojson \
//	  -forecast forecast.json \
//	  -probabilities probabilities.json \
//	  -metadata-out metadata.json \
//	  -region-out region.geojson
//
// The forecast file holds the ensemble tracks and the affected countries
// reported by the hazard-intensity engine; the probabilities file holds the
// per-location probability-of-impact values from the impact engine. When
// HTTP_ADDR is set, health and metrics endpoints are served for the
// duration of the run.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/paulmach/orb"

	"github.com/ThomasRoosli/Weather4UN-global-impact-estimates/internal/adapter/httpserver"
	"github.com/ThomasRoosli/Weather4UN-global-impact-estimates/internal/config"
	"github.com/ThomasRoosli/Weather4UN-global-impact-estimates/internal/gazetteer"
	"github.com/ThomasRoosli/Weather4UN-global-impact-estimates/internal/grid"
	"github.com/ThomasRoosli/Weather4UN-global-impact-estimates/internal/leadtime"
	"github.com/ThomasRoosli/Weather4UN-global-impact-estimates/internal/observability"
	"github.com/ThomasRoosli/Weather4UN-global-impact-estimates/internal/track"
	"github.com/ThomasRoosli/Weather4UN-global-impact-estimates/internal/warnregion"
)

// forecastFile is the on-disk forecast input: the storm name, one entry per
// ensemble member, and the hazard engine's affected countries with the
// indices of the tracks contributing to each.
type forecastFile struct {
	EventName string `json:"event_name"`
	Tracks    []struct {
		Latitudes  []float64   `json:"latitudes"`
		Longitudes []float64   `json:"longitudes"`
		Times      []time.Time `json:"times"`
		Frequency  float64     `json:"frequency"`
	} `json:"tracks"`
	AffectedCountries map[string][]int `json:"affected_countries"`
}

// probabilityFile is the on-disk probability-of-impact input.
type probabilityFile struct {
	Latitudes     []float64 `json:"latitudes"`
	Longitudes    []float64 `json:"longitudes"`
	Probabilities []float64 `json:"probabilities"`
}

// affectedCountries adapts the forecast file to the estimator's hazard
// field collaborator.
type affectedCountries map[int][]int

func (a affectedCountries) AffectedCountries() map[int][]int { return a }

// readiness flips once the first estimation has finished.
type readiness struct{ done atomic.Bool }

func (r *readiness) CheckReadiness(_ context.Context) error {
	if !r.done.Load() {
		return errors.New("estimation has not completed yet")
	}
	return nil
}

func main() {
	countriesPath := flag.String("countries", "", "GeoJSON file with country polygons (ISO_N3/ISO_A2/ISO_A3/NAME properties)")
	forecastPath := flag.String("forecast", "", "JSON file with ensemble tracks and affected countries")
	probabilitiesPath := flag.String("probabilities", "", "JSON file with probability-of-impact points")
	metadataOut := flag.String("metadata-out", "metadata.json", "output file for hazard metadata")
	regionOut := flag.String("region-out", "region.geojson", "output file for the warning-region polygons")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ready := &readiness{}
	var srv *httpserver.Server
	if cfg.HTTPAddr != "" {
		srv = httpserver.NewServer(cfg.HTTPAddr, ready, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
	}

	err = run(ctx, cfg, logger, metrics, *countriesPath, *forecastPath, *probabilitiesPath, *metadataOut, *regionOut)
	ready.done.Store(true)

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
			logger.Error("http server shutdown error", "error", shutdownErr)
		}
	}

	if err != nil {
		logger.Error("estimation failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics,
	countriesPath, forecastPath, probabilitiesPath, metadataOut, regionOut string) error {
	if countriesPath == "" || forecastPath == "" || probabilitiesPath == "" {
		return errors.New("-countries, -forecast and -probabilities are required")
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	countryData, err := os.ReadFile(countriesPath)
	if err != nil {
		return fmt.Errorf("read countries: %w", err)
	}
	atlas, err := gazetteer.FromGeoJSON(countryData)
	if err != nil {
		return err
	}

	eventName, tracks, affected, err := readForecast(forecastPath)
	if err != nil {
		return err
	}
	points, err := readProbabilities(probabilitiesPath)
	if err != nil {
		return err
	}

	estimator := leadtime.NewEstimator(atlas, leadtime.Settings{
		GridResolution:   cfg.GridResolution,
		LandfallRadiusKm: cfg.LandfallRadiusKm,
	}, logger, metrics)

	metadata, err := estimator.Estimate(eventName, tracks, affected)
	if err != nil {
		return err
	}
	if err := writeMetadata(metadataOut, metadata, atlas); err != nil {
		return err
	}
	logger.Info("hazard metadata written", "file", metadataOut, "countries", len(metadata.PerCountry))

	pipeline := warnregion.NewPipeline(warnregion.ThresholdSmoother{}, warnregion.Settings{
		ProbabilityThreshold:  cfg.ProbabilityThreshold,
		DefaultGridResolution: cfg.DefaultGridResolution,
		MinimumGridSize:       cfg.MinimumGridSize,
		Erosion:               cfg.WarnErosion,
		Dilation:              cfg.WarnDilation,
		MedianFiltering:       cfg.WarnMedianFiltering,
		GraduallyDecreased:    cfg.WarnGraduallyDecreased,
		SmallRegionsThreshold: cfg.WarnSmallRegionsThreshold,
	}, logger, metrics)

	region, err := pipeline.CreateWarningRegion(points)
	if err != nil {
		return err
	}
	if err := writeRegion(regionOut, region); err != nil {
		return err
	}
	logger.Info("warning region written", "file", regionOut, "polygons", len(region))
	return nil
}

func readForecast(path string) (string, []track.Track, affectedCountries, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, nil, fmt.Errorf("read forecast: %w", err)
	}
	var file forecastFile
	if err := json.Unmarshal(data, &file); err != nil {
		return "", nil, nil, fmt.Errorf("parse forecast: %w", err)
	}

	tracks := make([]track.Track, 0, len(file.Tracks))
	for i, t := range file.Tracks {
		frequency := t.Frequency
		if frequency == 0 {
			frequency = 1
		}
		built, err := track.New(t.Latitudes, t.Longitudes, t.Times, frequency)
		if err != nil {
			return "", nil, nil, fmt.Errorf("forecast track %d: %w", i, err)
		}
		tracks = append(tracks, built)
	}

	affected := make(affectedCountries, len(file.AffectedCountries))
	for key, indexes := range file.AffectedCountries {
		code, err := strconv.Atoi(key)
		if err != nil {
			return "", nil, nil, fmt.Errorf("forecast affected country %q: %w", key, err)
		}
		affected[code] = indexes
	}
	return file.EventName, tracks, affected, nil
}

func readProbabilities(path string) (grid.ProbabilityPoints, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return grid.ProbabilityPoints{}, fmt.Errorf("read probabilities: %w", err)
	}
	var file probabilityFile
	if err := json.Unmarshal(data, &file); err != nil {
		return grid.ProbabilityPoints{}, fmt.Errorf("parse probabilities: %w", err)
	}
	return grid.NewProbabilityPoints(file.Latitudes, file.Longitudes, file.Probabilities)
}

func writeMetadata(path string, metadata leadtime.HazardMetadata, countries gazetteer.Gazetteer) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create metadata file: %w", err)
	}
	defer f.Close()
	return metadata.WriteJSON(f, countries)
}

func writeRegion(path string, region orb.MultiPolygon) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create region file: %w", err)
	}
	defer f.Close()
	return warnregion.WriteGeoJSON(f, region)
}
