// Package config loads service settings from environment variables with
// defaults matching the operational tropical-cyclone setup.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	LogLevel  string
	LogFormat string
	HTTPAddr  string

	// Assumed resolution (degrees) of the hazard centroids; tracks are
	// densified to this spacing so no country crossing is missed.
	GridResolution float64
	// Radius (km) around a track point considered to be a landfall.
	LandfallRadiusKm float64

	// Probability threshold for "potentially affected".
	ProbabilityThreshold float64
	// Resolution (arc-ms) assumed for a grid axis with a single sample.
	DefaultGridResolution int64
	// Minimum grid dimension before smoothing.
	MinimumGridSize int

	// Morphological smoothing parameters.
	WarnErosion               int
	WarnDilation              int
	WarnMedianFiltering       int
	WarnGraduallyDecreased    bool
	WarnSmallRegionsThreshold int
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	cfg := &Config{
		LogLevel:  envOrDefault("LOG_LEVEL", "info"),
		LogFormat: envOrDefault("LOG_FORMAT", "json"),
		HTTPAddr:  os.Getenv("HTTP_ADDR"),
	}

	var err error
	if cfg.GridResolution, err = parseFloat("GRID_RESOLUTION", 1.0/24); err != nil {
		return nil, err
	}
	if cfg.LandfallRadiusKm, err = parseFloat("LANDFALL_RADIUS_KM", 50); err != nil {
		return nil, err
	}
	if cfg.ProbabilityThreshold, err = parseFloat("PROBABILITY_THRESHOLD", 0.05); err != nil {
		return nil, err
	}
	defaultResolution, err := parseInt("DEFAULT_GRID_RESOLUTION", 150_000)
	if err != nil {
		return nil, err
	}
	cfg.DefaultGridResolution = int64(defaultResolution)
	if cfg.MinimumGridSize, err = parseInt("MINIMUM_GRID_SIZE", 10); err != nil {
		return nil, err
	}
	if cfg.WarnErosion, err = parseInt("WARN_EROSION", 0); err != nil {
		return nil, err
	}
	if cfg.WarnDilation, err = parseInt("WARN_DILATION", 4); err != nil {
		return nil, err
	}
	if cfg.WarnMedianFiltering, err = parseInt("WARN_MEDIAN_FILTERING", 4); err != nil {
		return nil, err
	}
	if cfg.WarnSmallRegionsThreshold, err = parseInt("WARN_SMALL_REGIONS_THRESHOLD", 50); err != nil {
		return nil, err
	}
	cfg.WarnGraduallyDecreased = envOrDefault("WARN_GRADUALLY_DECREASED", "true") == "true"

	if cfg.GridResolution <= 0 {
		return nil, fmt.Errorf("GRID_RESOLUTION must be positive, got %v", cfg.GridResolution)
	}
	if cfg.LandfallRadiusKm < 0 {
		return nil, fmt.Errorf("LANDFALL_RADIUS_KM must not be negative, got %v", cfg.LandfallRadiusKm)
	}
	if cfg.ProbabilityThreshold < 0 || cfg.ProbabilityThreshold > 1 {
		return nil, fmt.Errorf("PROBABILITY_THRESHOLD must be in [0, 1], got %v", cfg.ProbabilityThreshold)
	}
	if cfg.DefaultGridResolution <= 0 {
		return nil, fmt.Errorf("DEFAULT_GRID_RESOLUTION must be positive, got %v", cfg.DefaultGridResolution)
	}
	if cfg.MinimumGridSize <= 0 {
		return nil, fmt.Errorf("MINIMUM_GRID_SIZE must be positive, got %v", cfg.MinimumGridSize)
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseFloat(key string, fallback float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return v, nil
}

func parseInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return v, nil
}
