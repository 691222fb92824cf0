// Package grid rasterizes scattered probability-of-impact points into a
// regular rectangular grid on the fixed-point arc-millisecond lattice.
// Coordinates are integers so lattice alignment and equality are exact.
package grid

import (
	"fmt"

	"github.com/ThomasRoosli/Weather4UN-global-impact-estimates/internal/geo"
)

// ProbabilityPoints are scattered locations associated with a probability
// of impact in [0, 1]. Coordinates are stored in arc-milliseconds.
type ProbabilityPoints struct {
	latitudes     []int64
	longitudes    []int64
	probabilities []float64
}

// NewProbabilityPoints validates and converts degree coordinates to the
// fixed-point lattice. A probability outside [0, 1] is a data error, not a
// silent clamp.
func NewProbabilityPoints(latitudes, longitudes, probabilities []float64) (ProbabilityPoints, error) {
	if len(latitudes) != len(longitudes) {
		return ProbabilityPoints{}, fmt.Errorf(
			"grid: number of latitude values does not match number of longitude values: %d != %d",
			len(latitudes), len(longitudes))
	}
	if len(latitudes) != len(probabilities) {
		return ProbabilityPoints{}, fmt.Errorf(
			"grid: number of points does not match number of probability values: %d != %d",
			len(latitudes), len(probabilities))
	}

	var outOfRange []geo.ArcPoint
	for i, p := range probabilities {
		if p < 0 || p > 1 {
			outOfRange = append(outOfRange, geo.ArcPoint{
				Lat: geo.ToArcMilliseconds(latitudes[i]),
				Lon: geo.ToArcMilliseconds(longitudes[i]),
			})
		}
	}
	if len(outOfRange) > 0 {
		return ProbabilityPoints{}, fmt.Errorf(
			"grid: %d / %d points are associated with a probability outside [0, 1]: %v",
			len(outOfRange), len(probabilities), outOfRange)
	}

	points := ProbabilityPoints{
		latitudes:     make([]int64, len(latitudes)),
		longitudes:    make([]int64, len(longitudes)),
		probabilities: probabilities,
	}
	for i := range latitudes {
		points.latitudes[i] = geo.ToArcMilliseconds(latitudes[i])
		points.longitudes[i] = geo.ToArcMilliseconds(longitudes[i])
	}
	return points, nil
}

// Len returns the number of points.
func (p ProbabilityPoints) Len() int { return len(p.probabilities) }

// Latitudes returns the latitude values in arc-milliseconds.
func (p ProbabilityPoints) Latitudes() []int64 { return p.latitudes }

// Longitudes returns the longitude values in arc-milliseconds.
func (p ProbabilityPoints) Longitudes() []int64 { return p.longitudes }

// Probabilities returns the probability values.
func (p ProbabilityPoints) Probabilities() []float64 { return p.probabilities }

// HasPositive reports whether any point has a probability greater than zero.
func (p ProbabilityPoints) HasPositive() bool {
	for _, probability := range p.probabilities {
		if probability > 0 {
			return true
		}
	}
	return false
}
