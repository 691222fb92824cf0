// Package leadtime computes, per country, when a forecasted storm track
// ensemble is expected to make landfall. Resolution is tiered: direct
// landfall on densified tracks, proximity band-fall against country
// geometries, closest-point fallback, and finally the forecast
// initialization time. Tier results are merged first-writer-wins into the
// hazard metadata.
package leadtime

import (
	"errors"
	"fmt"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// LeadTimes holds all per-track lead times of a hazard in one country and
// their weighted median.
type LeadTimes struct {
	// All contains the earliest time per contributing track that the track
	// affects the country. Never empty.
	All []time.Time
	// Median is the frequency-weighted median of All.
	Median time.Time
}

// FromAll builds LeadTimes whose median is the weighted median of all
// values. Weights correspond pairwise to all; nil weights mean a uniform
// distribution. Empty input is an error.
func FromAll(all []time.Time, weights []float64) (LeadTimes, error) {
	if len(all) == 0 {
		return LeadTimes{}, errors.New("leadtime: neither all lead times nor median lead time specified")
	}
	if weights != nil && len(weights) != len(all) {
		return LeadTimes{}, fmt.Errorf("leadtime: numbers of lead times and weights do not match: %d <> %d",
			len(all), len(weights))
	}
	return LeadTimes{All: all, Median: weightedMedian(all, weights)}, nil
}

// FromMedian builds single-observation LeadTimes: All contains only the
// median itself.
func FromMedian(median time.Time) LeadTimes {
	return LeadTimes{All: []time.Time{median}, Median: median}
}

// Check validates consistency. The country code, when non-zero, is included
// in the error for context.
func (lt LeadTimes) Check(countryCode int) error {
	if len(lt.All) == 0 {
		if countryCode != 0 {
			return fmt.Errorf("leadtime: missing lead times for country code %d", countryCode)
		}
		return errors.New("leadtime: missing lead times")
	}
	return nil
}

func (lt LeadTimes) String() string {
	return fmt.Sprintf("%s %v", lt.Median.Format(time.RFC3339), lt.All)
}

// weightedMedian computes the interpolated weighted median of timestamps.
// Times are mapped to nanoseconds since epoch, sorted together with their
// weights, and the 0.5 point of the cumulative weight distribution
// (midpoint convention) is read off with linear interpolation between the
// bracketing order statistics. Uniform weights reproduce the classical
// median.
func weightedMedian(times []time.Time, weights []float64) time.Time {
	values := make([]float64, len(times))
	for i, t := range times {
		values[i] = float64(t.UnixNano())
	}

	w := make([]float64, len(times))
	if weights == nil {
		for i := range w {
			w[i] = 1
		}
	} else {
		copy(w, weights)
	}

	stat.SortWeighted(values, w)

	cumulative := make([]float64, len(w))
	floats.CumSum(cumulative, w)
	total := cumulative[len(cumulative)-1]

	// Midpoint cumulative fraction per order statistic.
	fractions := make([]float64, len(w))
	for i := range w {
		fractions[i] = (cumulative[i] - w[i]/2) / total
	}

	const q = 0.5
	switch {
	case q <= fractions[0]:
		return fromNanos(values[0])
	case q >= fractions[len(fractions)-1]:
		return fromNanos(values[len(values)-1])
	}
	for i := 1; i < len(fractions); i++ {
		if q > fractions[i] {
			continue
		}
		if fractions[i] == fractions[i-1] {
			return fromNanos(values[i])
		}
		t := (q - fractions[i-1]) / (fractions[i] - fractions[i-1])
		return fromNanos(values[i-1] + t*(values[i]-values[i-1]))
	}
	return fromNanos(values[len(values)-1])
}

func fromNanos(nanos float64) time.Time {
	return time.Unix(0, int64(nanos)).UTC()
}
