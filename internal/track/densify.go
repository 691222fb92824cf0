package track

import (
	"math"
	"time"

	"github.com/ThomasRoosli/Weather4UN-global-impact-estimates/internal/geo"
)

// Densify returns a new track in which no two consecutive points are
// farther apart than maxDistance (planar degrees). Between each original
// pair, ceil(d/maxDistance)-1 evenly spaced points are inserted with
// linearly interpolated coordinates. An inserted point takes the timestamp
// of whichever segment endpoint it is closer to in insertion order; the
// middle slot of an odd split takes the earlier time.
func Densify(t Track, maxDistance float64) Track {
	required := requiredIntermediatePoints(t.latitudes, t.longitudes, maxDistance)

	return Track{
		latitudes:  interpolateValues(t.latitudes, required),
		longitudes: interpolateValues(t.longitudes, required),
		times:      distributeTimes(t.times, required),
		frequency:  t.frequency,
	}
}

// DensifyAll densifies every track in the slice.
func DensifyAll(tracks []Track, maxDistance float64) []Track {
	dense := make([]Track, len(tracks))
	for i, t := range tracks {
		dense[i] = Densify(t, maxDistance)
	}
	return dense
}

// requiredIntermediatePoints computes, per segment, how many points must be
// inserted so no segment exceeds maxDistance.
func requiredIntermediatePoints(latitudes, longitudes []float64, maxDistance float64) []int {
	if len(latitudes) == 0 {
		return nil
	}
	required := make([]int, len(latitudes)-1)
	for i := range required {
		d := geo.PlanarDistance(latitudes[i], longitudes[i], latitudes[i+1], longitudes[i+1])
		n := int(math.Ceil(d/maxDistance - 1))
		if n < 0 {
			n = 0
		}
		required[i] = n
	}
	return required
}

// interpolateValues expands values by inserting the required number of
// linearly interpolated entries per segment. Each segment contributes its
// start value and the interpolated values (end-exclusive); the final
// original value is appended once at the end.
func interpolateValues(values []float64, required []int) []float64 {
	if len(values) == 0 {
		return nil
	}
	result := make([]float64, 0, len(values))
	for i := 0; i < len(values)-1; i++ {
		n := required[i] + 1
		step := (values[i+1] - values[i]) / float64(n)
		for r := 0; r < n; r++ {
			result = append(result, values[i]+step*float64(r))
		}
	}
	return append(result, values[len(values)-1])
}

// distributeTimes expands times alongside interpolateValues: slot r of a
// segment with n required intermediates takes the segment start time when
// r <= n/2 and the end time otherwise.
func distributeTimes(times []time.Time, required []int) []time.Time {
	if len(times) == 0 {
		return nil
	}
	result := make([]time.Time, 0, len(times))
	for i := 0; i < len(times)-1; i++ {
		n := required[i]
		for r := 0; r <= n; r++ {
			if r <= n/2 {
				result = append(result, times[i])
			} else {
				result = append(result, times[i+1])
			}
		}
	}
	return append(result, times[len(times)-1])
}
