package track

import (
	"errors"
	"math"
	"time"

	"github.com/paulmach/orb"

	"github.com/ThomasRoosli/Weather4UN-global-impact-estimates/internal/geo"
)

// ErrEmptyTrack is returned when a search is attempted on a track without points.
var ErrEmptyTrack = errors.New("track does not contain any points")

// FirstTimeCloserThan returns the timestamp of the first point, in track
// order, whose distance to the geometry is at or below radiusKm. The second
// return value is false when no point qualifies.
func FirstTimeCloserThan(t Track, geometry orb.MultiPolygon, radiusKm float64) (time.Time, bool) {
	for i := range t.times {
		if geo.DistanceToGeometryKm(geometry, t.latitudes[i], t.longitudes[i]) <= radiusKm {
			return t.times[i], true
		}
	}
	return time.Time{}, false
}

// ClosestPoint returns the timestamp and distance in kilometers of the
// track point closest to the geometry. Ties resolve to the later point.
func ClosestPoint(t Track, geometry orb.MultiPolygon) (time.Time, float64, error) {
	if t.Len() == 0 {
		return time.Time{}, 0, ErrEmptyTrack
	}

	closestDistance := math.Inf(1)
	var closestTime time.Time
	for i := range t.times {
		distance := geo.DistanceToGeometryKm(geometry, t.latitudes[i], t.longitudes[i])
		if distance <= closestDistance {
			closestDistance = distance
			closestTime = t.times[i]
		}
	}
	return closestTime, closestDistance, nil
}
