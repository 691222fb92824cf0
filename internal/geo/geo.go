// Package geo holds the geometry primitives shared by the track and grid
// packages: planar distances, the fixed-point arc-millisecond coordinate
// representation, and latitude-dependent degree-to-kilometer scaling.
//
// Coordinates that participate in grid alignment are stored as integer
// arc-milliseconds (1 degree = 3,600,000 arc-ms) so that equality and
// lattice comparisons are exact. Floating-point degrees are only used at
// the boundaries.
package geo

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// ArcMillisecondsPerDegree is the fixed-point scale for coordinates.
const ArcMillisecondsPerDegree = 3_600_000

// arcPrecision is the number of decimals kept when converting back to degrees.
const arcPrecision = 12

// ArcPoint is a coordinate in integer arc-milliseconds.
type ArcPoint struct {
	Lat int64
	Lon int64
}

// Sub returns the component-wise difference p - other.
func (p ArcPoint) Sub(other ArcPoint) ArcPoint {
	return ArcPoint{Lat: p.Lat - other.Lat, Lon: p.Lon - other.Lon}
}

// Degrees converts the point back to floating-point degrees.
func (p ArcPoint) Degrees() (lat, lon float64) {
	return FromArcMilliseconds(p.Lat), FromArcMilliseconds(p.Lon)
}

// ToArcMilliseconds converts degrees to the fixed-point representation,
// rounding to the nearest arc-millisecond.
func ToArcMilliseconds(degrees float64) int64 {
	return int64(math.Round(degrees * ArcMillisecondsPerDegree))
}

// FromArcMilliseconds converts a fixed-point coordinate back to degrees.
func FromArcMilliseconds(value int64) float64 {
	scale := math.Pow(10, arcPrecision)
	return math.Round(float64(value)/ArcMillisecondsPerDegree*scale) / scale
}

// PlanarDistance returns the Euclidean distance, in degrees, between two
// (lat, lon) coordinates. Track spacing works on this planar distance.
func PlanarDistance(lat1, lon1, lat2, lon2 float64) float64 {
	return planar.Distance(orb.Point{lon1, lat1}, orb.Point{lon2, lat2})
}

// KilometersPerDegree returns the length in kilometers of one degree of
// longitude at the given latitude, using the WGS-84 arc-length series.
func KilometersPerDegree(latitude float64) float64 {
	phi := latitude * math.Pi / 180
	meters := 111412.84*math.Cos(phi) - 93.5*math.Cos(3*phi) + 0.118*math.Cos(5*phi)
	return meters / 1000
}

// DistanceToGeometryKm returns the distance in kilometers between a
// (lat, lon) coordinate and a country geometry. Points inside the geometry
// have distance zero. The planar degree distance is scaled by the
// kilometers-per-degree factor at the point's latitude.
func DistanceToGeometryKm(geometry orb.MultiPolygon, lat, lon float64) float64 {
	point := orb.Point{lon, lat}
	if planar.MultiPolygonContains(geometry, point) {
		return 0
	}
	return planar.DistanceFrom(geometry, point) * KilometersPerDegree(lat)
}
