package geo

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func TestArcMillisecondsRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		degrees float64
		arc     int64
	}{
		{"zero", 0, 0},
		{"one degree", 1, 3_600_000},
		{"negative", -98.44, -354_384_000},
		{"fractional", 0.5, 1_800_000},
		{"24th of a degree", 1.0 / 24, 150_000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.arc, ToArcMilliseconds(tt.degrees))
			assert.InDelta(t, tt.degrees, FromArcMilliseconds(tt.arc), 1e-9)
		})
	}
}

func TestArcPoint(t *testing.T) {
	p := ArcPoint{Lat: 3_600_000, Lon: -7_200_000}

	diff := p.Sub(ArcPoint{Lat: 1_800_000, Lon: -1_800_000})
	assert.Equal(t, ArcPoint{Lat: 1_800_000, Lon: -5_400_000}, diff)

	lat, lon := p.Degrees()
	assert.InDelta(t, 1.0, lat, 1e-9)
	assert.InDelta(t, -2.0, lon, 1e-9)
}

func TestPlanarDistance(t *testing.T) {
	assert.InDelta(t, 5.0, PlanarDistance(0, 0, 3, 4), 1e-12)
	assert.InDelta(t, 0.0, PlanarDistance(10, 20, 10, 20), 1e-12)
}

func TestKilometersPerDegree(t *testing.T) {
	// One degree of longitude is ~111.3 km at the equator and shrinks
	// towards the poles.
	assert.InDelta(t, 111.3, KilometersPerDegree(0), 0.3)
	assert.InDelta(t, 78.8, KilometersPerDegree(45), 0.5)
	assert.Less(t, KilometersPerDegree(60), KilometersPerDegree(30))
}

func TestDistanceToGeometryKm(t *testing.T) {
	square := orb.MultiPolygon{{{{0, 0}, {2, 0}, {2, 2}, {0, 2}, {0, 0}}}}

	t.Run("inside is zero", func(t *testing.T) {
		assert.Equal(t, 0.0, DistanceToGeometryKm(square, 1, 1))
	})

	t.Run("outside scales with kilometers per degree", func(t *testing.T) {
		// One degree east of the square's edge at the equator.
		d := DistanceToGeometryKm(square, 0, 3)
		assert.InDelta(t, KilometersPerDegree(0), d, 1e-6)
	})

	t.Run("boundary is zero", func(t *testing.T) {
		assert.InDelta(t, 0.0, DistanceToGeometryKm(square, 0, 2), 1e-9)
	})
}
