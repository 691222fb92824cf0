package gazetteer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThomasRoosli/Weather4UN-global-impact-estimates/internal/geo"
)

func cellOf(lat, lon float64) geo.ArcPoint {
	return geo.ArcPoint{Lat: geo.ToArcMilliseconds(lat), Lon: geo.ToArcMilliseconds(lon)}
}

// twoCountries holds one Polygon and one MultiPolygon feature. ISO_N3 comes
// as a number for the first and as a zero-padded string for the second, as
// both variants occur in Natural Earth exports.
const twoCountries = `{
	"type": "FeatureCollection",
	"features": [
		{
			"type": "Feature",
			"properties": {"ISO_N3": 250, "ISO_A2": "FR", "ISO_A3": "FRA", "NAME": "France"},
			"geometry": {
				"type": "Polygon",
				"coordinates": [[[0, 0], [1, 0], [1, 1], [0, 1], [0, 0]]]
			}
		},
		{
			"type": "Feature",
			"properties": {"ISO_N3": "080", "ISO_A2": "IT", "ISO_A3": "ITA", "NAME": "Italy"},
			"geometry": {
				"type": "MultiPolygon",
				"coordinates": [[[[10, 10], [11, 10], [11, 11], [10, 11], [10, 10]]]]
			}
		}
	]
}`

func newTestAtlas(t *testing.T) *Atlas {
	t.Helper()
	atlas, err := FromGeoJSON([]byte(twoCountries))
	require.NoError(t, err)
	return atlas
}

func TestFromGeoJSON(t *testing.T) {
	t.Run("valid collection", func(t *testing.T) {
		atlas := newTestAtlas(t)
		assert.Len(t, atlas.byNumeric, 2)
	})

	t.Run("invalid payload", func(t *testing.T) {
		_, err := FromGeoJSON([]byte("not geojson"))
		require.ErrorContains(t, err, "parse country collection")
	})

	t.Run("unsupported geometry", func(t *testing.T) {
		_, err := FromGeoJSON([]byte(`{
			"type": "FeatureCollection",
			"features": [{
				"type": "Feature",
				"properties": {"ISO_N3": 250, "ISO_A2": "FR", "ISO_A3": "FRA", "NAME": "France"},
				"geometry": {"type": "Point", "coordinates": [0, 0]}
			}]
		}`))
		require.ErrorContains(t, err, `feature 0: unsupported geometry type "Point"`)
	})

	t.Run("missing numeric code", func(t *testing.T) {
		_, err := FromGeoJSON([]byte(`{
			"type": "FeatureCollection",
			"features": [{
				"type": "Feature",
				"properties": {"ISO_A2": "FR"},
				"geometry": {
					"type": "Polygon",
					"coordinates": [[[0, 0], [1, 0], [1, 1], [0, 1], [0, 0]]]
				}
			}]
		}`))
		require.ErrorContains(t, err, "missing ISO_N3 property")
	})
}

func TestAtlasResolveCountryCodes(t *testing.T) {
	atlas := newTestAtlas(t)

	t.Run("land and ocean points", func(t *testing.T) {
		codes, err := atlas.ResolveCountryCodes(
			[]float64{0.5, 10.5, 45.0, 0.5},
			[]float64{0.5, 10.5, -30.0, 0.6},
		)

		require.NoError(t, err)
		assert.Equal(t, []int{250, 80, OceanCode, 250}, codes)
	})

	t.Run("mismatched input lengths", func(t *testing.T) {
		_, err := atlas.ResolveCountryCodes([]float64{0.5}, []float64{0.5, 0.6})
		require.EqualError(t, err, "gazetteer: numbers of latitudes and longitudes do not match: 1 <> 2")
	})

	t.Run("repeated cells hit the cache", func(t *testing.T) {
		codes, err := atlas.ResolveCountryCodes(
			[]float64{0.5, 0.5, 0.5},
			[]float64{0.5, 0.5, 0.5},
		)

		require.NoError(t, err)
		assert.Equal(t, []int{250, 250, 250}, codes)
		assert.Contains(t, atlas.cellCache, cellOf(0.5, 0.5))
	})

	t.Run("full cache is reset", func(t *testing.T) {
		small, err := FromGeoJSON([]byte(twoCountries))
		require.NoError(t, err)
		small.cacheSize = 1

		_, err = small.ResolveCountryCodes([]float64{0.5, 10.5}, []float64{0.5, 10.5})
		require.NoError(t, err)

		assert.Len(t, small.cellCache, 1)
		assert.Contains(t, small.cellCache, cellOf(10.5, 10.5))
	})
}

func TestAtlasGeometry(t *testing.T) {
	atlas := newTestAtlas(t)

	t.Run("known country", func(t *testing.T) {
		geometry, err := atlas.Geometry(250)
		require.NoError(t, err)
		require.Len(t, geometry, 1)
	})

	t.Run("unknown country", func(t *testing.T) {
		_, err := atlas.Geometry(999)
		require.EqualError(t, err, "gazetteer: unknown country code 999")
	})

	t.Run("geometries helper skips unknown codes", func(t *testing.T) {
		geometries, err := Geometries(atlas, []int{250, 80, 999})
		require.NoError(t, err)
		assert.Len(t, geometries, 2)

		_, err = Geometries(atlas, []int{998, 999})
		require.EqualError(t, err, "gazetteer: no geometry found for any of [998 999]")
	})
}

func TestAtlasCountryFromIdentifier(t *testing.T) {
	atlas := newTestAtlas(t)
	france := Country{Numeric: 250, Alpha2: "FR", Alpha3: "FRA", Name: "France"}

	cases := []struct {
		name       string
		identifier string
	}{
		{"numeric", "250"},
		{"alpha2", "FR"},
		{"alpha3", "FRA"},
		{"alpha3 lowercase", "fra"},
		{"english name", "France"},
		{"name lowercase", "france"},
		{"padded", " FR "},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			country, err := atlas.CountryFromIdentifier(tc.identifier)
			require.NoError(t, err)
			assert.Equal(t, france, country)
		})
	}

	t.Run("unknown numeric", func(t *testing.T) {
		_, err := atlas.CountryFromIdentifier("999")
		require.EqualError(t, err, "gazetteer: unknown country code 999")
	})

	t.Run("unknown name", func(t *testing.T) {
		_, err := atlas.CountryFromIdentifier("Atlantis")
		require.EqualError(t, err, `gazetteer: unknown country identifier "Atlantis"`)
	})
}
