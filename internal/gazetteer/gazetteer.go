// Package gazetteer resolves geographic coordinates to countries and
// countries to their polygon geometries. The estimation core depends only
// on the Gazetteer interface; the Atlas implementation backs it with a
// Natural-Earth-style GeoJSON country file.
package gazetteer

import (
	"fmt"

	"github.com/paulmach/orb"
)

// OceanCode is the country code returned for coordinates that fall in no
// country's territory.
const OceanCode = 0

// Country identifies a country by its ISO-3166-1 codes and English short
// name, e.g. {756, "CH", "CHE", "Switzerland"}.
type Country struct {
	Numeric int
	Alpha2  string
	Alpha3  string
	Name    string
}

func (c Country) String() string {
	return fmt.Sprintf("%d (%s)", c.Numeric, c.Name)
}

// Gazetteer is the country raster/geometry lookup collaborator.
type Gazetteer interface {
	// ResolveCountryCodes maps each (lat, lon) pair to a numeric country
	// code. The result has the same cardinality and order as the inputs;
	// points in no country resolve to OceanCode.
	ResolveCountryCodes(latitudes, longitudes []float64) ([]int, error)

	// Geometry returns the polygon geometry of a country.
	Geometry(countryCode int) (orb.MultiPolygon, error)

	// CountryFromIdentifier resolves a numeric code, alpha-2/alpha-3 code
	// or English name to a Country.
	CountryFromIdentifier(identifier string) (Country, error)
}

// Geometries resolves the geometries of several countries at once, skipping
// codes the gazetteer does not know. The returned map holds only resolved
// entries.
func Geometries(g Gazetteer, countryCodes []int) (map[int]orb.MultiPolygon, error) {
	result := make(map[int]orb.MultiPolygon, len(countryCodes))
	for _, code := range countryCodes {
		geometry, err := g.Geometry(code)
		if err != nil {
			continue
		}
		result[code] = geometry
	}
	if len(result) == 0 && len(countryCodes) > 0 {
		return result, fmt.Errorf("gazetteer: no geometry found for any of %v", countryCodes)
	}
	return result, nil
}
