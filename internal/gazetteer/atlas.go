package gazetteer

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"

	"github.com/ThomasRoosli/Weather4UN-global-impact-estimates/internal/geo"
)

// defaultCellCacheSize bounds the point-resolution cache. Dense track
// batches revisit grid cells constantly, so the cache stays hot and small.
const defaultCellCacheSize = 100_000

type atlasEntry struct {
	country  Country
	geometry orb.MultiPolygon
	bound    orb.Bound
}

// Atlas is a Gazetteer backed by a GeoJSON country collection, e.g. the
// Natural Earth admin-0 countries. Point resolution snaps coordinates to
// the arc-millisecond lattice and caches per-cell results.
type Atlas struct {
	byNumeric map[int]*atlasEntry
	byAlpha   map[string]*atlasEntry // alpha-2, alpha-3 and lowercase name
	order     []int                  // numeric codes in file order, for deterministic scans

	mu        sync.RWMutex
	cellCache map[geo.ArcPoint]int
	cacheSize int
}

// FromGeoJSON builds an Atlas from a GeoJSON FeatureCollection. Each
// feature must carry ISO_N3, ISO_A2, ISO_A3 and NAME properties and a
// Polygon or MultiPolygon geometry.
func FromGeoJSON(data []byte) (*Atlas, error) {
	collection, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("gazetteer: parse country collection: %w", err)
	}

	atlas := &Atlas{
		byNumeric: make(map[int]*atlasEntry, len(collection.Features)),
		byAlpha:   make(map[string]*atlasEntry, 3*len(collection.Features)),
		cellCache: make(map[geo.ArcPoint]int),
		cacheSize: defaultCellCacheSize,
	}

	for i, feature := range collection.Features {
		entry, err := newAtlasEntry(feature)
		if err != nil {
			return nil, fmt.Errorf("gazetteer: feature %d: %w", i, err)
		}
		atlas.byNumeric[entry.country.Numeric] = entry
		atlas.byAlpha[entry.country.Alpha2] = entry
		atlas.byAlpha[entry.country.Alpha3] = entry
		atlas.byAlpha[strings.ToLower(entry.country.Name)] = entry
		atlas.order = append(atlas.order, entry.country.Numeric)
	}

	return atlas, nil
}

func newAtlasEntry(feature *geojson.Feature) (*atlasEntry, error) {
	numeric, err := numericProperty(feature, "ISO_N3")
	if err != nil {
		return nil, err
	}

	var geometry orb.MultiPolygon
	switch g := feature.Geometry.(type) {
	case orb.Polygon:
		geometry = orb.MultiPolygon{g}
	case orb.MultiPolygon:
		geometry = g
	default:
		return nil, fmt.Errorf("unsupported geometry type %q", feature.Geometry.GeoJSONType())
	}

	return &atlasEntry{
		country: Country{
			Numeric: numeric,
			Alpha2:  stringProperty(feature, "ISO_A2"),
			Alpha3:  stringProperty(feature, "ISO_A3"),
			Name:    stringProperty(feature, "NAME"),
		},
		geometry: geometry,
		bound:    geometry.Bound(),
	}, nil
}

func stringProperty(feature *geojson.Feature, key string) string {
	value, _ := feature.Properties[key].(string)
	return strings.TrimSpace(value)
}

func numericProperty(feature *geojson.Feature, key string) (int, error) {
	switch value := feature.Properties[key].(type) {
	case float64:
		return int(value), nil
	case string:
		n, err := strconv.Atoi(strings.TrimLeft(value, "0"))
		if err != nil {
			return 0, fmt.Errorf("invalid %s property %q", key, value)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("missing %s property", key)
	}
}

// ResolveCountryCodes implements Gazetteer.
func (a *Atlas) ResolveCountryCodes(latitudes, longitudes []float64) ([]int, error) {
	if len(latitudes) != len(longitudes) {
		return nil, fmt.Errorf("gazetteer: numbers of latitudes and longitudes do not match: %d <> %d",
			len(latitudes), len(longitudes))
	}

	codes := make([]int, len(latitudes))
	for i := range latitudes {
		codes[i] = a.resolvePoint(latitudes[i], longitudes[i])
	}
	return codes, nil
}

func (a *Atlas) resolvePoint(lat, lon float64) int {
	cell := geo.ArcPoint{Lat: geo.ToArcMilliseconds(lat), Lon: geo.ToArcMilliseconds(lon)}

	a.mu.RLock()
	code, ok := a.cellCache[cell]
	a.mu.RUnlock()
	if ok {
		return code
	}

	code = OceanCode
	point := orb.Point{lon, lat}
	for _, numeric := range a.order {
		entry := a.byNumeric[numeric]
		if !entry.bound.Contains(point) {
			continue
		}
		if planar.MultiPolygonContains(entry.geometry, point) {
			code = numeric
			break
		}
	}

	a.mu.Lock()
	if len(a.cellCache) >= a.cacheSize {
		a.cellCache = make(map[geo.ArcPoint]int)
	}
	a.cellCache[cell] = code
	a.mu.Unlock()

	return code
}

// Geometry implements Gazetteer.
func (a *Atlas) Geometry(countryCode int) (orb.MultiPolygon, error) {
	entry, ok := a.byNumeric[countryCode]
	if !ok {
		return nil, fmt.Errorf("gazetteer: unknown country code %d", countryCode)
	}
	return entry.geometry, nil
}

// CountryFromIdentifier implements Gazetteer.
func (a *Atlas) CountryFromIdentifier(identifier string) (Country, error) {
	identifier = strings.TrimSpace(identifier)

	if numeric, err := strconv.Atoi(identifier); err == nil {
		if entry, ok := a.byNumeric[numeric]; ok {
			return entry.country, nil
		}
		return Country{}, fmt.Errorf("gazetteer: unknown country code %d", numeric)
	}

	if entry, ok := a.byAlpha[strings.ToUpper(identifier)]; ok {
		return entry.country, nil
	}
	if entry, ok := a.byAlpha[strings.ToLower(identifier)]; ok {
		return entry.country, nil
	}
	return Country{}, fmt.Errorf("gazetteer: unknown country identifier %q", identifier)
}
