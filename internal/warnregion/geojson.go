package warnregion

import (
	"fmt"
	"io"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ToFeatureCollection wraps the warning region in a GeoJSON feature
// collection, one feature per polygon, in WGS 84 coordinates.
func ToFeatureCollection(region orb.MultiPolygon) *geojson.FeatureCollection {
	collection := geojson.NewFeatureCollection()
	for i, polygon := range region {
		feature := geojson.NewFeature(polygon)
		feature.Properties["polygon"] = i
		collection.Append(feature)
	}
	return collection
}

// WriteGeoJSON serializes the warning region as GeoJSON.
func WriteGeoJSON(w io.Writer, region orb.MultiPolygon) error {
	data, err := ToFeatureCollection(region).MarshalJSON()
	if err != nil {
		return fmt.Errorf("warnregion: marshal geojson: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("warnregion: write geojson: %w", err)
	}
	return nil
}
