package warnregion

import (
	"bytes"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteGeoJSON(t *testing.T) {
	region := orb.MultiPolygon{
		{{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}},
		{{{5, 5}, {6, 5}, {6, 6}, {5, 6}, {5, 5}}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteGeoJSON(&buf, region))

	collection, err := geojson.UnmarshalFeatureCollection(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, collection.Features, 2)

	for i, feature := range collection.Features {
		assert.Equal(t, float64(i), feature.Properties["polygon"])
		assert.Equal(t, "Polygon", feature.Geometry.GeoJSONType())
	}
}

func TestWriteGeoJSONEmptyRegion(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteGeoJSON(&buf, nil))

	collection, err := geojson.UnmarshalFeatureCollection(buf.Bytes())
	require.NoError(t, err)
	assert.Empty(t, collection.Features)
}
