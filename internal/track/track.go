// Package track models a single forecast ensemble member as an ordered
// sequence of (latitude, longitude, time) points with a probability weight,
// and provides the densification and proximity searches the lead-time
// estimation is built on.
package track

import (
	"fmt"
	"time"
)

// Track is one ensemble member of a storm forecast. The three coordinate
// slices are parallel and immutable after construction; transforms return
// new tracks.
type Track struct {
	latitudes  []float64
	longitudes []float64
	times      []time.Time
	frequency  float64
}

// New validates and builds a track. The latitude, longitude and time slices
// must have identical length. Frequency is the probability weight of this
// ensemble member.
func New(latitudes, longitudes []float64, times []time.Time, frequency float64) (Track, error) {
	if len(latitudes) != len(longitudes) || len(latitudes) != len(times) {
		return Track{}, fmt.Errorf("track: numbers of latitudes, longitudes and times do not match: %d <> %d <> %d",
			len(latitudes), len(longitudes), len(times))
	}
	return Track{
		latitudes:  latitudes,
		longitudes: longitudes,
		times:      times,
		frequency:  frequency,
	}, nil
}

// Len returns the number of points.
func (t Track) Len() int { return len(t.times) }

// Latitudes returns the latitude values of all points.
func (t Track) Latitudes() []float64 { return t.latitudes }

// Longitudes returns the longitude values of all points.
func (t Track) Longitudes() []float64 { return t.longitudes }

// Times returns the timestamps of all points.
func (t Track) Times() []time.Time { return t.times }

// Frequency returns the probability weight of this track.
func (t Track) Frequency() float64 { return t.frequency }
