package track

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var trackStart = time.Date(2024, 9, 24, 0, 0, 0, 0, time.UTC)

func hours(n int) time.Time { return trackStart.Add(time.Duration(n) * time.Hour) }

func mustTrack(t *testing.T, lats, lons []float64, times []time.Time, frequency float64) Track {
	t.Helper()
	built, err := New(lats, lons, times, frequency)
	require.NoError(t, err)
	return built
}

func TestNew(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		tr, err := New([]float64{0, 1}, []float64{0, 1}, []time.Time{hours(0), hours(1)}, 0.5)
		require.NoError(t, err)
		assert.Equal(t, 2, tr.Len())
		assert.Equal(t, 0.5, tr.Frequency())
	})

	t.Run("mismatched lengths", func(t *testing.T) {
		_, err := New([]float64{0, 1}, []float64{0}, []time.Time{hours(0), hours(1)}, 1)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "do not match")
		assert.Contains(t, err.Error(), "2 <> 1 <> 2")
	})

	t.Run("empty is valid construction", func(t *testing.T) {
		tr, err := New(nil, nil, nil, 1)
		require.NoError(t, err)
		assert.Equal(t, 0, tr.Len())
	})
}
