package grid

import (
	"fmt"
	"sort"

	"github.com/ThomasRoosli/Weather4UN-global-impact-estimates/internal/geo"
)

// FromProbabilityPoints rasterizes scattered probability points onto the
// complete rectangle spanned by their distinct latitude and longitude
// values. Cells with no input point are zero. The resolution is inferred
// from the lattice; an axis with a single distinct value falls back to
// defaultResolution.
func FromProbabilityPoints(points ProbabilityPoints, defaultResolution int64) (Grid, error) {
	if points.Len() == 0 {
		return Grid{}, fmt.Errorf("grid: cannot rasterize zero points")
	}

	latValues, latIndex := distinctSorted(points.latitudes)
	lonValues, lonIndex := distinctSorted(points.longitudes)
	rows, cols := len(latValues), len(lonValues)

	values := make([][]float64, rows)
	for r := range values {
		values[r] = make([]float64, cols)
	}
	for i := 0; i < points.Len(); i++ {
		values[latIndex[points.latitudes[i]]][lonIndex[points.longitudes[i]]] = points.probabilities[i]
	}

	coordinates := make([]geo.ArcPoint, 0, rows*cols)
	for _, lat := range latValues {
		for _, lon := range lonValues {
			coordinates = append(coordinates, geo.ArcPoint{Lat: lat, Lon: lon})
		}
	}

	return FromCoordinates(values, coordinates, defaultResolution)
}

// EnsureMinimumSize pads the grid with a zero border so that its smaller
// dimension reaches minSize. The border is (deficit+1)/2 cells per side;
// grids already large enough are returned unchanged.
func EnsureMinimumSize(g Grid, minSize int) Grid {
	size := g.Rows()
	if g.Cols() < size {
		size = g.Cols()
	}
	if size >= minSize {
		return g
	}
	required := (minSize - size + 1) / 2
	return g.AddBorder(required)
}

// distinctSorted returns the distinct values ascending plus a value→index map.
func distinctSorted(values []int64) ([]int64, map[int64]int) {
	seen := make(map[int64]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}
	sorted := make([]int64, 0, len(seen))
	for v := range seen {
		sorted = append(sorted, v)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	index := make(map[int64]int, len(sorted))
	for i, v := range sorted {
		index[v] = i
	}
	return sorted, index
}
