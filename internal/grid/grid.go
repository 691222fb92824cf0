package grid

import (
	"fmt"

	"github.com/ThomasRoosli/Weather4UN-global-impact-estimates/internal/geo"
)

// Grid is a rectangular array of values on a regular coordinate lattice.
// Rows follow latitude, columns follow longitude. The origin and the
// per-axis resolution are fixed-point arc-milliseconds; the coordinates
// slice mirrors the values row by row. Immutable: transforms return a new
// grid.
type Grid struct {
	values      [][]float64
	start       geo.ArcPoint
	resolution  geo.ArcPoint
	coordinates []geo.ArcPoint
}

// New builds a grid from values, origin and resolution, deriving the
// coordinates. The values must form a rectangle and the resolution must be
// strictly positive on both axes.
func New(values [][]float64, start, resolution geo.ArcPoint) (Grid, error) {
	if err := checkRectangle(values); err != nil {
		return Grid{}, err
	}
	if resolution.Lat <= 0 || resolution.Lon <= 0 {
		return Grid{}, fmt.Errorf("grid: resolution must be positive on both axes: %+v", resolution)
	}
	return Grid{
		values:      values,
		start:       start,
		resolution:  resolution,
		coordinates: calculateCoordinates(start, resolution, len(values), len(values[0])),
	}, nil
}

// FromCoordinates builds a grid from values and an explicit coordinate
// list (one entry per cell, row by row). The resolution is inferred from
// the coordinate span per axis; an axis with a single sample falls back to
// defaultResolution since its spacing is undefined. Coordinates that do not
// sit on the regular lattice spanned by the origin and the inferred
// resolution are a data error.
func FromCoordinates(values [][]float64, coordinates []geo.ArcPoint, defaultResolution int64) (Grid, error) {
	if err := checkRectangle(values); err != nil {
		return Grid{}, err
	}
	rows, cols := len(values), len(values[0])
	if rows*cols != len(coordinates) {
		return Grid{}, fmt.Errorf("grid: size of values and number of coordinates do not match: %d != %d",
			rows*cols, len(coordinates))
	}

	last := coordinates[len(coordinates)-1]
	resolution := geo.ArcPoint{
		Lat: axisResolution(coordinates[0].Lat, last.Lat, rows, defaultResolution),
		Lon: axisResolution(coordinates[0].Lon, last.Lon, cols, defaultResolution),
	}
	if resolution.Lat <= 0 || resolution.Lon <= 0 {
		return Grid{}, fmt.Errorf("grid: inferred resolution is not positive: %+v", resolution)
	}
	if err := checkLattice(coordinates, coordinates[0], resolution, cols); err != nil {
		return Grid{}, err
	}

	return Grid{
		values:      values,
		start:       coordinates[0],
		resolution:  resolution,
		coordinates: coordinates,
	}, nil
}

// checkLattice verifies that every coordinate equals origin plus its row
// and column times the resolution, so the declared lattice and the stored
// coordinates never disagree.
func checkLattice(coordinates []geo.ArcPoint, start, resolution geo.ArcPoint, cols int) error {
	for i, c := range coordinates {
		row, col := i/cols, i%cols
		if want := start.Lat + resolution.Lat*int64(row); c.Lat != want {
			return fmt.Errorf("grid: latitude values are not evenly spaced: row %d is at %d, expected %d",
				row, c.Lat, want)
		}
		if want := start.Lon + resolution.Lon*int64(col); c.Lon != want {
			return fmt.Errorf("grid: longitude values are not evenly spaced: column %d is at %d, expected %d",
				col, c.Lon, want)
		}
	}
	return nil
}

func axisResolution(first, last int64, samples int, defaultResolution int64) int64 {
	if samples == 1 {
		return defaultResolution
	}
	span := last - first
	if span < 0 {
		span = -span
	}
	return span / int64(samples-1)
}

func checkRectangle(values [][]float64) error {
	if len(values) == 0 || len(values[0]) == 0 {
		return fmt.Errorf("grid: values are empty")
	}
	for i, row := range values {
		if len(row) != len(values[0]) {
			return fmt.Errorf("grid: values are not a rectangle: row %d has %d columns, expected %d",
				i, len(row), len(values[0]))
		}
	}
	return nil
}

func calculateCoordinates(start, resolution geo.ArcPoint, rows, cols int) []geo.ArcPoint {
	coordinates := make([]geo.ArcPoint, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			coordinates = append(coordinates, geo.ArcPoint{
				Lat: start.Lat + resolution.Lat*int64(r),
				Lon: start.Lon + resolution.Lon*int64(c),
			})
		}
	}
	return coordinates
}

// Values returns the grid values. Callers must not mutate them.
func (g Grid) Values() [][]float64 { return g.values }

// Rows returns the number of latitude rows.
func (g Grid) Rows() int { return len(g.values) }

// Cols returns the number of longitude columns.
func (g Grid) Cols() int {
	if len(g.values) == 0 {
		return 0
	}
	return len(g.values[0])
}

// Start returns the origin coordinate.
func (g Grid) Start() geo.ArcPoint { return g.start }

// Resolution returns the per-axis spacing.
func (g Grid) Resolution() geo.ArcPoint { return g.resolution }

// Coordinates returns one coordinate per cell, row by row.
func (g Grid) Coordinates() []geo.ArcPoint { return g.coordinates }

// Latitudes returns the latitude of each row in degrees.
func (g Grid) Latitudes() []float64 {
	latitudes := make([]float64, g.Rows())
	for r := range latitudes {
		latitudes[r] = geo.FromArcMilliseconds(g.start.Lat + g.resolution.Lat*int64(r))
	}
	return latitudes
}

// Longitudes returns the longitude of each column in degrees.
func (g Grid) Longitudes() []float64 {
	longitudes := make([]float64, g.Cols())
	for c := range longitudes {
		longitudes[c] = geo.FromArcMilliseconds(g.start.Lon + g.resolution.Lon*int64(c))
	}
	return longitudes
}

// CountNonZero returns the number of non-zero cells.
func (g Grid) CountNonZero() int {
	count := 0
	for _, row := range g.values {
		for _, v := range row {
			if v != 0 {
				count++
			}
		}
	}
	return count
}

// WithValues returns a new grid with the same lattice and the given
// values, which must match the current shape.
func (g Grid) WithValues(values [][]float64) (Grid, error) {
	if err := checkRectangle(values); err != nil {
		return Grid{}, err
	}
	if len(values) != g.Rows() || len(values[0]) != g.Cols() {
		return Grid{}, fmt.Errorf("grid: shape of new values %dx%d does not match requirements %dx%d",
			len(values), len(values[0]), g.Rows(), g.Cols())
	}
	return Grid{
		values:      values,
		start:       g.start,
		resolution:  g.resolution,
		coordinates: g.coordinates,
	}, nil
}

// HasZeroBorder reports whether every edge cell is zero.
func (g Grid) HasZeroBorder() bool {
	rows, cols := g.Rows(), g.Cols()
	for c := 0; c < cols; c++ {
		if g.values[0][c] != 0 || g.values[rows-1][c] != 0 {
			return false
		}
	}
	for r := 0; r < rows; r++ {
		if g.values[r][0] != 0 || g.values[r][cols-1] != 0 {
			return false
		}
	}
	return true
}

// AddBorder returns a new grid padded with borderSize zero cells on every
// side. The origin shifts by borderSize times the resolution so the
// coordinates stay consistent.
func (g Grid) AddBorder(borderSize int) Grid {
	rows, cols := g.Rows(), g.Cols()
	newValues := make([][]float64, rows+2*borderSize)
	for r := range newValues {
		newValues[r] = make([]float64, cols+2*borderSize)
	}
	for r := 0; r < rows; r++ {
		copy(newValues[r+borderSize][borderSize:], g.values[r])
	}

	newStart := geo.ArcPoint{
		Lat: g.start.Lat - g.resolution.Lat*int64(borderSize),
		Lon: g.start.Lon - g.resolution.Lon*int64(borderSize),
	}
	return Grid{
		values:      newValues,
		start:       newStart,
		resolution:  g.resolution,
		coordinates: calculateCoordinates(newStart, g.resolution, rows+2*borderSize, cols+2*borderSize),
	}
}
