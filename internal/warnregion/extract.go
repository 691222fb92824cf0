package warnregion

import (
	"fmt"

	"github.com/engelsjk/polygol"
	"github.com/fogleman/contourmap"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/ThomasRoosli/Weather4UN-global-impact-estimates/internal/geo"
	"github.com/ThomasRoosli/Weather4UN-global-impact-estimates/internal/grid"
)

// contourLevel is the tracing level for the 0/1 warning grid, halfway
// between the binary values.
const contourLevel = 0.5

// Extract traces the boundary of the binary warning grid and assembles the
// closed contours into polygons, with nested contours becoming holes. The
// grid is padded with a zero border first when any edge cell is non-zero,
// since contours touching the boundary cannot close. An all-zero grid
// yields an empty result and no error.
func Extract(g grid.Grid) (orb.MultiPolygon, error) {
	if g.CountNonZero() == 0 {
		return nil, nil
	}
	if !g.HasZeroBorder() {
		g = g.AddBorder(1)
	}

	rings, err := traceRings(g)
	if err != nil {
		return nil, err
	}
	if len(rings) == 0 {
		return nil, nil
	}

	polygons := assemblePolygons(rings)
	return unionPolygons(polygons)
}

// traceRings runs marching squares on the grid and converts every closed
// contour into a simple ring in degree coordinates. Self-intersecting
// rings are repaired; a ring that cannot be repaired fails the extraction.
func traceRings(g grid.Grid) ([]orb.Ring, error) {
	rows, cols := g.Rows(), g.Cols()
	flat := make([]float64, 0, rows*cols)
	for _, row := range g.Values() {
		flat = append(flat, row...)
	}

	contours := contourmap.FromFloat64s(cols, rows, flat).Contours(contourLevel)

	start := g.Start()
	resolution := g.Resolution()
	var rings []orb.Ring
	for i, contour := range contours {
		ring := make(orb.Ring, 0, len(contour)+1)
		for _, p := range contour {
			ring = append(ring, orb.Point{
				cellToDegrees(start.Lon, resolution.Lon, p.X),
				cellToDegrees(start.Lat, resolution.Lat, p.Y),
			})
		}
		if len(ring) > 0 && ring[0] != ring[len(ring)-1] {
			ring = append(ring, ring[0])
		}
		if len(ring) < 4 || signedArea(ring) == 0 {
			continue
		}

		repaired, err := repairRing(ring)
		if err != nil {
			return nil, fmt.Errorf("warnregion: repair contour path %d: %w", i, err)
		}
		rings = append(rings, repaired...)
	}
	return rings, nil
}

func cellToDegrees(startArc, resolutionArc int64, index float64) float64 {
	return (float64(startArc) + index*float64(resolutionArc)) / geo.ArcMillisecondsPerDegree
}

// repairRing normalizes a possibly self-intersecting ring by self-union,
// returning the resulting simple rings. A valid ring comes back unchanged
// in shape.
func repairRing(ring orb.Ring) ([]orb.Ring, error) {
	result, err := polygol.Union(toGeom(orb.Polygon{ring}))
	if err != nil {
		return nil, err
	}
	var rings []orb.Ring
	for _, polygon := range result {
		for _, coords := range polygon {
			rings = append(rings, toRing(coords))
		}
	}
	return rings, nil
}

// assemblePolygons nests the rings by containment parity: rings contained
// by an even number of other rings are shells, odd ones are holes of their
// immediate parent. Marching-squares contours at one level never cross, so
// parity is well defined.
func assemblePolygons(rings []orb.Ring) []orb.Polygon {
	depths := make([]int, len(rings))
	for i := range rings {
		for j := range rings {
			if i != j && planar.RingContains(rings[j], rings[i][0]) {
				depths[i]++
			}
		}
	}

	polygonIndex := make(map[int]int) // ring index -> polygon index
	var polygons []orb.Polygon
	for i, ring := range rings {
		if depths[i]%2 == 0 {
			polygonIndex[i] = len(polygons)
			polygons = append(polygons, orb.Polygon{orientRing(ring, true)})
		}
	}
	for i, ring := range rings {
		if depths[i]%2 == 0 {
			continue
		}
		for j := range rings {
			if depths[j] == depths[i]-1 && depths[j]%2 == 0 && planar.RingContains(rings[j], ring[0]) {
				p := polygonIndex[j]
				polygons[p] = append(polygons[p], orientRing(ring, false))
				break
			}
		}
	}
	return polygons
}

// unionPolygons merges the per-shell polygons into the final multi-polygon.
func unionPolygons(polygons []orb.Polygon) (orb.MultiPolygon, error) {
	result := toGeom(polygons[0])
	var err error
	for _, p := range polygons[1:] {
		result, err = polygol.Union(result, toGeom(p))
		if err != nil {
			return nil, fmt.Errorf("warnregion: union polygons: %w", err)
		}
	}

	multi := make(orb.MultiPolygon, 0, len(result))
	for _, polygon := range result {
		assembled := make(orb.Polygon, 0, len(polygon))
		for _, coords := range polygon {
			assembled = append(assembled, toRing(coords))
		}
		multi = append(multi, assembled)
	}
	return multi, nil
}

// toGeom converts a polygon to the clipping library's coordinate layout:
// one polygon of rings of [x, y] positions.
func toGeom(polygon orb.Polygon) [][][][]float64 {
	rings := make([][][]float64, 0, len(polygon))
	for _, ring := range polygon {
		coords := make([][]float64, 0, len(ring))
		for _, p := range ring {
			coords = append(coords, []float64{p[0], p[1]})
		}
		rings = append(rings, coords)
	}
	return [][][][]float64{rings}
}

func toRing(coords [][]float64) orb.Ring {
	ring := make(orb.Ring, 0, len(coords)+1)
	for _, c := range coords {
		ring = append(ring, orb.Point{c[0], c[1]})
	}
	if len(ring) > 0 && ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}
	return ring
}

// orientRing returns the ring wound counter-clockwise for shells and
// clockwise for holes.
func orientRing(ring orb.Ring, shell bool) orb.Ring {
	area := signedArea(ring)
	if (shell && area >= 0) || (!shell && area < 0) {
		return ring
	}
	reversed := make(orb.Ring, len(ring))
	for i, p := range ring {
		reversed[len(ring)-1-i] = p
	}
	return reversed
}

// signedArea is the shoelace area: positive for counter-clockwise rings.
func signedArea(ring orb.Ring) float64 {
	area := 0.0
	for i := 0; i < len(ring)-1; i++ {
		area += ring[i][0]*ring[i+1][1] - ring[i+1][0]*ring[i][1]
	}
	return area / 2
}
