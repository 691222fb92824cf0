// Package warnregion turns a grid of probability-of-impact values into the
// geographic warning region: the area where the probability exceeds a
// configured threshold after morphological smoothing. The smoothing itself
// is an external collaborator; this package supplies its parameter
// contract, the contour-to-polygon extraction and the overall pipeline.
package warnregion

import (
	"fmt"

	"github.com/ThomasRoosli/Weather4UN-global-impact-estimates/internal/geo"
)

// OpKind identifies a morphological smoothing operation.
type OpKind int

const (
	Erosion OpKind = iota
	Dilation
	MedianFilter
)

func (k OpKind) String() string {
	switch k {
	case Erosion:
		return "erosion"
	case Dilation:
		return "dilation"
	case MedianFilter:
		return "median_filter"
	default:
		return fmt.Sprintf("OpKind(%d)", int(k))
	}
}

// MorphOp is one smoothing operation with its size parameter.
type MorphOp struct {
	Kind OpKind
	Size int
}

// SmoothParams is the parameter contract of the external raster smoothing
// collaborator. Levels and operations are passed through exactly as
// configured.
type SmoothParams struct {
	// Levels are the warn levels; the second entry is the minimum
	// probability to be considered part of the warning region.
	Levels [2]float64
	// Operations are applied in order.
	Operations []MorphOp
	// GradualDecrease requests gradually decreasing warn regions.
	GradualDecrease bool
	// SmallRegionThreshold removes connected regions smaller than this
	// number of cells.
	SmallRegionThreshold int
}

// Smoother is the external raster smoothing collaborator. It must return a
// grid of the same shape containing only 0 and 1 values.
type Smoother interface {
	Smooth(values [][]float64, coordinates []geo.ArcPoint, params SmoothParams) ([][]float64, error)
}

// ThresholdSmoother is a reference Smoother that applies only the warn
// level: cells at or above Levels[1] become 1, everything else 0. It
// performs none of the morphological operations and exists so the pipeline
// has a working default without the external collaborator.
type ThresholdSmoother struct{}

// Smooth implements Smoother.
func (ThresholdSmoother) Smooth(values [][]float64, _ []geo.ArcPoint, params SmoothParams) ([][]float64, error) {
	threshold := params.Levels[1]
	result := make([][]float64, len(values))
	for r, row := range values {
		result[r] = make([]float64, len(row))
		for c, v := range row {
			if v >= threshold && v > 0 {
				result[r][c] = 1
			}
		}
	}
	return result, nil
}
