// Package series loads DICOM image series and answers spatial queries over
// their ordered slice stacks.
package series

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/mrsinham/liverroi/internal/geometry"
	"github.com/mrsinham/liverroi/internal/imaging"
	"github.com/mrsinham/liverroi/internal/roi"
)

// ErrNoSlices indicates a mapping request against a series with no usable
// slices.
var ErrNoSlices = errors.New("series has no slices")

// Slice is one image of a series: its spatial frame, its pixel grid, and
// its place in the stack. Read-only after the index is built.
type Slice struct {
	Key            roi.SliceKey
	Frame          geometry.Frame
	Image          *imaging.Grid
	InstanceNumber int
}

// Index is the ordered slice stack of one series. Slices are sorted by
// their plane position along the stack normal, with InstanceNumber breaking
// ties, and ordinals are assigned after sorting.
type Index struct {
	SeriesUID           string
	FrameOfReferenceUID string
	Description         string

	// Default display window pulled from the first slice, carried for the
	// export/snapshot layer.
	WindowCenter float64
	WindowWidth  float64

	slices []*Slice
}

// NewIndex orders the slices and assigns their ordinals.
func NewIndex(seriesUID, frameOfReferenceUID string, slices []*Slice) *Index {
	sort.SliceStable(slices, func(i, j int) bool {
		pi, pj := slices[i].Frame.PlanePosition(), slices[j].Frame.PlanePosition()
		if pi != pj {
			return pi < pj
		}
		return slices[i].InstanceNumber < slices[j].InstanceNumber
	})
	for i, s := range slices {
		s.Key = roi.SliceKey{SeriesUID: seriesUID, Ordinal: i}
	}
	return &Index{
		SeriesUID:           seriesUID,
		FrameOfReferenceUID: frameOfReferenceUID,
		slices:              slices,
	}
}

// Len returns the number of slices.
func (x *Index) Len() int { return len(x.slices) }

// Slices returns the ordered slice stack. The returned slice is shared and
// must be treated as read-only.
func (x *Index) Slices() []*Slice { return x.slices }

// Slice returns the slice at the given ordinal.
func (x *Index) Slice(ordinal int) (*Slice, error) {
	if len(x.slices) == 0 {
		return nil, ErrNoSlices
	}
	if ordinal < 0 || ordinal >= len(x.slices) {
		return nil, fmt.Errorf("slice ordinal %d out of range (series %s has %d slices)",
			ordinal, x.SeriesUID, len(x.slices))
	}
	return x.slices[ordinal], nil
}

// NearestSlice returns the slice whose plane is closest to the patient
// point, measured as point-to-plane distance along each slice's own normal.
// This handles irregular slice spacing correctly, unlike nearest-by-index.
// Equidistant candidates resolve to the lower ordinal.
func (x *Index) NearestSlice(pt r3.Vec) (*Slice, error) {
	if len(x.slices) == 0 {
		return nil, ErrNoSlices
	}

	best := x.slices[0]
	bestDist := best.Frame.PlaneDistance(pt)
	for _, s := range x.slices[1:] {
		// Strictly smaller keeps the lower ordinal on ties.
		if d := s.Frame.PlaneDistance(pt); d < bestDist {
			best, bestDist = s, d
		}
	}
	return best, nil
}
