package mapper

import (
	"errors"
	"fmt"
	"math"

	"github.com/mrsinham/liverroi/internal/geometry"
	"github.com/mrsinham/liverroi/internal/roi"
	"github.com/mrsinham/liverroi/internal/series"
)

// ErrOutOfPlane indicates that a registered transfer found no target slice
// within half a slice thickness of the ROI's anatomical position. Reported
// per ROI; it never aborts a batch.
var ErrOutOfPlane = errors.New("no target slice at the ROI's anatomical position")

// Mapper transfers one ROI from a source series to a target series,
// producing a new ROI on the target. Sources are never mutated.
type Mapper interface {
	Transfer(source *series.Index, r *roi.ROI, target *series.Index) (*roi.ROI, error)
}

// ForMode returns the mapper implementing the given mode.
func ForMode(m Mode) Mapper {
	if m == ModeUnregistered {
		return Unregistered{}
	}
	return Registered{}
}

// SameFrameOfReference reports whether two series share a patient
// coordinate frame, which is what makes registered transfer valid. Either
// UID missing means no shared frame can be assumed.
func SameFrameOfReference(a, b *series.Index) bool {
	return a.FrameOfReferenceUID != "" && a.FrameOfReferenceUID == b.FrameOfReferenceUID
}

// Registered transfers through shared patient space: the ROI center is
// lifted to patient coordinates on its source slice, dropped onto the
// nearest target slice, and re-projected into that slice's pixel grid.
type Registered struct{}

// Transfer maps one ROI exactly. The pixel radius converts to millimeters
// through the source slice's average in-plane spacing and back through the
// target's; circular ROIs are treated as isotropic in-plane (see
// geometry.Frame.InPlaneSpacing). The transfer fails with ErrOutOfPlane
// when the nearest target plane is further away than half that slice's
// thickness.
func (Registered) Transfer(source *series.Index, r *roi.ROI, target *series.Index) (*roi.ROI, error) {
	src, err := source.Slice(r.Key.Ordinal)
	if err != nil {
		return nil, err
	}

	patientCenter := src.Frame.ToPatient(r.Center)
	patientRadius := r.Radius * src.Frame.InPlaneSpacing()

	tgt, err := target.NearestSlice(patientCenter)
	if err != nil {
		return nil, err
	}

	if d := tgt.Frame.PlaneDistance(patientCenter); d > tgt.Frame.SliceThickness/2 {
		return nil, fmt.Errorf("%w: %.2fmm from slice %d (thickness %.2fmm)",
			ErrOutOfPlane, d, tgt.Key.Ordinal, tgt.Frame.SliceThickness)
	}

	center, _ := tgt.Frame.ToPixel(patientCenter)
	radius := patientRadius / tgt.Frame.InPlaneSpacing()

	return roi.New(tgt.Key, center, radius, r.Segment, tgt.Image)
}

// Unregistered transfers by relative anatomical position: the source
// slice's ordinal as a fraction of its stack picks the target ordinal, and
// the in-plane position re-projects through the pixel spacing ratio of the
// two series. Best effort only; without a shared frame no plane-distance
// rejection is possible. Assumes the two series cover the same body region
// in the same slice order.
type Unregistered struct{}

// Transfer maps one ROI approximately.
func (Unregistered) Transfer(source *series.Index, r *roi.ROI, target *series.Index) (*roi.ROI, error) {
	src, err := source.Slice(r.Key.Ordinal)
	if err != nil {
		return nil, err
	}
	if target.Len() == 0 {
		return nil, series.ErrNoSlices
	}

	// 0.0 = first slice, 1.0 = last; a single-slice stack sits at 0.
	fraction := 0.0
	if source.Len() > 1 {
		fraction = float64(r.Key.Ordinal) / float64(source.Len()-1)
	}
	// Round to the nearest target ordinal, .5 ties toward the lower one.
	ordinal := int(math.Ceil(fraction*float64(target.Len()-1) - 0.5))

	tgt, err := target.Slice(ordinal)
	if err != nil {
		return nil, err
	}

	// Spacing may differ between axes, so each axis re-projects with its
	// own ratio.
	center := geometry.Pixel{
		Row: r.Center.Row * src.Frame.RowSpacing / tgt.Frame.RowSpacing,
		Col: r.Center.Col * src.Frame.ColSpacing / tgt.Frame.ColSpacing,
	}
	radius := r.Radius * src.Frame.InPlaneSpacing() / tgt.Frame.InPlaneSpacing()

	return roi.New(tgt.Key, center, radius, r.Segment, tgt.Image)
}
