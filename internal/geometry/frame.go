// Package geometry converts between pixel-index coordinates on a slice and
// the DICOM patient coordinate system (millimeters).
package geometry

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrInvalidMetadata indicates that a slice's spatial metadata cannot form a
// usable coordinate frame. The slice is unusable for spatial operations;
// other slices of the same series are unaffected.
var ErrInvalidMetadata = errors.New("invalid spatial metadata")

// orthoTolerance bounds how far the orientation vectors may deviate from
// unit length and from mutual perpendicularity.
const orthoTolerance = 1e-3

// Pixel is a fractional pixel-index coordinate on a slice. Row grows
// downward, Col grows rightward, matching DICOM row/column ordering.
type Pixel struct {
	Row float64
	Col float64
}

// Frame binds one slice to patient space. A Frame is constructed once from
// the slice's metadata and is immutable afterwards.
type Frame struct {
	Origin         r3.Vec  // patient-space position of pixel (0,0), mm
	RowDir         r3.Vec  // unit vector along increasing row index
	ColDir         r3.Vec  // unit vector along increasing column index
	Normal         r3.Vec  // RowDir x ColDir
	RowSpacing     float64 // mm between adjacent rows
	ColSpacing     float64 // mm between adjacent columns
	SliceThickness float64 // mm
}

// NewFrame validates the slice metadata and derives the slice normal.
// Orientation vectors must be finite and approximately orthonormal, and the
// spacings and thickness must be positive; anything else is ErrInvalidMetadata.
func NewFrame(origin, rowDir, colDir r3.Vec, rowSpacing, colSpacing, thickness float64) (Frame, error) {
	for _, v := range []r3.Vec{origin, rowDir, colDir} {
		if !finiteVec(v) {
			return Frame{}, fmt.Errorf("%w: non-finite orientation or position", ErrInvalidMetadata)
		}
	}
	if d := math.Abs(r3.Norm(rowDir) - 1); d > orthoTolerance {
		return Frame{}, fmt.Errorf("%w: row direction is not a unit vector (norm %.6f)", ErrInvalidMetadata, r3.Norm(rowDir))
	}
	if d := math.Abs(r3.Norm(colDir) - 1); d > orthoTolerance {
		return Frame{}, fmt.Errorf("%w: column direction is not a unit vector (norm %.6f)", ErrInvalidMetadata, r3.Norm(colDir))
	}
	if d := math.Abs(r3.Dot(rowDir, colDir)); d > orthoTolerance {
		return Frame{}, fmt.Errorf("%w: row and column directions are not perpendicular (dot %.6f)", ErrInvalidMetadata, r3.Dot(rowDir, colDir))
	}
	if rowSpacing <= 0 || colSpacing <= 0 || !isFinite(rowSpacing) || !isFinite(colSpacing) {
		return Frame{}, fmt.Errorf("%w: pixel spacing must be > 0 (row %.6f, col %.6f)", ErrInvalidMetadata, rowSpacing, colSpacing)
	}
	if thickness <= 0 || !isFinite(thickness) {
		return Frame{}, fmt.Errorf("%w: slice thickness must be > 0 (%.6f)", ErrInvalidMetadata, thickness)
	}

	return Frame{
		Origin:         origin,
		RowDir:         rowDir,
		ColDir:         colDir,
		Normal:         r3.Cross(rowDir, colDir),
		RowSpacing:     rowSpacing,
		ColSpacing:     colSpacing,
		SliceThickness: thickness,
	}, nil
}

// ToPatient maps a fractional pixel coordinate to patient space.
func (f Frame) ToPatient(p Pixel) r3.Vec {
	v := r3.Add(f.Origin, r3.Scale(p.Row*f.RowSpacing, f.RowDir))
	return r3.Add(v, r3.Scale(p.Col*f.ColSpacing, f.ColDir))
}

// ToPixel maps a patient-space point onto the slice plane and returns its
// fractional pixel coordinate together with the signed distance from the
// point to the plane along the slice normal. A non-zero distance means the
// point belongs to a different slice; deciding what to do with it is the
// caller's business, not an error of the frame.
func (f Frame) ToPixel(pt r3.Vec) (Pixel, float64) {
	d := r3.Sub(pt, f.Origin)
	p := Pixel{
		Row: r3.Dot(d, f.RowDir) / f.RowSpacing,
		Col: r3.Dot(d, f.ColDir) / f.ColSpacing,
	}
	return p, r3.Dot(d, f.Normal)
}

// PlaneDistance returns the absolute point-to-plane distance along the
// slice normal.
func (f Frame) PlaneDistance(pt r3.Vec) float64 {
	return math.Abs(r3.Dot(r3.Sub(pt, f.Origin), f.Normal))
}

// PlanePosition returns the position of the slice plane along its own
// normal, measured from the patient origin. Used to order slices in a stack.
func (f Frame) PlanePosition() float64 {
	return r3.Dot(f.Origin, f.Normal)
}

// InPlaneSpacing returns the average of the row and column spacings. Circular
// ROIs are treated as isotropic in-plane when converted to millimeters; this
// approximation matches the reference measurements the tool was validated
// against and is kept as documented behavior.
func (f Frame) InPlaneSpacing() float64 {
	return (f.RowSpacing + f.ColSpacing) / 2
}

func finiteVec(v r3.Vec) bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
