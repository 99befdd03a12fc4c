package geometry

import "math"

// Orientation classifies a slice plane by the dominant axis of its normal.
type Orientation int

const (
	// OrientationSagittal means the normal is dominated by the patient X axis.
	OrientationSagittal Orientation = iota + 1
	// OrientationCoronal means the normal is dominated by the patient Y axis.
	OrientationCoronal
	// OrientationAxial means the normal is dominated by the patient Z axis.
	OrientationAxial
)

// String returns the anatomical plane name.
func (o Orientation) String() string {
	switch o {
	case OrientationSagittal:
		return "sagittal"
	case OrientationCoronal:
		return "coronal"
	case OrientationAxial:
		return "axial"
	default:
		return "unknown"
	}
}

// Orientation classifies the frame by the largest absolute component of its
// slice normal. Oblique planes are assigned to the nearest principal plane.
func (f Frame) Orientation() Orientation {
	ax, ay, az := math.Abs(f.Normal.X), math.Abs(f.Normal.Y), math.Abs(f.Normal.Z)
	switch {
	case ax >= ay && ax >= az:
		return OrientationSagittal
	case ay >= az:
		return OrientationCoronal
	default:
		return OrientationAxial
	}
}
