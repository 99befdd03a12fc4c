package roi

import (
	"fmt"
	"math"

	"github.com/gofrs/uuid"

	"github.com/mrsinham/liverroi/internal/geometry"
	"github.com/mrsinham/liverroi/internal/imaging"
)

// SliceKey identifies the slice an ROI belongs to: the owning series plus
// the slice's ordinal within the ordered stack.
type SliceKey struct {
	SeriesUID string
	Ordinal   int
}

// String returns a compact series/ordinal form for logs and export.
func (k SliceKey) String() string {
	return fmt.Sprintf("%s#%d", k.SeriesUID, k.Ordinal)
}

// ROI is a circular region of interest on a single slice. ROIs are created
// by user interaction or by cross-series transfer, and mutated only through
// TranslatedTo, which re-validates the invariants.
type ROI struct {
	ID      string
	Key     SliceKey
	Center  geometry.Pixel // fractional pixel coordinates
	Radius  float64        // pixels, > 0
	Segment Segment
}

// New creates a validated ROI on the slice described by key and grid. The
// radius must be positive and the circle must overlap the pixel-array
// bounds; anything else is ErrInvalidROI. An ROI that overlaps the array but
// covers no pixel center is legal: it samples to an empty result.
func New(key SliceKey, center geometry.Pixel, radius float64, segment Segment, g *imaging.Grid) (*ROI, error) {
	if err := validate(center, radius, g); err != nil {
		return nil, err
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("generate ROI id: %w", err)
	}

	return &ROI{
		ID:      id.String(),
		Key:     key,
		Center:  center,
		Radius:  radius,
		Segment: segment,
	}, nil
}

// TranslatedTo returns a copy of the ROI moved and resized to the given
// center and radius, keeping its identity, slice, and segment. The new
// geometry is validated against the same grid invariants as creation.
func (r *ROI) TranslatedTo(center geometry.Pixel, radius float64, g *imaging.Grid) (*ROI, error) {
	if err := validate(center, radius, g); err != nil {
		return nil, err
	}
	moved := *r
	moved.Center = center
	moved.Radius = radius
	return &moved, nil
}

// SamplePixels returns the samples of every pixel whose center lies inside
// the circle, in row-major order. A pixel at integer (r, c) is included iff
// the distance from (r+0.5, c+0.5) to the ROI center is <= the radius.
// Pixels outside the array are excluded, not clamped; an ROI entirely
// outside the array yields an empty slice, never an error.
func (r *ROI) SamplePixels(g *imaging.Grid) []float64 {
	rMin := int(math.Floor(r.Center.Row - r.Radius))
	rMax := int(math.Ceil(r.Center.Row + r.Radius))
	cMin := int(math.Floor(r.Center.Col - r.Radius))
	cMax := int(math.Ceil(r.Center.Col + r.Radius))

	rMin = max(rMin, 0)
	cMin = max(cMin, 0)
	rMax = min(rMax, g.Rows()-1)
	cMax = min(cMax, g.Cols()-1)

	var samples []float64
	radius2 := r.Radius * r.Radius
	for row := rMin; row <= rMax; row++ {
		for col := cMin; col <= cMax; col++ {
			dr := float64(row) + 0.5 - r.Center.Row
			dc := float64(col) + 0.5 - r.Center.Col
			if dr*dr+dc*dc <= radius2 {
				samples = append(samples, g.At(row, col))
			}
		}
	}
	return samples
}

// validate enforces the creation invariants: positive radius and a circle
// that overlaps the pixel-array rectangle.
func validate(center geometry.Pixel, radius float64, g *imaging.Grid) error {
	if radius <= 0 || math.IsNaN(radius) || math.IsInf(radius, 0) {
		return fmt.Errorf("%w: radius must be > 0, got %v", ErrInvalidROI, radius)
	}
	if math.IsNaN(center.Row) || math.IsNaN(center.Col) {
		return fmt.Errorf("%w: center is not a number", ErrInvalidROI)
	}

	// Distance from the circle center to the closest point of the array
	// rectangle; zero when the center lies inside.
	dr := math.Max(math.Max(0-center.Row, 0), center.Row-float64(g.Rows()))
	dc := math.Max(math.Max(0-center.Col, 0), center.Col-float64(g.Cols()))
	if math.Hypot(dr, dc) > radius {
		return fmt.Errorf("%w: circle at (%.2f, %.2f) r=%.2f does not overlap %dx%d array",
			ErrInvalidROI, center.Row, center.Col, radius, g.Rows(), g.Cols())
	}
	return nil
}
