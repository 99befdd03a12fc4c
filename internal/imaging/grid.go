// Package imaging holds the in-memory pixel grid the ROI engine samples
// from, plus the overlay snapshot renderer.
package imaging

import "fmt"

// Grid is a dense 2-D grid of pixel samples in row-major order. Sample
// values are kept as float64 regardless of the stored DICOM bit depth so
// that signed and unsigned modalities share one statistics path.
type Grid struct {
	rows, cols int
	data       []float64
}

// NewGrid wraps row-major sample data. The data length must match the
// dimensions exactly.
func NewGrid(rows, cols int, data []float64) (*Grid, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("grid dimensions must be > 0, got %dx%d", rows, cols)
	}
	if len(data) != rows*cols {
		return nil, fmt.Errorf("grid data length %d does not match %dx%d", len(data), rows, cols)
	}
	return &Grid{rows: rows, cols: cols, data: data}, nil
}

// Rows returns the number of pixel rows.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the number of pixel columns.
func (g *Grid) Cols() int { return g.cols }

// At returns the sample at integer pixel (r, c). The caller must stay in
// bounds; use Inside to check.
func (g *Grid) At(r, c int) float64 {
	return g.data[r*g.cols+c]
}

// Inside reports whether (r, c) is a valid integer pixel coordinate.
func (g *Grid) Inside(r, c int) bool {
	return r >= 0 && r < g.rows && c >= 0 && c < g.cols
}
