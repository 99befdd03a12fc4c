package imaging

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
)

// Circle is an ROI outline to burn into a snapshot, in pixel coordinates.
type Circle struct {
	CenterRow float64
	CenterCol float64
	Radius    float64
	Label     string
}

// Snapshot renders the grid as an 8-bit grayscale image with the given
// window/level applied, burns the circle outlines in white, and scales the
// result so its longer edge is maxDim pixels (no scaling when maxDim <= 0
// or the image is already smaller).
func Snapshot(g *Grid, circles []Circle, window, level float64, maxDim int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, g.Cols(), g.Rows()))

	for r := 0; r < g.Rows(); r++ {
		for c := 0; c < g.Cols(); c++ {
			v := uint8(255 * applyWindowScaling(g.At(r, c), level, window))
			img.Set(c, r, color.RGBA{v, v, v, 255})
		}
	}

	for _, circ := range circles {
		drawCircleOutline(img, circ)
	}

	if maxDim <= 0 || (g.Cols() <= maxDim && g.Rows() <= maxDim) {
		return img
	}

	scale := float64(maxDim) / float64(max(g.Cols(), g.Rows()))
	dst := image.NewRGBA(image.Rect(0, 0,
		int(float64(g.Cols())*scale), int(float64(g.Rows())*scale)))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// applyWindowScaling maps an intensity onto [0, 1] using the DICOM VOI
// window function (PS3.3 C.11.2.1.2).
func applyWindowScaling(intensity, center, width float64) float64 {
	if width <= 0 {
		return 0
	}
	switch {
	case intensity <= center-0.5-(width-1)/2:
		return 0
	case intensity > center-0.5+(width-1)/2:
		return 1
	default:
		return (intensity-(center-0.5))/(width-1) + 0.5
	}
}

// drawCircleOutline rasterizes a one-pixel-wide white ring. Pixels whose
// center lies within half a pixel of the circle boundary are set.
func drawCircleOutline(img *image.RGBA, c Circle) {
	b := img.Bounds()
	rMin := int(math.Floor(c.CenterRow - c.Radius - 1))
	rMax := int(math.Ceil(c.CenterRow + c.Radius + 1))
	cMin := int(math.Floor(c.CenterCol - c.Radius - 1))
	cMax := int(math.Ceil(c.CenterCol + c.Radius + 1))

	for r := rMin; r <= rMax; r++ {
		for col := cMin; col <= cMax; col++ {
			if r < b.Min.Y || r >= b.Max.Y || col < b.Min.X || col >= b.Max.X {
				continue
			}
			dr := float64(r) + 0.5 - c.CenterRow
			dc := float64(col) + 0.5 - c.CenterCol
			if math.Abs(math.Hypot(dr, dc)-c.Radius) <= 0.5 {
				img.Set(col, r, color.RGBA{255, 255, 255, 255})
			}
		}
	}
}
