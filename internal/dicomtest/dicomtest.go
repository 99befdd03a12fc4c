// Package dicomtest writes small synthetic DICOM series to disk for tests
// and for the e2e suite. The datasets carry exactly the spatial tags the
// loader consumes.
package dicomtest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/frame"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// SeriesSpec describes the synthetic series to write.
type SeriesSpec struct {
	SeriesUID           string
	FrameOfReferenceUID string
	Description         string

	NumSlices  int
	Rows, Cols int

	// Patient-space layout. Orientation is the six-value
	// ImageOrientationPatient; Origin positions slice 0, and consecutive
	// slices step along the orientation normal by SpacingBetweenSlices.
	Origin               [3]float64
	Orientation          [6]float64
	RowSpacing           float64
	ColSpacing           float64
	SliceThickness       float64
	SpacingBetweenSlices float64

	WindowCenter float64
	WindowWidth  float64

	// PixelFn supplies the sample for each pixel. Nil writes a flat ramp
	// so every slice differs.
	PixelFn func(slice, row, col int) uint16
}

// applyDefaults fills a spec's zero fields with a usable axial layout.
func (s *SeriesSpec) applyDefaults() {
	if s.SeriesUID == "" {
		s.SeriesUID = "1.2.826.0.1.3680043.9999.1"
	}
	if s.NumSlices == 0 {
		s.NumSlices = 5
	}
	if s.Rows == 0 {
		s.Rows = 32
	}
	if s.Cols == 0 {
		s.Cols = 32
	}
	if s.Orientation == ([6]float64{}) {
		s.Orientation = [6]float64{1, 0, 0, 0, 1, 0}
	}
	if s.RowSpacing == 0 {
		s.RowSpacing = 1
	}
	if s.ColSpacing == 0 {
		s.ColSpacing = 1
	}
	if s.SliceThickness == 0 {
		s.SliceThickness = 2
	}
	if s.SpacingBetweenSlices == 0 {
		s.SpacingBetweenSlices = s.SliceThickness
	}
	if s.WindowWidth == 0 {
		s.WindowCenter, s.WindowWidth = 500, 1000
	}
	if s.PixelFn == nil {
		s.PixelFn = func(slice, row, col int) uint16 {
			return uint16(100*slice + row + col)
		}
	}
}

// WriteSeries writes the series into dir, one .dcm file per slice.
func WriteSeries(dir string, spec SeriesSpec) error {
	spec.applyDefaults()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create series directory: %w", err)
	}

	// Slices step along rowDir x colDir (second triplet cross first), the
	// same normal the series index orders by, so ordinals follow instance
	// numbers.
	o := spec.Orientation
	normal := [3]float64{
		o[4]*o[2] - o[5]*o[1],
		o[5]*o[0] - o[3]*o[2],
		o[3]*o[1] - o[4]*o[0],
	}

	for i := 0; i < spec.NumSlices; i++ {
		step := float64(i) * spec.SpacingBetweenSlices
		position := []string{
			fmt.Sprintf("%.6f", spec.Origin[0]+step*normal[0]),
			fmt.Sprintf("%.6f", spec.Origin[1]+step*normal[1]),
			fmt.Sprintf("%.6f", spec.Origin[2]+step*normal[2]),
		}
		orientation := make([]string, 6)
		for j, v := range spec.Orientation {
			orientation[j] = fmt.Sprintf("%.6f", v)
		}

		pixelsPerFrame := spec.Rows * spec.Cols
		nativeFrame := frame.NewNativeFrame[uint16](16, spec.Rows, spec.Cols, pixelsPerFrame, 1)
		for r := 0; r < spec.Rows; r++ {
			for c := 0; c < spec.Cols; c++ {
				nativeFrame.RawData[r*spec.Cols+c] = spec.PixelFn(i, r, c)
			}
		}
		pixelDataInfo := dicom.PixelDataInfo{
			Frames: []*frame.Frame{{Encapsulated: false, NativeData: nativeFrame}},
		}

		elements := []*dicom.Element{
			mustNewElement(tag.TransferSyntaxUID, []string{"1.2.840.10008.1.2.1"}),
			mustNewElement(tag.SOPClassUID, []string{"1.2.840.10008.5.1.4.1.1.4"}),
			mustNewElement(tag.SOPInstanceUID, []string{fmt.Sprintf("%s.%d", spec.SeriesUID, i+1)}),
			mustNewElement(tag.SeriesInstanceUID, []string{spec.SeriesUID}),
			mustNewElement(tag.SeriesDescription, []string{spec.Description}),
			mustNewElement(tag.InstanceNumber, []string{fmt.Sprintf("%d", i+1)}),
			mustNewElement(tag.Modality, []string{"MR"}),
			mustNewElement(tag.PixelSpacing, []string{
				fmt.Sprintf("%.6f", spec.RowSpacing),
				fmt.Sprintf("%.6f", spec.ColSpacing),
			}),
			mustNewElement(tag.SliceThickness, []string{fmt.Sprintf("%.6f", spec.SliceThickness)}),
			mustNewElement(tag.SpacingBetweenSlices, []string{fmt.Sprintf("%.6f", spec.SpacingBetweenSlices)}),
			mustNewElement(tag.ImagePositionPatient, position),
			mustNewElement(tag.ImageOrientationPatient, orientation),
			mustNewElement(tag.WindowCenter, []string{fmt.Sprintf("%.1f", spec.WindowCenter)}),
			mustNewElement(tag.WindowWidth, []string{fmt.Sprintf("%.1f", spec.WindowWidth)}),
			mustNewElement(tag.Rows, []int{spec.Rows}),
			mustNewElement(tag.Columns, []int{spec.Cols}),
			mustNewElement(tag.BitsAllocated, []int{16}),
			mustNewElement(tag.BitsStored, []int{16}),
			mustNewElement(tag.HighBit, []int{15}),
			mustNewElement(tag.PixelRepresentation, []int{0}),
			mustNewElement(tag.SamplesPerPixel, []int{1}),
			mustNewElement(tag.PhotometricInterpretation, []string{"MONOCHROME2"}),
			mustNewElement(tag.PixelData, pixelDataInfo),
		}
		if spec.FrameOfReferenceUID != "" {
			elements = append(elements, mustNewElement(tag.FrameOfReferenceUID, []string{spec.FrameOfReferenceUID}))
		}

		path := filepath.Join(dir, fmt.Sprintf("slice_%03d.dcm", i+1))
		if err := writeDatasetToFile(path, dicom.Dataset{Elements: elements}); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	return nil
}

func writeDatasetToFile(filename string, ds dicom.Dataset, opts ...dicom.WriteOption) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	return dicom.Write(f, ds, opts...)
}

func mustNewElement(t tag.Tag, value interface{}) *dicom.Element {
	elem, err := dicom.NewElement(t, value)
	if err != nil {
		panic(fmt.Sprintf("failed to create element %v: %v", t, err))
	}
	return elem
}
