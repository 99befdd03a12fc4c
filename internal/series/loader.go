package series

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/mrsinham/liverroi/internal/geometry"
	"github.com/mrsinham/liverroi/internal/imaging"
)

// LoadSeries reads every DICOM file (.dcm, case-insensitive) in dir and
// builds the series index. All files must belong to the same series; a file
// whose spatial metadata cannot form a frame fails the load with
// geometry.ErrInvalidMetadata wrapped in context.
func LoadSeries(dir string) (*Index, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read series directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".dcm") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no DICOM files in %s", ErrNoSlices, dir)
	}

	var (
		seriesUID string
		forUID    string
		desc      string
		slices    []*Slice
		winCenter float64
		winWidth  float64
	)

	for _, path := range files {
		ds, err := dicom.ParseFile(path, nil)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}

		uid, err := firstString(ds, tag.SeriesInstanceUID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if seriesUID == "" {
			seriesUID = uid
			// Optional: absent on some secondary captures.
			forUID, _ = firstString(ds, tag.FrameOfReferenceUID)
			desc, _ = firstString(ds, tag.SeriesDescription)
			// Window defaults come from the first slice that carries them.
			winCenter, winWidth = windowDefaults(ds)
		} else if uid != seriesUID {
			return nil, fmt.Errorf("mixed series in %s: %s and %s", dir, seriesUID, uid)
		}

		sl, err := loadSlice(ds)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		slices = append(slices, sl)
	}

	idx := NewIndex(seriesUID, forUID, slices)
	idx.Description = desc
	idx.WindowCenter, idx.WindowWidth = winCenter, winWidth
	return idx, nil
}

// loadSlice extracts the spatial frame and pixel grid of one dataset.
func loadSlice(ds dicom.Dataset) (*Slice, error) {
	position, err := floatStrings(ds, tag.ImagePositionPatient, 3)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", geometry.ErrInvalidMetadata, err)
	}
	orientation, err := floatStrings(ds, tag.ImageOrientationPatient, 6)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", geometry.ErrInvalidMetadata, err)
	}
	spacing, err := floatStrings(ds, tag.PixelSpacing, 2)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", geometry.ErrInvalidMetadata, err)
	}

	thickness, err := firstFloat(ds, tag.SliceThickness)
	if err != nil {
		// SpacingBetweenSlices is an acceptable stand-in when
		// SliceThickness is absent.
		thickness, err = firstFloat(ds, tag.SpacingBetweenSlices)
		if err != nil {
			return nil, fmt.Errorf("%w: no slice thickness", geometry.ErrInvalidMetadata)
		}
	}

	origin := r3.Vec{X: position[0], Y: position[1], Z: position[2]}
	// ImageOrientationPatient: the first triplet runs along increasing
	// column index, the second along increasing row index.
	colDir := r3.Vec{X: orientation[0], Y: orientation[1], Z: orientation[2]}
	rowDir := r3.Vec{X: orientation[3], Y: orientation[4], Z: orientation[5]}
	// PixelSpacing: first value is the spacing between rows.
	frame, err := geometry.NewFrame(origin, rowDir, colDir, spacing[0], spacing[1], thickness)
	if err != nil {
		return nil, err
	}

	grid, err := gridFromDataset(ds)
	if err != nil {
		return nil, err
	}

	instance := 0
	if s, err := firstString(ds, tag.InstanceNumber); err == nil {
		instance, _ = strconv.Atoi(strings.TrimSpace(s))
	}

	return &Slice{
		Frame:          frame,
		Image:          grid,
		InstanceNumber: instance,
	}, nil
}

// gridFromDataset converts the first native pixel frame to a float grid.
func gridFromDataset(ds dicom.Dataset) (*imaging.Grid, error) {
	el, err := ds.FindElementByTag(tag.PixelData)
	if err != nil {
		return nil, fmt.Errorf("no pixel data: %w", err)
	}
	info := dicom.MustGetPixelDataInfo(el.Value)
	if len(info.Frames) == 0 {
		return nil, fmt.Errorf("pixel data has no frames")
	}
	fr := info.Frames[0]
	if fr.Encapsulated {
		return nil, fmt.Errorf("encapsulated pixel data is not supported")
	}

	nf := fr.NativeData
	rows, cols := nf.Rows(), nf.Cols()

	var data []float64
	switch raw := nf.RawDataSlice().(type) {
	case []uint8:
		data = toFloats(raw)
	case []int8:
		data = toFloats(raw)
	case []uint16:
		data = toFloats(raw)
	case []int16:
		data = toFloats(raw)
	case []uint32:
		data = toFloats(raw)
	case []int32:
		data = toFloats(raw)
	case []int:
		data = toFloats(raw)
	default:
		return nil, fmt.Errorf("unsupported pixel sample type %T", raw)
	}

	return imaging.NewGrid(rows, cols, data)
}

func toFloats[T int8 | uint8 | int16 | uint16 | int32 | uint32 | int](raw []T) []float64 {
	out := make([]float64, len(raw))
	for i, v := range raw {
		out[i] = float64(v)
	}
	return out
}

// windowDefaults pulls WindowCenter/WindowWidth when present. Multi-valued
// windows collapse to their first entry.
func windowDefaults(ds dicom.Dataset) (center, width float64) {
	center, err := firstFloat(ds, tag.WindowCenter)
	if err != nil {
		return 0, 0
	}
	width, err = firstFloat(ds, tag.WindowWidth)
	if err != nil {
		return 0, 0
	}
	return center, width
}

func firstString(ds dicom.Dataset, t tag.Tag) (string, error) {
	vals, err := stringValues(ds, t)
	if err != nil {
		return "", err
	}
	if len(vals) == 0 {
		return "", fmt.Errorf("tag %v is empty", t)
	}
	return vals[0], nil
}

func firstFloat(ds dicom.Dataset, t tag.Tag) (float64, error) {
	s, err := firstString(ds, t)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("tag %v: %w", t, err)
	}
	return f, nil
}

// floatStrings reads a multi-valued decimal-string tag and requires an
// exact value count.
func floatStrings(ds dicom.Dataset, t tag.Tag, n int) ([]float64, error) {
	vals, err := stringValues(ds, t)
	if err != nil {
		return nil, err
	}
	if len(vals) != n {
		return nil, fmt.Errorf("tag %v: want %d values, got %d", t, n, len(vals))
	}
	out := make([]float64, n)
	for i, s := range vals {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, fmt.Errorf("tag %v: %w", t, err)
		}
		out[i] = f
	}
	return out, nil
}

func stringValues(ds dicom.Dataset, t tag.Tag) ([]string, error) {
	el, err := ds.FindElementByTag(t)
	if err != nil {
		return nil, fmt.Errorf("tag %v not found", t)
	}
	vals, ok := el.Value.GetValue().([]string)
	if !ok {
		return nil, fmt.Errorf("tag %v: unexpected value type %T", t, el.Value.GetValue())
	}
	return vals, nil
}
