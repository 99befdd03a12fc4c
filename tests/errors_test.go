package tests

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mrsinham/liverroi/internal/dicomtest"
	"github.com/mrsinham/liverroi/internal/geometry"
	"github.com/mrsinham/liverroi/internal/mapper"
	"github.com/mrsinham/liverroi/internal/roi"
	"github.com/mrsinham/liverroi/internal/series"
)

// TestLoadSeries_TruncatedFile verifies that one unreadable file fails the
// whole load instead of silently dropping a slice.
func TestLoadSeries_TruncatedFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "se1")
	if err := dicomtest.WriteSeries(dir, dicomtest.SeriesSpec{NumSlices: 3}); err != nil {
		t.Fatalf("WriteSeries failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "slice_999.dcm"), []byte("not dicom"), 0o644); err != nil {
		t.Fatalf("write bogus file: %v", err)
	}

	if _, err := series.LoadSeries(dir); err == nil {
		t.Fatal("LoadSeries should fail when a file cannot be parsed")
	}
}

// TestLoadSeries_MixedSeries verifies that files from two different series
// in one directory are rejected.
func TestLoadSeries_MixedSeries(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "se1")
	if err := dicomtest.WriteSeries(dir, dicomtest.SeriesSpec{SeriesUID: "1.2.1", NumSlices: 2}); err != nil {
		t.Fatalf("WriteSeries failed: %v", err)
	}
	other := filepath.Join(t.TempDir(), "se2")
	if err := dicomtest.WriteSeries(other, dicomtest.SeriesSpec{SeriesUID: "1.2.2", NumSlices: 1}); err != nil {
		t.Fatalf("WriteSeries failed: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(other, "slice_001.dcm"))
	if err != nil {
		t.Fatalf("read stray slice: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "stray.dcm"), data, 0o644); err != nil {
		t.Fatalf("plant stray slice: %v", err)
	}

	if _, err := series.LoadSeries(dir); err == nil {
		t.Fatal("LoadSeries should reject mixed series")
	}
}

// TestStoreLoad_CorruptFileLeavesStoreIntact verifies the all-or-nothing
// load guarantee at the file level.
func TestStoreLoad_CorruptFileLeavesStoreIntact(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "se1")
	if err := dicomtest.WriteSeries(dir, dicomtest.SeriesSpec{NumSlices: 2}); err != nil {
		t.Fatalf("WriteSeries failed: %v", err)
	}
	idx, err := series.LoadSeries(dir)
	if err != nil {
		t.Fatalf("LoadSeries failed: %v", err)
	}

	store := roi.NewStore(roi.SchemeNineSegment)
	sl, err := idx.Slice(0)
	if err != nil {
		t.Fatalf("Slice failed: %v", err)
	}
	seg, err := roi.NewSegment(roi.SchemeNineSegment, 1)
	if err != nil {
		t.Fatalf("NewSegment failed: %v", err)
	}
	r, err := roi.New(sl.Key, geometry.Pixel{Row: 16, Col: 16}, 3, seg, sl.Image)
	if err != nil {
		t.Fatalf("roi.New failed: %v", err)
	}
	if err := store.Add(r); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "rois.json")
	if err := os.WriteFile(path, []byte(`{"version": 99}`), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}
	if err := store.Load(path); !errors.Is(err, roi.ErrCorruptStore) {
		t.Fatalf("Load err = %v, want ErrCorruptStore", err)
	}
	if store.Len() != 1 {
		t.Errorf("failed load mutated the store: %d ROIs", store.Len())
	}
}

// TestTransfer_NoTargetCoverage verifies that a batch against a target stack
// that covers none of the annotated anatomy reports every ROI as failed and
// commits nothing.
func TestTransfer_NoTargetCoverage(t *testing.T) {
	root := t.TempDir()
	const forUID = "1.2.840.500.900"

	srcDir := filepath.Join(root, "src")
	if err := dicomtest.WriteSeries(srcDir, dicomtest.SeriesSpec{
		SeriesUID:           "1.2.1",
		FrameOfReferenceUID: forUID,
		NumSlices:           3,
	}); err != nil {
		t.Fatalf("WriteSeries source failed: %v", err)
	}
	tgtDir := filepath.Join(root, "tgt")
	if err := dicomtest.WriteSeries(tgtDir, dicomtest.SeriesSpec{
		SeriesUID:           "1.2.2",
		FrameOfReferenceUID: forUID,
		NumSlices:           3,
		Origin:              [3]float64{0, 0, 500},
	}); err != nil {
		t.Fatalf("WriteSeries target failed: %v", err)
	}

	source, err := series.LoadSeries(srcDir)
	if err != nil {
		t.Fatalf("LoadSeries source failed: %v", err)
	}
	target, err := series.LoadSeries(tgtDir)
	if err != nil {
		t.Fatalf("LoadSeries target failed: %v", err)
	}

	store := roi.NewStore(roi.SchemeNineSegment)
	for ordinal, segNum := range map[int]int{0: 1, 2: 2} {
		sl, err := source.Slice(ordinal)
		if err != nil {
			t.Fatalf("Slice failed: %v", err)
		}
		seg, err := roi.NewSegment(roi.SchemeNineSegment, segNum)
		if err != nil {
			t.Fatalf("NewSegment failed: %v", err)
		}
		r, err := roi.New(sl.Key, geometry.Pixel{Row: 16, Col: 16}, 3, seg, sl.Image)
		if err != nil {
			t.Fatalf("roi.New failed: %v", err)
		}
		if err := store.Add(r); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	targetStore := roi.NewStore(roi.SchemeNineSegment)
	result, err := mapper.TransferAll(context.Background(), mapper.Registered{}, source, store, target, targetStore)
	if err != nil {
		t.Fatalf("TransferAll failed: %v", err)
	}
	if len(result.Transferred) != 0 {
		t.Errorf("transferred %d ROIs, want 0", len(result.Transferred))
	}
	if len(result.Failures) != 2 {
		t.Fatalf("got %d failures, want 2", len(result.Failures))
	}
	for _, f := range result.Failures {
		if !errors.Is(f.Err, mapper.ErrOutOfPlane) {
			t.Errorf("failure err = %v, want ErrOutOfPlane", f.Err)
		}
	}
	if targetStore.Len() != 0 {
		t.Errorf("target store holds %d ROIs, want 0", targetStore.Len())
	}
}
