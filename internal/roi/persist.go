package roi

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mrsinham/liverroi/internal/geometry"
)

// storeFormatVersion is bumped on incompatible changes to the file layout.
const storeFormatVersion = 1

// storeDocument is the on-disk shape of a Store. The scheme is recorded in
// the header so a mismatching load can be rejected before any record is
// interpreted.
type storeDocument struct {
	Version int         `json:"version"`
	Scheme  string      `json:"scheme"`
	ROIs    []roiRecord `json:"rois"`
}

type roiRecord struct {
	ID        string  `json:"id"`
	SeriesUID string  `json:"seriesUID"`
	Ordinal   int     `json:"ordinal"`
	CenterRow float64 `json:"centerRow"`
	CenterCol float64 `json:"centerCol"`
	Radius    float64 `json:"radius"`
	Segment   int     `json:"segment"`
}

// Save writes the full store to path. Records appear per slice in key
// order, preserving insertion order within each slice, so saved files are
// deterministic for a given store state.
func (s *Store) Save(path string) error {
	doc := storeDocument{
		Version: storeFormatVersion,
		Scheme:  s.scheme.String(),
	}
	for _, key := range s.Keys() {
		for _, r := range s.rois[key] {
			doc.ROIs = append(doc.ROIs, roiRecord{
				ID:        r.ID,
				SeriesUID: r.Key.SeriesUID,
				Ordinal:   r.Key.Ordinal,
				CenterRow: r.Center.Row,
				CenterCol: r.Center.Col,
				Radius:    r.Radius,
				Segment:   r.Segment.Number,
			})
		}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ROI store: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write ROI store: %w", err)
	}
	return nil
}

// Load replaces the store contents with the records from path. Structural
// problems surface as ErrCorruptStore and a scheme differing from the
// store's active scheme as ErrSchemeMismatch; in both cases the current
// contents are left untouched.
func (s *Store) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read ROI store: %w", err)
	}

	var doc storeDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptStore, err)
	}
	if doc.Version != storeFormatVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrCorruptStore, doc.Version)
	}

	scheme, err := ParseScheme(doc.Scheme)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptStore, err)
	}
	if scheme != s.scheme {
		return fmt.Errorf("%w: file written under %s, active scheme is %s",
			ErrSchemeMismatch, scheme, s.scheme)
	}

	// Build the replacement mapping fully before committing, so a bad
	// record aborts the load with the store unchanged.
	loaded := make(map[SliceKey][]*ROI, len(doc.ROIs))
	for i, rec := range doc.ROIs {
		segment, err := NewSegment(scheme, rec.Segment)
		if err != nil {
			return fmt.Errorf("%w: record %d: %v", ErrCorruptStore, i, err)
		}
		if rec.Radius <= 0 {
			return fmt.Errorf("%w: record %d: radius %v", ErrCorruptStore, i, rec.Radius)
		}
		if rec.ID == "" || rec.SeriesUID == "" {
			return fmt.Errorf("%w: record %d: missing identity", ErrCorruptStore, i)
		}
		key := SliceKey{SeriesUID: rec.SeriesUID, Ordinal: rec.Ordinal}
		loaded[key] = append(loaded[key], &ROI{
			ID:      rec.ID,
			Key:     key,
			Center:  geometry.Pixel{Row: rec.CenterRow, Col: rec.CenterCol},
			Radius:  rec.Radius,
			Segment: segment,
		})
	}

	s.rois = loaded
	return nil
}
