package roi

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mrsinham/liverroi/internal/geometry"
)

func mustROI(t *testing.T, store *Store, key SliceKey, segment int) *ROI {
	t.Helper()
	g := testGrid(t, 64, 64)
	seg, err := NewSegment(store.Scheme(), segment)
	if err != nil {
		t.Fatalf("NewSegment failed: %v", err)
	}
	r, err := New(key, geometry.Pixel{Row: 32, Col: 32}, 5, seg, g)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := store.Add(r); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	return r
}

func TestStore_AddReplacesSameSegment(t *testing.T) {
	store := NewStore(SchemeNineSegment)
	key0 := SliceKey{SeriesUID: "s", Ordinal: 0}
	key1 := SliceKey{SeriesUID: "s", Ordinal: 1}

	first := mustROI(t, store, key0, 3)
	// Same segment drawn again, even on another slice, replaces the first.
	second := mustROI(t, store, key1, 3)

	if store.Len() != 1 {
		t.Fatalf("Len = %d, want 1 (same segment replaces)", store.Len())
	}
	if len(store.ListFor(key0)) != 0 {
		t.Error("replaced ROI still listed on its slice")
	}
	got := store.ListFor(key1)
	if len(got) != 1 || got[0].ID != second.ID {
		t.Errorf("slice 1 = %v, want the replacement ROI", got)
	}
	if store.Remove(first.ID) {
		t.Error("replaced ROI should no longer be removable")
	}
}

func TestStore_SchemeMismatchOnAdd(t *testing.T) {
	store := NewStore(SchemeFourSegment)
	g := testGrid(t, 64, 64)
	seg, err := NewSegment(SchemeNineSegment, 2)
	if err != nil {
		t.Fatalf("NewSegment failed: %v", err)
	}
	r, err := New(SliceKey{SeriesUID: "s", Ordinal: 0}, geometry.Pixel{Row: 32, Col: 32}, 5, seg, g)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := store.Add(r); !errors.Is(err, ErrSchemeMismatch) {
		t.Errorf("expected ErrSchemeMismatch, got %v", err)
	}
}

func TestStore_InsertionOrder(t *testing.T) {
	store := NewStore(SchemeNineSegment)
	key := SliceKey{SeriesUID: "s", Ordinal: 4}

	a := mustROI(t, store, key, 1)
	b := mustROI(t, store, key, 2)
	c := mustROI(t, store, key, 3)

	got := store.ListFor(key)
	if len(got) != 3 || got[0].ID != a.ID || got[1].ID != b.ID || got[2].ID != c.ID {
		t.Errorf("ListFor order does not match insertion order")
	}
}

func TestStore_RemoveLastOn(t *testing.T) {
	store := NewStore(SchemeNineSegment)
	key := SliceKey{SeriesUID: "s", Ordinal: 0}

	a := mustROI(t, store, key, 1)
	b := mustROI(t, store, key, 2)

	if !store.RemoveLastOn(key) {
		t.Fatal("RemoveLastOn should succeed")
	}
	got := store.ListFor(key)
	if len(got) != 1 || got[0].ID != a.ID {
		t.Errorf("expected only the first ROI to remain, got %d", len(got))
	}
	_ = b

	if store.RemoveLastOn(SliceKey{SeriesUID: "s", Ordinal: 9}) {
		t.Error("RemoveLastOn on an empty slice should return false")
	}
}

func TestStore_ClearOperations(t *testing.T) {
	store := NewStore(SchemeNineSegment)
	key0 := SliceKey{SeriesUID: "s", Ordinal: 0}
	key1 := SliceKey{SeriesUID: "s", Ordinal: 1}

	mustROI(t, store, key0, 1)
	mustROI(t, store, key0, 2)
	mustROI(t, store, key1, 3)

	if n := store.ClearSlice(key0); n != 2 {
		t.Errorf("ClearSlice = %d, want 2", n)
	}
	if store.Len() != 1 {
		t.Errorf("Len after ClearSlice = %d, want 1", store.Len())
	}

	store.ClearAll()
	if store.Len() != 0 {
		t.Errorf("Len after ClearAll = %d, want 0", store.Len())
	}
}

func TestStore_SetSchemeClears(t *testing.T) {
	store := NewStore(SchemeNineSegment)
	mustROI(t, store, SliceKey{SeriesUID: "s", Ordinal: 0}, 1)

	if store.SetScheme(SchemeNineSegment) {
		t.Error("setting the same scheme should be a no-op")
	}
	if store.Len() != 1 {
		t.Error("no-op scheme switch must not clear the store")
	}

	if !store.SetScheme(SchemeFourSegment) {
		t.Error("switching schemes should report a change")
	}
	if store.Len() != 0 {
		t.Error("scheme switch must clear the store: labels are not convertible")
	}
}

func TestStore_Update(t *testing.T) {
	store := NewStore(SchemeNineSegment)
	key := SliceKey{SeriesUID: "s", Ordinal: 0}
	r := mustROI(t, store, key, 1)

	moved, err := r.TranslatedTo(geometry.Pixel{Row: 10, Col: 10}, 4, testGrid(t, 64, 64))
	if err != nil {
		t.Fatalf("TranslatedTo failed: %v", err)
	}
	if err := store.Update(moved); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got := store.ListFor(key)
	if len(got) != 1 || got[0].Radius != 4 {
		t.Errorf("updated ROI not stored, got %+v", got)
	}

	stranger := *moved
	stranger.ID = "not-in-store"
	if err := store.Update(&stranger); err == nil {
		t.Error("Update of an unknown ROI should fail")
	}
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	store := NewStore(SchemeNineSegment)
	key0 := SliceKey{SeriesUID: "1.2.3", Ordinal: 0}
	key2 := SliceKey{SeriesUID: "1.2.3", Ordinal: 2}
	a := mustROI(t, store, key0, 1)
	b := mustROI(t, store, key2, 4)

	path := filepath.Join(t.TempDir(), "rois.json")
	if err := store.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded := NewStore(SchemeNineSegment)
	if err := loaded.Load(path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Len() != 2 {
		t.Fatalf("loaded %d ROIs, want 2", loaded.Len())
	}
	for _, want := range []*ROI{a, b} {
		got := loaded.ListFor(want.Key)
		if len(got) != 1 {
			t.Fatalf("slice %v: got %d ROIs, want 1", want.Key, len(got))
		}
		if *got[0] != *want {
			t.Errorf("round trip mismatch: got %+v, want %+v", *got[0], *want)
		}
	}
}

func TestStore_LoadCorrupt(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"not_json", "not json at all"},
		{"bad_version", `{"version": 99, "scheme": "9-segment", "rois": []}`},
		{"bad_scheme_name", `{"version": 1, "scheme": "12-segment", "rois": []}`},
		{"bad_segment", `{"version": 1, "scheme": "9-segment", "rois": [{"id": "x", "seriesUID": "s", "ordinal": 0, "centerRow": 1, "centerCol": 1, "radius": 2, "segment": 42}]}`},
		{"bad_radius", `{"version": 1, "scheme": "9-segment", "rois": [{"id": "x", "seriesUID": "s", "ordinal": 0, "centerRow": 1, "centerCol": 1, "radius": 0, "segment": 1}]}`},
		{"missing_identity", `{"version": 1, "scheme": "9-segment", "rois": [{"id": "", "seriesUID": "s", "ordinal": 0, "centerRow": 1, "centerCol": 1, "radius": 2, "segment": 1}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".json")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("write fixture: %v", err)
			}

			store := NewStore(SchemeNineSegment)
			existing := mustROI(t, store, SliceKey{SeriesUID: "keep", Ordinal: 0}, 2)

			if err := store.Load(path); !errors.Is(err, ErrCorruptStore) {
				t.Fatalf("expected ErrCorruptStore, got %v", err)
			}

			// The failed load must leave the store untouched.
			if store.Len() != 1 || len(store.ListFor(existing.Key)) != 1 {
				t.Error("failed load modified the store")
			}
		})
	}
}

func TestStore_LoadSchemeMismatch(t *testing.T) {
	nine := NewStore(SchemeNineSegment)
	mustROI(t, nine, SliceKey{SeriesUID: "s", Ordinal: 1}, 7)

	path := filepath.Join(t.TempDir(), "nine.json")
	if err := nine.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	four := NewStore(SchemeFourSegment)
	existing := mustROI(t, four, SliceKey{SeriesUID: "other", Ordinal: 0}, 2)

	if err := four.Load(path); !errors.Is(err, ErrSchemeMismatch) {
		t.Fatalf("expected ErrSchemeMismatch, got %v", err)
	}
	if four.Len() != 1 || len(four.ListFor(existing.Key)) != 1 {
		t.Error("rejected load modified the store")
	}
}
