package roi

import (
	"fmt"
	"sort"
)

// Store owns the ROIs of a session, keyed by slice. Within a slice the
// insertion order is preserved; display and export rely on it. The store
// is mutated from a single interactive goroutine only.
type Store struct {
	scheme Scheme
	rois   map[SliceKey][]*ROI
}

// NewStore creates an empty store bound to a segmentation scheme.
func NewStore(scheme Scheme) *Store {
	return &Store{scheme: scheme, rois: make(map[SliceKey][]*ROI)}
}

// Scheme returns the active segmentation scheme.
func (s *Store) Scheme() Scheme { return s.scheme }

// SetScheme switches the active scheme. Labels are not convertible between
// schemes, so switching clears the store. Returns true when anything
// changed.
func (s *Store) SetScheme(scheme Scheme) bool {
	if scheme == s.scheme {
		return false
	}
	s.scheme = scheme
	s.rois = make(map[SliceKey][]*ROI)
	return true
}

// Add stores an ROI. Each segment carries at most one ROI across the whole
// store: an existing ROI with the same segment label is replaced, wherever
// it lives. The ROI's scheme must match the store's.
func (s *Store) Add(r *ROI) error {
	if r.Segment.Scheme != s.scheme {
		return fmt.Errorf("%w: ROI labeled under %s, store uses %s",
			ErrSchemeMismatch, r.Segment.Scheme, s.scheme)
	}

	for key, list := range s.rois {
		for i, existing := range list {
			if existing.Segment == r.Segment {
				s.removeAt(key, i)
				goto insert
			}
		}
	}

insert:
	s.rois[r.Key] = append(s.rois[r.Key], r)
	return nil
}

// Update replaces the stored ROI carrying the same ID.
func (s *Store) Update(r *ROI) error {
	for key, list := range s.rois {
		for i, existing := range list {
			if existing.ID == r.ID {
				if key == r.Key {
					list[i] = r
					return nil
				}
				// Moved to another slice: drop and re-append there.
				s.removeAt(key, i)
				s.rois[r.Key] = append(s.rois[r.Key], r)
				return nil
			}
		}
	}
	return fmt.Errorf("unknown ROI %s", r.ID)
}

// Remove deletes the ROI with the given ID. Returns false when absent.
func (s *Store) Remove(id string) bool {
	for key, list := range s.rois {
		for i, existing := range list {
			if existing.ID == id {
				s.removeAt(key, i)
				return true
			}
		}
	}
	return false
}

// RemoveLastOn deletes the most recently added ROI on the slice. Returns
// false when the slice has none.
func (s *Store) RemoveLastOn(key SliceKey) bool {
	list := s.rois[key]
	if len(list) == 0 {
		return false
	}
	s.removeAt(key, len(list)-1)
	return true
}

// ClearSlice deletes every ROI on the slice and returns how many went.
func (s *Store) ClearSlice(key SliceKey) int {
	n := len(s.rois[key])
	delete(s.rois, key)
	return n
}

// ClearAll empties the store.
func (s *Store) ClearAll() {
	s.rois = make(map[SliceKey][]*ROI)
}

// ListFor returns the ROIs on the slice in insertion order. The returned
// slice is a copy; the ROIs themselves are shared.
func (s *Store) ListFor(key SliceKey) []*ROI {
	list := s.rois[key]
	out := make([]*ROI, len(list))
	copy(out, list)
	return out
}

// Len returns the total number of stored ROIs.
func (s *Store) Len() int {
	n := 0
	for _, list := range s.rois {
		n += len(list)
	}
	return n
}

// Keys returns every slice key holding at least one ROI, ordered by series
// then ordinal for deterministic iteration.
func (s *Store) Keys() []SliceKey {
	keys := make([]SliceKey, 0, len(s.rois))
	for key := range s.rois {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].SeriesUID != keys[j].SeriesUID {
			return keys[i].SeriesUID < keys[j].SeriesUID
		}
		return keys[i].Ordinal < keys[j].Ordinal
	})
	return keys
}

func (s *Store) removeAt(key SliceKey, i int) {
	list := s.rois[key]
	list = append(list[:i], list[i+1:]...)
	if len(list) == 0 {
		delete(s.rois, key)
	} else {
		s.rois[key] = list
	}
}
