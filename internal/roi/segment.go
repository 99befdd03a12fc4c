// Package roi implements circular regions of interest on image slices:
// the ROI entity itself, liver segment labeling, pixel statistics, and the
// store that owns ROIs per slice.
package roi

import (
	"fmt"
	"strings"
)

// Scheme identifies the liver segmentation scheme a label belongs to.
// Labels are only meaningful within their scheme, so the two are carried
// together as a tagged pair.
type Scheme int

const (
	// SchemeNineSegment is the Couinaud-style scheme with segment 4 split
	// into 4a and 4b.
	SchemeNineSegment Scheme = iota
	// SchemeFourSegment is the coarse four-territory scheme.
	SchemeFourSegment
)

// String returns the persisted name of the scheme.
func (s Scheme) String() string {
	switch s {
	case SchemeFourSegment:
		return "4-segment"
	default:
		return "9-segment"
	}
}

// SegmentCount returns the number of valid segment numbers in the scheme.
func (s Scheme) SegmentCount() int {
	if s == SchemeFourSegment {
		return 4
	}
	return 9
}

// ParseScheme parses a scheme name. Both the full form ("9-segment") and
// the short form ("9") are accepted.
func ParseScheme(v string) (Scheme, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "9-segment", "9":
		return SchemeNineSegment, nil
	case "4-segment", "4":
		return SchemeFourSegment, nil
	default:
		return SchemeNineSegment, fmt.Errorf("invalid segmentation scheme: %s (valid: 9-segment, 4-segment)", v)
	}
}

// nineSegmentLabels maps segment numbers 1..9 to their display labels.
// Segment 4 is split into 4a and 4b, giving nine labels over eight
// Couinaud territories.
var nineSegmentLabels = []string{"1", "2", "3", "4a", "4b", "5", "6", "7", "8"}

// Segment is a liver segment label tagged with its scheme. The zero value
// is not valid; use NewSegment.
type Segment struct {
	Scheme Scheme
	Number int // 1-based within the scheme
}

// NewSegment validates the segment number against the scheme.
func NewSegment(scheme Scheme, number int) (Segment, error) {
	if number < 1 || number > scheme.SegmentCount() {
		return Segment{}, fmt.Errorf("segment number %d out of range for %s scheme (1-%d)",
			number, scheme, scheme.SegmentCount())
	}
	return Segment{Scheme: scheme, Number: number}, nil
}

// Label returns the display label of the segment, e.g. "4a" in the
// nine-segment scheme or "3" in the four-segment scheme.
func (s Segment) Label() string {
	if s.Scheme == SchemeNineSegment && s.Number >= 1 && s.Number <= len(nineSegmentLabels) {
		return nineSegmentLabels[s.Number-1]
	}
	return fmt.Sprintf("%d", s.Number)
}

// String returns the label qualified by its scheme.
func (s Segment) String() string {
	return fmt.Sprintf("%s/%s", s.Scheme, s.Label())
}
