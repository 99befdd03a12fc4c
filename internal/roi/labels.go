package roi

import "fmt"

// SegmentByLabel resolves a display label (e.g. "4a") to a Segment within
// the given scheme. The lookup is exact; on failure the error suggests the
// closest known label when one is within edit distance 2.
func SegmentByLabel(scheme Scheme, label string) (Segment, error) {
	for n := 1; n <= scheme.SegmentCount(); n++ {
		s := Segment{Scheme: scheme, Number: n}
		if s.Label() == label {
			return s, nil
		}
	}

	if suggestion := closestLabel(scheme, label); suggestion != "" {
		return Segment{}, fmt.Errorf("unknown segment %q in %s scheme, did you mean %q?", label, scheme, suggestion)
	}
	return Segment{}, fmt.Errorf("unknown segment %q in %s scheme", label, scheme)
}

// closestLabel finds the nearest known label using Levenshtein distance.
// Returns empty string when nothing is within distance 2.
func closestLabel(scheme Scheme, input string) string {
	const maxDistance = 2
	bestDistance := maxDistance + 1
	var bestMatch string

	for n := 1; n <= scheme.SegmentCount(); n++ {
		label := (Segment{Scheme: scheme, Number: n}).Label()
		if d := levenshteinDistance(input, label); d < bestDistance {
			bestDistance = d
			bestMatch = label
		}
	}

	if bestDistance <= maxDistance {
		return bestMatch
	}
	return ""
}

// levenshteinDistance calculates the minimum number of single-character
// edits (insertions, deletions, or substitutions) required to change one
// string into the other.
func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	matrix := make([][]int, len(a)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(b)+1)
	}
	for i := 0; i <= len(a); i++ {
		matrix[i][0] = i
	}
	for j := 0; j <= len(b); j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}

			matrix[i][j] = min(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}

	return matrix[len(a)][len(b)]
}
