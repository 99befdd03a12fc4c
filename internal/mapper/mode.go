// Package mapper transfers ROIs between image series: exactly when both
// series share a frame of reference, approximately by relative anatomical
// position when they do not.
package mapper

import (
	"fmt"
	"strings"
)

// Mode selects the transfer algorithm.
type Mode int

const (
	// ModeRegistered maps through shared patient space.
	ModeRegistered Mode = iota
	// ModeUnregistered maps by relative stack position only.
	ModeUnregistered
)

// String returns the flag value of the mode.
func (m Mode) String() string {
	if m == ModeUnregistered {
		return "unregistered"
	}
	return "registered"
}

// ParseMode parses a mode name.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "registered":
		return ModeRegistered, nil
	case "unregistered":
		return ModeUnregistered, nil
	default:
		return ModeRegistered, fmt.Errorf("invalid transfer mode: %s (valid: registered, unregistered)", s)
	}
}
