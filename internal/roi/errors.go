package roi

import "errors"

var (
	// ErrInvalidROI indicates a radius or position that can never cover a
	// pixel of its slice. Invalid ROIs are rejected at creation and never
	// stored.
	ErrInvalidROI = errors.New("invalid ROI")

	// ErrCorruptStore indicates a persisted ROI file that is structurally
	// unreadable. Loading aborts without touching the current store.
	ErrCorruptStore = errors.New("corrupt ROI store file")

	// ErrSchemeMismatch indicates a persisted ROI file written under a
	// different segmentation scheme than the active one. Refusing the load
	// is the safe default; label conversion is the caller's decision.
	ErrSchemeMismatch = errors.New("segmentation scheme mismatch")
)
