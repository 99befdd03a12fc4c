package mapper

import (
	"context"
	"fmt"

	"github.com/mrsinham/liverroi/internal/roi"
	"github.com/mrsinham/liverroi/internal/series"
)

// Failure records one source ROI that could not be transferred. Failed
// ROIs are reported, never silently dropped.
type Failure struct {
	Source *roi.ROI
	Err    error
}

// BatchResult is the outcome of a whole-series transfer.
type BatchResult struct {
	Transferred []*roi.ROI
	Failures    []Failure
}

// TransferAll transfers every ROI the store holds on the source series to
// the target series and commits the successes to targetStore in one step
// after the loop, so a cancelled or failed batch leaves the target store
// untouched. ROIs are processed independently: one ROI's failure does not
// abort the rest. Cancellation is checked between ROIs, never
// mid-computation.
func TransferAll(ctx context.Context, m Mapper, source *series.Index, store *roi.Store, target *series.Index, targetStore *roi.Store) (BatchResult, error) {
	if store.Scheme() != targetStore.Scheme() {
		return BatchResult{}, fmt.Errorf("%w: source store uses %s, target uses %s",
			roi.ErrSchemeMismatch, store.Scheme(), targetStore.Scheme())
	}

	var result BatchResult
	for _, slice := range source.Slices() {
		for _, r := range store.ListFor(slice.Key) {
			if err := ctx.Err(); err != nil {
				return BatchResult{}, err
			}

			mapped, err := m.Transfer(source, r, target)
			if err != nil {
				result.Failures = append(result.Failures, Failure{Source: r, Err: err})
				continue
			}
			result.Transferred = append(result.Transferred, mapped)
		}
	}

	for _, r := range result.Transferred {
		if err := targetStore.Add(r); err != nil {
			return BatchResult{}, err
		}
	}
	return result, nil
}
