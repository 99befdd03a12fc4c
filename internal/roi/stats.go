package roi

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/mrsinham/liverroi/internal/imaging"
)

// Statistics summarizes the pixel samples an ROI covers. When Count is
// zero, every numeric field is NaN: zero is a legitimate measured value and
// must never stand in for absence of data. Statistics are recomputed on
// demand and never cached, so they can't go stale behind an edit.
type Statistics struct {
	Count  int
	Mean   float64
	Median float64
	Min    float64
	Max    float64
}

// Defined reports whether the statistics describe at least one sample.
func (s Statistics) Defined() bool { return s.Count > 0 }

// ComputeStatistics samples the ROI on the grid and summarizes the values.
// Samples are gathered in row-major order and the median is taken from a
// single sorted copy, so results are bit-reproducible for a fixed ROI and
// grid. An ROI covering no pixels is a valid, reportable state, not an
// error.
func ComputeStatistics(r *ROI, g *imaging.Grid) Statistics {
	samples := r.SamplePixels(g)
	if len(samples) == 0 {
		nan := math.NaN()
		return Statistics{Count: 0, Mean: nan, Median: nan, Min: nan, Max: nan}
	}

	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)

	n := len(sorted)
	median := sorted[n/2]
	if n%2 == 0 {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	}

	return Statistics{
		Count:  n,
		Mean:   stat.Mean(samples, nil),
		Median: median,
		Min:    floats.Min(sorted),
		Max:    floats.Max(sorted),
	}
}
