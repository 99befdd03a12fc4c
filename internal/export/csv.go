// Package export flattens stored ROIs and their statistics into the record
// shape a CSV report consumes.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/mrsinham/liverroi/internal/roi"
	"github.com/mrsinham/liverroi/internal/series"
)

// Record is one exported ROI with its statistics, ready for any report
// generator.
type Record struct {
	SeriesUID  string
	Ordinal    int
	ROIID      string
	Segment    string
	CenterRow  float64
	CenterCol  float64
	Radius     float64
	Statistics roi.Statistics
}

// Records computes one record per stored ROI on the series, slices in
// ordinal order and ROIs in insertion order. Statistics are computed fresh
// from the current pixel data; an ROI covering no pixels yields a record
// with Count 0 and undefined numeric fields.
func Records(store *roi.Store, idx *series.Index) []Record {
	var records []Record
	for _, slice := range idx.Slices() {
		for _, r := range store.ListFor(slice.Key) {
			records = append(records, Record{
				SeriesUID:  r.Key.SeriesUID,
				Ordinal:    r.Key.Ordinal,
				ROIID:      r.ID,
				Segment:    r.Segment.Label(),
				CenterRow:  r.Center.Row,
				CenterCol:  r.Center.Col,
				Radius:     r.Radius,
				Statistics: roi.ComputeStatistics(r, slice.Image),
			})
		}
	}
	return records
}

// csvHeader mirrors the original report layout, extended with the ROI and
// series identity columns.
var csvHeader = []string{
	"SeriesUID", "SliceOrdinal", "ROIID", "Segment",
	"CenterRow", "CenterCol", "RadiusPixels",
	"Count", "Mean", "Median", "Min", "Max",
}

// WriteCSV writes the records with a header row. Undefined statistics are
// written as "N/A" so an empty ROI is never mistaken for a measured zero.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}

	for _, rec := range records {
		row := []string{
			rec.SeriesUID,
			strconv.Itoa(rec.Ordinal),
			rec.ROIID,
			rec.Segment,
			formatFloat(rec.CenterRow),
			formatFloat(rec.CenterCol),
			formatFloat(rec.Radius),
		}
		if rec.Statistics.Defined() {
			row = append(row,
				strconv.Itoa(rec.Statistics.Count),
				formatFloat(rec.Statistics.Mean),
				formatFloat(rec.Statistics.Median),
				formatFloat(rec.Statistics.Min),
				formatFloat(rec.Statistics.Max),
			)
		} else {
			row = append(row, "0", "N/A", "N/A", "N/A", "N/A")
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write CSV record: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
