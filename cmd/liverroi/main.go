package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/png"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/mrsinham/liverroi/internal/config"
	"github.com/mrsinham/liverroi/internal/export"
	"github.com/mrsinham/liverroi/internal/geometry"
	"github.com/mrsinham/liverroi/internal/imaging"
	"github.com/mrsinham/liverroi/internal/mapper"
	"github.com/mrsinham/liverroi/internal/roi"
	"github.com/mrsinham/liverroi/internal/series"
)

// version is set at build time via -ldflags
var version = "dev"

// roiSpecs collects repeatable -add flags.
type roiSpecs []string

func (r *roiSpecs) String() string { return strings.Join(*r, "; ") }

func (r *roiSpecs) Set(v string) error {
	*r = append(*r, v)
	return nil
}

func main() {
	seriesDir := flag.String("series", "", "Directory holding the DICOM series to work on (required)")
	discoverRoot := flag.String("discover", "", "List loadable series under a patient/study/series tree and exit")
	schemeFlag := flag.String("scheme", "", "Segmentation scheme: 9-segment or 4-segment (default from config)")
	configPath := flag.String("config", "", "YAML configuration file (optional)")
	roisPath := flag.String("rois", "", "Load an existing ROI file before other actions")
	savePath := flag.String("save", "", "Save the resulting ROI file (the transferred ROIs when -transfer-to is used)")
	exportPath := flag.String("export", "", "Export ROI statistics to this CSV file")
	listROIs := flag.Bool("list", false, "Print every ROI with its statistics")
	snapshotPath := flag.String("snapshot", "", "Write a PNG snapshot of one slice with its ROIs burned in")
	snapshotSlice := flag.Int("slice", 0, "Slice ordinal for -snapshot")
	transferTo := flag.String("transfer-to", "", "Directory of the target series for cross-series transfer")
	modeFlag := flag.String("mode", "auto", "Transfer mode: auto, registered, unregistered")
	quiet := flag.Bool("quiet", false, "Suppress progress output")
	showVersion := flag.Bool("version", false, "Print version and exit")

	var adds roiSpecs
	flag.Var(&adds, "add", "Add an ROI: ordinal:row,col,radius:segment (e.g. 3:128.5,140.0,12.5:4a); repeatable")

	flag.Parse()

	if *showVersion {
		fmt.Printf("liverroi %s\n", version)
		return
	}

	if err := run(*seriesDir, *discoverRoot, *schemeFlag, *configPath, *roisPath,
		*savePath, *exportPath, *snapshotPath, *snapshotSlice, *transferTo,
		*modeFlag, adds, *listROIs, *quiet); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(seriesDir, discoverRoot, schemeFlag, configPath, roisPath, savePath,
	exportPath, snapshotPath string, snapshotSlice int, transferTo, modeFlag string,
	adds roiSpecs, listROIs, quiet bool) error {

	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
	}

	if discoverRoot != "" {
		refs, err := series.Discover(discoverRoot)
		if err != nil {
			return err
		}
		for _, ref := range refs {
			fmt.Println(ref)
		}
		return nil
	}

	if seriesDir == "" {
		return errors.New("-series is required (or use -discover)")
	}

	schemeName := cfg.Scheme
	if schemeFlag != "" {
		schemeName = schemeFlag
	}
	scheme, err := roi.ParseScheme(schemeName)
	if err != nil {
		return err
	}

	idx, err := series.LoadSeries(seriesDir)
	if err != nil {
		return err
	}
	if !quiet {
		fmt.Printf("Loaded series %s (%d slices, %s)\n",
			idx.SeriesUID, idx.Len(), idx.Slices()[0].Frame.Orientation())
	}

	store := roi.NewStore(scheme)
	if roisPath != "" {
		if err := store.Load(roisPath); err != nil {
			return err
		}
		if !quiet {
			fmt.Printf("Loaded %d ROIs from %s\n", store.Len(), roisPath)
		}
	}

	for _, spec := range adds {
		r, err := parseROISpec(spec, scheme, idx)
		if err != nil {
			return err
		}
		if err := store.Add(r); err != nil {
			return err
		}
	}

	if listROIs {
		printROIs(store, idx)
	}

	if exportPath != "" {
		if err := exportCSV(store, idx, exportPath); err != nil {
			return err
		}
		if !quiet {
			fmt.Printf("Exported %d ROIs to %s\n", store.Len(), exportPath)
		}
	}

	if snapshotPath != "" {
		if err := writeSnapshot(store, idx, cfg, snapshotSlice, snapshotPath); err != nil {
			return err
		}
		if !quiet {
			fmt.Printf("Wrote snapshot of slice %d to %s\n", snapshotSlice, snapshotPath)
		}
	}

	if transferTo != "" {
		targetStore, err := transfer(store, idx, transferTo, modeFlag, cfg, quiet)
		if err != nil {
			return err
		}
		if savePath != "" {
			if err := targetStore.Save(savePath); err != nil {
				return err
			}
			if !quiet {
				fmt.Printf("Saved %d transferred ROIs to %s\n", targetStore.Len(), savePath)
			}
		}
		return nil
	}

	if savePath != "" {
		if err := store.Save(savePath); err != nil {
			return err
		}
		if !quiet {
			fmt.Printf("Saved %d ROIs to %s\n", store.Len(), savePath)
		}
	}
	return nil
}

// parseROISpec parses ordinal:row,col,radius:segment.
func parseROISpec(spec string, scheme roi.Scheme, idx *series.Index) (*roi.ROI, error) {
	parts := strings.Split(spec, ":")
	if len(parts) != 3 {
		return nil, fmt.Errorf("invalid -add %q (want ordinal:row,col,radius:segment)", spec)
	}

	ordinal, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid -add ordinal %q: %w", parts[0], err)
	}
	slice, err := idx.Slice(ordinal)
	if err != nil {
		return nil, err
	}

	nums := strings.Split(parts[1], ",")
	if len(nums) != 3 {
		return nil, fmt.Errorf("invalid -add geometry %q (want row,col,radius)", parts[1])
	}
	vals := make([]float64, 3)
	for i, s := range nums {
		if vals[i], err = strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
			return nil, fmt.Errorf("invalid -add geometry %q: %w", parts[1], err)
		}
	}

	segment, err := roi.SegmentByLabel(scheme, parts[2])
	if err != nil {
		return nil, err
	}

	return roi.New(slice.Key, geometry.Pixel{Row: vals[0], Col: vals[1]}, vals[2], segment, slice.Image)
}

func printROIs(store *roi.Store, idx *series.Index) {
	records := export.Records(store, idx)
	for _, rec := range records {
		stats := "no pixels covered"
		if rec.Statistics.Defined() {
			stats = fmt.Sprintf("n=%d mean=%.2f median=%.2f min=%.2f max=%.2f",
				rec.Statistics.Count, rec.Statistics.Mean, rec.Statistics.Median,
				rec.Statistics.Min, rec.Statistics.Max)
		}
		fmt.Printf("slice %d  segment %-2s  center (%.1f, %.1f) r=%.1f  %s\n",
			rec.Ordinal, rec.Segment, rec.CenterRow, rec.CenterCol, rec.Radius, stats)
	}
}

func exportCSV(store *roi.Store, idx *series.Index, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return export.WriteCSV(f, export.Records(store, idx))
}

func writeSnapshot(store *roi.Store, idx *series.Index, cfg *config.Config, ordinal int, path string) error {
	slice, err := idx.Slice(ordinal)
	if err != nil {
		return err
	}

	var circles []imaging.Circle
	for _, r := range store.ListFor(slice.Key) {
		circles = append(circles, imaging.Circle{
			CenterRow: r.Center.Row,
			CenterCol: r.Center.Col,
			Radius:    r.Radius,
			Label:     r.Segment.Label(),
		})
	}

	window, level := idx.WindowWidth, idx.WindowCenter
	if cfg.Snapshot.Window != 0 && cfg.Snapshot.Level != 0 {
		window, level = cfg.Snapshot.Window, cfg.Snapshot.Level
	}
	img := imaging.Snapshot(slice.Image, circles, window, level, cfg.Snapshot.MaxDim)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return png.Encode(f, img)
}

func transfer(store *roi.Store, source *series.Index, targetDir, modeFlag string, cfg *config.Config, quiet bool) (*roi.Store, error) {
	target, err := series.LoadSeries(targetDir)
	if err != nil {
		return nil, err
	}

	var mode mapper.Mode
	switch modeFlag {
	case "", "auto":
		mode = mapper.ModeUnregistered
		if mapper.SameFrameOfReference(source, target) {
			mode = mapper.ModeRegistered
		}
	default:
		if mode, err = mapper.ParseMode(modeFlag); err != nil {
			return nil, err
		}
		if mode == mapper.ModeRegistered && !mapper.SameFrameOfReference(source, target) {
			return nil, errors.New("registered transfer requires a shared frame of reference; use -mode unregistered")
		}
	}
	if !quiet {
		fmt.Printf("Transferring to series %s (%d slices, %s mode)\n", target.SeriesUID, target.Len(), mode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	targetStore := roi.NewStore(store.Scheme())
	result, err := mapper.TransferAll(ctx, mapper.ForMode(mode), source, store, target, targetStore)
	if err != nil {
		return nil, err
	}

	if !quiet {
		fmt.Printf("Transferred %d ROIs, %d failed\n", len(result.Transferred), len(result.Failures))
	}
	for _, failure := range result.Failures {
		fmt.Fprintf(os.Stderr, "  segment %s on slice %d: %v\n",
			failure.Source.Segment.Label(), failure.Source.Key.Ordinal, failure.Err)
	}
	return targetStore, nil
}
