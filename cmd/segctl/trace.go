package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/joshuapare/segalloc/alloc"
	"github.com/joshuapare/segalloc/internal/logger"
	"github.com/joshuapare/segalloc/internal/trace"
	"github.com/joshuapare/segalloc/region"
)

var (
	traceRegionFile string
	traceLimit      int
	traceVerify     int
	traceNoProgress bool
)

func init() {
	cmd := newTraceCmd()
	cmd.Flags().StringVar(&traceRegionFile, "region-file", "", "Back the region with this file instead of memory (single trace only)")
	cmd.Flags().IntVar(&traceLimit, "limit", region.DefaultLimit, "Maximum region size in bytes")
	cmd.Flags().IntVar(&traceVerify, "verify", 0, "Verify the heap every N requests (0 = at the end only)")
	cmd.Flags().BoolVar(&traceNoProgress, "no-progress", false, "Disable the progress bar")
	rootCmd.AddCommand(cmd)
}

func newTraceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trace <file.rep>...",
		Short: "Replay allocation traces",
		Long: `The trace command replays one or more allocation trace files against a
fresh allocator each, checking payload integrity and reporting utilization.

Example:
  segctl trace traces/*.rep
  segctl trace --config coarse short1.rep --json
  segctl trace --region-file heap.seg realloc.rep`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(cmd.Context(), args)
		},
	}
	return cmd
}

// TraceReport is the per-trace output of the trace command.
type TraceReport struct {
	Trace       string      `json:"trace"`
	Config      string      `json:"config"`
	Ops         int         `json:"ops"`
	RegionSize  int         `json:"region_size"`
	PeakPayload int64       `json:"peak_payload"`
	Utilization float64     `json:"utilization"`
	Stats       alloc.Stats `json:"stats"`
}

func runTrace(ctx context.Context, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if traceRegionFile != "" && len(args) > 1 {
		return errors.New("--region-file takes a single trace")
	}
	cfg, err := configFor(preset)
	if err != nil {
		return err
	}

	reports := make([]TraceReport, 0, len(args))
	for _, path := range args {
		tr, err := trace.ParseFile(path)
		if err != nil {
			return err
		}
		printVerbose("Replaying %s: %d requests, %d ids\n", tr.Name, len(tr.Ops), tr.NumIDs)

		rep, err := replayOne(ctx, tr, cfg)
		if err != nil {
			return err
		}
		reports = append(reports, rep)
	}

	if jsonOut {
		return printJSON(reports)
	}
	if !quiet {
		printReports(os.Stdout, reports)
	}
	return nil
}

// replayOne replays tr on a fresh region.
func replayOne(ctx context.Context, tr *trace.Trace, cfg *alloc.Config) (TraceReport, error) {
	opts := &region.Options{Limit: traceLimit}

	var (
		r     region.Provider
		fileR *region.File
	)
	if traceRegionFile != "" {
		f, err := region.Create(traceRegionFile, opts)
		if err != nil {
			return TraceReport{}, fmt.Errorf("failed to create region file: %w", err)
		}
		defer f.Close()
		r, fileR = f, f
	} else {
		r = region.NewMemory(opts)
	}

	a, err := alloc.New(r, cfg)
	if err != nil {
		return TraceReport{}, err
	}

	replayOpts := &trace.Options{Verify: traceVerify}
	if bar := newProgressBar(tr); bar != nil {
		replayOpts.Progress = func(done int) { _ = bar.Set(done) }
		defer bar.Finish()
	}

	res, err := trace.Replay(ctx, a, tr, replayOpts)
	if err != nil {
		logger.Error("replay failed", "trace", tr.Name, "err", err)
		return TraceReport{}, err
	}
	if fileR != nil {
		if err := fileR.Sync(ctx); err != nil {
			return TraceReport{}, fmt.Errorf("failed to sync region file: %w", err)
		}
	}
	if verbose && !quiet && !jsonOut {
		a.PrintStats(os.Stdout)
	}

	return TraceReport{
		Trace:       res.Name,
		Config:      cfg.Name,
		Ops:         res.Ops,
		RegionSize:  res.RegionSize,
		PeakPayload: res.PeakPayload,
		Utilization: res.Utilization(),
		Stats:       res.Stats,
	}, nil
}

// newProgressBar returns a bar on stderr, or nil when output is quiet,
// JSON, or disabled.
func newProgressBar(tr *trace.Trace) *progressbar.ProgressBar {
	if quiet || jsonOut || traceNoProgress {
		return nil
	}
	return progressbar.NewOptions(len(tr.Ops),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(tr.Name),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func printReports(w io.Writer, reports []TraceReport) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TRACE\tCONFIG\tOPS\tREGION\tPEAK\tUTIL")
	for _, r := range reports {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%.1f%%\n",
			r.Trace, r.Config, r.Ops, r.RegionSize, r.PeakPayload, 100*r.Utilization)
	}
	tw.Flush()
}
