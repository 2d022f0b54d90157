package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/blobfield/internal/viz"
)

var (
	dataDir  string
	logLevel string

	// run
	configFile  string
	preset      string
	runName     string
	nx, ny      int
	lx, ly      float64
	dt          float64
	duration    float64
	tInit       float64
	periodicY   bool
	numBlobs    int
	propShape   string
	perpShape   string
	tDrain      float64
	oneDim      bool
	wrapMode    string
	labelMode   string
	labelBorder float64
	labelPolicy string
	factoryName string
	seed        uint64
	speedUp     bool
	tolerance   float64
	workers     int
	verbose     bool

	// show
	frameRate int
	themeName string
	gifPath   string

	// profile
	row         int
	analytical  bool
	velocity    float64
	pulseWidth  float64
	waitingTime float64
	amplitude   float64
	tLoss       float64
	csvOut      string

	// stats
	probeX, probeY int
	bins           int

	// export
	outPath  string
	frameIdx int
	cellSize int
	svgKind  string
	logScale bool

	// batch
	batchPreset string
	batchSeed   uint64
	sweepParam  string
	sweepFrom   float64
	sweepTo     float64
	sweepSteps  int
	trials      int

	// fit
	fitParams []string
	fitMetric string
	fitTarget float64
	fitRefine int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "blobfield",
		Short:         "synthetic blob field generator",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(logLevel)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".blobfield", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "make and store one realization",
		Args:  cobra.NoArgs,
		RunE:  runRealization,
	}
	addModelFlags(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "animate a stored realization",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}
	showCmd.Flags().IntVar(&frameRate, "fps", 10, "frame rate")
	showCmd.Flags().StringVar(&themeName, "theme", "viridis", "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")
	showCmd.Flags().StringVar(&gifPath, "gif", "", "write all frames to this GIF instead of playing")

	profileCmd := &cobra.Command{
		Use:   "profile [run_id]",
		Short: "time-averaged radial profile",
		Args:  cobra.ExactArgs(1),
		RunE:  profileRun,
	}
	profileCmd.Flags().IntVar(&row, "row", -1, "y index of the profile (-1 averages over y)")
	profileCmd.Flags().BoolVar(&analytical, "analytical", false, "compare with the analytical drainage profile")
	profileCmd.Flags().Float64Var(&velocity, "velocity", 1, "pulse velocity")
	profileCmd.Flags().Float64Var(&pulseWidth, "width", 1, "pulse width")
	profileCmd.Flags().Float64Var(&waitingTime, "waiting-time", 0, "mean waiting time (0 derives T/num_blobs)")
	profileCmd.Flags().Float64Var(&amplitude, "amplitude", 1, "mean amplitude")
	profileCmd.Flags().Float64Var(&tLoss, "t-loss", 0, "drainage time (0 uses the run's t_drain)")
	profileCmd.Flags().StringVar(&csvOut, "csv", "", "also write the profile to this CSV file")

	statsCmd := &cobra.Command{
		Use:   "stats [run_id]",
		Short: "moments, histogram and spectrum of one time series",
		Args:  cobra.ExactArgs(1),
		RunE:  statsRun,
	}
	statsCmd.Flags().IntVar(&probeX, "x", -1, "x index (-1 is the middle)")
	statsCmd.Flags().IntVar(&probeY, "y", -1, "y index (-1 is the middle)")
	statsCmd.Flags().IntVar(&bins, "bins", 40, "histogram bins")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export a run's field to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default <run_id>.csv)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a run to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export a frame or the profile as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default <run_id>_<kind>.svg)")
	exportSVGCmd.Flags().StringVar(&svgKind, "kind", "frame", "what to draw (frame, mean, labels, mask, profile)")
	exportSVGCmd.Flags().IntVar(&frameIdx, "frame", -1, "time index (-1 is the last frame)")
	exportSVGCmd.Flags().IntVar(&cellSize, "cell", 6, "pixels per grid cell")
	exportSVGCmd.Flags().StringVar(&themeName, "theme", "viridis", "color theme")
	exportSVGCmd.Flags().BoolVar(&logScale, "log", false, "log scale for profiles")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "time realizations over worker counts",
		Args:  cobra.NoArgs,
		RunE:  benchRealization,
	}
	addModelFlags(benchCmd)

	batchCmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run a scenario, a parameter sweep or repeated trials",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runBatch,
	}
	batchCmd.Flags().StringVar(&batchPreset, "preset", "default", "base preset for sweeps and trials")
	batchCmd.Flags().StringVar(&sweepParam, "sweep", "", "parameter to sweep")
	batchCmd.Flags().Float64Var(&sweepFrom, "from", 1, "first sweep value")
	batchCmd.Flags().Float64Var(&sweepTo, "to", 10, "last sweep value")
	batchCmd.Flags().IntVar(&sweepSteps, "steps", 5, "sweep points")
	batchCmd.Flags().IntVar(&trials, "trials", 0, "independent realizations of the preset")
	batchCmd.Flags().Uint64Var(&batchSeed, "seed", 1, "first seed of the trials")

	fitCmd := &cobra.Command{
		Use:   "fit",
		Short: "grid search parameters until a metric hits a target",
		Args:  cobra.NoArgs,
		RunE:  fitParameters,
	}
	fitCmd.Flags().StringVar(&batchPreset, "preset", "default", "base preset")
	fitCmd.Flags().Uint64Var(&batchSeed, "seed", 1, "seed shared by every grid point")
	fitCmd.Flags().StringArrayVar(&fitParams, "param", nil, "parameter range as name=lo:hi:n (repeatable)")
	fitCmd.Flags().StringVar(&fitMetric, "metric", "mean", "metric to match")
	fitCmd.Flags().Float64Var(&fitTarget, "target", 1, "wanted metric value")
	fitCmd.Flags().IntVar(&fitRefine, "refine", 0, "Nelder-Mead realizations after the grid search (0 skips)")

	rootCmd.AddCommand(runCmd, listCmd, showCmd, profileCmd, statsCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd, presetsCmd, benchCmd, batchCmd, fitCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func addModelFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&runName, "name", "", "run name")
	cmd.Flags().IntVar(&nx, "nx", 100, "grid points in x")
	cmd.Flags().IntVar(&ny, "ny", 100, "grid points in y")
	cmd.Flags().Float64Var(&lx, "lx", 10, "domain length in x")
	cmd.Flags().Float64Var(&ly, "ly", 10, "domain length in y (0 for one row)")
	cmd.Flags().Float64Var(&dt, "dt", 0.1, "time step")
	cmd.Flags().Float64Var(&duration, "time", 10, "end of the time axis")
	cmd.Flags().Float64Var(&tInit, "t-init", 0, "start of the time axis")
	cmd.Flags().BoolVar(&periodicY, "periodic-y", false, "periodic boundary in y")
	cmd.Flags().IntVar(&numBlobs, "blobs", 1000, "number of blobs")
	cmd.Flags().StringVar(&propShape, "prop-shape", "gauss", "shape along the velocity")
	cmd.Flags().StringVar(&perpShape, "perp-shape", "gauss", "shape across the velocity")
	cmd.Flags().Float64Var(&tDrain, "t-drain", 10, "drainage time")
	cmd.Flags().BoolVar(&oneDim, "one-dim", false, "ignore the perpendicular shape (needs --ly 0)")
	cmd.Flags().StringVar(&wrapMode, "wrap", "first_sample", "periodic wrap evaluation (first_sample, per_sample)")
	cmd.Flags().StringVar(&labelMode, "labels", "off", "label field (off, same, individual)")
	cmd.Flags().Float64Var(&labelBorder, "label-border", 0.75, "fraction of the peak a labeled cell reaches")
	cmd.Flags().StringVar(&labelPolicy, "label-policy", "last_write_wins", "overlap resolution (last_write_wins, highest_amplitude)")
	cmd.Flags().StringVar(&factoryName, "factory", "default", "blob factory")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed (0 picks one)")
	cmd.Flags().BoolVar(&speedUp, "speed-up", false, "only evaluate blobs while they are near the domain")
	cmd.Flags().Float64Var(&tolerance, "tolerance", 1e-2, "truncation error of --speed-up")
	cmd.Flags().IntVar(&workers, "workers", 1, "goroutines sharing the blob list")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "log progress")
}

func setupLogging(level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
	return nil
}
