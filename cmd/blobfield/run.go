package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/blobfield/internal/automation"
	"github.com/san-kum/blobfield/internal/config"
	"github.com/san-kum/blobfield/internal/experiment"
	"github.com/san-kum/blobfield/internal/optim"
	"github.com/san-kum/blobfield/internal/storage"
)

// buildConfig resolves the model flags: defaults, then the preset, then
// the config file, then every flag set on the command line.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	// config file overrides preset
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	f := cmd.Flags()
	if f.Changed("name") {
		cfg.Name = runName
	}
	if f.Changed("nx") {
		cfg.Grid.Nx = nx
	}
	if f.Changed("ny") {
		cfg.Grid.Ny = ny
	}
	if f.Changed("lx") {
		cfg.Grid.Lx = lx
	}
	if f.Changed("ly") {
		cfg.Grid.Ly = ly
	}
	if f.Changed("dt") {
		cfg.Grid.Dt = dt
	}
	if f.Changed("time") {
		cfg.Grid.T = duration
	}
	if f.Changed("t-init") {
		cfg.Grid.TInit = tInit
	}
	if f.Changed("periodic-y") {
		cfg.Grid.PeriodicY = periodicY
	}
	if f.Changed("blobs") {
		cfg.NumBlobs = numBlobs
	}
	if f.Changed("prop-shape") {
		cfg.Shape.Prop = propShape
	}
	if f.Changed("perp-shape") {
		cfg.Shape.Perp = perpShape
	}
	if f.Changed("t-drain") {
		cfg.Drain = config.DrainConfig{Time: tDrain}
	}
	if f.Changed("one-dim") {
		cfg.OneDimensional = oneDim
	}
	if f.Changed("wrap") {
		cfg.Wrap = wrapMode
	}
	if f.Changed("labels") {
		cfg.Labels.Mode = labelMode
	}
	if f.Changed("label-border") {
		cfg.Labels.Border = labelBorder
	}
	if f.Changed("label-policy") {
		cfg.Labels.Policy = labelPolicy
	}
	if f.Changed("factory") {
		cfg.Factory = factoryName
	}
	if f.Changed("seed") {
		cfg.Seed = seed
	}
	if f.Changed("speed-up") {
		cfg.Run.SpeedUp = speedUp
	}
	if f.Changed("tolerance") {
		cfg.Run.Tolerance = tolerance
	}
	if f.Changed("workers") {
		cfg.Run.Workers = workers
	}
	if f.Changed("verbose") {
		cfg.Run.Verbose = verbose
	}

	return cfg, nil
}

func runRealization(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp, err := experiment.New(cfg, experiment.NewRegistry())
	if err != nil {
		return err
	}

	g := exp.Model().Grid()
	fmt.Printf("running %s: %dx%d grid, %d steps, %d blobs, seed %d\n",
		cfg.Name, len(g.X), len(g.Y), g.Nt(), cfg.NumBlobs, exp.Seed())

	result, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}

	runID, err := st.Save(result.Metadata, result.Realization)
	if err != nil {
		return err
	}

	fmt.Printf("run saved: %s (%.2fs, %d samples, %d blobs skipped)\n",
		runID, result.Elapsed.Seconds(), result.Realization.Samples, result.Realization.Skipped)
	printMetrics(result.Metadata.Metrics)
	return nil
}

func printMetrics(metrics map[string]float64) {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Printf("  %-14s %.6g\n", name, metrics[name])
	}
}

func benchRealization(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Seed == 0 {
		cfg.Seed = 1
	}

	registry := experiment.NewRegistry()
	fmt.Printf("benchmarking %s: %d blobs\n\n", cfg.Name, cfg.NumBlobs)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WORKERS\tSPEED_UP\tSAMPLES\tTIME\tSAMPLES/S")

	for _, speed := range []bool{false, true} {
		for _, n := range []int{1, 2, 4, 8} {
			c := cfg.Clone()
			c.Run.Workers = n
			c.Run.SpeedUp = speed

			exp, err := experiment.New(c, registry)
			if err != nil {
				return err
			}

			start := time.Now()
			result, err := exp.Run(cmd.Context())
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			rate := float64(result.Realization.Samples) / elapsed.Seconds()
			fmt.Fprintf(w, "%d\t%v\t%d\t%v\t%.3g\n",
				n, speed, result.Realization.Samples, elapsed.Round(time.Microsecond), rate)
		}
	}

	return w.Flush()
}

func runBatch(cmd *cobra.Command, args []string) error {
	registry := experiment.NewRegistry()

	switch {
	case len(args) == 1:
		return runScenario(cmd, args[0], registry)
	case sweepParam != "":
		return runSweep(cmd, registry)
	case trials > 0:
		return runTrials(cmd, registry)
	}
	return fmt.Errorf("batch needs a scenario file, --sweep or --trials")
}

func basePreset() (*config.Config, error) {
	cfg := config.GetPreset(batchPreset)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s (available: %v)", batchPreset, config.ListPresets())
	}
	return cfg, nil
}

func runScenario(cmd *cobra.Command, path string, registry *experiment.Registry) error {
	scenario, err := automation.LoadScenario(path)
	if err != nil {
		return fmt.Errorf("failed to load scenario: %w", err)
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Printf("scenario %s: %d steps\n", scenario.Name, len(scenario.Steps))

	results, err := automation.RunScenario(cmd.Context(), scenario, registry)
	if err != nil {
		return err
	}

	for i, r := range results {
		meta := r.Metadata
		if r.SaveAs != "" {
			meta.Name = r.SaveAs
		}
		runID, err := st.Save(meta, r.Realization)
		if err != nil {
			return err
		}
		fmt.Printf("  step %d: %s (mean %.4g)\n", i+1, runID, meta.Metrics["mean"])
	}
	return nil
}

func runSweep(cmd *cobra.Command, registry *experiment.Registry) error {
	base, err := basePreset()
	if err != nil {
		return err
	}

	results, err := automation.RunSweep(cmd.Context(), &automation.ParameterSweep{
		Base:      base,
		ParamName: sweepParam,
		ParamMin:  sweepFrom,
		ParamMax:  sweepTo,
		NumSteps:  sweepSteps,
	}, registry)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tMEAN\tSTD\tSKEWNESS\tDECAY_LENGTH\n", sweepParam)
	means := make([]float64, len(results))
	for i, r := range results {
		means[i] = r.Metrics["mean"]
		fmt.Fprintf(w, "%.4g\t%.4g\t%.4g\t%.4g\t%.4g\n",
			r.ParamValue, r.Metrics["mean"], r.Metrics["std"], r.Metrics["skewness"], r.Metrics["decay_length"])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(means) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(means,
			asciigraph.Height(10),
			asciigraph.Width(60),
			asciigraph.Caption("mean vs "+sweepParam),
		))
	}
	return nil
}

func runTrials(cmd *cobra.Command, registry *experiment.Registry) error {
	base, err := basePreset()
	if err != nil {
		return err
	}

	results, err := automation.RunMonteCarlo(cmd.Context(), &automation.MonteCarloConfig{
		Base:      base,
		NumTrials: trials,
		Seed:      batchSeed,
	}, registry)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %d trials from seed %d\n\n", base.Name, len(results), results[0].Seed)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tMEAN\tSTD")
	for _, s := range automation.MonteCarloStats(results) {
		fmt.Fprintf(w, "%s\t%.6g\t%.3g\n", s.Name, s.Mean, s.Std)
	}
	return w.Flush()
}

func fitParameters(cmd *cobra.Command, args []string) error {
	if len(fitParams) == 0 {
		return fmt.Errorf("fit needs at least one --param (one of %v)", automation.SweepParams())
	}

	base, err := basePreset()
	if err != nil {
		return err
	}
	base.Seed = batchSeed

	names := make([]string, len(fitParams))
	ranges := make([][]float64, len(fitParams))
	for i, p := range fitParams {
		names[i], ranges[i], err = parseRange(p)
		if err != nil {
			return err
		}
	}

	gs, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	objective := optim.Target(fitMetric, fitTarget)
	best, err := gs.Search(cmd.Context(), base, registry, objective)
	if err != nil {
		return err
	}

	if fitRefine > 0 {
		start := make([]float64, len(names))
		for i, name := range names {
			start[i] = best.Params[name]
		}
		refined, err := optim.Minimize(cmd.Context(), base, registry, names, start, objective, fitRefine)
		if err != nil {
			return err
		}
		total := best.Evaluated + refined.Evaluated
		if refined.Score < best.Score {
			best = refined
		}
		best.Evaluated = total
	}

	fmt.Printf("best of %d points (|%s - %g| = %.4g):\n", best.Evaluated, fitMetric, fitTarget, best.Score)
	for _, name := range names {
		fmt.Printf("  %-10s %.6g\n", name, best.Params[name])
	}
	return nil
}

// parseRange reads name=lo:hi:n.
func parseRange(s string) (string, []float64, error) {
	name, bounds, ok := strings.Cut(s, "=")
	if !ok {
		return "", nil, fmt.Errorf("invalid range %q, want name=lo:hi:n", s)
	}
	parts := strings.Split(bounds, ":")
	if len(parts) != 3 {
		return "", nil, fmt.Errorf("invalid range %q, want name=lo:hi:n", s)
	}
	lo, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return "", nil, fmt.Errorf("invalid range %q: %w", s, err)
	}
	hi, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return "", nil, fmt.Errorf("invalid range %q: %w", s, err)
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil || n < 1 {
		return "", nil, fmt.Errorf("invalid range %q: need a positive point count", s)
	}
	return name, optim.Linspace(lo, hi, n), nil
}
