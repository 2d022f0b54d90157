package main

import (
	"fmt"
	"math"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/blobfield/internal/analysis"
	"github.com/san-kum/blobfield/internal/config"
	"github.com/san-kum/blobfield/internal/storage"
	"github.com/san-kum/blobfield/internal/viz"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tGRID\tBLOBS\tSHAPE\tLABELS\tELAPSED")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%dx%dx%g\t%d\t%s\t%s\t%.2fs\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Grid.Nx,
			run.Grid.Ny,
			run.Grid.T,
			run.NumBlobs,
			run.Shape,
			run.Labels,
			run.Elapsed,
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	ds, err := st.LoadField(runID)
	if err != nil {
		return err
	}

	opts := []viz.PlayerOption{viz.WithFPS(frameRate), viz.WithTheme(themeName)}
	if gifPath != "" {
		if err := viz.RecordGIF(ds, gifPath, opts...); err != nil {
			return err
		}
		fmt.Printf("recorded %d frames to %s\n", ds.Density.Nt, gifPath)
		return nil
	}

	opts = append(opts, viz.WithGIFPath(runID+".gif"))
	return viz.Run(viz.NewPlayer(ds, meta.Name, opts...))
}

func profileRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	ds, err := st.LoadField(runID)
	if err != nil {
		return err
	}

	x := ds.Grid.X
	var mean []float64
	caption := fmt.Sprintf("<n>(x) of %s", runID)
	if row >= 0 {
		if row >= ds.Density.Ny {
			return fmt.Errorf("row %d out of range [0, %d)", row, ds.Density.Ny)
		}
		mean = analysis.RowProfile(ds.Density, row)
		caption = fmt.Sprintf("<n>(x, y=%g) of %s", ds.Grid.Y[row], runID)
	} else {
		mean = analysis.XProfile(ds.Density)
	}

	fmt.Println(asciigraph.Plot(mean,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	))
	fmt.Printf("\ndecay length: %.4g\n", analysis.FitDecayLength(x, mean))

	var expected []float64
	if analytical {
		p, err := drainageParams(meta)
		if err != nil {
			return err
		}
		expected = analysis.AnalyticalProfile(x, p)
		fmt.Printf("analytical: tau_d=%.4g, mean abs error %.4g\n",
			p.PulseDuration(), analysis.MeanAbsError(mean, expected))
	}

	if csvOut != "" {
		records := make([]*storage.ProfileRecord, len(x))
		for i := range x {
			records[i] = &storage.ProfileRecord{X: x[i], Mean: mean[i]}
			if expected != nil {
				records[i].Analytical = expected[i]
			}
		}
		f, err := os.Create(csvOut)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := storage.WriteProfileCSV(f, records); err != nil {
			return err
		}
		fmt.Printf("profile written to %s\n", csvOut)
	}

	return nil
}

// drainageParams fills the analytical profile flags from the run where
// they were left at zero.
func drainageParams(meta *storage.RunMetadata) (analysis.DrainageParams, error) {
	p := analysis.DrainageParams{
		Velocity:    velocity,
		Width:       pulseWidth,
		WaitingTime: waitingTime,
		Amplitude:   amplitude,
		TLoss:       tLoss,
	}
	if p.WaitingTime == 0 {
		if meta.NumBlobs == 0 {
			return p, fmt.Errorf("run has no blobs, pass --waiting-time")
		}
		p.WaitingTime = meta.Grid.T / float64(meta.NumBlobs)
	}
	if p.TLoss == 0 {
		if len(meta.DrainProfile) > 0 {
			return p, fmt.Errorf("run uses a drain profile, pass --t-loss")
		}
		p.TLoss = meta.Drain
	}
	if p.Velocity <= 0 || p.Width <= 0 || p.TLoss <= 0 {
		return p, fmt.Errorf("velocity, width and t-loss must be positive")
	}
	return p, nil
}

func statsRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	ds, err := st.LoadField(runID)
	if err != nil {
		return err
	}

	ix, iy := probeX, probeY
	if ix < 0 {
		ix = ds.Density.Nx / 2
	}
	if iy < 0 {
		iy = ds.Density.Ny / 2
	}
	if ix >= ds.Density.Nx || iy >= ds.Density.Ny {
		return fmt.Errorf("probe (%d, %d) outside the %dx%d grid", ix, iy, ds.Density.Nx, ds.Density.Ny)
	}

	series := ds.Density.Series(iy, ix)
	fmt.Printf("probe x=%g y=%g, %d samples\n", ds.Grid.X[ix], ds.Grid.Y[iy], len(series))
	fmt.Println(analysis.ComputeMoments(series))
	fmt.Println()

	fmt.Println(asciigraph.Plot(series,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("n(t)"),
	))
	fmt.Println()

	centers, density := analysis.Histogram(series, bins)
	if len(density) > 1 {
		fmt.Println(asciigraph.Plot(density,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("pdf over [%.3g, %.3g]", centers[0], centers[len(centers)-1])),
		))
		fmt.Println()
	}

	if blobs, err := st.LoadBlobs(runID); err == nil && len(blobs) > 0 {
		printBlobSummary(blobs)
	}

	freq, psd := analysis.PowerSpectrum(series, ds.Grid.Params.Dt)
	var logPSD, posFreq []float64
	for k, f := range freq {
		if f <= 0 || psd[k] <= 0 {
			continue
		}
		posFreq = append(posFreq, f)
		logPSD = append(logPSD, math.Log10(psd[k]))
	}
	if len(logPSD) > 1 {
		fmt.Println(asciigraph.Plot(logPSD,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("log10 psd, f in [%.3g, %.3g]", posFreq[0], posFreq[len(posFreq)-1])),
		))
	}

	return nil
}

func printBlobSummary(blobs []*storage.BlobRecord) {
	columns := []struct {
		name string
		get  func(*storage.BlobRecord) float64
	}{
		{"amplitude", func(b *storage.BlobRecord) float64 { return b.Amplitude }},
		{"width_prop", func(b *storage.BlobRecord) float64 { return b.WidthProp }},
		{"width_perp", func(b *storage.BlobRecord) float64 { return b.WidthPerp }},
		{"v_x", func(b *storage.BlobRecord) float64 { return b.VX }},
		{"v_y", func(b *storage.BlobRecord) float64 { return b.VY }},
	}

	fmt.Printf("%d blobs:\n", len(blobs))
	values := make([]float64, len(blobs))
	for _, c := range columns {
		for i, b := range blobs {
			values[i] = c.get(b)
		}
		mean, std := stat.MeanStdDev(values, nil)
		fmt.Printf("  %-11s mean=%.4g std=%.4g\n", c.name, mean, std)
	}
	fmt.Println()
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tGRID\tT\tBLOBS\tSHAPE\tDRAIN\tLABELS")

	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		drain := fmt.Sprintf("%g", cfg.Drain.Time)
		if p := cfg.DrainProfile(); p != nil {
			drain = fmt.Sprintf("%g..%g", p[0], p[len(p)-1])
		}
		fmt.Fprintf(w, "%s\t%dx%d\t%g\t%d\t%s/%s\t%s\t%s\n",
			name,
			cfg.Grid.Nx,
			cfg.Grid.Ny,
			cfg.Grid.T,
			cfg.NumBlobs,
			cfg.Shape.Prop,
			cfg.Shape.Perp,
			drain,
			cfg.Labels.Mode,
		)
	}

	return w.Flush()
}
