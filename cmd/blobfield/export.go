package main

import (
	"fmt"
	"math"
	"os"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/blobfield/internal/analysis"
	"github.com/san-kum/blobfield/internal/export"
	"github.com/san-kum/blobfield/internal/storage"
	"github.com/san-kum/blobfield/internal/viz"
)

func exportCSV(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	ds, err := st.LoadField(runID)
	if err != nil {
		return err
	}

	path := outPath
	if path == "" {
		path = runID + ".csv"
	}
	if err := storage.ExportCSV(path, ds); err != nil {
		return err
	}

	fmt.Printf("exported to %s\n", path)
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
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

	if outPath == "" {
		return storage.ExportJSONStdout(*meta, ds)
	}
	if err := storage.ExportJSON(outPath, *meta, ds); err != nil {
		return err
	}

	fmt.Printf("exported to %s\n", outPath)
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	ds, err := st.LoadField(runID)
	if err != nil {
		return err
	}

	it := frameIdx
	if it < 0 {
		it = ds.Density.Nt - 1
	}
	if it < 0 || it >= ds.Density.Nt {
		return fmt.Errorf("frame %d out of range [0, %d)", it, ds.Density.Nt)
	}

	theme := viz.GetTheme(themeName)
	var svg string
	switch svgKind {
	case "frame":
		svg = export.FrameToSVG(ds.Density.Frame(it), cellSize, floats.Min(ds.Density.Data), floats.Max(ds.Density.Data), theme)
	case "mean":
		avg := analysis.TimeAverage(ds.Density)
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, row := range avg {
			lo, hi = math.Min(lo, floats.Min(row)), math.Max(hi, floats.Max(row))
		}
		svg = export.FrameToSVG(avg, cellSize, lo, hi, theme)
	case "labels":
		if ds.Labels == nil {
			return fmt.Errorf("run %s has no labels", runID)
		}
		svg = export.FrameToSVG(ds.Labels.Frame(it), cellSize, 0, floats.Max(ds.Labels.Data), theme)
	case "mask":
		if ds.Labels == nil {
			return fmt.Errorf("run %s has no labels", runID)
		}
		canvas := viz.NewCanvas(max(ds.Density.Nx/2, 1), max(ds.Density.Ny/4, 1))
		canvas.DrawMask(ds.Labels.Frame(it), 0.5)
		svg = export.CanvasToSVG(canvas, float64(cellSize), string(theme.Accent))
	case "profile":
		mean := analysis.XProfile(ds.Density)
		svg = export.ProfileToSVG(ds.Grid.X, []export.Series{
			{Name: "<n>(x)", Values: mean, Color: string(theme.Accent)},
		}, 640, 400, logScale)
	default:
		return fmt.Errorf("unknown svg kind: %s", svgKind)
	}

	if svg == "" {
		return fmt.Errorf("nothing to draw for %s", runID)
	}

	path := outPath
	if path == "" {
		path = fmt.Sprintf("%s_%s.svg", runID, svgKind)
	}
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return err
	}

	fmt.Printf("exported to %s\n", path)
	return nil
}
