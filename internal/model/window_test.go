package model

import (
	"testing"

	"github.com/san-kum/blobfield/internal/blob"
	"github.com/san-kum/blobfield/internal/shape"
)

func windowModel(t *testing.T) *Model {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Nx, cfg.Ny = 10, 1
	cfg.Lx, cfg.Ly = 100, 0
	cfg.Dt, cfg.T = 0.1, 10.05
	m, err := New(cfg, staticFactory{make: centered})
	if err != nil {
		t.Fatalf("model: %v", err)
	}
	if m.Grid().Nt() != 101 {
		t.Fatalf("expected 101 time samples, got %d", m.Grid().Nt())
	}
	return m
}

func windowBlob(t *testing.T, vx, tInit float64) *blob.Blob {
	t.Helper()
	g := shape.MustKernel(shape.Gauss, shape.Params{})
	b, err := blob.New(blob.Params{
		Prop: g, Perp: g,
		Amplitude: 1, WidthProp: 1, WidthPerp: 1,
		VX: vx, TInit: tInit,
		Drain: blob.ConstantDrain(10),
	})
	if err != nil {
		t.Fatalf("blob: %v", err)
	}
	return b
}

func TestWindow(t *testing.T) {
	m := windowModel(t)

	tests := []struct {
		name        string
		vx, tInit   float64
		speedUp     bool
		tolerance   float64
		start, stop int
	}{
		{"no speed-up", 10, 2, false, 1e-5, 0, 101},
		{"zero velocity", 0, 2, true, 1e-5, 0, 101},
		{"positive velocity", 10, 2, true, 1e-5, 9, 101},
		{"start clipped", 10, 0, true, 1e-5, 0, 101},
		{"small tolerance", 10, 2, true, 1e-10, 0, 101},
		{"fast blob", 1000, 2, true, 1e-5, 19, 23},
		{"negative velocity", -10, 2, true, 1e-5, 0, 32},
		{"never inside", 10, 100, true, 1e-5, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, stop := m.window(windowBlob(t, tt.vx, tt.tInit), tt.speedUp, tt.tolerance)
			if start != tt.start || stop != tt.stop {
				t.Errorf("expected [%d, %d), got [%d, %d)", tt.start, tt.stop, start, stop)
			}
		})
	}
}

func TestPartition(t *testing.T) {
	tests := []struct {
		n, workers      int
		chunkSize, runs int
	}{
		{0, 4, 0, 1},
		{10, 4, 10, 1},
		{200, 4, 50, 4},
		{100, 3, 34, 3},
		{40, 8, 20, 2},
	}

	for _, tt := range tests {
		size, count := partition(tt.n, tt.workers, minChunk)
		if size != tt.chunkSize || count != tt.runs {
			t.Errorf("partition(%d, %d): expected (%d, %d), got (%d, %d)",
				tt.n, tt.workers, tt.chunkSize, tt.runs, size, count)
		}
	}
}

func TestParallelForCoversRange(t *testing.T) {
	seen := make([]int, 100)
	size, count := partition(len(seen), 4, minChunk)
	parallelFor(len(seen), size, count, func(_, start, end int) {
		for i := start; i < end; i++ {
			seen[i]++
		}
	})
	for i, v := range seen {
		if v != 1 {
			t.Fatalf("index %d visited %d times", i, v)
		}
	}
}
