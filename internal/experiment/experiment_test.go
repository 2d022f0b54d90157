package experiment

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/san-kum/blobfield/internal/config"
	"github.com/san-kum/blobfield/internal/ensemble"
	"github.com/san-kum/blobfield/internal/model"
	"github.com/san-kum/blobfield/internal/shape"
)

func smallConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Name = "small"
	cfg.Seed = 11
	cfg.Grid = config.GridConfig{Nx: 16, Ny: 8, Lx: 8, Ly: 4, Dt: 0.5, T: 10, PeriodicY: true}
	cfg.NumBlobs = 20
	cfg.Blobs.WidthX = config.DistConfig{Dist: "deg", Free: 0.3}
	cfg.Blobs.WidthY = config.DistConfig{Dist: "deg", Free: 0.3}
	return cfg
}

func TestRegistryLookups(t *testing.T) {
	reg := NewRegistry()

	if _, err := reg.GetPolicy("coin_flip"); err == nil {
		t.Error("expected error for unknown policy")
	}
	if p, err := reg.GetPolicy(""); err != nil || p == nil {
		t.Errorf("empty policy should default, got %v", err)
	}
	if _, err := reg.GetThetaSampler(config.ThetaConfig{Sampler: "spiral"}); err == nil {
		t.Error("expected error for unknown theta sampler")
	}
	if _, err := reg.GetFactory("nonexistent", smallConfig(), 1); err == nil {
		t.Error("expected error for unknown factory")
	}

	factories := reg.ListFactories()
	if len(factories) != 2 || factories[0] != "default" || factories[1] != "ramp" {
		t.Errorf("unexpected factories %v", factories)
	}
	if policies := reg.ListPolicies(); len(policies) != 2 {
		t.Errorf("unexpected policies %v", policies)
	}
}

func TestThetaSampler(t *testing.T) {
	reg := NewRegistry()
	s, err := reg.GetThetaSampler(config.ThetaConfig{Sampler: "uniform", Min: 1, Max: 2})
	if err != nil {
		t.Fatalf("sampler: %v", err)
	}
	r := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 100; i++ {
		if theta := s(r); theta < 1 || theta >= 2 {
			t.Fatalf("theta %f outside [1, 2)", theta)
		}
	}

	c, err := reg.GetThetaSampler(config.ThetaConfig{Value: 0.3})
	if err != nil {
		t.Fatalf("sampler: %v", err)
	}
	if theta := c(r); theta != 0.3 {
		t.Errorf("expected constant 0.3, got %f", theta)
	}
}

func TestEnsembleParams(t *testing.T) {
	bc := config.DefaultBlobs()
	bc.VY = config.DistConfig{Dist: "zeros"}
	p, err := EnsembleParams(bc)
	if err != nil {
		t.Fatalf("params: %v", err)
	}
	if p.Amplitude.Dist != ensemble.Exp || p.VY.Dist != ensemble.Zeros || !p.Aligned {
		t.Errorf("unexpected params %+v", p)
	}

	bc.WidthX = config.DistConfig{Dist: "cauchy", Free: 1}
	if _, err := EnsembleParams(bc); !errors.Is(err, ensemble.ErrUnknownDistribution) {
		t.Errorf("expected ErrUnknownDistribution, got %v", err)
	}
}

func TestModelConfig(t *testing.T) {
	reg := NewRegistry()
	cfg := config.GetPreset("changing_drain")

	mcfg, err := ModelConfig(cfg, reg)
	if err != nil {
		t.Fatalf("model config: %v", err)
	}
	if !mcfg.Drain.IsProfile() || len(mcfg.Drain.Profile) != cfg.Grid.Nx {
		t.Errorf("expected a drain profile of %d values", cfg.Grid.Nx)
	}
	if mcfg.Shape != (shape.Shape{Prop: shape.Exp, Perp: shape.Gauss}) {
		t.Errorf("unexpected shape %v", mcfg.Shape)
	}
	if err := mcfg.Validate(); err != nil {
		t.Errorf("preset should validate: %v", err)
	}

	cfg.Shape.Prop = "triangle"
	if _, err := ModelConfig(cfg, reg); !errors.Is(err, shape.ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
}

func TestPresetsBuild(t *testing.T) {
	reg := NewRegistry()
	for _, name := range config.ListPresets() {
		t.Run(name, func(t *testing.T) {
			if _, err := New(config.GetPreset(name), reg); err != nil {
				t.Errorf("preset %s: %v", name, err)
			}
		})
	}
}

func TestRun(t *testing.T) {
	cfg := smallConfig()
	cfg.Labels.Mode = "individual"
	cfg.Labels.Policy = "highest_amplitude"
	cfg.Run.SpeedUp = true

	exp, err := New(cfg, NewRegistry())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if exp.Seed() != 11 {
		t.Errorf("expected seed 11, got %d", exp.Seed())
	}

	res, err := exp.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Realization.Labels == nil {
		t.Fatal("expected labels")
	}
	if exp.Model().State() != model.Realized {
		t.Error("model should be realized")
	}

	meta := res.Metadata
	if meta.Name != "small" || meta.Seed != 11 || meta.NumBlobs != 20 {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.Labels != "individual" || meta.Drain != config.DefaultDrain {
		t.Errorf("unexpected labels/drain in metadata %+v", meta)
	}
	if meta.Metrics["mean"] <= 0 {
		t.Errorf("expected positive mean, got %f", meta.Metrics["mean"])
	}
}

func TestRunDeterministic(t *testing.T) {
	run := func() []float64 {
		exp, err := New(smallConfig(), NewRegistry())
		if err != nil {
			t.Fatalf("new: %v", err)
		}
		res, err := exp.Run(context.Background())
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		return res.Realization.Density.Data
	}

	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("sample %d differs: %g vs %g", i, a[i], b[i])
		}
	}
}

func TestRunCancelled(t *testing.T) {
	exp, err := New(smallConfig(), NewRegistry())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := exp.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRampFactoryRun(t *testing.T) {
	cfg := smallConfig()
	cfg.Factory = "ramp"
	exp, err := New(cfg, NewRegistry())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	res, err := exp.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(res.Realization.Blobs) != 20 {
		t.Errorf("expected 20 blobs, got %d", len(res.Realization.Blobs))
	}
}

func TestRegisterFactory(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterFactory("unit", func(cfg *config.Config, seed uint64, _ *Registry) (ensemble.Factory, error) {
		return ensemble.NewRampFactory(1, 1, seed)
	})

	cfg := smallConfig()
	cfg.Factory = "unit"
	exp, err := New(cfg, reg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	res, err := exp.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, b := range res.Realization.Blobs {
		if b.Amplitude() != 1 {
			t.Fatalf("expected unit amplitudes, got %f", b.Amplitude())
		}
	}
	if len(reg.ListFactories()) != 3 {
		t.Errorf("expected 3 factories, got %v", reg.ListFactories())
	}
}
