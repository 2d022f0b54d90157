package model

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/blobfield/internal/blob"
	"github.com/san-kum/blobfield/internal/shape"
)

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
		cause  error
	}{
		{"zero Nx", func(c *Config) { c.Nx = 0 }, nil},
		{"negative Ly", func(c *Config) { c.Ly = -1 }, nil},
		{"zero dt", func(c *Config) { c.Dt = 0 }, nil},
		{"empty time axis", func(c *Config) { c.TInit = 10 }, nil},
		{"flat domain with rows", func(c *Config) { c.Ly = 0 }, nil},
		{"periodic flat domain", func(c *Config) { c.Ny, c.Ly, c.PeriodicY = 1, 0, true }, nil},
		{"one-dimensional with Ly", func(c *Config) { c.OneDimensional = true }, blob.ErrOneDimensional},
		{"drain profile length", func(c *Config) { c.Drain = blob.ProfileDrain([]float64{1, 2}) }, blob.ErrDrainProfile},
		{"negative drain", func(c *Config) { c.Drain = blob.ConstantDrain(-1) }, blob.ErrInvalidParameter},
		{"unknown shape", func(c *Config) { c.Shape = shape.Shape{Prop: shape.Gauss} }, shape.ErrUnknownKind},
		{"label border", func(c *Config) { c.Labels, c.LabelBorder = LabelsSame, 1.5 }, nil},
		{"negative blob count", func(c *Config) { c.NumBlobs = -1 }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)

			_, err := New(cfg, staticFactory{make: centered})
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
			if tt.cause != nil && !errors.Is(err, tt.cause) {
				t.Errorf("expected cause %v, got %v", tt.cause, err)
			}
		})
	}
}

func TestNilFactory(t *testing.T) {
	if _, err := New(DefaultConfig(), nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	cfg := DefaultConfig()
	cfg.Drain = blob.ProfileDrain(make([]float64, cfg.Nx))
	for i := range cfg.Drain.Profile {
		cfg.Drain.Profile[i] = 2
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("matching drain profile rejected: %v", err)
	}
}

func TestSpeedUpNeedsTolerance(t *testing.T) {
	m, err := New(diagonalConfig(LabelsOff), staticFactory{make: centered})
	if err != nil {
		t.Fatalf("model: %v", err)
	}
	for _, tol := range []float64{0, -1, math.NaN(), 0.6, 1} {
		if _, err := m.MakeRealization(true, tol); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("tolerance %g: expected ErrInvalidConfig, got %v", tol, err)
		}
	}
	if _, err := m.MakeRealization(true, 0.5); err != nil {
		t.Errorf("tolerance 0.5 rejected: %v", err)
	}
	if _, err := m.MakeRealization(false, 0.6); err != nil {
		t.Errorf("tolerance must be ignored without speed-up: %v", err)
	}
}

func TestParseLabelMode(t *testing.T) {
	for _, mode := range []LabelMode{LabelsOff, LabelsSame, LabelsIndividual} {
		got, err := ParseLabelMode(mode.String())
		if err != nil || got != mode {
			t.Errorf("%s does not round trip: %v, %v", mode, got, err)
		}
	}
	if _, err := ParseLabelMode("union"); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestString(t *testing.T) {
	m, err := New(DefaultConfig(), staticFactory{make: centered})
	if err != nil {
		t.Fatalf("model: %v", err)
	}
	if got := m.String(); got != "2d Blob Model with num_blobs:1000 and t_drain:10" {
		t.Errorf("unexpected string %q", got)
	}
}
