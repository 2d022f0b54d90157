package model

import (
	"fmt"
	"strings"

	"github.com/san-kum/blobfield/internal/blob"
	"github.com/san-kum/blobfield/internal/grid"
	"github.com/san-kum/blobfield/internal/shape"
)

// LabelMode selects whether and how a label field is produced.
type LabelMode int

const (
	LabelsOff LabelMode = iota
	// LabelsSame marks every blob region with 1.
	LabelsSame
	// LabelsIndividual marks a blob region with the blob id plus one.
	LabelsIndividual
)

func ParseLabelMode(s string) (LabelMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "off":
		return LabelsOff, nil
	case "same":
		return LabelsSame, nil
	case "individual":
		return LabelsIndividual, nil
	}
	return LabelsOff, fmt.Errorf("%w: unknown label mode %q", ErrInvalidConfig, s)
}

func (l LabelMode) String() string {
	switch l {
	case LabelsSame:
		return "same"
	case LabelsIndividual:
		return "individual"
	}
	return "off"
}

type Config struct {
	Nx, Ny    int
	Lx, Ly    float64
	Dt, T     float64
	TInit     float64
	PeriodicY bool

	NumBlobs int
	Shape    shape.Shape
	Drain    blob.Drain
	// OneDimensional discards the perpendicular shape; requires Ly == 0.
	OneDimensional bool
	Wrap           blob.WrapMode

	Labels      LabelMode
	LabelBorder float64
	// LabelPolicy resolves overlapping label claims; nil means LastWriteWins.
	LabelPolicy LabelPolicy

	// Workers > 1 splits the blob list over that many goroutines.
	Workers int
	Verbose bool
}

func DefaultConfig() Config {
	return Config{
		Nx:          100,
		Ny:          100,
		Lx:          10,
		Ly:          10,
		Dt:          0.1,
		T:           10,
		NumBlobs:    1000,
		Shape:       shape.Default(),
		Drain:       blob.ConstantDrain(10),
		LabelBorder: 0.75,
		Workers:     1,
	}
}

// GridParams extracts the discretization part of the config.
func (c Config) GridParams() grid.Params {
	return grid.Params{
		Nx: c.Nx, Ny: c.Ny,
		Lx: c.Lx, Ly: c.Ly,
		Dt: c.Dt, T: c.T,
		TInit:     c.TInit,
		PeriodicY: c.PeriodicY,
	}
}

func (c Config) Validate() error {
	if c.Nx <= 0 || c.Ny <= 0 {
		return fmt.Errorf("%w: grid resolution must be positive (Nx=%d, Ny=%d)", ErrInvalidConfig, c.Nx, c.Ny)
	}
	if !(c.Lx > 0) || c.Ly < 0 {
		return fmt.Errorf("%w: domain extent Lx=%g, Ly=%g", ErrInvalidConfig, c.Lx, c.Ly)
	}
	if !(c.Dt > 0) || !(c.T > c.TInit) {
		return fmt.Errorf("%w: time axis dt=%g on [%g, %g)", ErrInvalidConfig, c.Dt, c.TInit, c.T)
	}
	if c.Ly == 0 && c.Ny != 1 {
		return fmt.Errorf("%w: Ly == 0 needs Ny == 1, got Ny=%d", ErrInvalidConfig, c.Ny)
	}
	if c.PeriodicY && c.Ly == 0 {
		return fmt.Errorf("%w: periodic y needs Ly > 0", ErrInvalidConfig)
	}
	if c.OneDimensional && c.Ly != 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, blob.ErrOneDimensional)
	}
	if c.NumBlobs < 0 {
		return fmt.Errorf("%w: negative blob count %d", ErrInvalidConfig, c.NumBlobs)
	}
	if err := c.Shape.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := c.Drain.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Drain.IsProfile() && len(c.Drain.Profile) != c.Nx {
		return fmt.Errorf("%w: %w: %d values for Nx=%d", ErrInvalidConfig, blob.ErrDrainProfile, len(c.Drain.Profile), c.Nx)
	}
	if c.Labels < LabelsOff || c.Labels > LabelsIndividual {
		return fmt.Errorf("%w: label mode %d", ErrInvalidConfig, c.Labels)
	}
	if c.Labels != LabelsOff && !(c.LabelBorder > 0 && c.LabelBorder <= 1) {
		return fmt.Errorf("%w: label border %g outside (0, 1]", ErrInvalidConfig, c.LabelBorder)
	}
	if c.Wrap != blob.WrapFirstSample && c.Wrap != blob.WrapPerSample {
		return fmt.Errorf("%w: wrap mode %d", ErrInvalidConfig, c.Wrap)
	}
	return nil
}
