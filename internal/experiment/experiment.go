package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/san-kum/blobfield/internal/analysis"
	"github.com/san-kum/blobfield/internal/blob"
	"github.com/san-kum/blobfield/internal/config"
	"github.com/san-kum/blobfield/internal/ensemble"
	"github.com/san-kum/blobfield/internal/model"
	"github.com/san-kum/blobfield/internal/shape"
	"github.com/san-kum/blobfield/internal/storage"
)

type Experiment struct {
	cfg     *config.Config
	seed    uint64
	factory ensemble.Factory
	model   *model.Model
}

type Result struct {
	Realization *model.Realization
	Metadata    storage.RunMetadata
	Elapsed     time.Duration
}

// New builds the factory and model of cfg. A zero seed is replaced by a
// random one, which Seed reports.
func New(cfg *config.Config, reg *Registry) (*Experiment, error) {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	mcfg, err := ModelConfig(cfg, reg)
	if err != nil {
		return nil, err
	}

	factory, err := reg.GetFactory(cfg.Factory, cfg, seed)
	if err != nil {
		return nil, err
	}

	m, err := model.New(mcfg, factory)
	if err != nil {
		return nil, err
	}

	return &Experiment{cfg: cfg, seed: seed, factory: factory, model: m}, nil
}

// ModelConfig translates the yaml configuration into a model.Config.
func ModelConfig(cfg *config.Config, reg *Registry) (model.Config, error) {
	prop, err := shape.ParseKind(cfg.Shape.Prop)
	if err != nil {
		return model.Config{}, err
	}
	perp, err := shape.ParseKind(cfg.Shape.Perp)
	if err != nil {
		return model.Config{}, err
	}
	labels, err := model.ParseLabelMode(cfg.Labels.Mode)
	if err != nil {
		return model.Config{}, err
	}
	policy, err := reg.GetPolicy(cfg.Labels.Policy)
	if err != nil {
		return model.Config{}, err
	}
	wrap, err := blob.ParseWrapMode(cfg.Wrap)
	if err != nil {
		return model.Config{}, err
	}

	drain := blob.ConstantDrain(cfg.Drain.Time)
	if profile := cfg.DrainProfile(); profile != nil {
		drain = blob.ProfileDrain(profile)
	}

	g := cfg.Grid
	return model.Config{
		Nx: g.Nx, Ny: g.Ny,
		Lx: g.Lx, Ly: g.Ly,
		Dt: g.Dt, T: g.T,
		TInit:          g.TInit,
		PeriodicY:      g.PeriodicY,
		NumBlobs:       cfg.NumBlobs,
		Shape:          shape.Shape{Prop: prop, Perp: perp},
		Drain:          drain,
		OneDimensional: cfg.OneDimensional,
		Wrap:           wrap,
		Labels:         labels,
		LabelBorder:    cfg.Labels.Border,
		LabelPolicy:    policy,
		Workers:        cfg.Run.Workers,
		Verbose:        cfg.Run.Verbose,
	}, nil
}

func (e *Experiment) Seed() uint64 { return e.seed }

func (e *Experiment) Model() *model.Model { return e.model }

func (e *Experiment) Factory() ensemble.Factory { return e.factory }

// Run makes one realization and describes it for storage.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	r, err := e.model.MakeRealization(e.cfg.Run.SpeedUp, e.cfg.Run.Tolerance)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	slog.Debug("realization done",
		"name", e.cfg.Name,
		"blobs", len(r.Blobs),
		"skipped", r.Skipped,
		"samples", r.Samples,
		"elapsed", elapsed,
	)

	return &Result{
		Realization: r,
		Metadata:    e.Metadata(r, elapsed),
		Elapsed:     elapsed,
	}, nil
}

func (e *Experiment) Metadata(r *model.Realization, elapsed time.Duration) storage.RunMetadata {
	mcfg := e.model.Config()
	meta := storage.RunMetadata{
		Name:           e.cfg.Name,
		Seed:           e.seed,
		Grid:           storage.GridMetaFrom(mcfg.GridParams()),
		NumBlobs:       mcfg.NumBlobs,
		Shape:          mcfg.Shape.String(),
		Factory:        fmt.Sprint(e.factory),
		OneDimensional: mcfg.OneDimensional,
		Labels:         mcfg.Labels.String(),
		LabelBorder:    mcfg.LabelBorder,
		SpeedUp:        e.cfg.Run.SpeedUp,
		Tolerance:      e.cfg.Run.Tolerance,
		Elapsed:        elapsed.Seconds(),
		Metrics:        Metrics(r),
	}
	if mcfg.Drain.IsProfile() {
		meta.DrainProfile = mcfg.Drain.Profile
	} else {
		meta.Drain = mcfg.Drain.Time
	}
	return meta
}

// Metrics summarizes a realization: moments of all samples, the mean of
// the x profile and its fitted e-folding length.
func Metrics(r *model.Realization) map[string]float64 {
	m := analysis.ComputeMoments(r.Density.Data)
	x := analysis.XProfile(r.Density)
	return map[string]float64{
		"mean":          m.Mean,
		"std":           m.Std,
		"skewness":      m.Skewness,
		"flatness":      m.Flatness,
		"max":           m.Max,
		"decay_length":  analysis.FitDecayLength(r.Grid.X, x),
		"skipped_blobs": float64(r.Skipped),
	}
}
