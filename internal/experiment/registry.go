package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/blobfield/internal/config"
	"github.com/san-kum/blobfield/internal/ensemble"
	"github.com/san-kum/blobfield/internal/model"
)

// FactoryBuilder creates the blob factory of a configured run.
type FactoryBuilder func(cfg *config.Config, seed uint64, reg *Registry) (ensemble.Factory, error)

type Registry struct {
	factories map[string]FactoryBuilder
	policies  map[string]model.LabelPolicy
	thetas    map[string]func(config.ThetaConfig) ensemble.ThetaSampler
}

func NewRegistry() *Registry {
	r := &Registry{
		factories: make(map[string]FactoryBuilder),
		policies:  make(map[string]model.LabelPolicy),
		thetas:    make(map[string]func(config.ThetaConfig) ensemble.ThetaSampler),
	}

	r.factories["default"] = buildDefaultFactory
	r.factories["ramp"] = func(_ *config.Config, seed uint64, _ *Registry) (ensemble.Factory, error) {
		return ensemble.NewRampFactory(0.01, 1, seed)
	}

	r.policies["last_write_wins"] = model.LastWriteWins
	r.policies["highest_amplitude"] = model.HighestAmplitude

	r.thetas["constant"] = func(tc config.ThetaConfig) ensemble.ThetaSampler {
		return ensemble.ConstantTheta(tc.Value)
	}
	r.thetas["uniform"] = func(tc config.ThetaConfig) ensemble.ThetaSampler {
		return ensemble.UniformTheta(tc.Min, tc.Max)
	}

	return r
}

// RegisterFactory adds or replaces a named factory.
func (r *Registry) RegisterFactory(name string, fb FactoryBuilder) {
	r.factories[name] = fb
}

func (r *Registry) GetFactory(name string, cfg *config.Config, seed uint64) (ensemble.Factory, error) {
	fn, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown factory: %s", name)
	}
	return fn(cfg, seed, r)
}

func (r *Registry) GetPolicy(name string) (model.LabelPolicy, error) {
	if name == "" {
		return model.LastWriteWins, nil
	}
	p, ok := r.policies[name]
	if !ok {
		return nil, fmt.Errorf("unknown label policy: %s", name)
	}
	return p, nil
}

func (r *Registry) GetThetaSampler(tc config.ThetaConfig) (ensemble.ThetaSampler, error) {
	name := tc.Sampler
	if name == "" {
		name = "constant"
	}
	fn, ok := r.thetas[name]
	if !ok {
		return nil, fmt.Errorf("unknown theta sampler: %s", name)
	}
	return fn(tc), nil
}

func (r *Registry) ListFactories() []string {
	return sortedKeys(r.factories)
}

func (r *Registry) ListPolicies() []string {
	return sortedKeys(r.policies)
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func buildDefaultFactory(cfg *config.Config, seed uint64, reg *Registry) (ensemble.Factory, error) {
	params, err := EnsembleParams(cfg.Blobs)
	if err != nil {
		return nil, err
	}
	theta, err := reg.GetThetaSampler(cfg.Blobs.Theta)
	if err != nil {
		return nil, err
	}
	return ensemble.NewDefaultFactory(params, ensemble.WithSeed(seed), ensemble.WithThetaSampler(theta))
}

// EnsembleParams parses the distribution names of a blobs section.
func EnsembleParams(bc config.BlobsConfig) (ensemble.Params, error) {
	p := ensemble.Params{Aligned: bc.Aligned}
	fields := []struct {
		name string
		dc   config.DistConfig
		dst  *ensemble.Param
	}{
		{"amplitude", bc.Amplitude, &p.Amplitude},
		{"width_x", bc.WidthX, &p.WidthX},
		{"width_y", bc.WidthY, &p.WidthY},
		{"v_x", bc.VX, &p.VX},
		{"v_y", bc.VY, &p.VY},
		{"shape_x", bc.ShapeX, &p.ShapeX},
		{"shape_y", bc.ShapeY, &p.ShapeY},
	}
	for _, f := range fields {
		d, err := ensemble.ParseDistribution(f.dc.Dist)
		if err != nil {
			return p, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = ensemble.Param{Dist: d, Free: f.dc.Free}
	}
	return p, p.Validate()
}
