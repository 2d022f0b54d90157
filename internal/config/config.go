package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultNx          = 100
	DefaultNy          = 100
	DefaultL           = 10.0
	DefaultDt          = 0.1
	DefaultT           = 10.0
	DefaultNumBlobs    = 1000
	DefaultDrain       = 10.0
	DefaultLabelBorder = 0.75
	DefaultTolerance   = 1e-2
)

type Config struct {
	Name           string      `yaml:"name"`
	Factory        string      `yaml:"factory"`
	Seed           uint64      `yaml:"seed"`
	Grid           GridConfig  `yaml:"grid"`
	NumBlobs       int         `yaml:"num_blobs"`
	Shape          ShapeConfig `yaml:"shape"`
	Drain          DrainConfig `yaml:"drain"`
	OneDimensional bool        `yaml:"one_dimensional"`
	Wrap           string      `yaml:"wrap"`
	Labels         LabelConfig `yaml:"labels"`
	Blobs          BlobsConfig `yaml:"blobs"`
	Run            RunConfig   `yaml:"run"`
}

type GridConfig struct {
	Nx        int     `yaml:"nx"`
	Ny        int     `yaml:"ny"`
	Lx        float64 `yaml:"lx"`
	Ly        float64 `yaml:"ly"`
	Dt        float64 `yaml:"dt"`
	T         float64 `yaml:"t"`
	TInit     float64 `yaml:"t_init"`
	PeriodicY bool    `yaml:"periodic_y"`
}

type ShapeConfig struct {
	Prop string `yaml:"prop"`
	Perp string `yaml:"perp"`
}

// DrainConfig holds a constant drain time, an explicit per-x profile, or
// the two end points of a linear profile over the x axis.
type DrainConfig struct {
	Time    float64   `yaml:"time"`
	Profile []float64 `yaml:"profile,omitempty"`
	Linear  []float64 `yaml:"linear,omitempty"`
}

type LabelConfig struct {
	Mode   string  `yaml:"mode"`
	Border float64 `yaml:"border"`
	Policy string  `yaml:"policy"`
}

// DistConfig names a distribution and its free parameter.
type DistConfig struct {
	Dist string  `yaml:"dist"`
	Free float64 `yaml:"free"`
}

type ThetaConfig struct {
	Sampler string  `yaml:"sampler"`
	Value   float64 `yaml:"value"`
	Min     float64 `yaml:"min"`
	Max     float64 `yaml:"max"`
}

type BlobsConfig struct {
	Amplitude DistConfig  `yaml:"amplitude"`
	WidthX    DistConfig  `yaml:"width_x"`
	WidthY    DistConfig  `yaml:"width_y"`
	VX        DistConfig  `yaml:"v_x"`
	VY        DistConfig  `yaml:"v_y"`
	ShapeX    DistConfig  `yaml:"shape_x"`
	ShapeY    DistConfig  `yaml:"shape_y"`
	Aligned   bool        `yaml:"aligned"`
	Theta     ThetaConfig `yaml:"theta"`
}

type RunConfig struct {
	SpeedUp   bool    `yaml:"speed_up"`
	Tolerance float64 `yaml:"tolerance"`
	Workers   int     `yaml:"workers"`
	Verbose   bool    `yaml:"verbose"`
}

func DefaultConfig() *Config {
	return &Config{
		Name:    "default",
		Factory: "default",
		Grid: GridConfig{
			Nx: DefaultNx,
			Ny: DefaultNy,
			Lx: DefaultL,
			Ly: DefaultL,
			Dt: DefaultDt,
			T:  DefaultT,
		},
		NumBlobs: DefaultNumBlobs,
		Shape:    ShapeConfig{Prop: "gauss", Perp: "gauss"},
		Drain:    DrainConfig{Time: DefaultDrain},
		Wrap:     "first_sample",
		Labels:   LabelConfig{Mode: "off", Border: DefaultLabelBorder, Policy: "last_write_wins"},
		Blobs:    DefaultBlobs(),
		Run:      RunConfig{Tolerance: DefaultTolerance, Workers: 1},
	}
}

// DefaultBlobs mirrors ensemble.DefaultParams.
func DefaultBlobs() BlobsConfig {
	deg := func(v float64) DistConfig { return DistConfig{Dist: "deg", Free: v} }
	return BlobsConfig{
		Amplitude: DistConfig{Dist: "exp", Free: 1},
		WidthX:    deg(1),
		WidthY:    deg(1),
		VX:        deg(1),
		VY:        deg(1),
		ShapeX:    deg(0.5),
		ShapeY:    deg(0.5),
		Aligned:   true,
		Theta:     ThetaConfig{Sampler: "constant"},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// DrainProfile resolves the drain section against Grid.Nx. It returns nil
// for a constant drain.
func (c *Config) DrainProfile() []float64 {
	if len(c.Drain.Profile) > 0 {
		return c.Drain.Profile
	}
	if len(c.Drain.Linear) != 2 {
		return nil
	}
	nx := c.Grid.Nx
	out := make([]float64, nx)
	from, to := c.Drain.Linear[0], c.Drain.Linear[1]
	for i := range out {
		if nx == 1 {
			out[i] = from
			continue
		}
		out[i] = from + (to-from)*float64(i)/float64(nx-1)
	}
	return out
}

// Clone returns a deep copy so presets can be modified safely.
func (c *Config) Clone() *Config {
	out := *c
	out.Drain.Profile = append([]float64(nil), c.Drain.Profile...)
	out.Drain.Linear = append([]float64(nil), c.Drain.Linear...)
	return &out
}
