package config

import "sort"

var Presets = map[string]*Config{
	"default":        DefaultConfig(),
	"one_dim":        oneDim(),
	"analytical":     analytical(),
	"tilted":         tilted(),
	"labels":         labels(),
	"changing_drain": changingDrain(),
}

// oneDim is a short one-dimensional realization suited for animation.
func oneDim() *Config {
	cfg := DefaultConfig()
	cfg.Name = "one_dim"
	cfg.Grid = GridConfig{Nx: 100, Ny: 1, Lx: 10, Ly: 0, Dt: 0.1, T: 10}
	cfg.Shape = ShapeConfig{Prop: "exp", Perp: "exp"}
	cfg.NumBlobs = 20
	cfg.OneDimensional = true
	cfg.Blobs.VY = DistConfig{Dist: "zeros"}
	cfg.Run.SpeedUp = true
	return cfg
}

// analytical reproduces the setting whose time-averaged profile has a
// closed form: unit amplitudes, unit velocities, exponential pulses.
func analytical() *Config {
	cfg := DefaultConfig()
	cfg.Name = "analytical"
	cfg.Grid = GridConfig{Nx: 20, Ny: 1, Lx: 10, Ly: 0, Dt: 1, T: 1000}
	cfg.Shape = ShapeConfig{Prop: "exp", Perp: "gauss"}
	cfg.Drain = DrainConfig{Time: 2}
	cfg.NumBlobs = 10000
	cfg.OneDimensional = true
	cfg.Blobs.Amplitude = DistConfig{Dist: "deg", Free: 1}
	cfg.Blobs.VY = DistConfig{Dist: "zeros"}
	cfg.Run = RunConfig{SpeedUp: true, Tolerance: 1e-10, Workers: 4}
	return cfg
}

func tilted() *Config {
	cfg := DefaultConfig()
	cfg.Name = "tilted"
	cfg.Grid = GridConfig{Nx: 100, Ny: 100, Lx: 10, Ly: 10, Dt: 0.1, T: 20, TInit: 10, PeriodicY: true}
	cfg.Shape = ShapeConfig{Prop: "rect", Perp: "rect"}
	cfg.Drain = DrainConfig{Time: 1e10}
	cfg.NumBlobs = 100
	cfg.Blobs.Amplitude = DistConfig{Dist: "deg", Free: 1}
	cfg.Blobs.WidthX = DistConfig{Dist: "deg", Free: 3}
	cfg.Blobs.WidthY = DistConfig{Dist: "deg", Free: 1}
	cfg.Run.Workers = 4
	return cfg
}

func labels() *Config {
	cfg := DefaultConfig()
	cfg.Name = "labels"
	cfg.Grid = GridConfig{Nx: 100, Ny: 100, Lx: 20, Ly: 20, Dt: 0.1, T: 20, PeriodicY: true}
	cfg.Drain = DrainConfig{Time: 1e10}
	cfg.NumBlobs = 10
	cfg.Labels.Mode = "individual"
	cfg.Run.SpeedUp = true
	return cfg
}

// changingDrain drains faster downstream: t_drain falls linearly from 2 to 1.
func changingDrain() *Config {
	cfg := analytical()
	cfg.Name = "changing_drain"
	cfg.Grid.Nx = 100
	cfg.Drain = DrainConfig{Linear: []float64{2, 1}}
	cfg.Run.Tolerance = 1e-2
	return cfg
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
