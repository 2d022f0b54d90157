package automation

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/san-kum/blobfield/internal/config"
	"github.com/san-kum/blobfield/internal/experiment"
	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"
)

// Scenario defines a scripted sequence of realizations
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep starts from a preset and overrides a few values. Zero
// values keep the preset's setting.
type ScenarioStep struct {
	Preset   string  `yaml:"preset"`
	Factory  string  `yaml:"factory"`
	NumBlobs int     `yaml:"num_blobs"`
	Seed     uint64  `yaml:"seed"`
	TDrain   float64 `yaml:"t_drain"`
	Labels   string  `yaml:"labels"`
	SpeedUp  *bool   `yaml:"speed_up"`
	SaveAs   string  `yaml:"save_as"`
}

// StepResult pairs a finished realization with the name it should be
// stored under.
type StepResult struct {
	SaveAs string
	*experiment.Result
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}

	return &scenario, nil
}

// Config resolves the step against its preset.
func (s ScenarioStep) Config() (*config.Config, error) {
	name := s.Preset
	if name == "" {
		name = "default"
	}
	cfg := config.GetPreset(name)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s", name)
	}

	if s.Factory != "" {
		cfg.Factory = s.Factory
	}
	if s.NumBlobs > 0 {
		cfg.NumBlobs = s.NumBlobs
	}
	if s.Seed != 0 {
		cfg.Seed = s.Seed
	}
	if s.TDrain > 0 {
		cfg.Drain = config.DrainConfig{Time: s.TDrain}
	}
	if s.Labels != "" {
		cfg.Labels.Mode = s.Labels
	}
	if s.SpeedUp != nil {
		cfg.Run.SpeedUp = *s.SpeedUp
	}
	if s.SaveAs != "" {
		cfg.Name = s.SaveAs
	}
	return cfg, nil
}

// RunScenario executes all steps in a scenario
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		slog.Info("running step", "step", i+1, "of", len(scenario.Steps), "preset", step.Preset)

		cfg, err := step.Config()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		exp, err := experiment.New(cfg, registry)
		if err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		results = append(results, StepResult{SaveAs: step.SaveAs, Result: result})
	}

	return results, nil
}

// ParameterSweep runs realizations across a range of one parameter.
type ParameterSweep struct {
	Base      *config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

// SweepResult holds the metrics of one sweep point
type SweepResult struct {
	ParamValue float64
	Metrics    map[string]float64
}

// SweepParams lists the parameters a sweep can vary.
func SweepParams() []string {
	names := make([]string, 0, len(sweepSetters))
	for name := range sweepSetters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var sweepSetters = map[string]func(*config.Config, float64){
	"t_drain":   func(c *config.Config, v float64) { c.Drain = config.DrainConfig{Time: v} },
	"num_blobs": func(c *config.Config, v float64) { c.NumBlobs = int(v) },
	"amplitude": func(c *config.Config, v float64) { c.Blobs.Amplitude.Free = v },
	"v_x":       func(c *config.Config, v float64) { c.Blobs.VX.Free = v },
	"v_y":       func(c *config.Config, v float64) { c.Blobs.VY.Free = v },
	"width_x":   func(c *config.Config, v float64) { c.Blobs.WidthX.Free = v },
	"width_y":   func(c *config.Config, v float64) { c.Blobs.WidthY.Free = v },
}

// SetParam applies one sweepable parameter to cfg.
func SetParam(cfg *config.Config, name string, v float64) error {
	set, ok := sweepSetters[name]
	if !ok {
		return fmt.Errorf("unknown sweep parameter: %s", name)
	}
	set(cfg, v)
	return nil
}

// RunSweep executes a parameter sweep
func RunSweep(ctx context.Context, sweep *ParameterSweep, registry *experiment.Registry) ([]SweepResult, error) {
	set, ok := sweepSetters[sweep.ParamName]
	if !ok {
		return nil, fmt.Errorf("unknown sweep parameter: %s", sweep.ParamName)
	}
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep needs at least one step, got %d", sweep.NumSteps)
	}

	paramStep := 0.0
	if sweep.NumSteps > 1 {
		paramStep = (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)
	}

	results := make([]SweepResult, 0, sweep.NumSteps)
	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep
		cfg := sweep.Base.Clone()
		set(cfg, paramVal)

		exp, err := experiment.New(cfg, registry)
		if err != nil {
			return nil, err
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return nil, err
		}

		results = append(results, SweepResult{
			ParamValue: paramVal,
			Metrics:    result.Metadata.Metrics,
		})

		slog.Info("sweep point done", "step", i+1, "of", sweep.NumSteps, sweep.ParamName, paramVal)
	}

	return results, nil
}

// MonteCarloConfig repeats one configuration with consecutive seeds.
type MonteCarloConfig struct {
	Base      *config.Config
	NumTrials int
	Seed      uint64
}

type MonteCarloResult struct {
	TrialID int
	Seed    uint64
	Metrics map[string]float64
}

// RunMonteCarlo executes independent realizations of one configuration
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, registry *experiment.Registry) ([]MonteCarloResult, error) {
	results := make([]MonteCarloResult, 0, cfg.NumTrials)

	base := cfg.Seed
	if base == 0 {
		base = 1
	}

	for trial := 0; trial < cfg.NumTrials; trial++ {
		c := cfg.Base.Clone()
		c.Seed = base + uint64(trial)

		exp, err := experiment.New(c, registry)
		if err != nil {
			return nil, err
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return nil, err
		}

		results = append(results, MonteCarloResult{
			TrialID: trial,
			Seed:    c.Seed,
			Metrics: result.Metadata.Metrics,
		})

		if (trial+1)%10 == 0 {
			slog.Info("monte carlo progress", "done", trial+1, "of", cfg.NumTrials)
		}
	}

	return results, nil
}

// MetricSummary is the spread of one metric over Monte Carlo trials.
type MetricSummary struct {
	Name string
	Mean float64
	Std  float64
}

// MonteCarloStats summarizes every metric reported by all trials.
func MonteCarloStats(results []MonteCarloResult) []MetricSummary {
	if len(results) == 0 {
		return nil
	}

	names := make([]string, 0, len(results[0].Metrics))
	for name := range results[0].Metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	summary := make([]MetricSummary, 0, len(names))
	for _, name := range names {
		values := make([]float64, 0, len(results))
		for _, r := range results {
			if v, ok := r.Metrics[name]; ok {
				values = append(values, v)
			}
		}
		s := MetricSummary{Name: name, Mean: stat.Mean(values, nil)}
		if len(values) > 1 {
			s.Std = stat.StdDev(values, nil)
		}
		summary = append(summary, s)
	}
	return summary
}
