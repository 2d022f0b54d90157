package optim

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/blobfield/internal/automation"
	"github.com/san-kum/blobfield/internal/config"
	"github.com/san-kum/blobfield/internal/experiment"
)

// Objective scores the metrics of one realization; lower is better.
type Objective func(metrics map[string]float64) float64

// Target scores the distance of one metric from a wanted value. A missing
// or NaN metric scores +Inf.
func Target(metric string, want float64) Objective {
	return func(metrics map[string]float64) float64 {
		v, ok := metrics[metric]
		if !ok || math.IsNaN(v) {
			return math.Inf(1)
		}
		return math.Abs(v - want)
	}
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("got %d parameters but %d ranges", len(params), len(ranges))
	}
	probe := config.DefaultConfig()
	for i, name := range params {
		if err := automation.SetParam(probe, name, 0); err != nil {
			return nil, err
		}
		if len(ranges[i]) == 0 {
			return nil, fmt.Errorf("empty range for %s", name)
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

type Result struct {
	Params    map[string]float64
	Score     float64
	Evaluated int
}

// Search realizes base at every point of the parameter grid and returns
// the point with the lowest objective. Ties keep the first point.
func (g *GridSearch) Search(
	ctx context.Context,
	base *config.Config,
	registry *experiment.Registry,
	objective Objective,
) (Result, error) {
	best := Result{Score: math.Inf(1)}
	err := g.searchRecursive(ctx, 0, make(map[string]float64), base, registry, objective, &best)
	return best, err
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	base *config.Config,
	registry *experiment.Registry,
	objective Objective,
	best *Result,
) error {
	if depth == len(g.paramNames) {
		metrics, err := evaluate(ctx, base, registry, current)
		if err != nil {
			return err
		}
		best.Evaluated++

		val := objective(metrics)
		if best.Params == nil || val < best.Score {
			best.Score = val
			best.Params = make(map[string]float64, len(current))
			for k, v := range current {
				best.Params[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, base, registry, objective, best); err != nil {
			return err
		}
	}
	return nil
}

// evaluate realizes base with params applied and returns its metrics.
func evaluate(ctx context.Context, base *config.Config, registry *experiment.Registry, params map[string]float64) (map[string]float64, error) {
	cfg := base.Clone()
	for name, v := range params {
		if err := automation.SetParam(cfg, name, v); err != nil {
			return nil, err
		}
	}

	exp, err := experiment.New(cfg, registry)
	if err != nil {
		return nil, err
	}

	result, err := exp.Run(ctx)
	if err != nil {
		return nil, err
	}
	return result.Metadata.Metrics, nil
}

// Linspace returns n evenly spaced values from lo to hi.
func Linspace(lo, hi float64, n int) []float64 {
	if n < 1 {
		return nil
	}
	if n == 1 {
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}
