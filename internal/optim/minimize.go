package optim

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/optimize"

	"github.com/san-kum/blobfield/internal/config"
	"github.com/san-kum/blobfield/internal/experiment"
)

// penalty scores points that cannot be realized, such as a negative
// drain time.
const penalty = 1e300

const defaultEvals = 50

// Minimize refines params from start with Nelder-Mead, realizing base
// about maxEvals times. Every realization uses base.Seed, so the objective
// is deterministic. Unrealizable points score a penalty; only context
// errors abort the search.
func Minimize(
	ctx context.Context,
	base *config.Config,
	registry *experiment.Registry,
	params []string,
	start []float64,
	objective Objective,
	maxEvals int,
) (Result, error) {
	if len(params) == 0 || len(params) != len(start) {
		return Result{}, fmt.Errorf("got %d parameters but %d start values", len(params), len(start))
	}
	if _, err := NewGridSearch(params, singletonRanges(start)); err != nil {
		return Result{}, err
	}
	if maxEvals <= 0 {
		maxEvals = defaultEvals
	}

	best := Result{Score: math.Inf(1)}
	var ctxErr error

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			if ctxErr != nil {
				return penalty
			}
			point := make(map[string]float64, len(params))
			for i, name := range params {
				point[name] = x[i]
			}

			metrics, err := evaluate(ctx, base, registry, point)
			if err != nil {
				if ctx.Err() != nil {
					ctxErr = ctx.Err()
				}
				slog.Debug("point not realizable", "params", point, "err", err)
				return penalty
			}
			best.Evaluated++

			val := objective(metrics)
			if val < best.Score {
				best.Score = val
				best.Params = point
			}
			if math.IsNaN(val) || math.IsInf(val, 0) {
				return penalty
			}
			return val
		},
	}

	settings := &optimize.Settings{FuncEvaluations: maxEvals}
	result, err := optimize.Minimize(problem, start, settings, &optimize.NelderMead{})
	if ctxErr != nil {
		return best, ctxErr
	}
	if err != nil {
		slog.Debug("optimization ended", "err", err)
	}
	if result != nil {
		slog.Debug("optimization done", "status", result.Status, "evaluations", best.Evaluated, "score", best.Score)
	}

	if best.Params == nil {
		return best, fmt.Errorf("no realizable point near %v", start)
	}
	return best, nil
}

func singletonRanges(start []float64) [][]float64 {
	out := make([][]float64, len(start))
	for i, v := range start {
		out[i] = []float64{v}
	}
	return out
}
