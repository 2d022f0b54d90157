package analysis

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

type Moments struct {
	Mean     float64
	Std      float64
	Skewness float64
	// Flatness is the excess kurtosis.
	Flatness float64
	// Intermittency is estimated as mean^2 / variance.
	Intermittency float64
	Min, Max      float64
}

func ComputeMoments(series []float64) Moments {
	if len(series) == 0 {
		return Moments{}
	}

	var m Moments
	m.Mean, m.Std = stat.MeanStdDev(series, nil)
	m.Min, m.Max = floats.Min(series), floats.Max(series)
	if m.Std > 0 {
		m.Skewness = stat.Skew(series, nil)
		m.Flatness = stat.ExKurtosis(series, nil)
		m.Intermittency = m.Mean * m.Mean / (m.Std * m.Std)
	}
	return m
}

func (m Moments) String() string {
	return fmt.Sprintf("mean=%.4g std=%.4g skew=%.4g flat=%.4g gamma=%.4g range=[%.4g, %.4g]",
		m.Mean, m.Std, m.Skewness, m.Flatness, m.Intermittency, m.Min, m.Max)
}

// Histogram bins series into bins equal-width bins over its range and
// returns the bin centers with a density normalized to unit area.
func Histogram(series []float64, bins int) (centers, density []float64) {
	if len(series) == 0 || bins < 1 {
		return nil, nil
	}

	sorted := slices.Clone(series)
	slices.Sort(sorted)
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if hi == lo {
		hi = lo + 1
	}

	dividers := make([]float64, bins+1)
	floats.Span(dividers, lo, hi)
	// The upper divider is exclusive.
	dividers[bins] = math.Nextafter(hi, math.Inf(1))

	density = stat.Histogram(nil, dividers, sorted, nil)
	width := (hi - lo) / float64(bins)
	floats.Scale(1/(width*float64(len(sorted))), density)

	centers = make([]float64, bins)
	for i := range centers {
		centers[i] = (dividers[i] + dividers[i+1]) / 2
	}
	return centers, density
}
