package ensemble

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"
)

var (
	ErrUnknownDistribution = errors.New("ensemble: unknown distribution")
	ErrInvalidParameter    = errors.New("ensemble: invalid distribution parameter")
)

// Distribution selects how a blob parameter is drawn. Every distribution
// except Normal, Deg and Zeros has mean one.
type Distribution int

const (
	// Deg is degenerate at the free parameter.
	Deg Distribution = iota + 1
	Zeros
	// Exp is exponential with the free parameter as scale.
	Exp
	// Gamma has the free parameter as shape and mean one.
	Gamma
	// Normal has zero mean and the free parameter as standard deviation.
	Normal
	// Uniform is centered on one with the free parameter as width.
	Uniform
	// Rayleigh has mean one; the free parameter is unused.
	Rayleigh
)

var distNames = map[Distribution]string{
	Deg:      "deg",
	Zeros:    "zeros",
	Exp:      "exp",
	Gamma:    "gamma",
	Normal:   "normal",
	Uniform:  "uniform",
	Rayleigh: "rayleigh",
}

func ParseDistribution(name string) (Distribution, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "ray" {
		return Rayleigh, nil
	}
	for d, n := range distNames {
		if n == name {
			return d, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDistribution, name)
}

// DistributionNames lists the accepted distribution names.
func DistributionNames() []string {
	return []string{"deg", "zeros", "exp", "gamma", "normal", "uniform", "rayleigh"}
}

func (d Distribution) Valid() bool {
	_, ok := distNames[d]
	return ok
}

func (d Distribution) String() string {
	if n, ok := distNames[d]; ok {
		return n
	}
	return fmt.Sprintf("Distribution(%d)", int(d))
}

// rayleighScale gives the Rayleigh distribution mean one.
var rayleighScale = math.Sqrt(2 / math.Pi)

// Param pairs a distribution with its free parameter.
type Param struct {
	Dist Distribution
	Free float64
}

func Degenerate(v float64) Param { return Param{Dist: Deg, Free: v} }

func (s Param) Validate() error {
	if !s.Dist.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownDistribution, s.Dist)
	}
	switch s.Dist {
	case Exp, Gamma:
		if !(s.Free > 0) {
			return fmt.Errorf("%w: %s needs a positive parameter, got %g", ErrInvalidParameter, s.Dist, s.Free)
		}
	case Normal:
		if s.Free < 0 {
			return fmt.Errorf("%w: normal needs a non-negative scale, got %g", ErrInvalidParameter, s.Free)
		}
	}
	return nil
}

// IsZero reports whether every draw is exactly zero.
func (s Param) IsZero() bool {
	switch s.Dist {
	case Zeros:
		return true
	case Deg, Normal:
		return s.Free == 0
	}
	return false
}

// Sample draws n values using src.
func (s Param) Sample(src rand.Source, n int) []float64 {
	out := make([]float64, n)
	var draw func() float64

	switch s.Dist {
	case Deg:
		for i := range out {
			out[i] = s.Free
		}
		return out
	case Zeros:
		return out
	case Exp:
		draw = distuv.Exponential{Rate: 1 / s.Free, Src: src}.Rand
	case Gamma:
		draw = distuv.Gamma{Alpha: s.Free, Beta: s.Free, Src: src}.Rand
	case Normal:
		draw = distuv.Normal{Mu: 0, Sigma: s.Free, Src: src}.Rand
	case Uniform:
		draw = distuv.Uniform{Min: 1 - s.Free/2, Max: 1 + s.Free/2, Src: src}.Rand
	case Rayleigh:
		// Rayleigh(sigma) is Weibull with shape 2 and scale sigma*sqrt(2).
		draw = distuv.Weibull{K: 2, Lambda: rayleighScale * math.Sqrt2, Src: src}.Rand
	default:
		return out
	}

	for i := range out {
		out[i] = draw()
	}
	return out
}

func (s Param) String() string {
	switch s.Dist {
	case Zeros, Rayleigh:
		return s.Dist.String()
	}
	return fmt.Sprintf("%s(%g)", s.Dist, s.Free)
}
