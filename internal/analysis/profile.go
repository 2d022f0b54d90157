package analysis

import (
	"math"

	"github.com/san-kum/blobfield/internal/grid"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// TimeAverage returns the time mean of f as rows of y.
func TimeAverage(f *grid.Field) [][]float64 {
	out := make([][]float64, f.Ny)
	for iy := range out {
		out[iy] = RowProfile(f, iy)
	}
	return out
}

// RowProfile is the time mean of row iy at every x.
func RowProfile(f *grid.Field, iy int) []float64 {
	out := make([]float64, f.Nx)
	if f.Nt == 0 {
		return out
	}
	for ix := range out {
		start := f.Index(iy, ix, 0)
		out[ix] = stat.Mean(f.Data[start:start+f.Nt], nil)
	}
	return out
}

// XProfile is the mean over y and time at every x.
func XProfile(f *grid.Field) []float64 {
	out := make([]float64, f.Nx)
	if f.Ny == 0 {
		return out
	}
	for iy := 0; iy < f.Ny; iy++ {
		floats.Add(out, RowProfile(f, iy))
	}
	floats.Scale(1/float64(f.Ny), out)
	return out
}

// DrainageParams describe a one-dimensional train of exponential pulses.
type DrainageParams struct {
	Velocity    float64
	Width       float64
	WaitingTime float64
	Amplitude   float64
	TLoss       float64
}

// PulseDuration is the time a pulse needs to travel its own width.
func (p DrainageParams) PulseDuration() float64 { return p.Width / p.Velocity }

// AnalyticalProfile is the mean profile of the pulse train,
//
//	<n>(x) = A * td/tw * exp(-x / (v * tLoss)),  td = tLoss*tp / (tLoss + tp)
func AnalyticalProfile(x []float64, p DrainageParams) []float64 {
	tp := p.PulseDuration()
	td := p.TLoss * tp / (p.TLoss + tp)
	out := make([]float64, len(x))
	for i, xi := range x {
		out[i] = p.Amplitude * td / p.WaitingTime * math.Exp(-xi/(p.Velocity*p.TLoss))
	}
	return out
}

// MeanAbsError is the mean absolute difference of two equally long slices.
func MeanAbsError(a, b []float64) float64 {
	if len(a) == 0 {
		return 0
	}
	return floats.Distance(a, b, 1) / float64(len(a))
}

// FitDecayLength fits profile ~ exp(-x/L) on the positive samples and
// returns L. It returns +Inf for a flat or rising profile and NaN when
// fewer than two samples are positive.
func FitDecayLength(x, profile []float64) float64 {
	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(x))
	for i, v := range profile {
		if v > 0 {
			xs = append(xs, x[i])
			ys = append(ys, math.Log(v))
		}
	}
	if len(xs) < 2 {
		return math.NaN()
	}

	_, beta := stat.LinearRegression(xs, ys, nil, false)
	if beta >= 0 {
		return math.Inf(1)
	}
	return -1 / beta
}
