package grid

import (
	"fmt"
	"math"
)

// Params describes the resolution and extent of a discretization grid.
type Params struct {
	Nx, Ny    int
	Lx, Ly    float64
	Dt, T     float64
	TInit     float64
	PeriodicY bool
}

// Grid holds the coordinate axes a model is evaluated on.
type Grid struct {
	Params Params
	X      []float64
	Y      []float64
	T      []float64
}

func New(p Params) *Grid {
	g := &Grid{Params: p}

	g.X = make([]float64, max(p.Nx, 0))
	for i := range g.X {
		g.X[i] = float64(i) * p.Lx / float64(p.Nx)
	}

	if p.Ly == 0 {
		g.Y = []float64{0}
	} else {
		g.Y = make([]float64, max(p.Ny, 0))
		for i := range g.Y {
			g.Y[i] = float64(i) * p.Ly / float64(p.Ny)
		}
	}

	g.T = make([]float64, timeSteps(p.TInit, p.T, p.Dt))
	for i := range g.T {
		g.T[i] = p.TInit + float64(i)*p.Dt
	}

	return g
}

// timeSteps counts the samples start, start+step, ... below stop. The
// small slack absorbs rounding in the division.
func timeSteps(start, stop, step float64) int {
	if step <= 0 || stop <= start {
		return 0
	}
	n := math.Ceil((stop-start)/step - 1e-9)
	if n < 0 {
		return 0
	}
	return int(n)
}

func (g *Grid) Nt() int { return len(g.T) }

// Mesh returns the full outer-product view of the axes.
func (g *Grid) Mesh() Mesh {
	return Mesh{X: g.X, Y: g.Y, T: g.T}
}

// NewField allocates a zeroed field shaped like the grid.
func (g *Grid) NewField() *Field {
	return NewField(len(g.Y), len(g.X), len(g.T))
}

func (g *Grid) String() string {
	return fmt.Sprintf("Geometry parameters:  Nx:%d,  Ny:%d, Lx:%g, Ly:%g, dt:%g, T:%g, t_init:%g, y-periodicity:%t",
		g.Params.Nx, g.Params.Ny, g.Params.Lx, g.Params.Ly, g.Params.Dt, g.Params.T, g.Params.TInit, g.Params.PeriodicY)
}
