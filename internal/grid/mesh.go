package grid

// Mesh is the outer product of three coordinate axes. Values evaluated on a
// mesh are stored flat in (y, x, t) order; see Index.
type Mesh struct {
	X []float64
	Y []float64
	T []float64
}

func (m Mesh) Len() int { return len(m.X) * len(m.Y) * len(m.T) }

func (m Mesh) Index(iy, ix, it int) int {
	return (iy*len(m.X)+ix)*len(m.T) + it
}

// Window restricts the time axis to [start, stop). The returned mesh shares
// storage with m.
func (m Mesh) Window(start, stop int) Mesh {
	return Mesh{X: m.X, Y: m.Y, T: m.T[start:stop]}
}

// Point builds a single-sample mesh.
func Point(x, y, t float64) Mesh {
	return Mesh{X: []float64{x}, Y: []float64{y}, T: []float64{t}}
}
