package grid

// Field is a dense Ny x Nx x Nt array laid out like Mesh values.
type Field struct {
	Ny, Nx, Nt int
	Data       []float64
}

func NewField(ny, nx, nt int) *Field {
	return &Field{Ny: ny, Nx: nx, Nt: nt, Data: make([]float64, ny*nx*nt)}
}

func (f *Field) Index(iy, ix, it int) int {
	return (iy*f.Nx+ix)*f.Nt + it
}

func (f *Field) At(iy, ix, it int) float64 { return f.Data[f.Index(iy, ix, it)] }

func (f *Field) Set(iy, ix, it int, v float64) { f.Data[f.Index(iy, ix, it)] = v }

func (f *Field) Reset() {
	for i := range f.Data {
		f.Data[i] = 0
	}
}

// AddWindow adds values evaluated on a mesh restricted to the time window
// starting at start.
func (f *Field) AddWindow(start int, nt int, values []float64) {
	for iy := 0; iy < f.Ny; iy++ {
		for ix := 0; ix < f.Nx; ix++ {
			src := (iy*f.Nx + ix) * nt
			dst := f.Index(iy, ix, start)
			for it := 0; it < nt; it++ {
				f.Data[dst+it] += values[src+it]
			}
		}
	}
}

// Add sums o into f; both must have the same shape.
func (f *Field) Add(o *Field) {
	for i, v := range o.Data {
		f.Data[i] += v
	}
}

// Series returns a copy of the time series at one grid point.
func (f *Field) Series(iy, ix int) []float64 {
	out := make([]float64, f.Nt)
	copy(out, f.Data[f.Index(iy, ix, 0):f.Index(iy, ix, 0)+f.Nt])
	return out
}

// Frame returns the spatial slice at time index it as rows of y.
func (f *Field) Frame(it int) [][]float64 {
	rows := make([][]float64, f.Ny)
	for iy := range rows {
		rows[iy] = make([]float64, f.Nx)
		for ix := range rows[iy] {
			rows[iy][ix] = f.At(iy, ix, it)
		}
	}
	return rows
}

func (f *Field) Clone() *Field {
	c := NewField(f.Ny, f.Nx, f.Nt)
	copy(c.Data, f.Data)
	return c
}
