package grid

import (
	"math"
	"testing"
)

func TestGridAxes(t *testing.T) {
	g := New(Params{Nx: 100, Ny: 50, Lx: 10, Ly: 5, Dt: 0.1, T: 10, TInit: 0})

	if len(g.X) != 100 {
		t.Errorf("expected 100 x samples, got %d", len(g.X))
	}
	if len(g.Y) != 50 {
		t.Errorf("expected 50 y samples, got %d", len(g.Y))
	}
	if g.Nt() != 100 {
		t.Errorf("expected 100 t samples, got %d", g.Nt())
	}
	if math.Abs(g.X[1]-0.1) > 1e-12 {
		t.Errorf("expected dx 0.1, got %f", g.X[1])
	}
	if g.X[len(g.X)-1] >= 10 {
		t.Error("x axis must stay below Lx")
	}
}

func TestGridDegenerateY(t *testing.T) {
	g := New(Params{Nx: 10, Ny: 1, Lx: 10, Ly: 0, Dt: 1, T: 5})

	if len(g.Y) != 1 || g.Y[0] != 0 {
		t.Errorf("expected single zero y sample, got %v", g.Y)
	}
}

func TestGridTimeAxis(t *testing.T) {
	tests := []struct {
		name  string
		p     Params
		steps int
		first float64
	}{
		{"unit steps", Params{Nx: 1, Lx: 1, Dt: 1, T: 5}, 5, 0},
		{"offset start", Params{Nx: 1, Lx: 1, Dt: 0.1, T: 1000, TInit: 10}, 9900, 10},
		{"non-divisible", Params{Nx: 1, Lx: 1, Dt: 0.3, T: 1}, 4, 0},
		{"empty", Params{Nx: 1, Lx: 1, Dt: 1, T: 0}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(tt.p)
			if g.Nt() != tt.steps {
				t.Fatalf("expected %d steps, got %d", tt.steps, g.Nt())
			}
			if tt.steps > 0 && g.T[0] != tt.first {
				t.Errorf("expected first time %f, got %f", tt.first, g.T[0])
			}
		})
	}
}

func TestMeshIndexMatchesField(t *testing.T) {
	g := New(Params{Nx: 4, Ny: 3, Lx: 4, Ly: 3, Dt: 1, T: 5})
	m := g.Mesh()
	f := g.NewField()

	if m.Len() != len(f.Data) {
		t.Fatalf("mesh length %d differs from field length %d", m.Len(), len(f.Data))
	}
	if m.Index(2, 1, 3) != f.Index(2, 1, 3) {
		t.Error("mesh and field layouts differ")
	}
}

func TestFieldAddWindow(t *testing.T) {
	f := NewField(2, 3, 6)
	values := make([]float64, 2*3*2)
	for i := range values {
		values[i] = 1
	}

	f.AddWindow(4, 2, values)

	for iy := 0; iy < 2; iy++ {
		for ix := 0; ix < 3; ix++ {
			for it := 0; it < 6; it++ {
				want := 0.0
				if it >= 4 {
					want = 1
				}
				if f.At(iy, ix, it) != want {
					t.Errorf("(%d,%d,%d): expected %f, got %f", iy, ix, it, want, f.At(iy, ix, it))
				}
			}
		}
	}
}

func TestFieldSeriesAndFrame(t *testing.T) {
	f := NewField(2, 2, 3)
	f.Set(1, 0, 2, 7)

	if s := f.Series(1, 0); s[2] != 7 || len(s) != 3 {
		t.Errorf("unexpected series %v", s)
	}
	if fr := f.Frame(2); fr[1][0] != 7 {
		t.Errorf("unexpected frame %v", fr)
	}

	f.Reset()
	if f.At(1, 0, 2) != 0 {
		t.Error("expected zero after reset")
	}
}
