package shape

import (
	"errors"
	"math"
	"testing"
)

func TestKernelValues(t *testing.T) {
	lam := Params{Lam: 0.25}
	tests := []struct {
		name     string
		kind     Kind
		params   Params
		theta    float64
		expected float64
	}{
		{"gauss peak", Gauss, Params{}, 0, 1 / math.Sqrt(math.Pi)},
		{"gauss tail", Gauss, Params{}, 2, math.Exp(-4) / math.Sqrt(math.Pi)},
		{"exp left", Exp, Params{}, -1, math.Exp(-1)},
		{"exp right", Exp, Params{}, 0.5, 0},
		{"exp zero", Exp, Params{}, 0, 0},
		{"lorentz peak", Lorentz, Params{}, 0, 1 / math.Pi},
		{"lorentz one", Lorentz, Params{}, 1, 1 / (2 * math.Pi)},
		{"secant peak", Secant, Params{}, 0, 1 / math.Pi},
		{"rect inside", Rect, Params{}, 0.49, 1},
		{"rect edge", Rect, Params{}, 0.5, 0},
		{"dipole zero", Dipole, Params{}, 0, 0},
		{"dipole one", Dipole, Params{}, 1, -2 / math.Sqrt(2*math.Pi) * math.Exp(-0.5)},
		{"double exp left", DoubleExp, lam, -0.5, math.Exp(-2)},
		{"double exp right", DoubleExp, lam, 0.75, math.Exp(-1)},
		{"double exp zero", DoubleExp, lam, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, err := NewKernel(tt.kind, tt.params)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := k.Eval(tt.theta)
			if math.Abs(got-tt.expected) > 1e-12 {
				t.Errorf("expected %.12f, got %.12f", tt.expected, got)
			}
		})
	}
}

func TestDoubleExpRejectsLam(t *testing.T) {
	for _, lam := range []float64{0, 1, -0.2, 1.5} {
		_, err := NewKernel(DoubleExp, Params{Lam: lam})
		if !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("lam=%g: expected ErrInvalidParameter, got %v", lam, err)
		}
	}
}

func TestUnknownKind(t *testing.T) {
	if _, err := NewKernel(Kind(42), Params{}); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
	if _, err := ParseKind("triangle"); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
	if err := (Shape{Prop: Gauss, Perp: Kind(0)}).Validate(); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
}

func TestParseKindAliases(t *testing.T) {
	tests := map[string]Kind{
		"gauss":      Gauss,
		"Gaussian":   Gauss,
		"exp":        Exp,
		"2-exp":      DoubleExp,
		"double_exp": DoubleExp,
		" rect ":     Rect,
	}
	for name, want := range tests {
		got, err := ParseKind(name)
		if err != nil {
			t.Errorf("%q: unexpected error %v", name, err)
			continue
		}
		if got != want {
			t.Errorf("%q: expected %s, got %s", name, want, got)
		}
	}

	for _, name := range Names() {
		k, err := ParseKind(name)
		if err != nil || k.String() != name {
			t.Errorf("canonical name %q does not round trip", name)
		}
	}
}

func TestEvalSlice(t *testing.T) {
	k := MustKernel(Gauss, Params{})
	theta := []float64{-1, 0, 1}
	dst := make([]float64, 3)
	k.EvalSlice(dst, theta)

	for i, th := range theta {
		if dst[i] != k.Eval(th) {
			t.Errorf("index %d: slice and scalar evaluation differ", i)
		}
	}
	if dst[0] != dst[2] {
		t.Error("gaussian must be symmetric")
	}
}

func TestKernelNormalization(t *testing.T) {
	// Gauss, Lorentz and Secant integrate to one; Exp to one over its support.
	for _, kind := range []Kind{Gauss, Lorentz, Secant, Exp} {
		k := MustKernel(kind, Params{})
		sum, h := 0.0, 1e-3
		for th := -2000.0; th < 2000.0; th += h {
			sum += k.Eval(th) * h
		}
		tol := 1e-3
		if kind == Lorentz {
			tol = 1e-3 + 1/(math.Pi*1000)
		}
		if math.Abs(sum-1) > tol {
			t.Errorf("%s: integral %.6f not close to 1", kind, sum)
		}
	}
}
