// Package shape provides the one-dimensional pulse shapes a blob is built
// from.
//
// A two-dimensional blob shape is separable:
//
//	phi(theta_x, theta_y) = phi_prop(theta_x) * phi_perp(theta_y)
//
// where each factor is one of the closed set of [Kind] values. The argument
// theta is dimensionless: a coordinate offset divided by the blob width.
package shape

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrUnknownKind indicates a kernel name or enum value outside the closed set.
	ErrUnknownKind = errors.New("shape: unknown kernel")

	// ErrInvalidParameter indicates a kernel parameter outside its valid range.
	ErrInvalidParameter = errors.New("shape: invalid kernel parameter")
)

type Kind int

const (
	Gauss Kind = iota + 1
	Exp
	Lorentz
	Secant
	Rect
	Dipole
	DoubleExp
)

var kindNames = map[Kind]string{
	Gauss:     "gauss",
	Exp:       "exp",
	Lorentz:   "lorentz",
	Secant:    "secant",
	Rect:      "rect",
	Dipole:    "dipole",
	DoubleExp: "2-exp",
}

var kindAliases = map[string]Kind{
	"gauss":      Gauss,
	"gaussian":   Gauss,
	"exp":        Exp,
	"lorentz":    Lorentz,
	"secant":     Secant,
	"rect":       Rect,
	"dipole":     Dipole,
	"2-exp":      DoubleExp,
	"double_exp": DoubleExp,
}

// ParseKind resolves a kernel name.
func ParseKind(name string) (Kind, error) {
	k, ok := kindAliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
	}
	return k, nil
}

func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Names lists the canonical kernel names.
func Names() []string {
	return []string{"gauss", "exp", "lorentz", "secant", "rect", "dipole", "2-exp"}
}

// Shape selects a kernel kind per axis.
type Shape struct {
	Prop Kind
	Perp Kind
}

func Default() Shape { return Shape{Prop: Gauss, Perp: Gauss} }

func (s Shape) Validate() error {
	if !s.Prop.Valid() {
		return fmt.Errorf("%w: propagation kernel %s", ErrUnknownKind, s.Prop)
	}
	if !s.Perp.Valid() {
		return fmt.Errorf("%w: perpendicular kernel %s", ErrUnknownKind, s.Perp)
	}
	return nil
}

func (s Shape) String() string {
	return fmt.Sprintf("%s/%s", s.Prop, s.Perp)
}

// Params carries the extra shape parameters some kernels need.
type Params struct {
	// Lam sets the left/right decay asymmetry of DoubleExp; must be in (0, 1).
	Lam float64
}

// Kernel is a validated kernel kind together with its parameters.
type Kernel struct {
	Kind   Kind
	Params Params
}

func NewKernel(kind Kind, params Params) (Kernel, error) {
	if !kind.Valid() {
		return Kernel{}, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	if kind == DoubleExp && !(params.Lam > 0 && params.Lam < 1) {
		return Kernel{}, fmt.Errorf("%w: lam=%g outside (0, 1)", ErrInvalidParameter, params.Lam)
	}
	return Kernel{Kind: kind, Params: params}, nil
}

// MustKernel is NewKernel for statically known kernels.
func MustKernel(kind Kind, params Params) Kernel {
	k, err := NewKernel(kind, params)
	if err != nil {
		panic(err)
	}
	return k
}

var (
	invSqrtPi  = 1 / math.Sqrt(math.Pi)
	invSqrt2Pi = 1 / math.Sqrt(2*math.Pi)
	twoOverPi  = 2 / math.Pi
	oneOverPi  = 1 / math.Pi
)

// Eval evaluates the kernel at theta.
func (k Kernel) Eval(theta float64) float64 {
	switch k.Kind {
	case Gauss:
		return invSqrtPi * math.Exp(-theta*theta)
	case Exp:
		if theta < 0 {
			return math.Exp(theta)
		}
		return 0
	case Lorentz:
		return oneOverPi / (1 + theta*theta)
	case Secant:
		return twoOverPi / (math.Exp(theta) + math.Exp(-theta))
	case Rect:
		if math.Abs(theta) < 0.5 {
			return 1
		}
		return 0
	case Dipole:
		return -2 * theta * invSqrt2Pi * math.Exp(-theta*theta/2)
	case DoubleExp:
		if theta < 0 {
			return math.Exp(theta / k.Params.Lam)
		}
		return math.Exp(-theta / (1 - k.Params.Lam))
	}
	return 0
}

// EvalSlice evaluates the kernel elementwise into dst, which must be at
// least as long as theta.
func (k Kernel) EvalSlice(dst, theta []float64) {
	for i, th := range theta {
		dst[i] = k.Eval(th)
	}
}

func (k Kernel) String() string {
	if k.Kind == DoubleExp {
		return fmt.Sprintf("%s(lam=%g)", k.Kind, k.Params.Lam)
	}
	return k.Kind.String()
}
