// Package ensemble draws the blob parameters a model superposes.
package ensemble

import (
	"cmp"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/san-kum/blobfield/internal/blob"
	"github.com/san-kum/blobfield/internal/shape"
)

// Factory produces the blobs of one realization.
type Factory interface {
	Sample(ly, t float64, numBlobs int, shp shape.Shape, drain blob.Drain) ([]*blob.Blob, error)
	// IsOneDimensional reports whether the blobs never move in y.
	IsOneDimensional() bool
}

// ThetaSampler draws the tilt of one blob.
type ThetaSampler func(r *rand.Rand) float64

func ConstantTheta(theta float64) ThetaSampler {
	return func(*rand.Rand) float64 { return theta }
}

// UniformTheta draws theta uniformly from [lo, hi).
func UniformTheta(lo, hi float64) ThetaSampler {
	return func(r *rand.Rand) float64 { return lo + r.Float64()*(hi-lo) }
}

// Params configures a DefaultFactory: one distribution per blob parameter.
type Params struct {
	Amplitude Param
	WidthX    Param
	WidthY    Param
	VX        Param
	VY        Param
	ShapeX    Param
	ShapeY    Param
	// Aligned rotates each blob into its direction of travel.
	Aligned bool
}

func DefaultParams() Params {
	return Params{
		Amplitude: Param{Dist: Exp, Free: 1},
		WidthX:    Degenerate(1),
		WidthY:    Degenerate(1),
		VX:        Degenerate(1),
		VY:        Degenerate(1),
		ShapeX:    Degenerate(0.5),
		ShapeY:    Degenerate(0.5),
		Aligned:   true,
	}
}

func (p Params) Validate() error {
	params := []struct {
		name  string
		param Param
	}{
		{"amplitude", p.Amplitude},
		{"width_x", p.WidthX},
		{"width_y", p.WidthY},
		{"v_x", p.VX},
		{"v_y", p.VY},
		{"shape_x", p.ShapeX},
		{"shape_y", p.ShapeY},
	}
	for _, s := range params {
		if err := s.param.Validate(); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}

// DefaultFactory draws every blob parameter independently. Positions start
// at x = 0 with y uniform on [0, Ly) and t_init uniform on [0, T).
// It is not safe for concurrent use.
type DefaultFactory struct {
	params Params
	theta  ThetaSampler
	rng    *rand.Rand
}

type Option func(*DefaultFactory)

// WithThetaSampler sets the tilt of non-aligned blobs. The angle is
// measured against the x axis, not the velocity.
func WithThetaSampler(s ThetaSampler) Option {
	return func(f *DefaultFactory) { f.theta = s }
}

func WithSeed(seed uint64) Option {
	return func(f *DefaultFactory) { f.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }
}

func WithRand(r *rand.Rand) Option {
	return func(f *DefaultFactory) { f.rng = r }
}

func NewDefaultFactory(p Params, opts ...Option) (*DefaultFactory, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	f := &DefaultFactory{params: p, theta: ConstantTheta(0)}
	for _, opt := range opts {
		opt(f)
	}
	if f.rng == nil {
		f.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return f, nil
}

func (f *DefaultFactory) Params() Params { return f.params }

func (f *DefaultFactory) IsOneDimensional() bool { return f.params.VY.IsZero() }

// Sample returns numBlobs blobs sorted by amplitude. IDs follow draw order.
func (f *DefaultFactory) Sample(ly, t float64, numBlobs int, shp shape.Shape, drain blob.Drain) ([]*blob.Blob, error) {
	if numBlobs < 0 {
		return nil, fmt.Errorf("%w: negative blob count %d", ErrInvalidParameter, numBlobs)
	}
	if err := shp.Validate(); err != nil {
		return nil, err
	}

	p := f.params
	amps := p.Amplitude.Sample(f.rng, numBlobs)
	wxs := p.WidthX.Sample(f.rng, numBlobs)
	wys := p.WidthY.Sample(f.rng, numBlobs)
	vxs := p.VX.Sample(f.rng, numBlobs)
	vys := p.VY.Sample(f.rng, numBlobs)
	spxs := p.ShapeX.Sample(f.rng, numBlobs)
	spys := p.ShapeY.Sample(f.rng, numBlobs)

	blobs := make([]*blob.Blob, numBlobs)
	for i := range blobs {
		prop, err := shape.NewKernel(shp.Prop, shape.Params{Lam: spxs[i]})
		if err != nil {
			return nil, fmt.Errorf("blob %d: %w", i, err)
		}
		perp, err := shape.NewKernel(shp.Perp, shape.Params{Lam: spys[i]})
		if err != nil {
			return nil, fmt.Errorf("blob %d: %w", i, err)
		}

		b, err := blob.New(blob.Params{
			ID:        i,
			Prop:      prop,
			Perp:      perp,
			Amplitude: amps[i],
			WidthProp: wxs[i],
			WidthPerp: wys[i],
			VX:        vxs[i],
			VY:        vys[i],
			PosX:      0,
			PosY:      f.rng.Float64() * ly,
			TInit:     f.rng.Float64() * t,
			Drain:     drain,
			Aligned:   p.Aligned,
			Theta:     f.theta(f.rng),
		})
		if err != nil {
			return nil, err
		}
		blobs[i] = b
	}

	slices.SortStableFunc(blobs, func(a, b *blob.Blob) int {
		return cmp.Compare(a.Amplitude(), b.Amplitude())
	})
	return blobs, nil
}

func (f *DefaultFactory) String() string {
	p := f.params
	return fmt.Sprintf("DefaultFactory(A=%s, wx=%s, wy=%s, vx=%s, vy=%s, spx=%s, spy=%s, aligned=%t)",
		p.Amplitude, p.WidthX, p.WidthY, p.VX, p.VY, p.ShapeX, p.ShapeY, p.Aligned)
}
