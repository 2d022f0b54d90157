package ensemble

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/san-kum/blobfield/internal/blob"
	"github.com/san-kum/blobfield/internal/shape"
)

// RampFactory spreads amplitude, width and both velocity components
// linearly over [Lo, Hi] in blob order. Blobs are sorted by start time.
type RampFactory struct {
	Lo, Hi float64
	rng    *rand.Rand
}

func NewRampFactory(lo, hi float64, seed uint64) (*RampFactory, error) {
	if !(lo > 0) || hi < lo {
		return nil, fmt.Errorf("%w: ramp [%g, %g]", ErrInvalidParameter, lo, hi)
	}
	return &RampFactory{Lo: lo, Hi: hi, rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}, nil
}

func (f *RampFactory) IsOneDimensional() bool { return false }

func (f *RampFactory) Sample(ly, t float64, numBlobs int, shp shape.Shape, drain blob.Drain) ([]*blob.Blob, error) {
	if numBlobs < 0 {
		return nil, fmt.Errorf("%w: negative blob count %d", ErrInvalidParameter, numBlobs)
	}
	prop, err := shape.NewKernel(shp.Prop, shape.Params{Lam: 0.5})
	if err != nil {
		return nil, err
	}
	perp, err := shape.NewKernel(shp.Perp, shape.Params{Lam: 0.5})
	if err != nil {
		return nil, err
	}

	ys := make([]float64, numBlobs)
	starts := make([]float64, numBlobs)
	for i := range ys {
		ys[i] = f.rng.Float64() * ly
		starts[i] = f.rng.Float64() * t
	}
	slices.Sort(starts)

	blobs := make([]*blob.Blob, numBlobs)
	for i := range blobs {
		v := f.at(i, numBlobs)
		b, err := blob.New(blob.Params{
			ID:        i,
			Prop:      prop,
			Perp:      perp,
			Amplitude: v,
			WidthProp: v,
			WidthPerp: v,
			VX:        v,
			VY:        v,
			PosY:      ys[i],
			TInit:     starts[i],
			Drain:     drain,
			Aligned:   true,
		})
		if err != nil {
			return nil, err
		}
		blobs[i] = b
	}
	return blobs, nil
}

func (f *RampFactory) at(i, n int) float64 {
	if n == 1 {
		return f.Lo
	}
	return f.Lo + (f.Hi-f.Lo)*float64(i)/float64(n-1)
}

func (f *RampFactory) String() string {
	return fmt.Sprintf("RampFactory(%g..%g)", f.Lo, f.Hi)
}
