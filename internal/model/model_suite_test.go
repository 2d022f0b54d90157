package model

import (
	"testing"

	"github.com/san-kum/blobfield/internal/blob"
	"github.com/san-kum/blobfield/internal/shape"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestModel(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Model Suite")
}

// staticFactory builds blobs from a fixed parameter template.
type staticFactory struct {
	make   func(i int, ly float64) blob.Params
	oneDim bool
}

func (f staticFactory) Sample(ly, _ float64, n int, shp shape.Shape, drain blob.Drain) ([]*blob.Blob, error) {
	out := make([]*blob.Blob, 0, n)
	for i := 0; i < n; i++ {
		p := f.make(i, ly)
		p.ID = i
		p.Prop = shape.Kernel{Kind: shp.Prop, Params: p.Prop.Params}
		p.Perp = shape.Kernel{Kind: shp.Perp, Params: p.Perp.Params}
		p.Drain = drain
		b, err := blob.New(p)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func (f staticFactory) IsOneDimensional() bool { return f.oneDim }

// centered is a unit blob moving along x through the middle of the domain.
func centered(_ int, ly float64) blob.Params {
	return blob.Params{
		Amplitude: 1,
		WidthProp: 1,
		WidthPerp: 1,
		VX:        1,
		PosY:      ly / 2,
		Aligned:   true,
	}
}
