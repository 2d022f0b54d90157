package blob

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/blobfield/internal/grid"
	"github.com/san-kum/blobfield/internal/shape"
)

var (
	// ErrInvalidParameter indicates a blob parameter outside its valid range.
	ErrInvalidParameter = errors.New("blob: invalid parameter")

	// ErrOneDimensional indicates a one-dimensional evaluation on a domain with Ly != 0.
	ErrOneDimensional = errors.New("blob: one-dimensional evaluation requires Ly == 0")

	// ErrDrainProfile indicates a t_drain profile that does not match the x axis.
	ErrDrainProfile = errors.New("blob: t_drain profile length does not match x axis")
)

// WidthWarnRatio is the blob width, relative to Ly, above which the
// nearest-image periodic approximation is reported as poor.
const WidthWarnRatio = 0.1

// Params are the physical parameters of a single blob.
type Params struct {
	ID        int
	Prop      shape.Kernel
	Perp      shape.Kernel
	Amplitude float64
	WidthProp float64
	WidthPerp float64
	VX, VY    float64
	PosX      float64
	PosY      float64
	TInit     float64
	Drain     Drain
	// Aligned rotates the blob shape into its direction of travel; Theta is
	// then derived from the velocity and any supplied value is ignored.
	Aligned bool
	// Theta is the tilt of the propagation axis w.r.t. the x axis.
	Theta float64
}

// Blob is a traveling, draining pulse. It is immutable once built.
type Blob struct {
	p          Params
	theta      float64
	sin, cos   float64
	vProp      float64
	vPerp      float64
	invWidthPr float64
	invWidthPe float64
}

func New(p Params) (*Blob, error) {
	if _, err := shape.NewKernel(p.Prop.Kind, p.Prop.Params); err != nil {
		return nil, fmt.Errorf("blob %d propagation shape: %w", p.ID, err)
	}
	if _, err := shape.NewKernel(p.Perp.Kind, p.Perp.Params); err != nil {
		return nil, fmt.Errorf("blob %d perpendicular shape: %w", p.ID, err)
	}
	if !(p.WidthProp > 0) || !(p.WidthPerp > 0) {
		return nil, fmt.Errorf("%w: blob %d widths must be positive (prop=%g, perp=%g)",
			ErrInvalidParameter, p.ID, p.WidthProp, p.WidthPerp)
	}
	if err := p.Drain.Validate(); err != nil {
		return nil, fmt.Errorf("blob %d: %w", p.ID, err)
	}

	b := &Blob{p: p, theta: p.Theta}
	if p.Aligned {
		b.theta = math.Atan2(p.VY, p.VX)
	}
	b.sin, b.cos = math.Sincos(b.theta)

	if p.Aligned {
		b.vProp, b.vPerp = math.Hypot(p.VX, p.VY), 0
	} else {
		b.vProp = p.VX*b.cos + p.VY*b.sin
		b.vPerp = -p.VX*b.sin + p.VY*b.cos
	}
	b.invWidthPr = 1 / p.WidthProp
	b.invWidthPe = 1 / p.WidthPerp

	return b, nil
}

func (b *Blob) ID() int { return b.p.ID }

func (b *Blob) Amplitude() float64 { return b.p.Amplitude }

// Theta is the effective tilt, derived from the velocity for aligned blobs.
func (b *Blob) Theta() float64 { return b.theta }

func (b *Blob) Drain() Drain { return b.p.Drain }

func (b *Blob) Params() Params { return b.p }

// FrameVelocity is the velocity in the blob's rotated frame.
func (b *Blob) FrameVelocity() (prop, perp float64) {
	return b.vProp, b.vPerp
}

// PropPosition is the blob center along the propagation axis at time t.
func (b *Blob) PropPosition(t float64) float64 {
	return b.p.PosX + b.vProp*(t-b.p.TInit)
}

// PerpPosition is the blob center along the perpendicular axis at time t.
func (b *Blob) PerpPosition(t float64) float64 {
	return b.p.PosY + b.vPerp*(t-b.p.TInit)
}

// WrapMode selects how often the periodic image count is evaluated.
type WrapMode int

const (
	// WrapFirstSample counts periodic crossings once, at the first time sample.
	WrapFirstSample WrapMode = iota
	// WrapPerSample counts periodic crossings at every time sample.
	WrapPerSample
)

func ParseWrapMode(s string) (WrapMode, error) {
	switch s {
	case "", "first_sample":
		return WrapFirstSample, nil
	case "per_sample":
		return WrapPerSample, nil
	}
	return WrapFirstSample, fmt.Errorf("%w: wrap mode %q", ErrInvalidParameter, s)
}

func (w WrapMode) String() string {
	if w == WrapPerSample {
		return "per_sample"
	}
	return "first_sample"
}

// Options describe the domain a blob is evaluated on.
type Options struct {
	Ly             float64
	PeriodicY      bool
	OneDimensional bool
	Wrap           WrapMode
	// NoWarn silences the width warning, e.g. when the caller reports it
	// once for a whole ensemble.
	NoWarn bool
}

// TooWide reports whether the blob is wide compared to ly.
func (b *Blob) TooWide(ly float64) bool {
	return b.p.WidthPerp > WidthWarnRatio*ly || b.p.WidthProp > WidthWarnRatio*ly
}

// Discretize evaluates the blob on every point of m. The result is laid out
// like m (see grid.Mesh.Index).
func (b *Blob) Discretize(m grid.Mesh, opts Options) ([]float64, error) {
	out := make([]float64, m.Len())
	if err := b.DiscretizeInto(out, m, opts); err != nil {
		return nil, err
	}
	return out, nil
}

type offset struct{ x, y float64 }

// DiscretizeInto is Discretize writing into dst, which must hold m.Len()
// values.
func (b *Blob) DiscretizeInto(dst []float64, m grid.Mesh, opts Options) error {
	if opts.OneDimensional && opts.Ly != 0 {
		return fmt.Errorf("%w: got Ly=%g", ErrOneDimensional, opts.Ly)
	}
	if b.p.Drain.IsProfile() && len(b.p.Drain.Profile) != len(m.X) {
		return fmt.Errorf("%w: %d values for %d x samples", ErrDrainProfile, len(b.p.Drain.Profile), len(m.X))
	}
	if len(dst) < m.Len() {
		return fmt.Errorf("%w: destination holds %d values, mesh has %d", ErrInvalidParameter, len(dst), m.Len())
	}

	// A flat domain has no y period to wrap around.
	periodic := opts.PeriodicY && !opts.OneDimensional && opts.Ly > 0
	if periodic && !opts.NoWarn && b.TooWide(opts.Ly) {
		slog.Warn("blob width big compared to Ly",
			"blob_id", b.p.ID, "width_prop", b.p.WidthProp, "width_perp", b.p.WidthPerp, "ly", opts.Ly)
	}

	nt := len(m.T)
	propPos := make([]float64, nt)
	perpPos := make([]float64, nt)
	wraps := make([]float64, nt)
	for it, t := range m.T {
		propPos[it] = b.PropPosition(t)
		perpPos[it] = b.PerpPosition(t)
	}

	offsets := []offset{{0, 0}}
	if periodic {
		if nt > 0 {
			switch opts.Wrap {
			case WrapPerSample:
				for it, t := range m.T {
					wraps[it] = b.wrapCount(t, opts.Ly)
				}
			default:
				n := b.wrapCount(m.T[0], opts.Ly)
				for it := range wraps {
					wraps[it] = n
				}
			}
		}
		ox, oy := opts.Ly*b.sin, opts.Ly*b.cos
		offsets = append(offsets, offset{ox, oy}, offset{-ox, -oy})
	}

	for ix := range m.X {
		td := b.p.Drain.At(0)
		if b.p.Drain.IsProfile() {
			td = b.p.Drain.Profile[ix]
		}
		for iy := range m.Y {
			dx, dy := m.X[ix]-b.p.PosX, m.Y[iy]-b.p.PosY
			xProp := b.p.PosX + b.cos*dx + b.sin*dy
			yPerp := b.p.PosY - b.sin*dx + b.cos*dy

			base := m.Index(iy, ix, 0)
			for it, t := range m.T {
				shiftX := wraps[it] * opts.Ly * b.sin
				shiftY := wraps[it] * opts.Ly * b.cos
				sum := 0.0
				for _, off := range offsets {
					prop := b.p.Prop.Eval((xProp - propPos[it] + shiftX + off.x) * b.invWidthPr)
					if prop == 0 {
						continue
					}
					perp := 1.0
					if !opts.OneDimensional {
						perp = b.p.Perp.Eval((yPerp - perpPos[it] + shiftY + off.y) * b.invWidthPe)
					}
					sum += prop * perp
				}
				dst[base+it] = b.p.Amplitude * math.Exp(-(t-b.p.TInit)/td) * sum
			}
		}
	}
	return nil
}

// wrapCount is the number of times the propagation line has crossed the
// periodic boundary at time t.
func (b *Blob) wrapCount(t, ly float64) float64 {
	if b.theta == 0 || math.Abs(b.sin) < 1e-12 {
		return 0
	}
	border := (ly - b.p.PosY) / b.sin
	period := ly / b.sin
	return math.Floor((b.PropPosition(t) + period - border) / period)
}

// At evaluates the blob at a single point.
func (b *Blob) At(x, y, t float64, opts Options) (float64, error) {
	if b.p.Drain.IsProfile() {
		return 0, fmt.Errorf("%w: point evaluation needs a constant drain", ErrDrainProfile)
	}
	v, err := b.Discretize(grid.Point(x, y, t), opts)
	if err != nil {
		return 0, err
	}
	return v[0], nil
}

func (b *Blob) String() string {
	return fmt.Sprintf("Blob(id=%d, shape=%s/%s, amplitude=%g, width=(%g, %g), v=(%g, %g), pos=(%g, %g), t_init=%g, t_drain=%s, theta=%g)",
		b.p.ID, b.p.Prop, b.p.Perp, b.p.Amplitude, b.p.WidthProp, b.p.WidthPerp,
		b.p.VX, b.p.VY, b.p.PosX, b.p.PosY, b.p.TInit, b.p.Drain, b.theta)
}
