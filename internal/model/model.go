// Package model superposes an ensemble of blobs onto a discretized field.
//
// A Model owns a grid and an ensemble.Factory. Each call to MakeRealization
// draws a fresh blob list, evaluates every blob over the time window where
// it can reach the domain, and sums the contributions into a density field.
// When labels are requested a second field marks where each blob dominates.
package model

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"

	"github.com/san-kum/blobfield/internal/blob"
	"github.com/san-kum/blobfield/internal/ensemble"
	"github.com/san-kum/blobfield/internal/grid"
)

var (
	// ErrInvalidConfig indicates a model configuration that cannot be realized.
	ErrInvalidConfig = errors.New("model: invalid configuration")
)

// minChunk is the smallest number of blobs handed to one worker.
const minChunk = 16

type State int

const (
	Idle State = iota
	Realized
)

func (s State) String() string {
	if s == Realized {
		return "realized"
	}
	return "idle"
}

// Realization is the output of one MakeRealization call. Labels is nil when
// labels are off.
type Realization struct {
	Grid    *grid.Grid
	Density *grid.Field
	Labels  *grid.Field
	Blobs   []*blob.Blob

	// Samples counts the time samples evaluated over all blobs; Skipped
	// counts blobs whose window never meets the domain.
	Samples int
	Skipped int
}

type Model struct {
	cfg     Config
	grid    *grid.Grid
	factory ensemble.Factory
	policy  LabelPolicy

	state State
	blobs []*blob.Blob
}

func New(cfg Config, factory ensemble.Factory) (*Model, error) {
	if factory == nil {
		return nil, fmt.Errorf("%w: nil blob factory", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.OneDimensional && !factory.IsOneDimensional() {
		slog.Warn("one-dimensional model with a blob factory that is not one-dimensional")
	}

	policy := cfg.LabelPolicy
	if policy == nil {
		policy = LastWriteWins
	}

	return &Model{
		cfg:     cfg,
		grid:    grid.New(cfg.GridParams()),
		factory: factory,
		policy:  policy,
	}, nil
}

func (m *Model) Config() Config { return m.cfg }

func (m *Model) Grid() *grid.Grid { return m.grid }

func (m *Model) State() State { return m.state }

// Blobs returns the blobs of the last realization, or nil before the first.
func (m *Model) Blobs() []*blob.Blob { return m.blobs }

func (m *Model) blobOptions() blob.Options {
	return blob.Options{
		Ly:             m.cfg.Ly,
		PeriodicY:      m.cfg.PeriodicY,
		OneDimensional: m.cfg.OneDimensional,
		Wrap:           m.cfg.Wrap,
		NoWarn:         true,
	}
}

// MakeRealization draws a blob ensemble and sums it onto fresh fields. With
// speedUp each blob is only evaluated while its center lies within the
// distance from the domain at which a Gaussian tail drops below tolerance.
func (m *Model) MakeRealization(speedUp bool, tolerance float64) (*Realization, error) {
	m.state = Idle
	if speedUp && !(tolerance > 0 && tolerance*math.Sqrt(math.Pi) < 1) {
		return nil, fmt.Errorf("%w: speed-up tolerance %g outside (0, 1/sqrt(pi))", ErrInvalidConfig, tolerance)
	}

	blobs, err := m.factory.Sample(m.cfg.Ly, m.cfg.T, m.cfg.NumBlobs, m.cfg.Shape, m.cfg.Drain)
	if err != nil {
		return nil, err
	}
	m.blobs = blobs
	m.warnWidths(blobs)

	r := &Realization{Grid: m.grid, Density: m.grid.NewField(), Blobs: blobs}
	var labels *labelField
	if m.cfg.Labels != LabelsOff {
		labels = newLabelField(m.grid)
		r.Labels = labels.labels
	}

	chunkSize, count := partition(len(blobs), max(m.cfg.Workers, 1), minChunk)
	parts := make([]*accumulator, count)
	parts[0] = &accumulator{density: r.Density, labels: labels}
	for w := 1; w < count; w++ {
		parts[w] = m.newAccumulator()
	}

	progress := m.newProgress(len(blobs))
	errs := make([]error, count)
	parallelFor(len(blobs), chunkSize, count, func(w, start, end int) {
		errs[w] = m.accumulate(parts[w], blobs[start:end], speedUp, tolerance, progress)
	})
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	for w, p := range parts {
		if w > 0 {
			r.Density.Add(p.density)
			if labels != nil {
				labels.merge(p.labels, m.policy)
			}
		}
		r.Samples += p.samples
		r.Skipped += p.skipped
	}

	m.state = Realized
	return r, nil
}

// accumulator holds one worker's partial sums.
type accumulator struct {
	density *grid.Field
	labels  *labelField
	buf     []float64

	samples int
	skipped int
}

func (m *Model) newAccumulator() *accumulator {
	a := &accumulator{density: m.grid.NewField()}
	if m.cfg.Labels != LabelsOff {
		a.labels = newLabelField(m.grid)
	}
	return a
}

func (m *Model) accumulate(a *accumulator, blobs []*blob.Blob, speedUp bool, tolerance float64, progress func()) error {
	mesh := m.grid.Mesh()
	opts := m.blobOptions()

	for _, b := range blobs {
		start, stop := m.window(b, speedUp, tolerance)
		if start >= stop {
			a.skipped++
			progress()
			continue
		}

		win := mesh.Window(start, stop)
		n := win.Len()
		if cap(a.buf) < n {
			a.buf = make([]float64, n)
		}
		values := a.buf[:n]

		if err := b.DiscretizeInto(values, win, opts); err != nil {
			return err
		}
		a.density.AddWindow(start, stop-start, values)
		if a.labels != nil {
			a.labels.claim(b, m.cfg.Labels, m.cfg.LabelBorder, m.policy, start, stop-start, values)
		}
		a.samples += stop - start
		progress()
	}
	return nil
}

// window returns the time index range [start, stop) over which b is
// evaluated. Drainage is ignored.
func (m *Model) window(b *blob.Blob, speedUp bool, tolerance float64) (int, int) {
	nt := m.grid.Nt()
	p := b.Params()
	if !speedUp || p.VX == 0 || nt == 0 {
		return 0, nt
	}

	width := p.WidthProp
	if b.Theta() != 0 && !m.cfg.OneDimensional {
		width = math.Max(p.WidthProp, p.WidthPerp)
	}
	margin := -width * math.Log(tolerance*math.Sqrt(math.Pi))

	// Times at which the center crosses x = -margin and x = Lx + margin.
	t1 := p.TInit + (-margin-p.PosX)/p.VX
	t2 := p.TInit + (m.cfg.Lx+margin-p.PosX)/p.VX
	tStart, tEnd := math.Min(t1, t2), math.Max(t1, t2)

	t0, dt := m.grid.T[0], m.cfg.Dt
	start := math.Max(math.Floor((tStart-t0)/dt), 0)
	stop := math.Min(math.Ceil((tEnd-t0)/dt)+1, float64(nt))
	if start >= stop {
		return 0, 0
	}
	return int(start), int(stop)
}

func (m *Model) warnWidths(blobs []*blob.Blob) {
	if !m.cfg.PeriodicY || m.cfg.OneDimensional || m.cfg.Ly == 0 {
		return
	}
	wide := 0
	for _, b := range blobs {
		if b.TooWide(m.cfg.Ly) {
			wide++
		}
	}
	if wide > 0 {
		slog.Warn("blob width big compared to Ly, periodic images are a poor approximation",
			"blobs", wide, "ly", m.cfg.Ly, "ratio", blob.WidthWarnRatio)
	}
}

// newProgress returns a callback that logs every tenth of the blobs when
// the model is verbose.
func (m *Model) newProgress(total int) func() {
	if !m.cfg.Verbose || total == 0 {
		return func() {}
	}
	step := int64(max(total/10, 1))
	var done atomic.Int64
	return func() {
		n := done.Add(1)
		if n%step == 0 || n == int64(total) {
			slog.Info("summing up blobs", "done", n, "total", total,
				"percent", math.Round(100*float64(n)/float64(total)))
		}
	}
}

func (m *Model) String() string {
	return fmt.Sprintf("2d Blob Model with num_blobs:%d and t_drain:%s", m.cfg.NumBlobs, m.cfg.Drain)
}
