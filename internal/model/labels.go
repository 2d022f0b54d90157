package model

import (
	"github.com/san-kum/blobfield/internal/blob"
	"github.com/san-kum/blobfield/internal/grid"
)

// Claim is a blob's bid for a labeled cell.
type Claim struct {
	Label     float64
	Amplitude float64
}

// LabelPolicy decides which of two claims on an already labeled cell wins;
// prev was applied earlier in blob order. Policies must be associative so
// that parallel partial results merge to the sequential answer.
type LabelPolicy func(prev, next Claim) Claim

// LastWriteWins keeps the claim of the blob processed last.
func LastWriteWins(_, next Claim) Claim { return next }

// HighestAmplitude keeps the claim of the blob with the larger amplitude;
// ties go to the later blob.
func HighestAmplitude(prev, next Claim) Claim {
	if next.Amplitude >= prev.Amplitude {
		return next
	}
	return prev
}

// labelField is a label field together with the amplitude of each cell's
// current owner.
type labelField struct {
	labels *grid.Field
	owner  *grid.Field
}

func newLabelField(g *grid.Grid) *labelField {
	return &labelField{labels: g.NewField(), owner: g.NewField()}
}

func (lf *labelField) put(idx int, c Claim, policy LabelPolicy) {
	if lf.labels.Data[idx] != 0 {
		c = policy(Claim{Label: lf.labels.Data[idx], Amplitude: lf.owner.Data[idx]}, c)
	}
	lf.labels.Data[idx] = c.Label
	lf.owner.Data[idx] = c.Amplitude
}

// claim marks, per time step of the window, every cell where the blob's
// contribution reaches border times its spatial maximum.
func (lf *labelField) claim(b *blob.Blob, mode LabelMode, border float64, policy LabelPolicy, start, nt int, values []float64) {
	c := Claim{Label: 1, Amplitude: b.Amplitude()}
	if mode == LabelsIndividual {
		c.Label = float64(b.ID() + 1)
	}

	f := lf.labels
	cells := f.Ny * f.Nx
	for it := 0; it < nt; it++ {
		peak := 0.0
		for cell := 0; cell < cells; cell++ {
			if v := values[cell*nt+it]; v > peak {
				peak = v
			}
		}
		if peak <= 0 {
			continue
		}

		threshold := border * peak
		for cell := 0; cell < cells; cell++ {
			if values[cell*nt+it] >= threshold {
				lf.put(cell*f.Nt+start+it, c, policy)
			}
		}
	}
}

// merge folds a later partial label field into lf.
func (lf *labelField) merge(later *labelField, policy LabelPolicy) {
	for i, l := range later.labels.Data {
		if l != 0 {
			lf.put(i, Claim{Label: l, Amplitude: later.owner.Data[i]}, policy)
		}
	}
}
