package blob

import (
	"fmt"
	"math"
)

// Drain is the e-folding time of a blob's amplitude. Either Time is a single
// positive value, or Profile holds one value per x grid position.
type Drain struct {
	Time    float64
	Profile []float64
}

func ConstantDrain(t float64) Drain { return Drain{Time: t} }

func ProfileDrain(profile []float64) Drain {
	p := make([]float64, len(profile))
	copy(p, profile)
	return Drain{Profile: p}
}

func (d Drain) IsProfile() bool { return d.Profile != nil }

func (d Drain) Validate() error {
	if d.IsProfile() {
		if len(d.Profile) == 0 {
			return fmt.Errorf("%w: empty t_drain profile", ErrInvalidParameter)
		}
		for i, v := range d.Profile {
			if !(v > 0) {
				return fmt.Errorf("%w: t_drain[%d]=%g must be positive", ErrInvalidParameter, i, v)
			}
		}
		return nil
	}
	if !(d.Time > 0) {
		return fmt.Errorf("%w: t_drain=%g must be positive", ErrInvalidParameter, d.Time)
	}
	return nil
}

// At returns the drain time at x grid index ix.
func (d Drain) At(ix int) float64 {
	if d.IsProfile() {
		return d.Profile[ix]
	}
	return d.Time
}

// Min is the smallest drain time anywhere on the grid.
func (d Drain) Min() float64 {
	if !d.IsProfile() {
		return d.Time
	}
	m := math.Inf(1)
	for _, v := range d.Profile {
		m = math.Min(m, v)
	}
	return m
}

func (d Drain) String() string {
	if d.IsProfile() {
		return fmt.Sprintf("profile[%d]", len(d.Profile))
	}
	return fmt.Sprintf("%g", d.Time)
}
