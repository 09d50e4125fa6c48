package space

import (
	"math"

	"github.com/san-kum/jamsim/internal/dynamo"
)

// Periodic is a box with side lengths L_a that wraps on every axis.
type Periodic struct {
	side []float64
}

// NewPeriodic returns an isotropic periodic box of the given side length.
func NewPeriodic(dim int, box float64) (*Periodic, error) {
	if dim < 1 {
		return nil, dynamo.Invalidf("dimension must be at least 1, got %d", dim)
	}
	side := make([]float64, dim)
	for i := range side {
		side[i] = box
	}
	return NewPeriodicGeneral(side)
}

// NewPeriodicGeneral returns a periodic box with one side length per axis.
func NewPeriodicGeneral(side []float64) (*Periodic, error) {
	if len(side) == 0 {
		return nil, dynamo.Invalidf("periodic box needs at least one side")
	}
	for a, L := range side {
		if !(L > 0) || math.IsInf(L, 0) {
			return nil, dynamo.Invalidf("box side %d must be positive and finite, got %g", a, L)
		}
	}
	s := make([]float64, len(side))
	copy(s, side)
	return &Periodic{side: s}, nil
}

func (p *Periodic) Dim() int { return len(p.side) }

// Side returns the box length along axis a.
func (p *Periodic) Side(a int) float64 { return p.side[a] }

// Sides returns a copy of the box lengths.
func (p *Periodic) Sides() []float64 {
	s := make([]float64, len(p.side))
	copy(s, p.side)
	return s
}

// MinSide returns the shortest box length.
func (p *Periodic) MinSide() float64 {
	m := p.side[0]
	for _, L := range p.side[1:] {
		if L < m {
			m = L
		}
	}
	return m
}

func (p *Periodic) Volume() float64 {
	v := 1.0
	for _, L := range p.side {
		v *= L
	}
	return v
}

// Displacement maps ra - rb into [-L/2, L/2) on every axis.
func (p *Periodic) Displacement(dst, ra, rb []float64) {
	for a, L := range p.side {
		d := ra[a] - rb[a]
		dst[a] = d - L*math.Floor(d/L+0.5)
	}
}

// Shift sets R = (R + dR) mod L component-wise.
func (p *Periodic) Shift(R, dR dynamo.State) {
	dim := len(p.side)
	for k := range R {
		R[k] = wrap(R[k]+dR[k], p.side[k%dim])
	}
}

// Wrap folds every coordinate of R into [0, L).
func (p *Periodic) Wrap(R dynamo.State) {
	dim := len(p.side)
	for k := range R {
		R[k] = wrap(R[k], p.side[k%dim])
	}
}

// WrapCoord folds a single coordinate on axis a into [0, L).
func (p *Periodic) WrapCoord(x float64, a int) float64 {
	return wrap(x, p.side[a])
}

func wrap(x, L float64) float64 {
	m := math.Mod(x, L)
	if m < 0 {
		m += L
	}
	// m+L can round up to exactly L for tiny negative m.
	if m >= L {
		m = 0
	}
	return m
}
