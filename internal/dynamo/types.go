package dynamo

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// State is a flat coordinate vector of N particles in dim dimensions.
type State []float64

// NewState returns a zeroed state for n particles in dim dimensions.
func NewState(n, dim int) State {
	return make(State, n*dim)
}

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	if len(s) == 0 {
		return 0
	}
	return floats.Norm(s, 2)
}

// Dot panics if the lengths differ.
func (s State) Dot(other State) float64 {
	return floats.Dot(s, other)
}

func (s State) Zero() {
	for i := range s {
		s[i] = 0
	}
}

// Particle returns the coordinates of particle i as a subslice of s.
func (s State) Particle(i, dim int) []float64 {
	return s[i*dim : (i+1)*dim : (i+1)*dim]
}

// Count returns the number of particles held by s.
func (s State) Count(dim int) int {
	if dim <= 0 {
		return 0
	}
	return len(s) / dim
}

// MaxNorm returns the largest per-particle vector norm, the usual
// "max force" diagnostic when s holds forces.
func (s State) MaxNorm(dim int) float64 {
	maxSq := 0.0
	for i := 0; i+dim <= len(s); i += dim {
		sq := 0.0
		for _, v := range s[i : i+dim] {
			sq += v * v
		}
		if sq > maxSq {
			maxSq = sq
		}
	}
	return math.Sqrt(maxSq)
}

// Evaluator computes the potential energy of a configuration and its
// negative gradient. Force overwrites F, which must have the length of R.
type Evaluator interface {
	Energy(R State) (float64, error)
	Force(R, F State) error
	EnergyForce(R, F State) (float64, error)
}

// Shifter moves R by dR in place, keeping every coordinate inside the domain.
// R and dR must have the same length.
type Shifter interface {
	Shift(R, dR State)
}
