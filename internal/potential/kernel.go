package potential

import (
	"math"

	"github.com/san-kum/jamsim/internal/dynamo"
)

// Kernel is a radial pair interaction U(r) parametrized by a length scale
// sigma and an energy scale epsilon.
type Kernel interface {
	Name() string
	// Cutoff is the distance at and beyond which U and dU/dr are exactly 0.
	Cutoff(sigma float64) float64
	// Eval returns U(r) and dU/dr for r inside the cutoff.
	Eval(r, sigma, epsilon float64) (u, dudr float64)
}

// SoftSphere is the finite-range repulsion
//
//	U(r) = epsilon/alpha * (1 - r/sigma)^alpha   for r < sigma
//
// and zero otherwise. With alpha >= 2 both U and dU/dr vanish at contact.
type SoftSphere struct {
	Alpha float64
}

// DefaultSoftSphereAlpha is the harmonic exponent.
const DefaultSoftSphereAlpha = 2.0

func NewSoftSphere(alpha float64) (*SoftSphere, error) {
	if alpha == 0 {
		alpha = DefaultSoftSphereAlpha
	}
	if alpha < 2 || math.IsInf(alpha, 0) || math.IsNaN(alpha) {
		return nil, dynamo.Invalidf("soft sphere exponent must be finite and >= 2, got %g", alpha)
	}
	return &SoftSphere{Alpha: alpha}, nil
}

func (s *SoftSphere) Name() string { return "soft_sphere" }

func (s *SoftSphere) Cutoff(sigma float64) float64 { return sigma }

func (s *SoftSphere) Eval(r, sigma, epsilon float64) (float64, float64) {
	if r >= sigma {
		return 0, 0
	}
	x := 1 - r/sigma
	if s.Alpha == 2 {
		return 0.5 * epsilon * x * x, -epsilon / sigma * x
	}
	xa1 := math.Pow(x, s.Alpha-1)
	return epsilon / s.Alpha * xa1 * x, -epsilon / sigma * xa1
}

// LennardJones is the 12-6 interaction truncated at RCutScale*sigma and
// shifted so that U(rc) = 0.
type LennardJones struct {
	RCutScale float64
	shift     float64 // U(rc)/(4 epsilon)
}

// DefaultLJCutScale is the conventional 2.5 sigma truncation.
const DefaultLJCutScale = 2.5

func NewLennardJones(rCutScale float64) (*LennardJones, error) {
	if rCutScale == 0 {
		rCutScale = DefaultLJCutScale
	}
	if rCutScale <= 1 || math.IsInf(rCutScale, 0) || math.IsNaN(rCutScale) {
		return nil, dynamo.Invalidf("lennard-jones cutoff scale must be finite and > 1, got %g", rCutScale)
	}
	inv6 := math.Pow(1/rCutScale, 6)
	return &LennardJones{RCutScale: rCutScale, shift: inv6*inv6 - inv6}, nil
}

func (l *LennardJones) Name() string { return "lennard_jones" }

func (l *LennardJones) Cutoff(sigma float64) float64 { return l.RCutScale * sigma }

func (l *LennardJones) Eval(r, sigma, epsilon float64) (float64, float64) {
	if r >= l.RCutScale*sigma {
		return 0, 0
	}
	sr2 := (sigma / r) * (sigma / r)
	sr6 := sr2 * sr2 * sr2
	sr12 := sr6 * sr6
	u := 4 * epsilon * (sr12 - sr6 - l.shift)
	dudr := -24 * epsilon / r * (2*sr12 - sr6)
	return u, dudr
}
