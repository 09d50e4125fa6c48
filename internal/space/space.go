// Package space implements the geometry of the simulation domain.
//
// A space knows how to measure the displacement between two points and how
// to move a point by a displacement. [Periodic] applies the minimum-image
// convention and wraps positions back into [0, L) on every axis; [Free] is
// unbounded Euclidean space.
package space

import (
	"math"

	"github.com/san-kum/jamsim/internal/dynamo"
)

// Space is the geometry consumed by the potential engines and minimizers.
type Space interface {
	dynamo.Shifter
	Dim() int
	// Displacement writes ra - rb into dst. All three have length Dim().
	Displacement(dst, ra, rb []float64)
}

// DistanceSq returns the squared length of the displacement ra - rb in sp.
func DistanceSq(sp Space, ra, rb []float64) float64 {
	var buf [4]float64
	var d []float64
	if sp.Dim() > len(buf) {
		d = make([]float64, sp.Dim())
	} else {
		d = buf[:sp.Dim()]
	}
	sp.Displacement(d, ra, rb)
	sq := 0.0
	for _, v := range d {
		sq += v * v
	}
	return sq
}

// Distance returns the length of the displacement ra - rb in sp.
func Distance(sp Space, ra, rb []float64) float64 {
	return math.Sqrt(DistanceSq(sp, ra, rb))
}

// PairDisplacements returns the dense displacement tensor of every ordered
// pair: element [(i*n+j)*dim+a] holds axis a of R_i - R_j.
func PairDisplacements(sp Space, R dynamo.State) []float64 {
	dim := sp.Dim()
	n := R.Count(dim)
	out := make([]float64, n*n*dim)
	dynamo.ParallelFor(n, 64, func(start, end int) {
		for i := start; i < end; i++ {
			ri := R.Particle(i, dim)
			for j := 0; j < n; j++ {
				off := (i*n + j) * dim
				sp.Displacement(out[off:off+dim], ri, R.Particle(j, dim))
			}
		}
	})
	return out
}
