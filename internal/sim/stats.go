package sim

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/jamsim/internal/dynamo"
)

// ForceStats summarizes the per-particle force norms of F.
type ForceStats struct {
	Max  float64
	Mean float64
	Std  float64
}

func NewForceStats(F dynamo.State, dim int) ForceStats {
	n := F.Count(dim)
	if n == 0 {
		return ForceStats{}
	}
	norms := make([]float64, n)
	for i := range norms {
		sq := 0.0
		for _, v := range F.Particle(i, dim) {
			sq += v * v
		}
		norms[i] = math.Sqrt(sq)
	}
	mean, std := stat.MeanStdDev(norms, nil)
	if n == 1 {
		std = 0
	}
	return ForceStats{Max: F.MaxNorm(dim), Mean: mean, Std: std}
}
