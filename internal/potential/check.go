package potential

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/jamsim/internal/dynamo"
)

// CompareForces evaluates both engines at R and returns the squared norm of
// the per-particle force difference, sorted ascending.
func CompareForces(a, b dynamo.Evaluator, R dynamo.State, dim int) ([]float64, error) {
	fa := dynamo.NewState(R.Count(dim), dim)
	fb := dynamo.NewState(R.Count(dim), dim)
	if err := a.Force(R, fa); err != nil {
		return nil, fmt.Errorf("reference force: %w", err)
	}
	if err := b.Force(R, fb); err != nil {
		return nil, fmt.Errorf("candidate force: %w", err)
	}
	floats.Sub(fa, fb)
	n := R.Count(dim)
	dF := make([]float64, n)
	for i := 0; i < n; i++ {
		p := fa.Particle(i, dim)
		dF[i] = floats.Dot(p, p)
	}
	sort.Float64s(dF)
	return dF, nil
}

// SumSquared returns the total of a CompareForces result.
func SumSquared(dF []float64) float64 {
	return floats.Sum(dF)
}

// MaxForce returns the largest per-particle force norm.
func MaxForce(F dynamo.State, dim int) float64 {
	return F.MaxNorm(dim)
}
