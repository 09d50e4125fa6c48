package potential

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/san-kum/jamsim/internal/dynamo"
	"github.com/san-kum/jamsim/internal/space"
)

type system struct {
	box    *space.Periodic
	params Params
	R      dynamo.State
}

// bidisperse returns a 50:50 mixture with sigma [[1,1.2],[1.2,1.4]] placed
// uniformly at random.
func bidisperse(t testing.TB, n int, box float64, seed int64) system {
	t.Helper()
	sp, err := space.NewPeriodic(2, box)
	require.NoError(t, err)
	sigma, err := NewMatrix([][]float64{{1, 1.2}, {1.2, 1.4}})
	require.NoError(t, err)
	kernel, err := NewSoftSphere(2)
	require.NoError(t, err)

	species := make([]int, n)
	for i := n / 2; i < n; i++ {
		species[i] = 1
	}
	rng := rand.New(rand.NewSource(seed))
	R := dynamo.NewState(n, 2)
	for i := range R {
		R[i] = rng.Float64() * box
	}
	return system{
		box:    sp,
		params: Params{Kernel: kernel, Species: species, Sigma: sigma},
		R:      R,
	}
}
