package potential

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/jamsim/internal/dynamo"
)

// Matrix is a symmetric K x K table of per-species-pair parameters.
type Matrix struct {
	m *mat.SymDense
}

// NewMatrix validates rows as a square, symmetric, non-negative, finite
// matrix. Asymmetric input is rejected, never symmetrized.
func NewMatrix(rows [][]float64) (*Matrix, error) {
	k := len(rows)
	if k == 0 {
		return nil, dynamo.Invalidf("parameter matrix is empty")
	}
	data := make([]float64, 0, k*k)
	for i, row := range rows {
		if len(row) != k {
			return nil, dynamo.Invalidf("parameter matrix row %d has %d entries, want %d", i, len(row), k)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, dynamo.Invalidf("parameter matrix entry [%d][%d] is not finite", i, j)
			}
			if v < 0 {
				return nil, dynamo.Invalidf("parameter matrix entry [%d][%d] = %g is negative", i, j, v)
			}
		}
		data = append(data, row...)
	}
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			if rows[i][j] != rows[j][i] {
				return nil, dynamo.Invalidf("parameter matrix not symmetric: [%d][%d]=%g, [%d][%d]=%g",
					i, j, rows[i][j], j, i, rows[j][i])
			}
		}
	}
	return &Matrix{m: mat.NewSymDense(k, data)}, nil
}

// Uniform returns a k x k matrix with every entry equal to v.
func Uniform(k int, v float64) (*Matrix, error) {
	rows := make([][]float64, k)
	for i := range rows {
		rows[i] = make([]float64, k)
		for j := range rows[i] {
			rows[i][j] = v
		}
	}
	return NewMatrix(rows)
}

// Size returns the number of species K.
func (m *Matrix) Size() int { return m.m.SymmetricDim() }

func (m *Matrix) At(i, j int) float64 { return m.m.At(i, j) }

// Max returns the largest entry.
func (m *Matrix) Max() float64 { return mat.Max(m.m) }

// Min returns the smallest entry.
func (m *Matrix) Min() float64 { return mat.Min(m.m) }

// Rows returns the matrix as nested slices.
func (m *Matrix) Rows() [][]float64 {
	k := m.Size()
	rows := make([][]float64, k)
	for i := range rows {
		rows[i] = make([]float64, k)
		for j := range rows[i] {
			rows[i][j] = m.At(i, j)
		}
	}
	return rows
}
