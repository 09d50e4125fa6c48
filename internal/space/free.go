package space

import "github.com/san-kum/jamsim/internal/dynamo"

// Free is unbounded Euclidean space.
type Free struct {
	dim int
}

func NewFree(dim int) (*Free, error) {
	if dim < 1 {
		return nil, dynamo.Invalidf("dimension must be at least 1, got %d", dim)
	}
	return &Free{dim: dim}, nil
}

func (f *Free) Dim() int { return f.dim }

func (f *Free) Displacement(dst, ra, rb []float64) {
	for a := 0; a < f.dim; a++ {
		dst[a] = ra[a] - rb[a]
	}
}

func (f *Free) Shift(R, dR dynamo.State) {
	for k := range R {
		R[k] += dR[k]
	}
}
