// Package grid implements a cell list over a periodic box.
//
// The box is split into floor(L_a/cutoff) cells per axis, so every pair of
// particles closer than cutoff lies in the same or adjacent cells. Particle
// indices are bucketed by counting sort into one arena; each cell keeps a
// precomputed list of its neighbor cells with duplicates removed, which
// matters when an axis has only one or two cells and the periodic images of
// the +1 and -1 neighbors coincide.
package grid

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/jamsim/internal/dynamo"
	"github.com/san-kum/jamsim/internal/space"
)

var (
	ErrInvalidCutoff  = errors.New("grid: cutoff must be positive and finite")
	ErrCutoffTooLarge = errors.New("grid: cutoff exceeds half the box side")
)

// Grid is an immutable cell list built for one set of positions.
type Grid struct {
	dim     int
	dims    []int // cells per axis
	stride  []int
	width   []float64
	cellOf  []int
	start   []int // len numCells+1, members[start[c]:start[c+1]] are in cell c
	members []int
	nbrs    [][]int
}

// Build buckets the particles of R into cells of side at least cutoff.
// Positions are wrapped into the box before bucketing; R itself is not
// modified.
func Build(R dynamo.State, box *space.Periodic, cutoff float64) (*Grid, error) {
	if !(cutoff > 0) || math.IsInf(cutoff, 0) {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidCutoff, cutoff)
	}
	dim := box.Dim()
	if len(R)%dim != 0 {
		return nil, fmt.Errorf("%w: %d coordinates in %d dimensions", dynamo.ErrDimensionMismatch, len(R), dim)
	}
	dims := make([]int, dim)
	for a := 0; a < dim; a++ {
		L := box.Side(a)
		if cutoff > L/2 {
			return nil, fmt.Errorf("%w: cutoff %g, side %d is %g", ErrCutoffTooLarge, cutoff, a, L)
		}
		dims[a] = int(math.Floor(L / cutoff))
	}
	return build(R, box, dims), nil
}

func build(R dynamo.State, box *space.Periodic, dims []int) *Grid {
	dim := len(dims)
	g := &Grid{
		dim:    dim,
		dims:   dims,
		stride: make([]int, dim),
		width:  make([]float64, dim),
	}
	total := 1
	for a := dim - 1; a >= 0; a-- {
		g.stride[a] = total
		total *= dims[a]
		g.width[a] = box.Side(a) / float64(dims[a])
	}

	n := R.Count(dim)
	g.cellOf = make([]int, n)
	g.start = make([]int, total+1)
	for i := 0; i < n; i++ {
		c := 0
		for a, x := range R.Particle(i, dim) {
			k := int(box.WrapCoord(x, a) / g.width[a])
			if k >= dims[a] {
				k = dims[a] - 1
			}
			c += k * g.stride[a]
		}
		g.cellOf[i] = c
		g.start[c+1]++
	}
	for c := 0; c < total; c++ {
		g.start[c+1] += g.start[c]
	}
	g.members = make([]int, n)
	fill := make([]int, total)
	copy(fill, g.start[:total])
	for i, c := range g.cellOf {
		g.members[fill[c]] = i
		fill[c]++
	}

	g.nbrs = make([][]int, total)
	for c := 0; c < total; c++ {
		g.nbrs[c] = g.neighborCells(c)
	}
	return g
}

// axisNeighbors returns the distinct cell coordinates in {k-1, k, k+1} mod m.
func axisNeighbors(k, m int) []int {
	switch m {
	case 1:
		return []int{0}
	case 2:
		return []int{k, 1 - k}
	}
	return []int{(k - 1 + m) % m, k, (k + 1) % m}
}

func (g *Grid) neighborCells(c int) []int {
	axes := make([][]int, g.dim)
	count := 1
	for a := 0; a < g.dim; a++ {
		k := (c / g.stride[a]) % g.dims[a]
		axes[a] = axisNeighbors(k, g.dims[a])
		count *= len(axes[a])
	}
	out := make([]int, 0, count)
	idx := make([]int, g.dim)
	for {
		cell := 0
		for a, j := range idx {
			cell += axes[a][j] * g.stride[a]
		}
		out = append(out, cell)

		a := g.dim - 1
		for ; a >= 0; a-- {
			idx[a]++
			if idx[a] < len(axes[a]) {
				break
			}
			idx[a] = 0
		}
		if a < 0 {
			return out
		}
	}
}

// NeighborsOf appends to dst every particle in the cells adjacent to (and
// including) the cell of particle i, except i itself.
func (g *Grid) NeighborsOf(i int, dst []int) []int {
	for _, c := range g.nbrs[g.cellOf[i]] {
		for _, j := range g.members[g.start[c]:g.start[c+1]] {
			if j != i {
				dst = append(dst, j)
			}
		}
	}
	return dst
}

func (g *Grid) CellOf(i int) int { return g.cellOf[i] }

// Members returns the particles in cell c. The slice aliases the grid.
func (g *Grid) Members(c int) []int {
	return g.members[g.start[c]:g.start[c+1]]
}

// NeighborCells returns the distinct cells adjacent to c, c included.
func (g *Grid) NeighborCells(c int) []int { return g.nbrs[c] }

func (g *Grid) NumCells() int { return len(g.nbrs) }

// Dims returns the number of cells along each axis.
func (g *Grid) Dims() []int {
	d := make([]int, len(g.dims))
	copy(d, g.dims)
	return d
}

// Len returns the number of bucketed particles.
func (g *Grid) Len() int { return len(g.cellOf) }
