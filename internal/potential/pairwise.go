// Package potential evaluates pairwise interaction energies and forces.
//
// An [Engine] sums a radial [Kernel] over particle pairs, with per-pair
// length and energy scales looked up by species in symmetric matrices.
// Two strategies produce the same result: brute force visits all
// N(N-1)/2 pairs, while the grid strategy only visits candidates from a
// cell list rebuilt on every evaluation.
package potential

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/jamsim/internal/dynamo"
	"github.com/san-kum/jamsim/internal/grid"
	"github.com/san-kum/jamsim/internal/space"
)

// MinSeparation is the distance below which an interacting pair is
// reported as degenerate rather than evaluated.
const MinSeparation = 1e-12

// ParallelThreshold is the particle count from which brute-force
// evaluation switches from the serial i<j loop to parallel rows.
var ParallelThreshold = 512

var ErrCutoffTooSmall = errors.New("potential: grid cutoff below interaction range")

// DegenerateError reports two interacting particles at (near) zero separation.
type DegenerateError struct {
	I, J int
	R    float64
}

func (e *DegenerateError) Error() string {
	return fmt.Sprintf("particles %d and %d at separation %g: %v", e.I, e.J, e.R, dynamo.ErrDegenerate)
}

func (e *DegenerateError) Unwrap() error { return dynamo.ErrDegenerate }

type Strategy string

const (
	BruteForce Strategy = "brute"
	Grid       Strategy = "grid"
)

func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case BruteForce, Grid:
		return Strategy(s), nil
	}
	return "", dynamo.Invalidf("unknown strategy %q", s)
}

// Params describes the interacting system.
type Params struct {
	Kernel  Kernel
	Species []int
	Sigma   *Matrix
	// Epsilon defaults to all ones when nil.
	Epsilon *Matrix
}

// Engine evaluates energy and forces of one system under one strategy.
// It is safe for use by one caller at a time.
type Engine struct {
	strategy Strategy
	space    space.Space
	box      *space.Periodic
	kernel   Kernel
	species  []int
	k        int
	sigma    []float64 // k*k
	eps      []float64
	rc       []float64
	maxRange float64
	cutoff   float64
	rows     *dynamo.StatePool
}

func newEngine(sp space.Space, p Params) (*Engine, error) {
	if p.Kernel == nil {
		return nil, dynamo.Invalidf("no kernel")
	}
	if p.Sigma == nil {
		return nil, dynamo.Invalidf("no sigma matrix")
	}
	k := p.Sigma.Size()
	if p.Epsilon == nil {
		var err error
		if p.Epsilon, err = Uniform(k, 1); err != nil {
			return nil, err
		}
	}
	if p.Epsilon.Size() != k {
		return nil, dynamo.Invalidf("epsilon matrix is %dx%d, sigma is %dx%d", p.Epsilon.Size(), p.Epsilon.Size(), k, k)
	}
	if len(p.Species) == 0 {
		return nil, dynamo.Invalidf("no particles")
	}
	species := make([]int, len(p.Species))
	for i, s := range p.Species {
		if s < 0 || s >= k {
			return nil, dynamo.Invalidf("particle %d has species %d, want [0, %d)", i, s, k)
		}
		species[i] = s
	}

	e := &Engine{
		space:   sp,
		kernel:  p.Kernel,
		species: species,
		k:       k,
		sigma:   make([]float64, k*k),
		eps:     make([]float64, k*k),
		rc:      make([]float64, k*k),
		rows:    dynamo.NewStatePool(len(species)),
	}
	for a := 0; a < k; a++ {
		for b := 0; b < k; b++ {
			s := p.Sigma.At(a, b)
			if !(s > 0) {
				return nil, dynamo.Invalidf("sigma[%d][%d] must be positive, got %g", a, b, s)
			}
			e.sigma[a*k+b] = s
			e.eps[a*k+b] = p.Epsilon.At(a, b)
			e.rc[a*k+b] = p.Kernel.Cutoff(s)
			if e.rc[a*k+b] > e.maxRange {
				e.maxRange = e.rc[a*k+b]
			}
		}
	}
	return e, nil
}

// NewBruteForce returns an engine that visits every pair.
func NewBruteForce(sp space.Space, p Params) (*Engine, error) {
	e, err := newEngine(sp, p)
	if err != nil {
		return nil, err
	}
	e.strategy = BruteForce
	return e, nil
}

// NewGrid returns an engine that uses a cell list of the given cutoff. A
// cutoff of 0 selects the interaction range of the kernel.
func NewGrid(box *space.Periodic, p Params, cutoff float64) (*Engine, error) {
	e, err := newEngine(box, p)
	if err != nil {
		return nil, err
	}
	if cutoff == 0 {
		cutoff = e.maxRange
	}
	if !(cutoff > 0) || math.IsInf(cutoff, 0) {
		return nil, fmt.Errorf("%w: got %g", grid.ErrInvalidCutoff, cutoff)
	}
	if cutoff < e.maxRange {
		return nil, fmt.Errorf("%w: cutoff %g, range %g", ErrCutoffTooSmall, cutoff, e.maxRange)
	}
	if cutoff > box.MinSide()/2 {
		return nil, fmt.Errorf("%w: cutoff %g, box side %g", grid.ErrCutoffTooLarge, cutoff, box.MinSide())
	}
	e.strategy = Grid
	e.box = box
	e.cutoff = cutoff
	return e, nil
}

func (e *Engine) Strategy() Strategy { return e.strategy }

func (e *Engine) Kernel() Kernel { return e.kernel }

// N returns the number of particles.
func (e *Engine) N() int { return len(e.species) }

func (e *Engine) Dim() int { return e.space.Dim() }

func (e *Engine) Space() space.Space { return e.space }

// Range returns the largest kernel cutoff over all species pairs.
func (e *Engine) Range() float64 { return e.maxRange }

// CellCutoff returns the cell-list cutoff, or 0 for brute force.
func (e *Engine) CellCutoff() float64 { return e.cutoff }

// Species returns a copy of the per-particle species labels.
func (e *Engine) Species() []int {
	s := make([]int, len(e.species))
	copy(s, e.species)
	return s
}

func (e *Engine) Energy(R dynamo.State) (float64, error) {
	return e.eval(R, nil)
}

// Force overwrites F with the negative gradient of the energy at R.
func (e *Engine) Force(R, F dynamo.State) error {
	if F == nil {
		return fmt.Errorf("%w: nil force buffer", dynamo.ErrDimensionMismatch)
	}
	_, err := e.eval(R, F)
	return err
}

// EnergyForce returns the energy and writes the forces in one pass.
func (e *Engine) EnergyForce(R, F dynamo.State) (float64, error) {
	if F == nil {
		return 0, fmt.Errorf("%w: nil force buffer", dynamo.ErrDimensionMismatch)
	}
	return e.eval(R, F)
}

func (e *Engine) eval(R, F dynamo.State) (float64, error) {
	dim := e.space.Dim()
	n := len(e.species)
	if len(R) != n*dim {
		return 0, fmt.Errorf("%w: %d coordinates for %d particles in %d dimensions",
			dynamo.ErrDimensionMismatch, len(R), n, dim)
	}
	if F != nil && len(F) != len(R) {
		return 0, fmt.Errorf("%w: force has %d entries, positions %d", dynamo.ErrDimensionMismatch, len(F), len(R))
	}
	if !R.IsValid() {
		return 0, fmt.Errorf("positions: %w", dynamo.ErrNonFinite)
	}
	if F != nil {
		F.Zero()
	}

	var u float64
	var err error
	switch {
	case e.strategy == Grid:
		u, err = e.evalGrid(R, F)
	case n < ParallelThreshold:
		u, err = e.evalPairs(R, F)
	default:
		u, err = e.evalRows(R, F)
	}
	if err != nil {
		return 0, err
	}
	if math.IsNaN(u) || math.IsInf(u, 0) {
		return 0, fmt.Errorf("energy: %w", dynamo.ErrNonFinite)
	}
	return u, nil
}

// pair returns U and -dU/dr / r for particles i and j, writing R_i - R_j
// into d. ok is false when the pair is outside the kernel cutoff.
func (e *Engine) pair(R dynamo.State, i, j int, d []float64) (u, coef float64, ok bool, err error) {
	dim := len(d)
	e.space.Displacement(d, R.Particle(i, dim), R.Particle(j, dim))
	r2 := 0.0
	for _, v := range d {
		r2 += v * v
	}
	ab := e.species[i]*e.k + e.species[j]
	rc := e.rc[ab]
	if r2 >= rc*rc {
		return 0, 0, false, nil
	}
	r := math.Sqrt(r2)
	if r < MinSeparation {
		if i > j {
			i, j = j, i
		}
		return 0, 0, false, &DegenerateError{I: i, J: j, R: r}
	}
	u, dudr := e.kernel.Eval(r, e.sigma[ab], e.eps[ab])
	return u, -dudr / r, true, nil
}

// evalPairs is the serial i<j loop using Newton's third law.
func (e *Engine) evalPairs(R, F dynamo.State) (float64, error) {
	dim := e.space.Dim()
	n := len(e.species)
	d := make([]float64, dim)
	total := 0.0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			u, coef, ok, err := e.pair(R, i, j, d)
			if err != nil {
				return 0, err
			}
			if !ok {
				continue
			}
			total += u
			if F != nil {
				fi, fj := F.Particle(i, dim), F.Particle(j, dim)
				for a, v := range d {
					fi[a] += coef * v
					fj[a] -= coef * v
				}
			}
		}
	}
	return total, nil
}

// evalRows computes each particle's row independently; every pair is
// visited twice and each visit carries half of the pair energy.
func (e *Engine) evalRows(R, F dynamo.State) (float64, error) {
	dim := e.space.Dim()
	n := len(e.species)
	rowE := e.rows.Get()
	defer e.rows.Put(rowE)

	err := dynamo.ParallelForErr(n, 64, func(start, end int) error {
		d := make([]float64, dim)
		for i := start; i < end; i++ {
			for j := 0; j < n; j++ {
				if j == i {
					continue
				}
				if err := e.accumulate(R, F, rowE, i, j, d); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return sumRows(rowE), nil
}

func (e *Engine) evalGrid(R, F dynamo.State) (float64, error) {
	g, err := grid.Build(R, e.box, e.cutoff)
	if err != nil {
		return 0, err
	}
	dim := e.space.Dim()
	n := len(e.species)
	rowE := e.rows.Get()
	defer e.rows.Put(rowE)

	err = dynamo.ParallelForErr(n, 64, func(start, end int) error {
		d := make([]float64, dim)
		nb := make([]int, 0, 64)
		for i := start; i < end; i++ {
			nb = g.NeighborsOf(i, nb[:0])
			for _, j := range nb {
				if err := e.accumulate(R, F, rowE, i, j, d); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return sumRows(rowE), nil
}

func (e *Engine) accumulate(R, F, rowE dynamo.State, i, j int, d []float64) error {
	u, coef, ok, err := e.pair(R, i, j, d)
	if err != nil || !ok {
		return err
	}
	rowE[i] += u / 2
	if F != nil {
		fi := F.Particle(i, len(d))
		for a, v := range d {
			fi[a] += coef * v
		}
	}
	return nil
}

func sumRows(rowE dynamo.State) float64 {
	total := 0.0
	for _, v := range rowE {
		total += v
	}
	return total
}
