package space

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/san-kum/jamsim/internal/dynamo"
)

const tol = 1e-9

func TestNewPeriodic_Invalid(t *testing.T) {
	tests := []struct {
		name string
		dim  int
		box  float64
	}{
		{"zero dim", 0, 1.0},
		{"zero box", 2, 0},
		{"negative box", 2, -3},
		{"nan box", 2, math.NaN()},
		{"inf box", 2, math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPeriodic(tt.dim, tt.box)
			if !errors.Is(err, dynamo.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}

	if _, err := NewPeriodicGeneral(nil); !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for empty sides, got %v", err)
	}
}

func TestPeriodic_Displacement(t *testing.T) {
	box, _ := NewPeriodic(2, 10.0)

	tests := []struct {
		name   string
		ra, rb []float64
		want   []float64
	}{
		{"inside", []float64{3, 3}, []float64{1, 2}, []float64{2, 1}},
		{"wraps positive", []float64{9.5, 5}, []float64{0.5, 5}, []float64{-1, 0}},
		{"wraps negative", []float64{0.5, 5}, []float64{9.5, 5}, []float64{1, 0}},
		{"half box", []float64{5, 0}, []float64{0, 0}, []float64{-5, 0}},
		{"self", []float64{4.2, 7.7}, []float64{4.2, 7.7}, []float64{0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := make([]float64, 2)
			box.Displacement(got, tt.ra, tt.rb)
			for a := range got {
				if math.Abs(got[a]-tt.want[a]) > tol {
					t.Errorf("axis %d: got %v, want %v", a, got[a], tt.want[a])
				}
			}
		})
	}
}

func TestPeriodic_DisplacementRange(t *testing.T) {
	box, _ := NewPeriodicGeneral([]float64{10, 4})
	rng := rand.New(rand.NewSource(1))
	d := make([]float64, 2)

	for i := 0; i < 1000; i++ {
		ra := []float64{rng.Float64()*100 - 50, rng.Float64()*100 - 50}
		rb := []float64{rng.Float64()*100 - 50, rng.Float64()*100 - 50}
		box.Displacement(d, ra, rb)
		for a := range d {
			half := box.Side(a) / 2
			if d[a] < -half || d[a] >= half {
				t.Fatalf("axis %d displacement %v outside [-%v, %v)", a, d[a], half, half)
			}
		}
	}
}

func TestPeriodic_ImagesHaveZeroDisplacement(t *testing.T) {
	box, _ := NewPeriodic(2, 7.5)
	rng := rand.New(rand.NewSource(2))
	d := make([]float64, 2)

	for i := 0; i < 200; i++ {
		r := []float64{rng.Float64() * 7.5, rng.Float64() * 7.5}
		for _, k := range []float64{-3, -1, 1, 2, 5} {
			for axis := 0; axis < 2; axis++ {
				img := []float64{r[0], r[1]}
				img[axis] += k * 7.5
				box.Displacement(d, r, img)
				if math.Abs(d[0]) > tol || math.Abs(d[1]) > tol {
					t.Fatalf("image k=%v axis=%d: displacement %v", k, axis, d)
				}
			}
		}
	}
}

func TestPeriodic_Shift(t *testing.T) {
	box, _ := NewPeriodic(2, 10.0)

	tests := []struct {
		name string
		r    dynamo.State
		dr   dynamo.State
		want dynamo.State
	}{
		{"inside", dynamo.State{1, 1}, dynamo.State{2, 3}, dynamo.State{3, 4}},
		{"wrap up", dynamo.State{9, 9}, dynamo.State{2, 3}, dynamo.State{1, 2}},
		{"wrap down", dynamo.State{1, 1}, dynamo.State{-2, -3}, dynamo.State{9, 8}},
		{"many boxes", dynamo.State{1, 1}, dynamo.State{102, -57}, dynamo.State{3, 4}},
		{"exact edge", dynamo.State{5, 5}, dynamo.State{5, -5}, dynamo.State{0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := tt.r.Clone()
			box.Shift(r, tt.dr)
			for k := range r {
				if math.Abs(r[k]-tt.want[k]) > tol {
					t.Errorf("coord %d: got %v, want %v", k, r[k], tt.want[k])
				}
				if r[k] < 0 || r[k] >= 10 {
					t.Errorf("coord %d: %v outside [0, 10)", k, r[k])
				}
			}
		})
	}
}

func TestPeriodic_ShiftComposes(t *testing.T) {
	box, _ := NewPeriodicGeneral([]float64{10, 3})
	rng := rand.New(rand.NewSource(3))
	d := make([]float64, 2)

	for i := 0; i < 500; i++ {
		r := dynamo.State{rng.Float64() * 10, rng.Float64() * 3}
		dr1 := dynamo.State{rng.NormFloat64() * 40, rng.NormFloat64() * 40}
		dr2 := dynamo.State{rng.NormFloat64() * 40, rng.NormFloat64() * 40}

		twice := r.Clone()
		box.Shift(twice, dr1)
		box.Shift(twice, dr2)

		once := r.Clone()
		box.Shift(once, dynamo.State{dr1[0] + dr2[0], dr1[1] + dr2[1]})

		// Compare through the minimum image so results straddling 0/L agree.
		box.Displacement(d, twice, once)
		if math.Abs(d[0]) > 1e-9 || math.Abs(d[1]) > 1e-9 {
			t.Fatalf("shift composition mismatch: %v vs %v", twice, once)
		}
	}
}

func TestPeriodic_WrapTinyNegative(t *testing.T) {
	box, _ := NewPeriodic(1, 10.0)
	r := dynamo.State{-1e-18}
	box.Wrap(r)
	if r[0] < 0 || r[0] >= 10 {
		t.Errorf("wrap produced %v", r[0])
	}
	if got := box.WrapCoord(-2.5, 0); math.Abs(got-7.5) > tol {
		t.Errorf("WrapCoord(-2.5) = %v, want 7.5", got)
	}
}

func TestPeriodic_Accessors(t *testing.T) {
	box, _ := NewPeriodicGeneral([]float64{4, 2, 8})
	if box.Dim() != 3 {
		t.Errorf("Dim = %d", box.Dim())
	}
	if box.MinSide() != 2 {
		t.Errorf("MinSide = %v", box.MinSide())
	}
	if box.Volume() != 64 {
		t.Errorf("Volume = %v", box.Volume())
	}
	sides := box.Sides()
	sides[0] = 100
	if box.Side(0) != 4 {
		t.Error("Sides should return a copy")
	}
}

func TestPairDisplacements(t *testing.T) {
	box, _ := NewPeriodic(2, 10.0)
	R := dynamo.State{1, 1, 9, 1, 5, 5}
	dr := PairDisplacements(box, R)
	n := 3

	if len(dr) != n*n*2 {
		t.Fatalf("len = %d, want %d", len(dr), n*n*2)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			ij := dr[(i*n+j)*2 : (i*n+j)*2+2]
			ji := dr[(j*n+i)*2 : (j*n+i)*2+2]
			if i == j && (ij[0] != 0 || ij[1] != 0) {
				t.Errorf("self displacement %d = %v", i, ij)
			}
			// Antisymmetric except at exactly half a box.
			if math.Abs(ij[0]+ji[0]) > tol && math.Abs(math.Abs(ij[0])-5) > tol {
				t.Errorf("pair (%d,%d) not antisymmetric: %v vs %v", i, j, ij, ji)
			}
		}
	}
	// particle 0 to particle 1 crosses the boundary
	if got := dr[(0*n+1)*2]; math.Abs(got-2) > tol {
		t.Errorf("R0-R1 x = %v, want 2", got)
	}
}

func TestDistance(t *testing.T) {
	box, _ := NewPeriodic(2, 10.0)
	if got := Distance(box, []float64{0.5, 0.5}, []float64{9.5, 9.5}); math.Abs(got-math.Sqrt2) > tol {
		t.Errorf("periodic distance = %v, want sqrt(2)", got)
	}

	free, _ := NewFree(2)
	if got := Distance(free, []float64{0.5, 0.5}, []float64{9.5, 9.5}); math.Abs(got-9*math.Sqrt2) > tol {
		t.Errorf("free distance = %v", got)
	}
}

func TestFree(t *testing.T) {
	if _, err := NewFree(0); !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
	f, _ := NewFree(2)
	r := dynamo.State{1, 2}
	f.Shift(r, dynamo.State{-5, 100})
	if r[0] != -4 || r[1] != 102 {
		t.Errorf("free shift = %v", r)
	}
}
