// Package minimize drives a configuration toward a local energy minimum.
//
// A [Minimizer] is a two-operation state machine: Init builds a [State]
// from starting positions and Apply advances it by one step in place.
// Neither declares convergence; the caller decides when to stop.
package minimize

import (
	"fmt"
	"math"

	"github.com/san-kum/jamsim/internal/dynamo"
)

type Minimizer interface {
	Name() string
	Init(R0 dynamo.State) (*State, error)
	Apply(st *State) error
}

// State is owned by one caller and updated in place by Apply. Force and
// Energy always describe Position.
type State struct {
	Position dynamo.State
	Velocity dynamo.State
	Force    dynamo.State
	Energy   float64

	Dt    float64
	Alpha float64
	// NPos counts consecutive steps with positive power.
	NPos   int
	Step   int
	Resets int

	nextPos   dynamo.State
	nextVel   dynamo.State
	nextForce dynamo.State
	dR        dynamo.State
}

func newState(R0 dynamo.State) *State {
	n := len(R0)
	return &State{
		Position:  R0.Clone(),
		Velocity:  make(dynamo.State, n),
		Force:     make(dynamo.State, n),
		nextPos:   make(dynamo.State, n),
		nextVel:   make(dynamo.State, n),
		nextForce: make(dynamo.State, n),
		dR:        make(dynamo.State, n),
	}
}

// commit swaps the scratch buffers in after a successful step.
func (s *State) commit(energy float64) {
	s.Position, s.nextPos = s.nextPos, s.Position
	s.Velocity, s.nextVel = s.nextVel, s.Velocity
	s.Force, s.nextForce = s.nextForce, s.Force
	s.Energy = energy
	s.Step++
}

// Snapshot returns a deep copy that can be read while s keeps moving.
func (s *State) Snapshot() *State {
	c := *s
	c.Position = s.Position.Clone()
	c.Velocity = s.Velocity.Clone()
	c.Force = s.Force.Clone()
	c.nextPos = make(dynamo.State, len(s.Position))
	c.nextVel = make(dynamo.State, len(s.Position))
	c.nextForce = make(dynamo.State, len(s.Position))
	c.dR = make(dynamo.State, len(s.Position))
	return &c
}

// evaluate returns the energy at R and writes the force into F. Failures
// carry the step they occurred on.
func evaluate(eval dynamo.Evaluator, step int, R, F dynamo.State) (float64, error) {
	u, err := eval.EnergyForce(R, F)
	if err != nil {
		return 0, &dynamo.StepError{Step: step, Err: err}
	}
	if math.IsNaN(u) || math.IsInf(u, 0) || !F.IsValid() {
		return 0, &dynamo.StepError{Step: step, Err: fmt.Errorf("energy or force: %w", dynamo.ErrNonFinite)}
	}
	return u, nil
}

func initState(eval dynamo.Evaluator, shift dynamo.Shifter, R0 dynamo.State) (*State, error) {
	if len(R0) == 0 {
		return nil, dynamo.Invalidf("no positions")
	}
	if !R0.IsValid() {
		return nil, &dynamo.StepError{Step: 0, Err: fmt.Errorf("initial positions: %w", dynamo.ErrNonFinite)}
	}
	st := newState(R0)
	// Shifting by zero folds R0 into the domain.
	shift.Shift(st.Position, st.dR)
	u, err := evaluate(eval, 0, st.Position, st.Force)
	if err != nil {
		return nil, err
	}
	st.Energy = u
	return st, nil
}

func checkState(st *State) error {
	if st == nil || len(st.Position) == 0 || len(st.nextPos) != len(st.Position) {
		return dynamo.Invalidf("state was not created by Init")
	}
	return nil
}
