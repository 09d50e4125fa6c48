package minimize

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/jamsim/internal/dynamo"
)

// GradientDescent moves every particle along its force by a fixed step:
// R <- shift(R, StepSize * F).
type GradientDescent struct {
	eval     dynamo.Evaluator
	shift    dynamo.Shifter
	stepSize float64
}

func NewGradientDescent(eval dynamo.Evaluator, shift dynamo.Shifter, stepSize float64) (*GradientDescent, error) {
	if eval == nil || shift == nil {
		return nil, dynamo.Invalidf("gradient descent needs an evaluator and a shift")
	}
	if !(stepSize > 0) || math.IsInf(stepSize, 0) {
		return nil, dynamo.Invalidf("step size must be positive, got %g", stepSize)
	}
	return &GradientDescent{eval: eval, shift: shift, stepSize: stepSize}, nil
}

func (g *GradientDescent) Name() string { return "gradient_descent" }

// Init wraps R0 and evaluates its energy and force. Dt holds the step size.
func (g *GradientDescent) Init(R0 dynamo.State) (*State, error) {
	st, err := initState(g.eval, g.shift, R0)
	if err != nil {
		return nil, err
	}
	st.Dt = g.stepSize
	return st, nil
}

func (g *GradientDescent) Apply(st *State) error {
	if err := checkState(st); err != nil {
		return err
	}
	floats.ScaleTo(st.dR, g.stepSize, st.Force)
	copy(st.nextPos, st.Position)
	g.shift.Shift(st.nextPos, st.dR)

	u, err := evaluate(g.eval, st.Step, st.nextPos, st.nextForce)
	if err != nil {
		return err
	}
	copy(st.nextVel, st.dR)
	st.commit(u)
	return nil
}
