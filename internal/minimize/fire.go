package minimize

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/jamsim/internal/dynamo"
)

// FireConfig holds the adaptive schedule of the Fast Inertial Relaxation
// Engine.
type FireConfig struct {
	DtStart    float64 `yaml:"dt_start"`
	DtMax      float64 `yaml:"dt_max"`
	NMin       int     `yaml:"n_min"`
	FInc       float64 `yaml:"f_inc"`
	FDec       float64 `yaml:"f_dec"`
	AlphaStart float64 `yaml:"alpha_start"`
	FAlpha     float64 `yaml:"f_alpha"`
}

func DefaultFireConfig() FireConfig {
	return FireConfig{
		DtStart:    0.1,
		DtMax:      0.4,
		NMin:       5,
		FInc:       1.1,
		FDec:       0.5,
		AlphaStart: 0.1,
		FAlpha:     0.99,
	}
}

func (c FireConfig) Validate() error {
	switch {
	case !(c.DtStart > 0) || math.IsInf(c.DtStart, 0):
		return dynamo.Invalidf("dt_start must be positive, got %g", c.DtStart)
	case !(c.DtMax > 0) || math.IsInf(c.DtMax, 0):
		return dynamo.Invalidf("dt_max must be positive, got %g", c.DtMax)
	case c.DtStart > c.DtMax:
		return dynamo.Invalidf("dt_start %g exceeds dt_max %g", c.DtStart, c.DtMax)
	case c.NMin < 0:
		return dynamo.Invalidf("n_min must be non-negative, got %d", c.NMin)
	case !(c.FInc >= 1) || math.IsInf(c.FInc, 0):
		return dynamo.Invalidf("f_inc must be at least 1, got %g", c.FInc)
	case !(c.FDec > 0 && c.FDec <= 1):
		return dynamo.Invalidf("f_dec must be in (0, 1], got %g", c.FDec)
	case !(c.AlphaStart >= 0 && c.AlphaStart <= 1):
		return dynamo.Invalidf("alpha_start must be in [0, 1], got %g", c.AlphaStart)
	case !(c.FAlpha > 0 && c.FAlpha <= 1):
		return dynamo.Invalidf("f_alpha must be in (0, 1], got %g", c.FAlpha)
	}
	return nil
}

// Fire is the FIRE descent: damped inertial motion whose time step grows
// while the power F.V stays positive and which stops dead when it does not.
type Fire struct {
	eval  dynamo.Evaluator
	shift dynamo.Shifter
	cfg   FireConfig
}

func NewFire(eval dynamo.Evaluator, shift dynamo.Shifter, cfg FireConfig) (*Fire, error) {
	if eval == nil || shift == nil {
		return nil, dynamo.Invalidf("fire needs an evaluator and a shift")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Fire{eval: eval, shift: shift, cfg: cfg}, nil
}

func (f *Fire) Name() string { return "fire" }

func (f *Fire) Config() FireConfig { return f.cfg }

// Init wraps R0 into the domain, zeroes the velocity and evaluates the
// starting energy and force. R0 is not modified.
func (f *Fire) Init(R0 dynamo.State) (*State, error) {
	st, err := initState(f.eval, f.shift, R0)
	if err != nil {
		return nil, err
	}
	st.Dt = f.cfg.DtStart
	st.Alpha = f.cfg.AlphaStart
	return st, nil
}

// Apply advances st by one FIRE step. On error st is left unchanged.
func (f *Fire) Apply(st *State) error {
	if err := checkState(st); err != nil {
		return err
	}
	F := st.Force
	V := st.nextVel
	copy(V, st.Velocity)

	dt, alpha, npos, resets := st.Dt, st.Alpha, st.NPos, st.Resets
	if F.Dot(st.Velocity) > 0 {
		npos++
		if npos > f.cfg.NMin {
			dt = math.Min(dt*f.cfg.FInc, f.cfg.DtMax)
			alpha *= f.cfg.FAlpha
		}
	} else {
		V.Zero()
		dt *= f.cfg.FDec
		alpha = f.cfg.AlphaStart
		npos = 0
		resets++
	}

	floats.AddScaled(V, dt, F)
	if fNorm := F.Norm(); fNorm > 0 {
		vNorm := V.Norm()
		floats.Scale(1-alpha, V)
		floats.AddScaled(V, alpha*vNorm/fNorm, F)
	}
	if !V.IsValid() {
		return &dynamo.StepError{Step: st.Step, Err: fmt.Errorf("velocity: %w", dynamo.ErrNonFinite)}
	}

	floats.ScaleTo(st.dR, dt, V)
	copy(st.nextPos, st.Position)
	f.shift.Shift(st.nextPos, st.dR)
	if !st.nextPos.IsValid() {
		return &dynamo.StepError{Step: st.Step, Err: fmt.Errorf("position: %w", dynamo.ErrNonFinite)}
	}

	u, err := evaluate(f.eval, st.Step, st.nextPos, st.nextForce)
	if err != nil {
		return err
	}
	st.Dt, st.Alpha, st.NPos, st.Resets = dt, alpha, npos, resets
	st.commit(u)
	return nil
}
