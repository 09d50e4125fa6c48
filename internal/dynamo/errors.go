package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for minimization runs.
var (
	// ErrInvalidConfig indicates a configuration rejected at construction.
	ErrInvalidConfig = errors.New("dynamo: invalid configuration")

	// ErrDimensionMismatch indicates vectors whose lengths disagree with N*dim.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")

	// ErrDegenerate indicates two interacting particles at (near) zero separation.
	ErrDegenerate = errors.New("dynamo: degenerate particle separation")

	// ErrNonFinite indicates a NaN or Inf in energy, force, position or velocity.
	ErrNonFinite = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrCanceled indicates the run was interrupted by its context.
	ErrCanceled = errors.New("dynamo: run canceled by context")
)

// StepError wraps an error with the minimizer step it happened on.
type StepError struct {
	Step int
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Invalidf returns an error wrapping ErrInvalidConfig.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
