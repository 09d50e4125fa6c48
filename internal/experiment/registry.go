package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/jamsim/internal/config"
	"github.com/san-kum/jamsim/internal/dynamo"
	"github.com/san-kum/jamsim/internal/metrics"
	"github.com/san-kum/jamsim/internal/minimize"
	"github.com/san-kum/jamsim/internal/potential"
	"github.com/san-kum/jamsim/internal/sim"
)

type kernelFactory func(config.PotentialConfig) (potential.Kernel, error)

type minimizerFactory func(dynamo.Evaluator, dynamo.Shifter, config.MinimizerConfig) (minimize.Minimizer, error)

type Registry struct {
	kernels    map[string]kernelFactory
	minimizers map[string]minimizerFactory
}

func NewRegistry() *Registry {
	r := &Registry{
		kernels:    make(map[string]kernelFactory),
		minimizers: make(map[string]minimizerFactory),
	}

	r.kernels["soft_sphere"] = func(p config.PotentialConfig) (potential.Kernel, error) {
		return potential.NewSoftSphere(p.Alpha)
	}
	r.kernels["lennard_jones"] = func(p config.PotentialConfig) (potential.Kernel, error) {
		return potential.NewLennardJones(p.RCutScale)
	}

	r.minimizers["fire"] = func(e dynamo.Evaluator, s dynamo.Shifter, c config.MinimizerConfig) (minimize.Minimizer, error) {
		return minimize.NewFire(e, s, c.Fire)
	}
	r.minimizers["gradient_descent"] = func(e dynamo.Evaluator, s dynamo.Shifter, c config.MinimizerConfig) (minimize.Minimizer, error) {
		return minimize.NewGradientDescent(e, s, c.StepSize)
	}

	return r
}

func (r *Registry) GetKernel(p config.PotentialConfig) (potential.Kernel, error) {
	fn, ok := r.kernels[p.Kernel]
	if !ok {
		return nil, fmt.Errorf("%w: unknown kernel: %s", dynamo.ErrInvalidConfig, p.Kernel)
	}
	return fn(p)
}

func (r *Registry) GetMinimizer(e dynamo.Evaluator, s dynamo.Shifter, c config.MinimizerConfig) (minimize.Minimizer, error) {
	fn, ok := r.minimizers[c.Name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown minimizer: %s", dynamo.ErrInvalidConfig, c.Name)
	}
	return fn(e, s, c)
}

func (r *Registry) ListKernels() []string {
	names := make([]string, 0, len(r.kernels))
	for name := range r.kernels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) ListMinimizers() []string {
	names := make([]string, 0, len(r.minimizers))
	for name := range r.minimizers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics returns fresh step metrics for one run.
func (r *Registry) DefaultMetrics(dim int) []sim.Metric {
	return []sim.Metric{
		metrics.NewEnergy(),
		metrics.NewEnergyDrop(),
		metrics.NewMaxForce(dim),
		metrics.NewVelocityResets(),
	}
}
