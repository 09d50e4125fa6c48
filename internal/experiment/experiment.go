// Package experiment assembles a runnable minimization from a config.
package experiment

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/san-kum/jamsim/internal/config"
	"github.com/san-kum/jamsim/internal/dynamo"
	"github.com/san-kum/jamsim/internal/minimize"
	"github.com/san-kum/jamsim/internal/potential"
	"github.com/san-kum/jamsim/internal/sim"
	"github.com/san-kum/jamsim/internal/space"
)

type Experiment struct {
	cfg       *config.Config
	registry  *Registry
	space     space.Space
	box       *space.Periodic
	params    potential.Params
	engine    *potential.Engine
	minimizer minimize.Minimizer
	simulator *sim.Simulator
	initial   dynamo.State
}

// New validates cfg and builds the space, engine, minimizer and initial
// configuration for cfg.System.Seed.
func New(cfg *config.Config, reg *Registry) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if reg == nil {
		reg = NewRegistry()
	}
	e := &Experiment{cfg: cfg, registry: reg}

	sides := cfg.System.BoxSides()
	if cfg.System.Space == "free" {
		free, err := space.NewFree(cfg.System.Dim)
		if err != nil {
			return nil, err
		}
		e.space = free
	} else {
		box, err := space.NewPeriodicGeneral(sides)
		if err != nil {
			return nil, err
		}
		e.space, e.box = box, box
	}

	kernel, err := reg.GetKernel(cfg.Potential)
	if err != nil {
		return nil, err
	}
	sigma, err := potential.NewMatrix(cfg.Potential.Sigma)
	if err != nil {
		return nil, fmt.Errorf("sigma: %w", err)
	}
	var eps *potential.Matrix
	if cfg.Potential.Epsilon != nil {
		if eps, err = potential.NewMatrix(cfg.Potential.Epsilon); err != nil {
			return nil, fmt.Errorf("epsilon: %w", err)
		}
	}
	e.params = potential.Params{
		Kernel:  kernel,
		Species: assignSpecies(cfg.System, sigma.Size()),
		Sigma:   sigma,
		Epsilon: eps,
	}

	e.engine, e.minimizer, e.initial, err = e.build(cfg.System.Seed)
	if err != nil {
		return nil, err
	}

	e.simulator = sim.New(e.minimizer)
	for _, metric := range reg.DefaultMetrics(cfg.System.Dim) {
		e.simulator.AddMetric(metric)
	}
	return e, nil
}

// build creates an engine of the configured strategy, its minimizer and a
// starting configuration drawn with the given seed.
func (e *Experiment) build(seed int64) (*potential.Engine, minimize.Minimizer, dynamo.State, error) {
	engine, err := e.newEngine(potential.Strategy(e.cfg.Potential.Strategy))
	if err != nil {
		return nil, nil, nil, err
	}
	m, err := e.registry.GetMinimizer(engine, e.space, e.cfg.Minimizer)
	if err != nil {
		return nil, nil, nil, err
	}
	R0, err := placeParticles(e.cfg.System, e.space, rand.New(rand.NewSource(seed)))
	if err != nil {
		return nil, nil, nil, err
	}
	return engine, m, R0, nil
}

func (e *Experiment) newEngine(strategy potential.Strategy) (*potential.Engine, error) {
	switch strategy {
	case potential.Grid:
		if e.box == nil {
			return nil, dynamo.Invalidf("grid strategy needs a periodic box")
		}
		return potential.NewGrid(e.box, e.params, e.cfg.Potential.Cutoff)
	case potential.BruteForce:
		return potential.NewBruteForce(e.space, e.params)
	}
	return nil, dynamo.Invalidf("unknown strategy %q", strategy)
}

// Replica builds an independent minimizer and starting configuration for
// seed. It has the shape of a sim.Builder.
func (e *Experiment) Replica(seed int64) (minimize.Minimizer, dynamo.State, error) {
	_, m, R0, err := e.build(seed)
	return m, R0, err
}

// Run minimizes from the initial configuration for cfg.Run.Steps steps.
func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	return e.simulator.Run(ctx, e.initial.Clone(), e.SimConfig())
}

// RunEnsemble runs cfg.Run.Replicas seeds starting at cfg.System.Seed.
func (e *Experiment) RunEnsemble(ctx context.Context) ([]*sim.Result, error) {
	dim := e.cfg.System.Dim
	return sim.NewEnsemble(e.Replica, e.cfg.Run.Replicas, e.cfg.System.Seed).
		WithMetrics(func() []sim.Metric { return e.registry.DefaultMetrics(dim) }).
		Run(ctx, e.SimConfig())
}

func (e *Experiment) SimConfig() sim.Config {
	return sim.Config{
		Steps:      e.cfg.Run.Steps,
		PrintEvery: e.cfg.Run.PrintEvery,
		Dim:        e.cfg.System.Dim,
	}
}

// CrossCheck compares the configured engine with the other strategy at R
// and returns the sorted per-particle squared force differences. Brute
// force is always the reference.
func (e *Experiment) CrossCheck(R dynamo.State) ([]float64, error) {
	other := potential.BruteForce
	if e.engine.Strategy() == potential.BruteForce {
		other = potential.Grid
	}
	ref, err := e.newEngine(other)
	if err != nil {
		return nil, fmt.Errorf("cross-check engine: %w", err)
	}
	if other == potential.BruteForce {
		return potential.CompareForces(ref, e.engine, R, e.cfg.System.Dim)
	}
	return potential.CompareForces(e.engine, ref, R, e.cfg.System.Dim)
}

// Engine returns an engine of the given strategy on this experiment's
// system, independent of the one driving the minimizer.
func (e *Experiment) Engine(strategy potential.Strategy) (*potential.Engine, error) {
	return e.newEngine(strategy)
}

func (e *Experiment) Config() *config.Config { return e.cfg }

func (e *Experiment) Simulator() *sim.Simulator { return e.simulator }

func (e *Experiment) Minimizer() minimize.Minimizer { return e.minimizer }

func (e *Experiment) Evaluator() *potential.Engine { return e.engine }

func (e *Experiment) Space() space.Space { return e.space }

// Box returns the periodic box, or nil in free space.
func (e *Experiment) Box() *space.Periodic { return e.box }

// Initial returns a copy of the starting configuration.
func (e *Experiment) Initial() dynamo.State { return e.initial.Clone() }

func (e *Experiment) Species() []int { return append([]int(nil), e.params.Species...) }
