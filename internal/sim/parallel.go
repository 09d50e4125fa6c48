package sim

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/jamsim/internal/dynamo"
	"github.com/san-kum/jamsim/internal/minimize"
)

// Builder creates an independent minimizer and starting configuration for
// one seed.
type Builder func(seed int64) (minimize.Minimizer, dynamo.State, error)

// Ensemble runs the same experiment over consecutive seeds.
type Ensemble struct {
	build     Builder
	numRuns   int
	seedStart int64
	metrics   func() []Metric
}

func NewEnsemble(build Builder, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{build: build, numRuns: numRuns, seedStart: seedStart}
}

// WithMetrics sets a factory for per-run metrics; metrics hold state and
// cannot be shared between concurrent runs.
func (e *Ensemble) WithMetrics(f func() []Metric) *Ensemble {
	e.metrics = f
	return e
}

// Run executes every replica and returns results in seed order. The first
// failure cancels the remaining runs.
func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	if e.numRuns <= 0 {
		return nil, dynamo.Invalidf("ensemble needs at least one run, got %d", e.numRuns)
	}
	results := make([]*Result, e.numRuns)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(dynamo.Workers)
	for i := 0; i < e.numRuns; i++ {
		i := i
		seed := e.seedStart + int64(i)
		g.Go(func() error {
			m, R0, err := e.build(seed)
			if err != nil {
				return fmt.Errorf("seed %d: %w", seed, err)
			}
			s := New(m)
			if e.metrics != nil {
				for _, metric := range e.metrics() {
					s.AddMetric(metric)
				}
			}
			res, err := s.Run(ctx, R0, cfg)
			if err != nil {
				return fmt.Errorf("seed %d: %w", seed, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
