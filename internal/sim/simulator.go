package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/jamsim/internal/dynamo"
	"github.com/san-kum/jamsim/internal/minimize"
)

type Simulator struct {
	minimizer minimize.Minimizer
	metrics   []Metric
	observers []Observer
}

func New(m minimize.Minimizer) *Simulator {
	return &Simulator{
		minimizer: m,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Minimizer() minimize.Minimizer { return s.minimizer }

// Run initializes the minimizer at R0 and applies cfg.Steps steps. A
// record is kept after every step whose index is a multiple of
// cfg.PrintEvery, and after the last one. On failure the partial result
// is returned with the error.
func (s *Simulator) Run(ctx context.Context, R0 dynamo.State, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}
	st, err := s.minimizer.Init(R0)
	if err != nil {
		return nil, err
	}
	return s.Continue(ctx, st, cfg)
}

// Continue runs cfg.Steps more steps from an existing state.
func (s *Simulator) Continue(ctx context.Context, st *minimize.State, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}
	start := time.Now()
	result := &Result{
		Records:       make([]Record, 0, cfg.Steps/cfg.PrintEvery+2),
		Final:         st,
		InitialEnergy: st.Energy,
		Metrics:       make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	for i := 0; i < cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			result.Elapsed = time.Since(start)
			s.collect(result)
			return result, fmt.Errorf("%w after %d steps: %v", dynamo.ErrCanceled, result.StepsTaken, ctx.Err())
		default:
		}

		if err := s.minimizer.Apply(st); err != nil {
			result.Elapsed = time.Since(start)
			s.collect(result)
			return result, err
		}
		result.StepsTaken++

		for _, m := range s.metrics {
			m.Observe(st)
		}
		for _, obs := range s.observers {
			obs.OnStep(st)
		}

		if i%cfg.PrintEvery == 0 || i == cfg.Steps-1 {
			result.Records = append(result.Records, s.record(i, st, cfg.Dim))
		}
	}

	result.Elapsed = time.Since(start)
	s.collect(result)
	return result, nil
}

func (s *Simulator) record(i int, st *minimize.State, dim int) Record {
	fs := NewForceStats(st.Force, dim)
	return Record{
		Step:      i,
		Energy:    st.Energy,
		MaxForce:  fs.Max,
		MeanForce: fs.Mean,
		Dt:        st.Dt,
		Alpha:     st.Alpha,
	}
}

func (s *Simulator) collect(result *Result) {
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Steps < 0 {
		return dynamo.Invalidf("steps must be non-negative, got %d", cfg.Steps)
	}
	if cfg.PrintEvery <= 0 {
		return dynamo.Invalidf("print_every must be positive, got %d", cfg.PrintEvery)
	}
	if cfg.Dim <= 0 {
		return dynamo.Invalidf("dimension must be positive, got %d", cfg.Dim)
	}
	return nil
}
