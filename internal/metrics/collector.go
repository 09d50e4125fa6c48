// Package metrics turns minimizer states into diagnostics.
//
// The step metrics implement sim.Metric and summarize a run into a single
// number each. [Collector] exports the same quantities as Prometheus
// series on a private registry, which can be written to a node_exporter
// textfile at the end of a run.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/san-kum/jamsim/internal/minimize"
)

const (
	metricsNamespace = "jamsim"
	minimizerSubsys  = "minimizer"
)

// Collector records every observed step. It implements sim.Observer.
type Collector struct {
	registry *prometheus.Registry
	dim      int

	StepsTotal          prometheus.Counter
	VelocityResetsTotal prometheus.Counter
	StepSeconds         prometheus.Histogram
	Energy              prometheus.Gauge
	MaxForce            prometheus.Gauge
	Dt                  prometheus.Gauge
	Alpha               prometheus.Gauge

	lastResets int
	lastStep   time.Time
	now        func() time.Time
}

// NewCollector registers the minimizer series with the given constant
// labels (for example run_id and strategy) on a fresh registry.
func NewCollector(dim int, labels prometheus.Labels) *Collector {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	opts := func(name, help string) prometheus.Opts {
		return prometheus.Opts{
			Namespace:   metricsNamespace,
			Subsystem:   minimizerSubsys,
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		}
	}

	return &Collector{
		registry:            reg,
		dim:                 dim,
		StepsTotal:          f.NewCounter(prometheus.CounterOpts(opts("steps_total", "Minimizer steps applied"))),
		VelocityResetsTotal: f.NewCounter(prometheus.CounterOpts(opts("velocity_resets_total", "Steps that found non-positive power and zeroed the velocity"))),
		StepSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Namespace:   metricsNamespace,
			Subsystem:   minimizerSubsys,
			Name:        "step_seconds",
			Help:        "Wall time per minimizer step",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(1e-4, 4, 10),
		}),
		Energy:   f.NewGauge(prometheus.GaugeOpts(opts("energy", "Potential energy of the current configuration"))),
		MaxForce: f.NewGauge(prometheus.GaugeOpts(opts("max_force", "Largest per-particle force norm"))),
		Dt:       f.NewGauge(prometheus.GaugeOpts(opts("dt", "Current FIRE time step"))),
		Alpha:    f.NewGauge(prometheus.GaugeOpts(opts("alpha", "Current FIRE mixing coefficient"))),
		now:      time.Now,
	}
}

func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Start sets the gauges from the initial state and starts the step clock.
func (c *Collector) Start(st *minimize.State) {
	c.lastResets = st.Resets
	c.setGauges(st)
	c.lastStep = c.now()
}

// OnStep records one applied step.
func (c *Collector) OnStep(st *minimize.State) {
	now := c.now()
	if !c.lastStep.IsZero() {
		c.StepSeconds.Observe(now.Sub(c.lastStep).Seconds())
	}
	c.lastStep = now

	c.StepsTotal.Inc()
	if d := st.Resets - c.lastResets; d > 0 {
		c.VelocityResetsTotal.Add(float64(d))
	}
	c.lastResets = st.Resets
	c.setGauges(st)
}

func (c *Collector) setGauges(st *minimize.State) {
	c.Energy.Set(st.Energy)
	c.MaxForce.Set(st.Force.MaxNorm(c.dim))
	c.Dt.Set(st.Dt)
	c.Alpha.Set(st.Alpha)
}

// WriteTextfile writes the current values in the Prometheus text format.
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}
