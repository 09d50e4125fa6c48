package sim

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/jamsim/internal/dynamo"
	"github.com/san-kum/jamsim/internal/minimize"
	"github.com/san-kum/jamsim/internal/potential"
	"github.com/san-kum/jamsim/internal/space"
)

// halving is a minimizer whose energy halves every step and which fails
// on step failAt when failAt > 0.
type halving struct {
	failAt int
}

func (h *halving) Name() string { return "halving" }

func (h *halving) Init(R0 dynamo.State) (*minimize.State, error) {
	return &minimize.State{
		Position: R0.Clone(),
		Velocity: make(dynamo.State, len(R0)),
		Force:    dynamo.State{3, 4, 0, 1},
		Energy:   64,
		Dt:       0.1,
	}, nil
}

func (h *halving) Apply(st *minimize.State) error {
	if h.failAt > 0 && st.Step == h.failAt {
		return &dynamo.StepError{Step: st.Step, Err: dynamo.ErrNonFinite}
	}
	st.Energy /= 2
	st.Step++
	return nil
}

type countingMetric struct {
	count int
	last  float64
}

func (c *countingMetric) Name() string { return "count" }
func (c *countingMetric) Observe(st *minimize.State) {
	c.count++
	c.last = st.Energy
}
func (c *countingMetric) Value() float64 { return float64(c.count) }
func (c *countingMetric) Reset()         { c.count = 0 }

type stepRecorder struct {
	steps []int
}

func (s *stepRecorder) OnStep(st *minimize.State) { s.steps = append(s.steps, st.Step) }

var _ = Describe("Simulator", func() {
	var (
		sim *Simulator
		R0  dynamo.State
		cfg Config
	)

	BeforeEach(func() {
		sim = New(&halving{})
		R0 = dynamo.State{1, 1, 2, 2}
		cfg = Config{Steps: 6, PrintEvery: 2, Dim: 2}
	})

	It("applies the requested number of steps", func() {
		res, err := sim.Run(context.Background(), R0, cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.StepsTaken).To(Equal(6))
		Expect(res.Final.Step).To(Equal(6))
		Expect(res.InitialEnergy).To(Equal(64.0))
		Expect(res.Final.Energy).To(Equal(1.0))
	})

	It("records on the print cadence and after the last step", func() {
		res, err := sim.Run(context.Background(), R0, cfg)
		Expect(err).NotTo(HaveOccurred())

		var steps []int
		for _, r := range res.Records {
			steps = append(steps, r.Step)
		}
		Expect(steps).To(Equal([]int{0, 2, 4, 5}))
		Expect(res.Records[0].Energy).To(Equal(32.0))
		Expect(res.Records[0].MaxForce).To(Equal(5.0))
		Expect(res.Records[0].MeanForce).To(Equal(3.0))
		Expect(res.Energies()).To(Equal([]float64{32, 8, 2, 1}))
	})

	It("feeds metrics and observers every step", func() {
		metric := &countingMetric{}
		obs := &stepRecorder{}
		sim.AddMetric(metric)
		sim.AddObserver(obs)

		res, err := sim.Run(context.Background(), R0, cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Metrics).To(HaveKeyWithValue("count", 6.0))
		Expect(metric.last).To(Equal(1.0))
		Expect(obs.steps).To(Equal([]int{1, 2, 3, 4, 5, 6}))
	})

	It("rejects invalid configurations", func() {
		for _, bad := range []Config{
			{Steps: -1, PrintEvery: 1, Dim: 2},
			{Steps: 5, PrintEvery: 0, Dim: 2},
			{Steps: 5, PrintEvery: 1, Dim: 0},
		} {
			_, err := sim.Run(context.Background(), R0, bad)
			Expect(errors.Is(err, dynamo.ErrInvalidConfig)).To(BeTrue())
		}
	})

	It("allows zero steps", func() {
		res, err := sim.Run(context.Background(), R0, Config{Steps: 0, PrintEvery: 1, Dim: 2})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.StepsTaken).To(Equal(0))
		Expect(res.Records).To(BeEmpty())
	})

	It("stops when the context is canceled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		res, err := sim.Run(ctx, R0, cfg)
		Expect(errors.Is(err, dynamo.ErrCanceled)).To(BeTrue())
		Expect(res.StepsTaken).To(Equal(0))
	})

	It("returns the partial result on a step failure", func() {
		sim = New(&halving{failAt: 3})
		res, err := sim.Run(context.Background(), R0, cfg)
		Expect(errors.Is(err, dynamo.ErrNonFinite)).To(BeTrue())
		var se *dynamo.StepError
		Expect(errors.As(err, &se)).To(BeTrue())
		Expect(se.Step).To(Equal(3))
		Expect(res.StepsTaken).To(Equal(3))
	})

	It("continues from an existing state", func() {
		st, err := sim.Minimizer().Init(R0)
		Expect(err).NotTo(HaveOccurred())
		_, err = sim.Continue(context.Background(), st, Config{Steps: 2, PrintEvery: 1, Dim: 2})
		Expect(err).NotTo(HaveOccurred())
		res, err := sim.Continue(context.Background(), st, Config{Steps: 2, PrintEvery: 1, Dim: 2})
		Expect(err).NotTo(HaveOccurred())
		Expect(res.InitialEnergy).To(Equal(16.0))
		Expect(st.Step).To(Equal(4))
	})
})

var _ = Describe("FIRE run", func() {
	It("relaxes the overlapping pair and leaves the far pair alone", func() {
		box, err := space.NewPeriodic(2, 10)
		Expect(err).NotTo(HaveOccurred())
		sigma, err := potential.Uniform(1, 1)
		Expect(err).NotTo(HaveOccurred())
		kernel, err := potential.NewSoftSphere(2)
		Expect(err).NotTo(HaveOccurred())
		e, err := potential.NewGrid(box, potential.Params{Kernel: kernel, Species: make([]int, 4), Sigma: sigma}, 0)
		Expect(err).NotTo(HaveOccurred())
		fire, err := minimize.NewFire(e, box, minimize.DefaultFireConfig())
		Expect(err).NotTo(HaveOccurred())

		R0 := dynamo.State{1, 1, 1.5, 1, 3, 6, 8, 6}
		res, err := New(fire).Run(context.Background(), R0, Config{Steps: 200, PrintEvery: 10, Dim: 2})
		Expect(err).NotTo(HaveOccurred())

		Expect(res.InitialEnergy).To(BeNumerically("~", 0.125, 1e-15))
		Expect(res.Final.Energy).To(Equal(0.0))
		P := res.Final.Position
		Expect(space.Distance(box, P.Particle(0, 2), P.Particle(1, 2))).To(BeNumerically(">=", 1-1e-9))
		Expect(P[4:]).To(Equal(R0[4:]))
		Expect(res.Records).To(HaveLen(21))
	})
})

var _ = Describe("Ensemble", func() {
	build := func(seed int64) (minimize.Minimizer, dynamo.State, error) {
		if seed < 0 {
			return nil, nil, dynamo.Invalidf("negative seed")
		}
		return &halving{}, dynamo.State{float64(seed), 0, 0, 0}, nil
	}

	It("runs every seed and keeps seed order", func() {
		results, err := NewEnsemble(build, 4, 10).
			WithMetrics(func() []Metric { return []Metric{&countingMetric{}} }).
			Run(context.Background(), Config{Steps: 3, PrintEvery: 1, Dim: 2})
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(4))
		for i, r := range results {
			Expect(r.Final.Position[0]).To(Equal(float64(10 + i)))
			Expect(r.Metrics["count"]).To(Equal(3.0))
		}
	})

	It("fails when a replica cannot be built", func() {
		_, err := NewEnsemble(build, 3, -1).Run(context.Background(), Config{Steps: 1, PrintEvery: 1, Dim: 2})
		Expect(errors.Is(err, dynamo.ErrInvalidConfig)).To(BeTrue())
	})

	It("rejects an empty ensemble", func() {
		_, err := NewEnsemble(build, 0, 0).Run(context.Background(), Config{Steps: 1, PrintEvery: 1, Dim: 2})
		Expect(errors.Is(err, dynamo.ErrInvalidConfig)).To(BeTrue())
	})
})

var _ = Describe("ForceStats", func() {
	It("summarizes per-particle norms", func() {
		fs := NewForceStats(dynamo.State{3, 4, 0, 1, 0, 0}, 2)
		Expect(fs.Max).To(Equal(5.0))
		Expect(fs.Mean).To(Equal(2.0))
		Expect(fs.Std).To(BeNumerically("~", math.Sqrt(7), 1e-12))
	})

	It("handles a single particle and an empty state", func() {
		Expect(NewForceStats(dynamo.State{3, 4}, 2)).To(Equal(ForceStats{Max: 5, Mean: 5}))
		Expect(NewForceStats(nil, 2)).To(Equal(ForceStats{}))
	})
})
