package grid

import (
	"errors"
	"math/rand"
	"sort"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/jamsim/internal/dynamo"
	"github.com/san-kum/jamsim/internal/space"
)

func randomPositions(rng *rand.Rand, n int, box *space.Periodic) dynamo.State {
	dim := box.Dim()
	R := dynamo.NewState(n, dim)
	for i := range R {
		R[i] = rng.Float64() * box.Side(i%dim)
	}
	return R
}

func hasDuplicates(xs []int) bool {
	seen := make(map[int]bool, len(xs))
	for _, x := range xs {
		if seen[x] {
			return true
		}
		seen[x] = true
	}
	return false
}

var _ = Describe("Build", func() {
	var box *space.Periodic

	BeforeEach(func() {
		var err error
		box, err = space.NewPeriodic(2, 10)
		Expect(err).NotTo(HaveOccurred())
	})

	It("rejects a non-positive cutoff", func() {
		for _, c := range []float64{0, -1} {
			_, err := Build(dynamo.NewState(3, 2), box, c)
			Expect(errors.Is(err, ErrInvalidCutoff)).To(BeTrue())
		}
	})

	It("rejects a cutoff above half the box", func() {
		_, err := Build(dynamo.NewState(3, 2), box, 5.01)
		Expect(errors.Is(err, ErrCutoffTooLarge)).To(BeTrue())
	})

	It("accepts a cutoff of exactly half the box", func() {
		g, err := Build(dynamo.NewState(3, 2), box, 5)
		Expect(err).NotTo(HaveOccurred())
		Expect(g.Dims()).To(Equal([]int{2, 2}))
	})

	It("uses floor(L/cutoff) cells per axis", func() {
		g, err := Build(dynamo.NewState(1, 2), box, 1.5)
		Expect(err).NotTo(HaveOccurred())
		Expect(g.Dims()).To(Equal([]int{6, 6}))
		Expect(g.NumCells()).To(Equal(36))
	})

	It("rejects coordinates that do not match the dimension", func() {
		_, err := Build(make(dynamo.State, 5), box, 1)
		Expect(errors.Is(err, dynamo.ErrDimensionMismatch)).To(BeTrue())
	})

	It("places every particle in exactly one cell", func() {
		rng := rand.New(rand.NewSource(3))
		R := randomPositions(rng, 200, box)
		g, err := Build(R, box, 1.2)
		Expect(err).NotTo(HaveOccurred())

		var all []int
		for c := 0; c < g.NumCells(); c++ {
			for _, i := range g.Members(c) {
				Expect(g.CellOf(i)).To(Equal(c))
			}
			all = append(all, g.Members(c)...)
		}
		sort.Ints(all)
		Expect(all).To(HaveLen(200))
		for i, v := range all {
			Expect(v).To(Equal(i))
		}
	})

	It("buckets positions outside the box by their wrapped image", func() {
		R := dynamo.State{-0.5, 0.5, 10.5, 0.5}
		g, err := Build(R, box, 2.5)
		Expect(err).NotTo(HaveOccurred())
		// x=-0.5 wraps to 9.5 (last column), x=10.5 wraps to 0.5 (first).
		Expect(g.CellOf(0)).To(Equal(3 * 4))
		Expect(g.CellOf(1)).To(Equal(0))
	})
})

var _ = Describe("NeighborsOf", func() {
	It("never lists a neighbor twice with two cells per axis", func() {
		box, err := space.NewPeriodic(2, 4)
		Expect(err).NotTo(HaveOccurred())
		rng := rand.New(rand.NewSource(7))
		R := randomPositions(rng, 40, box)
		g, err := Build(R, box, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(g.Dims()).To(Equal([]int{2, 2}))

		for i := 0; i < 40; i++ {
			nb := g.NeighborsOf(i, nil)
			Expect(hasDuplicates(nb)).To(BeFalse())
			Expect(nb).NotTo(ContainElement(i))
			// Two cells per axis cover the whole box.
			Expect(nb).To(HaveLen(39))
		}
	})

	It("visits the single cell once when an axis has one cell", func() {
		box, err := space.NewPeriodicGeneral([]float64{3, 12})
		Expect(err).NotTo(HaveOccurred())
		rng := rand.New(rand.NewSource(11))
		R := randomPositions(rng, 30, box)
		g := build(R, box, []int{1, 4})

		for c := 0; c < g.NumCells(); c++ {
			Expect(hasDuplicates(g.NeighborCells(c))).To(BeFalse())
			Expect(g.NeighborCells(c)).To(HaveLen(3))
		}
		for i := 0; i < 30; i++ {
			Expect(hasDuplicates(g.NeighborsOf(i, nil))).To(BeFalse())
		}
	})

	It("lists 3^D distinct cells on a large grid", func() {
		box, err := space.NewPeriodic(3, 10)
		Expect(err).NotTo(HaveOccurred())
		g, err := Build(dynamo.NewState(1, 3), box, 2)
		Expect(err).NotTo(HaveOccurred())
		for c := 0; c < g.NumCells(); c++ {
			Expect(g.NeighborCells(c)).To(HaveLen(27))
			Expect(hasDuplicates(g.NeighborCells(c))).To(BeFalse())
		}
	})

	It("includes every particle within the cutoff", func() {
		box, err := space.NewPeriodic(2, 20)
		Expect(err).NotTo(HaveOccurred())
		rng := rand.New(rand.NewSource(42))
		R := randomPositions(rng, 300, box)
		const cutoff = 1.7
		g, err := Build(R, box, cutoff)
		Expect(err).NotTo(HaveOccurred())

		for i := 0; i < 300; i++ {
			cand := make(map[int]bool)
			for _, j := range g.NeighborsOf(i, nil) {
				cand[j] = true
			}
			for j := 0; j < 300; j++ {
				if j == i {
					continue
				}
				if space.Distance(box, R.Particle(i, 2), R.Particle(j, 2)) < cutoff {
					Expect(cand).To(HaveKey(j), "pair %d-%d missing", i, j)
				}
			}
		}
	})

	It("appends to the supplied slice", func() {
		box, err := space.NewPeriodic(2, 4)
		Expect(err).NotTo(HaveOccurred())
		g, err := Build(dynamo.State{1, 1, 3, 3}, box, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(g.NeighborsOf(0, []int{-1})).To(Equal([]int{-1, 1}))
	})
})
