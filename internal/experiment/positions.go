package experiment

import (
	"math/rand"

	"github.com/san-kum/jamsim/internal/config"
	"github.com/san-kum/jamsim/internal/dynamo"
	"github.com/san-kum/jamsim/internal/space"
)

// maxPlacementTries bounds rejection sampling per particle.
const maxPlacementTries = 10000

// assignSpecies returns explicit labels when given, otherwise contiguous
// blocks sized by the species fractions (equal shares by default). Any
// rounding remainder goes to the last species.
func assignSpecies(s config.SystemConfig, k int) []int {
	if len(s.Species) > 0 {
		return append([]int(nil), s.Species...)
	}
	fractions := s.Fractions
	if len(fractions) == 0 {
		fractions = make([]float64, k)
		for i := range fractions {
			fractions[i] = 1
		}
	}
	total := 0.0
	for _, f := range fractions {
		total += f
	}

	species := make([]int, s.N)
	start := 0
	for sp := 0; sp < k-1; sp++ {
		count := int(float64(s.N) * fractions[sp] / total)
		for i := start; i < start+count && i < s.N; i++ {
			species[i] = sp
		}
		start += count
	}
	for i := start; i < s.N; i++ {
		species[i] = k - 1
	}
	return species
}

// placeParticles returns explicit positions when given, otherwise samples
// uniformly in the box. With a positive minimum separation, candidates
// closer than that to an already placed particle are redrawn.
func placeParticles(s config.SystemConfig, sp space.Space, rng *rand.Rand) (dynamo.State, error) {
	R := dynamo.NewState(s.N, s.Dim)
	if len(s.Positions) > 0 {
		for i, r := range s.Positions {
			copy(R.Particle(i, s.Dim), r)
		}
		return R, nil
	}

	sides := s.BoxSides()
	minSq := s.MinSeparation * s.MinSeparation
	for i := 0; i < s.N; i++ {
		ri := R.Particle(i, s.Dim)
		placed := false
		for try := 0; try < maxPlacementTries && !placed; try++ {
			for a := range ri {
				ri[a] = rng.Float64() * sides[a]
			}
			placed = true
			if minSq == 0 {
				break
			}
			for j := 0; j < i; j++ {
				if space.DistanceSq(sp, ri, R.Particle(j, s.Dim)) < minSq {
					placed = false
					break
				}
			}
		}
		if !placed {
			return nil, dynamo.Invalidf("could not place particle %d at separation %g after %d tries",
				i, s.MinSeparation, maxPlacementTries)
		}
	}
	return R, nil
}
