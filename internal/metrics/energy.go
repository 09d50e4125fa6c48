package metrics

import (
	"math"

	"github.com/san-kum/jamsim/internal/minimize"
)

// Energy reports the energy of the last observed state.
type Energy struct {
	name    string
	current float64
	samples int
}

func NewEnergy() *Energy {
	return &Energy{name: "energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(st *minimize.State) {
	e.current = st.Energy
	e.samples++
}

func (e *Energy) Value() float64 {
	return e.current
}

func (e *Energy) Reset() {
	e.current = 0
	e.samples = 0
}

// EnergyDrop is the relative decrease (E0 - E) / E0 between the first and
// the last observed state.
type EnergyDrop struct {
	name          string
	initialEnergy float64
	currentEnergy float64
	samples       int
}

func NewEnergyDrop() *EnergyDrop {
	return &EnergyDrop{name: "energy_drop"}
}

func (e *EnergyDrop) Name() string { return e.name }

func (e *EnergyDrop) Observe(st *minimize.State) {
	if e.samples == 0 {
		e.initialEnergy = st.Energy
	}
	e.currentEnergy = st.Energy
	e.samples++
}

func (e *EnergyDrop) Value() float64 {
	if e.initialEnergy == 0 {
		return 0
	}
	return (e.initialEnergy - e.currentEnergy) / math.Abs(e.initialEnergy)
}

func (e *EnergyDrop) Reset() {
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.samples = 0
}
