package metrics

import (
	"github.com/san-kum/jamsim/internal/minimize"
)

// MaxForce reports the largest per-particle force norm of the last
// observed state.
type MaxForce struct {
	name    string
	dim     int
	current float64
}

func NewMaxForce(dim int) *MaxForce {
	return &MaxForce{name: "max_force", dim: dim}
}

func (m *MaxForce) Name() string { return m.name }

func (m *MaxForce) Observe(st *minimize.State) {
	m.current = st.Force.MaxNorm(m.dim)
}

func (m *MaxForce) Value() float64 { return m.current }

func (m *MaxForce) Reset() { m.current = 0 }

// VelocityResets reports how many FIRE steps found non-positive power and
// stopped the system.
type VelocityResets struct {
	name   string
	resets int
}

func NewVelocityResets() *VelocityResets {
	return &VelocityResets{name: "velocity_resets"}
}

func (v *VelocityResets) Name() string { return v.name }

func (v *VelocityResets) Observe(st *minimize.State) { v.resets = st.Resets }

func (v *VelocityResets) Value() float64 { return float64(v.resets) }

func (v *VelocityResets) Reset() { v.resets = 0 }
