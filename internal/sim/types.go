// Package sim drives a minimizer for a fixed number of steps.
//
// The simulator owns the minimizer state for the duration of a run,
// feeds every step to the registered metrics and observers, and keeps a
// diagnostic record on a caller-chosen cadence.
package sim

import (
	"time"

	"github.com/san-kum/jamsim/internal/minimize"
)

type Metric interface {
	Name() string
	Observe(st *minimize.State)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(st *minimize.State)
}

// Config controls a run. Dim is the spatial dimension, used to split the
// force vector into particles.
type Config struct {
	Steps      int
	PrintEvery int
	Dim        int
}

// Record is one row of the diagnostic table.
type Record struct {
	Step      int     `csv:"step" json:"step"`
	Energy    float64 `csv:"energy" json:"energy"`
	MaxForce  float64 `csv:"max_force" json:"max_force"`
	MeanForce float64 `csv:"mean_force" json:"mean_force"`
	Dt        float64 `csv:"dt" json:"dt"`
	Alpha     float64 `csv:"alpha" json:"alpha"`
}

type Result struct {
	Records       []Record
	Final         *minimize.State
	StepsTaken    int
	InitialEnergy float64
	Metrics       map[string]float64
	Elapsed       time.Duration
}

// Energies returns the energy column of the records.
func (r *Result) Energies() []float64 {
	out := make([]float64, len(r.Records))
	for i, rec := range r.Records {
		out[i] = rec.Energy
	}
	return out
}
