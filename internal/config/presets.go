package config

import (
	"sort"

	"github.com/san-kum/jamsim/internal/minimize"
)

var Presets = map[string]*Config{
	// 50:50 bidisperse soft spheres, the reference jamming setup.
	"bidisperse": DefaultConfig(),
	"small": {
		System: SystemConfig{N: 500, Dim: 2, Space: "periodic", Box: 25},
		Potential: PotentialConfig{
			Kernel: "soft_sphere", Alpha: 2,
			Sigma:    [][]float64{{1.0, 1.2}, {1.2, 1.4}},
			Strategy: "grid", Cutoff: 1.5,
		},
		Minimizer: MinimizerConfig{Name: "fire", Fire: minimize.DefaultFireConfig(), StepSize: DefaultStepSize},
		Run:       RunConfig{Steps: 200, PrintEvery: 10, Replicas: 1, CheckTolerance: DefaultTolerance},
	},
	"overlap": {
		System: SystemConfig{
			N: 4, Dim: 2, Space: "periodic", Box: 10,
			Positions: [][]float64{{1, 1}, {1.5, 1}, {3, 6}, {8, 6}},
			Species:   []int{0, 0, 0, 0},
		},
		Potential: PotentialConfig{
			Kernel: "soft_sphere", Alpha: 2,
			Sigma:    [][]float64{{1}},
			Strategy: "grid",
		},
		Minimizer: MinimizerConfig{Name: "fire", Fire: minimize.DefaultFireConfig(), StepSize: DefaultStepSize},
		Run:       RunConfig{Steps: 100, PrintEvery: 10, Replicas: 1, CheckTolerance: DefaultTolerance},
	},
	"lj": {
		System: SystemConfig{N: 200, Dim: 2, Space: "periodic", Box: 20, MinSeparation: 1.0},
		Potential: PotentialConfig{
			Kernel: "lennard_jones", RCutScale: 2.5,
			Sigma:    [][]float64{{1}},
			Strategy: "grid", Cutoff: 2.5,
		},
		Minimizer: MinimizerConfig{Name: "fire", Fire: minimize.DefaultFireConfig(), StepSize: DefaultStepSize},
		Run:       RunConfig{Steps: 500, PrintEvery: 25, Replicas: 1, CheckTolerance: DefaultTolerance},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
