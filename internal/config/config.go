// Package config loads, validates and names run configurations.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/jamsim/internal/dynamo"
	"github.com/san-kum/jamsim/internal/minimize"
)

const (
	DefaultN          = 5000
	DefaultDim        = 2
	DefaultBox        = 80.0
	DefaultSteps      = 200
	DefaultPrintEvery = 10
	DefaultCutoff     = 1.5
	DefaultTolerance  = 1e-6
	DefaultStepSize   = 0.01
)

var validate = validator.New()

type Config struct {
	System    SystemConfig    `yaml:"system"`
	Potential PotentialConfig `yaml:"potential"`
	Minimizer MinimizerConfig `yaml:"minimizer"`
	Run       RunConfig       `yaml:"run"`
}

// SystemConfig describes the particles and the box they live in.
type SystemConfig struct {
	N     int       `yaml:"n" validate:"gte=1"`
	Dim   int       `yaml:"dim" validate:"gte=1"`
	Space string    `yaml:"space" validate:"oneof=periodic free"`
	Box   float64   `yaml:"box" validate:"gt=0"`
	Sides []float64 `yaml:"sides,omitempty" validate:"omitempty,dive,gt=0"`
	Seed  int64     `yaml:"seed"`
	// Fractions gives the share of each species; empty means equal shares.
	Fractions     []float64 `yaml:"fractions,omitempty" validate:"omitempty,dive,gte=0"`
	MinSeparation float64   `yaml:"min_separation" validate:"gte=0"`
	// Positions and Species replace random placement when set.
	Positions [][]float64 `yaml:"positions,omitempty"`
	Species   []int       `yaml:"species,omitempty" validate:"omitempty,dive,gte=0"`
}

type PotentialConfig struct {
	Kernel    string      `yaml:"kernel" validate:"oneof=soft_sphere lennard_jones"`
	Alpha     float64     `yaml:"alpha" validate:"gte=0"`
	RCutScale float64     `yaml:"rcut_scale" validate:"gte=0"`
	Sigma     [][]float64 `yaml:"sigma" validate:"required,min=1"`
	Epsilon   [][]float64 `yaml:"epsilon,omitempty"`
	Strategy  string      `yaml:"strategy" validate:"oneof=brute grid"`
	// Cutoff sizes the grid cells; 0 uses the interaction range.
	Cutoff float64 `yaml:"cutoff" validate:"gte=0"`
}

type MinimizerConfig struct {
	Name     string              `yaml:"name" validate:"oneof=fire gradient_descent"`
	Fire     minimize.FireConfig `yaml:"fire"`
	StepSize float64             `yaml:"step_size" validate:"gt=0"`
}

type RunConfig struct {
	Steps          int     `yaml:"steps" validate:"gte=0"`
	PrintEvery     int     `yaml:"print_every" validate:"gte=1"`
	Replicas       int     `yaml:"replicas" validate:"gte=1"`
	CheckTolerance float64 `yaml:"check_tolerance" validate:"gt=0"`
}

func DefaultConfig() *Config {
	return &Config{
		System: SystemConfig{
			N:     DefaultN,
			Dim:   DefaultDim,
			Space: "periodic",
			Box:   DefaultBox,
		},
		Potential: PotentialConfig{
			Kernel:   "soft_sphere",
			Alpha:    2,
			Sigma:    [][]float64{{1.0, 1.2}, {1.2, 1.4}},
			Strategy: "grid",
			Cutoff:   DefaultCutoff,
		},
		Minimizer: MinimizerConfig{
			Name:     "fire",
			Fire:     minimize.DefaultFireConfig(),
			StepSize: DefaultStepSize,
		},
		Run: RunConfig{
			Steps:          DefaultSteps,
			PrintEvery:     DefaultPrintEvery,
			Replicas:       1,
			CheckTolerance: DefaultTolerance,
		},
	}
}

// Validate checks field ranges and the relations between sections.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", dynamo.ErrInvalidConfig, err)
	}
	if err := c.Minimizer.Fire.Validate(); err != nil {
		return err
	}

	s, p := c.System, c.Potential
	k := len(p.Sigma)
	if len(s.Sides) > 0 && len(s.Sides) != s.Dim {
		return dynamo.Invalidf("%d box sides for dimension %d", len(s.Sides), s.Dim)
	}
	if len(s.Fractions) > 0 && len(s.Fractions) != k {
		return dynamo.Invalidf("%d species fractions for %d species", len(s.Fractions), k)
	}
	if len(s.Fractions) > 0 {
		total := 0.0
		for _, f := range s.Fractions {
			total += f
		}
		if total <= 0 {
			return dynamo.Invalidf("species fractions sum to %g", total)
		}
	}
	if len(s.Positions) > 0 {
		if len(s.Positions) != s.N {
			return dynamo.Invalidf("%d positions for %d particles", len(s.Positions), s.N)
		}
		for i, r := range s.Positions {
			if len(r) != s.Dim {
				return dynamo.Invalidf("position %d has %d coordinates, want %d", i, len(r), s.Dim)
			}
		}
	}
	if len(s.Species) > 0 {
		if len(s.Species) != s.N {
			return dynamo.Invalidf("%d species labels for %d particles", len(s.Species), s.N)
		}
		for i, sp := range s.Species {
			if sp >= k {
				return dynamo.Invalidf("particle %d has species %d, only %d defined", i, sp, k)
			}
		}
	}
	if p.Epsilon != nil && len(p.Epsilon) != k {
		return dynamo.Invalidf("epsilon has %d rows, sigma %d", len(p.Epsilon), k)
	}
	if s.Space == "free" && p.Strategy == "grid" {
		return dynamo.Invalidf("grid strategy needs a periodic box")
	}
	return nil
}

// BoxSides returns the box side per axis.
func (s SystemConfig) BoxSides() []float64 {
	if len(s.Sides) > 0 {
		out := make([]float64, len(s.Sides))
		copy(out, s.Sides)
		return out
	}
	out := make([]float64, s.Dim)
	for i := range out {
		out[i] = s.Box
	}
	return out
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	out := *c
	out.System.Sides = cloneFloats(c.System.Sides)
	out.System.Fractions = cloneFloats(c.System.Fractions)
	out.System.Positions = cloneRows(c.System.Positions)
	if c.System.Species != nil {
		out.System.Species = append([]int(nil), c.System.Species...)
	}
	out.Potential.Sigma = cloneRows(c.Potential.Sigma)
	out.Potential.Epsilon = cloneRows(c.Potential.Epsilon)
	return &out
}

func cloneFloats(xs []float64) []float64 {
	if xs == nil {
		return nil
	}
	return append([]float64(nil), xs...)
}

func cloneRows(rows [][]float64) [][]float64 {
	if rows == nil {
		return nil
	}
	out := make([][]float64, len(rows))
	for i, r := range rows {
		out[i] = cloneFloats(r)
	}
	return out
}
