package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/san-kum/jamsim/internal/dynamo"
	"github.com/san-kum/jamsim/internal/experiment"
	"github.com/san-kum/jamsim/internal/export"
	"github.com/san-kum/jamsim/internal/metrics"
	"github.com/san-kum/jamsim/internal/minimize"
	"github.com/san-kum/jamsim/internal/potential"
	"github.com/san-kum/jamsim/internal/viz"
)

func runMinimize(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	cfg, name, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	runID := uuid.New().String()
	log = log.With("run_id", runID)

	exp, err := experiment.New(cfg, nil)
	if err != nil {
		return err
	}
	log.Info("starting run",
		"preset", name,
		"n", cfg.System.N,
		"dim", cfg.System.Dim,
		"strategy", cfg.Potential.Strategy,
		"minimizer", cfg.Minimizer.Name,
		"steps", cfg.Run.Steps,
	)

	ctx := cmd.Context()
	if cfg.Run.Replicas > 1 {
		results, err := exp.RunEnsemble(ctx)
		if err != nil {
			return err
		}
		log.Info("ensemble finished", "replicas", len(results))
		return printEnsemble(os.Stdout, results, cfg.System.Seed)
	}

	collector := metrics.NewCollector(cfg.System.Dim, prometheus.Labels{
		"run_id":   runID,
		"strategy": cfg.Potential.Strategy,
	})
	st, err := exp.Minimizer().Init(exp.Initial())
	if err != nil {
		return err
	}
	collector.Start(st)
	exp.Simulator().AddObserver(collector)

	if outFormat == "table" {
		fmt.Println("Minimizing.")
	}
	result, runErr := exp.Simulator().Continue(ctx, st, exp.SimConfig())
	if result != nil {
		if err := printRecords(os.Stdout, outFormat, result.Records); err != nil {
			return err
		}
	}
	if metricsFile != "" {
		if err := collector.WriteTextfile(metricsFile); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
		log.Debug("metrics written", "path", metricsFile)
	}
	if runErr != nil {
		var stepErr *dynamo.StepError
		if errors.As(runErr, &stepErr) {
			log.Error("minimizer failed", "step", stepErr.Step, "err", stepErr.Err)
		}
		return runErr
	}

	log.Info("run finished",
		"steps", result.StepsTaken,
		"energy", result.Final.Energy,
		"velocity_resets", result.Final.Resets,
		"elapsed", result.Elapsed,
	)
	if outFormat == "table" {
		printMetrics(os.Stdout, result.Metrics)
	}
	if plot {
		printEnergyPlot(os.Stdout, result.Energies())
	}

	if svgFile != "" {
		if err := writeSVG(svgFile, exp, result.Final.Position); err != nil {
			return err
		}
		log.Info("configuration drawn", "path", svgFile)
	}

	if check && cfg.System.Space == "periodic" {
		dF, err := exp.CrossCheck(result.Final.Position)
		if err != nil {
			return err
		}
		return reportCheck(os.Stdout, dF, cfg.Run.CheckTolerance)
	}
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	cfg, name, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	if cfg.System.Space != "periodic" {
		return dynamo.Invalidf("cross-check needs a periodic box")
	}
	// Only minimize before checking when asked to.
	if !cmd.Flags().Changed("steps") {
		cfg.Run.Steps = 0
	}

	exp, err := experiment.New(cfg, nil)
	if err != nil {
		return err
	}
	log.Info("cross-check", "preset", name, "n", cfg.System.N, "steps", cfg.Run.Steps)

	R := exp.Initial()
	if cfg.Run.Steps > 0 {
		result, err := exp.Run(cmd.Context())
		if err != nil {
			return err
		}
		R = result.Final.Position
	}
	dF, err := exp.CrossCheck(R)
	if err != nil {
		return err
	}
	return reportCheck(os.Stdout, dF, cfg.Run.CheckTolerance)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg, nil)
	if err != nil {
		return err
	}

	opts := []viz.Option{viz.WithTheme(theme), viz.WithStepsPerTick(stepsPerTick)}
	if cmd.Flags().Changed("steps") {
		opts = append(opts, viz.WithMaxSteps(cfg.Run.Steps))
	}
	model, err := viz.NewModel(exp.Minimizer(), exp.Initial(), cfg.System.BoxSides(), name, opts...)
	if err != nil {
		return err
	}

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return err
	}
	return model.Err()
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	if cfg.System.Space != "periodic" {
		return dynamo.Invalidf("bench needs a periodic box")
	}

	fmt.Printf("benchmarking %s (n=%d, %d steps per strategy)...\n\n", name, cfg.System.N, steps)
	rows := make([]benchRow, 0, 2)
	for _, s := range []potential.Strategy{potential.BruteForce, potential.Grid} {
		c := cfg.Clone()
		c.Potential.Strategy = string(s)
		exp, err := experiment.New(c, nil)
		if err != nil {
			return err
		}
		row, err := benchOne(exp, steps)
		if err != nil {
			return fmt.Errorf("%s: %w", s, err)
		}
		row.strategy = s
		rows = append(rows, row)
	}
	printBench(os.Stdout, rows)
	return nil
}

type benchRow struct {
	strategy potential.Strategy
	steps    int
	elapsed  time.Duration
	energy   float64
}

func benchOne(exp *experiment.Experiment, n int) (benchRow, error) {
	m := exp.Minimizer()
	st, err := m.Init(exp.Initial())
	if err != nil {
		return benchRow{}, err
	}
	start := time.Now()
	if err := applySteps(m, st, n); err != nil {
		return benchRow{}, err
	}
	return benchRow{steps: n, elapsed: time.Since(start), energy: st.Energy}, nil
}

func writeSVG(path string, exp *experiment.Experiment, R dynamo.State) error {
	cfg := exp.Config()
	diam := make([]float64, len(cfg.Potential.Sigma))
	for i := range diam {
		diam[i] = cfg.Potential.Sigma[i][i]
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return export.WriteSVG(f, export.Packing{
		Positions: R,
		Dim:       cfg.System.Dim,
		Species:   exp.Species(),
		Diameters: diam,
		Sides:     cfg.System.BoxSides(),
	}, 800)
}

func applySteps(m minimize.Minimizer, st *minimize.State, n int) error {
	for i := 0; i < n; i++ {
		if err := m.Apply(st); err != nil {
			return err
		}
	}
	return nil
}
