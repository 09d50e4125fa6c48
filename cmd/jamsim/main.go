package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/san-kum/jamsim/internal/config"
	"github.com/san-kum/jamsim/internal/logging"
)

var (
	configFile string
	logLevel   string
	logFormat  string

	steps       int
	printEvery  int
	seed        int64
	strategy    string
	minimizer   string
	outFormat   string
	plot        bool
	check       bool
	metricsFile string
	svgFile     string
	replicas    int
	tolerance   float64

	theme        string
	stepsPerTick int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "jamsim",
		Short:         "soft-sphere jamming and energy minimization",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "minimize a configuration and print diagnostics",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runMinimize,
	}
	addSystemFlags(runCmd)
	runCmd.Flags().IntVar(&printEvery, "print-every", config.DefaultPrintEvery, "record every n steps")
	runCmd.Flags().StringVar(&outFormat, "format", "table", "output format (table, csv, json)")
	runCmd.Flags().BoolVar(&plot, "plot", false, "plot the energy curve")
	runCmd.Flags().BoolVar(&check, "check", false, "cross-check brute force and grid forces at the end")
	runCmd.Flags().Float64Var(&tolerance, "tolerance", config.DefaultTolerance, "cross-check tolerance on the summed dF^2")
	runCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write prometheus metrics to this file")
	runCmd.Flags().StringVar(&svgFile, "svg", "", "draw the final configuration to this svg file")
	runCmd.Flags().IntVar(&replicas, "replicas", 1, "number of independent seeds to run")

	checkCmd := &cobra.Command{
		Use:   "check [preset]",
		Short: "compare brute-force and grid forces",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runCheck,
	}
	addSystemFlags(checkCmd)
	checkCmd.Flags().Float64Var(&tolerance, "tolerance", config.DefaultTolerance, "maximum summed dF^2")

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "watch the minimizer in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addSystemFlags(liveCmd)
	liveCmd.Flags().StringVar(&theme, "theme", "cyberpunk", "color theme (cyberpunk, retro, ocean)")
	liveCmd.Flags().IntVar(&stepsPerTick, "steps-per-frame", 1, "minimizer steps per frame")

	benchCmd := &cobra.Command{
		Use:   "bench [preset]",
		Short: "compare brute-force and grid step rates",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runBench,
	}
	benchCmd.Flags().IntVar(&steps, "steps", 20, "steps per strategy")
	benchCmd.Flags().Int64Var(&seed, "seed", 0, "random seed")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("presets:")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Printf("  %-10s n=%d box=%g kernel=%s strategy=%s\n",
					name, p.System.N, p.System.Box, p.Potential.Kernel, p.Potential.Strategy)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, checkCmd, liveCmd, benchCmd, presetsCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func addSystemFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "minimizer steps")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed")
	cmd.Flags().StringVar(&strategy, "strategy", "grid", "force strategy (brute, grid)")
	cmd.Flags().StringVar(&minimizer, "minimizer", "fire", "minimizer (fire, gradient_descent)")
}

func newLogger() (*slog.Logger, error) {
	level, err := logging.ParseLevel(logLevel)
	if err != nil {
		return nil, err
	}
	switch logFormat {
	case "text", "json":
	default:
		return nil, fmt.Errorf("unknown log format %q", logFormat)
	}
	return logging.New(logging.Config{
		Level:   level,
		JSON:    logFormat == "json",
		Service: "jamsim",
	}), nil
}

// loadConfig starts from the named preset (bidisperse by default), replaces
// it with --config when given, and applies the flags the user set.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, string, error) {
	name := "bidisperse"
	if len(args) > 0 {
		name = args[0]
	}
	cfg := config.GetPreset(name)
	if cfg == nil {
		return nil, "", fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		cfg, name = loaded, configFile
	}

	flags := cmd.Flags()
	if flags.Changed("steps") {
		cfg.Run.Steps = steps
	}
	if flags.Changed("print-every") {
		cfg.Run.PrintEvery = printEvery
	}
	if flags.Changed("seed") {
		cfg.System.Seed = seed
	}
	if flags.Changed("strategy") {
		cfg.Potential.Strategy = strategy
	}
	if flags.Changed("minimizer") {
		cfg.Minimizer.Name = minimizer
	}
	if flags.Changed("replicas") {
		cfg.Run.Replicas = replicas
	}
	if flags.Changed("tolerance") {
		cfg.Run.CheckTolerance = tolerance
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, name, nil
}
