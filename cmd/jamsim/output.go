package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/gocarina/gocsv"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/jamsim/internal/potential"
	"github.com/san-kum/jamsim/internal/sim"
)

func printRecords(out io.Writer, format string, records []sim.Record) error {
	switch format {
	case "table":
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "Step\tEnergy\tMax Force\tdt\talpha")
		fmt.Fprintln(w, "----\t------\t---------\t--\t-----")
		for _, r := range records {
			fmt.Fprintf(w, "%d\t%.6g\t%.6g\t%.4g\t%.4g\n", r.Step, r.Energy, r.MaxForce, r.Dt, r.Alpha)
		}
		return w.Flush()
	case "csv":
		return gocsv.Marshal(records, out)
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}
	return fmt.Errorf("unknown format %q (want table, csv or json)", format)
}

func printMetrics(out io.Writer, m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(out, "\nmetrics:")
	for _, name := range names {
		fmt.Fprintf(out, "  %s: %.6g\n", name, m[name])
	}
}

func printEnergyPlot(out io.Writer, energies []float64) {
	if len(energies) < 2 {
		return
	}
	graph := asciigraph.Plot(energies,
		asciigraph.Height(10),
		asciigraph.Width(60),
		asciigraph.Caption("energy"),
	)
	fmt.Fprintf(out, "\n%s\n", graph)
}

// reportCheck prints the sorted per-particle squared force differences and
// fails when their sum exceeds tol.
func reportCheck(out io.Writer, dF []float64, tol float64) error {
	sum := potential.SumSquared(dF)
	fmt.Fprintln(out, "\ncross-check (brute force vs grid):")
	if len(dF) > 0 {
		fmt.Fprintf(out, "  particles: %d\n", len(dF))
		fmt.Fprintf(out, "  min dF^2:  %.3e\n", dF[0])
		fmt.Fprintf(out, "  med dF^2:  %.3e\n", dF[len(dF)/2])
		fmt.Fprintf(out, "  max dF^2:  %.3e\n", dF[len(dF)-1])
	}
	fmt.Fprintf(out, "  sum dF^2:  %.3e (tolerance %.1e)\n", sum, tol)
	if sum > tol {
		return fmt.Errorf("force mismatch: sum dF^2 = %.3e exceeds %.1e", sum, tol)
	}
	fmt.Fprintln(out, "  ok")
	return nil
}

func printEnsemble(out io.Writer, results []*sim.Result, seedStart int64) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Seed\tSteps\tInitial Energy\tFinal Energy\tMax Force\tResets\tElapsed")
	for i, r := range results {
		if r == nil {
			continue
		}
		last := sim.Record{}
		if n := len(r.Records); n > 0 {
			last = r.Records[n-1]
		}
		fmt.Fprintf(w, "%d\t%d\t%.6g\t%.6g\t%.6g\t%d\t%v\n",
			seedStart+int64(i), r.StepsTaken, r.InitialEnergy, r.Final.Energy,
			last.MaxForce, r.Final.Resets, r.Elapsed)
	}
	return w.Flush()
}

func printBench(out io.Writer, rows []benchRow) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Strategy\tSteps\tElapsed\tSteps/s\tFinal Energy")
	for _, r := range rows {
		rate := 0.0
		if s := r.elapsed.Seconds(); s > 0 {
			rate = float64(r.steps) / s
		}
		fmt.Fprintf(w, "%s\t%d\t%v\t%.1f\t%.6g\n", r.strategy, r.steps, r.elapsed, rate, r.energy)
	}
	w.Flush()
	if len(rows) == 2 && rows[1].elapsed > 0 {
		fmt.Fprintf(out, "\ngrid speedup: %.2fx\n", rows[0].elapsed.Seconds()/rows[1].elapsed.Seconds())
	}
}
