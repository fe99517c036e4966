package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/clothsim/internal/analysis"
	"github.com/san-kum/clothsim/internal/sim"
	"github.com/san-kum/clothsim/internal/solver"
)

var sweepSpec string

const benchFrames = 120

func parseSweep(spec string) ([]float64, error) {
	var vals []float64
	for _, f := range strings.Split(spec, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("sweep value %q: %w", f, err)
		}
		vals = append(vals, v)
	}
	return vals, nil
}

func benchDemo(cmd *cobra.Command, args []string) error {
	base, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	n := base.Frames
	if !cmd.Flags().Changed("frames") {
		n = benchFrames
	}
	ctx := context.Background()

	fmt.Printf("benchmarking %s (n=%d, %d frames)\n\n", base.Demo, base.Cloth.N, n)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SOLVER\tITER\tTIME\tFRAMES/SEC\tMAX STRAIN")
	for _, name := range solver.NewRegistry().List() {
		cfg := *base
		cfg.Solver.Name = name
		s, err := registry.Build(&cfg)
		if err != nil {
			return err
		}
		start := time.Now()
		res, err := s.Run(ctx, n, n)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		elapsed := time.Since(start)
		fmt.Fprintf(w, "%s\t%d\t%v\t%.0f\t%.4f\n", name, cfg.Solver.Iterations,
			elapsed.Round(time.Millisecond), float64(res.Frames)/elapsed.Seconds(), res.Metrics["max_strain"])
	}
	w.Flush()

	// convergence of the iterative solvers against the direct step, taken
	// from a cloth that is already in motion
	warm, err := registry.Build(base)
	if err != nil {
		return err
	}
	if _, err := warm.Run(ctx, 30, 30); err != nil {
		return err
	}
	iters := []int{1, 2, 5, 10, 20, 50}
	jac := analysis.Convergence(warm.System, func() solver.Solver { return solver.NewJacobi() }, iters)
	sc := base.SolverConfig()
	cheb := analysis.Convergence(warm.System, func() solver.Solver { return solver.NewChebyshev(sc.Rho, sc.Gamma, sc.Delay) }, iters)

	fmt.Println("\nstep error against direct solve")
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ITER\tJACOBI\tCHEBYSHEV")
	for i, it := range iters {
		fmt.Fprintf(w, "%d\t%.3e\t%.3e\n", it, jac[i], cheb[i])
	}
	w.Flush()

	vals, err := parseSweep(sweepSpec)
	if err != nil || len(vals) == 0 {
		return err
	}
	points, err := analysis.Sweep(ctx, vals, func(k float64) (*sim.Simulation, error) {
		cfg := *base
		cfg.Cloth.Stiffness = k
		return registry.Build(&cfg)
	}, n, "max_strain")
	if err != nil {
		return err
	}

	fmt.Println("\nstiffness sweep")
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STIFFNESS\tMAX STRAIN")
	for _, p := range points {
		fmt.Fprintf(w, "%g\t%.4f\n", p.Param, p.Value)
	}
	return w.Flush()
}
