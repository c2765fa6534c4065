package cmd

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/born-ml/stanmath/internal/autodiff"
	"github.com/born-ml/stanmath/internal/functional"
)

func newBenchCommand(a *app) *cobra.Command {
	var (
		model  string
		cycles int
		points int
		seed   uint64
	)
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Repeat gradient evaluations on one tape and across workers",
		Long: `Runs --cycles gradient evaluations on a single tape, resetting it after
each one, and reports the tape's arena usage: once warm, the slab count
stays constant. Then evaluates --points jittered points in parallel with
one tape per worker.

Examples:
  stanad bench --model logistic --cycles 10000 --points 256`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, x, err := modelAt(model, nil)
			if err != nil {
				return err
			}
			if cycles < 1 {
				return fmt.Errorf("--cycles must be >= 1, got %d", cycles)
			}
			out := cmd.OutOrStdout()
			ctx := cmd.Context()

			tape := autodiff.NewTapeWithConfig(a.cfg.TapeOptions(a.logger))
			var first autodiff.Stats
			start := time.Now()
			for i := 0; i < cycles; i++ {
				if _, _, err := functional.GradientOn(tape, m.Var, x); err != nil {
					return err
				}
				if i == 0 {
					first = tape.Stats()
				}
			}
			elapsed := time.Since(start)
			last := tape.Stats()
			tape.LogStats(ctx, "bench tape after reset")

			fmt.Fprintf(out, "model:          %s\n", m.Name)
			fmt.Fprintf(out, "cycles:         %d in %v (%v/gradient)\n", cycles, elapsed, elapsed/time.Duration(cycles))
			fmt.Fprintf(out, "node capacity:  %d -> %d\n", first.Capacity, last.Capacity)
			fmt.Fprintf(out, "partial slabs:  %d -> %d (%d reserved)\n", first.Partials.Slabs, last.Partials.Slabs, last.Partials.Reserved)
			fmt.Fprintf(out, "index slabs:    %d -> %d (%d reserved)\n", first.Indices.Slabs, last.Indices.Slabs, last.Indices.Reserved)

			if points > 0 {
				xs := jitterPoints(x, points, seed)
				pcfg := a.cfg.ParallelOptions()
				start = time.Now()
				if _, _, err := functional.ParallelGradients(ctx, m.Var, xs, pcfg); err != nil {
					return err
				}
				fmt.Fprintf(out, "parallel:       %d points on %d workers in %v\n", points, pcfg.Workers(points), time.Since(start))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&model, "model", "rosenbrock", "model name (see stanad models)")
	cmd.Flags().IntVar(&cycles, "cycles", 1000, "sequential evaluations on one tape")
	cmd.Flags().IntVar(&points, "points", 0, "points to evaluate in parallel (0 skips)")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "seed for the jittered points")
	return cmd
}

// jitterPoints returns n copies of x with independent normal(0, 0.1) noise
// added to every coordinate, reproducible for a given seed.
func jitterPoints(x []float64, n int, seed uint64) [][]float64 {
	jitter := distuv.Normal{Mu: 0, Sigma: 0.1, Src: rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)}
	xs := make([][]float64, n)
	for i := range xs {
		xs[i] = make([]float64, len(x))
		for j := range x {
			xs[i][j] = x[j] + jitter.Rand()
		}
	}
	return xs
}
