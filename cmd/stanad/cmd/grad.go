package cmd

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/stanmath/internal/autodiff"
	"github.com/born-ml/stanmath/internal/functional"
)

func newGradCommand(a *app) *cobra.Command {
	var (
		model string
		at    []float64
		check bool
	)
	cmd := &cobra.Command{
		Use:   "grad",
		Short: "Evaluate a log density and its gradient",
		Long: `Evaluates a built-in log density and its gradient with one reverse sweep.

Examples:
  stanad grad --model rosenbrock --at 1,1
  stanad grad --model mvn --check`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, x, err := modelAt(model, at)
			if err != nil {
				return err
			}

			tape := autodiff.NewTapeWithConfig(a.cfg.TapeOptions(a.logger))
			fx, grad, err := functional.GradientOn(tape, m.Var, x)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "model:    %s\n", m.Name)
			fmt.Fprintf(out, "at:       %v\n", x)
			fmt.Fprintf(out, "value:    %.12g\n", fx)
			fmt.Fprintf(out, "gradient: %v\n", mat.Formatted(mat.NewVecDense(len(grad), grad).T()))
			fmt.Fprintf(out, "norm:     %.6g\n", floats.Norm(grad, 2))

			if check {
				numeric := functional.FiniteDiffGradient(functional.Values(m.Float), x, 0)
				fmt.Fprintf(out, "max |grad - finite diff|: %.3g\n", floats.Distance(grad, numeric, math.Inf(1)))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&model, "model", "rosenbrock", "model name (see stanad models)")
	cmd.Flags().Float64SliceVar(&at, "at", nil, "evaluation point, comma separated (default: model's initial point)")
	cmd.Flags().BoolVar(&check, "check", false, "compare against central finite differences")
	return cmd
}

func newHessianCommand(a *app) *cobra.Command {
	var (
		model string
		at    []float64
	)
	cmd := &cobra.Command{
		Use:   "hessian",
		Short: "Evaluate a log density, its gradient and Hessian",
		Long: `Evaluates the Hessian by forward over reverse: one recording and
reverse sweep per parameter.

Examples:
  stanad hessian --model funnel --at 0,1,-1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, x, err := modelAt(model, at)
			if err != nil {
				return err
			}

			fx, grad, hess, err := functional.Hessian(m.Fvar, x)
			if err != nil {
				return err
			}
			a.logger.Debug("hessian evaluated", "model", m.Name, "dim", len(x))

			n := len(x)
			h := mat.NewDense(n, n, nil)
			for i := range hess {
				h.SetRow(i, hess[i])
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "model:    %s\n", m.Name)
			fmt.Fprintf(out, "value:    %.12g\n", fx)
			fmt.Fprintf(out, "gradient: %v\n", grad)
			fmt.Fprintf(out, "hessian:\n%v\n", mat.Formatted(h, mat.Prefix("")))
			return nil
		},
	}
	cmd.Flags().StringVar(&model, "model", "rosenbrock", "model name (see stanad models)")
	cmd.Flags().Float64SliceVar(&at, "at", nil, "evaluation point, comma separated (default: model's initial point)")
	return cmd
}
