package optim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/stanmath/internal/autodiff"
	"github.com/born-ml/stanmath/internal/functional"
)

// ErrNonFinite is returned when the log density or its gradient stops being
// finite during a run.
var ErrNonFinite = errors.New("optim: non-finite log density or gradient")

// RunConfig controls Maximize.
type RunConfig struct {
	MaxIters int             // Iteration limit (default: 1000).
	Tol      float64         // Converged once ‖∇f‖₂ < Tol (default: 1e-8).
	Tape     autodiff.Config // Configuration of the tape reused across iterations.
	Logger   *slog.Logger    // Receives progress at debug level. Nil discards.
	LogEvery int             // Iterations between progress lines; 0 disables them.
}

// Result is the outcome of Maximize.
type Result struct {
	X         []float64 // Final point.
	F         float64   // Log density at X.
	Grad      []float64 // Gradient at X.
	Iters     int       // Optimizer steps taken.
	Converged bool      // Whether the gradient norm reached Tol.
}

// Maximize climbs f from x0 with opt until the gradient norm falls below
// cfg.Tol or cfg.MaxIters steps have been taken. Running out of iterations
// is not an error: the result reports Converged false.
//
// Every iteration records f on the same tape and resets it afterwards, so
// memory use stays flat however many iterations run.
func Maximize(ctx context.Context, f functional.Func[autodiff.Var], x0 []float64, opt Optimizer, cfg RunConfig) (Result, error) {
	if cfg.MaxIters <= 0 {
		cfg.MaxIters = 1000
	}
	if cfg.Tol <= 0 {
		cfg.Tol = 1e-8
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	opt.Reset()
	tape := autodiff.NewTapeWithConfig(cfg.Tape)
	x := slices.Clone(x0)
	step := make([]float64, len(x))

	for iter := 0; ; iter++ {
		if err := ctx.Err(); err != nil {
			return Result{X: x, Iters: iter}, err
		}

		fx, grad, err := functional.GradientOn(tape, f, x)
		if err != nil {
			return Result{X: x, Iters: iter}, fmt.Errorf("iteration %d: %w", iter, err)
		}
		if !finite(fx) || !allFinite(grad) {
			return Result{X: x, F: fx, Grad: grad, Iters: iter}, fmt.Errorf("%w at iteration %d (x = %v)", ErrNonFinite, iter, x)
		}

		norm := floats.Norm(grad, 2)
		if cfg.LogEvery > 0 && iter%cfg.LogEvery == 0 {
			logger.DebugContext(ctx, "optimizer progress", "iter", iter, "log_density", fx, "grad_norm", norm)
		}

		res := Result{X: x, F: fx, Grad: grad, Iters: iter}
		if norm < cfg.Tol {
			res.Converged = true
			return res, nil
		}
		if iter == cfg.MaxIters {
			logger.DebugContext(ctx, "optimizer stopped before convergence", "iters", iter, "grad_norm", norm)
			return res, nil
		}

		floats.ScaleTo(step, -1, grad)
		opt.Step(x, step)
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func allFinite(vs []float64) bool {
	for _, v := range vs {
		if !finite(v) {
			return false
		}
	}
	return true
}
