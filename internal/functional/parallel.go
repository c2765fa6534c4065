package functional

import (
	"context"
	"fmt"

	"github.com/born-ml/stanmath/internal/autodiff"
	"github.com/born-ml/stanmath/internal/parallel"
)

// ParallelGradients evaluates f and its gradient at every point of xs.
//
// Points are split across cfg.Workers(len(xs)) goroutines, each holding its
// own pooled tape and resetting it after every point. The first error stops
// the remaining points and is returned with the index of the failing point.
func ParallelGradients(ctx context.Context, f Func[autodiff.Var], xs [][]float64, cfg parallel.Config) (fxs []float64, grads [][]float64, err error) {
	tapes := make([]*autodiff.Tape, cfg.Workers(len(xs)))
	for i := range tapes {
		tapes[i] = autodiff.AcquireTape()
	}
	defer func() {
		for _, t := range tapes {
			autodiff.ReleaseTape(t)
		}
	}()

	fxs = make([]float64, len(xs))
	grads = make([][]float64, len(xs))
	err = parallel.ForWorkers(ctx, len(xs), cfg, func(w, i int) error {
		fx, g, err := GradientOn(tapes[w], f, xs[i])
		if err != nil {
			return fmt.Errorf("point %d: %w", i, err)
		}
		fxs[i], grads[i] = fx, g
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return fxs, grads, nil
}
