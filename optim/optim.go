// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"context"

	"github.com/born-ml/stanmath/internal/autodiff"
	"github.com/born-ml/stanmath/internal/functional"
	"github.com/born-ml/stanmath/internal/optim"
)

// Optimizer interface defines the common interface for all optimizers.
type Optimizer = optim.Optimizer

// Config represents the base configuration for optimizers.
type Config = optim.Config

// ErrUnknownOptimizer is returned by New for an unrecognized name.
var ErrUnknownOptimizer = optim.ErrUnknownOptimizer

// ErrNonFinite is returned by Maximize when the log density or its
// gradient stops being finite.
var ErrNonFinite = optim.ErrNonFinite

// New returns the optimizer called name ("sgd" or "adam").
func New(name string, lr float64) (Optimizer, error) {
	return optim.New(name, lr)
}

// SGD (Stochastic Gradient Descent)

// SGD represents the SGD optimizer with optional momentum.
type SGD = optim.SGD

// SGDConfig contains configuration for SGD optimizer.
type SGDConfig = optim.SGDConfig

// NewSGD creates a new SGD optimizer.
func NewSGD(config SGDConfig) *SGD {
	return optim.NewSGD(config)
}

// Adam (Adaptive Moment Estimation)

// Adam represents the Adam optimizer.
type Adam = optim.Adam

// AdamConfig contains configuration for Adam optimizer.
type AdamConfig = optim.AdamConfig

// NewAdam creates a new Adam optimizer with bias correction.
func NewAdam(config AdamConfig) *Adam {
	return optim.NewAdam(config)
}

// Mode finding

// RunConfig bounds a Maximize run.
type RunConfig = optim.RunConfig

// Result is the outcome of a Maximize run.
type Result = optim.Result

// Maximize climbs f from x0 with opt until the gradient norm falls below
// cfg.Tol or cfg.MaxIters steps have been taken.
func Maximize(ctx context.Context, f functional.Func[autodiff.Var], x0 []float64, opt Optimizer, cfg RunConfig) (Result, error) {
	return optim.Maximize(ctx, f, x0, opt, cfg)
}
