// Package optim implements first-order optimizers over flat parameter
// vectors and a driver that finds the mode of a log density.
//
// This package provides:
//   - Optimizer interface: Base interface for all optimizers
//   - SGD: Gradient descent with momentum
//   - Adam: Adaptive Moment Estimation
//   - Maximize: repeated reverse-mode gradients on one tape until the
//     gradient norm drops below a tolerance
//
// Optimizers minimize: Step moves params against grad. Maximize negates the
// gradient of the log density before each step.
//
// Example usage:
//
//	opt := optim.NewAdam(optim.AdamConfig{LR: 0.05})
//	res, err := optim.Maximize(ctx, logDensity[autodiff.Var], x0, opt, optim.RunConfig{
//	    MaxIters: 2000,
//	    Tol:      1e-8,
//	})
package optim

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownOptimizer is returned by New for an unrecognized name.
var ErrUnknownOptimizer = errors.New("optim: unknown optimizer")

// Optimizer is the base interface for all optimization algorithms.
//
// All optimizers must implement:
//   - Step: Apply one gradient update to params in place
//   - Reset: Clear accumulated state (moments, velocities)
//   - LR: Get the learning rate (for monitoring)
type Optimizer interface {
	// Step applies one update to params given the gradient of the loss.
	//
	// params and grad have the same length on every call between resets.
	Step(params, grad []float64)

	// Reset clears internal state so the optimizer can start a new run.
	Reset()

	// LR returns the learning rate.
	LR() float64
}

// Config is the base configuration for all optimizers.
type Config struct {
	LR float64 // Learning rate
}

// New returns the optimizer called name ("sgd" or "adam") with learning
// rate lr; zero selects the optimizer's default.
func New(name string, lr float64) (Optimizer, error) {
	switch strings.ToLower(name) {
	case "sgd":
		return NewSGD(SGDConfig{LR: lr, Momentum: 0.9}), nil
	case "adam":
		return NewAdam(AdamConfig{LR: lr}), nil
	}
	return nil, fmt.Errorf("%w: %q (want sgd or adam)", ErrUnknownOptimizer, name)
}

// ensure grows buf to n zeroed elements when its length differs.
func ensure(buf []float64, n int) []float64 {
	if len(buf) != n {
		return make([]float64, n)
	}
	return buf
}
