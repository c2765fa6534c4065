// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package functional computes gradients, Jacobians and Hessians of whole
// functions without exposing the tape.
//
// Write the function once against autodiff.Number and instantiate it with
// the scalar type each driver needs:
//
//	func logDensity[T autodiff.Number[T]](x []T) (T, error) { ... }
//
//	fx, grad, err := functional.Gradient(logDensity[autodiff.Var], x)
//	fx, grad, hess, err := functional.Hessian(logDensity[autodiff.Fvar[autodiff.Var]], x)
package functional

import (
	"context"

	"github.com/born-ml/stanmath/autodiff"
	"github.com/born-ml/stanmath/internal/functional"
	"github.com/born-ml/stanmath/internal/parallel"
)

// Func is a scalar function of a vector.
type Func[T autodiff.Number[T]] = functional.Func[T]

// VectorFunc is a vector function of a vector.
type VectorFunc[T autodiff.Number[T]] = functional.VectorFunc[T]

// ParallelConfig controls how ParallelGradients splits work across goroutines.
type ParallelConfig = parallel.Config

// ErrLength is returned when a direction vector and the point differ in length.
var ErrLength = functional.ErrLength

// DefaultParallelConfig returns one worker per CPU.
func DefaultParallelConfig() ParallelConfig {
	return parallel.DefaultConfig()
}

// Gradient returns f(x) and ∇f(x) by one reverse sweep.
func Gradient(f Func[autodiff.Var], x []float64) (float64, []float64, error) {
	return functional.Gradient(f, x)
}

// GradientOn is Gradient on a caller-supplied tape, reset before returning.
func GradientOn(tape *autodiff.Tape, f Func[autodiff.Var], x []float64) (float64, []float64, error) {
	return functional.GradientOn(tape, f, x)
}

// Jacobian returns f(x) and J[i][j] = ∂f_i/∂x_j.
func Jacobian(f VectorFunc[autodiff.Var], x []float64) ([]float64, [][]float64, error) {
	return functional.Jacobian(f, x)
}

// Derivative returns f(x) and f'(x) by forward mode.
func Derivative(f func(autodiff.Fvar[autodiff.Float]) (autodiff.Fvar[autodiff.Float], error), x float64) (float64, float64, error) {
	return functional.Derivative(f, x)
}

// GradientDotVector returns f(x) and ∇f(x)·v by one forward pass.
func GradientDotVector(f Func[autodiff.Fvar[autodiff.Float]], x, v []float64) (float64, float64, error) {
	return functional.GradientDotVector(f, x, v)
}

// HessianTimesVector returns f(x) and H(x)·v by forward over reverse.
func HessianTimesVector(f Func[autodiff.Fvar[autodiff.Var]], x, v []float64) (float64, []float64, error) {
	return functional.HessianTimesVector(f, x, v)
}

// Hessian returns f(x), ∇f(x) and the Hessian.
func Hessian(f Func[autodiff.Fvar[autodiff.Var]], x []float64) (float64, []float64, [][]float64, error) {
	return functional.Hessian(f, x)
}

// FiniteDiffGradient approximates ∇f(x) by central differences with step h.
func FiniteDiffGradient(f func(x []float64) float64, x []float64, h float64) []float64 {
	return functional.FiniteDiffGradient(f, x, h)
}

// ParallelGradients evaluates f and ∇f at every point of xs, one tape per worker.
func ParallelGradients(ctx context.Context, f Func[autodiff.Var], xs [][]float64, cfg ParallelConfig) ([]float64, [][]float64, error) {
	return functional.ParallelGradients(ctx, f, xs, cfg)
}
