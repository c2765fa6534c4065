// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim finds the mode of a log density with first-order
// optimizers driven by reverse-mode gradients.
//
// # Overview
//
// This package contains:
//   - SGD: gradient descent with momentum
//   - Adam: Adaptive Moment Estimation with bias correction
//   - Optimizer interface for custom optimizers
//   - Maximize: gradient ascent on a log density written once over
//     autodiff.Number
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/stanmath/autodiff"
//	    "github.com/born-ml/stanmath/optim"
//	)
//
//	func logDensity[T autodiff.Number[T]](x []T) (T, error) {
//	    d := x[0].AddScalar(-3)
//	    return d.Mul(d).Neg(), nil
//	}
//
//	func main() {
//	    opt := optim.NewAdam(optim.AdamConfig{LR: 0.05})
//	    res, err := optim.Maximize(context.Background(), logDensity[autodiff.Var],
//	        []float64{0}, opt, optim.RunConfig{MaxIters: 2000, Tol: 1e-8})
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(res.X, res.Converged)
//	}
//
// # Optimizers
//
// Optimizers minimize: Step moves params against grad, in place. Maximize
// negates the log density gradient before every step and records each
// evaluation on one tape that is reset between iterations.
//
// SGD:
//
//	opt := optim.NewSGD(optim.SGDConfig{LR: 0.01, Momentum: 0.9})
//
// Adam:
//
//	opt := optim.NewAdam(optim.AdamConfig{
//	    LR:    0.001,
//	    Betas: [2]float64{0.9, 0.999},
//	    Eps:   1e-8,
//	})
//
// By name, as the stanad optimize command does:
//
//	opt, err := optim.New("adam", 0.01)
package optim
