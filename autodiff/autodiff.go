// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides reverse-mode and forward-mode automatic
// differentiation of scalar functions.
//
// Reverse mode records every operation on a Tape and propagates adjoints
// from the output back to the inputs in one sweep. Forward mode carries a
// tangent alongside each value (Fvar) and needs no tape. The two compose:
// Fvar[Var] gives Hessian-vector products and Fvar[Fvar[Var]] third-order
// derivatives.
//
// Example:
//
//	import "github.com/born-ml/stanmath/autodiff"
//
//	func main() {
//	    tape := autodiff.NewTape()
//	    x := tape.NewVar(2.0)
//	    y := tape.NewVar(3.0)
//	    f := x.Mul(y).Add(x.Log())
//
//	    tape.Grad(f)
//	    fmt.Println(x.Adj(), y.Adj()) // 3.5 2
//
//	    tape.RecoverMemory() // x, y and f are now stale
//	}
//
// A Tape is not safe for concurrent use; use one tape per goroutine
// (AcquireTape / ReleaseTape).
package autodiff

import (
	"github.com/born-ml/stanmath/internal/autodiff"
	"github.com/born-ml/stanmath/internal/fwd"
	"github.com/born-ml/stanmath/internal/scalar"
)

// Tape records operations for reverse-mode differentiation.
type Tape = autodiff.Tape

// Var is a handle to a value recorded on a Tape.
type Var = autodiff.Var

// Config controls a tape's memory layout and logging.
type Config = autodiff.Config

// Stats describes a tape's current size.
type Stats = autodiff.Stats

// Chainable is the reverse rule of a custom operation, see Tape.NewCustom.
type Chainable = autodiff.Chainable

// ChainFunc adapts a function to Chainable.
type ChainFunc = autodiff.ChainFunc

// Fvar is a forward-mode dual number over any Number T.
type Fvar[T Number[T]] = fwd.Fvar[T]

// Number is the method set shared by Float, Var and Fvar.
type Number[T any] = scalar.Number[T]

// Float is a float64 that satisfies Number[Float] and carries no derivative.
type Float = scalar.Float

// Errors raised (as panics) or returned by tapes.
var (
	ErrStaleVar      = autodiff.ErrStaleVar
	ErrTapeMismatch  = autodiff.ErrTapeMismatch
	ErrNoNestedScope = autodiff.ErrNoNestedScope
	ErrSeedLength    = autodiff.ErrSeedLength
)

// NewTape creates a tape with the default configuration.
func NewTape() *Tape {
	return autodiff.NewTape()
}

// NewTapeWithConfig creates a tape with the given configuration.
func NewTapeWithConfig(cfg Config) *Tape {
	return autodiff.NewTapeWithConfig(cfg)
}

// DefaultConfig returns the default tape configuration.
func DefaultConfig() Config {
	return autodiff.DefaultConfig()
}

// AcquireTape returns an empty tape from a process-wide pool.
func AcquireTape() *Tape {
	return autodiff.AcquireTape()
}

// ReleaseTape resets t and returns it to the pool.
func ReleaseTape(t *Tape) {
	autodiff.ReleaseTape(t)
}

// Constant returns a tape-less Var holding c.
func Constant(c float64) Var {
	return autodiff.Constant(c)
}

// Sum returns the sum of vs as a single node.
func Sum(vs ...Var) Var {
	return autodiff.Sum(vs...)
}

// ScalarSub returns c - v.
func ScalarSub(c float64, v Var) Var {
	return autodiff.ScalarSub(c, v)
}

// ScalarDiv returns c / v.
func ScalarDiv(c float64, v Var) Var {
	return autodiff.ScalarDiv(c, v)
}

// Vals extracts the values of vs.
func Vals(vs []Var) []float64 {
	return autodiff.Vals(vs)
}

// Adjs extracts the adjoints of vs.
func Adjs(vs []Var) []float64 {
	return autodiff.Adjs(vs)
}

// Floats converts a []float64 into a []Float.
func Floats(xs []float64) []Float {
	return scalar.Floats(xs)
}

// Seed returns the dual (val, 1).
func Seed[T Number[T]](val T) Fvar[T] {
	return fwd.Seed(val)
}

// Lift returns the dual (val, 0).
func Lift[T Number[T]](val T) Fvar[T] {
	return fwd.Lift(val)
}

// NewFvar returns the dual (val, d).
func NewFvar[T Number[T]](val, d T) Fvar[T] {
	return fwd.New(val, d)
}
