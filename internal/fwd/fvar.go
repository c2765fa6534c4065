// Package fwd implements forward-mode automatic differentiation with dual
// numbers.
//
// An Fvar[T] carries a value and a directional derivative (tangent), both of
// type T. Every operation applies the dual-number rule eagerly:
//
//	(a, a') op (b, b') = (f(a, b), ∂f/∂a·a' + ∂f/∂b·b')
//
// T is any scalar.Number, and Fvar[T] is itself a scalar.Number, so the
// same rules nest:
//   - Fvar[scalar.Float]: first derivatives along one direction
//   - Fvar[autodiff.Var]: forward over reverse; a reverse sweep of D gives
//     Hessian-vector products
//   - Fvar[Fvar[autodiff.Var]]: third-order mixed derivatives
//
// Pure forward mode never touches a tape. Fvar values are plain structs.
package fwd

import "github.com/born-ml/stanmath/internal/scalar"

var _ scalar.Number[Fvar[scalar.Float]] = Fvar[scalar.Float]{}

// Fvar is a dual number: Val is the value and D the tangent.
type Fvar[T scalar.Number[T]] struct {
	Val T
	D   T
}

// New returns the dual (val, d).
func New[T scalar.Number[T]](val, d T) Fvar[T] {
	return Fvar[T]{Val: val, D: d}
}

// Lift returns (val, 0): a value with a zero tangent.
func Lift[T scalar.Number[T]](val T) Fvar[T] {
	return Fvar[T]{Val: val, D: val.Const(0)}
}

// Seed returns (val, 1): the independent variable of a directional derivative.
func Seed[T scalar.Number[T]](val T) Fvar[T] {
	return Fvar[T]{Val: val, D: val.Const(1)}
}

// Value returns the innermost float64 value.
func (x Fvar[T]) Value() float64 {
	return x.Val.Value()
}

// Const returns (c, 0).
func (x Fvar[T]) Const(c float64) Fvar[T] {
	return Fvar[T]{Val: x.Val.Const(c), D: x.Val.Const(0)}
}

// IsConstant reports whether x has a constant value and a zero constant
// tangent, so dropping it from a sum changes no derivative.
func (x Fvar[T]) IsConstant() bool {
	return scalar.IsConstant(x.Val) && scalar.IsConstant(x.D) && x.D.Value() == 0
}

// Tangent returns the tangent. It exists so nested tangents read naturally:
// x.Tangent().Tangent() for second order.
func (x Fvar[T]) Tangent() T {
	return x.D
}

// Add returns (a + b, a' + b').
func (x Fvar[T]) Add(o Fvar[T]) Fvar[T] {
	return Fvar[T]{Val: x.Val.Add(o.Val), D: x.D.Add(o.D)}
}

// Sub returns (a - b, a' - b').
func (x Fvar[T]) Sub(o Fvar[T]) Fvar[T] {
	return Fvar[T]{Val: x.Val.Sub(o.Val), D: x.D.Sub(o.D)}
}

// Mul returns (ab, a'b + ab').
func (x Fvar[T]) Mul(o Fvar[T]) Fvar[T] {
	return Fvar[T]{
		Val: x.Val.Mul(o.Val),
		D:   x.D.Mul(o.Val).Add(x.Val.Mul(o.D)),
	}
}

// Div returns (a/b, (a'b - ab')/b²).
func (x Fvar[T]) Div(o Fvar[T]) Fvar[T] {
	return Fvar[T]{
		Val: x.Val.Div(o.Val),
		D:   x.D.Mul(o.Val).Sub(x.Val.Mul(o.D)).Div(o.Val.Mul(o.Val)),
	}
}

// Neg returns (-a, -a').
func (x Fvar[T]) Neg() Fvar[T] {
	return Fvar[T]{Val: x.Val.Neg(), D: x.D.Neg()}
}

// AddScalar returns (a + c, a').
func (x Fvar[T]) AddScalar(c float64) Fvar[T] {
	return Fvar[T]{Val: x.Val.AddScalar(c), D: x.D}
}

// MulScalar returns (ac, a'c).
func (x Fvar[T]) MulScalar(c float64) Fvar[T] {
	return Fvar[T]{Val: x.Val.MulScalar(c), D: x.D.MulScalar(c)}
}

// Lifts wraps each element of vals with a zero tangent.
func Lifts[T scalar.Number[T]](vals []T) []Fvar[T] {
	out := make([]Fvar[T], len(vals))
	for i, v := range vals {
		out[i] = Lift(v)
	}
	return out
}

// Directional pairs vals with the tangent direction dir: out[i] = (vals[i], dir[i]).
func Directional[T scalar.Number[T]](vals []T, dir []float64) []Fvar[T] {
	out := make([]Fvar[T], len(vals))
	for i, v := range vals {
		out[i] = Fvar[T]{Val: v, D: v.Const(dir[i])}
	}
	return out
}

// Tangents extracts the tangents of xs.
func Tangents[T scalar.Number[T]](xs []Fvar[T]) []T {
	out := make([]T, len(xs))
	for i, x := range xs {
		out[i] = x.D
	}
	return out
}
