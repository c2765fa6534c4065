// Package scalar defines the contract shared by every differentiable scalar.
//
// Three families implement Number:
//   - Float: plain float64 arithmetic, no derivatives
//   - autodiff.Var: reverse-mode nodes recorded on a tape
//   - fwd.Fvar[T]: forward-mode duals over any Number T, including other Fvars
//
// Code written against Number[T] therefore runs unchanged as a value
// computation, a reverse-mode graph build, or a (nested) forward-mode pass.
package scalar

// Number is the method set of a differentiable scalar type T.
//
// Methods never mutate the receiver; each returns a new T.
type Number[T any] interface {
	// Value returns the underlying float64, stripping every derivative level.
	Value() float64

	// Const returns a constant of the receiver's kind holding c.
	// Constants carry no derivative information.
	Const(c float64) T

	Add(o T) T
	Sub(o T) T
	Mul(o T) T
	Div(o T) T
	Neg() T
	AddScalar(c float64) T
	MulScalar(c float64) T

	Log() T
	Exp() T
	Sqrt() T
	Pow(o T) T
	PowScalar(c float64) T
	Sin() T
	Cos() T
	Tan() T
	Asin() T
	Acos() T
	Atan() T
	Atan2(o T) T
	Sinh() T
	Cosh() T
	Tanh() T
	Asinh() T
	Acosh() T
	Atanh() T
	Expm1() T
	Log1p() T
	Erf() T
	Erfc() T
	Abs() T
	Fmod(o T) T
	Floor() T
	Ceil() T
	Lgamma() T

	// Polygamma returns the n-th derivative of the digamma function.
	// Polygamma(0) is digamma.
	Polygamma(n int) T
}

// Less reports whether a < b, comparing values only.
func Less[T Number[T]](a, b T) bool { return a.Value() < b.Value() }

// Greater reports whether a > b, comparing values only.
func Greater[T Number[T]](a, b T) bool { return a.Value() > b.Value() }

// Equal reports whether a == b, comparing values only.
func Equal[T Number[T]](a, b T) bool { return a.Value() == b.Value() }

// IsNaN reports whether the value of x is NaN.
func IsNaN[T Number[T]](x T) bool {
	v := x.Value()
	return v != v
}

// Values extracts the values of xs.
func Values[T Number[T]](xs []T) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = x.Value()
	}
	return out
}

// constanter is implemented by types that can tell whether a value carries
// derivative information.
type constanter interface {
	IsConstant() bool
}

// IsConstant reports whether x contributes nothing to any derivative.
// Plain floats are always constant.
func IsConstant[T Number[T]](x T) bool {
	if c, ok := any(x).(constanter); ok {
		return c.IsConstant()
	}
	return true
}

// AllConstant reports whether every element of xs is constant.
func AllConstant[T Number[T]](xs ...T) bool {
	for _, x := range xs {
		if !IsConstant(x) {
			return false
		}
	}
	return true
}
