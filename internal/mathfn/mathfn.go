// Package mathfn provides elementary functions composed from the primitive
// operations of scalar.Number.
//
// Each function is written once and works for scalar.Float, autodiff.Var and
// fwd.Fvar of either; derivatives follow from the primitives' rules. The
// formulations are chosen for numerical stability (log-sum-exp shifting,
// log1p/expm1 branches) since the same code is also the value computation.
package mathfn

import (
	"math"

	"github.com/born-ml/stanmath/internal/scalar"
)

// Square returns x².
func Square[T scalar.Number[T]](x T) T {
	return x.Mul(x)
}

// Inv returns 1/x.
func Inv[T scalar.Number[T]](x T) T {
	return x.Const(1).Div(x)
}

// InvSqrt returns 1/√x.
func InvSqrt[T scalar.Number[T]](x T) T {
	return Inv(x.Sqrt())
}

// InvSquare returns 1/x².
func InvSquare[T scalar.Number[T]](x T) T {
	return Inv(Square(x))
}

// Cbrt returns the real cube root of x.
func Cbrt[T scalar.Number[T]](x T) T {
	if x.Value() < 0 {
		return x.Neg().PowScalar(1.0 / 3).Neg()
	}
	return x.PowScalar(1.0 / 3)
}

// Log2 returns log₂ x.
func Log2[T scalar.Number[T]](x T) T {
	return x.Log().MulScalar(1 / math.Ln2)
}

// Log10 returns log₁₀ x.
func Log10[T scalar.Number[T]](x T) T {
	return x.Log().MulScalar(1 / math.Ln10)
}

// Exp2 returns 2^x.
func Exp2[T scalar.Number[T]](x T) T {
	return x.MulScalar(math.Ln2).Exp()
}

// Hypot returns √(x² + y²) without undue overflow.
func Hypot[T scalar.Number[T]](x, y T) T {
	ax, ay := x.Abs(), y.Abs()
	if ax.Value() < ay.Value() {
		ax, ay = ay, ax
	}
	if ax.Value() == 0 {
		return ax
	}
	r := ay.Div(ax)
	return ax.Mul(Square(r).AddScalar(1).Sqrt())
}

// Fmax returns the larger of x and y. If one is NaN the other is returned.
func Fmax[T scalar.Number[T]](x, y T) T {
	switch {
	case scalar.IsNaN(x):
		return y
	case scalar.IsNaN(y):
		return x
	case x.Value() >= y.Value():
		return x
	}
	return y
}

// Fmin returns the smaller of x and y. If one is NaN the other is returned.
func Fmin[T scalar.Number[T]](x, y T) T {
	switch {
	case scalar.IsNaN(x):
		return y
	case scalar.IsNaN(y):
		return x
	case x.Value() <= y.Value():
		return x
	}
	return y
}

// Fdim returns max(x - y, 0).
func Fdim[T scalar.Number[T]](x, y T) T {
	if x.Value() <= y.Value() {
		return x.Const(0)
	}
	return x.Sub(y)
}

// Step returns 1 if x >= 0 and 0 otherwise, as a constant.
func Step[T scalar.Number[T]](x T) T {
	if x.Value() < 0 {
		return x.Const(0)
	}
	return x.Const(1)
}

// Logit returns ln(u / (1 - u)).
func Logit[T scalar.Number[T]](u T) T {
	return u.Log().Sub(u.Neg().Log1p())
}

// InvLogit returns 1 / (1 + e^-x), evaluated without overflow for large |x|.
func InvLogit[T scalar.Number[T]](x T) T {
	if x.Value() < 0 {
		e := x.Exp()
		return e.Div(e.AddScalar(1))
	}
	return Inv(x.Neg().Exp().AddScalar(1))
}

// LogInvLogit returns ln(InvLogit(x)) = -Log1pExp(-x).
func LogInvLogit[T scalar.Number[T]](x T) T {
	return Log1pExp(x.Neg()).Neg()
}

// Log1mInvLogit returns ln(1 - InvLogit(x)) = -Log1pExp(x).
func Log1mInvLogit[T scalar.Number[T]](x T) T {
	return Log1pExp(x).Neg()
}

// Log1pExp returns ln(1 + e^x).
func Log1pExp[T scalar.Number[T]](x T) T {
	if x.Value() > 0 {
		return x.Add(x.Neg().Exp().Log1p())
	}
	return x.Exp().Log1p()
}

// Log1mExp returns ln(1 - e^x) for x < 0, NaN for x >= 0.
func Log1mExp[T scalar.Number[T]](x T) T {
	switch {
	case x.Value() >= 0:
		return x.Const(math.NaN())
	case x.Value() > -math.Ln2:
		return x.Expm1().Neg().Log()
	}
	return x.Exp().Neg().Log1p()
}

// Log1m returns ln(1 - x).
func Log1m[T scalar.Number[T]](x T) T {
	return x.Neg().Log1p()
}

// LogSumExp returns ln(e^a + e^b), shifted by max(a, b).
func LogSumExp[T scalar.Number[T]](a, b T) T {
	if math.IsInf(a.Value(), -1) {
		return b
	}
	if math.IsInf(b.Value(), -1) {
		return a
	}
	if a.Value() > b.Value() {
		return a.Add(Log1pExp(b.Sub(a)))
	}
	return b.Add(Log1pExp(a.Sub(b)))
}

// LogSumExpSlice returns ln Σ e^xs[i]. An empty slice gives -Inf.
func LogSumExpSlice[T scalar.Number[T]](xs []T) T {
	var zero T
	if len(xs) == 0 {
		return zero.Const(math.Inf(-1))
	}
	hi := xs[0]
	for _, x := range xs[1:] {
		if x.Value() > hi.Value() {
			hi = x
		}
	}
	if math.IsInf(hi.Value(), 0) {
		return hi
	}
	acc := hi.Const(0)
	for _, x := range xs {
		acc = acc.Add(x.Sub(hi).Exp())
	}
	return hi.Add(acc.Log())
}

// LogDiffExp returns ln(e^a - e^b) for a > b.
func LogDiffExp[T scalar.Number[T]](a, b T) T {
	if math.IsInf(b.Value(), -1) {
		return a
	}
	return a.Add(Log1mExp(b.Sub(a)))
}

// MultiplyLog returns a·ln(b), defined as 0 when a and b are both 0.
func MultiplyLog[T scalar.Number[T]](a, b T) T {
	if a.Value() == 0 && b.Value() == 0 {
		return a.Const(0)
	}
	return a.Mul(b.Log())
}

// LogFallingFactorial returns ln Γ(x+1) - ln Γ(x-n+1).
func LogFallingFactorial[T scalar.Number[T]](x, n T) T {
	return x.AddScalar(1).Lgamma().Sub(x.Sub(n).AddScalar(1).Lgamma())
}

// Lbeta returns ln B(a, b) = ln Γ(a) + ln Γ(b) - ln Γ(a+b).
func Lbeta[T scalar.Number[T]](a, b T) T {
	return a.Lgamma().Add(b.Lgamma()).Sub(a.Add(b).Lgamma())
}

// Digamma returns ψ(x).
func Digamma[T scalar.Number[T]](x T) T {
	return x.Polygamma(0)
}

// Trigamma returns ψ'(x).
func Trigamma[T scalar.Number[T]](x T) T {
	return x.Polygamma(1)
}

// Phi returns the standard normal CDF Φ(x).
func Phi[T scalar.Number[T]](x T) T {
	return x.MulScalar(-1 / math.Sqrt2).Erfc().MulScalar(0.5)
}

// Sum adds xs left to right. An empty slice gives a zero of T.
func Sum[T scalar.Number[T]](xs []T) T {
	var acc T
	if len(xs) == 0 {
		return acc.Const(0)
	}
	acc = xs[0]
	for _, x := range xs[1:] {
		acc = acc.Add(x)
	}
	return acc
}
