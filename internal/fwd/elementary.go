package fwd

import (
	"math"

	"github.com/born-ml/stanmath/internal/scalar"
)

// twoOverSqrtPi is 2/√π.
const twoOverSqrtPi = 2 / math.SqrtPi

// Log returns (ln a, a'/a).
func (x Fvar[T]) Log() Fvar[T] {
	return Fvar[T]{Val: x.Val.Log(), D: x.D.Div(x.Val)}
}

// Exp returns (e^a, a'e^a).
func (x Fvar[T]) Exp() Fvar[T] {
	e := x.Val.Exp()
	return Fvar[T]{Val: e, D: x.D.Mul(e)}
}

// Sqrt returns (√a, a'/(2√a)).
func (x Fvar[T]) Sqrt() Fvar[T] {
	s := x.Val.Sqrt()
	return Fvar[T]{Val: s, D: x.D.Div(s.MulScalar(2))}
}

// Pow returns (a^b, a'·b·a^(b-1) + b'·ln(a)·a^b).
// At a == 0 the tangent is 0, matching the reverse-mode rule. PowScalar
// keeps a'·c·a^(c-1) at a == 0.
func (x Fvar[T]) Pow(o Fvar[T]) Fvar[T] {
	p := x.Val.Pow(o.Val)
	if x.Val.Value() == 0 {
		return Fvar[T]{Val: p, D: x.Val.Const(0)}
	}
	da := x.D.Mul(o.Val).Mul(x.Val.Pow(o.Val.AddScalar(-1)))
	db := o.D.Mul(x.Val.Log()).Mul(p)
	return Fvar[T]{Val: p, D: da.Add(db)}
}

// PowScalar returns (a^c, a'·c·a^(c-1)).
func (x Fvar[T]) PowScalar(c float64) Fvar[T] {
	p := x.Val.PowScalar(c)
	if c == 0 {
		return Fvar[T]{Val: p, D: x.Val.Const(0)}
	}
	return Fvar[T]{Val: p, D: x.D.Mul(x.Val.PowScalar(c - 1)).MulScalar(c)}
}

// Sin returns (sin a, a'cos a).
func (x Fvar[T]) Sin() Fvar[T] {
	return Fvar[T]{Val: x.Val.Sin(), D: x.D.Mul(x.Val.Cos())}
}

// Cos returns (cos a, -a'sin a).
func (x Fvar[T]) Cos() Fvar[T] {
	return Fvar[T]{Val: x.Val.Cos(), D: x.D.Mul(x.Val.Sin()).Neg()}
}

// Tan returns (tan a, a'(1 + tan²a)).
func (x Fvar[T]) Tan() Fvar[T] {
	t := x.Val.Tan()
	return Fvar[T]{Val: t, D: x.D.Mul(t.Mul(t).AddScalar(1))}
}

// Asin returns (asin a, a'/√(1-a²)).
func (x Fvar[T]) Asin() Fvar[T] {
	return Fvar[T]{Val: x.Val.Asin(), D: x.D.Div(oneMinusSquare(x.Val).Sqrt())}
}

// Acos returns (acos a, -a'/√(1-a²)).
func (x Fvar[T]) Acos() Fvar[T] {
	return Fvar[T]{Val: x.Val.Acos(), D: x.D.Div(oneMinusSquare(x.Val).Sqrt()).Neg()}
}

// Atan returns (atan a, a'/(1+a²)).
func (x Fvar[T]) Atan() Fvar[T] {
	return Fvar[T]{Val: x.Val.Atan(), D: x.D.Div(x.Val.Mul(x.Val).AddScalar(1))}
}

// Atan2 returns (atan2(a, b), (a'b - ab')/(a²+b²)).
func (x Fvar[T]) Atan2(o Fvar[T]) Fvar[T] {
	r := x.Val.Mul(x.Val).Add(o.Val.Mul(o.Val))
	return Fvar[T]{
		Val: x.Val.Atan2(o.Val),
		D:   x.D.Mul(o.Val).Sub(x.Val.Mul(o.D)).Div(r),
	}
}

// Sinh returns (sinh a, a'cosh a).
func (x Fvar[T]) Sinh() Fvar[T] {
	return Fvar[T]{Val: x.Val.Sinh(), D: x.D.Mul(x.Val.Cosh())}
}

// Cosh returns (cosh a, a'sinh a).
func (x Fvar[T]) Cosh() Fvar[T] {
	return Fvar[T]{Val: x.Val.Cosh(), D: x.D.Mul(x.Val.Sinh())}
}

// Tanh returns (tanh a, a'(1 - tanh²a)).
func (x Fvar[T]) Tanh() Fvar[T] {
	t := x.Val.Tanh()
	return Fvar[T]{Val: t, D: x.D.Mul(oneMinusSquare(t))}
}

// Asinh returns (asinh a, a'/√(a²+1)).
func (x Fvar[T]) Asinh() Fvar[T] {
	return Fvar[T]{Val: x.Val.Asinh(), D: x.D.Div(x.Val.Mul(x.Val).AddScalar(1).Sqrt())}
}

// Acosh returns (acosh a, a'/√(a²-1)).
func (x Fvar[T]) Acosh() Fvar[T] {
	return Fvar[T]{Val: x.Val.Acosh(), D: x.D.Div(x.Val.Mul(x.Val).AddScalar(-1).Sqrt())}
}

// Atanh returns (atanh a, a'/(1-a²)).
func (x Fvar[T]) Atanh() Fvar[T] {
	return Fvar[T]{Val: x.Val.Atanh(), D: x.D.Div(oneMinusSquare(x.Val))}
}

// Expm1 returns (e^a - 1, a'e^a).
func (x Fvar[T]) Expm1() Fvar[T] {
	e := x.Val.Expm1()
	return Fvar[T]{Val: e, D: x.D.Mul(e.AddScalar(1))}
}

// Log1p returns (ln(1+a), a'/(1+a)).
func (x Fvar[T]) Log1p() Fvar[T] {
	return Fvar[T]{Val: x.Val.Log1p(), D: x.D.Div(x.Val.AddScalar(1))}
}

// Erf returns (erf a, a'·2/√π·e^(-a²)).
func (x Fvar[T]) Erf() Fvar[T] {
	g := x.Val.Mul(x.Val).Neg().Exp().MulScalar(twoOverSqrtPi)
	return Fvar[T]{Val: x.Val.Erf(), D: x.D.Mul(g)}
}

// Erfc returns (erfc a, -a'·2/√π·e^(-a²)).
func (x Fvar[T]) Erfc() Fvar[T] {
	g := x.Val.Mul(x.Val).Neg().Exp().MulScalar(-twoOverSqrtPi)
	return Fvar[T]{Val: x.Val.Erfc(), D: x.D.Mul(g)}
}

// Abs returns (|a|, sign(a)·a'), with a zero tangent at 0 and NaN at NaN.
func (x Fvar[T]) Abs() Fvar[T] {
	v := x.Val.Value()
	switch {
	case v > 0:
		return x
	case v < 0:
		return x.Neg()
	case math.IsNaN(v):
		return Fvar[T]{Val: x.Val.Abs(), D: x.Val.Const(math.NaN())}
	}
	return Fvar[T]{Val: x.Val.Abs(), D: x.Val.Const(0)}
}

// Fmod returns (fmod(a, b), a' - b'·trunc(a/b)).
func (x Fvar[T]) Fmod(o Fvar[T]) Fvar[T] {
	q := math.Trunc(x.Val.Value() / o.Val.Value())
	return Fvar[T]{Val: x.Val.Fmod(o.Val), D: x.D.Sub(o.D.MulScalar(q))}
}

// Floor returns (⌊a⌋, 0).
func (x Fvar[T]) Floor() Fvar[T] {
	return Fvar[T]{Val: x.Val.Floor(), D: x.Val.Const(stepTangent(x.Val.Value()))}
}

// Ceil returns (⌈a⌉, 0).
func (x Fvar[T]) Ceil() Fvar[T] {
	return Fvar[T]{Val: x.Val.Ceil(), D: x.Val.Const(stepTangent(x.Val.Value()))}
}

// Lgamma returns (ln|Γ(a)|, a'ψ(a)).
func (x Fvar[T]) Lgamma() Fvar[T] {
	return Fvar[T]{Val: x.Val.Lgamma(), D: x.D.Mul(x.Val.Polygamma(0))}
}

// Polygamma returns (ψ⁽ⁿ⁾(a), a'ψ⁽ⁿ⁺¹⁾(a)).
func (x Fvar[T]) Polygamma(n int) Fvar[T] {
	return Fvar[T]{Val: x.Val.Polygamma(n), D: x.D.Mul(x.Val.Polygamma(n + 1))}
}

func oneMinusSquare[T scalar.Number[T]](a T) T {
	return a.Mul(a).Neg().AddScalar(1)
}

func stepTangent(v float64) float64 {
	if math.IsNaN(v) {
		return math.NaN()
	}
	return 0
}
