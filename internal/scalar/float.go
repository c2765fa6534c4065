package scalar

import (
	"math"

	"gonum.org/v1/gonum/mathext"
)

// Float is a float64 that satisfies Number[Float].
type Float float64

// Floats converts a []float64 into a []Float.
func Floats(xs []float64) []Float {
	out := make([]Float, len(xs))
	for i, x := range xs {
		out[i] = Float(x)
	}
	return out
}

func (x Float) Value() float64 { return float64(x) }
func (Float) Const(c float64) Float { return Float(c) }
func (x Float) Add(o Float) Float { return x + o }
func (x Float) Sub(o Float) Float { return x - o }
func (x Float) Mul(o Float) Float { return x * o }
func (x Float) Div(o Float) Float { return x / o }
func (x Float) Neg() Float { return -x }
func (x Float) AddScalar(c float64) Float { return x + Float(c) }
func (x Float) MulScalar(c float64) Float { return x * Float(c) }

func (x Float) Log() Float { return Float(math.Log(float64(x))) }
func (x Float) Exp() Float { return Float(math.Exp(float64(x))) }
func (x Float) Sqrt() Float { return Float(math.Sqrt(float64(x))) }
func (x Float) Pow(o Float) Float { return Float(math.Pow(float64(x), float64(o))) }
func (x Float) PowScalar(c float64) Float { return Float(math.Pow(float64(x), c)) }
func (x Float) Sin() Float { return Float(math.Sin(float64(x))) }
func (x Float) Cos() Float { return Float(math.Cos(float64(x))) }
func (x Float) Tan() Float { return Float(math.Tan(float64(x))) }
func (x Float) Asin() Float { return Float(math.Asin(float64(x))) }
func (x Float) Acos() Float { return Float(math.Acos(float64(x))) }
func (x Float) Atan() Float { return Float(math.Atan(float64(x))) }
func (x Float) Atan2(o Float) Float { return Float(math.Atan2(float64(x), float64(o))) }
func (x Float) Sinh() Float { return Float(math.Sinh(float64(x))) }
func (x Float) Cosh() Float { return Float(math.Cosh(float64(x))) }
func (x Float) Tanh() Float { return Float(math.Tanh(float64(x))) }
func (x Float) Asinh() Float { return Float(math.Asinh(float64(x))) }
func (x Float) Acosh() Float { return Float(math.Acosh(float64(x))) }
func (x Float) Atanh() Float { return Float(math.Atanh(float64(x))) }
func (x Float) Expm1() Float { return Float(math.Expm1(float64(x))) }
func (x Float) Log1p() Float { return Float(math.Log1p(float64(x))) }
func (x Float) Erf() Float { return Float(math.Erf(float64(x))) }
func (x Float) Erfc() Float { return Float(math.Erfc(float64(x))) }
func (x Float) Abs() Float { return Float(math.Abs(float64(x))) }
func (x Float) Fmod(o Float) Float { return Float(math.Mod(float64(x), float64(o))) }
func (x Float) Floor() Float { return Float(math.Floor(float64(x))) }
func (x Float) Ceil() Float { return Float(math.Ceil(float64(x))) }
func (x Float) Polygamma(n int) Float { return Float(Polygamma(n, float64(x))) }

func (x Float) Lgamma() Float {
	v, _ := math.Lgamma(float64(x))
	return Float(v)
}

// Polygamma evaluates the n-th polygamma function at x.
//
// For n >= 1 it uses psi^(n)(x) = (-1)^(n+1) n! zeta(n+1, x), with the
// reflection formula handled by returning NaN at non-positive integers.
func Polygamma(n int, x float64) float64 {
	switch {
	case n < 0 || math.IsNaN(x):
		return math.NaN()
	case n == 0:
		return digamma(x)
	case x <= 0 && x == math.Floor(x):
		return math.NaN()
	}

	if x < 0 {
		// Shift into the positive half line using
		// psi^(n)(x) = psi^(n)(x+1) - (-1)^n n! / x^(n+1).
		fact := factorial(n)
		sign := 1.0
		if n%2 == 1 {
			sign = -1.0
		}
		return Polygamma(n, x+1) - sign*fact/math.Pow(x, float64(n+1))
	}

	sign := -1.0
	if n%2 == 1 {
		sign = 1.0
	}
	return sign * factorial(n) * mathext.Zeta(float64(n+1), x)
}

// digamma evaluates psi(x) to near machine precision: reflection for x < 0,
// the recurrence psi(x) = psi(x+1) - 1/x up to x >= 10, then the asymptotic
// series in 1/x².
func digamma(x float64) float64 {
	switch {
	case math.IsNaN(x) || math.IsInf(x, -1):
		return math.NaN()
	case math.IsInf(x, 1):
		return x
	case x <= 0 && x == math.Floor(x):
		return math.NaN()
	case x < 0:
		return digamma(1-x) - math.Pi/math.Tan(math.Pi*x)
	}

	shift := 0.0
	for x < 10 {
		shift += 1 / x
		x++
	}
	z := 1 / (x * x)
	series := z * (1.0/12 - z*(1.0/120-z*(1.0/252-z*(1.0/240-z*(1.0/132-z*(691.0/32760-z/12))))))
	return math.Log(x) - 0.5/x - series - shift
}

func factorial(n int) float64 {
	f := 1.0
	for i := 2; i <= n; i++ {
		f *= float64(i)
	}
	return f
}
