package autodiff

import (
	"math"

	"github.com/born-ml/stanmath/internal/scalar"
)

var _ scalar.Number[Var] = Var{}

// twoOverSqrtPi is 2/√π, the scale of the error function's derivative.
const twoOverSqrtPi = 2 / math.SqrtPi

// Erf returns the error function of v.   d/dv = 2/√π · e^(-v²)
func (v Var) Erf() Var {
	return unary(v, math.Erf(v.val), twoOverSqrtPi*math.Exp(-v.val*v.val))
}

// Erfc returns the complementary error function.   d/dv = -2/√π · e^(-v²)
func (v Var) Erfc() Var {
	return unary(v, math.Erfc(v.val), -twoOverSqrtPi*math.Exp(-v.val*v.val))
}

// Lgamma returns ln|Γ(v)|.   d/dv = ψ(v)
func (v Var) Lgamma() Var {
	lg, _ := math.Lgamma(v.val)
	return unary(v, lg, scalar.Polygamma(0, v.val))
}

// Polygamma returns ψ⁽ⁿ⁾(v).   d/dv = ψ⁽ⁿ⁺¹⁾(v)
func (v Var) Polygamma(n int) Var {
	return unary(v, scalar.Polygamma(n, v.val), scalar.Polygamma(n+1, v.val))
}
