// Package prob implements log probability density functions.
//
// Every density is generic over scalar.Number and takes a propto flag. With
// propto false the full log density is returned. With propto true, summands
// whose operands are all constant are dropped: the result is then only
// defined up to an additive constant, but every derivative is unchanged.
//
// Arguments are validated before any node is recorded; a failing check
// returns a *check.DomainError.
package prob

import (
	"math"

	"github.com/born-ml/stanmath/internal/check"
	"github.com/born-ml/stanmath/internal/mathfn"
	"github.com/born-ml/stanmath/internal/scalar"
)

const (
	logSqrtTwoPi = 0.91893853320467274178 // ln √(2π)
	logPi        = 1.14472988584940017414 // ln π
)

// include reports whether a summand over operands must be computed.
func include[T scalar.Number[T]](propto bool, operands ...T) bool {
	return !propto || !scalar.AllConstant(operands...)
}

// NormalLPDF returns ln N(y | mu, sigma).
func NormalLPDF[T scalar.Number[T]](y, mu, sigma T, propto bool) (T, error) {
	const function = "normal_lpdf"
	if err := check.NotNaN(function, "y", y.Value()); err != nil {
		return y, err
	}
	if err := check.Finite(function, "mu", mu.Value()); err != nil {
		return y, err
	}
	if err := check.Positive(function, "sigma", sigma.Value()); err != nil {
		return y, err
	}

	lp := y.Const(0)
	if !propto {
		lp = lp.AddScalar(-logSqrtTwoPi)
	}
	if include(propto, sigma) {
		lp = lp.Sub(sigma.Log())
	}
	if include(propto, y, mu, sigma) {
		z := y.Sub(mu).Div(sigma)
		lp = lp.Sub(z.Mul(z).MulScalar(0.5))
	}
	return lp, nil
}

// NormalLPDFSlice returns Σ ln N(ys[i] | mu, sigma).
func NormalLPDFSlice[T scalar.Number[T]](ys []T, mu, sigma T, propto bool) (T, error) {
	const function = "normal_lpdf"
	if err := check.AllNotNaN(function, "y", scalar.Values(ys)); err != nil {
		return mu, err
	}
	if err := check.Finite(function, "mu", mu.Value()); err != nil {
		return mu, err
	}
	if err := check.Positive(function, "sigma", sigma.Value()); err != nil {
		return mu, err
	}

	lp := mu.Const(0)
	for _, y := range ys {
		l, err := NormalLPDF(y, mu, sigma, propto)
		if err != nil {
			return lp, err
		}
		lp = lp.Add(l)
	}
	return lp, nil
}

// LognormalLPDF returns ln LogNormal(y | mu, sigma). It is -Inf at y == 0.
func LognormalLPDF[T scalar.Number[T]](y, mu, sigma T, propto bool) (T, error) {
	const function = "lognormal_lpdf"
	if err := check.Nonnegative(function, "y", y.Value()); err != nil {
		return y, err
	}
	if err := check.Finite(function, "mu", mu.Value()); err != nil {
		return y, err
	}
	if err := check.PositiveFinite(function, "sigma", sigma.Value()); err != nil {
		return y, err
	}
	if y.Value() == 0 {
		return y.Const(math.Inf(-1)), nil
	}

	lp := y.Const(0)
	logY := y.Log()
	if !propto {
		lp = lp.AddScalar(-logSqrtTwoPi)
	}
	if include(propto, sigma) {
		lp = lp.Sub(sigma.Log())
	}
	if include(propto, y) {
		lp = lp.Sub(logY)
	}
	if include(propto, y, mu, sigma) {
		z := logY.Sub(mu).Div(sigma)
		lp = lp.Sub(z.Mul(z).MulScalar(0.5))
	}
	return lp, nil
}

// CauchyLPDF returns ln Cauchy(y | mu, sigma).
func CauchyLPDF[T scalar.Number[T]](y, mu, sigma T, propto bool) (T, error) {
	const function = "cauchy_lpdf"
	if err := check.NotNaN(function, "y", y.Value()); err != nil {
		return y, err
	}
	if err := check.Finite(function, "mu", mu.Value()); err != nil {
		return y, err
	}
	if err := check.PositiveFinite(function, "sigma", sigma.Value()); err != nil {
		return y, err
	}

	lp := y.Const(0)
	if !propto {
		lp = lp.AddScalar(-logPi)
	}
	if include(propto, sigma) {
		lp = lp.Sub(sigma.Log())
	}
	if include(propto, y, mu, sigma) {
		z := y.Sub(mu).Div(sigma)
		lp = lp.Sub(z.Mul(z).Log1p())
	}
	return lp, nil
}

// ExponentialLPDF returns ln Exponential(y | beta) = ln β - β·y.
func ExponentialLPDF[T scalar.Number[T]](y, beta T, propto bool) (T, error) {
	const function = "exponential_lpdf"
	if err := check.Nonnegative(function, "y", y.Value()); err != nil {
		return y, err
	}
	if err := check.PositiveFinite(function, "beta", beta.Value()); err != nil {
		return y, err
	}

	lp := y.Const(0)
	if include(propto, beta) {
		lp = lp.Add(beta.Log())
	}
	if include(propto, y, beta) {
		lp = lp.Sub(beta.Mul(y))
	}
	return lp, nil
}

// BernoulliLogitLPMF returns ln Bernoulli(n | InvLogit(alpha)) for n in {0, 1}.
func BernoulliLogitLPMF[T scalar.Number[T]](n int, alpha T, propto bool) (T, error) {
	const function = "bernoulli_logit_lpmf"
	if err := check.Bounded(function, "n", float64(n), 0, 1); err != nil {
		return alpha, err
	}
	if err := check.NotNaN(function, "alpha", alpha.Value()); err != nil {
		return alpha, err
	}
	if !include(propto, alpha) {
		return alpha.Const(0), nil
	}
	if n == 1 {
		return mathfn.LogInvLogit(alpha), nil
	}
	return mathfn.Log1mInvLogit(alpha), nil
}
