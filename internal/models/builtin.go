package models

import (
	"github.com/born-ml/stanmath/internal/autodiff"
	"github.com/born-ml/stanmath/internal/fwd"
	"github.com/born-ml/stanmath/internal/mathfn"
	"github.com/born-ml/stanmath/internal/matrix"
	"github.com/born-ml/stanmath/internal/prob"
	"github.com/born-ml/stanmath/internal/scalar"
)

func init() {
	register(Model{
		Name:        "rosenbrock",
		Description: "negated Rosenbrock banana function, 2 parameters",
		Init:        []float64{-1.2, 1},
		Float:       Rosenbrock[scalar.Float],
		Var:         Rosenbrock[autodiff.Var],
		Fvar:        Rosenbrock[fwd.Fvar[autodiff.Var]],
	})
	register(Model{
		Name:        "normal",
		Description: "normal likelihood with unknown mu and log sigma",
		Init:        []float64{0, 0},
		Float:       Normal[scalar.Float],
		Var:         Normal[autodiff.Var],
		Fvar:        Normal[fwd.Fvar[autodiff.Var]],
	})
	register(Model{
		Name:        "logistic",
		Description: "logistic regression with intercept and slope, normal(0, 2.5) priors",
		Init:        []float64{0, 0},
		Float:       Logistic[scalar.Float],
		Var:         Logistic[autodiff.Var],
		Fvar:        Logistic[fwd.Fvar[autodiff.Var]],
	})
	register(Model{
		Name:        "funnel",
		Description: "Neal's funnel, 1 scale and 2 local parameters",
		Init:        []float64{0.5, 0.1, -0.3},
		Float:       Funnel[scalar.Float],
		Var:         Funnel[autodiff.Var],
		Fvar:        Funnel[fwd.Fvar[autodiff.Var]],
	})
	register(Model{
		Name:        "mvn",
		Description: "correlated 3-dimensional normal via its Cholesky factor",
		Init:        []float64{0, 0, 0},
		Float:       MultiNormal[scalar.Float],
		Var:         MultiNormal[autodiff.Var],
		Fvar:        MultiNormal[fwd.Fvar[autodiff.Var]],
	})
}

// Rosenbrock returns -(100(x₁ - x₀²)² + (1 - x₀)²).
func Rosenbrock[T scalar.Number[T]](x []T) (T, error) {
	a := x[1].Sub(mathfn.Square(x[0]))
	b := x[0].Neg().AddScalar(1)
	return mathfn.Square(a).MulScalar(100).Add(mathfn.Square(b)).Neg(), nil
}

var normalData = []float64{2.1, 1.4, 3.3, 2.8, 1.9, 2.5, 3.0, 2.2}

// Normal is y ~ normal(mu, exp(tau)) with mu = x[0], tau = x[1] and the
// log Jacobian of the exp transform.
func Normal[T scalar.Number[T]](x []T) (T, error) {
	mu, tau := x[0], x[1]
	sigma := tau.Exp()
	lp := tau
	for _, y := range normalData {
		l, err := prob.NormalLPDF(mu.Const(y), mu, sigma, false)
		if err != nil {
			return lp, err
		}
		lp = lp.Add(l)
	}
	return lp, nil
}

var (
	logisticX = []float64{-1.5, -0.7, -0.2, 0.3, 0.9, 1.4, 2.0}
	logisticY = []int{0, 0, 1, 0, 1, 1, 1}
)

// Logistic is y ~ bernoulli_logit(alpha + beta·x) with alpha = x[0],
// beta = x[1] and normal(0, 2.5) priors.
func Logistic[T scalar.Number[T]](x []T) (T, error) {
	alpha, beta := x[0], x[1]
	scale := alpha.Const(2.5)
	zero := alpha.Const(0)

	lp, err := prob.NormalLPDF(alpha, zero, scale, false)
	if err != nil {
		return lp, err
	}
	l, err := prob.NormalLPDF(beta, zero, scale, false)
	if err != nil {
		return lp, err
	}
	lp = lp.Add(l)

	for i, xi := range logisticX {
		l, err := prob.BernoulliLogitLPMF(logisticY[i], alpha.Add(beta.MulScalar(xi)), false)
		if err != nil {
			return lp, err
		}
		lp = lp.Add(l)
	}
	return lp, nil
}

// Funnel is v ~ normal(0, 3), z_i ~ normal(0, exp(v/2)) with v = x[0].
func Funnel[T scalar.Number[T]](x []T) (T, error) {
	v := x[0]
	zero := v.Const(0)
	lp, err := prob.NormalLPDF(v, zero, v.Const(3), false)
	if err != nil {
		return lp, err
	}
	scale := v.MulScalar(0.5).Exp()
	for _, z := range x[1:] {
		l, err := prob.NormalLPDF(z, zero, scale, false)
		if err != nil {
			return lp, err
		}
		lp = lp.Add(l)
	}
	return lp, nil
}

var (
	mvnMu    = []float64{1, -0.5, 0.2}
	mvnSigma = []float64{
		1.0, 0.6, 0.2,
		0.6, 2.0, -0.4,
		0.2, -0.4, 0.5,
	}
	mvnL = mustCholesky(mvnSigma, 3)
)

// MultiNormal is x ~ multi_normal(mu, Sigma) for a fixed mu and Sigma.
func MultiNormal[T scalar.Number[T]](x []T) (T, error) {
	n := len(mvnMu)
	mu := make([]T, n)
	for i, m := range mvnMu {
		mu[i] = x[0].Const(m)
	}
	l := make([]T, n*n)
	for i, v := range mvnL {
		l[i] = x[0].Const(v)
	}
	return prob.MultiNormalCholeskyLPDF(x, mu, matrix.NewDense(n, n, l), false)
}

func mustCholesky(sigma []float64, n int) []float64 {
	l, err := matrix.Cholesky(matrix.NewDense(n, n, scalar.Floats(sigma)))
	if err != nil {
		panic(err)
	}
	return scalar.Values(l.RawData())
}
