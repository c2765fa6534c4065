// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package prob provides log probability densities over any autodiff.Number.
//
// With propto true, summands whose operands are all constant are dropped:
// the result is defined up to an additive constant and every derivative is
// unchanged. Invalid arguments return a *DomainError before anything is
// recorded on a tape.
package prob

import (
	"github.com/born-ml/stanmath/autodiff"
	"github.com/born-ml/stanmath/internal/check"
	"github.com/born-ml/stanmath/internal/matrix"
	"github.com/born-ml/stanmath/internal/prob"
)

// DomainError reports an argument outside a density's support.
type DomainError = check.DomainError

// Error categories carried by DomainError.Kind, matched with errors.Is.
var (
	ErrDomain    = check.ErrDomain
	ErrDimension = check.ErrDimension
)

// NormalLPDF returns ln N(y | mu, sigma).
func NormalLPDF[T autodiff.Number[T]](y, mu, sigma T, propto bool) (T, error) {
	return prob.NormalLPDF(y, mu, sigma, propto)
}

// NormalLPDFSlice returns Σ ln N(ys[i] | mu, sigma).
func NormalLPDFSlice[T autodiff.Number[T]](ys []T, mu, sigma T, propto bool) (T, error) {
	return prob.NormalLPDFSlice(ys, mu, sigma, propto)
}

// LognormalLPDF returns ln LogNormal(y | mu, sigma).
func LognormalLPDF[T autodiff.Number[T]](y, mu, sigma T, propto bool) (T, error) {
	return prob.LognormalLPDF(y, mu, sigma, propto)
}

// CauchyLPDF returns ln Cauchy(y | mu, sigma).
func CauchyLPDF[T autodiff.Number[T]](y, mu, sigma T, propto bool) (T, error) {
	return prob.CauchyLPDF(y, mu, sigma, propto)
}

// ExponentialLPDF returns ln Exponential(y | beta).
func ExponentialLPDF[T autodiff.Number[T]](y, beta T, propto bool) (T, error) {
	return prob.ExponentialLPDF(y, beta, propto)
}

// BernoulliLogitLPMF returns ln Bernoulli(n | InvLogit(alpha)).
func BernoulliLogitLPMF[T autodiff.Number[T]](n int, alpha T, propto bool) (T, error) {
	return prob.BernoulliLogitLPMF(n, alpha, propto)
}

// MultiNormalCholeskyLPDF returns ln N(y | mu, L·Lᵀ) for a lower-triangular L.
func MultiNormalCholeskyLPDF[T autodiff.Number[T]](y, mu []T, l *matrix.Dense[T], propto bool) (T, error) {
	return prob.MultiNormalCholeskyLPDF(y, mu, l, propto)
}

// MultiNormalLPDF returns ln N(y | mu, sigma) for a covariance matrix sigma.
func MultiNormalLPDF(y, mu []autodiff.Var, sigma *matrix.VarDense, propto bool) (autodiff.Var, error) {
	return prob.MultiNormalLPDF(y, mu, sigma, propto)
}
