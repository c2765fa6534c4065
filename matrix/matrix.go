// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package matrix provides dense matrices over any autodiff.Number.
//
// The generic operations build results from scalar primitives and work for
// Float, Var and Fvar alike. The Var-specific operations record one node per
// output element (or one custom node per decomposition) and keep tapes small.
//
// Example:
//
//	tape := autodiff.NewTape()
//	a := matrix.NewVarDense(tape, mat.NewDense(2, 2, []float64{4, 2, 2, 3}))
//	l, err := matrix.CholeskyDecompose(a)
//	ld, err := matrix.LogDeterminant(a)
//	tape.Grad(ld) // a.At(i, j).Adj() == inv(A)[j][i]
package matrix

import (
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/stanmath/autodiff"
	"github.com/born-ml/stanmath/internal/matrix"
)

// Dense is a row-major matrix of T.
type Dense[T autodiff.Number[T]] = matrix.Dense[T]

// VarDense is a matrix of reverse-mode variables.
type VarDense = matrix.VarDense

// NewDense creates a rows×cols matrix backed by data (row-major).
func NewDense[T autodiff.Number[T]](rows, cols int, data []T) *Dense[T] {
	return matrix.NewDense(rows, cols, data)
}

// NewVarDense records one leaf per element of m on t.
func NewVarDense(t *autodiff.Tape, m mat.Matrix) *VarDense {
	return matrix.NewVarDense(t, m)
}

// ConstDense wraps the values of m as constants.
func ConstDense(m mat.Matrix) *VarDense {
	return matrix.ConstDense(m)
}

// Multiply returns a·b.
func Multiply[T autodiff.Number[T]](a, b *Dense[T]) (*Dense[T], error) {
	return matrix.Multiply(a, b)
}

// MultiplyVar returns a·b with one node per element.
func MultiplyVar(a, b *VarDense) (*VarDense, error) {
	return matrix.MultiplyVar(a, b)
}

// DotProduct returns Σ a[i]·b[i].
func DotProduct[T autodiff.Number[T]](a, b []T) (T, error) {
	return matrix.DotProduct(a, b)
}

// DotProductVar returns Σ a[i]·b[i] as a single node.
func DotProductVar(a, b []autodiff.Var) (autodiff.Var, error) {
	return matrix.DotProductVar(a, b)
}

// QuadForm returns xᵀ·A·x.
func QuadForm[T autodiff.Number[T]](a *Dense[T], x []T) (T, error) {
	return matrix.QuadForm(a, x)
}

// Trace returns the sum of the diagonal.
func Trace[T autodiff.Number[T]](m *Dense[T]) (T, error) {
	return matrix.Trace(m)
}

// Cholesky returns the lower Cholesky factor of A, built from scalar operations.
func Cholesky[T autodiff.Number[T]](a *Dense[T]) (*Dense[T], error) {
	return matrix.Cholesky(a)
}

// CholeskyDecompose returns the lower Cholesky factor of A with a single
// reverse-mode node.
func CholeskyDecompose(a *VarDense) (*VarDense, error) {
	return matrix.CholeskyDecompose(a)
}

// MdivideLeftTriLow solves L·x = b for a lower triangular L.
func MdivideLeftTriLow[T autodiff.Number[T]](l *Dense[T], b []T) ([]T, error) {
	return matrix.MdivideLeftTriLow(l, b)
}

// LogDeterminant returns ln|det A|.
func LogDeterminant(a *VarDense) (autodiff.Var, error) {
	return matrix.LogDeterminant(a)
}

// Determinant returns det A.
func Determinant(a *VarDense) (autodiff.Var, error) {
	return matrix.Determinant(a)
}
