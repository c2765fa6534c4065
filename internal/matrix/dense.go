// Package matrix provides dense matrices over any differentiable scalar and
// the reverse-mode nodes for the matrix operations densities rely on.
//
// Dense[T] works for scalar.Float, autodiff.Var and fwd.Fvar. The generic
// operations build their results from scalar primitives; the *Var variants
// record one node per output element (or one custom node per decomposition)
// with hand-derived partials, which keeps tapes small.
//
// Forward values of decompositions are computed with gonum.
package matrix

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/stanmath/internal/check"
	"github.com/born-ml/stanmath/internal/scalar"
)

// Dense is a row-major matrix of T.
type Dense[T scalar.Number[T]] struct {
	rows, cols int
	data       []T
}

// NewDense creates a rows×cols matrix backed by data (row-major).
// A nil data allocates zeros. NewDense panics if len(data) != rows*cols,
// like mat.NewDense.
func NewDense[T scalar.Number[T]](rows, cols int, data []T) *Dense[T] {
	if rows < 0 || cols < 0 {
		panic(fmt.Sprintf("matrix: negative dimension %dx%d", rows, cols))
	}
	if data == nil {
		data = make([]T, rows*cols)
		for i := range data {
			data[i] = data[i].Const(0)
		}
	}
	if len(data) != rows*cols {
		panic(fmt.Sprintf("matrix: %d elements for %dx%d", len(data), rows, cols))
	}
	return &Dense[T]{rows: rows, cols: cols, data: data}
}

// Vector creates an n×1 column vector.
func Vector[T scalar.Number[T]](xs []T) *Dense[T] {
	return NewDense(len(xs), 1, xs)
}

// Dims returns the number of rows and columns.
func (m *Dense[T]) Dims() (rows, cols int) {
	return m.rows, m.cols
}

// At returns element (i, j).
func (m *Dense[T]) At(i, j int) T {
	return m.data[i*m.cols+j]
}

// Set sets element (i, j).
func (m *Dense[T]) Set(i, j int, v T) {
	m.data[i*m.cols+j] = v
}

// RawData returns the backing slice, row-major.
func (m *Dense[T]) RawData() []T {
	return m.data
}

// Row returns a copy of row i.
func (m *Dense[T]) Row(i int) []T {
	out := make([]T, m.cols)
	copy(out, m.data[i*m.cols:(i+1)*m.cols])
	return out
}

// Col returns a copy of column j.
func (m *Dense[T]) Col(j int) []T {
	out := make([]T, m.rows)
	for i := range out {
		out[i] = m.data[i*m.cols+j]
	}
	return out
}

// T returns the transpose. No nodes are recorded: elements are shared.
func (m *Dense[T]) T() *Dense[T] {
	out := make([]T, len(m.data))
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			out[j*m.rows+i] = m.data[i*m.cols+j]
		}
	}
	return &Dense[T]{rows: m.cols, cols: m.rows, data: out}
}

// Values returns the element values as a gonum matrix.
func (m *Dense[T]) Values() *mat.Dense {
	if m.rows == 0 || m.cols == 0 {
		return &mat.Dense{}
	}
	return mat.NewDense(m.rows, m.cols, scalar.Values(m.data))
}

// Multiply returns a·b.
func Multiply[T scalar.Number[T]](a, b *Dense[T]) (*Dense[T], error) {
	if err := check.Multiplicable("multiply", "a", a.cols, "b", b.rows); err != nil {
		return nil, err
	}
	out := make([]T, a.rows*b.cols)
	for i := 0; i < a.rows; i++ {
		for j := 0; j < b.cols; j++ {
			var acc T
			acc = acc.Const(0)
			for k := 0; k < a.cols; k++ {
				acc = acc.Add(a.At(i, k).Mul(b.At(k, j)))
			}
			out[i*b.cols+j] = acc
		}
	}
	return &Dense[T]{rows: a.rows, cols: b.cols, data: out}, nil
}

// Add returns a + b.
func Add[T scalar.Number[T]](a, b *Dense[T]) (*Dense[T], error) {
	return elementwise("add", a, b, func(x, y T) T { return x.Add(y) })
}

// Subtract returns a - b.
func Subtract[T scalar.Number[T]](a, b *Dense[T]) (*Dense[T], error) {
	return elementwise("subtract", a, b, func(x, y T) T { return x.Sub(y) })
}

func elementwise[T scalar.Number[T]](function string, a, b *Dense[T], f func(x, y T) T) (*Dense[T], error) {
	if err := check.SameSize(function, "a rows", a.rows, "b rows", b.rows); err != nil {
		return nil, err
	}
	if err := check.SameSize(function, "a cols", a.cols, "b cols", b.cols); err != nil {
		return nil, err
	}
	out := make([]T, len(a.data))
	for i := range out {
		out[i] = f(a.data[i], b.data[i])
	}
	return &Dense[T]{rows: a.rows, cols: a.cols, data: out}, nil
}

// Scale returns c·m.
func Scale[T scalar.Number[T]](c float64, m *Dense[T]) *Dense[T] {
	out := make([]T, len(m.data))
	for i, x := range m.data {
		out[i] = x.MulScalar(c)
	}
	return &Dense[T]{rows: m.rows, cols: m.cols, data: out}
}

// DotProduct returns Σ a[i]·b[i].
func DotProduct[T scalar.Number[T]](a, b []T) (T, error) {
	var acc T
	if err := check.SameSize("dot_product", "a", len(a), "b", len(b)); err != nil {
		return acc, err
	}
	acc = acc.Const(0)
	for i := range a {
		acc = acc.Add(a[i].Mul(b[i]))
	}
	return acc, nil
}

// Trace returns the sum of the diagonal of a square matrix.
func Trace[T scalar.Number[T]](m *Dense[T]) (T, error) {
	var acc T
	if err := check.Square("trace", "m", m.rows, m.cols); err != nil {
		return acc, err
	}
	acc = acc.Const(0)
	for i := 0; i < m.rows; i++ {
		acc = acc.Add(m.At(i, i))
	}
	return acc, nil
}

// QuadForm returns xᵀ·A·x for square A.
func QuadForm[T scalar.Number[T]](a *Dense[T], x []T) (T, error) {
	var zero T
	if err := check.Square("quad_form", "A", a.rows, a.cols); err != nil {
		return zero, err
	}
	if err := check.SameSize("quad_form", "A", a.rows, "x", len(x)); err != nil {
		return zero, err
	}
	ax, err := Multiply(a, Vector(x))
	if err != nil {
		return zero, err
	}
	return DotProduct(x, ax.data)
}

// Cholesky returns the lower triangular factor of a symmetric positive
// definite A, built from scalar operations (Cholesky–Crout). It works for
// every T; for autodiff.Var, CholeskyDecompose records far fewer nodes.
func Cholesky[T scalar.Number[T]](a *Dense[T]) (*Dense[T], error) {
	const function = "cholesky_decompose"
	if err := check.Square(function, "A", a.rows, a.cols); err != nil {
		return nil, err
	}
	n := a.rows
	if err := check.Symmetric(function, "A", n, scalar.Values(a.data)); err != nil {
		return nil, err
	}
	l := NewDense[T](n, n, nil)
	for j := 0; j < n; j++ {
		s := a.At(j, j)
		for k := 0; k < j; k++ {
			s = s.Sub(l.At(j, k).Mul(l.At(j, k)))
		}
		if !(s.Value() > 0) {
			return nil, &check.DomainError{Function: function, Name: "A", Value: 0, Msg: "positive definite", Kind: check.ErrDomain}
		}
		ljj := s.Sqrt()
		l.Set(j, j, ljj)
		for i := j + 1; i < n; i++ {
			t := a.At(i, j)
			for k := 0; k < j; k++ {
				t = t.Sub(l.At(i, k).Mul(l.At(j, k)))
			}
			l.Set(i, j, t.Div(ljj))
		}
	}
	return l, nil
}

// MdivideLeftTriLow solves L·x = b by forward substitution for a lower
// triangular L.
func MdivideLeftTriLow[T scalar.Number[T]](l *Dense[T], b []T) ([]T, error) {
	if err := check.Square("mdivide_left_tri_low", "L", l.rows, l.cols); err != nil {
		return nil, err
	}
	if err := check.SameSize("mdivide_left_tri_low", "L", l.rows, "b", len(b)); err != nil {
		return nil, err
	}
	x := make([]T, len(b))
	for i := range b {
		acc := b[i]
		for k := 0; k < i; k++ {
			acc = acc.Sub(l.At(i, k).Mul(x[k]))
		}
		x[i] = acc.Div(l.At(i, i))
	}
	return x, nil
}
