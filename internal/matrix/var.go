package matrix

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/stanmath/internal/autodiff"
	"github.com/born-ml/stanmath/internal/check"
)

// VarDense is a matrix of reverse-mode variables.
type VarDense = Dense[autodiff.Var]

// NewVarDense records one leaf per element of m on t.
func NewVarDense(t *autodiff.Tape, m mat.Matrix) *VarDense {
	r, c := m.Dims()
	data := make([]autodiff.Var, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			data[i*c+j] = t.NewVar(m.At(i, j))
		}
	}
	return &VarDense{rows: r, cols: c, data: data}
}

// ConstDense wraps the values of m as constants.
func ConstDense(m mat.Matrix) *VarDense {
	r, c := m.Dims()
	data := make([]autodiff.Var, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			data[i*c+j] = autodiff.Constant(m.At(i, j))
		}
	}
	return &VarDense{rows: r, cols: c, data: data}
}

// tapeOf returns the tape shared by the non-constant elements, nil if every
// element is constant. Elements from two different tapes panic with
// autodiff.ErrTapeMismatch.
func tapeOf(groups ...[]autodiff.Var) *autodiff.Tape {
	var t *autodiff.Tape
	for _, g := range groups {
		for _, v := range g {
			vt := v.Tape()
			switch {
			case vt == nil:
			case t == nil:
				t = vt
			case vt != t:
				panic(fmt.Errorf("%w: matrix operands from tapes %p and %p", autodiff.ErrTapeMismatch, t, vt))
			}
		}
	}
	return t
}

// precomputed records val with the given operands and partials, or folds to a
// constant when no operand is on a tape.
func precomputed(t *autodiff.Tape, val float64, operands []autodiff.Var, partials []float64) autodiff.Var {
	if t == nil {
		return autodiff.Constant(val)
	}
	return t.NewPrecomputed(val, operands, partials)
}

// DotProductVar returns Σ a[i]·b[i] as a single node with partials b and a.
func DotProductVar(a, b []autodiff.Var) (autodiff.Var, error) {
	if err := check.SameSize("dot_product", "a", len(a), "b", len(b)); err != nil {
		return autodiff.Var{}, err
	}

	n := len(a)
	operands := make([]autodiff.Var, 0, 2*n)
	partials := make([]float64, 0, 2*n)
	operands = append(operands, a...)
	operands = append(operands, b...)

	val := 0.0
	av, bv := autodiff.Vals(a), autodiff.Vals(b)
	for i := 0; i < n; i++ {
		val += av[i] * bv[i]
	}
	partials = append(partials, bv...)
	partials = append(partials, av...)
	return precomputed(tapeOf(a, b), val, operands, partials), nil
}

// SumVar returns Σ xs[i] as a single node.
func SumVar(xs []autodiff.Var) autodiff.Var {
	return autodiff.Sum(xs...)
}

// DotSelfVar returns Σ xs[i]² as a single node with partials 2·xs[i].
func DotSelfVar(xs []autodiff.Var) autodiff.Var {
	vals := autodiff.Vals(xs)
	val := 0.0
	partials := make([]float64, len(xs))
	for i, x := range vals {
		val += x * x
		partials[i] = 2 * x
	}
	return precomputed(tapeOf(xs), val, xs, partials)
}

// MultiplyVar returns a·b, recording one dot-product node per element.
func MultiplyVar(a, b *VarDense) (*VarDense, error) {
	if err := check.Multiplicable("multiply", "a", a.cols, "b", b.rows); err != nil {
		return nil, err
	}
	out := make([]autodiff.Var, a.rows*b.cols)
	cols := make([][]autodiff.Var, b.cols)
	for j := range cols {
		cols[j] = b.Col(j)
	}
	for i := 0; i < a.rows; i++ {
		row := a.Row(i)
		for j := 0; j < b.cols; j++ {
			v, err := DotProductVar(row, cols[j])
			if err != nil {
				return nil, err
			}
			out[i*b.cols+j] = v
		}
	}
	return &VarDense{rows: a.rows, cols: b.cols, data: out}, nil
}

// inverse returns A⁻¹ for the n×n values of a, or a domain error if A is
// singular.
func inverse(function string, a *VarDense) (*mat.Dense, error) {
	var inv mat.Dense
	if err := inv.Inverse(a.Values()); err != nil {
		return nil, &check.DomainError{
			Function: function,
			Name:     "A",
			Value:    0,
			Msg:      fmt.Sprintf("invertible (%v)", err),
			Kind:     check.ErrDomain,
		}
	}
	return &inv, nil
}

func squareInput(function string, a *VarDense) error {
	if err := check.Square(function, "A", a.rows, a.cols); err != nil {
		return err
	}
	if err := check.NonEmpty(function, "A", len(a.data)); err != nil {
		return err
	}
	return check.AllFinite(function, "A", autodiff.Vals(a.data))
}

// LogDeterminant returns ln|det A| as a single node whose partials are
// (A⁻¹)ᵀ.
func LogDeterminant(a *VarDense) (autodiff.Var, error) {
	const function = "log_determinant"
	if err := squareInput(function, a); err != nil {
		return autodiff.Var{}, err
	}
	vals := a.Values()

	var lu mat.LU
	lu.Factorize(vals)
	logDet, _ := lu.LogDet()

	inv, err := inverse(function, a)
	if err != nil {
		return autodiff.Var{}, err
	}
	return precomputed(tapeOf(a.data), logDet, a.data, transposedData(inv, a.rows)), nil
}

// Determinant returns det A as a single node whose partials are
// det(A)·(A⁻¹)ᵀ.
func Determinant(a *VarDense) (autodiff.Var, error) {
	const function = "determinant"
	if err := squareInput(function, a); err != nil {
		return autodiff.Var{}, err
	}
	det := mat.Det(a.Values())

	inv, err := inverse(function, a)
	if err != nil {
		return autodiff.Var{}, err
	}
	partials := transposedData(inv, a.rows)
	for i := range partials {
		partials[i] *= det
	}
	return precomputed(tapeOf(a.data), det, a.data, partials), nil
}

// transposedData returns the row-major data of mᵀ for an n×n m.
func transposedData(m *mat.Dense, n int) []float64 {
	out := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			out[i*n+j] = m.At(j, i)
		}
	}
	return out
}
