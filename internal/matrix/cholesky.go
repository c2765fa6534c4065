package matrix

import (
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/stanmath/internal/autodiff"
	"github.com/born-ml/stanmath/internal/check"
)

// CholeskyDecompose returns the lower triangular L with L·Lᵀ = A for a
// symmetric positive definite A.
//
// Only the lower triangle of A is read, so gradients flow into the lower
// triangle only. The decomposition is recorded as one custom node followed
// by a no-chain node per element of the lower triangle of L; the custom
// node reads their adjoints and propagates them into A in one pass.
func CholeskyDecompose(a *VarDense) (*VarDense, error) {
	const function = "cholesky_decompose"
	if err := check.Square(function, "A", a.rows, a.cols); err != nil {
		return nil, err
	}
	n := a.rows
	t := tapeOf(a.data)
	vals := autodiff.Vals(a.data)
	if err := check.AllFinite(function, "A", vals); err != nil {
		return nil, err
	}
	if err := check.Symmetric(function, "A", n, vals); err != nil {
		return nil, err
	}

	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			sym.SetSym(i, j, vals[i*n+j])
		}
	}
	var chol mat.Cholesky
	if n > 0 && !chol.Factorize(sym) {
		return nil, &check.DomainError{
			Function: function,
			Name:     "A",
			Value:    0,
			Msg:      "positive definite",
			Kind:     check.ErrDomain,
		}
	}
	var tri mat.TriDense
	if n > 0 {
		chol.LTo(&tri)
	}

	lvals := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			lvals[i*n+j] = tri.At(i, j)
		}
	}

	out := make([]autodiff.Var, n*n)
	if t == nil {
		for i, v := range lvals {
			out[i] = autodiff.Constant(v)
		}
		return &VarDense{rows: n, cols: n, data: out}, nil
	}

	c := &choleskyNode{n: n, a: a.data, l: out, lvals: lvals}
	t.NewCustom(0, c)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if j > i {
				out[i*n+j] = autodiff.Constant(0)
				continue
			}
			out[i*n+j] = t.NewNoChain(lvals[i*n+j])
		}
	}
	return &VarDense{rows: n, cols: n, data: out}, nil
}

// choleskyNode propagates the adjoints of L into the lower triangle of A by
// running the column-wise factorization backwards.
type choleskyNode struct {
	n     int
	a     []autodiff.Var
	l     []autodiff.Var
	lvals []float64
}

func (c *choleskyNode) Chain(float64) {
	n := c.n
	L := c.lvals
	lbar := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			lbar[i*n+j] = c.l[i*n+j].Adj()
		}
	}
	abar := make([]float64, n*n)

	// Forward, column j:
	//	L[j][j] = sqrt(A[j][j] - Σ_k<j L[j][k]²)
	//	L[i][j] = (A[i][j] - Σ_k<j L[i][k]·L[j][k]) / L[j][j]   for i > j
	for j := n - 1; j >= 0; j-- {
		ljj := L[j*n+j]
		for i := n - 1; i > j; i-- {
			tbar := lbar[i*n+j] / ljj
			lbar[j*n+j] -= tbar * L[i*n+j]
			abar[i*n+j] += tbar
			for k := 0; k < j; k++ {
				lbar[i*n+k] -= tbar * L[j*n+k]
				lbar[j*n+k] -= tbar * L[i*n+k]
			}
		}
		sbar := lbar[j*n+j] / (2 * ljj)
		abar[j*n+j] += sbar
		for k := 0; k < j; k++ {
			lbar[j*n+k] -= 2 * sbar * L[j*n+k]
		}
	}

	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			c.a[i*n+j].AddAdj(abar[i*n+j])
		}
	}
}
