package prob

import (
	"github.com/born-ml/stanmath/internal/autodiff"
	"github.com/born-ml/stanmath/internal/check"
	"github.com/born-ml/stanmath/internal/matrix"
	"github.com/born-ml/stanmath/internal/scalar"
)

// MultiNormalCholeskyLPDF returns ln MVN(y | mu, L·Lᵀ) for a lower triangular
// Cholesky factor L.
func MultiNormalCholeskyLPDF[T scalar.Number[T]](y, mu []T, l *matrix.Dense[T], propto bool) (T, error) {
	const function = "multi_normal_cholesky_lpdf"
	var zero T
	if err := checkLocation(function, y, mu); err != nil {
		return zero, err
	}
	rows, cols := l.Dims()
	if err := check.Square(function, "L", rows, cols); err != nil {
		return zero, err
	}
	if err := check.SameSize(function, "y", len(y), "L", rows); err != nil {
		return zero, err
	}
	for i := 0; i < rows; i++ {
		if err := check.Positive(function, "L diagonal", l.At(i, i).Value()); err != nil {
			return zero, err
		}
	}

	n := len(y)
	diag := make([]T, n)
	for i := range diag {
		diag[i] = l.At(i, i)
	}

	lp := y[0].Const(0)
	if !propto {
		lp = lp.AddScalar(-logSqrtTwoPi * float64(n))
	}
	if include(propto, diag...) {
		for _, d := range diag {
			lp = lp.Sub(d.Log())
		}
	}
	if include(propto, append(append(append([]T{}, y...), mu...), l.RawData()...)...) {
		diff := make([]T, n)
		for i := range diff {
			diff[i] = y[i].Sub(mu[i])
		}
		z, err := matrix.MdivideLeftTriLow(l, diff)
		if err != nil {
			return zero, err
		}
		sq, err := matrix.DotProduct(z, z)
		if err != nil {
			return zero, err
		}
		lp = lp.Sub(sq.MulScalar(0.5))
	}
	return lp, nil
}

// MultiNormalLPDF returns ln MVN(y | mu, sigma). The covariance is factored
// with matrix.CholeskyDecompose, so gradients with respect to sigma reach
// its lower triangle only.
func MultiNormalLPDF(y, mu []autodiff.Var, sigma *matrix.VarDense, propto bool) (autodiff.Var, error) {
	const function = "multi_normal_lpdf"
	if err := checkLocation(function, y, mu); err != nil {
		return autodiff.Var{}, err
	}
	rows, _ := sigma.Dims()
	if err := check.SameSize(function, "y", len(y), "Sigma", rows); err != nil {
		return autodiff.Var{}, err
	}
	l, err := matrix.CholeskyDecompose(sigma)
	if err != nil {
		return autodiff.Var{}, err
	}
	return MultiNormalCholeskyLPDF(y, mu, l, propto)
}

func checkLocation[T scalar.Number[T]](function string, y, mu []T) error {
	if err := check.NonEmpty(function, "y", len(y)); err != nil {
		return err
	}
	if err := check.SameSize(function, "y", len(y), "mu", len(mu)); err != nil {
		return err
	}
	if err := check.AllFinite(function, "mu", scalar.Values(mu)); err != nil {
		return err
	}
	return check.AllNotNaN(function, "y", scalar.Values(y))
}
