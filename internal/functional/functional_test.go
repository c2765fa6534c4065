package functional_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/stanmath/internal/autodiff"
	"github.com/born-ml/stanmath/internal/check"
	"github.com/born-ml/stanmath/internal/functional"
	"github.com/born-ml/stanmath/internal/fwd"
	"github.com/born-ml/stanmath/internal/parallel"
	"github.com/born-ml/stanmath/internal/prob"
	"github.com/born-ml/stanmath/internal/scalar"
)

func rosenbrock[T scalar.Number[T]](x []T) (T, error) {
	a := x[1].Sub(x[0].Mul(x[0]))
	b := x[0].Neg().AddScalar(1)
	return a.Mul(a).MulScalar(100).Add(b.Mul(b)), nil
}

// normalModel is the log density of y ~ normal(x[0], exp(x[1])).
func normalModel[T scalar.Number[T]](x []T) (T, error) {
	ys := []float64{0.3, -1.1, 2.4}
	sigma := x[1].Exp()
	lp := x[0].Const(0)
	for _, y := range ys {
		l, err := prob.NormalLPDF(x[0].Const(y), x[0], sigma, false)
		if err != nil {
			return lp, err
		}
		lp = lp.Add(l)
	}
	return lp, nil
}

func rosenbrockGrad(x, y float64) []float64 {
	return []float64{-400*x*(y-x*x) - 2*(1-x), 200 * (y - x*x)}
}

func rosenbrockHess(x, y float64) [][]float64 {
	return [][]float64{
		{1200*x*x - 400*y + 2, -400 * x},
		{-400 * x, 200},
	}
}

func TestGradient_Rosenbrock(t *testing.T) {
	x := []float64{1.2, 0.8}

	fx, grad, err := functional.Gradient(rosenbrock[autodiff.Var], x)
	require.NoError(t, err)

	assert.InDelta(t, 100*math.Pow(0.8-1.44, 2)+0.04, fx, 1e-12)
	assert.InDeltaSlice(t, rosenbrockGrad(1.2, 0.8), grad, 1e-10)
}

func TestGradient_MatchesFiniteDifference(t *testing.T) {
	for _, x := range [][]float64{{0.1, -0.4}, {1.5, 2}, {-0.7, 0.3}} {
		_, grad, err := functional.Gradient(normalModel[autodiff.Var], x)
		require.NoError(t, err)

		numeric := functional.FiniteDiffGradient(functional.Values(normalModel[scalar.Float]), x, 1e-6)
		assert.InDeltaSlice(t, numeric, grad, 1e-6, "x=%v", x)
	}
}

func TestHessian_Rosenbrock(t *testing.T) {
	x := []float64{1.2, 0.8}

	fx, grad, hess, err := functional.Hessian(rosenbrock[fwd.Fvar[autodiff.Var]], x)
	require.NoError(t, err)

	assert.InDelta(t, 100*math.Pow(0.8-1.44, 2)+0.04, fx, 1e-12)
	assert.InDeltaSlice(t, rosenbrockGrad(1.2, 0.8), grad, 1e-10)
	want := rosenbrockHess(1.2, 0.8)
	for i := range want {
		assert.InDeltaSlice(t, want[i], hess[i], 1e-9, "row %d", i)
	}
}

func TestHessianTimesVector(t *testing.T) {
	x := []float64{-0.3, 0.5}
	v := []float64{0.7, -2}

	_, hv, err := functional.HessianTimesVector(rosenbrock[fwd.Fvar[autodiff.Var]], x, v)
	require.NoError(t, err)

	h := rosenbrockHess(x[0], x[1])
	assert.InDelta(t, floats.Dot(h[0], v), hv[0], 1e-9)
	assert.InDelta(t, floats.Dot(h[1], v), hv[1], 1e-9)

	_, _, err = functional.HessianTimesVector(rosenbrock[fwd.Fvar[autodiff.Var]], x, v[:1])
	assert.ErrorIs(t, err, functional.ErrLength)
}

func TestGradientDotVector(t *testing.T) {
	x := []float64{0.4, 1.1}
	v := []float64{-1, 3}

	fx, gv, err := functional.GradientDotVector(rosenbrock[fwd.Fvar[scalar.Float]], x, v)
	require.NoError(t, err)

	_, grad, err := functional.Gradient(rosenbrock[autodiff.Var], x)
	require.NoError(t, err)
	assert.InDelta(t, floats.Dot(grad, v), gv, 1e-10)

	want, _ := rosenbrock(scalar.Floats(x))
	assert.InDelta(t, want.Value(), fx, 1e-12)
}

func TestDerivative(t *testing.T) {
	f := func(x fwd.Fvar[scalar.Float]) (fwd.Fvar[scalar.Float], error) {
		return x.Sin().Mul(x), nil
	}
	fx, dfx, err := functional.Derivative(f, 0.9)
	require.NoError(t, err)
	assert.InDelta(t, math.Sin(0.9)*0.9, fx, 1e-14)
	assert.InDelta(t, math.Cos(0.9)*0.9+math.Sin(0.9), dfx, 1e-14)
}

func TestJacobian(t *testing.T) {
	f := func(x []autodiff.Var) ([]autodiff.Var, error) {
		return []autodiff.Var{
			x[0].Mul(x[1]),
			x[0].Exp(),
			autodiff.Constant(3),
			x[1].Div(x[0]),
		}, nil
	}
	fx, jac, err := functional.Jacobian(f, []float64{2, 5})
	require.NoError(t, err)

	assert.InDeltaSlice(t, []float64{10, math.Exp(2), 3, 2.5}, fx, 1e-12)
	assert.Equal(t, []float64{5, 2}, jac[0])
	assert.InDeltaSlice(t, []float64{math.Exp(2), 0}, jac[1], 1e-12)
	assert.Equal(t, []float64{0, 0}, jac[2], "constant output after a sweep")
	assert.InDeltaSlice(t, []float64{-5.0 / 4, 0.5}, jac[3], 1e-12)
}

func TestGradientOn_ErrorResetsTape(t *testing.T) {
	tape := autodiff.NewTape()
	bad := func(x []autodiff.Var) (autodiff.Var, error) {
		return prob.NormalLPDF(x[0], x[1], x[2], false)
	}

	_, _, err := functional.GradientOn(tape, bad, []float64{0, 0, -1})
	require.Error(t, err)
	assert.ErrorIs(t, err, check.ErrDomain)
	assert.Contains(t, err.Error(), "gradient: normal_lpdf: sigma")
	assert.Zero(t, tape.Len())

	_, grad, err := functional.GradientOn(tape, bad, []float64{0, 0, 1})
	require.NoError(t, err)
	assert.Len(t, grad, 3)
	assert.Zero(t, tape.Len())
}

func TestGradientOn_PanicResetsTape(t *testing.T) {
	tape := autodiff.NewTape()
	assert.Panics(t, func() {
		_, _, _ = functional.GradientOn(tape, func(x []autodiff.Var) (autodiff.Var, error) {
			_ = x[0].Exp()
			panic("boom")
		}, []float64{1})
	})
	assert.Zero(t, tape.Len())
}

func TestParallelGradients(t *testing.T) {
	xs := make([][]float64, 50)
	for i := range xs {
		xs[i] = []float64{-1 + 0.04*float64(i), 0.5 - 0.02*float64(i)}
	}
	cfg := parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 1}

	fxs, grads, err := functional.ParallelGradients(context.Background(), normalModel[autodiff.Var], xs, cfg)
	require.NoError(t, err)
	require.Len(t, grads, len(xs))

	for i, x := range xs {
		fx, grad, err := functional.Gradient(normalModel[autodiff.Var], x)
		require.NoError(t, err)
		assert.Equal(t, fx, fxs[i], "point %d", i)
		assert.Equal(t, grad, grads[i], "point %d", i)
	}
}

func TestParallelGradients_Error(t *testing.T) {
	boom := errors.New("boom")
	f := func(x []autodiff.Var) (autodiff.Var, error) {
		if x[0].Val() < 0 {
			return autodiff.Var{}, boom
		}
		return x[0].Mul(x[0]), nil
	}
	xs := [][]float64{{1}, {2}, {-1}, {3}}
	cfg := parallel.Config{Enabled: true, NumWorkers: 2, MinChunkSize: 1}

	_, _, err := functional.ParallelGradients(context.Background(), f, xs, cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "point 2")
}
