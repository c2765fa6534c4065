// Package functional computes derivatives of whole functions.
//
// The drivers hide tape management: each call takes a tape from the pool,
// records f, sweeps, copies the adjoints out and releases the tape, so no
// Var escapes and memory is reclaimed even when f fails or panics.
//
// Functions are written once against scalar.Number and instantiated with the
// type each driver needs:
//
//	func rosenbrock[T scalar.Number[T]](x []T) (T, error) { ... }
//
//	fx, grad, err := functional.Gradient(rosenbrock[autodiff.Var], x)
//	fx, grad, hess, err := functional.Hessian(rosenbrock[fwd.Fvar[autodiff.Var]], x)
package functional

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"

	"github.com/born-ml/stanmath/internal/autodiff"
	"github.com/born-ml/stanmath/internal/fwd"
	"github.com/born-ml/stanmath/internal/scalar"
)

// ErrLength is returned when a direction vector and the point differ in length.
var ErrLength = errors.New("functional: vector lengths differ")

// Func is a scalar function of a vector.
type Func[T scalar.Number[T]] func(x []T) (T, error)

// VectorFunc is a vector function of a vector.
type VectorFunc[T scalar.Number[T]] func(x []T) ([]T, error)

// Gradient returns f(x) and ∇f(x) by one reverse sweep.
func Gradient(f Func[autodiff.Var], x []float64) (fx float64, grad []float64, err error) {
	tape := autodiff.AcquireTape()
	defer autodiff.ReleaseTape(tape)
	return GradientOn(tape, f, x)
}

// GradientOn is Gradient on a caller-supplied tape. The tape is reset
// before returning, whether or not f fails.
func GradientOn(tape *autodiff.Tape, f Func[autodiff.Var], x []float64) (fx float64, grad []float64, err error) {
	defer tape.RecoverMemory()

	xs := tape.NewVars(x)
	out, err := f(xs)
	if err != nil {
		return 0, nil, fmt.Errorf("gradient: %w", err)
	}
	grad = tape.Gradient(out, xs)
	return out.Val(), grad, nil
}

// Jacobian returns f(x) and the Jacobian J[i][j] = ∂f_i/∂x_j, with one
// reverse sweep per output over a single recording of f.
func Jacobian(f VectorFunc[autodiff.Var], x []float64) (fx []float64, jac [][]float64, err error) {
	tape := autodiff.AcquireTape()
	defer autodiff.ReleaseTape(tape)

	xs := tape.NewVars(x)
	outs, err := f(xs)
	if err != nil {
		return nil, nil, fmt.Errorf("jacobian: %w", err)
	}
	fx = autodiff.Vals(outs)
	jac = make([][]float64, len(outs))
	for i, out := range outs {
		jac[i] = tape.Gradient(out, xs)
	}
	return fx, jac, nil
}

// Derivative returns f(x) and f'(x) in forward mode.
func Derivative(f func(fwd.Fvar[scalar.Float]) (fwd.Fvar[scalar.Float], error), x float64) (fx, dfx float64, err error) {
	out, err := f(fwd.Seed(scalar.Float(x)))
	if err != nil {
		return 0, 0, fmt.Errorf("derivative: %w", err)
	}
	return out.Value(), out.D.Value(), nil
}

// GradientDotVector returns f(x) and ∇f(x)·v in one forward pass.
func GradientDotVector(f Func[fwd.Fvar[scalar.Float]], x, v []float64) (fx, gradDotV float64, err error) {
	if len(x) != len(v) {
		return 0, 0, fmt.Errorf("gradient dot vector: %w: x has %d elements, v has %d", ErrLength, len(x), len(v))
	}
	out, err := f(fwd.Directional(scalar.Floats(x), v))
	if err != nil {
		return 0, 0, fmt.Errorf("gradient dot vector: %w", err)
	}
	return out.Value(), out.D.Value(), nil
}

// HessianTimesVector returns f(x) and H(x)·v by forward over reverse: the
// tangent along v is recorded on the tape and swept once.
func HessianTimesVector(f Func[fwd.Fvar[autodiff.Var]], x, v []float64) (fx float64, hv []float64, err error) {
	if len(x) != len(v) {
		return 0, nil, fmt.Errorf("hessian times vector: %w: x has %d elements, v has %d", ErrLength, len(x), len(v))
	}
	tape := autodiff.AcquireTape()
	defer autodiff.ReleaseTape(tape)

	xs := tape.NewVars(x)
	out, err := f(fwd.Directional(xs, v))
	if err != nil {
		return 0, nil, fmt.Errorf("hessian times vector: %w", err)
	}
	return out.Value(), tape.Gradient(out.D, xs), nil
}

// Hessian returns f(x), ∇f(x) and the Hessian by forward over reverse, one
// recording per input dimension. Row i is the reverse sweep of the tangent
// along the i-th unit vector.
func Hessian(f Func[fwd.Fvar[autodiff.Var]], x []float64) (fx float64, grad []float64, hess [][]float64, err error) {
	n := len(x)
	tape := autodiff.AcquireTape()
	defer autodiff.ReleaseTape(tape)

	grad = make([]float64, n)
	hess = make([][]float64, n)
	dir := make([]float64, n)
	for i := 0; i < n; i++ {
		dir[i] = 1
		xs := tape.NewVars(x)
		out, err := f(fwd.Directional(xs, dir))
		if err != nil {
			return 0, nil, nil, fmt.Errorf("hessian: %w", err)
		}
		fx = out.Value()
		grad[i] = out.D.Val()
		hess[i] = tape.Gradient(out.D, xs)
		tape.RecoverMemory()
		dir[i] = 0
	}
	if n == 0 {
		out, err := f(nil)
		if err != nil {
			return 0, nil, nil, fmt.Errorf("hessian: %w", err)
		}
		fx = out.Value()
	}
	return fx, grad, hess, nil
}

// FiniteDiffGradient approximates ∇f(x) by central differences with step h.
// A non-positive h uses the default step.
func FiniteDiffGradient(f func(x []float64) float64, x []float64, h float64) []float64 {
	settings := &fd.Settings{Formula: fd.Central}
	if h > 0 {
		settings.Step = h
	}
	return fd.Gradient(nil, f, x, settings)
}

// Values adapts f to plain float64 evaluation, for finite differences.
// Evaluation errors map to NaN.
func Values(f Func[scalar.Float]) func(x []float64) float64 {
	return func(x []float64) float64 {
		out, err := f(scalar.Floats(x))
		if err != nil {
			return math.NaN()
		}
		return out.Value()
	}
}
