package autodiff_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/stanmath/internal/autodiff"
)

// polar converts (r, θ) to (r·cos θ, r·sin θ) with one custom node and two
// no-chain outputs.
type polar struct {
	r, theta autodiff.Var
	x, y     autodiff.Var
}

func (p *polar) Chain(float64) {
	xbar, ybar := p.x.Adj(), p.y.Adj()
	c, s := math.Cos(p.theta.Val()), math.Sin(p.theta.Val())
	p.r.AddAdj(xbar*c + ybar*s)
	p.theta.AddAdj(p.r.Val() * (ybar*c - xbar*s))
}

func newPolar(tape *autodiff.Tape, r, theta autodiff.Var) (autodiff.Var, autodiff.Var) {
	p := &polar{r: r, theta: theta}
	tape.NewCustom(0, p)
	p.x = tape.NewNoChain(r.Val() * math.Cos(theta.Val()))
	p.y = tape.NewNoChain(r.Val() * math.Sin(theta.Val()))
	return p.x, p.y
}

func TestCustom_MultiOutput(t *testing.T) {
	tape := autodiff.NewTape()
	r, theta := tape.NewVar(2), tape.NewVar(0.6)
	x, y := newPolar(tape, r, theta)

	// f = x·y + x = r²·cosθ·sinθ + r·cosθ
	f := x.Mul(y).Add(x)
	tape.Grad(f)

	c, s := math.Cos(0.6), math.Sin(0.6)
	assert.InDelta(t, 4*c*s+2*c, f.Val(), 1e-15)
	assert.InDelta(t, 2*2*c*s+c, r.Adj(), 1e-14)
	assert.InDelta(t, 4*(c*c-s*s)-2*s, theta.Adj(), 1e-14)

	// The same graph built from elementary nodes agrees.
	tape2 := autodiff.NewTape()
	r2, theta2 := tape2.NewVar(2), tape2.NewVar(0.6)
	x2 := r2.Mul(theta2.Cos())
	y2 := r2.Mul(theta2.Sin())
	tape2.Grad(x2.Mul(y2).Add(x2))
	assert.InDelta(t, r2.Adj(), r.Adj(), 1e-14)
	assert.InDelta(t, theta2.Adj(), theta.Adj(), 1e-14)
}

func TestCustom_RepeatedSweeps(t *testing.T) {
	tape := autodiff.NewTape()
	r, theta := tape.NewVar(1.5), tape.NewVar(-0.3)
	x, y := newPolar(tape, r, theta)

	tape.Grad(x)
	gx := []float64{r.Adj(), theta.Adj()}
	tape.Grad(y)
	gy := []float64{r.Adj(), theta.Adj()}

	assert.InDeltaSlice(t, []float64{math.Cos(-0.3), -1.5 * math.Sin(-0.3)}, gx, 1e-15)
	assert.InDeltaSlice(t, []float64{math.Sin(-0.3), 1.5 * math.Cos(-0.3)}, gy, 1e-15)
}

func TestChainFunc(t *testing.T) {
	tape := autodiff.NewTape()
	x := tape.NewVar(3)

	// A custom cube with a hand-written partial.
	out := tape.NewCustom(27, autodiff.ChainFunc(func(adj float64) {
		x.AddAdj(adj * 27)
	}))
	tape.Grad(out.MulScalar(2))
	assert.Equal(t, 54.0, x.Adj())
}

func TestNewPrecomputed(t *testing.T) {
	tape := autodiff.NewTape()
	a, b := tape.NewVar(1), tape.NewVar(2)
	before := tape.Stats().Partials.Used

	// f = 3a + 4b + 5c with c constant: c is dropped from the node.
	f := tape.NewPrecomputed(3+8+5*7, []autodiff.Var{a, b, autodiff.Constant(7)}, []float64{3, 4, 5})
	assert.Equal(t, before+2, tape.Stats().Partials.Used)

	tape.Grad(f)
	assert.Equal(t, 3.0, a.Adj())
	assert.Equal(t, 4.0, b.Adj())

	c := tape.NewPrecomputed(1, []autodiff.Var{autodiff.Constant(1)}, []float64{9})
	assert.True(t, c.IsConstant())

	assert.Panics(t, func() { tape.NewPrecomputed(0, []autodiff.Var{a}, nil) })
}

func TestNaN_PoisonsBothAdjoints(t *testing.T) {
	nan := math.NaN()
	tests := []struct {
		name string
		a, b float64
		op   func(a, b autodiff.Var) autodiff.Var
	}{
		{"mul_lhs", nan, 2, autodiff.Var.Mul},
		{"mul_rhs", 2, nan, autodiff.Var.Mul},
		{"fmod_lhs", nan, 2, autodiff.Var.Fmod},
		{"fmod_rhs", 5, nan, autodiff.Var.Fmod},
		{"add", nan, 1, autodiff.Var.Add},
		{"pow", 2, nan, autodiff.Var.Pow},
		{"atan2", nan, 1, autodiff.Var.Atan2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tape := autodiff.NewTape()
			a, b := tape.NewVar(tt.a), tape.NewVar(tt.b)
			y := tt.op(a, b)
			tape.Grad(y)

			assert.True(t, math.IsNaN(y.Val()), "value")
			assert.True(t, math.IsNaN(a.Adj()), "adjoint of a = %g", a.Adj())
			assert.True(t, math.IsNaN(b.Adj()), "adjoint of b = %g", b.Adj())
		})
	}
}

func TestNaN_StepFunctions(t *testing.T) {
	tape := autodiff.NewTape()
	x := tape.NewVar(math.NaN())
	tape.Grad(x.Floor().Add(x.Abs()))
	assert.True(t, math.IsNaN(x.Adj()))

	z := tape.NewVar(2.5)
	tape.Grad(z.Floor().Add(z.Ceil()))
	require.False(t, math.IsNaN(z.Adj()))
	assert.Zero(t, z.Adj())
}
