package autodiff_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/stanmath/internal/arena"
	"github.com/born-ml/stanmath/internal/autodiff"
)

// panicErr runs f and returns the error it panicked with, nil if it did not.
func panicErr(t *testing.T, f func()) (err error) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		e, ok := r.(error)
		require.True(t, ok, "panic value %v is not an error", r)
		err = e
	}()
	f()
	return nil
}

// polyModel records x·Σ c_i·x^i through one precomputed node so that every
// evaluation allocates from both arenas.
func polyModel(tape *autodiff.Tape, x float64, terms int) (autodiff.Var, autodiff.Var) {
	v := tape.NewVar(x)
	pows := make([]autodiff.Var, terms)
	coef := make([]float64, terms)
	for i := range pows {
		pows[i] = v.PowScalar(float64(i + 1))
		coef[i] = 1 / float64(i+1)
	}
	val := 0.0
	for i, p := range pows {
		val += coef[i] * p.Val()
	}
	return v, tape.NewPrecomputed(val, pows, coef)
}

func TestRecoverMemory_Idempotent(t *testing.T) {
	tape := autodiff.NewTapeWithConfig(autodiff.Config{
		Arena:    arena.Config{InitialSlabSize: 8, GrowthFactor: 2},
		Capacity: 4,
	})

	var first autodiff.Stats
	var firstGrad float64
	for cycle := 0; cycle < 200; cycle++ {
		x, y := polyModel(tape, 0.9, 40)
		tape.Grad(y)
		g := x.Adj()
		if cycle == 0 {
			first = tape.Stats()
			firstGrad = g
		}
		require.Equal(t, firstGrad, g, "cycle %d", cycle)

		st := tape.Stats()
		require.Equal(t, first.Nodes, st.Nodes, "cycle %d", cycle)
		require.Equal(t, first.Capacity, st.Capacity, "cycle %d", cycle)
		require.Equal(t, first.Partials.Slabs, st.Partials.Slabs, "cycle %d", cycle)
		require.Equal(t, first.Indices.Reserved, st.Indices.Reserved, "cycle %d", cycle)

		tape.RecoverMemory()
	}

	st := tape.Stats()
	assert.Equal(t, 0, st.Nodes)
	assert.Equal(t, 0, st.Partials.Used)
	assert.Equal(t, 0, st.Indices.Used)
	assert.Positive(t, st.Partials.Reserved)

	// d/dx Σ x^i for i = 1..40
	want := 0.0
	for i := 1; i <= 40; i++ {
		want += math.Pow(0.9, float64(i-1))
	}
	assert.InDelta(t, want, firstGrad, 1e-12)
}

func TestFreeMemory(t *testing.T) {
	tape := autodiff.NewTapeWithConfig(autodiff.Config{
		Arena:    arena.Config{InitialSlabSize: 8, GrowthFactor: 2},
		Capacity: 4,
	})
	x, y := polyModel(tape, 1.1, 20)
	tape.Grad(y)
	require.Positive(t, tape.Stats().Partials.Slabs)

	tape.FreeMemory()
	st := tape.Stats()
	assert.Equal(t, 0, st.Nodes)
	assert.Equal(t, 0, st.Partials.Slabs)
	assert.Equal(t, 0, st.Indices.Slabs)
	assert.Equal(t, 4, st.Capacity)

	err := panicErr(t, func() { x.Adj() })
	assert.ErrorIs(t, err, autodiff.ErrStaleVar)

	// The tape is usable again.
	x, y = polyModel(tape, 1.1, 20)
	tape.Grad(y)
	assert.Positive(t, x.Adj())
}

func TestStaleVar_Panics(t *testing.T) {
	tape := autodiff.NewTape()
	x := tape.NewVar(2)
	y := x.Exp()
	tape.Grad(y)
	tape.RecoverMemory()

	tests := []struct {
		name string
		use  func()
	}{
		{"Val", func() { x.Val() }},
		{"Adj", func() { y.Adj() }},
		{"AddAdj", func() { y.AddAdj(1) }},
		{"unary", func() { x.Log() }},
		{"binary", func() { x.Add(autodiff.Constant(1)) }},
		{"Grad", func() { tape.Grad(y) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := panicErr(t, tt.use)
			require.Error(t, err)
			assert.ErrorIs(t, err, autodiff.ErrStaleVar)
		})
	}
}

func TestStaleVar_SlotReused(t *testing.T) {
	tape := autodiff.NewTape()
	old := tape.NewVar(1)
	tape.RecoverMemory()

	// The new var occupies the same slot as old.
	fresh := tape.NewVar(5)
	assert.Equal(t, 5.0, fresh.Val())

	err := panicErr(t, func() { old.Val() })
	assert.ErrorIs(t, err, autodiff.ErrStaleVar)
	err = panicErr(t, func() { fresh.Mul(old) })
	assert.ErrorIs(t, err, autodiff.ErrStaleVar)
}

func TestTapeMismatch_Panics(t *testing.T) {
	t1, t2 := autodiff.NewTape(), autodiff.NewTape()
	a, b := t1.NewVar(1), t2.NewVar(2)

	err := panicErr(t, func() { a.Mul(b) })
	assert.ErrorIs(t, err, autodiff.ErrTapeMismatch)

	err = panicErr(t, func() { t2.Grad(a) })
	assert.ErrorIs(t, err, autodiff.ErrTapeMismatch)

	err = panicErr(t, func() { t1.NewPrecomputed(0, []autodiff.Var{a, b}, []float64{1, 1}) })
	assert.ErrorIs(t, err, autodiff.ErrTapeMismatch)

	// Constants mix with either tape.
	assert.NoError(t, panicErr(t, func() { a.Mul(autodiff.Constant(3)) }))
}

func TestNested_InnerGradient(t *testing.T) {
	tape := autodiff.NewTape()
	x := tape.NewVar(3)
	outer := x.Mul(x)
	before := tape.Len()

	tape.StartNested()
	require.Equal(t, 1, tape.NestedDepth())

	// The inner gradient sees only inner nodes. x is outside the scope,
	// so its adjoint is not reset but still receives the inner contribution.
	z := tape.NewVar(2)
	inner := z.Mul(z).Mul(x)
	tape.Grad(inner)
	assert.Equal(t, 12.0, z.Adj())
	assert.Equal(t, 4.0, x.Adj())

	require.NoError(t, tape.RecoverNested())
	assert.Equal(t, 0, tape.NestedDepth())
	assert.Equal(t, before, tape.Len())

	err := panicErr(t, func() { z.Val() })
	assert.ErrorIs(t, err, autodiff.ErrStaleVar)
	err = panicErr(t, func() { inner.Adj() })
	assert.ErrorIs(t, err, autodiff.ErrStaleVar)

	// Outer vars stay valid and the outer gradient is unaffected.
	tape.Grad(outer)
	assert.Equal(t, 6.0, x.Adj())
	assert.Equal(t, 9.0, outer.Val())

	assert.ErrorIs(t, tape.RecoverNested(), autodiff.ErrNoNestedScope)
}

func TestNested_RepeatedGradResetsOuterOperands(t *testing.T) {
	tape := autodiff.NewTape()
	x := tape.NewVar(3)
	outer := x.Mul(x)
	tape.Grad(outer)
	require.Equal(t, 6.0, x.Adj())

	tape.StartNested()
	z := tape.NewVar(2)
	inner := z.Mul(x)
	for range 3 {
		tape.Grad(inner)
		assert.Equal(t, 2.0, x.Adj())
		assert.Equal(t, 3.0, z.Adj())
	}
	// outer is not read by the scope and keeps its adjoint.
	assert.Equal(t, 1.0, outer.Adj())

	require.NoError(t, tape.Backward([]autodiff.Var{inner}, []float64{0.5}))
	assert.Equal(t, 1.0, x.Adj())
	require.NoError(t, tape.RecoverNested())
}

func TestNested_RepeatedGradSquare(t *testing.T) {
	tape := autodiff.NewTape()
	x := tape.NewVar(3)

	tape.StartNested()
	y := x.Mul(x)
	tape.Grad(y)
	first := x.Adj()
	tape.Grad(y)
	assert.Equal(t, 6.0, first)
	assert.Equal(t, first, x.Adj())
}

func TestNested_RepeatedGradCustom(t *testing.T) {
	tape := autodiff.NewTape()
	x := tape.NewVar(1.5)
	other := tape.NewVar(4)
	other.AddAdj(7)

	tape.StartNested()
	y := tape.NewCustom(x.Val()*x.Val(), autodiff.ChainFunc(func(adj float64) {
		x.AddAdj(adj * 2 * x.Val())
	}))
	tape.Grad(y)
	tape.Grad(y)
	assert.Equal(t, 3.0, x.Adj())
	// Custom operands are opaque, so the whole tape was cleared.
	assert.Zero(t, other.Adj())
}

func TestNested_SlotReusedAfterRecover(t *testing.T) {
	tape := autodiff.NewTape()
	x := tape.NewVar(1)

	tape.StartNested()
	inner := x.Exp()
	require.NoError(t, tape.RecoverNested())

	// A new node lands where inner was.
	y := x.Sin()
	err := panicErr(t, func() { inner.Val() })
	assert.ErrorIs(t, err, autodiff.ErrStaleVar)
	assert.Equal(t, math.Sin(1), y.Val())
}

func TestNested_ArenaRewind(t *testing.T) {
	tape := autodiff.NewTapeWithConfig(autodiff.Config{
		Arena:    arena.Config{InitialSlabSize: 8, GrowthFactor: 2},
		Capacity: 4,
	})
	x := tape.NewVar(1)
	_ = autodiff.Sum(x, x, x)
	used := tape.Stats().Indices.Used

	tape.StartNested()
	_, y := polyModel(tape, 0.5, 30)
	tape.Grad(y)
	require.Greater(t, tape.Stats().Indices.Used, used)
	require.NoError(t, tape.RecoverNested())

	assert.Equal(t, used, tape.Stats().Indices.Used)
}

func TestRecoverMemory_ClosesScopes(t *testing.T) {
	tape := autodiff.NewTape()
	tape.StartNested()
	tape.StartNested()
	tape.RecoverMemory()
	assert.Equal(t, 0, tape.NestedDepth())
	assert.ErrorIs(t, tape.RecoverNested(), autodiff.ErrNoNestedScope)
}

func TestSetZeroAllAdjoints(t *testing.T) {
	tape := autodiff.NewTape()
	x := tape.NewVar(2)
	y := x.Mul(x)
	tape.Grad(y)
	require.Equal(t, 4.0, x.Adj())

	tape.SetZeroAllAdjoints()
	assert.Zero(t, x.Adj())
	assert.Zero(t, y.Adj())
}

func TestGrad_ConstantOutputZeroes(t *testing.T) {
	tape := autodiff.NewTape()
	x := tape.NewVar(2)
	tape.Grad(x.Mul(x))
	require.Equal(t, 4.0, x.Adj())

	tape.Grad(autodiff.Constant(7))
	assert.Zero(t, x.Adj())
}

func TestPool_ParallelTapes(t *testing.T) {
	const workers = 8
	results := make([]float64, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			tape := autodiff.AcquireTape()
			defer autodiff.ReleaseTape(tape)

			x := tape.NewVar(float64(w))
			tape.Grad(x.Mul(x).Mul(x))
			results[w] = x.Adj()
		}(w)
	}
	wg.Wait()

	for w, g := range results {
		assert.Equal(t, 3*float64(w*w), g, "worker %d", w)
	}

	tape := autodiff.AcquireTape()
	assert.Equal(t, 0, tape.Len())
	autodiff.ReleaseTape(tape)
	autodiff.ReleaseTape(nil)
}

func TestLogStats(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	cfg := autodiff.DefaultConfig()
	cfg.Logger = logger
	cfg.Arena = arena.Config{InitialSlabSize: 2, GrowthFactor: 2}
	tape := autodiff.NewTapeWithConfig(cfg)

	_, y := polyModel(tape, 0.5, 10)
	tape.Grad(y)
	tape.LogStats(context.Background(), "after grad")

	out := buf.String()
	assert.Contains(t, out, "arena slab allocated")
	assert.Contains(t, out, "msg=\"after grad\"")
	assert.Contains(t, out, "nodes=12")

	tape.RecoverMemory()
	assert.Contains(t, buf.String(), "msg=\"tape memory recovered\" nodes=12 epoch=1")
	tape.FreeMemory()
	assert.Contains(t, buf.String(), "msg=\"tape memory freed\" nodes=0 epoch=2")

	// Nothing is formatted when debug is disabled.
	buf.Reset()
	cfg.Logger = slog.New(slog.NewTextHandler(&buf, nil))
	quiet := autodiff.NewTapeWithConfig(cfg)
	quiet.LogStats(context.Background(), "after grad")
	assert.Empty(t, buf.String())
}

func TestStaleVar_ErrorMessage(t *testing.T) {
	tape := autodiff.NewTape()
	x := tape.NewVar(1)
	tape.RecoverMemory()

	err := panicErr(t, func() { x.Val() })
	require.Error(t, err)
	assert.True(t, errors.Is(err, autodiff.ErrStaleVar))
	assert.Contains(t, err.Error(), "node 0")
}
