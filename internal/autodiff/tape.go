package autodiff

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/born-ml/stanmath/internal/arena"
)

// Tape records nodes during the forward pass and propagates adjoints during
// the reverse sweep.
//
// Usage:
//
//	tape := NewTape()
//	x := tape.NewVar(1.5)
//	y := x.Exp().Mul(x)
//	tape.Grad(y)        // x.Adj() == dy/dx
//	tape.RecoverMemory() // x and y are now stale
type Tape struct {
	nodes []node

	idx  *arena.Arena[int32]   // operand index lists of n-ary nodes
	vals *arena.Arena[float64] // partials of n-ary nodes

	// epoch stamps every new node. It is bumped by every reset, so a Var
	// whose stamp differs from its node's stamp is stale.
	epoch uint32

	scopes []scope

	capacity int
	logger   *slog.Logger
}

// scope is a saved tape position opened by StartNested.
type scope struct {
	start   int
	idxMark arena.Mark
	valMark arena.Mark
}

// Stats describes a tape's current size.
type Stats struct {
	Nodes    int         // Nodes recorded since the last reset.
	Capacity int         // Capacity of the node slice.
	Nested   int         // Open nested scopes.
	Epoch    uint32      // Reset generation.
	Indices  arena.Stats // Operand index arena.
	Partials arena.Stats // Partial derivative arena.
}

// NewTape creates a tape with the default configuration.
func NewTape() *Tape {
	return NewTapeWithConfig(DefaultConfig())
}

// NewTapeWithConfig creates a tape with the given configuration.
func NewTapeWithConfig(cfg Config) *Tape {
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultConfig().Capacity
	}
	logger := cfg.Logger
	if logger == nil {
		logger = discardLogger()
	}

	t := &Tape{
		nodes:    make([]node, 0, cfg.Capacity),
		idx:      arena.New[int32](cfg.Arena),
		vals:     arena.New[float64](cfg.Arena),
		epoch:    1,
		capacity: cfg.Capacity,
		logger:   logger,
	}
	t.idx.OnGrow = func(size int, st arena.Stats) {
		t.logger.Debug("arena slab allocated", "arena", "indices", "size", size, "slabs", st.Slabs, "reserved", st.Reserved)
	}
	t.vals.OnGrow = func(size int, st arena.Stats) {
		t.logger.Debug("arena slab allocated", "arena", "partials", "size", size, "slabs", st.Slabs, "reserved", st.Reserved)
	}
	return t
}

// NewVar records a leaf node holding x and returns its handle.
// Leaves are the independent variables gradients are taken with respect to.
func (t *Tape) NewVar(x float64) Var {
	return t.push(node{val: x, kind: kindLeaf})
}

// NewVars records one leaf per element of xs.
func (t *Tape) NewVars(xs []float64) []Var {
	out := make([]Var, len(xs))
	for i, x := range xs {
		out[i] = t.NewVar(x)
	}
	return out
}

// push appends n to the tape, stamping it with the current epoch.
func (t *Tape) push(n node) Var {
	n.epoch = t.epoch
	id := int32(len(t.nodes))
	t.nodes = append(t.nodes, n)
	return Var{t: t, id: id, epoch: t.epoch, val: n.val}
}

// unary records val = f(a) with partial da. Constants fold.
func unary(a Var, val, da float64) Var {
	if a.t == nil {
		return Constant(val)
	}
	a.t.check(a)
	return a.t.push(node{val: val, kind: kindUnary, a: a.id, da: da})
}

// binary records val = f(a, b) with partials da, db. If one operand is a
// constant the node degrades to unary; if both are, the result is a constant.
func binary(a, b Var, val, da, db float64) Var {
	t := sameTape(a, b)
	switch {
	case t == nil:
		return Constant(val)
	case a.t == nil:
		return unary(b, val, db)
	case b.t == nil:
		return unary(a, val, da)
	}
	t.check(a)
	t.check(b)
	return t.push(node{val: val, kind: kindBinary, a: a.id, b: b.id, da: da, db: db})
}

// sameTape returns the tape shared by a and b, nil when both are constants.
func sameTape(a, b Var) *Tape {
	switch {
	case a.t == nil:
		return b.t
	case b.t == nil:
		return a.t
	case a.t != b.t:
		panic(fmt.Errorf("%w: %p and %p", ErrTapeMismatch, a.t, b.t))
	}
	return a.t
}

// check panics with ErrStaleVar if v no longer refers to a live node.
func (t *Tape) check(v Var) {
	if int(v.id) >= len(t.nodes) || t.nodes[v.id].epoch != v.epoch {
		panic(fmt.Errorf("%w: node %d (epoch %d, tape epoch %d)", ErrStaleVar, v.id, v.epoch, t.epoch))
	}
}

// scopeStart returns the first node index of the innermost open scope.
func (t *Tape) scopeStart() int {
	if len(t.scopes) == 0 {
		return 0
	}
	return t.scopes[len(t.scopes)-1].start
}

// Grad runs the reverse sweep from out.
//
// Adjoints in the current scope are zeroed, together with those of outer
// nodes the scope reads, out's adjoint is seeded with 1, and every node from
// the newest to the oldest in scope propagates its adjoint. Afterwards
// v.Adj() is d(out)/d(v) for every Var v in scope or read by it.
//
// Grad may be called again on the same tape; each call starts from zero.
// A constant out leaves every adjoint it could reach at zero.
func (t *Tape) Grad(out Var) {
	if out.t == nil {
		t.zeroScope(t.scopeStart())
		return
	}
	if out.t != t {
		panic(fmt.Errorf("%w: grad of a var from tape %p on tape %p", ErrTapeMismatch, out.t, t))
	}
	t.check(out)

	start := t.scopeStart()
	t.zeroScope(start)
	t.nodes[out.id].adj = 1
	t.sweep(start)
}

// Backward runs one reverse sweep seeded with a cotangent: the adjoint of
// outs[i] starts at seeds[i]. Seeds for the same output accumulate.
// Afterwards v.Adj() is sum_i seeds[i] * d(outs[i])/d(v).
func (t *Tape) Backward(outs []Var, seeds []float64) error {
	if len(outs) != len(seeds) {
		return fmt.Errorf("%w: %d outputs, %d seeds", ErrSeedLength, len(outs), len(seeds))
	}

	start := t.scopeStart()
	t.zeroScope(start)
	for i, out := range outs {
		if out.t == nil {
			continue
		}
		if out.t != t {
			panic(fmt.Errorf("%w: backward of a var from tape %p on tape %p", ErrTapeMismatch, out.t, t))
		}
		t.check(out)
		t.nodes[out.id].adj += seeds[i]
	}
	t.sweep(start)
	return nil
}

// Gradient runs Grad(out) and returns the adjoints of inputs.
// Constant inputs get a zero gradient.
func (t *Tape) Gradient(out Var, inputs []Var) []float64 {
	t.Grad(out)
	g := make([]float64, len(inputs))
	for i, in := range inputs {
		g[i] = in.Adj()
	}
	return g
}

// sweep chains every node at index >= start, newest first.
func (t *Tape) sweep(start int) {
	for i := len(t.nodes) - 1; i >= start; i-- {
		n := &t.nodes[i]
		if n.nochain {
			continue
		}
		t.chain(n)
	}
}

// zero clears the adjoints of every node at index >= start.
func (t *Tape) zero(start int) {
	for i := start; i < len(t.nodes); i++ {
		t.nodes[i].adj = 0
	}
}

// zeroScope clears the adjoints of every node at index >= start and of every
// older node those nodes read. Custom nodes hide their operands, so a scope
// holding one clears the whole tape.
func (t *Tape) zeroScope(start int) {
	t.zero(start)
	if start == 0 {
		return
	}
	outer := func(id int32) {
		if int(id) < start {
			t.nodes[id].adj = 0
		}
	}
	for i := start; i < len(t.nodes); i++ {
		n := &t.nodes[i]
		switch n.kind {
		case kindUnary:
			outer(n.a)
		case kindBinary:
			outer(n.a)
			outer(n.b)
		case kindSum, kindNary:
			for _, o := range n.ops {
				outer(o)
			}
		case kindCustom:
			for j := range start {
				t.nodes[j].adj = 0
			}
			return
		}
	}
}

// SetZeroAllAdjoints clears every adjoint on the tape, nested or not.
func (t *Tape) SetZeroAllAdjoints() {
	t.zero(0)
}

// Len returns the number of recorded nodes.
func (t *Tape) Len() int {
	return len(t.nodes)
}

// RecoverMemory resets the tape for the next evaluation.
//
// Every Var created on this tape becomes stale; using one panics with
// ErrStaleVar. Arena slabs and node capacity are kept, so the cost does not
// depend on how many nodes were recorded. Open nested scopes are closed.
func (t *Tape) RecoverMemory() {
	t.logger.Debug("tape memory recovered", "nodes", len(t.nodes), "epoch", t.epoch)
	t.nodes = t.nodes[:0]
	t.idx.RecoverAll()
	t.vals.RecoverAll()
	t.scopes = t.scopes[:0]
	t.epoch++
}

// FreeMemory is RecoverMemory plus releasing the arenas' slabs and the
// node slice back to the garbage collector.
func (t *Tape) FreeMemory() {
	t.logger.Debug("tape memory freed", "nodes", len(t.nodes), "epoch", t.epoch)
	t.nodes = make([]node, 0, t.capacity)
	t.idx.FreeAll()
	t.vals.FreeAll()
	t.scopes = nil
	t.epoch++
}

// StartNested opens a nested scope. Grad inside the scope only sweeps nodes
// created after this call, so an inner gradient can be taken without paying
// for the outer graph. Outer nodes read by the scope receive the inner
// adjoints and are zeroed by the next inner Grad.
func (t *Tape) StartNested() {
	t.scopes = append(t.scopes, scope{
		start:   len(t.nodes),
		idxMark: t.idx.Mark(),
		valMark: t.vals.Mark(),
	})
}

// RecoverNested discards every node created since the matching StartNested.
// Vars created inside the scope become stale; Vars created before it stay valid.
func (t *Tape) RecoverNested() error {
	if len(t.scopes) == 0 {
		return ErrNoNestedScope
	}
	s := t.scopes[len(t.scopes)-1]
	t.scopes = t.scopes[:len(t.scopes)-1]

	t.nodes = t.nodes[:s.start]
	t.idx.Rewind(s.idxMark)
	t.vals.Rewind(s.valMark)
	t.epoch++
	return nil
}

// NestedDepth returns the number of open nested scopes.
func (t *Tape) NestedDepth() int {
	return len(t.scopes)
}

// Stats returns the tape's current size.
func (t *Tape) Stats() Stats {
	return Stats{
		Nodes:    len(t.nodes),
		Capacity: cap(t.nodes),
		Nested:   len(t.scopes),
		Epoch:    t.epoch,
		Indices:  t.idx.Stats(),
		Partials: t.vals.Stats(),
	}
}

// LogStats writes the tape's size to its logger at debug level.
func (t *Tape) LogStats(ctx context.Context, msg string) {
	if !t.logger.Enabled(ctx, slog.LevelDebug) {
		return
	}
	st := t.Stats()
	t.logger.DebugContext(ctx, msg,
		"nodes", st.Nodes,
		"epoch", st.Epoch,
		"nested", st.Nested,
		"index_slabs", st.Indices.Slabs,
		"partial_slabs", st.Partials.Slabs,
	)
}
