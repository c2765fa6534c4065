package autodiff

import "fmt"

// Chainable is implemented by operations whose reverse rule does not fit the
// built-in unary, binary and n-ary node kinds, such as matrix decompositions.
//
// Chain receives the node's final adjoint and must add the scaled
// contributions into its operands with Var.AddAdj. It may read operand
// values and the adjoints of its own no-chain outputs, and must not record
// new nodes.
type Chainable interface {
	Chain(adj float64)
}

// ChainFunc adapts a function to Chainable.
type ChainFunc func(adj float64)

// Chain calls f(adj).
func (f ChainFunc) Chain(adj float64) { f(adj) }

// NewCustom records a node with value val whose reverse rule is c.
//
// Multi-output operations record one custom node first and then one
// NewNoChain node per output; every dependent of an output is created later
// and so is swept before the custom node, which can then read the outputs'
// finished adjoints.
func (t *Tape) NewCustom(val float64, c Chainable) Var {
	return t.push(node{val: val, kind: kindCustom, custom: c})
}

// NewNoChain records a node that the reverse sweep skips. Its adjoint is
// still zeroed and accumulated, so a custom node can consume it.
func (t *Tape) NewNoChain(val float64) Var {
	return t.push(node{val: val, kind: kindLeaf, nochain: true})
}

// NewPrecomputed records a node with value val whose partial with respect to
// operands[i] is partials[i]. Constant operands are dropped.
//
// Operand indices and partials are copied into the tape's arenas.
func (t *Tape) NewPrecomputed(val float64, operands []Var, partials []float64) Var {
	if len(operands) != len(partials) {
		panic(fmt.Sprintf("autodiff: %d operands but %d partials", len(operands), len(partials)))
	}

	n := 0
	for _, o := range operands {
		if o.t == nil {
			continue
		}
		if o.t != t {
			panic(fmt.Errorf("%w: operand from tape %p on tape %p", ErrTapeMismatch, o.t, t))
		}
		t.check(o)
		n++
	}
	if n == 0 {
		return Constant(val)
	}

	ops := t.idx.Alloc(n)
	ps := t.vals.Alloc(n)
	k := 0
	for i, o := range operands {
		if o.t == nil {
			continue
		}
		ops[k] = o.id
		ps[k] = partials[i]
		k++
	}
	return t.push(node{val: val, kind: kindNary, ops: ops, partials: ps})
}
