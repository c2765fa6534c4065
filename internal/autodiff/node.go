package autodiff

import "math"

// nodeKind selects how a node propagates its adjoint.
type nodeKind uint8

const (
	kindLeaf   nodeKind = iota // independent input or constant on the tape: no operands
	kindUnary                  // one operand, one partial
	kindBinary                 // two operands, two partials
	kindSum                    // n operands, all partials 1
	kindNary                   // n operands with precomputed partials
	kindCustom                 // delegates to a Chainable
)

// node is one vertex of the computation graph.
//
// val is fixed at creation. adj starts at zero and is only written by the
// reverse sweep (or SetZeroAllAdjoints). Operands are tape indices.
type node struct {
	val float64
	adj float64

	a, b   int32
	da, db float64

	ops      []int32   // kindSum, kindNary: arena-backed operand indices
	partials []float64 // kindNary: arena-backed partials, parallel to ops

	custom Chainable

	epoch   uint32
	kind    nodeKind
	nochain bool // skipped by the sweep; its adjoint is read by a custom node
}

// chain adds this node's contribution to its operands' adjoints.
func (t *Tape) chain(n *node) {
	switch n.kind {
	case kindLeaf:
	case kindUnary:
		t.nodes[n.a].adj += n.adj * n.da
	case kindBinary:
		t.nodes[n.a].adj += n.adj * n.da
		t.nodes[n.b].adj += n.adj * n.db
	case kindSum:
		for _, o := range n.ops {
			t.nodes[o].adj += n.adj
		}
	case kindNary:
		for i, o := range n.ops {
			t.nodes[o].adj += n.adj * n.partials[i]
		}
	case kindCustom:
		n.custom.Chain(n.adj)
	}
}

// nanGuard poisons both partials when either operand is NaN, so that both
// adjoints come out NaN instead of one of them silently staying finite.
func nanGuard(av, bv, da, db float64) (float64, float64) {
	if math.IsNaN(av) || math.IsNaN(bv) {
		return math.NaN(), math.NaN()
	}
	return da, db
}
