package autodiff

import "fmt"

// Var is a handle to a node on a Tape.
//
// Copying a Var copies the handle, never the node: every copy reads and
// accumulates into the same adjoint. The zero Var is the constant 0.
//
// A Var is only valid until its tape is reset (RecoverMemory, FreeMemory, or
// RecoverNested for Vars created inside the scope). Using it afterwards
// panics with ErrStaleVar.
type Var struct {
	t     *Tape
	id    int32
	epoch uint32
	val   float64
}

// Constant returns a tape-less Var holding c. Constants record nothing and
// have no adjoint; operations on constants only fold.
func Constant(c float64) Var {
	return Var{val: c}
}

// Val returns the value computed in the forward pass.
func (v Var) Val() float64 {
	if v.t != nil {
		v.t.check(v)
	}
	return v.val
}

// Value returns the value; it satisfies scalar.Number.
func (v Var) Value() float64 {
	return v.Val()
}

// Const returns the constant c. It satisfies scalar.Number.
func (Var) Const(c float64) Var {
	return Constant(c)
}

// Adj returns the adjoint accumulated by the last reverse sweep.
// Constants always report 0.
func (v Var) Adj() float64 {
	if v.t == nil {
		return 0
	}
	v.t.check(v)
	return v.t.nodes[v.id].adj
}

// AddAdj adds x to v's adjoint. It is meant for Chainable implementations
// propagating a custom node's adjoint into its operands. No-op on constants.
func (v Var) AddAdj(x float64) {
	if v.t == nil {
		return
	}
	v.t.check(v)
	v.t.nodes[v.id].adj += x
}

// IsConstant reports whether v is tape-less.
func (v Var) IsConstant() bool {
	return v.t == nil
}

// Tape returns the tape v was recorded on, nil for constants.
func (v Var) Tape() *Tape {
	return v.t
}

// String implements fmt.Stringer.
func (v Var) String() string {
	if v.t == nil {
		return fmt.Sprintf("const(%g)", v.val)
	}
	return fmt.Sprintf("var#%d(%g)", v.id, v.val)
}

// Vals extracts the values of vs.
func Vals(vs []Var) []float64 {
	out := make([]float64, len(vs))
	for i, v := range vs {
		out[i] = v.Val()
	}
	return out
}

// Adjs extracts the adjoints of vs.
func Adjs(vs []Var) []float64 {
	out := make([]float64, len(vs))
	for i, v := range vs {
		out[i] = v.Adj()
	}
	return out
}
