package autodiff

import "fmt"

// Add returns v + o.
//
//	d/dv = 1, d/do = 1
func (v Var) Add(o Var) Var {
	da, db := nanGuard(v.val, o.val, 1, 1)
	return binary(v, o, v.val+o.val, da, db)
}

// Sub returns v - o.
//
//	d/dv = 1, d/do = -1
func (v Var) Sub(o Var) Var {
	da, db := nanGuard(v.val, o.val, 1, -1)
	return binary(v, o, v.val-o.val, da, db)
}

// Mul returns v * o.
//
//	d/dv = o, d/do = v
//
// If either value is NaN both partials are NaN, so both adjoints become NaN.
func (v Var) Mul(o Var) Var {
	da, db := nanGuard(v.val, o.val, o.val, v.val)
	return binary(v, o, v.val*o.val, da, db)
}

// Div returns v / o.
//
//	d/dv = 1/o, d/do = -v/o²
func (v Var) Div(o Var) Var {
	q := v.val / o.val
	da, db := nanGuard(v.val, o.val, 1/o.val, -q/o.val)
	return binary(v, o, q, da, db)
}

// Neg returns -v.
func (v Var) Neg() Var {
	return unary(v, -v.val, -1)
}

// AddScalar returns v + c.
func (v Var) AddScalar(c float64) Var {
	_, da := nanGuard(c, v.val, 0, 1)
	return unary(v, v.val+c, da)
}

// MulScalar returns v * c.
func (v Var) MulScalar(c float64) Var {
	_, da := nanGuard(c, v.val, 0, c)
	return unary(v, v.val*c, da)
}

// ScalarSub returns c - v.
func ScalarSub(c float64, v Var) Var {
	_, da := nanGuard(c, v.val, 0, -1)
	return unary(v, c-v.val, da)
}

// ScalarDiv returns c / v.
//
//	d/dv = -c/v²
func ScalarDiv(c float64, v Var) Var {
	q := c / v.val
	_, da := nanGuard(c, v.val, 0, -q/v.val)
	return unary(v, q, da)
}

// Sum returns the sum of vs as a single node.
// Constants contribute their value but no operand.
func Sum(vs ...Var) Var {
	var t *Tape
	total := 0.0
	n := 0
	for _, v := range vs {
		total += v.val
		if v.t == nil {
			continue
		}
		if t == nil {
			t = v.t
		} else if v.t != t {
			panic(fmt.Errorf("%w: sum over %p and %p", ErrTapeMismatch, t, v.t))
		}
		t.check(v)
		n++
	}
	if t == nil {
		return Constant(total)
	}

	ops := t.idx.Alloc(n)
	k := 0
	for _, v := range vs {
		if v.t != nil {
			ops[k] = v.id
			k++
		}
	}
	return t.push(node{val: total, kind: kindSum, ops: ops})
}
