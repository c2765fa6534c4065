package autodiff

import "math"

// Log returns ln(v).   d/dv = 1/v
func (v Var) Log() Var {
	return unary(v, math.Log(v.val), 1/v.val)
}

// Exp returns e^v.   d/dv = e^v
func (v Var) Exp() Var {
	e := math.Exp(v.val)
	return unary(v, e, e)
}

// Sqrt returns √v.   d/dv = 1/(2√v)
func (v Var) Sqrt() Var {
	s := math.Sqrt(v.val)
	return unary(v, s, 0.5/s)
}

// Pow returns v^o.
//
//	d/dv = o·v^(o-1), d/do = ln(v)·v^o
//
// At v == 0 both partials are taken as 0 to avoid 0·ln(0). PowScalar has no
// exponent partial and keeps c·v^(c-1) there, so at v == 0 x.Pow(Constant(1))
// has derivative 0 while x.PowScalar(1) has derivative 1.
func (v Var) Pow(o Var) Var {
	p := math.Pow(v.val, o.val)
	var da, db float64
	if v.val != 0 {
		da = o.val * math.Pow(v.val, o.val-1)
		db = math.Log(v.val) * p
	}
	da, db = nanGuard(v.val, o.val, da, db)
	return binary(v, o, p, da, db)
}

// PowScalar returns v^c.   d/dv = c·v^(c-1)
func (v Var) PowScalar(c float64) Var {
	var da float64
	if c != 0 {
		da = c * math.Pow(v.val, c-1)
	}
	_, da = nanGuard(c, v.val, 0, da)
	return unary(v, math.Pow(v.val, c), da)
}

// Sin returns sin(v).   d/dv = cos(v)
func (v Var) Sin() Var {
	return unary(v, math.Sin(v.val), math.Cos(v.val))
}

// Cos returns cos(v).   d/dv = -sin(v)
func (v Var) Cos() Var {
	return unary(v, math.Cos(v.val), -math.Sin(v.val))
}

// Tan returns tan(v).   d/dv = 1 + tan²(v)
func (v Var) Tan() Var {
	t := math.Tan(v.val)
	return unary(v, t, 1+t*t)
}

// Asin returns asin(v).   d/dv = 1/√(1-v²)
func (v Var) Asin() Var {
	return unary(v, math.Asin(v.val), 1/math.Sqrt(1-v.val*v.val))
}

// Acos returns acos(v).   d/dv = -1/√(1-v²)
func (v Var) Acos() Var {
	return unary(v, math.Acos(v.val), -1/math.Sqrt(1-v.val*v.val))
}

// Atan returns atan(v).   d/dv = 1/(1+v²)
func (v Var) Atan() Var {
	return unary(v, math.Atan(v.val), 1/(1+v.val*v.val))
}

// Atan2 returns atan2(v, o).
//
//	d/dv = o/(v²+o²), d/do = -v/(v²+o²)
func (v Var) Atan2(o Var) Var {
	r := v.val*v.val + o.val*o.val
	da, db := nanGuard(v.val, o.val, o.val/r, -v.val/r)
	return binary(v, o, math.Atan2(v.val, o.val), da, db)
}

// Sinh returns sinh(v).   d/dv = cosh(v)
func (v Var) Sinh() Var {
	return unary(v, math.Sinh(v.val), math.Cosh(v.val))
}

// Cosh returns cosh(v).   d/dv = sinh(v)
func (v Var) Cosh() Var {
	return unary(v, math.Cosh(v.val), math.Sinh(v.val))
}

// Tanh returns tanh(v).   d/dv = 1 - tanh²(v)
func (v Var) Tanh() Var {
	t := math.Tanh(v.val)
	return unary(v, t, 1-t*t)
}

// Asinh returns asinh(v).   d/dv = 1/√(v²+1)
func (v Var) Asinh() Var {
	return unary(v, math.Asinh(v.val), 1/math.Sqrt(v.val*v.val+1))
}

// Acosh returns acosh(v).   d/dv = 1/√(v²-1)
func (v Var) Acosh() Var {
	return unary(v, math.Acosh(v.val), 1/math.Sqrt(v.val*v.val-1))
}

// Atanh returns atanh(v).   d/dv = 1/(1-v²)
func (v Var) Atanh() Var {
	return unary(v, math.Atanh(v.val), 1/(1-v.val*v.val))
}

// Expm1 returns e^v - 1.   d/dv = e^v
func (v Var) Expm1() Var {
	e := math.Expm1(v.val)
	return unary(v, e, e+1)
}

// Log1p returns ln(1+v).   d/dv = 1/(1+v)
func (v Var) Log1p() Var {
	return unary(v, math.Log1p(v.val), 1/(1+v.val))
}

// Abs returns |v|.   d/dv = sign(v), 0 at 0, NaN at NaN
func (v Var) Abs() Var {
	var da float64
	switch {
	case v.val > 0:
		da = 1
	case v.val < 0:
		da = -1
	case math.IsNaN(v.val):
		da = math.NaN()
	}
	return unary(v, math.Abs(v.val), da)
}

// Fmod returns the floating-point remainder of v/o, with the sign of v.
//
//	d/dv = 1, d/do = -trunc(v/o)
//
// NaN in either operand makes both adjoints NaN.
func (v Var) Fmod(o Var) Var {
	da, db := nanGuard(v.val, o.val, 1, -math.Trunc(v.val/o.val))
	return binary(v, o, math.Mod(v.val, o.val), da, db)
}

// Floor returns ⌊v⌋. The derivative is 0 (NaN if v is NaN).
func (v Var) Floor() Var {
	return unary(v, math.Floor(v.val), stepPartial(v.val))
}

// Ceil returns ⌈v⌉. The derivative is 0 (NaN if v is NaN).
func (v Var) Ceil() Var {
	return unary(v, math.Ceil(v.val), stepPartial(v.val))
}

func stepPartial(x float64) float64 {
	if math.IsNaN(x) {
		return math.NaN()
	}
	return 0
}
