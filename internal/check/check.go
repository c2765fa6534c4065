// Package check implements the argument validation shared by the matrix and
// density code.
//
// Every check runs on plain values before any node is recorded, so a failing
// call leaves the tape exactly as it was.
package check

import (
	"errors"
	"fmt"
	"math"
)

// Error categories, matched with errors.Is.
var (
	ErrDomain    = errors.New("domain error")
	ErrDimension = errors.New("dimension mismatch")
)

// DomainError describes an argument outside a function's domain.
type DomainError struct {
	Function string  // Function that rejected the argument (e.g., "normal_lpdf").
	Name     string  // Argument name (e.g., "sigma").
	Value    float64 // Offending value, NaN if not scalar.
	Msg      string  // What was expected.
	Kind     error   // ErrDomain or ErrDimension.
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if math.IsNaN(e.Value) && e.Kind == ErrDimension {
		return fmt.Sprintf("%s: %s %s", e.Function, e.Name, e.Msg)
	}
	return fmt.Sprintf("%s: %s is %g, but must be %s", e.Function, e.Name, e.Value, e.Msg)
}

// Unwrap returns the error category.
func (e *DomainError) Unwrap() error {
	if e.Kind == nil {
		return ErrDomain
	}
	return e.Kind
}

func domain(function, name string, v float64, msg string) error {
	return &DomainError{Function: function, Name: name, Value: v, Msg: msg, Kind: ErrDomain}
}

func dimension(function, name, msg string) error {
	return &DomainError{Function: function, Name: name, Value: math.NaN(), Msg: msg, Kind: ErrDimension}
}

// NotNaN rejects NaN.
func NotNaN(function, name string, v float64) error {
	if math.IsNaN(v) {
		return domain(function, name, v, "not nan")
	}
	return nil
}

// Finite rejects NaN and ±Inf.
func Finite(function, name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return domain(function, name, v, "finite")
	}
	return nil
}

// Positive rejects values <= 0 and NaN.
func Positive(function, name string, v float64) error {
	if !(v > 0) {
		return domain(function, name, v, "positive")
	}
	return nil
}

// PositiveFinite rejects values that are not in (0, Inf).
func PositiveFinite(function, name string, v float64) error {
	if !(v > 0) || math.IsInf(v, 1) {
		return domain(function, name, v, "positive finite")
	}
	return nil
}

// Nonnegative rejects values < 0 and NaN.
func Nonnegative(function, name string, v float64) error {
	if !(v >= 0) {
		return domain(function, name, v, "nonnegative")
	}
	return nil
}

// Bounded rejects values outside [lo, hi] and NaN.
func Bounded(function, name string, v, lo, hi float64) error {
	if !(v >= lo && v <= hi) {
		return domain(function, name, v, fmt.Sprintf("in the interval [%g, %g]", lo, hi))
	}
	return nil
}

// AllFinite applies Finite to each element of vs.
func AllFinite(function, name string, vs []float64) error {
	for i, v := range vs {
		if err := Finite(function, fmt.Sprintf("%s[%d]", name, i), v); err != nil {
			return err
		}
	}
	return nil
}

// AllNotNaN applies NotNaN to each element of vs.
func AllNotNaN(function, name string, vs []float64) error {
	for i, v := range vs {
		if err := NotNaN(function, fmt.Sprintf("%s[%d]", name, i), v); err != nil {
			return err
		}
	}
	return nil
}

// SameSize rejects vectors of different lengths.
func SameSize(function, nameA string, a int, nameB string, b int) error {
	if a != b {
		return dimension(function, nameA, fmt.Sprintf("has size %d, but %s has size %d", a, nameB, b))
	}
	return nil
}

// Square rejects non-square matrices.
func Square(function, name string, rows, cols int) error {
	if rows != cols {
		return dimension(function, name, fmt.Sprintf("is %dx%d, but must be square", rows, cols))
	}
	return nil
}

// NonEmpty rejects zero-sized matrices and vectors.
func NonEmpty(function, name string, size int) error {
	if size == 0 {
		return dimension(function, name, "must not be empty")
	}
	return nil
}

// Multiplicable rejects A·B when A's columns differ from B's rows.
func Multiplicable(function, nameA string, colsA int, nameB string, rowsB int) error {
	if colsA != rowsB {
		return dimension(function, nameA, fmt.Sprintf("has %d columns, but %s has %d rows", colsA, nameB, rowsB))
	}
	return nil
}

// SymmetricTolerance is the absolute tolerance used by Symmetric.
const SymmetricTolerance = 1e-8

// Symmetric rejects an n×n row-major matrix m that is not symmetric within
// SymmetricTolerance.
func Symmetric(function, name string, n int, m []float64) error {
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if math.Abs(m[i*n+j]-m[j*n+i]) > SymmetricTolerance {
				return domain(function, fmt.Sprintf("%s[%d,%d]", name, i, j), m[i*n+j],
					fmt.Sprintf("symmetric (%s[%d,%d] is %g)", name, j, i, m[j*n+i]))
			}
		}
	}
	return nil
}
