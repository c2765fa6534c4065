// Package models is a registry of small log densities used to exercise the
// differentiation drivers from the command line.
//
// Each density is written once as a generic function and registered with the
// three instantiations the drivers need: plain floats for finite
// differences, autodiff.Var for gradients and fwd.Fvar[autodiff.Var] for
// Hessians.
package models

import (
	"errors"
	"fmt"
	"sort"

	"github.com/born-ml/stanmath/internal/autodiff"
	"github.com/born-ml/stanmath/internal/functional"
	"github.com/born-ml/stanmath/internal/fwd"
	"github.com/born-ml/stanmath/internal/scalar"
)

// ErrUnknownModel is returned by Lookup for unregistered names.
var ErrUnknownModel = errors.New("models: unknown model")

// Model is a registered log density.
type Model struct {
	Name        string
	Description string
	Init        []float64 // A point inside the support.

	Float functional.Func[scalar.Float]
	Var   functional.Func[autodiff.Var]
	Fvar  functional.Func[fwd.Fvar[autodiff.Var]]
}

// Dim returns the number of parameters.
func (m Model) Dim() int {
	return len(m.Init)
}

// CheckDim rejects a point of the wrong dimension.
func (m Model) CheckDim(x []float64) error {
	if len(x) != m.Dim() {
		return fmt.Errorf("model %s takes %d parameters, got %d", m.Name, m.Dim(), len(x))
	}
	return nil
}

var registry = map[string]Model{}

func register(m Model) {
	if _, ok := registry[m.Name]; ok {
		panic("models: duplicate model " + m.Name)
	}
	registry[m.Name] = m
}

// Lookup returns the model registered under name.
func Lookup(name string) (Model, error) {
	m, ok := registry[name]
	if !ok {
		return Model{}, fmt.Errorf("%w: %q", ErrUnknownModel, name)
	}
	return m, nil
}

// All returns every registered model sorted by name.
func All() []Model {
	out := make([]Model, 0, len(registry))
	for _, m := range registry {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
