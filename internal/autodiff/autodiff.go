// Package autodiff implements reverse-mode automatic differentiation over
// float64 scalars using an explicit tape.
//
// Architecture:
//   - Tape: owns an append-only slice of nodes plus two arenas for n-ary payloads
//   - Var: a cheap handle (tape, index, epoch) to one node; copying a Var shares the node
//   - Nodes: value, adjoint and the local partials needed by the reverse sweep
//   - Reverse sweep: walks the tape from the newest node to the oldest
//
// Nodes are appended in creation order. An operation can only be built from
// operands that already exist, so walking the slice back to front always
// visits a node before any of its operands: by the time an operand's own
// partials are propagated, every dependent has already added its share to
// the operand's adjoint.
//
// Usage:
//
//	tape := autodiff.NewTape()
//	x := tape.NewVar(2.0)
//	y := tape.NewVar(3.0)
//	f := x.Mul(y).Add(x.Log())
//	tape.Grad(f)
//	fmt.Println(x.Adj(), y.Adj()) // 3.5 2
//
// A Tape is not safe for concurrent use. Parallel gradient evaluation uses one
// tape per goroutine (see AcquireTape).
package autodiff

import (
	"errors"
	"io"
	"log/slog"

	"github.com/born-ml/stanmath/internal/arena"
)

// Programming errors. The tape panics with these (wrapped with details)
// rather than returning them: they indicate a bug in the caller, not a
// recoverable condition.
var (
	// ErrStaleVar is raised when a Var created before a reset is used afterwards.
	ErrStaleVar = errors.New("autodiff: stale var used after tape reset")

	// ErrTapeMismatch is raised when an operation combines Vars from two tapes.
	ErrTapeMismatch = errors.New("autodiff: operands recorded on different tapes")
)

// ErrNoNestedScope is returned by RecoverNested when no scope is open.
var ErrNoNestedScope = errors.New("autodiff: no nested scope to recover")

// ErrSeedLength is returned by Backward when outputs and seeds differ in length.
var ErrSeedLength = errors.New("autodiff: outputs and seeds differ in length")

// Config controls a tape's memory layout and logging.
type Config struct {
	Arena    arena.Config // Slab sizing for n-ary operand and partial payloads.
	Capacity int          // Initial node capacity.
	Logger   *slog.Logger // Receives debug events (slab growth, resets). Nil discards.
}

// DefaultConfig returns the default tape configuration.
func DefaultConfig() Config {
	return Config{
		Arena:    arena.DefaultConfig(),
		Capacity: 1024,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
