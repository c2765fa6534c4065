package autodiff

import "sync"

var tapePool = sync.Pool{
	New: func() any { return NewTape() },
}

// AcquireTape returns an empty tape from a process-wide pool.
//
// Each goroutine evaluating gradients in parallel must hold its own tape.
// Return it with ReleaseTape when the evaluation is done.
func AcquireTape() *Tape {
	return tapePool.Get().(*Tape)
}

// ReleaseTape resets t and returns it to the pool. Every Var recorded on t
// becomes stale.
func ReleaseTape(t *Tape) {
	if t == nil {
		return
	}
	t.RecoverMemory()
	tapePool.Put(t)
}
