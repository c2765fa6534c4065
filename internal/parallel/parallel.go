// Package parallel fans independent evaluations out over worker goroutines.
//
// Tapes are not safe for concurrent use, so callers give each worker its own
// tape: ForWorkers passes the worker index alongside the item index and
// guarantees that one worker runs its items sequentially.
package parallel

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns defaults based on CPU count. Gradient evaluations
// are expensive relative to goroutine startup, so chunks may be a single item.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 1,
	}
}

// chunkSize returns the number of items per goroutine, or 0 if n items
// should run sequentially.
func (c Config) chunkSize(n int) int {
	if !c.Enabled || c.NumWorkers <= 1 || n < 2*max(c.MinChunkSize, 1) {
		return 0
	}
	return max((n+c.NumWorkers-1)/c.NumWorkers, c.MinChunkSize, 1)
}

// Workers returns how many workers ForWorkers uses for n items.
func (c Config) Workers(n int) int {
	size := c.chunkSize(n)
	if size == 0 {
		return min(n, 1)
	}
	return (n + size - 1) / size
}

// For executes f(i) for i in [0, n) with optional parallelism.
// Falls back to sequential execution if parallelism is disabled or n is too small.
func For(n int, f func(i int), cfg Config) {
	_ = ForWorkers(context.Background(), n, cfg, func(_, i int) error {
		f(i)
		return nil
	})
}

// ForWorkers executes f(worker, i) for i in [0, n). Items are split into
// contiguous chunks, one goroutine per chunk; worker is the chunk index in
// [0, cfg.Workers(n)). It returns the first error reported by f or the
// context's error, after every started goroutine has returned. Items not yet
// started when an error occurs are skipped.
func ForWorkers(ctx context.Context, n int, cfg Config, f func(worker, i int) error) error {
	size := cfg.chunkSize(n)
	if size == 0 {
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := f(0, i); err != nil {
				return err
			}
		}
		return nil
	}

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
		stop     atomic.Bool
	)
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			stop.Store(true)
		})
	}

	for w, start := 0, 0; start < n; w, start = w+1, start+size {
		end := min(start+size, n)
		wg.Add(1)
		go func(w, s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				if stop.Load() {
					return
				}
				if err := ctx.Err(); err != nil {
					fail(err)
					return
				}
				if err := f(w, i); err != nil {
					fail(err)
					return
				}
			}
		}(w, start, end)
	}
	wg.Wait()
	return firstErr
}
