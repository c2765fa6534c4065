// Package arena implements a typed bump allocator with bulk release.
//
// An Arena hands out slices carved from a list of large slabs. Individual
// slices are never freed: the whole arena is either recovered (cursor back to
// the start, slabs kept for reuse) or freed (slabs dropped).
//
// Every slice returned by Alloc becomes invalid after RecoverAll, FreeAll or a
// Rewind past the point where it was allocated. Holding on to such a slice and
// reading it later is the classic use-after-reset bug: the memory is silently
// reused by the next allocation.
package arena

import (
	"errors"
	"fmt"
)

// Default knobs for new arenas.
const (
	DefaultInitialSlabSize = 4096
	DefaultGrowthFactor    = 2.0
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("arena: invalid config")

// Config controls slab sizing.
type Config struct {
	// InitialSlabSize is the number of elements in the first slab.
	// Larger values trade memory footprint for fewer slab allocations.
	InitialSlabSize int `toml:"initial_slab_size" yaml:"initial_slab_size"`

	// GrowthFactor multiplies the size of each new slab relative to the last.
	GrowthFactor float64 `toml:"growth_factor" yaml:"growth_factor"`
}

// DefaultConfig returns the default slab configuration.
func DefaultConfig() Config {
	return Config{
		InitialSlabSize: DefaultInitialSlabSize,
		GrowthFactor:    DefaultGrowthFactor,
	}
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.InitialSlabSize <= 0 {
		return fmt.Errorf("%w: initial slab size must be positive, got %d", ErrInvalidConfig, c.InitialSlabSize)
	}
	if c.GrowthFactor < 1 {
		return fmt.Errorf("%w: growth factor must be >= 1, got %g", ErrInvalidConfig, c.GrowthFactor)
	}
	return nil
}

// Mark is a saved allocation position, see Arena.Mark.
type Mark struct {
	slab int
	off  int
	used int
}

// Stats describes the arena's memory usage in elements.
type Stats struct {
	Slabs    int // Number of slabs currently held.
	Reserved int // Total capacity across all slabs.
	Used     int // Elements handed out since the last recover.
}

// Arena is a bump allocator for values of type T.
//
// An Arena is not safe for concurrent use.
type Arena[T any] struct {
	cfg   Config
	slabs [][]T
	cur   int // index of the slab being bumped
	off   int // next free element in slabs[cur]
	used  int

	// dirty[i] is the high-water mark of slab i since it was last cleared.
	// Recovered slabs are cleared on reuse, not on recover, so that
	// RecoverAll stays proportional to the number of slabs.
	dirty []int

	// OnGrow, when set, is called after a new slab is allocated.
	OnGrow func(slabSize int, stats Stats)
}

// New creates an empty arena. An invalid config falls back to the defaults.
func New[T any](cfg Config) *Arena[T] {
	if cfg.Validate() != nil {
		cfg = DefaultConfig()
	}
	return &Arena[T]{cfg: cfg}
}

// Config returns the arena's slab configuration.
func (a *Arena[T]) Config() Config {
	return a.cfg
}

// Alloc returns a zeroed slice of n elements.
// Alloc(0) returns nil and does not touch the arena.
func (a *Arena[T]) Alloc(n int) []T {
	if n <= 0 {
		return nil
	}

	for {
		if a.cur < len(a.slabs) {
			slab := a.slabs[a.cur]
			if a.off+n <= len(slab) {
				out := slab[a.off : a.off+n : a.off+n]
				if a.off < a.dirty[a.cur] {
					clear(out)
				}
				a.off += n
				a.dirty[a.cur] = max(a.dirty[a.cur], a.off)
				a.used += n
				return out
			}
			if a.cur+1 < len(a.slabs) {
				// Move to the next retained slab.
				a.cur++
				a.off = 0
				continue
			}
		}
		a.grow(n)
	}
}

// grow appends a slab large enough to hold n elements and makes it current.
func (a *Arena[T]) grow(n int) {
	size := a.cfg.InitialSlabSize
	if len(a.slabs) > 0 {
		last := len(a.slabs[len(a.slabs)-1])
		size = int(float64(last) * a.cfg.GrowthFactor)
	}
	size = max(size, n)

	a.slabs = append(a.slabs, make([]T, size))
	a.dirty = append(a.dirty, 0)
	a.cur = len(a.slabs) - 1
	a.off = 0

	if a.OnGrow != nil {
		a.OnGrow(size, a.Stats())
	}
}

// Mark returns the current allocation position.
func (a *Arena[T]) Mark() Mark {
	return Mark{slab: a.cur, off: a.off, used: a.used}
}

// Rewind resets the cursor to m. Everything allocated after m is released.
// Rewinding to a mark taken before a RecoverAll or FreeAll is a programming error.
func (a *Arena[T]) Rewind(m Mark) {
	if len(a.slabs) == 0 {
		return
	}
	if m.slab > a.cur || (m.slab == a.cur && m.off > a.off) {
		panic(fmt.Sprintf("arena: rewind to mark (%d,%d) ahead of cursor (%d,%d)", m.slab, m.off, a.cur, a.off))
	}

	a.used = m.used
	a.cur = m.slab
	a.off = m.off
}

// RecoverAll resets the cursor to the start of the first slab and keeps every
// slab for reuse.
func (a *Arena[T]) RecoverAll() {
	a.cur = 0
	a.off = 0
	a.used = 0
}

// FreeAll drops every slab.
func (a *Arena[T]) FreeAll() {
	a.slabs = nil
	a.dirty = nil
	a.cur = 0
	a.off = 0
	a.used = 0
}

// Stats returns the arena's current usage.
func (a *Arena[T]) Stats() Stats {
	reserved := 0
	for _, s := range a.slabs {
		reserved += len(s)
	}
	return Stats{
		Slabs:    len(a.slabs),
		Reserved: reserved,
		Used:     a.used,
	}
}
