//go:build linux

package wait

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Semaphore models a non-negative integer count: the available-dump-slots
// primitive (initial value 1) and the managed-profiler connection cap
// (initial value 50). Built on golang.org/x/sync/semaphore.Weighted, whose
// Acquire already expresses "wait on {ctx done, slot free}" as one call —
// the structured-concurrency replacement for a condition-variable waiter
// pool.
type Semaphore struct {
	w *semaphore.Weighted
}

// NewSemaphore creates a Semaphore with the given initial slot count.
func NewSemaphore(initial int64) *Semaphore {
	return &Semaphore{w: semaphore.NewWeighted(initial)}
}

// Acquire blocks until a slot is available or ctx is done. Pass a context
// derived from WithQuit to make this equivalent to wait_any({quit, sem}).
func (s *Semaphore) Acquire(ctx context.Context) error {
	return s.w.Acquire(ctx, 1)
}

// TryAcquire acquires a slot without blocking, reporting whether it
// succeeded.
func (s *Semaphore) TryAcquire() bool {
	return s.w.TryAcquire(1)
}

// Release returns a slot to the pool.
func (s *Semaphore) Release() {
	s.w.Release(1)
}
