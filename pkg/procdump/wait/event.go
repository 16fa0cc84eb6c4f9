//go:build linux

// Package wait provides waitable primitives, Events and a Semaphore,
// built around context.Context instead of a hand-rolled
// waiter pool feeding a shared condition variable. A manual-reset Event
// stays signaled until Reset is called explicitly; an auto-reset Event
// clears itself the instant one waiter consumes it. wait_any's coordinator
// pattern becomes WithQuit: derive a child context that is canceled either
// by the parent or by a quit Event, and pass that single context to
// whatever you'd otherwise wait_any on.
package wait

import "context"

// Event is a boolean latch. See the package doc for manual vs auto-reset
// semantics.
type Event struct {
	auto bool
	ch   chan struct{}
	tok  chan struct{}
}

// NewEvent creates an Event. autoReset selects auto-reset behavior: each
// Set releases at most one Wait, which consumes the signal and leaves the
// Event reset.
func NewEvent(autoReset bool) *Event {
	e := &Event{auto: autoReset}
	if autoReset {
		e.tok = make(chan struct{}, 1)
	} else {
		e.ch = make(chan struct{})
	}
	return e
}

// Set signals the event. For a manual-reset event this is idempotent;
// repeated Sets before a Reset have no additional effect. For an
// auto-reset event, at most one pending token is held — extra Sets before
// a waiter arrives are coalesced.
func (e *Event) Set() {
	if e.auto {
		select {
		case e.tok <- struct{}{}:
		default:
		}
		return
	}
	select {
	case <-e.ch:
		// already closed
	default:
		close(e.ch)
	}
}

// Reset clears the event. Only meaningful for manual-reset events; calling
// it on an auto-reset event just drains any pending token.
func (e *Event) Reset() {
	if e.auto {
		select {
		case <-e.tok:
		default:
		}
		return
	}
	select {
	case <-e.ch:
		e.ch = make(chan struct{})
	default:
	}
}

// Wait blocks until the event is signaled or ctx is done, whichever comes
// first. On an auto-reset event, receiving the signal here is what
// consumes it — concurrent waiters race for the single token and exactly
// one of them proceeds per Set.
func (e *Event) Wait(ctx context.Context) error {
	if e.auto {
		select {
		case <-e.tok:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	select {
	case <-e.ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done returns the event's current wait channel. It is meaningful only
// for manual-reset events (an auto-reset Event's channel should be drained
// through Wait, not observed directly, or multiple selects could each
// believe they own the one pending token).
func (e *Event) Done() <-chan struct{} {
	return e.ch
}

// IsSet reports whether a manual-reset event is currently signaled,
// without consuming anything.
func (e *Event) IsSet() bool {
	select {
	case <-e.ch:
		return true
	default:
		return false
	}
}

// WithQuit returns a context that is canceled when parent is done or when
// quit is signaled, whichever happens first. This expresses a
// wait_any(handles, timeout) for the common {quit, other} shape: pass the
// returned context to whatever would otherwise need a second handle to
// watch, and it unblocks the instant quit fires.
func WithQuit(parent context.Context, quit *Event) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	go func() {
		select {
		case <-quit.Done():
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
