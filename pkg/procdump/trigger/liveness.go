//go:build linux

package trigger

import (
	"context"
	"time"

	"github.com/linuxdump/procdump/pkg/procdump/config"
	"github.com/linuxdump/procdump/pkg/system/proc"
)

// livenessPollInterval is how often the sentinel checks whether the
// target process is still alive.
const livenessPollInterval = 500 * time.Millisecond

// RunLivenessSentinel polls the target's existence and, on death, marks it
// terminated and fires quit so every other trigger goroutine's
// waitForQuitOrTimeout/waitForQuitOrStart wakes up immediately instead of
// running its own /proc read to notice the same thing. Grounded on
// Monitor.c's ContinueMonitoring, which every WaitForQuit call consults via
// a kill(pid, 0) check — here run alongside the other triggers instead of
// inlined into each wait, since every trigger already shares the same quit
// event. It returns once the target dies, quit fires for any other reason,
// or ctx is done.
func RunLivenessSentinel(ctx context.Context, target *config.Target) error {
	ticker := time.NewTicker(livenessPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-target.QuitEvent.Done():
			return nil
		case <-ticker.C:
			if proc.Exists(target.Key.PID) {
				continue
			}
			target.MarkTerminated()
			target.QuitEvent.Set()
			return nil
		}
	}
}
