//go:build linux

package managed

import (
	"context"
	"net"
	"time"

	"github.com/linuxdump/procdump/pkg/procdump/config"
	"github.com/linuxdump/procdump/pkg/system/proc"
)

// livenessPollInterval is how often the sentinel checks whether the
// target process is still alive.
const livenessPollInterval = 500 * time.Millisecond

// RunLivenessSentinel polls the target's existence and, on death, marks
// the target terminated, sets quit, and dials the status socket once to
// unblock a pending Accept if nothing else does. It returns once the
// target dies, its quit fires for any other reason, or ctx is done.
func RunLivenessSentinel(ctx context.Context, target *config.Target, statusSocketPath string) {
	ticker := time.NewTicker(livenessPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-target.QuitEvent.Done():
			return
		case <-ticker.C:
			if proc.Exists(target.Key.PID) {
				continue
			}
			target.MarkTerminated()
			target.QuitEvent.Set()
			// best-effort: unblock an Accept that's waiting with no
			// other connection ever arriving.
			if conn, err := net.Dial("unix", statusSocketPath); err == nil {
				conn.Close()
			}
			return
		}
	}
}
