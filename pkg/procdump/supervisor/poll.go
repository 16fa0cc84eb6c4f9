//go:build linux

package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/linuxdump/procdump/pkg/procdump/config"
	"github.com/linuxdump/procdump/pkg/system/proc"
)

// memberLister returns the PIDs currently matching a discovery mode's
// filter (PGID membership, or name equality). ErrNotFound is not an error
// here, just "nobody matches right now" — the poll loop keeps going.
type memberLister func() ([]int, error)

func (s *Supervisor) membersByPGID() ([]int, error) {
	return proc.PGIDMembers(s.Options.ProcessID)
}

func (s *Supervisor) membersByName() ([]int, error) {
	return proc.MembersByName(s.Options.ProcessName)
}

// runPolled implements both the process-group mode and the
// wait-for-name mode: at every polling interval, list current matches,
// start a configuration for every unknown (pid, start_time) pair, then
// prune configurations whose target has terminated. Process-group mode
// stops once its tracking set goes empty after having been non-empty at
// least once; wait-for-name mode runs until ctx is canceled regardless of
// how many targets are currently active.
func (s *Supervisor) runPolled(ctx context.Context, list memberLister) error {
	ticker := time.NewTicker(s.Options.PollingInterval)
	defer ticker.Stop()

	tracked := make(map[config.TargetKey]*configuration)
	everHadTargets := false

	defer func() {
		for _, cfg := range tracked {
			cfg.stop()
			if s.Registry != nil {
				s.Registry.Unregister(cfg.target)
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		pids, err := list()
		if err != nil && !errors.Is(err, proc.ErrNotFound) {
			slog.Warn("supervisor: discovery scan failed", "err", err)
			continue
		}

		for _, pid := range pids {
			stat, err := proc.ReadProcessStat(pid)
			if err != nil {
				continue // gone between the scan and now
			}
			key := config.TargetKey{PID: pid, StartTime: stat.Starttime}
			if _, known := tracked[key]; known {
				continue
			}
			tracked[key] = s.start(ctx, key, stat.Comm)
		}

		if len(tracked) > 0 {
			everHadTargets = true
		}

		pruneTerminated(tracked)

		if !s.Options.WaitForName && everHadTargets && len(tracked) == 0 {
			return nil
		}
	}
}

// pruneTerminated removes dead configurations from tracked using a
// two-pass pattern: collect the terminated keys first, then delete, so
// the tracking map is never mutated while something else might still be
// ranging over it in the same call.
func pruneTerminated(tracked map[config.TargetKey]*configuration) {
	var dead []config.TargetKey
	for key, cfg := range tracked {
		if cfg.terminated() {
			dead = append(dead, key)
		}
	}
	for _, key := range dead {
		tracked[key].wait()
		delete(tracked, key)
	}
}
