//go:build linux

package supervisor

import (
	"context"
	"log/slog"
	"sync"

	"github.com/linuxdump/procdump/pkg/procdump/config"
	"github.com/linuxdump/procdump/pkg/procdump/dump"
	"github.com/linuxdump/procdump/pkg/procdump/restrack"
	"github.com/linuxdump/procdump/pkg/procdump/trigger"
)

// configuration is one monitored target and its running trigger
// goroutines: the unit the supervisor tracks, prunes, and joins.
type configuration struct {
	target *config.Target
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// startConfiguration builds a Target for key, starts every trigger Options
// asks for, and signals start-monitoring once they're all launched.
// Trigger goroutines are only ever launched here; nothing before this
// point touches the target process.
func startConfiguration(ctx context.Context, opts *config.Options, writer *dump.Writer, key config.TargetKey, processName string) *configuration {
	cctx, cancel := context.WithCancel(ctx)
	target := config.NewTarget(key, processName)
	cfg := &configuration{target: target, cancel: cancel}

	if opts.Restrack {
		tracker := restrack.NewTracker(key.PID)
		if err := tracker.Start(); err != nil {
			slog.Warn("resource tracking disabled", "pid", key.PID, "err", err)
		} else {
			target.Restrack = tracker
		}
	}

	triggers := activeTriggers(opts)
	for _, fn := range triggers {
		cfg.run(func() error { return fn(cctx, target, opts, writer) })
	}

	managed := hasManagedTrigger(opts)
	if managed {
		cfg.run(func() error { return trigger.RunManagedException(cctx, target, opts) })
	}

	// Every trigger above only notices a dead target if its own metric
	// read happens to fail against a gone /proc entry; the timer trigger
	// never reads one at all. Run a single shared sentinel instead of
	// relying on that, so a target's death always unblocks every trigger
	// within one poll interval. Skipped when nothing is actually running
	// that would need unblocking.
	if len(triggers) > 0 || managed {
		cfg.run(func() error { return trigger.RunLivenessSentinel(cctx, target) })
	}

	target.StartMonitoringEvent.Set()
	return cfg
}

func (c *configuration) run(fn func() error) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if err := fn(); err != nil && !c.target.IsQuitting() {
			slog.Error("trigger exited with an error", "pid", c.target.Key.PID, "err", err)
		}
	}()
}

// terminated reports whether this configuration's target has stopped (it
// died, or hit its dump cap, or was otherwise told to quit).
func (c *configuration) terminated() bool {
	return c.target.Terminated() || c.target.IsQuitting()
}

// wait blocks until every trigger goroutine for this configuration has
// returned, then tears down resource tracking if it was running.
func (c *configuration) wait() {
	c.wg.Wait()
	if c.target.Restrack != nil {
		c.target.Restrack.Stop()
	}
}

// stop signals quit and cancels the context every trigger goroutine
// watches, then waits for them to actually exit.
func (c *configuration) stop() {
	c.target.QuitEvent.Set()
	c.cancel()
	c.wait()
}
