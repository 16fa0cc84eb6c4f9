//go:build linux

package signalctl

import (
	"context"
	"log/slog"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/linuxdump/procdump/pkg/procdump/config"
)

// Controller is the process-wide singleton that reacts to SIGINT/SIGTERM
// by walking every registered target and unblocking whatever plain
// context cancellation can't reach, grounded on Procdump.c/Monitor.c's
// termination_handler but built on ctx cancellation instead of a masked
// signal set serviced by sigwait: Go's os/signal already serializes
// delivery through a channel, and main wires that into ctx via
// signal.NotifyContext, so Controller only needs to react to ctx.Done.
type Controller struct {
	opts *config.Options

	mu      sync.Mutex
	targets map[config.TargetKey]*config.Target
}

// New builds a Controller for a single invocation's Options. opts is read
// only for SignalNumber, to know whether a signal trigger is in play and
// so needs a ptrace detach on shutdown.
func New(opts *config.Options) *Controller {
	return &Controller{opts: opts, targets: make(map[config.TargetKey]*config.Target)}
}

// Register adds a target to the set the shutdown sequence walks.
func (c *Controller) Register(t *config.Target) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.targets[t.Key] = t
}

// Unregister removes a target, normally called once its configuration
// has fully joined.
func (c *Controller) Unregister(t *config.Target) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.targets, t.Key)
}

// Run blocks until ctx is done, then performs the shutdown sequence
// against every target registered at that moment and returns. Callers
// cancel ctx themselves (via signal.NotifyContext) so the same
// cancellation also unblocks every trigger goroutine's wait_for_quit and
// every supervisor poll loop; Run only handles the parts that don't
// observe ctx on their own.
func (c *Controller) Run(ctx context.Context) {
	<-ctx.Done()
	c.shutdown()
}

// shutdown implements the ordered sequence: quit every target, kill any
// live core-writer process group, and detach ptrace from any target a
// signal trigger has seized, so its blocked Wait4 returns.
func (c *Controller) shutdown() {
	c.mu.Lock()
	targets := make([]*config.Target, 0, len(c.targets))
	for _, t := range c.targets {
		targets = append(targets, t)
	}
	c.mu.Unlock()

	for _, t := range targets {
		t.QuitEvent.Set()
	}

	for _, t := range targets {
		if pid := t.CoreWriterPID(); pid != config.NoCoreWriterPID {
			if err := syscall.Kill(-pid, syscall.SIGKILL); err != nil {
				slog.Warn("failed to kill core-writer process group", "pid", pid, "err", err)
			}
		}

		if c.opts.SignalNumber != nil {
			t.PtraceMu.Lock()
			_ = unix.PtraceDetach(t.Key.PID)
			t.PtraceMu.Unlock()
		}
	}
}
