//go:build linux

package supervisor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/linuxdump/procdump/pkg/procdump/config"
	"github.com/linuxdump/procdump/pkg/procdump/dump"
	"github.com/linuxdump/procdump/pkg/system/proc"
)

// signalRegistry is the slice of signalctl.Controller the supervisor
// depends on, kept as a local interface so this package doesn't need to
// import signalctl just to register targets with it.
type signalRegistry interface {
	Register(*config.Target)
	Unregister(*config.Target)
}

// Supervisor drives one monitoring invocation: resolve targets per the
// configured discovery mode, start a configuration per target, and track
// them until every target is done (single/PGID modes) or forever
// (wait-for-name mode, until the caller's context is canceled).
type Supervisor struct {
	Options  *config.Options
	Writer   *dump.Writer
	Registry signalRegistry // optional; nil is fine, just skips registration
}

// New constructs a Supervisor for a parsed, validated Options.
func New(opts *config.Options) *Supervisor {
	return &Supervisor{Options: opts, Writer: dump.NewWriter(opts)}
}

// Run dispatches to the discovery mode Options asks for and blocks until
// that mode's termination condition is met or ctx is canceled.
func (s *Supervisor) Run(ctx context.Context) error {
	switch {
	case s.Options.WaitForName:
		return s.runPolled(ctx, s.membersByName)
	case s.Options.PGIDMode:
		return s.runPolled(ctx, s.membersByPGID)
	default:
		return s.runSingle(ctx)
	}
}

// runSingle resolves exactly one target, starts its configuration, and
// waits for every trigger goroutine to return.
func (s *Supervisor) runSingle(ctx context.Context) error {
	pid := s.Options.ProcessID
	if pid == 0 {
		resolved, err := proc.ResolveName(s.Options.ProcessName)
		if err != nil {
			return fmt.Errorf("supervisor: resolve %q: %w", s.Options.ProcessName, err)
		}
		pid = resolved
	}

	stat, err := proc.ReadProcessStat(pid)
	if err != nil {
		return fmt.Errorf("supervisor: read target: %w", err)
	}

	key := config.TargetKey{PID: pid, StartTime: stat.Starttime}
	cfg := s.start(ctx, key, stat.Comm)
	cfg.wait()
	if s.Registry != nil {
		s.Registry.Unregister(cfg.target)
	}
	return nil
}

// start builds and registers a configuration for key.
func (s *Supervisor) start(ctx context.Context, key config.TargetKey, name string) *configuration {
	cfg := startConfiguration(ctx, s.Options, s.Writer, key, name)
	if s.Registry != nil {
		s.Registry.Register(cfg.target)
	}
	return cfg
}
