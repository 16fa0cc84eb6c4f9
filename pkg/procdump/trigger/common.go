//go:build linux

package trigger

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/linuxdump/procdump/pkg/procdump/config"
	"github.com/linuxdump/procdump/pkg/procdump/dump"
	"github.com/linuxdump/procdump/pkg/types"
)

// Sampler reports whether this tick's metric crossed the configured
// threshold, and a short message to log when it did.
type Sampler func() (fire bool, message string, err error)

// Run drives the common trigger-thread shape every metric-based trigger
// shares: wait for start-monitoring (racing quit), then poll at the
// configured interval, writing a dump and cooling down each time the
// sampler fires, until quit wins or the dump writer itself sets quit
// after reaching the configured maximum.
func Run(ctx context.Context, target *config.Target, opts *config.Options, writer *dump.Writer, kind types.DumpKind, sample Sampler) error {
	started, err := waitForQuitOrStart(ctx, target)
	if err != nil || !started {
		return err
	}

	cooldown := time.Duration(opts.ThresholdSeconds) * time.Second

	for {
		quitWon, err := waitForQuitOrTimeout(ctx, target, opts.PollingInterval)
		if err != nil {
			return err
		}
		if quitWon {
			return nil
		}

		fire, msg, err := sample()
		if err != nil {
			return err
		}
		if !fire {
			continue
		}

		slog.Info(msg)
		writeAndLog(ctx, target, writer, kind)

		quitWon, err = waitForQuitOrTimeout(ctx, target, cooldown)
		if err != nil {
			return err
		}
		if quitWon {
			return nil
		}
	}
}

func writeAndLog(ctx context.Context, target *config.Target, writer *dump.Writer, kind types.DumpKind) {
	if _, err := writer.Write(ctx, target, kind); err != nil &&
		!errors.Is(err, dump.ErrAbandoned) && !errors.Is(err, dump.ErrExists) {
		slog.Warn("dump write failed", "kind", kind, "err", err)
	}
}

// waitForQuitOrStart is wait_any({quit, start-monitoring}, ∞): returns
// started=true only when start-monitoring won the race.
func waitForQuitOrStart(ctx context.Context, target *config.Target) (started bool, err error) {
	select {
	case <-target.QuitEvent.Done():
		return false, nil
	case <-target.StartMonitoringEvent.Done():
		return true, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// waitForQuitOrTimeout is WaitForQuit(config, d): quitWon=true means quit
// fired before d elapsed; quitWon=false with err==nil means the poll
// interval simply timed out and the caller should sample again.
func waitForQuitOrTimeout(ctx context.Context, target *config.Target, d time.Duration) (quitWon bool, err error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	err = target.QuitEvent.Wait(timeoutCtx)
	if err == nil {
		return true, nil
	}
	// ctx itself (not just this interval's derived deadline) ending must
	// surface as an error, or a canceled parent context turns every
	// future interval wait into an instant, CPU-spinning no-op.
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return false, nil
	}
	return false, err
}
