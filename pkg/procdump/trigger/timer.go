//go:build linux

package trigger

import (
	"context"
	"log/slog"
	"time"

	"github.com/linuxdump/procdump/pkg/procdump/config"
	"github.com/linuxdump/procdump/pkg/procdump/dump"
	"github.com/linuxdump/procdump/pkg/types"
)

// RunTimer fires immediately on start and then after every cooldown, with
// no metric to sample, grounded on TriggerThreadProcs.c's TimerThread. It
// is the fallback trigger when no other trigger is configured.
func RunTimer(ctx context.Context, target *config.Target, opts *config.Options, writer *dump.Writer) error {
	started, err := waitForQuitOrStart(ctx, target)
	if err != nil || !started {
		return err
	}

	cooldown := time.Duration(opts.ThresholdSeconds) * time.Second

	for {
		if target.IsQuitting() {
			return nil
		}

		slog.Info("Timed")
		writeAndLog(ctx, target, writer, types.DumpKindTime)

		quitWon, err := waitForQuitOrTimeout(ctx, target, cooldown)
		if err != nil {
			return err
		}
		if quitWon {
			return nil
		}
	}
}
