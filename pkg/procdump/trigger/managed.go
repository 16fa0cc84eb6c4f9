//go:build linux

package trigger

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/linuxdump/procdump/pkg/procdump/config"
	"github.com/linuxdump/procdump/pkg/procdump/managed"
)

// RunManagedException implements the managed-runtime monitor for the
// exception trigger: extract the profiler, bind the status-socket server,
// attach the profiler to the target over its diagnostics endpoint, and
// run a liveness sentinel alongside so a dead target unblocks a pending
// accept. Unlike every other trigger, the dump itself is written by the
// injected profiler, reported back over the status socket, not by this
// orchestrator process. Grounded on ProfilerHelpers.c/DotnetHelpers.c's
// inject-then-listen sequence.
func RunManagedException(ctx context.Context, target *config.Target, opts *config.Options) error {
	started, err := waitForQuitOrStart(ctx, target)
	if err != nil || !started {
		return err
	}

	socketPath, err := managed.DiagnosticsSocketPath(target.Key.PID)
	if err != nil {
		slog.Error("target is not a managed process", "pid", target.Key.PID, "err", err)
		return err
	}

	profilerPath, err := managed.ExtractProfiler(os.Getpid())
	if err != nil {
		slog.Error("unable to extract profiler", "err", err)
		return err
	}
	defer func() {
		if rmErr := managed.RemoveProfiler(profilerPath); rmErr != nil {
			slog.Warn("failed to remove extracted profiler", "path", profilerPath, "err", rmErr)
		}
	}()

	target.StatusSocketPath = managed.StatusSocketPath(os.Getpid(), target.Key.PID)
	server := managed.NewStatusServer(target.StatusSocketPath, opts.MaxDumps)

	serverDone := make(chan error, 1)
	go func() { serverDone <- server.Serve(target) }()

	select {
	case <-target.StatusSocketReady().Done():
	case <-target.QuitEvent.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}

	sentinelCtx, cancelSentinel := context.WithCancel(ctx)
	defer cancelSentinel()
	go managed.RunLivenessSentinel(sentinelCtx, target, target.StatusSocketPath)

	clientData := managed.ExceptionClientData(clientDataOutputPath(opts), os.Getpid(), opts.ExceptionFilter)

	attachErr := managed.AttachProfiler(ctx, socketPath, profilerPath, managed.DefaultAttachTimeoutMS,
		managed.ProfilerCLSID, []byte(clientData))
	if attachErr != nil {
		if errors.Is(attachErr, managed.ErrProfilerAlreadyLoaded) {
			slog.Warn("profiler already loaded in target", "pid", target.Key.PID)
		} else {
			slog.Error("unable to attach profiler", "err", attachErr)
			target.QuitEvent.Set()
			return attachErr
		}
	}

	return <-serverDone
}

// clientDataOutputPath is the output-path field carried in the
// attach-profiler client data: the configured base-name path verbatim,
// or the output directory with a trailing slash when no base name was
// given, matching the profiler's own path-join convention.
func clientDataOutputPath(opts *config.Options) string {
	if opts.BaseName != "" {
		return filepath.Join(opts.OutputDir, opts.BaseName)
	}
	return strings.TrimRight(opts.OutputDir, "/") + "/"
}
