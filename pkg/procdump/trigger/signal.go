//go:build linux

package trigger

import (
	"context"
	"log/slog"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/linuxdump/procdump/pkg/procdump/config"
	"github.com/linuxdump/procdump/pkg/procdump/dump"
	"github.com/linuxdump/procdump/pkg/types"
)

// RunSignal implements the signal-trigger state machine: seize the
// target via ptrace, and every time it stops on the configured signal,
// detach it in a stopped state so the external core-writer can run,
// resume it, and re-attach unless the dump cap was reached. Every other
// stop-signal is simply forwarded. Grounded on
// TriggerThreadProcs.c's SignalMonitoringThread.
func RunSignal(ctx context.Context, target *config.Target, opts *config.Options, writer *dump.Writer) error {
	started, err := waitForQuitOrStart(ctx, target)
	if err != nil || !started {
		return err
	}

	pid := target.Key.PID
	wantSignal := *opts.SignalNumber

	if err := unix.PtraceSeize(pid, 0); err != nil {
		slog.Error("unable to ptrace the target process", "err", err)
		return err
	}

	for {
		var wstatus syscall.WaitStatus
		if _, err := syscall.Wait4(pid, &wstatus, 0, nil); err != nil {
			return err
		}
		if wstatus.Exited() || wstatus.Signaled() {
			_ = unix.PtraceDetach(pid)
			target.MarkTerminated()
			return nil
		}

		target.PtraceMu.Lock()
		signum := int(wstatus.StopSignal())

		if signum == wantSignal {
			if err := ptraceDetachWithSignal(pid, int(syscall.SIGSTOP)); err != nil {
				slog.Error("unable to ptrace (detach) the target process", "err", err)
				target.PtraceMu.Unlock()
				return err
			}

			slog.Info("Signal intercepted", "signum", signum)
			writeAndLog(ctx, target, writer, types.DumpKindSignal)

			_ = syscall.Kill(pid, syscall.SIGCONT)

			if target.DumpsCollected() >= opts.MaxDumps {
				_ = syscall.Kill(pid, syscall.Signal(signum))
				target.PtraceMu.Unlock()
				return nil
			}

			// Mirrors the original's own unchecked PTRACE_CONT call
			// here before re-seizing.
			_ = unix.PtraceCont(pid, signum)

			if err := unix.PtraceSeize(pid, 0); err != nil {
				slog.Error("unable to ptrace the target process", "err", err)
				target.PtraceMu.Unlock()
				return err
			}

			target.PtraceMu.Unlock()
			continue
		}

		_ = unix.PtraceCont(pid, signum)
		target.PtraceMu.Unlock()
	}
}

// ptraceDetachWithSignal issues PTRACE_DETACH with a pending signal to
// deliver on detach (SIGSTOP, so the target is left stopped for gcore to
// attach to). golang.org/x/sys/unix's PtraceDetach does not take a
// signal argument, so this goes through the raw syscall directly.
func ptraceDetachWithSignal(pid, sig int) error {
	_, _, errno := unix.Syscall6(unix.SYS_PTRACE, uintptr(unix.PTRACE_DETACH), uintptr(pid), 0, uintptr(sig), 0, 0)
	if errno != 0 {
		return errno
	}
	return nil
}
