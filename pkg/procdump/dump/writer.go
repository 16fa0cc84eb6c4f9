//go:build linux

package dump

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/linuxdump/procdump/pkg/procdump/config"
	"github.com/linuxdump/procdump/pkg/procdump/managed"
	"github.com/linuxdump/procdump/pkg/procdump/restrack"
	"github.com/linuxdump/procdump/pkg/procdump/wait"
	"github.com/linuxdump/procdump/pkg/types"
)

// maxGcoreLines caps how many lines of gcore's merged stdout/stderr are
// retained for diagnostics.
const maxGcoreLines = 15

// Writer orchestrates the dump algorithm for one target: acquire a dump
// slot, detect managed vs native, build the output path, dispatch to
// whichever path applies, then release the slot and tell the target
// whether the dump count just reached its configured maximum.
type Writer struct {
	Options *config.Options
}

// NewWriter constructs a Writer bound to a run's shared Options.
func NewWriter(opts *config.Options) *Writer {
	return &Writer{Options: opts}
}

// Write performs the full dump algorithm and returns the path written, or
// ErrAbandoned if the quit event won the race for a dump slot.
func (w *Writer) Write(ctx context.Context, target *config.Target, kind types.DumpKind) (string, error) {
	// A semaphore slot being free never outranks a quit already in
	// flight: check it directly instead of relying on the race between
	// context cancellation and Acquire's own capacity check.
	if target.IsQuitting() {
		return "", ErrAbandoned
	}

	quitCtx, cancel := wait.WithQuit(ctx, target.QuitEvent)
	defer cancel()

	if err := target.DumpSlots.Acquire(quitCtx); err != nil {
		return "", ErrAbandoned
	}
	defer target.DumpSlots.Release()

	target.BeginDump()
	defer target.EndDump()

	path, err := w.writeLocked(ctx, target, kind)
	if err != nil {
		return "", err
	}

	if target.IsQuitting() {
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			slog.Warn("failed to remove partial dump on quit", "path", path, "err", rmErr)
		}
		return "", ErrAbandoned
	}

	if target.Restrack != nil {
		writeRestrackSnapshot(target.Restrack, path)
	}

	slog.Info("core dump generated", "n", target.DumpsCollected()+1, "path", path)
	if target.IncrementDumpsCollected(w.Options.MaxDumps) {
		target.QuitEvent.Set()
	}

	return path, nil
}

// writeRestrackSnapshot groups the target's live allocation set and writes
// it next to the dump just written. A failure here is logged, never
// propagated: the dump itself already succeeded.
func writeRestrackSnapshot(tracker *restrack.Tracker, dumpPath string) {
	groups := tracker.Snapshot(restrack.DefaultSnapshotDepth)
	snapshotPath := restrack.SnapshotPath(dumpPath)
	if err := restrack.WriteSnapshot(snapshotPath, groups); err != nil {
		slog.Warn("failed to write resource tracker snapshot", "path", snapshotPath, "err", err)
	}
}

func (w *Writer) writeLocked(ctx context.Context, target *config.Target, kind types.DumpKind) (string, error) {
	prefix := buildPrefix(w.Options.OutputDir, w.Options.BaseName, target.ProcessName, kind, time.Now())
	dumpPath := nativeDumpPath(prefix, target.Key.PID)

	if _, err := os.Stat(dumpPath); err == nil && !w.Options.Overwrite {
		slog.Info("dump file already exists and was not overwritten", "path", dumpPath)
		return "", ErrExists
	}

	if err := checkWritable(w.Options.OutputDir); err != nil {
		return "", fmt.Errorf("%w: %v", ErrDirNotWritable, err)
	}

	if socketPath, err := managed.DiagnosticsSocketPath(target.Key.PID); err == nil {
		if err := managed.RequestDump(ctx, socketPath, dumpPath); err != nil {
			return "", err
		}
		return dumpPath, nil
	}

	return dumpPath, w.writeNative(target, prefix, dumpPath)
}

// writeNative spawns gcore in its own process group, captures up to
// maxGcoreLines of merged stdout/stderr, and classifies failure from exit
// status, pipe-close status, or a "gcore: failed" substring in the last
// captured line.
func (w *Writer) writeNative(target *config.Target, prefix, dumpPath string) error {
	cmd := exec.Command("gcore", "-o", prefix, fmt.Sprintf("%d", target.Key.PID))
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return err
	}
	target.SetCoreWriterPID(cmd.Process.Pid)
	defer target.SetCoreWriterPID(config.NoCoreWriterPID)

	lines := make([]string, 0, maxGcoreLines)
	scanner := bufio.NewScanner(stdout)
	for len(lines) < maxGcoreLines && scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	// Drain anything past the cap so the child doesn't block on a full pipe.
	go io.Copy(io.Discard, stdout)

	waitErr := cmd.Wait()

	lastLine := ""
	if len(lines) > 0 {
		lastLine = lines[len(lines)-1]
	}
	gcoreFailedMsg := strings.Contains(lastLine, "gcore: failed")

	if waitErr != nil || gcoreFailedMsg {
		slog.Error("an error occurred while generating the core dump")
		for _, l := range lines {
			slog.Error("gcore", "line", l)
		}
		if waitErr != nil {
			return fmt.Errorf("%w: %v", ErrGcoreFailed, waitErr)
		}
		return ErrGcoreFailed
	}

	// On WSL2 there is a delay between the core dump being written to
	// disk and being able to access it, hence the brief poll.
	time.Sleep(1 * time.Second)
	if _, err := os.Stat(dumpPath); err != nil {
		return fmt.Errorf("%w: dump file not found after gcore exit: %v", ErrGcoreFailed, err)
	}

	return nil
}

func checkWritable(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory")
	}
	return unix.Access(dir, unix.W_OK)
}
