//go:build linux

package dump

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxdump/procdump/pkg/procdump/config"
	"github.com/linuxdump/procdump/pkg/types"
)

// fakeGcore installs a shell script named "gcore" on PATH that writes the
// expected <prefix>.<pid> file and exits 0 (or, with failMode "fail",
// prints a failure line and exits 1 without writing), so writeNative can be
// exercised without a real gdb/gcore install.
func fakeGcore(t *testing.T, failMode string) {
	t.Helper()
	dir := t.TempDir()
	script := fmt.Sprintf(`#!/bin/sh
# args: -o <prefix> <pid>
prefix="$2"
pid="$3"
case "%s" in
  fail)
    echo "gcore: failed to generate dump"
    exit 1
    ;;
  *)
    touch "$prefix.$pid"
    echo "gcore: dumped process $pid to $prefix.$pid"
    exit 0
    ;;
esac
`, failMode)
	path := filepath.Join(dir, "gcore")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	t.Setenv("PATH", dir+":"+os.Getenv("PATH"))
}

func TestWriter_Write_NativeSuccess(t *testing.T) {
	fakeGcore(t, "ok")

	outDir := t.TempDir()
	opts := config.DefaultOptions()
	opts.OutputDir = outDir
	opts.MaxDumps = 2

	target := config.NewTarget(config.TargetKey{PID: os.Getpid()}, "selftest")

	w := NewWriter(opts)
	path, err := w.Write(context.Background(), target, types.DumpKindManual)
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.Equal(t, 1, target.DumpsCollected())
	assert.False(t, target.IsQuitting())
}

func TestWriter_Write_ReachesMaxDumpsSetsQuit(t *testing.T) {
	fakeGcore(t, "ok")

	outDir := t.TempDir()
	opts := config.DefaultOptions()
	opts.OutputDir = outDir
	opts.MaxDumps = 1

	target := config.NewTarget(config.TargetKey{PID: os.Getpid()}, "selftest")

	w := NewWriter(opts)
	_, err := w.Write(context.Background(), target, types.DumpKindManual)
	require.NoError(t, err)
	assert.True(t, target.IsQuitting())
}

func TestWriter_Write_GcoreFails(t *testing.T) {
	fakeGcore(t, "fail")

	outDir := t.TempDir()
	opts := config.DefaultOptions()
	opts.OutputDir = outDir

	target := config.NewTarget(config.TargetKey{PID: os.Getpid()}, "selftest")

	w := NewWriter(opts)
	_, err := w.Write(context.Background(), target, types.DumpKindManual)
	assert.ErrorIs(t, err, ErrGcoreFailed)
}

func TestWriter_Write_ExistingFileWithoutOverwrite(t *testing.T) {
	fakeGcore(t, "ok")

	outDir := t.TempDir()
	opts := config.DefaultOptions()
	opts.OutputDir = outDir
	opts.BaseName = "fixed_name"

	target := config.NewTarget(config.TargetKey{PID: os.Getpid()}, "selftest")
	w := NewWriter(opts)

	existing := nativeDumpPath(filepath.Join(outDir, opts.BaseName), target.Key.PID)
	require.NoError(t, os.WriteFile(existing, []byte("x"), 0o644))

	_, err := w.Write(context.Background(), target, types.DumpKindManual)
	assert.ErrorIs(t, err, ErrExists)
}

func TestWriter_Write_AbandonedWhenAlreadyQuitting(t *testing.T) {
	fakeGcore(t, "ok")

	outDir := t.TempDir()
	opts := config.DefaultOptions()
	opts.OutputDir = outDir

	target := config.NewTarget(config.TargetKey{PID: os.Getpid()}, "selftest")
	target.QuitEvent.Set()

	w := NewWriter(opts)
	_, err := w.Write(context.Background(), target, types.DumpKindManual)
	assert.ErrorIs(t, err, ErrAbandoned)
}
