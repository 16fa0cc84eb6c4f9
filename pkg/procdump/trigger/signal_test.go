//go:build linux

package trigger

import (
	"context"
	"os/exec"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxdump/procdump/pkg/procdump/config"
	"github.com/linuxdump/procdump/pkg/procdump/dump"
)

// TestRunSignal_InterceptsAndContinues exercises the full seize/detach/dump/
// resume cycle against a real spawned child: it sends the child the
// configured signal, expects a dump to land, and expects the child to keep
// running afterward since MaxDumps is 2.
func TestRunSignal_InterceptsAndContinues(t *testing.T) {
	fakeGcore(t, "ok")

	cmd := exec.Command("sleep", "30")
	require.NoError(t, cmd.Start())
	defer func() {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	}()
	time.Sleep(20 * time.Millisecond)

	opts := config.DefaultOptions()
	opts.OutputDir = t.TempDir()
	opts.MaxDumps = 2
	sig := int(syscall.SIGUSR1)
	opts.SignalNumber = &sig

	target := config.NewTarget(config.TargetKey{PID: cmd.Process.Pid}, "sleep")
	target.StartMonitoringEvent.Set()

	w := dump.NewWriter(opts)

	done := make(chan error, 1)
	go func() {
		done <- RunSignal(context.Background(), target, opts, w)
	}()

	// give PTRACE_SEIZE a moment to land before delivering the signal
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, syscall.Kill(cmd.Process.Pid, syscall.SIGUSR1))

	deadline := time.After(5 * time.Second)
	for target.DumpsCollected() < 1 {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for signal-triggered dump")
		case <-time.After(20 * time.Millisecond):
		}
	}

	assert.Equal(t, 1, target.DumpsCollected())
	assert.False(t, target.IsQuitting())

	_ = cmd.Process.Kill()
	_ = cmd.Wait()
	target.MarkTerminated()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("RunSignal did not return after target exited")
	}
}
