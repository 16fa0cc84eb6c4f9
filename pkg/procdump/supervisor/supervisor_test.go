//go:build linux

package supervisor

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/linuxdump/procdump/pkg/procdump/config"
	"github.com/linuxdump/procdump/pkg/procdump/dump"
)

type fakeRegistry struct {
	registered   []config.TargetKey
	unregistered []config.TargetKey
}

func (f *fakeRegistry) Register(t *config.Target)   { f.registered = append(f.registered, t.Key) }
func (f *fakeRegistry) Unregister(t *config.Target) { f.unregistered = append(f.unregistered, t.Key) }

func TestNew_BuildsWriterFromOptions(t *testing.T) {
	opts := config.DefaultOptions()
	s := New(opts)
	require.NotNil(t, s.Writer)
	require.Same(t, opts, s.Options)
}

func TestRunSingle_ResolvesByPIDAndRegistersThenUnregisters(t *testing.T) {
	cmd := exec.Command("sleep", "2")
	require.NoError(t, cmd.Start())
	t.Cleanup(func() { _ = cmd.Process.Kill() })

	opts := config.DefaultOptions()
	opts.TimerEnabled = false
	opts.ProcessID = cmd.Process.Pid

	reg := &fakeRegistry{}
	s := &Supervisor{Options: opts, Writer: dump.NewWriter(opts), Registry: reg}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- s.runSingle(ctx) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("runSingle did not return once no triggers were active")
	}

	require.Len(t, reg.registered, 1)
	require.Len(t, reg.unregistered, 1)
	require.Equal(t, reg.registered[0], reg.unregistered[0])
}

func TestRunSingle_UnknownProcessNameReturnsError(t *testing.T) {
	opts := config.DefaultOptions()
	opts.ProcessName = "definitely-not-a-real-process-xyz"

	s := &Supervisor{Options: opts, Writer: dump.NewWriter(opts)}
	err := s.runSingle(context.Background())
	require.Error(t, err)
}
