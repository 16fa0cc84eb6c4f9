//go:build linux

package managed

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxdump/procdump/pkg/procdump/config"
)

func TestRunLivenessSentinel_DetectsTargetDeath(t *testing.T) {
	cmd := exec.Command("sleep", "0.05")
	require.NoError(t, cmd.Start())

	target := config.NewTarget(config.TargetKey{PID: cmd.Process.Pid}, "sleep")

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	done := make(chan struct{})
	go func() {
		RunLivenessSentinel(ctx, target, "/nonexistent/status.sock")
		close(done)
	}()

	_ = cmd.Wait()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("sentinel did not notice target death")
	}

	assert.True(t, target.Terminated())
	assert.True(t, target.IsQuitting())
}
