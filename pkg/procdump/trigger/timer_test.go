//go:build linux

package trigger

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxdump/procdump/pkg/procdump/config"
	"github.com/linuxdump/procdump/pkg/procdump/dump"
)

func TestRunTimer_FiresImmediatelyAndStops(t *testing.T) {
	fakeGcore(t, "ok")

	opts := config.DefaultOptions()
	opts.OutputDir = t.TempDir()
	opts.MaxDumps = 1
	opts.ThresholdSeconds = 1

	target := config.NewTarget(config.TargetKey{PID: os.Getpid()}, "selftest")
	target.StartMonitoringEvent.Set()

	w := dump.NewWriter(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	start := time.Now()
	err := RunTimer(ctx, target, opts, w)
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.True(t, target.IsQuitting())
	assert.Equal(t, 1, target.DumpsCollected())
	// the first dump must not wait out a cooldown first; the only pause
	// allowed is the writer's one-second wait after gcore exits
	assert.Less(t, elapsed, time.Second+900*time.Millisecond)
}

func TestRunTimer_QuitBeforeStartNeverFires(t *testing.T) {
	fakeGcore(t, "ok")

	opts := config.DefaultOptions()
	opts.OutputDir = t.TempDir()

	target := config.NewTarget(config.TargetKey{PID: os.Getpid()}, "selftest")
	target.QuitEvent.Set()

	w := dump.NewWriter(opts)

	err := RunTimer(context.Background(), target, opts, w)
	require.NoError(t, err)
	assert.Equal(t, 0, target.DumpsCollected())
}
