//go:build linux

package trigger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxdump/procdump/pkg/procdump/config"
)

func TestWaitForQuitOrStart_StartWins(t *testing.T) {
	target := config.NewTarget(config.TargetKey{PID: 1}, "p")
	target.StartMonitoringEvent.Set()

	started, err := waitForQuitOrStart(context.Background(), target)
	require.NoError(t, err)
	assert.True(t, started)
}

func TestWaitForQuitOrStart_QuitWins(t *testing.T) {
	target := config.NewTarget(config.TargetKey{PID: 1}, "p")
	target.QuitEvent.Set()

	started, err := waitForQuitOrStart(context.Background(), target)
	require.NoError(t, err)
	assert.False(t, started)
}

func TestWaitForQuitOrTimeout_TimesOut(t *testing.T) {
	target := config.NewTarget(config.TargetKey{PID: 1}, "p")
	quitWon, err := waitForQuitOrTimeout(context.Background(), target, 10*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, quitWon)
}

func TestWaitForQuitOrTimeout_QuitWins(t *testing.T) {
	target := config.NewTarget(config.TargetKey{PID: 1}, "p")
	target.QuitEvent.Set()
	quitWon, err := waitForQuitOrTimeout(context.Background(), target, time.Second)
	require.NoError(t, err)
	assert.True(t, quitWon)
}
