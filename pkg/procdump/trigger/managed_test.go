//go:build linux

package trigger

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/linuxdump/procdump/pkg/procdump/config"
)

func TestClientDataOutputPath_WithBaseName(t *testing.T) {
	opts := config.DefaultOptions()
	opts.OutputDir = "/dumps"
	opts.BaseName = "mydump"
	assert.Equal(t, "/dumps/mydump", clientDataOutputPath(opts))
}

func TestClientDataOutputPath_NoBaseName(t *testing.T) {
	opts := config.DefaultOptions()
	opts.OutputDir = "/dumps"
	assert.Equal(t, "/dumps/", clientDataOutputPath(opts))
}

func TestRunManagedException_NotManagedProcessFails(t *testing.T) {
	opts := config.DefaultOptions()
	opts.OutputDir = t.TempDir()

	target := config.NewTarget(config.TargetKey{PID: os.Getpid()}, "selftest")
	target.StartMonitoringEvent.Set()

	err := RunManagedException(context.Background(), target, opts)
	assert.Error(t, err)
}
