//go:build linux

package trigger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/linuxdump/procdump/pkg/procdump/config"
)

func TestCommitUsageMB(t *testing.T) {
	// 1024 pages * 4KiB page size = 4096 KiB = 4 MiB.
	mb := commitUsageMB(1024, 0, 4)
	assert.Equal(t, float64(4), mb)
}

func TestCommitUsageMB_WithSwap(t *testing.T) {
	mb := commitUsageMB(1024, 1024, 4)
	assert.Equal(t, float64(8), mb)
}

func TestCurrentMemoryThreshold_SingleValue(t *testing.T) {
	opts := config.DefaultOptions()
	opts.MemoryThresholdsMB = []int{100}
	target := config.NewTarget(config.TargetKey{PID: 1}, "p")
	assert.Equal(t, 100, currentMemoryThreshold(opts, target))
}

func TestCurrentMemoryThreshold_WalksListAndClamps(t *testing.T) {
	opts := config.DefaultOptions()
	opts.MemoryThresholdsMB = []int{100, 200, 300}
	target := config.NewTarget(config.TargetKey{PID: 1}, "p")

	assert.Equal(t, 100, currentMemoryThreshold(opts, target))
	target.AdvanceMemoryThresholdIndex()
	assert.Equal(t, 200, currentMemoryThreshold(opts, target))
	target.AdvanceMemoryThresholdIndex()
	target.AdvanceMemoryThresholdIndex()
	assert.Equal(t, 300, currentMemoryThreshold(opts, target))
}

func TestCurrentMemoryThreshold_Empty(t *testing.T) {
	opts := config.DefaultOptions()
	target := config.NewTarget(config.TargetKey{PID: 1}, "p")
	assert.Equal(t, 0, currentMemoryThreshold(opts, target))
}
