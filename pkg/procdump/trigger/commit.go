//go:build linux

package trigger

import (
	"context"
	"fmt"

	"github.com/linuxdump/procdump/pkg/procdump/config"
	"github.com/linuxdump/procdump/pkg/procdump/dump"
	"github.com/linuxdump/procdump/pkg/system/proc"
	"github.com/linuxdump/procdump/pkg/types"
)

// RunCommit monitors resident memory as ((rss+nswap)*page_size_kib)/1024
// MiB, grounded on TriggerThreadProcs.c's CommitMonitoringThread. When
// several thresholds are configured they are walked in order: each fire
// advances to the next (higher) step so successive dumps require
// successively larger growth.
func RunCommit(ctx context.Context, target *config.Target, opts *config.Options, writer *dump.Writer) error {
	pageSizeKB := float64(proc.PageSize()) / 1024

	return Run(ctx, target, opts, writer, types.DumpKindCommit, func() (bool, string, error) {
		stat, err := proc.ReadProcessStat(target.Key.PID)
		if err != nil {
			return false, "", err
		}

		usageMB := commitUsageMB(stat.RSS, stat.Nswap, pageSizeKB)
		threshold := currentMemoryThreshold(opts, target)

		fire := opts.MemoryTriggerBelowValue && usageMB < float64(threshold) ||
			!opts.MemoryTriggerBelowValue && usageMB >= float64(threshold)
		if fire {
			target.AdvanceMemoryThresholdIndex()
		}
		return fire, fmt.Sprintf("Commit: %.0f MB", usageMB), nil
	})
}

// commitUsageMB converts RSS+swap page counts to MiB: ((rss+nswap) *
// page_size_kib) / 1024.
func commitUsageMB(rssPages int64, nswapPages uint64, pageSizeKB float64) float64 {
	return (float64(rssPages)*pageSizeKB + float64(nswapPages)*pageSizeKB) / 1024
}

// currentMemoryThreshold returns the step Options.MemoryThresholdsMB's
// ordered list is currently on, clamped to the last entry once the list is
// exhausted.
func currentMemoryThreshold(opts *config.Options, target *config.Target) int {
	if len(opts.MemoryThresholdsMB) == 0 {
		return 0
	}
	idx := target.MemoryThresholdIndex()
	if idx >= len(opts.MemoryThresholdsMB) {
		idx = len(opts.MemoryThresholdsMB) - 1
	}
	return opts.MemoryThresholdsMB[idx]
}
