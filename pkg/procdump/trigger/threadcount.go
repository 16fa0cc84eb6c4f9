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

// RunThreadCount monitors num_threads >= threshold, grounded on
// TriggerThreadProcs.c's ThreadCountMonitoringThread.
func RunThreadCount(ctx context.Context, target *config.Target, opts *config.Options, writer *dump.Writer) error {
	threshold := *opts.ThreadCountThreshold

	return Run(ctx, target, opts, writer, types.DumpKindThread, func() (bool, string, error) {
		stat, err := proc.ReadProcessStat(target.Key.PID)
		if err != nil {
			return false, "", err
		}
		fire := stat.NumThreads >= int64(threshold)
		return fire, fmt.Sprintf("Threads: %d", stat.NumThreads), nil
	})
}
