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

// RunFileDescriptor monitors num_filedescriptors >= threshold, grounded
// on TriggerThreadProcs.c's FileDescriptorCountMonitoringThread.
func RunFileDescriptor(ctx context.Context, target *config.Target, opts *config.Options, writer *dump.Writer) error {
	threshold := *opts.FileDescriptorThreshold

	return Run(ctx, target, opts, writer, types.DumpKindFiledesc, func() (bool, string, error) {
		stat, err := proc.ReadProcessStat(target.Key.PID)
		if err != nil {
			return false, "", err
		}
		fire := stat.NumFileDescriptors >= threshold
		return fire, fmt.Sprintf("File descriptors: %d", stat.NumFileDescriptors), nil
	})
}
