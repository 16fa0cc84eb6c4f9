//go:build linux

package trigger

import (
	"context"
	"fmt"

	"github.com/linuxdump/procdump/pkg/procdump/config"
	"github.com/linuxdump/procdump/pkg/procdump/dump"
	"github.com/linuxdump/procdump/pkg/system/proc"
	"github.com/linuxdump/procdump/pkg/system/util"
	"github.com/linuxdump/procdump/pkg/types"
)

// RunCPU monitors %CPU as (utime+stime)/clk_tck divided by
// uptime-starttime/clk_tck, grounded on TriggerThreadProcs.c's
// CpuMonitoringThread.
func RunCPU(ctx context.Context, target *config.Target, opts *config.Options, writer *dump.Writer) error {
	threshold := *opts.CPUThreshold
	ticks := float64(proc.ClockTicks())

	return Run(ctx, target, opts, writer, types.DumpKindCPU, func() (bool, string, error) {
		stat, err := proc.ReadProcessStat(target.Key.PID)
		if err != nil {
			return false, "", err
		}
		uptime, err := proc.Uptime()
		if err != nil {
			return false, "", err
		}

		cpuUsage, ok := cpuUsagePercent(float64(stat.Utime+stat.Stime), float64(stat.Starttime), ticks, uptime)
		if !ok {
			return false, "", nil
		}

		fire := opts.CPUTriggerBelowValue && cpuUsage < threshold ||
			!opts.CPUTriggerBelowValue && cpuUsage >= threshold
		return fire, fmt.Sprintf("CPU: %d%%", cpuUsage), nil
	})
}

// cpuUsagePercent computes %CPU from raw tick counts: ok is false when
// elapsed time is non-positive (process just started, clock skew) and no
// usable percentage can be derived.
func cpuUsagePercent(cpuTimeTicks, startTimeTicks, clkTck, uptimeSec float64) (usage int, ok bool) {
	totalTime := cpuTimeTicks / clkTck
	elapsed := uptimeSec - startTimeTicks/clkTck
	if elapsed <= 0 {
		return 0, false
	}
	return int(100 * util.SafeDiv(totalTime, elapsed)), true
}
