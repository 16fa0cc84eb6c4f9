//go:build linux

package config

import (
	"errors"
	"fmt"
	"os"
	"time"
)

var (
	// ErrNoTarget is returned when neither a PID, a PGID, nor a process
	// name was given.
	ErrNoTarget = errors.New("config: no target specified")

	// ErrDumpCountOutOfRange is returned when -n falls outside
	// [MinDumpCount, MaxDumpCount].
	ErrDumpCountOutOfRange = errors.New("config: dump count out of range")

	// ErrOutputDirNotWritable is returned when the output directory
	// cannot be written to.
	ErrOutputDirNotWritable = errors.New("config: output directory is not writable")
)

// Validate checks configuration boundary conditions and normalizes the
// fields that are clamped rather than rejected. It mutates o in place
// (the polling-interval clamp) and returns an error for anything that
// must fail fast with a usage message.
func (o *Options) Validate() error {
	if o.ProcessID == 0 && o.ProcessName == "" {
		return ErrNoTarget
	}

	if o.MaxDumps == 0 {
		o.MaxDumps = DefaultDumpCount
	}
	if o.MaxDumps < MinDumpCount || o.MaxDumps > MaxDumpCount {
		return fmt.Errorf("%w: %d (must be %d..%d)", ErrDumpCountOutOfRange, o.MaxDumps, MinDumpCount, MaxDumpCount)
	}

	if o.PollingInterval < MinPollingInterval {
		o.PollingInterval = MinPollingInterval
	}

	if o.OutputDir == "" {
		o.OutputDir = "."
	}
	if err := checkWritable(o.OutputDir); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrOutputDirNotWritable, o.OutputDir, err)
	}

	// The timer trigger is the fallback, not an addition: it only runs
	// when nothing else was asked for, per end-to-end scenario 5.
	o.TimerEnabled = !o.HasMetricTrigger()

	return nil
}

func checkWritable(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory")
	}
	probe := dir + "/.procdump-write-check"
	f, err := os.Create(probe)
	if err != nil {
		return err
	}
	_ = f.Close()
	_ = os.Remove(probe)
	return nil
}

// ClampPollingInterval is exposed for callers (e.g. the CLI layer) that
// want to report the clamp before Validate would otherwise silently apply
// it.
func ClampPollingInterval(d time.Duration) time.Duration {
	if d < MinPollingInterval {
		return MinPollingInterval
	}
	return d
}
