//go:build linux

// Package config holds a monitoring run's immutable Options (what the CLI
// asked for) and each target's mutable Target (counters, events, and
// handles that change over the target's lifetime). Configuration stays
// immutable once parsed; only per-target state mutates.
package config

import "time"

const (
	// MinDumpCount and MaxDumpCount bound -n.
	MinDumpCount = 1
	MaxDumpCount = 100

	// DefaultDumpCount is used when -n is not given.
	DefaultDumpCount = 1

	// DefaultThresholdSeconds is the cooldown between dumps (-s).
	DefaultThresholdSeconds = 10

	// MinPollingInterval is the floor -pf is clamped to.
	MinPollingInterval = 1000 * time.Millisecond

	// DefaultPollingInterval is used when -pf is not given.
	DefaultPollingInterval = MinPollingInterval
)

// Options is the immutable configuration shared by every target a single
// invocation discovers (one, several under a PGID, or an open-ended stream
// under -w). CLI flags bind directly into this struct.
type Options struct {
	// Identity
	ProcessName string
	ProcessID   int
	PGIDMode    bool
	WaitForName bool

	// Thresholds
	CPUThreshold         *int
	CPUTriggerBelowValue bool

	MemoryThresholdsMB      []int
	MemoryTriggerBelowValue bool

	ThreadCountThreshold    *int
	FileDescriptorThreshold *int
	SignalNumber            *int
	TimerEnabled            bool

	ExceptionTrigger bool
	ExceptionFilter  []string

	// GCGeneration and GCHeapThresholdsMB back the managed GC-generation
	// and GC-heap-size triggers. Neither has its own CLI flag (only -e/-f
	// are exposed for the managed exception trigger). Setting either one
	// starts the managed monitor, but that monitor always sends the
	// exception client data: these values are not passed to the GC
	// client-data builders in package managed.
	GCGeneration       *int
	GCHeapThresholdsMB []int

	Restrack bool

	// Sampling
	PollingInterval  time.Duration
	ThresholdSeconds int
	MaxDumps         int

	// Output
	OutputDir string
	BaseName  string
	Overwrite bool

	// Ambient
	LogToSyslog bool
	Debug       bool
}

// DefaultOptions returns an Options populated with the documented
// defaults: one dump, 10s cooldown, 1000ms polling, current directory,
// and the timer trigger enabled (it fires when nothing else is
// configured, per end-to-end scenario 5).
func DefaultOptions() *Options {
	return &Options{
		PollingInterval:  DefaultPollingInterval,
		ThresholdSeconds: DefaultThresholdSeconds,
		MaxDumps:         DefaultDumpCount,
		OutputDir:        ".",
		TimerEnabled:     true,
	}
}

// HasMetricTrigger reports whether any non-timer trigger is configured.
// The supervisor uses this to decide whether the timer trigger should run
// (it is the fallback, not an addition, per scenario 5).
func (o *Options) HasMetricTrigger() bool {
	return o.CPUThreshold != nil ||
		len(o.MemoryThresholdsMB) > 0 ||
		o.ThreadCountThreshold != nil ||
		o.FileDescriptorThreshold != nil ||
		o.SignalNumber != nil ||
		o.ExceptionTrigger ||
		o.GCGeneration != nil ||
		len(o.GCHeapThresholdsMB) > 0
}
