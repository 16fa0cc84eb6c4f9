//go:build linux

package supervisor

import (
	"context"

	"github.com/linuxdump/procdump/pkg/procdump/config"
	"github.com/linuxdump/procdump/pkg/procdump/dump"
	"github.com/linuxdump/procdump/pkg/procdump/trigger"
)

// triggerFunc is the shape every threshold trigger shares; the managed
// trigger is started separately since it doesn't take a writer.
type triggerFunc func(ctx context.Context, target *config.Target, opts *config.Options, writer *dump.Writer) error

// activeTriggers returns every trigger function Options asks for. The
// timer trigger is already resolved to "fallback only" by
// Options.Validate, so it's included here exactly when TimerEnabled is set.
func activeTriggers(opts *config.Options) []triggerFunc {
	var triggers []triggerFunc

	if opts.CPUThreshold != nil {
		triggers = append(triggers, trigger.RunCPU)
	}
	if len(opts.MemoryThresholdsMB) > 0 {
		triggers = append(triggers, trigger.RunCommit)
	}
	if opts.ThreadCountThreshold != nil {
		triggers = append(triggers, trigger.RunThreadCount)
	}
	if opts.FileDescriptorThreshold != nil {
		triggers = append(triggers, trigger.RunFileDescriptor)
	}
	if opts.SignalNumber != nil {
		triggers = append(triggers, trigger.RunSignal)
	}
	if opts.TimerEnabled {
		triggers = append(triggers, trigger.RunTimer)
	}

	return triggers
}

// hasManagedTrigger reports whether a managed-runtime trigger (exception
// filter, GC generation, or GC heap thresholds) was configured.
func hasManagedTrigger(opts *config.Options) bool {
	return opts.ExceptionTrigger || opts.GCGeneration != nil || len(opts.GCHeapThresholdsMB) > 0
}
