//go:build linux

// Package trigger implements the monitoring threads that decide when a
// target process earns a core dump: one file per trigger kind (cpu,
// commit, threadcount, filedesc, timer, signal, managed) plus the shared
// liveness sentinel. The cpu, commit, threadcount and filedesc triggers
// share the wait-then-sample-then-dump loop Run drives; timer runs its own
// fire-and-cool-down loop, signal runs its own ptrace state machine, and
// managed drives the .NET diagnostics/profiler exchange.
package trigger
