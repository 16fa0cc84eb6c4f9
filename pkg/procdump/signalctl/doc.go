//go:build linux

// Package signalctl implements the process-wide shutdown sequence that
// plain context cancellation cannot finish on its own: a target blocked
// in syscall.Wait4 under ptrace doesn't notice a canceled context, so
// something has to reach in and detach it. Controller is that something.
package signalctl
