//go:build linux

// Package supervisor runs one monitoring invocation end to end: resolve the
// target or targets the configured discovery mode asks for, build a
// Configuration (a Target plus its running trigger goroutines) for each,
// and keep the tracking set in sync as processes come and go.
package supervisor
