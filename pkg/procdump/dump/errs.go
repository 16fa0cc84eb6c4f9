//go:build linux

package dump

import "errors"

var (
	// ErrAbandoned is returned when the quit event won the race against
	// the dump-slot semaphore: no dump was attempted.
	ErrAbandoned = errors.New("dump: abandoned, quitting")

	// ErrExists is returned when the target path already exists and the
	// overwrite flag was not set.
	ErrExists = errors.New("dump: file already exists")

	// ErrDirNotWritable is returned when the output directory rejects a
	// write probe.
	ErrDirNotWritable = errors.New("dump: output directory not writable")

	// ErrGcoreFailed covers every way the external gcore invocation can
	// fail: non-zero exit, non-zero pclose-equivalent, or the literal
	// "gcore: failed" substring in its own output.
	ErrGcoreFailed = errors.New("dump: gcore failed to generate core dump")
)
