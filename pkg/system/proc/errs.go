package proc

import "errors"

var (
	// ErrNoStat indicates that /proc/<pid>/stat was empty, missing, or
	// malformed (no ") " delimiter found for the comm field).
	ErrNoStat = errors.New("proc: malformed or empty stat")

	// ErrShortStat indicates /proc/<pid>/stat had fewer numeric fields
	// than the stat(5) layout requires.
	ErrShortStat = errors.New("proc: short stat")

	// ErrNoStatus indicates /proc/<pid>/status was empty or missing.
	ErrNoStatus = errors.New("proc: malformed or empty status")

	// ErrNoChildren indicates /proc/<pid>/task/*/children contained none.
	ErrNoChildren = errors.New("proc: no children")

	// ErrNotFound indicates the target PID, PGID, or name could not be
	// resolved to any live process.
	ErrNotFound = errors.New("proc: not found")
)
