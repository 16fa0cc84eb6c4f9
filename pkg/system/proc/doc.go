// Package proc samples a single process's /proc state on Linux: the
// stat(5) and status(5) pseudo-files, open file-descriptor counts, process
// discovery by name or process group, and system uptime. Every read here is
// single-shot with no retry; callers decide what to do with a failure.
//
// None of the functions in this package compute a rate or a percentage —
// that's the trigger threads' job (the CPU trigger, for instance, works
// from a single ProcessStat sample and the system uptime).
package proc
