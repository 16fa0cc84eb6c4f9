//go:build linux

// Package restrack attributes native memory growth to call stacks: load a
// small kernel-trace program, attach it to libc's allocation entry points in
// the target process, drain its ring buffer into a live address->allocation
// map, and write that map out as a snapshot next to a dump. The kernel side
// (maps, uprobes, the sampling counter) lives in the embedded object this
// package loads; everything here is the user-space half of that pair.
package restrack
