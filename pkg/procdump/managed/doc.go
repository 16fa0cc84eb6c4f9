//go:build linux

// Package managed talks to a .NET runtime's diagnostics IPC server over a
// Unix domain socket: discovering the socket, encoding/decoding the
// little-endian wire frames, and issuing a dump-request. The status-socket
// server and profiler-injection half of managed monitoring live alongside
// this package's client code since both sides speak the same frame shape.
package managed
