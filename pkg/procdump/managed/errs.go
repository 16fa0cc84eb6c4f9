//go:build linux

package managed

import "errors"

var (
	// ErrNotManaged is returned by DiagnosticsSocketPath when no
	// dotnet-diagnostic-<pid> socket is found for the given PID.
	ErrNotManaged = errors.New("managed: not a managed process")

	// ErrShortResponse is returned by decodeHeader when it is given fewer
	// than ipcHeaderSize bytes.
	ErrShortResponse = errors.New("managed: short diagnostics response")

	// ErrBadMagic is returned when a response header's magic does not
	// match the expected IPC version string.
	ErrBadMagic = errors.New("managed: unexpected diagnostics IPC magic")

	// ErrProfilerAlreadyLoaded surfaces HRESULT 0x8013136A: the runtime
	// already has a profiler attached and refused a second one.
	ErrProfilerAlreadyLoaded = errors.New("managed: profiler already loaded")

	// ErrDumpRequestFailed wraps any other non-zero HRESULT returned for
	// a dump-request command.
	ErrDumpRequestFailed = errors.New("managed: dump request failed")
)
