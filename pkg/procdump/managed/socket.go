//go:build linux

package managed

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// TmpDir returns $TMPDIR if set, else "/tmp".
func TmpDir() string {
	if d := os.Getenv("TMPDIR"); d != "" {
		return d
	}
	return "/tmp"
}

// diagnosticPrefix is the socket-name prefix the .NET runtime uses for its
// diagnostics IPC server, one per process.
func diagnosticPrefix(pid int) string {
	return fmt.Sprintf("%s/dotnet-diagnostic-%d", TmpDir(), pid)
}

// StatusSocketPath is where the orchestrator's status-socket server binds
// for a given target.
func StatusSocketPath(orchestratorPID, targetPID int) string {
	return fmt.Sprintf("%s/procdump/procdump-status-%d-%d", TmpDir(), orchestratorPID, targetPID)
}

// CancelSocketPath is where an injected profiler listens for a cancel
// request, as seen from the profiler's own view of the filesystem.
func CancelSocketPath(targetPID int) string {
	return fmt.Sprintf("%s/procdump/procdump-cancel-%d", TmpDir(), targetPID)
}

// DiagnosticsSocketPath scans /proc/net/unix for a socket path beginning
// with the process's dotnet-diagnostic- prefix, the best-effort way to
// tell whether a target is a managed runtime. Returns ErrNotManaged if
// none is found.
func DiagnosticsSocketPath(pid int) (string, error) {
	f, err := os.Open("/proc/net/unix")
	if err != nil {
		return "", err
	}
	defer f.Close()

	prefix := diagnosticPrefix(pid)

	scanner := bufio.NewScanner(f)
	scanner.Scan() // header line
	for scanner.Scan() {
		path := socketPathFromUnixLine(scanner.Text())
		if path == "" {
			continue
		}
		if strings.HasPrefix(path, prefix) {
			return path, nil
		}
	}
	return "", ErrNotManaged
}

// socketPathFromUnixLine extracts the path column (the 8th whitespace-
// separated field) from one /proc/net/unix line, e.g.:
//
//	0000000000000000: 00000003 00000000 00000000 0001 03 20287 @/tmp/.X11-unix/X0
func socketPathFromUnixLine(line string) string {
	fields := strings.Fields(line)
	if len(fields) < 8 {
		return ""
	}
	path := fields[7]
	return strings.TrimPrefix(path, "@")
}
