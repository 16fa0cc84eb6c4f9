//go:build linux

package restrack

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"
)

// libcPathOverrideEnv lets a test (or an unusual libc layout the scan below
// doesn't recognize) pin the library path directly instead of resolving it
// from /proc.
const libcPathOverrideEnv = "PROCDUMP_RESTRACK_LIBC_PATH"

// ResolveLibc finds the shared C library mapped into the target's address
// space, the file a uprobe has to attach to since "libc.so.6" is a name,
// not a path. It scans /proc/<pid>/maps the same way the diagnostics-socket
// lookup scans /proc/net/unix for a CoreCLR transport: read the whole file,
// walk it line by line, match on a recognizable substring.
func ResolveLibc(pid int) (string, error) {
	if override := os.Getenv(libcPathOverrideEnv); override != "" {
		return override, nil
	}

	data, err := os.ReadFile(fmt.Sprintf("/proc/%d/maps", pid))
	if err != nil {
		return "", fmt.Errorf("restrack: read maps for pid %d: %w", pid, err)
	}

	return parseLibcPath(data)
}

func parseLibcPath(data []byte) (string, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		fields := strings.Fields(line)
		if len(fields) < 6 {
			continue
		}
		path := fields[len(fields)-1]
		base := path
		if idx := strings.LastIndex(base, "/"); idx >= 0 {
			base = base[idx+1:]
		}
		if strings.HasPrefix(base, "libc.so") || strings.HasPrefix(base, "libc-") {
			return path, nil
		}
	}
	return "", fmt.Errorf("restrack: no libc mapping found")
}
