//go:build linux

package proc

import (
	"fmt"
	"os"
)

// FDCount returns the number of open file descriptors for pid, counted by
// enumerating /proc/<pid>/fdinfo (os.ReadDir never returns "." or "..", so
// the entry count is the descriptor count).
func FDCount(pid int) (int, error) {
	entries, err := os.ReadDir(fmt.Sprintf("/proc/%d/fdinfo", pid))
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}
