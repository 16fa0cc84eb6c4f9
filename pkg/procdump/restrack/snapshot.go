//go:build linux

package restrack

import (
	"bufio"
	"fmt"
	"os"

	"github.com/linuxdump/procdump/pkg/types"
)

// SnapshotPath derives the resource-tracker report path from the dump path
// that just succeeded: the dump path plus a ".restrack" suffix.
func SnapshotPath(dumpPath string) string {
	return dumpPath + ".restrack"
}

// WriteSnapshot renders groups as a textual leak report: one block per
// stack group, highest total-bytes first, each frame as a hex address.
func WriteSnapshot(path string, groups []StackGroup) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("restrack: create snapshot file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "resource tracker snapshot: %d stack group(s)\n", len(groups))
	for i, g := range groups {
		fmt.Fprintf(w, "\n[%d] count=%d total_bytes=%d (%s)\n", i, g.Count, g.TotalBytes, types.Bytes(g.TotalBytes).Humanized())
		for _, frame := range g.Stack {
			fmt.Fprintf(w, "    0x%016x\n", frame)
		}
	}
	return w.Flush()
}
