//go:build linux

package dump

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/linuxdump/procdump/pkg/types"
)

// sanitize replaces every non-alphanumeric rune in a process name with an
// underscore, grounded on the original tool's own sanitize().
func sanitize(processName string) string {
	var b strings.Builder
	b.Grow(len(processName))
	for _, r := range processName {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

// buildPrefix assembles the gcore output prefix: <dir>/<base> when a
// base name is configured, else
// <dir>/<sanitized_proc>_<kind>_<timestamp>. The PID suffix that turns
// this into the final dump file name is appended by the external
// core-writer, not here.
func buildPrefix(dir, baseName, procName string, kind types.DumpKind, now time.Time) string {
	if baseName != "" {
		return filepath.Join(dir, baseName)
	}
	stamp := now.Format("2006-01-02_15:04:05")
	name := fmt.Sprintf("%s_%s_%s", sanitize(procName), kind, stamp)
	return filepath.Join(dir, name)
}

// nativeDumpPath is the file gcore actually produces: <prefix>.<pid>.
func nativeDumpPath(prefix string, pid int) string {
	return fmt.Sprintf("%s.%d", prefix, pid)
}
