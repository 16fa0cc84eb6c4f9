//go:build linux

package trigger

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeGcore installs a shell script named "gcore" on PATH that writes the
// expected <prefix>.<pid> file and exits 0 (or, with failMode "fail",
// prints a failure line and exits 1 without writing), so the dump writer
// can run against these triggers without a real gdb/gcore install.
func fakeGcore(t *testing.T, failMode string) {
	t.Helper()
	dir := t.TempDir()
	script := fmt.Sprintf(`#!/bin/sh
prefix="$2"
pid="$3"
case "%s" in
  fail)
    echo "gcore: failed to generate dump"
    exit 1
    ;;
  *)
    touch "$prefix.$pid"
    echo "gcore: dumped process $pid to $prefix.$pid"
    exit 0
    ;;
esac
`, failMode)
	path := filepath.Join(dir, "gcore")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	t.Setenv("PATH", dir+":"+os.Getenv("PATH"))
}
