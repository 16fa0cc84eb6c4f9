//go:build linux

package managed

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

//go:embed assets/libprocdump_profiler.so
var profilerBytes []byte

// ProfilerDir is the protected directory the profiler shared object is
// extracted into. Only the owner can write to it; the extracted file
// itself is r-x for owner, r for everyone else. A package variable,
// not a constant, so tests can point it at a throwaway directory.
var ProfilerDir = "/var/tmp/procdump-profiler"

const profilerFileMode = 0o544
const profilerDirMode = 0o700

// ExtractProfiler writes the embedded profiler shared object to a fresh
// path under ProfilerDir and returns that path. The path includes the
// orchestrator's PID and a short random suffix so concurrent orchestrator
// runs never collide, strengthening the single-PID-suffix scheme the
// profiler shipped with previously.
func ExtractProfiler(orchestratorPID int) (string, error) {
	if err := os.MkdirAll(ProfilerDir, profilerDirMode); err != nil {
		return "", fmt.Errorf("managed: create profiler directory: %w", err)
	}

	name := fmt.Sprintf("libprocdump_profiler-%d-%s.so", orchestratorPID, uuid.NewString()[:8])
	path := filepath.Join(ProfilerDir, name)

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("managed: remove stale profiler copy: %w", err)
	}

	if err := os.WriteFile(path, profilerBytes, profilerFileMode); err != nil {
		return "", fmt.Errorf("managed: write profiler: %w", err)
	}
	// os.WriteFile applies the umask to the requested mode; force it
	// explicitly so the profiler is never left group/world-writable.
	if err := os.Chmod(path, profilerFileMode); err != nil {
		return "", fmt.Errorf("managed: chmod profiler: %w", err)
	}

	return path, nil
}

// RemoveProfiler deletes a previously extracted profiler copy. Called on
// orchestrator exit; a missing file is not an error.
func RemoveProfiler(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
