//go:build linux

package managed

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractProfiler_WritesReadOnlyExecutable(t *testing.T) {
	dir := t.TempDir()
	orig := ProfilerDir
	ProfilerDir = dir
	defer func() { ProfilerDir = orig }()

	path, err := ExtractProfiler(1234)
	require.NoError(t, err)
	assert.FileExists(t, path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(profilerFileMode), info.Mode().Perm())
}

func TestExtractProfiler_UniquePerCall(t *testing.T) {
	dir := t.TempDir()
	orig := ProfilerDir
	ProfilerDir = dir
	defer func() { ProfilerDir = orig }()

	p1, err := ExtractProfiler(1)
	require.NoError(t, err)
	p2, err := ExtractProfiler(1)
	require.NoError(t, err)
	assert.NotEqual(t, p1, p2)
}

func TestRemoveProfiler_MissingFileNoError(t *testing.T) {
	dir := t.TempDir()
	err := RemoveProfiler(dir + "/does-not-exist.so")
	assert.NoError(t, err)
}
