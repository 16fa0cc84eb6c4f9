//go:build linux

package proc

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFDCount_Self(t *testing.T) {
	me := os.Getpid()
	n, err := FDCount(me)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, 0)

	// Opening another file should not decrease the count.
	f, err := os.Open("/proc/self/status")
	require.NoError(t, err)
	defer f.Close()

	n2, err := FDCount(me)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n2, n)
}

func TestFDCount_NoSuchPid(t *testing.T) {
	_, err := FDCount(999999)
	require.Error(t, err)
}
