//go:build linux

package proc

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadProcessStatus_Self(t *testing.T) {
	me := os.Getpid()
	st, err := ReadProcessStatus(me)
	require.NoError(t, err)

	assert.Equal(t, me, st.Pid)
	assert.NotEmpty(t, st.Name)
	assert.NotEmpty(t, st.State)
	assert.GreaterOrEqual(t, st.Threads, 1)
	// Real UID should match our own.
	assert.Equal(t, os.Getuid(), st.Uid[0])
	assert.Equal(t, os.Getgid(), st.Gid[0])
}

func TestReadProcessStatus_NoSuchPid(t *testing.T) {
	_, err := ReadProcessStatus(999999)
	require.Error(t, err)
}

func TestParseKBField(t *testing.T) {
	assert.Equal(t, uint64(1024*4), parseKBField("4 kB"))
	assert.Equal(t, uint64(0), parseKBField(""))
}
