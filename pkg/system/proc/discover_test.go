//go:build linux

package proc

import (
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveName_NotFound(t *testing.T) {
	_, err := ResolveName("no-such-process-xyz-123")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestResolveName_FindsSpawnedChild(t *testing.T) {
	cmd := exec.Command("sleep", "2")
	require.NoError(t, cmd.Start())
	defer func() {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	}()

	// give the kernel a moment to populate /proc/<pid>/comm
	time.Sleep(20 * time.Millisecond)

	pid, err := ResolveName("sleep")
	require.NoError(t, err)
	assert.Equal(t, cmd.Process.Pid, pid)
}

func TestMembersByName_FindsSpawnedChild(t *testing.T) {
	cmd := exec.Command("sleep", "2")
	require.NoError(t, cmd.Start())
	defer func() {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	}()

	time.Sleep(20 * time.Millisecond)

	pids, err := MembersByName("sleep")
	require.NoError(t, err)
	assert.Contains(t, pids, cmd.Process.Pid)
}

func TestMembersByName_NotFound(t *testing.T) {
	_, err := MembersByName("no-such-process-xyz-123")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPGIDMembers_Self(t *testing.T) {
	me := os.Getpid()
	st, err := ReadProcessStat(me)
	require.NoError(t, err)

	members, err := PGIDMembers(st.PGrp)
	require.NoError(t, err)
	assert.Contains(t, members, me)
}

func TestPGIDMembers_NotFound(t *testing.T) {
	_, err := PGIDMembers(999999)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestChildren_NoSuchPid(t *testing.T) {
	_, err := Children(999999)
	require.ErrorIs(t, err, ErrNoChildren)
}
