//go:build linux

package restrack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_ApplyAllocThenFreeClearsLiveSet(t *testing.T) {
	tr := NewTracker(1)
	tr.apply(resourceRecord{AllocAddress: 0x1000, ResourceType: resourceTypeAlloc, AllocSize: 64, Stack: []uint64{0xaa, 0xbb}})
	require.Len(t, tr.Snapshot(0), 1)

	tr.apply(resourceRecord{AllocAddress: 0x1000, ResourceType: resourceTypeFree})
	assert.Empty(t, tr.Snapshot(0))
}

func TestTracker_ApplyUnknownFreeIsSilentlyDropped(t *testing.T) {
	tr := NewTracker(1)
	tr.apply(resourceRecord{AllocAddress: 0x9999, ResourceType: resourceTypeFree})
	assert.Empty(t, tr.Snapshot(0))
}

func TestTracker_SnapshotGroupsBySharedStack(t *testing.T) {
	tr := NewTracker(1)
	sharedStack := []uint64{0x10, 0x20, 0x30}
	tr.apply(resourceRecord{AllocAddress: 0x1, ResourceType: resourceTypeAlloc, AllocSize: 100, Stack: sharedStack})
	tr.apply(resourceRecord{AllocAddress: 0x2, ResourceType: resourceTypeAlloc, AllocSize: 200, Stack: sharedStack})
	tr.apply(resourceRecord{AllocAddress: 0x3, ResourceType: resourceTypeAlloc, AllocSize: 50, Stack: []uint64{0xff}})

	groups := tr.Snapshot(0)
	require.Len(t, groups, 2)
	// Highest total bytes sorts first.
	assert.Equal(t, 2, groups[0].Count)
	assert.Equal(t, uint64(300), groups[0].TotalBytes)
	assert.Equal(t, 1, groups[1].Count)
	assert.Equal(t, uint64(50), groups[1].TotalBytes)
}

func TestTracker_SnapshotDepthTrimsToTopN(t *testing.T) {
	tr := NewTracker(1)
	for i := 0; i < 5; i++ {
		tr.apply(resourceRecord{
			AllocAddress: uint64(i + 1),
			ResourceType: resourceTypeAlloc,
			AllocSize:    uint64(i + 1),
			Stack:        []uint64{uint64(i)},
		})
	}

	groups := tr.Snapshot(2)
	assert.Len(t, groups, 2)
	// Largest allocation (5 bytes, distinct stack) sorts to the front.
	assert.Equal(t, uint64(5), groups[0].TotalBytes)
}

func TestHashStack_DifferentStacksHashDifferently(t *testing.T) {
	a := hashStack([]uint64{1, 2, 3})
	b := hashStack([]uint64{1, 2, 4})
	assert.NotEqual(t, a, b)
}

func TestHashStack_SameStackHashesSame(t *testing.T) {
	a := hashStack([]uint64{1, 2, 3})
	b := hashStack([]uint64{1, 2, 3})
	assert.Equal(t, a, b)
}
