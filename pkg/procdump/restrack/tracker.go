//go:build linux

package restrack

import (
	"encoding/binary"
	"errors"
	"hash/fnv"
	"log/slog"
	"sort"
	"sync"

	"github.com/cilium/ebpf/ringbuf"
)

// DefaultSampleRate keeps every allocation event (1 of every 1); the kernel
// side treats it as a parameter, not a constant, so a future CLI knob can
// thin the stream out without touching the probe.
const DefaultSampleRate = 1

// DefaultSnapshotDepth is how many stack groups a snapshot reports when the
// caller doesn't ask for a specific depth.
const DefaultSnapshotDepth = 10

// liveAllocation is what the tracker remembers about one outstanding
// allocation: its size and the call stack that produced it.
type liveAllocation struct {
	size  uint64
	stack []uint64
}

// StackGroup is one row of a snapshot: every live allocation sharing a
// stack, aggregated.
type StackGroup struct {
	Stack      []uint64
	Count      int
	TotalBytes uint64
}

// Tracker attaches to one target process's allocation entry points and
// maintains a live address->allocation map by draining the kernel side's
// ring buffer in the background. Construction never touches the kernel;
// Start does, and can fail on an old kernel, missing privileges, or a
// missing trace filesystem, in which case the caller is expected to log a
// warning and keep running without resource tracking.
type Tracker struct {
	targetPID  int
	sampleRate int

	mu   sync.Mutex
	live map[uint64]liveAllocation

	probes *probeSet
	reader *ringbuf.Reader
	done   chan struct{}
}

// NewTracker constructs a Tracker for targetPID, not yet attached.
func NewTracker(targetPID int) *Tracker {
	return &Tracker{
		targetPID:  targetPID,
		sampleRate: DefaultSampleRate,
		live:       make(map[uint64]liveAllocation),
	}
}

// Start loads the embedded kernel-trace program, attaches its uprobes to
// the target's libc, and begins draining its ring buffer in the
// background. The returned error is non-fatal to the rest of the system:
// resource tracking is the one optional trigger-adjacent subsystem.
func (t *Tracker) Start() error {
	probes, err := loadProbeSet(t.targetPID, t.sampleRate)
	if err != nil {
		return err
	}

	ringMap, ok := probes.collection.Maps[mapRingBuffer]
	if !ok {
		probes.Close()
		return errRingBufferMapMissing
	}

	reader, err := ringbuf.NewReader(ringMap)
	if err != nil {
		probes.Close()
		return err
	}

	t.probes = probes
	t.reader = reader
	t.done = make(chan struct{})
	go t.run()
	return nil
}

// Stop closes the ring-buffer reader (which unblocks the drain goroutine),
// waits for it to exit, then tears down the uprobes and the collection.
func (t *Tracker) Stop() {
	if t.reader != nil {
		t.reader.Close()
	}
	if t.done != nil {
		<-t.done
	}
	if t.probes != nil {
		t.probes.Close()
	}
}

func (t *Tracker) run() {
	defer close(t.done)
	for {
		record, err := t.reader.Read()
		if err != nil {
			if errors.Is(err, ringbuf.ErrClosed) {
				return
			}
			slog.Warn("restrack: ring buffer read failed, event dropped", "err", err)
			continue
		}

		rec, err := decodeResourceRecord(record.RawSample)
		if err != nil {
			slog.Warn("restrack: malformed ring buffer record dropped", "err", err)
			continue
		}
		t.apply(rec)
	}
}

func (t *Tracker) apply(rec resourceRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if rec.ResourceType == resourceTypeFree {
		// Unknown frees (no matching live entry, e.g. freed memory
		// this tracker never saw allocated) are dropped silently.
		delete(t.live, rec.AllocAddress)
		return
	}

	t.live[rec.AllocAddress] = liveAllocation{size: rec.AllocSize, stack: rec.Stack}
}

// Snapshot groups the current live-allocation set by call stack and
// returns the top depth groups ordered by total bytes, descending. depth
// <= 0 returns every group.
func (t *Tracker) Snapshot(depth int) []StackGroup {
	t.mu.Lock()
	grouped := make(map[uint64]*StackGroup, len(t.live))
	for _, alloc := range t.live {
		h := hashStack(alloc.stack)
		g, ok := grouped[h]
		if !ok {
			g = &StackGroup{Stack: alloc.stack}
			grouped[h] = g
		}
		g.Count++
		g.TotalBytes += alloc.size
	}
	t.mu.Unlock()

	groups := make([]StackGroup, 0, len(grouped))
	for _, g := range grouped {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].TotalBytes != groups[j].TotalBytes {
			return groups[i].TotalBytes > groups[j].TotalBytes
		}
		return groups[i].Count > groups[j].Count
	})

	if depth > 0 && len(groups) > depth {
		groups = groups[:depth]
	}
	return groups
}

func hashStack(stack []uint64) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	for _, frame := range stack {
		binary.LittleEndian.PutUint64(buf[:], frame)
		h.Write(buf[:])
	}
	return h.Sum64()
}
