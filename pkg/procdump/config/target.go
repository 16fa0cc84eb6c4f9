//go:build linux

package config

import (
	"sync"
	"sync/atomic"

	"github.com/linuxdump/procdump/pkg/procdump/restrack"
	"github.com/linuxdump/procdump/pkg/procdump/wait"
)

// NoCoreWriterPID is the sentinel Target.CoreWriterPID() returns when no
// external core-writer child is currently running.
const NoCoreWriterPID = -1

// TargetKey uniquely identifies a monitored process across PID reuse, the
// pair the supervisor uses to refuse double-monitoring: (PID, kernel
// start-time ticks).
type TargetKey struct {
	PID       int
	StartTime uint64
}

// Target is the mutable state the supervisor and trigger threads share for
// one monitored process: counters, coordination handles, and the external
// state that changes across the target's lifetime. Options is immutable
// and shared by every Target a single invocation creates.
type Target struct {
	Key         TargetKey
	ProcessName string

	dumpsCollected  atomic.Int32
	dumpsInFlight   atomic.Int32
	terminated      atomic.Bool
	memThresholdIdx atomic.Int32
	coreWriterPID   atomic.Int64

	QuitEvent            *wait.Event
	StartMonitoringEvent *wait.Event
	DumpSlots            *wait.Semaphore

	PtraceMu sync.Mutex

	StatusSocketPath string
	statusReady      *wait.Event

	// Restrack is nil unless -restrack was given and the kernel-trace
	// program attached successfully; the dump writer checks for nil
	// before snapshotting so resource tracking stays fully optional.
	Restrack *restrack.Tracker
}

// NewTarget constructs a Target with its coordination handles initialized:
// quit and start-monitoring are manual-reset events (initially reset),
// the dump-slot semaphore starts at 1, and the core-writer PID sentinel
// is "none".
func NewTarget(key TargetKey, processName string) *Target {
	t := &Target{
		Key:                  key,
		ProcessName:          processName,
		QuitEvent:            wait.NewEvent(false),
		StartMonitoringEvent: wait.NewEvent(false),
		DumpSlots:            wait.NewSemaphore(1),
		statusReady:          wait.NewEvent(false),
	}
	t.coreWriterPID.Store(NoCoreWriterPID)
	return t
}

// DumpsCollected returns the monotonically increasing count of
// successfully written dumps.
func (t *Target) DumpsCollected() int { return int(t.dumpsCollected.Load()) }

// IncrementDumpsCollected records a successful dump and reports whether
// the maximum has now been reached.
func (t *Target) IncrementDumpsCollected(max int) (reachedMax bool) {
	n := t.dumpsCollected.Add(1)
	return int(n) >= max
}

// DumpsInFlight returns the number of dumps currently being written.
func (t *Target) DumpsInFlight() int { return int(t.dumpsInFlight.Load()) }

func (t *Target) BeginDump() { t.dumpsInFlight.Add(1) }
func (t *Target) EndDump()   { t.dumpsInFlight.Add(-1) }

// Terminated reports whether the target process has been observed dead.
func (t *Target) Terminated() bool { return t.terminated.Load() }

// MarkTerminated flags the target as dead. Idempotent.
func (t *Target) MarkTerminated() { t.terminated.Store(true) }

// MemoryThresholdIndex returns the current step into Options'
// ordered MemoryThresholdsMB list, for the multi-step commit trigger.
func (t *Target) MemoryThresholdIndex() int { return int(t.memThresholdIdx.Load()) }

// AdvanceMemoryThresholdIndex moves to the next step after a commit dump
// fires, so successive dumps require successively higher thresholds.
func (t *Target) AdvanceMemoryThresholdIndex() { t.memThresholdIdx.Add(1) }

// CoreWriterPID returns the PID of the currently running external
// core-writer child, or NoCoreWriterPID if none is running.
func (t *Target) CoreWriterPID() int { return int(t.coreWriterPID.Load()) }

// SetCoreWriterPID records (or clears, with NoCoreWriterPID) the external
// core-writer child's PID. The signal controller reads this to know
// whether to SIGKILL a writer's process group on shutdown.
func (t *Target) SetCoreWriterPID(pid int) { t.coreWriterPID.Store(int64(pid)) }

// StatusSocketReady is signaled once the managed-monitor's status-socket
// server has bound and is listening; the profiler injector waits on it
// before attaching so the profiler never reports status to a socket
// nobody is listening on yet.
func (t *Target) StatusSocketReady() *wait.Event { return t.statusReady }

// IsQuitting reports whether this target's quit event has fired.
func (t *Target) IsQuitting() bool { return t.QuitEvent.IsSet() }
