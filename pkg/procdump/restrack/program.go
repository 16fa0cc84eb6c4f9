//go:build linux

package restrack

import (
	_ "embed"
	"bytes"
	"fmt"

	"github.com/cilium/ebpf"
	"github.com/cilium/ebpf/link"
	"github.com/cilium/ebpf/rlimit"
)

// programObject is the compiled kernel-trace program: uprobes and
// uretprobes on libc's allocation entry points, a per-PID staging map, and
// the ring buffer it reports through. Built out of tree and embedded here
// the same way the managed-runtime profiler is extracted from the binary
// rather than shipped alongside it.
//
//go:embed assets/procdump_ebpf.o
var programObject []byte

const (
	mapRingBuffer = "ringBuffer"

	varTargetPID  = "target_PID"
	varSampleRate = "sampleRate"
)

// probeBinding pairs one libc symbol with the embedded program that traces
// either its entry or its return.
type probeBinding struct {
	symbol   string
	program  string
	isReturn bool
}

var probeBindings = []probeBinding{
	{"mmap", "sys_mmap_enter", false},
	{"mmap", "sys_mmap_exit", true},
	{"munmap", "sys_munmap_enter", false},
	{"munmap", "sys_munmap_exit", true},
	{"malloc", "uprobe_malloc", false},
	{"malloc", "uretprobe_malloc", true},
	{"free", "uprobe_free", false},
	{"free", "uretprobe_free", true},
	{"calloc", "uprobe_calloc", false},
	{"calloc", "uretprobe_calloc", true},
	{"realloc", "uprobe_realloc", false},
	{"realloc", "uretprobe_realloc", true},
	{"reallocarray", "uprobe_reallocarray", false},
	{"reallocarray", "uretprobe_reallocarray", true},
}

// probeSet owns the loaded collection and the uprobe links attached on top
// of it; closing it tears both down in the right order.
type probeSet struct {
	collection *ebpf.Collection
	links      []link.Link
}

// loadProbeSet raises RLIMIT_MEMLOCK, loads the embedded program with the
// target PID and sample rate baked in as its global variables, and attaches
// every entry/return uprobe onto the target's own mapped libc.
func loadProbeSet(targetPID, sampleRate int) (*probeSet, error) {
	if err := rlimit.RemoveMemlock(); err != nil {
		return nil, fmt.Errorf("restrack: raise memlock limit: %w", err)
	}

	spec, err := ebpf.LoadCollectionSpecFromReader(bytes.NewReader(programObject))
	if err != nil {
		return nil, fmt.Errorf("restrack: parse embedded program: %w", err)
	}

	if v, ok := spec.Variables[varTargetPID]; ok {
		if err := v.Set(uint32(targetPID)); err != nil {
			return nil, fmt.Errorf("restrack: set target pid: %w", err)
		}
	}
	if v, ok := spec.Variables[varSampleRate]; ok {
		if err := v.Set(int32(sampleRate)); err != nil {
			return nil, fmt.Errorf("restrack: set sample rate: %w", err)
		}
	}

	collection, err := ebpf.NewCollection(spec)
	if err != nil {
		return nil, fmt.Errorf("restrack: load program into kernel: %w", err)
	}

	libcPath, err := ResolveLibc(targetPID)
	if err != nil {
		collection.Close()
		return nil, fmt.Errorf("restrack: resolve target libc: %w", err)
	}

	ex, err := link.OpenExecutable(libcPath)
	if err != nil {
		collection.Close()
		return nil, fmt.Errorf("restrack: open %s: %w", libcPath, err)
	}

	set := &probeSet{collection: collection}
	for _, b := range probeBindings {
		prog := collection.Programs[b.program]
		if prog == nil {
			set.Close()
			return nil, fmt.Errorf("restrack: embedded program missing %q", b.program)
		}

		var l link.Link
		if b.isReturn {
			l, err = ex.Uretprobe(b.symbol, prog, nil)
		} else {
			l, err = ex.Uprobe(b.symbol, prog, nil)
		}
		if err != nil {
			set.Close()
			return nil, fmt.Errorf("restrack: attach %s on %s: %w", b.program, b.symbol, err)
		}
		set.links = append(set.links, l)
	}

	return set, nil
}

func (p *probeSet) Close() {
	for _, l := range p.links {
		l.Close()
	}
	if p.collection != nil {
		p.collection.Close()
	}
}
