//go:build linux

package proc

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// listPids scans /proc for numeric entries and returns them as PIDs.
func listPids() ([]int, error) {
	entries, err := os.ReadDir("/proc")
	if err != nil {
		return nil, err
	}
	pids := make([]int, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if pid, err := strconv.Atoi(e.Name()); err == nil {
			pids = append(pids, pid)
		}
	}
	return pids, nil
}

// ResolveName scans /proc for the first live process whose comm matches
// name (case-insensitive), mirroring LookupProcessPidByName. Returns
// ErrNotFound if no process matches.
func ResolveName(name string) (int, error) {
	pids, err := listPids()
	if err != nil {
		return 0, err
	}
	for _, pid := range pids {
		comm, err := readComm(pid)
		if err != nil {
			continue
		}
		if strings.EqualFold(comm, name) {
			return pid, nil
		}
	}
	return 0, ErrNotFound
}

// PGIDMembers returns every live PID whose process group ID equals pgid.
func PGIDMembers(pgid int) ([]int, error) {
	pids, err := listPids()
	if err != nil {
		return nil, err
	}
	var out []int
	for _, pid := range pids {
		stat, err := ReadProcessStat(pid)
		if err != nil {
			continue
		}
		if stat.PGrp == pgid {
			out = append(out, pid)
		}
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}

// MembersByName returns every live PID whose comm matches name
// (case-insensitive), unlike ResolveName which stops at the first. Used by
// the wait-for-name supervisor mode, which must track every matching
// process rather than exactly one.
func MembersByName(name string) ([]int, error) {
	pids, err := listPids()
	if err != nil {
		return nil, err
	}
	var out []int
	for _, pid := range pids {
		comm, err := readComm(pid)
		if err != nil {
			continue
		}
		if strings.EqualFold(comm, name) {
			out = append(out, pid)
		}
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}

// readComm reads /proc/<pid>/comm, which already carries the bare process
// name with no PID prefix or parentheses.
func readComm(pid int) (string, error) {
	b, err := os.ReadFile(filepath.Join("/proc", strconv.Itoa(pid), "comm"))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

// Children returns the direct child PIDs of pid, read from
// /proc/<pid>/task/*/children. Each children file lists space-separated
// PIDs for that thread's children; results are deduplicated across threads.
func Children(pid int) ([]int, error) {
	glob := filepath.Join("/proc", strconv.Itoa(pid), "task", "*", "children")
	paths, _ := filepath.Glob(glob)
	set := map[int]struct{}{}
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		for _, s := range strings.Fields(string(b)) {
			if id, err := strconv.Atoi(s); err == nil {
				set[id] = struct{}{}
			}
		}
	}
	if len(set) == 0 {
		return nil, ErrNoChildren
	}
	out := make([]int, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out, nil
}
