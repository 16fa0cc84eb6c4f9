//go:build linux

package proc

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ProcessStat is a point-in-time snapshot of /proc/<pid>/stat, plus the
// derived file-descriptor count. Field names and meanings follow proc(5).
type ProcessStat struct {
	Pid   int
	Comm  string
	State byte
	PPid  int
	PGrp  int

	Session int
	TtyNr   int
	TPgid   int
	Flags   uint32

	Minflt  uint64
	Cminflt uint64
	Majflt  uint64
	Cmajflt uint64

	Utime uint64
	Stime uint64

	Cutime int64
	Cstime int64

	Priority int64
	Nice     int64

	NumThreads  int64
	Itrealvalue int64
	Starttime   uint64

	Vsize uint64
	RSS   int64
	RSSLim uint64

	Startcode  uint64
	Endcode    uint64
	Startstack uint64
	Kstkesp    uint64
	Kstkeip    uint64

	Signal    uint64
	Blocked   uint64
	Sigignore uint64
	Sigcatch  uint64

	Wchan  uint64
	Nswap  uint64
	Cnswap uint64

	ExitSignal int
	Processor  int

	RTPriority uint32
	Policy     uint32

	DelayacctBlkioTicks uint64
	GuestTime           uint64
	CGuestTime          int64

	StartData uint64
	EndData   uint64
	StartBrk  uint64
	ArgStart  uint64
	ArgEnd    uint64
	EnvStart  uint64
	EnvEnd    uint64
	ExitCode  int

	// NumFileDescriptors does not come from /proc/<pid>/stat; it is
	// populated by counting entries under /proc/<pid>/fdinfo.
	NumFileDescriptors int
}

// ReadProcessStat parses /proc/<pid>/stat into a ProcessStat and fills in
// NumFileDescriptors from /proc/<pid>/fdinfo. Single-shot, no retry: a
// failure to open or parse is reported to the caller as an error, not
// retried internally.
func ReadProcessStat(pid int) (*ProcessStat, error) {
	f, err := os.Open(fmt.Sprintf("/proc/%d/stat", pid))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	if !sc.Scan() {
		return nil, ErrNoStat
	}
	line := sc.Text()

	// comm (field 2) is parenthesized and may itself contain spaces or
	// closing parens, so locate pid and comm by the outermost parens
	// rather than by splitting on spaces.
	open := strings.IndexByte(line, '(')
	shut := strings.LastIndexByte(line, ')')
	if open < 0 || shut < 0 || shut < open {
		return nil, ErrNoStat
	}
	pidField := strings.TrimSpace(line[:open])
	comm := line[open+1 : shut]

	rest := strings.Fields(line[shut+2:])

	get := func(idx int) (string, error) {
		if idx >= len(rest) {
			return "", ErrShortStat
		}
		return rest[idx], nil
	}
	u := func(idx int) uint64 {
		s, err := get(idx)
		if err != nil {
			return 0
		}
		v, _ := strconv.ParseUint(s, 10, 64)
		return v
	}
	i := func(idx int) int64 {
		s, err := get(idx)
		if err != nil {
			return 0
		}
		v, _ := strconv.ParseInt(s, 10, 64)
		return v
	}

	pidNum, _ := strconv.Atoi(pidField)

	// rest holds everything after the ") " split: rest[0] is process state
	// (proc(5) field 3), so proc(5) field N sits at rest[N-3].
	stat := &ProcessStat{
		Pid:                 pidNum,
		Comm:                comm,
		PPid:                int(i(1)),
		PGrp:                int(i(2)),
		Session:             int(i(3)),
		TtyNr:               int(i(4)),
		TPgid:               int(i(5)),
		Flags:               uint32(u(6)),
		Minflt:              u(7),
		Cminflt:             u(8),
		Majflt:              u(9),
		Cmajflt:             u(10),
		Utime:               u(11),
		Stime:               u(12),
		Cutime:              i(13),
		Cstime:              i(14),
		Priority:            i(15),
		Nice:                i(16),
		NumThreads:          i(17),
		Itrealvalue:         i(18),
		Starttime:           u(19),
		Vsize:               u(20),
		RSS:                 i(21),
		RSSLim:              u(22),
		Startcode:           u(23),
		Endcode:             u(24),
		Startstack:          u(25),
		Kstkesp:             u(26),
		Kstkeip:             u(27),
		Signal:              u(28),
		Blocked:             u(29),
		Sigignore:           u(30),
		Sigcatch:            u(31),
		Wchan:               u(32),
		Nswap:               u(33),
		Cnswap:              u(34),
		ExitSignal:          int(i(35)),
		Processor:           int(i(36)),
		RTPriority:          uint32(u(37)),
		Policy:              uint32(u(38)),
		DelayacctBlkioTicks: u(39),
		GuestTime:           u(40),
		CGuestTime:          i(41),
		StartData:           u(42),
		EndData:             u(43),
		StartBrk:            u(44),
		ArgStart:            u(45),
		ArgEnd:              u(46),
		EnvStart:            u(47),
		EnvEnd:              u(48),
		ExitCode:            int(i(49)),
	}

	if s, err := get(0); err == nil && len(s) == 1 {
		stat.State = s[0]
	}

	if n, err := FDCount(pid); err == nil {
		stat.NumFileDescriptors = n
	}

	return stat, nil
}
