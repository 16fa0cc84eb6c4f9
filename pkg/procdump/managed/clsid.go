//go:build linux

package managed

import (
	"encoding/binary"
	"encoding/hex"
	"strings"
)

// DefaultAttachTimeoutMS bounds how long the target's runtime waits for
// the profiler attach to complete before giving up.
const DefaultAttachTimeoutMS = 5000

// ProfilerCLSID is the fixed CLSID the exception/GC profiler registers
// itself under, encoded in .NET's GUID byte order: Data1/Data2/Data3
// little-endian, Data4 copied verbatim as big-endian bytes.
var ProfilerCLSID = mustParseCLSID("0681277a-902a-4fe0-9a6d-6a2a6b4d8c7e")

func mustParseCLSID(s string) [16]byte {
	raw, err := hex.DecodeString(strings.ReplaceAll(s, "-", ""))
	if err != nil || len(raw) != 16 {
		panic("managed: invalid CLSID literal")
	}
	var out [16]byte
	binary.LittleEndian.PutUint32(out[0:4], binary.BigEndian.Uint32(raw[0:4]))
	binary.LittleEndian.PutUint16(out[4:6], binary.BigEndian.Uint16(raw[4:6]))
	binary.LittleEndian.PutUint16(out[6:8], binary.BigEndian.Uint16(raw[6:8]))
	copy(out[8:16], raw[8:16])
	return out
}
