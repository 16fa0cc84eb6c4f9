//go:build linux

package managed

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"unicode/utf16"
)

const (
	ipcMagic      = "DOTNET_IPC_V1\x00"
	ipcHeaderSize = 20 // magic(14) + size(2) + commandSet(1) + commandId(1) + reserved(2)

	commandSetDump    = 0x01
	commandIDGenerate = 0x01

	commandSetProfiler = 0x03
	commandIDAttach    = 0x01

	dumpTypeFull    = 4
	dumpLoggingOff  = 0
	profilerAlreadyLoadedHRESULT = 0x8013136A
)

// ipcHeader is the 20-byte frame header every diagnostics IPC message
// starts with. Size carries the total packet length (header + payload),
// not the header's own length — the response to a dump request is exactly
// ipcHeaderSize+4 (one int32 result), which is where the protocol's
// well-known "24" comes from.
type ipcHeader struct {
	Size       uint16
	CommandSet uint8
	CommandID  uint8
	Reserved   uint16
}

func encodeHeader(totalSize uint16, commandSet, commandID uint8) []byte {
	buf := make([]byte, ipcHeaderSize)
	copy(buf, ipcMagic)
	binary.LittleEndian.PutUint16(buf[14:16], totalSize)
	buf[16] = commandSet
	buf[17] = commandID
	binary.LittleEndian.PutUint16(buf[18:20], 0)
	return buf
}

func decodeHeader(buf []byte) (ipcHeader, error) {
	if len(buf) < ipcHeaderSize {
		return ipcHeader{}, ErrShortResponse
	}
	if !bytes.Equal(buf[:14], []byte(ipcMagic)) {
		return ipcHeader{}, ErrBadMagic
	}
	return ipcHeader{
		Size:       binary.LittleEndian.Uint16(buf[14:16]),
		CommandSet: buf[16],
		CommandID:  buf[17],
		Reserved:   binary.LittleEndian.Uint16(buf[18:20]),
	}, nil
}

func utf16LEWithNUL(s string) []byte {
	units := utf16.Encode([]rune(s))
	units = append(units, 0)
	buf := make([]byte, len(units)*2)
	for i, u := range units {
		binary.LittleEndian.PutUint16(buf[i*2:i*2+2], u)
	}
	return buf
}

// buildDumpRequest assembles the dump-request frame: header, then a
// 4-byte UTF-16 code-unit length (including the NUL terminator),
// the UTF-16 path itself, a 4-byte dump type, and a 4-byte logging-flags
// word. Full-dump, logging-off are the only values the orchestrator ever
// requests.
func buildDumpRequest(dumpPath string) []byte {
	pathUTF16 := utf16LEWithNUL(dumpPath)
	pathLen := uint32(len(pathUTF16) / 2)

	payload := make([]byte, 0, 4+len(pathUTF16)+4+4)
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], pathLen)
	payload = append(payload, lenBuf[:]...)
	payload = append(payload, pathUTF16...)

	var dumpTypeBuf, loggingBuf [4]byte
	binary.LittleEndian.PutUint32(dumpTypeBuf[:], dumpTypeFull)
	binary.LittleEndian.PutUint32(loggingBuf[:], dumpLoggingOff)
	payload = append(payload, dumpTypeBuf[:]...)
	payload = append(payload, loggingBuf[:]...)

	total := ipcHeaderSize + len(payload)
	header := encodeHeader(uint16(total), commandSetDump, commandIDGenerate)
	return append(header, payload...)
}

// buildAttachProfiler assembles the attach-profiler frame: header,
// 4-byte attach timeout, 16-byte CLSID, 4-byte path length,
// UTF-16 profiler path, 4-byte client-data length, client-data bytes
// (the "<kind>;<output-path>;<orchestrator-pid>;..." string built in
// clientdata.go).
func buildAttachProfiler(timeoutMS uint32, clsid [16]byte, profilerPath string, clientData []byte) []byte {
	pathUTF16 := utf16LEWithNUL(profilerPath)
	pathLen := uint32(len(pathUTF16) / 2)

	payload := make([]byte, 0, 4+16+4+len(pathUTF16)+4+len(clientData))
	var u32 [4]byte

	binary.LittleEndian.PutUint32(u32[:], timeoutMS)
	payload = append(payload, u32[:]...)
	payload = append(payload, clsid[:]...)

	binary.LittleEndian.PutUint32(u32[:], pathLen)
	payload = append(payload, u32[:]...)
	payload = append(payload, pathUTF16...)

	binary.LittleEndian.PutUint32(u32[:], uint32(len(clientData)))
	payload = append(payload, u32[:]...)
	payload = append(payload, clientData...)

	total := ipcHeaderSize + len(payload)
	header := encodeHeader(uint16(total), commandSetProfiler, commandIDAttach)
	return append(header, payload...)
}

func interpretHRESULT(res int32) error {
	if res == 0 {
		return nil
	}
	if uint32(res) == profilerAlreadyLoadedHRESULT {
		return ErrProfilerAlreadyLoaded
	}
	return fmt.Errorf("%w: hresult 0x%x", ErrDumpRequestFailed, uint32(res))
}
