//go:build linux

package restrack

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// maxCallStackFrames bounds the stack depth the kernel side captures per
// allocation, matching the embedded program's own fixed-size frame buffer.
const maxCallStackFrames = 100

// resourceType values distinguish an allocation record from a free record
// in the ring buffer; the kernel side uses the same two values regardless
// of which libc entry point produced the event.
const (
	resourceTypeAlloc uint32 = 1
	resourceTypeFree  uint32 = 2
)

// wireResourceRecord mirrors the kernel side's struct ResourceInformation
// byte for byte, padding field included: the compiler inserts four bytes
// between ResourceType and AllocSize to align the latter on an 8-byte
// boundary, and encoding/binary has no notion of that unless the struct
// spells it out.
type wireResourceRecord struct {
	AllocAddress uint64
	PID          uint64
	ResourceType uint32
	_            uint32
	AllocSize    uint64
	CallStackLen int64
	StackTrace   [maxCallStackFrames]uint64
}

// resourceRecord is the decoded, Go-shaped form of wireResourceRecord:
// Stack is already trimmed to CallStackLen frames.
type resourceRecord struct {
	AllocAddress uint64
	ResourceType uint32
	AllocSize    uint64
	Stack        []uint64
}

func decodeResourceRecord(raw []byte) (resourceRecord, error) {
	var wire wireResourceRecord
	if err := binary.Read(bytes.NewReader(raw), binary.LittleEndian, &wire); err != nil {
		return resourceRecord{}, fmt.Errorf("restrack: decode ring buffer record: %w", err)
	}

	n := wire.CallStackLen
	if n < 0 {
		n = 0
	}
	if n > int64(len(wire.StackTrace)) {
		n = int64(len(wire.StackTrace))
	}

	return resourceRecord{
		AllocAddress: wire.AllocAddress,
		ResourceType: wire.ResourceType,
		AllocSize:    wire.AllocSize,
		Stack:        append([]uint64(nil), wire.StackTrace[:n]...),
	}, nil
}
