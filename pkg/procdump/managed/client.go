//go:build linux

package managed

import (
	"context"
	"encoding/binary"
	"io"
	"net"
)

// RequestDump connects to the diagnostics server at socketPath and asks it
// to write a full dump to dumpPath via the dump-request frame. A non-zero
// HRESULT in the response is returned as a user-level error;
// ErrProfilerAlreadyLoaded is returned verbatim so callers can report it
// distinctly.
func RequestDump(ctx context.Context, socketPath, dumpPath string) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", socketPath)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.Write(buildDumpRequest(dumpPath)); err != nil {
		return err
	}

	respHeader := make([]byte, ipcHeaderSize)
	if _, err := io.ReadFull(conn, respHeader); err != nil {
		return err
	}
	if _, err := decodeHeader(respHeader); err != nil {
		return err
	}

	resultBuf := make([]byte, 4)
	if _, err := io.ReadFull(conn, resultBuf); err != nil {
		return err
	}
	result := int32(binary.LittleEndian.Uint32(resultBuf))
	return interpretHRESULT(result)
}

// AttachProfiler connects to the diagnostics server and asks it to load
// the procdump profiler at profilerPath, passing clientData (the
// semicolon-separated string built by the clientdata.go helpers: trigger
// kind, output path, orchestrator PID, then the trigger's own fields)
// through to the profiler once it is running.
func AttachProfiler(ctx context.Context, socketPath, profilerPath string, timeoutMS uint32, clsid [16]byte, clientData []byte) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", socketPath)
	if err != nil {
		return err
	}
	defer conn.Close()

	frame := buildAttachProfiler(timeoutMS, clsid, profilerPath, clientData)
	if _, err := conn.Write(frame); err != nil {
		return err
	}

	respHeader := make([]byte, ipcHeaderSize)
	if _, err := io.ReadFull(conn, respHeader); err != nil {
		return err
	}
	if _, err := decodeHeader(respHeader); err != nil {
		return err
	}

	resultBuf := make([]byte, 4)
	if _, err := io.ReadFull(conn, resultBuf); err != nil {
		return err
	}
	result := int32(binary.LittleEndian.Uint32(resultBuf))
	return interpretHRESULT(result)
}

