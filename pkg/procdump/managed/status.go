//go:build linux

package managed

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"

	"github.com/linuxdump/procdump/pkg/procdump/config"
	"github.com/linuxdump/procdump/pkg/procdump/wait"
)

// maxProfilerConnections caps concurrent profiler status callbacks the
// server will service at once.
const maxProfilerConnections = 50

// maxStatusPayload bounds the declared payload length in a status frame;
// anything larger is a malformed or hostile sender and the connection is
// closed without further interpretation.
const maxStatusPayload = 4096

// Status bytes a profiler callback frame can carry.
const (
	statusDumpSucceeded byte = '1'
	statusDumpFailed    byte = '2'
	statusFatal         byte = 'F'
	statusHealthPing    byte = 'H'
)

// StatusServer accepts profiler status callbacks over a Unix domain
// socket: one connection per reported event, framed as a 4-byte payload
// length, one status byte, and (for everything but a health ping) a
// 4-byte dump-path length plus the path itself.
type StatusServer struct {
	SocketPath string
	MaxDumps   int
	conns      *wait.Semaphore
}

// NewStatusServer builds a server bound to socketPath once Serve runs.
func NewStatusServer(socketPath string, maxDumps int) *StatusServer {
	return &StatusServer{
		SocketPath: socketPath,
		MaxDumps:   maxDumps,
		conns:      wait.NewSemaphore(maxProfilerConnections),
	}
}

// Serve binds the status socket with mode 0777, signals target's
// statusReady event, and accepts callbacks until target's quit event
// fires, the dump cap is reached, or the listener is closed by the
// liveness sentinel. It always returns once the listener stops accepting.
func (s *StatusServer) Serve(target *config.Target) error {
	_ = os.Remove(s.SocketPath)
	ln, err := net.Listen("unix", s.SocketPath)
	if err != nil {
		return fmt.Errorf("managed: bind status socket: %w", err)
	}
	if err := os.Chmod(s.SocketPath, 0o777); err != nil {
		ln.Close()
		return fmt.Errorf("managed: chmod status socket: %w", err)
	}
	defer os.Remove(s.SocketPath)

	target.StatusSocketReady().Set()

	go func() {
		<-target.QuitEvent.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("managed: accept status connection: %w", err)
		}

		if !s.conns.TryAcquire() {
			conn.Close()
			continue
		}

		go func() {
			defer s.conns.Release()
			defer conn.Close()
			if done := s.handle(target, conn); done {
				ln.Close()
			}
		}()
	}
}

// handle services one status callback connection and reports whether the
// server should stop accepting further ones (dump cap reached).
func (s *StatusServer) handle(target *config.Target, conn net.Conn) bool {
	var lenBuf [4]byte
	if _, err := io.ReadFull(conn, lenBuf[:]); err != nil {
		return false
	}
	payloadLen := binary.LittleEndian.Uint32(lenBuf[:])
	if payloadLen == 0 || payloadLen > maxStatusPayload {
		slog.Warn("rejecting oversize profiler status payload", "len", payloadLen)
		return false
	}

	var statusBuf [1]byte
	if _, err := io.ReadFull(conn, statusBuf[:]); err != nil {
		return false
	}

	switch statusBuf[0] {
	case statusHealthPing:
		return false
	case statusDumpSucceeded, statusDumpFailed, statusFatal:
	default:
		slog.Warn("unrecognized profiler status byte", "status", statusBuf[0])
		return false
	}

	var pathLenBuf [4]byte
	if _, err := io.ReadFull(conn, pathLenBuf[:]); err != nil {
		return false
	}
	pathLen := binary.LittleEndian.Uint32(pathLenBuf[:])
	if pathLen > maxStatusPayload {
		slog.Warn("rejecting oversize profiler dump path", "len", pathLen)
		return false
	}
	pathBuf := make([]byte, pathLen)
	if _, err := io.ReadFull(conn, pathBuf); err != nil {
		return false
	}
	dumpPath := string(pathBuf)

	switch statusBuf[0] {
	case statusDumpSucceeded:
		slog.Info("core dump generated", "path", dumpPath)
		reachedMax := target.IncrementDumpsCollected(s.MaxDumps)
		if reachedMax {
			target.QuitEvent.Set()
		}
		return reachedMax
	case statusDumpFailed:
		slog.Warn("profiler-reported dump failed", "path", dumpPath)
	case statusFatal:
		slog.Error("profiler reported a fatal error", "path", dumpPath)
	}
	return false
}
