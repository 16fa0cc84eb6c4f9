//go:build linux

// Package logging adds an optional syslog sink on top of the default
// slog handler, the Go counterpart to Logging.c's dual stdout/syslog
// LogFormatter.
package logging

import (
	"context"
	"fmt"
	"log/slog"
	"log/syslog"
	"strings"
	"sync"
)

// sink is the subset of *syslog.Writer a syslogHandler needs, pulled out
// as an interface so the record-formatting and level-dispatch logic can be
// tested without a live syslog daemon.
type sink interface {
	Debug(m string) error
	Info(m string) error
	Warning(m string) error
	Err(m string) error
}

// syslogHandler wraps another slog.Handler and duplicates every record it
// handles to a sink, both writes serialized under one mutex so a single
// record is never interleaved with another — the Go counterpart to
// Logging.c's LoggerLock around its dual stdout/syslog write.
type syslogHandler struct {
	mu    *sync.Mutex
	inner slog.Handler
	sink  sink
	attrs []slog.Attr
}

// EnableSyslog connects to the local syslog daemon under the given tag and
// installs a handler that duplicates the current default handler's output
// there, then makes it the new slog default. The returned func closes the
// syslog connection; callers should defer it.
func EnableSyslog(tag string) (func() error, error) {
	w, err := syslog.New(syslog.LOG_INFO|syslog.LOG_DAEMON, tag)
	if err != nil {
		return nil, fmt.Errorf("logging: connect to syslog: %w", err)
	}

	h := newSyslogHandler(slog.Default().Handler(), w)
	slog.SetDefault(slog.New(h))
	return w.Close, nil
}

func newSyslogHandler(inner slog.Handler, s sink) *syslogHandler {
	return &syslogHandler{mu: &sync.Mutex{}, inner: inner, sink: s}
}

func (h *syslogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *syslogHandler) Handle(ctx context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	innerErr := h.inner.Handle(ctx, r)
	if len(h.attrs) > 0 {
		withAttrs := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
		withAttrs.AddAttrs(h.attrs...)
		r.Attrs(func(a slog.Attr) bool {
			withAttrs.AddAttrs(a)
			return true
		})
		r = withAttrs
	}
	sysErr := writeToSink(h.sink, r)

	if innerErr != nil {
		return innerErr
	}
	return sysErr
}

// formatRecord renders a record as "message key=value ...", the same shape
// Logging.c's LogFormatter builds by hand with snprintf.
func formatRecord(r slog.Record) string {
	var b strings.Builder
	b.WriteString(r.Message)
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value)
		return true
	})
	return b.String()
}

// writeToSink sends the formatted record to the sink method matching its
// slog level, least-severe levels (below Info, i.e. Debug) falling back to
// the sink's own Debug.
func writeToSink(s sink, r slog.Record) error {
	msg := formatRecord(r)
	switch {
	case r.Level >= slog.LevelError:
		return s.Err(msg)
	case r.Level >= slog.LevelWarn:
		return s.Warning(msg)
	case r.Level >= slog.LevelInfo:
		return s.Info(msg)
	default:
		return s.Debug(msg)
	}
}

func (h *syslogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := append(h.attrs[:len(h.attrs):len(h.attrs)], attrs...)
	return &syslogHandler{mu: h.mu, inner: h.inner.WithAttrs(attrs), sink: h.sink, attrs: merged}
}

func (h *syslogHandler) WithGroup(name string) slog.Handler {
	return &syslogHandler{mu: h.mu, inner: h.inner.WithGroup(name), sink: h.sink, attrs: h.attrs}
}
