package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// SanitizingHandler scrubs secrets from records before handing them to the
// wrapped handler. Message text and every string-valued attribute pass
// through the sanitizer, recursively for groups.
type SanitizingHandler struct {
	next      slog.Handler
	sanitizer *Sanitizer
}

// NewSanitizingHandler wraps a handler with secret scrubbing.
func NewSanitizingHandler(next slog.Handler, sanitizer *Sanitizer) *SanitizingHandler {
	return &SanitizingHandler{next: next, sanitizer: sanitizer}
}

// Enabled reports whether the wrapped handler handles records at the level.
func (h *SanitizingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle scrubs the record and forwards it.
func (h *SanitizingHandler) Handle(ctx context.Context, r slog.Record) error {
	scrubbed := slog.NewRecord(r.Time, r.Level, h.sanitizer.Sanitize(r.Message), r.PC)
	r.Attrs(func(a slog.Attr) bool {
		scrubbed.AddAttrs(h.scrubAttr(a))
		return true
	})
	return h.next.Handle(ctx, scrubbed)
}

// WithAttrs returns a handler whose pre-set attrs are scrubbed up front.
func (h *SanitizingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	scrubbed := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		scrubbed[i] = h.scrubAttr(a)
	}
	return &SanitizingHandler{next: h.next.WithAttrs(scrubbed), sanitizer: h.sanitizer}
}

// WithGroup returns a handler with a group opened on the wrapped handler.
func (h *SanitizingHandler) WithGroup(name string) slog.Handler {
	return &SanitizingHandler{next: h.next.WithGroup(name), sanitizer: h.sanitizer}
}

func (h *SanitizingHandler) scrubAttr(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()
	switch a.Value.Kind() {
	case slog.KindString:
		a.Value = slog.StringValue(h.sanitizer.Sanitize(a.Value.String()))
	case slog.KindGroup:
		members := a.Value.Group()
		scrubbed := make([]slog.Attr, len(members))
		for i, m := range members {
			scrubbed[i] = h.scrubAttr(m)
		}
		a.Value = slog.GroupValue(scrubbed...)
	}
	return a
}

const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiYellow = "\033[33m"
	ansiBlue   = "\033[34m"
	ansiCyan   = "\033[36m"
	ansiGray   = "\033[90m"
)

// pipelineKeys are the analysis-context attributes every pipeline log line
// may carry. The pretty handler pins them right after the message, in this
// order, so interleaved lines from the parallel stages stay scannable.
var pipelineKeys = [...]string{"trace_id", "session_id", "workflow_id", "stage"}

// PrettyHandler renders colorized single-line records for interactive runs.
// Pipeline context comes first and dimmed, remaining attrs follow in arrival
// order. Not meant for machine consumption; piped output gets JSON instead.
type PrettyHandler struct {
	mu     sync.Mutex
	w      io.Writer
	level  slog.Level
	attrs  []slog.Attr
	groups []string
}

// NewPrettyHandler creates a pretty handler writing to w.
func NewPrettyHandler(w io.Writer, level slog.Level) *PrettyHandler {
	return &PrettyHandler{w: w, level: level}
}

// Enabled reports whether the handler handles records at the given level.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

// Handle formats and writes one log line.
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs())
	attrs = append(attrs, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		a.Key = h.qualify(a.Key)
		attrs = append(attrs, a)
		return true
	})

	pinned := make(map[string]slog.Attr, len(pipelineKeys))
	rest := make([]slog.Attr, 0, len(attrs))
	for _, a := range attrs {
		if isPipelineKey(a.Key) {
			pinned[a.Key] = a
			continue
		}
		rest = append(rest, a)
	}

	var b strings.Builder
	b.WriteString(r.Time.Format("15:04:05"))
	b.WriteByte(' ')
	b.WriteString(levelTag(r.Level))
	b.WriteByte(' ')
	b.WriteString(r.Message)

	for _, key := range pipelineKeys {
		a, ok := pinned[key]
		if !ok {
			continue
		}
		value := fmt.Sprintf("%v", a.Value.Any())
		if key == "trace_id" || key == "session_id" {
			value = shortID(value)
		}
		fmt.Fprintf(&b, " %s%s=%s%s", ansiGray, key, value, ansiReset)
	}
	for _, a := range rest {
		fmt.Fprintf(&b, " %s%s%s=%v", ansiCyan, a.Key, ansiReset, a.Value.Any())
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintln(h.w, b.String())
	return err
}

// WithAttrs returns a handler with the attrs pre-qualified and appended.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	for _, a := range attrs {
		a.Key = h.qualify(a.Key)
		merged = append(merged, a)
	}
	return &PrettyHandler{w: h.w, level: h.level, attrs: merged, groups: h.groups}
}

// WithGroup returns a handler that prefixes later attr keys with the group.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	groups := make([]string, 0, len(h.groups)+1)
	groups = append(groups, h.groups...)
	groups = append(groups, name)
	return &PrettyHandler{w: h.w, level: h.level, attrs: h.attrs, groups: groups}
}

// qualify prefixes a key with the open groups. Grouped attrs never match the
// pinned pipeline keys, which are always top-level.
func (h *PrettyHandler) qualify(key string) string {
	if len(h.groups) == 0 {
		return key
	}
	return strings.Join(h.groups, ".") + "." + key
}

func isPipelineKey(key string) bool {
	for _, k := range pipelineKeys {
		if key == k {
			return true
		}
	}
	return false
}

// shortID truncates a UUID to its first group, enough to eyeball-match lines
// from the same run.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func levelTag(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return ansiRed + "ERR" + ansiReset
	case level >= slog.LevelWarn:
		return ansiYellow + "WRN" + ansiReset
	case level >= slog.LevelInfo:
		return ansiBlue + "INF" + ansiReset
	default:
		return ansiGray + "DBG" + ansiReset
	}
}
