package analyzer

import (
	"sync"
	"time"
)

// Span is one timed operation within a trace.
type Span struct {
	SpanID     string    `json:"span_id"`
	TraceID    string    `json:"trace_id"`
	Operation  string    `json:"operation"`
	Status     string    `json:"status"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	DurationMS float64   `json:"duration_ms"`
}

// Tracer groups spans by trace id so one run's timings can be read back
// together. Safe for concurrent use; the two parallel stages record spans
// under the same trace id.
type Tracer struct {
	mu     sync.Mutex
	traces map[string][]Span
}

// NewTracer creates an empty tracer.
func NewTracer() *Tracer {
	return &Tracer{traces: make(map[string][]Span)}
}

// StartSpan begins a span. The returned finish function records the span
// with the given terminal status ("success" or an error kind).
func (t *Tracer) StartSpan(traceID, spanID, operation string) func(status string) {
	start := time.Now()
	return func(status string) {
		end := time.Now()
		t.mu.Lock()
		defer t.mu.Unlock()
		t.traces[traceID] = append(t.traces[traceID], Span{
			SpanID:     spanID,
			TraceID:    traceID,
			Operation:  operation,
			Status:     status,
			StartTime:  start.UTC(),
			EndTime:    end.UTC(),
			DurationMS: float64(end.Sub(start)) / float64(time.Millisecond),
		})
	}
}

// Trace returns all spans recorded for a trace id, in completion order.
func (t *Tracer) Trace(traceID string) []Span {
	t.mu.Lock()
	defer t.mu.Unlock()
	spans := t.traces[traceID]
	out := make([]Span, len(spans))
	copy(out, spans)
	return out
}

// TraceSummary aggregates spans for one trace.
type TraceSummary struct {
	TraceID         string  `json:"trace_id"`
	SpanCount       int     `json:"span_count"`
	TotalDurationMS float64 `json:"total_duration_ms"`
}

// Summary returns aggregate stats for a trace id.
func (t *Tracer) Summary(traceID string) TraceSummary {
	spans := t.Trace(traceID)
	summary := TraceSummary{TraceID: traceID, SpanCount: len(spans)}
	for _, s := range spans {
		summary.TotalDurationMS += s.DurationMS
	}
	return summary
}
