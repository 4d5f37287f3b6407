package analyzer

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/reimagen/agentarchitecture/internal/core"
)

// Session holds the mutable state of one analysis run. It lives only for the
// duration of a single AnalyzeWorkflow call and is never persisted; the final
// report is what reaches the store.
//
// Each stage writes exactly one of the output fields and no other stage
// overwrites it. The two append-only logs are the only fields touched by both
// parallel stages, so they serialize behind a mutex.
type Session struct {
	SessionID string
	TraceID   string
	CreatedAt time.Time

	// Stage outputs. Written once by the owning stage, read by the merge.
	ParsedSteps        []core.ParsedStep
	RiskAssessments    []core.RiskAssessment
	AutomationAnalyses []core.AutomationAnalysis
	SummaryReport      core.AutomationSummaryReport
	FinalAnalysis      *core.WorkflowAnalysis

	// Latencies in milliseconds; zero means the stage has not run.
	ParserLatency     float64
	RiskLatency       float64
	AutomationLatency float64
	SummaryLatency    float64

	// Parallel phase wall-clock markers.
	ParallelStart time.Time
	ParallelEnd   time.Time

	mu        sync.Mutex
	toolCalls []ToolCall
	errors    []SessionError
}

// ToolCall is one recorded tool invocation.
type ToolCall struct {
	ToolName   string
	DurationMS float64
	StepID     string
	Timestamp  time.Time
}

// SessionError is one recorded stage-local failure.
type SessionError struct {
	Kind      string
	Message   string
	Stage     string
	Timestamp time.Time
}

// NewSession creates a session with fresh identifiers.
func NewSession() (*Session, error) {
	return newSessionWithIDs(uuid.NewString(), uuid.NewString())
}

func newSessionWithIDs(sessionID, traceID string) (*Session, error) {
	if sessionID == "" {
		return nil, core.ErrValidation("EMPTY_SESSION_ID", "session id cannot be empty")
	}
	if traceID == "" {
		return nil, core.ErrValidation("EMPTY_TRACE_ID", "trace id cannot be empty")
	}
	return &Session{
		SessionID: sessionID,
		TraceID:   traceID,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// RecordToolCall appends a tool invocation to the session log.
// Safe for concurrent use.
func (s *Session) RecordToolCall(toolName string, durationMS float64, stepID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toolCalls = append(s.toolCalls, ToolCall{
		ToolName:   toolName,
		DurationMS: durationMS,
		StepID:     stepID,
		Timestamp:  time.Now().UTC(),
	})
}

// RecordError appends a stage-local failure to the session log.
// Safe for concurrent use.
func (s *Session) RecordError(kind, message, stage string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append(s.errors, SessionError{
		Kind:      kind,
		Message:   message,
		Stage:     stage,
		Timestamp: time.Now().UTC(),
	})
}

// ToolCalls returns a copy of the tool-call log.
func (s *Session) ToolCalls() []ToolCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ToolCall, len(s.toolCalls))
	copy(out, s.toolCalls)
	return out
}

// Errors returns a copy of the error log.
func (s *Session) Errors() []SessionError {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SessionError, len(s.errors))
	copy(out, s.errors)
	return out
}
