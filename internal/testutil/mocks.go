package testutil

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/reimagen/agentarchitecture/internal/core"
)

// MockCall records a call to a mock.
type MockCall struct {
	Method    string
	Args      interface{}
	Timestamp time.Time
}

// MockLLM implements core.LLMClient for testing. Responses are keyed by a
// substring of the system prompt so one mock can serve all pipeline stages;
// unmatched calls fall back to the queue or the default response.
type MockLLM struct {
	name         string
	byPrompt     map[string]string
	queue        []string
	defaultResp  string
	generateFunc func(context.Context, core.GenerateOptions) (string, error)
	err          error
	calls        []MockCall
	mu           sync.Mutex
}

// NewMockLLM creates a new mock LLM client.
func NewMockLLM() *MockLLM {
	return &MockLLM{
		name:        "mock",
		byPrompt:    make(map[string]string),
		defaultResp: "{}",
	}
}

// WithResponseFor registers a response returned when the system prompt
// contains the given marker.
func (m *MockLLM) WithResponseFor(marker, response string) *MockLLM {
	m.byPrompt[marker] = response
	return m
}

// WithQueue sets responses returned in order for calls with no prompt match.
func (m *MockLLM) WithQueue(responses ...string) *MockLLM {
	m.queue = responses
	return m
}

// WithError makes every call fail.
func (m *MockLLM) WithError(err error) *MockLLM {
	m.err = err
	return m
}

// WithGenerateFunc overrides generation entirely.
func (m *MockLLM) WithGenerateFunc(fn func(context.Context, core.GenerateOptions) (string, error)) *MockLLM {
	m.generateFunc = fn
	return m
}

// Name returns the mock name.
func (m *MockLLM) Name() string {
	return m.name
}

// Generate mocks a generation call.
func (m *MockLLM) Generate(ctx context.Context, opts core.GenerateOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, MockCall{Method: "Generate", Args: opts, Timestamp: time.Now()})

	if m.generateFunc != nil {
		return m.generateFunc(ctx, opts)
	}
	if m.err != nil {
		return "", m.err
	}
	for marker, response := range m.byPrompt {
		if marker != "" && strings.Contains(opts.SystemPrompt, marker) {
			return response, nil
		}
	}
	if len(m.queue) > 0 {
		response := m.queue[0]
		m.queue = m.queue[1:]
		return response, nil
	}
	return m.defaultResp, nil
}

// Calls returns recorded calls.
func (m *MockLLM) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// MockStore implements core.WorkflowStore in memory for testing.
type MockStore struct {
	records    map[string]*core.WorkflowRecord
	saveErr    error
	approveErr error
	calls      []MockCall
	mu         sync.Mutex
}

// NewMockStore creates a new in-memory mock store.
func NewMockStore() *MockStore {
	return &MockStore{records: make(map[string]*core.WorkflowRecord)}
}

// WithSaveError makes Save fail.
func (m *MockStore) WithSaveError(err error) *MockStore {
	m.saveErr = err
	return m
}

// WithApproveError makes Approve fail.
func (m *MockStore) WithApproveError(err error) *MockStore {
	m.approveErr = err
	return m
}

// Save mocks persistence.
func (m *MockStore) Save(ctx context.Context, workflowID, originalText string, analysis *core.WorkflowAnalysis) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, MockCall{Method: "Save", Args: workflowID, Timestamp: time.Now()})
	if m.saveErr != nil {
		return m.saveErr
	}

	now := time.Now().UTC()
	if existing, ok := m.records[workflowID]; ok {
		existing.OriginalText = originalText
		existing.Analysis = analysis
		existing.UpdatedAt = now
		return nil
	}
	m.records[workflowID] = &core.WorkflowRecord{
		WorkflowID:     workflowID,
		OriginalText:   originalText,
		Analysis:       analysis,
		ApprovalStatus: core.ApprovalPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return nil
}

// Get mocks retrieval.
func (m *MockStore) Get(ctx context.Context, workflowID string) (*core.WorkflowRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, MockCall{Method: "Get", Args: workflowID, Timestamp: time.Now()})
	record, ok := m.records[workflowID]
	if !ok {
		return nil, core.ErrNotFound(core.CodeWorkflowNotFound, "workflow "+workflowID+" not found")
	}
	copied := *record
	return &copied, nil
}

// Approve mocks the approval transition.
func (m *MockStore) Approve(ctx context.Context, workflowID, approvedBy string) (*core.ApprovalResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, MockCall{Method: "Approve", Args: workflowID, Timestamp: time.Now()})
	if m.approveErr != nil {
		return nil, m.approveErr
	}

	record, ok := m.records[workflowID]
	if !ok {
		return nil, core.ErrNotFound(core.CodeWorkflowNotFound, "workflow "+workflowID+" not found")
	}
	if record.ApprovalStatus != core.ApprovalPending {
		return nil, core.ErrState(core.CodeInvalidState, "workflow "+workflowID+" is not PENDING")
	}

	now := time.Now().UTC()
	record.ApprovalStatus = core.ApprovalApproved
	record.ApprovedBy = approvedBy
	record.ApprovedAt = &now

	return &core.ApprovalResult{
		WorkflowID: workflowID,
		Status:     core.ApprovalApproved,
		ApprovedBy: approvedBy,
		ApprovedAt: now,
	}, nil
}

// List mocks listing.
func (m *MockStore) List(ctx context.Context) ([]core.WorkflowRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, MockCall{Method: "List", Timestamp: time.Now()})
	records := make([]core.WorkflowRecord, 0, len(m.records))
	for _, record := range m.records {
		records = append(records, *record)
	}
	return records, nil
}

// Close is a no-op.
func (m *MockStore) Close() error {
	return nil
}

// Calls returns recorded calls.
func (m *MockStore) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}
