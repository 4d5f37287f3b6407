package core

import (
	"context"
	"time"
)

// =============================================================================
// LLM Port
// =============================================================================

// GenerateOptions configures a single LLM generation call.
type GenerateOptions struct {
	SystemPrompt string
	UserPrompt   string
	Model        string
	JSONMode     bool
	Timeout      time.Duration
}

// LLMClient is the external model capability consumed by the analysis stages.
// Implementations are fallible and give no schema guarantee on the returned
// text; callers must defensively strip code fences before JSON decoding.
type LLMClient interface {
	// Name returns the provider identifier (e.g., "gemini").
	Name() string

	// Generate produces raw text for the given prompts.
	Generate(ctx context.Context, opts GenerateOptions) (string, error)
}

// =============================================================================
// Store Port
// =============================================================================

// WorkflowRecord is the persisted form of an analysis plus its review state.
type WorkflowRecord struct {
	WorkflowID     string             `json:"workflow_id"`
	WorkflowName   string             `json:"workflow_name,omitempty"`
	OriginalText   string             `json:"original_text"`
	Analysis       *WorkflowAnalysis  `json:"analysis"`
	ApprovalStatus ApprovalStatus     `json:"approval_status"`
	ApprovedBy     string             `json:"approved_by,omitempty"`
	ApprovedAt     *time.Time         `json:"approved_at,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
	OrgChart       *AgentOrgChart     `json:"org_chart,omitempty"`
	AgentRegistry  *AgentCardRegistry `json:"agent_registry,omitempty"`
	ToolRegistry   *ToolRegistry      `json:"tool_registry,omitempty"`
}

// ApprovalResult is returned by an approval transition. Synthesis outputs may
// be nil when org-chart synthesis failed; the approval itself still holds.
type ApprovalResult struct {
	WorkflowID    string             `json:"workflow_id"`
	Status        ApprovalStatus     `json:"approval_status"`
	ApprovedBy    string             `json:"approved_by"`
	ApprovedAt    time.Time          `json:"approved_at"`
	OrgChart      *AgentOrgChart     `json:"org_chart,omitempty"`
	AgentRegistry *AgentCardRegistry `json:"agent_registry,omitempty"`
	ToolRegistry  *ToolRegistry      `json:"tool_registry,omitempty"`
}

// WorkflowStore persists analyses and owns the approval state machine.
// The orchestrator treats Save as best-effort; everything else is consumed
// by the CLI and HTTP adapters.
type WorkflowStore interface {
	// Save upserts an analysis. A fresh record starts in PENDING state.
	Save(ctx context.Context, workflowID, originalText string, analysis *WorkflowAnalysis) error

	// Get returns the stored record, or a NOT_FOUND domain error.
	Get(ctx context.Context, workflowID string) (*WorkflowRecord, error)

	// Approve transitions PENDING -> APPROVED and triggers org-chart
	// synthesis server-side. Fails with NOT_FOUND or INVALID_STATE.
	Approve(ctx context.Context, workflowID, approvedBy string) (*ApprovalResult, error)

	// List returns all stored records, newest first.
	List(ctx context.Context) ([]WorkflowRecord, error)

	// Close releases underlying resources.
	Close() error
}
