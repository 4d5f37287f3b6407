package core

import "time"

// RiskLevel classifies the risk of a workflow step.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
	RiskUnknown  RiskLevel = "UNKNOWN"
)

// AgentType is the recommended executor kind for a step.
type AgentType string

const (
	AgentBaseDeterministic  AgentType = "BASE_DETERMINISTIC"
	AgentRetrievalAugmented AgentType = "RETRIEVAL_AUGMENTED"
	AgentTool               AgentType = "TOOL"
	AgentHuman              AgentType = "HUMAN"
	AgentUnknown            AgentType = "UNKNOWN"
)

// ParsedStep is one step extracted from the workflow text by the parser stage.
// StepID is the join key used by every later stage.
type ParsedStep struct {
	StepID       string   `json:"step_id"`
	Description  string   `json:"description"`
	Inputs       []string `json:"inputs,omitempty"`
	Outputs      []string `json:"outputs,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"`
}

// RiskAssessment is the risk stage verdict for a single step.
type RiskAssessment struct {
	StepID                string    `json:"step_id"`
	RiskLevel             RiskLevel `json:"risk_level"`
	RequiresHumanInLoop   bool      `json:"requires_human_in_loop"`
	ConfidenceScore       float64   `json:"confidence_score"`
	Notes                 string    `json:"notes,omitempty"`
	ApplicableRegulations []string  `json:"applicable_regulations,omitempty"`
	MitigationSuggestions []string  `json:"mitigation_suggestions,omitempty"`
}

// AutomationAnalysis is the automation stage verdict for a single step.
type AutomationAnalysis struct {
	StepID                string    `json:"step_id"`
	RecommendedAgentType  AgentType `json:"recommended_agent_type"`
	DeterminismScore      float64   `json:"determinism_score"`
	AutomationFeasibility float64   `json:"automation_feasibility"`
	ComplexityLevel       string    `json:"complexity_level"`
	AvailableAPI          string    `json:"available_api,omitempty"`
	ImplementationNotes   string    `json:"implementation_notes,omitempty"`
}

// AutomationSummaryReport is the free-form aggregate produced by the optional
// summarizer stage (quick wins, blockers, roadmap). Shape is model-defined,
// so it stays loosely typed.
type AutomationSummaryReport map[string]interface{}

// MergedStep joins a parsed step with its risk and automation verdicts.
// Missing join partners leave the UNKNOWN/zero sentinels in place so a
// degraded run is distinguishable from a real zero.
type MergedStep struct {
	ID                    string    `json:"id"`
	Description           string    `json:"description"`
	Inputs                []string  `json:"inputs,omitempty"`
	Outputs               []string  `json:"outputs,omitempty"`
	Dependencies          []string  `json:"dependencies,omitempty"`
	AgentType             AgentType `json:"agent_type"`
	RiskLevel             RiskLevel `json:"risk_level"`
	RequiresHumanReview   bool      `json:"requires_human_review"`
	DeterminismScore      float64   `json:"determinism_score"`
	AutomationFeasibility float64   `json:"automation_feasibility"`
	AvailableAPI          string    `json:"available_api,omitempty"`
	SuggestedTools        []string  `json:"suggested_tools,omitempty"`
	MitigationSuggestions []string  `json:"mitigation_suggestions,omitempty"`
	ImplementationNotes   string    `json:"implementation_notes,omitempty"`
}

// AutomationSummary aggregates counts over all merged steps.
type AutomationSummary struct {
	TotalSteps          int     `json:"total_steps"`
	AutomatableCount    int     `json:"automatable_count"`
	AgentRequiredCount  int     `json:"agent_required_count"`
	HumanRequiredCount  int     `json:"human_required_count"`
	AutomationPotential float64 `json:"automation_potential"`
	HighRiskSteps       int     `json:"high_risk_steps"`
	CriticalRiskSteps   int     `json:"critical_risk_steps"`
}

// KeyInsight is a ranked, derived observation about the analysis.
type KeyInsight struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Priority      string   `json:"priority"`
	AffectedSteps []string `json:"affected_steps,omitempty"`
}

// WorkflowAnalysis is the final merged report. Immutable once built; this is
// the artifact that gets persisted and later drives org-chart synthesis.
type WorkflowAnalysis struct {
	WorkflowID         string                  `json:"workflow_id"`
	SessionID          string                  `json:"session_id"`
	Steps              []MergedStep            `json:"steps"`
	Summary            AutomationSummary       `json:"summary"`
	KeyInsights        []KeyInsight            `json:"key_insights,omitempty"`
	RisksAndCompliance RisksAndCompliance      `json:"risks_and_compliance"`
	Recommendations    []string                `json:"recommendations,omitempty"`
	SummaryReport      AutomationSummaryReport `json:"summary_report,omitempty"`
	AnalyzedAt         time.Time               `json:"analyzed_at"`
	DurationMS         float64                 `json:"duration_ms"`
}

// RisksAndCompliance is the compliance roll-up on the final report.
type RisksAndCompliance struct {
	HighRiskSteps       int  `json:"high_risk_steps"`
	CriticalRiskSteps   int  `json:"critical_risk_steps"`
	HumanReviewRequired bool `json:"human_review_required"`
}

// ApprovalStatus tracks the review state of a persisted analysis.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "PENDING"
	ApprovalApproved ApprovalStatus = "APPROVED"
	ApprovalRejected ApprovalStatus = "REJECTED"
)
