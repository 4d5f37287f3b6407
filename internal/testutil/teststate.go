package testutil

import (
	"time"

	"github.com/reimagen/agentarchitecture/internal/core"
)

// NewTestAnalysis creates a WorkflowAnalysis with sensible defaults for
// tests. Use functional options to override specific fields.
func NewTestAnalysis(opts ...func(*core.WorkflowAnalysis)) *core.WorkflowAnalysis {
	a := &core.WorkflowAnalysis{
		WorkflowID: "wf_test0001",
		SessionID:  "session-test",
		Steps: []core.MergedStep{
			{
				ID:                    "step_1",
				Description:           "Receive customer order",
				Outputs:               []string{"order"},
				AgentType:             core.AgentBaseDeterministic,
				RiskLevel:             core.RiskLow,
				DeterminismScore:      0.9,
				AutomationFeasibility: 0.9,
				AvailableAPI:          "HTTP API",
				SuggestedTools:        []string{"HTTP API"},
			},
			{
				ID:                    "step_2",
				Description:           "Review and approve the order",
				Inputs:                []string{"order"},
				Dependencies:          []string{"step_1"},
				AgentType:             core.AgentHuman,
				RiskLevel:             core.RiskHigh,
				RequiresHumanReview:   true,
				DeterminismScore:      0.2,
				AutomationFeasibility: 0.2,
				SuggestedTools:        []string{"Human Review"},
			},
		},
		Summary: core.AutomationSummary{
			TotalSteps:          2,
			AutomatableCount:    1,
			AgentRequiredCount:  1,
			HumanRequiredCount:  1,
			AutomationPotential: 0.5,
			HighRiskSteps:       1,
		},
		RisksAndCompliance: core.RisksAndCompliance{
			HighRiskSteps:       1,
			HumanReviewRequired: true,
		},
		AnalyzedAt: time.Now().UTC(),
		DurationMS: 42,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Markers identifying each stage's system prompt, for routing MockLLM
// responses. Each is a distinctive substring of the real prompt.
const (
	MarkerParser     = "Workflow Automation Analyst"
	MarkerRisk       = "Risk & Compliance Assessor"
	MarkerAutomation = "Automation Analyzer"
	MarkerSummarizer = "Automation Strategy Consultant"
)

// Canned stage responses in the exact wire shape the pipeline stages decode.
// The field names match what the stage prompts demand.
const (
	// ParserResponseTwoSteps yields step_1 and step_2 with a dependency.
	ParserResponseTwoSteps = `{"steps":[
		{"step_id":"step_1","description":"Receive customer order","outputs":["order"]},
		{"step_id":"step_2","description":"Review and approve the order","inputs":["order"],"dependencies":["step_1"]}
	]}`

	// RiskResponseTwoSteps assesses both steps, step_2 as high risk.
	RiskResponseTwoSteps = `{"risk_assessments":[
		{"step_id":"step_1","risk_level":"LOW","requires_human_in_loop":false,"confidence_score":0.9},
		{"step_id":"step_2","risk_level":"HIGH","requires_human_in_loop":true,"confidence_score":0.8}
	]}`

	// AutomationResponseTwoSteps analyzes both steps.
	AutomationResponseTwoSteps = `{"automation_analyses":[
		{"step_id":"step_1","recommended_agent_type":"BASE_DETERMINISTIC","determinism_score":0.9,"automation_feasibility":0.9,"complexity_level":"low"},
		{"step_id":"step_2","recommended_agent_type":"HUMAN","determinism_score":0.2,"automation_feasibility":0.2,"complexity_level":"high"}
	]}`

	// SummaryResponse is a minimal summarizer payload.
	SummaryResponse = `{"summary":{"quick_wins":["step_1"],"blockers":["step_2"]}}`
)
