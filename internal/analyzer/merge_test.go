package analyzer

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/reimagen/agentarchitecture/internal/core"
)

func sessionForMerge(t *testing.T) *Session {
	t.Helper()
	s, err := newSessionWithIDs("session-1234567890", "trace-1")
	if err != nil {
		t.Fatalf("creating session: %v", err)
	}
	return s
}

func TestMergeResults_PreservesStepOrderAndCount(t *testing.T) {
	t.Parallel()

	s := sessionForMerge(t)
	s.ParsedSteps = []core.ParsedStep{
		{StepID: "step_3", Description: "third"},
		{StepID: "step_1", Description: "first"},
		{StepID: "step_2", Description: "second"},
	}
	// Out-of-order stage outputs must not reorder the report.
	s.RiskAssessments = []core.RiskAssessment{
		{StepID: "step_2", RiskLevel: core.RiskLow},
		{StepID: "step_3", RiskLevel: core.RiskHigh},
	}
	s.AutomationAnalyses = []core.AutomationAnalysis{
		{StepID: "step_1", RecommendedAgentType: core.AgentTool, AutomationFeasibility: 0.8},
	}

	analysis := mergeResults(s)

	if len(analysis.Steps) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(analysis.Steps))
	}
	gotOrder := []string{analysis.Steps[0].ID, analysis.Steps[1].ID, analysis.Steps[2].ID}
	wantOrder := []string{"step_3", "step_1", "step_2"}
	if !reflect.DeepEqual(gotOrder, wantOrder) {
		t.Errorf("step order = %v, want %v", gotOrder, wantOrder)
	}
}

func TestMergeResults_UnknownSentinels(t *testing.T) {
	t.Parallel()

	s := sessionForMerge(t)
	s.ParsedSteps = []core.ParsedStep{{StepID: "step_1", Description: "orphan"}}
	// No risk or automation output at all: the degraded-run shape.

	analysis := mergeResults(s)

	step := analysis.Steps[0]
	if step.RiskLevel != core.RiskUnknown {
		t.Errorf("RiskLevel = %q, want UNKNOWN", step.RiskLevel)
	}
	if step.AgentType != core.AgentUnknown {
		t.Errorf("AgentType = %q, want UNKNOWN", step.AgentType)
	}
	if step.AutomationFeasibility != 0 {
		t.Errorf("AutomationFeasibility = %v, want 0", step.AutomationFeasibility)
	}
}

func TestMergeResults_EmptyEnumNormalizedToUnknown(t *testing.T) {
	t.Parallel()

	s := sessionForMerge(t)
	s.ParsedSteps = []core.ParsedStep{{StepID: "step_1"}}
	s.RiskAssessments = []core.RiskAssessment{{StepID: "step_1", RiskLevel: ""}}
	s.AutomationAnalyses = []core.AutomationAnalysis{{StepID: "step_1", RecommendedAgentType: ""}}

	analysis := mergeResults(s)

	if analysis.Steps[0].RiskLevel != core.RiskUnknown {
		t.Errorf("empty risk level should normalize to UNKNOWN, got %q", analysis.Steps[0].RiskLevel)
	}
	if analysis.Steps[0].AgentType != core.AgentUnknown {
		t.Errorf("empty agent type should normalize to UNKNOWN, got %q", analysis.Steps[0].AgentType)
	}
}

func TestSuggestTools_FixedOrder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		step core.MergedStep
		want []string
	}{
		{
			name: "api and human review",
			step: core.MergedStep{AvailableAPI: "Gmail API", RequiresHumanReview: true, AutomationFeasibility: 0.9},
			want: []string{"Gmail API", "Human Review"},
		},
		{
			name: "custom integration when feasible without api",
			step: core.MergedStep{AutomationFeasibility: 0.8},
			want: []string{"Custom Integration"},
		},
		{
			name: "no tools for infeasible manual step",
			step: core.MergedStep{AutomationFeasibility: 0.3},
			want: nil,
		},
		{
			name: "human review then custom integration",
			step: core.MergedStep{RequiresHumanReview: true, AutomationFeasibility: 0.6},
			want: []string{"Human Review", "Custom Integration"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := suggestTools(tt.step)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("suggestTools() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSummarize_Counts(t *testing.T) {
	t.Parallel()

	steps := []core.MergedStep{
		{AgentType: core.AgentTool, AutomationFeasibility: 0.9, RiskLevel: core.RiskLow},
		{AgentType: core.AgentHuman, AutomationFeasibility: 0.2, RiskLevel: core.RiskHigh},
		{AgentType: core.AgentUnknown, AutomationFeasibility: 0.6, RiskLevel: core.RiskCritical},
		{AgentType: core.AgentBaseDeterministic, AutomationFeasibility: 0.59, RiskLevel: core.RiskMedium},
	}

	summary := summarize(steps)

	if summary.TotalSteps != 4 {
		t.Errorf("TotalSteps = %d, want 4", summary.TotalSteps)
	}
	// 0.6 boundary is inclusive.
	if summary.AutomatableCount != 2 {
		t.Errorf("AutomatableCount = %d, want 2", summary.AutomatableCount)
	}
	// UNKNOWN counts as agent-required, not human-required.
	if summary.HumanRequiredCount != 1 {
		t.Errorf("HumanRequiredCount = %d, want 1", summary.HumanRequiredCount)
	}
	if summary.AgentRequiredCount != 3 {
		t.Errorf("AgentRequiredCount = %d, want 3", summary.AgentRequiredCount)
	}
	if summary.HighRiskSteps != 1 || summary.CriticalRiskSteps != 1 {
		t.Errorf("risk counts = %d/%d, want 1/1", summary.HighRiskSteps, summary.CriticalRiskSteps)
	}
	if summary.AutomationPotential != 0.5 {
		t.Errorf("AutomationPotential = %v, want 0.5", summary.AutomationPotential)
	}
}

func TestSummarize_Empty(t *testing.T) {
	t.Parallel()

	summary := summarize(nil)
	if summary.AutomationPotential != 0 {
		t.Errorf("AutomationPotential on empty input = %v, want 0", summary.AutomationPotential)
	}
}

func TestExtractInsights_PrioritiesAndCap(t *testing.T) {
	t.Parallel()

	steps := []core.MergedStep{
		{ID: "step_1", AutomationFeasibility: 0.9, AgentType: core.AgentTool},
		{ID: "step_2", AutomationFeasibility: 0.8, AgentType: core.AgentTool},
		{ID: "step_3", AutomationFeasibility: 0.7, RiskLevel: core.RiskCritical, AgentType: core.AgentHuman},
	}

	insights := extractInsights(steps)

	if len(insights) > 5 {
		t.Fatalf("insights exceed cap: %d", len(insights))
	}
	if len(insights) != 3 {
		t.Fatalf("expected 3 insights, got %d", len(insights))
	}

	// 3/3 automatable = 100% >= 70% -> HIGH
	if insights[0].Priority != "HIGH" {
		t.Errorf("automation insight priority = %q, want HIGH", insights[0].Priority)
	}
	if insights[1].Priority != "CRITICAL" {
		t.Errorf("critical risk insight priority = %q, want CRITICAL", insights[1].Priority)
	}
	// 1/3 human = 33% > 30% -> HIGH
	if insights[2].Priority != "HIGH" {
		t.Errorf("human bottleneck insight priority = %q, want HIGH", insights[2].Priority)
	}
}

func TestBuildRecommendations_WordingSplit(t *testing.T) {
	t.Parallel()

	high := buildRecommendations(core.AutomationSummary{AutomationPotential: 0.7, AutomatableCount: 7})
	if len(high) == 0 || !strings.HasPrefix(high[0], "Prioritize") {
		t.Errorf("potential >= 0.7 should yield Prioritize wording, got %v", high)
	}

	low := buildRecommendations(core.AutomationSummary{AutomationPotential: 0.4, AutomatableCount: 2})
	if len(low) == 0 || !strings.HasPrefix(low[0], "Review") {
		t.Errorf("potential < 0.7 should yield Review wording, got %v", low)
	}

	none := buildRecommendations(core.AutomationSummary{})
	if len(none) != 0 {
		t.Errorf("empty summary should yield no recommendations, got %v", none)
	}
}

func TestTotalDuration(t *testing.T) {
	t.Parallel()

	s := sessionForMerge(t)
	s.ParserLatency = 100

	// Fallback path: parallel markers never set.
	s.RiskLatency = 50
	s.AutomationLatency = 70
	if got := totalDuration(s); got != 220 {
		t.Errorf("fallback duration = %v, want 220", got)
	}

	// Preferred path: wall clock of the parallel phase.
	s.ParallelStart = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.ParallelEnd = s.ParallelStart.Add(80 * time.Millisecond)
	if got := totalDuration(s); got != 180 {
		t.Errorf("wall-clock duration = %v, want 180", got)
	}
}

func TestMergeResults_DeterministicExceptTimestamp(t *testing.T) {
	t.Parallel()

	s := sessionForMerge(t)
	s.ParsedSteps = []core.ParsedStep{
		{StepID: "step_1", Description: "send email to customer"},
		{StepID: "step_2", Description: "review and approve"},
	}
	s.RiskAssessments = []core.RiskAssessment{
		{StepID: "step_1", RiskLevel: core.RiskLow},
		{StepID: "step_2", RiskLevel: core.RiskHigh, RequiresHumanInLoop: true},
	}
	s.AutomationAnalyses = []core.AutomationAnalysis{
		{StepID: "step_1", RecommendedAgentType: core.AgentTool, AutomationFeasibility: 0.9, AvailableAPI: "Gmail API"},
		{StepID: "step_2", RecommendedAgentType: core.AgentHuman, AutomationFeasibility: 0.2},
	}

	first := mergeResults(s)
	second := mergeResults(s)

	second.AnalyzedAt = first.AnalyzedAt
	if !reflect.DeepEqual(first, second) {
		t.Error("merge should be deterministic apart from the timestamp")
	}
	if first.WorkflowID != "wf_session-" {
		t.Errorf("WorkflowID = %q, want wf_ prefix of session id", first.WorkflowID)
	}
}
