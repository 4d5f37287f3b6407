package orgdesign

import (
	"reflect"
	"testing"

	"github.com/reimagen/agentarchitecture/internal/core"
	"github.com/reimagen/agentarchitecture/internal/testutil"
)

func TestSynthesize_OneAgentPerStep(t *testing.T) {
	t.Parallel()

	analysis := testutil.NewTestAnalysis()
	chart := Synthesize(analysis)

	if chart.WorkflowID != analysis.WorkflowID {
		t.Errorf("WorkflowID = %q, want %q", chart.WorkflowID, analysis.WorkflowID)
	}
	if chart.CreatedFromAnalysisID != analysis.SessionID {
		t.Errorf("CreatedFromAnalysisID = %q, want %q", chart.CreatedFromAnalysisID, analysis.SessionID)
	}
	if len(chart.Agents) != 2 {
		t.Fatalf("expected 2 agents, got %d", len(chart.Agents))
	}

	first := chart.Agents[0]
	if first.ID != "agent_step_1" {
		t.Errorf("agent id = %q, want agent_step_1", first.ID)
	}
	if !reflect.DeepEqual(first.StepIDs, []string{"step_1"}) {
		t.Errorf("StepIDs = %v, want [step_1]", first.StepIDs)
	}
	if first.Metadata["agent_type"] != string(core.AgentBaseDeterministic) {
		t.Errorf("metadata agent_type = %v", first.Metadata["agent_type"])
	}
}

func TestSynthesize_ConnectionsFollowDependencies(t *testing.T) {
	t.Parallel()

	analysis := testutil.NewTestAnalysis(func(a *core.WorkflowAnalysis) {
		// step_2 depends on step_1 and on a step the parser never produced.
		a.Steps[1].Dependencies = []string{"step_1", "step_99"}
	})

	chart := Synthesize(analysis)

	if len(chart.Connections) != 1 {
		t.Fatalf("expected 1 connection, got %d", len(chart.Connections))
	}
	conn := chart.Connections[0]
	if conn.FromAgentID != "agent_step_1" || conn.ToAgentID != "agent_step_2" {
		t.Errorf("connection = %s -> %s, want agent_step_1 -> agent_step_2", conn.FromAgentID, conn.ToAgentID)
	}
	if conn.Channel != "request_response" {
		t.Errorf("Channel = %q, want request_response", conn.Channel)
	}
}

func TestSynthesize_SafetyConstraints(t *testing.T) {
	t.Parallel()

	analysis := testutil.NewTestAnalysis()
	chart := Synthesize(analysis)

	low := chart.Agents[0]
	if low.SafetyConstraints.RequiresHumanApproval || low.SafetyConstraints.RestrictsPII {
		t.Errorf("low-risk automated step must carry no guardrails, got %+v", low.SafetyConstraints)
	}

	high := chart.Agents[1]
	if !high.SafetyConstraints.RequiresHumanApproval {
		t.Error("high-risk step must require human approval")
	}
	if !high.SafetyConstraints.RestrictsPII {
		t.Error("high-risk step must restrict PII")
	}
}

func TestInferMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		step core.MergedStep
		want core.AgentMode
	}{
		{
			name: "human review with low feasibility",
			step: core.MergedStep{RequiresHumanReview: true, AutomationFeasibility: 0.2},
			want: core.ModeHuman,
		},
		{
			name: "human review with workable feasibility",
			step: core.MergedStep{RequiresHumanReview: true, AutomationFeasibility: 0.5},
			want: core.ModeHybrid,
		},
		{
			name: "critical risk dominates available api",
			step: core.MergedStep{RiskLevel: core.RiskCritical, AvailableAPI: "Stripe API", AutomationFeasibility: 0.9},
			want: core.ModeHybrid,
		},
		{
			name: "api without elevated risk",
			step: core.MergedStep{RiskLevel: core.RiskLow, AvailableAPI: "Gmail API", AutomationFeasibility: 0.9},
			want: core.ModeToolOnly,
		},
		{
			name: "feasible without api",
			step: core.MergedStep{RiskLevel: core.RiskLow, AutomationFeasibility: 0.6},
			want: core.ModeLLMWithTools,
		},
		{
			name: "infeasible manual step",
			step: core.MergedStep{RiskLevel: core.RiskLow, AutomationFeasibility: 0.3},
			want: core.ModeHuman,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := inferMode(tt.step); got != tt.want {
				t.Errorf("inferMode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCollectToolIDs(t *testing.T) {
	t.Parallel()

	step := core.MergedStep{
		AvailableAPI:   "Gmail API",
		SuggestedTools: []string{"Gmail API", "Human Review", "Human Review"},
	}

	got := collectToolIDs(step)
	want := []string{"api::Gmail API", "tool::Gmail API", "tool::Human Review"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("collectToolIDs() = %v, want %v", got, want)
	}

	if ids := collectToolIDs(core.MergedStep{}); len(ids) != 0 {
		t.Errorf("bare step should yield no tool ids, got %v", ids)
	}
}

func TestSynthesize_EmptyAnalysis(t *testing.T) {
	t.Parallel()

	chart := Synthesize(&core.WorkflowAnalysis{WorkflowID: "wf_empty"})
	if len(chart.Agents) != 0 || len(chart.Connections) != 0 {
		t.Errorf("empty analysis should yield empty chart, got %d agents %d connections",
			len(chart.Agents), len(chart.Connections))
	}
}
