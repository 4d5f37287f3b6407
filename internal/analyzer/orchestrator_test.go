package analyzer

import (
	"context"
	"errors"
	"testing"

	"github.com/reimagen/agentarchitecture/internal/core"
	"github.com/reimagen/agentarchitecture/internal/logging"
	"github.com/reimagen/agentarchitecture/internal/testutil"
)

func healthyMock() *testutil.MockLLM {
	return testutil.NewMockLLM().
		WithResponseFor(testutil.MarkerParser, testutil.ParserResponseTwoSteps).
		WithResponseFor(testutil.MarkerRisk, testutil.RiskResponseTwoSteps).
		WithResponseFor(testutil.MarkerAutomation, testutil.AutomationResponseTwoSteps)
}

func TestAnalyzeWorkflow_HappyPath(t *testing.T) {
	t.Parallel()

	o := New(healthyMock(), logging.NewNop())
	analysis, err := o.AnalyzeWorkflow(context.Background(), "Receive order, then review and approve it")
	if err != nil {
		t.Fatalf("AnalyzeWorkflow() error = %v", err)
	}

	if len(analysis.Steps) != 2 {
		t.Fatalf("expected 2 merged steps, got %d", len(analysis.Steps))
	}
	if analysis.Steps[0].ID != "step_1" || analysis.Steps[1].ID != "step_2" {
		t.Errorf("step order mismatch: %s, %s", analysis.Steps[0].ID, analysis.Steps[1].ID)
	}
	if analysis.Steps[1].RiskLevel != core.RiskHigh {
		t.Errorf("step_2 risk = %q, want HIGH", analysis.Steps[1].RiskLevel)
	}
	if !analysis.RisksAndCompliance.HumanReviewRequired {
		t.Error("expected human review flag on report")
	}
	if analysis.WorkflowID == "" || analysis.SessionID == "" {
		t.Error("report must carry workflow and session ids")
	}
	if analysis.DurationMS <= 0 {
		t.Errorf("DurationMS = %v, want > 0", analysis.DurationMS)
	}
}

func TestAnalyzeWorkflow_EmptyInputIsFatal(t *testing.T) {
	t.Parallel()

	o := New(healthyMock(), logging.NewNop())
	for _, input := range []string{"", "   ", "\n\t"} {
		_, err := o.AnalyzeWorkflow(context.Background(), input)
		if err == nil {
			t.Fatalf("expected error for input %q", input)
		}
		var domErr *core.DomainError
		if !errors.As(err, &domErr) || domErr.Code != core.CodeEmptyWorkflow {
			t.Errorf("expected EMPTY_WORKFLOW validation error, got %v", err)
		}
	}
}

func TestAnalyzeWorkflow_ZeroStepsIsFatal(t *testing.T) {
	t.Parallel()

	mock := testutil.NewMockLLM().
		WithResponseFor(testutil.MarkerParser, `{"steps":[]}`)

	o := New(mock, logging.NewNop())
	_, err := o.AnalyzeWorkflow(context.Background(), "gibberish that parses to nothing")
	if err == nil {
		t.Fatal("expected error for zero parsed steps")
	}
	var domErr *core.DomainError
	if !errors.As(err, &domErr) || domErr.Code != core.CodeParseFailed {
		t.Errorf("expected PARSE_FAILED execution error, got %v", err)
	}
}

func TestAnalyzeWorkflow_StageFailureDegrades(t *testing.T) {
	t.Parallel()

	// Risk stage returns garbage; automation succeeds. The run must still
	// succeed, with UNKNOWN risk sentinels.
	mock := testutil.NewMockLLM().
		WithResponseFor(testutil.MarkerParser, testutil.ParserResponseTwoSteps).
		WithResponseFor(testutil.MarkerRisk, "this is not json").
		WithResponseFor(testutil.MarkerAutomation, testutil.AutomationResponseTwoSteps)

	o := New(mock, logging.NewNop())
	analysis, err := o.AnalyzeWorkflow(context.Background(), "Receive order, then review and approve it")
	if err != nil {
		t.Fatalf("degraded run must still succeed, got %v", err)
	}

	for _, step := range analysis.Steps {
		if step.RiskLevel != core.RiskUnknown {
			t.Errorf("step %s risk = %q, want UNKNOWN", step.ID, step.RiskLevel)
		}
	}
	// Automation output survives the sibling's failure.
	if analysis.Steps[0].AutomationFeasibility != 0.9 {
		t.Errorf("automation output lost: feasibility = %v", analysis.Steps[0].AutomationFeasibility)
	}
}

func TestAnalyzeWorkflow_DegradedStageMarksSpan(t *testing.T) {
	t.Parallel()

	// Risk degrades, automation completes. The trace must tell the two
	// apart; the session error log alone is not enough for a reader of
	// Trace().
	mock := testutil.NewMockLLM().
		WithResponseFor(testutil.MarkerParser, testutil.ParserResponseTwoSteps).
		WithResponseFor(testutil.MarkerRisk, "this is not json").
		WithResponseFor(testutil.MarkerAutomation, testutil.AutomationResponseTwoSteps)

	o := New(mock, logging.NewNop())
	if _, err := o.AnalyzeWorkflow(context.Background(), "Receive order, then review and approve it"); err != nil {
		t.Fatalf("degraded run must still succeed, got %v", err)
	}

	o.tracer.mu.Lock()
	var traceID string
	for id := range o.tracer.traces {
		traceID = id
	}
	o.tracer.mu.Unlock()

	statuses := make(map[string]string)
	for _, span := range o.Trace(traceID) {
		statuses[span.SpanID] = span.Status
	}
	want := map[string]string{
		"stage1_parse":      "success",
		"stage2_risk":       "degraded",
		"stage3_automation": "success",
	}
	for spanID, status := range want {
		if statuses[spanID] != status {
			t.Errorf("span %s status = %q, want %q", spanID, statuses[spanID], status)
		}
	}
}

func TestAnalyzeWorkflow_AllParallelStagesFailing(t *testing.T) {
	t.Parallel()

	// Only the parser responds; risk and automation get the default "{}",
	// which carries neither expected output field.
	mock := testutil.NewMockLLM().
		WithResponseFor(testutil.MarkerParser, testutil.ParserResponseTwoSteps)

	o := New(mock, logging.NewNop())
	analysis, err := o.AnalyzeWorkflow(context.Background(), "Receive order, then review and approve it")
	if err != nil {
		t.Fatalf("run must survive both parallel stages degrading, got %v", err)
	}
	if len(analysis.Steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(analysis.Steps))
	}
	if analysis.Summary.AutomationPotential != 0 {
		t.Errorf("AutomationPotential = %v, want 0", analysis.Summary.AutomationPotential)
	}
}

func TestAnalyzeWorkflow_SaveFailureIsBestEffort(t *testing.T) {
	t.Parallel()

	store := testutil.NewMockStore().WithSaveError(testutil.ErrTest)
	o := New(healthyMock(), logging.NewNop(), WithStore(store))

	if _, err := o.AnalyzeWorkflow(context.Background(), "Receive order, then review and approve it"); err != nil {
		t.Fatalf("persistence failure must not fail the run, got %v", err)
	}
}

func TestAnalyzeWorkflow_PersistsPendingRecord(t *testing.T) {
	t.Parallel()

	store := testutil.NewMockStore()
	o := New(healthyMock(), logging.NewNop(), WithStore(store))

	analysis, err := o.AnalyzeWorkflow(context.Background(), "Receive order, then review and approve it")
	if err != nil {
		t.Fatalf("AnalyzeWorkflow() error = %v", err)
	}

	record, err := store.Get(context.Background(), analysis.WorkflowID)
	if err != nil {
		t.Fatalf("record not saved: %v", err)
	}
	if record.ApprovalStatus != core.ApprovalPending {
		t.Errorf("saved status = %q, want PENDING", record.ApprovalStatus)
	}
}

func TestAnalyzeWorkflow_SummarizerGated(t *testing.T) {
	t.Parallel()

	mock := healthyMock().WithResponseFor(testutil.MarkerSummarizer, testutil.SummaryResponse)

	// Disabled by default.
	o := New(mock, logging.NewNop())
	analysis, err := o.AnalyzeWorkflow(context.Background(), "Receive order, then review and approve it")
	if err != nil {
		t.Fatalf("AnalyzeWorkflow() error = %v", err)
	}
	if analysis.SummaryReport != nil {
		t.Error("summarizer disabled: report must be absent")
	}

	// Enabled via option.
	o = New(mock, logging.NewNop(), WithSummarizer(true))
	analysis, err = o.AnalyzeWorkflow(context.Background(), "Receive order, then review and approve it")
	if err != nil {
		t.Fatalf("AnalyzeWorkflow() error = %v", err)
	}
	if analysis.SummaryReport == nil {
		t.Fatal("summarizer enabled: report must be present")
	}
	if _, ok := analysis.SummaryReport["quick_wins"]; !ok {
		t.Errorf("summary report missing quick_wins: %v", analysis.SummaryReport)
	}
}

func TestAnalyzeWorkflow_MetricsRecordedOnFailure(t *testing.T) {
	t.Parallel()

	o := New(healthyMock(), logging.NewNop())
	_, _ = o.AnalyzeWorkflow(context.Background(), "")
	_, err := o.AnalyzeWorkflow(context.Background(), "Receive order, then review and approve it")
	if err != nil {
		t.Fatalf("AnalyzeWorkflow() error = %v", err)
	}

	snap := o.Metrics()
	if snap.AnalysesTotal != 2 {
		t.Errorf("AnalysesTotal = %d, want 2 (failures count too)", snap.AnalysesTotal)
	}
	if snap.StageLatencies[StageParser].Count != 1 {
		t.Errorf("parser latency count = %d, want 1", snap.StageLatencies[StageParser].Count)
	}
}

func TestAnalyzeWorkflow_ToolCallsReachMetrics(t *testing.T) {
	t.Parallel()

	o := New(healthyMock(), logging.NewNop())
	if _, err := o.AnalyzeWorkflow(context.Background(), "Receive order, then review and approve it"); err != nil {
		t.Fatalf("AnalyzeWorkflow() error = %v", err)
	}

	snap := o.Metrics()
	if snap.ToolCalls["get_compliance_rules"].CallCount != 2 {
		t.Errorf("compliance tool calls = %d, want 2", snap.ToolCalls["get_compliance_rules"].CallCount)
	}
	if snap.ToolCalls["lookup_api_docs"].CallCount != 2 {
		t.Errorf("api lookup tool calls = %d, want 2", snap.ToolCalls["lookup_api_docs"].CallCount)
	}
}
