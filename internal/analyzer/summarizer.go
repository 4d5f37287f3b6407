package analyzer

import (
	"context"
	"fmt"
	"time"

	"github.com/reimagen/agentarchitecture/internal/core"
)

// StageSummarizer is the stage name for the automation summarizer.
const StageSummarizer = "summarizer"

// runSummarizer executes the optional stage 4: a single aggregate summary
// (quick wins, blockers, roadmap) built from all three prior outputs. It runs
// strictly after the parallel join and follows the same failure-isolation
// contract as the list stages, including the degraded-outcome return. It owns
// Session.SummaryReport.
func (r *stageRunner) runSummarizer(ctx context.Context, s *Session) (core.AutomationSummaryReport, bool) {
	log := r.logger.WithTrace(s.TraceID).WithStage(StageSummarizer)

	if len(s.ParsedSteps) == 0 {
		log.Warn("no parsed steps available, skipping")
		return nil, false
	}

	log.Info("stage started")
	start := time.Now()
	finish := func(report core.AutomationSummaryReport) core.AutomationSummaryReport {
		latency := float64(time.Since(start)) / float64(time.Millisecond)
		s.SummaryReport = report
		s.SummaryLatency = latency
		log.Info("stage completed", "latency_ms", latency)
		return report
	}

	risks := "No risk assessments available"
	if len(s.RiskAssessments) > 0 {
		risks = indentJSON(s.RiskAssessments)
	}
	automation := "No automation analyses available"
	if len(s.AutomationAnalyses) > 0 {
		automation = indentJSON(s.AutomationAnalyses)
	}

	userPrompt := fmt.Sprintf(`Please synthesize the workflow analysis results and provide a comprehensive automation summary.

Parsed Steps:
%s

Risk Assessments:
%s

Automation Analyses:
%s

Respond with ONLY valid JSON, no markdown or explanations.`,
		indentJSON(s.ParsedSteps), risks, automation)

	raw, err := r.llm.Generate(ctx, core.GenerateOptions{
		SystemPrompt: summarizerSystemPrompt,
		UserPrompt:   userPrompt,
		JSONMode:     true,
		Timeout:      r.timeout,
	})
	if err != nil {
		log.Error("stage LLM call failed", "error", err)
		s.RecordError(core.CodeLLMFailed, err.Error(), StageSummarizer)
		return finish(nil), false
	}

	report, err := decodeStageField[core.AutomationSummaryReport](raw, "summary")
	if err != nil {
		log.Error("stage output decode failed", "error", err)
		s.RecordError(core.CodeBadStageOutput, err.Error(), StageSummarizer)
		return finish(nil), false
	}

	return finish(report), true
}
