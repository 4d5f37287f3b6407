package analyzer

import (
	"context"
	"fmt"
	"time"

	"github.com/reimagen/agentarchitecture/internal/core"
	"github.com/reimagen/agentarchitecture/internal/tools"
)

// StageRisk is the stage name for the risk assessor.
const StageRisk = "risk_assessor"

// complianceDomain is the domain handed to the compliance lookup. Step-level
// domain classification is model territory; the tool lookup stays generic.
const complianceDomain = "general"

// runRisk executes stage 2: a risk/compliance verdict per parsed step. It
// requires stage 1 output and short-circuits to an empty result without it.
// It owns Session.RiskAssessments.
func (r *stageRunner) runRisk(ctx context.Context, s *Session, workflowText string) ([]core.RiskAssessment, bool) {
	if len(s.ParsedSteps) == 0 {
		r.logger.WithTrace(s.TraceID).WithStage(StageRisk).Warn("no parsed steps available, skipping")
		return nil, false
	}

	st := stage[core.RiskAssessment]{
		name:         StageRisk,
		systemPrompt: riskSystemPrompt,
		outputField:  "risk_assessments",
		buildPrompt: func(s *Session, text string) string {
			return fmt.Sprintf(`Please assess the risk level for each step in this workflow.

Original Workflow:
%s

Parsed Steps:
%s

For each step:
1. Determine the risk level (LOW, MEDIUM, HIGH, CRITICAL)
2. Identify if human oversight is required
3. Provide a confidence score (0.0-1.0)
4. Suggest mitigation strategies

Respond with ONLY valid JSON, no markdown or explanations.`, text, indentJSON(s.ParsedSteps))
		},
		postProcess: r.attachComplianceRules,
		store: func(s *Session, records []core.RiskAssessment, latencyMS float64) {
			s.RiskAssessments = records
			s.RiskLatency = latencyMS
		},
	}
	return runStage(ctx, r, st, s, workflowText)
}

// attachComplianceRules enriches each verdict with the compliance tool's
// findings, keyed on the risk level the model assigned. Tool calls are
// logged to the session whether or not rules were found.
func (r *stageRunner) attachComplianceRules(s *Session, assessments []core.RiskAssessment) []core.RiskAssessment {
	log := r.logger.WithTrace(s.TraceID).WithStage(StageRisk)

	for i := range assessments {
		a := &assessments[i]
		if a.RiskLevel == "" {
			continue
		}

		start := time.Now()
		result := tools.GetComplianceRules(string(a.RiskLevel), complianceDomain)
		elapsed := float64(time.Since(start)) / float64(time.Millisecond)

		s.RecordToolCall("get_compliance_rules", elapsed, a.StepID)
		log.Debug("compliance lookup",
			"step_id", a.StepID,
			"risk_level", a.RiskLevel,
			"status", result.LookupStatus,
		)

		a.ApplicableRegulations = result.ApplicableRules
	}
	return assessments
}
