package analyzer

import (
	"context"
	"fmt"
	"time"

	"github.com/reimagen/agentarchitecture/internal/core"
	"github.com/reimagen/agentarchitecture/internal/tools"
)

// StageAutomation is the stage name for the automation analyzer.
const StageAutomation = "automation_analyzer"

// runAutomation executes stage 3: an automation-feasibility verdict per
// parsed step. It requires stage 1 output and short-circuits to an empty
// result without it. It runs concurrently with the risk stage and must not
// read that stage's session field. It owns Session.AutomationAnalyses.
func (r *stageRunner) runAutomation(ctx context.Context, s *Session, workflowText string) ([]core.AutomationAnalysis, bool) {
	if len(s.ParsedSteps) == 0 {
		r.logger.WithTrace(s.TraceID).WithStage(StageAutomation).Warn("no parsed steps available, skipping")
		return nil, false
	}

	st := stage[core.AutomationAnalysis]{
		name:         StageAutomation,
		systemPrompt: automationSystemPrompt,
		outputField:  "automation_analyses",
		buildPrompt: func(s *Session, text string) string {
			return fmt.Sprintf(`Please analyze the automation potential for each step in this workflow.

Original Workflow:
%s

Parsed Steps:
%s

For each step:
1. Determine the best agent type (BASE_DETERMINISTIC, RETRIEVAL_AUGMENTED, TOOL, or HUMAN)
2. Score the determinism (0.0=random, 1.0=perfectly consistent)
3. Score the automation feasibility (0.0=impossible, 1.0=fully automatable)
4. Assess complexity (LOW, MEDIUM, HIGH)
5. Provide implementation notes

Respond with ONLY valid JSON, no markdown or explanations.`, text, indentJSON(s.ParsedSteps))
		},
		postProcess: r.attachAvailableAPIs,
		store: func(s *Session, records []core.AutomationAnalysis, latencyMS float64) {
			s.AutomationAnalyses = records
			s.AutomationLatency = latencyMS
		},
	}
	return runStage(ctx, r, st, s, workflowText)
}

// attachAvailableAPIs enriches each verdict with the API lookup tool's
// findings, keyed on the parsed step's description. Tool calls are logged to
// the session whether or not an API was found.
func (r *stageRunner) attachAvailableAPIs(s *Session, analyses []core.AutomationAnalysis) []core.AutomationAnalysis {
	log := r.logger.WithTrace(s.TraceID).WithStage(StageAutomation)

	descriptions := make(map[string]string, len(s.ParsedSteps))
	for _, step := range s.ParsedSteps {
		descriptions[step.StepID] = step.Description
	}

	for i := range analyses {
		a := &analyses[i]
		desc := descriptions[a.StepID]
		if desc == "" {
			continue
		}

		start := time.Now()
		result := tools.LookupAPIDocs(desc)
		elapsed := float64(time.Since(start)) / float64(time.Millisecond)

		s.RecordToolCall("lookup_api_docs", elapsed, a.StepID)
		log.Debug("api lookup",
			"step_id", a.StepID,
			"api_found", result.APIExists,
			"status", result.LookupStatus,
		)

		if result.APIExists {
			a.AvailableAPI = result.APIName
		}
	}
	return analyses
}
