package analyzer

import (
	"context"
	"fmt"

	"github.com/reimagen/agentarchitecture/internal/core"
)

// StageParser is the stage name for the workflow parser.
const StageParser = "parser"

// runParser executes stage 1: free text to ordered steps with dependency
// edges. It owns Session.ParsedSteps.
func (r *stageRunner) runParser(ctx context.Context, s *Session, workflowText string) ([]core.ParsedStep, bool) {
	st := stage[core.ParsedStep]{
		name:         StageParser,
		systemPrompt: parserSystemPrompt,
		outputField:  "steps",
		buildPrompt: func(_ *Session, text string) string {
			return fmt.Sprintf(`Please parse the following workflow description into structured steps:

%s

Remember to respond with ONLY valid JSON, no markdown or explanations.`, text)
		},
		store: func(s *Session, records []core.ParsedStep, latencyMS float64) {
			s.ParsedSteps = records
			s.ParserLatency = latencyMS
		},
	}
	return runStage(ctx, r, st, s, workflowText)
}
