// Package orgdesign derives agent/tool topologies from approved workflow
// analyses. Everything here is pure and deterministic: no LLM calls, no I/O.
package orgdesign

import (
	"fmt"

	"github.com/reimagen/agentarchitecture/internal/core"
)

// Synthesize creates an org chart from an analysis: one agent card per
// merged step, one directed connection per declared dependency. A cyclic
// dependency graph in the input produces a cyclic edge set in the output,
// unchanged.
func Synthesize(analysis *core.WorkflowAnalysis) *core.AgentOrgChart {
	agents := make([]core.AgentCard, 0, len(analysis.Steps))
	agentByStep := make(map[string]string, len(analysis.Steps))

	for _, step := range analysis.Steps {
		agentID := "agent_" + step.ID
		agentByStep[step.ID] = agentID

		agents = append(agents, core.AgentCard{
			ID:           agentID,
			Name:         "Agent for " + step.ID,
			Description:  step.Description,
			Mode:         inferMode(step),
			StepIDs:      []string{step.ID},
			ToolIDs:      collectToolIDs(step),
			InputSchema:  map[string]interface{}{"inputs": step.Inputs},
			OutputSchema: map[string]interface{}{"outputs": step.Outputs},
			SafetyConstraints: core.SafetyConstraints{
				RequiresHumanApproval: step.RequiresHumanReview || isElevatedRisk(step.RiskLevel),
				RestrictsPII:          isElevatedRisk(step.RiskLevel),
			},
			Metadata: map[string]interface{}{
				"agent_type":             string(step.AgentType),
				"risk_level":             string(step.RiskLevel),
				"automation_feasibility": step.AutomationFeasibility,
				"determinism_score":      step.DeterminismScore,
				"implementation_notes":   step.ImplementationNotes,
			},
		})
	}

	var connections []core.AgentConnection
	for _, step := range analysis.Steps {
		toAgent := agentByStep[step.ID]
		for _, depID := range step.Dependencies {
			fromAgent, ok := agentByStep[depID]
			if !ok {
				continue
			}
			connections = append(connections, core.AgentConnection{
				FromAgentID:   fromAgent,
				ToAgentID:     toAgent,
				Description:   fmt.Sprintf("Output of %s feeds into %s", depID, step.ID),
				PayloadSchema: map[string]interface{}{"type": "workflow_step_output"},
				Channel:       "request_response",
			})
		}
	}

	return &core.AgentOrgChart{
		WorkflowID:            analysis.WorkflowID,
		Agents:                agents,
		Connections:           connections,
		CreatedFromAnalysisID: analysis.SessionID,
		Metadata: map[string]interface{}{
			"total_steps":          analysis.Summary.TotalSteps,
			"automation_potential": analysis.Summary.AutomationPotential,
		},
	}
}

// inferMode picks the execution mode for a step's agent. The branches are
// evaluated in order; human oversight and elevated risk dominate everything
// else.
func inferMode(step core.MergedStep) core.AgentMode {
	if step.RequiresHumanReview || isElevatedRisk(step.RiskLevel) {
		if step.AutomationFeasibility < 0.4 {
			return core.ModeHuman
		}
		return core.ModeHybrid
	}
	if step.AvailableAPI != "" {
		return core.ModeToolOnly
	}
	if step.AutomationFeasibility >= 0.6 {
		return core.ModeLLMWithTools
	}
	return core.ModeHuman
}

func isElevatedRisk(level core.RiskLevel) bool {
	return level == core.RiskHigh || level == core.RiskCritical
}

// collectToolIDs builds the tool id list: the API first, then every
// suggested tool, deduplicated preserving first occurrence.
func collectToolIDs(step core.MergedStep) []string {
	var ids []string
	if step.AvailableAPI != "" {
		ids = append(ids, "api::"+step.AvailableAPI)
	}
	for _, tool := range step.SuggestedTools {
		ids = append(ids, "tool::"+tool)
	}

	seen := make(map[string]struct{}, len(ids))
	deduped := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		deduped = append(deduped, id)
	}
	return deduped
}
