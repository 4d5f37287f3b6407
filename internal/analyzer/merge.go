package analyzer

import (
	"fmt"
	"time"

	"github.com/reimagen/agentarchitecture/internal/core"
)

// mergeResults joins the three stage outputs into the final report. Pure
// except for the timestamp: re-running it over the same session yields an
// identical report apart from AnalyzedAt.
//
// Iteration follows stage 1's output order, which fixes the report's step
// order regardless of how the parallel stages finished.
func mergeResults(s *Session) *core.WorkflowAnalysis {
	risksByStep := make(map[string]core.RiskAssessment, len(s.RiskAssessments))
	for _, r := range s.RiskAssessments {
		risksByStep[r.StepID] = r
	}
	automationByStep := make(map[string]core.AutomationAnalysis, len(s.AutomationAnalyses))
	for _, a := range s.AutomationAnalyses {
		automationByStep[a.StepID] = a
	}

	merged := make([]core.MergedStep, 0, len(s.ParsedSteps))
	for _, step := range s.ParsedSteps {
		risk, hasRisk := risksByStep[step.StepID]
		automation, hasAutomation := automationByStep[step.StepID]

		ms := core.MergedStep{
			ID:           step.StepID,
			Description:  step.Description,
			Inputs:       step.Inputs,
			Outputs:      step.Outputs,
			Dependencies: step.Dependencies,
			AgentType:    core.AgentUnknown,
			RiskLevel:    core.RiskUnknown,
		}
		if hasRisk {
			ms.RiskLevel = risk.RiskLevel
			if ms.RiskLevel == "" {
				ms.RiskLevel = core.RiskUnknown
			}
			ms.RequiresHumanReview = risk.RequiresHumanInLoop
			ms.MitigationSuggestions = risk.MitigationSuggestions
		}
		if hasAutomation {
			ms.AgentType = automation.RecommendedAgentType
			if ms.AgentType == "" {
				ms.AgentType = core.AgentUnknown
			}
			ms.DeterminismScore = automation.DeterminismScore
			ms.AutomationFeasibility = automation.AutomationFeasibility
			ms.AvailableAPI = automation.AvailableAPI
			ms.ImplementationNotes = automation.ImplementationNotes
		}

		ms.SuggestedTools = suggestTools(ms)
		merged = append(merged, ms)
	}

	summary := summarize(merged)

	return &core.WorkflowAnalysis{
		WorkflowID:  "wf_" + shortID(s.SessionID),
		SessionID:   s.SessionID,
		Steps:       merged,
		Summary:     summary,
		KeyInsights: extractInsights(merged),
		RisksAndCompliance: core.RisksAndCompliance{
			HighRiskSteps:       summary.HighRiskSteps,
			CriticalRiskSteps:   summary.CriticalRiskSteps,
			HumanReviewRequired: summary.HumanRequiredCount > 0,
		},
		Recommendations: buildRecommendations(summary),
		SummaryReport:   s.SummaryReport,
		AnalyzedAt:      time.Now().UTC(),
		DurationMS:      totalDuration(s),
	}
}

// suggestTools derives the tool list in a fixed order: the available API,
// then a human-review tag, then a custom-integration tag when no API exists
// but the step still looks automatable.
func suggestTools(ms core.MergedStep) []string {
	var suggested []string
	if ms.AvailableAPI != "" {
		suggested = append(suggested, ms.AvailableAPI)
	}
	if ms.RequiresHumanReview {
		suggested = append(suggested, "Human Review")
	}
	if ms.AvailableAPI == "" && ms.AutomationFeasibility > 0.5 {
		suggested = append(suggested, "Custom Integration")
	}
	return suggested
}

func summarize(steps []core.MergedStep) core.AutomationSummary {
	summary := core.AutomationSummary{TotalSteps: len(steps)}
	for _, s := range steps {
		if s.AutomationFeasibility >= 0.6 {
			summary.AutomatableCount++
		}
		if s.AgentType == core.AgentHuman {
			summary.HumanRequiredCount++
		} else {
			summary.AgentRequiredCount++
		}
		switch s.RiskLevel {
		case core.RiskHigh:
			summary.HighRiskSteps++
		case core.RiskCritical:
			summary.CriticalRiskSteps++
		}
	}
	if summary.TotalSteps > 0 {
		summary.AutomationPotential = float64(summary.AutomatableCount) / float64(summary.TotalSteps)
	}
	return summary
}

// extractInsights derives up to five key insights in a fixed priority order.
// Only three kinds exist today; the cap leaves room for more.
func extractInsights(steps []core.MergedStep) []core.KeyInsight {
	var insights []core.KeyInsight

	total := len(steps)
	if total == 0 {
		return insights
	}

	var automatable, criticalRisk, humanRequired []string
	for _, s := range steps {
		if s.AutomationFeasibility >= 0.6 {
			automatable = append(automatable, s.ID)
		}
		if s.RiskLevel == core.RiskCritical {
			criticalRisk = append(criticalRisk, s.ID)
		}
		if s.AgentType == core.AgentHuman {
			humanRequired = append(humanRequired, s.ID)
		}
	}

	if len(automatable) > 0 {
		pct := float64(len(automatable)) / float64(total) * 100
		priority := "MEDIUM"
		if pct >= 70 {
			priority = "HIGH"
		}
		insights = append(insights, core.KeyInsight{
			Title:         "Strong Automation Potential",
			Description:   fmt.Sprintf("%d/%d steps (%.0f%%) can be automated", len(automatable), total, pct),
			Priority:      priority,
			AffectedSteps: automatable,
		})
	}

	if len(criticalRisk) > 0 {
		insights = append(insights, core.KeyInsight{
			Title:         "Critical Compliance Risks Detected",
			Description:   fmt.Sprintf("%d step(s) marked as CRITICAL risk level", len(criticalRisk)),
			Priority:      "CRITICAL",
			AffectedSteps: criticalRisk,
		})
	}

	if len(humanRequired) > 0 {
		pct := float64(len(humanRequired)) / float64(total) * 100
		priority := "MEDIUM"
		if pct > 30 {
			priority = "HIGH"
		}
		insights = append(insights, core.KeyInsight{
			Title:         "Manual Review Bottleneck",
			Description:   fmt.Sprintf("%d/%d steps (%.0f%%) require human review", len(humanRequired), total, pct),
			Priority:      priority,
			AffectedSteps: humanRequired,
		})
	}

	if len(insights) > 5 {
		insights = insights[:5]
	}
	return insights
}

// buildRecommendations appends free-text recommendations in a fixed order.
func buildRecommendations(summary core.AutomationSummary) []string {
	var recs []string

	if summary.AutomationPotential >= 0.7 {
		recs = append(recs, fmt.Sprintf("Prioritize automation of %d automatable steps", summary.AutomatableCount))
	} else if summary.AutomationPotential > 0 {
		recs = append(recs, fmt.Sprintf("Review the %d automatable steps for ROI", summary.AutomatableCount))
	}

	if summary.CriticalRiskSteps > 0 {
		recs = append(recs, fmt.Sprintf("Implement compliance controls for %d critical-risk step(s)", summary.CriticalRiskSteps))
	}

	if summary.HumanRequiredCount > 0 {
		recs = append(recs, fmt.Sprintf("Allocate resources for %d manual review/approval step(s)", summary.HumanRequiredCount))
	}

	return recs
}

// totalDuration prefers parser latency plus parallel-phase wall clock, which
// reflects true concurrent time; it falls back to summed stage latencies when
// the parallel markers were never set.
func totalDuration(s *Session) float64 {
	if !s.ParallelStart.IsZero() && !s.ParallelEnd.IsZero() {
		parallel := float64(s.ParallelEnd.Sub(s.ParallelStart)) / float64(time.Millisecond)
		return s.ParserLatency + parallel
	}
	return s.ParserLatency + s.RiskLatency + s.AutomationLatency
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
