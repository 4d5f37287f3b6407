package core

// AgentMode is the execution mode derived for an agent card.
type AgentMode string

const (
	ModeHuman        AgentMode = "HUMAN"
	ModeLLMWithTools AgentMode = "LLM_WITH_TOOLS"
	ModeToolOnly     AgentMode = "TOOL_ONLY"
	ModeHybrid       AgentMode = "HYBRID"
)

// SafetyConstraints holds derived guardrails for an agent.
type SafetyConstraints struct {
	RequiresHumanApproval bool   `json:"requires_human_approval"`
	RestrictsPII          bool   `json:"restricts_pii"`
	Notes                 string `json:"notes,omitempty"`
}

// AgentCard is the logical definition of one agent in the org chart.
// One card per merged step; never mutated after synthesis.
type AgentCard struct {
	ID                string                 `json:"id"`
	Name              string                 `json:"name"`
	Description       string                 `json:"description"`
	Mode              AgentMode              `json:"mode"`
	StepIDs           []string               `json:"step_ids"`
	ToolIDs           []string               `json:"tool_ids,omitempty"`
	InputSchema       map[string]interface{} `json:"input_schema,omitempty"`
	OutputSchema      map[string]interface{} `json:"output_schema,omitempty"`
	SafetyConstraints SafetyConstraints      `json:"safety_constraints"`
	Metadata          map[string]interface{} `json:"metadata,omitempty"`
}

// AgentConnection is a directed edge between two agents.
type AgentConnection struct {
	FromAgentID   string                 `json:"from_agent_id"`
	ToAgentID     string                 `json:"to_agent_id"`
	Description   string                 `json:"description,omitempty"`
	PayloadSchema map[string]interface{} `json:"payload_schema,omitempty"`
	Channel       string                 `json:"channel,omitempty"`
}

// AgentOrgChart describes the agent topology derived from an approved analysis.
type AgentOrgChart struct {
	WorkflowID            string                 `json:"workflow_id"`
	Agents                []AgentCard            `json:"agents"`
	Connections           []AgentConnection      `json:"connections,omitempty"`
	CreatedFromAnalysisID string                 `json:"created_from_analysis_id,omitempty"`
	Metadata              map[string]interface{} `json:"metadata,omitempty"`
}

// ToolRegistryEntry describes one tool referenced by agent cards.
type ToolRegistryEntry struct {
	ToolID      string `json:"tool_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ToolRegistry maps tool id to its entry. First writer wins on duplicates.
type ToolRegistry struct {
	Tools map[string]ToolRegistryEntry `json:"tools"`
}

// AgentCardRegistry maps agent id to its card. IDs are unique by
// construction (one card per step, step ids unique).
type AgentCardRegistry struct {
	Agents map[string]AgentCard `json:"agents"`
}
