package orgdesign

import (
	"strings"

	"github.com/reimagen/agentarchitecture/internal/core"
)

// BuildAgentRegistry indexes an org chart's cards by agent id. IDs are
// unique by construction (one card per step).
func BuildAgentRegistry(chart *core.AgentOrgChart) *core.AgentCardRegistry {
	registry := &core.AgentCardRegistry{Agents: make(map[string]core.AgentCard, len(chart.Agents))}
	for _, card := range chart.Agents {
		registry.Agents[card.ID] = card
	}
	return registry
}

// BuildToolRegistry scans all cards' tool ids once and registers each
// distinct id with a description templated from its prefix. First writer
// wins on duplicates.
func BuildToolRegistry(chart *core.AgentOrgChart) *core.ToolRegistry {
	registry := &core.ToolRegistry{Tools: make(map[string]core.ToolRegistryEntry)}

	for _, card := range chart.Agents {
		for _, toolID := range card.ToolIDs {
			if _, ok := registry.Tools[toolID]; ok {
				continue
			}

			var name, description string
			switch {
			case strings.HasPrefix(toolID, "api::"):
				name = strings.TrimPrefix(toolID, "api::")
				description = "API integration for " + name
			case strings.HasPrefix(toolID, "tool::"):
				name = strings.TrimPrefix(toolID, "tool::")
				description = "Tool for " + name
			default:
				name = toolID
				description = "Tool referenced by agent card"
			}

			registry.Tools[toolID] = core.ToolRegistryEntry{
				ToolID:      toolID,
				Name:        name,
				Description: description,
			}
		}
	}

	return registry
}
