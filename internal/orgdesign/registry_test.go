package orgdesign

import (
	"testing"

	"github.com/reimagen/agentarchitecture/internal/core"
	"github.com/reimagen/agentarchitecture/internal/testutil"
)

func TestBuildAgentRegistry(t *testing.T) {
	t.Parallel()

	chart := Synthesize(testutil.NewTestAnalysis())
	registry := BuildAgentRegistry(chart)

	if len(registry.Agents) != 2 {
		t.Fatalf("expected 2 registered agents, got %d", len(registry.Agents))
	}
	card, ok := registry.Agents["agent_step_2"]
	if !ok {
		t.Fatal("agent_step_2 missing from registry")
	}
	if card.Mode != core.ModeHuman {
		t.Errorf("agent_step_2 mode = %q, want HUMAN", card.Mode)
	}
}

func TestBuildToolRegistry_PrefixTemplates(t *testing.T) {
	t.Parallel()

	chart := &core.AgentOrgChart{
		Agents: []core.AgentCard{
			{ID: "agent_step_1", ToolIDs: []string{"api::Gmail API", "tool::Human Review"}},
			{ID: "agent_step_2", ToolIDs: []string{"legacy-tool"}},
		},
	}

	registry := BuildToolRegistry(chart)

	if len(registry.Tools) != 3 {
		t.Fatalf("expected 3 tools, got %d", len(registry.Tools))
	}

	api := registry.Tools["api::Gmail API"]
	if api.Name != "Gmail API" || api.Description != "API integration for Gmail API" {
		t.Errorf("api entry = %+v", api)
	}
	tool := registry.Tools["tool::Human Review"]
	if tool.Name != "Human Review" || tool.Description != "Tool for Human Review" {
		t.Errorf("tool entry = %+v", tool)
	}
	legacy := registry.Tools["legacy-tool"]
	if legacy.Name != "legacy-tool" || legacy.Description != "Tool referenced by agent card" {
		t.Errorf("unprefixed entry = %+v", legacy)
	}
}

func TestBuildToolRegistry_FirstWriterWins(t *testing.T) {
	t.Parallel()

	chart := &core.AgentOrgChart{
		Agents: []core.AgentCard{
			{ID: "agent_step_1", ToolIDs: []string{"tool::Shared"}},
			{ID: "agent_step_2", ToolIDs: []string{"tool::Shared"}},
		},
	}

	registry := BuildToolRegistry(chart)
	if len(registry.Tools) != 1 {
		t.Errorf("duplicate tool ids must collapse to one entry, got %d", len(registry.Tools))
	}
}
