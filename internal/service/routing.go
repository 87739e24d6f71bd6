package service

import (
	"strings"

	"github.com/storepilot/storepilot/internal/domain"
)

// agentVocabulary holds each agent's domain keywords. Manual task routing and
// command fan-out both match against these sets; only the matching semantics
// differ (single owner vs. multi-agent).
var agentVocabulary = map[domain.AgentType][]string{
	domain.AgentTypeContent: {
		"post", "social", "copy", "caption", "content", "campaign",
		"email", "newsletter", "blog", "write", "announce",
	},
	domain.AgentTypeIntelligence: {
		"competitor", "competitive", "market", "trend", "benchmark", "intel",
	},
	domain.AgentTypeSuccess: {
		"customer", "retention", "churn", "win back", "winback",
		"loyal", "vip", "review", "feedback",
	},
	domain.AgentTypeStrategy: {
		"strategy", "strategic", "forecast", "roadmap", "growth", "quarter", "plan",
	},
	domain.AgentTypeSales: {
		"pricing", "price", "discount", "sale", "inventory", "stock",
		"restock", "promotion", "markdown", "bundle",
	},
}

// taskRoutingOrder is the fixed evaluation order for single-owner routing.
// First match wins; unmatched titles fall through to the strategy agent.
var taskRoutingOrder = []domain.AgentType{
	domain.AgentTypeContent,
	domain.AgentTypeIntelligence,
	domain.AgentTypeSuccess,
	domain.AgentTypeStrategy,
	domain.AgentTypeSales,
}

// matchesVocabulary reports whether any of the agent's keywords occur in text.
func matchesVocabulary(agentType domain.AgentType, text string) bool {
	for _, keyword := range agentVocabulary[agentType] {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

// RouteTask resolves a manually submitted task title to exactly one owning
// agent. The function is pure, deterministic, and total: every title resolves,
// with the strategy agent as the catch-all.
func RouteTask(title string) domain.AgentType {
	lowered := strings.ToLower(title)
	for _, agentType := range taskRoutingOrder {
		if matchesVocabulary(agentType, lowered) {
			return agentType
		}
	}
	return domain.AgentTypeStrategy
}

// MatchCommand classifies a free-text operator command against every agent's
// vocabulary and returns all matches in roster order. Unlike RouteTask this is
// fan-out matching: a command may address several agents, and an empty result
// means no agent could be routed.
func MatchCommand(command string) []domain.AgentType {
	lowered := strings.ToLower(command)

	var matched []domain.AgentType
	for _, agentType := range domain.AllAgentTypes {
		if matchesVocabulary(agentType, lowered) {
			matched = append(matched, agentType)
		}
	}
	return matched
}
