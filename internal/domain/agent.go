package domain

import "time"

// AgentType identifies one of the fixed roster agents.
type AgentType string

const (
	AgentTypeContent      AgentType = "content"
	AgentTypeIntelligence AgentType = "intelligence"
	AgentTypeSuccess      AgentType = "success"
	AgentTypeStrategy     AgentType = "strategy"
	AgentTypeSales        AgentType = "sales"
)

// AllAgentTypes lists the roster in its canonical order.
var AllAgentTypes = []AgentType{
	AgentTypeContent,
	AgentTypeIntelligence,
	AgentTypeSuccess,
	AgentTypeStrategy,
	AgentTypeSales,
}

// IsValid checks if the agent type is one of the roster members.
func (t AgentType) IsValid() bool {
	switch t {
	case AgentTypeContent, AgentTypeIntelligence, AgentTypeSuccess,
		AgentTypeStrategy, AgentTypeSales:
		return true
	default:
		return false
	}
}

// Agent represents one member of the fixed agent roster.
// Agents are seeded at provisioning time and never deleted.
type Agent struct {
	AgentType     AgentType
	Name          string
	Role          string
	Color         string
	Icon          string
	IsActive      bool
	Configuration map[string]any
	LastAction    *string
	LastActionAt  *time.Time
	CreatedAt     time.Time
}

// ConfigSchema lists the recognized configuration keys per agent type.
// Patches touching any other key are rejected with ErrInvalidConfig.
var ConfigSchema = map[AgentType][]string{
	AgentTypeContent:      {"brand_voice", "auto_send", "post_length", "hashtag_count"},
	AgentTypeIntelligence: {"tracked_competitors", "report_depth", "alert_threshold"},
	AgentTypeSuccess:      {"churn_window_days", "vip_spend_threshold", "outreach_channel"},
	AgentTypeStrategy:     {"forecast_horizon_weeks", "risk_tolerance"},
	AgentTypeSales:        {"margin_floor_percent", "restock_lead_days", "discount_cap_percent"},
}

// RecognizesConfigKey reports whether key is part of the agent's schema.
func (a *Agent) RecognizesConfigKey(key string) bool {
	for _, k := range ConfigSchema[a.AgentType] {
		if k == key {
			return true
		}
	}
	return false
}
