package service

import (
	"fmt"
	"strings"

	"github.com/storepilot/storepilot/internal/domain"
)

// Deliverable output types produced by the roster.
const (
	OutputTypeSocialPost    = "social_post"
	OutputTypeEmailCampaign = "email_campaign"
	OutputTypeMarketReport  = "market_report"
	OutputTypeRetentionPlan = "retention_plan"
	OutputTypeStrategyBrief = "strategy_brief"
	OutputTypePricingUpdate = "pricing_update"
)

// draftOutput is one artifact produced by a behavior, quality already scored.
// Quality is the producing agent's own heuristic, fixed at creation time.
type draftOutput struct {
	OutputType string
	Title      string
	Content    string
	Quality    int
}

// behavior generates an agent's deliverables for one run. Behaviors are pure
// with respect to their inputs: the same agent state and instructions always
// produce the same drafts.
type behavior func(agent *domain.Agent, instructions string) []draftOutput

// behaviors is the dispatch table replacing a per-agent type hierarchy.
var behaviors = map[domain.AgentType]behavior{
	domain.AgentTypeContent:      runContentAgent,
	domain.AgentTypeIntelligence: runIntelligenceAgent,
	domain.AgentTypeSuccess:      runSuccessAgent,
	domain.AgentTypeStrategy:     runStrategyAgent,
	domain.AgentTypeSales:        runSalesAgent,
}

func runContentAgent(agent *domain.Agent, instructions string) []draftOutput {
	voice := configString(agent, "brand_voice", "friendly")
	hashtags := configInt(agent, "hashtag_count", 3)
	topic := topicFrom(instructions, "this week's highlights")

	post := fmt.Sprintf("%s %s", headline(topic, voice), hashtagLine(hashtags))
	email := fmt.Sprintf(
		"Subject: %s\n\nHi there,\n\n%s\n\nSee you in the store,\nThe team",
		headline(topic, voice), bodyCopy(topic, voice),
	)

	return []draftOutput{
		{
			OutputType: OutputTypeSocialPost,
			Title:      "Social post: " + topic,
			Content:    post,
			Quality:    scoreQuality(72, post, instructions),
		},
		{
			OutputType: OutputTypeEmailCampaign,
			Title:      "Email campaign: " + topic,
			Content:    email,
			Quality:    scoreQuality(68, email, instructions),
		},
	}
}

func runIntelligenceAgent(agent *domain.Agent, instructions string) []draftOutput {
	tracked := configInt(agent, "tracked_competitors", 5)
	topic := topicFrom(instructions, "the local market")

	report := fmt.Sprintf(
		"Competitive scan covering %d tracked competitors.\n\nFocus: %s.\n"+
			"Price positions, assortment gaps, and promo cadence are summarized per competitor, "+
			"with movement since the last scan flagged.",
		tracked, topic,
	)

	return []draftOutput{{
		OutputType: OutputTypeMarketReport,
		Title:      "Market report: " + topic,
		Content:    report,
		Quality:    scoreQuality(75, report, instructions),
	}}
}

func runSuccessAgent(agent *domain.Agent, instructions string) []draftOutput {
	window := configInt(agent, "churn_window_days", 60)
	channel := configString(agent, "outreach_channel", "email")
	topic := topicFrom(instructions, "lapsed customers")

	plan := fmt.Sprintf(
		"Retention play for %s.\n\nSegment: customers inactive for %d+ days. "+
			"Outreach via %s with a personalized incentive, followed by a second touch after one week.",
		topic, window, channel,
	)

	return []draftOutput{{
		OutputType: OutputTypeRetentionPlan,
		Title:      "Retention plan: " + topic,
		Content:    plan,
		Quality:    scoreQuality(70, plan, instructions),
	}}
}

func runStrategyAgent(agent *domain.Agent, instructions string) []draftOutput {
	horizon := configInt(agent, "forecast_horizon_weeks", 12)
	topic := topicFrom(instructions, "overall store performance")

	brief := fmt.Sprintf(
		"Strategy brief: %s.\n\nForecast horizon: %d weeks. "+
			"Demand outlook, category mix shifts, and two recommended bets with expected impact.",
		topic, horizon,
	)

	return []draftOutput{{
		OutputType: OutputTypeStrategyBrief,
		Title:      "Strategy brief: " + topic,
		Content:    brief,
		Quality:    scoreQuality(74, brief, instructions),
	}}
}

func runSalesAgent(agent *domain.Agent, instructions string) []draftOutput {
	floor := configInt(agent, "margin_floor_percent", 20)
	cap := configInt(agent, "discount_cap_percent", 30)
	topic := topicFrom(instructions, "slow-moving stock")

	update := fmt.Sprintf(
		"Pricing update targeting %s.\n\nProposed markdowns respect the %d%% margin floor "+
			"and the %d%% discount cap. Restock triggers adjusted for affected SKUs.",
		topic, floor, cap,
	)

	return []draftOutput{{
		OutputType: OutputTypePricingUpdate,
		Title:      "Pricing update: " + topic,
		Content:    update,
		Quality:    scoreQuality(71, update, instructions),
	}}
}

// topicFrom derives a short subject line from the instructions.
func topicFrom(instructions, fallback string) string {
	trimmed := strings.TrimSpace(instructions)
	if trimmed == "" {
		return fallback
	}
	return truncate(trimmed, 80)
}

// truncate shortens s to at most max runes, appending an ellipsis. Cutting
// happens on rune boundaries so multi-byte input stays valid UTF-8.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return strings.TrimSpace(string(runes[:max])) + "…"
}

func headline(topic, voice string) string {
	if voice == "playful" {
		return fmt.Sprintf("You asked, we delivered: %s!", topic)
	}
	return fmt.Sprintf("Don't miss it: %s", topic)
}

func bodyCopy(topic, voice string) string {
	if voice == "playful" {
		return fmt.Sprintf("Big news about %s — we think you're going to love this one.", topic)
	}
	return fmt.Sprintf("We wanted you to be the first to know about %s.", topic)
}

func hashtagLine(count int) string {
	base := []string{"#shoplocal", "#retail", "#newarrivals", "#deals", "#community"}
	if count > len(base) {
		count = len(base)
	}
	if count < 0 {
		count = 0
	}
	return strings.Join(base[:count], " ")
}

// scoreQuality is the shared scoring heuristic: a per-behavior base, a bonus
// for substantial content, and a bonus for specific operator instructions,
// clamped to 0..100.
func scoreQuality(base int, content, instructions string) int {
	score := base
	if len(content) > 120 {
		score += 10
	}
	if len(strings.Fields(instructions)) >= 4 {
		score += 8
	}
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}

// configString reads a string tunable from the agent configuration.
func configString(agent *domain.Agent, key, fallback string) string {
	if v, ok := agent.Configuration[key].(string); ok {
		return v
	}
	return fallback
}

// configInt reads a numeric tunable. JSONB numbers scan as float64.
func configInt(agent *domain.Agent, key string, fallback int) int {
	switch v := agent.Configuration[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return fallback
	}
}

// configBool reads a boolean tunable from the agent configuration.
func configBool(agent *domain.Agent, key string, fallback bool) bool {
	if v, ok := agent.Configuration[key].(bool); ok {
		return v
	}
	return fallback
}
