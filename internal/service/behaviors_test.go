package service

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/storepilot/storepilot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAgent(agentType domain.AgentType, config map[string]any) *domain.Agent {
	if config == nil {
		config = map[string]any{}
	}
	return &domain.Agent{
		AgentType:     agentType,
		Name:          "Test",
		IsActive:      true,
		Configuration: config,
	}
}

func TestBehaviors_CoverRoster(t *testing.T) {
	for _, agentType := range domain.AllAgentTypes {
		run, ok := behaviors[agentType]
		require.True(t, ok, "missing behavior for %s", agentType)

		drafts := run(testAgent(agentType, nil), "Push the spring collection")
		require.NotEmpty(t, drafts)
		for _, d := range drafts {
			assert.NotEmpty(t, d.OutputType)
			assert.NotEmpty(t, d.Title)
			assert.NotEmpty(t, d.Content)
			assert.GreaterOrEqual(t, d.Quality, 0)
			assert.LessOrEqual(t, d.Quality, 100)
		}
	}
}

func TestContentAgent_ProducesPostAndEmail(t *testing.T) {
	drafts := runContentAgent(testAgent(domain.AgentTypeContent, nil), "Announce the summer sale")

	require.Len(t, drafts, 2)
	assert.Equal(t, OutputTypeSocialPost, drafts[0].OutputType)
	assert.Equal(t, OutputTypeEmailCampaign, drafts[1].OutputType)
	assert.Contains(t, drafts[0].Content, "#shoplocal")
	assert.Contains(t, drafts[1].Content, "Subject:")
}

func TestContentAgent_BrandVoice(t *testing.T) {
	agent := testAgent(domain.AgentTypeContent, map[string]any{"brand_voice": "playful"})
	drafts := runContentAgent(agent, "new mugs")

	assert.Contains(t, drafts[0].Content, "You asked, we delivered")
}

func TestContentAgent_HashtagCount(t *testing.T) {
	// JSONB numbers arrive as float64
	agent := testAgent(domain.AgentTypeContent, map[string]any{"hashtag_count": float64(1)})
	drafts := runContentAgent(agent, "new mugs")

	assert.Equal(t, 1, strings.Count(drafts[0].Content, "#"))
}

func TestBehaviors_Deterministic(t *testing.T) {
	agent := testAgent(domain.AgentTypeSales, map[string]any{"margin_floor_percent": float64(25)})

	first := runSalesAgent(agent, "Clear out winter stock")
	second := runSalesAgent(agent, "Clear out winter stock")
	assert.Equal(t, first, second)
}

func TestTopicFrom(t *testing.T) {
	assert.Equal(t, "fallback", topicFrom("", "fallback"))
	assert.Equal(t, "fallback", topicFrom("   ", "fallback"))
	assert.Equal(t, "short", topicFrom("short", "fallback"))

	long := strings.Repeat("x", 200)
	got := topicFrom(long, "fallback")
	assert.True(t, len(got) < len(long), "long instructions should be truncated")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 80))
	assert.Equal(t, strings.Repeat("x", 80), truncate(strings.Repeat("x", 80), 80))
	assert.Equal(t, strings.Repeat("x", 80)+"…", truncate(strings.Repeat("x", 81), 80))

	// Multi-byte input must be cut on rune boundaries, never mid-rune.
	accented := strings.Repeat("é", 200)
	got := truncate(accented, 80)
	assert.True(t, utf8.ValidString(got), "truncated output must stay valid UTF-8")
	assert.Equal(t, 81, utf8.RuneCountInString(got), "80 runes plus the ellipsis")

	mixed := strings.Repeat("x", 79) + strings.Repeat("日本語", 20)
	got = truncate(mixed, 80)
	assert.True(t, utf8.ValidString(got))
	assert.True(t, strings.HasSuffix(got, "…"))

	assert.True(t, utf8.ValidString(taskTitle(strings.Repeat("ü", 300))))
	assert.True(t, utf8.ValidString(topicFrom(strings.Repeat("ü", 300), "fallback")))
}

func TestScoreQuality(t *testing.T) {
	short := "hi"
	long := strings.Repeat("a", 200)

	assert.Equal(t, 70, scoreQuality(70, short, "one two"))
	assert.Equal(t, 80, scoreQuality(70, long, "one two"))
	assert.Equal(t, 88, scoreQuality(70, long, "one two three four"))
	assert.Equal(t, 100, scoreQuality(95, long, "one two three four"), "score is capped at 100")
	assert.Equal(t, 0, scoreQuality(-20, short, ""), "score floors at 0")
}

func TestConfigHelpers(t *testing.T) {
	agent := testAgent(domain.AgentTypeSuccess, map[string]any{
		"outreach_channel":  "sms",
		"churn_window_days": float64(30),
		"auto_send":         true,
	})

	assert.Equal(t, "sms", configString(agent, "outreach_channel", "email"))
	assert.Equal(t, "email", configString(agent, "missing", "email"))
	assert.Equal(t, 30, configInt(agent, "churn_window_days", 60))
	assert.Equal(t, 60, configInt(agent, "missing", 60))
	assert.True(t, configBool(agent, "auto_send", false))
	assert.False(t, configBool(agent, "missing", false))
}
