package service_test

import (
	"testing"

	"github.com/storepilot/storepilot/internal/domain"
	"github.com/storepilot/storepilot/internal/service"
	"github.com/stretchr/testify/assert"
)

func TestRouteTask(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  domain.AgentType
	}{
		{
			name:  "social post goes to content",
			title: "Draft a social post for the launch",
			want:  domain.AgentTypeContent,
		},
		{
			name:  "competitor research goes to intelligence",
			title: "Benchmark competitor assortment",
			want:  domain.AgentTypeIntelligence,
		},
		{
			name:  "vip winback goes to success",
			title: "Win back lapsed VIP customers",
			want:  domain.AgentTypeSuccess,
		},
		{
			name:  "quarterly forecast goes to strategy",
			title: "Forecast next quarter revenue",
			want:  domain.AgentTypeStrategy,
		},
		{
			name:  "restock goes to sales",
			title: "Restock low inventory",
			want:  domain.AgentTypeSales,
		},
		{
			name:  "unmatched title falls through to strategy",
			title: "Do something useful today",
			want:  domain.AgentTypeStrategy,
		},
		{
			name:  "matching is case insensitive",
			title: "DISCOUNT the winter line",
			want:  domain.AgentTypeSales,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, service.RouteTask(tt.title))
		})
	}
}

func TestRouteTask_FirstMatchWins(t *testing.T) {
	// Both content ("write") and sales ("pricing") match; content comes
	// first in routing order.
	got := service.RouteTask("Write up the new pricing")
	assert.Equal(t, domain.AgentTypeContent, got)
}

func TestMatchCommand(t *testing.T) {
	tests := []struct {
		name    string
		command string
		want    []domain.AgentType
	}{
		{
			name:    "multi-agent command matches in roster order",
			command: "Write a post about our weekend sale and check competitor pricing",
			want: []domain.AgentType{
				domain.AgentTypeContent,
				domain.AgentTypeIntelligence,
				domain.AgentTypeSales,
			},
		},
		{
			name:    "single agent command",
			command: "Win back lapsed VIP customers",
			want:    []domain.AgentType{domain.AgentTypeSuccess},
		},
		{
			name:    "no keywords matches nothing",
			command: "qwerty asdf zxcv",
			want:    nil,
		},
		{
			name:    "empty command matches nothing",
			command: "",
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, service.MatchCommand(tt.command))
		})
	}
}
