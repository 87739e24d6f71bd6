package dto

import (
	"time"

	"github.com/storepilot/storepilot/internal/domain"
)

// AgentResponse represents one roster agent.
type AgentResponse struct {
	AgentType     string         `json:"agent_type"`
	Name          string         `json:"name"`
	Role          string         `json:"role"`
	Color         string         `json:"color"`
	Icon          string         `json:"icon"`
	IsActive      bool           `json:"is_active"`
	Configuration map[string]any `json:"configuration"`
	LastAction    *string        `json:"last_action"`
	LastActionAt  *time.Time     `json:"last_action_at"`
	CreatedAt     time.Time      `json:"created_at"`
}

// AgentsListResponse represents the response for GET /agents.
type AgentsListResponse struct {
	Agents []AgentResponse `json:"agents"`
}

// TaskResponse represents one task.
type TaskResponse struct {
	ID          string    `json:"id"`
	AgentType   string    `json:"agent_type"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Priority    string    `json:"priority"`
	Status      string    `json:"status"`
	Result      *string   `json:"result"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TasksListResponse represents the response for GET /tasks.
type TasksListResponse struct {
	Tasks          []TaskResponse `json:"tasks"`
	CountsByStatus map[string]int `json:"counts_by_status"`
}

// OutputResponse represents one deliverable.
type OutputResponse struct {
	ID             string    `json:"id"`
	AgentType      string    `json:"agent_type"`
	OutputType     string    `json:"output_type"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	OverallQuality *int      `json:"overall_quality"`
	Rating         *int      `json:"rating"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// OutputsListResponse represents the response for GET /outputs.
type OutputsListResponse struct {
	Outputs []OutputResponse `json:"outputs"`
	Total   int              `json:"total"`
}

// DeliverablesListResponse represents the response for GET /deliverables.
type DeliverablesListResponse struct {
	Deliverables []OutputResponse `json:"deliverables"`
}

// RunAgentResponse represents the response for a direct single-agent run.
type RunAgentResponse struct {
	Outputs []OutputResponse `json:"outputs"`
}

// AgentResultResponse is the per-agent breakdown of an orchestrated command.
type AgentResultResponse struct {
	AgentType string  `json:"agent_type"`
	TaskID    string  `json:"task_id,omitempty"`
	Success   bool    `json:"success"`
	Error     *string `json:"error,omitempty"`
}

// SubmitCommandResponse represents the response for POST /commands.
type SubmitCommandResponse struct {
	AgentCount int                   `json:"agent_count"`
	Outputs    []OutputResponse      `json:"outputs"`
	Results    []AgentResultResponse `json:"results"`
}

// AuditEntryResponse represents one audit log entry.
type AuditEntryResponse struct {
	ID           int64          `json:"id"`
	Actor        string         `json:"actor"`
	Action       string         `json:"action"`
	ResourceType *string        `json:"resource_type"`
	ResourceID   *string        `json:"resource_id"`
	Details      map[string]any `json:"details"`
	CreatedAt    time.Time      `json:"created_at"`
}

// AuditLogResponse represents the response for GET /audit.
type AuditLogResponse struct {
	Entries []AuditEntryResponse `json:"entries"`
}

// MetricsResponse represents the response for GET /metrics.
type MetricsResponse struct {
	TotalRuns      int     `json:"total_runs"`
	TotalOutputs   int     `json:"total_outputs"`
	TotalCommands  int     `json:"total_commands"`
	EstimatedValue float64 `json:"estimated_value"`
	HoursSaved     float64 `json:"hours_saved"`
}

// ToAgentResponse converts domain.Agent to AgentResponse.
func ToAgentResponse(agent *domain.Agent) AgentResponse {
	return AgentResponse{
		AgentType:     string(agent.AgentType),
		Name:          agent.Name,
		Role:          agent.Role,
		Color:         agent.Color,
		Icon:          agent.Icon,
		IsActive:      agent.IsActive,
		Configuration: agent.Configuration,
		LastAction:    agent.LastAction,
		LastActionAt:  agent.LastActionAt,
		CreatedAt:     agent.CreatedAt,
	}
}

// ToTaskResponse converts domain.Task to TaskResponse.
func ToTaskResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID,
		AgentType:   string(task.AgentType),
		Title:       task.Title,
		Description: task.Description,
		Priority:    string(task.Priority),
		Status:      string(task.Status),
		Result:      task.Result,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

// ToOutputResponse converts domain.Deliverable to OutputResponse.
func ToOutputResponse(d *domain.Deliverable) OutputResponse {
	return OutputResponse{
		ID:             d.ID,
		AgentType:      string(d.AgentType),
		OutputType:     d.OutputType,
		Title:          d.Title,
		Content:        d.Content,
		OverallQuality: d.OverallQuality,
		Rating:         d.Rating,
		Status:         string(d.Status),
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

// ToOutputResponses converts a slice of deliverables.
func ToOutputResponses(deliverables []*domain.Deliverable) []OutputResponse {
	outputs := make([]OutputResponse, len(deliverables))
	for i, d := range deliverables {
		outputs[i] = ToOutputResponse(d)
	}
	return outputs
}

// ToAuditEntryResponse converts domain.AuditEntry to AuditEntryResponse.
func ToAuditEntryResponse(entry *domain.AuditEntry) AuditEntryResponse {
	return AuditEntryResponse{
		ID:           entry.ID,
		Actor:        entry.Actor,
		Action:       string(entry.Action),
		ResourceType: entry.ResourceType,
		ResourceID:   entry.ResourceID,
		Details:      entry.Details,
		CreatedAt:    entry.CreatedAt,
	}
}
