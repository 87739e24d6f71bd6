package dto

// SubmitCommandRequest represents the request body for POST /commands.
type SubmitCommandRequest struct {
	Command string `json:"command"`
}

// RunAgentRequest represents the request body for POST /agents/{agent_type}/run.
type RunAgentRequest struct {
	Instructions string `json:"instructions,omitempty"`
}

// CreateTaskRequest represents the request body for POST /tasks.
// AgentType is optional: omitted tasks are auto-routed by title keywords.
type CreateTaskRequest struct {
	AgentType   *string `json:"agent_type,omitempty"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Priority    string  `json:"priority,omitempty"`
}

// UpdateTaskStatusRequest represents the request body for PATCH /tasks/{id}/status.
type UpdateTaskStatusRequest struct {
	Status string `json:"status"`
}

// RateOutputRequest represents the request body for POST /outputs/{id}/rating.
type RateOutputRequest struct {
	Rating int `json:"rating"`
}

// ConfigureAgentRequest represents the request body for PATCH /agents/{agent_type}/config.
type ConfigureAgentRequest struct {
	Config map[string]any `json:"config"`
}
