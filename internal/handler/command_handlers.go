package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/storepilot/storepilot/internal/handler/dto"
	"github.com/storepilot/storepilot/internal/service"
)

// handleSubmitCommand fans one operator command out to all matching agents.
// @Summary Submit an operator command
// @Description Routes a free-text command to every matching agent, runs them concurrently, and returns the per-agent breakdown with all produced outputs.
// @Tags orchestration
// @Accept json
// @Produce json
// @Param request body dto.SubmitCommandRequest true "Command submission request"
// @Success 200 {object} dto.SubmitCommandResponse
// @Failure 422 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /commands [post]
func (h *Handler) handleSubmitCommand(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req dto.SubmitCommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if req.Command == "" {
		respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "command is required")
		return
	}

	result, err := h.orchestrator.Orchestrate(ctx, req.Command)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toSubmitCommandResponse(result))
}

// toSubmitCommandResponse flattens an orchestration result: the combined
// outputs of every successful agent plus the per-agent success/failure
// breakdown.
func toSubmitCommandResponse(result *service.OrchestrationResult) dto.SubmitCommandResponse {
	resp := dto.SubmitCommandResponse{
		AgentCount: result.AgentCount,
		Outputs:    []dto.OutputResponse{},
		Results:    make([]dto.AgentResultResponse, len(result.Results)),
	}

	for i, res := range result.Results {
		agentResult := dto.AgentResultResponse{
			AgentType: string(res.AgentType),
			TaskID:    res.TaskID,
			Success:   res.Err == nil,
		}
		if res.Err != nil {
			msg := res.Err.Error()
			agentResult.Error = &msg
		}
		resp.Results[i] = agentResult
		resp.Outputs = append(resp.Outputs, dto.ToOutputResponses(res.Outputs)...)
	}

	return resp
}

// handleRunAgent executes a single agent directly.
// @Summary Run a single agent
// @Description Executes one agent with optional instructions. Fails with AGENT_BUSY if the agent is already running and AGENT_PAUSED if it is deactivated.
// @Tags orchestration
// @Accept json
// @Produce json
// @Param agent_type path string true "Agent type"
// @Param request body dto.RunAgentRequest true "Run request"
// @Success 200 {object} dto.RunAgentResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /agents/{agent_type}/run [post]
func (h *Handler) handleRunAgent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	agentType, ok := extractAgentType(w, r)
	if !ok {
		return
	}

	// Instructions are optional; an empty body means a default run.
	var req dto.RunAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	outputs, err := h.runner.Run(ctx, agentType, req.Instructions, "")
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.RunAgentResponse{
		Outputs: dto.ToOutputResponses(outputs),
	})
}
