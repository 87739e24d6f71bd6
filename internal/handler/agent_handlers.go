package handler

import (
	"encoding/json"
	"net/http"

	"github.com/storepilot/storepilot/internal/domain"
	"github.com/storepilot/storepilot/internal/handler/dto"
)

// extractAgentType extracts and validates the agent_type path parameter.
func extractAgentType(w http.ResponseWriter, r *http.Request) (domain.AgentType, bool) {
	agentType := domain.AgentType(r.PathValue("agent_type"))
	if !agentType.IsValid() {
		respondDomainError(w, domain.ErrAgentNotFound)
		return "", false
	}
	return agentType, true
}

// handleListAgents returns the full agent roster.
// @Summary List agents
// @Description Get the fixed agent roster in canonical order
// @Tags agents
// @Produce json
// @Success 200 {object} dto.AgentsListResponse
// @Security BearerAuth
// @Router /agents [get]
func (h *Handler) handleListAgents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	agents, err := h.agentService.List(ctx)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	resp := dto.AgentsListResponse{Agents: make([]dto.AgentResponse, len(agents))}
	for i, agent := range agents {
		resp.Agents[i] = dto.ToAgentResponse(agent)
	}

	respondJSON(w, http.StatusOK, resp)
}

// handleToggleAgent flips an agent's activation flag.
// @Summary Toggle an agent
// @Description Flips the agent's is_active flag and returns the new state
// @Tags agents
// @Produce json
// @Param agent_type path string true "Agent type"
// @Success 200 {object} dto.AgentResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /agents/{agent_type}/toggle [post]
func (h *Handler) handleToggleAgent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	agentType, ok := extractAgentType(w, r)
	if !ok {
		return
	}

	agent, err := h.agentService.Toggle(ctx, agentType)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToAgentResponse(agent))
}

// handleConfigureAgent patches an agent's configuration.
// @Summary Configure an agent
// @Description Merges the patch into the agent configuration. Provided keys are replaced wholesale; unknown keys fail with INVALID_CONFIG.
// @Tags agents
// @Accept json
// @Produce json
// @Param agent_type path string true "Agent type"
// @Param request body dto.ConfigureAgentRequest true "Configuration patch"
// @Success 200 {object} dto.AgentResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /agents/{agent_type}/config [patch]
func (h *Handler) handleConfigureAgent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	agentType, ok := extractAgentType(w, r)
	if !ok {
		return
	}

	var req dto.ConfigureAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if len(req.Config) == 0 {
		respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "config is required")
		return
	}

	agent, err := h.agentService.Configure(ctx, agentType, req.Config)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToAgentResponse(agent))
}
