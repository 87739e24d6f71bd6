package handler

import (
	"encoding/json"
	"net/http"

	"github.com/storepilot/storepilot/internal/domain"
	"github.com/storepilot/storepilot/internal/handler/dto"
	"github.com/storepilot/storepilot/internal/repository"
)

// parseAgentTypeFilter reads an optional agent_type query parameter.
// Returns (nil, false) and responds with an error when the value is invalid.
func parseAgentTypeFilter(w http.ResponseWriter, r *http.Request) (*domain.AgentType, bool) {
	param := r.URL.Query().Get("agent_type")
	if param == "" {
		return nil, true
	}
	agentType := domain.AgentType(param)
	if !agentType.IsValid() {
		respondDomainError(w, domain.ErrAgentNotFound)
		return nil, false
	}
	return &agentType, true
}

// handleListOutputs lists deliverables in the outputs view.
// @Summary List outputs
// @Description Get deliverables newest-first, filterable by producing agent and output type
// @Tags outputs
// @Produce json
// @Param agent_type query string false "Filter by producing agent"
// @Param output_type query string false "Filter by output type, e.g. social_post"
// @Success 200 {object} dto.OutputsListResponse
// @Security BearerAuth
// @Router /outputs [get]
func (h *Handler) handleListOutputs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	agentType, ok := parseAgentTypeFilter(w, r)
	if !ok {
		return
	}

	var outputType *string
	if param := r.URL.Query().Get("output_type"); param != "" {
		outputType = &param
	}

	outputs, total, err := h.pipelineService.List(ctx, repository.DeliverableListFilters{
		AgentType:  agentType,
		OutputType: outputType,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.OutputsListResponse{
		Outputs: dto.ToOutputResponses(outputs),
		Total:   total,
	})
}

// handleRateOutput stores an operator rating for an output.
// @Summary Rate an output
// @Description Stores a 1-5 operator rating. Re-rating overwrites idempotently.
// @Tags outputs
// @Accept json
// @Produce json
// @Param id path string true "Output ID"
// @Param request body dto.RateOutputRequest true "Rating request"
// @Success 200 {object} dto.OutputResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /outputs/{id}/rating [post]
func (h *Handler) handleRateOutput(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := extractID(w, r)
	if !ok {
		return
	}

	var req dto.RateOutputRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	output, err := h.pipelineService.Rate(ctx, id, req.Rating)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToOutputResponse(output))
}

// handleListDeliverables lists deliverables in the pipeline view.
// @Summary List deliverables
// @Description Get deliverables newest-first, filterable by producing agent and pipeline status
// @Tags deliverables
// @Produce json
// @Param agent_type query string false "Filter by producing agent"
// @Param status query string false "Filter by status: draft, approved, shipped, rejected"
// @Success 200 {object} dto.DeliverablesListResponse
// @Failure 422 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /deliverables [get]
func (h *Handler) handleListDeliverables(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	agentType, ok := parseAgentTypeFilter(w, r)
	if !ok {
		return
	}

	var status *domain.DeliverableStatus
	if param := r.URL.Query().Get("status"); param != "" {
		s := domain.DeliverableStatus(param)
		if !s.IsValid() {
			respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "status must be 'draft', 'approved', 'shipped', or 'rejected'")
			return
		}
		status = &s
	}

	deliverables, _, err := h.pipelineService.List(ctx, repository.DeliverableListFilters{
		AgentType: agentType,
		Status:    status,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.DeliverablesListResponse{
		Deliverables: dto.ToOutputResponses(deliverables),
	})
}

// handleApproveDeliverable approves a draft deliverable.
// @Summary Approve a deliverable
// @Description Moves a draft deliverable to approved. Approving a non-draft fails with INVALID_STATE.
// @Tags deliverables
// @Produce json
// @Param id path string true "Deliverable ID"
// @Success 200 {object} dto.OutputResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /deliverables/{id}/approve [post]
func (h *Handler) handleApproveDeliverable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := extractID(w, r)
	if !ok {
		return
	}

	deliverable, err := h.pipelineService.Approve(ctx, id)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToOutputResponse(deliverable))
}

// handleRejectDeliverable rejects a draft deliverable.
// @Summary Reject a deliverable
// @Description Moves a draft deliverable to rejected. Rejecting a non-draft fails with INVALID_STATE.
// @Tags deliverables
// @Produce json
// @Param id path string true "Deliverable ID"
// @Success 200 {object} dto.OutputResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /deliverables/{id}/reject [post]
func (h *Handler) handleRejectDeliverable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := extractID(w, r)
	if !ok {
		return
	}

	deliverable, err := h.pipelineService.Reject(ctx, id)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToOutputResponse(deliverable))
}

// handleShipDeliverable ships an approved deliverable.
// @Summary Ship a deliverable
// @Description Moves an approved deliverable to shipped, the terminal state.
// @Tags deliverables
// @Produce json
// @Param id path string true "Deliverable ID"
// @Success 200 {object} dto.OutputResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /deliverables/{id}/ship [post]
func (h *Handler) handleShipDeliverable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := extractID(w, r)
	if !ok {
		return
	}

	deliverable, err := h.pipelineService.Ship(ctx, id)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToOutputResponse(deliverable))
}
