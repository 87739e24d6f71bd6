package handler

import (
	"net/http"
	"strconv"

	"github.com/storepilot/storepilot/internal/domain"
	"github.com/storepilot/storepilot/internal/handler/dto"
	"github.com/storepilot/storepilot/internal/repository"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

// handleListAuditLog returns the newest audit entries.
// @Summary List audit log
// @Description Get audit entries newest-first, limit-bounded
// @Tags audit
// @Produce json
// @Param limit query int false "Page size (1-500, default 50)"
// @Param actor query string false "Filter by actor"
// @Param action query string false "Filter by action"
// @Success 200 {object} dto.AuditLogResponse
// @Security BearerAuth
// @Router /audit [get]
func (h *Handler) handleListAuditLog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := defaultAuditLimit
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		if n, err := strconv.Atoi(limitParam); err == nil && n > 0 && n <= maxAuditLimit {
			limit = n
		}
	}

	var filters repository.AuditFilters
	if actor := r.URL.Query().Get("actor"); actor != "" {
		filters.Actor = &actor
	}
	if actionParam := r.URL.Query().Get("action"); actionParam != "" {
		action := domain.AuditAction(actionParam)
		filters.Action = &action
	}

	entries, err := h.auditRepo.Query(ctx, limit, filters)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch audit log")
		return
	}

	resp := dto.AuditLogResponse{Entries: make([]dto.AuditEntryResponse, len(entries))}
	for i, entry := range entries {
		resp.Entries[i] = dto.ToAuditEntryResponse(entry)
	}

	respondJSON(w, http.StatusOK, resp)
}
