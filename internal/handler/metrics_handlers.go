package handler

import (
	"log/slog"
	"net/http"

	"github.com/storepilot/storepilot/internal/handler/dto"
)

// handleGetMetrics returns the current-month rollup.
// @Summary Get monthly metrics
// @Description Aggregate run, output, and command counts plus estimated value for the current calendar month
// @Tags metrics
// @Produce json
// @Success 200 {object} dto.MetricsResponse
// @Security BearerAuth
// @Router /metrics [get]
func (h *Handler) handleGetMetrics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	summary, err := h.metricsService.Summary(ctx)
	if err != nil {
		slog.Error("failed to compute metrics", "error", err)
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to compute metrics")
		return
	}

	respondJSON(w, http.StatusOK, dto.MetricsResponse{
		TotalRuns:      summary.TotalRuns,
		TotalOutputs:   summary.TotalOutputs,
		TotalCommands:  summary.TotalCommands,
		EstimatedValue: summary.EstimatedValue,
		HoursSaved:     summary.HoursSaved,
	})
}
