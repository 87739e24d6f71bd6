package handler

import (
	"encoding/json"
	"net/http"

	"github.com/storepilot/storepilot/internal/domain"
	"github.com/storepilot/storepilot/internal/handler/dto"
	"github.com/storepilot/storepilot/internal/service"
)

// handleCreateTask creates a new task.
// @Summary Create a task
// @Description Creates a pending task. When agent_type is omitted the owner is resolved by keyword routing on the title.
// @Tags tasks
// @Accept json
// @Produce json
// @Param request body dto.CreateTaskRequest true "Task creation request"
// @Success 201 {object} dto.TaskResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks [post]
func (h *Handler) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req dto.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if req.Title == "" {
		respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "title is required")
		return
	}

	priority := domain.TaskPriorityMedium
	if req.Priority != "" {
		priority = domain.TaskPriority(req.Priority)
		if !priority.IsValid() {
			respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "priority must be 'low', 'medium', or 'high'")
			return
		}
	}

	var agentType *domain.AgentType
	if req.AgentType != nil && *req.AgentType != "" {
		t := domain.AgentType(*req.AgentType)
		if !t.IsValid() {
			respondDomainError(w, domain.ErrAgentNotFound)
			return
		}
		agentType = &t
	}

	task, err := h.taskService.CreateTask(ctx, service.CreateTaskParams{
		AgentType:   agentType,
		Title:       req.Title,
		Description: req.Description,
		Priority:    priority,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto.ToTaskResponse(task))
}

// handleListTasks returns the task board.
// @Summary List tasks
// @Description Get tasks newest-first with per-status counts for board rendering
// @Tags tasks
// @Produce json
// @Param status query string false "Filter by status: pending, in_progress, completed"
// @Success 200 {object} dto.TasksListResponse
// @Failure 422 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks [get]
func (h *Handler) handleListTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var status *domain.TaskStatus
	if statusParam := r.URL.Query().Get("status"); statusParam != "" {
		s := domain.TaskStatus(statusParam)
		status = &s
	}

	tasks, counts, err := h.taskService.ListBoard(ctx, status)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	resp := dto.TasksListResponse{
		Tasks:          make([]dto.TaskResponse, len(tasks)),
		CountsByStatus: make(map[string]int, len(counts)),
	}
	for i, task := range tasks {
		resp.Tasks[i] = dto.ToTaskResponse(task)
	}
	for status, count := range counts {
		resp.CountsByStatus[string(status)] = count
	}

	respondJSON(w, http.StatusOK, resp)
}

// handleUpdateTaskStatus advances a task along its lifecycle.
// @Summary Update task status
// @Description Moves a task along pending -> in_progress -> completed. Any other transition fails with INVALID_TRANSITION.
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param request body dto.UpdateTaskStatusRequest true "Status update request"
// @Success 200 {object} dto.TaskResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id}/status [patch]
func (h *Handler) handleUpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	taskID, ok := extractID(w, r)
	if !ok {
		return
	}

	var req dto.UpdateTaskStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if req.Status == "" {
		respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "status is required")
		return
	}

	task, err := h.taskService.TransitionStatus(ctx, taskID, domain.TaskStatus(req.Status))
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToTaskResponse(task))
}
