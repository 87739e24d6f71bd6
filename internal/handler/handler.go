package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/storepilot/storepilot/docs" // Import generated docs
	"github.com/storepilot/storepilot/internal/handler/dto"
	"github.com/storepilot/storepilot/internal/middleware"
	"github.com/storepilot/storepilot/internal/repository"
	"github.com/storepilot/storepilot/internal/service"
	"github.com/storepilot/storepilot/internal/static"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	pool            *pgxpool.Pool
	agentService    *service.AgentService
	taskService     *service.TaskService
	pipelineService *service.PipelineService
	metricsService  *service.MetricsService
	runner          *service.Runner
	orchestrator    *service.Orchestrator
	auditRepo       *repository.AuditRepository
	authMiddleware  *middleware.AuthMiddleware
}

// New creates a new Handler instance with all dependencies.
func New(pool *pgxpool.Pool, apiToken string) *Handler {
	// Create repositories
	agentRepo := repository.NewAgentRepository(pool)
	taskRepo := repository.NewTaskRepository(pool)
	deliverableRepo := repository.NewDeliverableRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)
	metricsRepo := repository.NewMetricsRepository(pool)

	// Create services
	runner := service.NewRunner(pool, agentRepo, taskRepo, deliverableRepo, auditRepo)
	orchestrator := service.NewOrchestrator(pool, taskRepo, auditRepo, runner)

	return &Handler{
		pool:            pool,
		agentService:    service.NewAgentService(pool, agentRepo, auditRepo),
		taskService:     service.NewTaskService(pool, taskRepo, agentRepo, auditRepo),
		pipelineService: service.NewPipelineService(pool, deliverableRepo, auditRepo),
		metricsService:  service.NewMetricsService(metricsRepo),
		runner:          runner,
		orchestrator:    orchestrator,
		auditRepo:       auditRepo,
		authMiddleware:  middleware.NewAuthMiddleware(apiToken),
	}
}

// RegisterRoutes registers all HTTP routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Health check
	mux.HandleFunc("GET /healthz", h.handleHealthz)

	// Static files for dashboard integrators
	mux.HandleFunc("GET /{$}", h.handleIndex)
	mux.HandleFunc("GET /skill.md", h.handleSkillMd)

	// Swagger UI
	mux.HandleFunc("GET /swagger/", httpSwagger.Handler())

	auth := h.authMiddleware.Authenticate

	// Orchestration
	mux.Handle("POST /api/v1/commands", auth(http.HandlerFunc(h.handleSubmitCommand)))
	mux.Handle("POST /api/v1/agents/{agent_type}/run", auth(http.HandlerFunc(h.handleRunAgent)))

	// Agent registry
	mux.Handle("GET /api/v1/agents", auth(http.HandlerFunc(h.handleListAgents)))
	mux.Handle("POST /api/v1/agents/{agent_type}/toggle", auth(http.HandlerFunc(h.handleToggleAgent)))
	mux.Handle("PATCH /api/v1/agents/{agent_type}/config", auth(http.HandlerFunc(h.handleConfigureAgent)))

	// Task board
	mux.Handle("GET /api/v1/tasks", auth(http.HandlerFunc(h.handleListTasks)))
	mux.Handle("POST /api/v1/tasks", auth(http.HandlerFunc(h.handleCreateTask)))
	mux.Handle("PATCH /api/v1/tasks/{id}/status", auth(http.HandlerFunc(h.handleUpdateTaskStatus)))

	// Deliverable pipeline
	mux.Handle("GET /api/v1/outputs", auth(http.HandlerFunc(h.handleListOutputs)))
	mux.Handle("POST /api/v1/outputs/{id}/rating", auth(http.HandlerFunc(h.handleRateOutput)))
	mux.Handle("GET /api/v1/deliverables", auth(http.HandlerFunc(h.handleListDeliverables)))
	mux.Handle("POST /api/v1/deliverables/{id}/approve", auth(http.HandlerFunc(h.handleApproveDeliverable)))
	mux.Handle("POST /api/v1/deliverables/{id}/reject", auth(http.HandlerFunc(h.handleRejectDeliverable)))
	mux.Handle("POST /api/v1/deliverables/{id}/ship", auth(http.HandlerFunc(h.handleShipDeliverable)))

	// Audit and metrics
	mux.Handle("GET /api/v1/audit", auth(http.HandlerFunc(h.handleListAuditLog)))
	mux.Handle("GET /api/v1/metrics", auth(http.HandlerFunc(h.handleGetMetrics)))
}

// handleHealthz returns 200 OK if the database is reachable.
func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.pool.Ping(ctx); err != nil {
		slog.Error("database health check failed", "error", err)
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// handleIndex serves the embedded landing page.
func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(static.IndexHTML))
}

// handleSkillMd serves the embedded skill.md API guide.
func (h *Handler) handleSkillMd(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(static.SkillMd))
}

// Ping checks if the database is reachable (used for testing).
func (h *Handler) Ping(ctx context.Context) error {
	return h.pool.Ping(ctx)
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// respondError writes a standard error response.
func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, dto.NewErrorResponse(code, message))
}

// respondDomainError maps a domain error and writes the error response.
func respondDomainError(w http.ResponseWriter, err error) {
	status, code, message := dto.MapDomainError(err)
	respondError(w, status, code, message)
}

// extractID extracts and validates a UUID path parameter.
// Returns (id, true) if valid, ("", false) if invalid (error already sent to client).
func extractID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "id is required")
		return "", false
	}

	if _, err := uuid.Parse(id); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "id must be a valid UUID")
		return "", false
	}

	return id, true
}
