package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/storepilot/storepilot/internal/domain"
	"github.com/storepilot/storepilot/internal/repository"
)

// TaskService coordinates manual task operations and state transitions.
type TaskService struct {
	pool      *pgxpool.Pool
	taskRepo  *repository.TaskRepository
	agentRepo *repository.AgentRepository
	auditRepo *repository.AuditRepository
}

// NewTaskService creates a new TaskService.
func NewTaskService(
	pool *pgxpool.Pool,
	taskRepo *repository.TaskRepository,
	agentRepo *repository.AgentRepository,
	auditRepo *repository.AuditRepository,
) *TaskService {
	return &TaskService{
		pool:      pool,
		taskRepo:  taskRepo,
		agentRepo: agentRepo,
		auditRepo: auditRepo,
	}
}

// CreateTaskParams holds parameters for manual task creation.
type CreateTaskParams struct {
	AgentType   *domain.AgentType // nil: auto-route by title keywords
	Title       string
	Description string
	Priority    domain.TaskPriority
}

// CreateTask creates a pending task. When no agent is specified the owner is
// resolved by keyword routing, which always yields exactly one agent.
func (s *TaskService) CreateTask(ctx context.Context, params CreateTaskParams) (*domain.Task, error) {
	if params.Title == "" {
		return nil, domain.ErrEmptyTitle
	}
	if params.Priority != "" && !params.Priority.IsValid() {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidPriority, params.Priority)
	}

	autoRouted := params.AgentType == nil

	var owner domain.AgentType
	if autoRouted {
		owner = RouteTask(params.Title)
	} else {
		owner = *params.AgentType
		if !owner.IsValid() {
			return nil, fmt.Errorf("%w: %s", domain.ErrAgentNotFound, owner)
		}
	}

	// The owner must exist in the registry even when auto-routed.
	if _, err := s.agentRepo.GetByType(ctx, owner); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	task := &domain.Task{
		AgentType:   owner,
		Title:       params.Title,
		Description: params.Description,
		Priority:    params.Priority,
	}
	if _, err := s.taskRepo.Create(ctx, tx, task); err != nil {
		return nil, err
	}

	entry := &domain.AuditEntry{
		Actor:        domain.ActorOperator,
		Action:       domain.AuditActionTaskCreated,
		ResourceType: strPtr("task"),
		ResourceID:   &task.ID,
		Details: map[string]any{
			"agent_type":  string(owner),
			"auto_routed": autoRouted,
		},
	}
	if err := s.auditRepo.Append(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	slog.Info("task created",
		"task_id", task.ID,
		"agent_type", owner,
		"auto_routed", autoRouted,
	)

	return task, nil
}

// TransitionStatus moves a task along pending -> in_progress -> completed.
// The current status is read under lock and used as an optimistic-concurrency
// precondition, so two concurrent transitions can never both succeed out of
// order.
func (s *TaskService) TransitionStatus(ctx context.Context, taskID string, newStatus domain.TaskStatus) (*domain.Task, error) {
	if !newStatus.IsValid() {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidStatus, newStatus)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	task, err := s.taskRepo.GetByIDForUpdate(ctx, tx, taskID)
	if err != nil {
		return nil, err
	}

	oldStatus := task.Status
	if !oldStatus.CanTransition(newStatus) {
		return nil, fmt.Errorf("%w: task %s cannot transition %s -> %s",
			domain.ErrInvalidTransition, taskID, oldStatus, newStatus)
	}

	if err := s.taskRepo.UpdateStatus(ctx, tx, taskID, oldStatus, newStatus, nil); err != nil {
		return nil, err
	}

	action := domain.AuditActionTaskStarted
	if newStatus == domain.TaskStatusCompleted {
		action = domain.AuditActionTaskCompleted
	}
	entry := &domain.AuditEntry{
		Actor:        domain.ActorOperator,
		Action:       action,
		ResourceType: strPtr("task"),
		ResourceID:   &taskID,
		Details: map[string]any{
			"old_status": string(oldStatus),
			"new_status": string(newStatus),
		},
	}
	if err := s.auditRepo.Append(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	slog.Info("task status changed",
		"task_id", taskID,
		"old_status", oldStatus,
		"new_status", newStatus,
	)

	task.Status = newStatus
	return task, nil
}

// ListBoard returns tasks (optionally filtered by status) together with the
// per-status counts used for board rendering.
func (s *TaskService) ListBoard(ctx context.Context, status *domain.TaskStatus) ([]*domain.Task, map[domain.TaskStatus]int, error) {
	if status != nil && !status.IsValid() {
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrInvalidStatus, *status)
	}

	tasks, err := s.taskRepo.List(ctx, repository.TaskListFilters{Status: status})
	if err != nil {
		return nil, nil, err
	}

	counts, err := s.taskRepo.CountsByStatus(ctx)
	if err != nil {
		return nil, nil, err
	}

	return tasks, counts, nil
}
