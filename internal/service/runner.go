package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/storepilot/storepilot/internal/domain"
	"github.com/storepilot/storepilot/internal/repository"
)

// Runner executes one agent's unit of work, producing draft deliverables.
// It guarantees at most one concurrent run per agent type: a run request
// against a busy agent fails fast with ErrAgentBusy.
type Runner struct {
	pool            *pgxpool.Pool
	agentRepo       *repository.AgentRepository
	taskRepo        *repository.TaskRepository
	deliverableRepo *repository.DeliverableRepository
	auditRepo       *repository.AuditRepository
	locks           *agentLocks
}

// NewRunner creates a new Runner.
func NewRunner(
	pool *pgxpool.Pool,
	agentRepo *repository.AgentRepository,
	taskRepo *repository.TaskRepository,
	deliverableRepo *repository.DeliverableRepository,
	auditRepo *repository.AuditRepository,
) *Runner {
	return &Runner{
		pool:            pool,
		agentRepo:       agentRepo,
		taskRepo:        taskRepo,
		deliverableRepo: deliverableRepo,
		auditRepo:       auditRepo,
		locks:           newAgentLocks(),
	}
}

// rollback rolls back tx, logging unexpected failures.
func rollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(ctx); err != nil && err.Error() != "tx is closed" {
		slog.Error("failed to rollback transaction", "error", err)
	}
}

// Run executes the agent once. taskID, when non-empty, binds the run to an
// existing pending task, which is moved to in_progress at the start and
// completed with a result summary on success. The whole run is one
// transaction: on any failure the bound task keeps its prior state, no
// deliverables survive, and a policy_blocked audit entry records the reason.
// A run is never observable half-done.
func (r *Runner) Run(ctx context.Context, agentType domain.AgentType, instructions string, taskID string) ([]*domain.Deliverable, error) {
	agent, err := r.agentRepo.GetByType(ctx, agentType)
	if err != nil {
		return nil, err
	}

	if !agent.IsActive {
		r.recordBlocked(ctx, agentType, taskID, "agent is paused")
		return nil, fmt.Errorf("%w: %s", domain.ErrAgentPaused, agentType)
	}

	if !r.locks.tryAcquire(agentType) {
		r.recordBlocked(ctx, agentType, taskID, "concurrent run rejected")
		return nil, fmt.Errorf("%w: %s", domain.ErrAgentBusy, agentType)
	}
	defer r.locks.release(agentType)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	if taskID != "" {
		if err := r.startTask(ctx, tx, agentType, taskID); err != nil {
			r.recordBlocked(ctx, agentType, taskID, err.Error())
			return nil, err
		}
	}

	run := behaviors[agentType]
	drafts := run(agent, instructions)

	deliverables := make([]*domain.Deliverable, 0, len(drafts))
	for _, draft := range drafts {
		d, err := r.createDeliverable(ctx, tx, agent, draft)
		if err != nil {
			r.recordBlocked(ctx, agentType, taskID, err.Error())
			return nil, err
		}
		deliverables = append(deliverables, d)
	}

	summary := fmt.Sprintf("Produced %d deliverable(s)", len(deliverables))
	if err := r.agentRepo.RecordAction(ctx, tx, agentType, summary, time.Now()); err != nil {
		r.recordBlocked(ctx, agentType, taskID, err.Error())
		return nil, fmt.Errorf("record agent action: %w", err)
	}

	executed := &domain.AuditEntry{
		Actor:  string(agentType),
		Action: domain.AuditActionAgentExecuted,
		Details: map[string]any{
			"deliverable_count": len(deliverables),
			"task_bound":        taskID != "",
		},
	}
	if err := r.auditRepo.Append(ctx, tx, executed); err != nil {
		r.recordBlocked(ctx, agentType, taskID, err.Error())
		return nil, fmt.Errorf("append run audit entry: %w", err)
	}

	if taskID != "" {
		if err := r.completeTask(ctx, tx, agentType, taskID, summary); err != nil {
			r.recordBlocked(ctx, agentType, taskID, err.Error())
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		r.recordBlocked(ctx, agentType, taskID, err.Error())
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	slog.Info("agent run finished",
		"agent_type", agentType,
		"deliverables", len(deliverables),
		"task_id", taskID,
	)

	return deliverables, nil
}

// startTask moves the bound task from pending to in_progress. The FOR UPDATE
// lock is held until the run's transaction ends, so no other writer can move
// the task underneath a running agent.
func (r *Runner) startTask(ctx context.Context, tx pgx.Tx, agentType domain.AgentType, taskID string) error {
	task, err := r.taskRepo.GetByIDForUpdate(ctx, tx, taskID)
	if err != nil {
		return err
	}
	if !task.Status.CanTransition(domain.TaskStatusInProgress) {
		return fmt.Errorf("%w: task %s is %s, expected pending", domain.ErrInvalidTransition, taskID, task.Status)
	}

	err = r.taskRepo.UpdateStatus(ctx, tx, taskID, task.Status, domain.TaskStatusInProgress, nil)
	if err != nil {
		return err
	}

	entry := &domain.AuditEntry{
		Actor:        string(agentType),
		Action:       domain.AuditActionTaskStarted,
		ResourceType: strPtr("task"),
		ResourceID:   &taskID,
	}
	return r.auditRepo.Append(ctx, tx, entry)
}

// completeTask moves the bound task from in_progress to completed with a
// human-readable result.
func (r *Runner) completeTask(ctx context.Context, tx pgx.Tx, agentType domain.AgentType, taskID, result string) error {
	err := r.taskRepo.UpdateStatus(ctx, tx, taskID, domain.TaskStatusInProgress, domain.TaskStatusCompleted, &result)
	if err != nil {
		return err
	}

	entry := &domain.AuditEntry{
		Actor:        string(agentType),
		Action:       domain.AuditActionTaskCompleted,
		ResourceType: strPtr("task"),
		ResourceID:   &taskID,
		Details:      map[string]any{"result": result},
	}
	return r.auditRepo.Append(ctx, tx, entry)
}

// createDeliverable persists one draft and its audit entry within the run's
// transaction; one entry per deliverable, never one entry covering several.
func (r *Runner) createDeliverable(ctx context.Context, tx pgx.Tx, agent *domain.Agent, draft draftOutput) (*domain.Deliverable, error) {
	quality := draft.Quality
	d := &domain.Deliverable{
		AgentType:      agent.AgentType,
		OutputType:     draft.OutputType,
		Title:          draft.Title,
		Content:        draft.Content,
		OverallQuality: &quality,
	}

	if _, err := r.deliverableRepo.Create(ctx, tx, d); err != nil {
		return nil, err
	}

	entry := &domain.AuditEntry{
		Actor:        string(agent.AgentType),
		Action:       domain.AuditActionDeliverableCreated,
		ResourceType: strPtr("deliverable"),
		ResourceID:   &d.ID,
		Details: map[string]any{
			"output_type":   d.OutputType,
			"quality_score": quality,
		},
	}
	if err := r.auditRepo.Append(ctx, tx, entry); err != nil {
		return nil, err
	}

	// The content agent dispatches email campaigns immediately when its
	// auto_send tunable is on; the dispatch is its own audited event.
	if d.OutputType == OutputTypeEmailCampaign && configBool(agent, "auto_send", false) {
		sent := &domain.AuditEntry{
			Actor:        string(agent.AgentType),
			Action:       domain.AuditActionEmailSent,
			ResourceType: strPtr("deliverable"),
			ResourceID:   &d.ID,
			Details:      map[string]any{"title": d.Title},
		}
		if err := r.auditRepo.Append(ctx, tx, sent); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// recordBlocked appends the audit entry for an attempted-but-failed run.
// The audit trail must never have gaps for failures, so append errors are
// logged rather than returned.
func (r *Runner) recordBlocked(ctx context.Context, agentType domain.AgentType, taskID, reason string) {
	entry := &domain.AuditEntry{
		Actor:   string(agentType),
		Action:  domain.AuditActionPolicyBlocked,
		Details: map[string]any{"reason": reason},
	}
	if taskID != "" {
		entry.ResourceType = strPtr("task")
		entry.ResourceID = &taskID
	}
	if err := r.auditRepo.Append(ctx, r.pool, entry); err != nil {
		slog.Error("failed to append policy_blocked audit entry",
			"agent_type", agentType,
			"reason", reason,
			"error", err,
		)
	}
}

func strPtr(s string) *string {
	return &s
}
