package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/storepilot/storepilot/internal/domain"
	"github.com/storepilot/storepilot/internal/repository"
)

// Orchestrator decomposes one free-text operator command into per-agent tasks
// and fans them out to the Runner.
type Orchestrator struct {
	pool      *pgxpool.Pool
	taskRepo  *repository.TaskRepository
	auditRepo *repository.AuditRepository
	runner    *Runner
}

// NewOrchestrator creates a new Orchestrator.
func NewOrchestrator(
	pool *pgxpool.Pool,
	taskRepo *repository.TaskRepository,
	auditRepo *repository.AuditRepository,
	runner *Runner,
) *Orchestrator {
	return &Orchestrator{
		pool:      pool,
		taskRepo:  taskRepo,
		auditRepo: auditRepo,
		runner:    runner,
	}
}

// AgentRunResult is the per-agent outcome of one orchestrated command.
// Partial success is the expected outcome: a failed agent is reported here,
// never conflated with the others' results.
type AgentRunResult struct {
	AgentType domain.AgentType
	TaskID    string
	Outputs   []*domain.Deliverable
	Err       error
}

// OrchestrationResult aggregates all per-agent outcomes for one command.
type OrchestrationResult struct {
	AgentCount int
	Results    []AgentRunResult
}

// Orchestrate routes the command to every matching agent, creates one task
// per match, and runs the agents concurrently. Agents run independently: a
// slow or failed agent never blocks the reporting of the others' results.
func (o *Orchestrator) Orchestrate(ctx context.Context, command string) (*OrchestrationResult, error) {
	if strings.TrimSpace(command) == "" {
		return nil, domain.ErrEmptyCommand
	}

	matched := MatchCommand(command)
	if len(matched) == 0 {
		entry := &domain.AuditEntry{
			Actor:   domain.ActorOperator,
			Action:  domain.AuditActionPolicyBlocked,
			Details: map[string]any{"reason": "no agent matched the command", "command": command},
		}
		if err := o.auditRepo.Append(ctx, o.pool, entry); err != nil {
			slog.Error("failed to append policy_blocked audit entry", "error", err)
		}
		return nil, fmt.Errorf("%w: %q", domain.ErrNoAgentMatched, command)
	}

	started := &domain.AuditEntry{
		Actor:  domain.ActorOperator,
		Action: domain.AuditActionGoalStarted,
		Details: map[string]any{
			"command":     command,
			"agent_count": len(matched),
		},
	}
	if err := o.auditRepo.Append(ctx, o.pool, started); err != nil {
		return nil, fmt.Errorf("append goal audit entry: %w", err)
	}

	results := make([]AgentRunResult, len(matched))

	var wg sync.WaitGroup
	for i, agentType := range matched {
		taskID, err := o.createTask(ctx, agentType, command)
		if err != nil {
			results[i] = AgentRunResult{AgentType: agentType, Err: err}
			continue
		}

		wg.Add(1)
		go func(i int, agentType domain.AgentType, taskID string) {
			defer wg.Done()
			outputs, err := o.runner.Run(ctx, agentType, command, taskID)
			results[i] = AgentRunResult{
				AgentType: agentType,
				TaskID:    taskID,
				Outputs:   outputs,
				Err:       err,
			}
		}(i, agentType, taskID)
	}
	wg.Wait()

	succeeded := 0
	for _, res := range results {
		if res.Err == nil {
			succeeded++
		}
	}
	slog.Info("command orchestrated",
		"agent_count", len(matched),
		"succeeded", succeeded,
		"failed", len(matched)-succeeded,
	)

	return &OrchestrationResult{
		AgentCount: len(matched),
		Results:    results,
	}, nil
}

// createTask creates the per-agent task for an orchestrated command.
func (o *Orchestrator) createTask(ctx context.Context, agentType domain.AgentType, command string) (string, error) {
	tx, err := o.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	task := &domain.Task{
		AgentType:   agentType,
		Title:       taskTitle(command),
		Description: command,
		Priority:    domain.TaskPriorityMedium,
	}
	if _, err := o.taskRepo.Create(ctx, tx, task); err != nil {
		return "", err
	}

	entry := &domain.AuditEntry{
		Actor:        domain.ActorOperator,
		Action:       domain.AuditActionTaskCreated,
		ResourceType: strPtr("task"),
		ResourceID:   &task.ID,
		Details: map[string]any{
			"agent_type":   string(agentType),
			"orchestrated": true,
		},
	}
	if err := o.auditRepo.Append(ctx, tx, entry); err != nil {
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit transaction: %w", err)
	}

	return task.ID, nil
}

// taskTitle derives a board-friendly title from the raw command.
func taskTitle(command string) string {
	return truncate(strings.TrimSpace(command), 120)
}
