package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/storepilot/storepilot/internal/domain"
	"github.com/storepilot/storepilot/internal/repository"
)

// AgentService exposes the agent registry: listing the roster and the two
// mutations (toggle, configure). Registry rows have no concurrency hazard;
// the contended resource is the Runner's execution slot, not these rows.
type AgentService struct {
	pool      *pgxpool.Pool
	agentRepo *repository.AgentRepository
	auditRepo *repository.AuditRepository
}

// NewAgentService creates a new AgentService.
func NewAgentService(pool *pgxpool.Pool, agentRepo *repository.AgentRepository, auditRepo *repository.AuditRepository) *AgentService {
	return &AgentService{
		pool:      pool,
		agentRepo: agentRepo,
		auditRepo: auditRepo,
	}
}

// List returns the full roster in canonical order.
func (s *AgentService) List(ctx context.Context) ([]*domain.Agent, error) {
	return s.agentRepo.List(ctx)
}

// Get returns one agent by type.
func (s *AgentService) Get(ctx context.Context, agentType domain.AgentType) (*domain.Agent, error) {
	return s.agentRepo.GetByType(ctx, agentType)
}

// Toggle flips the agent's activation flag and returns the new state.
func (s *AgentService) Toggle(ctx context.Context, agentType domain.AgentType) (*domain.Agent, error) {
	agent, err := s.agentRepo.GetByType(ctx, agentType)
	if err != nil {
		return nil, err
	}

	updated, err := s.agentRepo.SetActive(ctx, agentType, !agent.IsActive)
	if err != nil {
		return nil, err
	}

	entry := &domain.AuditEntry{
		Actor:        domain.ActorOperator,
		Action:       domain.AuditActionAgentToggled,
		ResourceType: strPtr("agent"),
		ResourceID:   strPtr(string(agentType)),
		Details:      map[string]any{"is_active": updated.IsActive},
	}
	if err := s.auditRepo.Append(ctx, s.pool, entry); err != nil {
		return nil, fmt.Errorf("append toggle audit entry: %w", err)
	}

	slog.Info("agent toggled", "agent_type", agentType, "is_active", updated.IsActive)

	return updated, nil
}

// Configure merges the patch into the agent's configuration. Provided keys
// are replaced wholesale (no deep merge); a key outside the agent's schema
// fails the whole patch with ErrInvalidConfig.
func (s *AgentService) Configure(ctx context.Context, agentType domain.AgentType, patch map[string]any) (*domain.Agent, error) {
	agent, err := s.agentRepo.GetByType(ctx, agentType)
	if err != nil {
		return nil, err
	}

	merged := make(map[string]any, len(agent.Configuration)+len(patch))
	for k, v := range agent.Configuration {
		merged[k] = v
	}
	patched := make([]string, 0, len(patch))
	for k, v := range patch {
		if !agent.RecognizesConfigKey(k) {
			return nil, fmt.Errorf("%w: %q is not recognized by agent %s", domain.ErrInvalidConfig, k, agentType)
		}
		merged[k] = v
		patched = append(patched, k)
	}

	updated, err := s.agentRepo.SetConfiguration(ctx, agentType, merged)
	if err != nil {
		return nil, err
	}

	entry := &domain.AuditEntry{
		Actor:        domain.ActorOperator,
		Action:       domain.AuditActionAgentConfigured,
		ResourceType: strPtr("agent"),
		ResourceID:   strPtr(string(agentType)),
		Details:      map[string]any{"keys": patched},
	}
	if err := s.auditRepo.Append(ctx, s.pool, entry); err != nil {
		return nil, fmt.Errorf("append configure audit entry: %w", err)
	}

	slog.Info("agent configured", "agent_type", agentType, "keys", patched)

	return updated, nil
}
