package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/storepilot/storepilot/internal/domain"
)

// agentColumns is the shared list of columns for agent queries.
var agentColumns = []string{
	"agent_type", "name", "role", "color", "icon", "is_active",
	"configuration", "last_action", "last_action_at", "created_at",
}

// rosterOrder keeps agent listings in canonical roster order.
const rosterOrder = "CASE agent_type WHEN 'content' THEN 1 WHEN 'intelligence' THEN 2 " +
	"WHEN 'success' THEN 3 WHEN 'strategy' THEN 4 WHEN 'sales' THEN 5 ELSE 6 END"

// AgentRepository handles database operations for the agent registry.
type AgentRepository struct {
	pool *pgxpool.Pool
}

// NewAgentRepository creates a new AgentRepository.
func NewAgentRepository(pool *pgxpool.Pool) *AgentRepository {
	return &AgentRepository{pool: pool}
}

// scanAgent scans a single row into an Agent struct.
func scanAgent(row pgx.Row) (*domain.Agent, error) {
	var agent domain.Agent
	err := row.Scan(
		&agent.AgentType,
		&agent.Name,
		&agent.Role,
		&agent.Color,
		&agent.Icon,
		&agent.IsActive,
		&agent.Configuration,
		&agent.LastAction,
		&agent.LastActionAt,
		&agent.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAgentNotFound
		}
		return nil, fmt.Errorf("scan agent: %w", err)
	}
	return &agent, nil
}

// List retrieves the full roster in canonical order.
func (r *AgentRepository) List(ctx context.Context) ([]*domain.Agent, error) {
	query, args, err := psql.
		Select(agentColumns...).
		From("agents").
		OrderBy(rosterOrder).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build List query for agents: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query agents: %w", err)
	}
	defer rows.Close()

	var agents []*domain.Agent
	for rows.Next() {
		agent, err := scanAgent(rows)
		if err != nil {
			return nil, err
		}
		agents = append(agents, agent)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return agents, nil
}

// GetByType retrieves a single agent by its type key.
func (r *AgentRepository) GetByType(ctx context.Context, agentType domain.AgentType) (*domain.Agent, error) {
	query, args, err := psql.
		Select(agentColumns...).
		From("agents").
		Where(sq.Eq{"agent_type": agentType}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByType query for agent: %w", err)
	}

	return scanAgent(r.pool.QueryRow(ctx, query, args...))
}

// SetActive updates the activation flag and returns the updated agent.
func (r *AgentRepository) SetActive(ctx context.Context, agentType domain.AgentType, active bool) (*domain.Agent, error) {
	query, args, err := psql.
		Update("agents").
		Set("is_active", active).
		Where(sq.Eq{"agent_type": agentType}).
		Suffix("RETURNING " + columnList(agentColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build SetActive query for agent %s: %w", agentType, err)
	}

	return scanAgent(r.pool.QueryRow(ctx, query, args...))
}

// SetConfiguration replaces the full configuration mapping and returns the updated agent.
func (r *AgentRepository) SetConfiguration(ctx context.Context, agentType domain.AgentType, configuration map[string]any) (*domain.Agent, error) {
	query, args, err := psql.
		Update("agents").
		Set("configuration", configuration).
		Where(sq.Eq{"agent_type": agentType}).
		Suffix("RETURNING " + columnList(agentColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build SetConfiguration query for agent %s: %w", agentType, err)
	}

	return scanAgent(r.pool.QueryRow(ctx, query, args...))
}

// RecordAction updates the agent's last action marker within the run's
// transaction.
func (r *AgentRepository) RecordAction(ctx context.Context, tx pgx.Tx, agentType domain.AgentType, action string, at time.Time) error {
	query, args, err := psql.
		Update("agents").
		Set("last_action", action).
		Set("last_action_at", at).
		Where(sq.Eq{"agent_type": agentType}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build RecordAction query for agent %s: %w", agentType, err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("record agent action: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAgentNotFound
	}
	return nil
}
