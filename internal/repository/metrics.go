package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/storepilot/storepilot/internal/domain"
)

// MetricsRepository runs the read-only rollup queries behind the metrics
// aggregator. It owns no state of its own.
type MetricsRepository struct {
	pool *pgxpool.Pool
}

// NewMetricsRepository creates a new MetricsRepository.
func NewMetricsRepository(pool *pgxpool.Pool) *MetricsRepository {
	return &MetricsRepository{pool: pool}
}

// CountAuditActions counts audit entries of one action kind in the window.
func (r *MetricsRepository) CountAuditActions(ctx context.Context, action domain.AuditAction, since time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM audit_log
		WHERE action = $1 AND created_at >= $2
	`, action, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count audit actions: %w", err)
	}
	return count, nil
}

// DeliverableCountsByType counts deliverables created in the window, keyed by
// output type. An empty dataset yields an empty map, not an error.
func (r *MetricsRepository) DeliverableCountsByType(ctx context.Context, since time.Time) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT output_type, COUNT(*)
		FROM deliverables
		WHERE created_at >= $1
		GROUP BY output_type
	`, since)
	if err != nil {
		return nil, fmt.Errorf("query deliverable counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var outputType string
		var count int
		if err := rows.Scan(&outputType, &count); err != nil {
			return nil, fmt.Errorf("scan deliverable count: %w", err)
		}
		counts[outputType] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return counts, nil
}

// CompletedTaskCountsByAgent counts tasks completed in the window, keyed by
// owning agent type.
func (r *MetricsRepository) CompletedTaskCountsByAgent(ctx context.Context, since time.Time) (map[domain.AgentType]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT agent_type, COUNT(*)
		FROM tasks
		WHERE status = $1 AND updated_at >= $2
		GROUP BY agent_type
	`, domain.TaskStatusCompleted, since)
	if err != nil {
		return nil, fmt.Errorf("query completed task counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.AgentType]int)
	for rows.Next() {
		var agentType domain.AgentType
		var count int
		if err := rows.Scan(&agentType, &count); err != nil {
			return nil, fmt.Errorf("scan completed task count: %w", err)
		}
		counts[agentType] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return counts, nil
}
