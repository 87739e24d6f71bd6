package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/storepilot/storepilot/internal/domain"
)

// auditColumns is the shared list of columns for audit log queries.
var auditColumns = []string{
	"id", "actor", "action", "resource_type", "resource_id", "details", "created_at",
}

// Queryer is satisfied by both *pgxpool.Pool and pgx.Tx, so audit entries can
// be appended standalone or inside the transaction of the event they record.
type Queryer interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// AuditRepository handles the append-only audit log. Append is the only write
// operation; entries are never updated or deleted.
type AuditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

// Append inserts one audit entry via q (pool or open transaction).
func (r *AuditRepository) Append(ctx context.Context, q Queryer, entry *domain.AuditEntry) error {
	if entry.Details == nil {
		entry.Details = map[string]any{}
	}

	query, args, err := psql.
		Insert("audit_log").
		Columns("actor", "action", "resource_type", "resource_id", "details").
		Values(entry.Actor, entry.Action, entry.ResourceType, entry.ResourceID, entry.Details).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build Append query for audit entry: %w", err)
	}

	err = q.QueryRow(ctx, query, args...).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}

	return nil
}

// AuditFilters holds optional filters for audit log queries.
type AuditFilters struct {
	Actor  *string
	Action *domain.AuditAction
}

// Query retrieves audit entries newest-first, limit-bounded.
func (r *AuditRepository) Query(ctx context.Context, limit int, filters AuditFilters) ([]*domain.AuditEntry, error) {
	qb := psql.Select(auditColumns...).From("audit_log")

	if filters.Actor != nil {
		qb = qb.Where(sq.Eq{"actor": *filters.Actor})
	}
	if filters.Action != nil {
		qb = qb.Where(sq.Eq{"action": *filters.Action})
	}

	query, args, err := qb.
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build Query for audit log: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	var entries []*domain.AuditEntry
	for rows.Next() {
		var entry domain.AuditEntry
		err := rows.Scan(
			&entry.ID,
			&entry.Actor,
			&entry.Action,
			&entry.ResourceType,
			&entry.ResourceID,
			&entry.Details,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return entries, nil
}
