package repository

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/storepilot/storepilot/internal/domain"
)

// deliverableColumns is the shared list of columns for deliverable queries.
var deliverableColumns = []string{
	"id", "agent_type", "output_type", "title", "content",
	"overall_quality", "rating", "status", "created_at", "updated_at",
}

// DeliverableRepository handles database operations for deliverables.
type DeliverableRepository struct {
	pool *pgxpool.Pool
}

// NewDeliverableRepository creates a new DeliverableRepository.
func NewDeliverableRepository(pool *pgxpool.Pool) *DeliverableRepository {
	return &DeliverableRepository{pool: pool}
}

// scanDeliverable scans a single row into a Deliverable struct.
func scanDeliverable(row pgx.Row) (*domain.Deliverable, error) {
	var d domain.Deliverable
	err := row.Scan(
		&d.ID,
		&d.AgentType,
		&d.OutputType,
		&d.Title,
		&d.Content,
		&d.OverallQuality,
		&d.Rating,
		&d.Status,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDeliverableNotFound
		}
		return nil, fmt.Errorf("scan deliverable: %w", err)
	}
	return &d, nil
}

// Create inserts a new draft deliverable within a transaction.
// Returns the deliverable with ID, CreatedAt, and UpdatedAt populated.
func (r *DeliverableRepository) Create(ctx context.Context, tx pgx.Tx, d *domain.Deliverable) (*domain.Deliverable, error) {
	d.Status = domain.DeliverableStatusDraft

	query, args, err := psql.
		Insert("deliverables").
		Columns("agent_type", "output_type", "title", "content", "overall_quality", "status").
		Values(d.AgentType, d.OutputType, d.Title, d.Content, d.OverallQuality, d.Status).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build Create query for deliverable: %w", err)
	}

	err = tx.QueryRow(ctx, query, args...).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create deliverable: %w", err)
	}

	return d, nil
}

// GetByID retrieves a deliverable by ID.
func (r *DeliverableRepository) GetByID(ctx context.Context, id string) (*domain.Deliverable, error) {
	query, args, err := psql.
		Select(deliverableColumns...).
		From("deliverables").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByID query for deliverable: %w", err)
	}

	return scanDeliverable(r.pool.QueryRow(ctx, query, args...))
}

// GetByIDForUpdate retrieves a deliverable by ID with FOR UPDATE lock (within transaction).
func (r *DeliverableRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id string) (*domain.Deliverable, error) {
	query, args, err := psql.
		Select(deliverableColumns...).
		From("deliverables").
		Where(sq.Eq{"id": id}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByIDForUpdate query for deliverable %s: %w", id, err)
	}

	return scanDeliverable(tx.QueryRow(ctx, query, args...))
}

// SetRating stores the operator rating. Ratings are an idempotent overwrite.
func (r *DeliverableRepository) SetRating(ctx context.Context, id string, rating int) error {
	query, args, err := psql.
		Update("deliverables").
		Set("rating", rating).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build SetRating query for deliverable %s: %w", id, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("set deliverable rating: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDeliverableNotFound
	}
	return nil
}

// UpdateStatus advances the deliverable status with optimistic locking: the
// update only applies while the row is still in oldStatus. Returns
// ErrInvalidState if the deliverable already left oldStatus.
func (r *DeliverableRepository) UpdateStatus(
	ctx context.Context,
	tx pgx.Tx,
	id string,
	oldStatus domain.DeliverableStatus,
	newStatus domain.DeliverableStatus,
) error {
	query, args, err := psql.
		Update("deliverables").
		Set("status", newStatus).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{
			"id":     id,
			"status": oldStatus,
		}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build UpdateStatus query for deliverable %s: %w", id, err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update deliverable status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidState
	}

	return nil
}

// DeliverableListFilters holds supported filters for deliverable listing.
type DeliverableListFilters struct {
	AgentType  *domain.AgentType
	Status     *domain.DeliverableStatus
	OutputType *string
}

// List retrieves deliverables newest-first with optional filters, plus the
// total matching count.
func (r *DeliverableRepository) List(ctx context.Context, filters DeliverableListFilters) ([]*domain.Deliverable, int, error) {
	where := sq.And{}
	if filters.AgentType != nil {
		where = append(where, sq.Eq{"agent_type": *filters.AgentType})
	}
	if filters.Status != nil {
		where = append(where, sq.Eq{"status": *filters.Status})
	}
	if filters.OutputType != nil {
		where = append(where, sq.Eq{"output_type": *filters.OutputType})
	}

	qb := psql.Select(deliverableColumns...).From("deliverables")
	countQb := psql.Select("COUNT(*)").From("deliverables")
	if len(where) > 0 {
		qb = qb.Where(where)
		countQb = countQb.Where(where)
	}

	query, args, err := qb.OrderBy("created_at DESC").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build List query for deliverables: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query deliverables: %w", err)
	}
	defer rows.Close()

	var deliverables []*domain.Deliverable
	for rows.Next() {
		d, err := scanDeliverable(rows)
		if err != nil {
			return nil, 0, err
		}
		deliverables = append(deliverables, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate rows: %w", err)
	}

	countQuery, countArgs, err := countQb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query for deliverables: %w", err)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count deliverables: %w", err)
	}

	return deliverables, total, nil
}
