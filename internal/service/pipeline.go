package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/storepilot/storepilot/internal/domain"
	"github.com/storepilot/storepilot/internal/repository"
)

// PipelineService owns the deliverable lifecycle after an agent run: rating,
// approval, and listing. Quality scores are fixed at creation by the producing
// agent; the pipeline never recomputes them.
type PipelineService struct {
	pool            *pgxpool.Pool
	deliverableRepo *repository.DeliverableRepository
	auditRepo       *repository.AuditRepository
}

// NewPipelineService creates a new PipelineService.
func NewPipelineService(pool *pgxpool.Pool, deliverableRepo *repository.DeliverableRepository, auditRepo *repository.AuditRepository) *PipelineService {
	return &PipelineService{
		pool:            pool,
		deliverableRepo: deliverableRepo,
		auditRepo:       auditRepo,
	}
}

// Rate stores an operator rating (1..5). Re-rating overwrites idempotently.
func (s *PipelineService) Rate(ctx context.Context, id string, rating int) (*domain.Deliverable, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: got %d", domain.ErrInvalidRating, rating)
	}

	if err := s.deliverableRepo.SetRating(ctx, id, rating); err != nil {
		return nil, err
	}

	entry := &domain.AuditEntry{
		Actor:        domain.ActorOperator,
		Action:       domain.AuditActionDeliverableRated,
		ResourceType: strPtr("deliverable"),
		ResourceID:   &id,
		Details:      map[string]any{"rating": rating},
	}
	if err := s.auditRepo.Append(ctx, s.pool, entry); err != nil {
		return nil, fmt.Errorf("append rating audit entry: %w", err)
	}

	slog.Info("deliverable rated", "deliverable_id", id, "rating", rating)

	return s.deliverableRepo.GetByID(ctx, id)
}

// Approve moves a draft deliverable to approved. Approving anything but a
// draft is an error, not a silent no-op: the second of two approve calls
// fails with ErrInvalidState.
func (s *PipelineService) Approve(ctx context.Context, id string) (*domain.Deliverable, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	d, err := s.deliverableRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if !d.IsApprovable() {
		return nil, fmt.Errorf("%w: deliverable %s is %s, expected draft", domain.ErrInvalidState, id, d.Status)
	}

	err = s.deliverableRepo.UpdateStatus(ctx, tx, id, domain.DeliverableStatusDraft, domain.DeliverableStatusApproved)
	if err != nil {
		return nil, err
	}

	details := map[string]any{}
	if d.OverallQuality != nil {
		details["quality_score"] = *d.OverallQuality
	}
	entry := &domain.AuditEntry{
		Actor:        domain.ActorOperator,
		Action:       domain.AuditActionDeliverableApproved,
		ResourceType: strPtr("deliverable"),
		ResourceID:   &id,
		Details:      details,
	}
	if err := s.auditRepo.Append(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	slog.Info("deliverable approved", "deliverable_id", id)

	d.Status = domain.DeliverableStatusApproved
	return d, nil
}

// Reject moves a draft deliverable to rejected. Like approval, rejection only
// applies to drafts.
func (s *PipelineService) Reject(ctx context.Context, id string) (*domain.Deliverable, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	d, err := s.deliverableRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if !d.IsApprovable() {
		return nil, fmt.Errorf("%w: deliverable %s is %s, expected draft", domain.ErrInvalidState, id, d.Status)
	}

	err = s.deliverableRepo.UpdateStatus(ctx, tx, id, domain.DeliverableStatusDraft, domain.DeliverableStatusRejected)
	if err != nil {
		return nil, err
	}

	entry := &domain.AuditEntry{
		Actor:        domain.ActorOperator,
		Action:       domain.AuditActionDeliverableRejected,
		ResourceType: strPtr("deliverable"),
		ResourceID:   &id,
		Details:      map[string]any{},
	}
	if err := s.auditRepo.Append(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	slog.Info("deliverable rejected", "deliverable_id", id)

	d.Status = domain.DeliverableStatusRejected
	return d, nil
}

// Ship moves an approved deliverable to shipped, the terminal state.
func (s *PipelineService) Ship(ctx context.Context, id string) (*domain.Deliverable, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer rollback(ctx, tx)

	d, err := s.deliverableRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if !d.IsShippable() {
		return nil, fmt.Errorf("%w: deliverable %s is %s, expected approved", domain.ErrInvalidState, id, d.Status)
	}

	err = s.deliverableRepo.UpdateStatus(ctx, tx, id, domain.DeliverableStatusApproved, domain.DeliverableStatusShipped)
	if err != nil {
		return nil, err
	}

	entry := &domain.AuditEntry{
		Actor:        domain.ActorOperator,
		Action:       domain.AuditActionDeliverableShipped,
		ResourceType: strPtr("deliverable"),
		ResourceID:   &id,
		Details:      map[string]any{"output_type": d.OutputType},
	}
	if err := s.auditRepo.Append(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	slog.Info("deliverable shipped", "deliverable_id", id)

	d.Status = domain.DeliverableStatusShipped
	return d, nil
}

// List retrieves deliverables newest-first with optional filters, plus the
// total matching count.
func (s *PipelineService) List(ctx context.Context, filters repository.DeliverableListFilters) ([]*domain.Deliverable, int, error) {
	return s.deliverableRepo.List(ctx, filters)
}
