package service_test

import (
	"context"
	"testing"

	"github.com/storepilot/storepilot/internal/domain"
	"github.com/storepilot/storepilot/internal/repository"
	"github.com/storepilot/storepilot/internal/service"
	"github.com/stretchr/testify/suite"
)

// PipelineTestSuite is the test suite for the deliverable pipeline.
type PipelineTestSuite struct {
	ServiceTestSuite
	pipeline *service.PipelineService
}

// SetupSuite runs once before all tests.
func (s *PipelineTestSuite) SetupSuite() {
	s.ServiceTestSuite.SetupSuite()
	s.pipeline = service.NewPipelineService(s.pool, s.deliverableRepo, s.auditRepo)
}

// TestRate_Success tests rating a deliverable.
func (s *PipelineTestSuite) TestRate_Success() {
	ctx := context.Background()
	id := s.createDeliverable(ctx, domain.AgentTypeContent, domain.DeliverableStatusDraft)

	d, err := s.pipeline.Rate(ctx, id, 4)
	s.Require().NoError(err)
	s.Require().NotNil(d.Rating)
	s.Equal(4, *d.Rating)

	s.Equal(1, s.countAudit(ctx, domain.AuditActionDeliverableRated))
}

// TestRate_Overwrite tests that re-rating replaces the previous value.
func (s *PipelineTestSuite) TestRate_Overwrite() {
	ctx := context.Background()
	id := s.createDeliverable(ctx, domain.AgentTypeContent, domain.DeliverableStatusDraft)

	_, err := s.pipeline.Rate(ctx, id, 2)
	s.Require().NoError(err)

	d, err := s.pipeline.Rate(ctx, id, 5)
	s.Require().NoError(err)
	s.Require().NotNil(d.Rating)
	s.Equal(5, *d.Rating)
}

// TestRate_OutOfRange tests rating bounds.
func (s *PipelineTestSuite) TestRate_OutOfRange() {
	ctx := context.Background()
	id := s.createDeliverable(ctx, domain.AgentTypeContent, domain.DeliverableStatusDraft)

	_, err := s.pipeline.Rate(ctx, id, 0)
	s.ErrorIs(err, domain.ErrInvalidRating)

	_, err = s.pipeline.Rate(ctx, id, 6)
	s.ErrorIs(err, domain.ErrInvalidRating)
}

// TestRate_NotFound tests rating a missing deliverable.
func (s *PipelineTestSuite) TestRate_NotFound() {
	ctx := context.Background()

	_, err := s.pipeline.Rate(ctx, "00000000-0000-0000-0000-000000000099", 3)
	s.ErrorIs(err, domain.ErrDeliverableNotFound)
}

// TestApprove_Success tests approving a draft.
func (s *PipelineTestSuite) TestApprove_Success() {
	ctx := context.Background()
	id := s.createDeliverable(ctx, domain.AgentTypeContent, domain.DeliverableStatusDraft)

	d, err := s.pipeline.Approve(ctx, id)
	s.Require().NoError(err)
	s.Equal(domain.DeliverableStatusApproved, d.Status)

	s.Equal(1, s.countAudit(ctx, domain.AuditActionDeliverableApproved))
}

// TestApprove_Twice tests that the second approve call fails.
func (s *PipelineTestSuite) TestApprove_Twice() {
	ctx := context.Background()
	id := s.createDeliverable(ctx, domain.AgentTypeContent, domain.DeliverableStatusDraft)

	_, err := s.pipeline.Approve(ctx, id)
	s.Require().NoError(err)

	_, err = s.pipeline.Approve(ctx, id)
	s.Error(err)
	s.ErrorIs(err, domain.ErrInvalidState)

	// Only the first approval is audited
	s.Equal(1, s.countAudit(ctx, domain.AuditActionDeliverableApproved))
}

// TestApprove_NotFound tests approving a missing deliverable.
func (s *PipelineTestSuite) TestApprove_NotFound() {
	ctx := context.Background()

	_, err := s.pipeline.Approve(ctx, "00000000-0000-0000-0000-000000000099")
	s.ErrorIs(err, domain.ErrDeliverableNotFound)
}

// TestReject_Success tests rejecting a draft.
func (s *PipelineTestSuite) TestReject_Success() {
	ctx := context.Background()
	id := s.createDeliverable(ctx, domain.AgentTypeContent, domain.DeliverableStatusDraft)

	d, err := s.pipeline.Reject(ctx, id)
	s.Require().NoError(err)
	s.Equal(domain.DeliverableStatusRejected, d.Status)

	s.Equal(1, s.countAudit(ctx, domain.AuditActionDeliverableRejected))
}

// TestReject_NonDraft tests that only drafts can be rejected.
func (s *PipelineTestSuite) TestReject_NonDraft() {
	ctx := context.Background()
	id := s.createDeliverable(ctx, domain.AgentTypeContent, domain.DeliverableStatusApproved)

	_, err := s.pipeline.Reject(ctx, id)
	s.ErrorIs(err, domain.ErrInvalidState)
}

// TestShip_Success tests shipping an approved deliverable.
func (s *PipelineTestSuite) TestShip_Success() {
	ctx := context.Background()
	id := s.createDeliverable(ctx, domain.AgentTypeSales, domain.DeliverableStatusApproved)

	d, err := s.pipeline.Ship(ctx, id)
	s.Require().NoError(err)
	s.Equal(domain.DeliverableStatusShipped, d.Status)

	s.Equal(1, s.countAudit(ctx, domain.AuditActionDeliverableShipped))
}

// TestShip_Draft tests that drafts cannot ship directly.
func (s *PipelineTestSuite) TestShip_Draft() {
	ctx := context.Background()
	id := s.createDeliverable(ctx, domain.AgentTypeSales, domain.DeliverableStatusDraft)

	_, err := s.pipeline.Ship(ctx, id)
	s.ErrorIs(err, domain.ErrInvalidState)
}

// TestList_Filters tests listing with filters and total count.
func (s *PipelineTestSuite) TestList_Filters() {
	ctx := context.Background()
	s.createDeliverable(ctx, domain.AgentTypeContent, domain.DeliverableStatusDraft)
	s.createDeliverable(ctx, domain.AgentTypeContent, domain.DeliverableStatusApproved)
	s.createDeliverable(ctx, domain.AgentTypeSales, domain.DeliverableStatusDraft)

	all, total, err := s.pipeline.List(ctx, repository.DeliverableListFilters{})
	s.Require().NoError(err)
	s.Len(all, 3)
	s.Equal(3, total)

	content := domain.AgentTypeContent
	byAgent, total, err := s.pipeline.List(ctx, repository.DeliverableListFilters{AgentType: &content})
	s.Require().NoError(err)
	s.Len(byAgent, 2)
	s.Equal(2, total)

	draft := domain.DeliverableStatusDraft
	drafts, total, err := s.pipeline.List(ctx, repository.DeliverableListFilters{Status: &draft})
	s.Require().NoError(err)
	s.Len(drafts, 2)
	s.Equal(2, total)
}

// TestPipelineTestSuite runs the test suite.
func TestPipelineTestSuite(t *testing.T) {
	suite.Run(t, new(PipelineTestSuite))
}
