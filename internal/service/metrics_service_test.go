package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/storepilot/storepilot/internal/domain"
	"github.com/storepilot/storepilot/internal/service"
	"github.com/stretchr/testify/suite"
)

// MetricsServiceTestSuite is the test suite for metric rollups.
type MetricsServiceTestSuite struct {
	ServiceTestSuite
	metricsService *service.MetricsService
}

// SetupSuite runs once before all tests.
func (s *MetricsServiceTestSuite) SetupSuite() {
	s.ServiceTestSuite.SetupSuite()
	s.metricsService = service.NewMetricsService(s.metricsRepo)
}

// seedAudit inserts an audit entry for an action.
func (s *MetricsServiceTestSuite) seedAudit(ctx context.Context, actor string, action domain.AuditAction) {
	err := s.auditRepo.Append(ctx, s.pool, &domain.AuditEntry{
		Actor:  actor,
		Action: action,
	})
	s.Require().NoError(err, "failed to seed audit entry")
}

// seedOutput inserts a deliverable of a given output type.
func (s *MetricsServiceTestSuite) seedOutput(ctx context.Context, agentType domain.AgentType, outputType string) {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO deliverables (agent_type, output_type, title, content)
		VALUES ($1, $2, 'Seeded', 'Seeded content')
	`, string(agentType), outputType)
	s.Require().NoError(err, "failed to seed deliverable")
}

// TestSummary_EmptyDataset tests that an empty month is all zeros, not an error.
func (s *MetricsServiceTestSuite) TestSummary_EmptyDataset() {
	ctx := context.Background()

	summary, err := s.metricsService.Summary(ctx)
	s.Require().NoError(err)
	s.Equal(0, summary.TotalRuns)
	s.Equal(0, summary.TotalOutputs)
	s.Equal(0, summary.TotalCommands)
	s.Equal(0.0, summary.EstimatedValue)
	s.Equal(0.0, summary.HoursSaved)
}

// TestSummary_Rollup tests the weighted rollup over seeded data.
func (s *MetricsServiceTestSuite) TestSummary_Rollup() {
	ctx := context.Background()
	since := time.Now().Add(-time.Hour)

	s.seedAudit(ctx, "content", domain.AuditActionAgentExecuted)
	s.seedAudit(ctx, "sales", domain.AuditActionAgentExecuted)
	s.seedAudit(ctx, domain.ActorOperator, domain.AuditActionGoalStarted)

	// 2 social posts at 150 each, 1 strategy brief at 750
	s.seedOutput(ctx, domain.AgentTypeContent, "social_post")
	s.seedOutput(ctx, domain.AgentTypeContent, "social_post")
	s.seedOutput(ctx, domain.AgentTypeStrategy, "strategy_brief")

	// 2 completed content tasks at 2.5 hours each
	s.createTask(ctx, domain.AgentTypeContent, domain.TaskStatusCompleted)
	s.createTask(ctx, domain.AgentTypeContent, domain.TaskStatusCompleted)
	// Pending tasks do not count
	s.createTask(ctx, domain.AgentTypeSales, domain.TaskStatusPending)

	summary, err := s.metricsService.SummarySince(ctx, since)
	s.Require().NoError(err)
	s.Equal(2, summary.TotalRuns)
	s.Equal(1, summary.TotalCommands)
	s.Equal(3, summary.TotalOutputs)
	s.Equal(1050.0, summary.EstimatedValue)
	s.Equal(5.0, summary.HoursSaved)
}

// TestSummary_UnknownOutputType tests the fallback value weight.
func (s *MetricsServiceTestSuite) TestSummary_UnknownOutputType() {
	ctx := context.Background()
	since := time.Now().Add(-time.Hour)

	s.seedOutput(ctx, domain.AgentTypeContent, "interpretive_dance")

	summary, err := s.metricsService.SummarySince(ctx, since)
	s.Require().NoError(err)
	s.Equal(1, summary.TotalOutputs)
	s.Equal(100.0, summary.EstimatedValue)
}

// TestSummary_WindowExcludesOlderData tests the window boundary.
func (s *MetricsServiceTestSuite) TestSummary_WindowExcludesOlderData() {
	ctx := context.Background()

	s.seedAudit(ctx, "content", domain.AuditActionAgentExecuted)
	s.seedOutput(ctx, domain.AgentTypeContent, "social_post")

	// A window starting in the future sees nothing
	summary, err := s.metricsService.SummarySince(ctx, time.Now().Add(time.Hour))
	s.Require().NoError(err)
	s.Equal(0, summary.TotalRuns)
	s.Equal(0, summary.TotalOutputs)
	s.Equal(0.0, summary.EstimatedValue)
}

// TestMetricsServiceTestSuite runs the test suite.
func TestMetricsServiceTestSuite(t *testing.T) {
	suite.Run(t, new(MetricsServiceTestSuite))
}
