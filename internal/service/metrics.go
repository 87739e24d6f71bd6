package service

import (
	"context"
	"time"

	"github.com/storepilot/storepilot/internal/domain"
	"github.com/storepilot/storepilot/internal/repository"
)

// valueByOutputType is the declared per-deliverable-type monetary weight, in
// estimated dollars of agency work replaced.
var valueByOutputType = map[string]float64{
	OutputTypeSocialPost:    150,
	OutputTypeEmailCampaign: 400,
	OutputTypeMarketReport:  600,
	OutputTypeRetentionPlan: 500,
	OutputTypeStrategyBrief: 750,
	OutputTypePricingUpdate: 350,
}

// defaultOutputValue covers output types without a declared weight.
const defaultOutputValue = 100

// hoursSavedByAgent is the declared per-task-type weight: operator hours
// saved per completed task, by owning agent.
var hoursSavedByAgent = map[domain.AgentType]float64{
	domain.AgentTypeContent:      2.5,
	domain.AgentTypeIntelligence: 4,
	domain.AgentTypeSuccess:      3,
	domain.AgentTypeStrategy:     5,
	domain.AgentTypeSales:        2,
}

// MetricsSummary is the aggregate rollup for the current month.
type MetricsSummary struct {
	TotalRuns      int
	TotalOutputs   int
	TotalCommands  int
	EstimatedValue float64
	HoursSaved     float64
}

// MetricsService computes read-only rollups. It holds no state of its own
// and tolerates an empty dataset (all zeros, never an error).
type MetricsService struct {
	metricsRepo *repository.MetricsRepository
}

// NewMetricsService creates a new MetricsService.
func NewMetricsService(metricsRepo *repository.MetricsRepository) *MetricsService {
	return &MetricsService{metricsRepo: metricsRepo}
}

// Summary computes the rollup over the current calendar month.
func (s *MetricsService) Summary(ctx context.Context) (*MetricsSummary, error) {
	return s.SummarySince(ctx, startOfMonth(time.Now()))
}

// SummarySince computes the rollup over an explicit window start.
func (s *MetricsService) SummarySince(ctx context.Context, since time.Time) (*MetricsSummary, error) {
	totalRuns, err := s.metricsRepo.CountAuditActions(ctx, domain.AuditActionAgentExecuted, since)
	if err != nil {
		return nil, err
	}

	totalCommands, err := s.metricsRepo.CountAuditActions(ctx, domain.AuditActionGoalStarted, since)
	if err != nil {
		return nil, err
	}

	outputCounts, err := s.metricsRepo.DeliverableCountsByType(ctx, since)
	if err != nil {
		return nil, err
	}

	totalOutputs := 0
	estimatedValue := 0.0
	for outputType, count := range outputCounts {
		totalOutputs += count
		weight, ok := valueByOutputType[outputType]
		if !ok {
			weight = defaultOutputValue
		}
		estimatedValue += weight * float64(count)
	}

	completedCounts, err := s.metricsRepo.CompletedTaskCountsByAgent(ctx, since)
	if err != nil {
		return nil, err
	}

	hoursSaved := 0.0
	for agentType, count := range completedCounts {
		hoursSaved += hoursSavedByAgent[agentType] * float64(count)
	}

	return &MetricsSummary{
		TotalRuns:      totalRuns,
		TotalOutputs:   totalOutputs,
		TotalCommands:  totalCommands,
		EstimatedValue: estimatedValue,
		HoursSaved:     hoursSaved,
	}, nil
}

// startOfMonth returns midnight on the first day of t's month.
func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
