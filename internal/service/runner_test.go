package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/storepilot/storepilot/internal/domain"
	"github.com/storepilot/storepilot/internal/service"
	"github.com/stretchr/testify/suite"
)

// RunnerTestSuite is the test suite for the agent Runner.
type RunnerTestSuite struct {
	ServiceTestSuite
	runner *service.Runner
}

// SetupSuite runs once before all tests.
func (s *RunnerTestSuite) SetupSuite() {
	s.ServiceTestSuite.SetupSuite()
	s.runner = service.NewRunner(s.pool, s.agentRepo, s.taskRepo, s.deliverableRepo, s.auditRepo)
}

// TestRun_ProducesDeliverables tests an unbound content agent run.
func (s *RunnerTestSuite) TestRun_ProducesDeliverables() {
	ctx := context.Background()

	deliverables, err := s.runner.Run(ctx, domain.AgentTypeContent, "Announce the summer sale", "")
	s.Require().NoError(err)
	s.Require().Len(deliverables, 2, "content agent produces a post and an email")

	for _, d := range deliverables {
		s.Equal(domain.DeliverableStatusDraft, d.Status)
		s.Equal(domain.AgentTypeContent, d.AgentType)
		s.Require().NotNil(d.OverallQuality)
		s.GreaterOrEqual(*d.OverallQuality, 0)
		s.LessOrEqual(*d.OverallQuality, 100)
	}

	// One audit entry per deliverable, plus one for the run itself
	s.Equal(2, s.countAudit(ctx, domain.AuditActionDeliverableCreated))
	s.Equal(1, s.countAudit(ctx, domain.AuditActionAgentExecuted))

	// The agent's last action is recorded
	agent, err := s.agentRepo.GetByType(ctx, domain.AgentTypeContent)
	s.Require().NoError(err)
	s.NotNil(agent.LastAction)
	s.NotNil(agent.LastActionAt)
}

// TestRun_PausedAgent tests that a paused agent refuses to run.
func (s *RunnerTestSuite) TestRun_PausedAgent() {
	ctx := context.Background()
	s.pauseAgent(ctx, domain.AgentTypeSales)

	_, err := s.runner.Run(ctx, domain.AgentTypeSales, "Discount the winter line", "")
	s.Error(err)
	s.ErrorIs(err, domain.ErrAgentPaused)

	// The refusal itself is audited
	s.Equal(1, s.countAudit(ctx, domain.AuditActionPolicyBlocked))
	s.Equal(0, s.countAudit(ctx, domain.AuditActionDeliverableCreated))
}

// TestRun_UnknownAgent tests running an agent type outside the roster.
func (s *RunnerTestSuite) TestRun_UnknownAgent() {
	ctx := context.Background()

	_, err := s.runner.Run(ctx, domain.AgentType("janitor"), "Sweep the floor", "")
	s.Error(err)
	s.ErrorIs(err, domain.ErrAgentNotFound)
}

// TestRun_BoundTask tests that a bound pending task completes with the run.
func (s *RunnerTestSuite) TestRun_BoundTask() {
	ctx := context.Background()
	taskID := s.createTask(ctx, domain.AgentTypeStrategy, domain.TaskStatusPending)

	deliverables, err := s.runner.Run(ctx, domain.AgentTypeStrategy, "Forecast next quarter", taskID)
	s.Require().NoError(err)
	s.NotEmpty(deliverables)

	task, err := s.taskRepo.GetByID(ctx, taskID)
	s.Require().NoError(err)
	s.Equal(domain.TaskStatusCompleted, task.Status)
	s.Require().NotNil(task.Result)
	s.Contains(*task.Result, "deliverable")

	s.Equal(1, s.countAudit(ctx, domain.AuditActionTaskStarted))
	s.Equal(1, s.countAudit(ctx, domain.AuditActionTaskCompleted))
}

// TestRun_BoundTaskNotPending tests binding a run to an already-finished task.
func (s *RunnerTestSuite) TestRun_BoundTaskNotPending() {
	ctx := context.Background()
	taskID := s.createTask(ctx, domain.AgentTypeStrategy, domain.TaskStatusCompleted)

	_, err := s.runner.Run(ctx, domain.AgentTypeStrategy, "Forecast next quarter", taskID)
	s.Error(err)
	s.ErrorIs(err, domain.ErrInvalidTransition)

	// Task keeps its prior state, no deliverables were created
	task, err := s.taskRepo.GetByID(ctx, taskID)
	s.Require().NoError(err)
	s.Equal(domain.TaskStatusCompleted, task.Status)
	s.Equal(0, s.countAudit(ctx, domain.AuditActionDeliverableCreated))
}

// TestRun_AutoSendEmail tests the content agent's auto_send dispatch.
func (s *RunnerTestSuite) TestRun_AutoSendEmail() {
	ctx := context.Background()

	_, err := s.pool.Exec(ctx,
		`UPDATE agents SET configuration = configuration || '{"auto_send": true}'::jsonb WHERE agent_type = 'content'`)
	s.Require().NoError(err)

	_, err = s.runner.Run(ctx, domain.AgentTypeContent, "Announce the summer sale", "")
	s.Require().NoError(err)

	s.Equal(1, s.countAudit(ctx, domain.AuditActionEmailSent))
}

// TestRun_NoAutoSendByDefault tests that emails are not dispatched by default.
func (s *RunnerTestSuite) TestRun_NoAutoSendByDefault() {
	ctx := context.Background()

	_, err := s.runner.Run(ctx, domain.AgentTypeContent, "Announce the summer sale", "")
	s.Require().NoError(err)

	s.Equal(0, s.countAudit(ctx, domain.AuditActionEmailSent))
}

// TestRun_ConcurrentSameTask checks that two runs bound to one task can never
// both succeed: either the per-agent lock or the task state machine stops the
// second one.
func (s *RunnerTestSuite) TestRun_ConcurrentSameTask() {
	ctx := context.Background()
	taskID := s.createTask(ctx, domain.AgentTypeIntelligence, domain.TaskStatusPending)

	var wg sync.WaitGroup
	results := make(chan error, 2)

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.runner.Run(ctx, domain.AgentTypeIntelligence, "Scan competitor pricing", taskID)
			results <- err
		}()
	}

	wg.Wait()
	close(results)

	successCount := 0
	for err := range results {
		if err == nil {
			successCount++
		} else {
			s.True(errors.Is(err, domain.ErrAgentBusy) || errors.Is(err, domain.ErrInvalidTransition),
				"unexpected error: %v", err)
		}
	}
	s.Equal(1, successCount, "exactly one run should succeed")

	task, err := s.taskRepo.GetByID(ctx, taskID)
	s.Require().NoError(err)
	s.Equal(domain.TaskStatusCompleted, task.Status)
}

// TestRun_TaskCompletedMidRunLeavesNothing checks that a bound run is all or
// nothing. An operator completes the task while the run is waiting on the task
// row; the run must fail and leave no deliverables, no agent_executed entry,
// and no task_started entry behind — only the policy_blocked record.
func (s *RunnerTestSuite) TestRun_TaskCompletedMidRunLeavesNothing() {
	ctx := context.Background()
	taskID := s.createTask(ctx, domain.AgentTypeSuccess, domain.TaskStatusPending)

	// Hold the task row so the run blocks before it can claim the task.
	tx, err := s.pool.Begin(ctx)
	s.Require().NoError(err)
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, "SELECT 1 FROM tasks WHERE id = $1 FOR UPDATE", taskID)
	s.Require().NoError(err)

	runDone := make(chan error, 1)
	go func() {
		_, err := s.runner.Run(ctx, domain.AgentTypeSuccess, "Win back lapsed customers", taskID)
		runDone <- err
	}()

	// Complete the task out from under the run, then release the row lock.
	_, err = tx.Exec(ctx, "UPDATE tasks SET status = 'completed' WHERE id = $1", taskID)
	s.Require().NoError(err)
	s.Require().NoError(tx.Commit(ctx))

	err = <-runDone
	s.Require().Error(err)
	s.ErrorIs(err, domain.ErrInvalidTransition)

	var deliverableCount int
	s.Require().NoError(s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM deliverables").Scan(&deliverableCount))
	s.Equal(0, deliverableCount, "a failed run must not leave deliverables behind")

	s.Equal(0, s.countAudit(ctx, domain.AuditActionDeliverableCreated))
	s.Equal(0, s.countAudit(ctx, domain.AuditActionAgentExecuted))
	s.Equal(0, s.countAudit(ctx, domain.AuditActionTaskStarted))
	s.Equal(1, s.countAudit(ctx, domain.AuditActionPolicyBlocked))

	task, err := s.taskRepo.GetByID(ctx, taskID)
	s.Require().NoError(err)
	s.Equal(domain.TaskStatusCompleted, task.Status)
	s.Nil(task.Result, "the run must not have written a result")
}

// TestRunnerTestSuite runs the test suite.
func TestRunnerTestSuite(t *testing.T) {
	suite.Run(t, new(RunnerTestSuite))
}
