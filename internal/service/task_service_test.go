package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/storepilot/storepilot/internal/domain"
	"github.com/storepilot/storepilot/internal/service"
	"github.com/stretchr/testify/suite"
)

// TaskServiceTestSuite is the test suite for TaskService.
type TaskServiceTestSuite struct {
	ServiceTestSuite
	taskService *service.TaskService
}

// SetupSuite runs once before all tests.
func (s *TaskServiceTestSuite) SetupSuite() {
	s.ServiceTestSuite.SetupSuite()
	s.taskService = service.NewTaskService(s.pool, s.taskRepo, s.agentRepo, s.auditRepo)
}

// TestCreateTask_ExplicitAgent tests creation with an explicit owner.
func (s *TaskServiceTestSuite) TestCreateTask_ExplicitAgent() {
	ctx := context.Background()

	owner := domain.AgentTypeSales
	task, err := s.taskService.CreateTask(ctx, service.CreateTaskParams{
		AgentType:   &owner,
		Title:       "Review slow movers",
		Description: "Check the bottom 10% of SKUs",
		Priority:    domain.TaskPriorityHigh,
	})
	s.Require().NoError(err)
	s.NotEmpty(task.ID)
	s.Equal(domain.AgentTypeSales, task.AgentType)
	s.Equal(domain.TaskStatusPending, task.Status)
	s.Equal(domain.TaskPriorityHigh, task.Priority)

	s.Equal(1, s.countAudit(ctx, domain.AuditActionTaskCreated))
}

// TestCreateTask_AutoRouted tests keyword routing when no owner is given.
func (s *TaskServiceTestSuite) TestCreateTask_AutoRouted() {
	ctx := context.Background()

	task, err := s.taskService.CreateTask(ctx, service.CreateTaskParams{
		Title: "Win back lapsed VIP customers",
	})
	s.Require().NoError(err)
	s.Equal(domain.AgentTypeSuccess, task.AgentType)
	s.Equal(domain.TaskStatusPending, task.Status)
	s.Equal(domain.TaskPriorityMedium, task.Priority, "priority defaults to medium")
}

// TestCreateTask_EmptyTitle tests that a title is required.
func (s *TaskServiceTestSuite) TestCreateTask_EmptyTitle() {
	ctx := context.Background()

	_, err := s.taskService.CreateTask(ctx, service.CreateTaskParams{Title: ""})
	s.ErrorIs(err, domain.ErrEmptyTitle)
}

// TestCreateTask_InvalidPriority tests priority validation.
func (s *TaskServiceTestSuite) TestCreateTask_InvalidPriority() {
	ctx := context.Background()

	_, err := s.taskService.CreateTask(ctx, service.CreateTaskParams{
		Title:    "Review slow movers",
		Priority: domain.TaskPriority("urgent"),
	})
	s.ErrorIs(err, domain.ErrInvalidPriority)
}

// TestCreateTask_UnknownAgent tests creation against an agent outside the roster.
func (s *TaskServiceTestSuite) TestCreateTask_UnknownAgent() {
	ctx := context.Background()

	owner := domain.AgentType("janitor")
	_, err := s.taskService.CreateTask(ctx, service.CreateTaskParams{
		AgentType: &owner,
		Title:     "Sweep the floor",
	})
	s.ErrorIs(err, domain.ErrAgentNotFound)
}

// TestTransitionStatus_FullLifecycle walks pending -> in_progress -> completed.
func (s *TaskServiceTestSuite) TestTransitionStatus_FullLifecycle() {
	ctx := context.Background()
	taskID := s.createTask(ctx, domain.AgentTypeContent, domain.TaskStatusPending)

	task, err := s.taskService.TransitionStatus(ctx, taskID, domain.TaskStatusInProgress)
	s.Require().NoError(err)
	s.Equal(domain.TaskStatusInProgress, task.Status)

	task, err = s.taskService.TransitionStatus(ctx, taskID, domain.TaskStatusCompleted)
	s.Require().NoError(err)
	s.Equal(domain.TaskStatusCompleted, task.Status)

	s.Equal(1, s.countAudit(ctx, domain.AuditActionTaskStarted))
	s.Equal(1, s.countAudit(ctx, domain.AuditActionTaskCompleted))
}

// TestTransitionStatus_SkipNotAllowed tests pending -> completed directly.
func (s *TaskServiceTestSuite) TestTransitionStatus_SkipNotAllowed() {
	ctx := context.Background()
	taskID := s.createTask(ctx, domain.AgentTypeContent, domain.TaskStatusPending)

	_, err := s.taskService.TransitionStatus(ctx, taskID, domain.TaskStatusCompleted)
	s.Error(err)
	s.ErrorIs(err, domain.ErrInvalidTransition)

	task, err := s.taskRepo.GetByID(ctx, taskID)
	s.Require().NoError(err)
	s.Equal(domain.TaskStatusPending, task.Status, "failed transition must not change state")
}

// TestTransitionStatus_NoBackwards tests completed -> in_progress.
func (s *TaskServiceTestSuite) TestTransitionStatus_NoBackwards() {
	ctx := context.Background()
	taskID := s.createTask(ctx, domain.AgentTypeContent, domain.TaskStatusCompleted)

	_, err := s.taskService.TransitionStatus(ctx, taskID, domain.TaskStatusInProgress)
	s.ErrorIs(err, domain.ErrInvalidTransition)
}

// TestTransitionStatus_NotFound tests a transition on a missing task.
func (s *TaskServiceTestSuite) TestTransitionStatus_NotFound() {
	ctx := context.Background()

	_, err := s.taskService.TransitionStatus(ctx, "00000000-0000-0000-0000-000000000099", domain.TaskStatusInProgress)
	s.ErrorIs(err, domain.ErrTaskNotFound)
}

// TestTransitionStatus_Concurrent checks the optimistic-concurrency precondition.
func (s *TaskServiceTestSuite) TestTransitionStatus_Concurrent() {
	ctx := context.Background()
	taskID := s.createTask(ctx, domain.AgentTypeContent, domain.TaskStatusPending)

	var wg sync.WaitGroup
	results := make(chan error, 2)

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.taskService.TransitionStatus(ctx, taskID, domain.TaskStatusInProgress)
			results <- err
		}()
	}

	wg.Wait()
	close(results)

	successCount := 0
	for err := range results {
		if err == nil {
			successCount++
		}
	}
	s.Equal(1, successCount, "exactly one transition should succeed")

	task, err := s.taskRepo.GetByID(ctx, taskID)
	s.Require().NoError(err)
	s.Equal(domain.TaskStatusInProgress, task.Status)
}

// TestListBoard tests listing with per-status counts.
func (s *TaskServiceTestSuite) TestListBoard() {
	ctx := context.Background()
	s.createTask(ctx, domain.AgentTypeContent, domain.TaskStatusPending)
	s.createTask(ctx, domain.AgentTypeSales, domain.TaskStatusPending)
	s.createTask(ctx, domain.AgentTypeSales, domain.TaskStatusInProgress)

	tasks, counts, err := s.taskService.ListBoard(ctx, nil)
	s.Require().NoError(err)
	s.Len(tasks, 3)
	s.Equal(2, counts[domain.TaskStatusPending])
	s.Equal(1, counts[domain.TaskStatusInProgress])
	s.Equal(0, counts[domain.TaskStatusCompleted], "absent statuses count as zero")
}

// TestListBoard_StatusFilter tests filtered listing.
func (s *TaskServiceTestSuite) TestListBoard_StatusFilter() {
	ctx := context.Background()
	s.createTask(ctx, domain.AgentTypeContent, domain.TaskStatusPending)
	s.createTask(ctx, domain.AgentTypeSales, domain.TaskStatusInProgress)

	pending := domain.TaskStatusPending
	tasks, _, err := s.taskService.ListBoard(ctx, &pending)
	s.Require().NoError(err)
	s.Require().Len(tasks, 1)
	s.Equal(domain.TaskStatusPending, tasks[0].Status)
}

// TestTaskServiceTestSuite runs the test suite.
func TestTaskServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TaskServiceTestSuite))
}
