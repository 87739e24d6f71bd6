package domain

import "errors"

// Domain-specific errors for business logic validation.
var (
	// Task errors
	ErrTaskNotFound      = errors.New("task not found")
	ErrInvalidTransition = errors.New("invalid status transition")

	// Deliverable errors
	ErrDeliverableNotFound = errors.New("deliverable not found")
	ErrInvalidState        = errors.New("deliverable is not in an approvable state")

	// Agent errors
	ErrAgentNotFound = errors.New("agent not found")
	ErrAgentPaused   = errors.New("agent is paused")
	ErrAgentBusy     = errors.New("agent is already running")
	ErrInvalidConfig = errors.New("unknown configuration key")

	// Orchestration errors
	ErrNoAgentMatched = errors.New("no agent matched the command")

	// Validation errors
	ErrInvalidStatus   = errors.New("invalid task status")
	ErrInvalidPriority = errors.New("invalid task priority")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
	ErrEmptyTitle      = errors.New("title is required")
	ErrEmptyCommand    = errors.New("command is required")
)
