package domain

import "time"

// ActorOperator is the actor recorded for operator-initiated actions.
const ActorOperator = "operator"

// AuditAction represents the type of state-changing event being recorded.
type AuditAction string

const (
	AuditActionGoalStarted         AuditAction = "goal_started"
	AuditActionTaskCreated         AuditAction = "task_created"
	AuditActionTaskStarted         AuditAction = "task_started"
	AuditActionTaskCompleted       AuditAction = "task_completed"
	AuditActionDeliverableCreated  AuditAction = "deliverable_created"
	AuditActionDeliverableApproved AuditAction = "deliverable_approved"
	AuditActionDeliverableRejected AuditAction = "deliverable_rejected"
	AuditActionDeliverableShipped  AuditAction = "deliverable_shipped"
	AuditActionDeliverableRated    AuditAction = "deliverable_rated"
	AuditActionEmailSent           AuditAction = "email_sent"
	AuditActionAgentExecuted       AuditAction = "agent_executed"
	AuditActionAgentToggled        AuditAction = "agent_toggled"
	AuditActionAgentConfigured     AuditAction = "agent_configured"
	AuditActionPolicyBlocked       AuditAction = "policy_blocked"
)

// AuditEntry is an immutable record of one state-changing event.
// Entries are only ever inserted; there is no update or delete, and
// insertion order is monotonic with created_at per actor.
type AuditEntry struct {
	ID           int64
	Actor        string
	Action       AuditAction
	ResourceType *string
	ResourceID   *string
	Details      map[string]any
	CreatedAt    time.Time
}
