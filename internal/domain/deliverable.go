package domain

import "time"

// DeliverableStatus represents the approval lifecycle of a deliverable.
type DeliverableStatus string

const (
	DeliverableStatusDraft    DeliverableStatus = "draft"
	DeliverableStatusApproved DeliverableStatus = "approved"
	DeliverableStatusShipped  DeliverableStatus = "shipped"
	DeliverableStatusRejected DeliverableStatus = "rejected"
)

// IsValid checks if the status is one of the allowed values.
func (s DeliverableStatus) IsValid() bool {
	switch s {
	case DeliverableStatusDraft, DeliverableStatusApproved,
		DeliverableStatusShipped, DeliverableStatusRejected:
		return true
	default:
		return false
	}
}

// Deliverable is an artifact produced by an agent run. Quality is scored
// once at creation by the producing agent and never recomputed.
type Deliverable struct {
	ID             string
	AgentType      AgentType
	OutputType     string
	Title          string
	Content        string
	OverallQuality *int
	Rating         *int
	Status         DeliverableStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsApprovable reports whether the deliverable may be approved or rejected.
// Only drafts are reviewable; anything else is an InvalidState error.
func (d *Deliverable) IsApprovable() bool {
	return d.Status == DeliverableStatusDraft
}

// IsShippable reports whether the deliverable may be shipped.
// Only approved deliverables ship.
func (d *Deliverable) IsShippable() bool {
	return d.Status == DeliverableStatusApproved
}
