package models

import "time"

// RoutingMode controls how approval steps are evaluated.
type RoutingMode string

const (
	// RoutingSequential requires steps to be decided in level order.
	RoutingSequential RoutingMode = "Sequential"
	// RoutingParallel lets any pending step be decided independently.
	RoutingParallel RoutingMode = "Parallel"
)

// StepDecision is the state of one approval step.
type StepDecision string

const (
	DecisionPending  StepDecision = "Pending"
	DecisionApproved StepDecision = "Approved"
	DecisionRejected StepDecision = "Rejected"
	// DecisionSkipped marks steps short-circuited by an earlier rejection.
	DecisionSkipped StepDecision = "Skipped"
)

// ApprovalStep is a single approver's slot in a chain.
type ApprovalStep struct {
	ApproverID string       `bson:"approverId" json:"approverId"`
	Level      int          `bson:"level" json:"level"`
	Decision   StepDecision `bson:"decision" json:"decision"`
	DecidedAt  *time.Time   `bson:"decidedAt,omitempty" json:"decidedAt,omitempty"`
	Notes      string       `bson:"notes,omitempty" json:"notes,omitempty"`
}

// ApprovalChain is the ordered (or grouped-parallel) sequence of approval
// steps for one booking. It is owned exclusively by its booking, created once
// when approval becomes necessary and never re-created; later changes append
// audit entries on the booking instead.
type ApprovalChain struct {
	Mode      RoutingMode    `bson:"mode" json:"mode"`
	Steps     []ApprovalStep `bson:"steps" json:"steps"`
	CreatedAt time.Time      `bson:"createdAt" json:"createdAt"`
}

// Terminal reports whether the chain has reached a final outcome.
func (c *ApprovalChain) Terminal() bool {
	for _, s := range c.Steps {
		if s.Decision == DecisionRejected {
			return true
		}
	}
	for _, s := range c.Steps {
		if s.Decision == DecisionPending {
			return false
		}
	}
	return true
}

// ApproverRule is one (approver, level) entry resolved from the external
// rule source for a booking.
type ApproverRule struct {
	ApproverID string `bson:"approverId" json:"approverId"`
	Level      int    `bson:"level" json:"level"`
}
