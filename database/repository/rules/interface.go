package rulesRepo

import (
	"context"

	"meetsync/models"
)

// ApproverRuleSource resolves which approvers, if any, a booking requires.
// An empty result means the booking is eligible for auto-approval.
type ApproverRuleSource interface {
	ResolveApprovers(ctx context.Context, b *models.Booking) ([]models.ApproverRule, error)
}
