package scheduling

import (
	"fmt"
	"sort"
	"time"

	"meetsync/models"
)

// ChainOutcome is the chain-level result of applying one decision.
type ChainOutcome int

const (
	ChainPending ChainOutcome = iota
	ChainApproved
	ChainRejected
)

// ApprovalChainEngine owns the approval state machine for a booking's chain:
// step eligibility per routing mode, short-circuit rejection, and the
// all-approved outcome. It never touches the store; the coordinator persists
// whatever the engine decides, all-or-nothing per step.
type ApprovalChainEngine struct{}

// CreateChain builds a chain from resolved approver rules; a nil return
// means no approval is required and the booking may auto-approve. Steps are
// ordered by level; multiple approvers on the same level are allowed in
// either mode.
func (e *ApprovalChainEngine) CreateChain(rules []models.ApproverRule, mode models.RoutingMode, now time.Time) *models.ApprovalChain {
	if len(rules) == 0 {
		return nil
	}
	steps := make([]models.ApprovalStep, 0, len(rules))
	for _, r := range rules {
		steps = append(steps, models.ApprovalStep{
			ApproverID: r.ApproverID,
			Level:      r.Level,
			Decision:   models.DecisionPending,
		})
	}
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].Level < steps[j].Level })
	return &models.ApprovalChain{
		Mode:      mode,
		Steps:     steps,
		CreatedAt: now,
	}
}

// Decide applies one approver's decision to the chain in place. It fails
// with InvalidStateTransitionError when the chain is already terminal and
// with ApprovalNotAuthorizedError when the approver does not own the
// currently eligible step. A rejection short-circuits the chain: remaining
// pending steps are marked Skipped.
func (e *ApprovalChainEngine) Decide(
	chain *models.ApprovalChain,
	bookingID, approverID string,
	decision models.StepDecision,
	notes string,
	now time.Time,
) (ChainOutcome, error) {
	if chain == nil {
		return ChainPending, fmt.Errorf("booking %s has no approval chain", bookingID)
	}
	if decision != models.DecisionApproved && decision != models.DecisionRejected {
		return ChainPending, fmt.Errorf("unsupported decision %q", decision)
	}
	if chain.Terminal() {
		return ChainPending, &InvalidStateTransitionError{
			BookingID: bookingID,
			From:      models.StatusApproved,
			Operation: "decide on a settled approval chain",
		}
	}

	idx, err := e.eligibleStep(chain, bookingID, approverID)
	if err != nil {
		return ChainPending, err
	}

	step := &chain.Steps[idx]
	step.Decision = decision
	step.DecidedAt = &now
	step.Notes = notes

	if decision == models.DecisionRejected {
		for i := range chain.Steps {
			if chain.Steps[i].Decision == models.DecisionPending {
				chain.Steps[i].Decision = models.DecisionSkipped
			}
		}
		return ChainRejected, nil
	}

	for _, s := range chain.Steps {
		if s.Decision == models.DecisionPending {
			return ChainPending, nil
		}
	}
	return ChainApproved, nil
}

// eligibleStep locates the step approverID may decide right now, or explains
// why there is none.
func (e *ApprovalChainEngine) eligibleStep(chain *models.ApprovalChain, bookingID, approverID string) (int, error) {
	owned := -1
	for i, s := range chain.Steps {
		if s.ApproverID == approverID && s.Decision == models.DecisionPending {
			owned = i
			break
		}
	}
	if owned == -1 {
		for _, s := range chain.Steps {
			if s.ApproverID == approverID {
				return -1, &ApprovalNotAuthorizedError{
					BookingID:  bookingID,
					ApproverID: approverID,
					Reason:     "step already decided",
				}
			}
		}
		return -1, &ApprovalNotAuthorizedError{
			BookingID:  bookingID,
			ApproverID: approverID,
			Reason:     "approver has no step in this chain",
		}
	}

	if chain.Mode == models.RoutingParallel {
		return owned, nil
	}

	// Sequential: every lower-level step must already be Approved.
	level := chain.Steps[owned].Level
	for _, s := range chain.Steps {
		if s.Level < level && s.Decision != models.DecisionApproved {
			return -1, &ApprovalNotAuthorizedError{
				BookingID:  bookingID,
				ApproverID: approverID,
				Reason:     fmt.Sprintf("step at level %d is still pending", s.Level),
			}
		}
	}
	return owned, nil
}

// EligibleApprovers returns the approvers who may act on the chain right
// now: in Sequential mode the owners of the lowest undecided level, in
// Parallel mode every pending approver.
func (e *ApprovalChainEngine) EligibleApprovers(chain *models.ApprovalChain) []string {
	if chain == nil || chain.Terminal() {
		return nil
	}
	if chain.Mode == models.RoutingParallel {
		var out []string
		for _, s := range chain.Steps {
			if s.Decision == models.DecisionPending {
				out = append(out, s.ApproverID)
			}
		}
		return out
	}

	lowest := -1
	for _, s := range chain.Steps {
		if s.Decision != models.DecisionPending {
			continue
		}
		if lowest == -1 || s.Level < lowest {
			lowest = s.Level
		}
	}
	if lowest == -1 {
		return nil
	}
	var out []string
	for _, s := range chain.Steps {
		if s.Decision == models.DecisionPending && s.Level == lowest {
			out = append(out, s.ApproverID)
		}
	}
	return out
}
