package scheduling

import (
	"fmt"
	"strings"

	"meetsync/models"
)

// ValidationError reports every structural invariant a candidate violated.
// It is never retried automatically.
type ValidationError struct {
	Violations []models.FieldViolation
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		fields = append(fields, v.Field+": "+v.Message)
	}
	return "validation failed: " + strings.Join(fields, "; ")
}

// ConflictDetectedError carries the detected conflicts so the caller can
// decide to override or pick a new window.
type ConflictDetectedError struct {
	Conflicts []models.Conflict
}

func (e *ConflictDetectedError) Error() string {
	return fmt.Sprintf("booking conflicts with %d existing entity holds", len(e.Conflicts))
}

// InvalidStateTransitionError reports an operation attempted from a state
// that does not permit it.
type InvalidStateTransitionError struct {
	BookingID string
	From      models.BookingStatus
	Operation string
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("booking %s: cannot %s from status %s", e.BookingID, e.Operation, e.From)
}

// ApprovalNotAuthorizedError reports a decision submitted by an approver not
// currently eligible under the chain's routing mode.
type ApprovalNotAuthorizedError struct {
	BookingID  string
	ApproverID string
	Reason     string
}

func (e *ApprovalNotAuthorizedError) Error() string {
	return fmt.Sprintf("approver %s is not authorized to decide booking %s: %s", e.ApproverID, e.BookingID, e.Reason)
}

// ExternalServiceError wraps a calendar or notification collaborator
// failure. It is never fatal to booking state; the coordinator logs it and
// surfaces at most a warning flag.
type ExternalServiceError struct {
	Collaborator string
	BookingID    string
	Err          error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s failed for booking %s: %v", e.Collaborator, e.BookingID, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }
