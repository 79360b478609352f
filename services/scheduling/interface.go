package scheduling

import (
	"context"
	"time"

	bookingRepo "meetsync/database/repository/booking"
	rulesRepo "meetsync/database/repository/rules"
	"meetsync/models"
	"meetsync/services/calendar"
	"meetsync/services/notification"
	"meetsync/utils"

	"go.uber.org/zap"
)

// RecheckPolicy picks what happens when the confirmation re-check finds a
// conflict that appeared after submission.
type RecheckPolicy string

const (
	// RecheckRevertToPending sends the booking back to PendingApproval with
	// the new conflicts attached. The default: safety over optimistic commit.
	RecheckRevertToPending RecheckPolicy = "revert"
	// RecheckAutoReject rejects the booking outright instead.
	RecheckAutoReject RecheckPolicy = "reject"
)

// SchedulingService is the single entry point for booking mutations. Every
// call carries the acting user explicitly; there is no ambient session.
type SchedulingService interface {
	Submit(ctx context.Context, actorID string, candidate *models.Booking, force bool) (*models.Booking, []models.Conflict, error)
	DecideApproval(ctx context.Context, actorID, bookingID string, decision models.StepDecision, notes string) (*models.Booking, error)
	Cancel(ctx context.Context, actorID, bookingID, reason string) (*models.Booking, error)
	Reschedule(ctx context.Context, actorID, bookingID string, newStart, newEnd time.Time, force bool) (*models.Booking, []models.Conflict, error)
	Get(ctx context.Context, bookingID string) (*models.Booking, error)
	CompleteElapsed(ctx context.Context, now time.Time) (int, error)
}

// DefaultSchedulingCoordinator implements SchedulingService. It is the only
// component with side effects; the detector and the approval engine stay
// pure and all store writes funnel through here.
type DefaultSchedulingCoordinator struct {
	Store    bookingRepo.BookingStore
	Rules    rulesRepo.ApproverRuleSource
	Detector *ConflictDetector
	Engine   *ApprovalChainEngine
	Calendar calendar.CalendarPort
	Notifier notification.NotificationPort

	// Policy controls the confirmation re-check outcome on new conflicts.
	Policy RecheckPolicy
	// Routing is the mode applied to newly created chains.
	Routing models.RoutingMode
	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time

	locks  *entityLocks
	logger *zap.Logger
}

// NewCoordinator wires a coordinator with its lock table and logger.
func NewCoordinator(
	store bookingRepo.BookingStore,
	rules rulesRepo.ApproverRuleSource,
	cal calendar.CalendarPort,
	notifier notification.NotificationPort,
	policy RecheckPolicy,
	routing models.RoutingMode,
) *DefaultSchedulingCoordinator {
	if policy == "" {
		policy = RecheckRevertToPending
	}
	if routing == "" {
		routing = models.RoutingSequential
	}
	return &DefaultSchedulingCoordinator{
		Store:    store,
		Rules:    rules,
		Detector: &ConflictDetector{Store: store},
		Engine:   &ApprovalChainEngine{},
		Calendar: cal,
		Notifier: notifier,
		Policy:   policy,
		Routing:  routing,
		Now:      time.Now,
		locks:    newEntityLocks(),
		logger:   utils.GetLogger(),
	}
}
