package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingRepo "meetsync/database/repository/booking"
	"meetsync/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// updateRetries bounds the load-apply-update loop used when a version-guarded
// write loses a race.
const updateRetries = 3

// calendarOp names the calendar side effect computed while a booking is being
// written. The enqueue itself happens only after the write succeeds, so a
// retried or failed write never leaves an orphaned event behind.
type calendarOp int

const (
	calNone calendarOp = iota
	calCreate
	calUpdate
)

// Submit validates a candidate, runs conflict detection under the entity
// locks, decides approval necessity, persists, and dispatches the "created"
// notifications. Conflicts without force fail with ConflictDetectedError;
// side-effect failures are logged and reported only as warnings.
func (c *DefaultSchedulingCoordinator) Submit(ctx context.Context, actorID string, candidate *models.Booking, force bool) (*models.Booking, []models.Conflict, error) {
	now := c.Now()

	if violations := candidate.Validate(now); len(violations) > 0 {
		return nil, nil, &ValidationError{Violations: violations}
	}

	candidate.ID = uuid.New().String()
	candidate.Status = models.StatusDraft
	candidate.DurationMinutes = int(candidate.End.Sub(candidate.Start) / time.Minute)
	candidate.CreatedAt = now
	candidate.UpdatedAt = now
	for i := range candidate.Participants {
		if candidate.Participants[i].Response == "" {
			candidate.Participants[i].Response = models.ResponseInvited
		}
	}
	if candidate.IsVirtual {
		candidate.MeetingLink = newMeetingLink()
	}
	candidate.AuditLog = append(candidate.AuditLog,
		models.NewAuditEntry(now, actorID, "submitted", ""))

	// Detection and the initial write happen under the entity locks so two
	// overlapping submissions for the same room or person serialize.
	release := c.locks.acquire(candidate.EntityKeys())
	defer release()

	conflicts, err := c.Detector.Detect(ctx, candidate, "")
	if err != nil {
		return nil, nil, fmt.Errorf("conflict detection: %w", err)
	}
	candidate.Conflicts = conflicts
	if len(conflicts) > 0 && !force {
		return nil, conflicts, &ConflictDetectedError{Conflicts: conflicts}
	}

	rules, err := c.Rules.ResolveApprovers(ctx, candidate)
	if err != nil {
		return nil, nil, fmt.Errorf("approver rule lookup: %w", err)
	}

	autoPath := len(rules) == 0 || (candidate.AutoApprove && len(conflicts) == 0)
	op := calNone
	if autoPath {
		candidate.Status = models.StatusApproved
		candidate.AuditLog = append(candidate.AuditLog,
			models.NewAuditEntry(now, actorID, "auto_approved", ""))
		// The lock is still held and detection just ran, so the
		// confirmation re-check passes by construction.
		op = c.confirm(actorID, candidate, now)
	} else {
		candidate.ApprovalChain = c.Engine.CreateChain(rules, c.Routing, now)
		candidate.Status = models.StatusPendingApproval
	}

	if err := c.Store.Insert(ctx, candidate); err != nil {
		return nil, nil, fmt.Errorf("persisting booking: %w", err)
	}

	c.emitCalendarEvent(ctx, candidate, op)
	c.notifyParticipants(ctx, candidate, models.EventBookingCreated)
	if candidate.Status == models.StatusPendingApproval {
		for _, approver := range c.Engine.EligibleApprovers(candidate.ApprovalChain) {
			c.notify(ctx, candidate, approver, models.EventApprovalRequired)
		}
	}
	if candidate.Status == models.StatusConfirmed {
		c.notifyParticipants(ctx, candidate, models.EventBookingConfirmed)
	}

	return candidate, conflicts, nil
}

// DecideApproval applies one approver decision and, when the chain reaches
// Approved, re-runs conflict detection before confirming. Conflicts that
// appeared since submission send the booking back per the configured policy
// instead of silently confirming.
func (c *DefaultSchedulingCoordinator) DecideApproval(ctx context.Context, actorID, bookingID string, decision models.StepDecision, notes string) (*models.Booking, error) {
	var b *models.Booking
	var op calendarOp
	for attempt := 0; ; attempt++ {
		var err error
		b, op, err = c.decideOnce(ctx, actorID, bookingID, decision, notes)
		if err == nil {
			break
		}
		if !errors.Is(err, bookingRepo.ErrVersionConflict) || attempt+1 >= updateRetries {
			return nil, err
		}
	}

	c.emitCalendarEvent(ctx, b, op)
	switch b.Status {
	case models.StatusConfirmed:
		c.notifyParticipants(ctx, b, models.EventBookingConfirmed)
	case models.StatusRejected:
		c.notify(ctx, b, b.OrganizerID, models.EventBookingRejected)
	case models.StatusPendingApproval:
		c.notify(ctx, b, b.OrganizerID, models.EventBookingReverted)
	}
	return b, nil
}

// decideOnce loads, applies, and persists one decision attempt. When the
// chain completes, the entity locks are held from the re-check all the way
// through the version-guarded write: the booking stays non-binding in the
// store until the write lands, so a racing submission must either commit
// before the re-check (and be detected) or wait behind the lock.
func (c *DefaultSchedulingCoordinator) decideOnce(ctx context.Context, actorID, bookingID string, decision models.StepDecision, notes string) (*models.Booking, calendarOp, error) {
	b, err := c.Store.Load(ctx, bookingID)
	if err != nil {
		return nil, calNone, err
	}
	now := c.Now()

	// A cancellation that landed first must fail the in-flight decision
	// rather than letting it silently succeed.
	if b.Status.IsTerminal() || b.Status != models.StatusPendingApproval {
		return nil, calNone, &InvalidStateTransitionError{BookingID: b.ID, From: b.Status, Operation: "decide approval"}
	}

	outcome, err := c.Engine.Decide(b.ApprovalChain, b.ID, actorID, decision, notes, now)
	if err != nil {
		return nil, calNone, err
	}
	b.AuditLog = append(b.AuditLog,
		models.NewAuditEntry(now, actorID, "decision_"+string(decision), notes))
	b.UpdatedAt = now

	op := calNone
	switch outcome {
	case ChainRejected:
		b.Status = models.StatusRejected
	case ChainApproved:
		b.Status = models.StatusApproved
		release := c.locks.acquire(b.EntityKeys())
		defer release()
		op = c.recheckAndConfirm(ctx, actorID, b, now)
	}

	if err := c.Store.Update(ctx, b); err != nil {
		return nil, calNone, fmt.Errorf("persisting decision on booking %s: %w", bookingID, err)
	}
	return b, op, nil
}

// recheckAndConfirm closes the detect-then-act window for approvals that
// took longer than a racing submission: it re-runs detection excluding the
// booking itself and only then confirms. Callers hold the entity locks across
// this call and the write that follows it.
func (c *DefaultSchedulingCoordinator) recheckAndConfirm(ctx context.Context, actorID string, b *models.Booking, now time.Time) calendarOp {
	conflicts, err := c.Detector.Detect(ctx, b, b.ID)
	if err != nil {
		// Re-detection failure defaults to the safe state instead of
		// surfacing an error.
		c.logger.Warn("confirmation re-check failed, reverting to pending",
			zap.String("bookingId", b.ID), zap.Error(err))
		b.Status = models.StatusPendingApproval
		b.AuditLog = append(b.AuditLog,
			models.NewAuditEntry(now, actorID, "recheck_failed", err.Error()))
		return calNone
	}

	b.Conflicts = conflicts
	if len(conflicts) > 0 {
		if c.Policy == RecheckAutoReject {
			b.Status = models.StatusRejected
			b.AuditLog = append(b.AuditLog,
				models.NewAuditEntry(now, actorID, "rejected_on_recheck",
					fmt.Sprintf("%d new conflicts", len(conflicts))))
		} else {
			b.Status = models.StatusPendingApproval
			b.AuditLog = append(b.AuditLog,
				models.NewAuditEntry(now, actorID, "reverted_on_recheck",
					fmt.Sprintf("%d new conflicts", len(conflicts))))
		}
		return calNone
	}

	return c.confirm(actorID, b, now)
}

// confirm moves an Approved booking to Confirmed and assigns its calendar
// event id. The returned op tells the caller which event to enqueue once the
// booking is written.
func (c *DefaultSchedulingCoordinator) confirm(actorID string, b *models.Booking, now time.Time) calendarOp {
	b.Status = models.StatusConfirmed
	b.AuditLog = append(b.AuditLog, models.NewAuditEntry(now, actorID, "confirmed", ""))

	if b.CalendarEventID != "" {
		return calUpdate
	}
	b.CalendarEventID = uuid.New().String()
	return calCreate
}

// emitCalendarEvent enqueues the calendar side effect a successful write
// calls for. Failures are logged, attached as warnings, and never roll the
// booking back.
func (c *DefaultSchedulingCoordinator) emitCalendarEvent(ctx context.Context, b *models.Booking, op calendarOp) {
	var err error
	switch op {
	case calCreate:
		err = c.Calendar.CreateEvent(ctx, b.CalendarEventID, b)
	case calUpdate:
		err = c.Calendar.UpdateEvent(ctx, b.CalendarEventID, b)
	default:
		return
	}
	if err != nil {
		svcErr := &ExternalServiceError{Collaborator: "calendar", BookingID: b.ID, Err: err}
		c.logger.Warn("calendar event dispatch failed",
			zap.String("bookingId", b.ID), zap.Error(svcErr))
		b.Warnings = append(b.Warnings, svcErr.Error())
	}
}

// Cancel is immediate and unconditional from any non-terminal state. The
// booking releases its hold on participants and resources: subsequent
// conflict queries filter on binding statuses and will not see it.
func (c *DefaultSchedulingCoordinator) Cancel(ctx context.Context, actorID, bookingID, reason string) (*models.Booking, error) {
	var b *models.Booking
	for attempt := 0; ; attempt++ {
		loaded, err := c.Store.Load(ctx, bookingID)
		if err != nil {
			return nil, err
		}
		b = loaded

		if b.Status.IsTerminal() {
			return nil, &InvalidStateTransitionError{BookingID: b.ID, From: b.Status, Operation: "cancel"}
		}

		now := c.Now()
		b.Status = models.StatusCancelled
		b.CancelledAt = &now
		b.CancelledBy = actorID
		b.CancelReason = reason
		b.UpdatedAt = now
		b.AuditLog = append(b.AuditLog, models.NewAuditEntry(now, actorID, "cancelled", reason))

		err = c.Store.Update(ctx, b)
		if err == nil {
			break
		}
		if !errors.Is(err, bookingRepo.ErrVersionConflict) || attempt+1 >= updateRetries {
			return nil, fmt.Errorf("persisting cancellation of booking %s: %w", bookingID, err)
		}
	}

	// The terminal-state guard above makes a second cancel fail before this
	// point, so calendar deletion cannot double-fire.
	if b.CalendarEventID != "" {
		if err := c.Calendar.DeleteEvent(ctx, b.CalendarEventID); err != nil {
			svcErr := &ExternalServiceError{Collaborator: "calendar", BookingID: b.ID, Err: err}
			c.logger.Warn("calendar event deletion failed",
				zap.String("bookingId", b.ID), zap.Error(svcErr))
			b.Warnings = append(b.Warnings, svcErr.Error())
		}
	}
	c.notifyParticipants(ctx, b, models.EventBookingCancelled)
	return b, nil
}

// Reschedule moves a booking to a new window: structurally cancel plus
// resubmit, but the id and the approval history survive as an audit trail.
// Full validation and conflict detection run against the new window, and
// approval starts over when the booking still requires it.
func (c *DefaultSchedulingCoordinator) Reschedule(ctx context.Context, actorID, bookingID string, newStart, newEnd time.Time, force bool) (*models.Booking, []models.Conflict, error) {
	var (
		b            *models.Booking
		conflicts    []models.Conflict
		op           calendarOp
		staleEventID string
	)
	for attempt := 0; ; attempt++ {
		var err error
		b, conflicts, op, staleEventID, err = c.rescheduleOnce(ctx, actorID, bookingID, newStart, newEnd, force)
		if err == nil {
			break
		}
		if !errors.Is(err, bookingRepo.ErrVersionConflict) || attempt+1 >= updateRetries {
			return nil, conflicts, err
		}
	}

	if staleEventID != "" {
		// The booking went back to pending; its old hold on the external
		// calendar is released now that the cleared id is persisted.
		if err := c.Calendar.DeleteEvent(ctx, staleEventID); err != nil {
			c.logger.Warn("calendar event deletion failed on reschedule",
				zap.String("bookingId", b.ID), zap.Error(err))
		}
	}
	c.emitCalendarEvent(ctx, b, op)
	c.notifyParticipants(ctx, b, models.EventBookingMoved)
	if b.Status == models.StatusPendingApproval {
		for _, approver := range c.Engine.EligibleApprovers(b.ApprovalChain) {
			c.notify(ctx, b, approver, models.EventApprovalRequired)
		}
	}

	return b, conflicts, nil
}

// rescheduleOnce performs one reschedule attempt with the entity locks held
// from detection through the version-guarded write.
func (c *DefaultSchedulingCoordinator) rescheduleOnce(ctx context.Context, actorID, bookingID string, newStart, newEnd time.Time, force bool) (*models.Booking, []models.Conflict, calendarOp, string, error) {
	b, err := c.Store.Load(ctx, bookingID)
	if err != nil {
		return nil, nil, calNone, "", err
	}
	if b.Status.IsTerminal() {
		return nil, nil, calNone, "", &InvalidStateTransitionError{BookingID: b.ID, From: b.Status, Operation: "reschedule"}
	}

	now := c.Now()
	probe := *b
	probe.Start = newStart
	probe.End = newEnd
	if violations := probe.Validate(now); len(violations) > 0 {
		return nil, nil, calNone, "", &ValidationError{Violations: violations}
	}

	release := c.locks.acquire(b.EntityKeys())
	defer release()

	probe.Conflicts = nil
	conflicts, err := c.Detector.Detect(ctx, &probe, b.ID)
	if err != nil {
		return nil, nil, calNone, "", fmt.Errorf("conflict detection: %w", err)
	}
	if len(conflicts) > 0 && !force {
		return nil, conflicts, calNone, "", &ConflictDetectedError{Conflicts: conflicts}
	}

	wasConfirmed := b.Status == models.StatusConfirmed
	b.Start = newStart
	b.End = newEnd
	b.DurationMinutes = int(newEnd.Sub(newStart) / time.Minute)
	b.Conflicts = conflicts
	b.UpdatedAt = now
	b.AuditLog = append(b.AuditLog, models.NewAuditEntry(now, actorID, "rescheduled",
		fmt.Sprintf("window moved to %s - %s", newStart.Format(time.RFC3339), newEnd.Format(time.RFC3339))))

	// The new window goes back through approval. The chain object is kept as
	// history; its steps reset to Pending rather than a fresh chain being
	// created.
	rules, err := c.Rules.ResolveApprovers(ctx, b)
	if err != nil {
		return nil, nil, calNone, "", fmt.Errorf("approver rule lookup: %w", err)
	}
	autoPath := len(rules) == 0 || (b.AutoApprove && len(conflicts) == 0)
	op := calNone
	staleEventID := ""
	if autoPath {
		b.Status = models.StatusApproved
		op = c.confirm(actorID, b, now)
	} else {
		if b.ApprovalChain == nil {
			b.ApprovalChain = c.Engine.CreateChain(rules, c.Routing, now)
		} else {
			for i := range b.ApprovalChain.Steps {
				b.ApprovalChain.Steps[i].Decision = models.DecisionPending
				b.ApprovalChain.Steps[i].DecidedAt = nil
				b.ApprovalChain.Steps[i].Notes = ""
			}
			b.AuditLog = append(b.AuditLog,
				models.NewAuditEntry(now, actorID, "approval_reset", "reschedule requires fresh approval"))
		}
		b.Status = models.StatusPendingApproval

		if wasConfirmed && b.CalendarEventID != "" {
			staleEventID = b.CalendarEventID
			b.CalendarEventID = ""
		}
	}

	if err := c.Store.Update(ctx, b); err != nil {
		return nil, nil, calNone, "", fmt.Errorf("persisting reschedule of booking %s: %w", bookingID, err)
	}
	return b, conflicts, op, staleEventID, nil
}

// Get loads one booking.
func (c *DefaultSchedulingCoordinator) Get(ctx context.Context, bookingID string) (*models.Booking, error) {
	return c.Store.Load(ctx, bookingID)
}

// CompleteElapsed sweeps Confirmed bookings whose start has passed into
// Completed. Driven periodically by the worker.
func (c *DefaultSchedulingCoordinator) CompleteElapsed(ctx context.Context, now time.Time) (int, error) {
	elapsed, err := c.Store.ListConfirmedStartedBefore(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("completion sweep: %w", err)
	}
	completed := 0
	for i := range elapsed {
		b := elapsed[i]
		b.Status = models.StatusCompleted
		b.UpdatedAt = now
		b.AuditLog = append(b.AuditLog, models.NewAuditEntry(now, "system", "completed", ""))
		if err := c.Store.Update(ctx, &b); err != nil {
			// A lost race here means someone cancelled in between; skip.
			c.logger.Warn("completion sweep skipped booking",
				zap.String("bookingId", b.ID), zap.Error(err))
			continue
		}
		completed++
	}
	return completed, nil
}

// notifyParticipants fans one event out to the organizer and every
// participant.
func (c *DefaultSchedulingCoordinator) notifyParticipants(ctx context.Context, b *models.Booking, event models.NotificationEvent) {
	c.notify(ctx, b, b.OrganizerID, event)
	for _, p := range b.Participants {
		if p.ID == b.OrganizerID {
			continue
		}
		c.notify(ctx, b, p.ID, event)
	}
}

// notify dispatches a single notification; failures are logged and recorded
// as warnings, never returned.
func (c *DefaultSchedulingCoordinator) notify(ctx context.Context, b *models.Booking, recipientID string, event models.NotificationEvent) {
	payload := models.NotificationPayload{
		RecipientID: recipientID,
		Event:       event,
		BookingID:   b.ID,
		Title:       b.Title,
		Data: map[string]string{
			"start": b.Start.Format(time.RFC3339),
			"end":   b.End.Format(time.RFC3339),
		},
	}
	if err := c.Notifier.Notify(ctx, payload); err != nil {
		svcErr := &ExternalServiceError{Collaborator: "notification", BookingID: b.ID, Err: err}
		c.logger.Warn("notification dispatch failed",
			zap.String("bookingId", b.ID),
			zap.String("recipientId", recipientID),
			zap.Error(svcErr))
		b.Warnings = append(b.Warnings, svcErr.Error())
	}
}
