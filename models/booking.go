package models

import (
	"sort"
	"time"
)

// BookingType classifies what a booking allocates time for.
type BookingType string

const (
	TypeInternalMeeting     BookingType = "InternalMeeting"
	TypeVirtualMeeting      BookingType = "VirtualMeeting"
	TypeResourceReservation BookingType = "ResourceReservation"
	TypeExternalMeeting     BookingType = "ExternalMeeting"
)

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	StatusDraft           BookingStatus = "Draft"
	StatusPendingApproval BookingStatus = "PendingApproval"
	StatusApproved        BookingStatus = "Approved"
	StatusRejected        BookingStatus = "Rejected"
	StatusConfirmed       BookingStatus = "Confirmed"
	StatusCancelled       BookingStatus = "Cancelled"
	StatusCompleted       BookingStatus = "Completed"
)

// IsTerminal reports whether no further transitions are allowed from s.
func (s BookingStatus) IsTerminal() bool {
	switch s {
	case StatusRejected, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// BindingStatuses are the statuses under which a booking holds its
// participants and resources for conflict purposes.
var BindingStatuses = []BookingStatus{StatusApproved, StatusConfirmed}

// ResponseState is a participant's reply to an invitation.
type ResponseState string

const (
	ResponseInvited  ResponseState = "Invited"
	ResponseAccepted ResponseState = "Accepted"
	ResponseDeclined ResponseState = "Declined"
)

// Participant is a person included in a booking.
type Participant struct {
	ID       string        `bson:"id" json:"id"`
	Response ResponseState `bson:"response" json:"response"`
}

// Resource is a bookable asset (room, vehicle, equipment) identified by
// type and name. The key is only a conflict-detection identity; names are
// not required to be unique across bookings.
type Resource struct {
	Type string `bson:"type" json:"type"`
	Name string `bson:"name" json:"name"`
}

// Key returns the entity key used for conflict queries and lock ordering.
func (r Resource) Key() string {
	return r.Type + "/" + r.Name
}

// MinDuration is the shortest bookable window.
const MinDuration = 30 * time.Minute

// Booking is a requested or confirmed allocation of a time window to an
// organizer, participants, and resources.
type Booking struct {
	ID              string         `bson:"id" json:"id"`
	Title           string         `bson:"title" json:"title"`
	Type            BookingType    `bson:"type" json:"type"`
	Start           time.Time      `bson:"start" json:"start"`
	End             time.Time      `bson:"end" json:"end"`
	DurationMinutes int            `bson:"durationMinutes" json:"durationMinutes"`
	OrganizerID     string         `bson:"organizerId" json:"organizerId"`
	Priority        bool           `bson:"priority,omitempty" json:"priority,omitempty"`
	AutoApprove     bool           `bson:"autoApprove" json:"autoApprove"`
	IsVirtual       bool           `bson:"isVirtual" json:"isVirtual"`
	MeetingLink     string         `bson:"meetingLink,omitempty" json:"meetingLink,omitempty"`
	Participants    []Participant  `bson:"participants" json:"participants"`
	Resources       []Resource     `bson:"resources,omitempty" json:"resources,omitempty"`
	Status          BookingStatus  `bson:"status" json:"status"`
	Conflicts       []Conflict     `bson:"conflicts,omitempty" json:"conflicts,omitempty"`
	ApprovalChain   *ApprovalChain `bson:"approvalChain,omitempty" json:"approvalChain,omitempty"`
	CalendarEventID string         `bson:"calendarEventId,omitempty" json:"calendarEventId,omitempty"`
	CancelledAt     *time.Time     `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
	CancelledBy     string         `bson:"cancelledBy,omitempty" json:"cancelledBy,omitempty"`
	CancelReason    string         `bson:"cancelReason,omitempty" json:"cancelReason,omitempty"`
	AuditLog        []AuditEntry   `bson:"auditLog,omitempty" json:"auditLog,omitempty"`
	CreatedAt       time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time      `bson:"updatedAt" json:"updatedAt"`
	Version         int            `bson:"version" json:"version"`

	// Warnings carries non-fatal side-effect failures (calendar,
	// notification) back to the caller. Never persisted.
	Warnings []string `bson:"-" json:"warnings,omitempty"`
}

// FieldViolation names a structurally invalid field on a candidate.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validate checks every structural invariant of a booking candidate and
// returns all violations, not just the first.
func (b *Booking) Validate(now time.Time) []FieldViolation {
	var violations []FieldViolation

	if b.Title == "" {
		violations = append(violations, FieldViolation{Field: "title", Message: "title is required"})
	}
	switch b.Type {
	case TypeInternalMeeting, TypeVirtualMeeting, TypeResourceReservation, TypeExternalMeeting:
	default:
		violations = append(violations, FieldViolation{Field: "type", Message: "unknown booking type"})
	}
	if b.OrganizerID == "" {
		violations = append(violations, FieldViolation{Field: "organizerId", Message: "organizer is required"})
	}
	if b.Start.IsZero() || b.End.IsZero() {
		violations = append(violations, FieldViolation{Field: "start", Message: "start and end are required"})
		return violations
	}
	if !b.Start.Before(b.End) {
		violations = append(violations, FieldViolation{Field: "end", Message: "end must be after start"})
	} else if b.End.Sub(b.Start) < MinDuration {
		violations = append(violations, FieldViolation{Field: "end", Message: "duration must be at least 30 minutes"})
	}
	if b.Start.Before(now) {
		violations = append(violations, FieldViolation{Field: "start", Message: "start must not be in the past"})
	}
	if len(b.Participants) == 0 {
		violations = append(violations, FieldViolation{Field: "participants", Message: "at least one participant is required"})
	}
	seen := make(map[string]bool, len(b.Participants))
	for _, p := range b.Participants {
		if p.ID == "" {
			violations = append(violations, FieldViolation{Field: "participants", Message: "participant id must not be empty"})
			continue
		}
		if seen[p.ID] {
			violations = append(violations, FieldViolation{Field: "participants", Message: "duplicate participant: " + p.ID})
		}
		seen[p.ID] = true
	}
	for _, r := range b.Resources {
		if r.Type == "" || r.Name == "" {
			violations = append(violations, FieldViolation{Field: "resources", Message: "resource type and name are required"})
		}
	}
	return violations
}

// EntityKeys returns every participant id and resource key the booking
// touches, sorted. Lock acquisition relies on this ordering to stay
// deadlock-free across multi-entity bookings.
func (b *Booking) EntityKeys() []string {
	keys := make([]string, 0, len(b.Participants)+len(b.Resources))
	for _, p := range b.Participants {
		keys = append(keys, "participant:"+p.ID)
	}
	for _, r := range b.Resources {
		keys = append(keys, "resource:"+r.Key())
	}
	sort.Strings(keys)
	return keys
}
