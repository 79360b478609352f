package bookingRepo

import (
	"context"
	"errors"
	"time"

	"meetsync/models"
)

// ErrNotFound is returned when no booking matches the requested id.
var ErrNotFound = errors.New("booking not found")

// ErrVersionConflict is returned by Update when the stored document no
// longer carries the expected version, meaning a concurrent writer got
// there first.
var ErrVersionConflict = errors.New("booking version conflict")

// BookingStore holds booking records and exposes the range queries the
// scheduling engine needs. All mutation goes through the coordinator; the
// detector only reads.
type BookingStore interface {
	// FindOverlapping returns bookings in one of the given statuses that
	// include the entity (participant id or resource key) and whose window
	// overlaps [start, end) under the half-open test. excludeID, when
	// non-empty, removes that booking from the result so an edit does not
	// conflict with its own prior version.
	FindOverlapping(ctx context.Context, kind models.EntityKind, key string, start, end time.Time, statuses []models.BookingStatus, excludeID string) ([]models.Booking, error)

	Insert(ctx context.Context, b *models.Booking) error

	// Update persists b guarded by its current version and increments it.
	// Returns ErrVersionConflict on a lost race.
	Update(ctx context.Context, b *models.Booking) error

	Load(ctx context.Context, id string) (*models.Booking, error)

	// ListConfirmedStartedBefore returns Confirmed bookings whose start time
	// has passed, for the completion sweep.
	ListConfirmedStartedBefore(ctx context.Context, t time.Time) ([]models.Booking, error)
}
