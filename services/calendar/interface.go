package calendar

import (
	"context"

	"meetsync/models"
)

// CalendarPort mirrors bookings into an external calendar provider. All
// calls are fire-and-forget from the coordinator's perspective: failures are
// logged and retried by the collaborator and never roll back booking state.
// Event ids are assigned by the caller before the booking is written, so the
// enqueue can happen strictly after the write it describes.
type CalendarPort interface {
	CreateEvent(ctx context.Context, externalEventID string, b *models.Booking) error
	UpdateEvent(ctx context.Context, externalEventID string, b *models.Booking) error
	DeleteEvent(ctx context.Context, externalEventID string) error
}
