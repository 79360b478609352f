package notification

import (
	"context"

	"meetsync/models"
)

// NotificationPort delivers booking events to recipients. Same failure
// policy as the calendar port: delivery problems are the collaborator's to
// retry and never affect booking state.
type NotificationPort interface {
	Notify(ctx context.Context, payload models.NotificationPayload) error
}
