package tasks

import (
	"encoding/json"

	"meetsync/models"

	"github.com/hibiken/asynq"
)

const (
	TypeNotifySend     = "notify:send"
	TypeCalendarCreate = "calendar:create"
	TypeCalendarUpdate = "calendar:update"
	TypeCalendarDelete = "calendar:delete"
)

// CalendarPayload carries a calendar mirror operation to the worker.
type CalendarPayload struct {
	ExternalEventID string          `json:"externalEventId"`
	Booking         *models.Booking `json:"booking,omitempty"`
}

// NewNotifyTask wraps a notification payload for queue delivery. Retries are
// the queue's responsibility; the coordinator never waits on them.
func NewNotifyTask(payload models.NotificationPayload) (*asynq.Task, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeNotifySend, b), nil
}

// NewCalendarTask wraps a calendar mirror operation for queue delivery.
func NewCalendarTask(taskType string, payload CalendarPayload) (*asynq.Task, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(taskType, b), nil
}
