package calendar

import (
	"context"
	"fmt"

	"meetsync/models"
	"meetsync/services/tasks"

	"github.com/hibiken/asynq"
)

// QueueCalendar implements CalendarPort by enqueueing mirror operations for
// the worker. The provider call itself is asynchronous and retried by the
// queue.
type QueueCalendar struct {
	Client *asynq.Client
}

func NewQueueCalendar(client *asynq.Client) *QueueCalendar {
	return &QueueCalendar{Client: client}
}

func (c *QueueCalendar) CreateEvent(ctx context.Context, externalEventID string, b *models.Booking) error {
	task, err := tasks.NewCalendarTask(tasks.TypeCalendarCreate, tasks.CalendarPayload{
		ExternalEventID: externalEventID,
		Booking:         b,
	})
	if err != nil {
		return fmt.Errorf("building calendar create task: %w", err)
	}
	if _, err := c.Client.EnqueueContext(ctx, task, asynq.MaxRetry(5)); err != nil {
		return fmt.Errorf("enqueueing calendar create task: %w", err)
	}
	return nil
}

func (c *QueueCalendar) UpdateEvent(ctx context.Context, externalEventID string, b *models.Booking) error {
	task, err := tasks.NewCalendarTask(tasks.TypeCalendarUpdate, tasks.CalendarPayload{
		ExternalEventID: externalEventID,
		Booking:         b,
	})
	if err != nil {
		return fmt.Errorf("building calendar update task: %w", err)
	}
	if _, err := c.Client.EnqueueContext(ctx, task, asynq.MaxRetry(5)); err != nil {
		return fmt.Errorf("enqueueing calendar update task: %w", err)
	}
	return nil
}

func (c *QueueCalendar) DeleteEvent(ctx context.Context, externalEventID string) error {
	task, err := tasks.NewCalendarTask(tasks.TypeCalendarDelete, tasks.CalendarPayload{
		ExternalEventID: externalEventID,
	})
	if err != nil {
		return fmt.Errorf("building calendar delete task: %w", err)
	}
	if _, err := c.Client.EnqueueContext(ctx, task, asynq.MaxRetry(5)); err != nil {
		return fmt.Errorf("enqueueing calendar delete task: %w", err)
	}
	return nil
}
