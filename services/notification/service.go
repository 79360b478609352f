package notification

import (
	"context"
	"fmt"

	"meetsync/models"
	"meetsync/services/tasks"

	"github.com/hibiken/asynq"
)

// QueueNotifier implements NotificationPort by handing deliveries to the
// task queue. Delivery and retry happen in the worker; an error here only
// means the enqueue itself failed.
type QueueNotifier struct {
	Client *asynq.Client
}

func NewQueueNotifier(client *asynq.Client) *QueueNotifier {
	return &QueueNotifier{Client: client}
}

func (n *QueueNotifier) Notify(ctx context.Context, payload models.NotificationPayload) error {
	task, err := tasks.NewNotifyTask(payload)
	if err != nil {
		return fmt.Errorf("building notify task: %w", err)
	}
	if _, err := n.Client.EnqueueContext(ctx, task, asynq.MaxRetry(5)); err != nil {
		return fmt.Errorf("enqueueing notify task: %w", err)
	}
	return nil
}
