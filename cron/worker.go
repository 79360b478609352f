package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"meetsync/config"
	"meetsync/models"
	"meetsync/services/scheduling"
	"meetsync/services/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

// InitWorker runs the async side-effect worker in the background: it drains
// the notification and calendar queues and periodically sweeps elapsed
// Confirmed bookings into Completed.
func InitWorker(coordinator scheduling.SchedulingService) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeNotifySend, handleNotifyTask)
	mux.HandleFunc(tasks.TypeCalendarCreate, handleCalendarTask("create"))
	mux.HandleFunc(tasks.TypeCalendarUpdate, handleCalendarTask("update"))
	mux.HandleFunc(tasks.TypeCalendarDelete, handleCalendarTask("delete"))

	go monitorRedisConnection()
	go runCompletionSweeper(coordinator)

	go func() {
		log.Println("[Worker] 🚀 Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[Worker] Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[Worker] Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

// handleNotifyTask delivers one notification. Real transports (email, SMS,
// push) live outside the service boundary; the handler records delivery and
// lets asynq retry transient failures.
func handleNotifyTask(ctx context.Context, task *asynq.Task) error {
	var p models.NotificationPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		log.Printf("[NotifyHandler] Invalid payload: %v", err)
		return err
	}
	log.Printf("[NotifyHandler] %s -> %s (booking %s: %s)", p.Event, p.RecipientID, p.BookingID, p.Title)
	return nil
}

// handleCalendarTask mirrors a booking event to the external calendar
// provider. The provider call is the collaborator's business; here the
// operation is recorded and retried by the queue if it fails.
func handleCalendarTask(op string) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p tasks.CalendarPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[CalendarHandler] Invalid payload: %v", err)
			return err
		}
		if p.Booking != nil {
			log.Printf("[CalendarHandler] %s event %s for booking %s", op, p.ExternalEventID, p.Booking.ID)
		} else {
			log.Printf("[CalendarHandler] %s event %s", op, p.ExternalEventID)
		}
		return nil
	}
}

// runCompletionSweeper moves Confirmed bookings whose start has passed into
// Completed on a fixed interval.
func runCompletionSweeper(coordinator scheduling.SchedulingService) {
	interval := time.Duration(config.AppConfig.CompletionSweepSeconds) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		n, err := coordinator.CompleteElapsed(ctx, time.Now())
		cancel()
		if err != nil {
			log.Printf("[CompletionSweeper] sweep failed: %v", err)
			continue
		}
		if n > 0 {
			log.Printf("[CompletionSweeper] completed %d elapsed bookings", n)
		}
	}
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[Worker] Redis connection lost: %v", err)
		}
		time.Sleep(10 * time.Second)
	}
}
