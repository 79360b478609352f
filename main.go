package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meetsync/config"
	"meetsync/cron"
	"meetsync/database"
	bookingRepo "meetsync/database/repository/booking"
	rulesRepo "meetsync/database/repository/rules"
	"meetsync/handlers"
	"meetsync/middleware"
	"meetsync/models"
	"meetsync/routes"
	"meetsync/services/calendar"
	"meetsync/services/notification"
	"meetsync/services/scheduling"
	"meetsync/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()

	// repositories.
	store := bookingRepo.NewMongoBookingStore()
	if err := store.EnsureIndexes(context.Background()); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure booking indexes: %v", err)
	}
	ruleSource := rulesRepo.NewMongoRuleSource()

	// side-effect queue.
	queueClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	defer queueClient.Close()

	calendarPort := calendar.NewQueueCalendar(queueClient)
	notifier := notification.NewQueueNotifier(queueClient)

	// scheduling coordinator.
	coordinator := scheduling.NewCoordinator(
		store,
		ruleSource,
		calendarPort,
		notifier,
		scheduling.RecheckPolicy(config.AppConfig.RecheckPolicy),
		models.RoutingMode(config.AppConfig.ApprovalRouting),
	)

	// background worker: queue drain + completion sweep.
	cron.InitWorker(coordinator)

	// HTTP surface.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	bookingHandler := handlers.NewBookingHandler(coordinator, utils.GetCacheClient(), logger)
	routes.RegisterRoutes(router, bookingHandler)

	utils.StartHealthMonitor(
		[]*redis.Client{utils.GetCacheClient()},
		database.MongoClient,
	)

	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
