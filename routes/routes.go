package routes

import (
	"time"

	"meetsync/handlers"
	"meetsync/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterBookingRoutes sets up the endpoints for the scheduling engine.
func RegisterBookingRoutes(r *gin.Engine, bh *handlers.BookingHandler) {
	bookings := r.Group("/api/bookings")
	{
		bookings.Use(middleware.ActorAuthMiddleware())
		bookings.POST("", bh.SubmitBooking)
		bookings.GET("/:id", bh.GetBooking)
		bookings.POST("/:id/decision", bh.DecideApproval)
		bookings.POST("/:id/cancel", bh.CancelBooking)
		bookings.POST("/:id/reschedule", bh.RescheduleBooking)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", handlers.HealthHandler)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, bh *handlers.BookingHandler) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterBookingRoutes(r, bh)
}
