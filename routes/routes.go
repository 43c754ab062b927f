package routes

import (
	"net/http"
	"time"

	"appointly/handlers"
	"appointly/middleware"
	"appointly/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterAvailabilityRoutes serves bookable dates and slots publicly and
// lets providers and admins edit availability records.
func RegisterAvailabilityRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/availability")
	{
		api.GET("/dates", hb.Availability.GetDatesHandler)
		api.GET("/slots", hb.Availability.GetSlotsHandler)
		api.GET("/stream", hb.Availability.StreamHandler)

		admin := api.Group("")
		admin.Use(middleware.JWTAuthMiddleware(middleware.RoleProvider, middleware.RoleAdmin))
		admin.GET("/:scope/:scopeId", hb.Availability.GetAvailabilityHandler)
		admin.PUT("/:scope/:scopeId", hb.Availability.PutAvailabilityHandler)
	}
}

// RegisterBookingRoutes sets up the endpoints for the booking engine.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.POST("/api/bookings", middleware.JWTAuthMiddleware(middleware.RoleClient), hb.Booking.CreateBookingHandler)

	bookingGroup := r.Group("/api/booking")
	{
		bookingGroup.Use(middleware.JWTAuthMiddleware(middleware.RoleClient))
		bookingGroup.POST("/session", hb.Booking.InitiateSession)
		bookingGroup.GET("/session/:sessionID", hb.Booking.GetSession)
		bookingGroup.PUT("/session/:sessionID", hb.Booking.UpdateSession)
		bookingGroup.DELETE("/session/:sessionID", hb.Booking.CancelSession)
		bookingGroup.POST("/confirm", hb.Booking.ConfirmBooking)
	}
}

// RegisterCancellationRoutes exposes the two-call cancel protocol.
func RegisterCancellationRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/appointments")
	{
		api.Use(middleware.JWTAuthMiddleware())
		api.POST("/cancel", hb.Cancellation.CancelAppointmentHandler)
		api.GET("/:id/cancellation", hb.Cancellation.CancellationStateHandler)
	}
}

// RegisterHealthRoute reports the last dependency check.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		status := utils.GetHealthStatus()
		code := http.StatusOK
		if !status.CheckedAt.IsZero() && !status.Healthy() {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": status})
	})
}

func RegisterMetricsRoute(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterMetricsRoute(r)
	RegisterAvailabilityRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterCancellationRoutes(r, hb)
}
