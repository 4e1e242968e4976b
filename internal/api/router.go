package api

import (
	"context"
	"net/http"
	"time"

	"hotelbook/internal/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Pinger reports whether the store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// NewRouter assembles middleware and registers every route.
func NewRouter(cfg config.APIConfig, h *Handler, pinger Pinger, logger *zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), accessLog(logger))

	corsCfg := cors.DefaultConfig()
	if len(cfg.CORS.AllowOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.CORS.AllowOrigins
	}
	corsCfg.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", requestIDHeader}
	corsCfg.ExposeHeaders = []string{requestIDHeader, "Content-Disposition"}
	r.Use(cors.New(corsCfg))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := pinger.PingContext(ctx); err != nil {
			logger.Warn().Err(err).Msg("readiness check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	v1 := r.Group("/api/v1")
	v1.Use(newRateLimiter(cfg.RateLimit).middleware())
	{
		v1.GET("/rooms", h.ListRooms)
		v1.GET("/rooms/:id", h.GetRoom)
		v1.POST("/availability/check", h.CheckAvailability)
		v1.POST("/bookings", h.PlaceBooking)
		v1.GET("/bookings/:id", h.GetBooking)
	}

	admin := v1.Group("/admin")
	admin.POST("/login", h.Login)

	protected := admin.Group("")
	protected.Use(adminRequired(h.auth))
	{
		protected.POST("/logout", h.Logout)
		protected.GET("/dashboard", h.Dashboard)

		protected.GET("/rooms", h.AdminListRooms)
		protected.POST("/rooms", h.CreateRoom)
		protected.PUT("/rooms/:id", h.UpdateRoom)
		protected.DELETE("/rooms/:id", h.DeleteRoom)

		protected.GET("/bookings", h.AdminListBookings)
		protected.GET("/bookings/export", h.ExportBookings)
		protected.PATCH("/bookings/:id/status", h.UpdateBookingStatus)
		protected.DELETE("/bookings/:id", h.DeleteBooking)
	}

	return r
}
