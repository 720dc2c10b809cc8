package booking

import (
	"studiospace/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts booking endpoints; rg must already be behind JWTAuth.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	bookings := rg.Group("/bookings")
	{
		bookings.POST("", h.CreateBooking)
		bookings.GET("", h.ListBookingsForDay)
		bookings.GET("/:id", h.GetBooking)
		bookings.DELETE("/:id", h.CancelBooking)
	}

	rg.GET("/users/me/bookings/upcoming", h.ListMyUpcomingBookings)

	admin := rg.Group("/admin")
	admin.Use(middleware.AdminOnly())
	{
		admin.GET("/users/:id/bookings/upcoming", h.ListUserUpcomingBookings)
	}
}
