package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gram-seva/gram_seva/internal/booking"
)

// RegisterBookingRoutes wires service booking endpoints.
func RegisterBookingRoutes(r fiber.Router, h *booking.Handler) {
	group := r.Group("/bookings")
	group.Post("", h.Create)
	group.Get("", h.List)
	group.Patch("/:bookingId/status", h.UpdateStatus)
	group.Post("/:bookingId/cancel", h.Cancel)
	group.Post("/:bookingId/rating", h.Rate)
}
