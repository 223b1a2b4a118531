package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gram-seva/gram_seva/internal/emergency"
)

// RegisterEmergencyRoutes wires SOS endpoints.
func RegisterEmergencyRoutes(r fiber.Router, h *emergency.Handler) {
	group := r.Group("/emergency")
	group.Post("", h.Trigger)
	group.Get("", h.Active)
	group.Patch("/status", h.UpdateStatus)
	group.Delete("", h.Cancel)
}
