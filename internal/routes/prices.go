package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gram-seva/gram_seva/internal/prices"
)

// RegisterPriceRoutes wires the public mandi price board.
func RegisterPriceRoutes(r fiber.Router, h *prices.Handler) {
	group := r.Group("/prices")
	group.Get("", h.List)
	group.Put("", h.Upsert)
}
