package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gram-seva/gram_seva/internal/market"
)

// RegisterMarketRoutes wires the mandi marketplace endpoints.
func RegisterMarketRoutes(r fiber.Router, h *market.Handler) {
	group := r.Group("/mandi")
	group.Get("/listings", h.List)
	group.Post("/listings", h.Create)
	group.Get("/listings/:listingId", h.Get)
	group.Delete("/listings/:listingId", h.Remove)
	group.Post("/listings/:listingId/bids", h.Bid)
	group.Post("/listings/:listingId/purchase", h.Purchase)
	group.Post("/listings/:listingId/watch", h.WatchStart)
	group.Delete("/watches/:watchId", h.WatchStop)
	group.Get("/history", h.History)
}
