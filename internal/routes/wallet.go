package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gram-seva/gram_seva/internal/wallet"
)

// RegisterWalletRoutes wires wallet endpoints for the authenticated user.
func RegisterWalletRoutes(r fiber.Router, h *wallet.Handler) {
	group := r.Group("/wallet")
	group.Get("/balance", h.Balance)
	group.Get("/transactions", h.History)
	group.Post("/topup", h.TopUp)
}
