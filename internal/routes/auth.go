package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gram-seva/gram_seva/internal/auth"
)

// RegisterAuthRoutes wires the OTP login endpoints. Logout needs the token
// middleware because it bumps the caller's token version.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, otpLimiter, tokenAuth fiber.Handler) {
	group := r.Group("/auth")
	if otpLimiter != nil {
		group.Post("/otp/request", otpLimiter, h.RequestOTP)
	} else {
		group.Post("/otp/request", h.RequestOTP)
	}
	group.Post("/otp/verify", h.VerifyOTP)
	group.Post("/refresh", h.Refresh)
	group.Post("/logout", tokenAuth, h.Logout)
}
