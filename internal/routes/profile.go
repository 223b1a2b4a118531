package routes

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/gram-seva/gram_seva/internal/identity"
)

// RegisterProfileRoutes wires the authenticated user's profile and KYC flow.
func RegisterProfileRoutes(r fiber.Router, svc *identity.Service, repo identity.Repository) {
	r.Get("/me", func(c *fiber.Ctx) error {
		uid, _ := c.Locals("user_id").(string)
		user, err := repo.FindByID(c.UserContext(), uid)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, "user not found")
		}
		return c.JSON(profileView(user))
	})

	r.Put("/me", func(c *fiber.Ctx) error {
		var req struct {
			Name    string `json:"name"`
			Village string `json:"village"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		uid, _ := c.Locals("user_id").(string)
		user, err := svc.UpdateProfile(c.UserContext(), uid, req.Name, req.Village)
		if err != nil {
			if errors.Is(err, identity.ErrUserNotFound) {
				return fiber.NewError(http.StatusNotFound, "user not found")
			}
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		return c.JSON(profileView(user))
	})

	r.Post("/me/kyc", func(c *fiber.Ctx) error {
		uid, _ := c.Locals("user_id").(string)
		user, err := svc.SubmitKYC(c.UserContext(), uid)
		if err != nil {
			if errors.Is(err, identity.ErrUserNotFound) {
				return fiber.NewError(http.StatusNotFound, "user not found")
			}
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		return c.JSON(profileView(user))
	})

	// Operator action, normally behind a back-office surface.
	r.Post("/users/:userId/kyc/approve", func(c *fiber.Ctx) error {
		user, err := svc.ApproveKYC(c.UserContext(), c.Params("userId"))
		if err != nil {
			if errors.Is(err, identity.ErrUserNotFound) {
				return fiber.NewError(http.StatusNotFound, "user not found")
			}
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		return c.JSON(profileView(user))
	})
}

func profileView(user identity.User) fiber.Map {
	return fiber.Map{
		"user_id":    user.ID,
		"phone":      user.Phone,
		"name":       user.Name,
		"village":    user.Village,
		"role":       user.Role,
		"kyc_status": user.KYCStatus,
		"created_at": user.CreatedAt,
		"last_login": user.LastLogin,
	}
}
