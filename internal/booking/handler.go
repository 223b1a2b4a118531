package booking

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes booking endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a booking handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	ProviderID    string `json:"provider_id"`
	ProviderName  string `json:"provider_name"`
	Category      string `json:"category"`
	Amount        int64  `json:"amount"`
	PaymentMethod string `json:"payment_method"`
	Pickup        string `json:"pickup"`
	Drop          string `json:"drop"`
}

// Create books a service for the authenticated user.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	uid, _ := c.Locals("user_id").(string)

	b, err := h.service.Create(c.UserContext(), CreateInput{
		UserID:        uid,
		ProviderID:    req.ProviderID,
		ProviderName:  req.ProviderName,
		Category:      req.Category,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		Pickup:        req.Pickup,
		Drop:          req.Drop,
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientBalance) {
			return fiber.NewError(http.StatusBadRequest, "insufficient wallet balance")
		}
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(b)
}

// List returns the authenticated user's bookings.
func (h *Handler) List(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	bookings, err := h.service.ListByUser(c.UserContext(), uid)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"bookings": bookings})
}

type statusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus moves a booking along its lifecycle.
func (h *Handler) UpdateStatus(c *fiber.Ctx) error {
	var req statusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	b, err := h.service.UpdateStatus(c.UserContext(), c.Params("bookingId"), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, ErrBookingNotFound):
			return fiber.NewError(http.StatusNotFound, "booking not found")
		case errors.Is(err, ErrInvalidStatus):
			return fiber.NewError(http.StatusBadRequest, "invalid booking status")
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(b)
}

// Cancel cancels a booking, refunding wallet payments.
func (h *Handler) Cancel(c *fiber.Ctx) error {
	b, err := h.service.Cancel(c.UserContext(), c.Params("bookingId"))
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			return fiber.NewError(http.StatusNotFound, "booking not found")
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(b)
}

type rateRequest struct {
	Rating int `json:"rating"`
}

// Rate stores the user's rating for a booking.
func (h *Handler) Rate(c *fiber.Ctx) error {
	var req rateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	b, err := h.service.Rate(c.UserContext(), c.Params("bookingId"), req.Rating)
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			return fiber.NewError(http.StatusNotFound, "booking not found")
		}
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(b)
}
