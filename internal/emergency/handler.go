package emergency

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes SOS endpoints for the authenticated user.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type triggerRequest struct {
	Type Type    `json:"type"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// Trigger raises an SOS request.
func (h *Handler) Trigger(c *fiber.Ctx) error {
	var req triggerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	uid, _ := c.Locals("user_id").(string)

	out, err := h.service.Trigger(c.UserContext(), uid, req.Type, req.Lat, req.Lng)
	if err != nil {
		if errors.Is(err, ErrInvalidType) {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(out)
}

// Active returns the user's outstanding SOS request.
func (h *Handler) Active(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	out, err := h.service.Active(c.UserContext(), uid)
	if err != nil {
		if errors.Is(err, ErrNoActiveRequest) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(out)
}

type statusRequest struct {
	Status Status `json:"status"`
}

// UpdateStatus advances the active request through the dispatch flow.
func (h *Handler) UpdateStatus(c *fiber.Ctx) error {
	var req statusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	uid, _ := c.Locals("user_id").(string)

	out, err := h.service.UpdateStatus(c.UserContext(), uid, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoActiveRequest):
			return fiber.NewError(http.StatusNotFound, err.Error())
		case errors.Is(err, ErrInvalidStatus):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(out)
}

// Cancel withdraws the active request.
func (h *Handler) Cancel(c *fiber.Ctx) error {
	uid, _ := c.Locals("user_id").(string)
	if err := h.service.Cancel(c.UserContext(), uid); err != nil {
		if errors.Is(err, ErrNoActiveRequest) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.SendStatus(http.StatusNoContent)
}
