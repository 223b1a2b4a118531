package prices

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes the price board.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// List returns the current board.
func (h *Handler) List(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"prices": h.service.List(c.UserContext())})
}

// Upsert creates or replaces a quote.
func (h *Handler) Upsert(c *fiber.Ctx) error {
	var q Quote
	if err := c.BodyParser(&q); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	out, err := h.service.Upsert(c.UserContext(), q)
	if err != nil {
		if errors.Is(err, ErrInvalidQuote) {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(out)
}
