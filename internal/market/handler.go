package market

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handler exposes marketplace endpoints.
type Handler struct {
	service   *Service
	simulator *Simulator

	mu      sync.Mutex
	watches map[string]*Watch
}

// NewHandler constructs a marketplace handler. The simulator may be nil, in
// which case the watch endpoints report the feature as unavailable.
func NewHandler(service *Service, simulator *Simulator) *Handler {
	return &Handler{service: service, simulator: simulator, watches: make(map[string]*Watch)}
}

type createListingRequest struct {
	Crop          string `json:"crop"`
	Category      string `json:"category"`
	Price         int64  `json:"price"`
	Quantity      string `json:"quantity"`
	Location      string `json:"location"`
	Image         string `json:"image"`
	Type          string `json:"type"`
	DurationHours int    `json:"duration_hours"`
	SellerName    string `json:"seller_name"`
}

// Create publishes a listing on behalf of the authenticated seller.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createListingRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	uid, _ := c.Locals("user_id").(string)

	listing, err := h.service.CreateListing(c.UserContext(), CreateListingInput{
		SellerID:      uid,
		SellerName:    req.SellerName,
		Crop:          req.Crop,
		Category:      req.Category,
		Price:         req.Price,
		Quantity:      req.Quantity,
		Location:      req.Location,
		Image:         req.Image,
		Type:          req.Type,
		DurationHours: req.DurationHours,
	})
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(listing)
}

// List returns every listing.
func (h *Handler) List(c *fiber.Ctx) error {
	listings, err := h.service.ListListings(c.UserContext())
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"listings": listings})
}

// Get returns one listing with its bid history.
func (h *Handler) Get(c *fiber.Ctx) error {
	listing, err := h.service.GetListing(c.UserContext(), c.Params("listingId"))
	if err != nil {
		if errors.Is(err, ErrListingNotFound) {
			return fiber.NewError(http.StatusNotFound, "listing not found")
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(listing)
}

type bidRequest struct {
	Amount     int64  `json:"amount"`
	BidderName string `json:"bidder_name"`
}

// Bid places a user bid on an auction listing.
func (h *Handler) Bid(c *fiber.Ctx) error {
	var req bidRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	uid, _ := c.Locals("user_id").(string)
	account, _ := c.Locals("account_code").(string)

	listing, err := h.service.PlaceBid(c.UserContext(), PlaceBidInput{
		ListingID:  c.Params("listingId"),
		Amount:     req.Amount,
		BidderName: req.BidderName,
		IsUser:     uid != "",
		Account:    account,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrListingNotFound):
			return fiber.NewError(http.StatusNotFound, "listing not found")
		case errors.Is(err, ErrBidTooLow):
			return fiber.NewError(http.StatusUnprocessableEntity, "bid must be higher than current price")
		case errors.Is(err, ErrNotAuction):
			return fiber.NewError(http.StatusBadRequest, "listing is not an auction")
		case errors.Is(err, ErrInsufficientBalance):
			return fiber.NewError(http.StatusBadRequest, "insufficient wallet balance")
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(fiber.Map{"listing": listing, "user_leading": listing.UserLeads()})
}

// Purchase records a fixed-price purchase.
func (h *Handler) Purchase(c *fiber.Ctx) error {
	account, _ := c.Locals("account_code").(string)
	entry, err := h.service.PurchaseFixed(c.UserContext(), PurchaseInput{
		ListingID: c.Params("listingId"),
		Account:   account,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrListingNotFound):
			return fiber.NewError(http.StatusNotFound, "listing not found")
		case errors.Is(err, ErrNotFixed):
			return fiber.NewError(http.StatusBadRequest, "listing is not fixed-price")
		case errors.Is(err, ErrInsufficientBalance):
			return fiber.NewError(http.StatusBadRequest, "insufficient wallet balance")
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.Status(http.StatusCreated).JSON(entry)
}

// Remove deletes a listing.
func (h *Handler) Remove(c *fiber.Ctx) error {
	if err := h.service.RemoveListing(c.UserContext(), c.Params("listingId")); err != nil {
		if errors.Is(err, ErrListingNotFound) {
			return fiber.NewError(http.StatusNotFound, "listing not found")
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.SendStatus(http.StatusNoContent)
}

// History returns the mandi activity log.
func (h *Handler) History(c *fiber.Ctx) error {
	entries, err := h.service.History(c.UserContext())
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"history": entries})
}

// WatchStart begins rival-bid simulation for the observed listing and
// returns the handle identifier the client must present to stop it.
func (h *Handler) WatchStart(c *fiber.Ctx) error {
	if h.simulator == nil {
		return fiber.NewError(http.StatusServiceUnavailable, "simulation disabled")
	}
	listingID := c.Params("listingId")
	if _, err := h.service.GetListing(c.UserContext(), listingID); err != nil {
		if errors.Is(err, ErrListingNotFound) {
			return fiber.NewError(http.StatusNotFound, "listing not found")
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	watchID := uuid.NewString()
	watch := h.simulator.Watch(listingID)

	h.mu.Lock()
	h.watches[watchID] = watch
	h.mu.Unlock()

	return c.Status(http.StatusCreated).JSON(fiber.Map{"watch_id": watchID, "listing_id": listingID})
}

// WatchStop ends an observation started by WatchStart.
func (h *Handler) WatchStop(c *fiber.Ctx) error {
	watchID := c.Params("watchId")

	h.mu.Lock()
	watch, ok := h.watches[watchID]
	delete(h.watches, watchID)
	h.mu.Unlock()

	if !ok {
		return fiber.NewError(http.StatusNotFound, "watch not found")
	}
	watch.Stop()
	return c.SendStatus(http.StatusNoContent)
}

// StopAll cancels every live watch. Called on server shutdown.
func (h *Handler) StopAll() {
	h.mu.Lock()
	watches := h.watches
	h.watches = make(map[string]*Watch)
	h.mu.Unlock()
	for _, w := range watches {
		w.Stop()
	}
}
