package routes

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/gram-seva/gram_seva/internal/booking"
	"github.com/gram-seva/gram_seva/internal/market"
	"github.com/gram-seva/gram_seva/internal/snapshot"
	"github.com/gram-seva/gram_seva/internal/wallet"
)

// RegisterStateRoutes wires the client state snapshot. The snapshot is one
// JSON document at a fixed key, so the last saver wins.
func RegisterStateRoutes(r fiber.Router, store *snapshot.Store, wallets *wallet.Service, markets *market.Service, bookings *booking.Service) {
	r.Post("/state/snapshot", func(c *fiber.Ctx) error {
		uid, _ := c.Locals("user_id").(string)
		ctx := c.UserContext()

		balance, err := wallets.Balance(ctx, uid)
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		transactions, err := wallets.History(ctx, uid)
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		listings, err := markets.ListListings(ctx)
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		history, err := markets.History(ctx)
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		userBookings, err := bookings.ListByUser(ctx, uid)
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}

		state := snapshot.State{
			Balance:       balance.Amount,
			Transactions:  transactions,
			Listings:      listings,
			MarketHistory: history,
			Bookings:      userBookings,
		}
		if err := store.Save(ctx, state); err != nil {
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(http.StatusNoContent)
	})

	r.Get("/state/snapshot", func(c *fiber.Ctx) error {
		state, err := store.Load(c.UserContext())
		if err != nil {
			if errors.Is(err, snapshot.ErrNoSnapshot) {
				return fiber.NewError(http.StatusNotFound, "no snapshot stored")
			}
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(state)
	})
}
