package booking

import (
	"context"
	"errors"
)

// ErrBookingNotFound occurs when an operation references an unknown booking.
var ErrBookingNotFound = errors.New("booking not found")

// Repository persists service bookings. Update applies the mutation
// atomically with respect to other operations on the same booking, which
// is what makes cancel-then-refund observe a consistent status.
type Repository interface {
	Create(ctx context.Context, b Booking) error
	Get(ctx context.Context, id string) (Booking, error)
	ListByUser(ctx context.Context, userID string) ([]Booking, error)
	Update(ctx context.Context, id string, mutate func(*Booking) error) (Booking, error)
}
