package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gram-seva/gram_seva/internal/ledger"
	"github.com/gram-seva/gram_seva/internal/notification"
	"github.com/gram-seva/gram_seva/internal/wallet"
)

var (
	// ErrInsufficientBalance occurs when a wallet-paid booking exceeds the balance.
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
	// ErrInvalidStatus occurs when a status transition names an unknown status.
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Service owns service bookings and their wallet settlement. Wallet-paid
// bookings are debited up front and refunded in full on cancellation; cash
// bookings never touch the ledger.
type Service struct {
	repo     Repository
	ledger   ledger.Ledger
	notifier notification.Notifier
}

// NewService constructs a booking service.
func NewService(repo Repository, led ledger.Ledger, notifier notification.Notifier) *Service {
	return &Service{repo: repo, ledger: led, notifier: notifier}
}

// CreateInput captures a new booking request.
type CreateInput struct {
	UserID        string
	ProviderID    string
	ProviderName  string
	Category      string
	Amount        int64
	PaymentMethod string
	Pickup        string
	Drop          string
}

// Create records a Pending booking. Wallet payment is settled immediately
// after a sufficient-funds check; the ledger itself would happily go
// negative, so the check lives here with the caller.
func (s *Service) Create(ctx context.Context, input CreateInput) (Booking, error) {
	if input.Amount <= 0 {
		return Booking{}, fmt.Errorf("amount must be positive")
	}
	if input.PaymentMethod != PayWallet && input.PaymentMethod != PayCash {
		return Booking{}, fmt.Errorf("unknown payment method %q", input.PaymentMethod)
	}

	account := wallet.AccountCode(input.UserID)
	if input.PaymentMethod == PayWallet {
		balance, err := s.ledger.Balance(ctx, account)
		if err != nil {
			return Booking{}, err
		}
		if balance < input.Amount {
			return Booking{}, ErrInsufficientBalance
		}
	}

	b := Booking{
		ID:            uuid.NewString(),
		UserID:        input.UserID,
		ProviderID:    input.ProviderID,
		ProviderName:  input.ProviderName,
		Category:      input.Category,
		Amount:        input.Amount,
		PaymentMethod: input.PaymentMethod,
		Status:        StatusPending,
		Pickup:        input.Pickup,
		Drop:          input.Drop,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return Booking{}, err
	}

	if input.PaymentMethod == PayWallet {
		if _, err := s.ledger.Record(ctx, account, ledger.KindDebit, input.Amount,
			fmt.Sprintf("Booking: %s", input.ProviderName)); err != nil {
			return Booking{}, err
		}
	}

	return b, nil
}

// Get fetches a booking.
func (s *Service) Get(ctx context.Context, id string) (Booking, error) {
	return s.repo.Get(ctx, id)
}

// ListByUser returns the user's bookings newest-first.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]Booking, error) {
	return s.repo.ListByUser(ctx, userID)
}

// UpdateStatus moves a booking along its provider-driven lifecycle.
func (s *Service) UpdateStatus(ctx context.Context, id, status string) (Booking, error) {
	switch status {
	case StatusPending, StatusAccepted, StatusInProgress, StatusCompleted, StatusCancelled:
	default:
		return Booking{}, ErrInvalidStatus
	}
	return s.repo.Update(ctx, id, func(b *Booking) error {
		b.Status = status
		return nil
	})
}

// Rate records the user's rating for a booking.
func (s *Service) Rate(ctx context.Context, id string, rating int) (Booking, error) {
	if rating < 1 || rating > 5 {
		return Booking{}, fmt.Errorf("rating must be between 1 and 5")
	}
	return s.repo.Update(ctx, id, func(b *Booking) error {
		b.Rating = rating
		return nil
	})
}

// Cancel cancels a booking. Already-Cancelled and Completed bookings are a
// no-op, which makes the refund idempotent: a wallet-paid booking is
// refunded in full exactly once, and a cash booking produces no ledger
// effect at all.
func (s *Service) Cancel(ctx context.Context, id string) (Booking, error) {
	refund := false
	b, err := s.repo.Update(ctx, id, func(cur *Booking) error {
		if cur.Status == StatusCancelled || cur.Status == StatusCompleted {
			return nil
		}
		refund = cur.PaymentMethod == PayWallet
		cur.Status = StatusCancelled
		return nil
	})
	if err != nil {
		return Booking{}, err
	}
	if !refund {
		return b, nil
	}

	if _, err := s.ledger.Record(ctx, wallet.AccountCode(b.UserID), ledger.KindCredit, b.Amount,
		fmt.Sprintf("Refund: Cancelled %s booking", b.Category)); err != nil {
		return Booking{}, err
	}
	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindBookingRefund,
			Destination: b.UserID,
			Body:        fmt.Sprintf("Refunded %d for cancelled %s booking", b.Amount, b.Category),
		})
	}
	return b, nil
}
