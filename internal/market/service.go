package market

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gram-seva/gram_seva/internal/ledger"
	"github.com/gram-seva/gram_seva/internal/notification"
)

// PlatformFee is the flat participation fee debited for a user purchase or a
// user bid. It is deliberately independent of the listing price: the history
// entry records the settlement price, the ledger records the fee.
const PlatformFee int64 = 5

var (
	// ErrBidTooLow occurs when a bid does not exceed the listing's current price.
	ErrBidTooLow = errors.New("bid must exceed current price")
	// ErrNotAuction occurs when a bid targets a fixed-price listing.
	ErrNotAuction = errors.New("listing is not an auction")
	// ErrNotFixed occurs when a direct purchase targets an auction listing.
	ErrNotFixed = errors.New("listing is not fixed-price")
	// ErrInsufficientBalance occurs when the buyer cannot cover the platform fee.
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
)

// Service owns the mandi listings, the bidding protocol and the activity log.
// Every state transition that moves money is posted through the ledger; the
// ledger itself knows nothing about listings.
type Service struct {
	repo     Repository
	ledger   ledger.Ledger
	notifier notification.Notifier
}

// NewService constructs a marketplace service.
func NewService(repo Repository, led ledger.Ledger, notifier notification.Notifier) *Service {
	return &Service{repo: repo, ledger: led, notifier: notifier}
}

// CreateListingInput captures the seller's submission.
type CreateListingInput struct {
	SellerID      string
	SellerName    string
	Crop          string
	Category      string
	Price         int64
	Quantity      string
	Location      string
	Image         string
	Type          string
	DurationHours int
}

// CreateListing publishes a new listing. Listing a good is free: no ledger
// posting happens here. Auction listings start with an empty bid ledger and
// an end time derived from the requested duration.
func (s *Service) CreateListing(ctx context.Context, input CreateListingInput) (Listing, error) {
	if input.Crop == "" {
		return Listing{}, fmt.Errorf("crop is required")
	}
	if input.Price <= 0 {
		return Listing{}, fmt.Errorf("price must be positive")
	}

	now := time.Now().UTC()
	listing := Listing{
		ID:         uuid.NewString(),
		SellerID:   input.SellerID,
		SellerName: input.SellerName,
		Crop:       input.Crop,
		Category:   input.Category,
		Price:      input.Price,
		Quantity:   input.Quantity,
		Image:      input.Image,
		Location:   input.Location,
		Status:     StatusActive,
		Type:       input.Type,
		CreatedAt:  now,
	}

	if input.Type == TypeAuction {
		duration := input.DurationHours
		if duration <= 0 {
			duration = 24
		}
		listing.StartingPrice = input.Price
		listing.Auction = &AuctionState{
			EndTime: now.Add(time.Duration(duration) * time.Hour),
			Bids:    []Bid{},
		}
	}

	if err := s.repo.CreateListing(ctx, listing); err != nil {
		return Listing{}, err
	}

	if _, err := s.RecordHistoryEntry(ctx, HistorySell, input.Crop, input.Price, input.Quantity, "Listed"); err != nil {
		return Listing{}, err
	}

	return listing, nil
}

// PlaceBidInput captures one offer against an auction listing. Account is
// the bidder's wallet account and is only consulted for user bids; simulated
// rival bids never touch the ledger.
type PlaceBidInput struct {
	ListingID  string
	Amount     int64
	BidderName string
	IsUser     bool
	Account    string
}

// PlaceBid enforces the monotonic price ladder: the offer must strictly
// exceed the current price or the whole operation is rejected with no state
// change. On success the listing price, bid count and bid history advance
// together, and a user bid additionally pays the flat auction fee.
func (s *Service) PlaceBid(ctx context.Context, input PlaceBidInput) (Listing, error) {
	if input.IsUser && input.Account != "" {
		balance, err := s.ledger.Balance(ctx, input.Account)
		if err != nil {
			return Listing{}, err
		}
		if balance < PlatformFee {
			return Listing{}, ErrInsufficientBalance
		}
	}

	var wasUserLeading bool
	updated, err := s.repo.UpdateListing(ctx, input.ListingID, func(l *Listing) error {
		if !l.IsAuction() {
			return ErrNotAuction
		}
		if input.Amount <= l.Price {
			return ErrBidTooLow
		}
		wasUserLeading = l.UserLeads()

		l.Price = input.Amount
		l.Auction.BidsCount++
		l.Auction.Bids = append([]Bid{{
			ID:         uuid.NewString(),
			BidderName: input.BidderName,
			Amount:     input.Amount,
			PlacedAt:   time.Now().UTC(),
			IsUser:     input.IsUser,
		}}, l.Auction.Bids...)
		return nil
	})
	if err != nil {
		return Listing{}, err
	}

	if input.IsUser && input.Account != "" {
		if _, err := s.ledger.Record(ctx, input.Account, ledger.KindDebit, PlatformFee,
			fmt.Sprintf("Auction Fee: %s", updated.Crop)); err != nil {
			return Listing{}, err
		}
	}

	if !input.IsUser && wasUserLeading && s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind: notification.KindOutbid,
			Body: fmt.Sprintf("%s outbid you on %s at %d", input.BidderName, updated.Crop, input.Amount),
		})
	}

	return updated, nil
}

// PurchaseInput identifies a fixed-price listing and the buyer's wallet account.
type PurchaseInput struct {
	ListingID string
	Account   string
}

// PurchaseFixed charges the flat platform fee and records the purchase in the
// activity log at the listing's price. The listing stays active: repeated
// purchases of the same fixed listing are allowed.
func (s *Service) PurchaseFixed(ctx context.Context, input PurchaseInput) (HistoryEntry, error) {
	listing, err := s.repo.GetListing(ctx, input.ListingID)
	if err != nil {
		return HistoryEntry{}, err
	}
	if listing.Type != TypeFixed {
		return HistoryEntry{}, ErrNotFixed
	}

	if input.Account != "" {
		balance, err := s.ledger.Balance(ctx, input.Account)
		if err != nil {
			return HistoryEntry{}, err
		}
		if balance < PlatformFee {
			return HistoryEntry{}, ErrInsufficientBalance
		}
		if _, err := s.ledger.Record(ctx, input.Account, ledger.KindDebit, PlatformFee,
			fmt.Sprintf("Platform Fee: %s", listing.Crop)); err != nil {
			return HistoryEntry{}, err
		}
	}

	return s.RecordHistoryEntry(ctx, HistoryBuy, listing.Crop, listing.Price, listing.Quantity, "Completed")
}

// RemoveListing deletes a listing. Maintenance operation: no history entry
// and no ledger effect.
func (s *Service) RemoveListing(ctx context.Context, id string) error {
	return s.repo.DeleteListing(ctx, id)
}

// GetListing fetches a single listing.
func (s *Service) GetListing(ctx context.Context, id string) (Listing, error) {
	return s.repo.GetListing(ctx, id)
}

// ListListings returns all listings, newest-first.
func (s *Service) ListListings(ctx context.Context) ([]Listing, error) {
	return s.repo.ListListings(ctx)
}

// History returns the activity log, newest-first.
func (s *Service) History(ctx context.Context) ([]HistoryEntry, error) {
	return s.repo.ListHistory(ctx)
}

// RecordHistoryEntry appends one activity row. Exposed so collaborators can
// log activity that has no listing mutation of its own.
func (s *Service) RecordHistoryEntry(ctx context.Context, kind, crop string, price int64, quantity, status string) (HistoryEntry, error) {
	entry := HistoryEntry{
		ID:        uuid.NewString(),
		Kind:      kind,
		Crop:      crop,
		Price:     price,
		Quantity:  quantity,
		Status:    status,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.AppendHistory(ctx, entry); err != nil {
		return HistoryEntry{}, err
	}
	return entry, nil
}

// ExpireDue flips auction listings whose end time has passed to expired.
// It moves no money and picks no winner; settlement at expiry is not a
// marketplace concern.
func (s *Service) ExpireDue(ctx context.Context, now time.Time) (int, error) {
	listings, err := s.repo.ListListings(ctx)
	if err != nil {
		return 0, err
	}
	expired := 0
	for _, l := range listings {
		if !l.IsAuction() || l.Status != StatusActive || l.Auction.EndTime.After(now) {
			continue
		}
		if _, err := s.repo.UpdateListing(ctx, l.ID, func(cur *Listing) error {
			if cur.Status == StatusActive {
				cur.Status = StatusExpired
			}
			return nil
		}); err != nil {
			return expired, err
		}
		expired++
	}
	return expired, nil
}
