package market

import (
	"context"
	"errors"
)

var (
	// ErrListingNotFound occurs when an operation references an unknown listing.
	ErrListingNotFound = errors.New("listing not found")
	// ErrListingExists occurs when a listing identifier is inserted twice.
	ErrListingExists = errors.New("listing exists")
)

// Repository persists listings and the mandi activity log. UpdateListing
// applies the mutation atomically with respect to every other operation on
// the same listing, which is what serializes rival and user bids.
type Repository interface {
	CreateListing(ctx context.Context, listing Listing) error
	GetListing(ctx context.Context, id string) (Listing, error)
	ListListings(ctx context.Context) ([]Listing, error)
	UpdateListing(ctx context.Context, id string, mutate func(*Listing) error) (Listing, error)
	DeleteListing(ctx context.Context, id string) error
	AppendHistory(ctx context.Context, entry HistoryEntry) error
	ListHistory(ctx context.Context) ([]HistoryEntry, error)
}
