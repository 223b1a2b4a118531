package market

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu       sync.RWMutex
	listings map[string]Listing
	order    []string
	history  []HistoryEntry
}

// NewMemoryRepository constructs an in-memory repository. Listings are
// returned newest-first, history entries likewise.
func NewMemoryRepository() Repository {
	return &memoryRepository{listings: make(map[string]Listing)}
}

func (r *memoryRepository) CreateListing(_ context.Context, listing Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.listings[listing.ID]; exists {
		return ErrListingExists
	}
	r.listings[listing.ID] = listing
	r.order = append([]string{listing.ID}, r.order...)
	return nil
}

func (r *memoryRepository) GetListing(_ context.Context, id string) (Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	listing, ok := r.listings[id]
	if !ok {
		return Listing{}, ErrListingNotFound
	}
	return cloneListing(listing), nil
}

func (r *memoryRepository) ListListings(_ context.Context) ([]Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Listing, 0, len(r.order))
	for _, id := range r.order {
		if listing, ok := r.listings[id]; ok {
			out = append(out, cloneListing(listing))
		}
	}
	return out, nil
}

func (r *memoryRepository) UpdateListing(_ context.Context, id string, mutate func(*Listing) error) (Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	listing, ok := r.listings[id]
	if !ok {
		return Listing{}, ErrListingNotFound
	}
	updated := cloneListing(listing)
	if err := mutate(&updated); err != nil {
		return Listing{}, err
	}
	r.listings[id] = updated
	return cloneListing(updated), nil
}

func (r *memoryRepository) DeleteListing(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.listings[id]; !ok {
		return ErrListingNotFound
	}
	delete(r.listings, id)
	for i, lid := range r.order {
		if lid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *memoryRepository) AppendHistory(_ context.Context, entry HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history = append([]HistoryEntry{entry}, r.history...)
	return nil
}

func (r *memoryRepository) ListHistory(_ context.Context) ([]HistoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]HistoryEntry, len(r.history))
	copy(out, r.history)
	return out, nil
}

// cloneListing deep-copies the auction state so callers never share the
// bids slice with the stored value.
func cloneListing(l Listing) Listing {
	if l.Auction == nil {
		return l
	}
	auction := *l.Auction
	auction.Bids = make([]Bid, len(l.Auction.Bids))
	copy(auction.Bids, l.Auction.Bids)
	l.Auction = &auction
	return l
}
