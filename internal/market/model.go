package market

import "time"

// Listing categories shown in the mandi.
const (
	CategoryGrains     = "Grains"
	CategoryVegetables = "Vegetables"
	CategoryFruits     = "Fruits"
	CategoryPulses     = "Pulses"
	CategoryOthers     = "Others"
)

// Listing sale mechanisms.
const (
	TypeFixed   = "fixed"
	TypeAuction = "auction"
)

// Listing lifecycle states.
const (
	StatusActive  = "active"
	StatusSold    = "sold"
	StatusExpired = "expired"
)

// Market history entry kinds.
const (
	HistoryBuy  = "buy"
	HistorySell = "sell"
	HistoryBid  = "bid"
)

// Bid is one recorded offer against an auction listing. Immutable.
type Bid struct {
	ID         string    `json:"id"`
	BidderName string    `json:"bidder_name"`
	Amount     int64     `json:"amount"`
	PlacedAt   time.Time `json:"placed_at"`
	IsUser     bool      `json:"is_user"`
}

// AuctionState carries the fields that only exist on auction listings.
// A fixed-price listing has no AuctionState at all, so the auction-only
// fields cannot be half-populated.
type AuctionState struct {
	EndTime   time.Time `json:"end_time"`
	BidsCount int       `json:"bids_count"`
	// Bids is ordered newest-first; the head entry always carries the
	// listing's current price.
	Bids []Bid `json:"bids"`
}

// Listing is a unit of produce offered for sale.
type Listing struct {
	ID            string        `json:"id"`
	SellerID      string        `json:"seller_id"`
	SellerName    string        `json:"seller_name"`
	Crop          string        `json:"crop"`
	Category      string        `json:"category"`
	Price         int64         `json:"price"`
	StartingPrice int64         `json:"starting_price,omitempty"`
	Quantity      string        `json:"quantity"`
	Image         string        `json:"image,omitempty"`
	Location      string        `json:"location"`
	Status        string        `json:"status"`
	Type          string        `json:"type"`
	Auction       *AuctionState `json:"auction,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

// IsAuction reports whether the listing sells by competitive bidding.
func (l Listing) IsAuction() bool {
	return l.Type == TypeAuction && l.Auction != nil
}

// UserLeads reports whether the most recent bid belongs to the local user.
// Leadership is always re-derived from bid order; there is no winner field.
func (l Listing) UserLeads() bool {
	return l.IsAuction() && len(l.Auction.Bids) > 0 && l.Auction.Bids[0].IsUser
}

// HistoryEntry is one row of the mandi activity log. It is independent of
// the wallet ledger: a sale produces a ledger transaction for the money and
// a history entry for the activity, and the two logs are never reconciled.
type HistoryEntry struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Crop      string    `json:"crop"`
	Price     int64     `json:"price"`
	Quantity  string    `json:"quantity"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
