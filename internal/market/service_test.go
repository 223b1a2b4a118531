package market

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gram-seva/gram_seva/internal/ledger"
	"github.com/gram-seva/gram_seva/internal/notification"
)

type testNotifier struct {
	messages []notification.Message
}

func (n *testNotifier) Send(_ context.Context, msg notification.Message) error {
	n.messages = append(n.messages, msg)
	return nil
}

func newTestService(t *testing.T) (*Service, ledger.Ledger) {
	t.Helper()
	led := ledger.NewInMemory()
	if err := led.EnsureAccount(context.Background(), "wallet:me"); err != nil {
		t.Fatalf("ensure account: %v", err)
	}
	ledger.SeedBalance(led, "wallet:me", 745)
	return NewService(NewMemoryRepository(), led, nil), led
}

func newAuction(t *testing.T, svc *Service, price int64) Listing {
	t.Helper()
	listing, err := svc.CreateListing(context.Background(), CreateListingInput{
		SellerID:      "u2",
		SellerName:    "Suresh Farmer",
		Crop:          "Premium Basmati",
		Category:      CategoryGrains,
		Price:         price,
		Quantity:      "15 Qtls",
		Location:      "Sector 4",
		Type:          TypeAuction,
		DurationHours: 24,
	})
	if err != nil {
		t.Fatalf("create auction: %v", err)
	}
	return listing
}

func TestCreateListingFixed(t *testing.T) {
	svc, led := newTestService(t)
	ctx := context.Background()

	listing, err := svc.CreateListing(ctx, CreateListingInput{
		SellerID:   "u1",
		SellerName: "Ramesh Kumar",
		Crop:       "Organic Wheat",
		Category:   CategoryGrains,
		Price:      2350,
		Quantity:   "40 Qtls",
		Location:   "Near Station",
		Type:       TypeFixed,
	})
	if err != nil {
		t.Fatalf("create listing: %v", err)
	}
	if listing.Status != StatusActive || listing.Auction != nil {
		t.Fatalf("expected active fixed listing without auction state: %+v", listing)
	}

	// Listing is free: nothing hit the ledger.
	if balance, _ := led.Balance(ctx, "wallet:me"); balance != 745 {
		t.Fatalf("expected untouched balance, got %d", balance)
	}

	history, err := svc.History(ctx)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 || history[0].Kind != HistorySell || history[0].Status != "Listed" {
		t.Fatalf("expected one sell/Listed entry, got %+v", history)
	}
}

func TestCreateListingAuction(t *testing.T) {
	svc, _ := newTestService(t)
	listing := newAuction(t, svc, 3800)

	if !listing.IsAuction() {
		t.Fatalf("expected auction state")
	}
	if listing.StartingPrice != 3800 || listing.Auction.BidsCount != 0 || len(listing.Auction.Bids) != 0 {
		t.Fatalf("unexpected auction init: %+v", listing.Auction)
	}
	remaining := time.Until(listing.Auction.EndTime)
	if remaining < 23*time.Hour || remaining > 24*time.Hour {
		t.Fatalf("expected ~24h auction, got %v", remaining)
	}
}

func TestPlaceBidMonotonicLadder(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	listing := newAuction(t, svc, 3800)

	amounts := []int64{3900, 4200, 4250, 4400}
	for _, amount := range amounts {
		updated, err := svc.PlaceBid(ctx, PlaceBidInput{ListingID: listing.ID, Amount: amount, BidderName: "Harish"})
		if err != nil {
			t.Fatalf("place bid %d: %v", amount, err)
		}
		if updated.Price != amount {
			t.Fatalf("expected price %d, got %d", amount, updated.Price)
		}
		if updated.Auction.BidsCount != len(updated.Auction.Bids) {
			t.Fatalf("bid count %d != history length %d", updated.Auction.BidsCount, len(updated.Auction.Bids))
		}
	}

	final, _ := svc.GetListing(ctx, listing.ID)
	for i := 0; i+1 < len(final.Auction.Bids); i++ {
		if final.Auction.Bids[i].Amount <= final.Auction.Bids[i+1].Amount {
			t.Fatalf("bid history not descending at %d: %+v", i, final.Auction.Bids)
		}
	}
}

func TestPlaceBidRejectionIsNoOp(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	listing := newAuction(t, svc, 3800)

	if _, err := svc.PlaceBid(ctx, PlaceBidInput{ListingID: listing.ID, Amount: 4200, BidderName: "Amit"}); err != nil {
		t.Fatalf("place bid: %v", err)
	}

	for _, amount := range []int64{4200, 4100, 0} {
		if _, err := svc.PlaceBid(ctx, PlaceBidInput{ListingID: listing.ID, Amount: amount, BidderName: "Me", IsUser: true, Account: "wallet:me"}); !errors.Is(err, ErrBidTooLow) {
			t.Fatalf("expected ErrBidTooLow for %d, got %v", amount, err)
		}
	}

	after, _ := svc.GetListing(ctx, listing.ID)
	if after.Price != 4200 || after.Auction.BidsCount != 1 || len(after.Auction.Bids) != 1 {
		t.Fatalf("rejected bid mutated state: %+v", after)
	}
}

func TestPlaceBidOnFixedListing(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	listing, err := svc.CreateListing(ctx, CreateListingInput{
		SellerID: "u1", SellerName: "Ramesh", Crop: "Wheat", Category: CategoryGrains,
		Price: 2350, Quantity: "40 Qtls", Type: TypeFixed,
	})
	if err != nil {
		t.Fatalf("create listing: %v", err)
	}
	if _, err := svc.PlaceBid(ctx, PlaceBidInput{ListingID: listing.ID, Amount: 3000, BidderName: "Me"}); !errors.Is(err, ErrNotAuction) {
		t.Fatalf("expected ErrNotAuction, got %v", err)
	}
}

func TestUserBidPaysFeeRivalDoesNot(t *testing.T) {
	svc, led := newTestService(t)
	ctx := context.Background()
	listing := newAuction(t, svc, 3800)

	if _, err := svc.PlaceBid(ctx, PlaceBidInput{ListingID: listing.ID, Amount: 3900, BidderName: "Harish"}); err != nil {
		t.Fatalf("rival bid: %v", err)
	}
	if balance, _ := led.Balance(ctx, "wallet:me"); balance != 745 {
		t.Fatalf("rival bid touched the ledger, balance %d", balance)
	}

	if _, err := svc.PlaceBid(ctx, PlaceBidInput{ListingID: listing.ID, Amount: 4000, BidderName: "Me", IsUser: true, Account: "wallet:me"}); err != nil {
		t.Fatalf("user bid: %v", err)
	}
	if balance, _ := led.Balance(ctx, "wallet:me"); balance != 740 {
		t.Fatalf("expected fee debit to 740, got %d", balance)
	}

	history, _ := led.History(ctx, "wallet:me")
	if len(history) != 1 || history[0].Kind != ledger.KindDebit || history[0].Amount != PlatformFee {
		t.Fatalf("expected one fee debit, got %+v", history)
	}
	if history[0].Description != "Auction Fee: Premium Basmati" {
		t.Fatalf("unexpected fee description %q", history[0].Description)
	}
}

// End-to-end bidding scenario: rivals raise the ladder, an under-bid is
// rejected without effect, then the user takes the lead.
func TestAuctionScenario(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	listing := newAuction(t, svc, 3800)

	updated, err := svc.PlaceBid(ctx, PlaceBidInput{ListingID: listing.ID, Amount: 3900, BidderName: "Harish"})
	if err != nil || updated.Price != 3900 || updated.Auction.BidsCount != 1 {
		t.Fatalf("first rival bid: %v %+v", err, updated)
	}

	updated, err = svc.PlaceBid(ctx, PlaceBidInput{ListingID: listing.ID, Amount: 4200, BidderName: "Amit"})
	if err != nil || updated.Price != 4200 || updated.Auction.BidsCount != 2 {
		t.Fatalf("second rival bid: %v %+v", err, updated)
	}

	if _, err := svc.PlaceBid(ctx, PlaceBidInput{ListingID: listing.ID, Amount: 4100, BidderName: "Me", IsUser: true, Account: "wallet:me"}); !errors.Is(err, ErrBidTooLow) {
		t.Fatalf("expected 4100 to be rejected, got %v", err)
	}
	unchanged, _ := svc.GetListing(ctx, listing.ID)
	if unchanged.Price != 4200 || unchanged.Auction.BidsCount != 2 {
		t.Fatalf("rejected bid changed state: %+v", unchanged)
	}

	updated, err = svc.PlaceBid(ctx, PlaceBidInput{ListingID: listing.ID, Amount: 4250, BidderName: "Me", IsUser: true, Account: "wallet:me"})
	if err != nil {
		t.Fatalf("user bid: %v", err)
	}
	if updated.Price != 4250 || !updated.UserLeads() {
		t.Fatalf("expected user to lead at 4250: %+v", updated)
	}
}

func TestOutbidNotification(t *testing.T) {
	led := ledger.NewInMemory()
	_ = led.EnsureAccount(context.Background(), "wallet:me")
	ledger.SeedBalance(led, "wallet:me", 100)
	notifier := &testNotifier{}
	svc := NewService(NewMemoryRepository(), led, notifier)

	ctx := context.Background()
	listing := newAuction(t, svc, 3800)

	if _, err := svc.PlaceBid(ctx, PlaceBidInput{ListingID: listing.ID, Amount: 3900, BidderName: "Me", IsUser: true, Account: "wallet:me"}); err != nil {
		t.Fatalf("user bid: %v", err)
	}
	if len(notifier.messages) != 0 {
		t.Fatalf("taking the lead should not notify: %+v", notifier.messages)
	}

	if _, err := svc.PlaceBid(ctx, PlaceBidInput{ListingID: listing.ID, Amount: 4000, BidderName: "Vikram"}); err != nil {
		t.Fatalf("rival bid: %v", err)
	}
	if len(notifier.messages) != 1 || notifier.messages[0].Kind != notification.KindOutbid {
		t.Fatalf("expected outbid notification, got %+v", notifier.messages)
	}
}

func TestPurchaseFixed(t *testing.T) {
	svc, led := newTestService(t)
	ctx := context.Background()

	listing, err := svc.CreateListing(ctx, CreateListingInput{
		SellerID: "u3", SellerName: "Kishan Singh", Crop: "Local Tomatoes",
		Category: CategoryVegetables, Price: 800, Quantity: "100 Kg", Type: TypeFixed,
	})
	if err != nil {
		t.Fatalf("create listing: %v", err)
	}

	entry, err := svc.PurchaseFixed(ctx, PurchaseInput{ListingID: listing.ID, Account: "wallet:me"})
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	// The history entry records the listing price, the ledger records the fee.
	if entry.Kind != HistoryBuy || entry.Price != 800 || entry.Status != "Completed" || entry.Quantity != "100 Kg" {
		t.Fatalf("unexpected history entry: %+v", entry)
	}
	if balance, _ := led.Balance(ctx, "wallet:me"); balance != 740 {
		t.Fatalf("expected fee-only debit to 740, got %d", balance)
	}

	// No sold transition: the same listing can be purchased again.
	if _, err := svc.PurchaseFixed(ctx, PurchaseInput{ListingID: listing.ID, Account: "wallet:me"}); err != nil {
		t.Fatalf("repeat purchase: %v", err)
	}
	after, _ := svc.GetListing(ctx, listing.ID)
	if after.Status != StatusActive {
		t.Fatalf("expected listing to remain active, got %s", after.Status)
	}
}

func TestPurchaseAuctionRejected(t *testing.T) {
	svc, _ := newTestService(t)
	listing := newAuction(t, svc, 3800)

	if _, err := svc.PurchaseFixed(context.Background(), PurchaseInput{ListingID: listing.ID, Account: "wallet:me"}); !errors.Is(err, ErrNotFixed) {
		t.Fatalf("expected ErrNotFixed, got %v", err)
	}
}

func TestPurchaseInsufficientBalance(t *testing.T) {
	svc, led := newTestService(t)
	ctx := context.Background()
	ledger.SeedBalance(led, "wallet:me", PlatformFee-1)

	listing, err := svc.CreateListing(ctx, CreateListingInput{
		SellerID: "u1", SellerName: "Ramesh", Crop: "Wheat", Category: CategoryGrains,
		Price: 2350, Quantity: "40 Qtls", Type: TypeFixed,
	})
	if err != nil {
		t.Fatalf("create listing: %v", err)
	}
	if _, err := svc.PurchaseFixed(ctx, PurchaseInput{ListingID: listing.ID, Account: "wallet:me"}); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
}

func TestRemoveListing(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	listing := newAuction(t, svc, 3800)

	if err := svc.RemoveListing(ctx, listing.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := svc.GetListing(ctx, listing.ID); !errors.Is(err, ErrListingNotFound) {
		t.Fatalf("expected ErrListingNotFound, got %v", err)
	}
	if err := svc.RemoveListing(ctx, listing.ID); !errors.Is(err, ErrListingNotFound) {
		t.Fatalf("expected ErrListingNotFound on second remove, got %v", err)
	}
}

func TestExpireDue(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	listing := newAuction(t, svc, 3800)

	// Before the end time nothing expires.
	if n, err := svc.ExpireDue(ctx, time.Now().UTC()); err != nil || n != 0 {
		t.Fatalf("expected no expiries, got %d %v", n, err)
	}

	n, err := svc.ExpireDue(ctx, time.Now().UTC().Add(25*time.Hour))
	if err != nil || n != 1 {
		t.Fatalf("expected one expiry, got %d %v", n, err)
	}
	after, _ := svc.GetListing(ctx, listing.ID)
	if after.Status != StatusExpired {
		t.Fatalf("expected expired, got %s", after.Status)
	}
	// Expiry moves no money and picks no winner: the bid ledger is untouched.
	if after.Price != 3800 || after.Auction.BidsCount != 0 {
		t.Fatalf("expiry mutated auction state: %+v", after)
	}
}
