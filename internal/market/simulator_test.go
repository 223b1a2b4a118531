package market

import (
	"context"
	"testing"
	"time"

	"github.com/gram-seva/gram_seva/internal/ledger"
	"github.com/gram-seva/gram_seva/internal/logging"
)

func TestSimulatorInjectsRivalBids(t *testing.T) {
	led := ledger.NewInMemory()
	svc := NewService(NewMemoryRepository(), led, nil)
	listing := newAuction(t, svc, 3800)

	// Always bid, every few milliseconds, so the test observes activity fast.
	sim := NewSimulator(svc, 5*time.Millisecond, 1.0, logging.Discard())
	watch := sim.Watch(listing.ID)

	deadline := time.Now().Add(2 * time.Second)
	var observed Listing
	for time.Now().Before(deadline) {
		observed, _ = svc.GetListing(context.Background(), listing.ID)
		if observed.Auction.BidsCount >= 2 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	watch.Stop()

	if observed.Auction.BidsCount < 2 {
		t.Fatalf("expected at least two rival bids, got %d", observed.Auction.BidsCount)
	}
	for _, b := range observed.Auction.Bids {
		if b.IsUser {
			t.Fatalf("simulator produced a user bid: %+v", b)
		}
		step := b.Amount % 50
		if step != 0 {
			t.Fatalf("rival increment not a multiple of 50: %+v", b)
		}
	}
	if observed.Price != observed.Auction.Bids[0].Amount {
		t.Fatalf("price %d does not match head bid %d", observed.Price, observed.Auction.Bids[0].Amount)
	}
}

func TestWatchStopEndsSimulation(t *testing.T) {
	led := ledger.NewInMemory()
	svc := NewService(NewMemoryRepository(), led, nil)
	listing := newAuction(t, svc, 3800)

	sim := NewSimulator(svc, 5*time.Millisecond, 1.0, logging.Discard())
	watch := sim.Watch(listing.ID)
	time.Sleep(50 * time.Millisecond)
	watch.Stop()
	// Stop is idempotent.
	watch.Stop()

	frozen, _ := svc.GetListing(context.Background(), listing.ID)
	time.Sleep(100 * time.Millisecond)
	after, _ := svc.GetListing(context.Background(), listing.ID)

	if after.Auction.BidsCount != frozen.Auction.BidsCount {
		t.Fatalf("bids kept arriving after Stop: %d -> %d", frozen.Auction.BidsCount, after.Auction.BidsCount)
	}
}

func TestSimulatorIgnoresExpiredListing(t *testing.T) {
	led := ledger.NewInMemory()
	svc := NewService(NewMemoryRepository(), led, nil)
	listing := newAuction(t, svc, 3800)

	if _, err := svc.ExpireDue(context.Background(), time.Now().UTC().Add(25*time.Hour)); err != nil {
		t.Fatalf("expire: %v", err)
	}

	sim := NewSimulator(svc, 5*time.Millisecond, 1.0, logging.Discard())
	watch := sim.Watch(listing.ID)
	time.Sleep(100 * time.Millisecond)
	watch.Stop()

	after, _ := svc.GetListing(context.Background(), listing.ID)
	if after.Auction.BidsCount != 0 {
		t.Fatalf("expired listing received rival bids: %+v", after.Auction)
	}
}
