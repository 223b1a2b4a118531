package market

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"
)

var rivalNames = []string{"Vikram", "Rajeev", "Sunil", "Parth", "Deepak"}

// Simulator injects synthetic competing bids into the auction listing a
// client is currently observing. It exists for demonstration only: rival
// bids never touch the ledger.
type Simulator struct {
	svc      *Service
	interval time.Duration
	chance   float64
	logger   *slog.Logger
}

// NewSimulator builds a rival-bid simulator. Each interval tick it bids with
// the given probability, raising the price by 50, 100 or 150.
func NewSimulator(svc *Service, interval time.Duration, chance float64, logger *slog.Logger) *Simulator {
	if interval <= 0 {
		interval = 8 * time.Second
	}
	if chance <= 0 {
		chance = 0.15
	}
	return &Simulator{svc: svc, interval: interval, chance: chance, logger: logger}
}

// Watch is the handle for one observed listing. Observation ends when Stop
// is called; Stop is idempotent and blocks until the background goroutine
// has exited, so no ticker outlives its watch.
type Watch struct {
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// Stop ends the observation.
func (w *Watch) Stop() {
	w.once.Do(func() { close(w.stop) })
	<-w.done
}

// Watch starts injecting rival bids against the given listing until the
// returned handle is stopped. One goroutine per observed listing.
func (s *Simulator) Watch(listingID string) *Watch {
	w := &Watch{stop: make(chan struct{}), done: make(chan struct{})}

	go func() {
		defer close(w.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-w.stop:
				return
			case <-ticker.C:
				if rand.Float64() >= s.chance {
					continue
				}
				s.bidOnce(listingID)
			}
		}
	}()

	return w
}

func (s *Simulator) bidOnce(listingID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	listing, err := s.svc.GetListing(ctx, listingID)
	if err != nil || !listing.IsAuction() || listing.Status != StatusActive {
		return
	}

	name := rivalNames[rand.IntN(len(rivalNames))]
	increment := int64(50 + rand.IntN(3)*50)

	// The increment keeps the offer above the current price, so this can
	// only lose a race against another bid placed in between; that loss is
	// harmless and simply skipped.
	if _, err := s.svc.PlaceBid(ctx, PlaceBidInput{
		ListingID:  listingID,
		Amount:     listing.Price + increment,
		BidderName: name,
		IsUser:     false,
	}); err != nil && s.logger != nil {
		s.logger.Debug("rival bid skipped", "listing_id", listingID, "error", err)
	}
}
