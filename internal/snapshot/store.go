package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gram-seva/gram_seva/internal/booking"
	"github.com/gram-seva/gram_seva/internal/ledger"
	"github.com/gram-seva/gram_seva/internal/market"
)

// stateKey is fixed. There is no versioning or migration, a schema change
// simply means the next save writes a fresh document.
const stateKey = "gramseva:state:v1"

var ErrNoSnapshot = errors.New("no snapshot stored")

// State is the single JSON document persisted per snapshot cycle. It mirrors
// what a client would need to rehydrate its local view.
type State struct {
	Balance       int64                 `json:"balance"`
	Transactions  []ledger.Transaction  `json:"transactions"`
	Listings      []market.Listing      `json:"listings"`
	MarketHistory []market.HistoryEntry `json:"marketHistory"`
	Bookings      []booking.Booking     `json:"bookings"`
	SavedAt       time.Time             `json:"savedAt"`
}

// Store persists state snapshots in Redis.
type Store struct {
	cache *redis.Client
}

func NewStore(cache *redis.Client) *Store {
	return &Store{cache: cache}
}

// Save overwrites the snapshot document.
func (s *Store) Save(ctx context.Context, state State) error {
	state.SavedAt = time.Now().UTC()
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.cache.Set(ctx, stateKey, payload, 0).Err(); err != nil {
		return fmt.Errorf("persist snapshot: %w", err)
	}
	return nil
}

// Load reads the last saved snapshot.
func (s *Store) Load(ctx context.Context) (State, error) {
	raw, err := s.cache.Get(ctx, stateKey).Result()
	if errors.Is(err, redis.Nil) {
		return State{}, ErrNoSnapshot
	}
	if err != nil {
		return State{}, fmt.Errorf("read snapshot: %w", err)
	}

	var state State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return State{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return state, nil
}
