package prices

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Trend marks the direction a quote moved since its last update.
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

var ErrInvalidQuote = errors.New("invalid price quote")

// Quote is one row on the mandi price board.
type Quote struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Price     int64     `json:"price"`
	Unit      string    `json:"unit"`
	Trend     Trend     `json:"trend"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Service serves the district price board. Quotes are maintained by an
// operator through Upsert and seeded with the staple crops on startup.
type Service struct {
	mu     sync.RWMutex
	quotes map[string]Quote
}

func NewService() *Service {
	s := &Service{quotes: make(map[string]Quote)}
	now := time.Now().UTC()
	for _, q := range []Quote{
		{ID: "1", Name: "Wheat (Kanak)", Price: 2125, Unit: "Quintal", Trend: TrendUp, UpdatedAt: now},
		{ID: "2", Name: "Mustard (Sarson)", Price: 5450, Unit: "Quintal", Trend: TrendDown, UpdatedAt: now},
		{ID: "3", Name: "Cotton (Kapas)", Price: 7200, Unit: "Quintal", Trend: TrendStable, UpdatedAt: now},
	} {
		s.quotes[q.ID] = q
	}
	return s
}

// List returns all quotes sorted by ID for a stable board order.
func (s *Service) List(_ context.Context) []Quote {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Quote, 0, len(s.quotes))
	for _, q := range s.quotes {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Upsert creates or replaces a quote. An empty ID allocates a new one.
func (s *Service) Upsert(_ context.Context, q Quote) (Quote, error) {
	if q.Name == "" || q.Price <= 0 || q.Unit == "" {
		return Quote{}, ErrInvalidQuote
	}
	switch q.Trend {
	case TrendUp, TrendDown, TrendStable:
	default:
		return Quote{}, ErrInvalidQuote
	}

	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	q.UpdatedAt = time.Now().UTC()

	s.mu.Lock()
	s.quotes[q.ID] = q
	s.mu.Unlock()
	return q, nil
}
