package booking

import (
	"context"
	"errors"
	"sync"
)

type memoryRepository struct {
	mu       sync.RWMutex
	bookings map[string]Booking
	order    []string
}

// NewMemoryRepository constructs an in-memory booking repository.
func NewMemoryRepository() Repository {
	return &memoryRepository{bookings: make(map[string]Booking)}
}

func (r *memoryRepository) Create(_ context.Context, b Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.bookings[b.ID]; exists {
		return errors.New("booking exists")
	}
	r.bookings[b.ID] = b
	r.order = append([]string{b.ID}, r.order...)
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bookings[id]
	if !ok {
		return Booking{}, ErrBookingNotFound
	}
	return b, nil
}

func (r *memoryRepository) ListByUser(_ context.Context, userID string) ([]Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Booking
	for _, id := range r.order {
		if b, ok := r.bookings[id]; ok && b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *memoryRepository) Update(_ context.Context, id string, mutate func(*Booking) error) (Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return Booking{}, ErrBookingNotFound
	}
	if err := mutate(&b); err != nil {
		return Booking{}, err
	}
	r.bookings[id] = b
	return b, nil
}
