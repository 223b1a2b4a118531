package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type inMemoryLedger struct {
	mu       sync.RWMutex
	balances map[string]int64
	history  map[string][]Transaction
}

// NewInMemory creates a concurrency-safe in-memory ledger. It backs the
// development server and unit tests.
func NewInMemory() Ledger {
	return &inMemoryLedger{
		balances: make(map[string]int64),
		history:  make(map[string][]Transaction),
	}
}

func (l *inMemoryLedger) EnsureAccount(_ context.Context, code string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.balances[code]; !exists {
		l.balances[code] = 0
	}
	return nil
}

func (l *inMemoryLedger) Record(_ context.Context, code, kind string, amount int64, description string) (Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	balance, ok := l.balances[code]
	if !ok {
		return Transaction{}, ErrAccountNotFound
	}

	tx := Transaction{
		ID:          uuid.NewString(),
		Kind:        kind,
		Amount:      amount,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}

	if kind == KindCredit {
		balance += amount
	} else {
		balance -= amount
	}

	// Balance and history move together under the lock; no intermediate
	// state is observable.
	l.balances[code] = balance
	l.history[code] = append([]Transaction{tx}, l.history[code]...)

	return tx, nil
}

func (l *inMemoryLedger) Balance(_ context.Context, code string) (int64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	balance, ok := l.balances[code]
	if !ok {
		return 0, ErrAccountNotFound
	}
	return balance, nil
}

func (l *inMemoryLedger) History(_ context.Context, code string) ([]Transaction, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if _, ok := l.balances[code]; !ok {
		return nil, ErrAccountNotFound
	}
	out := make([]Transaction, len(l.history[code]))
	copy(out, l.history[code])
	return out, nil
}
