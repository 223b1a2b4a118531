package ledger

import (
	"context"
	"errors"
	"time"
)

// ErrAccountNotFound occurs when an operation references an account code
// that was never provisioned through EnsureAccount.
var ErrAccountNotFound = errors.New("account not found")

const (
	// KindCredit increases the account balance.
	KindCredit = "credit"
	// KindDebit decreases the account balance.
	KindDebit = "debit"
)

// Transaction is one immutable entry in an account's audit trail. Amounts are
// whole currency units and always positive; the kind decides the direction.
type Transaction struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	Amount      int64     `json:"amount"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Ledger owns per-account balances and their append-only transaction history,
// ordered newest-first. Record performs no sufficiency check: callers decide
// whether a debit is affordable before posting it, and a balance may go
// negative if they don't.
type Ledger interface {
	EnsureAccount(ctx context.Context, code string) error
	Record(ctx context.Context, code, kind string, amount int64, description string) (Transaction, error)
	Balance(ctx context.Context, code string) (int64, error)
	History(ctx context.Context, code string) ([]Transaction, error)
}
