package wallet

import (
	"context"
	"fmt"
	"time"

	"github.com/gram-seva/gram_seva/internal/ledger"
)

// SignupBonus is credited once when a user's wallet is provisioned.
const SignupBonus int64 = 250

// Balance encapsulates available funds for a user's wallet.
type Balance struct {
	Account string    `json:"account"`
	Amount  int64     `json:"amount"`
	AsOf    time.Time `json:"as_of"`
}

// Service is the wallet facade over the ledger. It owns the mapping from
// user to account code; every balance read and money movement goes through
// the ledger, never around it.
type Service struct {
	ledger ledger.Ledger
	upi    Connector
}

// NewService builds a wallet service instance.
func NewService(led ledger.Ledger, upi Connector) *Service {
	if upi == nil {
		upi = StaticConnector{}
	}
	return &Service{ledger: led, upi: upi}
}

// AccountCode returns the ledger account code for a user.
func AccountCode(userID string) string {
	return fmt.Sprintf("wallet:%s", userID)
}

// Provision creates the user's ledger account and credits the signup bonus.
// Safe to call once per user; the caller guards against re-registration.
func (s *Service) Provision(ctx context.Context, userID string) (string, error) {
	code := AccountCode(userID)
	if err := s.ledger.EnsureAccount(ctx, code); err != nil {
		return "", err
	}
	if _, err := s.ledger.Record(ctx, code, ledger.KindCredit, SignupBonus, "Signup Bonus"); err != nil {
		return "", err
	}
	return code, nil
}

// TopUp authorizes a UPI collect and credits the wallet.
func (s *Service) TopUp(ctx context.Context, userID string, amount int64, vpa string) (ledger.Transaction, error) {
	if amount <= 0 {
		return ledger.Transaction{}, fmt.Errorf("amount must be positive")
	}
	decision, err := s.upi.AuthorizeCollect(ctx, CollectAuthorization{VPA: vpa, Amount: amount})
	if err != nil {
		return ledger.Transaction{}, err
	}
	if decision.Status != "approved" {
		return ledger.Transaction{}, fmt.Errorf("top-up declined: %s", decision.Status)
	}
	return s.ledger.Record(ctx, AccountCode(userID), ledger.KindCredit, amount, "Top-up: UPI Deposit")
}

// Balance returns the ledger balance for the user's wallet.
func (s *Service) Balance(ctx context.Context, userID string) (Balance, error) {
	amount, err := s.ledger.Balance(ctx, AccountCode(userID))
	if err != nil {
		return Balance{}, err
	}
	return Balance{Account: AccountCode(userID), Amount: amount, AsOf: time.Now().UTC()}, nil
}

// History returns the user's transactions, newest-first.
func (s *Service) History(ctx context.Context, userID string) ([]ledger.Transaction, error) {
	return s.ledger.History(ctx, AccountCode(userID))
}
