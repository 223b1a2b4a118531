package wallet

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/gram-seva/gram_seva/internal/ledger"
)

func TestProvisionCreditsSignupBonus(t *testing.T) {
	led := ledger.NewInMemory()
	svc := NewService(led, nil)
	ctx := context.Background()
	userID := uuid.NewString()

	code, err := svc.Provision(ctx, userID)
	if err != nil {
		t.Fatalf("provision: %v", err)
	}
	if code != AccountCode(userID) {
		t.Fatalf("unexpected account code %s", code)
	}

	balance, err := svc.Balance(ctx, userID)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.Amount != SignupBonus {
		t.Fatalf("expected signup bonus %d, got %d", SignupBonus, balance.Amount)
	}

	history, _ := svc.History(ctx, userID)
	if len(history) != 1 || history[0].Description != "Signup Bonus" || history[0].Kind != ledger.KindCredit {
		t.Fatalf("expected signup bonus entry, got %+v", history)
	}
}

// Top-up scenario: 250 signup bonus, then a 500 top-up leaves 750 and two
// history entries with the deposit at the head.
func TestTopUp(t *testing.T) {
	led := ledger.NewInMemory()
	svc := NewService(led, nil)
	ctx := context.Background()
	userID := uuid.NewString()

	if _, err := svc.Provision(ctx, userID); err != nil {
		t.Fatalf("provision: %v", err)
	}
	tx, err := svc.TopUp(ctx, userID, 500, "farmer@upi")
	if err != nil {
		t.Fatalf("top-up: %v", err)
	}
	if tx.Kind != ledger.KindCredit || tx.Amount != 500 || tx.Description != "Top-up: UPI Deposit" {
		t.Fatalf("unexpected transaction: %+v", tx)
	}

	balance, _ := svc.Balance(ctx, userID)
	if balance.Amount != 750 {
		t.Fatalf("expected balance 750, got %d", balance.Amount)
	}
	history, _ := svc.History(ctx, userID)
	if len(history) != 2 || history[0].Description != "Top-up: UPI Deposit" {
		t.Fatalf("expected top-up at history head, got %+v", history)
	}
}

func TestTopUpRejectsNonPositiveAmount(t *testing.T) {
	led := ledger.NewInMemory()
	svc := NewService(led, nil)
	ctx := context.Background()
	userID := uuid.NewString()

	if _, err := svc.Provision(ctx, userID); err != nil {
		t.Fatalf("provision: %v", err)
	}
	for _, amount := range []int64{0, -50} {
		if _, err := svc.TopUp(ctx, userID, amount, "farmer@upi"); err == nil {
			t.Fatalf("expected rejection for amount %d", amount)
		}
	}
	balance, _ := svc.Balance(ctx, userID)
	if balance.Amount != SignupBonus {
		t.Fatalf("rejected top-up changed balance: %d", balance.Amount)
	}
}

func TestBalanceUnknownUser(t *testing.T) {
	led := ledger.NewInMemory()
	svc := NewService(led, nil)

	if _, err := svc.Balance(context.Background(), uuid.NewString()); err != ledger.ErrAccountNotFound {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}
