package booking

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/gram-seva/gram_seva/internal/ledger"
	"github.com/gram-seva/gram_seva/internal/wallet"
)

func newBookingService(t *testing.T, userID string, balance int64) (*Service, ledger.Ledger) {
	t.Helper()
	led := ledger.NewInMemory()
	if err := led.EnsureAccount(context.Background(), wallet.AccountCode(userID)); err != nil {
		t.Fatalf("ensure account: %v", err)
	}
	ledger.SeedBalance(led, wallet.AccountCode(userID), balance)
	return NewService(NewMemoryRepository(), led, nil), led
}

func TestCreateWalletBookingDebits(t *testing.T) {
	userID := uuid.NewString()
	svc, led := newBookingService(t, userID, 1_000)
	ctx := context.Background()

	b, err := svc.Create(ctx, CreateInput{
		UserID: userID, ProviderID: "p1", ProviderName: "Ram Singh",
		Category: "transport", Amount: 200, PaymentMethod: PayWallet,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if b.Status != StatusPending {
		t.Fatalf("expected Pending, got %s", b.Status)
	}

	balance, _ := led.Balance(ctx, wallet.AccountCode(userID))
	if balance != 800 {
		t.Fatalf("expected 800 after debit, got %d", balance)
	}
	history, _ := led.History(ctx, wallet.AccountCode(userID))
	if len(history) != 1 || history[0].Description != "Booking: Ram Singh" {
		t.Fatalf("expected booking debit, got %+v", history)
	}
}

func TestCreateWalletBookingInsufficientBalance(t *testing.T) {
	userID := uuid.NewString()
	svc, led := newBookingService(t, userID, 100)

	_, err := svc.Create(context.Background(), CreateInput{
		UserID: userID, ProviderID: "p1", ProviderName: "Ram Singh",
		Category: "transport", Amount: 200, PaymentMethod: PayWallet,
	})
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if balance, _ := led.Balance(context.Background(), wallet.AccountCode(userID)); balance != 100 {
		t.Fatalf("rejected booking moved money: %d", balance)
	}
}

func TestCreateCashBookingSkipsLedger(t *testing.T) {
	userID := uuid.NewString()
	svc, led := newBookingService(t, userID, 0)

	if _, err := svc.Create(context.Background(), CreateInput{
		UserID: userID, ProviderID: "p1", ProviderName: "Ram Singh",
		Category: "transport", Amount: 200, PaymentMethod: PayCash,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	history, _ := led.History(context.Background(), wallet.AccountCode(userID))
	if len(history) != 0 {
		t.Fatalf("cash booking touched the ledger: %+v", history)
	}
}

// Cancellation scenario: booking of 200 paid by wallet at balance 745;
// cancelling refunds to 945 with exactly one Refund credit, and a second
// cancel is a no-op.
func TestCancelWalletBookingRefundsOnce(t *testing.T) {
	userID := uuid.NewString()
	svc, led := newBookingService(t, userID, 945)
	ctx := context.Background()

	b, err := svc.Create(ctx, CreateInput{
		UserID: userID, ProviderID: "p2", ProviderName: "Harish Pickup",
		Category: "transport", Amount: 200, PaymentMethod: PayWallet,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if balance, _ := led.Balance(ctx, wallet.AccountCode(userID)); balance != 745 {
		t.Fatalf("expected 745 after debit, got %d", balance)
	}

	cancelled, err := svc.Cancel(ctx, b.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != StatusCancelled {
		t.Fatalf("expected Cancelled, got %s", cancelled.Status)
	}
	balance, _ := led.Balance(ctx, wallet.AccountCode(userID))
	if balance != 945 {
		t.Fatalf("expected refund to 945, got %d", balance)
	}
	history, _ := led.History(ctx, wallet.AccountCode(userID))
	if history[0].Kind != ledger.KindCredit || history[0].Amount != 200 || !strings.Contains(history[0].Description, "Refund") {
		t.Fatalf("expected refund credit at head, got %+v", history[0])
	}

	// Second cancel: no new transaction, no balance change.
	before := len(history)
	if _, err := svc.Cancel(ctx, b.ID); err != nil {
		t.Fatalf("second cancel: %v", err)
	}
	history, _ = led.History(ctx, wallet.AccountCode(userID))
	if len(history) != before {
		t.Fatalf("second cancel appended a transaction: %+v", history)
	}
	if balance, _ := led.Balance(ctx, wallet.AccountCode(userID)); balance != 945 {
		t.Fatalf("second cancel changed balance: %d", balance)
	}
}

func TestCancelCashBookingNoLedgerEffect(t *testing.T) {
	userID := uuid.NewString()
	svc, led := newBookingService(t, userID, 500)
	ctx := context.Background()

	b, err := svc.Create(ctx, CreateInput{
		UserID: userID, ProviderID: "p3", ProviderName: "Arun Auto",
		Category: "transport", Amount: 150, PaymentMethod: PayCash,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	cancelled, err := svc.Cancel(ctx, b.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != StatusCancelled {
		t.Fatalf("expected Cancelled, got %s", cancelled.Status)
	}
	if balance, _ := led.Balance(ctx, wallet.AccountCode(userID)); balance != 500 {
		t.Fatalf("cash cancellation changed balance: %d", balance)
	}
	if history, _ := led.History(ctx, wallet.AccountCode(userID)); len(history) != 0 {
		t.Fatalf("cash cancellation produced transactions: %+v", history)
	}
}

func TestCancelCompletedBookingIsNoOp(t *testing.T) {
	userID := uuid.NewString()
	svc, led := newBookingService(t, userID, 1_000)
	ctx := context.Background()

	b, _ := svc.Create(ctx, CreateInput{
		UserID: userID, ProviderID: "p1", ProviderName: "Ram Singh",
		Category: "transport", Amount: 300, PaymentMethod: PayWallet,
	})
	if _, err := svc.UpdateStatus(ctx, b.ID, StatusCompleted); err != nil {
		t.Fatalf("complete: %v", err)
	}

	after, err := svc.Cancel(ctx, b.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if after.Status != StatusCompleted {
		t.Fatalf("cancel overrode Completed: %s", after.Status)
	}
	if balance, _ := led.Balance(ctx, wallet.AccountCode(userID)); balance != 700 {
		t.Fatalf("completed booking was refunded: %d", balance)
	}
}

func TestUpdateStatusRejectsUnknown(t *testing.T) {
	userID := uuid.NewString()
	svc, _ := newBookingService(t, userID, 1_000)
	ctx := context.Background()

	b, _ := svc.Create(ctx, CreateInput{
		UserID: userID, ProviderID: "p1", ProviderName: "Ram Singh",
		Category: "transport", Amount: 100, PaymentMethod: PayWallet,
	})
	if _, err := svc.UpdateStatus(ctx, b.ID, "Teleported"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestRate(t *testing.T) {
	userID := uuid.NewString()
	svc, _ := newBookingService(t, userID, 1_000)
	ctx := context.Background()

	b, _ := svc.Create(ctx, CreateInput{
		UserID: userID, ProviderID: "p1", ProviderName: "Ram Singh",
		Category: "transport", Amount: 100, PaymentMethod: PayWallet,
	})
	rated, err := svc.Rate(ctx, b.ID, 5)
	if err != nil {
		t.Fatalf("rate: %v", err)
	}
	if rated.Rating != 5 {
		t.Fatalf("expected rating 5, got %d", rated.Rating)
	}
	if _, err := svc.Rate(ctx, b.ID, 9); err == nil {
		t.Fatalf("expected out-of-range rating to fail")
	}
}
