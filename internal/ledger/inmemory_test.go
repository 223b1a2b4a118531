package ledger

import (
	"context"
	"testing"
)

func newSeededLedger(t *testing.T, code string, amount int64) Ledger {
	t.Helper()
	led := NewInMemory()
	if err := led.EnsureAccount(context.Background(), code); err != nil {
		t.Fatalf("ensure account: %v", err)
	}
	SeedBalance(led, code, amount)
	return led
}

func TestRecordAdjustsBalance(t *testing.T) {
	ctx := context.Background()
	led := newSeededLedger(t, "wallet:u1", 250)

	if _, err := led.Record(ctx, "wallet:u1", KindCredit, 500, "Top-up: UPI Deposit"); err != nil {
		t.Fatalf("record credit: %v", err)
	}
	balance, err := led.Balance(ctx, "wallet:u1")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != 750 {
		t.Fatalf("expected balance 750, got %d", balance)
	}

	if _, err := led.Record(ctx, "wallet:u1", KindDebit, 5, "Auction Fee: Basmati"); err != nil {
		t.Fatalf("record debit: %v", err)
	}
	balance, _ = led.Balance(ctx, "wallet:u1")
	if balance != 745 {
		t.Fatalf("expected balance 745, got %d", balance)
	}
}

func TestBalanceConservation(t *testing.T) {
	ctx := context.Background()
	led := newSeededLedger(t, "wallet:u1", 1_000)

	postings := []struct {
		kind   string
		amount int64
	}{
		{KindCredit, 300},
		{KindDebit, 120},
		{KindDebit, 5},
		{KindCredit, 45},
		{KindDebit, 2_000},
	}

	expected := int64(1_000)
	for _, p := range postings {
		if _, err := led.Record(ctx, "wallet:u1", p.kind, p.amount, "posting"); err != nil {
			t.Fatalf("record: %v", err)
		}
		if p.kind == KindCredit {
			expected += p.amount
		} else {
			expected -= p.amount
		}
	}

	// No clamping: the last debit drives the balance negative.
	balance, err := led.Balance(ctx, "wallet:u1")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance != expected {
		t.Fatalf("expected balance %d, got %d", expected, balance)
	}
}

func TestHistoryNewestFirstAppendOnly(t *testing.T) {
	ctx := context.Background()
	led := newSeededLedger(t, "wallet:u1", 0)

	descriptions := []string{"first", "second", "third"}
	for i, d := range descriptions {
		before, _ := led.History(ctx, "wallet:u1")
		if _, err := led.Record(ctx, "wallet:u1", KindCredit, int64(i+1), d); err != nil {
			t.Fatalf("record: %v", err)
		}
		after, err := led.History(ctx, "wallet:u1")
		if err != nil {
			t.Fatalf("history: %v", err)
		}
		if len(after) != len(before)+1 {
			t.Fatalf("expected history to grow by one, got %d -> %d", len(before), len(after))
		}
		if after[0].Description != d {
			t.Fatalf("expected newest entry %q at head, got %q", d, after[0].Description)
		}
		// Prior entries are untouched.
		for j, old := range before {
			if after[j+1] != old {
				t.Fatalf("existing entry mutated at index %d", j)
			}
		}
	}
}

func TestUnknownAccount(t *testing.T) {
	ctx := context.Background()
	led := NewInMemory()

	if _, err := led.Record(ctx, "wallet:missing", KindCredit, 10, "x"); err != ErrAccountNotFound {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
	if _, err := led.Balance(ctx, "wallet:missing"); err != ErrAccountNotFound {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}
