package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresLedger persists account balances and transactions in PostgreSQL.
// The running balance is stored on the account row and updated in the same
// database transaction that inserts the entry.
type PostgresLedger struct {
	db *pgxpool.Pool
}

// NewPostgresLedger constructs a Postgres-backed ledger implementation.
func NewPostgresLedger(db *pgxpool.Pool) *PostgresLedger {
	return &PostgresLedger{db: db}
}

// EnsureAccount guarantees an account exists for the provided code.
func (l *PostgresLedger) EnsureAccount(ctx context.Context, code string) error {
	_, err := l.db.Exec(ctx, `INSERT INTO accounts (id, code, balance) VALUES ($1, $2, 0)
        ON CONFLICT (code) DO NOTHING`, uuid.New(), code)
	return err
}

// Record appends a transaction and adjusts the account balance atomically.
func (l *PostgresLedger) Record(ctx context.Context, code, kind string, amount int64, description string) (Transaction, error) {
	tx, err := l.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Transaction{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	var accountID uuid.UUID
	if err := tx.QueryRow(ctx, `SELECT id FROM accounts WHERE code = $1 FOR UPDATE`, code).Scan(&accountID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Transaction{}, ErrAccountNotFound
		}
		return Transaction{}, err
	}

	delta := amount
	if kind == KindDebit {
		delta = -amount
	}

	entry := Transaction{
		ID:          uuid.NewString(),
		Kind:        kind,
		Amount:      amount,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}

	if _, err := tx.Exec(ctx, `INSERT INTO wallet_transactions (id, account_id, kind, amount, description, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`, entry.ID, accountID, entry.Kind, entry.Amount, entry.Description, entry.CreatedAt); err != nil {
		return Transaction{}, err
	}

	if _, err := tx.Exec(ctx, `UPDATE accounts SET balance = balance + $1 WHERE id = $2`, delta, accountID); err != nil {
		return Transaction{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Transaction{}, err
	}

	return entry, nil
}

// Balance returns the stored balance for the specified account code.
func (l *PostgresLedger) Balance(ctx context.Context, code string) (int64, error) {
	var balance int64
	if err := l.db.QueryRow(ctx, `SELECT balance FROM accounts WHERE code = $1`, code).Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrAccountNotFound
		}
		return 0, err
	}
	return balance, nil
}

// History lists the account's transactions newest-first.
func (l *PostgresLedger) History(ctx context.Context, code string) ([]Transaction, error) {
	var accountID uuid.UUID
	if err := l.db.QueryRow(ctx, `SELECT id FROM accounts WHERE code = $1`, code).Scan(&accountID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	rows, err := l.db.Query(ctx, `SELECT id, kind, amount, description, created_at
        FROM wallet_transactions WHERE account_id = $1 ORDER BY created_at DESC`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		var entry Transaction
		if err := rows.Scan(&entry.ID, &entry.Kind, &entry.Amount, &entry.Description, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entry.CreatedAt = entry.CreatedAt.UTC()
		out = append(out, entry)
	}
	return out, rows.Err()
}
