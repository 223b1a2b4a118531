package booking

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository stores bookings in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const bookingColumns = `id, user_id, provider_id, provider_name, category, amount,
        payment_method, status, pickup, drop_location, rating, created_at`

// Create inserts a booking record.
func (r *PostgresRepository) Create(ctx context.Context, b Booking) error {
	_, err := r.db.Exec(ctx, `INSERT INTO bookings (`+bookingColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		b.ID, b.UserID, b.ProviderID, b.ProviderName, b.Category, b.Amount,
		b.PaymentMethod, b.Status, b.Pickup, b.Drop, b.Rating, b.CreatedAt)
	return err
}

// Get fetches a booking by identifier.
func (r *PostgresRepository) Get(ctx context.Context, id string) (Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	return scanBooking(row)
}

// ListByUser returns the user's bookings newest-first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings
        WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Update loads the booking under a row lock, applies the mutation and
// persists the mutable columns.
func (r *PostgresRepository) Update(ctx context.Context, id string, mutate func(*Booking) error) (Booking, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Booking{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	row := tx.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, id)
	b, err := scanBooking(row)
	if err != nil {
		return Booking{}, err
	}
	if err := mutate(&b); err != nil {
		return Booking{}, err
	}
	if _, err := tx.Exec(ctx, `UPDATE bookings SET status = $1, rating = $2 WHERE id = $3`,
		b.Status, b.Rating, id); err != nil {
		return Booking{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Booking{}, err
	}
	return b, nil
}

func scanBooking(row pgx.Row) (Booking, error) {
	var b Booking
	if err := row.Scan(&b.ID, &b.UserID, &b.ProviderID, &b.ProviderName, &b.Category,
		&b.Amount, &b.PaymentMethod, &b.Status, &b.Pickup, &b.Drop, &b.Rating, &b.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Booking{}, ErrBookingNotFound
		}
		return Booking{}, err
	}
	b.CreatedAt = b.CreatedAt.UTC()
	return b, nil
}
