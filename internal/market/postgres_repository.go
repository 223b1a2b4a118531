package market

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository stores listings, bids and activity history in
// PostgreSQL. Listing mutations lock the listing row, which serializes
// concurrent bids the same way the in-memory mutex does.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const listingColumns = `id, seller_id, seller_name, crop, category, price, starting_price,
        quantity, image, location, status, type, end_time, bids_count, created_at`

// CreateListing inserts a listing record.
func (r *PostgresRepository) CreateListing(ctx context.Context, listing Listing) error {
	var endTime *time.Time
	bidsCount := 0
	if listing.Auction != nil {
		endTime = &listing.Auction.EndTime
		bidsCount = listing.Auction.BidsCount
	}
	_, err := r.db.Exec(ctx, `INSERT INTO listings (`+listingColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		listing.ID, listing.SellerID, listing.SellerName, listing.Crop, listing.Category,
		listing.Price, listing.StartingPrice, listing.Quantity, listing.Image, listing.Location,
		listing.Status, listing.Type, endTime, bidsCount, listing.CreatedAt)
	return err
}

// GetListing fetches a listing with its bid history.
func (r *PostgresRepository) GetListing(ctx context.Context, id string) (Listing, error) {
	row := r.db.QueryRow(ctx, `SELECT `+listingColumns+` FROM listings WHERE id = $1`, id)
	listing, err := scanListing(row)
	if err != nil {
		return Listing{}, err
	}
	if listing.Auction != nil {
		bids, err := r.listBids(ctx, r.db, id)
		if err != nil {
			return Listing{}, err
		}
		listing.Auction.Bids = bids
	}
	return listing, nil
}

// ListListings returns all listings newest-first with their bid histories.
func (r *PostgresRepository) ListListings(ctx context.Context) ([]Listing, error) {
	rows, err := r.db.Query(ctx, `SELECT `+listingColumns+` FROM listings ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Listing
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, listing)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].Auction == nil {
			continue
		}
		bids, err := r.listBids(ctx, r.db, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Auction.Bids = bids
	}
	return out, nil
}

// UpdateListing loads the listing under a row lock, applies the mutation and
// persists the result, inserting any bids the mutation prepended.
func (r *PostgresRepository) UpdateListing(ctx context.Context, id string, mutate func(*Listing) error) (Listing, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Listing{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	row := tx.QueryRow(ctx, `SELECT `+listingColumns+` FROM listings WHERE id = $1 FOR UPDATE`, id)
	listing, err := scanListing(row)
	if err != nil {
		return Listing{}, err
	}
	priorBids := 0
	if listing.Auction != nil {
		bids, err := r.listBids(ctx, tx, id)
		if err != nil {
			return Listing{}, err
		}
		listing.Auction.Bids = bids
		priorBids = len(bids)
	}

	if err := mutate(&listing); err != nil {
		return Listing{}, err
	}

	var endTime *time.Time
	bidsCount := 0
	if listing.Auction != nil {
		endTime = &listing.Auction.EndTime
		bidsCount = listing.Auction.BidsCount
	}
	if _, err := tx.Exec(ctx, `UPDATE listings SET price = $1, status = $2, end_time = $3, bids_count = $4
        WHERE id = $5`, listing.Price, listing.Status, endTime, bidsCount, id); err != nil {
		return Listing{}, err
	}

	if listing.Auction != nil {
		// New bids are always prepended, so anything before priorBids is new.
		for i := len(listing.Auction.Bids) - priorBids - 1; i >= 0; i-- {
			b := listing.Auction.Bids[i]
			if _, err := tx.Exec(ctx, `INSERT INTO bids (id, listing_id, bidder_name, amount, is_user, placed_at)
                VALUES ($1, $2, $3, $4, $5, $6)`, b.ID, id, b.BidderName, b.Amount, b.IsUser, b.PlacedAt); err != nil {
				return Listing{}, err
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Listing{}, err
	}
	return listing, nil
}

// DeleteListing removes a listing and its bids.
func (r *PostgresRepository) DeleteListing(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrListingNotFound
	}
	return nil
}

// AppendHistory inserts one activity row.
func (r *PostgresRepository) AppendHistory(ctx context.Context, entry HistoryEntry) error {
	_, err := r.db.Exec(ctx, `INSERT INTO market_history (id, kind, crop, price, quantity, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.ID, entry.Kind, entry.Crop, entry.Price, entry.Quantity, entry.Status, entry.CreatedAt)
	return err
}

// ListHistory returns the activity log newest-first.
func (r *PostgresRepository) ListHistory(ctx context.Context) ([]HistoryEntry, error) {
	rows, err := r.db.Query(ctx, `SELECT id, kind, crop, price, quantity, status, created_at
        FROM market_history ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HistoryEntry
	for rows.Next() {
		var entry HistoryEntry
		if err := rows.Scan(&entry.ID, &entry.Kind, &entry.Crop, &entry.Price, &entry.Quantity, &entry.Status, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entry.CreatedAt = entry.CreatedAt.UTC()
		out = append(out, entry)
	}
	return out, rows.Err()
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *PostgresRepository) listBids(ctx context.Context, q querier, listingID string) ([]Bid, error) {
	rows, err := q.Query(ctx, `SELECT id, bidder_name, amount, is_user, placed_at
        FROM bids WHERE listing_id = $1 ORDER BY placed_at DESC`, listingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bids := []Bid{}
	for rows.Next() {
		var b Bid
		if err := rows.Scan(&b.ID, &b.BidderName, &b.Amount, &b.IsUser, &b.PlacedAt); err != nil {
			return nil, err
		}
		b.PlacedAt = b.PlacedAt.UTC()
		bids = append(bids, b)
	}
	return bids, rows.Err()
}

func scanListing(row pgx.Row) (Listing, error) {
	var (
		listing   Listing
		endTime   *time.Time
		bidsCount int
	)
	if err := row.Scan(&listing.ID, &listing.SellerID, &listing.SellerName, &listing.Crop,
		&listing.Category, &listing.Price, &listing.StartingPrice, &listing.Quantity,
		&listing.Image, &listing.Location, &listing.Status, &listing.Type,
		&endTime, &bidsCount, &listing.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Listing{}, ErrListingNotFound
		}
		return Listing{}, err
	}
	listing.CreatedAt = listing.CreatedAt.UTC()
	if listing.Type == TypeAuction && endTime != nil {
		listing.Auction = &AuctionState{EndTime: endTime.UTC(), BidsCount: bidsCount, Bids: []Bid{}}
	}
	return listing, nil
}
