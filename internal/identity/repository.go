package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrUserNotFound occurs when a lookup misses.
var ErrUserNotFound = errors.New("user not found")

// Repository persists users.
type Repository interface {
	Create(ctx context.Context, user User) error
	FindByPhone(ctx context.Context, phone string) (User, error)
	FindByID(ctx context.Context, id string) (User, error)
	Update(ctx context.Context, user User) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed identity repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, phone, name, village, role, kyc_status, otp_hash, otp_expires_at,
        token_version, created_at, last_login`

// Create inserts a new user.
func (r *PostgresRepository) Create(ctx context.Context, user User) error {
	userID, err := uuid.Parse(user.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO users (`+userColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		userID, user.Phone, user.Name, user.Village, user.Role, user.KYCStatus,
		user.OTPHash, nullableTime(user.OTPExpiresAt), user.TokenVersion,
		user.CreatedAt.UTC(), nullableTime(user.LastLogin))
	return err
}

// FindByPhone fetches a user by phone number.
func (r *PostgresRepository) FindByPhone(ctx context.Context, phone string) (User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE phone = $1`, phone)
	return scanUser(row)
}

// FindByID fetches a user by identifier.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return User{}, ErrUserNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
	return scanUser(row)
}

// Update rewrites the user's mutable fields.
func (r *PostgresRepository) Update(ctx context.Context, user User) error {
	userID, err := uuid.Parse(user.ID)
	if err != nil {
		return err
	}
	cmd, err := r.db.Exec(ctx, `UPDATE users SET name = $1, village = $2, role = $3,
        kyc_status = $4, otp_hash = $5, otp_expires_at = $6, token_version = $7, last_login = $8
        WHERE id = $9`,
		user.Name, user.Village, user.Role, user.KYCStatus, user.OTPHash,
		nullableTime(user.OTPExpiresAt), user.TokenVersion, nullableTime(user.LastLogin), userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (User, error) {
	var (
		id           uuid.UUID
		user         User
		otpExpiresAt *time.Time
		lastLogin    *time.Time
	)
	if err := row.Scan(&id, &user.Phone, &user.Name, &user.Village, &user.Role, &user.KYCStatus,
		&user.OTPHash, &otpExpiresAt, &user.TokenVersion, &user.CreatedAt, &lastLogin); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, err
	}
	user.ID = id.String()
	user.CreatedAt = user.CreatedAt.UTC()
	if otpExpiresAt != nil {
		user.OTPExpiresAt = otpExpiresAt.UTC()
	}
	if lastLogin != nil {
		user.LastLogin = lastLogin.UTC()
	}
	return user, nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}
