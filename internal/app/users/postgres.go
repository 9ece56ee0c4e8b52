package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"roboveda/internal/app/db"
)

const accountColumns = `id, email, username, password_hash,
	COALESCE(wallet_address, ''), avatar_url, preferences, created_at, updated_at`

// PostgresStore implements Store on top of a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an existing pool. The pool's lifetime is owned by
// the caller.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Create(ctx context.Context, params CreateParams) (Account, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO users (email, username, password_hash, preferences)
		VALUES ($1, $2, $3, $4)
		RETURNING `+accountColumns,
		params.Email, params.Username, params.PasswordHash, params.Preferences,
	)

	account, err := scanAccount(row)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Account{}, ErrDuplicate
		}
		return Account{}, fmt.Errorf("create user: %w", err)
	}
	return account, nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (Account, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM users WHERE id = $1`, id)
	return s.get(row)
}

func (s *PostgresStore) GetByEmail(ctx context.Context, email string) (Account, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM users WHERE email = $1`, email)
	return s.get(row)
}

func (s *PostgresStore) get(row pgx.Row) (Account, error) {
	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
			return Account{}, ErrNotFound
		}
		return Account{}, fmt.Errorf("get user: %w", err)
	}
	return account, nil
}

func (s *PostgresStore) Update(ctx context.Context, id string, params UpdateParams) (Account, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE users SET
			username = COALESCE($2, username),
			avatar_url = COALESCE($3, avatar_url),
			wallet_address = COALESCE($4, wallet_address),
			preferences = COALESCE($5, preferences),
			updated_at = now()
		WHERE id = $1
		RETURNING `+accountColumns,
		id, params.Username, params.AvatarURL, params.WalletAddress, params.Preferences,
	)

	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrNotFound
		}
		if db.IsUniqueViolation(err) {
			return Account{}, ErrDuplicate
		}
		return Account{}, fmt.Errorf("update user: %w", err)
	}
	return account, nil
}

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(
		&a.ID, &a.Email, &a.Username, &a.PasswordHash,
		&a.WalletAddress, &a.AvatarURL, &a.Preferences,
		&a.CreatedAt, &a.UpdatedAt,
	)
	return a, err
}
