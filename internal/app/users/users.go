/*
Package users provides persistence for user accounts.

Two implementations exist: a PostgreSQL store used when a database DSN is
configured, and an in-memory store used in limited mode so the API keeps
working without a database.
*/
package users

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when no account matches the lookup.
	ErrNotFound = errors.New("users: account not found")

	// ErrDuplicate is returned when the email, username, or wallet address
	// is already taken.
	ErrDuplicate = errors.New("users: account already exists")
)

// Account is the stored representation of a user.
type Account struct {
	ID            string
	Email         string
	Username      string
	PasswordHash  string
	WalletAddress string
	AvatarURL     string
	Preferences   json.RawMessage
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CreateParams holds the fields required to create an account.
type CreateParams struct {
	Email        string
	Username     string
	PasswordHash string
	Preferences  json.RawMessage
}

// UpdateParams is a partial account update. Nil fields are left unchanged.
type UpdateParams struct {
	Username      *string
	AvatarURL     *string
	WalletAddress *string
	Preferences   json.RawMessage
}

// Store is the account persistence interface.
type Store interface {
	Create(ctx context.Context, params CreateParams) (Account, error)
	GetByID(ctx context.Context, id string) (Account, error)
	GetByEmail(ctx context.Context, email string) (Account, error)
	Update(ctx context.Context, id string, params UpdateParams) (Account, error)
}
