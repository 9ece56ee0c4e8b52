package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func create(t *testing.T, s Store, email, username string) Account {
	t.Helper()
	account, err := s.Create(context.Background(), CreateParams{
		Email:        email,
		Username:     username,
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	return account
}

func TestMemoryStoreCreateAndLookup(t *testing.T) {
	s := NewMemoryStore()
	account := create(t, s, "alice@example.com", "alice_1")
	assert.NotEmpty(t, account.ID)
	assert.False(t, account.CreatedAt.IsZero())

	byID, err := s.GetByID(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Equal(t, account.Email, byID.Email)

	// Email lookup is case-insensitive.
	byEmail, err := s.GetByEmail(context.Background(), "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, account.ID, byEmail.ID)

	_, err = s.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreRejectsDuplicates(t *testing.T) {
	s := NewMemoryStore()
	create(t, s, "alice@example.com", "alice_1")

	_, err := s.Create(context.Background(), CreateParams{
		Email:    "alice@example.com",
		Username: "other",
	})
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = s.Create(context.Background(), CreateParams{
		Email:    "other@example.com",
		Username: "alice_1",
	})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestMemoryStorePartialUpdate(t *testing.T) {
	s := NewMemoryStore()
	account := create(t, s, "alice@example.com", "alice_1")

	newName := "renamed"
	updated, err := s.Update(context.Background(), account.ID, UpdateParams{Username: &newName})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Username)
	assert.Equal(t, account.Email, updated.Email)
	assert.True(t, updated.UpdatedAt.After(account.UpdatedAt) || updated.UpdatedAt.Equal(account.UpdatedAt))

	_, err = s.Update(context.Background(), "missing", UpdateParams{Username: &newName})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreWalletUniqueness(t *testing.T) {
	s := NewMemoryStore()
	a := create(t, s, "alice@example.com", "alice_1")
	b := create(t, s, "bob@example.com", "bob_1")

	wallet := "0xABC"
	_, err := s.Update(context.Background(), a.ID, UpdateParams{WalletAddress: &wallet})
	require.NoError(t, err)

	sameWallet := "0xabc"
	_, err = s.Update(context.Background(), b.ID, UpdateParams{WalletAddress: &sameWallet})
	assert.ErrorIs(t, err, ErrDuplicate)
}
