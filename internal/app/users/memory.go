package users

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is the limited-mode account store. Accounts live only for the
// process lifetime.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]Account
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{accounts: make(map[string]Account)}
}

func (s *MemoryStore) Create(_ context.Context, params CreateParams) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.accounts {
		if strings.EqualFold(a.Email, params.Email) || a.Username == params.Username {
			return Account{}, ErrDuplicate
		}
	}

	now := time.Now().UTC()
	account := Account{
		ID:           uuid.NewString(),
		Email:        params.Email,
		Username:     params.Username,
		PasswordHash: params.PasswordHash,
		Preferences:  params.Preferences,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.accounts[account.ID] = account
	return account, nil
}

func (s *MemoryStore) GetByID(_ context.Context, id string) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[id]
	if !ok {
		return Account{}, ErrNotFound
	}
	return account, nil
}

func (s *MemoryStore) GetByEmail(_ context.Context, email string) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.accounts {
		if strings.EqualFold(a.Email, email) {
			return a, nil
		}
	}
	return Account{}, ErrNotFound
}

func (s *MemoryStore) Update(_ context.Context, id string, params UpdateParams) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return Account{}, ErrNotFound
	}

	if params.WalletAddress != nil && *params.WalletAddress != "" {
		for otherID, a := range s.accounts {
			if otherID != id && strings.EqualFold(a.WalletAddress, *params.WalletAddress) {
				return Account{}, ErrDuplicate
			}
		}
	}

	if params.Username != nil {
		account.Username = *params.Username
	}
	if params.AvatarURL != nil {
		account.AvatarURL = *params.AvatarURL
	}
	if params.WalletAddress != nil {
		account.WalletAddress = *params.WalletAddress
	}
	if params.Preferences != nil {
		account.Preferences = params.Preferences
	}
	account.UpdatedAt = time.Now().UTC()
	s.accounts[id] = account
	return account, nil
}
