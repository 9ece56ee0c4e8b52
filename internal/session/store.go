package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"roboveda/internal/pkg/errs"
	"roboveda/internal/pkg/logx"
	"roboveda/internal/store"
)

// Snapshot is an immutable view of the session state. Subscribers receive a
// complete snapshot per commit and never observe a torn intermediate.
type Snapshot struct {
	User            *User
	IsAuthenticated bool
	IsLoading       bool
	Error           string
}

// persistedSession is the allow-listed subset that survives a restart.
type persistedSession struct {
	User            *User `json:"user"`
	IsAuthenticated bool  `json:"isAuthenticated"`
}

// Store owns the session slice of client state. All mutation goes through its
// action methods; reads go through Snapshot or a subscription.
//
// Overlapping Login/Signup/RefreshSession calls are resolved by a per-call
// generation counter: each remote call records the generation it started
// under, and a response whose generation is no longer current is discarded,
// so the last-started call wins deterministically.
type Store struct {
	api     API
	storage store.Storage
	logger  zerolog.Logger

	mu        sync.Mutex
	user      *User
	isLoading bool
	errMsg    string
	gen       uint64

	subs    map[int]func(Snapshot)
	nextSub int
}

// New builds a Store bound to a session API and a persistence bucket.
// Previously persisted identity is restored immediately; IsAuthenticated is
// always derived from the user pointer, never trusted from storage.
func New(api API, storage store.Storage) *Store {
	s := &Store{
		api:     api,
		storage: storage,
		logger:  logx.Component("SessionStore"),
		subs:    make(map[int]func(Snapshot)),
	}

	var saved persistedSession
	ok, err := store.LoadJSON(storage, store.KeySession, &saved)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to restore persisted session.")
	} else if ok {
		s.user = withDefaults(saved.User)
	}

	return s
}

// Snapshot returns the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers a listener invoked after every commit. The returned
// function removes the listener.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		User:            s.user,
		IsAuthenticated: s.user != nil,
		IsLoading:       s.isLoading,
		Error:           s.errMsg,
	}
}

// notify delivers the current snapshot to all listeners. Called after the
// lock is released so listeners may call back into the store.
func (s *Store) notify() {
	s.mu.Lock()
	snap := s.snapshotLocked()
	listeners := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}

// persist writes the allow-listed session view. Persistence failures are
// logged, never surfaced as action failures.
func (s *Store) persistLocked() {
	view := persistedSession{User: s.user, IsAuthenticated: s.user != nil}
	if err := store.SaveJSON(s.storage, store.KeySession, view); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to persist session state.")
	}
}

// Login authenticates against the session backend. On failure the error
// message lands in the store state and the error is also returned so the UI
// can branch synchronously (e.g. stay on the form).
func (s *Store) Login(ctx context.Context, email, password string) error {
	s.mu.Lock()
	s.isLoading = true
	s.errMsg = ""
	s.gen++
	gen := s.gen
	s.mu.Unlock()
	s.notify()

	user, err := s.api.Login(ctx, email, password)
	return s.settleAuth(gen, user, err)
}

// Signup registers a new account and signs it in. Same contract as Login.
func (s *Store) Signup(ctx context.Context, email, password, username string) error {
	s.mu.Lock()
	s.isLoading = true
	s.errMsg = ""
	s.gen++
	gen := s.gen
	s.mu.Unlock()
	s.notify()

	user, err := s.api.Signup(ctx, email, password, username)
	return s.settleAuth(gen, user, err)
}

// settleAuth commits the result of a login/signup exchange, discarding it
// when a newer call has superseded this one.
func (s *Store) settleAuth(gen uint64, user *User, err error) error {
	s.mu.Lock()
	if s.gen != gen {
		// A newer auth call owns the state now; this response is stale.
		s.mu.Unlock()
		s.logger.Debug().Msg("Discarding stale auth response.")
		return nil
	}

	if err != nil {
		s.isLoading = false
		s.errMsg = errorMessage(err)
		s.mu.Unlock()
		s.notify()
		return err
	}

	s.user = withDefaults(user)
	s.isLoading = false
	s.errMsg = ""
	s.persistLocked()
	s.mu.Unlock()
	s.notify()
	return nil
}

// Logout clears local identity immediately. The server-side invalidation is
// fire-and-forget: the local state never blocks on network confirmation.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	s.gen++
	s.user = nil
	s.errMsg = ""
	s.isLoading = false
	s.persistLocked()
	s.mu.Unlock()
	s.notify()

	go func() {
		// The transport applies its own deadline.
		if err := s.api.Logout(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn().Err(err).Msg("Server-side logout failed.")
		}
	}()
}

// RefreshSession revalidates the cookie-bound session. Any failure or an
// explicit "no session" answer clears local identity.
func (s *Store) RefreshSession(ctx context.Context) {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	user, err := s.api.Session(ctx)

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return
	}

	if err != nil || user == nil {
		if err != nil {
			s.logger.Debug().Err(err).Msg("Session refresh failed; signing out locally.")
		}
		s.user = nil
		s.errMsg = ""
		s.isLoading = false
		s.persistLocked()
		s.mu.Unlock()
		s.notify()
		return
	}

	s.user = withDefaults(user)
	s.persistLocked()
	s.mu.Unlock()
	s.notify()
}

// UpdateUser shallow-merges the partial update into the current user and
// bumps UpdatedAt. No-op when signed out.
func (s *Store) UpdateUser(update UserUpdate) {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return
	}

	u := *s.user
	if update.Email != nil {
		u.Email = *update.Email
	}
	if update.Username != nil {
		u.Username = *update.Username
	}
	if update.WalletAddress != nil {
		u.WalletAddress = *update.WalletAddress
	}
	if update.Avatar != nil {
		u.Avatar = *update.Avatar
	}
	u.UpdatedAt = time.Now()

	s.user = &u
	s.persistLocked()
	s.mu.Unlock()
	s.notify()
}

// UpdatePreferences shallow-merges the partial update into the current
// preferences and bumps UpdatedAt. No-op when signed out.
func (s *Store) UpdatePreferences(update PreferencesUpdate) {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return
	}

	u := *s.user
	prefs := DefaultPreferences()
	if u.Preferences != nil {
		prefs = *u.Preferences
	}
	if update.Theme != nil {
		prefs.Theme = *update.Theme
	}
	if update.Notifications != nil {
		prefs.Notifications = *update.Notifications
	}
	if update.Language != nil {
		prefs.Language = *update.Language
	}
	if update.Newsletter != nil {
		prefs.Newsletter = *update.Newsletter
	}
	u.Preferences = &prefs
	u.UpdatedAt = time.Now()

	s.user = &u
	s.persistLocked()
	s.mu.Unlock()
	s.notify()
}

// errorMessage extracts the user-facing message from a store action error.
func errorMessage(err error) string {
	var ce *errs.CustomError
	if errors.As(err, &ce) {
		return ce.Message
	}
	return err.Error()
}
