package chain

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"roboveda/internal/pkg/errs"
	"roboveda/internal/pkg/logx"
	"roboveda/internal/store"
)

// PersistedTxLimit caps how many transactions survive a restart. The
// in-memory list is unbounded.
const PersistedTxLimit = 50

// Snapshot is an immutable view of the wallet state. Address, balance and
// ENS fields are only meaningful while Status is StatusConnected.
type Snapshot struct {
	Status           Status
	Address          string
	ChainID          int64
	Balance          *big.Int
	ENSName          string
	ENSAvatar        string
	CurrentChain     *Chain
	IsChainSwitching bool
	Error            string

	Transactions        []Transaction
	PendingTransactions []Transaction
}

// persistedChain is the allow-listed subset that survives a restart: the most
// recent transactions only. Connection state never persists.
type persistedChain struct {
	Transactions []Transaction `json:"transactions"`
}

// Store owns the wallet slice of client state.
type Store struct {
	provider Provider
	storage  store.Storage
	logger   zerolog.Logger

	mu           sync.Mutex
	status       Status
	address      string
	chainID      int64
	balance      *big.Int
	ensName      string
	ensAvatar    string
	currentChain *Chain
	switching    bool
	errMsg       string

	transactions []Transaction
	pending      []Transaction

	subs    map[int]func(Snapshot)
	nextSub int
}

// New builds a Store bound to a wallet provider and a persistence bucket.
// The persisted transaction log is restored and the pending view is
// recomputed from it eagerly, so a reload never leaves a stale pending set.
func New(provider Provider, storage store.Storage) *Store {
	s := &Store{
		provider: provider,
		storage:  storage,
		logger:   logx.Component("ChainStore"),
		status:   StatusDisconnected,
		subs:     make(map[int]func(Snapshot)),
	}

	var saved persistedChain
	ok, err := store.LoadJSON(storage, store.KeyTransactions, &saved)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to restore persisted transactions.")
	} else if ok {
		s.transactions = saved.Transactions
		s.pending = filterPending(s.transactions)
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
		Status:              s.status,
		Address:             s.address,
		ChainID:             s.chainID,
		Balance:             s.balance,
		ENSName:             s.ensName,
		ENSAvatar:           s.ensAvatar,
		CurrentChain:        s.currentChain,
		IsChainSwitching:    s.switching,
		Error:               s.errMsg,
		Transactions:        append([]Transaction(nil), s.transactions...),
		PendingTransactions: append([]Transaction(nil), s.pending...),
	}
}

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

func (s *Store) persistTxLocked() {
	view := persistedChain{Transactions: s.transactions}
	if len(view.Transactions) > PersistedTxLimit {
		view.Transactions = view.Transactions[:PersistedTxLimit]
	}
	if err := store.SaveJSON(s.storage, store.KeyTransactions, view); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to persist transaction log.")
	}
}

// ConnectWallet runs the connector handshake. It is only meaningful from the
// disconnected and error states; calls made while connecting or connected are
// ignored. On success the whole connected tuple is committed in one
// transition. On failure the state moves to error and the error is returned
// so the wallet UI can display it. There is no automatic retry.
func (s *Store) ConnectWallet(ctx context.Context, connectorID string) error {
	s.mu.Lock()
	if s.status == StatusConnecting || s.status == StatusConnected {
		s.mu.Unlock()
		return nil
	}
	s.status = StatusConnecting
	s.errMsg = ""
	s.mu.Unlock()
	s.notify()

	result, err := s.provider.Connect(ctx, connectorID)

	s.mu.Lock()
	if err != nil {
		s.status = StatusError
		s.errMsg = providerMessage(err)
		s.mu.Unlock()
		s.notify()
		return err
	}

	s.status = StatusConnected
	s.address = result.Address
	s.chainID = result.ChainID
	s.balance = result.Balance
	s.ensName = result.ENSName
	s.ensAvatar = result.ENSAvatar
	if c, ok := ChainByID(result.ChainID); ok {
		s.currentChain = &c
	} else {
		s.currentChain = nil
	}
	s.mu.Unlock()
	s.notify()

	s.logger.Info().Str("connector", connectorID).Int64("chain_id", result.ChainID).Msg("Wallet connected.")
	return nil
}

// DisconnectWallet unconditionally resets the wallet tuple to the initial
// disconnected state. Idempotent; the transaction log is left alone.
func (s *Store) DisconnectWallet(ctx context.Context) {
	if err := s.provider.Disconnect(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Provider disconnect failed; resetting local state anyway.")
	}

	s.mu.Lock()
	s.status = StatusDisconnected
	s.address = ""
	s.chainID = 0
	s.balance = nil
	s.ensName = ""
	s.ensAvatar = ""
	s.currentChain = nil
	s.switching = false
	s.errMsg = ""
	s.mu.Unlock()
	s.notify()
}

// SwitchChain asks the provider to change the active network. On failure the
// previous chain stays authoritative: the displayed chain must never desync
// from the provider's actual chain.
func (s *Store) SwitchChain(ctx context.Context, chainID int64) error {
	target, ok := ChainByID(chainID)
	if !ok {
		return errs.NewError(errs.ErrInvalidChain)
	}

	s.mu.Lock()
	s.switching = true
	s.mu.Unlock()
	s.notify()

	err := s.provider.SwitchChain(ctx, chainID)

	s.mu.Lock()
	s.switching = false
	if err != nil {
		s.mu.Unlock()
		s.notify()
		return err
	}

	s.chainID = chainID
	s.currentChain = &target
	s.mu.Unlock()
	s.notify()
	return nil
}

// AddTransaction prepends tx to the log and refreshes the pending view.
func (s *Store) AddTransaction(tx Transaction) {
	if tx.Timestamp.IsZero() {
		tx.Timestamp = time.Now()
	}

	s.mu.Lock()
	s.transactions = append([]Transaction{tx}, s.transactions...)
	s.pending = filterPending(s.transactions)
	s.persistTxLocked()
	s.mu.Unlock()
	s.notify()
}

// UpdateTransaction merges the partial update into the transaction with the
// given hash. A terminal status removes the hash from the pending view.
// Unknown hashes are ignored.
func (s *Store) UpdateTransaction(hash string, update TxUpdate) {
	s.mu.Lock()
	changed := false
	for i := range s.transactions {
		if s.transactions[i].Hash != hash {
			continue
		}
		if update.Status != nil {
			s.transactions[i].Status = *update.Status
		}
		if update.Value != nil {
			s.transactions[i].Value = update.Value
		}
		if update.ChainID != nil {
			s.transactions[i].ChainID = *update.ChainID
		}
		changed = true
		break
	}

	if !changed {
		s.mu.Unlock()
		return
	}

	s.pending = filterPending(s.transactions)
	s.persistTxLocked()
	s.mu.Unlock()
	s.notify()

	if update.Status != nil && update.Status.Terminal() {
		s.logger.Debug().Str("hash", hash).Str("status", string(*update.Status)).Msg("Transaction settled.")
	}
}

// ClearTransactions empties the log and the pending view.
func (s *Store) ClearTransactions() {
	s.mu.Lock()
	s.transactions = nil
	s.pending = nil
	s.persistTxLocked()
	s.mu.Unlock()
	s.notify()
}

// filterPending derives the pending view from the source list. The pending
// set is always recomputed, never maintained independently, so it cannot
// diverge.
func filterPending(txs []Transaction) []Transaction {
	var out []Transaction
	for _, tx := range txs {
		if tx.Status == TxPending {
			out = append(out, tx)
		}
	}
	return out
}

// providerMessage extracts the user-facing message from a provider error.
func providerMessage(err error) string {
	var ce *errs.CustomError
	if errors.As(err, &ce) {
		return ce.Message
	}
	return err.Error()
}
