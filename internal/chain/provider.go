package chain

import (
	"context"
	"math/big"
)

// ConnectResult is the tuple a provider hands back on a successful handshake.
// ENS fields are optional; an empty string means no record.
type ConnectResult struct {
	Address   string
	ChainID   int64
	Balance   *big.Int
	ENSName   string
	ENSAvatar string
}

// Provider is the external wallet agent (browser extension, WalletConnect
// bridge, hardware signer). Implementations are out of this package's
// control; all calls may block and may reject. Provider-pushed account and
// chain change events are intentionally not part of this contract.
type Provider interface {
	// Connect performs the connector handshake and returns the connected
	// account tuple.
	Connect(ctx context.Context, connectorID string) (ConnectResult, error)

	// Disconnect tears down the provider session. Best-effort.
	Disconnect(ctx context.Context) error

	// SwitchChain asks the provider to change the active network. On error
	// the previous chain remains authoritative.
	SwitchChain(ctx context.Context, chainID int64) error
}
