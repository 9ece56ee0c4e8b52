/*
Package chain owns the wallet connectivity state machine and the transaction
log. Connection state follows disconnected → connecting → connected, with
error reachable from connecting and disconnected reachable from anywhere via
an explicit disconnect. The connected tuple (address, chain, balance, ENS) is
committed in a single transition; subscribers never see it half-populated.
*/
package chain

import (
	"math/big"
	"time"
)

// Status is the wallet connection state.
type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusError        Status = "error"
)

// Chain describes a supported network.
type Chain struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Explorer string `json:"explorer"`
}

// supportedChains is the built-in network registry.
var supportedChains = []Chain{
	{ID: 1, Name: "Ethereum", Symbol: "ETH", Explorer: "https://etherscan.io"},
	{ID: 10, Name: "Optimism", Symbol: "ETH", Explorer: "https://optimistic.etherscan.io"},
	{ID: 137, Name: "Polygon", Symbol: "MATIC", Explorer: "https://polygonscan.com"},
	{ID: 42161, Name: "Arbitrum One", Symbol: "ETH", Explorer: "https://arbiscan.io"},
	{ID: 11155111, Name: "Sepolia", Symbol: "ETH", Explorer: "https://sepolia.etherscan.io"},
}

// ChainByID looks up a supported chain.
func ChainByID(id int64) (Chain, bool) {
	for _, c := range supportedChains {
		if c.ID == id {
			return c, true
		}
	}
	return Chain{}, false
}

// SupportedChains returns a copy of the network registry.
func SupportedChains() []Chain {
	out := make([]Chain, len(supportedChains))
	copy(out, supportedChains)
	return out
}

// TxStatus is the lifecycle state of a submitted transaction.
type TxStatus string

const (
	TxPending   TxStatus = "pending"
	TxConfirmed TxStatus = "confirmed"
	TxFailed    TxStatus = "failed"
	TxCancelled TxStatus = "cancelled"
)

// Terminal reports whether the status ends the pending lifecycle.
func (s TxStatus) Terminal() bool {
	return s == TxConfirmed || s == TxFailed || s == TxCancelled
}

// Transaction is one submitted on-chain operation, keyed by Hash.
// Value is in the chain's smallest unit.
type Transaction struct {
	Hash      string    `json:"hash"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Value     *big.Int  `json:"value"`
	ChainID   int64     `json:"chainId"`
	Status    TxStatus  `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// TxUpdate is a partial update merged into a transaction by hash.
type TxUpdate struct {
	Status  *TxStatus
	Value   *big.Int
	ChainID *int64
}
