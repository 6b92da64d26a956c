// Package engine adapts a remote wallet engine to the lifecycle layer:
// exactly one live instance per unlocked session, single-flight sync,
// and local validation in front of every spend.
package engine

import (
	"context"
	"time"

	"github.com/lantern-wallet/lantern/internal/nodes"
	"github.com/lantern-wallet/lantern/internal/wallet"
)

// Balance is a wallet balance in atomic units. Unlocked is the portion
// past the confirmation window and spendable now.
type Balance struct {
	Total    uint64 `json:"total"`
	Unlocked uint64 `json:"unlocked"`
}

// Priority is the abstract transaction priority.
type Priority string

// Transaction priorities.
const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// Direction marks a transaction as incoming or outgoing.
type Direction string

// Transaction directions.
const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// Transaction is one wallet transaction. Timestamp is the transaction's
// own time when the engine reports one; BlockTimestamp is the time of
// the containing block, used as a sort fallback.
type Transaction struct {
	TxHash         string    `json:"tx_hash"`
	Direction      Direction `json:"direction"`
	AmountAtomic   uint64    `json:"amount_atomic"`
	Fee            uint64    `json:"fee"`
	Height         uint64    `json:"height"`
	Timestamp      time.Time `json:"timestamp"`
	BlockTimestamp time.Time `json:"block_timestamp,omitempty"`
	Confirmations  uint64    `json:"confirmations"`
}

// SortTime is the sort key for history ordering: the transaction's own
// timestamp, else the containing block's, else the zero time.
func (t Transaction) SortTime() time.Time {
	if !t.Timestamp.IsZero() {
		return t.Timestamp
	}
	return t.BlockTimestamp
}

// SendOptions describes an outgoing payment.
type SendOptions struct {
	Address           string
	AmountAtomic      uint64
	Priority          Priority
	SubtractFee       bool
	RecipientIdentity string
	NoteReference     string
}

// SendResult is the outcome of a broadcast transaction.
type SendResult struct {
	TxHash       string `json:"tx_hash"`
	Fee          uint64 `json:"fee"`
	AmountAtomic uint64 `json:"amount_atomic"`
}

// SyncProgress reports wallet scan progress.
type SyncProgress struct {
	Height uint64
	Target uint64
	Done   bool
}

// Engine is a live wallet engine instance bound to one node.
type Engine interface {
	// Refresh scans the chain up to the node's tip and returns the
	// resulting balance.
	Refresh(ctx context.Context) (Balance, error)

	// Balance returns the last known balance without scanning.
	Balance(ctx context.Context) (Balance, error)

	// Transfer broadcasts a payment. Options are pre-validated by the
	// adapter.
	Transfer(ctx context.Context, opts SendOptions) (SendResult, error)

	// SweepAll sends the entirety of unlocked funds to address, possibly
	// across several transactions.
	SweepAll(ctx context.Context, address string) ([]SendResult, error)

	// Transactions returns all known transactions in engine order.
	Transactions(ctx context.Context) ([]Transaction, error)

	// Height returns the engine's scanned height and the chain target.
	Height(ctx context.Context) (height, target uint64, err error)

	// Close shuts the instance down, optionally persisting local wallet
	// state first.
	Close(ctx context.Context, save bool) error
}

// OpenRequest carries everything needed to open or restore an engine
// instance.
type OpenRequest struct {
	Mnemonic      string
	Network       wallet.Network
	RestoreHeight uint64
	Node          nodes.Node
}

// Opener creates engine instances. The RPC implementation talks to a
// remote wallet daemon; tests substitute a fake.
type Opener interface {
	Open(ctx context.Context, req OpenRequest) (Engine, error)
}
