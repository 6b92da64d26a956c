package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lantern-wallet/lantern/internal/daemon"
	lanternerr "github.com/lantern-wallet/lantern/pkg/errors"
)

// RPCOpener opens engine instances backed by a remote wallet daemon.
type RPCOpener struct {
	limiter *daemon.RateLimiter
}

// NewRPCOpener creates an opener sharing the given rate limiter across
// all instances it opens.
func NewRPCOpener(limiter *daemon.RateLimiter) *RPCOpener {
	return &RPCOpener{limiter: limiter}
}

// Open restores the wallet on the daemon from its mnemonic and returns
// an engine bound to the request's node.
func (o *RPCOpener) Open(ctx context.Context, req OpenRequest) (Engine, error) {
	client := daemon.NewClient(req.Node, o.limiter)
	e := &rpcEngine{client: client}

	params := map[string]any{
		"restore_height": req.RestoreHeight,
		"filename":       "lantern",
		"seed":           req.Mnemonic,
		"autosave":       true,
	}
	if err := client.Call(ctx, "restore_deterministic_wallet", params, nil); err != nil {
		client.Close()
		return nil, mapEngineError(err)
	}
	return e, nil
}

// rpcEngine is an Engine over a wallet daemon's JSON-RPC interface.
type rpcEngine struct {
	client *daemon.Client
}

func (e *rpcEngine) Refresh(ctx context.Context) (Balance, error) {
	if err := e.client.Call(ctx, "refresh", nil, nil); err != nil {
		return Balance{}, mapEngineError(err)
	}
	return e.Balance(ctx)
}

func (e *rpcEngine) Balance(ctx context.Context) (Balance, error) {
	var result struct {
		Balance         uint64 `json:"balance"`
		UnlockedBalance uint64 `json:"unlocked_balance"`
	}
	if err := e.client.Call(ctx, "get_balance", map[string]any{"account_index": 0}, &result); err != nil {
		return Balance{}, mapEngineError(err)
	}
	return Balance{Total: result.Balance, Unlocked: result.UnlockedBalance}, nil
}

func (e *rpcEngine) Transfer(ctx context.Context, opts SendOptions) (SendResult, error) {
	params := map[string]any{
		"destinations": []map[string]any{
			{"address": opts.Address, "amount": opts.AmountAtomic},
		},
		"priority":   mapPriority(opts.Priority),
		"get_tx_key": true,
	}
	if opts.SubtractFee {
		params["subtract_fee_from_outputs"] = []int{0}
	}

	var result struct {
		TxHash string `json:"tx_hash"`
		Fee    uint64 `json:"fee"`
		Amount uint64 `json:"amount"`
	}
	if err := e.client.Call(ctx, "transfer", params, &result); err != nil {
		return SendResult{}, mapEngineError(err)
	}
	return SendResult{TxHash: result.TxHash, Fee: result.Fee, AmountAtomic: result.Amount}, nil
}

func (e *rpcEngine) SweepAll(ctx context.Context, address string) ([]SendResult, error) {
	var result struct {
		TxHashList []string `json:"tx_hash_list"`
		FeeList    []uint64 `json:"fee_list"`
		AmountList []uint64 `json:"amount_list"`
	}
	params := map[string]any{"address": address, "account_index": 0}
	if err := e.client.Call(ctx, "sweep_all", params, &result); err != nil {
		return nil, mapEngineError(err)
	}

	out := make([]SendResult, 0, len(result.TxHashList))
	for i, hash := range result.TxHashList {
		r := SendResult{TxHash: hash}
		if i < len(result.FeeList) {
			r.Fee = result.FeeList[i]
		}
		if i < len(result.AmountList) {
			r.AmountAtomic = result.AmountList[i]
		}
		out = append(out, r)
	}
	return out, nil
}

// rpcTransfer is one entry of a get_transfers response.
type rpcTransfer struct {
	TxID          string `json:"txid"`
	Type          string `json:"type"`
	Amount        uint64 `json:"amount"`
	Fee           uint64 `json:"fee"`
	Height        uint64 `json:"height"`
	Timestamp     int64  `json:"timestamp"`
	Confirmations uint64 `json:"confirmations"`
}

func (e *rpcEngine) Transactions(ctx context.Context) ([]Transaction, error) {
	var result struct {
		In      []rpcTransfer `json:"in"`
		Out     []rpcTransfer `json:"out"`
		Pending []rpcTransfer `json:"pending"`
		Pool    []rpcTransfer `json:"pool"`
	}
	params := map[string]any{"in": true, "out": true, "pending": true, "pool": true}
	if err := e.client.Call(ctx, "get_transfers", params, &result); err != nil {
		return nil, mapEngineError(err)
	}

	var out []Transaction
	for _, group := range [][]rpcTransfer{result.In, result.Pool} {
		for _, t := range group {
			out = append(out, toTransaction(t, DirectionIn))
		}
	}
	for _, group := range [][]rpcTransfer{result.Out, result.Pending} {
		for _, t := range group {
			out = append(out, toTransaction(t, DirectionOut))
		}
	}
	return out, nil
}

func toTransaction(t rpcTransfer, dir Direction) Transaction {
	tx := Transaction{
		TxHash:        t.TxID,
		Direction:     dir,
		AmountAtomic:  t.Amount,
		Fee:           t.Fee,
		Height:        t.Height,
		Confirmations: t.Confirmations,
	}
	if t.Timestamp > 0 {
		tx.Timestamp = time.Unix(t.Timestamp, 0).UTC()
	}
	return tx
}

func (e *rpcEngine) Height(ctx context.Context) (uint64, uint64, error) {
	var result struct {
		Height uint64 `json:"height"`
	}
	if err := e.client.Call(ctx, "get_height", nil, &result); err != nil {
		return 0, 0, mapEngineError(err)
	}

	info, err := e.client.GetInfo(ctx)
	if err != nil {
		return result.Height, result.Height, nil
	}
	target := info.TargetHeight
	if target == 0 {
		target = info.Height
	}
	return result.Height, target, nil
}

func (e *rpcEngine) Close(ctx context.Context, save bool) error {
	defer e.client.Close()
	if save {
		if err := e.client.Call(ctx, "store", nil, nil); err != nil {
			return mapEngineError(err)
		}
	}
	if err := e.client.Call(ctx, "close_wallet", nil, nil); err != nil {
		return mapEngineError(err)
	}
	return nil
}

// mapPriority maps the abstract priority to the daemon's native levels.
func mapPriority(p Priority) int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityHigh:
		return 4
	default:
		return 2
	}
}

// mapEngineError translates daemon error strings into the error
// taxonomy callers switch on.
func mapEngineError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "not enough money") || strings.Contains(msg, "not enough unlocked money"):
		return lanternerr.WithCause(lanternerr.ErrInsufficientFunds, err)
	case strings.Contains(msg, "invalid address"):
		return lanternerr.WithCause(lanternerr.ErrInvalidAddress, err)
	default:
		return fmt.Errorf("wallet daemon: %w", err)
	}
}
