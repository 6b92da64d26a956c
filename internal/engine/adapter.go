package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/lantern-wallet/lantern/internal/config"
	"github.com/lantern-wallet/lantern/internal/wallet"
	lanternerr "github.com/lantern-wallet/lantern/pkg/errors"
)

// Adapter owns the single live engine instance of an unlocked session.
// It is bound to wallet materials at unlock and unbound at lock; every
// operation on an unbound adapter fails with WalletNotReady rather than
// attempting an implicit unlock.
type Adapter struct {
	opener Opener
	logger config.Logger

	mu       sync.Mutex
	request  *OpenRequest
	instance Engine
	progress func(SyncProgress)

	syncGroup singleflight.Group
}

// NewAdapter creates an unbound adapter.
func NewAdapter(opener Opener, logger config.Logger) *Adapter {
	return &Adapter{opener: opener, logger: logger}
}

// Bind attaches wallet materials. Called when the session reaches
// Ready; the engine itself is opened lazily on first use.
func (a *Adapter) Bind(req OpenRequest) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.request = &req
}

// Rebind swaps the node of an existing binding, so the next chain
// operation reconnects against the new endpoint. The caller disposes
// the old instance first.
func (a *Adapter) Rebind(req OpenRequest) {
	a.Bind(req)
}

// Unbind detaches wallet materials. Called on lock and delete.
func (a *Adapter) Unbind() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.request = nil
}

// SetProgress installs the sync progress callback.
func (a *Adapter) SetProgress(fn func(SyncProgress)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.progress = fn
}

// EnsureInstance returns the session's engine instance, opening one on
// first call. Fails with WalletNotReady when the adapter is unbound.
func (a *Adapter) EnsureInstance(ctx context.Context) (Engine, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ensureLocked(ctx)
}

func (a *Adapter) ensureLocked(ctx context.Context) (Engine, error) {
	if a.request == nil {
		return nil, lanternerr.ErrWalletNotReady
	}
	if a.instance != nil {
		return a.instance, nil
	}

	instance, err := a.opener.Open(ctx, *a.request)
	if err != nil {
		return nil, fmt.Errorf("opening wallet engine: %w", err)
	}
	a.instance = instance
	return instance, nil
}

// Dispose closes the live instance, optionally saving local wallet
// state. The binding survives, so a later operation reconnects; callers
// switching nodes Rebind first. Disposing with no live instance is a
// no-op.
func (a *Adapter) Dispose(ctx context.Context, save bool) error {
	a.mu.Lock()
	instance := a.instance
	a.instance = nil
	a.mu.Unlock()

	if instance == nil {
		return nil
	}
	if err := instance.Close(ctx, save); err != nil {
		return fmt.Errorf("closing wallet engine: %w", err)
	}
	return nil
}

// Sync refreshes the wallet against the chain and returns the resulting
// balance. Concurrent calls coalesce into a single refresh; every
// caller receives the same result. Failures clear progress state and
// propagate, because a stale balance is a correctness problem.
func (a *Adapter) Sync(ctx context.Context) (Balance, error) {
	result, err, _ := a.syncGroup.Do("sync", func() (any, error) {
		instance, err := a.EnsureInstance(ctx)
		if err != nil {
			return Balance{}, err
		}

		a.reportProgress(SyncProgress{})
		if height, target, hErr := instance.Height(ctx); hErr == nil {
			a.reportProgress(SyncProgress{Height: height, Target: target})
		}

		balance, err := instance.Refresh(ctx)
		if err != nil {
			a.reportProgress(SyncProgress{Done: true})
			return Balance{}, err
		}

		a.reportProgress(SyncProgress{Done: true})
		return balance, nil
	})
	if err != nil {
		return Balance{}, err
	}
	return result.(Balance), nil
}

// network returns the bound network for local address validation.
func (a *Adapter) network() (wallet.Network, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.request == nil {
		return "", lanternerr.ErrWalletNotReady
	}
	return a.request.Network, nil
}

func (a *Adapter) reportProgress(p SyncProgress) {
	a.mu.Lock()
	fn := a.progress
	a.mu.Unlock()
	if fn != nil {
		fn(p)
	}
}

// Balance returns the engine's last known balance without a full scan.
func (a *Adapter) Balance(ctx context.Context) (Balance, error) {
	instance, err := a.EnsureInstance(ctx)
	if err != nil {
		return Balance{}, err
	}
	return instance.Balance(ctx)
}

// Send validates and broadcasts a payment. Post-send bookkeeping (sync,
// backup, receipt) is the caller's responsibility, run as background
// jobs so the sender is not held waiting on it.
func (a *Adapter) Send(ctx context.Context, opts SendOptions) (SendResult, error) {
	network, err := a.network()
	if err != nil {
		return SendResult{}, err
	}
	if err := wallet.ValidateAddress(opts.Address, network); err != nil {
		return SendResult{}, err
	}
	if opts.AmountAtomic == 0 {
		return SendResult{}, lanternerr.ErrInvalidAmount
	}
	if opts.Priority == "" {
		opts.Priority = PriorityNormal
	}

	instance, err := a.EnsureInstance(ctx)
	if err != nil {
		return SendResult{}, err
	}
	return instance.Transfer(ctx, opts)
}

// SweepAll sends the entirety of unlocked funds to address.
func (a *Adapter) SweepAll(ctx context.Context, address string) ([]SendResult, error) {
	network, err := a.network()
	if err != nil {
		return nil, err
	}
	if err := wallet.ValidateAddress(address, network); err != nil {
		return nil, err
	}

	instance, err := a.EnsureInstance(ctx)
	if err != nil {
		return nil, err
	}
	return instance.SweepAll(ctx, address)
}

// TransactionHistory returns all known transactions sorted newest
// first. Transactions with no usable timestamp sort last.
func (a *Adapter) TransactionHistory(ctx context.Context) ([]Transaction, error) {
	instance, err := a.EnsureInstance(ctx)
	if err != nil {
		return nil, err
	}

	txs, err := instance.Transactions(ctx)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].SortTime().After(txs[j].SortTime())
	})
	return txs, nil
}
