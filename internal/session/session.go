// Package session is the lifecycle orchestrator: a state machine that
// coordinates the key vault, secrets store, node registry, and wallet
// engine, and fires backup and receipt publishing as decoupled
// background jobs.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lantern-wallet/lantern/internal/backup"
	"github.com/lantern-wallet/lantern/internal/chainheight"
	"github.com/lantern-wallet/lantern/internal/config"
	"github.com/lantern-wallet/lantern/internal/engine"
	"github.com/lantern-wallet/lantern/internal/jobs"
	"github.com/lantern-wallet/lantern/internal/nodes"
	"github.com/lantern-wallet/lantern/internal/receipt"
	"github.com/lantern-wallet/lantern/internal/secrets"
	"github.com/lantern-wallet/lantern/internal/vault"
	"github.com/lantern-wallet/lantern/internal/wallet"
	lanternerr "github.com/lantern-wallet/lantern/pkg/errors"
)

// State is the wallet lifecycle state.
type State string

// Lifecycle states. Unlocking and Syncing are transient.
const (
	StateNoWallet  State = "no-wallet"
	StateLocked    State = "locked"
	StateUnlocking State = "unlocking"
	StateReady     State = "ready"
	StateSyncing   State = "syncing"
)

// AddressPublisher associates the wallet's public address with the
// user's external profile. It is an optional collaborator; absence
// simply skips the association.
type AddressPublisher interface {
	Publish(ctx context.Context, address string) error
	Retract(ctx context.Context) error
}

// Session drives the wallet lifecycle. All state transitions go through
// it; nothing else holds the decrypted secrets.
type Session struct {
	cfg       *config.Config
	logger    config.Logger
	vault     *vault.Vault
	secrets   *secrets.Manager
	registry  *nodes.Registry
	estimator *chainheight.Estimator
	adapter   *engine.Adapter
	backups   *backup.Manager
	receipts  *receipt.Publisher
	runner    *jobs.Runner
	addresses AddressPublisher
	heights   func() chainheight.HeightSource

	mu         sync.Mutex
	state      State
	masterKey  *vault.MasterKey
	material   *wallet.Secrets
	meta       *wallet.Meta
	foreground bool
	onState    func(State)

	stopTicker chan struct{}
	tickerOnce sync.Once
	stopOnce   sync.Once
}

// Options bundles the collaborators a session needs.
type Options struct {
	Config    *config.Config
	Logger    config.Logger
	Vault     *vault.Vault
	Secrets   *secrets.Manager
	Registry  *nodes.Registry
	Estimator *chainheight.Estimator
	Adapter   *engine.Adapter
	Backups   *backup.Manager
	Receipts  *receipt.Publisher
	Runner    *jobs.Runner
	Addresses AddressPublisher

	// Heights supplies the height source for restore estimation,
	// typically a daemon client for the active node. May return nil.
	Heights func() chainheight.HeightSource
}

// New creates a session in the NoWallet state; call Hydrate to pick up
// persisted wallet state.
func New(opts Options) *Session {
	s := &Session{
		cfg:        opts.Config,
		logger:     opts.Logger,
		vault:      opts.Vault,
		secrets:    opts.Secrets,
		registry:   opts.Registry,
		estimator:  opts.Estimator,
		adapter:    opts.Adapter,
		backups:    opts.Backups,
		receipts:   opts.Receipts,
		runner:     opts.Runner,
		addresses:  opts.Addresses,
		heights:    opts.Heights,
		state:      StateNoWallet,
		stopTicker: make(chan struct{}),
	}
	if s.heights == nil {
		s.heights = func() chainheight.HeightSource { return nil }
	}
	return s
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// OnStateChange installs a listener invoked after every transition.
func (s *Session) OnStateChange(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onState = fn
}

func (s *Session) setState(next State) {
	s.mu.Lock()
	s.state = next
	fn := s.onState
	s.mu.Unlock()

	s.logger.Debugf("wallet state: %s", next)
	if fn != nil {
		fn(next)
	}
}

// Hydrate inspects persisted state at startup and lands in NoWallet or
// Locked. It never decrypts anything: plaintext-dependent side effects
// are deferred until an explicit unlock, after the rest of the
// application has initialized.
func (s *Session) Hydrate() {
	if s.vault.HasKey() && s.secrets.Exists() {
		s.setState(StateLocked)
		return
	}
	s.setState(StateNoWallet)
}

// CreateOptions configures wallet creation.
type CreateOptions struct {
	Pin           string
	Mnemonic      string    // empty generates a fresh wallet
	WordCount     int       // 12 or 24, generation only
	CreatedAt     time.Time // known creation time for imports; zero means unknown
	RestoreHeight uint64    // explicit scan start; zero means estimate
}

// Create makes or imports a wallet: NoWallet -> Ready directly, since
// the freshly created key is already in memory. Background sync starts
// immediately.
func (s *Session) Create(ctx context.Context, opts CreateOptions) (*wallet.Meta, error) {
	if s.State() != StateNoWallet {
		return nil, lanternerr.ErrWalletExists
	}

	masterKey, err := s.vault.Create(opts.Pin)
	if err != nil {
		return nil, err
	}

	wordCount := opts.WordCount
	if wordCount == 0 {
		wordCount = 12
	}
	material, err := wallet.NewSecrets(opts.Mnemonic, wordCount)
	if err != nil {
		s.abortCreate(masterKey)
		return nil, err
	}

	network := wallet.Network(s.cfg.Network)
	address, err := wallet.DeriveAddress(material.Seed, network)
	if err != nil {
		material.Wipe()
		s.abortCreate(masterKey)
		return nil, err
	}

	meta := &wallet.Meta{
		Address:       address,
		Network:       network,
		CreatedAt:     time.Now().UTC(),
		RestoreHeight: s.restoreHeight(ctx, opts),
	}
	if active, aErr := s.registry.Active(); aErr == nil {
		meta.NodeID = active.ID
	}

	if err := s.secrets.Persist(masterKey, material); err != nil {
		material.Wipe()
		s.abortCreate(masterKey)
		return nil, err
	}
	if err := s.secrets.SaveMeta(meta); err != nil {
		material.Wipe()
		s.abortCreate(masterKey)
		return nil, err
	}

	s.becomeReady(masterKey, material, meta)
	s.afterUnlock(meta)
	return meta, nil
}

// restoreHeight picks the scan start: an explicit height wins, a fresh
// wallet starts near the current tip, an import with a known creation
// time starts from that time, and an import with an unknown time falls
// back to the tip as well.
func (s *Session) restoreHeight(ctx context.Context, opts CreateOptions) uint64 {
	if opts.RestoreHeight > 0 {
		return opts.RestoreHeight
	}
	if opts.Mnemonic != "" && !opts.CreatedAt.IsZero() {
		return s.estimator.EstimateFromTimestamp(opts.CreatedAt)
	}
	return s.estimator.CalculateRestoreHeight(ctx, s.heights())
}

func (s *Session) abortCreate(masterKey *vault.MasterKey) {
	masterKey.Destroy()
	if err := s.vault.Clear(); err != nil {
		s.logger.Warnf("clearing vault after failed create: %v", err)
	}
}

// Unlock decrypts the wallet: Locked -> Unlocking -> Ready. Wrong PINs
// are retried inside the vault; exhaustion and cancellation return the
// session to Locked.
func (s *Session) Unlock(allowCancel bool) error {
	if state := s.State(); state != StateLocked {
		if state == StateNoWallet {
			return lanternerr.ErrNoWallet
		}
		return nil // already unlocked
	}
	s.setState(StateUnlocking)

	result, err := s.vault.Unlock(allowCancel)
	if err != nil {
		s.setState(StateLocked)
		return err
	}
	if result.FirstDisclosure {
		s.logger.Warnf("this is a hot wallet: its keys live on this device, protected only by your PIN")
	}

	material, err := s.secrets.Load(result.Key)
	if err != nil {
		result.Key.Destroy()
		s.setState(StateLocked)
		return err
	}
	if material == nil {
		// Vault key present but secrets gone: the wallet was wiped
		// underneath us. Drop the orphaned vault key too, or NoWallet
		// would refuse a subsequent create.
		result.Key.Destroy()
		if clearErr := s.vault.Clear(); clearErr != nil {
			s.logger.Warnf("clearing orphaned vault key: %v", clearErr)
		}
		s.setState(StateNoWallet)
		return lanternerr.ErrNoWallet
	}

	meta, err := s.secrets.LoadMeta()
	if err != nil {
		material.Wipe()
		result.Key.Destroy()
		s.setState(StateLocked)
		return err
	}
	if meta == nil {
		// Secrets without metadata are unusable; treat the wallet as
		// gone and remove the leftovers so create can proceed.
		material.Wipe()
		result.Key.Destroy()
		if delErr := s.secrets.Delete(); delErr != nil {
			s.logger.Warnf("deleting orphaned secrets: %v", delErr)
		}
		if clearErr := s.vault.Clear(); clearErr != nil {
			s.logger.Warnf("clearing orphaned vault key: %v", clearErr)
		}
		s.setState(StateNoWallet)
		return lanternerr.ErrNoWallet
	}

	s.becomeReady(result.Key, material, meta)
	s.afterUnlock(meta)
	return nil
}

// becomeReady stores the decrypted materials, binds the engine adapter,
// and transitions to Ready.
func (s *Session) becomeReady(masterKey *vault.MasterKey, material *wallet.Secrets, meta *wallet.Meta) {
	node, err := s.registry.Active()
	if err != nil {
		s.logger.Warnf("no active node: %v", err)
	}

	s.mu.Lock()
	s.masterKey = masterKey
	s.material = material
	s.meta = meta
	s.mu.Unlock()

	s.adapter.Bind(engine.OpenRequest{
		Mnemonic:      material.Mnemonic,
		Network:       meta.Network,
		RestoreHeight: meta.RestoreHeight,
		Node:          node,
	})
	s.setState(StateReady)
}

// afterUnlock runs the plaintext-dependent side effects deferred from
// hydration: the initial sync and, when sharing is enabled, publishing
// the wallet address to the user's profile.
func (s *Session) afterUnlock(meta *wallet.Meta) {
	s.runner.Go("initial-sync", func(ctx context.Context) error {
		_, err := s.Sync(ctx)
		return err
	})

	if s.addresses != nil && s.cfg.Relay.ShareAddress {
		address := meta.Address
		s.runner.Go("publish-address", func(ctx context.Context) error {
			return s.addresses.Publish(ctx, address)
		})
	}
}

// Lock disposes the engine and wipes all in-memory key material:
// Ready -> Locked. Locking an already locked or absent wallet is a
// no-op, so lock is always safe to call.
func (s *Session) Lock(ctx context.Context) error {
	state := s.State()
	if state != StateReady && state != StateSyncing {
		return nil
	}

	// Dispose without saving, so interrupted sync state is not leaked
	// into the wallet file.
	if err := s.adapter.Dispose(ctx, false); err != nil {
		s.logger.Warnf("disposing engine on lock: %v", err)
	}
	s.adapter.Unbind()

	s.wipeMaterials()
	s.setState(StateLocked)
	return nil
}

func (s *Session) wipeMaterials() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.material != nil {
		s.material.Wipe()
		s.material = nil
	}
	if s.masterKey != nil {
		s.masterKey.Destroy()
		s.masterKey = nil
	}
	s.meta = nil
}

// Delete erases the wallet completely: any state -> NoWallet. Secrets,
// metadata, the vault blob, and the node selection are all removed, and
// any published address association is reversed.
func (s *Session) Delete(ctx context.Context) error {
	if err := s.adapter.Dispose(ctx, false); err != nil {
		s.logger.Warnf("disposing engine on delete: %v", err)
	}
	s.adapter.Unbind()
	s.wipeMaterials()

	if err := s.secrets.Delete(); err != nil {
		return fmt.Errorf("deleting secrets: %w", err)
	}
	if err := s.vault.Clear(); err != nil {
		return fmt.Errorf("clearing vault: %w", err)
	}
	if err := s.registry.Reset(); err != nil {
		return fmt.Errorf("resetting node selection: %w", err)
	}

	if s.addresses != nil {
		s.runner.Go("retract-address", func(ctx context.Context) error {
			return s.addresses.Retract(ctx)
		})
	}

	s.setState(StateNoWallet)
	return nil
}

// Meta returns a copy of the wallet metadata, or nil when not unlocked.
func (s *Session) Meta() *wallet.Meta {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.meta == nil {
		return nil
	}
	copied := *s.meta
	return &copied
}

// Mnemonic returns the decrypted recovery phrase. Requires Ready.
func (s *Session) Mnemonic() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady && s.state != StateSyncing {
		return "", lanternerr.ErrWalletNotReady
	}
	return s.material.Mnemonic, nil
}

// requireReady fails fast instead of attempting an implicit unlock.
func (s *Session) requireReady() error {
	state := s.State()
	if state != StateReady && state != StateSyncing {
		return lanternerr.ErrWalletNotReady
	}
	return nil
}

// Sync refreshes the wallet against the chain. Concurrent calls are
// coalesced by the adapter; the transient Syncing state is visible to
// observers while a refresh runs.
func (s *Session) Sync(ctx context.Context) (engine.Balance, error) {
	if err := s.requireReady(); err != nil {
		return engine.Balance{}, err
	}

	s.setState(StateSyncing)
	balance, err := s.adapter.Sync(ctx)
	if s.State() == StateSyncing {
		s.setState(StateReady)
	}
	if err != nil {
		return engine.Balance{}, err
	}
	return balance, nil
}

// Send validates and broadcasts a payment, then schedules sync, backup,
// and receipt publishing as independent background jobs so the caller
// is not held waiting on post-send bookkeeping.
func (s *Session) Send(ctx context.Context, opts engine.SendOptions) (engine.SendResult, error) {
	if err := s.requireReady(); err != nil {
		return engine.SendResult{}, err
	}

	result, err := s.adapter.Send(ctx, opts)
	if err != nil {
		return engine.SendResult{}, err
	}

	s.schedulePostSend(result, opts)
	return result, nil
}

// SweepAll sends the entirety of unlocked funds to address.
func (s *Session) SweepAll(ctx context.Context, address string) ([]engine.SendResult, error) {
	if err := s.requireReady(); err != nil {
		return nil, err
	}

	results, err := s.adapter.SweepAll(ctx, address)
	if err != nil {
		return nil, err
	}

	for _, r := range results {
		s.schedulePostSend(r, engine.SendOptions{Address: address})
	}
	return results, nil
}

func (s *Session) schedulePostSend(result engine.SendResult, opts engine.SendOptions) {
	s.runner.Go("post-send-sync", func(ctx context.Context) error {
		_, err := s.Sync(ctx)
		return err
	})

	// Snapshot under the lock with an independent seed copy: the
	// session may lock and wipe its own materials while these jobs are
	// still in flight.
	s.mu.Lock()
	materialCopy := s.material.Clone()
	var metaCopy wallet.Meta
	if s.meta != nil {
		metaCopy = *s.meta
	}
	hasMeta := s.meta != nil
	s.mu.Unlock()

	if materialCopy != nil && hasMeta {
		s.runner.Go("post-send-backup", func(ctx context.Context) error {
			defer materialCopy.Wipe()
			return s.backups.Publish(ctx, materialCopy, &metaCopy)
		})

		s.runner.Go("post-send-receipt", func(ctx context.Context) error {
			return s.receipts.Publish(ctx, receipt.Receipt{
				AmountAtomic:      result.AmountAtomic,
				RecipientIdentity: opts.RecipientIdentity,
				NoteReference:     opts.NoteReference,
				TxHash:            result.TxHash,
				SenderAddress:     metaCopy.Address,
			})
		})
	}
}

// Balance returns the engine's last known balance. Requires Ready.
func (s *Session) Balance(ctx context.Context) (engine.Balance, error) {
	if err := s.requireReady(); err != nil {
		return engine.Balance{}, err
	}
	return s.adapter.Balance(ctx)
}

// TransactionHistory returns all known transactions newest first.
func (s *Session) TransactionHistory(ctx context.Context) ([]engine.Transaction, error) {
	if err := s.requireReady(); err != nil {
		return nil, err
	}
	return s.adapter.TransactionHistory(ctx)
}

// PublishBackup pushes a backup of the current wallet immediately.
func (s *Session) PublishBackup(ctx context.Context) error {
	if err := s.requireReady(); err != nil {
		return err
	}

	s.mu.Lock()
	material := s.material.Clone()
	meta := *s.meta
	s.mu.Unlock()
	defer material.Wipe()

	return s.backups.Publish(ctx, material, &meta)
}

// RestoreFromBackup fetches the newest remote backup and imports it as
// a new wallet. Requires NoWallet.
func (s *Session) RestoreFromBackup(ctx context.Context, pin string) (*wallet.Meta, error) {
	if s.State() != StateNoWallet {
		return nil, lanternerr.ErrWalletExists
	}

	restored, err := s.backups.Restore(ctx)
	if err != nil {
		return nil, err
	}

	return s.Create(ctx, CreateOptions{
		Pin:       pin,
		Mnemonic:  restored.Secrets.Mnemonic,
		CreatedAt: restored.Meta.CreatedAt,
	})
}

// SetActiveNode switches nodes. The registry teardown hook disposes the
// live engine; here the adapter is rebound so the next operation
// reconnects against the new endpoint.
func (s *Session) SetActiveNode(ctx context.Context, id string) error {
	if err := s.registry.SetActive(id); err != nil {
		return err
	}
	return s.rebindNode(ctx)
}

// SetCustomNode configures and selects the custom node slot.
func (s *Session) SetCustomNode(ctx context.Context, uri string) (nodes.Node, error) {
	node, err := s.registry.SetCustom(uri)
	if err != nil {
		return nodes.Node{}, err
	}
	return node, s.rebindNode(ctx)
}

// RemoveCustomNode drops the custom node, failing over if it was active.
func (s *Session) RemoveCustomNode(ctx context.Context) error {
	if err := s.registry.RemoveCustom(); err != nil {
		return err
	}
	return s.rebindNode(ctx)
}

func (s *Session) rebindNode(ctx context.Context) error {
	if s.State() != StateReady && s.State() != StateSyncing {
		return nil
	}

	// Close without losing local wallet state before reconnecting.
	if err := s.adapter.Dispose(ctx, true); err != nil {
		s.logger.Warnf("disposing engine on node switch: %v", err)
	}

	node, err := s.registry.Active()
	if err != nil {
		return err
	}

	s.mu.Lock()
	material := s.material
	meta := s.meta
	s.mu.Unlock()
	if material == nil || meta == nil {
		return nil
	}

	s.adapter.Rebind(engine.OpenRequest{
		Mnemonic:      material.Mnemonic,
		Network:       meta.Network,
		RestoreHeight: meta.RestoreHeight,
		Node:          node,
	})

	meta.NodeID = node.ID
	if err := s.secrets.SaveMeta(meta); err != nil {
		s.logger.Warnf("persisting node selection in meta: %v", err)
	}
	return nil
}

// SetForeground tells the session whether the application is visible.
// The periodic sync ticker only fires in the foreground; returning to
// the foreground triggers one immediate sync.
func (s *Session) SetForeground(foreground bool) {
	s.mu.Lock()
	wasForeground := s.foreground
	s.foreground = foreground
	s.mu.Unlock()

	if foreground && !wasForeground && s.State() == StateReady {
		s.runner.Go("foreground-sync", func(ctx context.Context) error {
			_, err := s.Sync(ctx)
			return err
		})
	}
}

// StartBackground launches the periodic sync loop. Safe to call once;
// Stop terminates it.
func (s *Session) StartBackground() {
	s.tickerOnce.Do(func() {
		interval := time.Duration(s.cfg.Sync.IntervalSeconds) * time.Second
		if interval <= 0 {
			interval = time.Minute
		}
		go s.runTicker(interval)
	})
}

func (s *Session) runTicker(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopTicker:
			return
		case <-ticker.C:
			s.mu.Lock()
			foreground := s.foreground
			s.mu.Unlock()
			if !foreground || s.State() != StateReady {
				continue
			}
			s.runner.Go("periodic-sync", func(ctx context.Context) error {
				_, err := s.Sync(ctx)
				return err
			})
		}
	}
}

// Stop terminates the background sync loop and drains pending jobs.
func (s *Session) Stop() {
	s.stopOnce.Do(func() { close(s.stopTicker) })
	s.runner.Wait()
}
