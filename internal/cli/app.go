package cli

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/lantern-wallet/lantern/internal/backup"
	"github.com/lantern-wallet/lantern/internal/chainheight"
	"github.com/lantern-wallet/lantern/internal/config"
	"github.com/lantern-wallet/lantern/internal/daemon"
	"github.com/lantern-wallet/lantern/internal/engine"
	"github.com/lantern-wallet/lantern/internal/jobs"
	"github.com/lantern-wallet/lantern/internal/nodes"
	"github.com/lantern-wallet/lantern/internal/receipt"
	"github.com/lantern-wallet/lantern/internal/relay"
	"github.com/lantern-wallet/lantern/internal/secrets"
	"github.com/lantern-wallet/lantern/internal/session"
	"github.com/lantern-wallet/lantern/internal/storage"
	"github.com/lantern-wallet/lantern/internal/vault"
)

// App wires the full wallet stack for one CLI invocation.
type App struct {
	Config    *config.Config
	Logger    *zap.SugaredLogger
	Session   *session.Session
	Registry  *nodes.Registry
	Estimator *chainheight.Estimator
	Identity  relay.Identity

	settings *storage.SettingsStore
	limiter  *daemon.RateLimiter
}

// newApp builds the application graph over the configured home
// directory.
func newApp(cfg *config.Config, logger *zap.SugaredLogger) (*App, error) {
	home := cfg.GetHome()

	settings, err := storage.OpenSettings(home)
	if err != nil {
		return nil, fmt.Errorf("opening settings store: %w", err)
	}

	// Secrets prefer the OS keyring; general settings hold everything
	// else and act as the fallback.
	keyring := storage.NewKeyringStore(storage.NewOSKeyring())
	store := storage.NewPreferred(keyring, settings)
	if !store.SecureAvailable() {
		logger.Debugf("OS keyring unavailable, using settings storage")
	}

	pins := &terminalPinProvider{}
	v := vault.New(store, pins, vault.Policy{
		MinDigits:   cfg.Security.PinMinDigits,
		MaxDigits:   cfg.Security.PinMaxDigits,
		MaxAttempts: cfg.Security.UnlockAttempts,
	})

	registry := nodes.NewRegistry(settings, cfg.Nodes.Builtin, nil)
	limiter := daemon.NewRateLimiter(cfg.Nodes.RequestsPerSecond, cfg.Nodes.Burst)
	estimator := chainheight.NewEstimator(cfg.Chain)
	adapter := engine.NewAdapter(engine.NewRPCOpener(limiter), logger)

	// Identity is best-effort: without one, backup and receipts degrade
	// to no-ops rather than failing the wallet.
	var identity relay.Identity
	identityPath := config.ExpandHome(cfg.Relay.IdentityFile)
	if identityPath == "" {
		identityPath = filepath.Join(home, "identity.json")
	}
	if loaded, idErr := relay.LoadOrCreateIdentity(identityPath); idErr == nil {
		identity = loaded
	} else {
		logger.Warnf("relay identity unavailable: %v", idErr)
	}

	// TODO: swap MemoryLog for a remote relay client once the relay
	// transport settles; the EventLog interface is already in place.
	log := relay.NewMemoryLog()

	app := &App{
		Config:    cfg,
		Logger:    logger,
		Registry:  registry,
		Estimator: estimator,
		Identity:  identity,
		settings:  settings,
		limiter:   limiter,
	}

	app.Session = session.New(session.Options{
		Config:    cfg,
		Logger:    logger,
		Vault:     v,
		Secrets:   secrets.NewManager(store),
		Registry:  registry,
		Estimator: estimator,
		Adapter:   adapter,
		Backups:   backup.NewManager(identity, log, logger),
		Receipts:  receipt.NewPublisher(identity, log, logger),
		Runner:    jobs.NewRunner(logger),
		Heights:   app.heightSource,
	})
	app.Session.Hydrate()
	return app, nil
}

// heightSource returns a daemon client for the active node, or nil when
// none resolves; height estimation degrades gracefully either way.
func (a *App) heightSource() chainheight.HeightSource {
	node, err := a.Registry.Active()
	if err != nil {
		return nil
	}
	return daemon.NewClient(node, a.limiter)
}

// Close drains background jobs and releases storage.
func (a *App) Close() {
	if a.Session != nil {
		a.Session.Stop()
	}
	if a.settings != nil {
		if err := a.settings.Close(); err != nil {
			a.Logger.Warnf("closing settings store: %v", err)
		}
	}
}
