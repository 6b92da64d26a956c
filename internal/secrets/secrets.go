// Package secrets persists wallet secret material (seed and mnemonic)
// encrypted under the vault master key, plus the non-secret wallet
// metadata stored alongside it in plaintext.
package secrets

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lantern-wallet/lantern/internal/lanterncrypto"
	"github.com/lantern-wallet/lantern/internal/storage"
	"github.com/lantern-wallet/lantern/internal/vault"
	"github.com/lantern-wallet/lantern/internal/wallet"
	lanternerr "github.com/lantern-wallet/lantern/pkg/errors"
)

// Storage keys.
const (
	secretsStorageKey = "wallet/secrets"
	metaStorageKey    = "wallet/meta"
)

// secretsPayload is the cleartext form that gets encrypted, never
// persisted as-is.
type secretsPayload struct {
	Seed     []byte `json:"seed"`
	Mnemonic string `json:"mnemonic"`
}

// Manager reads and writes the encrypted wallet secrets.
type Manager struct {
	store storage.Store
}

// NewManager creates a secrets manager over the given store.
func NewManager(store storage.Store) *Manager {
	return &Manager{store: store}
}

// Persist encrypts the secrets under the master key and stores them.
func (m *Manager) Persist(master *vault.MasterKey, s *wallet.Secrets) error {
	payload, err := json.Marshal(secretsPayload{Seed: s.Seed, Mnemonic: s.Mnemonic})
	if err != nil {
		return fmt.Errorf("marshaling secrets: %w", err)
	}
	defer lanterncrypto.ZeroBytes(payload)

	ciphertext, err := lanterncrypto.Encrypt(payload, master.Password())
	if err != nil {
		return fmt.Errorf("encrypting secrets: %w", err)
	}

	if err := m.store.Set(secretsStorageKey, ciphertext); err != nil {
		return fmt.Errorf("persisting secrets: %w", err)
	}
	return nil
}

// Load decrypts the stored secrets with the master key. Returns
// (nil, nil) when no secrets exist, so callers can distinguish a fresh
// install from a decryption failure.
func (m *Manager) Load(master *vault.MasterKey) (*wallet.Secrets, error) {
	ciphertext, err := m.store.Get(secretsStorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading secrets: %w", err)
	}

	plaintext, err := lanterncrypto.Decrypt(ciphertext, master.Password())
	if err != nil {
		return nil, lanternerr.ErrSecretsCorrupted
	}
	defer lanterncrypto.ZeroBytes(plaintext)

	var payload secretsPayload
	if err := json.Unmarshal(plaintext, &payload); err != nil {
		return nil, lanternerr.ErrSecretsCorrupted
	}

	return &wallet.Secrets{Seed: payload.Seed, Mnemonic: payload.Mnemonic}, nil
}

// Exists reports whether encrypted secrets are persisted.
func (m *Manager) Exists() bool {
	_, err := m.store.Get(secretsStorageKey)
	return err == nil
}

// Delete removes the encrypted secrets and the wallet metadata.
func (m *Manager) Delete() error {
	if err := m.store.Delete(secretsStorageKey); err != nil {
		return fmt.Errorf("deleting secrets: %w", err)
	}
	return m.store.Delete(metaStorageKey)
}

// SaveMeta persists the non-secret wallet metadata as plaintext JSON.
func (m *Manager) SaveMeta(meta *wallet.Meta) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshaling wallet meta: %w", err)
	}
	if err := m.store.Set(metaStorageKey, data); err != nil {
		return fmt.Errorf("persisting wallet meta: %w", err)
	}
	return nil
}

// LoadMeta reads the wallet metadata. Returns (nil, nil) when absent.
func (m *Manager) LoadMeta() (*wallet.Meta, error) {
	data, err := m.store.Get(metaStorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading wallet meta: %w", err)
	}

	var meta wallet.Meta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parsing wallet meta: %w", err)
	}
	return &meta, nil
}
