// Package vault implements the key vault: a random symmetric master key,
// encrypted at rest under the user's PIN, with bounded-retry unlock. The
// master key never exists outside this package except as the password
// handed to the secrets store, and never touches disk in plaintext.
package vault

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lantern-wallet/lantern/internal/lanterncrypto"
	"github.com/lantern-wallet/lantern/internal/storage"
	lanternerr "github.com/lantern-wallet/lantern/pkg/errors"
)

// Storage keys.
const (
	masterKeyStorageKey  = "vault/master-key"
	disclosureStorageKey = "vault/disclosure-shown"
)

// masterKeySize is the master key length in bytes (256 bits).
const masterKeySize = 32

// blobVersion is the current encrypted blob format version.
const blobVersion = 1

// PinProvider supplies PINs on demand. The vault has no UI dependency;
// the CLI injects a terminal prompt and tests inject a scripted provider.
type PinProvider interface {
	// Request prompts for a PIN. ok is false when the user cancelled.
	Request(message string, allowCancel bool) (pin string, ok bool, err error)
}

// Policy is the PIN and retry policy, taken from configuration.
type Policy struct {
	MinDigits   int
	MaxDigits   int
	MaxAttempts int
}

// MasterKey is the in-memory symmetric master key.
type MasterKey struct {
	key *lanterncrypto.SecureBytes
}

// Password returns the key encoded for use as an encryption password.
func (m *MasterKey) Password() string {
	return hex.EncodeToString(m.key.Bytes())
}

// Destroy wipes the key material.
func (m *MasterKey) Destroy() {
	m.key.Destroy()
}

// keyBlob is the persisted encrypted master key envelope. A blob that
// fails to parse as this structure is corrupted, which is terminal;
// a blob that parses but fails to decrypt is a wrong PIN, which is not.
type keyBlob struct {
	Version    int       `json:"version"`
	Ciphertext []byte    `json:"ciphertext"`
	CreatedAt  time.Time `json:"created_at"`
}

// Vault owns the encrypted master key.
type Vault struct {
	store  storage.Store
	pins   PinProvider
	policy Policy
}

// New creates a vault over the given store and PIN provider.
func New(store storage.Store, pins PinProvider, policy Policy) *Vault {
	return &Vault{store: store, pins: pins, policy: policy}
}

// ValidatePin enforces the digit-length PIN policy.
func (v *Vault) ValidatePin(pin string) error {
	if len(pin) < v.policy.MinDigits || len(pin) > v.policy.MaxDigits {
		return lanternerr.ErrWeakPin
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return lanternerr.ErrWeakPin
		}
	}
	return nil
}

// Create generates a fresh random master key, encrypts it under pin, and
// persists the ciphertext. Fails if a key already exists.
func (v *Vault) Create(pin string) (*MasterKey, error) {
	if err := v.ValidatePin(pin); err != nil {
		return nil, err
	}
	if v.HasKey() {
		return nil, lanternerr.ErrWalletExists
	}

	key, err := lanterncrypto.SecureRandomBytes(masterKeySize)
	if err != nil {
		return nil, fmt.Errorf("generating master key: %w", err)
	}

	ciphertext, err := lanterncrypto.Encrypt(key.Bytes(), pin)
	if err != nil {
		key.Destroy()
		return nil, fmt.Errorf("encrypting master key: %w", err)
	}

	blob := keyBlob{
		Version:    blobVersion,
		Ciphertext: ciphertext,
		CreatedAt:  time.Now().UTC(),
	}
	data, err := json.Marshal(blob)
	if err != nil {
		key.Destroy()
		return nil, fmt.Errorf("marshaling key blob: %w", err)
	}

	if err := v.store.Set(masterKeyStorageKey, data); err != nil {
		key.Destroy()
		return nil, fmt.Errorf("persisting key blob: %w", err)
	}

	return &MasterKey{key: key}, nil
}

// UnlockResult carries the decrypted master key plus whether this was the
// first successful unlock, in which case the caller must surface the
// one-time hot-wallet risk disclosure.
type UnlockResult struct {
	Key             *MasterKey
	FirstDisclosure bool
}

// Unlock decrypts the stored master key, prompting for the PIN through
// the provider. Wrong PINs are re-prompted up to the policy bound; the
// bound is attempt-count-based, so a correct PIN after exhaustion is
// never consulted. A corrupted blob is terminal and not retried.
func (v *Vault) Unlock(allowCancel bool) (*UnlockResult, error) {
	blob, err := v.loadBlob()
	if err != nil {
		return nil, err
	}

	wrongPin := false
	for attempt := 1; attempt <= v.policy.MaxAttempts; attempt++ {
		message := "Enter wallet PIN"
		if attempt > 1 {
			message = fmt.Sprintf("Incorrect PIN, try again (%d of %d)", attempt, v.policy.MaxAttempts)
		}

		pin, ok, err := v.pins.Request(message, allowCancel)
		if err != nil {
			return nil, fmt.Errorf("requesting PIN: %w", err)
		}
		if !ok {
			if allowCancel {
				return nil, lanternerr.ErrUnlockCancelled
			}
			// Cancellation was not offered; count it as a failed attempt.
			continue
		}

		key, decErr := lanterncrypto.DecryptSecure(blob.Ciphertext, pin)
		if decErr != nil {
			wrongPin = true
			continue
		}

		first, discErr := v.markDisclosureShown()
		if discErr != nil {
			key.Destroy()
			return nil, discErr
		}

		return &UnlockResult{Key: &MasterKey{key: key}, FirstDisclosure: first}, nil
	}

	// Exhaustion from bad PINs carries the wrong-PIN cause so callers
	// can tell it apart from exhaustion by silent prompts.
	if wrongPin {
		return nil, lanternerr.WithCause(lanternerr.ErrUnlockExhausted, lanternerr.ErrWrongPin)
	}
	return nil, lanternerr.ErrUnlockExhausted
}

// HasKey reports whether an encrypted master key is persisted.
func (v *Vault) HasKey() bool {
	_, err := v.store.Get(masterKeyStorageKey)
	return err == nil
}

// Clear deletes the persisted ciphertext and disclosure flag. Used on
// wallet deletion; the caller destroys any in-memory MasterKey it holds.
func (v *Vault) Clear() error {
	if err := v.store.Delete(masterKeyStorageKey); err != nil {
		return fmt.Errorf("deleting key blob: %w", err)
	}
	return v.store.Delete(disclosureStorageKey)
}

func (v *Vault) loadBlob() (*keyBlob, error) {
	data, err := v.store.Get(masterKeyStorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, lanternerr.ErrNoWallet
		}
		return nil, fmt.Errorf("reading key blob: %w", err)
	}

	var blob keyBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		return nil, lanternerr.ErrVaultCorrupted
	}
	if blob.Version != blobVersion || len(blob.Ciphertext) == 0 {
		return nil, lanternerr.ErrVaultCorrupted
	}
	return &blob, nil
}

// markDisclosureShown records the one-time hot-wallet disclosure flag,
// returning true on the first unlock.
func (v *Vault) markDisclosureShown() (bool, error) {
	_, err := v.store.Get(disclosureStorageKey)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return false, fmt.Errorf("reading disclosure flag: %w", err)
	}

	if err := v.store.Set(disclosureStorageKey, []byte("1")); err != nil {
		return false, fmt.Errorf("persisting disclosure flag: %w", err)
	}
	return true, nil
}
