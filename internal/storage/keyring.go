package storage

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/zalando/go-keyring"
)

// ServiceName is the keyring service name for lantern entries.
const ServiceName = "lantern-wallet"

// probeTimeout is the maximum time to wait for a keyring probe.
// Prevents startup from blocking if the OS keyring daemon is slow or hung.
const probeTimeout = 3 * time.Second

// OSKeyring implements the Keyring interface using the OS keychain.
type OSKeyring struct{}

// NewOSKeyring creates a new OS keyring wrapper.
func NewOSKeyring() *OSKeyring {
	return &OSKeyring{}
}

// Set stores a secret in the OS keyring.
func (k *OSKeyring) Set(service, user, password string) error {
	return keyring.Set(service, user, password)
}

// Get retrieves a secret from the OS keyring.
func (k *OSKeyring) Get(service, user string) (string, error) {
	return keyring.Get(service, user)
}

// Delete removes a secret from the OS keyring.
func (k *OSKeyring) Delete(service, user string) error {
	return keyring.Delete(service, user)
}

// KeyringStore adapts a Keyring to the Store interface. Values are
// base64-encoded since keyrings hold strings.
type KeyringStore struct {
	keyring Keyring
	service string
}

// NewKeyringStore creates a keyring-backed store.
// If kr is nil, it uses the OS keyring.
func NewKeyringStore(kr Keyring) *KeyringStore {
	if kr == nil {
		kr = NewOSKeyring()
	}
	return &KeyringStore{keyring: kr, service: ServiceName}
}

// Get returns the value for key, or ErrNotFound.
func (s *KeyringStore) Get(key string) ([]byte, error) {
	encoded, err := s.keyring.Get(s.service, key)
	if err != nil {
		// zalando/go-keyring returns its own not-found error; any failure
		// to read maps to not-found so callers fall back cleanly.
		return nil, ErrNotFound
	}

	value, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decoding keyring value: %w", err)
	}
	return value, nil
}

// Set writes the value for key.
func (s *KeyringStore) Set(key string, value []byte) error {
	encoded := base64.StdEncoding.EncodeToString(value)
	if err := s.keyring.Set(s.service, key, encoded); err != nil {
		return fmt.Errorf("storing keyring value: %w", err)
	}
	return nil
}

// Delete removes the key. Deleting a missing key is not an error.
func (s *KeyringStore) Delete(key string) error {
	// Missing entries are fine; the keyring error is not actionable here.
	_ = s.keyring.Delete(s.service, key)
	return nil
}

// Probe tests if the keyring is available, with a timeout to prevent
// blocking startup if the OS keyring daemon is unresponsive.
func (s *KeyringStore) Probe() bool {
	ch := make(chan bool, 1)
	go func() {
		ch <- s.probeSync()
	}()

	select {
	case result := <-ch:
		return result
	case <-time.After(probeTimeout):
		return false
	}
}

// probeSync performs the actual synchronous keyring probe.
func (s *KeyringStore) probeSync() bool {
	const (
		testService = "lantern-probe"
		testUser    = "probe"
		testValue   = "test"
	)

	if err := s.keyring.Set(testService, testUser, testValue); err != nil {
		return false
	}

	val, err := s.keyring.Get(testService, testUser)
	if err != nil || val != testValue {
		_ = s.keyring.Delete(testService, testUser)
		return false
	}

	if err := s.keyring.Delete(testService, testUser); err != nil {
		return false
	}

	return true
}
