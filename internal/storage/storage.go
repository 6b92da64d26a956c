// Package storage provides the local durable key-value stores backing the
// vault, secrets store, and node registry. Values live either in the OS
// keyring (preferred for secret material) or in a bolt-backed settings
// database, with transparent fallback when the keyring is unavailable.
package storage

import (
	"errors"
)

// ErrNotFound indicates no value exists for the key.
var ErrNotFound = errors.New("key not found")

// Store is a durable key-value store. Keys are namespaced with a
// "component/name" convention (e.g. "vault/master-key").
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(key string) ([]byte, error)

	// Set writes the value for key, replacing any previous value.
	Set(key string, value []byte) error

	// Delete removes the key. Deleting a missing key is not an error.
	Delete(key string) error
}

// Keyring is the narrow OS-keychain surface used by the secure backend.
// The abstraction allows testing with mock implementations.
type Keyring interface {
	Set(service, user, password string) error
	Get(service, user string) (string, error)
	Delete(service, user string) error
}
