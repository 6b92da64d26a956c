package storage

import (
	"errors"
)

// Preferred is a Store that writes through a platform-secure backend when
// one is available and transparently falls back to the general settings
// store otherwise. Reads consult both so data written before the keyring
// became (un)available is still found.
type Preferred struct {
	secure    Store
	fallback  Store
	useSecure bool
}

// NewPreferred builds a store preferring secure over fallback.
// secure may be nil; the probe result decides whether it is used for writes.
func NewPreferred(secure *KeyringStore, fallback Store) *Preferred {
	p := &Preferred{fallback: fallback}
	if secure != nil && secure.Probe() {
		p.secure = secure
		p.useSecure = true
	}
	return p
}

// SecureAvailable reports whether the platform-secure backend is in use.
func (p *Preferred) SecureAvailable() bool {
	return p.useSecure
}

// Get returns the value for key, consulting the secure backend first.
func (p *Preferred) Get(key string) ([]byte, error) {
	if p.useSecure {
		value, err := p.secure.Get(key)
		if err == nil {
			return value, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return p.fallback.Get(key)
}

// Set writes the value to the preferred backend and removes any stale copy
// from the other, so exactly one copy exists after a successful write.
func (p *Preferred) Set(key string, value []byte) error {
	if p.useSecure {
		if err := p.secure.Set(key, value); err == nil {
			_ = p.fallback.Delete(key)
			return nil
		}
		// Keyring write failed; degrade to the settings store for this
		// and all subsequent writes rather than erroring out.
		p.useSecure = false
	}
	return p.fallback.Set(key, value)
}

// Delete removes the key from both backends.
func (p *Preferred) Delete(key string) error {
	if p.secure != nil {
		_ = p.secure.Delete(key)
	}
	return p.fallback.Delete(key)
}
