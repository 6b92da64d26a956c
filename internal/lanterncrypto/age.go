// Package lanterncrypto provides the symmetric encryption, secure memory,
// and entropy primitives used by the key vault and secrets store.
package lanterncrypto

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"filippo.io/age"
)

// defaultWorkFactor is the scrypt log2(N) work factor for password
// encryption. 18 matches the age default.
const defaultWorkFactor = 18

var (
	workFactorMu sync.RWMutex
	workFactor   = defaultWorkFactor
)

// SetScryptWorkFactor overrides the scrypt work factor. Tests lower it to
// keep PIN-derived encryption fast; production code should not call this.
func SetScryptWorkFactor(logN int) {
	workFactorMu.Lock()
	defer workFactorMu.Unlock()
	workFactor = logN
}

func currentWorkFactor() int {
	workFactorMu.RLock()
	defer workFactorMu.RUnlock()
	return workFactor
}

// Encrypt encrypts plaintext using age with a password-based recipient.
func Encrypt(plaintext []byte, password string) ([]byte, error) {
	recipient, err := age.NewScryptRecipient(password)
	if err != nil {
		return nil, fmt.Errorf("creating scrypt recipient: %w", err)
	}
	recipient.SetWorkFactor(currentWorkFactor())

	buf := &bytes.Buffer{}
	w, err := age.Encrypt(buf, recipient)
	if err != nil {
		return nil, fmt.Errorf("initializing encryption: %w", err)
	}

	if _, err := w.Write(plaintext); err != nil {
		return nil, fmt.Errorf("writing encrypted data: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalizing encryption: %w", err)
	}

	return buf.Bytes(), nil
}

// Decrypt decrypts ciphertext using age with a password-based identity.
func Decrypt(ciphertext []byte, password string) ([]byte, error) {
	identity, err := age.NewScryptIdentity(password)
	if err != nil {
		return nil, fmt.Errorf("creating scrypt identity: %w", err)
	}

	r, err := age.Decrypt(bytes.NewReader(ciphertext), identity)
	if err != nil {
		return nil, fmt.Errorf("initializing decryption: %w", err)
	}

	plaintext, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading decrypted data: %w", err)
	}

	return plaintext, nil
}

// DecryptSecure decrypts ciphertext into a SecureBytes container.
// The intermediate plaintext buffer is zeroed before returning.
func DecryptSecure(ciphertext []byte, password string) (*SecureBytes, error) {
	plaintext, err := Decrypt(ciphertext, password)
	if err != nil {
		return nil, err
	}

	// Ensure plaintext is zeroed on all paths including errors
	defer ZeroBytes(plaintext)

	sb, err := SecureBytesFromSlice(plaintext)
	if err != nil {
		return nil, err
	}

	return sb, nil
}
