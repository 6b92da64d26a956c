package relay

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"filippo.io/age"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/lantern-wallet/lantern/internal/fileutil"
	lanternerr "github.com/lantern-wallet/lantern/pkg/errors"
)

// Identity is the signing and self-encryption capability used to
// authenticate and protect off-device records. Backup and receipt
// publishing degrade to no-ops when no identity is available.
type Identity interface {
	// PublicKey returns the stable public identifier used as a record's
	// author.
	PublicKey() string

	// Sign signs the payload and returns a hex signature.
	Sign(payload []byte) (string, error)

	// EncryptToSelf encrypts plaintext so only this identity can read it.
	EncryptToSelf(plaintext []byte) ([]byte, error)

	// DecryptFromSelf decrypts a payload produced by EncryptToSelf.
	DecryptFromSelf(ciphertext []byte) ([]byte, error)
}

// identityFile is the persisted on-disk identity.
type identityFile struct {
	Version       int    `json:"version"`
	SigningKey    string `json:"signing_key"`
	EncryptionKey string `json:"encryption_key"`
}

// LocalIdentity implements Identity with a secp256k1 signing key and an
// age X25519 key for self-encryption, both persisted in a single file.
type LocalIdentity struct {
	signingKey    *ecdsa.PrivateKey
	encryptionKey *age.X25519Identity
}

// LoadOrCreateIdentity reads the identity file at path, generating and
// persisting a fresh identity when none exists.
func LoadOrCreateIdentity(path string) (*LocalIdentity, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from configuration
	if err == nil {
		return parseIdentity(data)
	}
	if !os.IsNotExist(err) {
		return nil, lanternerr.WithCause(lanternerr.ErrIdentityUnavailable, err)
	}

	identity, err := generateIdentity()
	if err != nil {
		return nil, err
	}
	if err := identity.save(path); err != nil {
		return nil, err
	}
	return identity, nil
}

func generateIdentity() (*LocalIdentity, error) {
	signingKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generating signing key: %w", err)
	}
	encryptionKey, err := age.GenerateX25519Identity()
	if err != nil {
		return nil, fmt.Errorf("generating encryption key: %w", err)
	}
	return &LocalIdentity{signingKey: signingKey, encryptionKey: encryptionKey}, nil
}

func parseIdentity(data []byte) (*LocalIdentity, error) {
	var file identityFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, lanternerr.WithCause(lanternerr.ErrIdentityUnavailable, err)
	}

	signingKey, err := crypto.HexToECDSA(file.SigningKey)
	if err != nil {
		return nil, lanternerr.WithCause(lanternerr.ErrIdentityUnavailable, err)
	}
	encryptionKey, err := age.ParseX25519Identity(file.EncryptionKey)
	if err != nil {
		return nil, lanternerr.WithCause(lanternerr.ErrIdentityUnavailable, err)
	}
	return &LocalIdentity{signingKey: signingKey, encryptionKey: encryptionKey}, nil
}

func (l *LocalIdentity) save(path string) error {
	file := identityFile{
		Version:       1,
		SigningKey:    hex.EncodeToString(crypto.FromECDSA(l.signingKey)),
		EncryptionKey: l.encryptionKey.String(),
	}
	data, err := json.Marshal(file)
	if err != nil {
		return fmt.Errorf("marshaling identity: %w", err)
	}
	if err := fileutil.WriteAtomic(path, data, 0o600); err != nil {
		return fmt.Errorf("persisting identity: %w", err)
	}
	return nil
}

// PublicKey returns the hex-encoded compressed secp256k1 public key.
func (l *LocalIdentity) PublicKey() string {
	return hex.EncodeToString(crypto.CompressPubkey(&l.signingKey.PublicKey))
}

// Sign signs keccak256(payload) and returns the hex signature.
func (l *LocalIdentity) Sign(payload []byte) (string, error) {
	sig, err := crypto.Sign(crypto.Keccak256(payload), l.signingKey)
	if err != nil {
		return "", fmt.Errorf("signing payload: %w", err)
	}
	return hex.EncodeToString(sig), nil
}

// EncryptToSelf encrypts plaintext to this identity's age recipient.
func (l *LocalIdentity) EncryptToSelf(plaintext []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, l.encryptionKey.Recipient())
	if err != nil {
		return nil, fmt.Errorf("creating encryption writer: %w", err)
	}
	if _, err := w.Write(plaintext); err != nil {
		return nil, fmt.Errorf("encrypting payload: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalizing encryption: %w", err)
	}
	return buf.Bytes(), nil
}

// DecryptFromSelf decrypts a payload encrypted with EncryptToSelf.
func (l *LocalIdentity) DecryptFromSelf(ciphertext []byte) ([]byte, error) {
	r, err := age.Decrypt(bytes.NewReader(ciphertext), l.encryptionKey)
	if err != nil {
		return nil, lanternerr.WithCause(lanternerr.ErrBackupDecryptFailed, err)
	}
	plaintext, err := io.ReadAll(r)
	if err != nil {
		return nil, lanternerr.WithCause(lanternerr.ErrBackupDecryptFailed, err)
	}
	return plaintext, nil
}

// VerifySignature checks a hex signature over payload against a hex
// compressed public key.
func VerifySignature(publicKey string, payload []byte, sig string) bool {
	pubBytes, err := hex.DecodeString(publicKey)
	if err != nil {
		return false
	}
	sigBytes, err := hex.DecodeString(sig)
	if err != nil || len(sigBytes) < 64 {
		return false
	}
	// Drop the recovery byte when present.
	return crypto.VerifySignature(pubBytes, crypto.Keccak256(payload), sigBytes[:64])
}
