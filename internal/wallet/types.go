// Package wallet defines the wallet's secret and public data types,
// BIP39 mnemonic handling, and public address derivation.
package wallet

import (
	"time"

	"github.com/lantern-wallet/lantern/internal/lanterncrypto"
)

// Network identifies which chain network a wallet belongs to.
type Network string

// Supported networks.
const (
	NetworkMainnet  Network = "mainnet"
	NetworkStagenet Network = "stagenet"
)

// Secrets is the wallet's root secret material. It exists in plaintext
// only in memory while the wallet is unlocked; at rest it is always
// ciphertext under the master key.
type Secrets struct {
	// Seed is the BIP39-derived binary seed.
	Seed []byte `json:"seed"`

	// Mnemonic is the human-readable word-list encoding of the seed.
	// Seed and Mnemonic always describe the same wallet.
	Mnemonic string `json:"mnemonic"`
}

// Clone returns an independent copy whose seed does not share backing
// memory, so wiping either copy leaves the other intact.
func (s *Secrets) Clone() *Secrets {
	if s == nil {
		return nil
	}
	return &Secrets{
		Seed:     append([]byte(nil), s.Seed...),
		Mnemonic: s.Mnemonic,
	}
}

// Wipe zeroes the seed bytes. The mnemonic string cannot be zeroed in
// place; callers drop the reference.
func (s *Secrets) Wipe() {
	if s == nil {
		return
	}
	lanterncrypto.ZeroBytes(s.Seed)
	s.Seed = nil
	s.Mnemonic = ""
}

// Meta is the wallet's non-secret public metadata, persisted in plaintext.
type Meta struct {
	// Address is the wallet's public receive address.
	Address string `json:"address"`

	// Network the wallet was created on.
	Network Network `json:"network"`

	// CreatedAt is the wallet creation time.
	CreatedAt time.Time `json:"created_at"`

	// RestoreHeight is the chain height scanning starts from.
	RestoreHeight uint64 `json:"restore_height"`

	// NodeID is the id of the remote node the wallet last used.
	// The only field that mutates after creation.
	NodeID string `json:"node_id"`
}
