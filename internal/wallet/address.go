package wallet

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcutil/base58"
	"github.com/tyler-smith/go-bip32"
	"golang.org/x/crypto/sha3"

	lanternerr "github.com/lantern-wallet/lantern/pkg/errors"
)

// Address version bytes per network.
const (
	mainnetVersion  = 0x4c
	stagenetVersion = 0x6c
)

// addressChecksumLen is the number of checksum bytes appended to the
// address payload.
const addressChecksumLen = 4

// derivationPath is the fixed hardened path the receive key is derived
// from: purpose 44' / coin 628' / account 0'.
var derivationPath = []uint32{
	bip32.FirstHardenedChild + 44,
	bip32.FirstHardenedChild + 628,
	bip32.FirstHardenedChild,
}

// DeriveAddress derives the wallet's public receive address from the seed.
// The address encodes version || sha3-256(pubkey)[:20] || checksum in
// base58.
func DeriveAddress(seed []byte, network Network) (string, error) {
	key, err := bip32.NewMasterKey(seed)
	if err != nil {
		return "", fmt.Errorf("deriving master key: %w", err)
	}

	for _, idx := range derivationPath {
		key, err = key.NewChildKey(idx)
		if err != nil {
			return "", fmt.Errorf("deriving child key: %w", err)
		}
	}

	pubkey := key.PublicKey().Key
	hash := sha3.Sum256(pubkey)

	payload := make([]byte, 0, 1+20)
	payload = append(payload, versionByte(network))
	payload = append(payload, hash[:20]...)

	return base58.Encode(append(payload, addressChecksum(payload)...)), nil
}

// ValidateAddress checks that an address is well-formed for the network:
// correct length, version byte, and checksum.
func ValidateAddress(address string, network Network) error {
	decoded := base58.Decode(address)
	if len(decoded) != 1+20+addressChecksumLen {
		return lanternerr.ErrInvalidAddress
	}

	payload := decoded[:len(decoded)-addressChecksumLen]
	if payload[0] != versionByte(network) {
		return lanternerr.WithSuggestion(lanternerr.ErrInvalidAddress, "address belongs to a different network")
	}

	if !bytes.Equal(decoded[len(decoded)-addressChecksumLen:], addressChecksum(payload)) {
		return lanternerr.WithSuggestion(lanternerr.ErrInvalidAddress, "address checksum mismatch - check for typos")
	}

	return nil
}

func versionByte(network Network) byte {
	if network == NetworkStagenet {
		return stagenetVersion
	}
	return mainnetVersion
}

func addressChecksum(payload []byte) []byte {
	sum := sha3.Sum256(payload)
	return sum[:addressChecksumLen]
}
