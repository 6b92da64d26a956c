package wallet_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lantern-wallet/lantern/internal/wallet"
	lanternerr "github.com/lantern-wallet/lantern/pkg/errors"
)

func TestDeriveAddress(t *testing.T) {
	t.Parallel()

	seed, err := wallet.MnemonicToSeed(testMnemonic)
	require.NoError(t, err)

	addr, err := wallet.DeriveAddress(seed, wallet.NetworkMainnet)
	require.NoError(t, err)
	assert.NotEmpty(t, addr)
	assert.NoError(t, wallet.ValidateAddress(addr, wallet.NetworkMainnet))

	// Deterministic: same seed, same address.
	addr2, err := wallet.DeriveAddress(seed, wallet.NetworkMainnet)
	require.NoError(t, err)
	assert.Equal(t, addr, addr2)
}

func TestDeriveAddress_NetworksDiffer(t *testing.T) {
	t.Parallel()

	seed, err := wallet.MnemonicToSeed(testMnemonic)
	require.NoError(t, err)

	mainnet, err := wallet.DeriveAddress(seed, wallet.NetworkMainnet)
	require.NoError(t, err)
	stagenet, err := wallet.DeriveAddress(seed, wallet.NetworkStagenet)
	require.NoError(t, err)

	assert.NotEqual(t, mainnet, stagenet)
	assert.ErrorIs(t, wallet.ValidateAddress(stagenet, wallet.NetworkMainnet), lanternerr.ErrInvalidAddress)
}

func TestValidateAddress(t *testing.T) {
	t.Parallel()

	seed, err := wallet.MnemonicToSeed(testMnemonic)
	require.NoError(t, err)
	addr, err := wallet.DeriveAddress(seed, wallet.NetworkMainnet)
	require.NoError(t, err)

	tests := []struct {
		name    string
		address string
		wantErr bool
	}{
		{"valid", addr, false},
		{"empty", "", true},
		{"truncated", addr[:len(addr)-2], true},
		{"corrupted", "1" + addr[1:], true},
		{"not base58", "l0O!!!", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := wallet.ValidateAddress(tt.address, wallet.NetworkMainnet)
			if tt.wantErr {
				assert.ErrorIs(t, err, lanternerr.ErrInvalidAddress)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
