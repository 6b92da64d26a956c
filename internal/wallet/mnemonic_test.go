package wallet_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lantern-wallet/lantern/internal/wallet"
	lanternerr "github.com/lantern-wallet/lantern/pkg/errors"
)

// A known-valid 12-word test vector (all "abandon" + "about" checksum word).
const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func TestGenerateMnemonic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		wordCount int
		wantErr   bool
	}{
		{"12 words", 12, false},
		{"24 words", 24, false},
		{"invalid count", 13, true},
		{"zero", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			mnemonic, err := wallet.GenerateMnemonic(tt.wordCount)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, strings.Fields(mnemonic), tt.wordCount)
			assert.NoError(t, wallet.ValidateMnemonic(mnemonic))
		})
	}
}

func TestValidateMnemonic(t *testing.T) {
	t.Parallel()

	t.Run("valid vector", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, wallet.ValidateMnemonic(testMnemonic))
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()
		assert.ErrorIs(t, wallet.ValidateMnemonic(""), lanternerr.ErrInvalidMnemonic)
	})

	t.Run("wrong word count", func(t *testing.T) {
		t.Parallel()
		assert.ErrorIs(t, wallet.ValidateMnemonic("abandon abandon abandon"), lanternerr.ErrInvalidMnemonic)
	})

	t.Run("bad checksum", func(t *testing.T) {
		t.Parallel()
		bad := strings.Repeat("abandon ", 11) + "abandon"
		assert.ErrorIs(t, wallet.ValidateMnemonic(bad), lanternerr.ErrInvalidMnemonic)
	})
}

func TestNormalizeMnemonicInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"uppercase", "ABANDON About", "abandon about"},
		{"commas", "abandon,about", "abandon about"},
		{"numbered list", "1. abandon\n2. about", "abandon about"},
		{"bullets", "- abandon\n- about", "abandon about"},
		{"extra whitespace", "  abandon \t about  ", "abandon about"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, wallet.NormalizeMnemonicInput(tt.input))
		})
	}
}

func TestNewSecrets_SeedMnemonicConsistency(t *testing.T) {
	t.Parallel()

	t.Run("generated", func(t *testing.T) {
		t.Parallel()
		s, err := wallet.NewSecrets("", 24)
		require.NoError(t, err)

		// Seed must always be re-derivable from the mnemonic.
		seed, err := wallet.MnemonicToSeed(s.Mnemonic)
		require.NoError(t, err)
		assert.Equal(t, seed, s.Seed)
		assert.Len(t, s.Seed, 64)
	})

	t.Run("imported", func(t *testing.T) {
		t.Parallel()
		s, err := wallet.NewSecrets(testMnemonic, 0)
		require.NoError(t, err)
		assert.Equal(t, testMnemonic, s.Mnemonic)
	})

	t.Run("imported invalid", func(t *testing.T) {
		t.Parallel()
		_, err := wallet.NewSecrets("garbage words here", 0)
		assert.ErrorIs(t, err, lanternerr.ErrInvalidMnemonic)
	})
}

func TestSecrets_Wipe(t *testing.T) {
	t.Parallel()

	s, err := wallet.NewSecrets("", 12)
	require.NoError(t, err)

	s.Wipe()
	assert.Nil(t, s.Seed)
	assert.Empty(t, s.Mnemonic)

	// Wiping twice is safe, as is wiping nil.
	s.Wipe()
	var nilSecrets *wallet.Secrets
	nilSecrets.Wipe()
}

func TestDetectTypos(t *testing.T) {
	t.Parallel()

	typos := wallet.DetectTypos("abandno about")
	require.Len(t, typos, 1)
	assert.Equal(t, 0, typos[0].Index)
	assert.Equal(t, "abandno", typos[0].Word)
	assert.Equal(t, "abandon", typos[0].Suggestion)
	assert.LessOrEqual(t, typos[0].Distance, wallet.MaxTypoDistance)

	assert.Nil(t, wallet.DetectTypos(testMnemonic))
	assert.Nil(t, wallet.DetectTypos(""))
}

func TestSuggestWord(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "abandon", wallet.SuggestWord("abandon"))
	assert.Equal(t, "abandon", wallet.SuggestWord("abandonn"))
	assert.Equal(t, "", wallet.SuggestWord("zzzzzzzzzz"))
}
