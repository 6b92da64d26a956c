package errors_test

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lanternerr "github.com/lantern-wallet/lantern/pkg/errors"
)

func TestLanternError_Error(t *testing.T) {
	t.Parallel()

	t.Run("message only", func(t *testing.T) {
		t.Parallel()
		err := lanternerr.New("TEST", "something happened")
		assert.Equal(t, "something happened", err.Error())
	})

	t.Run("details are sorted", func(t *testing.T) {
		t.Parallel()
		err := lanternerr.WithDetails(lanternerr.ErrUnknownNode, map[string]string{
			"node": "custom",
			"have": "2",
		})
		assert.Equal(t, "no node with that id is configured (have: 2) (node: custom)", err.Error())
	})

	t.Run("cause is appended", func(t *testing.T) {
		t.Parallel()
		err := lanternerr.Wrap(stderrors.New("boom"), "syncing")
		assert.Equal(t, "syncing: boom", err.Error())
	})
}

func TestIs_MatchesByCode(t *testing.T) {
	t.Parallel()

	wrapped := lanternerr.Wrap(lanternerr.ErrWrongPin, "unlock attempt 3")
	assert.True(t, lanternerr.Is(wrapped, lanternerr.ErrWrongPin))
	assert.False(t, lanternerr.Is(wrapped, lanternerr.ErrUnlockExhausted))
}

func TestWrap_PreservesCodeAndExitCode(t *testing.T) {
	t.Parallel()

	err := lanternerr.Wrap(lanternerr.ErrVaultCorrupted, "loading master key")
	require.Error(t, err)

	var le *lanternerr.LanternError
	require.True(t, lanternerr.As(err, &le))
	assert.Equal(t, "VAULT_CORRUPTED", le.Code)
	assert.Equal(t, lanternerr.ExitFatal, le.ExitCode)
}

func TestWrap_NilIsNil(t *testing.T) {
	t.Parallel()
	assert.NoError(t, lanternerr.Wrap(nil, "ignored"))
	assert.NoError(t, lanternerr.WithSuggestion(nil, "ignored"))
	assert.NoError(t, lanternerr.WithDetails(nil, nil))
}

func TestWithSuggestion(t *testing.T) {
	t.Parallel()

	err := lanternerr.WithSuggestion(lanternerr.ErrPortRequired, "append an explicit port, e.g. :18081")
	var le *lanternerr.LanternError
	require.True(t, lanternerr.As(err, &le))
	assert.Equal(t, "append an explicit port, e.g. :18081", le.Suggestion)
	assert.Equal(t, "PORT_REQUIRED", le.Code)
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, lanternerr.ExitSuccess},
		{"plain error", stderrors.New("x"), lanternerr.ExitGeneral},
		{"weak pin", lanternerr.ErrWeakPin, lanternerr.ExitInput},
		{"exhausted", lanternerr.ErrUnlockExhausted, lanternerr.ExitFatal},
		{"insufficient funds", lanternerr.ErrInsufficientFunds, lanternerr.ExitPermission},
		{"wrapped keeps code", lanternerr.Wrap(lanternerr.ErrNoBackupFound, "restore"), lanternerr.ExitNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, lanternerr.ExitCode(tt.err))
		})
	}
}

func TestCode(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "NO_WALLET", lanternerr.Code(lanternerr.ErrNoWallet))
	assert.Equal(t, "GENERAL_ERROR", lanternerr.Code(stderrors.New("x")))
}
