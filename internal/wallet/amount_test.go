package wallet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lanternerr "github.com/lantern-wallet/lantern/pkg/errors"
)

func TestParseAmount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    uint64
		wantErr bool
	}{
		{name: "whole coins", input: "5", want: 5_000_000_000_000},
		{name: "fractional", input: "0.5", want: 500_000_000_000},
		{name: "smallest unit", input: "0.000000000001", want: 1},
		{name: "mixed", input: "1.25", want: 1_250_000_000_000},
		{name: "leading dot", input: ".1", want: 100_000_000_000},
		{name: "whitespace trimmed", input: " 2 ", want: 2_000_000_000_000},
		{name: "zero", input: "0", want: 0},
		{name: "empty", input: "", wantErr: true},
		{name: "negative", input: "-1", wantErr: true},
		{name: "too many decimals", input: "0.0000000000001", wantErr: true},
		{name: "not a number", input: "abc", wantErr: true},
		{name: "two dots", input: "1.2.3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, lanternerr.ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatAmount(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "5", FormatAmount(5_000_000_000_000))
	assert.Equal(t, "0.5", FormatAmount(500_000_000_000))
	assert.Equal(t, "1.25", FormatAmount(1_250_000_000_000))
	assert.Equal(t, "0.000000000001", FormatAmount(1))
	assert.Equal(t, "0", FormatAmount(0))
}

func TestAmountRoundTrip(t *testing.T) {
	t.Parallel()

	for _, atomic := range []uint64{0, 1, 999, 1_000_000_000_000, 1_250_000_000_000, 42_000_000_000_001} {
		parsed, err := ParseAmount(FormatAmount(atomic))
		require.NoError(t, err)
		assert.Equal(t, atomic, parsed)
	}
}
