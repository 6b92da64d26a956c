package wallet

import (
	"fmt"
	"strconv"
	"strings"

	lanternerr "github.com/lantern-wallet/lantern/pkg/errors"
)

// AtomicDigits is the number of decimal places in one coin.
const AtomicDigits = 12

// AtomicPerCoin is the number of atomic units in one coin.
const AtomicPerCoin = uint64(1_000_000_000_000)

// ParseAmount parses a decimal coin amount string into atomic units.
// Parsing is done on the decimal string directly, never through floats,
// so amounts round-trip exactly.
func ParseAmount(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "-") {
		return 0, lanternerr.ErrInvalidAmount
	}

	whole := s
	frac := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > AtomicDigits {
		return 0, lanternerr.WithDetails(lanternerr.ErrInvalidAmount,
			map[string]string{"max_decimals": strconv.Itoa(AtomicDigits)})
	}

	wholeUnits, err := strconv.ParseUint(whole, 10, 64)
	if err != nil {
		return 0, lanternerr.ErrInvalidAmount
	}

	fracUnits := uint64(0)
	if frac != "" {
		padded := frac + strings.Repeat("0", AtomicDigits-len(frac))
		fracUnits, err = strconv.ParseUint(padded, 10, 64)
		if err != nil {
			return 0, lanternerr.ErrInvalidAmount
		}
	}

	if wholeUnits > (1<<64-1)/AtomicPerCoin {
		return 0, lanternerr.ErrInvalidAmount
	}
	atomic := wholeUnits * AtomicPerCoin
	if atomic+fracUnits < atomic {
		return 0, lanternerr.ErrInvalidAmount
	}
	return atomic + fracUnits, nil
}

// FormatAmount renders atomic units as a decimal coin string with
// trailing zeros trimmed.
func FormatAmount(atomic uint64) string {
	whole := atomic / AtomicPerCoin
	frac := atomic % AtomicPerCoin
	if frac == 0 {
		return strconv.FormatUint(whole, 10)
	}

	fracStr := strings.TrimRight(fmt.Sprintf("%012d", frac), "0")
	return fmt.Sprintf("%d.%s", whole, fracStr)
}
