package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/lantern-wallet/lantern/internal/wallet"
	lanternerr "github.com/lantern-wallet/lantern/pkg/errors"
)

// terminalPinProvider prompts for PINs on the controlling terminal with
// hidden input.
type terminalPinProvider struct{}

// Request implements vault.PinProvider. An empty entry counts as a
// cancellation.
func (terminalPinProvider) Request(message string, allowCancel bool) (string, bool, error) {
	prompt := message + ": "
	if allowCancel {
		prompt = message + " (empty to cancel): "
	}

	pin, err := promptHidden(prompt)
	if err != nil {
		return "", false, err
	}
	if pin == "" {
		return "", false, nil
	}
	return pin, true, nil
}

// promptHidden reads a line without echo.
func promptHidden(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	raw, err := term.ReadPassword(syscall.Stdin)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading hidden input: %w", err)
	}
	return string(raw), nil
}

// promptNewPin prompts for a fresh PIN with confirmation.
func promptNewPin() (string, error) {
	pin, err := promptHidden("Choose a wallet PIN (4-32 digits): ")
	if err != nil {
		return "", err
	}

	confirm, err := promptHidden("Confirm PIN: ")
	if err != nil {
		return "", err
	}
	if pin != confirm {
		return "", lanternerr.WithSuggestion(
			lanternerr.ErrInvalidInput,
			"PINs do not match",
		)
	}
	return pin, nil
}

// promptMnemonic reads a recovery phrase from stdin, tolerating the
// numbered or comma-separated formats people paste from backups.
func promptMnemonic() (string, error) {
	fmt.Fprintln(os.Stderr, "Enter your recovery phrase:")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading recovery phrase: %w", err)
	}

	mnemonic := wallet.NormalizeMnemonicInput(line)
	if err := wallet.ValidateMnemonic(mnemonic); err != nil {
		if typos := wallet.DetectTypos(mnemonic); len(typos) > 0 {
			var hints []string
			for _, typo := range typos {
				hints = append(hints, fmt.Sprintf("%q -> %q", typo.Word, typo.Suggestion))
			}
			return "", lanternerr.WithSuggestion(err,
				"did you mean: "+strings.Join(hints, ", "))
		}
		return "", err
	}
	return mnemonic, nil
}

// confirmDestructive asks for explicit yes/no confirmation.
func confirmDestructive(message string) (bool, error) {
	fmt.Fprintf(os.Stderr, "%s [y/N]: ", message)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("reading confirmation: %w", err)
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}
