package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lantern-wallet/lantern/internal/session"
	"github.com/lantern-wallet/lantern/internal/wallet"
	lanternerr "github.com/lantern-wallet/lantern/pkg/errors"
)

// out is a helper for CLI output that ignores write errors (standard pattern for CLI tools).
//
//nolint:errcheck // CLI output writes to stdout are intentionally unchecked
func out(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, format, args...)
}

// outln is a helper for CLI output with newline.
//
//nolint:errcheck // CLI output writes to stdout are intentionally unchecked
func outln(w io.Writer, args ...interface{}) {
	fmt.Fprintln(w, args...)
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	// createWords is the number of words for mnemonic generation.
	createWords int
	// createImport indicates the wallet should be restored from a recovery phrase.
	createImport bool
	// createBirthday is the wallet creation date for imports (YYYY-MM-DD).
	createBirthday string
)

// createCmd creates or imports the wallet.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new wallet",
	Long: `Create a new wallet protected by a PIN.

A fresh recovery phrase is generated and shown once - write it down and
store it securely. With --import you are prompted for an existing
recovery phrase instead; pass --birthday to skip scanning blocks older
than the wallet.

Example:
  lantern create
  lantern create --words 24
  lantern create --import --birthday 2024-03-01`,
	Args: cobra.NoArgs,
	RunE: runCreate,
}

// unlockCmd decrypts the wallet for this process.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var unlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Unlock the wallet",
	Long: `Unlock the wallet with your PIN and start background sync.

Example:
  lantern unlock`,
	Args: cobra.NoArgs,
	RunE: runUnlock,
}

// lockCmd discards decrypted key material.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var lockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Lock the wallet",
	Long: `Lock the wallet, wiping decrypted keys from memory.

Example:
  lantern lock`,
	Args: cobra.NoArgs,
	RunE: runLock,
}

// deleteCmd wipes the wallet from this device.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the wallet from this device",
	Long: `Delete the wallet and all its local data from this device.

Your funds remain on chain and can be recovered with the recovery
phrase, but this device loses all access.

Example:
  lantern delete`,
	Args: cobra.NoArgs,
	RunE: runDelete,
}

// statusCmd reports wallet and node state.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show wallet status",
	Long: `Show the wallet state, network, active node, and restore height.

Example:
  lantern status`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

// mnemonicCmd reveals the recovery phrase.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var mnemonicCmd = &cobra.Command{
	Use:   "mnemonic",
	Short: "Show the recovery phrase",
	Long: `Show the wallet's recovery phrase. Requires the wallet PIN.

Anyone with this phrase controls your funds. Never share it and never
enter it on a website.

Example:
  lantern mnemonic`,
	Args: cobra.NoArgs,
	RunE: runMnemonic,
}

// balanceCmd prints the current balance.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show the wallet balance",
	Long: `Show the total and unlocked balance.

Example:
  lantern balance`,
	Args: cobra.NoArgs,
	RunE: runBalance,
}

// syncCmd refreshes the wallet against the active node.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync the wallet with the network",
	Long: `Refresh the wallet against the active node and report the balance.

Example:
  lantern sync`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(unlockCmd)
	rootCmd.AddCommand(lockCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(mnemonicCmd)
	rootCmd.AddCommand(balanceCmd)
	rootCmd.AddCommand(syncCmd)

	createCmd.Flags().IntVar(&createWords, "words", 12, "recovery phrase word count (12 or 24)")
	createCmd.Flags().BoolVar(&createImport, "import", false, "restore from an existing recovery phrase")
	createCmd.Flags().StringVar(&createBirthday, "birthday", "", "wallet creation date for imports (YYYY-MM-DD)")
}

// ensureUnlocked unlocks a locked wallet before an operation that needs
// plaintext keys. Already-unlocked sessions pass straight through.
func ensureUnlocked() error {
	if app.Session.State() != session.StateLocked {
		return nil
	}
	return app.Session.Unlock(false)
}

func runCreate(cmd *cobra.Command, _ []string) error {
	if createWords != 12 && createWords != 24 {
		return lanternerr.WithSuggestion(
			lanternerr.ErrInvalidInput,
			"word count must be 12 or 24",
		)
	}

	opts := session.CreateOptions{WordCount: createWords}

	if createImport {
		mnemonic, err := promptMnemonic()
		if err != nil {
			return err
		}
		opts.Mnemonic = mnemonic

		if createBirthday != "" {
			createdAt, err := time.Parse("2006-01-02", createBirthday)
			if err != nil {
				return lanternerr.WithSuggestion(
					lanternerr.ErrInvalidInput,
					"birthday must be a date like 2024-03-01",
				)
			}
			opts.CreatedAt = createdAt
		}
	}

	pin, err := promptNewPin()
	if err != nil {
		return err
	}
	opts.Pin = pin

	meta, err := app.Session.Create(cmd.Context(), opts)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if !createImport {
		mnemonic, mErr := app.Session.Mnemonic()
		if mErr != nil {
			return mErr
		}
		displayMnemonic(mnemonic, w)
	}

	outln(w, "Wallet created.")
	out(w, "Address:        %s\n", meta.Address)
	out(w, "Network:        %s\n", meta.Network)
	out(w, "Restore height: %d\n", meta.RestoreHeight)
	return nil
}

func runUnlock(cmd *cobra.Command, _ []string) error {
	if err := app.Session.Unlock(false); err != nil {
		return err
	}
	outln(cmd.OutOrStdout(), "Wallet unlocked.")
	return nil
}

func runLock(cmd *cobra.Command, _ []string) error {
	if err := app.Session.Lock(cmd.Context()); err != nil {
		return err
	}
	outln(cmd.OutOrStdout(), "Wallet locked.")
	return nil
}

func runDelete(cmd *cobra.Command, _ []string) error {
	if app.Session.State() == session.StateNoWallet {
		return lanternerr.ErrNoWallet
	}

	confirmed, err := confirmDestructive(
		"This permanently deletes the wallet from this device. Without your recovery phrase or a remote backup, funds are unrecoverable. Continue?")
	if err != nil {
		return err
	}
	if !confirmed {
		outln(cmd.OutOrStdout(), "Delete canceled.")
		return nil
	}

	if err := app.Session.Delete(cmd.Context()); err != nil {
		return err
	}
	outln(cmd.OutOrStdout(), "Wallet deleted from this device.")
	return nil
}

func runStatus(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()
	out(w, "State:   %s\n", app.Session.State())

	meta := app.Session.Meta()
	if meta == nil {
		if app.Session.State() == session.StateNoWallet {
			outln(w, "No wallet on this device. Create one with: lantern create")
		}
	} else {
		out(w, "Address: %s\n", meta.Address)
		out(w, "Network: %s\n", meta.Network)
		out(w, "Created: %s\n", meta.CreatedAt.Format("2006-01-02 15:04:05"))
		out(w, "Restore height: %d\n", meta.RestoreHeight)
	}

	if node, err := app.Registry.Active(); err == nil {
		out(w, "Node:    %s (%s)\n", node.Label, node.URI)
	}
	return nil
}

func runMnemonic(cmd *cobra.Command, _ []string) error {
	if err := ensureUnlocked(); err != nil {
		return err
	}

	mnemonic, err := app.Session.Mnemonic()
	if err != nil {
		return err
	}

	displayMnemonic(mnemonic, cmd.OutOrStdout())
	return nil
}

func runBalance(cmd *cobra.Command, _ []string) error {
	if err := ensureUnlocked(); err != nil {
		return err
	}

	balance, err := app.Session.Balance(cmd.Context())
	if err != nil {
		return err
	}

	displayBalance(balance.Total, balance.Unlocked, cmd.OutOrStdout())
	return nil
}

func runSync(cmd *cobra.Command, _ []string) error {
	if err := ensureUnlocked(); err != nil {
		return err
	}

	balance, err := app.Session.Sync(cmd.Context())
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	outln(w, "Sync complete.")
	displayBalance(balance.Total, balance.Unlocked, w)
	return nil
}

// displayBalance prints total and unlocked amounts.
func displayBalance(total, unlocked uint64, w io.Writer) {
	out(w, "Balance:  %s\n", wallet.FormatAmount(total))
	out(w, "Unlocked: %s\n", wallet.FormatAmount(unlocked))
}

// displayMnemonic shows the recovery phrase with formatting.
func displayMnemonic(mnemonic string, w io.Writer) {
	outln(w)
	outln(w, "═══════════════════════════════════════════════════════════════")
	outln(w, "                    RECOVERY PHRASE")
	outln(w, "═══════════════════════════════════════════════════════════════")
	outln(w)
	outln(w, "Write down these words in order and store them securely.")
	outln(w, "This is the ONLY way to recover your wallet.")
	outln(w)

	words := strings.Fields(mnemonic)
	for i, word := range words {
		out(w, "%2d. %s\n", i+1, word)
	}

	outln(w)
	outln(w, "═══════════════════════════════════════════════════════════════")
	outln(w)
}
