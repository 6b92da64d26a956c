package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/lantern-wallet/lantern/internal/engine"
	"github.com/lantern-wallet/lantern/internal/wallet"
	lanternerr "github.com/lantern-wallet/lantern/pkg/errors"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	// sendTo is the destination address.
	sendTo string
	// sendAmount is the amount in coins, e.g. "1.25".
	sendAmount string
	// sendPriority selects the fee tier (low, normal, high).
	sendPriority string
	// sendSubtractFee deducts the fee from the sent amount.
	sendSubtractFee bool
	// sendRecipient is the recipient's relay identity for a payment receipt.
	sendRecipient string
	// sendNote is an opaque reference carried in the receipt.
	sendNote string
)

// sendCmd transfers funds.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send funds",
	Long: `Send funds to an address.

With --recipient, an encrypted payment receipt is published to the
recipient's relay identity after the transfer confirms locally.

Example:
  lantern send --to 4Address... --amount 1.25
  lantern send --to 4Address... --amount 0.5 --priority high
  lantern send --to 4Address... --amount 10 --subtract-fee`,
	Args: cobra.NoArgs,
	RunE: runSend,
}

// sweepCmd drains the wallet.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var sweepCmd = &cobra.Command{
	Use:   "sweep <address>",
	Short: "Send the entire unlocked balance",
	Long: `Send the entire unlocked balance to an address. Large wallets may
split the sweep into several transactions.

Example:
  lantern sweep 4Address...`,
	Args: cobra.ExactArgs(1),
	RunE: runSweep,
}

// historyCmd lists past transfers.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show transaction history",
	Long: `Show incoming and outgoing transfers, newest first.

Example:
  lantern history`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(historyCmd)

	sendCmd.Flags().StringVar(&sendTo, "to", "", "destination address (required)")
	sendCmd.Flags().StringVar(&sendAmount, "amount", "", "amount in coins, e.g. 1.25 (required)")
	sendCmd.Flags().StringVar(&sendPriority, "priority", "normal", "fee priority: low, normal, or high")
	sendCmd.Flags().BoolVar(&sendSubtractFee, "subtract-fee", false, "deduct the fee from the sent amount")
	sendCmd.Flags().StringVar(&sendRecipient, "recipient", "", "recipient relay identity for a payment receipt")
	sendCmd.Flags().StringVar(&sendNote, "note", "", "opaque reference carried in the receipt")
	_ = sendCmd.MarkFlagRequired("to")
	_ = sendCmd.MarkFlagRequired("amount")
}

// parsePriority maps the --priority flag to a fee tier.
func parsePriority(value string) (engine.Priority, error) {
	switch value {
	case "low":
		return engine.PriorityLow, nil
	case "normal", "":
		return engine.PriorityNormal, nil
	case "high":
		return engine.PriorityHigh, nil
	default:
		return "", lanternerr.WithSuggestion(
			lanternerr.ErrInvalidInput,
			"priority must be low, normal, or high",
		)
	}
}

func runSend(cmd *cobra.Command, _ []string) error {
	amount, err := wallet.ParseAmount(sendAmount)
	if err != nil {
		return err
	}

	priority, err := parsePriority(sendPriority)
	if err != nil {
		return err
	}

	if err := ensureUnlocked(); err != nil {
		return err
	}

	result, err := app.Session.Send(cmd.Context(), engine.SendOptions{
		Address:           sendTo,
		AmountAtomic:      amount,
		Priority:          priority,
		SubtractFee:       sendSubtractFee,
		RecipientIdentity: sendRecipient,
		NoteReference:     sendNote,
	})
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	outln(w, "Sent.")
	out(w, "Tx hash: %s\n", result.TxHash)
	out(w, "Amount:  %s\n", wallet.FormatAmount(result.AmountAtomic))
	out(w, "Fee:     %s\n", wallet.FormatAmount(result.Fee))
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	confirmed, err := confirmDestructive(
		"This sends the entire unlocked balance to " + args[0] + ". Continue?")
	if err != nil {
		return err
	}
	if !confirmed {
		outln(cmd.OutOrStdout(), "Sweep canceled.")
		return nil
	}

	if err := ensureUnlocked(); err != nil {
		return err
	}

	results, err := app.Session.SweepAll(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	out(w, "Swept in %d transaction(s):\n", len(results))
	for _, result := range results {
		out(w, "  %s  amount %s  fee %s\n",
			result.TxHash,
			wallet.FormatAmount(result.AmountAtomic),
			wallet.FormatAmount(result.Fee))
	}
	return nil
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if err := ensureUnlocked(); err != nil {
		return err
	}

	txs, err := app.Session.TransactionHistory(cmd.Context())
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if len(txs) == 0 {
		outln(w, "No transactions yet.")
		return nil
	}

	for _, tx := range txs {
		sign := "+"
		if tx.Direction == engine.DirectionOut {
			sign = "-"
		}

		when := "pending"
		if t := tx.SortTime(); !t.IsZero() {
			when = t.Format(time.DateTime)
		}

		out(w, "%s  %s%s  %s  (%d confirmations)\n",
			when, sign, wallet.FormatAmount(tx.AmountAtomic), tx.TxHash, tx.Confirmations)
	}
	return nil
}
