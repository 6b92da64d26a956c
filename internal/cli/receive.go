package cli

import (
	"github.com/spf13/cobra"

	"github.com/lantern-wallet/lantern/internal/output"
	"github.com/lantern-wallet/lantern/internal/session"
	lanternerr "github.com/lantern-wallet/lantern/pkg/errors"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var receiveNoQR bool

// receiveCmd shows the wallet's receive address.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var receiveCmd = &cobra.Command{
	Use:   "receive",
	Short: "Show the receive address",
	Long: `Show the wallet's receive address, with a QR code when stdout is a
terminal.

Example:
  lantern receive
  lantern receive --no-qr`,
	Aliases: []string{"address"},
	Args:    cobra.NoArgs,
	RunE:    runReceive,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(receiveCmd)
	receiveCmd.Flags().BoolVar(&receiveNoQR, "no-qr", false, "skip the QR code")
}

func runReceive(cmd *cobra.Command, _ []string) error {
	if app.Session.State() == session.StateNoWallet {
		return lanternerr.ErrNoWallet
	}
	if err := ensureUnlocked(); err != nil {
		return err
	}

	meta := app.Session.Meta()
	if meta == nil {
		return lanternerr.ErrNoWallet
	}

	w := cmd.OutOrStdout()
	outln(w, meta.Address)

	if receiveNoQR {
		return nil
	}
	return output.RenderQR(w, meta.Address, output.DefaultQRConfig())
}
