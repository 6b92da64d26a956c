package cli

import (
	"github.com/spf13/cobra"
)

// backupCmd is the parent command for remote backups.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage encrypted remote backups",
	Long: `Publish the wallet secrets as a self-encrypted backup record, or
restore a wallet from the newest backup published by this identity.`,
}

// backupPublishCmd uploads a fresh backup record.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var backupPublishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish an encrypted backup",
	Long: `Encrypt the wallet secrets to this device's relay identity and
publish them as a backup record. Only the same identity can decrypt it.

Example:
  lantern backup publish`,
	Args: cobra.NoArgs,
	RunE: runBackupPublish,
}

// backupRestoreCmd recovers a wallet from the newest backup.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var backupRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore the wallet from a backup",
	Long: `Fetch the newest backup record published by this relay identity,
decrypt it, and recreate the wallet under a new PIN.

Example:
  lantern backup restore`,
	Args: cobra.NoArgs,
	RunE: runBackupRestore,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.AddCommand(backupPublishCmd)
	backupCmd.AddCommand(backupRestoreCmd)
}

func runBackupPublish(cmd *cobra.Command, _ []string) error {
	if err := ensureUnlocked(); err != nil {
		return err
	}

	if err := app.Session.PublishBackup(cmd.Context()); err != nil {
		return err
	}
	outln(cmd.OutOrStdout(), "Backup published.")
	return nil
}

func runBackupRestore(cmd *cobra.Command, _ []string) error {
	pin, err := promptNewPin()
	if err != nil {
		return err
	}

	meta, err := app.Session.RestoreFromBackup(cmd.Context(), pin)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	outln(w, "Wallet restored from backup.")
	out(w, "Address:        %s\n", meta.Address)
	out(w, "Network:        %s\n", meta.Network)
	out(w, "Restore height: %d\n", meta.RestoreHeight)
	return nil
}
