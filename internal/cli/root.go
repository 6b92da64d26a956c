// Package cli implements the lantern command-line interface.
//
// This package uses global variables to manage CLI state, which is the
// standard pattern for Cobra-based CLI applications. The globals are
// initialized in PersistentPreRunE and cleaned up in PersistentPostRun.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level state
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lantern-wallet/lantern/internal/config"
	"github.com/lantern-wallet/lantern/internal/version"
	lanternerr "github.com/lantern-wallet/lantern/pkg/errors"
)

var (
	// Global flags
	homeDir string
	verbose bool

	// Global state initialized in PersistentPreRunE
	cfg    *config.Config
	logger *zap.SugaredLogger
	app    *App
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "lantern",
	Short: "An encrypted hot wallet for the lantern network",
	Long: `Lantern manages an encrypted on-device wallet: PIN-protected key
storage, background chain sync against remote nodes, and best-effort
encrypted backups over the relay network.

Example:
  lantern create
  lantern balance
  lantern send --to 4Address... --amount 0.5`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return initGlobals()
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		cleanup()
	},
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		printError(err)
		return lanternerr.ExitCode(err)
	}
	return 0
}

func printError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	var lerr *lanternerr.LanternError
	if lanternerr.As(err, &lerr) && lerr.Suggestion != "" {
		fmt.Fprintf(os.Stderr, "Hint: %s\n", lerr.Suggestion)
	}
}

// initGlobals loads configuration and builds the application graph.
func initGlobals() error {
	home := homeDir
	if home == "" {
		home = os.Getenv(config.EnvHome)
	}
	if home == "" {
		home = config.DefaultHome()
	}

	var err error
	cfg, err = config.Load(config.Path(home))
	if err != nil {
		cfg = config.Defaults()
	}
	cfg.Home = home
	config.ApplyEnvironment(cfg)

	if verbose {
		cfg.Logging.Level = "debug"
	}

	logger, err = config.NewLogger(cfg.Logging)
	if err != nil {
		logger = config.NullLogger()
	}

	app, err = newApp(cfg, logger)
	return err
}

// cleanup releases resources.
func cleanup() {
	if app != nil {
		app.Close()
	}
	if logger != nil {
		_ = logger.Sync()
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the lantern version",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Println(version.String())
	},
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for flag registration
func init() {
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "lantern data directory (default: ~/.lantern)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	rootCmd.AddCommand(versionCmd)
}
