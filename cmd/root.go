package cmd

import (
	"fmt"
	"os"

	"github.com/refmatrix/refcli/internal/config"
	"github.com/spf13/cobra"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/refmatrix/refcli/cmd.Version=1.2.3" .
var Version = "1.0.0"

var (
	cfgDir  string
	cfg     *config.Config
	verbose bool
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "refcli",
	Short: "Referral matrix from the terminal",
	Long: `refcli is a terminal client for the on-chain referral matrix.

  Connect a wallet, approve the fee token, register under a referrer,
  buy matrix levels, and withdraw earnings.

Contract and token addresses come from the config file (~/.refcli) or
REFCLI_* environment variables. Set them once with:
  refcli config set contract-address 0x...
  refcli config set token-address 0x...`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load config (skip for commands that don't need it).
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// REFCLI_CONFIG_DIR env var overrides --config flag.
	if envDir := os.Getenv("REFCLI_CONFIG_DIR"); envDir != "" {
		cfgDir = envDir
	}

	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", cfgDir, "config directory (default: ~/.refcli)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Register all sub-commands.
	rootCmd.AddCommand(
		connectCmd,
		statusCmd,
		approveCmd,
		registerCmd,
		upgradeCmd,
		withdrawCmd,
		walletCmd,
		configCmd,
	)
}
