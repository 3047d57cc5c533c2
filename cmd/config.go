package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/refmatrix/refcli/internal/chain"
	"github.com/refmatrix/refcli/internal/sync"
	"github.com/refmatrix/refcli/internal/ui"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the active configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(ui.KeyValueBlock("Configuration", [][2]string{
			{"config dir", cfg.Dir()},
			{"network", cfg.NetworkName},
			{"chain id", fmt.Sprintf("%d", cfg.ChainID)},
			{"rpc url", cfg.RPCURL},
			{"explorer", cfg.ExplorerURL},
			{"contract", orUnset(cfg.ContractAddress)},
			{"token", orUnset(cfg.TokenAddress)},
			{"token symbol", cfg.TokenSymbol},
			{"fee", fmt.Sprintf("%d %s", cfg.RegistrationFee, cfg.TokenSymbol)},
			{"approve amount", fmt.Sprintf("%d %s", cfg.ApproveAmount, cfg.TokenSymbol)},
		}))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value and persist it.

Keys:
  contract-address   referral contract address
  token-address      fee token address
  token-symbol       fee token display symbol
  chain-id           numeric chain id
  network-name       display name of the network
  rpc-url            JSON-RPC endpoint
  explorer-url       block explorer base URL

Example:
  refcli config set contract-address 0x1111...1111`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		switch key {
		case "contract-address":
			cfg.ContractAddress = value
		case "token-address":
			cfg.TokenAddress = value
		case "token-symbol":
			cfg.TokenSymbol = value
		case "chain-id":
			id, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid chain id %q", value)
			}
			cfg.ChainID = id
		case "network-name":
			cfg.NetworkName = value
		case "rpc-url":
			cfg.RPCURL = value
		case "explorer-url":
			cfg.ExplorerURL = value
		default:
			return fmt.Errorf("unknown config key %q; run `refcli config set --help`", key)
		}

		if err := cfg.Save(); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Println(ui.Success(fmt.Sprintf("%s = %s", key, value)))
		return nil
	},
}

var configUseCmd = &cobra.Command{
	Use:   "use <network>",
	Short: "Switch to a preset network",
	Long: `Point the configuration at one of the preset networks. Contract
and token addresses are deployment-specific and stay as they are.

Known networks: ` + strings.Join(chain.NetworkNames(), ", ") + `

Example:
  refcli config use bsc-testnet`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		desc, err := chain.Network(args[0])
		if err != nil {
			return err
		}
		cfg.ApplyNetwork(desc)
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Println(ui.Success("Switched to " + desc.Name))
		return nil
	},
}

var configSyncCmd = &cobra.Command{
	Use:   "sync <manifest-url>",
	Short: "Pull contract addresses from a deployment manifest",
	Long: `Fetch a published deployments.json and apply it to the local
configuration. Used after contract redeploys so every client picks up the
new addresses from one source.

Example:
  refcli config sync https://example.com/deployments.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := sync.New(cfg).Run(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Println(ui.Success("Configuration synced"))
		fmt.Println(ui.KeyValueBlock("Deployment", [][2]string{
			{"contract", m.ContractAddress},
			{"token", m.TokenAddress},
		}))
		return nil
	},
}

func orUnset(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetCmd, configUseCmd, configSyncCmd)
}
