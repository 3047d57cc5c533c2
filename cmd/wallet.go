package cmd

import (
	"fmt"

	"github.com/refmatrix/refcli/internal/ui"
	"github.com/refmatrix/refcli/internal/wallet"
	"github.com/spf13/cobra"
)

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage the signing key",
}

var walletImportCmd = &cobra.Command{
	Use:   "import <private-key-hex>",
	Short: "Import a signing key into the OS keychain",
	Long: `Store a private key in the OS keychain (Keychain on macOS,
Credential Manager on Windows, Secret Service or an encrypted file on
Linux). The key never touches the config file.

Example:
  refcli wallet import 0xac09...ff80`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		signer, err := wallet.Import(wallet.DefaultKeystore(), wallet.DefaultKeyName, args[0])
		if err != nil {
			return fmt.Errorf("importing key: %w", err)
		}
		fmt.Println(ui.Success("Key imported"))
		fmt.Println(ui.KeyValueBlock("Wallet", [][2]string{
			{"account", signer.Address()},
		}))
		return nil
	},
}

var walletShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the imported account address",
	RunE: func(cmd *cobra.Command, args []string) error {
		signer, err := wallet.Open(wallet.DefaultKeystore(), wallet.DefaultKeyName)
		if err != nil {
			return fmt.Errorf("no key imported; run `refcli wallet import`")
		}
		fmt.Println(ui.KeyValueBlock("Wallet", [][2]string{
			{"account", signer.Address()},
		}))
		return nil
	},
}

var walletRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Delete the signing key from the OS keychain",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(ui.Warn("The key cannot be recovered after removal."))
		if !ui.Confirm("Delete the stored signing key?") {
			fmt.Println(ui.Meta("aborted"))
			return nil
		}
		ks := wallet.DefaultKeystore()
		if err := ks.Delete(wallet.KeyRef(wallet.DefaultKeyName)); err != nil {
			return fmt.Errorf("deleting key: %w", err)
		}
		fmt.Println(ui.Success("Key removed"))
		return nil
	},
}

func init() {
	walletCmd.AddCommand(walletImportCmd, walletShowCmd, walletRemoveCmd)
}
