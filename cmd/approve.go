package cmd

import (
	"context"
	"fmt"

	"github.com/refmatrix/refcli/internal/chain"
	"github.com/refmatrix/refcli/internal/ui"
	"github.com/spf13/cobra"
)

var approveYes bool

var approveCmd = &cobra.Command{
	Use:   "approve",
	Short: "Grant the contract a token spending allowance",
	Long: `Approve the referral contract to spend the fee token on your
behalf. The allowance is set high enough to cover registration and many
level upgrades, so this normally needs to run only once per account.

Examples:
  refcli approve
  refcli approve --yes    # skip the confirmation prompt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		ctx := context.Background()
		if _, err := a.connect(ctx); err != nil {
			return err
		}

		amount := chain.FormatUnits(cfg.ApproveRaw(), cfg.TokenDecimals) + " " + cfg.TokenSymbol
		if !approveYes && !ui.ConfirmSpend("Approving", amount) {
			fmt.Println(ui.Meta("aborted"))
			return nil
		}

		spin := ui.NewSpinner("Waiting for approval to confirm...")
		spin.Start()
		receipt, err := a.tokens.Approve(ctx, a.sessions.Provider())
		spin.Stop()
		if err != nil {
			return err
		}

		fmt.Println(ui.Success("Allowance granted"))
		pairs := [][2]string{
			{"amount", amount},
			{"tx hash", receipt.Hash},
			{"block", fmt.Sprintf("#%d", receipt.BlockNumber)},
		}
		if url := txURL(receipt.Hash); url != "" {
			pairs = append(pairs, [2]string{"explorer", url})
		}
		fmt.Println(ui.KeyValueBlock("Approval", pairs))
		return nil
	},
}

func init() {
	approveCmd.Flags().BoolVarP(&approveYes, "yes", "y", false, "skip confirmation prompt")
}
