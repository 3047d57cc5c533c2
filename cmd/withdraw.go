package cmd

import (
	"context"
	"fmt"

	"github.com/refmatrix/refcli/internal/action"
	"github.com/refmatrix/refcli/internal/ui"
	"github.com/spf13/cobra"
)

var withdrawCmd = &cobra.Command{
	Use:   "withdraw",
	Short: "Withdraw accumulated earnings",
	Long: `Pay out the connected account's accumulated referral earnings to
its wallet. Fails cleanly when there is nothing to withdraw.

Example:
  refcli withdraw`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		ctx := context.Background()
		if _, err := a.connect(ctx); err != nil {
			return err
		}

		u := a.sessions.User()
		if u == nil {
			return fmt.Errorf("%w; run `refcli register` first", action.ErrNotRegistered)
		}

		spin := ui.NewSpinner(fmt.Sprintf("Withdrawing %s %s...", u.Balance, cfg.TokenSymbol))
		spin.Start()
		out, err := a.actions.Withdraw(ctx)
		spin.Stop()
		if err != nil {
			return err
		}

		fmt.Println(ui.Success("Withdrawn"))
		printOutcome("Withdrawal", out)
		return nil
	},
}
