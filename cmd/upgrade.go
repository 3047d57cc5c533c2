package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/refmatrix/refcli/internal/action"
	"github.com/refmatrix/refcli/internal/ui"
	"github.com/spf13/cobra"
)

var upgradeYes bool

var upgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Buy the next matrix level",
	Long: `Upgrade the connected account to the next matrix level. The level
cost is pulled from the token allowance, so a short allowance fails the
dry run before anything is submitted.

Examples:
  refcli upgrade
  refcli upgrade --yes`,
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

		if !upgradeYes && !ui.Confirm(fmt.Sprintf("Upgrade from level %d to %d?", u.Level, u.Level+1)) {
			fmt.Println(ui.Meta("aborted"))
			return nil
		}

		spin := ui.NewSpinner("Upgrading...")
		spin.Start()
		out, err := a.actions.Upgrade(ctx)
		spin.Stop()
		if err != nil {
			if errors.Is(err, action.ErrInsufficientAllowance) {
				return fmt.Errorf("%w; run `refcli approve` first", err)
			}
			return err
		}

		fmt.Println(ui.Success("Upgraded"))
		printOutcome("Upgrade", out)
		return nil
	},
}

func init() {
	upgradeCmd.Flags().BoolVarP(&upgradeYes, "yes", "y", false, "skip confirmation prompt")
}
