package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/refmatrix/refcli/internal/action"
	"github.com/refmatrix/refcli/internal/ui"
	"github.com/spf13/cobra"
)

var (
	registerReferrer string
	registerYes      bool
)

var registerCmd = &cobra.Command{
	Use:   "register [referrer-address]",
	Short: "Join the matrix",
	Long: `Register the connected account in the referral matrix, paying the
registration fee in the configured token. Without a referrer the account
joins under the contract root.

The fee must be covered by both token balance and contract allowance;
run approve first if the allowance is short.

Examples:
  refcli register
  refcli register 0x7099...79C8
  refcli register --referrer 0x7099...79C8 --yes`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Allow positional arg as shorthand for --referrer.
		if len(args) == 1 && registerReferrer == "" {
			registerReferrer = args[0]
		}

		a, err := newApp()
		if err != nil {
			return err
		}

		ctx := context.Background()
		if _, err := a.connect(ctx); err != nil {
			return err
		}
		if a.sessions.User() != nil {
			return action.ErrAlreadyRegistered
		}

		fee := a.actions.FeeText() + " " + cfg.TokenSymbol
		if !registerYes && !ui.ConfirmSpend("Registering", fee) {
			fmt.Println(ui.Meta("aborted"))
			return nil
		}

		spin := ui.NewSpinner("Registering...")
		spin.Start()
		out, err := a.actions.Register(ctx, registerReferrer)
		spin.Stop()
		if err != nil {
			return registerHint(err, fee)
		}

		fmt.Println(ui.Success("Registered"))
		printOutcome("Registration", out)
		return nil
	},
}

func registerHint(err error, fee string) error {
	switch {
	case errors.Is(err, action.ErrInsufficientAllowance):
		return fmt.Errorf("%w; run `refcli approve` first", err)
	case errors.Is(err, action.ErrInsufficientBalance):
		return fmt.Errorf("%w; the registration fee is %s", err, fee)
	default:
		return err
	}
}

func init() {
	registerCmd.Flags().StringVar(&registerReferrer, "referrer", "", "referrer address (default: contract root)")
	registerCmd.Flags().BoolVarP(&registerYes, "yes", "y", false, "skip confirmation prompt")
}
