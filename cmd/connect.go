package cmd

import (
	"context"
	"fmt"

	"github.com/refmatrix/refcli/internal/ui"
	"github.com/spf13/cobra"
)

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect the wallet and show the account",
	Long: `Detect the wallet, request account access, and move it to the
configured network if it is on a different one. Networks the wallet does
not know are registered automatically.

Examples:
  refcli connect
  refcli connect --config ./testnet-config`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(ui.Banner())

		a, err := newApp()
		if err != nil {
			return err
		}

		s, err := a.connect(context.Background())
		if err != nil {
			return err
		}

		fmt.Println(ui.Success("Connected"))
		pairs := [][2]string{
			{"wallet", s.Vendor},
			{"device", string(s.Device)},
			{"account", ui.Addr(s.Account)},
			{"network", cfg.NetworkName},
		}
		if u := a.sessions.User(); u != nil {
			pairs = append(pairs,
				[2]string{"user id", fmt.Sprintf("#%d", u.ID)},
				[2]string{"level", fmt.Sprintf("%d", u.Level)},
			)
		} else {
			pairs = append(pairs, [2]string{"registered", "no (run `refcli register`)"})
		}
		fmt.Println(ui.KeyValueBlock("Session", pairs))
		return nil
	},
}
