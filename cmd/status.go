package cmd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/refmatrix/refcli/internal/price"
	"github.com/refmatrix/refcli/internal/ui"
	"github.com/spf13/cobra"
)

var statusWatch bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show registration, level, earnings, and token status",
	Long: `Connect the wallet and show the account's full on-chain picture:
registration state, matrix level, accumulated earnings, token balance,
and the allowance granted to the contract.

Examples:
  refcli status
  refcli status --watch    # live view, refreshed every 15s`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		ctx := context.Background()
		s, err := a.connect(ctx)
		if err != nil {
			return err
		}

		// Fiat pricing is display-only; a failed lookup just drops the hint.
		tokenPrice := 0.0
		fetcher := price.NewFetcher(cfg.PriceCurrency)
		if cfg.TokenPriceID != "" {
			if p, err := fetcher.TokenPrice(cfg.TokenPriceID); err == nil {
				tokenPrice = p
			}
		}

		if statusWatch {
			return ui.RunWatch(ui.WatchModel{
				Fetch: func() ui.StatusSnapshot {
					return fetchSnapshot(a, s.Account, s.Vendor, fetcher, tokenPrice)
				},
				Interval:    15 * time.Second,
				ExplorerURL: cfg.ExplorerURL,
			})
		}

		snap := fetchSnapshot(a, s.Account, s.Vendor, fetcher, tokenPrice)
		if snap.ErrMsg != "" {
			return fmt.Errorf("reading status: %s", snap.ErrMsg)
		}
		printSnapshot(snap)
		return nil
	},
}

func fetchSnapshot(a *app, account, vendor string, pf *price.Fetcher, tokenPrice float64) ui.StatusSnapshot {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	snap := ui.StatusSnapshot{
		Account: account,
		Network: cfg.NetworkName,
		Vendor:  vendor,
		At:      time.Now(),
	}

	u, err := a.sessions.RefreshUser(ctx)
	if err != nil {
		snap.ErrMsg = err.Error()
		return snap
	}
	if u != nil {
		snap.Registered = true
		snap.UserID = u.ID
		snap.Level = u.Level
		snap.Earnings = withFiat(u.Balance, pf, tokenPrice)
	}

	st, err := a.tokens.Status(ctx, account)
	if err != nil {
		snap.ErrMsg = err.Error()
		return snap
	}
	snap.Balance = withFiat(st.BalanceText, pf, tokenPrice)
	snap.Allowance = st.AllowanceText + " " + cfg.TokenSymbol
	return snap
}

// withFiat appends a fiat estimate to a token amount when pricing is available.
func withFiat(amount string, pf *price.Fetcher, tokenPrice float64) string {
	text := amount + " " + cfg.TokenSymbol
	if pf == nil || tokenPrice <= 0 {
		return text
	}
	v, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return text
	}
	return text + " " + pf.Format(v, tokenPrice)
}

func printSnapshot(s ui.StatusSnapshot) {
	pairs := [][2]string{
		{"wallet", s.Vendor},
		{"account", s.Account},
		{"network", s.Network},
	}
	if s.Registered {
		pairs = append(pairs,
			[2]string{"registered", "yes"},
			[2]string{"user id", fmt.Sprintf("#%d", s.UserID)},
			[2]string{"level", fmt.Sprintf("%d", s.Level)},
			[2]string{"earnings", s.Earnings},
		)
	} else {
		pairs = append(pairs, [2]string{"registered", "no (run `refcli register`)"})
	}
	pairs = append(pairs,
		[2]string{"balance", s.Balance},
		[2]string{"allowance", s.Allowance},
	)
	fmt.Println(ui.KeyValueBlock("Account Status", pairs))
}

func init() {
	statusCmd.Flags().BoolVar(&statusWatch, "watch", false, "live view, refreshed periodically")
}
