// check-members: queries registration state, matrix level, earnings, and
// fee-token balance for a set of accounts in parallel and prints a summary
// table.
//
// Run from the module root:
//
//	go run ./scripts/check-members 0xWallet1 0xWallet2 ...
//
// Contract, token, and RPC come from the usual config (REFCLI_* env vars
// override).
package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/refmatrix/refcli/internal/chain"
	"github.com/refmatrix/refcli/internal/config"
	"github.com/refmatrix/refcli/internal/contract"
	"github.com/refmatrix/refcli/internal/token"
	"github.com/refmatrix/refcli/internal/ui"
)

const rpcTimeout = 12 * time.Second

type result struct {
	account    string
	registered bool
	userID     uint64
	level      uint64
	earnings   string
	balance    string
	allowance  string
	err        string
}

func main() {
	accounts := os.Args[1:]
	if len(accounts) == 0 {
		fmt.Fprintln(os.Stderr, "usage: check-members <address> [address...]")
		os.Exit(2)
	}

	cfg, err := config.Load(os.Getenv("REFCLI_CONFIG_DIR"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	client := chain.NewClient(cfg.RPCURL)
	reader := contract.NewReader(client, cfg.ContractAddress)
	tokens := token.NewGateway(client, cfg)

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results []result
	)

	for _, account := range accounts {
		wg.Add(1)
		go func(account string) {
			defer wg.Done()
			res := check(cfg, reader, tokens, account)
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
		}(account)
	}
	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].account < results[j].account })

	tbl := ui.NewTable([]ui.Column{
		{Title: "ACCOUNT", Width: 14},
		{Title: "REGISTERED", Width: 10},
		{Title: "ID", Width: 6},
		{Title: "LEVEL", Width: 5},
		{Title: "EARNINGS", Width: 16},
		{Title: "BALANCE", Width: 16},
		{Title: "ALLOWANCE", Width: 16},
	})
	var failed []result
	for _, r := range results {
		switch {
		case r.err != "":
			failed = append(failed, r)
		case !r.registered:
			tbl.AddRow(ui.Row{ui.TruncateAddr(r.account), "no", "", "", "", r.balance, r.allowance})
		default:
			tbl.AddRow(ui.Row{
				ui.TruncateAddr(r.account), "yes",
				fmt.Sprintf("#%d", r.userID), fmt.Sprintf("%d", r.level),
				r.earnings, r.balance, r.allowance,
			})
		}
	}
	fmt.Print(tbl.Render())
	for _, r := range failed {
		fmt.Fprintln(os.Stderr, ui.Err(ui.TruncateAddr(r.account)+": "+r.err))
	}
}

func check(cfg *config.Config, reader *contract.Reader, tokens *token.Gateway, account string) result {
	ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
	defer cancel()

	res := result{account: account}
	if !common.IsHexAddress(account) {
		res.err = "not an address"
		return res
	}

	d, err := reader.Details(ctx, account)
	if err != nil {
		res.err = err.Error()
		return res
	}
	if d.Exists {
		res.registered = true
		res.userID = d.ID
		res.level = d.Level
		res.earnings = chain.FormatUnits(d.Balance, cfg.TokenDecimals) + " " + cfg.TokenSymbol
	}

	st, err := tokens.Status(ctx, account)
	if err != nil {
		res.err = err.Error()
		return res
	}
	res.balance = st.BalanceText + " " + cfg.TokenSymbol
	res.allowance = st.AllowanceText + " " + cfg.TokenSymbol
	return res
}
