package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/refmatrix/refcli/internal/action"
	"github.com/refmatrix/refcli/internal/chain"
	"github.com/refmatrix/refcli/internal/contract"
	"github.com/refmatrix/refcli/internal/poll"
	"github.com/refmatrix/refcli/internal/provider"
	"github.com/refmatrix/refcli/internal/rpc"
	"github.com/refmatrix/refcli/internal/session"
	"github.com/refmatrix/refcli/internal/token"
	"github.com/refmatrix/refcli/internal/ui"
	"github.com/refmatrix/refcli/internal/wallet"
)

// app wires the full stack for one invocation.
type app struct {
	client   *chain.Client
	sessions *session.Manager
	tokens   *token.Gateway
	actions  *action.Orchestrator
}

// newApp validates the config and builds the session, token, and action
// layers over one RPC client.
func newApp() (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w; run `refcli config set` first", err)
	}

	rpcURL, err := rpc.Pick(context.Background(), cfg.RPCURL, cfg.BackupRPCURLs)
	if err != nil {
		return nil, fmt.Errorf("picking RPC endpoint: %w", err)
	}
	if verbose && rpcURL != cfg.RPCURL {
		fmt.Println(ui.Meta("primary RPC down, using " + rpcURL))
	}

	client := chain.NewClient(rpcURL)
	reader := contract.NewReader(client, cfg.ContractAddress)

	detect := func() provider.Result {
		return provider.Detect(poll.RealClock{}, localSource(client), cfg.UserAgent)
	}

	// On a chain-change notification the session is already invalidated;
	// the reload hook re-runs the connect flow, which moves the wallet
	// back to the configured chain.
	var sessions *session.Manager
	sessions = session.NewManager(cfg, reader, detect,
		session.WithReload(func() {
			fmt.Println(ui.Warn("wallet network changed; reconnecting"))
			if _, err := sessions.Connect(context.Background()); err != nil {
				fmt.Println(ui.Err("reconnect failed: " + err.Error()))
			}
		}),
	)
	tokens := token.NewGateway(client, cfg)

	return &app{
		client:   client,
		sessions: sessions,
		tokens:   tokens,
		actions:  action.New(cfg, sessions, tokens, client),
	}, nil
}

// localSource yields a keystore-backed provider once a signing key exists.
// No key in the OS keychain means no wallet is available.
func localSource(client *chain.Client) provider.Source {
	return func() (provider.Provider, bool) {
		signer, err := wallet.Open(wallet.DefaultKeystore(), wallet.DefaultKeyName)
		if err != nil {
			return nil, false
		}
		return provider.NewLocal(client, signer, cfg.ChainID), true
	}
}

// connect establishes the wallet session with a spinner, translating the
// typed connect failures into actionable messages.
func (a *app) connect(ctx context.Context) (*session.Session, error) {
	spin := ui.NewSpinner(fmt.Sprintf("Connecting wallet on %s...", ui.Network(cfg.NetworkName)))
	spin.Start()
	s, err := a.sessions.Connect(ctx)
	spin.Stop()
	if err != nil {
		return nil, connectHint(err)
	}
	return s, nil
}

func connectHint(err error) error {
	switch {
	case errors.Is(err, session.ErrWalletUnavailable):
		return fmt.Errorf("%w; import a key with `refcli wallet import`", err)
	case errors.Is(err, session.ErrUserRejected),
		errors.Is(err, session.ErrNoAccounts),
		errors.Is(err, session.ErrNoSigner),
		errors.Is(err, session.ErrChainSwitchFailed):
		return err
	default:
		return fmt.Errorf("connecting wallet: %w", err)
	}
}

// txURL builds an explorer link for a transaction hash.
func txURL(hash string) string {
	if cfg.ExplorerURL == "" {
		return ""
	}
	return strings.TrimRight(cfg.ExplorerURL, "/") + "/tx/" + hash
}

// printOutcome renders a confirmed action result.
func printOutcome(title string, out *action.Outcome) {
	pairs := [][2]string{
		{"tx hash", out.Hash},
		{"block", fmt.Sprintf("#%d", out.Receipt.BlockNumber)},
		{"gas used", fmt.Sprintf("%d", out.Receipt.GasUsed)},
	}
	if url := txURL(out.Hash); url != "" {
		pairs = append(pairs, [2]string{"explorer", url})
	}
	if out.User != nil {
		pairs = append(pairs,
			[2]string{"user id", fmt.Sprintf("#%d", out.User.ID)},
			[2]string{"level", fmt.Sprintf("%d", out.User.Level)},
			[2]string{"earnings", out.User.Balance + " " + cfg.TokenSymbol},
		)
	}
	fmt.Println(ui.KeyValueBlock(title, pairs))
}
