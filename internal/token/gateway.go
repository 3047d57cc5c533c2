// Package token reads the stablecoin's view of an account (balance and
// contract allowance) and runs the approve flow.
package token

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/refmatrix/refcli/internal/chain"
	"github.com/refmatrix/refcli/internal/config"
	"github.com/refmatrix/refcli/internal/contract"
	"github.com/refmatrix/refcli/internal/provider"
)

// ErrNoSigner is returned when an approve is attempted through a provider
// without signing capability.
var ErrNoSigner = errors.New("provider cannot sign transactions")

const confirmTimeout = 3 * time.Minute

// Status is the token's view of one account against the referral contract.
type Status struct {
	Balance       *big.Int
	Allowance     *big.Int
	BalanceText   string
	AllowanceText string
}

// Gateway queries the stablecoin contract and submits approvals.
type Gateway struct {
	client *chain.Client
	cfg    *config.Config
}

// NewGateway creates a token gateway.
func NewGateway(client *chain.Client, cfg *config.Config) *Gateway {
	return &Gateway{client: client, cfg: cfg}
}

// Status reads owner's token balance and the allowance granted to the
// referral contract, both raw and formatted.
func (g *Gateway) Status(ctx context.Context, owner string) (*Status, error) {
	ownerAddr := common.HexToAddress(owner)
	spender := common.HexToAddress(g.cfg.ContractAddress)

	balRaw, err := g.client.CallContract(ctx, g.cfg.TokenAddress, contract.BalanceOfData(ownerAddr))
	if err != nil {
		return nil, fmt.Errorf("reading token balance: %w", err)
	}
	balance, err := contract.DecodeUint(balRaw)
	if err != nil {
		return nil, fmt.Errorf("decoding token balance: %w", err)
	}

	alwRaw, err := g.client.CallContract(ctx, g.cfg.TokenAddress, contract.AllowanceData(ownerAddr, spender))
	if err != nil {
		return nil, fmt.Errorf("reading allowance: %w", err)
	}
	allowance, err := contract.DecodeUint(alwRaw)
	if err != nil {
		return nil, fmt.Errorf("decoding allowance: %w", err)
	}

	return &Status{
		Balance:       balance,
		Allowance:     allowance,
		BalanceText:   chain.FormatUnits(balance, g.cfg.TokenDecimals),
		AllowanceText: chain.FormatUnits(allowance, g.cfg.TokenDecimals),
	}, nil
}

// Decimals reads the token's decimals from the chain.
func (g *Gateway) Decimals(ctx context.Context) (int, error) {
	raw, err := g.client.CallContract(ctx, g.cfg.TokenAddress, contract.DecimalsData())
	if err != nil {
		return 0, fmt.Errorf("reading token decimals: %w", err)
	}
	n, err := contract.DecodeUint(raw)
	if err != nil {
		return 0, fmt.Errorf("decoding token decimals: %w", err)
	}
	return int(n.Int64()), nil
}

// Approve grants the referral contract the configured spending allowance
// and waits for the approval to be mined. A revert surfaces as an error.
func (g *Gateway) Approve(ctx context.Context, p provider.Provider) (*chain.Receipt, error) {
	if !p.CanSign() {
		return nil, ErrNoSigner
	}

	data := contract.ApproveData(common.HexToAddress(g.cfg.ContractAddress), g.cfg.ApproveRaw())
	hash, err := p.SendTransaction(ctx, provider.TxRequest{
		To:   g.cfg.TokenAddress,
		Data: data,
	})
	if err != nil {
		return nil, fmt.Errorf("submitting approval: %w", err)
	}

	receipt, err := g.client.WaitForReceipt(ctx, hash, confirmTimeout)
	if err != nil {
		return receipt, fmt.Errorf("confirming approval: %w", err)
	}
	return receipt, nil
}
