// Package action runs the referral contract's state-changing operations:
// register, upgrade, withdraw. Each follows the same protocol (preflight,
// dry-run simulation, submission, confirmation, user refresh) and at most
// one action runs at a time.
package action

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/refmatrix/refcli/internal/chain"
	"github.com/refmatrix/refcli/internal/config"
	"github.com/refmatrix/refcli/internal/contract"
	"github.com/refmatrix/refcli/internal/provider"
	"github.com/refmatrix/refcli/internal/session"
	"github.com/refmatrix/refcli/internal/token"
)

// Protocol-level failures.
var (
	ErrActionInFlight     = errors.New("another action is already in flight")
	ErrNotConnected       = errors.New("no active wallet session")
	ErrUserRejected       = errors.New("transaction rejected by user")
	ErrSessionInvalidated = errors.New("wallet session changed while the action was in flight")
)

const (
	confirmTimeout = 3 * time.Minute

	// Wallet gas estimates undershoot register's worst case (new matrix
	// slots plus upline payouts), so it gets a fixed elevated limit.
	registerGasLimit = 500000
)

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// Sessions is the slice of the session manager the orchestrator consumes.
type Sessions interface {
	Account() string
	Provider() provider.Provider
	Generation() uint64
	RefreshUser(ctx context.Context) (*session.UserRecord, error)
}

// TokenStatuser reads the stablecoin's view of an account.
type TokenStatuser interface {
	Status(ctx context.Context, owner string) (*token.Status, error)
}

// Backend is the slice of the chain client the orchestrator consumes.
type Backend interface {
	SimulateCall(ctx context.Context, from, to string, data []byte) (bool, string, error)
	WaitForReceipt(ctx context.Context, hash string, timeout time.Duration) (*chain.Receipt, error)
}

// Outcome is the result of a confirmed action.
type Outcome struct {
	Hash    string
	Receipt *chain.Receipt
	User    *session.UserRecord
}

// Orchestrator serializes the contract's write operations. A second action
// started while one is in flight fails fast with ErrActionInFlight.
type Orchestrator struct {
	cfg      *config.Config
	sessions Sessions
	tokens   TokenStatuser
	backend  Backend

	inFlight atomic.Bool

	mu      sync.Mutex
	lastErr error
}

// New creates an orchestrator.
func New(cfg *config.Config, sessions Sessions, tokens TokenStatuser, backend Backend) *Orchestrator {
	return &Orchestrator{cfg: cfg, sessions: sessions, tokens: tokens, backend: backend}
}

// InFlight reports whether an action is currently running.
func (o *Orchestrator) InFlight() bool {
	return o.inFlight.Load()
}

// LastError returns the failure of the most recent action, or nil. It is
// cleared when the next action starts, so stale failures never block or
// taint later attempts.
func (o *Orchestrator) LastError() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastErr
}

func (o *Orchestrator) setLastError(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lastErr = err
}

// Register joins the matrix under referrer. An empty referrer means "no
// referrer" and is sent as the zero address. Balance and allowance are
// checked against the registration fee before anything is submitted, with
// the balance shortfall reported first.
func (o *Orchestrator) Register(ctx context.Context, referrer string) (*Outcome, error) {
	return o.run(ctx, registerRules, func(ctx context.Context, account string) ([]byte, uint64, error) {
		ref, err := normalizeReferrer(referrer)
		if err != nil {
			return nil, 0, err
		}

		st, err := o.tokens.Status(ctx, account)
		if err != nil {
			return nil, 0, fmt.Errorf("reading token status: %w", err)
		}
		fee := o.cfg.FeeRaw()
		if st.Balance.Cmp(fee) < 0 {
			return nil, 0, ErrInsufficientBalance
		}
		if st.Allowance.Cmp(fee) < 0 {
			return nil, 0, ErrInsufficientAllowance
		}

		return contract.RegisterData(ref), registerGasLimit, nil
	})
}

// Upgrade buys the next matrix level for the connected account.
func (o *Orchestrator) Upgrade(ctx context.Context) (*Outcome, error) {
	return o.run(ctx, upgradeRules, func(ctx context.Context, _ string) ([]byte, uint64, error) {
		u, err := o.sessions.RefreshUser(ctx)
		if err != nil {
			return nil, 0, fmt.Errorf("reading user record: %w", err)
		}
		if u == nil {
			return nil, 0, ErrNotRegistered
		}
		return contract.UpgradeData(), 0, nil
	})
}

// Withdraw pays out the connected account's accumulated earnings.
func (o *Orchestrator) Withdraw(ctx context.Context) (*Outcome, error) {
	return o.run(ctx, withdrawRules, func(ctx context.Context, _ string) ([]byte, uint64, error) {
		u, err := o.sessions.RefreshUser(ctx)
		if err != nil {
			return nil, 0, fmt.Errorf("reading user record: %w", err)
		}
		if u == nil {
			return nil, 0, ErrNotRegistered
		}
		return contract.WithdrawData(), 0, nil
	})
}

// run executes the shared action protocol. prepare validates inputs and
// builds calldata plus an optional fixed gas limit (0 = wallet estimate).
func (o *Orchestrator) run(ctx context.Context, rules []Rule, prepare func(ctx context.Context, account string) ([]byte, uint64, error)) (outcome *Outcome, err error) {
	if !o.inFlight.CompareAndSwap(false, true) {
		return nil, ErrActionInFlight
	}
	defer o.inFlight.Store(false)

	o.setLastError(nil)
	defer func() { o.setLastError(err) }()

	account := o.sessions.Account()
	p := o.sessions.Provider()
	if account == "" || p == nil {
		return nil, ErrNotConnected
	}
	gen := o.sessions.Generation()

	// The record the user sees must reflect the chain after every attempt,
	// confirmed or failed, so the refresh is unconditional from here on.
	defer func() {
		u, refreshErr := o.sessions.RefreshUser(ctx)
		if refreshErr == nil && outcome != nil {
			outcome.User = u
		}
	}()

	data, gasLimit, err := prepare(ctx, account)
	if err != nil {
		return nil, err
	}

	ok, reason, err := o.backend.SimulateCall(ctx, account, o.cfg.ContractAddress, data)
	if err != nil {
		return nil, fmt.Errorf("simulating call: %w", err)
	}
	if !ok {
		return nil, Classify(reason, rules)
	}

	if o.sessions.Generation() != gen {
		return nil, ErrSessionInvalidated
	}

	hash, err := p.SendTransaction(ctx, provider.TxRequest{
		To:       o.cfg.ContractAddress,
		Data:     data,
		GasLimit: gasLimit,
	})
	if err != nil {
		if provider.IsCode(err, provider.CodeUserRejected) {
			return nil, ErrUserRejected
		}
		return nil, fmt.Errorf("submitting transaction: %w", err)
	}

	receipt, err := o.backend.WaitForReceipt(ctx, hash, confirmTimeout)
	if err != nil {
		return nil, fmt.Errorf("confirming transaction: %w", err)
	}
	if o.sessions.Generation() != gen {
		return nil, ErrSessionInvalidated
	}

	return &Outcome{Hash: hash, Receipt: receipt}, nil
}

// normalizeReferrer maps an empty referrer to the zero address and rejects
// anything that is not a plain hex address.
func normalizeReferrer(referrer string) (common.Address, error) {
	if referrer == "" {
		return common.Address{}, nil
	}
	if !addressPattern.MatchString(referrer) {
		return common.Address{}, ErrInvalidReferrer
	}
	return common.HexToAddress(referrer), nil
}

// FeeText formats the registration fee for display.
func (o *Orchestrator) FeeText() string {
	return chain.FormatUnits(o.cfg.FeeRaw(), o.cfg.TokenDecimals)
}
