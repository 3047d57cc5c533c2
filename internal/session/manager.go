// Package session owns the wallet session lifecycle: connecting through the
// detected provider, keeping the session on the configured chain, refreshing
// the on-chain user record, and reacting to account/chain-change
// notifications.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/refmatrix/refcli/internal/chain"
	"github.com/refmatrix/refcli/internal/config"
	"github.com/refmatrix/refcli/internal/contract"
	"github.com/refmatrix/refcli/internal/provider"
)

// Connect errors.
var (
	ErrWalletUnavailable = errors.New("no wallet provider available")
	ErrUserRejected      = errors.New("connection rejected by user")
	ErrNoAccounts        = errors.New("wallet granted no accounts")
	ErrNoSigner          = errors.New("wallet has no signing capability")
	ErrChainSwitchFailed = errors.New("could not switch wallet to the configured chain")
	ErrNotConnected      = errors.New("no active wallet session")
)

// Session is the connected-wallet triple exposed to the presentation layer.
type Session struct {
	Account string
	Vendor  string
	Device  provider.DeviceClass
}

// UserRecord is the contract's view of the connected account. A nil record
// means "not registered"; query failures are reported separately as errors.
type UserRecord struct {
	ID      uint64
	Level   uint64
	Balance string // formatted token amount
}

// DetailsReader runs the contract's read-only user query.
type DetailsReader interface {
	Details(ctx context.Context, account string) (*contract.Details, error)
}

// Manager owns the single process-wide session. It is an explicit object
// that callers inject rather than package state, so tests can run
// concurrent independent sessions.
type Manager struct {
	cfg    *config.Config
	reader DetailsReader
	detect func() provider.Result
	reload func()
	logf   func(format string, v ...any)

	mu         sync.Mutex
	prov       provider.Provider
	subscribed map[provider.Provider]bool
	session    *Session
	user       *UserRecord
	gen        uint64
}

// Option configures a Manager.
type Option func(*Manager)

// WithReload sets the hook invoked on any chain-change notification. The
// CLI reconnects the session; library users supply their own.
func WithReload(fn func()) Option {
	return func(m *Manager) { m.reload = fn }
}

// WithLogger overrides the non-fatal-failure logger.
func WithLogger(logf func(format string, v ...any)) Option {
	return func(m *Manager) { m.logf = logf }
}

// NewManager creates a session manager.
func NewManager(cfg *config.Config, reader DetailsReader, detect func() provider.Result, opts ...Option) *Manager {
	m := &Manager{
		cfg:        cfg,
		reader:     reader,
		detect:     detect,
		logf:       log.Printf,
		subscribed: make(map[provider.Provider]bool),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Connect establishes a wallet session. Availability is re-checked rather
// than trusted from an earlier detection; the wallet is moved to the
// configured chain if needed (switch, then register-and-switch for chains
// the wallet does not know). A user-record refresh failure is non-fatal.
func (m *Manager) Connect(ctx context.Context) (*Session, error) {
	res := m.detect()
	if !res.Available {
		return nil, ErrWalletUnavailable
	}
	p := res.Provider

	accounts, err := p.RequestAccounts(ctx)
	if err != nil {
		if provider.IsCode(err, provider.CodeUserRejected) {
			return nil, ErrUserRejected
		}
		return nil, fmt.Errorf("requesting accounts: %w", err)
	}
	if len(accounts) == 0 {
		return nil, ErrNoAccounts
	}
	if !p.CanSign() {
		// An account without signing capability is not a valid session.
		m.teardown()
		return nil, ErrNoSigner
	}

	id, err := p.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading chain id: %w", err)
	}
	if id != m.cfg.ChainID {
		if err := ensureChain(ctx, p, m.cfg.ChainID, m.cfg.Descriptor()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrChainSwitchFailed, err)
		}
	}

	s := &Session{Account: accounts[0], Vendor: res.Vendor, Device: res.Device}
	m.install(p, s)

	if _, err := m.RefreshUser(ctx); err != nil {
		m.logf("refreshing user record after connect: %v", err)
	}
	return s, nil
}

// ensureChain switches the wallet to chainID. When the wallet does not know
// the chain it is registered from the descriptor and the switch retried;
// any other switch failure aborts.
func ensureChain(ctx context.Context, p provider.Provider, chainID int64, desc chain.Descriptor) error {
	err := p.SwitchChain(ctx, chainID)
	if err == nil {
		return nil
	}
	if !provider.IsCode(err, provider.CodeUnrecognizedChain) {
		return err
	}
	if err := p.AddChain(ctx, desc); err != nil {
		return fmt.Errorf("registering chain: %w", err)
	}
	return p.SwitchChain(ctx, chainID)
}

// RefreshUser re-runs the contract's user query for the connected account.
// Returns (nil, nil) for an account the contract does not know, and a
// non-nil error only for query failures. The two are distinct.
func (m *Manager) RefreshUser(ctx context.Context) (*UserRecord, error) {
	account := m.Account()
	if account == "" {
		return nil, ErrNotConnected
	}

	d, err := m.reader.Details(ctx, account)
	if err != nil {
		return nil, err
	}
	if d == nil || !d.Exists {
		m.setUser(nil)
		return nil, nil
	}

	u := &UserRecord{
		ID:      d.ID,
		Level:   d.Level,
		Balance: chain.FormatUnits(d.Balance, m.cfg.TokenDecimals),
	}
	m.setUser(u)
	return u, nil
}

// HandleAccountsChanged reacts to the wallet's account notification: an
// empty list tears the session down; a new account reconnects from scratch
// rather than reusing partial state.
func (m *Manager) HandleAccountsChanged(ctx context.Context, accounts []string) error {
	if len(accounts) == 0 {
		m.teardown()
		return nil
	}
	m.teardown()
	_, err := m.Connect(ctx)
	return err
}

// HandleChainChanged reacts to the wallet's chain notification. All cached
// handles are chain-bound and stale after a switch, so the session is
// invalidated and the reload hook runs unconditionally.
func (m *Manager) HandleChainChanged() {
	m.mu.Lock()
	m.gen++
	m.mu.Unlock()
	if m.reload != nil {
		m.reload()
	}
}

// Disconnect tears the session down explicitly.
func (m *Manager) Disconnect() {
	m.teardown()
}

// Session returns a copy of the active session, or nil.
func (m *Manager) Session() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil
	}
	s := *m.session
	return &s
}

// Account returns the connected account, or "".
func (m *Manager) Account() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return ""
	}
	return m.session.Account
}

// User returns the last refreshed user record, or nil.
func (m *Manager) User() *UserRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

// Provider returns the active provider, or nil.
func (m *Manager) Provider() provider.Provider {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil
	}
	return m.prov
}

// Generation is a counter bumped on every session teardown or chain change.
// Long-running callers compare it before and after to detect that the
// session they started with is gone.
func (m *Manager) Generation() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gen
}

// --- internal ---

func (m *Manager) install(p provider.Provider, s *Session) {
	m.mu.Lock()
	subscribe := !m.subscribed[p]
	if subscribe {
		m.subscribed[p] = true
	}
	m.prov = p
	m.session = s
	m.mu.Unlock()

	if subscribe {
		p.On(provider.EventAccountsChanged, func(accounts []string) {
			if err := m.HandleAccountsChanged(context.Background(), accounts); err != nil {
				m.logf("reconnect after account change: %v", err)
			}
		})
		p.On(provider.EventChainChanged, func([]string) {
			m.HandleChainChanged()
		})
	}
}

func (m *Manager) teardown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	m.user = nil
	m.gen++
}

func (m *Manager) setUser(u *UserRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = u
}
