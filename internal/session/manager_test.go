package session_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refmatrix/refcli/internal/chain"
	"github.com/refmatrix/refcli/internal/config"
	"github.com/refmatrix/refcli/internal/contract"
	"github.com/refmatrix/refcli/internal/provider"
	"github.com/refmatrix/refcli/internal/session"
)

const testAccount = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"

// fakeProvider is a scriptable wallet double. Zero value behaves as a
// signing MetaMask wallet already on the configured chain.
type fakeProvider struct {
	accounts    []string
	accountsErr error
	chainID     int64
	known       map[int64]bool
	noSigner    bool

	switchCalls []int64
	addCalls    []chain.Descriptor
	handlers    map[provider.Event][]func([]string)
}

func newFakeProvider(chainID int64) *fakeProvider {
	return &fakeProvider{
		accounts: []string{testAccount},
		chainID:  chainID,
		known:    map[int64]bool{chainID: true},
		handlers: make(map[provider.Event][]func([]string)),
	}
}

func (f *fakeProvider) RequestAccounts(context.Context) ([]string, error) {
	return f.accounts, f.accountsErr
}

func (f *fakeProvider) ChainID(context.Context) (int64, error) { return f.chainID, nil }

func (f *fakeProvider) SwitchChain(_ context.Context, chainID int64) error {
	f.switchCalls = append(f.switchCalls, chainID)
	if !f.known[chainID] {
		return &provider.Error{Code: provider.CodeUnrecognizedChain, Message: "unknown chain"}
	}
	f.chainID = chainID
	return nil
}

func (f *fakeProvider) AddChain(_ context.Context, desc chain.Descriptor) error {
	f.addCalls = append(f.addCalls, desc)
	f.known[desc.ChainID] = true
	return nil
}

func (f *fakeProvider) SendTransaction(context.Context, provider.TxRequest) (string, error) {
	return "0xabc", nil
}

func (f *fakeProvider) CanSign() bool { return !f.noSigner }

func (f *fakeProvider) Capabilities() provider.Capabilities {
	return provider.Capabilities{MetaMask: true}
}

func (f *fakeProvider) On(event provider.Event, fn func([]string)) {
	f.handlers[event] = append(f.handlers[event], fn)
}

func (f *fakeProvider) emit(event provider.Event, args []string) {
	for _, fn := range f.handlers[event] {
		fn(args)
	}
}

// fakeReader serves contract user queries from a map keyed by account.
type fakeReader struct {
	details map[string]*contract.Details
	err     error
	calls   int
}

func (f *fakeReader) Details(_ context.Context, account string) (*contract.Details, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if d, ok := f.details[account]; ok {
		return d, nil
	}
	return &contract.Details{Exists: false}, nil
}

func sourceOf(p provider.Provider) func() provider.Result {
	return func() provider.Result {
		return provider.Result{
			Available: true,
			Vendor:    "MetaMask",
			Device:    provider.DeviceDesktop,
			Provider:  p,
		}
	}
}

func noProvider() provider.Result {
	return provider.Result{Available: false, Device: provider.DeviceDesktop}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)
	return cfg
}

func registeredDetails(balance int64) *contract.Details {
	return &contract.Details{
		ID:      7,
		Wallet:  common.HexToAddress(testAccount),
		Level:   2,
		Balance: chain.Units(balance, 18),
		Exists:  true,
	}
}

func TestConnect(t *testing.T) {
	cfg := testConfig(t)
	p := newFakeProvider(cfg.ChainID)
	reader := &fakeReader{details: map[string]*contract.Details{testAccount: registeredDetails(25)}}
	m := session.NewManager(cfg, reader, sourceOf(p))

	s, err := m.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testAccount, s.Account)
	assert.Equal(t, "MetaMask", s.Vendor)
	assert.Equal(t, provider.DeviceDesktop, s.Device)

	// Connect refreshes the user record as part of establishing the session.
	u := m.User()
	require.NotNil(t, u)
	assert.Equal(t, uint64(7), u.ID)
	assert.Equal(t, uint64(2), u.Level)
	assert.Equal(t, "25.0", u.Balance)

	// Wallet already on the configured chain: no switch attempted.
	assert.Empty(t, p.switchCalls)
	assert.Empty(t, p.addCalls)
}

func TestConnectIdempotent(t *testing.T) {
	cfg := testConfig(t)
	p := newFakeProvider(cfg.ChainID)
	reader := &fakeReader{}
	m := session.NewManager(cfg, reader, sourceOf(p))

	first, err := m.Connect(context.Background())
	require.NoError(t, err)
	second, err := m.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// Handlers are subscribed once per provider, not per Connect.
	assert.Len(t, p.handlers[provider.EventAccountsChanged], 1)
	assert.Len(t, p.handlers[provider.EventChainChanged], 1)
}

func TestConnectNoProvider(t *testing.T) {
	m := session.NewManager(testConfig(t), &fakeReader{}, noProvider)

	_, err := m.Connect(context.Background())
	assert.ErrorIs(t, err, session.ErrWalletUnavailable)
	assert.Nil(t, m.Session())
}

func TestConnectUserRejected(t *testing.T) {
	cfg := testConfig(t)
	p := newFakeProvider(cfg.ChainID)
	p.accountsErr = &provider.Error{Code: provider.CodeUserRejected, Message: "user denied"}
	m := session.NewManager(cfg, &fakeReader{}, sourceOf(p))

	_, err := m.Connect(context.Background())
	assert.ErrorIs(t, err, session.ErrUserRejected)
}

func TestConnectNoAccounts(t *testing.T) {
	cfg := testConfig(t)
	p := newFakeProvider(cfg.ChainID)
	p.accounts = nil
	m := session.NewManager(cfg, &fakeReader{}, sourceOf(p))

	_, err := m.Connect(context.Background())
	assert.ErrorIs(t, err, session.ErrNoAccounts)
}

func TestConnectNoSigner(t *testing.T) {
	cfg := testConfig(t)
	p := newFakeProvider(cfg.ChainID)
	p.noSigner = true
	m := session.NewManager(cfg, &fakeReader{}, sourceOf(p))

	_, err := m.Connect(context.Background())
	assert.ErrorIs(t, err, session.ErrNoSigner)
	assert.Nil(t, m.Session())
}

func TestConnectSwitchesKnownChain(t *testing.T) {
	cfg := testConfig(t)
	p := newFakeProvider(1) // wallet starts on mainnet
	p.known[cfg.ChainID] = true
	m := session.NewManager(cfg, &fakeReader{}, sourceOf(p))

	_, err := m.Connect(context.Background())
	require.NoError(t, err)

	// A successful switch must not attempt chain registration.
	assert.Equal(t, []int64{cfg.ChainID}, p.switchCalls)
	assert.Empty(t, p.addCalls)
	assert.Equal(t, cfg.ChainID, p.chainID)
}

func TestConnectRegistersUnknownChain(t *testing.T) {
	cfg := testConfig(t)
	p := newFakeProvider(1)
	m := session.NewManager(cfg, &fakeReader{}, sourceOf(p))

	_, err := m.Connect(context.Background())
	require.NoError(t, err)

	// Switch, rejected as unrecognized, chain registered, switch retried.
	assert.Equal(t, []int64{cfg.ChainID, cfg.ChainID}, p.switchCalls)
	require.Len(t, p.addCalls, 1)
	assert.Equal(t, cfg.ChainID, p.addCalls[0].ChainID)
	assert.Equal(t, cfg.RPCURL, p.addCalls[0].RPCURL)
	assert.Equal(t, cfg.ChainID, p.chainID)
}

func TestConnectChainSwitchFailed(t *testing.T) {
	cfg := testConfig(t)
	p := newFakeProvider(1)
	p.accountsErr = nil
	// Make AddChain leave the chain unknown so the retry fails too.
	broken := &brokenAddProvider{fakeProvider: p}
	m := session.NewManager(cfg, &fakeReader{}, sourceOf(broken))

	_, err := m.Connect(context.Background())
	assert.ErrorIs(t, err, session.ErrChainSwitchFailed)
	assert.Nil(t, m.Session())
}

type brokenAddProvider struct {
	*fakeProvider
}

func (b *brokenAddProvider) AddChain(context.Context, chain.Descriptor) error {
	return errors.New("wallet refused the network")
}

func TestRefreshUserNotRegistered(t *testing.T) {
	cfg := testConfig(t)
	p := newFakeProvider(cfg.ChainID)
	reader := &fakeReader{}
	m := session.NewManager(cfg, reader, sourceOf(p))
	_, err := m.Connect(context.Background())
	require.NoError(t, err)

	// Unregistered account: nil record, nil error.
	u, err := m.RefreshUser(context.Background())
	require.NoError(t, err)
	assert.Nil(t, u)
	assert.Nil(t, m.User())
}

func TestRefreshUserQueryFailure(t *testing.T) {
	cfg := testConfig(t)
	p := newFakeProvider(cfg.ChainID)
	reader := &fakeReader{details: map[string]*contract.Details{testAccount: registeredDetails(10)}}
	m := session.NewManager(cfg, reader, sourceOf(p))
	_, err := m.Connect(context.Background())
	require.NoError(t, err)

	reader.err = errors.New("rpc: connection refused")
	u, err := m.RefreshUser(context.Background())
	assert.Error(t, err)
	assert.Nil(t, u)

	// The last good record survives a failed refresh.
	assert.NotNil(t, m.User())
}

func TestRefreshUserNotConnected(t *testing.T) {
	m := session.NewManager(testConfig(t), &fakeReader{}, noProvider)

	_, err := m.RefreshUser(context.Background())
	assert.ErrorIs(t, err, session.ErrNotConnected)
}

func TestAccountsChangedEmptyTearsDown(t *testing.T) {
	cfg := testConfig(t)
	p := newFakeProvider(cfg.ChainID)
	reader := &fakeReader{details: map[string]*contract.Details{testAccount: registeredDetails(10)}}
	m := session.NewManager(cfg, reader, sourceOf(p))
	_, err := m.Connect(context.Background())
	require.NoError(t, err)
	before := m.Generation()

	p.emit(provider.EventAccountsChanged, nil)

	assert.Nil(t, m.Session())
	assert.Nil(t, m.User())
	assert.Greater(t, m.Generation(), before)
}

func TestAccountsChangedReconnects(t *testing.T) {
	cfg := testConfig(t)
	p := newFakeProvider(cfg.ChainID)
	other := "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
	reader := &fakeReader{details: map[string]*contract.Details{
		testAccount: registeredDetails(10),
		other: {
			ID:      9,
			Wallet:  common.HexToAddress(other),
			Level:   1,
			Balance: big.NewInt(0),
			Exists:  true,
		},
	}}
	m := session.NewManager(cfg, reader, sourceOf(p))
	_, err := m.Connect(context.Background())
	require.NoError(t, err)

	p.accounts = []string{other}
	p.emit(provider.EventAccountsChanged, []string{other})

	s := m.Session()
	require.NotNil(t, s)
	assert.Equal(t, other, s.Account)
	u := m.User()
	require.NotNil(t, u)
	assert.Equal(t, uint64(9), u.ID)
}

func TestChainChangedReloadsAndInvalidates(t *testing.T) {
	cfg := testConfig(t)
	p := newFakeProvider(cfg.ChainID)
	reloads := 0
	m := session.NewManager(cfg, &fakeReader{}, sourceOf(p),
		session.WithReload(func() { reloads++ }))
	_, err := m.Connect(context.Background())
	require.NoError(t, err)
	before := m.Generation()

	p.emit(provider.EventChainChanged, []string{"0x1"})

	assert.Equal(t, 1, reloads)
	assert.Greater(t, m.Generation(), before)
}

// A reload hook that re-runs Connect (the CLI's wiring) must move the
// wallet back to the configured chain and leave a live session behind.
func TestChainChangedReloadCanReconnect(t *testing.T) {
	cfg := testConfig(t)
	p := newFakeProvider(cfg.ChainID)
	var m *session.Manager
	m = session.NewManager(cfg, &fakeReader{}, sourceOf(p),
		session.WithReload(func() {
			_, err := m.Connect(context.Background())
			require.NoError(t, err)
		}))
	_, err := m.Connect(context.Background())
	require.NoError(t, err)

	// Wallet wanders off to another chain it already knows.
	p.chainID = 1
	p.known[1] = true
	p.emit(provider.EventChainChanged, []string{"0x1"})

	assert.Equal(t, cfg.ChainID, p.chainID)
	assert.Equal(t, []int64{cfg.ChainID}, p.switchCalls)
	require.NotNil(t, m.Session())
	assert.Equal(t, testAccount, m.Session().Account)
}

func TestDisconnect(t *testing.T) {
	cfg := testConfig(t)
	p := newFakeProvider(cfg.ChainID)
	reader := &fakeReader{details: map[string]*contract.Details{testAccount: registeredDetails(10)}}
	m := session.NewManager(cfg, reader, sourceOf(p))
	_, err := m.Connect(context.Background())
	require.NoError(t, err)

	m.Disconnect()

	assert.Nil(t, m.Session())
	assert.Nil(t, m.User())
	assert.Nil(t, m.Provider())
	assert.Equal(t, "", m.Account())
}
