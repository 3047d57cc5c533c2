package provider_test

import (
	"context"
	"testing"
	"time"

	"github.com/refmatrix/refcli/internal/chain"
	"github.com/refmatrix/refcli/internal/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	desktopUA = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"
	mobileUA  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) Mobile/15E148"
	androidUA = "Mozilla/5.0 (Linux; Android 14; Pixel 8) Mobile Safari/537.36"
)

type fakeClock struct {
	sleeps int
}

func (c *fakeClock) Sleep(time.Duration) { c.sleeps++ }

// capsProvider is a provider stub that only answers Capabilities.
type capsProvider struct {
	provider.Provider
	caps provider.Capabilities
}

func (p *capsProvider) Capabilities() provider.Capabilities { return p.caps }

func never() (provider.Provider, bool) { return nil, false }

func always(p provider.Provider) provider.Source {
	return func() (provider.Provider, bool) { return p, true }
}

func TestClassifyDevice(t *testing.T) {
	assert.Equal(t, provider.DeviceDesktop, provider.ClassifyDevice(desktopUA))
	assert.Equal(t, provider.DeviceMobile, provider.ClassifyDevice(mobileUA))
	assert.Equal(t, provider.DeviceMobile, provider.ClassifyDevice(androidUA))
	assert.Equal(t, provider.DeviceDesktop, provider.ClassifyDevice(""))
}

func TestDetectDesktopBudget(t *testing.T) {
	clock := &fakeClock{}
	res := provider.Detect(clock, never, desktopUA)

	assert.False(t, res.Available)
	assert.Equal(t, provider.DeviceDesktop, res.Device)
	assert.Equal(t, 49, clock.sleeps, "50 attempts, 49 sleeps between them")
}

func TestDetectMobileBudget(t *testing.T) {
	clock := &fakeClock{}
	res := provider.Detect(clock, never, mobileUA)

	assert.False(t, res.Available)
	assert.Equal(t, provider.DeviceMobile, res.Device)
	assert.Equal(t, 19, clock.sleeps, "20 attempts, 19 sleeps between them")
}

func TestDetectImmediateInjection(t *testing.T) {
	clock := &fakeClock{}
	res := provider.Detect(clock, always(&capsProvider{caps: provider.Capabilities{MetaMask: true}}), desktopUA)

	assert.True(t, res.Available)
	assert.Equal(t, "MetaMask", res.Vendor)
	assert.Zero(t, clock.sleeps)
	assert.NotNil(t, res.Provider)
}

func TestDetectLateInjection(t *testing.T) {
	clock := &fakeClock{}
	tries := 0
	p := &capsProvider{}
	source := func() (provider.Provider, bool) {
		tries++
		return p, tries >= 30
	}

	res := provider.Detect(clock, source, desktopUA)
	assert.True(t, res.Available, "desktop budget covers a slow-loading extension")
	assert.Equal(t, 30, tries)
}

func TestVendorLabelPrecedence(t *testing.T) {
	// MetaMask wins even when other flags are set alongside it.
	all := provider.Capabilities{MetaMask: true, SafePal: true, Trust: true, Coinbase: true}
	assert.Equal(t, "MetaMask", provider.VendorLabel(all, provider.DeviceDesktop))

	assert.Equal(t, "SafePal",
		provider.VendorLabel(provider.Capabilities{SafePal: true, Trust: true, Coinbase: true}, provider.DeviceDesktop))
	assert.Equal(t, "Trust Wallet",
		provider.VendorLabel(provider.Capabilities{Trust: true, Coinbase: true}, provider.DeviceDesktop))
	assert.Equal(t, "Coinbase Wallet",
		provider.VendorLabel(provider.Capabilities{Coinbase: true}, provider.DeviceDesktop))

	assert.Equal(t, "mobile wallet", provider.VendorLabel(provider.Capabilities{}, provider.DeviceMobile))
	assert.Equal(t, "desktop wallet", provider.VendorLabel(provider.Capabilities{}, provider.DeviceDesktop))
}

func TestLocalSwitchChainUnrecognized(t *testing.T) {
	l := provider.NewLocal(chain.NewClient("http://localhost:0"), nil, 56)

	err := l.SwitchChain(context.Background(), 97)
	require.Error(t, err)
	assert.True(t, provider.IsCode(err, provider.CodeUnrecognizedChain))
}

func TestLocalAddChainThenSwitch(t *testing.T) {
	l := provider.NewLocal(chain.NewClient("http://localhost:0"), nil, 56)

	require.NoError(t, l.AddChain(context.Background(), chain.Descriptor{
		ChainID: 97, Name: "BSC Testnet", RPCURL: "http://localhost:1",
	}))
	require.NoError(t, l.SwitchChain(context.Background(), 97))

	id, err := l.ChainID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(97), id)
}

func TestLocalSwitchEmitsChainChanged(t *testing.T) {
	l := provider.NewLocal(chain.NewClient("http://localhost:0"), nil, 56)
	var got []string
	l.On(provider.EventChainChanged, func(args []string) { got = args })

	require.NoError(t, l.AddChain(context.Background(), chain.Descriptor{ChainID: 97, RPCURL: "http://localhost:1"}))
	require.NoError(t, l.SwitchChain(context.Background(), 97))

	assert.Equal(t, []string{"97"}, got)
}

func TestLocalCanSignWithoutKey(t *testing.T) {
	l := provider.NewLocal(chain.NewClient("http://localhost:0"), nil, 56)
	assert.False(t, l.CanSign())

	accounts, err := l.RequestAccounts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, accounts)
}
