// Package provider abstracts the wallet capability object: account access,
// chain switching, transaction submission, and change notifications. It also
// detects whether a provider is available at all and labels its vendor.
package provider

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/refmatrix/refcli/internal/chain"
)

// EIP-1193 / EIP-3085 provider error codes.
const (
	CodeUserRejected      = 4001
	CodeUnrecognizedChain = 4902
)

// Error is a provider failure carrying its wallet error code.
type Error struct {
	Code    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("provider error %d: %s", e.Code, e.Message)
}

// IsCode reports whether err is a provider Error with the given code.
func IsCode(err error, code int) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Code == code
}

// Event names for change notifications.
type Event string

const (
	EventAccountsChanged Event = "accountsChanged"
	EventChainChanged    Event = "chainChanged"
)

// Capabilities are the vendor flags exposed by an injected provider.
type Capabilities struct {
	MetaMask bool
	SafePal  bool
	Trust    bool
	Coinbase bool
}

// TxRequest describes a transaction for the provider to sign and submit.
type TxRequest struct {
	To       string
	Data     []byte
	Value    *big.Int
	GasLimit uint64 // 0 = estimate
}

// Provider is the wallet capability object.
type Provider interface {
	// RequestAccounts asks the wallet for account access. A user refusal
	// surfaces as an Error with CodeUserRejected.
	RequestAccounts(ctx context.Context) ([]string, error)

	// ChainID returns the chain the wallet is currently connected to.
	ChainID(ctx context.Context) (int64, error)

	// SwitchChain asks the wallet to move to chainID. An unknown chain
	// surfaces as an Error with CodeUnrecognizedChain.
	SwitchChain(ctx context.Context, chainID int64) error

	// AddChain registers a network with the wallet.
	AddChain(ctx context.Context, desc chain.Descriptor) error

	// SendTransaction signs and submits a transaction, returning its hash.
	SendTransaction(ctx context.Context, req TxRequest) (string, error)

	// CanSign reports whether the provider holds signing capability.
	CanSign() bool

	// Capabilities returns the vendor flags.
	Capabilities() Capabilities

	// On subscribes to accountsChanged / chainChanged notifications.
	On(event Event, fn func(args []string))
}

// VendorLabel names the wallet vendor from its capability flags. Precedence
// matters: several wallets set more than one flag.
func VendorLabel(c Capabilities, device DeviceClass) string {
	switch {
	case c.MetaMask:
		return "MetaMask"
	case c.SafePal:
		return "SafePal"
	case c.Trust:
		return "Trust Wallet"
	case c.Coinbase:
		return "Coinbase Wallet"
	case device == DeviceMobile:
		return "mobile wallet"
	default:
		return "desktop wallet"
	}
}
