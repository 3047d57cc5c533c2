package provider

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/refmatrix/refcli/internal/chain"
	"github.com/refmatrix/refcli/internal/wallet"
)

// Local is the built-in desktop provider: it signs with a keystore-held key
// and talks straight to the configured RPC endpoint. Chain switching
// repoints the client at a previously registered network's RPC.
type Local struct {
	signer *wallet.Signer

	mu         sync.Mutex
	client     *chain.Client
	chainID    int64
	registered map[int64]chain.Descriptor
	handlers   map[Event][]func(args []string)
}

// NewLocal creates a Local provider on the given chain.
func NewLocal(client *chain.Client, signer *wallet.Signer, chainID int64) *Local {
	return &Local{
		signer:     signer,
		client:     client,
		chainID:    chainID,
		registered: make(map[int64]chain.Descriptor),
		handlers:   make(map[Event][]func(args []string)),
	}
}

// RequestAccounts returns the signer's account.
func (l *Local) RequestAccounts(ctx context.Context) ([]string, error) {
	if l.signer == nil {
		return nil, nil
	}
	return []string{l.signer.Address()}, nil
}

// ChainID returns the chain the provider is currently on.
func (l *Local) ChainID(ctx context.Context) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.chainID, nil
}

// SwitchChain moves to a registered chain, or reports the EIP-3085
// unrecognized-chain code so the caller can register it first.
func (l *Local) SwitchChain(ctx context.Context, chainID int64) error {
	l.mu.Lock()
	if chainID == l.chainID {
		l.mu.Unlock()
		return nil
	}
	desc, ok := l.registered[chainID]
	if !ok {
		l.mu.Unlock()
		return &Error{Code: CodeUnrecognizedChain, Message: fmt.Sprintf("chain %d not registered", chainID)}
	}
	l.chainID = chainID
	l.client = chain.NewClient(desc.RPCURL)
	l.mu.Unlock()

	l.Emit(EventChainChanged, []string{fmt.Sprintf("%d", chainID)})
	return nil
}

// AddChain registers a network descriptor for later switching.
func (l *Local) AddChain(ctx context.Context, desc chain.Descriptor) error {
	if desc.RPCURL == "" {
		return &Error{Code: -32602, Message: "descriptor has no RPC URL"}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.registered[desc.ChainID] = desc
	return nil
}

// SendTransaction builds, signs, and broadcasts a dynamic-fee transaction.
func (l *Local) SendTransaction(ctx context.Context, req TxRequest) (string, error) {
	if l.signer == nil {
		return "", &Error{Code: CodeUserRejected, Message: "no signing key"}
	}

	l.mu.Lock()
	client := l.client
	chainID := l.chainID
	l.mu.Unlock()

	from := l.signer.Address()

	gas := req.GasLimit
	if gas == 0 {
		estimated, err := client.EstimateGas(ctx, from, req.To, req.Data, req.Value)
		if err != nil {
			return "", fmt.Errorf("estimating gas: %w", err)
		}
		gas = estimated
	}

	gasPrice, err := client.GasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("getting gas price: %w", err)
	}

	nonce, err := client.PendingNonce(ctx, from)
	if err != nil {
		return "", fmt.Errorf("getting nonce: %w", err)
	}

	value := req.Value
	if value == nil {
		value = big.NewInt(0)
	}
	toAddr := common.HexToAddress(req.To)

	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   big.NewInt(chainID),
		Nonce:     nonce,
		GasTipCap: gasPrice,
		GasFeeCap: new(big.Int).Mul(gasPrice, big.NewInt(2)),
		Gas:       gas,
		To:        &toAddr,
		Value:     value,
		Data:      req.Data,
	})

	raw, err := l.signer.SignTx(tx, big.NewInt(chainID))
	if err != nil {
		return "", fmt.Errorf("signing transaction: %w", err)
	}

	hash, err := client.SendRawTransaction(ctx, raw)
	if err != nil {
		return "", fmt.Errorf("broadcasting transaction: %w", err)
	}
	return hash, nil
}

// CanSign reports whether a signing key is loaded.
func (l *Local) CanSign() bool {
	return l.signer != nil
}

// Capabilities marks the local provider as a generic desktop wallet.
func (l *Local) Capabilities() Capabilities {
	return Capabilities{}
}

// On subscribes to change notifications.
func (l *Local) On(event Event, fn func(args []string)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handlers[event] = append(l.handlers[event], fn)
}

// Emit fires a change notification to all subscribers. Exposed so hosting
// code and tests can inject account/chain changes.
func (l *Local) Emit(event Event, args []string) {
	l.mu.Lock()
	fns := append([]func([]string){}, l.handlers[event]...)
	l.mu.Unlock()
	for _, fn := range fns {
		fn(args)
	}
}
