package wallet

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// DefaultKeyName is the key the built-in signer uses when none is named.
const DefaultKeyName = "default"

// Errors.
var (
	ErrNoKey      = errors.New("no signing key imported")
	ErrInvalidKey = errors.New("invalid private key")
)

// Signer signs EVM transactions with a key held in a Store. The key itself
// stays in the keystore; only its reference is kept in memory.
type Signer struct {
	address string
	ref     string
	ks      Store
}

// Import derives the EVM address from a hex private key, stores the key,
// and returns a ready Signer.
func Import(ks Store, name, hexKey string) (*Signer, error) {
	privKey, err := crypto.HexToECDSA(stripHexPrefix(hexKey))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	addr := crypto.PubkeyToAddress(privKey.PublicKey).Hex()

	ref, err := ks.Store(name, hexKey)
	if err != nil {
		return nil, fmt.Errorf("storing key: %w", err)
	}
	return &Signer{address: addr, ref: ref, ks: ks}, nil
}

// Open loads an already-imported key by name.
func Open(ks Store, name string) (*Signer, error) {
	hexKey, err := ks.Retrieve(KeyRef(name))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoKey, err)
	}
	privKey, err := crypto.HexToECDSA(stripHexPrefix(hexKey))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	addr := crypto.PubkeyToAddress(privKey.PublicKey).Hex()
	return &Signer{address: addr, ref: KeyRef(name), ks: ks}, nil
}

// Address returns the signer's EVM address.
func (s *Signer) Address() string {
	return s.address
}

// SignTx signs a transaction and returns the raw signed bytes.
func (s *Signer) SignTx(tx *types.Transaction, chainID *big.Int) ([]byte, error) {
	hexKey, err := s.ks.Retrieve(s.ref)
	if err != nil {
		return nil, fmt.Errorf("retrieving key: %w", err)
	}

	privKey, err := crypto.HexToECDSA(stripHexPrefix(hexKey))
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}

	signer := types.NewLondonSigner(chainID)
	signed, err := types.SignTx(tx, signer, privKey)
	if err != nil {
		return nil, fmt.Errorf("signing transaction: %w", err)
	}

	raw, err := signed.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("marshaling signed tx: %w", err)
	}

	return raw, nil
}

func stripHexPrefix(s string) string {
	if len(s) >= 2 && s[:2] == "0x" {
		return s[2:]
	}
	return s
}
