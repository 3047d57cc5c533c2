package wallet_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/refmatrix/refcli/internal/wallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Well-known test key (hardhat account #0).
const testKey = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func TestImportDerivesAddress(t *testing.T) {
	ks := wallet.NewInMemoryKeystore()

	s, err := wallet.Import(ks, wallet.DefaultKeyName, testKey)
	require.NoError(t, err)
	assert.Equal(t, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", s.Address())
}

func TestImportInvalidKey(t *testing.T) {
	ks := wallet.NewInMemoryKeystore()
	_, err := wallet.Import(ks, wallet.DefaultKeyName, "not-a-valid-key")
	assert.ErrorIs(t, err, wallet.ErrInvalidKey)
}

func TestOpenAfterImport(t *testing.T) {
	ks := wallet.NewInMemoryKeystore()
	_, err := wallet.Import(ks, wallet.DefaultKeyName, testKey)
	require.NoError(t, err)

	s, err := wallet.Open(ks, wallet.DefaultKeyName)
	require.NoError(t, err)
	assert.Equal(t, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", s.Address())
}

func TestOpenWithoutImport(t *testing.T) {
	ks := wallet.NewInMemoryKeystore()
	_, err := wallet.Open(ks, wallet.DefaultKeyName)
	assert.ErrorIs(t, err, wallet.ErrNoKey)
}

func TestSignTxProducesRawBytes(t *testing.T) {
	ks := wallet.NewInMemoryKeystore()
	s, err := wallet.Import(ks, wallet.DefaultKeyName, testKey)
	require.NoError(t, err)

	to := common.HexToAddress("0x1111111111111111111111111111111111111111")
	chainID := big.NewInt(56)
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     0,
		GasTipCap: big.NewInt(1),
		GasFeeCap: big.NewInt(2),
		Gas:       21000,
		To:        &to,
		Value:     big.NewInt(0),
	})

	raw, err := s.SignTx(tx, chainID)
	require.NoError(t, err)
	assert.NotEmpty(t, raw)

	var decoded types.Transaction
	require.NoError(t, decoded.UnmarshalBinary(raw))
	sender, err := types.Sender(types.NewLondonSigner(chainID), &decoded)
	require.NoError(t, err)
	assert.Equal(t, s.Address(), sender.Hex())
}
