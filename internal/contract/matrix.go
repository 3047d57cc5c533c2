package contract

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/refmatrix/refcli/internal/chain"
)

// MatrixABI is the surface of the referral matrix contract this tool uses.
//
// Function selectors:
//
//	getMyDetails(address) → 0x + keccak("getMyDetails(address)")[:4]
//	register(address)
//	upgrade()
//	withdraw()
var MatrixABI = []ABIEntry{
	{
		Name: "getMyDetails", Type: "function",
		Inputs: []ABIParam{{Name: "account", Type: "address"}},
		Outputs: []ABIParam{
			{Name: "id", Type: "uint256"},
			{Name: "wallet", Type: "address"},
			{Name: "referrerId", Type: "uint256"},
			{Name: "uplines", Type: "uint256[]"},
			{Name: "level", Type: "uint256"},
			{Name: "balance", Type: "uint256"},
			{Name: "exists", Type: "bool"},
		},
		StateMutability: "view",
	},
	{
		Name: "register", Type: "function",
		Inputs:          []ABIParam{{Name: "referrer", Type: "address"}},
		StateMutability: "nonpayable",
	},
	{Name: "upgrade", Type: "function", StateMutability: "nonpayable"},
	{Name: "withdraw", Type: "function", StateMutability: "nonpayable"},
}

var (
	selGetMyDetails = Selector("getMyDetails(address)")
	selRegister     = Selector("register(address)")
	selUpgrade      = Selector("upgrade()")
	selWithdraw     = Selector("withdraw()")
)

// GetMyDetailsData builds calldata for the user-details query.
func GetMyDetailsData(account common.Address) []byte {
	return append(append([]byte{}, selGetMyDetails...), encodeAddress(account)...)
}

// RegisterData builds calldata for register(referrer).
func RegisterData(referrer common.Address) []byte {
	return append(append([]byte{}, selRegister...), encodeAddress(referrer)...)
}

// UpgradeData builds calldata for upgrade().
func UpgradeData() []byte {
	return append([]byte{}, selUpgrade...)
}

// WithdrawData builds calldata for withdraw().
func WithdrawData() []byte {
	return append([]byte{}, selWithdraw...)
}

// Details is the decoded getMyDetails result.
type Details struct {
	ID         uint64
	Wallet     common.Address
	ReferrerID uint64
	Uplines    []uint64
	Level      uint64
	Balance    *big.Int
	Exists     bool
}

// DecodeDetails decodes the raw getMyDetails return data.
// Head layout: id, wallet, referrerId, uplines offset, level, balance, exists.
func DecodeDetails(data []byte) (*Details, error) {
	id, err := uintAt(data, 0)
	if err != nil {
		return nil, fmt.Errorf("decoding details: %w", err)
	}
	wallet, err := addressAt(data, 1)
	if err != nil {
		return nil, fmt.Errorf("decoding details: %w", err)
	}
	referrerID, err := uintAt(data, 2)
	if err != nil {
		return nil, fmt.Errorf("decoding details: %w", err)
	}
	uplinesOffset, err := uintAt(data, 3)
	if err != nil {
		return nil, fmt.Errorf("decoding details: %w", err)
	}
	level, err := uintAt(data, 4)
	if err != nil {
		return nil, fmt.Errorf("decoding details: %w", err)
	}
	balance, err := uintAt(data, 5)
	if err != nil {
		return nil, fmt.Errorf("decoding details: %w", err)
	}
	exists, err := boolAt(data, 6)
	if err != nil {
		return nil, fmt.Errorf("decoding details: %w", err)
	}

	d := &Details{
		ID:         id.Uint64(),
		Wallet:     wallet,
		ReferrerID: referrerID.Uint64(),
		Level:      level.Uint64(),
		Balance:    balance,
		Exists:     exists,
	}

	// uplines is a dynamic uint256[]: length word at the offset, items after.
	off := int(uplinesOffset.Uint64())
	if off+32 <= len(data) {
		length := new(big.Int).SetBytes(data[off : off+32]).Uint64()
		for i := uint64(0); i < length; i++ {
			start := off + 32 + int(i)*32
			if start+32 > len(data) {
				break
			}
			d.Uplines = append(d.Uplines, new(big.Int).SetBytes(data[start:start+32]).Uint64())
		}
	}

	return d, nil
}

// Reader performs the matrix contract's read-only queries against a chain
// client.
type Reader struct {
	client  *chain.Client
	address string
}

// NewReader creates a Reader bound to the matrix contract at address.
func NewReader(client *chain.Client, address string) *Reader {
	return &Reader{client: client, address: address}
}

// Details runs getMyDetails for account and decodes the result.
func (r *Reader) Details(ctx context.Context, account string) (*Details, error) {
	data := GetMyDetailsData(common.HexToAddress(account))
	out, err := r.client.CallContract(ctx, r.address, data)
	if err != nil {
		return nil, fmt.Errorf("getMyDetails: %w", err)
	}
	return DecodeDetails(out)
}
