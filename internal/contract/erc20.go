package contract

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ERC20ABI is the subset of the standard token interface (EIP-20) the fee
// token gateway uses.
//
// Function selectors:
//
//	decimals()          → 0x313ce567
//	balanceOf(address)  → 0x70a08231
//	allowance(a,a)      → 0xdd62ed3e
//	approve(a,u256)     → 0x095ea7b3
var ERC20ABI = []ABIEntry{
	{
		Name: "decimals", Type: "function",
		Outputs:         []ABIParam{{Name: "", Type: "uint8"}},
		StateMutability: "view",
	},
	{
		Name: "balanceOf", Type: "function",
		Inputs:          []ABIParam{{Name: "account", Type: "address"}},
		Outputs:         []ABIParam{{Name: "", Type: "uint256"}},
		StateMutability: "view",
	},
	{
		Name: "allowance", Type: "function",
		Inputs:          []ABIParam{{Name: "owner", Type: "address"}, {Name: "spender", Type: "address"}},
		Outputs:         []ABIParam{{Name: "", Type: "uint256"}},
		StateMutability: "view",
	},
	{
		Name: "approve", Type: "function",
		Inputs:          []ABIParam{{Name: "spender", Type: "address"}, {Name: "value", Type: "uint256"}},
		Outputs:         []ABIParam{{Name: "", Type: "bool"}},
		StateMutability: "nonpayable",
	},
}

var (
	selDecimals  = Selector("decimals()")
	selBalanceOf = Selector("balanceOf(address)")
	selAllowance = Selector("allowance(address,address)")
	selApprove   = Selector("approve(address,uint256)")
)

// DecimalsData builds calldata for decimals().
func DecimalsData() []byte {
	return append([]byte{}, selDecimals...)
}

// BalanceOfData builds calldata for balanceOf(owner).
func BalanceOfData(owner common.Address) []byte {
	return append(append([]byte{}, selBalanceOf...), encodeAddress(owner)...)
}

// AllowanceData builds calldata for allowance(owner, spender).
func AllowanceData(owner, spender common.Address) []byte {
	data := append([]byte{}, selAllowance...)
	data = append(data, encodeAddress(owner)...)
	return append(data, encodeAddress(spender)...)
}

// ApproveData builds calldata for approve(spender, value).
func ApproveData(spender common.Address, value *big.Int) []byte {
	data := append([]byte{}, selApprove...)
	data = append(data, encodeAddress(spender)...)
	return append(data, encodeUint(value)...)
}

// DecodeUint decodes a single uint256 return word.
func DecodeUint(data []byte) (*big.Int, error) {
	return uintAt(data, 0)
}
