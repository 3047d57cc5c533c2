// Package contract holds the ABI surface of the two contracts this tool
// touches (the referral matrix contract and its ERC-20 fee token) plus
// the calldata encoding and result decoding for their calls.
package contract

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// ABIEntry is a single ABI function entry.
type ABIEntry struct {
	Name            string     `json:"name"`
	Type            string     `json:"type"`
	Inputs          []ABIParam `json:"inputs"`
	Outputs         []ABIParam `json:"outputs"`
	StateMutability string     `json:"stateMutability"`
}

// ABIParam is a parameter in an ABI entry.
type ABIParam struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// IsReadFunction reports whether the entry is a view/pure function.
func (e *ABIEntry) IsReadFunction() bool {
	return e.Type == "function" && (e.StateMutability == "view" || e.StateMutability == "pure")
}

// Signature returns the canonical signature, e.g. "register(address)".
func (e *ABIEntry) Signature() string {
	types := make([]string, len(e.Inputs))
	for i, p := range e.Inputs {
		types[i] = p.Type
	}
	return e.Name + "(" + strings.Join(types, ",") + ")"
}

// Selector computes the 4-byte function selector for a signature.
func Selector(signature string) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(signature))
	return h.Sum(nil)[:4]
}

// --- word encoding (the types these two ABIs actually use) ---

func encodeAddress(addr common.Address) []byte {
	return common.LeftPadBytes(addr.Bytes(), 32)
}

func encodeUint(n *big.Int) []byte {
	return common.LeftPadBytes(n.Bytes(), 32)
}

// --- word decoding ---

func wordAt(data []byte, i int) ([]byte, error) {
	start := i * 32
	if start+32 > len(data) {
		return nil, fmt.Errorf("result too short: want word %d, have %d bytes", i, len(data))
	}
	return data[start : start+32], nil
}

func uintAt(data []byte, i int) (*big.Int, error) {
	w, err := wordAt(data, i)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(w), nil
}

func addressAt(data []byte, i int) (common.Address, error) {
	w, err := wordAt(data, i)
	if err != nil {
		return common.Address{}, err
	}
	return common.BytesToAddress(w[12:]), nil
}

func boolAt(data []byte, i int) (bool, error) {
	w, err := wordAt(data, i)
	if err != nil {
		return false, err
	}
	return w[31] == 1, nil
}
