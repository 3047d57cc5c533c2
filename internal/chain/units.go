package chain

import (
	"fmt"
	"math/big"
	"strings"
)

// FormatUnits converts a raw token amount to a decimal string using the
// token's decimals, trimming trailing zeros down to one fractional digit.
func FormatUnits(raw *big.Int, decimals int) string {
	if raw == nil {
		return "0.0"
	}
	if decimals <= 0 {
		return raw.String()
	}
	div := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	f := new(big.Float).SetInt(raw)
	f.Quo(f, new(big.Float).SetInt(div))
	s := f.Text('f', decimals)

	// Trim trailing zeros but keep one fractional digit.
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		if strings.HasSuffix(s, ".") {
			s += "0"
		}
	}
	return s
}

// ParseUnits converts a decimal token amount string to its raw integer
// representation at the given decimals.
func ParseUnits(s string, decimals int) (*big.Int, error) {
	f, ok := new(big.Float).SetString(s)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	scale := new(big.Float).SetInt(
		new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil))
	raw, _ := new(big.Float).Mul(f, scale).Int(nil)
	return raw, nil
}

// Units converts a whole number of token units to its raw representation.
func Units(n int64, decimals int) *big.Int {
	raw := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	return raw.Mul(raw, big.NewInt(n))
}
