package chain

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatUnitsWhole(t *testing.T) {
	ten := new(big.Int).Mul(big.NewInt(10), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
	assert.Equal(t, "10.0", FormatUnits(ten, 18))
}

func TestFormatUnitsFraction(t *testing.T) {
	// 1.5 tokens at 18 decimals
	raw, _ := new(big.Int).SetString("1500000000000000000", 10)
	assert.Equal(t, "1.5", FormatUnits(raw, 18))
}

func TestFormatUnitsZero(t *testing.T) {
	assert.Equal(t, "0.0", FormatUnits(big.NewInt(0), 18))
	assert.Equal(t, "0.0", FormatUnits(nil, 18))
}

func TestParseUnitsRoundTrip(t *testing.T) {
	raw, err := ParseUnits("10", 18)
	require.NoError(t, err)
	assert.Equal(t, "10.0", FormatUnits(raw, 18))
}

func TestParseUnitsInvalid(t *testing.T) {
	_, err := ParseUnits("not-a-number", 18)
	assert.Error(t, err)
}

func TestUnits(t *testing.T) {
	assert.Equal(t, "10000000000000000000", Units(10, 18).String())
	assert.Equal(t, "10", Units(10, 0).String())
}
