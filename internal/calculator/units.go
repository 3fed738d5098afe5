package calculator

import (
	"math/big"

	"github.com/shopspring/decimal"
)

const (
	gweiDecimals  = 9
	etherDecimals = 18
)

// FormatUnits renders a wei-denominated integer divided by 10^decimals, without
// trailing zeros.
func FormatUnits(v *big.Int, decimals int32) string {
	if v == nil {
		return "0"
	}
	return decimal.NewFromBigInt(v, -decimals).String()
}

// FormatGwei renders a wei value in gwei.
func FormatGwei(wei *big.Int) string { return FormatUnits(wei, gweiDecimals) }

// FormatEther renders a wei value in whole-token units (18 decimals).
func FormatEther(wei *big.Int) string { return FormatUnits(wei, etherDecimals) }
