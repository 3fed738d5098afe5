package calculator

import (
	"errors"
	"math/big"
)

// Quote returns the paired-asset amount matching amount of a token at the pair's
// current reserve ratio: amount * reservePaired / reserveToken, rounded down.
// It is a constant-product approximation, not a price oracle.
func Quote(amount, reservePaired, reserveToken *big.Int) (*big.Int, error) {
	if amount == nil || reservePaired == nil || reserveToken == nil {
		return nil, errors.New("quote: nil operand")
	}
	if amount.Sign() < 0 || reservePaired.Sign() < 0 {
		return nil, errors.New("quote: negative operand")
	}
	if reserveToken.Sign() <= 0 {
		return nil, errors.New("quote: token reserve is empty")
	}
	out := new(big.Int).Mul(amount, reservePaired)
	return out.Quo(out, reserveToken), nil
}

// EffectiveGasPrice adds the configured top-up to the network's suggested gas price.
func EffectiveGasPrice(suggested, topup *big.Int) *big.Int {
	out := new(big.Int)
	if suggested != nil {
		out.Set(suggested)
	}
	if topup != nil {
		out.Add(out, topup)
	}
	return out
}
