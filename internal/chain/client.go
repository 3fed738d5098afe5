package chain

import (
	"context"
	"fmt"
	"math/big"

	"AutoCompound/internal/contracts"

	"github.com/ethereum/go-ethereum/common"
)

// Call describes one state-changing contract invocation.
type Call struct {
	Contract common.Address
	Method   contracts.Method
	Args     []interface{}
	Value    *big.Int // native asset attached, nil for none
}

// TxOpts carries the per-transaction gas parameters.
type TxOpts struct {
	GasPrice *big.Int
	GasLimit uint64
}

// Reserves is a snapshot of a liquidity pair's getReserves() with its tokens.
type Reserves struct {
	Token0   common.Address
	Token1   common.Address
	Reserve0 *big.Int
	Reserve1 *big.Int
}

// Split returns the reserve of token and the reserve of the other asset in the pair.
// It fails when token is not one of the pair's two tokens.
func (r *Reserves) Split(token common.Address) (tokenReserve, pairedReserve *big.Int, err error) {
	switch token {
	case r.Token0:
		return r.Reserve0, r.Reserve1, nil
	case r.Token1:
		return r.Reserve1, r.Reserve0, nil
	}
	return nil, nil, fmt.Errorf("token %s is not in pair (%s, %s)", token.Hex(), r.Token0.Hex(), r.Token1.Hex())
}

// Client is the set of chain operations a reinvestment cycle needs.
// All reads and transactions are made for the single signing account.
type Client interface {
	Account() common.Address
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	BalanceOf(ctx context.Context, token common.Address) (*big.Int, error)
	Reserves(ctx context.Context, pair common.Address) (*Reserves, error)
	// Transact signs and sends the call, then waits until it is mined.
	// A reverted transaction is returned as an error alongside its hash.
	Transact(ctx context.Context, call Call, opts TxOpts) (common.Hash, error)
}
