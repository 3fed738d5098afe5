package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ActionKind identifies what an action attempted.
type ActionKind string

const (
	KindHarvest   ActionKind = "HARVEST"
	KindBalance   ActionKind = "BALANCE"
	KindDeposit   ActionKind = "DEPOSIT"
	KindUnwrap    ActionKind = "UNWRAP"
	KindReserves  ActionKind = "RESERVES"
	KindLiquidity ActionKind = "LIQUIDITY"
)

// ActionResult is the outcome of a single action attempt within a cycle.
type ActionResult struct {
	Kind     ActionKind
	Label    string
	TxHash   common.Hash
	GasPrice *big.Int // effective gas price in wei, set for transactions
	Amount   *big.Int // balance read, or amount sent
	Skipped  bool     // nothing to do, e.g. zero balance
	Err      error
}

// OK reports whether the action completed without error.
func (a *ActionResult) OK() bool { return a.Err == nil }

// IsTx reports whether the action sent (or tried to send) a transaction.
func (a *ActionResult) IsTx() bool {
	switch a.Kind {
	case KindHarvest, KindDeposit, KindUnwrap, KindLiquidity:
		return true
	}
	return false
}
