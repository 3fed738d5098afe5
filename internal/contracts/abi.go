package contracts

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const erc20JSON = `[
	{"type":"function","name":"balanceOf","stateMutability":"view",
	 "inputs":[{"name":"account","type":"address"}],
	 "outputs":[{"name":"","type":"uint256"}]}
]`

const pairJSON = `[
	{"type":"function","name":"getReserves","stateMutability":"view","inputs":[],
	 "outputs":[
		{"name":"_reserve0","type":"uint112"},
		{"name":"_reserve1","type":"uint112"},
		{"name":"_blockTimestampLast","type":"uint32"}]},
	{"type":"function","name":"token0","stateMutability":"view","inputs":[],
	 "outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"token1","stateMutability":"view","inputs":[],
	 "outputs":[{"name":"","type":"address"}]}
]`

// Read-only ABIs used for balance and reserve queries.
var (
	ERC20ABI = mustParseABI(erc20JSON)
	PairABI  = mustParseABI(pairJSON)
)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic("contracts: invalid built-in abi: " + err.Error())
	}
	return parsed
}
