package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strings"

	"AutoCompound/internal/contracts"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// EthClient implements Client over a JSON-RPC endpoint with a local private key.
type EthClient struct {
	client  *ethclient.Client
	key     *ecdsa.PrivateKey
	from    common.Address
	chainID *big.Int
}

// Dial connects to rpcURL and loads the hex-encoded signing key.
func Dial(ctx context.Context, rpcURL, privateKeyHex string) (*EthClient, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	publicKey, ok := key.Public().(*ecdsa.PublicKey)
	if !ok {
		return nil, errors.New("cannot assert type: publicKey is not of type *ecdsa.PublicKey")
	}

	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc: %w", err)
	}
	chainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("fetch chain id: %w", err)
	}

	c := &EthClient{
		client:  client,
		key:     key,
		from:    crypto.PubkeyToAddress(*publicKey),
		chainID: chainID,
	}
	log.Printf("[INFO] connected to chain %s as %s", chainID, c.from.Hex())
	return c, nil
}

// Close releases the RPC connection.
func (c *EthClient) Close() { c.client.Close() }

func (c *EthClient) Account() common.Address { return c.from }

func (c *EthClient) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return c.client.SuggestGasPrice(ctx)
}

func (c *EthClient) BalanceOf(ctx context.Context, token common.Address) (*big.Int, error) {
	erc20 := bind.NewBoundContract(token, contracts.ERC20ABI, c.client, c.client, c.client)
	var out []interface{}
	if err := erc20.Call(&bind.CallOpts{Context: ctx, From: c.from}, &out, "balanceOf", c.from); err != nil {
		return nil, err
	}
	balance, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("balanceOf: unexpected result type %T", out[0])
	}
	return balance, nil
}

func (c *EthClient) Reserves(ctx context.Context, pair common.Address) (*Reserves, error) {
	lp := bind.NewBoundContract(pair, contracts.PairABI, c.client, c.client, c.client)
	opts := &bind.CallOpts{Context: ctx, From: c.from}

	var out []interface{}
	if err := lp.Call(opts, &out, "getReserves"); err != nil {
		return nil, fmt.Errorf("getReserves: %w", err)
	}
	r0, ok0 := out[0].(*big.Int)
	r1, ok1 := out[1].(*big.Int)
	if !ok0 || !ok1 {
		return nil, fmt.Errorf("getReserves: unexpected result types %T, %T", out[0], out[1])
	}

	token0, err := pairToken(lp, opts, "token0")
	if err != nil {
		return nil, err
	}
	token1, err := pairToken(lp, opts, "token1")
	if err != nil {
		return nil, err
	}
	return &Reserves{Token0: token0, Token1: token1, Reserve0: r0, Reserve1: r1}, nil
}

func pairToken(lp *bind.BoundContract, opts *bind.CallOpts, method string) (common.Address, error) {
	var out []interface{}
	if err := lp.Call(opts, &out, method); err != nil {
		return common.Address{}, fmt.Errorf("%s: %w", method, err)
	}
	token, ok := out[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("%s: unexpected result type %T", method, out[0])
	}
	return token, nil
}

func (c *EthClient) Transact(ctx context.Context, call Call, opts TxOpts) (common.Hash, error) {
	auth, err := bind.NewKeyedTransactorWithChainID(c.key, c.chainID)
	if err != nil {
		return common.Hash{}, fmt.Errorf("create transactor: %w", err)
	}
	auth.Context = ctx
	auth.GasPrice = opts.GasPrice
	auth.GasLimit = opts.GasLimit
	auth.Value = call.Value

	contract := bind.NewBoundContract(call.Contract, call.Method.ABI, c.client, c.client, c.client)
	tx, err := contract.Transact(auth, call.Method.Name, call.Args...)
	if err != nil {
		return common.Hash{}, err
	}

	receipt, err := bind.WaitMined(ctx, c.client, tx)
	if err != nil {
		return tx.Hash(), fmt.Errorf("wait for %s: %w", tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return tx.Hash(), fmt.Errorf("transaction %s reverted in block %s", tx.Hash().Hex(), receipt.BlockNumber)
	}
	return tx.Hash(), nil
}
