package reinvest

import (
	"fmt"
	"math/big"
	"strings"

	"AutoCompound/internal/config"
	"AutoCompound/internal/contracts"

	"github.com/ethereum/go-ethereum/common"
)

// txStep is a resolved, validated transaction template.
type txStep struct {
	label    string
	contract common.Address
	method   contracts.Method
	args     []string
	pool     string
	pools    []string
}

type harvestStep struct {
	txStep
}

type stakeStage struct {
	txStep
	tokenName string
	token     common.Address
}

type unwrapStep struct {
	txStep
	tokenName string
}

type reinvestStep struct {
	pool      string
	kind      string
	tokenName string
	token     common.Address
	pairName  string
	pair      common.Address
	deposit   txStep
	liquidity *txStep // nil unless a pair pool with liquidity provision enabled
}

// Plan is the immutable, fully resolved action sequence built from configuration.
type Plan struct {
	gasTopup *big.Int
	gasLimit uint64
	referral common.Address

	harvests []harvestStep
	stakes   []stakeStage
	unwrap   *unwrapStep
	reinvest *reinvestStep
}

// Compile resolves every contract name and method signature the configuration
// refers to. Any error here is a configuration error and must stop startup.
func Compile(cfg *config.Config, book *contracts.AddressBook) (*Plan, error) {
	topup, err := cfg.GasTopupWei()
	if err != nil {
		return nil, err
	}
	p := &Plan{
		gasTopup: topup,
		gasLimit: cfg.GasLimit,
		referral: common.HexToAddress(cfg.Referral),
	}

	for _, h := range cfg.Harvest {
		step, err := newTxStep(book, fmt.Sprintf("Harvest from %s pools %s", h.Label, strings.Join(h.Pools, ",")),
			h.Contract, h.Method, h.Args)
		if err != nil {
			return nil, fmt.Errorf("harvest %s: %w", h.Label, err)
		}
		step.pools = h.Pools
		if err := step.check(); err != nil {
			return nil, fmt.Errorf("harvest %s: %w", h.Label, err)
		}
		p.harvests = append(p.harvests, harvestStep{txStep: step})
	}

	if cfg.Restake.Enabled {
		for _, s := range cfg.Restake.Stages {
			token, err := book.Lookup(s.Token)
			if err != nil {
				return nil, fmt.Errorf("restake %s: %w", s.Label, err)
			}
			step, err := newTxStep(book, "Stake "+s.Label, s.Contract, s.Method, s.Args)
			if err != nil {
				return nil, fmt.Errorf("restake %s: %w", s.Label, err)
			}
			step.pool = cfg.Restake.StakePool
			if err := step.check(); err != nil {
				return nil, fmt.Errorf("restake %s: %w", s.Label, err)
			}
			p.stakes = append(p.stakes, stakeStage{txStep: step, tokenName: s.Token, token: token})
		}
	}

	if cfg.Unwrap.Enabled {
		// The wrapped token contract is its own withdraw target.
		step, err := newTxStep(book, "Unwrap "+cfg.Unwrap.Token, cfg.Unwrap.Token, cfg.Unwrap.Method, cfg.Unwrap.Args)
		if err != nil {
			return nil, fmt.Errorf("unwrap: %w", err)
		}
		if err := step.check(); err != nil {
			return nil, fmt.Errorf("unwrap: %w", err)
		}
		p.unwrap = &unwrapStep{txStep: step, tokenName: cfg.Unwrap.Token}
	}

	if cfg.ReinvestEnabled() {
		r, err := compileReinvest(cfg, book)
		if err != nil {
			return nil, fmt.Errorf("reinvest pool %s: %w", cfg.Reinvest.Pool, err)
		}
		p.reinvest = r
	}
	return p, nil
}

func compileReinvest(cfg *config.Config, book *contracts.AddressBook) (*reinvestStep, error) {
	pool, ok := cfg.Reinvest.Pools[cfg.Reinvest.Pool]
	if !ok {
		return nil, fmt.Errorf("pool is not described in reinvest.pools")
	}
	token, err := book.Lookup(pool.Token)
	if err != nil {
		return nil, err
	}
	r := &reinvestStep{
		pool:      cfg.Reinvest.Pool,
		kind:      pool.Kind,
		tokenName: pool.Token,
		token:     token,
	}

	deposited := pool.Token
	if pool.Kind == config.PoolPair {
		if r.pair, err = book.Lookup(pool.Pair); err != nil {
			return nil, err
		}
		r.pairName = pool.Pair
		deposited = pool.Pair
	}

	r.deposit, err = newTxStep(book, fmt.Sprintf("Reinvest %s to pool %s", deposited, r.pool),
		cfg.Reinvest.Farm, cfg.Reinvest.FarmMethod, cfg.Reinvest.FarmArgs)
	if err != nil {
		return nil, err
	}
	r.deposit.pool = r.pool
	if err := r.deposit.check(); err != nil {
		return nil, err
	}

	if pool.Kind == config.PoolPair && cfg.Reinvest.ProvideLiquidity {
		liq, err := newTxStep(book, fmt.Sprintf("Provide liquidity %s", pool.Pair),
			cfg.Reinvest.Router, cfg.Reinvest.LiquidityMethod, cfg.Reinvest.LiquidityArgs)
		if err != nil {
			return nil, err
		}
		liq.pool = r.pool
		if err := liq.check(); err != nil {
			return nil, err
		}
		r.liquidity = &liq
	}
	return r, nil
}

func newTxStep(book *contracts.AddressBook, label, contract, signature string, args []string) (txStep, error) {
	addr, err := book.Lookup(contract)
	if err != nil {
		return txStep{}, err
	}
	method, err := contracts.ParseMethod(signature)
	if err != nil {
		return txStep{}, err
	}
	return txStep{label: label, contract: addr, method: method, args: args}, nil
}

// check resolves and packs the argument template once with placeholder values
// so that arity, type and pool-format mistakes surface at startup.
func (s txStep) check() error {
	one := big.NewInt(1)
	args, err := buildArgs(s.method, s.args, argEnv{
		amount:   one,
		quote:    one,
		deadline: one,
		pool:     s.pool,
		pools:    s.pools,
	})
	if err != nil {
		return err
	}
	if _, err := s.method.ABI.Pack(s.method.Name, args...); err != nil {
		return fmt.Errorf("%s: %w", s.method.Signature, err)
	}
	return nil
}
