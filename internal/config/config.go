package config

import (
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"
)

// Overlap policies for cycles that outlast the interval.
const (
	OverlapAllow = "allow"
	OverlapSkip  = "skip"
)

// Reinvest pool kinds.
const (
	PoolSingle = "single"
	PoolPair   = "pair"
)

// Default method signatures and argument templates.
const (
	DefaultHarvestMethod   = "harvest(uint256[])"
	DefaultStakeMethod     = "deposit(uint256,uint256)"
	DefaultUnwrapMethod    = "withdraw(uint256)"
	DefaultFarmMethod      = "deposit(uint256,uint256,address)"
	DefaultLiquidityMethod = "addLiquidityETH(address,uint256,uint256,uint256,address,uint256)"
)

var (
	DefaultHarvestArgs   = []string{"pools"}
	DefaultStakeArgs     = []string{"pool", "amount"}
	DefaultUnwrapArgs    = []string{"amount"}
	DefaultFarmArgs      = []string{"pool", "amount", "referral"}
	DefaultLiquidityArgs = []string{"token", "amount", "zero", "zero", "account", "deadline"}
)

// HarvestGroup is one harvest transaction covering a list of pools.
type HarvestGroup struct {
	Label    string   `yaml:"label"`
	Contract string   `yaml:"contract"`
	Method   string   `yaml:"method"`
	Args     []string `yaml:"args"`
	Pools    []string `yaml:"pools"`
}

// StakeStage deposits the account's whole balance of Token into Contract.
type StakeStage struct {
	Label    string   `yaml:"label"`
	Token    string   `yaml:"token"`
	Contract string   `yaml:"contract"`
	Method   string   `yaml:"method"`
	Args     []string `yaml:"args"`
}

// ReinvestPool describes what a farm pool id holds.
type ReinvestPool struct {
	Kind  string `yaml:"kind"`  // "single" or "pair"
	Token string `yaml:"token"` // reward token deposited (single) or paired (pair)
	Pair  string `yaml:"pair"`  // LP token, pair pools only
}

// Config holds all application configuration.
type Config struct {
	RPCURL        string `yaml:"rpc_url"`
	PrivateKey    string `yaml:"private_key"`
	AddressBook   string `yaml:"address_book"`
	IntervalHours int    `yaml:"interval_hours"`
	GasTopup      string `yaml:"gas_topup"` // wei
	GasLimit      uint64 `yaml:"gas_limit"`
	Referral      string `yaml:"referral"`
	OverlapPolicy string `yaml:"overlap_policy"`

	Harvest []HarvestGroup `yaml:"harvest"`

	Restake struct {
		Enabled   bool         `yaml:"enabled"`
		StakePool string       `yaml:"stake_pool"`
		Stages    []StakeStage `yaml:"stages"`
	} `yaml:"restake"`

	Unwrap struct {
		Enabled bool     `yaml:"enabled"`
		Token   string   `yaml:"token"`
		Method  string   `yaml:"method"`
		Args    []string `yaml:"args"`
	} `yaml:"unwrap"`

	Reinvest struct {
		Pool             string                  `yaml:"pool"`
		ProvideLiquidity bool                    `yaml:"provide_liquidity"`
		Farm             string                  `yaml:"farm"`
		FarmMethod       string                  `yaml:"farm_method"`
		FarmArgs         []string                `yaml:"farm_args"`
		Router           string                  `yaml:"router"`
		LiquidityMethod  string                  `yaml:"liquidity_method"`
		LiquidityArgs    []string                `yaml:"liquidity_args"`
		Pools            map[string]ReinvestPool `yaml:"pools"`
	} `yaml:"reinvest"`

	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("RPC_URL"); v != "" {
		c.RPCURL = v
	}
	if v := os.Getenv("PRIVATE_KEY"); v != "" {
		c.PrivateKey = v
	}
	if v := os.Getenv("ADDRESS_BOOK"); v != "" {
		c.AddressBook = v
	}
	if v := os.Getenv("INTERVAL_HR"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("INTERVAL_HR: %w", err)
		}
		c.IntervalHours = n
	}
	if v := os.Getenv("GAS_TOPUP"); v != "" {
		c.GasTopup = v
	}
	if v := os.Getenv("GAS_LIMIT"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("GAS_LIMIT: %w", err)
		}
		c.GasLimit = n
	}
	if v := os.Getenv("STAKE_POOL"); v != "" {
		c.Restake.StakePool = v
	}
	if v := os.Getenv("REINVEST_POOL"); v != "" {
		c.Reinvest.Pool = v
	}
	if v := os.Getenv("REFERRAL"); v != "" {
		c.Referral = v
	}
	if v := os.Getenv("OVERLAP_POLICY"); v != "" {
		c.OverlapPolicy = v
	}
	for _, f := range []struct {
		key string
		dst *bool
	}{
		{"ENABLE_RESTAKE", &c.Restake.Enabled},
		{"ENABLE_UNWRAP", &c.Unwrap.Enabled},
		{"PROVIDE_LIQUIDITY", &c.Reinvest.ProvideLiquidity},
	} {
		if v := os.Getenv(f.key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s: %w", f.key, err)
			}
			*f.dst = b
		}
	}
	// BOOSTER_POOLS=1,2,3 replaces the pools of the harvest group whose contract is "Booster".
	for i := range c.Harvest {
		key := strings.ToUpper(c.Harvest[i].Contract) + "_POOLS"
		if v := os.Getenv(key); v != "" {
			c.Harvest[i].Pools = SplitList(v)
		}
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.AddressBook == "" {
		c.AddressBook = "configs/addresses.json"
	}
	if c.GasTopup == "" {
		c.GasTopup = "0"
	}
	if c.OverlapPolicy == "" {
		c.OverlapPolicy = OverlapAllow
	}
	if c.Referral == "" {
		c.Referral = common.Address{}.Hex()
	}
	for i := range c.Harvest {
		h := &c.Harvest[i]
		if h.Label == "" {
			h.Label = h.Contract
		}
		if h.Method == "" {
			h.Method = DefaultHarvestMethod
		}
		if len(h.Args) == 0 {
			h.Args = DefaultHarvestArgs
		}
	}
	for i := range c.Restake.Stages {
		s := &c.Restake.Stages[i]
		if s.Label == "" {
			s.Label = fmt.Sprintf("%s to %s", s.Token, s.Contract)
		}
		if s.Method == "" {
			s.Method = DefaultStakeMethod
		}
		if len(s.Args) == 0 {
			s.Args = DefaultStakeArgs
		}
	}
	if c.Unwrap.Method == "" {
		c.Unwrap.Method = DefaultUnwrapMethod
	}
	if len(c.Unwrap.Args) == 0 {
		c.Unwrap.Args = DefaultUnwrapArgs
	}
	if c.Reinvest.FarmMethod == "" {
		c.Reinvest.FarmMethod = DefaultFarmMethod
	}
	if len(c.Reinvest.FarmArgs) == 0 {
		c.Reinvest.FarmArgs = DefaultFarmArgs
	}
	if c.Reinvest.LiquidityMethod == "" {
		c.Reinvest.LiquidityMethod = DefaultLiquidityMethod
	}
	if len(c.Reinvest.LiquidityArgs) == 0 {
		c.Reinvest.LiquidityArgs = DefaultLiquidityArgs
	}
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.RPCURL == "" {
		return fmt.Errorf("rpc_url is required")
	}
	if c.PrivateKey == "" {
		return fmt.Errorf("private_key is required")
	}
	if c.IntervalHours <= 0 {
		return fmt.Errorf("interval_hours must be positive")
	}
	if c.GasLimit == 0 {
		return fmt.Errorf("gas_limit must be positive")
	}
	if _, err := c.GasTopupWei(); err != nil {
		return err
	}
	if !common.IsHexAddress(c.Referral) {
		return fmt.Errorf("referral %q is not an address", c.Referral)
	}
	if c.OverlapPolicy != OverlapAllow && c.OverlapPolicy != OverlapSkip {
		return fmt.Errorf("overlap_policy must be %q or %q", OverlapAllow, OverlapSkip)
	}

	for i, h := range c.Harvest {
		if h.Contract == "" {
			return fmt.Errorf("harvest[%d].contract is required", i)
		}
		if len(h.Pools) == 0 {
			return fmt.Errorf("harvest[%d] (%s) has no pools", i, h.Label)
		}
	}
	if c.Restake.Enabled {
		if len(c.Restake.Stages) == 0 {
			return fmt.Errorf("restake.stages is required when restake is enabled")
		}
		for i, s := range c.Restake.Stages {
			if s.Token == "" || s.Contract == "" {
				return fmt.Errorf("restake.stages[%d] needs token and contract", i)
			}
		}
	}
	if c.Unwrap.Enabled && c.Unwrap.Token == "" {
		return fmt.Errorf("unwrap.token is required when unwrap is enabled")
	}
	if c.ReinvestEnabled() {
		if _, err := strconv.ParseUint(c.Reinvest.Pool, 10, 64); err != nil {
			return fmt.Errorf("reinvest.pool: %w", err)
		}
		pool, ok := c.Reinvest.Pools[c.Reinvest.Pool]
		if !ok {
			return fmt.Errorf("reinvest.pool %s is not described in reinvest.pools", c.Reinvest.Pool)
		}
		if c.Reinvest.Farm == "" {
			return fmt.Errorf("reinvest.farm is required")
		}
		switch pool.Kind {
		case PoolSingle:
			if pool.Token == "" {
				return fmt.Errorf("reinvest pool %s needs a token", c.Reinvest.Pool)
			}
		case PoolPair:
			if pool.Token == "" || pool.Pair == "" {
				return fmt.Errorf("reinvest pool %s needs token and pair", c.Reinvest.Pool)
			}
			if c.Reinvest.ProvideLiquidity && c.Reinvest.Router == "" {
				return fmt.Errorf("reinvest.router is required to provide liquidity")
			}
		default:
			return fmt.Errorf("reinvest pool %s: unknown kind %q", c.Reinvest.Pool, pool.Kind)
		}
	}

	if len(c.Harvest) == 0 && !c.Restake.Enabled && !c.Unwrap.Enabled && !c.ReinvestEnabled() {
		return fmt.Errorf("no actions configured")
	}
	return nil
}

// ReinvestEnabled reports whether a reinvest pool is selected. Pool "0" or "" disables it.
func (c *Config) ReinvestEnabled() bool {
	return c.Reinvest.Pool != "" && c.Reinvest.Pool != "0"
}

// GasTopupWei parses the gas price top-up.
func (c *Config) GasTopupWei() (*big.Int, error) {
	v, ok := new(big.Int).SetString(strings.TrimSpace(c.GasTopup), 10)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("gas_topup %q is not a non-negative integer", c.GasTopup)
	}
	return v, nil
}

// Interval is the period between scheduled cycles.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.IntervalHours) * time.Hour
}

// SplitList splits a comma-separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
