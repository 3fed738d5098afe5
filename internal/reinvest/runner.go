package reinvest

import (
	"context"
	"fmt"
	"log"
	"math/big"
	"time"

	"AutoCompound/internal/calculator"
	"AutoCompound/internal/chain"
	"AutoCompound/internal/config"
	"AutoCompound/internal/model"

	"github.com/ethereum/go-ethereum/common"
)

// liquidityDeadline is how long an add-liquidity transaction stays valid.
const liquidityDeadline = 60 * time.Second

// Runner executes a Plan against a chain client. It holds no mutable state, so
// overlapping cycles never share anything but the read-only plan.
type Runner struct {
	plan   *Plan
	client chain.Client
	now    func() time.Time
}

// NewRunner binds a compiled plan to a chain client.
func NewRunner(plan *Plan, client chain.Client) *Runner {
	return &Runner{plan: plan, client: client, now: time.Now}
}

// Account is the signing account the runner acts for.
func (r *Runner) Account() common.Address { return r.client.Account() }

// RunCycle executes the whole action sequence once. Each action's failure is
// recorded and logged; the sequence always runs to the end.
func (r *Runner) RunCycle(ctx context.Context) *model.CycleReport {
	report := &model.CycleReport{StartedAt: r.now()}

	for _, h := range r.plan.harvests {
		log.Printf("[*] %s", h.label)
		r.record(report, r.send(ctx, model.KindHarvest, h.txStep, argEnv{pools: h.pools}, nil))
	}
	if len(r.plan.stakes) > 0 {
		r.restake(ctx, report)
	}
	if u := r.plan.unwrap; u != nil {
		r.unwrapNative(ctx, report, u)
	}
	if rs := r.plan.reinvest; rs != nil {
		switch rs.kind {
		case config.PoolPair:
			r.reinvestPair(ctx, report, rs)
		default:
			r.reinvestSingle(ctx, report, rs)
		}
	}

	report.FinishedAt = r.now()
	return report
}

// restake deposits each stage's token balance. A stage runs only after the
// previous stage's deposit went through.
func (r *Runner) restake(ctx context.Context, report *model.CycleReport) {
	for _, stage := range r.plan.stakes {
		balance, ok := r.balance(ctx, report, stage.tokenName, stage.token)
		if !ok {
			return
		}
		if balance.Sign() == 0 {
			r.record(report, skipped(model.KindDeposit, stage.label))
			return
		}
		log.Printf("[*] Stake %s %s", calculator.FormatEther(balance), stage.tokenName)
		res := r.send(ctx, model.KindDeposit, stage.txStep, argEnv{amount: balance}, nil)
		r.record(report, res)
		if !res.OK() {
			return
		}
	}
}

func (r *Runner) unwrapNative(ctx context.Context, report *model.CycleReport, u *unwrapStep) {
	balance, ok := r.balance(ctx, report, u.tokenName, u.contract)
	if !ok {
		return
	}
	if balance.Sign() == 0 {
		r.record(report, skipped(model.KindUnwrap, u.label))
		return
	}
	r.record(report, r.send(ctx, model.KindUnwrap, u.txStep, argEnv{amount: balance}, nil))
}

func (r *Runner) reinvestSingle(ctx context.Context, report *model.CycleReport, rs *reinvestStep) {
	balance, ok := r.balance(ctx, report, rs.tokenName, rs.token)
	if !ok {
		return
	}
	if balance.Sign() == 0 {
		r.record(report, skipped(model.KindDeposit, rs.deposit.label))
		return
	}
	r.record(report, r.send(ctx, model.KindDeposit, rs.deposit, argEnv{amount: balance, token: rs.token}, nil))
}

// reinvestPair turns the reward token into LP with the native asset, then stakes
// whatever LP balance the account holds. The LP deposit does not depend on the
// liquidity step succeeding.
func (r *Runner) reinvestPair(ctx context.Context, report *model.CycleReport, rs *reinvestStep) {
	if rs.liquidity != nil {
		r.provideLiquidity(ctx, report, rs)
	}

	lp, ok := r.balance(ctx, report, rs.pairName, rs.pair)
	if !ok {
		return
	}
	if lp.Sign() == 0 {
		r.record(report, skipped(model.KindDeposit, rs.deposit.label))
		return
	}
	r.record(report, r.send(ctx, model.KindDeposit, rs.deposit, argEnv{amount: lp, token: rs.pair, pair: rs.pair}, nil))
}

func (r *Runner) provideLiquidity(ctx context.Context, report *model.CycleReport, rs *reinvestStep) {
	balance, ok := r.balance(ctx, report, rs.tokenName, rs.token)
	if !ok {
		return
	}
	if balance.Sign() == 0 {
		r.record(report, skipped(model.KindLiquidity, rs.liquidity.label))
		return
	}

	reserves, err := r.client.Reserves(ctx, rs.pair)
	if err != nil {
		r.record(report, model.ActionResult{Kind: model.KindReserves, Label: rs.pairName + " reserves", Err: err})
		return
	}
	tokenReserve, pairedReserve, err := reserves.Split(rs.token)
	if err != nil {
		r.record(report, model.ActionResult{Kind: model.KindReserves, Label: rs.pairName + " reserves", Err: err})
		return
	}
	quote, err := calculator.Quote(balance, pairedReserve, tokenReserve)
	if err != nil {
		r.record(report, model.ActionResult{Kind: model.KindReserves, Label: rs.pairName + " reserves", Err: err})
		return
	}

	// The quote assumes the account holds enough of the native asset; the router
	// reverts otherwise.
	log.Printf("[*] Provide liquidity %s %s + %s native", calculator.FormatEther(balance), rs.tokenName, calculator.FormatEther(quote))
	env := argEnv{
		amount:   balance,
		quote:    quote,
		token:    rs.token,
		pair:     rs.pair,
		deadline: big.NewInt(r.now().Add(liquidityDeadline).Unix()),
	}
	r.record(report, r.send(ctx, model.KindLiquidity, *rs.liquidity, env, quote))
}

// balance reads the account's token balance fresh and records the read.
func (r *Runner) balance(ctx context.Context, report *model.CycleReport, name string, token common.Address) (*big.Int, bool) {
	res := model.ActionResult{Kind: model.KindBalance, Label: name + " balance"}
	b, err := r.client.BalanceOf(ctx, token)
	if err != nil {
		res.Err = err
		r.record(report, res)
		return nil, false
	}
	res.Amount = b
	r.record(report, res)
	return b, true
}

// send refreshes the gas price, tops it up, builds the arguments and transacts.
func (r *Runner) send(ctx context.Context, kind model.ActionKind, step txStep, env argEnv, value *big.Int) model.ActionResult {
	res := model.ActionResult{Kind: kind, Label: step.label, Amount: env.amount}

	suggested, err := r.client.SuggestGasPrice(ctx)
	if err != nil {
		res.Err = fmt.Errorf("suggest gas price: %w", err)
		return res
	}
	res.GasPrice = calculator.EffectiveGasPrice(suggested, r.plan.gasTopup)

	env.account = r.client.Account()
	env.referral = r.plan.referral
	if env.pool == "" {
		env.pool = step.pool
	}
	if env.pools == nil {
		env.pools = step.pools
	}
	args, err := buildArgs(step.method, step.args, env)
	if err != nil {
		res.Err = err
		return res
	}

	call := chain.Call{Contract: step.contract, Method: step.method, Args: args, Value: value}
	res.TxHash, res.Err = r.client.Transact(ctx, call, chain.TxOpts{GasPrice: res.GasPrice, GasLimit: r.plan.gasLimit})
	return res
}

func (r *Runner) record(report *model.CycleReport, res model.ActionResult) {
	logResult(&res)
	report.Add(res)
}

func skipped(kind model.ActionKind, label string) model.ActionResult {
	return model.ActionResult{Kind: kind, Label: label, Skipped: true, Amount: new(big.Int)}
}

func logResult(res *model.ActionResult) {
	switch {
	case !res.OK():
		log.Printf("[-] %s: %v", res.Label, res.Err)
	case res.Skipped:
		log.Printf("[*] %s: zero balance, skipped", res.Label)
	case res.Kind == model.KindBalance:
		log.Printf("[*] %s: %s", res.Label, calculator.FormatEther(res.Amount))
	default:
		log.Printf("[+] %s: %s (%s Gwei)", res.Label, res.TxHash.Hex(), calculator.FormatGwei(res.GasPrice))
	}
}
