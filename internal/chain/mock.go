package chain

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// SentTx is a transaction recorded by MockClient.
type SentTx struct {
	Call Call
	Opts TxOpts
	Hash common.Hash
}

// MockClient is an in-memory Client for development and testing.
type MockClient struct {
	From common.Address

	// GasPrices are returned by successive SuggestGasPrice calls; the last one repeats.
	GasPrices   []*big.Int
	GasPriceErr error

	Balances    map[common.Address]*big.Int
	BalanceErrs map[common.Address]error
	Pairs       map[common.Address]*Reserves

	// TxErrs fails every transaction sent to the given contract.
	TxErrs map[common.Address]error
	// OnTransact runs after a successful transaction, e.g. to move balances.
	OnTransact func(m *MockClient, call Call)
	// Hang blocks Transact until the context is done.
	Hang bool

	mu        sync.Mutex
	gasCalls  int
	reads     []common.Address
	sent      []SentTx
	attempted int
}

// NewMockClient creates a MockClient for account with empty balances.
func NewMockClient(account common.Address) *MockClient {
	return &MockClient{
		From:        account,
		GasPrices:   []*big.Int{big.NewInt(1_000_000_000)},
		Balances:    map[common.Address]*big.Int{},
		BalanceErrs: map[common.Address]error{},
		Pairs:       map[common.Address]*Reserves{},
		TxErrs:      map[common.Address]error{},
	}
}

func (m *MockClient) Account() common.Address { return m.From }

func (m *MockClient) SuggestGasPrice(_ context.Context) (*big.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GasPriceErr != nil {
		return nil, m.GasPriceErr
	}
	i := m.gasCalls
	if i >= len(m.GasPrices) {
		i = len(m.GasPrices) - 1
	}
	m.gasCalls++
	return new(big.Int).Set(m.GasPrices[i]), nil
}

func (m *MockClient) BalanceOf(_ context.Context, token common.Address) (*big.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads = append(m.reads, token)
	if err := m.BalanceErrs[token]; err != nil {
		return nil, err
	}
	if b, ok := m.Balances[token]; ok {
		return new(big.Int).Set(b), nil
	}
	return new(big.Int), nil
}

func (m *MockClient) Reserves(_ context.Context, pair common.Address) (*Reserves, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.Pairs[pair]
	if !ok {
		return nil, fmt.Errorf("no reserves for pair %s", pair.Hex())
	}
	return r, nil
}

func (m *MockClient) Transact(ctx context.Context, call Call, opts TxOpts) (common.Hash, error) {
	m.mu.Lock()
	m.attempted++
	hang := m.Hang
	m.mu.Unlock()

	if hang {
		<-ctx.Done()
		return common.Hash{}, ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.TxErrs[call.Contract]; err != nil {
		return common.Hash{}, err
	}
	hash := common.BigToHash(big.NewInt(int64(len(m.sent) + 1)))
	m.sent = append(m.sent, SentTx{Call: call, Opts: opts, Hash: hash})
	if m.OnTransact != nil {
		m.OnTransact(m, call)
	}
	return hash, nil
}

// SetBalance sets token's balance for the account. Safe to call from OnTransact.
func (m *MockClient) SetBalance(token common.Address, v *big.Int) {
	m.Balances[token] = new(big.Int).Set(v)
}

// Sent returns the successfully sent transactions in order.
func (m *MockClient) Sent() []SentTx {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentTx(nil), m.sent...)
}

// Attempted counts Transact calls, including failed ones.
func (m *MockClient) Attempted() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempted
}

// Reads returns the tokens whose balance was queried, in order.
func (m *MockClient) Reads() []common.Address {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]common.Address(nil), m.reads...)
}
