// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/luxfi/oraclepool/token"
)

// Test identities.
var (
	testPairAddr    = common.HexToAddress("0xaaaa000000000000000000000000000000000001")
	testFactoryAddr = common.HexToAddress("0xaaaa000000000000000000000000000000000002")
	testOracleAddr  = common.HexToAddress("0xaaaa000000000000000000000000000000000003")
	testRewardsAddr = common.HexToAddress("0xaaaa000000000000000000000000000000000004")
	testVaultAddr   = common.HexToAddress("0xaaaa000000000000000000000000000000000005")
	testToken0Addr  = common.HexToAddress("0xbbbb000000000000000000000000000000000001")
	testToken1Addr  = common.HexToAddress("0xbbbb000000000000000000000000000000000002")
	testAlice       = common.HexToAddress("0xcccc000000000000000000000000000000000001")
	testBob         = common.HexToAddress("0xcccc000000000000000000000000000000000002")
)

func bigInt(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("bad bigInt literal: " + s)
	}
	return n
}

// e18 returns n * 10^18.
func e18(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), NAVPSBase)
}

// fakeController serves one fixed quote, charges a flat native fee, and can
// be rigged to fail or to call back into the pair mid-query.
type fakeController struct {
	price    OraclePrice
	fee      *uint256.Int
	queryErr error
	callback func() // runs inside QueryOracle, after the fee is charged
	calls    int
}

func (c *fakeController) QueryOracle(bank Bank, payer common.Address, tok common.Address, op OracleOp, payload []byte) (OraclePrice, error) {
	c.calls++
	if c.queryErr != nil {
		return OraclePrice{}, c.queryErr
	}
	if c.fee != nil && !c.fee.IsZero() {
		if err := bank.Transfer(payer, testOracleAddr, c.fee); err != nil {
			return OraclePrice{}, err
		}
	}
	if c.callback != nil {
		c.callback()
	}
	return c.price, nil
}

// fakeFactory returns fixed policy values.
type fakeFactory struct {
	controller  Controller
	tradeMining bool
	feeReceiver common.Address
	lpVault     common.Address
}

func (f *fakeFactory) Address() common.Address                 { return testFactoryAddr }
func (f *fakeFactory) Controller() Controller                  { return f.controller }
func (f *fakeFactory) TradeMiningEnabled(common.Address) bool  { return f.tradeMining }
func (f *fakeFactory) FeeReceiver() common.Address             { return f.feeReceiver }
func (f *fakeFactory) FeeVaultForLP(common.Address) common.Address { return f.lpVault }

// sinkRecorder captures emitted events in order.
type sinkRecorder struct {
	events []Event
}

func (s *sinkRecorder) Emit(ev Event) { s.events = append(s.events, ev) }

func (s *sinkRecorder) last() Event {
	if len(s.events) == 0 {
		return nil
	}
	return s.events[len(s.events)-1]
}

// testEnv bundles a pair with its collaborators.
type testEnv struct {
	ledger     *token.Ledger
	token0     *token.ERC20
	token1     *token.ERC20
	shares     *token.Shares
	controller *fakeController
	factory    *fakeFactory
	sink       *sinkRecorder
	pair       *Pair
}

// quote300 is the canonical test quote: 1 token0 = 300 token1, no spread,
// no fee.
func quote300() OraclePrice {
	return OraclePrice{
		K:           big.NewInt(0),
		EthAmount:   big.NewInt(1),
		Erc20Amount: big.NewInt(300),
		BlockNum:    1,
		Theta:       big.NewInt(0),
	}
}

func newTestEnv(t *testing.T, price OraclePrice) *testEnv {
	t.Helper()

	ledger := token.NewLedger()
	env := &testEnv{
		ledger:     ledger,
		token0:     ledger.NewToken(testToken0Addr, "WETH"),
		token1:     ledger.NewToken(testToken1Addr, "USDT"),
		shares:     ledger.NewShares(testPairAddr),
		controller: &fakeController{price: price},
		sink:       &sinkRecorder{},
	}
	env.factory = &fakeFactory{
		controller:  env.controller,
		feeReceiver: testRewardsAddr,
		lpVault:     testVaultAddr,
	}
	env.pair = NewPair(testPairAddr, env.factory, ledger, env.shares, ledger, env.sink)
	if err := env.pair.Initialize(testFactoryAddr, env.token0, env.token1, "Oracle Pool Share", "OPS"); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	env.token0.Fund(testAlice, e18(1000))
	env.token1.Fund(testAlice, e18(1000_000))
	return env
}

// deposit moves tokens from alice into the pair ahead of a call.
func (env *testEnv) deposit(t *testing.T, tok *token.ERC20, amount *big.Int) {
	t.Helper()
	ok, err := tok.Transfer(testAlice, testPairAddr, amount)
	if err != nil || !ok {
		t.Fatalf("deposit: ok=%v err=%v", ok, err)
	}
}

// mintInitial performs the canonical first mint: 1e18 token0, 3e20 token1.
func (env *testEnv) mintInitial(t *testing.T) *big.Int {
	t.Helper()
	env.deposit(t, env.token0, e18(1))
	env.deposit(t, env.token1, e18(300))
	liquidity, _, err := env.pair.Mint(testAlice, testAlice, nil)
	if err != nil {
		t.Fatalf("first mint: %v", err)
	}
	return liquidity
}

// requireReservesMatchBalances asserts the core reconciliation invariant.
func (env *testEnv) requireReservesMatchBalances(t *testing.T) {
	t.Helper()
	r0, r1 := env.pair.GetReserves()
	if b0 := env.token0.BalanceOf(testPairAddr); r0.Cmp(b0) != 0 {
		t.Fatalf("reserve0 %s != balance0 %s", r0, b0)
	}
	if b1 := env.token1.BalanceOf(testPairAddr); r1.Cmp(b1) != 0 {
		t.Fatalf("reserve1 %s != balance1 %s", r1, b1)
	}
}

var errBoom = errors.New("boom")
