// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package registry_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/oraclepool/oracle"
	"github.com/luxfi/oraclepool/pool"
	"github.com/luxfi/oraclepool/registry"
	"github.com/luxfi/oraclepool/token"
)

var (
	factoryAddr = common.HexToAddress("0x4000000000000000000000000000000000000001")
	oracleAddr  = common.HexToAddress("0x4000000000000000000000000000000000000002")
	rewardsAddr = common.HexToAddress("0x4000000000000000000000000000000000000003")
	wethAddr    = common.HexToAddress("0x4000000000000000000000000000000000000011")
	usdtAddr    = common.HexToAddress("0x4000000000000000000000000000000000000012")
	alice       = common.HexToAddress("0x4000000000000000000000000000000000000021")
	bob         = common.HexToAddress("0x4000000000000000000000000000000000000022")
)

type fixture struct {
	ledger *token.Ledger
	weth   *token.ERC20
	usdt   *token.ERC20
	static *oracle.Static
	reg    *registry.Registry
}

func newFixture(t *testing.T, oracleFee uint64) *fixture {
	t.Helper()
	ledger := token.NewLedger()
	f := &fixture{
		ledger: ledger,
		weth:   ledger.NewToken(wethAddr, "WETH"),
		usdt:   ledger.NewToken(usdtAddr, "USDT"),
		static: oracle.NewStatic(oracleAddr, uint256.NewInt(oracleFee)),
	}
	require.NoError(t, f.static.SetQuote(usdtAddr, oracle.Quote(0, 1, 300, 1, 0)))
	f.reg = registry.New(registry.Config{
		Address:     factoryAddr,
		Controller:  f.static,
		Bank:        ledger,
		Journal:     ledger,
		FeeReceiver: rewardsAddr,
		NewShares:   func(addr common.Address) pool.ShareToken { return ledger.NewShares(addr) },
	})
	return f
}

func e18(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), pool.NAVPSBase)
}

func TestCreatePair(t *testing.T) {
	f := newFixture(t, 0)

	p, err := f.reg.CreatePair(f.weth, f.usdt, "WETH/USDT Share", "XWU")
	require.NoError(t, err)
	assert.Equal(t, registry.PairAddress(registry.PairID(wethAddr, usdtAddr)), p.Address())
	assert.Equal(t, wethAddr, p.Token0())
	assert.Equal(t, usdtAddr, p.Token1())
	assert.Equal(t, "WETH/USDT Share", p.Name())

	got, ok := f.reg.GetPair(wethAddr, usdtAddr)
	require.True(t, ok)
	assert.Same(t, p, got)
	assert.Len(t, f.reg.Pairs(), 1)
}

func TestCreatePairIdenticalTokens(t *testing.T) {
	f := newFixture(t, 0)
	_, err := f.reg.CreatePair(f.weth, f.weth, "x", "X")
	require.ErrorIs(t, err, registry.ErrIdenticalToken)
}

func TestCreatePairDuplicate(t *testing.T) {
	f := newFixture(t, 0)
	_, err := f.reg.CreatePair(f.weth, f.usdt, "x", "X")
	require.NoError(t, err)
	_, err = f.reg.CreatePair(f.weth, f.usdt, "y", "Y")
	require.ErrorIs(t, err, registry.ErrPairExists)
}

func TestPairIDOrderIsSemantic(t *testing.T) {
	// Base/counter ordering is part of the identity: the reversed pair is a
	// different pool.
	forward := registry.PairID(wethAddr, usdtAddr)
	reverse := registry.PairID(usdtAddr, wethAddr)
	assert.NotEqual(t, forward, reverse)
	assert.Equal(t, forward, registry.PairID(wethAddr, usdtAddr))
}

func TestPolicySetters(t *testing.T) {
	f := newFixture(t, 0)
	vault := common.HexToAddress("0x4000000000000000000000000000000000000031")

	assert.False(t, f.reg.TradeMiningEnabled(usdtAddr))
	f.reg.SetTradeMiningStatus(usdtAddr, true)
	assert.True(t, f.reg.TradeMiningEnabled(usdtAddr))

	f.reg.SetFeeVaultForLP(usdtAddr, vault)
	assert.Equal(t, vault, f.reg.FeeVaultForLP(usdtAddr))

	f.reg.SetFeeReceiver(bob)
	assert.Equal(t, bob, f.reg.FeeReceiver())
}

// TestEndToEnd drives one pair through its whole life against the real
// ledger and static oracle: bootstrap mint, exact-in swap, exact-out swap
// with refund, redemption.
func TestEndToEnd(t *testing.T) {
	f := newFixture(t, 2)
	f.ledger.Deposit(alice, uint256.NewInt(100))
	f.weth.Fund(alice, e18(10))
	f.usdt.Fund(alice, e18(3000))

	p, err := f.reg.CreatePair(f.weth, f.usdt, "WETH/USDT Share", "XWU")
	require.NoError(t, err)
	pairAddr := p.Address()
	shares := f.ledger.NewShares(pairAddr)

	// Bootstrap mint: 1 WETH + 300 USDT at rate 300 -> 2e18 shares, minimum
	// liquidity withheld. Attach 5 native against the flat fee of 2.
	mustTransfer(t, f.weth, alice, pairAddr, e18(1))
	mustTransfer(t, f.usdt, alice, pairAddr, e18(300))
	liquidity, refund, err := p.Mint(alice, alice, uint256.NewInt(5))
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).Sub(e18(2), pool.MinimumLiquidity), liquidity)
	assert.Equal(t, uint256.NewInt(3), refund)
	assert.Equal(t, uint256.NewInt(95), f.ledger.Balance(alice))

	// Exact-in: 0.1 WETH buys 30 USDT.
	mustTransfer(t, f.weth, alice, pairAddr, bigInt("100000000000000000"))
	_, amountOut, _, _, err := p.SwapWithExact(alice, usdtAddr, alice, uint256.NewInt(5))
	require.NoError(t, err)
	assert.Equal(t, e18(30), amountOut)

	// Exact-out: 0.05 WETH costs 15 USDT; the 1.5 USDT over-tender comes
	// back to the recipient.
	mustTransfer(t, f.usdt, alice, pairAddr, bigInt("16500000000000000000"))
	amountIn, amountOut, _, _, err := p.SwapForExact(alice, wethAddr, bigInt("50000000000000000"), bob, uint256.NewInt(5))
	require.NoError(t, err)
	assert.Equal(t, e18(15), amountIn)
	assert.Equal(t, bigInt("50000000000000000"), amountOut)
	assert.Equal(t, bigInt("1500000000000000000"), f.usdt.BalanceOf(bob))

	// With zero K and zero theta nothing leaks, so navps is still exactly
	// base and shares redeem one-for-one into WETH.
	mustTransferShares(t, shares, alice, pairAddr, bigInt("500000000000000000"))
	out, _, err := p.Burn(alice, wethAddr, alice, uint256.NewInt(5))
	require.NoError(t, err)
	assert.Equal(t, bigInt("500000000000000000"), out)

	r0, r1 := p.GetReserves()
	assert.Equal(t, f.weth.BalanceOf(pairAddr), r0)
	assert.Equal(t, f.usdt.BalanceOf(pairAddr), r1)

	// Four oracle calls at 2 native each, the rest refunded.
	assert.Equal(t, uint256.NewInt(92), f.ledger.Balance(alice))
	assert.Equal(t, uint256.NewInt(8), f.ledger.Balance(oracleAddr))
}

func mustTransfer(t *testing.T, tok *token.ERC20, from, to common.Address, amount *big.Int) {
	t.Helper()
	ok, err := tok.Transfer(from, to, amount)
	require.NoError(t, err)
	require.True(t, ok)
}

func mustTransferShares(t *testing.T, shares *token.Shares, from, to common.Address, amount *big.Int) {
	t.Helper()
	ok, err := shares.Transfer(from, to, amount)
	require.NoError(t, err)
	require.True(t, ok)
}

func bigInt(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("bad bigInt literal: " + s)
	}
	return n
}
