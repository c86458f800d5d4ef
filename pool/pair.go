// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

var errNotInitialized = errors.New("pair not initialized")

// Pair is one oracle-priced two-asset pool. It owns the reserve bookkeeping
// and the mint/burn/swap settlement; share balances, token balances, policy
// flags and price quotes all live with external collaborators reached through
// the interfaces in types.go.
//
// Every mutating entry point runs under the reentrancy guard and inside a
// journal snapshot, so a call either completes with all effects retained or
// aborts with all effects discarded, partial transfers included. Within a
// call the order is fixed: read balances, query the oracle, compute, transfer
// optimistically, distribute the fee, re-read balances, write reserves,
// refund the unspent oracle fee, emit the event.
type Pair struct {
	addr    common.Address
	factory Factory
	bank    Bank
	shares  ShareToken
	journal Journal
	sink    EventSink

	guard reentrancyGuard

	name        string
	symbol      string
	token0      Token // base asset
	token1      Token // counter asset
	initialized bool

	reserve0 *uint256.Int
	reserve1 *uint256.Int
}

// NewPair wires a pair to its collaborators. journal and sink may be nil.
// Token identities are fixed later by Initialize, which only the factory may
// call.
func NewPair(addr common.Address, factory Factory, bank Bank, shares ShareToken, journal Journal, sink EventSink) *Pair {
	if journal == nil {
		journal = nopJournal{}
	}
	if sink == nil {
		sink = NopSink{}
	}
	return &Pair{
		addr:     addr,
		factory:  factory,
		bank:     bank,
		shares:   shares,
		journal:  journal,
		sink:     sink,
		reserve0: uint256.NewInt(0),
		reserve1: uint256.NewInt(0),
	}
}

// Address returns the pair's own account address.
func (p *Pair) Address() common.Address { return p.addr }

// Name returns the share token name set at initialization.
func (p *Pair) Name() string { return p.name }

// Symbol returns the share token symbol set at initialization.
func (p *Pair) Symbol() string { return p.symbol }

// Token0 returns the base asset address.
func (p *Pair) Token0() common.Address { return p.token0.Address() }

// Token1 returns the counter asset address.
func (p *Pair) Token1() common.Address { return p.token1.Address() }

// Initialize fixes the pair's token identities and share token metadata.
// Only the factory may call it, exactly once.
func (p *Pair) Initialize(caller common.Address, token0, token1 Token, name, symbol string) error {
	release, err := p.guard.acquire()
	if err != nil {
		return err
	}
	defer release()

	if caller != p.factory.Address() {
		return ErrForbidden
	}
	if p.initialized {
		return fmt.Errorf("%w: already initialized", ErrForbidden)
	}
	p.token0 = token0
	p.token1 = token1
	p.name = name
	p.symbol = symbol
	p.initialized = true
	return nil
}

// GetReserves returns the tracked reserves of both assets.
func (p *Pair) GetReserves() (reserve0, reserve1 *big.Int) {
	return p.reserve0.ToBig(), p.reserve1.ToBig()
}

// GetNAVPerShare returns the neutral net asset value per share for a
// caller-supplied quote.
func (p *Pair) GetNAVPerShare(price OraclePrice) (*big.Int, error) {
	r0, r1 := p.GetReserves()
	return CalcNAVPerShare(r0, r1, p.shares.TotalSupply(), price)
}

// GetNAVPerShareForMint returns the mint-adjusted net asset value per share.
func (p *Pair) GetNAVPerShareForMint(price OraclePrice) (*big.Int, error) {
	r0, r1 := p.GetReserves()
	return CalcNAVPerShareForMint(r0, r1, p.shares.TotalSupply(), price)
}

// GetNAVPerShareForBurn returns the burn-adjusted net asset value per share.
func (p *Pair) GetNAVPerShareForBurn(price OraclePrice) (*big.Int, error) {
	r0, r1 := p.GetReserves()
	return CalcNAVPerShareForBurn(r0, r1, p.shares.TotalSupply(), price)
}

// GetLiquidity estimates the shares a deposit would mint under the given
// quote, without touching state.
func (p *Pair) GetLiquidity(amount0, amount1 *big.Int, price OraclePrice) (*big.Int, error) {
	r0, r1 := p.GetReserves()
	navps, err := CalcNAVPerShareForMint(r0, r1, p.shares.TotalSupply(), price)
	if err != nil {
		return nil, err
	}
	return CalcLiquidity(amount0, amount1, navps, price)
}

// Mint settles a deposit already sitting in the pair's token balances into
// newly issued shares for to. The deposited amounts are the balance excess
// over the tracked reserves. The first mint ever withholds MinimumLiquidity
// and assigns it to BurnAddress forever.
func (p *Pair) Mint(caller, to common.Address, oracleFee *uint256.Int) (liquidity *big.Int, feeRefund *uint256.Int, err error) {
	release, err := p.guard.acquire()
	if err != nil {
		return nil, nil, err
	}
	defer release()
	if !p.initialized {
		return nil, nil, errNotInitialized
	}

	snap := p.journal.Snapshot()
	defer func() {
		if err != nil {
			p.journal.RevertToSnapshot(snap)
		}
	}()

	if err = p.collectOracleFee(caller, oracleFee); err != nil {
		return nil, nil, err
	}

	reserve0, reserve1 := p.GetReserves()
	amount0 := new(big.Int).Sub(p.token0.BalanceOf(p.addr), reserve0)
	amount1 := new(big.Int).Sub(p.token1.BalanceOf(p.addr), reserve1)

	price, unspent, err := p.queryOracle(OpMint, caller, oracleFee)
	if err != nil {
		return nil, nil, err
	}

	totalShares := p.shares.TotalSupply()
	navps, err := CalcNAVPerShareForMint(reserve0, reserve1, totalShares, price)
	if err != nil {
		return nil, nil, err
	}
	liquidity, err = CalcLiquidity(amount0, amount1, navps, price)
	if err != nil {
		return nil, nil, err
	}

	if totalShares.Sign() == 0 {
		liquidity.Sub(liquidity, MinimumLiquidity)
		if err = p.shares.Mint(BurnAddress, MinimumLiquidity); err != nil {
			return nil, nil, fmt.Errorf("mint minimum liquidity: %w", err)
		}
	}
	if liquidity.Sign() <= 0 {
		return nil, nil, ErrShortLiquidityMinted
	}
	if err = p.shares.Mint(to, liquidity); err != nil {
		return nil, nil, fmt.Errorf("mint shares: %w", err)
	}

	if err = p.reconcile(); err != nil {
		return nil, nil, err
	}
	if err = p.refundOracleFee(caller, unspent); err != nil {
		return nil, nil, err
	}
	p.sink.Emit(MintEvent{Sender: caller, Amount0: amount0, Amount1: amount1})
	return liquidity, unspent, nil
}

// Burn redeems the pair-held share balance into outToken for to, routing the
// theta fee through the fee distributor. The caller transfers shares to the
// pair beforehand; whatever sits there is the amount redeemed.
func (p *Pair) Burn(caller common.Address, outToken, to common.Address, oracleFee *uint256.Int) (amountOut *big.Int, feeRefund *uint256.Int, err error) {
	release, err := p.guard.acquire()
	if err != nil {
		return nil, nil, err
	}
	defer release()
	if !p.initialized {
		return nil, nil, errNotInitialized
	}

	outTok, err := p.pickToken(outToken)
	if err != nil {
		return nil, nil, err
	}

	snap := p.journal.Snapshot()
	defer func() {
		if err != nil {
			p.journal.RevertToSnapshot(snap)
		}
	}()

	if err = p.collectOracleFee(caller, oracleFee); err != nil {
		return nil, nil, err
	}

	liquidity := p.shares.BalanceOf(p.addr)
	reserve0, reserve1 := p.GetReserves()

	price, unspent, err := p.queryOracle(OpBurn, caller, oracleFee)
	if err != nil {
		return nil, nil, err
	}

	navps, err := CalcNAVPerShareForBurn(reserve0, reserve1, p.shares.TotalSupply(), price)
	if err != nil {
		return nil, nil, err
	}

	var fee *big.Int
	if outToken == p.token0.Address() {
		amountOut, fee, err = CalcOutToken0ForBurn(liquidity, navps, price)
	} else {
		amountOut, fee, err = CalcOutToken1ForBurn(liquidity, navps, price)
	}
	if err != nil {
		return nil, nil, err
	}
	if amountOut.Sign() <= 0 {
		return nil, nil, ErrShortLiquidityBurned
	}

	if err = p.shares.Burn(p.addr, liquidity); err != nil {
		return nil, nil, fmt.Errorf("burn shares: %w", err)
	}
	if err = p.safeTransfer(outTok, to, amountOut); err != nil {
		return nil, nil, err
	}
	if err = p.distributeFee(fee); err != nil {
		return nil, nil, err
	}

	if err = p.reconcile(); err != nil {
		return nil, nil, err
	}
	if err = p.refundOracleFee(caller, unspent); err != nil {
		return nil, nil, err
	}
	p.sink.Emit(BurnEvent{Sender: caller, OutToken: outToken, OutAmount: amountOut, To: to})
	return amountOut, unspent, nil
}

// SwapWithExact settles an exact-input swap: the caller has already deposited
// the input asset into the pair's balance, and the input amount is inferred
// as the balance excess over the tracked reserve of the opposite asset.
// tradeInfo reports {fee, balance0 at pricing, balance1 at pricing, neutral
// navps} for the external routing layer.
func (p *Pair) SwapWithExact(caller common.Address, outToken, to common.Address, oracleFee *uint256.Int) (amountIn, amountOut *big.Int, feeRefund *uint256.Int, tradeInfo [4]*big.Int, err error) {
	release, err := p.guard.acquire()
	if err != nil {
		return nil, nil, nil, tradeInfo, err
	}
	defer release()
	if !p.initialized {
		return nil, nil, nil, tradeInfo, errNotInitialized
	}

	outTok, err := p.pickToken(outToken)
	if err != nil {
		return nil, nil, nil, tradeInfo, err
	}

	snap := p.journal.Snapshot()
	defer func() {
		if err != nil {
			p.journal.RevertToSnapshot(snap)
		}
	}()

	if err = p.collectOracleFee(caller, oracleFee); err != nil {
		return nil, nil, nil, tradeInfo, err
	}

	reserve0, reserve1 := p.GetReserves()
	balance0 := p.token0.BalanceOf(p.addr)
	balance1 := p.token1.BalanceOf(p.addr)

	if outToken == p.token0.Address() {
		amountIn = new(big.Int).Sub(balance1, reserve1)
	} else {
		amountIn = new(big.Int).Sub(balance0, reserve0)
	}
	if amountIn.Sign() <= 0 {
		return nil, nil, nil, tradeInfo, ErrWrongAmountIn
	}

	price, unspent, err := p.queryOracle(OpSwapWithExact, caller, oracleFee)
	if err != nil {
		return nil, nil, nil, tradeInfo, err
	}

	navps, err := CalcNAVPerShare(reserve0, reserve1, p.shares.TotalSupply(), price)
	if err != nil {
		return nil, nil, nil, tradeInfo, err
	}

	var fee *big.Int
	if outToken == p.token0.Address() {
		amountOut, fee, err = CalcOutToken0(amountIn, price)
	} else {
		amountOut, fee, err = CalcOutToken1(amountIn, price)
	}
	if err != nil {
		return nil, nil, nil, tradeInfo, err
	}

	if to == p.token0.Address() || to == p.token1.Address() {
		return nil, nil, nil, tradeInfo, ErrInvalidTo
	}

	if err = p.safeTransfer(outTok, to, amountOut); err != nil {
		return nil, nil, nil, tradeInfo, err
	}
	if err = p.distributeFee(fee); err != nil {
		return nil, nil, nil, tradeInfo, err
	}

	if err = p.reconcile(); err != nil {
		return nil, nil, nil, tradeInfo, err
	}
	if err = p.refundOracleFee(caller, unspent); err != nil {
		return nil, nil, nil, tradeInfo, err
	}
	p.sink.Emit(SwapEvent{Sender: caller, AmountIn: amountIn, AmountOut: amountOut, OutToken: outToken, To: to})
	tradeInfo = [4]*big.Int{fee, balance0, balance1, navps}
	return amountIn, amountOut, unspent, tradeInfo, nil
}

// SwapForExact settles an exact-output swap. The tendered input may exceed
// what the inverse quote requires; the excess is refunded to to in the input
// asset before the output transfer. The consumed input is reported as
// amountIn, and the fee derives from it rather than from the tendered amount.
func (p *Pair) SwapForExact(caller common.Address, outToken common.Address, amountOutExact *big.Int, to common.Address, oracleFee *uint256.Int) (amountIn, amountOut *big.Int, feeRefund *uint256.Int, tradeInfo [4]*big.Int, err error) {
	release, err := p.guard.acquire()
	if err != nil {
		return nil, nil, nil, tradeInfo, err
	}
	defer release()
	if !p.initialized {
		return nil, nil, nil, tradeInfo, errNotInitialized
	}

	outTok, err := p.pickToken(outToken)
	if err != nil {
		return nil, nil, nil, tradeInfo, err
	}

	snap := p.journal.Snapshot()
	defer func() {
		if err != nil {
			p.journal.RevertToSnapshot(snap)
		}
	}()

	if err = p.collectOracleFee(caller, oracleFee); err != nil {
		return nil, nil, nil, tradeInfo, err
	}

	reserve0, reserve1 := p.GetReserves()
	balance0 := p.token0.BalanceOf(p.addr)
	balance1 := p.token1.BalanceOf(p.addr)

	var inTok Token
	var tendered *big.Int
	if outToken == p.token0.Address() {
		inTok = p.token1
		tendered = new(big.Int).Sub(balance1, reserve1)
	} else {
		inTok = p.token0
		tendered = new(big.Int).Sub(balance0, reserve0)
	}
	if tendered.Sign() <= 0 {
		return nil, nil, nil, tradeInfo, ErrWrongAmountIn
	}

	price, unspent, err := p.queryOracle(OpSwapForExact, caller, oracleFee)
	if err != nil {
		return nil, nil, nil, tradeInfo, err
	}

	navps, err := CalcNAVPerShare(reserve0, reserve1, p.shares.TotalSupply(), price)
	if err != nil {
		return nil, nil, nil, tradeInfo, err
	}

	var needed, fee *big.Int
	if outToken == p.token0.Address() {
		needed, fee, err = CalcInNeededToken1(amountOutExact, price)
	} else {
		needed, fee, err = CalcInNeededToken0(amountOutExact, price)
	}
	if err != nil {
		return nil, nil, nil, tradeInfo, err
	}
	if needed.Sign() <= 0 {
		return nil, nil, nil, tradeInfo, ErrWrongAmountInNeeded
	}
	if tendered.Cmp(needed) < 0 {
		return nil, nil, nil, tradeInfo, ErrInsufficientAmountIn
	}

	if to == p.token0.Address() || to == p.token1.Address() {
		return nil, nil, nil, tradeInfo, ErrInvalidTo
	}

	if excess := new(big.Int).Sub(tendered, needed); excess.Sign() > 0 {
		if err = p.safeTransfer(inTok, to, excess); err != nil {
			return nil, nil, nil, tradeInfo, err
		}
	}
	if err = p.safeTransfer(outTok, to, amountOutExact); err != nil {
		return nil, nil, nil, tradeInfo, err
	}
	if err = p.distributeFee(fee); err != nil {
		return nil, nil, nil, tradeInfo, err
	}

	if err = p.reconcile(); err != nil {
		return nil, nil, nil, tradeInfo, err
	}
	if err = p.refundOracleFee(caller, unspent); err != nil {
		return nil, nil, nil, tradeInfo, err
	}
	p.sink.Emit(SwapEvent{Sender: caller, AmountIn: needed, AmountOut: amountOutExact, OutToken: outToken, To: to})
	tradeInfo = [4]*big.Int{fee, balance0, balance1, navps}
	return needed, new(big.Int).Set(amountOutExact), unspent, tradeInfo, nil
}

// Skim forwards any balance in excess of the tracked reserves to to. It
// recovers tokens sent directly to the pair without going through mint or
// swap; reserves themselves do not move.
func (p *Pair) Skim(caller, to common.Address) (err error) {
	release, err := p.guard.acquire()
	if err != nil {
		return err
	}
	defer release()
	if !p.initialized {
		return errNotInitialized
	}

	snap := p.journal.Snapshot()
	defer func() {
		if err != nil {
			p.journal.RevertToSnapshot(snap)
		}
	}()

	reserve0, reserve1 := p.GetReserves()
	if excess := new(big.Int).Sub(p.token0.BalanceOf(p.addr), reserve0); excess.Sign() > 0 {
		if err = p.safeTransfer(p.token0, to, excess); err != nil {
			return err
		}
	}
	if excess := new(big.Int).Sub(p.token1.BalanceOf(p.addr), reserve1); excess.Sign() > 0 {
		if err = p.safeTransfer(p.token1, to, excess); err != nil {
			return err
		}
	}
	return nil
}

// Sync forces the reserves to match the externally observed balances without
// moving any assets.
func (p *Pair) Sync() error {
	release, err := p.guard.acquire()
	if err != nil {
		return err
	}
	defer release()
	if !p.initialized {
		return errNotInitialized
	}
	return p.reconcile()
}

// pickToken resolves an asset address to the pair token it names.
func (p *Pair) pickToken(addr common.Address) (Token, error) {
	switch addr {
	case p.token0.Address():
		return p.token0, nil
	case p.token1.Address():
		return p.token1, nil
	default:
		return nil, ErrWrongOutToken
	}
}

// safeTransfer moves amount of t from the pair to to, treating a false
// return and a transfer error identically.
func (p *Pair) safeTransfer(t Token, to common.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	ok, err := t.Transfer(p.addr, to, amount)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	if !ok {
		return ErrTransferFailed
	}
	return nil
}

// reconcile re-reads both token balances and writes them back as reserves.
// Always the last state-mutating step of a settling call.
func (p *Pair) reconcile() error {
	return p.update(p.token0.BalanceOf(p.addr), p.token1.BalanceOf(p.addr))
}

// update validates the 112-bit bound, stores the reserves and emits Sync.
func (p *Pair) update(balance0, balance1 *big.Int) error {
	if balance0.Sign() < 0 || balance1.Sign() < 0 ||
		balance0.Cmp(MaxReserve) > 0 || balance1.Cmp(MaxReserve) > 0 {
		return ErrOverflow
	}
	p.reserve0, _ = uint256.FromBig(balance0)
	p.reserve1, _ = uint256.FromBig(balance1)
	p.sink.Emit(SyncEvent{Reserve0: balance0, Reserve1: balance1})
	return nil
}
