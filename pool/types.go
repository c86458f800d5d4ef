// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package pool implements the accounting and settlement core of a two-asset
// liquidity pool priced by an external oracle rather than by an internal
// curve. A pair tracks reserves of a base asset (token0) and a counter asset
// (token1), mints and burns a proportional share token against a
// net-asset-value-per-share computed from oracle quotes, and settles swaps
// priced by the quoted exchange rate, spread (K) and fee rate (theta).
//
// All valuation math is integer-only fixed point on math/big: every
// multiplication happens before any division and every division floors.
// Reserves are bounded to 112 bits; exceeding the bound aborts the call.
package pool

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Fixed-point bases and pool-wide constants.
var (
	// NAVPSBase scales net asset value per share; one share bootstraps at
	// exactly one unit of token0.
	NAVPSBase = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

	// KBase scales the oracle spread parameter K (parts per 1e8).
	KBase = big.NewInt(100_000_000)

	// ThetaBase scales the trading fee rate theta (parts per 1e8).
	ThetaBase = big.NewInt(100_000_000)

	// MinimumLiquidity is withheld from the first mint and assigned to
	// BurnAddress forever, so the share supply can never return to the
	// division-by-near-zero regime.
	MinimumLiquidity = big.NewInt(1_000_000_000)

	// MaxReserve is the largest value either reserve may hold (2^112 - 1).
	MaxReserve = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 112), big.NewInt(1))
)

// BurnAddress receives the permanently unredeemable minimum liquidity.
var BurnAddress = common.HexToAddress("0x000000000000000000000000000000000000dEaD")

var zeroAddress common.Address

// OracleOp identifies the pair operation a price quote is requested for.
// Controllers may price operations differently or meter fees per operation.
type OracleOp uint8

const (
	OpMint OracleOp = iota + 1
	OpBurn
	OpSwapWithExact
	OpSwapForExact
)

// OraclePrice is a single-call price quote for token1 in terms of token0.
// Erc20Amount/EthAmount is the exchange rate; K widens it asymmetrically for
// mint versus burn; Theta is the per-trade fee rate. The pair trusts the
// tuple for exactly one call.
type OraclePrice struct {
	K           *big.Int // spread parameter, parts per KBase
	EthAmount   *big.Int // token0 leg of the exchange rate
	Erc20Amount *big.Int // token1 leg of the exchange rate
	BlockNum    uint64   // block the quote was formed at
	Theta       *big.Int // fee rate, parts per ThetaBase
}

// Token is the pair's view of a transferable asset. Transfer returns the
// primitive's own success flag; callers must treat a false return and a
// non-nil error identically.
type Token interface {
	Address() common.Address
	BalanceOf(addr common.Address) *big.Int
	Transfer(from, to common.Address, amount *big.Int) (bool, error)
}

// ShareToken is the external fungible ledger holding the pool's ownership
// units. The pair only ever mints to recipients and burns shares held at its
// own address.
type ShareToken interface {
	TotalSupply() *big.Int
	BalanceOf(addr common.Address) *big.Int
	Mint(to common.Address, amount *big.Int) error
	Burn(from common.Address, amount *big.Int) error
}

// Bank is the native-currency ledger used for oracle fee payments.
type Bank interface {
	Balance(addr common.Address) *uint256.Int
	Transfer(from, to common.Address, amount *uint256.Int) error
}

// Controller produces oracle price quotes. It may retain part of the native
// value held by payer as its fee; the pair measures what was retained as a
// balance delta around the call.
type Controller interface {
	QueryOracle(bank Bank, payer common.Address, token common.Address, op OracleOp, payload []byte) (OraclePrice, error)
}

// Factory is the registry collaborator that deployed the pair and holds
// global policy: the active oracle controller, the trade-mining flag per
// counter asset, and the fee destinations.
type Factory interface {
	Address() common.Address
	Controller() Controller
	TradeMiningEnabled(token common.Address) bool
	FeeReceiver() common.Address
	FeeVaultForLP(token common.Address) common.Address
}

// Journal is the host-environment facility the pair uses to make every
// mutating call all-or-nothing: a snapshot is taken on entry and reverted if
// the call fails after partial transfers.
type Journal interface {
	Snapshot() int
	RevertToSnapshot(id int)
}

// Errors. Every failure aborts the whole operation with no partial effects.
var (
	ErrLocked               = errors.New("pair locked: reentrant call")
	ErrForbidden            = errors.New("forbidden")
	ErrOverflow             = errors.New("reserve overflows 112 bits")
	ErrTransferFailed       = errors.New("transfer failed")
	ErrShortLiquidityMinted = errors.New("insufficient liquidity minted")
	ErrShortLiquidityBurned = errors.New("insufficient liquidity burned")
	ErrWrongOutToken        = errors.New("out token is neither pair asset")
	ErrWrongAmountIn        = errors.New("amount in not positive")
	ErrWrongAmountInNeeded  = errors.New("amount in needed not positive")
	ErrInsufficientAmountIn = errors.New("amount in below needed")
	ErrInvalidTo            = errors.New("recipient is a pair asset")
	ErrInvalidPrice         = errors.New("invalid oracle price")
)
