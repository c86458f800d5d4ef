// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package oracle provides price controller implementations for the pool
// core. The core trusts whatever tuple a controller returns for a single
// call; validating quote bounds and freshness is the controller's job, which
// is why the bounds checks live here and not in the pair.
package oracle

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/luxfi/oraclepool/pool"
)

var (
	ErrNoQuote  = errors.New("no quote for token")
	ErrBadQuote = errors.New("quote out of bounds")
	ErrShortFee = errors.New("attached value below oracle fee")
)

// Static serves pre-set quotes per token and charges a flat native fee out
// of the payer's balance on every query. Deterministic, for simulations and
// tests.
type Static struct {
	mu     sync.RWMutex
	addr   common.Address
	fee    *uint256.Int
	quotes map[common.Address]pool.OraclePrice
}

// NewStatic returns a controller accruing its fees at addr. fee may be nil
// for a free oracle.
func NewStatic(addr common.Address, fee *uint256.Int) *Static {
	if fee == nil {
		fee = uint256.NewInt(0)
	}
	return &Static{
		addr:   addr,
		fee:    fee.Clone(),
		quotes: make(map[common.Address]pool.OraclePrice),
	}
}

// SetQuote installs the quote served for token. The quote is bounds-checked
// here, at install time, so a bad tuple never reaches a pair.
func (s *Static) SetQuote(token common.Address, price pool.OraclePrice) error {
	if err := checkQuote(price); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes[token] = price
	return nil
}

// QueryOracle implements pool.Controller: pulls the flat fee from the payer
// and returns the installed quote.
func (s *Static) QueryOracle(bank pool.Bank, payer common.Address, token common.Address, op pool.OracleOp, payload []byte) (pool.OraclePrice, error) {
	s.mu.RLock()
	price, ok := s.quotes[token]
	fee := s.fee.Clone()
	s.mu.RUnlock()

	if !ok {
		return pool.OraclePrice{}, fmt.Errorf("%w: %s", ErrNoQuote, token.Hex())
	}
	if !fee.IsZero() {
		if bank.Balance(payer).Cmp(fee) < 0 {
			return pool.OraclePrice{}, ErrShortFee
		}
		if err := bank.Transfer(payer, s.addr, fee); err != nil {
			return pool.OraclePrice{}, fmt.Errorf("charge oracle fee: %w", err)
		}
	}
	return price, nil
}

func checkQuote(price pool.OraclePrice) error {
	if price.EthAmount == nil || price.EthAmount.Sign() <= 0 ||
		price.Erc20Amount == nil || price.Erc20Amount.Sign() <= 0 {
		return fmt.Errorf("%w: non-positive exchange rate", ErrBadQuote)
	}
	if price.K == nil || price.K.Sign() < 0 || price.K.Cmp(pool.KBase) >= 0 {
		return fmt.Errorf("%w: K outside [0, KBase)", ErrBadQuote)
	}
	if price.Theta == nil || price.Theta.Sign() < 0 || price.Theta.Cmp(pool.ThetaBase) >= 0 {
		return fmt.Errorf("%w: theta outside [0, ThetaBase)", ErrBadQuote)
	}
	return nil
}

// Quote builds an OraclePrice from uint64 legs, a convenience for scenario
// code.
func Quote(k, ethAmount, erc20Amount, blockNum, theta uint64) pool.OraclePrice {
	return pool.OraclePrice{
		K:           new(big.Int).SetUint64(k),
		EthAmount:   new(big.Int).SetUint64(ethAmount),
		Erc20Amount: new(big.Int).SetUint64(erc20Amount),
		BlockNum:    blockNum,
		Theta:       new(big.Int).SetUint64(theta),
	}
}
