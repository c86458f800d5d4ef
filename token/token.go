// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package token

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// ERC20 is a ledger view behaving like a minimal fungible token: balances,
// checked transfers, and a funding helper for scenario setup. It satisfies
// the pool's Token interface.
type ERC20 struct {
	ledger *Ledger
	addr   common.Address
	symbol string
}

// NewToken hands out a token view at the given address.
func (l *Ledger) NewToken(addr common.Address, symbol string) *ERC20 {
	return &ERC20{ledger: l, addr: addr, symbol: symbol}
}

// Address returns the token's identity.
func (t *ERC20) Address() common.Address { return t.addr }

// Symbol returns the display symbol.
func (t *ERC20) Symbol() string { return t.symbol }

// BalanceOf returns holder's balance.
func (t *ERC20) BalanceOf(holder common.Address) *big.Int {
	t.ledger.mu.RLock()
	defer t.ledger.mu.RUnlock()
	if b := t.ledger.balanceOf(t.addr, holder); b != nil {
		return new(big.Int).Set(b)
	}
	return new(big.Int)
}

// Transfer moves amount from from to to. Insufficient balance reports
// (false, nil); a token marked failing reports an error.
func (t *ERC20) Transfer(from, to common.Address, amount *big.Int) (bool, error) {
	return t.ledger.move(t.addr, from, to, amount)
}

// Fund credits holder with amount. Setup only.
func (t *ERC20) Fund(holder common.Address, amount *big.Int) {
	t.ledger.credit(t.addr, holder, amount)
}

// Shares is the fungible share token of one pair: a ledger-backed balance
// map plus a tracked total supply, mint/burn restricted to whoever holds the
// view. It satisfies the pool's ShareToken interface.
type Shares struct {
	ledger *Ledger
	addr   common.Address

	mu sync.Mutex
}

// NewShares hands out a share token view at the given address.
func (l *Ledger) NewShares(addr common.Address) *Shares {
	return &Shares{ledger: l, addr: addr}
}

// Address returns the share token's identity.
func (s *Shares) Address() common.Address { return s.addr }

// TotalSupply returns the outstanding share count.
func (s *Shares) TotalSupply() *big.Int {
	s.ledger.mu.RLock()
	defer s.ledger.mu.RUnlock()
	if supply, ok := s.ledger.supplies[s.addr]; ok {
		return new(big.Int).Set(supply)
	}
	return new(big.Int)
}

// BalanceOf returns holder's share balance.
func (s *Shares) BalanceOf(holder common.Address) *big.Int {
	s.ledger.mu.RLock()
	defer s.ledger.mu.RUnlock()
	if b := s.ledger.balanceOf(s.addr, holder); b != nil {
		return new(big.Int).Set(b)
	}
	return new(big.Int)
}

// Transfer moves shares between holders, e.g. into the pair ahead of a burn.
func (s *Shares) Transfer(from, to common.Address, amount *big.Int) (bool, error) {
	return s.ledger.move(s.addr, from, to, amount)
}

// Mint issues amount new shares to to.
func (s *Shares) Mint(to common.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return ErrNegativeAmount
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger.credit(s.addr, to, amount)
	s.addSupply(amount)
	return nil
}

// Burn destroys amount shares held by from.
func (s *Shares) Burn(from common.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return ErrNegativeAmount
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ledger.debit(s.addr, from, amount); err != nil {
		return err
	}
	s.addSupply(new(big.Int).Neg(amount))
	return nil
}

func (s *Shares) addSupply(delta *big.Int) {
	s.ledger.mu.Lock()
	defer s.ledger.mu.Unlock()
	s.ledger.journalSupplyLocked(s.addr)
	supply := s.ledger.supplies[s.addr]
	if supply == nil {
		supply = new(big.Int)
	}
	s.ledger.supplies[s.addr] = new(big.Int).Add(supply, delta)
}
