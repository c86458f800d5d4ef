// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package token provides the deterministic in-memory asset store backing the
// pool core: a native-currency bank, ERC20-style token views with checked
// transfers, the fungible share token, and snapshot/revert journaling. The
// journal is what gives a mutating pool call its all-or-nothing property: the
// pair snapshots on entry and reverts on any failure, discarding partial
// transfers.
package token

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

var (
	ErrInsufficientNative = errors.New("insufficient native balance")
	ErrNegativeAmount     = errors.New("negative amount")
)

// journalEntry records the previous value of one mutated cell so a revert
// can restore it.
type journalEntry struct {
	kind   journalKind
	token  common.Address // token or share token, unused for native
	holder common.Address
	prev   *big.Int     // token balance or supply
	prevU  *uint256.Int // native balance
}

type journalKind uint8

const (
	journalNative journalKind = iota
	journalBalance
	journalSupply
)

// Ledger holds native balances, token balances and share supplies for one
// simulated environment. All views handed out by NewToken and NewShares
// write through the same journal.
type Ledger struct {
	mu       sync.RWMutex
	native   map[common.Address]*uint256.Int
	balances map[common.Address]map[common.Address]*big.Int
	supplies map[common.Address]*big.Int
	failing  map[common.Address]bool

	journal []journalEntry
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		native:   make(map[common.Address]*uint256.Int),
		balances: make(map[common.Address]map[common.Address]*big.Int),
		supplies: make(map[common.Address]*big.Int),
		failing:  make(map[common.Address]bool),
	}
}

// Snapshot marks the current journal position.
func (l *Ledger) Snapshot() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.journal)
}

// RevertToSnapshot undoes every mutation journaled after the snapshot, most
// recent first.
func (l *Ledger) RevertToSnapshot(id int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if id < 0 || id > len(l.journal) {
		return
	}
	for i := len(l.journal) - 1; i >= id; i-- {
		e := l.journal[i]
		switch e.kind {
		case journalNative:
			l.native[e.holder] = e.prevU
		case journalBalance:
			l.balances[e.token][e.holder] = e.prev
		case journalSupply:
			l.supplies[e.token] = e.prev
		}
	}
	l.journal = l.journal[:id]
}

// Balance returns addr's native balance.
func (l *Ledger) Balance(addr common.Address) *uint256.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if b, ok := l.native[addr]; ok {
		return b.Clone()
	}
	return uint256.NewInt(0)
}

// Transfer moves native value, failing on insufficient balance.
func (l *Ledger) Transfer(from, to common.Address, amount *uint256.Int) error {
	if amount == nil || amount.IsZero() {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	fromBal := l.native[from]
	if fromBal == nil || fromBal.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s", ErrInsufficientNative, from.Hex())
	}
	l.journalNativeLocked(from)
	l.journalNativeLocked(to)
	l.native[from] = new(uint256.Int).Sub(fromBal, amount)
	toBal := l.native[to]
	if toBal == nil {
		toBal = uint256.NewInt(0)
	}
	l.native[to] = new(uint256.Int).Add(toBal, amount)
	return nil
}

// Deposit credits native value out of thin air. Setup only.
func (l *Ledger) Deposit(addr common.Address, amount *uint256.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.journalNativeLocked(addr)
	bal := l.native[addr]
	if bal == nil {
		bal = uint256.NewInt(0)
	}
	l.native[addr] = new(uint256.Int).Add(bal, amount)
}

// SetFailing forces every transfer of the given token to report failure,
// modelling a broken or malicious transfer primitive.
func (l *Ledger) SetFailing(token common.Address, failing bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failing[token] = failing
}

func (l *Ledger) journalNativeLocked(addr common.Address) {
	prev := l.native[addr]
	if prev != nil {
		prev = prev.Clone()
	}
	l.journal = append(l.journal, journalEntry{kind: journalNative, holder: addr, prevU: prev})
}

func (l *Ledger) journalBalanceLocked(token, holder common.Address) {
	prev := l.balances[token][holder]
	if prev != nil {
		prev = new(big.Int).Set(prev)
	}
	l.journal = append(l.journal, journalEntry{kind: journalBalance, token: token, holder: holder, prev: prev})
}

func (l *Ledger) journalSupplyLocked(token common.Address) {
	prev := l.supplies[token]
	if prev != nil {
		prev = new(big.Int).Set(prev)
	}
	l.journal = append(l.journal, journalEntry{kind: journalSupply, token: token, prev: prev})
}

// balanceOf reads a token balance without copying. Callers copy.
func (l *Ledger) balanceOf(token, holder common.Address) *big.Int {
	if holders, ok := l.balances[token]; ok {
		if b, ok := holders[holder]; ok {
			return b
		}
	}
	return nil
}

// move transfers a token balance, reporting (false, nil) on insufficient
// funds and an error when the token is marked failing.
func (l *Ledger) move(token, from, to common.Address, amount *big.Int) (bool, error) {
	if amount.Sign() < 0 {
		return false, ErrNegativeAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.failing[token] {
		return false, fmt.Errorf("token %s: transfer disabled", token.Hex())
	}
	if amount.Sign() == 0 {
		return true, nil
	}
	fromBal := l.balanceOf(token, from)
	if fromBal == nil || fromBal.Cmp(amount) < 0 {
		return false, nil
	}
	if l.balances[token] == nil {
		l.balances[token] = make(map[common.Address]*big.Int)
	}
	l.journalBalanceLocked(token, from)
	l.journalBalanceLocked(token, to)
	l.balances[token][from] = new(big.Int).Sub(fromBal, amount)
	toBal := l.balanceOf(token, to)
	if toBal == nil {
		toBal = new(big.Int)
	}
	l.balances[token][to] = new(big.Int).Add(toBal, amount)
	return true, nil
}

// credit adds token balance out of thin air.
func (l *Ledger) credit(token, holder common.Address, amount *big.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.balances[token] == nil {
		l.balances[token] = make(map[common.Address]*big.Int)
	}
	l.journalBalanceLocked(token, holder)
	bal := l.balanceOf(token, holder)
	if bal == nil {
		bal = new(big.Int)
	}
	l.balances[token][holder] = new(big.Int).Add(bal, amount)
}

// debit removes token balance, failing if holder cannot cover it.
func (l *Ledger) debit(token, holder common.Address, amount *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	bal := l.balanceOf(token, holder)
	if bal == nil || bal.Cmp(amount) < 0 {
		return fmt.Errorf("token %s: burn exceeds balance of %s", token.Hex(), holder.Hex())
	}
	l.journalBalanceLocked(token, holder)
	l.balances[token][holder] = new(big.Int).Sub(bal, amount)
	return nil
}
