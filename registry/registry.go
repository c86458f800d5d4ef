// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package registry implements the factory collaborator of the pool core: it
// deploys pairs, derives their identities, and holds the global policy the
// pairs consult at settlement time (oracle controller, trade-mining flags,
// fee destinations).
package registry

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/zeebo/blake3"

	"github.com/luxfi/oraclepool/pool"
)

var (
	ErrPairExists     = errors.New("pair already exists")
	ErrIdenticalToken = errors.New("identical tokens")
)

// Config wires a registry to its environment. NewShares hands back the share
// ledger for a freshly derived pair address; Journal and Sink are passed
// through to every pair.
type Config struct {
	Address     common.Address
	Controller  pool.Controller
	Bank        pool.Bank
	Journal     pool.Journal
	Sink        pool.EventSink
	FeeReceiver common.Address
	NewShares   func(pairAddr common.Address) pool.ShareToken
}

// Registry deploys and indexes pairs and serves as their pool.Factory.
type Registry struct {
	mu sync.RWMutex

	addr        common.Address
	controller  pool.Controller
	bank        pool.Bank
	journal     pool.Journal
	sink        pool.EventSink
	newShares   func(common.Address) pool.ShareToken
	feeReceiver common.Address
	feeVaults   map[common.Address]common.Address
	tradeMining map[common.Address]bool

	pairs map[[32]byte]*pool.Pair
}

// New builds a registry from cfg.
func New(cfg Config) *Registry {
	return &Registry{
		addr:        cfg.Address,
		controller:  cfg.Controller,
		bank:        cfg.Bank,
		journal:     cfg.Journal,
		sink:        cfg.Sink,
		newShares:   cfg.NewShares,
		feeReceiver: cfg.FeeReceiver,
		feeVaults:   make(map[common.Address]common.Address),
		tradeMining: make(map[common.Address]bool),
		pairs:       make(map[[32]byte]*pool.Pair),
	}
}

// PairID derives the identity of a base/counter asset pair. Ordering is
// semantic, not sorted: token0 is always the base asset.
func PairID(token0, token1 common.Address) [32]byte {
	h := blake3.New()
	h.Write(token0.Bytes())
	h.Write(token1.Bytes())
	var id [32]byte
	h.Digest().Read(id[:])
	return id
}

// PairAddress derives the deterministic account address of a pair from its
// identity.
func PairAddress(id [32]byte) common.Address {
	return common.BytesToAddress(id[:20])
}

// CreatePair deploys and initializes a pair for the given assets. The pair
// address and share ledger are derived from the pair identity, so creation
// is deterministic.
func (r *Registry) CreatePair(token0, token1 pool.Token, name, symbol string) (*pool.Pair, error) {
	if token0.Address() == token1.Address() {
		return nil, ErrIdenticalToken
	}

	id := PairID(token0.Address(), token1.Address())

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.pairs[id]; exists {
		return nil, fmt.Errorf("%w: %s/%s", ErrPairExists, token0.Address().Hex(), token1.Address().Hex())
	}

	addr := PairAddress(id)
	p := pool.NewPair(addr, r, r.bank, r.newShares(addr), r.journal, r.sink)
	if err := p.Initialize(r.addr, token0, token1, name, symbol); err != nil {
		return nil, fmt.Errorf("initialize pair: %w", err)
	}
	r.pairs[id] = p
	return p, nil
}

// GetPair looks a pair up by asset addresses.
func (r *Registry) GetPair(token0, token1 common.Address) (*pool.Pair, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.pairs[PairID(token0, token1)]
	return p, ok
}

// Pairs returns every deployed pair.
func (r *Registry) Pairs() []*pool.Pair {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*pool.Pair, 0, len(r.pairs))
	for _, p := range r.pairs {
		out = append(out, p)
	}
	return out
}

// SetController swaps the oracle controller all pairs resolve on their next
// call.
func (r *Registry) SetController(c pool.Controller) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.controller = c
}

// SetFeeReceiver sets the protocol-wide reward pool address.
func (r *Registry) SetFeeReceiver(addr common.Address) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.feeReceiver = addr
}

// SetFeeVaultForLP sets the LP fee vault for a counter asset.
func (r *Registry) SetFeeVaultForLP(token, vault common.Address) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.feeVaults[token] = vault
}

// SetTradeMiningStatus flips the trade-mining policy for a counter asset.
func (r *Registry) SetTradeMiningStatus(token common.Address, enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tradeMining[token] = enabled
}

// Address implements pool.Factory.
func (r *Registry) Address() common.Address { return r.addr }

// Controller implements pool.Factory.
func (r *Registry) Controller() pool.Controller {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.controller
}

// TradeMiningEnabled implements pool.Factory.
func (r *Registry) TradeMiningEnabled(token common.Address) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tradeMining[token]
}

// FeeReceiver implements pool.Factory.
func (r *Registry) FeeReceiver() common.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.feeReceiver
}

// FeeVaultForLP implements pool.Factory.
func (r *Registry) FeeVaultForLP(token common.Address) common.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.feeVaults[token]
}
