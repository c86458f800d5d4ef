// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Events are append-only notifications of pair state changes, consumed by
// external indexers. A SyncEvent follows every reserve write; the operation
// event follows once the whole call has settled.

// Event is a typed pair notification.
type Event interface {
	EventName() string
}

// MintEvent records a deposit settled into newly issued shares.
type MintEvent struct {
	Sender  common.Address `json:"sender"`
	Amount0 *big.Int       `json:"amount0"`
	Amount1 *big.Int       `json:"amount1"`
}

func (MintEvent) EventName() string { return "Mint" }

// BurnEvent records shares redeemed into a single output asset.
type BurnEvent struct {
	Sender    common.Address `json:"sender"`
	OutToken  common.Address `json:"outToken"`
	OutAmount *big.Int       `json:"outAmount"`
	To        common.Address `json:"to"`
}

func (BurnEvent) EventName() string { return "Burn" }

// SwapEvent records a settled swap, exact-in or exact-out.
type SwapEvent struct {
	Sender    common.Address `json:"sender"`
	AmountIn  *big.Int       `json:"amountIn"`
	AmountOut *big.Int       `json:"amountOut"`
	OutToken  common.Address `json:"outToken"`
	To        common.Address `json:"to"`
}

func (SwapEvent) EventName() string { return "Swap" }

// SyncEvent carries the reserves just written back.
type SyncEvent struct {
	Reserve0 *big.Int `json:"reserve0"`
	Reserve1 *big.Int `json:"reserve1"`
}

func (SyncEvent) EventName() string { return "Sync" }

// EventSink receives pair events in emission order.
type EventSink interface {
	Emit(ev Event)
}

// NopSink drops every event.
type NopSink struct{}

func (NopSink) Emit(Event) {}

// nopJournal backs pairs wired without a host journal.
type nopJournal struct{}

func (nopJournal) Snapshot() int           { return 0 }
func (nopJournal) RevertToSnapshot(id int) {}
