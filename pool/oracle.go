// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Oracle gateway. The pair forwards any attached native value to the
// controller resolved through the factory and consumes the returned quote
// unchecked; freshness and bounds are the controller's trust boundary. What
// the controller retained is measured as the balance delta around the call,
// never assumed from the request amount, and the remainder is refunded to the
// caller once the call has settled.

// collectOracleFee moves the attached native value from the caller into the
// pair's balance, where the controller can draw on it.
func (p *Pair) collectOracleFee(caller common.Address, attached *uint256.Int) error {
	if attached == nil || attached.IsZero() {
		return nil
	}
	if err := p.bank.Transfer(caller, p.addr, attached); err != nil {
		return fmt.Errorf("collect oracle fee: %w", err)
	}
	return nil
}

// queryOracle requests a quote for token1 and returns it together with the
// unspent portion of the attached value.
func (p *Pair) queryOracle(op OracleOp, caller common.Address, attached *uint256.Int) (OraclePrice, *uint256.Int, error) {
	if attached == nil {
		attached = uint256.NewInt(0)
	}

	before := p.bank.Balance(p.addr)
	price, err := p.factory.Controller().QueryOracle(p.bank, p.addr, p.token1.Address(), op, caller.Bytes())
	if err != nil {
		return OraclePrice{}, nil, fmt.Errorf("query oracle: %w", err)
	}
	after := p.bank.Balance(p.addr)

	spent := uint256.NewInt(0)
	if after.Cmp(before) < 0 {
		spent.Sub(before, after)
	}
	unspent := uint256.NewInt(0)
	if spent.Cmp(attached) < 0 {
		unspent.Sub(attached, spent)
	}
	return price, unspent, nil
}

// refundOracleFee returns the unspent attached value to the caller.
func (p *Pair) refundOracleFee(caller common.Address, unspent *uint256.Int) error {
	if unspent == nil || unspent.IsZero() {
		return nil
	}
	if err := p.bank.Transfer(p.addr, caller, unspent); err != nil {
		return fmt.Errorf("refund oracle fee: %w", err)
	}
	return nil
}
