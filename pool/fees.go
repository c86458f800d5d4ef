// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import "math/big"

// Fee distribution. Collected trading fees are denominated in token0 and
// routed by the factory's per-pair policy: to the protocol reward pool when
// trade mining is enabled for the counter asset, to the pair's LP fee vault
// otherwise. An unset destination leaves the fee inside the pair, where the
// following reconciliation absorbs it into reserves.
func (p *Pair) distributeFee(fee *big.Int) error {
	if fee == nil || fee.Sign() <= 0 {
		return nil
	}

	// Never attempt to send more than the pair holds; an unrelated transfer
	// failure must not abort an otherwise valid settlement.
	if balance := p.token0.BalanceOf(p.addr); fee.Cmp(balance) > 0 {
		fee = balance
	}
	if fee.Sign() <= 0 {
		return nil
	}

	dest := p.factory.FeeVaultForLP(p.token1.Address())
	if p.factory.TradeMiningEnabled(p.token1.Address()) {
		dest = p.factory.FeeReceiver()
	}
	if dest == zeroAddress {
		return nil
	}
	return p.safeTransfer(p.token0, dest, fee)
}
