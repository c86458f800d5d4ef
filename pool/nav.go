// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import "math/big"

// Net-asset-value-per-share engine. All three regimes share one structural
// formula: both reserves expressed in token0 terms via the oracle exchange
// rate, summed, divided by the outstanding shares, scaled by NAVPSBase.
// Products are accumulated in full width before any division so nothing is
// lost to intermediate truncation; each division floors.

// CalcNAVPerShare returns the neutral (no spread) net asset value per share.
// With no shares outstanding one share is worth exactly one unit of token0.
//
//	navps = NAVPSBase * (reserve1*ethAmount + reserve0*erc20Amount) / totalShares / erc20Amount
func CalcNAVPerShare(reserve0, reserve1, totalShares *big.Int, price OraclePrice) (*big.Int, error) {
	if price.EthAmount.Sign() <= 0 || price.Erc20Amount.Sign() <= 0 {
		return nil, ErrInvalidPrice
	}
	if totalShares.Sign() == 0 {
		return new(big.Int).Set(NAVPSBase), nil
	}

	num := new(big.Int).Mul(reserve1, price.EthAmount)
	num.Add(num, new(big.Int).Mul(reserve0, price.Erc20Amount))
	num.Mul(num, NAVPSBase)
	num.Div(num, totalShares)
	num.Div(num, price.Erc20Amount)
	return num, nil
}

// CalcNAVPerShareForMint values token1 at the sell-side price, widening the
// exchange rate by (KBase-K)/KBase.
//
//	navps = NAVPSBase * (reserve1*ethAmount*KBase + reserve0*erc20Amount*(KBase-K)) / totalShares / erc20Amount / (KBase-K)
func CalcNAVPerShareForMint(reserve0, reserve1, totalShares *big.Int, price OraclePrice) (*big.Int, error) {
	kSub := new(big.Int).Sub(KBase, price.K)
	if price.EthAmount.Sign() <= 0 || price.Erc20Amount.Sign() <= 0 || kSub.Sign() <= 0 {
		return nil, ErrInvalidPrice
	}
	if totalShares.Sign() == 0 {
		return new(big.Int).Set(NAVPSBase), nil
	}

	num := new(big.Int).Mul(reserve1, price.EthAmount)
	num.Mul(num, KBase)
	term0 := new(big.Int).Mul(reserve0, price.Erc20Amount)
	term0.Mul(term0, kSub)
	num.Add(num, term0)
	num.Mul(num, NAVPSBase)
	num.Div(num, totalShares)
	num.Div(num, price.Erc20Amount)
	num.Div(num, kSub)
	return num, nil
}

// CalcNAVPerShareForBurn mirrors the mint adjustment on the buy side,
// widening the exchange rate by (KBase+K)/KBase.
func CalcNAVPerShareForBurn(reserve0, reserve1, totalShares *big.Int, price OraclePrice) (*big.Int, error) {
	kAdd := new(big.Int).Add(KBase, price.K)
	if price.EthAmount.Sign() <= 0 || price.Erc20Amount.Sign() <= 0 || kAdd.Sign() <= 0 {
		return nil, ErrInvalidPrice
	}
	if totalShares.Sign() == 0 {
		return new(big.Int).Set(NAVPSBase), nil
	}

	num := new(big.Int).Mul(reserve1, price.EthAmount)
	num.Mul(num, KBase)
	term0 := new(big.Int).Mul(reserve0, price.Erc20Amount)
	term0.Mul(term0, kAdd)
	num.Add(num, term0)
	num.Mul(num, NAVPSBase)
	num.Div(num, totalShares)
	num.Div(num, price.Erc20Amount)
	num.Div(num, kAdd)
	return num, nil
}

// CalcLiquidity converts a deposit of both assets into shares at the given
// navps. The token1 contribution is valued at the mint-side price.
//
//	liquidity = amount0*NAVPSBase/navps
//	          + amount1*NAVPSBase*ethAmount*KBase/navps/erc20Amount/(KBase+K)
func CalcLiquidity(amount0, amount1, navps *big.Int, price OraclePrice) (*big.Int, error) {
	kAdd := new(big.Int).Add(KBase, price.K)
	if price.EthAmount.Sign() <= 0 || price.Erc20Amount.Sign() <= 0 || kAdd.Sign() <= 0 || navps.Sign() <= 0 {
		return nil, ErrInvalidPrice
	}

	liquidity := new(big.Int).Mul(amount0, NAVPSBase)
	liquidity.Div(liquidity, navps)

	term1 := new(big.Int).Mul(amount1, NAVPSBase)
	term1.Mul(term1, price.EthAmount)
	term1.Mul(term1, KBase)
	term1.Div(term1, navps)
	term1.Div(term1, price.Erc20Amount)
	term1.Div(term1, kAdd)

	return liquidity.Add(liquidity, term1), nil
}
