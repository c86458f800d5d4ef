// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import "math/big"

// Swap quote math. Forward formulas price an exact input; inverse formulas
// solve for the input an exact output requires. Every division floors and
// follows all multiplications of its formula, so composing a forward formula
// with its inverse reproduces the input only up to truncation. That asymmetry
// is part of the pair's contract and must not be compensated for.
//
// Fees are always denominated in token0, on every path.

// CalcOutToken0 quotes token0 out for an exact token1 input.
//
//	amountOut = amountIn*ethAmount*KBase*(ThetaBase-theta) / erc20Amount / (KBase+K) / ThetaBase
//	fee       = amountIn*ethAmount*KBase*theta             / erc20Amount / (KBase+K) / ThetaBase
func CalcOutToken0(amountIn *big.Int, price OraclePrice) (amountOut, fee *big.Int, err error) {
	kAdd := new(big.Int).Add(KBase, price.K)
	thetaSub := new(big.Int).Sub(ThetaBase, price.Theta)
	if price.EthAmount.Sign() <= 0 || price.Erc20Amount.Sign() <= 0 || kAdd.Sign() <= 0 || thetaSub.Sign() <= 0 {
		return nil, nil, ErrInvalidPrice
	}

	base := new(big.Int).Mul(amountIn, price.EthAmount)
	base.Mul(base, KBase)

	amountOut = new(big.Int).Mul(base, thetaSub)
	amountOut.Div(amountOut, price.Erc20Amount)
	amountOut.Div(amountOut, kAdd)
	amountOut.Div(amountOut, ThetaBase)

	fee = big.NewInt(0)
	if price.Theta.Sign() != 0 {
		fee = new(big.Int).Mul(base, price.Theta)
		fee.Div(fee, price.Erc20Amount)
		fee.Div(fee, kAdd)
		fee.Div(fee, ThetaBase)
	}
	return amountOut, fee, nil
}

// CalcOutToken1 quotes token1 out for an exact token0 input. The fee is
// retained from the input before conversion.
//
//	amountOut = amountIn*erc20Amount*(KBase-K)*(ThetaBase-theta) / ethAmount / KBase / ThetaBase
//	fee       = amountIn*theta / ThetaBase
func CalcOutToken1(amountIn *big.Int, price OraclePrice) (amountOut, fee *big.Int, err error) {
	kSub := new(big.Int).Sub(KBase, price.K)
	thetaSub := new(big.Int).Sub(ThetaBase, price.Theta)
	if price.EthAmount.Sign() <= 0 || price.Erc20Amount.Sign() <= 0 || kSub.Sign() <= 0 || thetaSub.Sign() <= 0 {
		return nil, nil, ErrInvalidPrice
	}

	amountOut = new(big.Int).Mul(amountIn, price.Erc20Amount)
	amountOut.Mul(amountOut, kSub)
	amountOut.Mul(amountOut, thetaSub)
	amountOut.Div(amountOut, price.EthAmount)
	amountOut.Div(amountOut, KBase)
	amountOut.Div(amountOut, ThetaBase)

	fee = big.NewInt(0)
	if price.Theta.Sign() != 0 {
		fee = new(big.Int).Mul(amountIn, price.Theta)
		fee.Div(fee, ThetaBase)
	}
	return amountOut, fee, nil
}

// CalcInNeededToken1 inverts CalcOutToken0: the token1 input required for an
// exact token0 output. The fee is derived from the required input, not from
// whatever was actually tendered.
//
//	amountIn = amountOut*erc20Amount*(KBase+K)*ThetaBase / ethAmount / KBase / (ThetaBase-theta)
func CalcInNeededToken1(amountOut *big.Int, price OraclePrice) (amountIn, fee *big.Int, err error) {
	kAdd := new(big.Int).Add(KBase, price.K)
	thetaSub := new(big.Int).Sub(ThetaBase, price.Theta)
	if price.EthAmount.Sign() <= 0 || price.Erc20Amount.Sign() <= 0 || kAdd.Sign() <= 0 || thetaSub.Sign() <= 0 {
		return nil, nil, ErrInvalidPrice
	}

	amountIn = new(big.Int).Mul(amountOut, price.Erc20Amount)
	amountIn.Mul(amountIn, kAdd)
	amountIn.Mul(amountIn, ThetaBase)
	amountIn.Div(amountIn, price.EthAmount)
	amountIn.Div(amountIn, KBase)
	amountIn.Div(amountIn, thetaSub)

	fee = big.NewInt(0)
	if price.Theta.Sign() != 0 {
		fee = new(big.Int).Mul(amountIn, price.EthAmount)
		fee.Mul(fee, KBase)
		fee.Mul(fee, price.Theta)
		fee.Div(fee, price.Erc20Amount)
		fee.Div(fee, kAdd)
		fee.Div(fee, ThetaBase)
	}
	return amountIn, fee, nil
}

// CalcInNeededToken0 inverts CalcOutToken1: the token0 input required for an
// exact token1 output.
//
//	amountIn = amountOut*ethAmount*KBase*ThetaBase / erc20Amount / (KBase-K) / (ThetaBase-theta)
func CalcInNeededToken0(amountOut *big.Int, price OraclePrice) (amountIn, fee *big.Int, err error) {
	kSub := new(big.Int).Sub(KBase, price.K)
	thetaSub := new(big.Int).Sub(ThetaBase, price.Theta)
	if price.EthAmount.Sign() <= 0 || price.Erc20Amount.Sign() <= 0 || kSub.Sign() <= 0 || thetaSub.Sign() <= 0 {
		return nil, nil, ErrInvalidPrice
	}

	amountIn = new(big.Int).Mul(amountOut, price.EthAmount)
	amountIn.Mul(amountIn, KBase)
	amountIn.Mul(amountIn, ThetaBase)
	amountIn.Div(amountIn, price.Erc20Amount)
	amountIn.Div(amountIn, kSub)
	amountIn.Div(amountIn, thetaSub)

	fee = big.NewInt(0)
	if price.Theta.Sign() != 0 {
		fee = new(big.Int).Mul(amountIn, price.Theta)
		fee.Div(fee, ThetaBase)
	}
	return amountIn, fee, nil
}

// CalcOutToken0ForBurn redeems shares into token0 at the burn-adjusted navps,
// splitting out the theta fee.
//
//	amountOut = liquidity*navps*(ThetaBase-theta) / NAVPSBase / ThetaBase
//	fee       = liquidity*navps*theta             / NAVPSBase / ThetaBase
func CalcOutToken0ForBurn(liquidity, navps *big.Int, price OraclePrice) (amountOut, fee *big.Int, err error) {
	thetaSub := new(big.Int).Sub(ThetaBase, price.Theta)
	if thetaSub.Sign() <= 0 || navps.Sign() < 0 {
		return nil, nil, ErrInvalidPrice
	}

	base := new(big.Int).Mul(liquidity, navps)

	amountOut = new(big.Int).Mul(base, thetaSub)
	amountOut.Div(amountOut, NAVPSBase)
	amountOut.Div(amountOut, ThetaBase)

	fee = big.NewInt(0)
	if price.Theta.Sign() != 0 {
		fee = new(big.Int).Mul(base, price.Theta)
		fee.Div(fee, NAVPSBase)
		fee.Div(fee, ThetaBase)
	}
	return amountOut, fee, nil
}

// CalcOutToken1ForBurn redeems shares into token1. The redeemed value is
// formed in token0 terms, the theta fee is retained there, and the remainder
// converts at the sell-side rate.
//
//	ethValue  = liquidity*navps / NAVPSBase
//	fee       = ethValue*theta / ThetaBase
//	amountOut = (ethValue-fee)*erc20Amount*(KBase-K) / ethAmount / KBase
func CalcOutToken1ForBurn(liquidity, navps *big.Int, price OraclePrice) (amountOut, fee *big.Int, err error) {
	kSub := new(big.Int).Sub(KBase, price.K)
	if price.EthAmount.Sign() <= 0 || price.Erc20Amount.Sign() <= 0 || kSub.Sign() <= 0 || navps.Sign() < 0 {
		return nil, nil, ErrInvalidPrice
	}

	ethValue := new(big.Int).Mul(liquidity, navps)
	ethValue.Div(ethValue, NAVPSBase)

	fee = big.NewInt(0)
	if price.Theta.Sign() != 0 {
		fee = new(big.Int).Mul(ethValue, price.Theta)
		fee.Div(fee, ThetaBase)
	}

	amountOut = new(big.Int).Sub(ethValue, fee)
	amountOut.Mul(amountOut, price.Erc20Amount)
	amountOut.Mul(amountOut, kSub)
	amountOut.Div(amountOut, price.EthAmount)
	amountOut.Div(amountOut, KBase)
	return amountOut, fee, nil
}
