// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pool

import (
	"errors"
	"math/big"
	"testing"
)

func TestCalcNAVPerShareBootstrap(t *testing.T) {
	price := quote300()
	zero := new(big.Int)

	for name, fn := range map[string]func(r0, r1, total *big.Int, p OraclePrice) (*big.Int, error){
		"neutral": CalcNAVPerShare,
		"mint":    CalcNAVPerShareForMint,
		"burn":    CalcNAVPerShareForBurn,
	} {
		navps, err := fn(zero, zero, zero, price)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if navps.Cmp(NAVPSBase) != 0 {
			t.Fatalf("%s: bootstrap navps = %s, want %s", name, navps, NAVPSBase)
		}
		// The bootstrap value must be a copy, not the shared base.
		navps.Add(navps, big.NewInt(1))
		if NAVPSBase.Cmp(bigInt("1000000000000000000")) != 0 {
			t.Fatalf("%s: NAVPSBase aliased by result", name)
		}
	}
}

func TestCalcNAVPerShareNeutral(t *testing.T) {
	// Pool worth 4e18 token0-units across 4e18 shares: navps is exactly base.
	navps, err := CalcNAVPerShare(e18(2), e18(600), e18(4), quote300())
	if err != nil {
		t.Fatal(err)
	}
	if navps.Cmp(NAVPSBase) != 0 {
		t.Fatalf("navps = %s, want %s", navps, NAVPSBase)
	}
}

func TestCalcNAVPerShareRegimes(t *testing.T) {
	price := quote300()
	price.K = big.NewInt(5_000_000) // 5% spread

	r0, r1, total := e18(2), e18(600), e18(4)

	neutral, err := CalcNAVPerShare(r0, r1, total, price)
	if err != nil {
		t.Fatal(err)
	}
	mint, err := CalcNAVPerShareForMint(r0, r1, total, price)
	if err != nil {
		t.Fatal(err)
	}
	burn, err := CalcNAVPerShareForBurn(r0, r1, total, price)
	if err != nil {
		t.Fatal(err)
	}

	if neutral.Cmp(NAVPSBase) != 0 {
		t.Fatalf("neutral navps = %s, want %s", neutral, NAVPSBase)
	}
	if want := bigInt("1026315789473684210"); mint.Cmp(want) != 0 {
		t.Fatalf("mint navps = %s, want %s", mint, want)
	}
	if want := bigInt("976190476190476190"); burn.Cmp(want) != 0 {
		t.Fatalf("burn navps = %s, want %s", burn, want)
	}

	// A positive spread makes deposits buy fewer shares and redemptions pay
	// out less: mint-adjusted above neutral, burn-adjusted below.
	if mint.Cmp(neutral) <= 0 || neutral.Cmp(burn) <= 0 {
		t.Fatalf("regime ordering violated: mint=%s neutral=%s burn=%s", mint, neutral, burn)
	}
}

func TestCalcNAVPerShareInvalidPrice(t *testing.T) {
	r0, r1, total := e18(2), e18(600), e18(4)

	bad := quote300()
	bad.EthAmount = big.NewInt(0)
	if _, err := CalcNAVPerShare(r0, r1, total, bad); !errors.Is(err, ErrInvalidPrice) {
		t.Fatalf("zero eth leg: err = %v, want ErrInvalidPrice", err)
	}

	full := quote300()
	full.K = new(big.Int).Set(KBase) // collapses the mint divisor to zero
	if _, err := CalcNAVPerShareForMint(r0, r1, total, full); !errors.Is(err, ErrInvalidPrice) {
		t.Fatalf("K == KBase: err = %v, want ErrInvalidPrice", err)
	}
}

func TestCalcLiquidity(t *testing.T) {
	liq, err := CalcLiquidity(e18(1), e18(300), NAVPSBase, quote300())
	if err != nil {
		t.Fatal(err)
	}
	if want := e18(2); liq.Cmp(want) != 0 {
		t.Fatalf("liquidity = %s, want %s", liq, want)
	}
}

func TestCalcLiquidityWithSpread(t *testing.T) {
	price := quote300()
	price.K = big.NewInt(5_000_000)

	liq, err := CalcLiquidity(e18(1), e18(300), NAVPSBase, price)
	if err != nil {
		t.Fatal(err)
	}
	// The token1 leg is haircut by KBase/(KBase+K) = 1/1.05.
	if want := bigInt("1952380952380952380"); liq.Cmp(want) != 0 {
		t.Fatalf("liquidity = %s, want %s", liq, want)
	}
}

func TestCalcLiquidityInvalidNAVPS(t *testing.T) {
	if _, err := CalcLiquidity(e18(1), e18(300), new(big.Int), quote300()); !errors.Is(err, ErrInvalidPrice) {
		t.Fatalf("zero navps: err = %v, want ErrInvalidPrice", err)
	}
}
