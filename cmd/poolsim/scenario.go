// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/luxfi/oraclepool/oracle"
	"github.com/luxfi/oraclepool/pool"
	"github.com/luxfi/oraclepool/registry"
	"github.com/luxfi/oraclepool/storage"
	"github.com/luxfi/oraclepool/token"
)

// Fixed scenario identities.
var (
	addrWETH    = common.HexToAddress("0x1000000000000000000000000000000000000001")
	addrUSDT    = common.HexToAddress("0x1000000000000000000000000000000000000002")
	addrFactory = common.HexToAddress("0x2000000000000000000000000000000000000001")
	addrOracle  = common.HexToAddress("0x2000000000000000000000000000000000000002")
	addrRewards = common.HexToAddress("0x2000000000000000000000000000000000000003")
	addrLPVault = common.HexToAddress("0x2000000000000000000000000000000000000004")
	addrAlice   = common.HexToAddress("0x3000000000000000000000000000000000000001")
)

func runScenario(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := loadConfig(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	deposit0, err := parseBig(cfg.Deposit0)
	if err != nil {
		return fmt.Errorf("deposit0: %w", err)
	}
	deposit1, err := parseBig(cfg.Deposit1)
	if err != nil {
		return fmt.Errorf("deposit1: %w", err)
	}
	swapIn0, err := parseBig(cfg.SwapIn0)
	if err != nil {
		return fmt.Errorf("swap-in0: %w", err)
	}
	swapOut0, err := parseBig(cfg.SwapOut0)
	if err != nil {
		return fmt.Errorf("swap-out0: %w", err)
	}

	sink, err := storage.NewJSONLSink(cfg.EventsOut)
	if err != nil {
		return err
	}
	defer sink.Close()

	ledger := token.NewLedger()
	weth := ledger.NewToken(addrWETH, "WETH")
	usdt := ledger.NewToken(addrUSDT, "USDT")

	controller := oracle.NewStatic(addrOracle, uint256.NewInt(cfg.OracleFee))
	quote := oracle.Quote(cfg.QuoteK, cfg.QuoteEth, cfg.QuoteErc20, 1, cfg.QuoteTheta)
	if err := controller.SetQuote(addrUSDT, quote); err != nil {
		return err
	}

	reg := registry.New(registry.Config{
		Address:     addrFactory,
		Controller:  controller,
		Bank:        ledger,
		Journal:     ledger,
		Sink:        sink,
		FeeReceiver: addrRewards,
		NewShares: func(pairAddr common.Address) pool.ShareToken {
			// The pair account doubles as the share token identity.
			return ledger.NewShares(pairAddr)
		},
	})
	reg.SetTradeMiningStatus(addrUSDT, cfg.TradeMining)
	reg.SetFeeVaultForLP(addrUSDT, addrLPVault)

	pair, err := reg.CreatePair(weth, usdt, "Oracle Pool Share", "OPS")
	if err != nil {
		return err
	}
	shares := ledger.NewShares(pair.Address())
	logger.Info("pair created",
		zap.String("pair", pair.Address().Hex()),
		zap.String("token0", weth.Address().Hex()),
		zap.String("token1", usdt.Address().Hex()))

	// Funding: generous token balances plus native value for oracle fees.
	funding0 := new(big.Int).Mul(deposit0, big.NewInt(10))
	funding1 := new(big.Int).Mul(deposit1, big.NewInt(10))
	weth.Fund(addrAlice, funding0)
	usdt.Fund(addrAlice, funding1)
	ledger.Deposit(addrAlice, uint256.NewInt(cfg.OracleFee*100))
	oracleFee := uint256.NewInt(cfg.OracleFee * 2)

	// Mint: deposit both assets, then settle.
	if err := deposit(weth, addrAlice, pair.Address(), deposit0); err != nil {
		return err
	}
	if err := deposit(usdt, addrAlice, pair.Address(), deposit1); err != nil {
		return err
	}
	liquidity, refund, err := pair.Mint(addrAlice, addrAlice, oracleFee)
	if err != nil {
		return fmt.Errorf("mint: %w", err)
	}
	logger.Info("minted",
		zap.String("liquidity", liquidity.String()),
		zap.String("oracle_fee_refund", refund.String()))

	// Exact-input swap: token0 in, token1 out.
	if err := deposit(weth, addrAlice, pair.Address(), swapIn0); err != nil {
		return err
	}
	amountIn, amountOut, refund, tradeInfo, err := pair.SwapWithExact(addrAlice, addrUSDT, addrAlice, oracleFee)
	if err != nil {
		return fmt.Errorf("swap with exact: %w", err)
	}
	logger.Info("swapped exact-in",
		zap.String("amount_in", fmtAmount(amountIn, cfg.Decimals0)),
		zap.String("amount_out", fmtAmount(amountOut, cfg.Decimals1)),
		zap.String("fee", tradeInfo[0].String()),
		zap.String("oracle_fee_refund", refund.String()))

	// Exact-output swap: token1 in, exact token0 out. Tender 10% over the
	// inverse quote so the excess-refund path is exercised.
	needed, _, err := pool.CalcInNeededToken1(swapOut0, quote)
	if err != nil {
		return err
	}
	tender := new(big.Int).Div(new(big.Int).Mul(needed, big.NewInt(110)), big.NewInt(100))
	if err := deposit(usdt, addrAlice, pair.Address(), tender); err != nil {
		return err
	}
	amountIn, amountOut, refund, tradeInfo, err = pair.SwapForExact(addrAlice, addrWETH, swapOut0, addrAlice, oracleFee)
	if err != nil {
		return fmt.Errorf("swap for exact: %w", err)
	}
	logger.Info("swapped exact-out",
		zap.String("amount_in", fmtAmount(amountIn, cfg.Decimals1)),
		zap.String("amount_out", fmtAmount(amountOut, cfg.Decimals0)),
		zap.String("fee", tradeInfo[0].String()),
		zap.String("oracle_fee_refund", refund.String()))

	// Burn half the position back into token0. A full redemption into a
	// single asset would exceed that asset's reserve, since the pool value
	// is split across both.
	held := new(big.Int).Div(shares.BalanceOf(addrAlice), big.NewInt(2))
	if ok, err := shares.Transfer(addrAlice, pair.Address(), held); err != nil || !ok {
		return fmt.Errorf("return shares: ok=%v err=%v", ok, err)
	}
	burned, refund, err := pair.Burn(addrAlice, addrWETH, addrAlice, oracleFee)
	if err != nil {
		return fmt.Errorf("burn: %w", err)
	}
	logger.Info("burned",
		zap.String("shares", held.String()),
		zap.String("amount_out", fmtAmount(burned, cfg.Decimals0)),
		zap.String("oracle_fee_refund", refund.String()))

	reserve0, reserve1 := pair.GetReserves()
	logger.Info("final reserves",
		zap.String("reserve0", fmtAmount(reserve0, cfg.Decimals0)),
		zap.String("reserve1", fmtAmount(reserve1, cfg.Decimals1)),
		zap.String("total_shares", shares.TotalSupply().String()))

	return sink.Err()
}

// deposit moves tokens from a user into the pair ahead of a settlement call.
func deposit(t *token.ERC20, from, pairAddr common.Address, amount *big.Int) error {
	ok, err := t.Transfer(from, pairAddr, amount)
	if err != nil {
		return fmt.Errorf("deposit %s: %w", t.Symbol(), err)
	}
	if !ok {
		return fmt.Errorf("deposit %s: insufficient balance", t.Symbol())
	}
	return nil
}

func parseBig(s string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("not a base-10 integer: %q", s)
	}
	return n, nil
}

func fmtAmount(x *big.Int, decimals int32) string {
	return decimal.NewFromBigInt(x, -decimals).String()
}
