// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "poolsim",
		Short:        "Deterministic oracle-pool scenario runner",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run a mint/swap/burn scenario against an in-memory pair",
		RunE:  runScenario,
	}

	runCmd.Flags().String("deposit0", "1000000000000000000", "base asset deposit (raw units)")
	runCmd.Flags().String("deposit1", "300000000000000000000", "counter asset deposit (raw units)")
	runCmd.Flags().String("swap-in0", "100000000000000000", "base asset swap input (raw units)")
	runCmd.Flags().String("swap-out0", "50000000000000000", "exact base asset swap output (raw units)")
	runCmd.Flags().Uint64("quote-k", 0, "oracle spread K (parts per 1e8)")
	runCmd.Flags().Uint64("quote-eth", 1, "oracle exchange rate, token0 leg")
	runCmd.Flags().Uint64("quote-erc20", 300, "oracle exchange rate, token1 leg")
	runCmd.Flags().Uint64("quote-theta", 0, "oracle fee rate theta (parts per 1e8)")
	runCmd.Flags().Uint64("oracle-fee", 10_000_000, "native fee charged per oracle query")
	runCmd.Flags().Int32("decimals0", 18, "base asset display decimals")
	runCmd.Flags().Int32("decimals1", 18, "counter asset display decimals")
	runCmd.Flags().Bool("trade-mining", false, "route fees to the protocol reward pool")
	runCmd.Flags().String("events-out", "./data/events.jsonl", "pool events JSONL path")
	runCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(runCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
