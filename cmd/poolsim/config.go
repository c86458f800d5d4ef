// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// scenarioConfig holds scenario values merged from flags, env (POOLSIM_*),
// and an optional config file.
type scenarioConfig struct {
	Deposit0    string
	Deposit1    string
	SwapIn0     string
	SwapOut0    string
	QuoteK      uint64
	QuoteEth    uint64
	QuoteErc20  uint64
	QuoteTheta  uint64
	OracleFee   uint64
	Decimals0   int32
	Decimals1   int32
	TradeMining bool
	EventsOut   string
	LogLevel    string
}

func loadConfig(cfgFile string, flags *pflag.FlagSet) (scenarioConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("POOLSIM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return scenarioConfig{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return scenarioConfig{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("poolsim")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return scenarioConfig{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	return scenarioConfig{
		Deposit0:    v.GetString("deposit0"),
		Deposit1:    v.GetString("deposit1"),
		SwapIn0:     v.GetString("swap-in0"),
		SwapOut0:    v.GetString("swap-out0"),
		QuoteK:      v.GetUint64("quote-k"),
		QuoteEth:    v.GetUint64("quote-eth"),
		QuoteErc20:  v.GetUint64("quote-erc20"),
		QuoteTheta:  v.GetUint64("quote-theta"),
		OracleFee:   v.GetUint64("oracle-fee"),
		Decimals0:   v.GetInt32("decimals0"),
		Decimals1:   v.GetInt32("decimals1"),
		TradeMining: v.GetBool("trade-mining"),
		EventsOut:   v.GetString("events-out"),
		LogLevel:    v.GetString("log-level"),
	}, nil
}
