// cexctl is a small query tool over the exchange adapters. Credentials
// come from the environment (optionally a .env file), the exchange and
// operation from the command line, and results print as JSON.
//
//	cexctl -e gemini ticker BTC/USD
//	cexctl -e bittrex markets
//	cexctl -e dx balance
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/cexkit/cexkit"
	"github.com/cexkit/cexkit/exchange/bittrex"
	"github.com/cexkit/cexkit/exchange/bleutrade"
	"github.com/cexkit/cexkit/exchange/dx"
	"github.com/cexkit/cexkit/exchange/gemini"
)

func main() {
	exchName := flag.String("e", "", "exchange id (bittrex, bleutrade, dx, gemini)")
	timeout := flag.Duration("timeout", 30*time.Second, "overall command timeout")
	flag.Parse()

	_ = godotenv.Load()

	log, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	ex, err := build(*exchName, log)
	if err != nil {
		log.Fatal("build exchange", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	out, err := run(ctx, ex, flag.Args())
	if err != nil {
		log.Fatal("command failed", zap.String("exchange", ex.ID()), zap.Error(err))
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatal("encode output", zap.Error(err))
	}
}

// credentials are looked up as <EXCHANGE>_API_KEY / <EXCHANGE>_SECRET.
func creds(id string) (string, string) {
	prefix := strings.ToUpper(id)
	return os.Getenv(prefix + "_API_KEY"), os.Getenv(prefix + "_SECRET")
}

func build(id string, log *zap.Logger) (cexkit.Exchange, error) {
	key, secret := creds(id)
	switch id {
	case "bittrex":
		cfg := bittrex.DefaultConfig(key, secret)
		cfg.Logger = log
		return bittrex.NewWithConfig(cfg), nil
	case "bleutrade":
		cfg := bleutrade.Config(key, secret)
		cfg.Logger = log
		return bleutrade.NewWithConfig(cfg), nil
	case "dx":
		return dx.New(dx.Config{APIKey: key, Secret: secret, Logger: log}), nil
	case "gemini":
		return gemini.New(gemini.Config{APIKey: key, Secret: secret, Logger: log}), nil
	case "":
		return nil, fmt.Errorf("-e is required")
	default:
		return nil, fmt.Errorf("unknown exchange %q", id)
	}
}

func run(ctx context.Context, ex cexkit.Exchange, args []string) (any, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("usage: cexctl -e <exchange> <markets|ticker|book|trades|ohlcv|balance|orders> [symbol] [timeframe]")
	}
	cmd, rest := args[0], args[1:]
	symbol := ""
	if len(rest) > 0 {
		symbol = rest[0]
	}
	switch cmd {
	case "markets":
		return ex.LoadMarkets(ctx, true)
	case "ticker":
		return ex.FetchTicker(ctx, symbol)
	case "book":
		return ex.FetchOrderBook(ctx, symbol, 0)
	case "trades":
		return ex.FetchTrades(ctx, symbol, 0, 50)
	case "ohlcv":
		timeframe := "1h"
		if len(rest) > 1 {
			timeframe = rest[1]
		}
		return ex.FetchOHLCV(ctx, symbol, timeframe, 0, 100)
	case "balance":
		return ex.FetchBalance(ctx)
	case "orders":
		return ex.FetchOpenOrders(ctx, symbol, 0, 0)
	default:
		return nil, fmt.Errorf("unknown command %q", cmd)
	}
}
