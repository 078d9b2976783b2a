// Simulate buying a code list at one date and valuing it at another (or at
// the latest close), printing the per-instrument and aggregate report.
//
// Usage:
//
//	go run cmd/rsr-sim/main.go -list top40_tse_20250829.txt -buy 2025-01-06 [-sell 2025-08-29]
//	    [-mode 1share|fractional|lot|single] [-lot 100] [-invest 100000] [-sort pct|profit_pct]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"rsrank/internal/config"
	"rsrank/internal/domain"
	"rsrank/internal/sim"
	"rsrank/internal/store"
	"rsrank/internal/util"
)

func main() {
	listPath := flag.String("list", "", "code list file (required)")
	buyArg := flag.String("buy", "", "buy date (YYYY-MM-DD, required)")
	sellArg := flag.String("sell", "", "sell date (YYYY-MM-DD), empty = latest close")
	mode := flag.String("mode", "", "allocation mode (empty = config default)")
	lot := flag.Int("lot", 0, "round-lot size (0 = config default)")
	invest := flag.Float64("invest", 0, "invest amount per instrument (0 = config default)")
	sortBy := flag.String("sort", "", "sort key: pct or profit_pct (empty = config default)")
	flag.Parse()

	if *listPath == "" || *buyArg == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfgPath := "config/rsrank.yaml"
	if p := os.Getenv("RSRANK_CONFIG"); p != "" {
		cfgPath = p
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Fatalf("failed to load config: %v", err)
		}
		cfg = config.Default()
	}

	util.SetDefault(util.NewLogger(cfg.Logging.Level, cfg.Logging.Format))

	if *mode == "" {
		*mode = cfg.Sim.Mode
	}
	if *lot == 0 {
		*lot = cfg.Sim.Lot
	}
	if *invest == 0 {
		*invest = cfg.Sim.Invest
	}
	if *sortBy == "" {
		*sortBy = cfg.Sim.SortBy
	}

	policy, err := domain.ParseAllocPolicy(*mode)
	if err != nil {
		log.Fatalf("bad -mode: %v", err)
	}
	key, err := domain.ParseSortKey(*sortBy)
	if err != nil {
		log.Fatalf("bad -sort: %v", err)
	}

	buyDate, err := util.ParseDateArg(*buyArg)
	if err != nil {
		log.Fatalf("bad -buy: %v", err)
	}
	var sellDate time.Time
	if *sellArg != "" {
		sellDate, err = util.ParseDateArg(*sellArg)
		if err != nil {
			log.Fatalf("bad -sell: %v", err)
		}
	}

	codes, err := store.LoadCodeList(*listPath)
	if err != nil {
		log.Fatalf("failed to load code list: %v", err)
	}

	ctx := context.Background()

	m, err := store.OpenMatrix(ctx, cfg.Data.SQLitePath, cfg.Data.CloseCSV)
	if err != nil {
		log.Fatalf("failed to load close matrix: %v", err)
	}

	req := sim.Request{
		BuyDate:  buyDate,
		SellDate: sellDate,
		Policy:   policy,
		Lot:      *lot,
		Invest:   *invest,
		SortBy:   key,
	}

	res, err := sim.Run(m, codes, req)
	if err != nil {
		log.Fatalf("simulation failed: %v", err)
	}

	fmt.Println(sim.Report(res, req))

	if !sellDate.IsZero() {
		ret, err := sim.BenchmarkReturn(m, cfg.RSR.Benchmark, buyDate, sellDate)
		if err != nil {
			slog.Warn("benchmark return unavailable", "benchmark", cfg.RSR.Benchmark, "err", err)
		} else {
			fmt.Printf("benchmark %s : %.2f%%\n", cfg.RSR.Benchmark, ret)
		}
	}
}
