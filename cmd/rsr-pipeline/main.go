// Run the ranking and the simulation in one pass: score every instrument
// at the buy date, take the top N, and value that basket at the sell date
// (or the latest close). With -horizon the tool instead prints the score
// versus realized forward return for every scoreable instrument.
//
// Usage:
//
//	go run cmd/rsr-pipeline/main.go -buy 2025-01-06 [-sell 2025-08-29] [-top 40]
//	go run cmd/rsr-pipeline/main.go -buy 2025-01-06 -horizon 6
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

	"rsrank/internal/calendar"
	"rsrank/internal/config"
	"rsrank/internal/domain"
	"rsrank/internal/rsr"
	"rsrank/internal/sim"
	"rsrank/internal/store"
	"rsrank/internal/util"
)

func main() {
	buyArg := flag.String("buy", "", "buy/base date (YYYY-MM-DD), empty = latest session with data")
	sellArg := flag.String("sell", "", "sell date (YYYY-MM-DD), empty = latest close")
	topN := flag.Int("top", 0, "basket size (0 = config default)")
	horizon := flag.Int("horizon", 0, "forward-return horizon in months (0 = run the basket simulation)")
	flag.Parse()

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

	if *topN == 0 {
		*topN = cfg.RSR.TopN
	}

	var requested time.Time
	if *buyArg != "" {
		requested, err = util.ParseDateArg(*buyArg)
		if err != nil {
			log.Fatalf("bad -buy: %v", err)
		}
	}
	var sellDate time.Time
	if *sellArg != "" {
		sellDate, err = util.ParseDateArg(*sellArg)
		if err != nil {
			log.Fatalf("bad -sell: %v", err)
		}
	}

	ctx := context.Background()

	m, err := store.OpenMatrix(ctx, cfg.Data.SQLitePath, cfg.Data.CloseCSV)
	if err != nil {
		log.Fatalf("failed to load close matrix: %v", err)
	}

	cal, err := calendar.Open(cfg.Calendar, cfg.Alpaca)
	if err != nil {
		log.Fatalf("failed to open calendar: %v", err)
	}
	scorer := rsr.NewScorer(cal, rsr.WeightsFromConfig(cfg.RSR.Weights))
	ranker := rsr.NewRanker(scorer)

	if *horizon > 0 {
		base, results, err := ranker.ScoreWithForwardReturn(ctx, m, requested, *horizon)
		if err != nil {
			log.Fatalf("forward-return study failed: %v", err)
		}
		fmt.Printf("base day %s, horizon %d months\n", util.FormatDate(base), *horizon)
		fmt.Println("ticker,score,forward_pct")
		for _, r := range results {
			if r.HasProfit {
				fmt.Printf("%s,%.4f,%.2f\n", r.Ticker, r.Score, r.Profit)
			} else {
				fmt.Printf("%s,%.4f,\n", r.Ticker, r.Score)
			}
		}
		return
	}

	base, err := rsr.ResolveBaseDay(ctx, m, cal, requested)
	if err != nil {
		log.Fatalf("failed to resolve base day: %v", err)
	}

	ranked, err := ranker.Rank(ctx, m, m.Tickers(), base, *topN)
	if err != nil {
		log.Fatalf("ranking failed: %v", err)
	}
	slog.Info("ranked", "base_day", util.FormatDate(ranked.BaseDay),
		"scored", ranked.Scored, "basket", len(ranked.Entries))
	fmt.Println(ranked.StatusLine())

	policy, err := domain.ParseAllocPolicy(cfg.Sim.Mode)
	if err != nil {
		log.Fatalf("bad sim mode in config: %v", err)
	}
	key, err := domain.ParseSortKey(cfg.Sim.SortBy)
	if err != nil {
		log.Fatalf("bad sort key in config: %v", err)
	}

	codes := make([]string, 0, len(ranked.Entries))
	for _, e := range ranked.Entries {
		codes = append(codes, e.Ticker)
	}

	req := sim.Request{
		BuyDate:  ranked.BaseDay,
		SellDate: sellDate,
		Policy:   policy,
		Lot:      cfg.Sim.Lot,
		Invest:   cfg.Sim.Invest,
		SortBy:   key,
	}
	res, err := sim.Run(m, codes, req)
	if err != nil {
		log.Fatalf("simulation failed: %v", err)
	}

	fmt.Println(sim.Report(res, req))

	if !sellDate.IsZero() {
		ret, err := sim.BenchmarkReturn(m, cfg.RSR.Benchmark, ranked.BaseDay, sellDate)
		if err != nil {
			slog.Warn("benchmark return unavailable", "benchmark", cfg.RSR.Benchmark, "err", err)
		} else {
			fmt.Printf("benchmark %s : %.2f%%\n", cfg.RSR.Benchmark, ret)
		}
	}
}
