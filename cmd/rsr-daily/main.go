// Print the one-year trailing momentum score series for a single
// instrument, side by side with the benchmark index.
//
// Usage:
//
//	go run cmd/rsr-daily/main.go -ticker 7203 [-benchmark ^N225]
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
	"rsrank/internal/rsr"
	"rsrank/internal/store"
	"rsrank/internal/util"
)

func main() {
	tickerArg := flag.String("ticker", "", "instrument code or ticker (required)")
	benchArg := flag.String("benchmark", "", "benchmark ticker (empty = config default)")
	flag.Parse()

	if *tickerArg == "" {
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

	benchmark := cfg.RSR.Benchmark
	if *benchArg != "" {
		benchmark = *benchArg
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

	ticker, ok := m.Resolve(*tickerArg)
	if !ok {
		log.Fatalf("ticker %s not found in close matrix", *tickerArg)
	}
	scorer := rsr.NewScorer(cal, rsr.WeightsFromConfig(cfg.RSR.Weights))

	series, err := scorer.Rolling(ctx, m, ticker)
	if err != nil {
		log.Fatalf("rolling score for %s: %v", ticker, err)
	}

	benchSeries, err := scorer.Rolling(ctx, m, benchmark)
	if err != nil {
		slog.Warn("benchmark series unavailable", "benchmark", benchmark, "err", err)
	}
	benchByDay := make(map[time.Time]float64, len(benchSeries))
	for _, p := range benchSeries {
		benchByDay[p.Session] = p.Score
	}

	fmt.Printf("date,%s,%s\n", ticker, benchmark)
	for _, p := range series {
		if b, ok := benchByDay[p.Session]; ok {
			fmt.Printf("%s,%.4f,%.4f\n", util.FormatDate(p.Session), p.Score, b)
		} else {
			fmt.Printf("%s,%.4f,\n", util.FormatDate(p.Session), p.Score)
		}
	}

	slog.Info("rolling series done", "ticker", ticker, "sessions", len(series))
}
