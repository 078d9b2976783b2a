// Rank every instrument in the close matrix by momentum score for a given
// base day and write the top-N artifact file.
//
// Usage:
//
//	go run cmd/rsr-rank/main.go [-date 2025-08-29] [-top 40] [-out .]
//
// With no -date the latest session with data is used. The last line printed
// to stdout is the machine-readable status line "YYYY-MM-DD,count".
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"rsrank/internal/calendar"
	"rsrank/internal/config"
	"rsrank/internal/rsr"
	"rsrank/internal/store"
	"rsrank/internal/util"
)

func main() {
	dateArg := flag.String("date", "", "base day (YYYY-MM-DD), empty = latest session with data")
	topN := flag.Int("top", 0, "number of entries to keep (0 = config default)")
	outDir := flag.String("out", ".", "directory for the top-N artifact file")
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
	if *dateArg != "" {
		requested, err = util.ParseDateArg(*dateArg)
		if err != nil {
			log.Fatalf("bad -date: %v", err)
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

	base, err := rsr.ResolveBaseDay(ctx, m, cal, requested)
	if err != nil {
		log.Fatalf("failed to resolve base day: %v", err)
	}

	scorer := rsr.NewScorer(cal, rsr.WeightsFromConfig(cfg.RSR.Weights))
	ranker := rsr.NewRanker(scorer)

	ranked, err := ranker.Rank(ctx, m, m.Tickers(), base, *topN)
	if err != nil {
		log.Fatalf("ranking failed: %v", err)
	}

	slog.Info("ranked", "base_day", util.FormatDate(ranked.BaseDay),
		"scored", ranked.Scored, "skipped", len(ranked.Skipped))

	fmt.Printf("ref dates: %v\n", ranked.Anchors.RefDates())
	for i, e := range ranked.Entries {
		fmt.Printf("%02d | %s : %.4f\n", i+1, e.Ticker, e.Score)
	}

	artifact := filepath.Join(*outDir,
		fmt.Sprintf("top%d_tse_%s.txt", *topN, util.FormatDateCompact(ranked.BaseDay)))
	if err := os.WriteFile(artifact, []byte(ranked.Artifact("TSE")), 0o644); err != nil {
		log.Fatalf("failed to write artifact: %v", err)
	}
	slog.Info("wrote artifact", "path", artifact, "entries", len(ranked.Entries))

	fmt.Println(ranked.StatusLine())
}
