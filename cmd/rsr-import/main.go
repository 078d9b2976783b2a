// Ingest a wide close CSV into the SQLite and/or Parquet close stores so
// the other tools can read from a database instead of re-parsing the CSV.
//
// Usage:
//
//	go run cmd/rsr-import/main.go [-csv prices_close_wide.csv] [-sqlite closes.db] [-parquet data]
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"

	"rsrank/internal/config"
	"rsrank/internal/store"
	"rsrank/internal/util"
)

func main() {
	csvPath := flag.String("csv", "", "wide close CSV to ingest (empty = config default)")
	sqlitePath := flag.String("sqlite", "", "SQLite database path (empty = config default)")
	parquetDir := flag.String("parquet", "", "Parquet data directory (empty = config default)")
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

	if *csvPath == "" {
		*csvPath = cfg.Data.CloseCSV
	}
	if *sqlitePath == "" {
		*sqlitePath = cfg.Data.SQLitePath
	}
	if *parquetDir == "" {
		*parquetDir = cfg.Data.DataDir
	}
	if *sqlitePath == "" && *parquetDir == "" {
		log.Fatalf("nothing to do: set -sqlite and/or -parquet (or data.sqlite_path / data.data_dir in config)")
	}

	m, err := store.LoadCloseWide(*csvPath)
	if err != nil {
		log.Fatalf("failed to load close matrix: %v", err)
	}

	ctx := context.Background()

	var sinks []store.CloseStore
	if *sqlitePath != "" {
		db, err := store.NewSQLiteStore(*sqlitePath)
		if err != nil {
			log.Fatalf("failed to open sqlite store: %v", err)
		}
		defer db.Close()
		sinks = append(sinks, db)
	}
	if *parquetDir != "" {
		sinks = append(sinks, store.NewParquetStore(*parquetDir))
	}

	written := 0
	for _, ticker := range m.Tickers() {
		s, _ := m.Series(ticker)
		pts := s.Points()
		for _, sink := range sinks {
			if err := sink.WriteCloses(ctx, ticker, pts); err != nil {
				log.Fatalf("failed to write closes for %s: %v", ticker, err)
			}
		}
		written += len(pts)
	}

	slog.Info("import complete", "csv", *csvPath,
		"symbols", len(m.Tickers()), "closes", written, "sinks", len(sinks))
}
