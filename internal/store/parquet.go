package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/parquet-go/parquet-go"

	"rsrank/internal/domain"
)

// Compile-time interface check.
var _ CloseStore = (*ParquetStore)(nil)

// ParquetStore implements CloseStore using Parquet files on disk, one file
// per symbol and year:
//
//	<DataDir>/closes/<SYMBOL>/<YYYY>.parquet
type ParquetStore struct {
	DataDir string
}

// NewParquetStore creates a new ParquetStore rooted at the given data directory.
func NewParquetStore(dataDir string) *ParquetStore {
	return &ParquetStore{DataDir: dataDir}
}

// CloseRecord is the Parquet schema for daily close data.
type CloseRecord struct {
	Symbol    string  `parquet:"symbol"`
	Timestamp int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms, midnight UTC
	Close     float64 `parquet:"close"`
}

// WriteCloses writes close data grouped by year, merging with any records
// already on disk. New records win on timestamp collisions.
func (s *ParquetStore) WriteCloses(_ context.Context, symbol string, points []domain.PricePoint) error {
	if len(points) == 0 {
		return nil
	}

	groups := make(map[int][]CloseRecord)
	for _, p := range points {
		groups[p.Date.Year()] = append(groups[p.Date.Year()], CloseRecord{
			Symbol:    symbol,
			Timestamp: p.Date.UnixMilli(),
			Close:     p.Close,
		})
	}

	for year, records := range groups {
		path := s.closePath(symbol, year)

		existing, _ := readParquetFile[CloseRecord](path)
		merged := mergeCloseRecords(existing, records)

		if err := writeParquetFile(path, merged); err != nil {
			return fmt.Errorf("writing closes for %s/%d: %w", symbol, year, err)
		}
	}
	return nil
}

// ReadCloses reads the close series for symbol within [start, end] from the
// per-year files, ordered by date ascending.
func (s *ParquetStore) ReadCloses(_ context.Context, symbol string, start, end time.Time) ([]domain.PricePoint, error) {
	var points []domain.PricePoint
	for year := start.Year(); year <= end.Year(); year++ {
		records, err := readParquetFile[CloseRecord](s.closePath(symbol, year))
		if err != nil {
			// No file for this year.
			continue
		}
		for _, r := range records {
			d := time.UnixMilli(r.Timestamp).UTC()
			if d.Before(start) || d.After(end) {
				continue
			}
			points = append(points, domain.PricePoint{Date: d, Close: r.Close})
		}
	}
	return points, nil
}

// ListSymbols lists all symbols that have close data on disk.
func (s *ParquetStore) ListSymbols(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.DataDir, "closes"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var symbols []string
	for _, e := range entries {
		if e.IsDir() {
			symbols = append(symbols, e.Name())
		}
	}
	sort.Strings(symbols)
	return symbols, nil
}

// closePath returns the filesystem path for a close Parquet file.
func (s *ParquetStore) closePath(symbol string, year int) string {
	return filepath.Join(s.DataDir, "closes", symbol, fmt.Sprintf("%d.parquet", year))
}

// ---------------------------------------------------------------------------
// Parquet file helpers
// ---------------------------------------------------------------------------

func writeParquetFile[T any](path string, records []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}

func readParquetFile[T any](path string) ([]T, error) {
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// mergeCloseRecords deduplicates by timestamp, preferring incoming records,
// and sorts ascending.
func mergeCloseRecords(existing, incoming []CloseRecord) []CloseRecord {
	seen := make(map[int64]CloseRecord, len(existing)+len(incoming))
	for _, r := range existing {
		seen[r.Timestamp] = r
	}
	for _, r := range incoming {
		seen[r.Timestamp] = r
	}

	merged := make([]CloseRecord, 0, len(seen))
	for _, r := range seen {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Timestamp < merged[j].Timestamp
	})
	return merged
}
