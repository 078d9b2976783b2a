// Package store loads and persists close-price history. The wide CSV
// format is the primary interchange file; SQLite and Parquet backends keep
// the same data in queryable and archival form.
package store

import (
	"context"
	"time"

	"rsrank/internal/domain"
	"rsrank/internal/prices"
)

// CloseStore persists and retrieves daily close prices.
type CloseStore interface {
	// WriteCloses persists a batch of close records.
	WriteCloses(ctx context.Context, symbol string, points []domain.PricePoint) error

	// ReadCloses returns the close series for symbol within [start, end].
	ReadCloses(ctx context.Context, symbol string, start, end time.Time) ([]domain.PricePoint, error)

	// ListSymbols returns all distinct symbols available in the store.
	ListSymbols(ctx context.Context) ([]string, error)
}

// OpenMatrix loads the price matrix from the configured backend: the
// SQLite store when sqlitePath is set, the wide CSV otherwise.
func OpenMatrix(ctx context.Context, sqlitePath, closeCSV string) (*prices.Matrix, error) {
	if sqlitePath == "" {
		return LoadCloseWide(closeCSV)
	}

	db, err := NewSQLiteStore(sqlitePath)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	return LoadMatrix(ctx, db, time.Time{}, time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC))
}

// LoadMatrix assembles a full price matrix from every symbol in the store.
func LoadMatrix(ctx context.Context, cs CloseStore, start, end time.Time) (*prices.Matrix, error) {
	symbols, err := cs.ListSymbols(ctx)
	if err != nil {
		return nil, err
	}

	m := prices.NewMatrix()
	for _, sym := range symbols {
		pts, err := cs.ReadCloses(ctx, sym, start, end)
		if err != nil {
			return nil, err
		}
		if len(pts) == 0 {
			continue
		}
		m.Add(sym, prices.NewSeries(pts))
	}
	return m, nil
}
