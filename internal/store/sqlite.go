package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"rsrank/internal/domain"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface check.
var _ CloseStore = (*SQLiteStore)(nil)

const closesSchema = `
CREATE TABLE IF NOT EXISTS closes (
	symbol TEXT NOT NULL,
	date   TEXT NOT NULL,
	close  REAL NOT NULL,
	PRIMARY KEY (symbol, date)
);
CREATE INDEX IF NOT EXISTS idx_closes_date ON closes (date);
`

// SQLiteStore implements CloseStore backed by a SQLite database. Dates are
// stored as YYYY-MM-DD text so range queries compare lexicographically.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures
// the closes table exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(closesSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating closes table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// WriteCloses upserts the given points for symbol in one transaction.
func (s *SQLiteStore) WriteCloses(ctx context.Context, symbol string, points []domain.PricePoint) error {
	if len(points) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO closes (symbol, date, close) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range points {
		if _, err := stmt.ExecContext(ctx, symbol, p.Date.Format("2006-01-02"), p.Close); err != nil {
			return fmt.Errorf("inserting close %s/%s: %w", symbol, p.Date.Format("2006-01-02"), err)
		}
	}
	return tx.Commit()
}

// ReadCloses returns the close series for symbol within [start, end],
// ordered by date ascending.
func (s *SQLiteStore) ReadCloses(ctx context.Context, symbol string, start, end time.Time) ([]domain.PricePoint, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT date, close FROM closes WHERE symbol = ? AND date >= ? AND date <= ? ORDER BY date`,
		symbol, start.Format("2006-01-02"), end.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []domain.PricePoint
	for rows.Next() {
		var dateStr string
		var close float64
		if err := rows.Scan(&dateStr, &close); err != nil {
			return nil, err
		}
		d, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return nil, fmt.Errorf("parsing stored date %q: %w", dateStr, err)
		}
		points = append(points, domain.PricePoint{Date: d, Close: close})
	}
	return points, rows.Err()
}

// ListSymbols returns all distinct symbols in the closes table.
func (s *SQLiteStore) ListSymbols(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT symbol FROM closes ORDER BY symbol`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var sym string
		if err := rows.Scan(&sym); err != nil {
			return nil, err
		}
		symbols = append(symbols, sym)
	}
	return symbols, rows.Err()
}
