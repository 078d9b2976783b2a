package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"rsrank/internal/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

// ---------------------------------------------------------------------------
// Wide CSV
// ---------------------------------------------------------------------------

func TestLoadCloseWide(t *testing.T) {
	path := writeFile(t, "closes.csv",
		"ticker,2025-08-27,2025-08-28,notadate,2025-08-29\n"+
			"7203.T,3000,3050,junk,3300\n"+
			"6758.T,500,,x,450\n")

	m, err := LoadCloseWide(path)
	if err != nil {
		t.Fatalf("LoadCloseWide: %v", err)
	}

	if got := m.Tickers(); len(got) != 2 || got[0] != "7203.T" || got[1] != "6758.T" {
		t.Fatalf("tickers = %v", got)
	}

	s, _ := m.Series("7203.T")
	if s.Len() != 3 {
		t.Errorf("7203.T has %d points, want 3 (bad column dropped)", s.Len())
	}
	v, _, ok := s.ValueOnOrBefore(day(2025, 8, 29))
	if !ok || v != 3300 {
		t.Errorf("7203.T @ 2025-08-29 = %v, %v", v, ok)
	}

	// Empty cell is a gap, not a zero.
	s, _ = m.Series("6758.T")
	if s.Len() != 2 {
		t.Errorf("6758.T has %d points, want 2", s.Len())
	}
	v, used, ok := s.ValueOnOrBefore(day(2025, 8, 28))
	if !ok || v != 500 || !used.Equal(day(2025, 8, 27)) {
		t.Errorf("6758.T @ 2025-08-28 = %v @ %v, %v; want carry-back to 500 @ 2025-08-27", v, used, ok)
	}
}

func TestLoadCloseWideMalformedRow(t *testing.T) {
	// An unbalanced quote mid-file must fail the load outright, not
	// silently truncate the universe at the bad row.
	path := writeFile(t, "broken.csv",
		"ticker,2025-08-27\n"+
			"7203.T,3000\n"+
			"\"6758.T,500\n"+
			"9432.T,100\n")

	if _, err := LoadCloseWide(path); err == nil {
		t.Fatal("malformed row should be an error")
	}
}

func TestLoadCloseWideNoDates(t *testing.T) {
	path := writeFile(t, "bad.csv", "ticker,foo,bar\n7203.T,1,2\n")
	if _, err := LoadCloseWide(path); err == nil {
		t.Fatal("header without date columns should be an error")
	}
}

func TestSaveCloseWideRoundTrip(t *testing.T) {
	src := writeFile(t, "src.csv",
		"ticker,2025-08-27,2025-08-28\n"+
			"7203.T,3000,3050\n"+
			"6758.T,500,\n")

	m, err := LoadCloseWide(src)
	if err != nil {
		t.Fatalf("LoadCloseWide: %v", err)
	}

	dst := filepath.Join(t.TempDir(), "dst.csv")
	if err := SaveCloseWide(dst, m); err != nil {
		t.Fatalf("SaveCloseWide: %v", err)
	}

	m2, err := LoadCloseWide(dst)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := m2.Tickers(); len(got) != 2 {
		t.Fatalf("tickers after round trip = %v", got)
	}
	s, _ := m2.Series("6758.T")
	if s.Len() != 1 {
		t.Errorf("6758.T gap not preserved, got %d points", s.Len())
	}
	s, _ = m2.Series("7203.T")
	v, _, _ := s.ValueOnOrBefore(day(2025, 8, 28))
	if v != 3050 {
		t.Errorf("7203.T @ 2025-08-28 = %v, want 3050", v)
	}
}

// ---------------------------------------------------------------------------
// Code lists
// ---------------------------------------------------------------------------

func TestLoadCodeList(t *testing.T) {
	path := writeFile(t, "top40.txt", "TSE:7203,TSE:6758,TSE:9432,TSE:7203,")
	codes, err := LoadCodeList(path)
	if err != nil {
		t.Fatalf("LoadCodeList: %v", err)
	}
	want := []string{"7203", "6758", "9432"}
	if len(codes) != len(want) {
		t.Fatalf("codes = %v, want %v", codes, want)
	}
	for i := range want {
		if codes[i] != want[i] {
			t.Errorf("codes[%d] = %s, want %s", i, codes[i], want[i])
		}
	}
}

func TestLoadCodeListPlainLines(t *testing.T) {
	path := writeFile(t, "list.txt", "7203\n6758\n# comment with no code here\n")
	codes, err := LoadCodeList(path)
	if err != nil {
		t.Fatalf("LoadCodeList: %v", err)
	}
	if len(codes) != 2 || codes[0] != "7203" || codes[1] != "6758" {
		t.Errorf("codes = %v", codes)
	}
}

func TestLoadCodeListEmpty(t *testing.T) {
	path := writeFile(t, "empty.txt", "nothing useful\n")
	if _, err := LoadCodeList(path); err == nil {
		t.Fatal("file without codes should be an error")
	}
}

// ---------------------------------------------------------------------------
// SQLite
// ---------------------------------------------------------------------------

func openSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "closes.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteWriteRead(t *testing.T) {
	s := openSQLite(t)
	ctx := context.Background()

	pts := []domain.PricePoint{
		{Date: day(2025, 8, 27), Close: 3000},
		{Date: day(2025, 8, 28), Close: 3050},
		{Date: day(2025, 8, 29), Close: 3300},
	}
	if err := s.WriteCloses(ctx, "7203.T", pts); err != nil {
		t.Fatalf("WriteCloses: %v", err)
	}

	got, err := s.ReadCloses(ctx, "7203.T", day(2025, 8, 28), day(2025, 8, 29))
	if err != nil {
		t.Fatalf("ReadCloses: %v", err)
	}
	if len(got) != 2 || got[0].Close != 3050 || got[1].Close != 3300 {
		t.Errorf("range read = %+v", got)
	}

	// Re-writing the same date replaces the value.
	if err := s.WriteCloses(ctx, "7203.T", []domain.PricePoint{{Date: day(2025, 8, 29), Close: 3333}}); err != nil {
		t.Fatalf("WriteCloses (upsert): %v", err)
	}
	got, err = s.ReadCloses(ctx, "7203.T", day(2025, 8, 29), day(2025, 8, 29))
	if err != nil {
		t.Fatalf("ReadCloses: %v", err)
	}
	if len(got) != 1 || got[0].Close != 3333 {
		t.Errorf("after upsert = %+v", got)
	}
}

func TestSQLiteListSymbols(t *testing.T) {
	s := openSQLite(t)
	ctx := context.Background()

	for _, sym := range []string{"9432.T", "6758.T"} {
		if err := s.WriteCloses(ctx, sym, []domain.PricePoint{{Date: day(2025, 8, 29), Close: 1}}); err != nil {
			t.Fatalf("WriteCloses(%s): %v", sym, err)
		}
	}

	symbols, err := s.ListSymbols(ctx)
	if err != nil {
		t.Fatalf("ListSymbols: %v", err)
	}
	if len(symbols) != 2 || symbols[0] != "6758.T" || symbols[1] != "9432.T" {
		t.Errorf("symbols = %v", symbols)
	}
}

func TestLoadMatrixFromSQLite(t *testing.T) {
	s := openSQLite(t)
	ctx := context.Background()

	if err := s.WriteCloses(ctx, "7203.T", []domain.PricePoint{
		{Date: day(2025, 8, 28), Close: 3050},
		{Date: day(2025, 8, 29), Close: 3300},
	}); err != nil {
		t.Fatalf("WriteCloses: %v", err)
	}

	m, err := LoadMatrix(ctx, s, day(2025, 1, 1), day(2025, 12, 31))
	if err != nil {
		t.Fatalf("LoadMatrix: %v", err)
	}
	key, ok := m.Resolve("7203")
	if !ok || key != "7203.T" {
		t.Fatalf("Resolve(7203) = %q, %v", key, ok)
	}
	sr, _ := m.Series(key)
	if sr.Len() != 2 {
		t.Errorf("series has %d points, want 2", sr.Len())
	}
}

// ---------------------------------------------------------------------------
// Parquet
// ---------------------------------------------------------------------------

func TestParquetWriteRead(t *testing.T) {
	s := NewParquetStore(t.TempDir())
	ctx := context.Background()

	if err := s.WriteCloses(ctx, "7203.T", []domain.PricePoint{
		{Date: day(2024, 12, 30), Close: 3000},
		{Date: day(2025, 8, 29), Close: 3300},
	}); err != nil {
		t.Fatalf("WriteCloses: %v", err)
	}

	// Spans two year files.
	got, err := s.ReadCloses(ctx, "7203.T", day(2024, 1, 1), day(2025, 12, 31))
	if err != nil {
		t.Fatalf("ReadCloses: %v", err)
	}
	if len(got) != 2 || got[0].Close != 3000 || got[1].Close != 3300 {
		t.Fatalf("read = %+v", got)
	}

	// Merge: a second write to the same year keeps earlier records and
	// overwrites colliding dates.
	if err := s.WriteCloses(ctx, "7203.T", []domain.PricePoint{
		{Date: day(2025, 8, 28), Close: 3050},
		{Date: day(2025, 8, 29), Close: 3333},
	}); err != nil {
		t.Fatalf("WriteCloses (merge): %v", err)
	}
	got, err = s.ReadCloses(ctx, "7203.T", day(2025, 1, 1), day(2025, 12, 31))
	if err != nil {
		t.Fatalf("ReadCloses: %v", err)
	}
	if len(got) != 2 || got[0].Close != 3050 || got[1].Close != 3333 {
		t.Errorf("after merge = %+v", got)
	}

	symbols, err := s.ListSymbols(ctx)
	if err != nil {
		t.Fatalf("ListSymbols: %v", err)
	}
	if len(symbols) != 1 || symbols[0] != "7203.T" {
		t.Errorf("symbols = %v", symbols)
	}
}

func TestParquetEmptyStore(t *testing.T) {
	s := NewParquetStore(t.TempDir())
	ctx := context.Background()

	symbols, err := s.ListSymbols(ctx)
	if err != nil || symbols != nil {
		t.Errorf("empty store: symbols = %v, err = %v", symbols, err)
	}
	got, err := s.ReadCloses(ctx, "7203.T", day(2025, 1, 1), day(2025, 12, 31))
	if err != nil || got != nil {
		t.Errorf("empty store: points = %v, err = %v", got, err)
	}
}
