package calendar

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"rsrank/internal/config"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// countingSource wraps a TableSource and counts range queries, to verify
// resolver memoization.
type countingSource struct {
	inner *TableSource
	calls int
}

func (c *countingSource) SessionsInRange(ctx context.Context, start, end time.Time) ([]time.Time, error) {
	c.calls++
	return c.inner.SessionsInRange(ctx, start, end)
}

func TestPrevOrSameExact(t *testing.T) {
	src := NewTableSource([]time.Time{
		day(2024, 1, 4), day(2024, 1, 5), day(2024, 1, 9), day(2024, 1, 10),
	})
	r := NewResolver("XTKS", src, 40)

	got, err := r.PrevOrSame(context.Background(), day(2024, 1, 9))
	if err != nil {
		t.Fatalf("PrevOrSame: %v", err)
	}
	if !got.Equal(day(2024, 1, 9)) {
		t.Errorf("PrevOrSame = %v, want 2024-01-09", got)
	}
}

func TestPrevOrSameRollsBack(t *testing.T) {
	src := NewTableSource([]time.Time{day(2024, 1, 4), day(2024, 1, 5)})
	r := NewResolver("XTKS", src, 40)

	// Weekend date resolves to the Friday before it.
	got, err := r.PrevOrSame(context.Background(), day(2024, 1, 7))
	if err != nil {
		t.Fatalf("PrevOrSame: %v", err)
	}
	if !got.Equal(day(2024, 1, 5)) {
		t.Errorf("PrevOrSame = %v, want 2024-01-05", got)
	}
}

func TestPrevOrSameNoSessionInWindow(t *testing.T) {
	src := NewTableSource([]time.Time{day(2020, 1, 6)})
	r := NewResolver("XTKS", src, 40)

	_, err := r.PrevOrSame(context.Background(), day(2024, 1, 10))
	if err == nil {
		t.Fatal("expected error when no session is in the lookback window")
	}
	if !errors.Is(err, ErrNoSession) {
		t.Errorf("error should wrap ErrNoSession, got: %v", err)
	}
}

func TestPrevOrSameLookbackBound(t *testing.T) {
	// Session exists 10 days back but the window is only 5 days.
	src := NewTableSource([]time.Time{day(2024, 1, 1)})
	r := NewResolver("XTKS", src, 5)

	if _, err := r.PrevOrSame(context.Background(), day(2024, 1, 11)); !errors.Is(err, ErrNoSession) {
		t.Errorf("session outside lookback should be ErrNoSession, got: %v", err)
	}
}

func TestPrevOrSameCaches(t *testing.T) {
	cs := &countingSource{inner: NewTableSource([]time.Time{day(2024, 1, 5)})}
	r := NewResolver("XTKS", cs, 40)

	for i := 0; i < 3; i++ {
		if _, err := r.PrevOrSame(context.Background(), day(2024, 1, 7)); err != nil {
			t.Fatalf("PrevOrSame: %v", err)
		}
	}
	if cs.calls != 1 {
		t.Errorf("source queried %d times, want 1 (cached)", cs.calls)
	}
}

func TestSessionsInRange(t *testing.T) {
	src := NewTableSource([]time.Time{
		day(2024, 1, 4), day(2024, 1, 5), day(2024, 1, 9), day(2024, 1, 10),
	})
	r := NewResolver("XTKS", src, 40)

	got, err := r.SessionsInRange(context.Background(), day(2024, 1, 5), day(2024, 1, 9))
	if err != nil {
		t.Fatalf("SessionsInRange: %v", err)
	}
	if len(got) != 2 || !got[0].Equal(day(2024, 1, 5)) || !got[1].Equal(day(2024, 1, 9)) {
		t.Errorf("SessionsInRange = %v, want [2024-01-05 2024-01-09]", got)
	}
}

func TestLoadSessionTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.csv")
	contents := "date\n2024-01-04\n2024-01-05\n\n# holiday gap\n2024-01-09\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing table: %v", err)
	}

	src, err := LoadSessionTable(path)
	if err != nil {
		t.Fatalf("LoadSessionTable: %v", err)
	}
	got, err := src.SessionsInRange(context.Background(), day(2024, 1, 1), day(2024, 1, 31))
	if err != nil {
		t.Fatalf("SessionsInRange: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("loaded %d sessions, want 3", len(got))
	}
}

func TestLoadSessionTableBadLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.csv")
	if err := os.WriteFile(path, []byte("2024-01-04\nnot-a-date\n"), 0o644); err != nil {
		t.Fatalf("writing table: %v", err)
	}
	if _, err := LoadSessionTable(path); err == nil {
		t.Fatal("LoadSessionTable should fail on a malformed line")
	}
}

func TestOpenUnknownSource(t *testing.T) {
	_, err := Open(config.CalendarConfig{Name: "XTKS", Source: "redis"}, config.Alpaca{})
	if err == nil {
		t.Fatal("Open should fail for an unknown source")
	}
}
