package prices

import (
	"testing"
	"time"

	"rsrank/internal/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seriesOf(t *testing.T, pts ...domain.PricePoint) *Series {
	t.Helper()
	return NewSeries(pts)
}

func TestSeriesOrdering(t *testing.T) {
	s := seriesOf(t,
		domain.PricePoint{Date: day(2024, 3, 4), Close: 120},
		domain.PricePoint{Date: day(2024, 1, 2), Close: 100},
		domain.PricePoint{Date: day(2024, 2, 1), Close: 110},
	)

	pts := s.Points()
	if len(pts) != 3 {
		t.Fatalf("Len = %d, want 3", len(pts))
	}
	for i := 1; i < len(pts); i++ {
		if !pts[i-1].Date.Before(pts[i].Date) {
			t.Errorf("points not strictly increasing at %d: %v, %v", i, pts[i-1].Date, pts[i].Date)
		}
	}
}

func TestSeriesDuplicateDateKeepsLast(t *testing.T) {
	s := seriesOf(t,
		domain.PricePoint{Date: day(2024, 1, 2), Close: 100},
		domain.PricePoint{Date: day(2024, 1, 2), Close: 105},
	)
	if s.Len() != 1 {
		t.Fatalf("Len = %d, want 1", s.Len())
	}
	p, _, ok := s.ValueOnOrBefore(day(2024, 1, 2))
	if !ok || p != 105 {
		t.Errorf("ValueOnOrBefore = %v/%v, want 105", p, ok)
	}
}

func TestValueOnOrBeforeExactMatch(t *testing.T) {
	s := seriesOf(t,
		domain.PricePoint{Date: day(2024, 1, 2), Close: 100},
		domain.PricePoint{Date: day(2024, 1, 9), Close: 110},
	)

	p, used, ok := s.ValueOnOrBefore(day(2024, 1, 9))
	if !ok {
		t.Fatal("expected a price")
	}
	if p != 110 || !used.Equal(day(2024, 1, 9)) {
		t.Errorf("got %v @ %v, want 110 @ 2024-01-09", p, used)
	}
}

func TestValueOnOrBeforeCarryBackward(t *testing.T) {
	s := seriesOf(t,
		domain.PricePoint{Date: day(2024, 1, 2), Close: 100},
		domain.PricePoint{Date: day(2024, 1, 9), Close: 110},
	)

	// A holiday between recorded dates resolves to the prior close.
	p, used, ok := s.ValueOnOrBefore(day(2024, 1, 8))
	if !ok {
		t.Fatal("expected a price")
	}
	if p != 100 || !used.Equal(day(2024, 1, 2)) {
		t.Errorf("got %v @ %v, want 100 @ 2024-01-02", p, used)
	}
}

func TestValueOnOrBeforeMissing(t *testing.T) {
	s := seriesOf(t,
		domain.PricePoint{Date: day(2024, 1, 2), Close: 100},
	)

	// Earlier than every recorded date: Missing.
	if _, _, ok := s.ValueOnOrBefore(day(2023, 12, 29)); ok {
		t.Error("date before all entries should be missing")
	}

	// Empty series: Missing.
	empty := NewSeries(nil)
	if _, _, ok := empty.ValueOnOrBefore(day(2024, 1, 2)); ok {
		t.Error("empty series should be missing")
	}
}

func TestValueOnOrBeforeMonotonic(t *testing.T) {
	s := seriesOf(t,
		domain.PricePoint{Date: day(2024, 1, 2), Close: 100},
		domain.PricePoint{Date: day(2024, 1, 15), Close: 120},
	)

	// Any query date mapping to the same latest-available entry returns the
	// identical price.
	for d := 2; d <= 14; d++ {
		p, used, ok := s.ValueOnOrBefore(day(2024, 1, d))
		if !ok || p != 100 || !used.Equal(day(2024, 1, 2)) {
			t.Errorf("day %d: got %v @ %v (ok=%v), want 100 @ 2024-01-02", d, p, used, ok)
		}
	}
}

func TestSeriesLast(t *testing.T) {
	s := seriesOf(t,
		domain.PricePoint{Date: day(2024, 1, 2), Close: 100},
		domain.PricePoint{Date: day(2024, 3, 1), Close: 130},
	)
	p, ok := s.Last()
	if !ok || p.Close != 130 || !p.Date.Equal(day(2024, 3, 1)) {
		t.Errorf("Last = %+v (ok=%v), want 130 @ 2024-03-01", p, ok)
	}

	if _, ok := NewSeries(nil).Last(); ok {
		t.Error("Last on empty series should report missing")
	}
}

func TestMatrixLatestDateAndAlign(t *testing.T) {
	m := NewMatrix()
	m.Add("7203.T", seriesOf(t,
		domain.PricePoint{Date: day(2024, 1, 2), Close: 100},
		domain.PricePoint{Date: day(2024, 1, 10), Close: 110},
	))
	m.Add("6758.T", seriesOf(t,
		domain.PricePoint{Date: day(2024, 1, 2), Close: 50},
		domain.PricePoint{Date: day(2024, 1, 12), Close: 55},
	))

	latest, ok := m.LatestDate()
	if !ok || !latest.Equal(day(2024, 1, 12)) {
		t.Errorf("LatestDate = %v (ok=%v), want 2024-01-12", latest, ok)
	}

	aligned, ok := m.AlignOnOrBefore(day(2024, 1, 11))
	if !ok || !aligned.Equal(day(2024, 1, 10)) {
		t.Errorf("AlignOnOrBefore = %v (ok=%v), want 2024-01-10", aligned, ok)
	}

	if _, ok := m.AlignOnOrBefore(day(2023, 12, 1)); ok {
		t.Error("AlignOnOrBefore before all columns should fail")
	}
}

func TestMatrixResolve(t *testing.T) {
	m := NewMatrix()
	m.Add("7203.T", NewSeries(nil))
	m.Add("TSE:6758", NewSeries(nil))
	m.Add("9984", NewSeries(nil))

	cases := []struct {
		code string
		want string
	}{
		{"7203", "7203.T"},
		{"6758", "TSE:6758"},
		{"9984", "9984"},
	}
	for _, c := range cases {
		got, ok := m.Resolve(c.code)
		if !ok || got != c.want {
			t.Errorf("Resolve(%q) = %q (ok=%v), want %q", c.code, got, ok, c.want)
		}
	}

	if _, ok := m.Resolve("0000"); ok {
		t.Error("Resolve should fail for an unknown code")
	}
}

func TestMatrixTickerOrder(t *testing.T) {
	m := NewMatrix()
	for _, tk := range []string{"9984.T", "7203.T", "6758.T"} {
		m.Add(tk, NewSeries(nil))
	}
	got := m.Tickers()
	want := []string{"9984.T", "7203.T", "6758.T"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Tickers order = %v, want %v", got, want)
		}
	}
}
