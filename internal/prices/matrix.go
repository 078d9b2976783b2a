package prices

import (
	"sort"
	"time"

	"rsrank/internal/domain"
)

// Matrix maps instrument tickers to their close-price series. All series
// share the candidate date domain (the matrix columns) but each series may
// have gaps independently. Tickers keep their insertion order so ranking
// ties stay deterministic for a fixed input.
type Matrix struct {
	tickers []string
	series  map[string]*Series
	columns []time.Time // sorted ascending
}

// NewMatrix creates an empty Matrix.
func NewMatrix() *Matrix {
	return &Matrix{series: make(map[string]*Series)}
}

// Add registers a series under ticker. Adding the same ticker twice
// replaces the series but keeps its original position. The matrix column
// set is extended with the series' dates.
func (m *Matrix) Add(ticker string, s *Series) {
	if _, exists := m.series[ticker]; !exists {
		m.tickers = append(m.tickers, ticker)
	}
	m.series[ticker] = s
	m.mergeColumns(s.dates)
}

func (m *Matrix) mergeColumns(dates []time.Time) {
	if len(dates) == 0 {
		return
	}
	seen := make(map[time.Time]struct{}, len(m.columns)+len(dates))
	for _, d := range m.columns {
		seen[d] = struct{}{}
	}
	for _, d := range dates {
		seen[d] = struct{}{}
	}
	cols := make([]time.Time, 0, len(seen))
	for d := range seen {
		cols = append(cols, d)
	}
	sort.Slice(cols, func(i, j int) bool { return cols[i].Before(cols[j]) })
	m.columns = cols
}

// Tickers returns the tickers in insertion order.
func (m *Matrix) Tickers() []string {
	out := make([]string, len(m.tickers))
	copy(out, m.tickers)
	return out
}

// Series returns the series for ticker. ok is false when the ticker is not
// in the matrix.
func (m *Matrix) Series(ticker string) (*Series, bool) {
	s, ok := m.series[ticker]
	return s, ok
}

// Columns returns the matrix's sorted candidate date domain.
func (m *Matrix) Columns() []time.Time {
	out := make([]time.Time, len(m.columns))
	copy(out, m.columns)
	return out
}

// LatestDate returns the latest column holding data for any instrument.
// ok is false for an empty matrix.
func (m *Matrix) LatestDate() (time.Time, bool) {
	var latest time.Time
	found := false
	for _, s := range m.series {
		if p, ok := s.Last(); ok && (!found || p.Date.After(latest)) {
			latest = p.Date
			found = true
		}
	}
	return latest, found
}

// AlignOnOrBefore returns the latest matrix column at or before day. It
// pulls a calendar-resolved session onto a date the matrix actually has,
// covering sessions where no close was recorded. ok is false when no
// column is at or before day.
func (m *Matrix) AlignOnOrBefore(day time.Time) (time.Time, bool) {
	day = domain.DateOnly(day)
	i := sort.Search(len(m.columns), func(i int) bool {
		return m.columns[i].After(day)
	})
	if i == 0 {
		return time.Time{}, false
	}
	return m.columns[i-1], true
}
