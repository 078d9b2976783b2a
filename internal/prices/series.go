// Package prices holds the in-memory close-price matrix and its
// point-in-time resolution rules. The matrix is read-only once loaded;
// every downstream computation works against it without mutation.
package prices

import (
	"math"
	"sort"
	"time"

	"rsrank/internal/domain"
)

// Series is an ordered close-price series for one instrument. Dates are
// strictly increasing and unique; iteration order equals chronological
// order. Gaps (dates with no recorded close) are simply not present.
type Series struct {
	dates  []time.Time
	closes []float64
}

// NewSeries builds a Series from unordered points. Points are normalized to
// date precision and sorted; duplicate dates keep the last value seen;
// non-finite closes are dropped.
func NewSeries(points []domain.PricePoint) *Series {
	byDate := make(map[time.Time]float64, len(points))
	for _, p := range points {
		if math.IsNaN(p.Close) || math.IsInf(p.Close, 0) {
			continue
		}
		byDate[domain.DateOnly(p.Date)] = p.Close
	}

	dates := make([]time.Time, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	closes := make([]float64, len(dates))
	for i, d := range dates {
		closes[i] = byDate[d]
	}
	return &Series{dates: dates, closes: closes}
}

// Len returns the number of recorded closes.
func (s *Series) Len() int { return len(s.dates) }

// Points returns the series as a chronological slice of price points.
func (s *Series) Points() []domain.PricePoint {
	pts := make([]domain.PricePoint, len(s.dates))
	for i := range s.dates {
		pts[i] = domain.PricePoint{Date: s.dates[i], Close: s.closes[i]}
	}
	return pts
}

// Last returns the chronologically last recorded point. ok is false for an
// empty series. This is the "vs latest" price, not bounded by any date.
func (s *Series) Last() (domain.PricePoint, bool) {
	if len(s.dates) == 0 {
		return domain.PricePoint{}, false
	}
	n := len(s.dates) - 1
	return domain.PricePoint{Date: s.dates[n], Close: s.closes[n]}, true
}

// ValueOnOrBefore returns the close at the greatest recorded date at or
// before target, along with the date it was taken from. ok is false when
// the series is empty or every recorded date is after target.
//
// The lookup is a binary search; the rolling scorer calls this once per
// anchor per session, so it must stay sublinear.
func (s *Series) ValueOnOrBefore(target time.Time) (price float64, used time.Time, ok bool) {
	target = domain.DateOnly(target)

	// First index with date > target.
	i := sort.Search(len(s.dates), func(i int) bool {
		return s.dates[i].After(target)
	})
	if i == 0 {
		return 0, time.Time{}, false
	}
	return s.closes[i-1], s.dates[i-1], true
}
