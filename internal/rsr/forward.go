package rsr

import (
	"context"
	"fmt"
	"sort"
	"time"

	"rsrank/internal/prices"
)

// ForwardResult pairs an instrument's score at a start day with its price
// return to a horizon some months ahead. Profit is undefined (HasProfit
// false) when the start price is zero or no horizon price exists.
type ForwardResult struct {
	Ticker    string
	Score     float64
	Profit    float64
	HasProfit bool
}

// ScoreWithForwardReturn scores every instrument at the session for start
// and pairs each defined score with the instrument's profit percentage to
// the session horizonMonths later. Results are ordered by score
// descending. Used for trend/forward-return studies.
func (r *Ranker) ScoreWithForwardReturn(ctx context.Context, m *prices.Matrix, start time.Time, horizonMonths int) (time.Time, []ForwardResult, error) {
	base, err := ResolveBaseDay(ctx, m, r.scorer.cal, start)
	if err != nil {
		return time.Time{}, nil, err
	}

	anchors, err := r.scorer.ResolveAnchors(ctx, base)
	if err != nil {
		return time.Time{}, nil, err
	}

	futureSession, err := r.scorer.cal.PrevOrSame(ctx, addMonths(base, horizonMonths))
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("resolving horizon session: %w", err)
	}
	future, ok := m.AlignOnOrBefore(futureSession)
	if !ok {
		return time.Time{}, nil, fmt.Errorf("no matrix data at or before horizon %s", futureSession.Format("2006-01-02"))
	}

	var results []ForwardResult
	for _, ticker := range m.Tickers() {
		s, ok := m.Series(ticker)
		if !ok || s.Len() == 0 {
			continue
		}
		score, ok := r.scorer.ScoreSeries(s, anchors)
		if !ok {
			continue
		}

		res := ForwardResult{Ticker: ticker, Score: score}
		p0, _, ok0 := s.ValueOnOrBefore(anchors.Base)
		pf, _, okf := s.ValueOnOrBefore(future)
		if ok0 && okf && p0 != 0 {
			res.Profit = (pf - p0) / p0 * 100
			res.HasProfit = true
		}
		results = append(results, res)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return base, results, nil
}
