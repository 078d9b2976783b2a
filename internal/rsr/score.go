// Package rsr implements the RSR momentum composite: a weighted sum of an
// instrument's relative price changes versus four historical anchors
// (3, 6, 9 months and 1 year back), scaled by 100. It also provides the
// rolling per-session variant and the ranking of a basket by score.
package rsr

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rsrank/internal/calendar"
	"rsrank/internal/config"
	"rsrank/internal/prices"
)

// Weights are the composite weights for the four historical anchors. They
// are configuration, not constants, so alternate weightings never touch
// the algorithm.
type Weights struct {
	Q1 float64 // 3 months back
	Q2 float64 // 6 months back
	Q3 float64 // 9 months back
	Y1 float64 // 1 year back
}

// DefaultWeights returns the standard 0.4/0.2/0.2/0.2 weighting.
func DefaultWeights() Weights {
	return Weights{Q1: 0.4, Q2: 0.2, Q3: 0.2, Y1: 0.2}
}

// WeightsFromConfig converts the config representation.
func WeightsFromConfig(w config.Weights) Weights {
	return Weights{Q1: w.Q1, Q2: w.Q2, Q3: w.Q3, Y1: w.Y1}
}

// Anchors are the five session-projected reference dates of one scoring
// invocation. A zero historical anchor means no session existed within the
// calendar lookback for that date; every score computed against it is
// undefined.
type Anchors struct {
	Base time.Time
	Q1   time.Time
	Q2   time.Time
	Q3   time.Time
	Y1   time.Time
}

// RefDates lists the anchors in display order (base, 1y, 3mo, 6mo, 9mo),
// formatted YYYY/MM/DD. Unresolved anchors render as "-".
func (a Anchors) RefDates() []string {
	out := make([]string, 0, 5)
	for _, d := range []time.Time{a.Base, a.Y1, a.Q1, a.Q2, a.Q3} {
		if d.IsZero() {
			out = append(out, "-")
			continue
		}
		out = append(out, d.Format("2006/01/02"))
	}
	return out
}

// Scorer computes RSR scores against one exchange calendar.
type Scorer struct {
	cal     *calendar.Resolver
	weights Weights
}

// NewScorer creates a Scorer using the given calendar and weights.
func NewScorer(cal *calendar.Resolver, w Weights) *Scorer {
	return &Scorer{cal: cal, weights: w}
}

// ResolveBaseDay determines the base session for a run. A zero requested
// date selects the latest matrix date holding any data. A non-zero date is
// projected to the prev-or-same session and then aligned onto the latest
// matrix column at or before it. Errors here are fatal for the run.
func ResolveBaseDay(ctx context.Context, m *prices.Matrix, cal *calendar.Resolver, requested time.Time) (time.Time, error) {
	if requested.IsZero() {
		latest, ok := m.LatestDate()
		if !ok {
			return time.Time{}, errors.New("price matrix holds no data")
		}
		return latest, nil
	}

	s, err := cal.PrevOrSame(ctx, requested)
	if err != nil {
		return time.Time{}, fmt.Errorf("resolving base date: %w", err)
	}
	day, ok := m.AlignOnOrBefore(s)
	if !ok {
		return time.Time{}, fmt.Errorf("no matrix data at or before %s", s.Format("2006-01-02"))
	}
	return day, nil
}

// ResolveAnchors derives the anchor set for base: the base session itself
// plus the four historical dates by calendar-unit subtraction, each
// projected to the prev-or-same session. A base that cannot be resolved is
// an error; a historical anchor with no session (a date before the
// exchange's history) is left zero so dependent scores come out undefined.
func (sc *Scorer) ResolveAnchors(ctx context.Context, base time.Time) (Anchors, error) {
	s0, err := sc.cal.PrevOrSame(ctx, base)
	if err != nil {
		return Anchors{}, fmt.Errorf("resolving base session: %w", err)
	}

	a := Anchors{Base: s0}
	targets := []struct {
		months int
		dst    *time.Time
	}{
		{3, &a.Q1},
		{6, &a.Q2},
		{9, &a.Q3},
		{12, &a.Y1},
	}
	for _, t := range targets {
		// Calendar arithmetic, not trading-day arithmetic.
		target := addMonths(base, -t.months)
		s, err := sc.cal.PrevOrSame(ctx, target)
		if err != nil {
			if errors.Is(err, calendar.ErrNoSession) {
				continue
			}
			return Anchors{}, err
		}
		*t.dst = s
	}
	return a, nil
}

// addMonths shifts d by months, clamping to the last day of the target
// month when d's day does not exist there: May 31 minus three months is
// February 28, not March 3. time.AddDate alone normalizes the overflow
// forward into the next month.
func addMonths(d time.Time, months int) time.Time {
	t := d.AddDate(0, months, 0)
	if t.Day() != d.Day() {
		t = t.AddDate(0, 0, -t.Day())
	}
	return t
}

// ScoreSeries computes the composite for one series at the given anchors.
// ok is false (the score is undefined) when any anchor is unresolved,
// any of the five resolved prices is missing, or any historical price is
// zero. No partial scores.
func (sc *Scorer) ScoreSeries(s *prices.Series, a Anchors) (float64, bool) {
	if s == nil || s.Len() == 0 {
		return 0, false
	}
	if a.Base.IsZero() || a.Q1.IsZero() || a.Q2.IsZero() || a.Q3.IsZero() || a.Y1.IsZero() {
		return 0, false
	}

	p0, _, ok0 := s.ValueOnOrBefore(a.Base)
	pq1, _, ok1 := s.ValueOnOrBefore(a.Q1)
	pq2, _, ok2 := s.ValueOnOrBefore(a.Q2)
	pq3, _, ok3 := s.ValueOnOrBefore(a.Q3)
	p1y, _, ok4 := s.ValueOnOrBefore(a.Y1)

	if !ok0 || !ok1 || !ok2 || !ok3 || !ok4 {
		return 0, false
	}
	// Zero historical prices would divide by zero; treat like missing data.
	if pq1 == 0 || pq2 == 0 || pq3 == 0 || p1y == 0 {
		return 0, false
	}

	w := sc.weights
	score := ((p0-pq1)/pq1*w.Q1 +
		(p0-pq2)/pq2*w.Q2 +
		(p0-pq3)/pq3*w.Q3 +
		(p0-p1y)/p1y*w.Y1) * 100
	return score, true
}

// Score computes the RSR score of one instrument at base. The returned
// error is fatal (base session unresolvable); ok reports whether the score
// is defined.
func (sc *Scorer) Score(ctx context.Context, m *prices.Matrix, ticker string, base time.Time) (score float64, ok bool, err error) {
	a, err := sc.ResolveAnchors(ctx, base)
	if err != nil {
		return 0, false, err
	}
	s, found := m.Series(ticker)
	if !found {
		return 0, false, nil
	}
	score, ok = sc.ScoreSeries(s, a)
	return score, ok, nil
}
