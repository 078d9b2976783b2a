package rsr

import (
	"context"
	"fmt"
	"time"

	"rsrank/internal/prices"
)

// Point is one defined score in a rolling series.
type Point struct {
	Session time.Time
	Score   float64
}

// Rolling scores one instrument at every session of its trailing one-year
// window: the window ends at the instrument's latest recorded date and
// starts at the same calendar date a year earlier. Sessions whose score is
// undefined are dropped, not kept as gaps, so callers must not assume a
// point per session. The result is a pure function of the inputs and can
// be regenerated identically.
func (sc *Scorer) Rolling(ctx context.Context, m *prices.Matrix, ticker string) ([]Point, error) {
	s, ok := m.Series(ticker)
	if !ok || s.Len() == 0 {
		return nil, fmt.Errorf("no data for %s", ticker)
	}

	last, _ := s.Last()
	end := last.Date
	start := addMonths(end, -12)

	sessions, err := sc.cal.SessionsInRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	points := make([]Point, 0, len(sessions))
	for _, session := range sessions {
		a, err := sc.ResolveAnchors(ctx, session)
		if err != nil {
			return nil, err
		}
		score, ok := sc.ScoreSeries(s, a)
		if !ok {
			continue
		}
		points = append(points, Point{Session: session, Score: score})
	}
	return points, nil
}
