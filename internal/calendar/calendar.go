// Package calendar resolves arbitrary dates to trading sessions of a named
// exchange calendar. Session data comes from a Source collaborator (an
// exported session table or the Alpaca calendar API); the Resolver adds the
// bounded prev-or-same lookback rule and caching on top.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"rsrank/internal/config"
	"rsrank/internal/domain"
)

// ErrNoSession is returned when no valid session exists within the
// resolver's lookback window. Callers treat it as fatal for the run's base
// date and as a per-instrument skip for derived anchor dates.
var ErrNoSession = errors.New("no trading session in lookback window")

// Source yields the ordered set of valid sessions within a date range,
// inclusive on both ends.
type Source interface {
	SessionsInRange(ctx context.Context, start, end time.Time) ([]time.Time, error)
}

// Resolver answers prev-or-same session queries against one named exchange
// calendar, searching a bounded lookback window. Results are memoized;
// session resolution for a fixed (calendar, date) pair is referentially
// pure.
type Resolver struct {
	name     string
	src      Source
	lookback int // calendar days

	mu    sync.Mutex
	cache map[time.Time]time.Time
}

// NewResolver creates a Resolver for the named calendar over src.
// lookbackDays bounds the search window; values below 1 fall back to the
// 40-day default.
func NewResolver(name string, src Source, lookbackDays int) *Resolver {
	if lookbackDays < 1 {
		lookbackDays = 40
	}
	return &Resolver{
		name:     name,
		src:      src,
		lookback: lookbackDays,
		cache:    make(map[time.Time]time.Time),
	}
}

// Name returns the exchange calendar identifier.
func (r *Resolver) Name() string { return r.name }

// PrevOrSame returns the latest session at or before day, searching at most
// the lookback window. ErrNoSession is wrapped in the error when the window
// holds no session.
func (r *Resolver) PrevOrSame(ctx context.Context, day time.Time) (time.Time, error) {
	day = domain.DateOnly(day)

	r.mu.Lock()
	if s, ok := r.cache[day]; ok {
		r.mu.Unlock()
		return s, nil
	}
	r.mu.Unlock()

	start := day.AddDate(0, 0, -r.lookback)
	sessions, err := r.src.SessionsInRange(ctx, start, day)
	if err != nil {
		return time.Time{}, fmt.Errorf("calendar %s: sessions in range: %w", r.name, err)
	}
	if len(sessions) == 0 {
		return time.Time{}, fmt.Errorf("calendar %s: %s: %w", r.name, day.Format("2006-01-02"), ErrNoSession)
	}
	s := domain.DateOnly(sessions[len(sessions)-1])

	r.mu.Lock()
	r.cache[day] = s
	r.mu.Unlock()
	return s, nil
}

// SessionsInRange returns every session in [start, end], normalized to date
// precision. Used by the rolling scorer to enumerate a trailing window.
func (r *Resolver) SessionsInRange(ctx context.Context, start, end time.Time) ([]time.Time, error) {
	sessions, err := r.src.SessionsInRange(ctx, domain.DateOnly(start), domain.DateOnly(end))
	if err != nil {
		return nil, fmt.Errorf("calendar %s: sessions in range: %w", r.name, err)
	}
	out := make([]time.Time, len(sessions))
	for i, s := range sessions {
		out[i] = domain.DateOnly(s)
	}
	return out, nil
}

// Open builds a Resolver from configuration. Source "csv" reads an exported
// session table; "alpaca" queries the Alpaca calendar API. An unknown
// source name is a configuration error.
func Open(cal config.CalendarConfig, alp config.Alpaca) (*Resolver, error) {
	switch cal.Source {
	case "csv":
		src, err := LoadSessionTable(cal.SessionsCSV)
		if err != nil {
			return nil, fmt.Errorf("calendar %s: %w", cal.Name, err)
		}
		return NewResolver(cal.Name, src, cal.LookbackDays), nil

	case "alpaca":
		src := NewAlpacaSource(alp.APIKey, alp.APISecret, alp.BaseURL, cal.RateLimitPerMin)
		return NewResolver(cal.Name, src, cal.LookbackDays), nil
	}
	return nil, fmt.Errorf("calendar %s: unknown source %q", cal.Name, cal.Source)
}
