package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"

	"rsrank/internal/util"
)

// AlpacaSource serves US exchange sessions from the Alpaca trading
// calendar API. Calls are paced and retried with backoff.
type AlpacaSource struct {
	client *alpaca.Client
	pacer  *util.Pacer
}

// NewAlpacaSource creates an AlpacaSource with the given credentials.
// perMinute paces the calendar requests.
func NewAlpacaSource(apiKey, apiSecret, baseURL string, perMinute int) *AlpacaSource {
	if perMinute < 1 {
		perMinute = 120
	}
	return &AlpacaSource{
		client: alpaca.NewClient(alpaca.ClientOpts{
			APIKey:    apiKey,
			APISecret: apiSecret,
			BaseURL:   baseURL,
		}),
		pacer: util.NewPacer(perMinute),
	}
}

// SessionsInRange queries the Alpaca calendar for trading days in
// [start, end] and returns them as normalized dates.
func (a *AlpacaSource) SessionsInRange(ctx context.Context, start, end time.Time) ([]time.Time, error) {
	if err := a.pacer.Wait(ctx); err != nil {
		return nil, err
	}

	var days []alpaca.CalendarDay
	err := util.Retry(ctx, 3, 500*time.Millisecond, func() error {
		var err error
		days, err = a.client.GetCalendar(alpaca.GetCalendarRequest{
			Start: start,
			End:   end,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("GetCalendar: %w", err)
	}

	sessions := make([]time.Time, 0, len(days))
	for _, day := range days {
		d, err := time.ParseInLocation("2006-01-02", day.Date, time.UTC)
		if err != nil {
			// Malformed entries from the API are skipped rather than
			// failing the whole range.
			continue
		}
		sessions = append(sessions, d)
	}
	return sessions, nil
}
