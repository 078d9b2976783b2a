// Package domain defines the value types shared between the pricing,
// scoring, and simulation packages.
package domain

import (
	"fmt"
	"time"
)

// DateOnly truncates t to midnight UTC. All dates inside the module are
// normalized this way so that map keys and comparisons are exact.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// PricePoint is one recorded close for an instrument.
type PricePoint struct {
	Date  time.Time
	Close float64
}

// RankEntry is one scored instrument in a ranking, ordered by Score
// descending.
type RankEntry struct {
	Ticker string
	Score  float64
}

// Skipped records an instrument excluded from a ranking or simulation,
// always with a human-readable reason. Pos is the 1-based position of the
// instrument in the input list (zero when the input had no meaningful
// order).
type Skipped struct {
	Pos    int
	Ticker string
	Reason string
}

// ---------------------------------------------------------------------------
// Simulation
// ---------------------------------------------------------------------------

// AllocPolicy selects how an invested amount is converted into shares.
type AllocPolicy string

const (
	// AllocFractional buys fractional shares: shares = invest / buy.
	AllocFractional AllocPolicy = "fractional"

	// AllocWholeShare buys whole shares only: shares = floor(invest / buy),
	// with the remainder kept as idle cash.
	AllocWholeShare AllocPolicy = "1share"

	// AllocRoundLot buys in fixed lots: shares = floor(invest/(buy*lot))*lot,
	// with the remainder kept as idle cash.
	AllocRoundLot AllocPolicy = "lot"

	// AllocSingleShare buys exactly one share regardless of the invest
	// amount; the basis degenerates to the purchase cost itself.
	AllocSingleShare AllocPolicy = "single"
)

// ParseAllocPolicy converts a mode string from config or flags into an
// AllocPolicy. "lot100" is accepted as an alias for the round-lot policy.
func ParseAllocPolicy(s string) (AllocPolicy, error) {
	switch s {
	case "fractional":
		return AllocFractional, nil
	case "1share":
		return AllocWholeShare, nil
	case "lot", "lot100":
		return AllocRoundLot, nil
	case "single":
		return AllocSingleShare, nil
	}
	return "", fmt.Errorf("unknown allocation mode: %q", s)
}

// SortKey selects the ordering of simulation report rows.
type SortKey string

const (
	// SortByPct orders by the raw price-return percentage.
	SortByPct SortKey = "pct"

	// SortByProfitPct orders by the allocation-adjusted profit percentage.
	SortByProfitPct SortKey = "profit_pct"
)

// ParseSortKey converts a sort-key string from config or flags.
func ParseSortKey(s string) (SortKey, error) {
	switch s {
	case "pct":
		return SortByPct, nil
	case "profit_pct":
		return SortByProfitPct, nil
	}
	return "", fmt.Errorf("unknown sort key: %q", s)
}

// SimulationRow is the per-instrument outcome of a backtest. BuyUsed and
// SellUsed are the matrix dates the prices were actually taken from, which
// may be earlier than the requested dates.
type SimulationRow struct {
	Pos    int
	Ticker string

	Buy      float64
	Sell     float64
	BuyUsed  time.Time
	SellUsed time.Time

	Diff float64
	Pct  float64

	Shares   float64
	Cost     float64
	Cash     float64
	ValueNow float64

	Profit    float64
	ProfitPct float64
}

// SimulationTotals aggregates included rows of a simulation. Basis is the
// total amount the percentages are computed against: the summed allocation
// for capital-allocation policies, or the summed purchase cost for the
// single-share policy. Included is the number of rows in the aggregate.
type SimulationTotals struct {
	Basis    float64
	Cost     float64
	Cash     float64
	ValueNow float64

	Profit    float64
	ProfitPct float64

	Included int
}
