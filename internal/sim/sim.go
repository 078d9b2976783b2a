// Package sim implements the backtest/allocation simulator: given a code
// list and a buy/sell date pair it resolves point-in-time prices from the
// matrix and computes per-instrument and aggregate profit under a
// selectable share-rounding policy.
package sim

import (
	"fmt"
	"math"
	"sort"
	"time"

	"rsrank/internal/domain"
	"rsrank/internal/prices"
)

// Skip reasons used by the simulator.
const (
	ReasonNotInMatrix = "row not found in price matrix"
	ReasonNoBuyPrice  = "no data at or before buy date"
	ReasonNoSellPrice = "no data at or before sell date"
	ReasonEmptySeries = "series is empty"
	ReasonZeroBuy     = "buy price is zero"
)

// Request parameterizes one simulation run.
type Request struct {
	BuyDate time.Time

	// SellDate bounds the sell-side lookup. A zero SellDate selects the
	// "vs latest" mode: the chronologically last recorded price of each
	// series, not bounded by any date.
	SellDate time.Time

	Policy domain.AllocPolicy
	Lot    int     // round-lot size, used by AllocRoundLot
	Invest float64 // invest amount per instrument

	SortBy domain.SortKey
}

// Result holds the rows, skip set, and aggregate totals of one run. Rows
// are sorted by the requested key, descending; aggregates cover included
// rows only.
type Result struct {
	Rows    []domain.SimulationRow
	Skipped []domain.Skipped
	Totals  domain.SimulationTotals
}

// Run simulates buying each listed code at the buy date and valuing it at
// the sell date (or the latest close). Codes that cannot be priced are
// reported in Skipped with a reason and excluded from the totals.
func Run(m *prices.Matrix, codes []string, req Request) (*Result, error) {
	if !req.SellDate.IsZero() && req.SellDate.Before(req.BuyDate) {
		return nil, fmt.Errorf("sell date %s is before buy date %s",
			req.SellDate.Format("2006-01-02"), req.BuyDate.Format("2006-01-02"))
	}
	if req.Policy == domain.AllocRoundLot && req.Lot < 1 {
		return nil, fmt.Errorf("round-lot policy needs a positive lot size")
	}
	// The single-share policy ignores the invest amount; every other
	// policy divides by it when deriving shares and percentages.
	if req.Policy != domain.AllocSingleShare && req.Invest <= 0 {
		return nil, fmt.Errorf("allocation mode %q needs a positive invest amount", req.Policy)
	}

	res := &Result{}

	for pos, code := range codes {
		pos := pos + 1

		ticker, ok := m.Resolve(code)
		if !ok {
			res.Skipped = append(res.Skipped, domain.Skipped{Pos: pos, Ticker: code, Reason: ReasonNotInMatrix})
			continue
		}
		s, _ := m.Series(ticker)

		buy, buyUsed, ok := s.ValueOnOrBefore(req.BuyDate)
		if !ok {
			res.Skipped = append(res.Skipped, domain.Skipped{Pos: pos, Ticker: ticker, Reason: ReasonNoBuyPrice})
			continue
		}

		var sell float64
		var sellUsed time.Time
		if req.SellDate.IsZero() {
			p, ok := s.Last()
			if !ok {
				res.Skipped = append(res.Skipped, domain.Skipped{Pos: pos, Ticker: ticker, Reason: ReasonEmptySeries})
				continue
			}
			sell, sellUsed = p.Close, p.Date
		} else {
			sell, sellUsed, ok = s.ValueOnOrBefore(req.SellDate)
			if !ok {
				res.Skipped = append(res.Skipped, domain.Skipped{Pos: pos, Ticker: ticker, Reason: ReasonNoSellPrice})
				continue
			}
		}

		if buy == 0 {
			res.Skipped = append(res.Skipped, domain.Skipped{Pos: pos, Ticker: ticker, Reason: ReasonZeroBuy})
			continue
		}

		row := domain.SimulationRow{
			Pos:      pos,
			Ticker:   ticker,
			Buy:      buy,
			Sell:     sell,
			BuyUsed:  buyUsed,
			SellUsed: sellUsed,
			Diff:     sell - buy,
			Pct:      (sell - buy) / buy * 100,
		}
		allocate(&row, req)
		res.Rows = append(res.Rows, row)
	}

	sortRows(res.Rows, req.SortBy)
	res.Totals = totals(res.Rows, req)
	return res, nil
}

// allocate fills the share/cost/cash/value fields of row per the policy.
func allocate(row *domain.SimulationRow, req Request) {
	switch req.Policy {
	case domain.AllocFractional:
		row.Shares = req.Invest / row.Buy
		row.Cost = req.Invest
		row.Cash = 0

	case domain.AllocWholeShare:
		row.Shares = math.Floor(req.Invest / row.Buy)
		row.Cost = row.Shares * row.Buy
		row.Cash = req.Invest - row.Cost

	case domain.AllocRoundLot:
		lot := float64(req.Lot)
		lots := math.Floor(req.Invest / (row.Buy * lot))
		row.Shares = lots * lot
		row.Cost = row.Shares * row.Buy
		row.Cash = req.Invest - row.Cost

	case domain.AllocSingleShare:
		row.Shares = 1
		row.Cost = row.Buy
		row.Cash = 0
	}

	row.ValueNow = row.Shares*row.Sell + row.Cash

	basis := req.Invest
	if req.Policy == domain.AllocSingleShare {
		basis = row.Cost
	}
	row.Profit = row.ValueNow - basis
	row.ProfitPct = row.Profit / basis * 100
}

func sortRows(rows []domain.SimulationRow, key domain.SortKey) {
	sort.SliceStable(rows, func(i, j int) bool {
		if key == domain.SortByProfitPct {
			return rows[i].ProfitPct > rows[j].ProfitPct
		}
		return rows[i].Pct > rows[j].Pct
	})
}

// totals aggregates included rows. The percentage derives from the summed
// basis, not an average of row percentages, so small-basis instruments do
// not dominate it.
func totals(rows []domain.SimulationRow, req Request) domain.SimulationTotals {
	t := domain.SimulationTotals{Included: len(rows)}

	for _, r := range rows {
		basis := req.Invest
		if req.Policy == domain.AllocSingleShare {
			basis = r.Cost
		}
		t.Basis += basis
		t.Cost += r.Cost
		t.Cash += r.Cash
		t.ValueNow += r.ValueNow
	}

	t.Profit = t.ValueNow - t.Basis
	if t.Basis != 0 {
		t.ProfitPct = t.Profit / t.Basis * 100
	}
	return t
}

// BenchmarkReturn computes the buy-and-hold return percentage of a single
// instrument (typically the index benchmark) between two dates, using
// carry-backward resolution on both legs.
func BenchmarkReturn(m *prices.Matrix, ticker string, buyDate, sellDate time.Time) (float64, error) {
	if sellDate.Before(buyDate) {
		return 0, fmt.Errorf("sell date is before buy date")
	}

	key, ok := m.Resolve(ticker)
	if !ok {
		key = ticker
	}
	s, ok := m.Series(key)
	if !ok || s.Len() == 0 {
		return 0, fmt.Errorf("no data for %s", ticker)
	}

	buy, _, ok := s.ValueOnOrBefore(buyDate)
	if !ok {
		return 0, fmt.Errorf("%s: %s", ticker, ReasonNoBuyPrice)
	}
	sell, _, ok := s.ValueOnOrBefore(sellDate)
	if !ok {
		return 0, fmt.Errorf("%s: %s", ticker, ReasonNoSellPrice)
	}
	if buy == 0 {
		return 0, fmt.Errorf("%s: %s", ticker, ReasonZeroBuy)
	}
	return (sell - buy) / buy * 100, nil
}
