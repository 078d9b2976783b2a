package sim

import (
	"fmt"
	"strings"

	"rsrank/internal/domain"
)

// Report renders the run as the line-oriented text report: one line per
// included instrument, a skipped section with reasons, and the aggregate
// totals with the included-subset size. Numeric fields carry two decimals
// and thousands separators; percentages a trailing '%'.
func Report(res *Result, req Request) string {
	var lines []string

	lines = append(lines, "----")
	lines = append(lines, conditionsLine(req))
	lines = append(lines, "")

	single := req.Policy == domain.AllocSingleShare
	for _, r := range res.Rows {
		line := fmt.Sprintf("%02d | %s : %s, %s, %s, %s",
			r.Pos, r.Ticker,
			formatAmount(r.Buy), formatAmount(r.Sell), formatAmount(r.Diff), formatPct(r.Pct))
		if single {
			line += fmt.Sprintf(" (buy_used=%s, sell_used=%s)",
				r.BuyUsed.Format("2006-01-02"), r.SellUsed.Format("2006-01-02"))
		} else {
			line += fmt.Sprintf(" | shares=%.4f, cost=%s, cash=%s, value=%s, profit=%s, profit_pct=%s",
				r.Shares, formatAmount(r.Cost), formatAmount(r.Cash),
				formatAmount(r.ValueNow), formatAmount(r.Profit), formatPct(r.ProfitPct))
		}
		lines = append(lines, line)
	}

	if len(res.Skipped) > 0 {
		lines = append(lines, "", "---- skipped ----")
		for _, sk := range res.Skipped {
			lines = append(lines, fmt.Sprintf("%02d | %s : (%s)", sk.Pos, sk.Ticker, sk.Reason))
		}
	}

	t := res.Totals
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("total (allocated) : %s", formatAmount(t.Basis)))
	lines = append(lines, fmt.Sprintf("total (cost)      : %s", formatAmount(t.Cost)))
	lines = append(lines, fmt.Sprintf("total (cash)      : %s", formatAmount(t.Cash)))
	lines = append(lines, fmt.Sprintf("total (value)     : %s", formatAmount(t.ValueNow)))
	lines = append(lines, fmt.Sprintf("total (profit)    : %s", formatAmount(t.Profit)))
	lines = append(lines, fmt.Sprintf("total (profit %%)  : %s  (n=%d)", formatPct(t.ProfitPct), t.Included))
	lines = append(lines, "----")

	return strings.Join(lines, "\n")
}

func conditionsLine(req Request) string {
	sell := "latest"
	if !req.SellDate.IsZero() {
		sell = req.SellDate.Format("2006-01-02")
	}

	if req.Policy == domain.AllocSingleShare {
		return fmt.Sprintf("conditions: 1 share each / buy=%s / sell=%s / sort=%s",
			req.BuyDate.Format("2006-01-02"), sell, req.SortBy)
	}
	mode := string(req.Policy)
	if req.Policy == domain.AllocRoundLot {
		mode = fmt.Sprintf("lot%d", req.Lot)
	}
	return fmt.Sprintf("conditions: invest=%s per instrument / mode=%s / buy=%s / sell=%s / sort=%s",
		formatAmount(req.Invest), mode, req.BuyDate.Format("2006-01-02"), sell, req.SortBy)
}
