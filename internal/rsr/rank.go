package rsr

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"rsrank/internal/domain"
	"rsrank/internal/prices"
)

// Skip reasons used by the ranker. Every excluded instrument carries one.
const (
	ReasonNoData       = "no data"
	ReasonInsufficient = "insufficient data or zero denominator"
)

// RankedList is the result of ranking a basket at one base day. Entries
// are sorted by score descending, ties keeping input order; Skipped lists
// every excluded instrument with its reason. A RankedList is never mutated
// after construction.
type RankedList struct {
	BaseDay time.Time
	Anchors Anchors

	Entries []domain.RankEntry
	Skipped []domain.Skipped

	// Scored is the number of instruments that received a score before
	// any top-N truncation.
	Scored int
}

// Ranker scores and orders baskets of instruments.
type Ranker struct {
	scorer *Scorer
}

// NewRanker creates a Ranker over the given scorer.
func NewRanker(scorer *Scorer) *Ranker {
	return &Ranker{scorer: scorer}
}

// Rank scores every ticker at base, sorts the defined scores descending
// (stable on exact ties), and truncates to topN when topN > 0. The skipped
// set is always complete. The returned error is fatal: the base session
// could not be resolved.
func (r *Ranker) Rank(ctx context.Context, m *prices.Matrix, tickers []string, base time.Time, topN int) (*RankedList, error) {
	anchors, err := r.scorer.ResolveAnchors(ctx, base)
	if err != nil {
		return nil, fmt.Errorf("ranking at %s: %w", base.Format("2006-01-02"), err)
	}

	rl := &RankedList{BaseDay: base, Anchors: anchors}

	for i, ticker := range tickers {
		s, ok := m.Series(ticker)
		if !ok || s.Len() == 0 {
			rl.Skipped = append(rl.Skipped, domain.Skipped{Pos: i + 1, Ticker: ticker, Reason: ReasonNoData})
			continue
		}

		score, ok := r.scorer.ScoreSeries(s, anchors)
		if !ok {
			rl.Skipped = append(rl.Skipped, domain.Skipped{Pos: i + 1, Ticker: ticker, Reason: ReasonInsufficient})
			continue
		}
		rl.Entries = append(rl.Entries, domain.RankEntry{Ticker: ticker, Score: score})
	}

	sort.SliceStable(rl.Entries, func(i, j int) bool {
		return rl.Entries[i].Score > rl.Entries[j].Score
	})

	rl.Scored = len(rl.Entries)
	if topN > 0 && len(rl.Entries) > topN {
		rl.Entries = rl.Entries[:topN]
	}
	return rl, nil
}

// StatusLine renders the machine-parseable pipeline handoff line:
// "<base day YYYY-MM-DD>,<retained count>".
func (rl *RankedList) StatusLine() string {
	return fmt.Sprintf("%s,%d", rl.BaseDay.Format("2006-01-02"), len(rl.Entries))
}

// Artifact renders the ranked tickers as an ordered, comma-joined list of
// exchange-qualified codes with a trailing separator, e.g.
// "TSE:7203,TSE:6758,". Downstream consumers expect the terminated form.
func (rl *RankedList) Artifact(exchange string) string {
	var b strings.Builder
	for _, e := range rl.Entries {
		b.WriteString(exchange)
		b.WriteByte(':')
		b.WriteString(bareCode(e.Ticker))
		b.WriteByte(',')
	}
	return b.String()
}

// bareCode reduces a ticker surface form to its bare code:
// "7203.T" and "TSE:7203" both become "7203".
func bareCode(ticker string) string {
	if i := strings.IndexByte(ticker, ':'); i >= 0 {
		ticker = ticker[i+1:]
	}
	if i := strings.IndexByte(ticker, '.'); i >= 0 {
		ticker = ticker[:i]
	}
	return ticker
}
