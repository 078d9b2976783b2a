package calendar

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"rsrank/internal/domain"
)

// TableSource serves sessions from an in-memory, sorted session table.
// It backs exchanges with no API source (XTKS sessions are exported once
// and shipped as a file).
type TableSource struct {
	sessions []time.Time
}

// NewTableSource builds a TableSource from the given session dates. Dates
// are normalized, deduplicated, and sorted.
func NewTableSource(sessions []time.Time) *TableSource {
	seen := make(map[time.Time]struct{}, len(sessions))
	for _, s := range sessions {
		seen[domain.DateOnly(s)] = struct{}{}
	}
	out := make([]time.Time, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return &TableSource{sessions: out}
}

// LoadSessionTable reads a session table file: one YYYY-MM-DD session per
// line, blank lines and lines starting with '#' ignored. A single "date"
// header line is tolerated.
func LoadSessionTable(path string) (*TableSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening session table: %w", err)
	}
	defer f.Close()

	var sessions []time.Time
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(strings.TrimSuffix(sc.Text(), ","))
		if line == "" || strings.HasPrefix(line, "#") || strings.EqualFold(line, "date") {
			continue
		}
		d, err := time.ParseInLocation("2006-01-02", line, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("session table %s: bad line %q: %w", path, line, err)
		}
		sessions = append(sessions, d)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading session table: %w", err)
	}
	return NewTableSource(sessions), nil
}

// SessionsInRange returns every table session in [start, end].
func (t *TableSource) SessionsInRange(_ context.Context, start, end time.Time) ([]time.Time, error) {
	start = domain.DateOnly(start)
	end = domain.DateOnly(end)

	lo := sort.Search(len(t.sessions), func(i int) bool { return !t.sessions[i].Before(start) })
	hi := sort.Search(len(t.sessions), func(i int) bool { return t.sessions[i].After(end) })
	if lo >= hi {
		return nil, nil
	}
	out := make([]time.Time, hi-lo)
	copy(out, t.sessions[lo:hi])
	return out, nil
}
