package prices

import "strings"

// Resolve maps a bare instrument code to the ticker the matrix actually
// uses. Price files in the wild key rows as "7203.T", "TSE:7203", or plain
// "7203"; the candidate forms are tried in that order, then a suffix scan
// over all tickers catches remaining variants. The matched ticker and true
// are returned on success.
func (m *Matrix) Resolve(code string) (string, bool) {
	candidates := []string{code + ".T", "TSE:" + code, code}
	for _, c := range candidates {
		if _, ok := m.series[c]; ok {
			return c, true
		}
	}

	// Fallback: scan in insertion order so the match is deterministic.
	for _, t := range m.tickers {
		if strings.HasSuffix(t, code+".T") || t == "TSE:"+code || strings.HasSuffix(t, code) {
			return t, true
		}
	}
	return "", false
}
