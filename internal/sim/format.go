package sim

import (
	"fmt"
	"strings"
)

// formatAmount renders v with two decimal places and comma thousands
// separators, e.g. 109900 -> "109,900.00".
func formatAmount(v float64) string {
	s := fmt.Sprintf("%.2f", v)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	start := len(intPart) % 3
	if start > 0 {
		b.WriteString(intPart[:start])
	}
	for i := start; i < len(intPart); i += 3 {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}

// formatPct renders a percentage with two decimals and a trailing '%'.
func formatPct(v float64) string {
	return formatAmount(v) + "%"
}
