package store

import (
	"fmt"
	"os"
	"regexp"
)

var codePattern = regexp.MustCompile(`\b(\d{4})\b`)

// LoadCodeList extracts 4-digit security codes from an arbitrary text or
// CSV file. Any 4-digit token counts, so exported watchlists, ranking
// artifacts ("TSE:7203,TSE:6758,"), and plain one-per-line files all work.
// Duplicates are dropped; first-seen order is preserved.
func LoadCodeList(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading code list: %w", err)
	}

	var codes []string
	seen := make(map[string]bool)
	for _, match := range codePattern.FindAllStringSubmatch(string(data), -1) {
		code := match[1]
		if seen[code] {
			continue
		}
		seen[code] = true
		codes = append(codes, code)
	}
	if len(codes) == 0 {
		return nil, fmt.Errorf("no 4-digit codes found in %s", path)
	}
	return codes, nil
}
