package transformer

import (
	"strings"
	"time"
)

// saleDateLayouts are the accepted input formats for "Date of Sale", in order
// of likelihood. Go's "1" and "2" layout digits match both padded and
// unpadded numbers, so "2024-1-5" and "2024-01-05" share one layout.
//
// Slash dates are interpreted month-first ("01/05/2024" is January 5th).
var saleDateLayouts = []string{
	"2006-1-2",
	"1/2/2006",
	"2006/1/2",
	"2006-1-2T15:04:05",
	"2006-1-2 15:04:05",
}

// NormalizeSaleDate parses a raw sale-date string and renders it as the
// canonical calendar date "YYYY-MM-DD".
//
// Edge cases:
//   - Leading/trailing whitespace is ignored.
//   - Empty input or an unrecognized format returns ok=false; callers drop
//     the row (and count it) rather than guessing.
func NormalizeSaleDate(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}
	for _, layout := range saleDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}
