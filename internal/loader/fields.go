package loader

import (
	"strconv"
	"strings"
)

// keyField returns the value as a trimmed string when present and non-empty.
// The parser emits nil for empty cells, so key checks reduce to this.
func keyField(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return s, true
}

func strField(v any) *string {
	s, ok := keyField(v)
	if !ok {
		return nil
	}
	return &s
}

// intField parses an integer cell. Unparseable values normalize to nil
// rather than failing the row; aggregation treats nil as zero.
func intField(v any) *int64 {
	s, ok := keyField(v)
	if !ok {
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// Some exports write integral quantities as "2.0".
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return nil
		}
		n = int64(f)
	}
	return &n
}

func floatField(v any) *float64 {
	s, ok := keyField(v)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}
