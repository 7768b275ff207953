// Package config holds the application configuration and the free-form
// Options bag used by the parser layer.
package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Options is a free-form option bag (typically decoded from JSON or YAML).
//
// Lookups are forgiving: a missing key or a value of the wrong type falls back
// to the provided default. This keeps option plumbing out of the hot path and
// lets callers declare intent inline, e.g. opt.Bool("has_header", true).
type Options map[string]any

// Bool returns the boolean value for key, or def when absent/mismatched.
// String values "true"/"false" (any case) are accepted.
func (o Options) Bool(key string, def bool) bool {
	v, ok := o[key]
	if !ok {
		return def
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		if err != nil {
			return def
		}
		return b
	default:
		return def
	}
}

// Int returns the integer value for key, or def when absent/mismatched.
// JSON numbers decode to float64; those are accepted when integral.
func (o Options) Int(key string, def int) int {
	v, ok := o[key]
	if !ok {
		return def
	}
	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		if t == float64(int(t)) {
			return int(t)
		}
		return def
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return def
		}
		return n
	default:
		return def
	}
}

// Rune returns the first rune of the string value for key, or def.
// Useful for CSV delimiters ("," ";" "\t").
func (o Options) Rune(key string, def rune) rune {
	v, ok := o[key]
	if !ok {
		return def
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return def
	}
	if s == `\t` {
		return '\t'
	}
	return []rune(s)[0]
}

// String returns the string value for key, or def when absent/mismatched.
func (o Options) String(key string, def string) string {
	v, ok := o[key]
	if !ok {
		return def
	}
	s, ok := v.(string)
	if !ok {
		return def
	}
	return s
}

// StringMap returns a map[string]string for key, or an empty map.
// Both map[string]string and map[string]any (JSON decoding) are accepted;
// non-string values are rendered with fmt.Sprint.
func (o Options) StringMap(key string) map[string]string {
	v, ok := o[key]
	if !ok {
		return map[string]string{}
	}
	switch t := v.(type) {
	case map[string]string:
		return t
	case map[string]any:
		out := make(map[string]string, len(t))
		for k, mv := range t {
			if s, ok := mv.(string); ok {
				out[k] = s
			} else {
				out[k] = fmt.Sprint(mv)
			}
		}
		return out
	default:
		return map[string]string{}
	}
}

// Strings returns a []string for key, or nil when absent/mismatched.
// Both []string and []any (JSON decoding) are accepted; non-string elements
// are rendered with fmt.Sprint.
func (o Options) Strings(key string) []string {
	v, ok := o[key]
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			} else {
				out = append(out, fmt.Sprint(e))
			}
		}
		return out
	default:
		return nil
	}
}

// Any returns the raw value for key, or nil.
func (o Options) Any(key string) any {
	return o[key]
}
