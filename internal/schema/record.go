package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Record is one normalized row keyed by canonical column names.
// Values are whatever the upstream decoder produced: strings, numbers,
// bools, or already-structured lists.
type Record map[string]any

// Has reports whether the record carries a non-nil value for the column.
func (r Record) Has(name string) bool {
	v, ok := r[name]
	return ok && v != nil
}

// IsEmpty reports whether the column is absent, nil, or a blank string.
func (r Record) IsEmpty(name string) bool {
	v, ok := r[name]
	if !ok || v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// String returns the column value rendered as a string.
func (r Record) String(name string) string {
	v, ok := r[name]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// Number coerces the column value to a float64.
func (r Record) Number(name string) (float64, error) {
	v, ok := r[name]
	if !ok || v == nil {
		return 0, fmt.Errorf("no value for %s", name)
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not a number", n)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%v (%T) is not a number", v, v)
	}
}

// Integer coerces the column value to an int. Floats with a fractional
// part are rejected so "2.5" cannot pass as a Duration.
func (r Record) Integer(name string) (int, error) {
	f, err := r.Number(name)
	if err != nil {
		return 0, err
	}
	if f != float64(int64(f)) {
		return 0, fmt.Errorf("%v is not an integer", f)
	}
	return int(f), nil
}

// listDelimiters are accepted separators for permissive list splitting.
var listDelimiters = []string{",", ";"}

// ParseList parses a list-valued cell into its elements.
//
// The fallback chain is: structured values pass through; strings are
// first tried as a JSON array; strings that do not look like JSON are
// split on common delimiters. A string that looks like JSON but does not
// parse to an array is a parse failure the caller reports as
// json_parse_error.
func ParseList(v any) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case []string:
		return trimAll(val), nil
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if item == nil {
				continue
			}
			out = append(out, fmt.Sprintf("%v", item))
		}
		return trimAll(out), nil
	case string:
		return parseListString(val)
	default:
		return nil, fmt.Errorf("cannot parse %v (%T) as a list", v, v)
	}
}

func parseListString(s string) ([]string, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil, nil
	}

	if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{") {
		var items []any
		if err := json.Unmarshal([]byte(trimmed), &items); err != nil {
			return nil, fmt.Errorf("invalid JSON list: %w", err)
		}
		out := make([]string, 0, len(items))
		for _, item := range items {
			if item == nil {
				continue
			}
			out = append(out, fmt.Sprintf("%v", item))
		}
		return trimAll(out), nil
	}

	// Permissive delimiter split for plain text cells.
	parts := []string{trimmed}
	for _, d := range listDelimiters {
		if strings.Contains(trimmed, d) {
			parts = strings.Split(trimmed, d)
			break
		}
	}
	return trimAll(parts), nil
}

func trimAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
