// Package parsers decodes raw storage rows into canonical records. Rows come
// from JSON files or SQLite result sets and may use any of several historical
// field-naming conventions, so every lookup takes an ordered list of candidate
// keys.
package parsers

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
)

// Row is one raw record: a JSON object or a SQLite row keyed by column name.
type Row = map[string]any

// secondsThreshold separates second-resolution from millisecond-resolution
// epoch values. 1e12 ms is September 2001.
const secondsThreshold = 1_000_000_000_000

// String returns the first non-empty string found under keys, or "".
func String(row Row, keys ...string) string {
	for _, key := range keys {
		value, ok := row[key]
		if !ok {
			continue
		}
		switch v := value.(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case json.Number:
			if s := strings.TrimSpace(v.String()); s != "" {
				return s
			}
		case []byte:
			if s := strings.TrimSpace(string(v)); s != "" {
				return s
			}
		}
	}
	return ""
}

// Number returns the first value under keys that is numeric or a numeric
// string. The bool is false when nothing parses, so callers can tell an unset
// field from an explicit zero.
func Number(row Row, keys ...string) (float64, bool) {
	for _, key := range keys {
		value, ok := row[key]
		if !ok {
			continue
		}
		if n, ok := numberFromAny(value); ok {
			return n, true
		}
	}
	return 0, false
}

// Int is Number truncated to int64.
func Int(row Row, keys ...string) (int64, bool) {
	n, ok := Number(row, keys...)
	if !ok {
		return 0, false
	}
	return int64(n), true
}

func numberFromAny(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		if err == nil {
			return f, true
		}
	case string:
		return parseNumericString(v)
	case []byte:
		return parseNumericString(string(v))
	}
	return 0, false
}

func parseNumericString(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Object decodes value as a JSON object. It accepts an already-decoded map or
// a JSON-serialized string (or bytes) holding one.
func Object(value any) (map[string]any, bool) {
	switch v := value.(type) {
	case map[string]any:
		return v, true
	case string:
		return decodeObject([]byte(v))
	case []byte:
		return decodeObject(v)
	}
	return nil, false
}

func decodeObject(raw []byte) (map[string]any, bool) {
	raw = []byte(strings.TrimSpace(string(raw)))
	if len(raw) == 0 || raw[0] != '{' {
		return nil, false
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, false
	}
	return out, true
}

var errNotObject = errors.New("parsers: not a JSON object")

// Decode parses a JSON object from raw file or column contents.
func Decode(raw []byte) (Row, error) {
	var row Row
	if err := json.Unmarshal(raw, &row); err != nil {
		return nil, err
	}
	if row == nil {
		return nil, errNotObject
	}
	return row, nil
}

// Flatten merges a JSON `data` column into the surrounding row. Keys from the
// decoded body win; the remaining columns fill the gaps. Rows without a
// decodable `data` value are returned unchanged.
func Flatten(row Row) Row {
	raw, ok := row["data"]
	if !ok {
		return row
	}
	body, ok := Object(raw)
	if !ok {
		return row
	}
	return lo.Assign(lo.OmitByKeys(row, []string{"data"}), body)
}

// Timestamp normalizes a raw timestamp value to epoch milliseconds. Numbers
// and numeric strings below secondsThreshold are seconds, fractions kept to the
// millisecond; RFC 3339 strings are parsed.
// Missing, non-positive, or unparseable input falls back to now, which makes
// repeated reads of a malformed record non-deterministic.
func Timestamp(value any, now time.Time) int64 {
	if ms, ok := timestamp(value); ok {
		return ms
	}
	return now.UnixMilli()
}

func timestamp(value any) (int64, bool) {
	if value == nil {
		return 0, false
	}
	if n, ok := numberFromAny(value); ok {
		if n <= 0 {
			return 0, false
		}
		if n < secondsThreshold {
			return int64(n * 1000), true
		}
		return int64(n), true
	}
	if s, ok := value.(string); ok {
		s = strings.TrimSpace(s)
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UnixMilli(), true
			}
		}
	}
	return 0, false
}

// firstTimestamp looks keys up across each map in order and returns the first
// value that parses as a timestamp.
func firstTimestamp(maps []Row, keys ...string) (int64, bool) {
	for _, m := range maps {
		if m == nil {
			continue
		}
		for _, key := range keys {
			if value, ok := m[key]; ok {
				if ms, ok := timestamp(value); ok {
					return ms, true
				}
			}
		}
	}
	return 0, false
}
