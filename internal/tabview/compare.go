package tabview

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// Comparator orders two raw field values. It returns a negative number when
// a sorts before b, zero when they tie and a positive number otherwise.
type Comparator func(a, b any) int

// Rank buckets keep comparison total across mixed kinds.
const (
	rankMissing = iota
	rankBool
	rankNumber
	rankTime
	rankString
)

// sortKey is a value pre-normalised for comparison so each value is folded
// once per sort pass rather than once per comparison.
type sortKey struct {
	rank int
	num  float64
	at   time.Time
	str  string // case-folded
	raw  string
}

func makeSortKey(v any, present bool, fold cases.Caser) sortKey {
	if !present || v == nil {
		return sortKey{rank: rankMissing}
	}
	switch typed := v.(type) {
	case bool:
		if typed {
			return sortKey{rank: rankBool, num: 1}
		}
		return sortKey{rank: rankBool}
	case time.Time:
		if typed.IsZero() {
			return sortKey{rank: rankMissing}
		}
		return sortKey{rank: rankTime, at: typed}
	case json.Number:
		if f, err := typed.Float64(); err == nil {
			return sortKey{rank: rankNumber, num: f, raw: typed.String()}
		}
		return stringKey(typed.String(), fold)
	case string:
		return stringKey(typed, fold)
	}
	if f, ok := toFloat(v); ok {
		return sortKey{rank: rankNumber, num: f, raw: FormatValue(v)}
	}
	return stringKey(FormatValue(v), fold)
}

// stringKey treats numeric-looking strings as numbers; panel APIs return most
// counters (disk usage, quotas) as strings.
func stringKey(s string, fold cases.Caser) sortKey {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return sortKey{rank: rankMissing}
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return sortKey{rank: rankNumber, num: f, raw: trimmed}
	}
	return sortKey{rank: rankString, str: fold.String(trimmed), raw: trimmed}
}

func compareKeys(a, b sortKey) int {
	if a.rank != b.rank {
		return a.rank - b.rank
	}
	switch a.rank {
	case rankMissing:
		return 0
	case rankBool, rankNumber:
		switch {
		case a.num < b.num:
			return -1
		case a.num > b.num:
			return 1
		}
	case rankTime:
		if c := a.at.Compare(b.at); c != 0 {
			return c
		}
	case rankString:
		if c := strings.Compare(a.str, b.str); c != 0 {
			return c
		}
	}
	return strings.Compare(a.raw, b.raw)
}

// CompareValues is the default Comparator: missing < bool < number < time < string.
func CompareValues(a, b any) int {
	fold := cases.Fold()
	return compareKeys(makeSortKey(a, a != nil, fold), makeSortKey(b, b != nil, fold))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		if math.IsNaN(n) {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// FormatValue renders a field value for display and for the default search text.
func FormatValue(v any) string {
	switch typed := v.(type) {
	case nil:
		return ""
	case string:
		return typed
	case bool:
		return strconv.FormatBool(typed)
	case json.Number:
		return typed.String()
	case time.Time:
		if typed.IsZero() {
			return ""
		}
		return typed.Format(time.RFC3339)
	case float64:
		if typed == math.Trunc(typed) && math.Abs(typed) < 1e15 {
			return strconv.FormatInt(int64(typed), 10)
		}
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case float32:
		return FormatValue(float64(typed))
	case []any:
		parts := make([]string, 0, len(typed))
		for _, elem := range typed {
			parts = append(parts, FormatValue(elem))
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(typed, ", ")
	case map[string]any:
		encoded, err := json.Marshal(typed)
		if err != nil {
			return fmt.Sprint(typed)
		}
		return string(encoded)
	}
	return fmt.Sprint(v)
}
