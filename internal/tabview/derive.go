package tabview

import (
	"encoding/json"
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// DefaultSearchText joins every string or numeric field value, in field-name
// order. The identity is not included.
func DefaultSearchText(item Item) string {
	fields := item.Fields()
	parts := make([]string, 0, len(fields))
	for _, name := range fields {
		v, ok := item.Value(name)
		if !ok || !searchable(v) {
			continue
		}
		parts = append(parts, FormatValue(v))
	}
	return strings.Join(parts, " ")
}

// FieldsSearchText restricts the default filter to the named fields.
func FieldsSearchText(fields ...string) SearchTextFunc {
	return func(item Item) string {
		parts := make([]string, 0, len(fields))
		for _, name := range fields {
			if v, ok := item.Value(name); ok {
				parts = append(parts, FormatValue(v))
			}
		}
		return strings.Join(parts, " ")
	}
}

func searchable(v any) bool {
	switch v.(type) {
	case string, json.Number:
		return true
	}
	_, ok := toFloat(v)
	return ok
}

// sortItems returns a new slice ordered by field. Ties keep their input
// order in both directions. The input slice is never reordered.
func sortItems(items []Item, field string, dir Direction, cmp Comparator, fold cases.Caser) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	if field == "" || len(out) < 2 {
		return out
	}

	var less func(i, j int) bool
	if cmp != nil {
		values := make([]any, len(out))
		for i, item := range out {
			values[i], _ = item.Value(field)
		}
		less = func(i, j int) bool {
			c := cmp(values[i], values[j])
			if dir == Descending {
				return c > 0
			}
			return c < 0
		}
		sort.Stable(&keyedSlice{items: out, values: values, less: less})
		return out
	}

	keys := make([]sortKey, len(out))
	for i, item := range out {
		v, ok := item.Value(field)
		keys[i] = makeSortKey(v, ok, fold)
	}
	less = func(i, j int) bool {
		c := compareKeys(keys[i], keys[j])
		if dir == Descending {
			return c > 0
		}
		return c < 0
	}
	sort.Stable(&keyedSlice{items: out, keys: keys, less: less})
	return out
}

// keyedSlice sorts items together with their precomputed keys or values so
// the less closure can index by position.
type keyedSlice struct {
	items  []Item
	keys   []sortKey
	values []any
	less   func(i, j int) bool
}

func (s *keyedSlice) Len() int           { return len(s.items) }
func (s *keyedSlice) Less(i, j int) bool { return s.less(i, j) }

func (s *keyedSlice) Swap(i, j int) {
	s.items[i], s.items[j] = s.items[j], s.items[i]
	if s.keys != nil {
		s.keys[i], s.keys[j] = s.keys[j], s.keys[i]
	}
	if s.values != nil {
		s.values[i], s.values[j] = s.values[j], s.values[i]
	}
}
