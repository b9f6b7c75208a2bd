package tabview

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/itchyny/gojq"
	"golang.org/x/text/cases"
)

// RegexPredicate treats the filter as a case-insensitive regular expression
// over search(item). A filter that does not compile falls back to a plain
// case-insensitive substring match.
func RegexPredicate(search SearchTextFunc) Predicate {
	if search == nil {
		search = DefaultSearchText
	}
	var (
		mu      sync.Mutex
		pattern string
		re      *regexp.Regexp
		fold    = cases.Fold()
	)
	return func(item Item, filter string) bool {
		mu.Lock()
		defer mu.Unlock()
		if filter != pattern {
			pattern = filter
			re, _ = regexp.Compile("(?i)" + filter)
		}
		text := search(item)
		if re == nil {
			return strings.Contains(fold.String(text), fold.String(filter))
		}
		return re.MatchString(text)
	}
}

// JQPredicate compiles expr as a jq program run against each item's fields
// (plus "id"). The filter string is bound to $filter. An item matches when
// the program yields at least one value other than null or false.
func JQPredicate(expr string) (Predicate, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("jq expression is empty")
	}
	parsed, err := gojq.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid jq expression: %w", err)
	}
	code, err := gojq.Compile(parsed, gojq.WithVariables([]string{"$filter"}))
	if err != nil {
		return nil, fmt.Errorf("failed to compile jq expression: %w", err)
	}
	return func(item Item, filter string) bool {
		iter := code.Run(jqInput(item), filter)
		for {
			v, ok := iter.Next()
			if !ok {
				return false
			}
			if _, isErr := v.(error); isErr {
				return false
			}
			if v != nil && v != false {
				return true
			}
		}
	}, nil
}

func jqInput(item Item) map[string]any {
	fields := item.Fields()
	out := make(map[string]any, len(fields)+1)
	for _, name := range fields {
		v, _ := item.Value(name)
		out[name] = normalizeJQValue(v)
	}
	if _, exists := out["id"]; !exists {
		out["id"] = item.Identity()
	}
	return out
}

// normalizeJQValue converts values into the types gojq accepts.
func normalizeJQValue(v any) any {
	switch typed := v.(type) {
	case nil, bool, int, float64, string:
		return typed
	case json.Number:
		if i, err := typed.Int64(); err == nil {
			return int(i)
		}
		if f, err := typed.Float64(); err == nil {
			return f
		}
		return typed.String()
	case time.Time:
		return typed.Format(time.RFC3339)
	case []any:
		out := make([]any, len(typed))
		for i := range typed {
			out[i] = normalizeJQValue(typed[i])
		}
		return out
	case []string:
		out := make([]any, len(typed))
		for i := range typed {
			out[i] = typed[i]
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, val := range typed {
			out[k] = normalizeJQValue(val)
		}
		return out
	}
	if f, ok := toFloat(v); ok {
		if f == float64(int(f)) {
			return int(f)
		}
		return f
	}
	return FormatValue(v)
}
