package render

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/hostpanel/panelview/internal/tabview"
)

// Format selects an output encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatHTML  Format = "html"
)

// ParseFormat maps a user-supplied name onto a Format. Empty means table.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case "", FormatTable, "text":
		return FormatTable, nil
	case FormatJSON, FormatYAML, FormatHTML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown output format %q (want table, json, yaml or html)", name)
}

// Write renders vm to w in format. The HTML format needs a renderer.
func Write(w io.Writer, format Format, vm tabview.ViewModel, columns []string, html *HTMLRenderer) error {
	switch format {
	case FormatJSON:
		return JSON(w, vm)
	case FormatYAML:
		return YAML(w, vm)
	case FormatHTML:
		if html == nil {
			return fmt.Errorf("html output needs a renderer")
		}
		return html.Render(w, Page{View: vm, Columns: columns})
	default:
		return Table(w, vm, columns)
	}
}

// Columns returns columns when given, otherwise the sorted union of field
// names across the rows of vm.
func Columns(vm tabview.ViewModel, columns []string) []string {
	if len(columns) > 0 {
		return columns
	}
	seen := map[string]struct{}{}
	var out []string
	for _, row := range vm.Rows {
		for _, field := range row.Item.Fields() {
			if _, ok := seen[field]; ok {
				continue
			}
			seen[field] = struct{}{}
			out = append(out, field)
		}
	}
	sort.Strings(out)
	return out
}

// Cell renders one field of item for display.
func Cell(item tabview.Item, field string) string {
	v, ok := item.Value(field)
	if !ok {
		return ""
	}
	return tabview.FormatValue(v)
}

// SortIndicator returns the arrow shown next to the active sort column.
func SortIndicator(vm tabview.ViewModel, column string) string {
	if vm.SortBy != column {
		return ""
	}
	if vm.SortDirection == tabview.Descending {
		return "▼"
	}
	return "▲"
}

// PageSizeLabel renders a page size, spelling out the "all" sentinel.
func PageSizeLabel(size int) string {
	if size == tabview.PageSizeAll {
		return "all"
	}
	return fmt.Sprint(size)
}

// Summary is the one-line paging footer shared by the text surfaces.
func Summary(vm tabview.ViewModel) string {
	parts := []string{
		fmt.Sprintf("page %d/%d", vm.CurrentPage, vm.TotalPages),
		fmt.Sprintf("%d of %d rows", vm.TotalItems, vm.SourceItems),
		fmt.Sprintf("%s per page", PageSizeLabel(vm.PageSize)),
	}
	if vm.SelectedCount > 0 {
		parts = append(parts, fmt.Sprintf("%d selected", vm.SelectedCount))
	}
	if vm.FilterValue != "" {
		parts = append(parts, fmt.Sprintf("filter %q", vm.FilterValue))
	}
	return strings.Join(parts, " · ")
}

func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}
