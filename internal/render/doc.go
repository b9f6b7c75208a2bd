// Package render turns a tabview.ViewModel into output: a lipgloss text
// table, JSON, YAML, or an HTML page served over HTTP.
//
// The HTML surface keeps its view state in the URL (filter, sort, dir, page,
// size) the way the TUI keeps it in key presses. Links are built as
// safehtml.URL values and the page is rendered with safehtml/template, so
// cell values coming from the panel are always escaped.
package render
