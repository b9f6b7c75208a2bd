package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/hostpanel/panelview/internal/render"
	"github.com/hostpanel/panelview/internal/tabview"
)

// chromeHeight is the number of lines around the table: header, command
// bar, footer and the table's own borders and heading.
const chromeHeight = 7

// renderTable renders the current page with the cursor row highlighted and
// selected rows marked.
func (m Model) renderTable(vm tabview.ViewModel) string {
	styles := m.theme.Styles()
	columns := render.Columns(vm, m.columns)

	if len(vm.Rows) == 0 {
		msg := "No rows"
		if vm.FilterValue != "" {
			msg = "No rows match the filter"
		} else if m.snapshot.Generation == 0 {
			msg = "Waiting for data..."
		}
		return lipgloss.Place(m.width, max(m.height-chromeHeight, 1), lipgloss.Center, lipgloss.Center,
			styles.MutedText.Render(msg))
	}

	limit := columnWidth(m.width, len(columns))

	headers := make([]string, 0, len(columns)+1)
	headers = append(headers, markerCell(vm.AllSelected))
	for i, col := range columns {
		label := col
		if i < 9 {
			label = string(rune('1'+i)) + ":" + col
		}
		headers = append(headers, label+render.SortIndicator(vm, col))
	}

	first, last := visibleRange(m.cursor, len(vm.Rows), m.height-chromeHeight)
	rows := make([][]string, 0, last-first)
	for _, row := range vm.Rows[first:last] {
		cells := make([]string, 0, len(columns)+1)
		cells = append(cells, markerCell(row.Selected))
		for _, col := range columns {
			cells = append(cells, truncate(render.Cell(row.Item, col), limit))
		}
		rows = append(rows, cells)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styles.Border).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.TableHeader
			}
			idx := first + row
			switch {
			case idx == m.cursor:
				return styles.Cursor
			case idx < len(vm.Rows) && vm.Rows[idx].Selected:
				return styles.Marked
			default:
				return styles.Cell
			}
		})
	if m.width > 0 {
		t = t.Width(m.width)
	}
	return t.Render()
}

func markerCell(selected bool) string {
	return ternary(selected, "[x]", "[ ]")
}

// visibleRange returns the window of rows that fits in height lines while
// keeping cursor visible.
func visibleRange(cursor, total, height int) (int, int) {
	if height <= 0 || total <= height {
		return 0, total
	}
	first := 0
	if cursor >= height {
		first = cursor - height + 1
	}
	return first, min(first+height, total)
}

// columnWidth spreads the terminal width across columns, leaving room for
// the marker column and borders.
func columnWidth(width, columns int) int {
	if width <= 0 || columns == 0 {
		return 40
	}
	per := (width - 6) / columns
	return max(min(per-3, 40), 6)
}
