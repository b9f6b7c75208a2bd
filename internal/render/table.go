package render

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/hostpanel/panelview/internal/tabview"
)

const maxCellWidth = 48

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle     = lipgloss.NewStyle().Padding(0, 1)
	selectedStyle = cellStyle.Reverse(true)
)

// Table writes vm as a bordered text table followed by the paging summary.
// Selected rows are marked with "*" in the first column.
func Table(w io.Writer, vm tabview.ViewModel, columns []string) error {
	columns = Columns(vm, columns)

	headers := make([]string, 0, len(columns)+1)
	headers = append(headers, " ")
	for _, col := range columns {
		headers = append(headers, col+SortIndicator(vm, col))
	}

	rows := make([][]string, 0, len(vm.Rows))
	for _, row := range vm.Rows {
		cells := make([]string, 0, len(columns)+1)
		marker := " "
		if row.Selected {
			marker = "*"
		}
		cells = append(cells, marker)
		for _, col := range columns {
			cells = append(cells, truncate(Cell(row.Item, col), maxCellWidth))
		}
		rows = append(rows, cells)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row >= 0 && row < len(vm.Rows) && vm.Rows[row].Selected:
				return selectedStyle
			default:
				return cellStyle
			}
		})

	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return err
	}
	if len(vm.Rows) == 0 {
		if _, err := fmt.Fprintln(w, "no rows"); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, Summary(vm))
	return err
}
