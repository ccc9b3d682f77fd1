package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Table renders rows under headers with a rounded border. Cells in the column named by
// statusCol are coloured with StatusStyle; pass -1 for none.
func Table(headers []string, rows [][]string, statusCol int) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(MutedStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return HeaderStyle
			}
			if col == statusCol && row >= 0 && row < len(rows) && col < len(rows[row]) {
				return CellStyle.Inherit(StatusStyle(rows[row][col]))
			}
			return CellStyle
		})
	return t.String()
}

// Footer is the muted summary line printed under a paginated table.
func Footer(page, pages, count int) string {
	return MutedStyle.Render(pageLine(page, pages, count))
}

func pageLine(page, pages, count int) string {
	if pages <= 1 {
		return fmt.Sprintf("%d total", count)
	}
	return fmt.Sprintf("page %d of %d · %d total", page, pages, count)
}
