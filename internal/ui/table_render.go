package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const tableSeparator = " "

func tableSeparatorWidth() int {
	return lipgloss.Width(tableSeparator)
}

// renderTableRow renders cells padded to their column widths.
func renderTableRow(cells []string, widths []int, style lipgloss.Style) string {
	var parts []string
	for i, cell := range cells {
		if i >= len(widths) {
			continue
		}
		if i > 0 {
			parts = append(parts, style.UnsetPadding().Render(tableSeparator))
		}
		parts = append(parts, style.Width(widths[i]).MaxWidth(widths[i]).Render(cell))
	}
	return lipgloss.JoinHorizontal(lipgloss.Left, parts...)
}

func renderTableDivider(widths []int) string {
	parts := make([]string, 0, len(widths))
	for _, w := range widths {
		parts = append(parts, strings.Repeat("─", w))
	}
	return DividerStyle.Render(strings.Join(parts, strings.Repeat("─", tableSeparatorWidth())))
}

func formatHeaderLabel(label string) string {
	return strings.ToUpper(label)
}

func renderActiveHeaderLabel(label string) string {
	return ActiveHeaderStyle.Render(label)
}
