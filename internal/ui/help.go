package ui

import (
	"strings"

	"ratedesk/internal/model"

	"github.com/charmbracelet/lipgloss"
)

// RenderHelp renders context-sensitive help footer.
func RenderHelp(screen model.Screen, mode model.Mode, width int) string {
	if mode == model.ModeInsert {
		return renderSearchHelp(width)
	}

	switch screen {
	case model.ScreenRates:
		return renderRatesHelp(width)
	case model.ScreenDetail:
		return renderDetailHelp(width)
	default:
		return renderDefaultHelp(width)
	}
}

func renderRatesHelp(width int) string {
	keys := []string{
		helpKey("j/k", "navigate"),
		helpKey("tab", "next col"),
		helpKey("s", "sort"),
		helpKey("/", "search"),
		helpKey("f/F", "loan type"),
		helpKey("c/C", "hide/show col"),
		helpKey("enter", "programs"),
		helpKey("e", "export"),
		helpKey("?", "help"),
	}
	return renderHelpLine(keys, width)
}

func renderDetailHelp(width int) string {
	keys := []string{
		helpKey("h/esc", "back"),
		helpKey("e", "export"),
	}
	return renderHelpLine(keys, width)
}

func renderSearchHelp(width int) string {
	keys := []string{
		helpKey("type", "filter by name"),
		helpKey("ctrl+u", "clear"),
		helpKey("enter/esc", "done"),
	}
	return renderHelpLine(keys, width)
}

func renderDefaultHelp(width int) string {
	keys := []string{
		helpKey("j/k", "navigate"),
		helpKey("h/l", "back/select"),
		helpKey("q", "quit"),
	}
	return renderHelpLine(keys, width)
}

func helpKey(key, desc string) string {
	return HelpKeyStyle.Render(key) + " " + HelpDescStyle.Render(desc)
}

func renderHelpLine(keys []string, width int) string {
	line := strings.Join(keys, "  ")
	return FooterStyle.Width(width).Render(line)
}

// RenderFullHelp renders the full help screen.
func RenderFullHelp(width, height int) string {
	content := lipgloss.NewStyle().
		Width(width-4).
		Height(height-6).
		Padding(1, 2)

	sections := []string{
		titleSection("Navigation"),
		helpSection([]helpItem{
			{"j / ↓", "Move down"},
			{"k / ↑", "Move up"},
			{"gg", "Jump to top"},
			{"G", "Jump to bottom"},
			{"ctrl+d", "Half page down"},
			{"ctrl+u", "Half page up"},
			{"l / enter", "Open program list"},
			{"h / esc", "Back"},
			{"q", "Quit"},
			{"?", "Toggle help"},
		}),
		titleSection("Columns"),
		helpSection([]helpItem{
			{"tab / shift+tab", "Cycle active column"},
			{"1-5", "Jump to column"},
			{"s", "Sort active column (repeat to flip direction)"},
			{"c / C", "Hide active column / show all"},
		}),
		titleSection("Filters"),
		helpSection([]helpItem{
			{"/", "Search institution names"},
			{"f / F", "Next / previous loan type"},
		}),
		titleSection("Export"),
		helpSection([]helpItem{
			{"e", "Write the current view as an HTML page"},
		}),
	}

	helpText := content.Render(strings.Join(sections, "\n\n"))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		TitleStyle.Width(width).Render("Help"),
		helpText,
		FooterStyle.Width(width).Render(HelpKeyStyle.Render("esc")+" "+HelpDescStyle.Render("close help")),
	)
}

type helpItem struct {
	key  string
	desc string
}

func titleSection(title string) string {
	return LabelStyle.Render(title)
}

func helpSection(items []helpItem) string {
	var lines []string
	for _, item := range items {
		lines = append(lines, "  "+HelpKeyStyle.Render(item.key)+" - "+HelpDescStyle.Render(item.desc))
	}
	return strings.Join(lines, "\n")
}
